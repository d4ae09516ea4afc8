package partner

import "context"

// HierarchyStats is the read side of the partner tree for one user.
type HierarchyStats struct {
	DirectPartners int64 `json:"direct_partners"`
	TotalPartners  int   `json:"total_partners"`
	Level1         int   `json:"level1"`
	Level2         int   `json:"level2"`
	Level3         int   `json:"level3"`
}

// ComputeHierarchyStats returns level-bucketed counts for the fixed 3-level
// depth plus an all-levels total. Buckets are built iteratively from three
// sequential indexed queries; an empty level short-circuits the deeper ones.
// A user without a profile gets zeroed stats.
func (e *Engine) ComputeHierarchyStats(ctx context.Context, userID uint) (*HierarchyStats, error) {
	stats := &HierarchyStats{}

	profile, err := e.dir.FindProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return stats, nil
	}

	direct, err := e.dir.CountDirectReferrals(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	stats.DirectPartners = direct

	level1, err := e.dir.ListReferredUserIDs(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	stats.Level1 = len(level1)

	var level2, level3 []uint
	if len(level1) > 0 {
		level2, err = e.dir.ListReferredUserIDsForUsers(ctx, level1)
		if err != nil {
			return nil, err
		}
	}
	stats.Level2 = len(level2)
	if len(level2) > 0 {
		level3, err = e.dir.ListReferredUserIDsForUsers(ctx, level2)
		if err != nil {
			return nil, err
		}
	}
	stats.Level3 = len(level3)

	total, err := e.countAllReferrals(ctx, userID, map[uint]bool{})
	if err != nil {
		return nil, err
	}
	stats.TotalPartners = total

	return stats, nil
}

// TeamUserIDs returns the referred user ids of one level bucket (1..3).
func (e *Engine) TeamUserIDs(ctx context.Context, userID uint, level int) ([]uint, error) {
	profile, err := e.dir.FindProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, nil
	}
	ids, err := e.dir.ListReferredUserIDs(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	for l := 2; l <= level; l++ {
		if len(ids) == 0 {
			return nil, nil
		}
		ids, err = e.dir.ListReferredUserIDsForUsers(ctx, ids)
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// countAllReferrals walks the whole referred-by subtree. The visited set is
// keyed by user id so malformed cyclic data terminates: a node already seen
// contributes nothing further.
func (e *Engine) countAllReferrals(ctx context.Context, userID uint, visited map[uint]bool) (int, error) {
	if visited[userID] {
		return 0, nil
	}
	visited[userID] = true

	profile, err := e.dir.FindProfileByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if profile == nil {
		return 0, nil
	}
	ids, err := e.dir.ListReferredUserIDs(ctx, profile.ID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, id := range ids {
		if visited[id] {
			continue
		}
		total++
		sub, err := e.countAllReferrals(ctx, id, visited)
		if err != nil {
			return total, err
		}
		total += sub
	}
	return total, nil
}
