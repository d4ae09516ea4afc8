package partner

import (
	"context"
	"testing"

	"github.com/mag8888/vital-sub000/models"
)

// buildTree wires root -> (a, b), a -> (c, d), c -> (e). Every member has a
// profile so deep levels resolve.
func buildTree(dir *memDirectory) (root, a, b, c, d, e *models.User) {
	root = dir.addUser(1)
	a = dir.addUser(2)
	b = dir.addUser(3)
	c = dir.addUser(4)
	d = dir.addUser(5)
	e = dir.addUser(6)

	rootP := dir.addProfile(root.ID, models.ProgramMultiLevel)
	aP := dir.addProfile(a.ID, models.ProgramMultiLevel)
	dir.addProfile(b.ID, models.ProgramMultiLevel)
	cP := dir.addProfile(c.ID, models.ProgramMultiLevel)
	dir.addProfile(d.ID, models.ProgramMultiLevel)
	dir.addProfile(e.ID, models.ProgramMultiLevel)

	dir.invite(rootP.ID, a.ID)
	dir.invite(rootP.ID, b.ID)
	dir.invite(aP.ID, c.ID)
	dir.invite(aP.ID, d.ID)
	dir.invite(cP.ID, e.ID)
	return
}

func TestComputeHierarchyStats(t *testing.T) {
	dir := newMemDirectory()
	root, _, _, _, _, _ := buildTree(dir)

	e := NewEngine(dir, nil)
	stats, err := e.ComputeHierarchyStats(context.Background(), root.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.DirectPartners != 2 {
		t.Fatalf("direct = %d, want 2", stats.DirectPartners)
	}
	if stats.Level1 != 2 || stats.Level2 != 2 || stats.Level3 != 1 {
		t.Fatalf("levels = %d/%d/%d, want 2/2/1", stats.Level1, stats.Level2, stats.Level3)
	}
	if stats.TotalPartners != 5 {
		t.Fatalf("total = %d, want 5", stats.TotalPartners)
	}
}

func TestComputeHierarchyStatsWithoutProfile(t *testing.T) {
	dir := newMemDirectory()
	user := dir.addUser(1)

	e := NewEngine(dir, nil)
	stats, err := e.ComputeHierarchyStats(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.DirectPartners != 0 || stats.TotalPartners != 0 || stats.Level1 != 0 {
		t.Fatalf("expected zeroed stats, got %+v", stats)
	}
}

func TestTeamUserIDs(t *testing.T) {
	dir := newMemDirectory()
	root, a, b, c, d, e := buildTree(dir)

	eng := NewEngine(dir, nil)
	ctx := context.Background()

	level1, err := eng.TeamUserIDs(ctx, root.ID, 1)
	if err != nil {
		t.Fatalf("level 1: %v", err)
	}
	if len(level1) != 2 || !containsID(level1, a.ID) || !containsID(level1, b.ID) {
		t.Fatalf("level 1 = %v, want [%d %d]", level1, a.ID, b.ID)
	}

	level2, err := eng.TeamUserIDs(ctx, root.ID, 2)
	if err != nil {
		t.Fatalf("level 2: %v", err)
	}
	if len(level2) != 2 || !containsID(level2, c.ID) || !containsID(level2, d.ID) {
		t.Fatalf("level 2 = %v, want [%d %d]", level2, c.ID, d.ID)
	}

	level3, err := eng.TeamUserIDs(ctx, root.ID, 3)
	if err != nil {
		t.Fatalf("level 3: %v", err)
	}
	if len(level3) != 1 || level3[0] != e.ID {
		t.Fatalf("level 3 = %v, want [%d]", level3, e.ID)
	}

	// A leaf has empty buckets at every level.
	leaf, err := eng.TeamUserIDs(ctx, e.ID, 2)
	if err != nil {
		t.Fatalf("leaf: %v", err)
	}
	if len(leaf) != 0 {
		t.Fatalf("leaf level 2 = %v, want empty", leaf)
	}
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Malformed data can produce a referral cycle; the traversal must terminate
// and count each member once.
func TestHierarchyStatsCycleSafe(t *testing.T) {
	dir := newMemDirectory()
	u1 := dir.addUser(1)
	u2 := dir.addUser(2)
	p1 := dir.addProfile(u1.ID, models.ProgramMultiLevel)
	p2 := dir.addProfile(u2.ID, models.ProgramMultiLevel)

	dir.invite(p1.ID, u2.ID)
	dir.invite(p2.ID, u1.ID)

	e := NewEngine(dir, nil)
	stats, err := e.ComputeHierarchyStats(context.Background(), u1.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalPartners != 1 {
		t.Fatalf("total = %d, want 1 (cycle must not double-count)", stats.TotalPartners)
	}

	// The same data, viewed from the other node, also terminates.
	stats2, err := e.ComputeHierarchyStats(context.Background(), u2.ID)
	if err != nil {
		t.Fatalf("stats from u2: %v", err)
	}
	if stats2.TotalPartners != 1 {
		t.Fatalf("total from u2 = %d, want 1", stats2.TotalPartners)
	}
}
