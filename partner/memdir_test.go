package partner

import (
	"context"
	"fmt"

	"github.com/mag8888/vital-sub000/models"
)

// memDirectory is an in-memory Directory used by the engine tests. IDs are
// assigned sequentially; lookups mirror the storage contract, returning
// (nil, nil) when nothing matches.
type memDirectory struct {
	users       map[uint]*models.User
	profiles    map[uint]*models.PartnerProfile
	edges       []*models.PartnerReferral
	txs         []*models.PartnerTransaction
	activations []*models.PartnerActivation
	history     []*models.UserHistory
	nextID      uint
}

func newMemDirectory() *memDirectory {
	return &memDirectory{
		users:    make(map[uint]*models.User),
		profiles: make(map[uint]*models.PartnerProfile),
		nextID:   1,
	}
}

func (m *memDirectory) id() uint {
	id := m.nextID
	m.nextID++
	return id
}

func (m *memDirectory) addUser(telegramID int64) *models.User {
	u := &models.User{ID: m.id(), TelegramID: telegramID, FirstName: fmt.Sprintf("user%d", telegramID)}
	m.users[u.ID] = u
	return u
}

func (m *memDirectory) addProfile(userID uint, programType string) *models.PartnerProfile {
	p := &models.PartnerProfile{
		ID:           m.id(),
		UserID:       userID,
		ProgramType:  programType,
		ReferralCode: fmt.Sprintf("PW%06X", m.nextID),
	}
	m.profiles[p.ID] = p
	return p
}

// invite records that the owner of profileID invited userID.
func (m *memDirectory) invite(profileID, userID uint) {
	ref := userID
	m.edges = append(m.edges, &models.PartnerReferral{
		ID:           m.id(),
		ProfileID:    profileID,
		ReferredID:   &ref,
		Level:        1,
		ReferralType: m.profiles[profileID].ProgramType,
	})
}

func (m *memDirectory) FindUser(ctx context.Context, id uint) (*models.User, error) {
	return m.users[id], nil
}

func (m *memDirectory) FindProfileByID(ctx context.Context, id uint) (*models.PartnerProfile, error) {
	return m.profiles[id], nil
}

func (m *memDirectory) FindProfileByUserID(ctx context.Context, userID uint) (*models.PartnerProfile, error) {
	for _, p := range m.profiles {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memDirectory) FindProfileByReferralCode(ctx context.Context, code string) (*models.PartnerProfile, error) {
	for _, p := range m.profiles {
		if p.ReferralCode == code {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memDirectory) CreateProfile(ctx context.Context, p *models.PartnerProfile) error {
	p.ID = m.id()
	m.profiles[p.ID] = p
	return nil
}

func (m *memDirectory) SaveProfile(ctx context.Context, p *models.PartnerProfile) error {
	m.profiles[p.ID] = p
	return nil
}

func (m *memDirectory) FindReferralByReferredUserID(ctx context.Context, userID uint) (*models.PartnerReferral, error) {
	for _, e := range m.edges {
		if e.ReferredID != nil && *e.ReferredID == userID {
			return e, nil
		}
	}
	return nil, nil
}

func (m *memDirectory) ListReferredUserIDs(ctx context.Context, profileID uint) ([]uint, error) {
	var ids []uint
	for _, e := range m.edges {
		if e.ProfileID == profileID && e.ReferredID != nil {
			ids = append(ids, *e.ReferredID)
		}
	}
	return ids, nil
}

func (m *memDirectory) ListReferredUserIDsForUsers(ctx context.Context, userIDs []uint) ([]uint, error) {
	set := make(map[uint]bool, len(userIDs))
	for _, id := range userIDs {
		set[id] = true
	}
	var ids []uint
	for _, e := range m.edges {
		if e.ReferredID == nil {
			continue
		}
		p := m.profiles[e.ProfileID]
		if p != nil && set[p.UserID] {
			ids = append(ids, *e.ReferredID)
		}
	}
	return ids, nil
}

func (m *memDirectory) CountDirectReferrals(ctx context.Context, profileID uint) (int64, error) {
	ids, _ := m.ListReferredUserIDs(ctx, profileID)
	return int64(len(ids)), nil
}

func (m *memDirectory) CreateReferralEdge(ctx context.Context, r *models.PartnerReferral) error {
	r.ID = m.id()
	m.edges = append(m.edges, r)
	return nil
}

func (m *memDirectory) DeleteReferralEdgesForReferredUser(ctx context.Context, referredUserID uint) error {
	kept := m.edges[:0]
	for _, e := range m.edges {
		if e.ReferredID != nil && *e.ReferredID == referredUserID {
			continue
		}
		kept = append(kept, e)
	}
	m.edges = kept
	return nil
}

func (m *memDirectory) CreateTransaction(ctx context.Context, t *models.PartnerTransaction) error {
	if t.PayerUserID != nil && t.OrderRef != nil {
		for _, existing := range m.txs {
			if existing.ProfileID == t.ProfileID &&
				existing.PayerUserID != nil && *existing.PayerUserID == *t.PayerUserID &&
				existing.OrderRef != nil && *existing.OrderRef == *t.OrderRef {
				return fmt.Errorf("duplicate bonus key")
			}
		}
	}
	t.ID = m.id()
	m.txs = append(m.txs, t)
	return nil
}

func (m *memDirectory) ListTransactionsForProfile(ctx context.Context, profileID uint) ([]models.PartnerTransaction, error) {
	var out []models.PartnerTransaction
	for _, t := range m.txs {
		if t.ProfileID == profileID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memDirectory) DeleteTransactions(ctx context.Context, ids []uint) error {
	drop := make(map[uint]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := m.txs[:0]
	for _, t := range m.txs {
		if !drop[t.ID] {
			kept = append(kept, t)
		}
	}
	m.txs = kept
	return nil
}

func (m *memDirectory) HasOrderBonus(ctx context.Context, profileID, payerUserID uint, orderRef string) (bool, error) {
	for _, t := range m.txs {
		if t.ProfileID == profileID && t.Type == models.TxCredit &&
			t.PayerUserID != nil && *t.PayerUserID == payerUserID &&
			t.OrderRef != nil && *t.OrderRef == orderRef {
			return true, nil
		}
	}
	return false, nil
}

func (m *memDirectory) UpdateProfileBalanceFields(ctx context.Context, profileID uint, balance, bonus float64) error {
	p := m.profiles[profileID]
	if p != nil {
		p.Balance = balance
		p.Bonus = bonus
	}
	return nil
}

func (m *memDirectory) AddProfileBonus(ctx context.Context, profileID uint, amount float64) error {
	p := m.profiles[profileID]
	if p != nil {
		p.Balance += amount
		p.Bonus += amount
	}
	return nil
}

func (m *memDirectory) UpdateUserBalance(ctx context.Context, userID uint, balance float64) error {
	u := m.users[userID]
	if u != nil {
		u.Balance = balance
	}
	return nil
}

func (m *memDirectory) AddUserBalance(ctx context.Context, userID uint, amount float64) error {
	u := m.users[userID]
	if u != nil {
		u.Balance += amount
	}
	return nil
}

func (m *memDirectory) CreateActivation(ctx context.Context, a *models.PartnerActivation) error {
	a.ID = m.id()
	m.activations = append(m.activations, a)
	return nil
}

func (m *memDirectory) ListActivations(ctx context.Context, profileID uint) ([]models.PartnerActivation, error) {
	var out []models.PartnerActivation
	for _, a := range m.activations {
		if a.ProfileID == profileID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memDirectory) CreateUserHistory(ctx context.Context, h *models.UserHistory) error {
	h.ID = m.id()
	m.history = append(m.history, h)
	return nil
}
