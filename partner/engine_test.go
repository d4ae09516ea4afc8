package partner

import (
	"context"
	"testing"

	"github.com/mag8888/vital-sub000/models"
)

var _ Directory = (*memDirectory)(nil)

func TestDistributeDirectBonus(t *testing.T) {
	dir := newMemDirectory()
	inviter := dir.addUser(100)
	buyer := dir.addUser(200)
	profile := dir.addProfile(inviter.ID, models.ProgramDirect)
	dir.invite(profile.ID, buyer.ID)

	e := NewEngine(dir, nil)
	awards, err := e.DistributeOrderBonuses(context.Background(), buyer.ID, 100.0, "VB-1")
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if len(awards) != 1 {
		t.Fatalf("expected 1 award, got %d", len(awards))
	}
	if awards[0].Amount != 25.00 {
		t.Fatalf("expected 25.00, got %.2f", awards[0].Amount)
	}
	if awards[0].Level != 1 {
		t.Fatalf("expected level 1, got %d", awards[0].Level)
	}
	if inviter.Balance != 25.00 {
		t.Fatalf("inviter balance = %.2f, want 25.00", inviter.Balance)
	}
	if profile.Balance != 25.00 || profile.Bonus != 25.00 {
		t.Fatalf("profile balance/bonus = %.2f/%.2f, want 25.00/25.00", profile.Balance, profile.Bonus)
	}
}

func TestDistributeMultiLevelChain(t *testing.T) {
	dir := newMemDirectory()
	top := dir.addUser(1)
	mid := dir.addUser(2)
	low := dir.addUser(3)
	buyer := dir.addUser(4)

	topProfile := dir.addProfile(top.ID, models.ProgramMultiLevel)
	midProfile := dir.addProfile(mid.ID, models.ProgramMultiLevel)
	lowProfile := dir.addProfile(low.ID, models.ProgramMultiLevel)

	dir.invite(topProfile.ID, mid.ID)
	dir.invite(midProfile.ID, low.ID)
	dir.invite(lowProfile.ID, buyer.ID)

	e := NewEngine(dir, nil)
	awards, err := e.DistributeOrderBonuses(context.Background(), buyer.ID, 100.0, "VB-2")
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if len(awards) != 3 {
		t.Fatalf("expected 3 awards, got %d", len(awards))
	}

	want := map[int]float64{1: 15.00, 2: 5.00, 3: 5.00}
	for _, a := range awards {
		if a.Amount != want[a.Level] {
			t.Fatalf("level %d amount = %.2f, want %.2f", a.Level, a.Amount, want[a.Level])
		}
	}
	if low.Balance != 15.00 {
		t.Fatalf("level-1 inviter balance = %.2f, want 15.00", low.Balance)
	}
	if mid.Balance != 5.00 || top.Balance != 5.00 {
		t.Fatalf("upper balances = %.2f/%.2f, want 5.00/5.00", mid.Balance, top.Balance)
	}
}

func TestDistributeShortChain(t *testing.T) {
	dir := newMemDirectory()
	inviter := dir.addUser(1)
	buyer := dir.addUser(2)
	profile := dir.addProfile(inviter.ID, models.ProgramMultiLevel)
	dir.invite(profile.ID, buyer.ID)

	e := NewEngine(dir, nil)
	awards, err := e.DistributeOrderBonuses(context.Background(), buyer.ID, 100.0, "VB-3")
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if len(awards) != 1 {
		t.Fatalf("expected 1 award for a 1-deep chain, got %d", len(awards))
	}
	if awards[0].Amount != 15.00 {
		t.Fatalf("expected 15.00, got %.2f", awards[0].Amount)
	}
}

func TestDistributeWithoutInviter(t *testing.T) {
	dir := newMemDirectory()
	buyer := dir.addUser(1)

	e := NewEngine(dir, nil)
	awards, err := e.DistributeOrderBonuses(context.Background(), buyer.ID, 100.0, "VB-4")
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if len(awards) != 0 {
		t.Fatalf("expected no awards, got %d", len(awards))
	}
	if len(dir.txs) != 0 {
		t.Fatalf("expected no transactions, got %d", len(dir.txs))
	}
}

func TestDistributeIsIdempotent(t *testing.T) {
	dir := newMemDirectory()
	inviter := dir.addUser(1)
	buyer := dir.addUser(2)
	profile := dir.addProfile(inviter.ID, models.ProgramDirect)
	dir.invite(profile.ID, buyer.ID)

	e := NewEngine(dir, nil)
	ctx := context.Background()
	if _, err := e.DistributeOrderBonuses(ctx, buyer.ID, 100.0, "VB-5"); err != nil {
		t.Fatalf("first distribute: %v", err)
	}
	awards, err := e.DistributeOrderBonuses(ctx, buyer.ID, 100.0, "VB-5")
	if err != nil {
		t.Fatalf("retry distribute: %v", err)
	}
	if len(awards) != 0 {
		t.Fatalf("retry credited %d awards, want 0", len(awards))
	}
	if len(dir.txs) != 1 {
		t.Fatalf("ledger has %d rows, want 1", len(dir.txs))
	}
	if inviter.Balance != 25.00 {
		t.Fatalf("inviter balance = %.2f, want 25.00", inviter.Balance)
	}

	// A different order credits again.
	if _, err := e.DistributeOrderBonuses(ctx, buyer.ID, 100.0, "VB-6"); err != nil {
		t.Fatalf("second order: %v", err)
	}
	if inviter.Balance != 50.00 {
		t.Fatalf("inviter balance = %.2f, want 50.00", inviter.Balance)
	}
}

func TestDistributeZeroAmount(t *testing.T) {
	dir := newMemDirectory()
	inviter := dir.addUser(1)
	buyer := dir.addUser(2)
	profile := dir.addProfile(inviter.ID, models.ProgramDirect)
	dir.invite(profile.ID, buyer.ID)

	e := NewEngine(dir, nil)
	awards, err := e.DistributeOrderBonuses(context.Background(), buyer.ID, 0, "VB-7")
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if awards != nil {
		t.Fatalf("expected nil awards for zero amount")
	}
}

func TestRecalculateBonuses(t *testing.T) {
	dir := newMemDirectory()
	user := dir.addUser(1)
	profile := dir.addProfile(user.ID, models.ProgramDirect)

	ctx := context.Background()
	for _, tx := range []struct {
		typ    string
		amount float64
	}{
		{models.TxCredit, 10},
		{models.TxCredit, 5},
		{models.TxDebit, 3},
	} {
		if err := dir.CreateTransaction(ctx, &models.PartnerTransaction{
			ProfileID:   profile.ID,
			Type:        tx.typ,
			Amount:      tx.amount,
			Description: "manual",
		}); err != nil {
			t.Fatalf("seed transaction: %v", err)
		}
	}

	e := NewEngine(dir, nil)
	total, err := e.RecalculateBonuses(ctx, profile.ID)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if total != 12.00 {
		t.Fatalf("total = %.2f, want 12.00", total)
	}
	if profile.Balance != 12.00 || profile.Bonus != 12.00 {
		t.Fatalf("profile = %.2f/%.2f, want 12.00/12.00", profile.Balance, profile.Bonus)
	}
	if user.Balance != 12.00 {
		t.Fatalf("user balance = %.2f, want 12.00", user.Balance)
	}

	// Running it again changes nothing.
	again, err := e.RecalculateBonuses(ctx, profile.ID)
	if err != nil {
		t.Fatalf("second recalculate: %v", err)
	}
	if again != 12.00 || profile.Balance != 12.00 {
		t.Fatalf("recalculation is not idempotent: %.2f / %.2f", again, profile.Balance)
	}
}

func TestRecalculateMissingProfile(t *testing.T) {
	dir := newMemDirectory()
	e := NewEngine(dir, nil)
	if _, err := e.RecalculateBonuses(context.Background(), 42); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCleanupDuplicateBonuses(t *testing.T) {
	dir := newMemDirectory()
	user := dir.addUser(1)
	profile := dir.addProfile(user.ID, models.ProgramDirect)

	payer := uint(99)
	ref := "VB-9"
	// Bypass CreateTransaction so the fake's unique check does not reject the
	// duplicate, mirroring legacy rows written before the key existed.
	for i := 0; i < 2; i++ {
		dir.txs = append(dir.txs, &models.PartnerTransaction{
			ID: dir.id(), ProfileID: profile.ID, Type: models.TxCredit,
			Amount: 25, Description: "bonus", PayerUserID: &payer, OrderRef: &ref,
		})
	}
	// A keyless manual adjustment must survive cleanup.
	dir.txs = append(dir.txs, &models.PartnerTransaction{
		ID: dir.id(), ProfileID: profile.ID, Type: models.TxCredit,
		Amount: 7, Description: "manual",
	})

	e := NewEngine(dir, nil)
	removed, err := e.CleanupDuplicateBonuses(context.Background(), profile.ID)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if len(dir.txs) != 2 {
		t.Fatalf("ledger has %d rows, want 2", len(dir.txs))
	}
	if profile.Balance != 32.00 {
		t.Fatalf("profile balance = %.2f, want 32.00", profile.Balance)
	}
}

func TestReassignInviter(t *testing.T) {
	dir := newMemDirectory()
	oldInviter := dir.addUser(1)
	newInviter := dir.addUser(2)
	referred := dir.addUser(3)

	oldProfile := dir.addProfile(oldInviter.ID, models.ProgramDirect)
	newProfile := dir.addProfile(newInviter.ID, models.ProgramMultiLevel)
	dir.invite(oldProfile.ID, referred.ID)

	e := NewEngine(dir, nil)
	ctx := context.Background()
	if err := e.ReassignInviter(ctx, referred.ID, newInviter.ID); err != nil {
		t.Fatalf("reassign: %v", err)
	}

	var edges []*models.PartnerReferral
	for _, edge := range dir.edges {
		if edge.ReferredID != nil && *edge.ReferredID == referred.ID {
			edges = append(edges, edge)
		}
	}
	if len(edges) != 1 {
		t.Fatalf("expected exactly 1 edge after reassign, got %d", len(edges))
	}
	if edges[0].ProfileID != newProfile.ID {
		t.Fatalf("edge points at profile %d, want %d", edges[0].ProfileID, newProfile.ID)
	}
	if edges[0].Level != 1 {
		t.Fatalf("edge level = %d, want 1", edges[0].Level)
	}

	// Future bonuses follow the new inviter's track.
	awards, err := e.DistributeOrderBonuses(ctx, referred.ID, 100.0, "VB-10")
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if len(awards) != 1 || awards[0].Amount != 15.00 {
		t.Fatalf("expected single 15.00 award via new inviter, got %+v", awards)
	}
}

func TestReassignInviterUnknownTargets(t *testing.T) {
	dir := newMemDirectory()
	user := dir.addUser(1)
	dir.addProfile(user.ID, models.ProgramDirect)

	e := NewEngine(dir, nil)
	ctx := context.Background()
	if err := e.ReassignInviter(ctx, 999, user.ID); err != ErrNotFound {
		t.Fatalf("unknown referred user: expected ErrNotFound, got %v", err)
	}
	if err := e.ReassignInviter(ctx, user.ID, 999); err != ErrNotFound {
		t.Fatalf("inviter without profile: expected ErrNotFound, got %v", err)
	}
}

func TestActivateOnQualifyingPurchase(t *testing.T) {
	dir := newMemDirectory()
	buyer := dir.addUser(1)
	e := NewEngine(dir, nil)
	ctx := context.Background()

	// Just below the threshold: nothing happens.
	if err := e.ActivateOnQualifyingPurchase(ctx, buyer.ID, 119.99); err != nil {
		t.Fatalf("below threshold: %v", err)
	}
	if p, _ := dir.FindProfileByUserID(ctx, buyer.ID); p != nil {
		t.Fatalf("profile should not exist below the threshold")
	}

	// At the threshold: profile created and activated.
	if err := e.ActivateOnQualifyingPurchase(ctx, buyer.ID, 120.00); err != nil {
		t.Fatalf("at threshold: %v", err)
	}
	p, _ := dir.FindProfileByUserID(ctx, buyer.ID)
	if p == nil || !p.IsActive {
		t.Fatalf("profile should be active after a qualifying purchase")
	}
	if p.ActivationSource == nil || *p.ActivationSource != models.ActivationPurchase {
		t.Fatalf("activation source should be PURCHASE")
	}
	if p.ExpiresAt == nil {
		t.Fatalf("activation should set an expiry")
	}
	if len(dir.activations) != 1 || dir.activations[0].Action != "ACTIVATED" {
		t.Fatalf("expected one ACTIVATED history row, got %+v", dir.activations)
	}
	if dir.activations[0].Reason != "Покупка на 120.00 PZ" {
		t.Fatalf("reason = %q, must carry the order amount", dir.activations[0].Reason)
	}

	// Already active: a second qualifying purchase is a no-op.
	if err := e.ActivateOnQualifyingPurchase(ctx, buyer.ID, 200.00); err != nil {
		t.Fatalf("repeat purchase: %v", err)
	}
	if len(dir.activations) != 1 {
		t.Fatalf("repeat purchase must not add history rows, got %d", len(dir.activations))
	}

	// The reason reflects the actual amount, not the threshold.
	other := dir.addUser(2)
	if err := e.ActivateOnQualifyingPurchase(ctx, other.ID, 157.30); err != nil {
		t.Fatalf("second buyer: %v", err)
	}
	if len(dir.activations) != 2 || dir.activations[1].Reason != "Покупка на 157.30 PZ" {
		t.Fatalf("second activation reason = %+v", dir.activations)
	}
}

// Completing an order by hand runs the same side effects as balance payment
// and stays safe when the payment path already credited the order.
func TestCompletedTransitionSideEffects(t *testing.T) {
	dir := newMemDirectory()
	inviter := dir.addUser(1)
	inviterProfile := dir.addProfile(inviter.ID, models.ProgramMultiLevel)
	buyer := dir.addUser(2)
	dir.invite(inviterProfile.ID, buyer.ID)

	e := NewEngine(dir, nil)
	ctx := context.Background()

	awards, err := e.DistributeOrderBonuses(ctx, buyer.ID, 150.00, "VB-1001")
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if len(awards) != 1 || awards[0].Amount != 22.50 {
		t.Fatalf("awards = %+v, want one 22.50 credit", awards)
	}
	if err := e.ActivateOnQualifyingPurchase(ctx, buyer.ID, 150.00); err != nil {
		t.Fatalf("activate: %v", err)
	}
	p, _ := dir.FindProfileByUserID(ctx, buyer.ID)
	if p == nil || !p.IsActive {
		t.Fatalf("buyer should be an active partner after a qualifying order")
	}

	// A later repeated flip of the same order changes nothing.
	again, err := e.DistributeOrderBonuses(ctx, buyer.ID, 150.00, "VB-1001")
	if err != nil {
		t.Fatalf("repeat distribute: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("repeat flip must not credit again, got %+v", again)
	}
	if len(dir.txs) != 1 {
		t.Fatalf("ledger must hold one row, got %d", len(dir.txs))
	}
	if err := e.ActivateOnQualifyingPurchase(ctx, buyer.ID, 150.00); err != nil {
		t.Fatalf("repeat activate: %v", err)
	}
	if len(dir.activations) != 1 {
		t.Fatalf("repeat flip must not re-activate, got %d rows", len(dir.activations))
	}
}

func TestActivateDeactivatePartner(t *testing.T) {
	dir := newMemDirectory()
	user := dir.addUser(1)
	profile := dir.addProfile(user.ID, models.ProgramDirect)

	e := NewEngine(dir, nil)
	ctx := context.Background()
	adminID := int64(7)

	if err := e.ActivatePartner(ctx, user.ID, 2, "", &adminID); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !profile.IsActive {
		t.Fatalf("profile should be active")
	}
	if profile.ActivationSource == nil || *profile.ActivationSource != models.ActivationAdmin {
		t.Fatalf("activation source should be ADMIN")
	}

	if err := e.DeactivatePartner(ctx, user.ID, "violation", &adminID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if profile.IsActive {
		t.Fatalf("profile should be inactive")
	}
	if len(dir.activations) != 2 {
		t.Fatalf("expected 2 history rows, got %d", len(dir.activations))
	}
	if dir.activations[1].Action != "DEACTIVATED" {
		t.Fatalf("second row action = %s, want DEACTIVATED", dir.activations[1].Action)
	}

	if err := e.ActivatePartner(ctx, 999, 1, "", &adminID); err != ErrNotFound {
		t.Fatalf("unknown user: expected ErrNotFound, got %v", err)
	}
}

func TestRegisterReferral(t *testing.T) {
	dir := newMemDirectory()
	inviter := dir.addUser(1)
	other := dir.addUser(2)
	referred := dir.addUser(3)
	profile := dir.addProfile(inviter.ID, models.ProgramDirect)
	otherProfile := dir.addProfile(other.ID, models.ProgramMultiLevel)

	e := NewEngine(dir, nil)
	ctx := context.Background()
	if err := e.RegisterReferral(ctx, profile.ReferralCode, referred.ID); err != nil {
		t.Fatalf("register: %v", err)
	}
	// A second /start through a different code must not switch the inviter.
	if err := e.RegisterReferral(ctx, otherProfile.ReferralCode, referred.ID); err != nil {
		t.Fatalf("repeat register: %v", err)
	}

	edge, _ := dir.FindReferralByReferredUserID(ctx, referred.ID)
	if edge == nil || edge.ProfileID != profile.ID {
		t.Fatalf("edge should still point at the first inviter")
	}
	if len(dir.edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(dir.edges))
	}

	if err := e.RegisterReferral(ctx, "PWNOPE1", referred.ID); err != ErrNotFound {
		t.Fatalf("unknown code: expected ErrNotFound, got %v", err)
	}
}

func TestReferralLink(t *testing.T) {
	direct := ReferralLink("vital_bot", "PW1A2B3C", models.ProgramDirect)
	if direct != "https://t.me/vital_bot?start=ref_direct_PW1A2B3C" {
		t.Fatalf("direct link = %s", direct)
	}
	multi := ReferralLink("vital_bot", "PW1A2B3C", models.ProgramMultiLevel)
	if multi != "https://t.me/vital_bot?start=ref_multi_PW1A2B3C" {
		t.Fatalf("multi link = %s", multi)
	}
}

// The link a profile hands out always carries its own payout track.
func TestProfileLinkFollowsProgramType(t *testing.T) {
	dir := newMemDirectory()
	user := dir.addUser(1)
	profile := dir.addProfile(user.ID, models.ProgramDirect)

	link := ProfileLink("vital_bot", profile)
	want := "https://t.me/vital_bot?start=ref_direct_" + profile.ReferralCode
	if link != want {
		t.Fatalf("link = %s, want %s", link, want)
	}
}

func TestGetOrCreateProfileCodeFormat(t *testing.T) {
	dir := newMemDirectory()
	user := dir.addUser(1)

	e := NewEngine(dir, nil)
	profile, err := e.GetOrCreateProfile(context.Background(), user.ID, models.ProgramMultiLevel)
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if len(profile.ReferralCode) != 8 || profile.ReferralCode[:2] != "PW" {
		t.Fatalf("referral code %q should be PW plus 6 hex chars", profile.ReferralCode)
	}
	for _, c := range profile.ReferralCode[2:] {
		if !(c >= '0' && c <= '9' || c >= 'A' && c <= 'F') {
			t.Fatalf("referral code %q contains non-hex char %q", profile.ReferralCode, c)
		}
	}

	again, err := e.GetOrCreateProfile(context.Background(), user.ID, models.ProgramDirect)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if again.ID != profile.ID {
		t.Fatalf("second call must return the existing profile")
	}
	if again.ProgramType != models.ProgramMultiLevel {
		t.Fatalf("existing program type must not change")
	}
}
