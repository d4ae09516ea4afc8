package partner

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mag8888/vital-sub000/models"
	"github.com/mag8888/vital-sub000/utils"
)

// Commission schedule and activation threshold. Business constants, not
// configuration: they are printed on the referral links themselves.
const (
	DirectRate      = 0.25
	MultiLevel1Rate = 0.15
	MultiLevel2Rate = 0.05
	MultiLevel3Rate = 0.05

	// ActivationThreshold is the order amount (PZ) that activates the
	// payer's partner profile on purchase.
	ActivationThreshold = 120.0

	activationMonth = 30 * 24 * time.Hour
)

// Engine distributes referral bonuses and keeps partner aggregate fields
// consistent with the transaction ledger. It holds no state of its own;
// every call is a computation over a snapshot of relational state.
type Engine struct {
	dir      Directory
	notifier Notifier
}

// NewEngine builds an engine. notifier may be nil, in which case bonus
// notifications are skipped.
func NewEngine(dir Directory, notifier Notifier) *Engine {
	return &Engine{dir: dir, notifier: notifier}
}

// Directory exposes the engine's storage handle to callers that need reads
// beyond the engine operations (dashboards, admin listings).
func (e *Engine) Directory() Directory {
	return e.dir
}

// BonusAward describes one credited level of a distribution.
type BonusAward struct {
	ProfileID uint    `json:"profile_id"`
	UserID    uint    `json:"user_id"`
	Level     int     `json:"level"`
	Rate      float64 `json:"rate"`
	Amount    float64 `json:"amount"`
}

type chainLink struct {
	profile *models.PartnerProfile
	level   int
	rate    float64
}

// DistributeOrderBonuses walks the payer's inviter chain and credits each
// resolvable level according to the level-1 inviter's program type. A payer
// without an inviter is a no-op, not an error; shorter chains simply receive
// fewer credits. The (profile, payer, orderRef) idempotency key makes the
// whole operation safe to retry.
func (e *Engine) DistributeOrderBonuses(ctx context.Context, payerID uint, orderAmount float64, orderRef string) ([]BonusAward, error) {
	if orderAmount <= 0 {
		return nil, nil
	}

	chain, err := e.resolveChain(ctx, payerID)
	if err != nil {
		return nil, err
	}
	if len(chain) == 0 {
		return nil, nil
	}

	var awards []BonusAward
	for _, link := range chain {
		amount := utils.RoundFloat(orderAmount*link.rate, 2)
		if amount <= 0 {
			continue
		}

		exists, err := e.dir.HasOrderBonus(ctx, link.profile.ID, payerID, orderRef)
		if err != nil {
			return awards, err
		}
		if exists {
			log.Printf("[partner] bonus for order %s already credited to profile %d, skipping", orderRef, link.profile.ID)
			continue
		}

		payer := payerID
		ref := orderRef
		tx := &models.PartnerTransaction{
			ProfileID:   link.profile.ID,
			Type:        models.TxCredit,
			Amount:      amount,
			Description: fmt.Sprintf("Бонус за заказ реферала %d-го уровня (%.2f PZ, пользователь %d, заказ %s)", link.level, orderAmount, payerID, orderRef),
			PayerUserID: &payer,
			OrderRef:    &ref,
		}
		if err := e.dir.CreateTransaction(ctx, tx); err != nil {
			return awards, err
		}
		if err := e.dir.AddUserBalance(ctx, link.profile.UserID, amount); err != nil {
			return awards, err
		}
		if err := e.dir.AddProfileBonus(ctx, link.profile.ID, amount); err != nil {
			return awards, err
		}

		history, err := models.NewUserHistory(link.profile.UserID, models.HistoryReferralBonus, models.ReferralBonusPayload{
			Amount:      amount,
			OrderAmount: orderAmount,
			Level:       link.level,
			PayerUserID: payerID,
			OrderRef:    orderRef,
		})
		if err == nil {
			if err := e.dir.CreateUserHistory(ctx, history); err != nil {
				log.Printf("[partner] history write failed for user %d: %v", link.profile.UserID, err)
			}
		}

		awards = append(awards, BonusAward{
			ProfileID: link.profile.ID,
			UserID:    link.profile.UserID,
			Level:     link.level,
			Rate:      link.rate,
			Amount:    amount,
		})

		e.notifyBonus(ctx, link.profile.UserID, amount, link.rate)
	}

	return awards, nil
}

// resolveChain finds the level-1 inviter of payerID and, for the multi-level
// track, that inviter's inviter and so on up to three levels. Resolution
// stops silently at the first missing link.
func (e *Engine) resolveChain(ctx context.Context, payerID uint) ([]chainLink, error) {
	edge, err := e.dir.FindReferralByReferredUserID(ctx, payerID)
	if err != nil {
		return nil, err
	}
	if edge == nil {
		return nil, nil
	}
	level1, err := e.dir.FindProfileByID(ctx, edge.ProfileID)
	if err != nil {
		return nil, err
	}
	if level1 == nil {
		return nil, nil
	}

	if level1.ProgramType == models.ProgramDirect {
		return []chainLink{{profile: level1, level: 1, rate: DirectRate}}, nil
	}

	chain := []chainLink{{profile: level1, level: 1, rate: MultiLevel1Rate}}
	rates := []float64{MultiLevel2Rate, MultiLevel3Rate}
	current := level1
	for i, rate := range rates {
		upEdge, err := e.dir.FindReferralByReferredUserID(ctx, current.UserID)
		if err != nil {
			return nil, err
		}
		if upEdge == nil {
			break
		}
		up, err := e.dir.FindProfileByID(ctx, upEdge.ProfileID)
		if err != nil {
			return nil, err
		}
		if up == nil {
			break
		}
		chain = append(chain, chainLink{profile: up, level: i + 2, rate: rate})
		current = up
	}
	return chain, nil
}

func (e *Engine) notifyBonus(ctx context.Context, userID uint, amount, rate float64) {
	if e.notifier == nil {
		return
	}
	user, err := e.dir.FindUser(ctx, userID)
	if err != nil || user == nil {
		log.Printf("[partner] cannot resolve user %d for notification: %v", userID, err)
		return
	}
	text := fmt.Sprintf("🎉 Ваш счет пополнен на сумму %.2f PZ (%.0f%%) от покупки вашего реферала!", amount, rate*100)
	if err := e.notifier.SendMessage(user.TelegramID, text); err != nil {
		log.Printf("[partner] notification to user %d failed: %v", userID, err)
	}
}

// ActivateOnQualifyingPurchase activates the payer's partner profile when
// the order amount reaches the threshold. The profile is created inactive
// first if the payer never had one. Commission distribution is unaffected:
// it runs against the payer's existing inviter chain.
func (e *Engine) ActivateOnQualifyingPurchase(ctx context.Context, payerID uint, orderAmount float64) error {
	if orderAmount < ActivationThreshold {
		return nil
	}
	profile, err := e.GetOrCreateProfile(ctx, payerID, models.ProgramDirect)
	if err != nil {
		return err
	}
	if profile.ActiveNow(time.Now()) {
		return nil
	}
	return e.activate(ctx, profile, models.ActivationPurchase, 1, fmt.Sprintf("Покупка на %.2f PZ", orderAmount), nil)
}

// ActivatePartner activates a profile by admin action for the given number
// of months.
func (e *Engine) ActivatePartner(ctx context.Context, userID uint, months int, reason string, adminID *int64) error {
	profile, err := e.dir.FindProfileByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if profile == nil {
		return ErrNotFound
	}
	if reason == "" {
		reason = "Активация администратором"
	}
	return e.activate(ctx, profile, models.ActivationAdmin, months, reason, adminID)
}

func (e *Engine) activate(ctx context.Context, profile *models.PartnerProfile, source string, months int, reason string, adminID *int64) error {
	if months < 1 {
		months = 1
	}
	now := time.Now()
	expires := now.Add(time.Duration(months) * activationMonth)

	src := source
	if err := e.dir.CreateActivation(ctx, &models.PartnerActivation{
		ProfileID: profile.ID,
		Action:    "ACTIVATED",
		Source:    &src,
		Reason:    reason,
		ExpiresAt: &expires,
		AdminID:   adminID,
	}); err != nil {
		return err
	}

	profile.IsActive = true
	profile.ActivatedAt = &now
	profile.ExpiresAt = &expires
	profile.ActivationSource = &src
	return e.dir.SaveProfile(ctx, profile)
}

// DeactivatePartner switches a profile off and records the reason.
func (e *Engine) DeactivatePartner(ctx context.Context, userID uint, reason string, adminID *int64) error {
	profile, err := e.dir.FindProfileByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if profile == nil {
		return ErrNotFound
	}
	if reason == "" {
		reason = "Деактивация"
	}
	if err := e.dir.CreateActivation(ctx, &models.PartnerActivation{
		ProfileID: profile.ID,
		Action:    "DEACTIVATED",
		Source:    profile.ActivationSource,
		Reason:    reason,
		ExpiresAt: profile.ExpiresAt,
		AdminID:   adminID,
	}); err != nil {
		return err
	}
	profile.IsActive = false
	return e.dir.SaveProfile(ctx, profile)
}

// GetOrCreateProfile returns the user's partner profile, creating an
// inactive one with a fresh referral code on first use.
func (e *Engine) GetOrCreateProfile(ctx context.Context, userID uint, programType string) (*models.PartnerProfile, error) {
	existing, err := e.dir.FindProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	if programType != models.ProgramDirect && programType != models.ProgramMultiLevel {
		programType = models.ProgramDirect
	}
	code, err := e.freeReferralCode(ctx)
	if err != nil {
		return nil, err
	}
	profile := &models.PartnerProfile{
		UserID:       userID,
		ProgramType:  programType,
		ReferralCode: code,
	}
	if err := e.dir.CreateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (e *Engine) freeReferralCode(ctx context.Context) (string, error) {
	for i := 0; i < 10; i++ {
		code, err := generateReferralCode()
		if err != nil {
			return "", err
		}
		taken, err := e.dir.FindProfileByReferralCode(ctx, code)
		if err != nil {
			return "", err
		}
		if taken == nil {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not allocate a free referral code")
}

func generateReferralCode() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "PW" + strings.ToUpper(fmt.Sprintf("%x", b)), nil
}

// ReferralLink builds the bot deep link for a referral code. The prefix
// carries the commission track chosen at link-generation time.
func ReferralLink(botUsername, code, programType string) string {
	prefix := "ref_direct"
	if programType == models.ProgramMultiLevel {
		prefix = "ref_multi"
	}
	return fmt.Sprintf("https://t.me/%s?start=%s_%s", botUsername, prefix, code)
}

// ProfileLink is the single deep link a profile hands out. The track is the
// profile's own program type; payouts ignore any other track, so no other
// link is ever issued.
func ProfileLink(botUsername string, p *models.PartnerProfile) string {
	return ReferralLink(botUsername, p.ReferralCode, p.ProgramType)
}

// RegisterReferral records that referredUserID signed up through the given
// referral code. Existing edges for the user are left alone so a second
// /start cannot switch inviters.
func (e *Engine) RegisterReferral(ctx context.Context, code string, referredUserID uint) error {
	profile, err := e.dir.FindProfileByReferralCode(ctx, code)
	if err != nil {
		return err
	}
	if profile == nil {
		return ErrNotFound
	}
	existing, err := e.dir.FindReferralByReferredUserID(ctx, referredUserID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	ref := referredUserID
	return e.dir.CreateReferralEdge(ctx, &models.PartnerReferral{
		ProfileID:    profile.ID,
		ReferredID:   &ref,
		Level:        1,
		ReferralType: profile.ProgramType,
	})
}

// ReassignInviter hard-reassigns the user's inviter: every existing edge for
// the referred user is deleted before the new level-1 edge is written, so
// exactly one edge remains afterwards.
func (e *Engine) ReassignInviter(ctx context.Context, referredUserID uint, newInviterUserID uint) error {
	user, err := e.dir.FindUser(ctx, referredUserID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	profile, err := e.dir.FindProfileByUserID(ctx, newInviterUserID)
	if err != nil {
		return err
	}
	if profile == nil {
		return ErrNotFound
	}
	if err := e.dir.DeleteReferralEdgesForReferredUser(ctx, referredUserID); err != nil {
		return err
	}
	ref := referredUserID
	return e.dir.CreateReferralEdge(ctx, &models.PartnerReferral{
		ProfileID:    profile.ID,
		ReferredID:   &ref,
		Level:        1,
		ReferralType: profile.ProgramType,
	})
}
