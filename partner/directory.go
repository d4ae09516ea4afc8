package partner

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mag8888/vital-sub000/models"
)

// Directory is the storage surface the bonus engine runs against. Every
// operation is individually atomic at the storage layer; lookups that find
// nothing return (nil, nil) rather than an error, because a missing edge or
// profile ends chain resolution instead of failing it.
type Directory interface {
	FindUser(ctx context.Context, id uint) (*models.User, error)
	FindProfileByID(ctx context.Context, id uint) (*models.PartnerProfile, error)
	FindProfileByUserID(ctx context.Context, userID uint) (*models.PartnerProfile, error)
	FindProfileByReferralCode(ctx context.Context, code string) (*models.PartnerProfile, error)
	CreateProfile(ctx context.Context, p *models.PartnerProfile) error
	SaveProfile(ctx context.Context, p *models.PartnerProfile) error

	FindReferralByReferredUserID(ctx context.Context, userID uint) (*models.PartnerReferral, error)
	ListReferredUserIDs(ctx context.Context, profileID uint) ([]uint, error)
	ListReferredUserIDsForUsers(ctx context.Context, userIDs []uint) ([]uint, error)
	CountDirectReferrals(ctx context.Context, profileID uint) (int64, error)
	CreateReferralEdge(ctx context.Context, r *models.PartnerReferral) error
	DeleteReferralEdgesForReferredUser(ctx context.Context, referredUserID uint) error

	CreateTransaction(ctx context.Context, t *models.PartnerTransaction) error
	ListTransactionsForProfile(ctx context.Context, profileID uint) ([]models.PartnerTransaction, error)
	DeleteTransactions(ctx context.Context, ids []uint) error
	HasOrderBonus(ctx context.Context, profileID, payerUserID uint, orderRef string) (bool, error)

	UpdateProfileBalanceFields(ctx context.Context, profileID uint, balance, bonus float64) error
	AddProfileBonus(ctx context.Context, profileID uint, amount float64) error
	UpdateUserBalance(ctx context.Context, userID uint, balance float64) error
	AddUserBalance(ctx context.Context, userID uint, amount float64) error

	CreateActivation(ctx context.Context, a *models.PartnerActivation) error
	ListActivations(ctx context.Context, profileID uint) ([]models.PartnerActivation, error)
	CreateUserHistory(ctx context.Context, h *models.UserHistory) error
}

type gormDirectory struct {
	db *gorm.DB
}

// NewDirectory wraps a GORM handle in the Directory interface.
func NewDirectory(db *gorm.DB) Directory {
	return &gormDirectory{db: db}
}

func (d *gormDirectory) FindUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := d.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return &u, nil
}

func (d *gormDirectory) FindProfileByID(ctx context.Context, id uint) (*models.PartnerProfile, error) {
	var p models.PartnerProfile
	if err := d.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find profile %d: %w", id, err)
	}
	return &p, nil
}

func (d *gormDirectory) FindProfileByUserID(ctx context.Context, userID uint) (*models.PartnerProfile, error) {
	var p models.PartnerProfile
	if err := d.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find profile by user %d: %w", userID, err)
	}
	return &p, nil
}

func (d *gormDirectory) FindProfileByReferralCode(ctx context.Context, code string) (*models.PartnerProfile, error) {
	var p models.PartnerProfile
	if err := d.db.WithContext(ctx).Where("referral_code = ?", code).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find profile by code: %w", err)
	}
	return &p, nil
}

func (d *gormDirectory) CreateProfile(ctx context.Context, p *models.PartnerProfile) error {
	if err := d.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (d *gormDirectory) SaveProfile(ctx context.Context, p *models.PartnerProfile) error {
	if err := d.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("save profile %d: %w", p.ID, err)
	}
	return nil
}

func (d *gormDirectory) FindReferralByReferredUserID(ctx context.Context, userID uint) (*models.PartnerReferral, error) {
	var r models.PartnerReferral
	err := d.db.WithContext(ctx).
		Where("referred_id = ? AND level = 1", userID).
		Order("created_at ASC").
		First(&r).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find referral for user %d: %w", userID, err)
	}
	return &r, nil
}

func (d *gormDirectory) ListReferredUserIDs(ctx context.Context, profileID uint) ([]uint, error) {
	var ids []uint
	err := d.db.WithContext(ctx).
		Model(&models.PartnerReferral{}).
		Where("profile_id = ? AND level = 1 AND referred_id IS NOT NULL", profileID).
		Pluck("referred_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list referred users for profile %d: %w", profileID, err)
	}
	return ids, nil
}

func (d *gormDirectory) ListReferredUserIDsForUsers(ctx context.Context, userIDs []uint) ([]uint, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := d.db.WithContext(ctx).
		Model(&models.PartnerReferral{}).
		Joins("JOIN partner_profiles ON partner_profiles.id = partner_referrals.profile_id").
		Where("partner_profiles.user_id IN ? AND partner_referrals.level = 1 AND partner_referrals.referred_id IS NOT NULL", userIDs).
		Pluck("partner_referrals.referred_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list referred users for %d inviters: %w", len(userIDs), err)
	}
	return ids, nil
}

func (d *gormDirectory) CountDirectReferrals(ctx context.Context, profileID uint) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).
		Model(&models.PartnerReferral{}).
		Where("profile_id = ? AND level = 1 AND referred_id IS NOT NULL", profileID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count referrals for profile %d: %w", profileID, err)
	}
	return n, nil
}

func (d *gormDirectory) CreateReferralEdge(ctx context.Context, r *models.PartnerReferral) error {
	if err := d.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("create referral edge: %w", err)
	}
	return nil
}

func (d *gormDirectory) DeleteReferralEdgesForReferredUser(ctx context.Context, referredUserID uint) error {
	err := d.db.WithContext(ctx).
		Where("referred_id = ?", referredUserID).
		Delete(&models.PartnerReferral{}).Error
	if err != nil {
		return fmt.Errorf("delete referral edges for user %d: %w", referredUserID, err)
	}
	return nil
}

func (d *gormDirectory) CreateTransaction(ctx context.Context, t *models.PartnerTransaction) error {
	if err := d.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (d *gormDirectory) ListTransactionsForProfile(ctx context.Context, profileID uint) ([]models.PartnerTransaction, error) {
	var txs []models.PartnerTransaction
	err := d.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at ASC, id ASC").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("list transactions for profile %d: %w", profileID, err)
	}
	return txs, nil
}

func (d *gormDirectory) DeleteTransactions(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := d.db.WithContext(ctx).Delete(&models.PartnerTransaction{}, ids).Error; err != nil {
		return fmt.Errorf("delete %d transactions: %w", len(ids), err)
	}
	return nil
}

func (d *gormDirectory) HasOrderBonus(ctx context.Context, profileID, payerUserID uint, orderRef string) (bool, error) {
	var n int64
	err := d.db.WithContext(ctx).
		Model(&models.PartnerTransaction{}).
		Where("profile_id = ? AND payer_user_id = ? AND order_ref = ?", profileID, payerUserID, orderRef).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check order bonus: %w", err)
	}
	return n > 0, nil
}

func (d *gormDirectory) UpdateProfileBalanceFields(ctx context.Context, profileID uint, balance, bonus float64) error {
	err := d.db.WithContext(ctx).
		Model(&models.PartnerProfile{}).
		Where("id = ?", profileID).
		Updates(map[string]interface{}{"balance": balance, "bonus": bonus}).Error
	if err != nil {
		return fmt.Errorf("update profile %d balance fields: %w", profileID, err)
	}
	return nil
}

func (d *gormDirectory) AddProfileBonus(ctx context.Context, profileID uint, amount float64) error {
	err := d.db.WithContext(ctx).
		Model(&models.PartnerProfile{}).
		Where("id = ?", profileID).
		Updates(map[string]interface{}{
			"balance": gorm.Expr("balance + ?", amount),
			"bonus":   gorm.Expr("bonus + ?", amount),
		}).Error
	if err != nil {
		return fmt.Errorf("add bonus to profile %d: %w", profileID, err)
	}
	return nil
}

func (d *gormDirectory) UpdateUserBalance(ctx context.Context, userID uint, balance float64) error {
	err := d.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("balance", balance).Error
	if err != nil {
		return fmt.Errorf("update user %d balance: %w", userID, err)
	}
	return nil
}

func (d *gormDirectory) AddUserBalance(ctx context.Context, userID uint, amount float64) error {
	err := d.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("balance", gorm.Expr("balance + ?", amount)).Error
	if err != nil {
		return fmt.Errorf("add balance to user %d: %w", userID, err)
	}
	return nil
}

func (d *gormDirectory) CreateActivation(ctx context.Context, a *models.PartnerActivation) error {
	if err := d.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("create activation record: %w", err)
	}
	return nil
}

func (d *gormDirectory) ListActivations(ctx context.Context, profileID uint) ([]models.PartnerActivation, error) {
	var rows []models.PartnerActivation
	err := d.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list activations for profile %d: %w", profileID, err)
	}
	return rows, nil
}

func (d *gormDirectory) CreateUserHistory(ctx context.Context, h *models.UserHistory) error {
	if err := d.db.WithContext(ctx).Create(h).Error; err != nil {
		return fmt.Errorf("create user history: %w", err)
	}
	return nil
}
