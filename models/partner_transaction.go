package models

import "time"

// Ledger entry types. Amount is always non-negative; the sign is carried by
// the type.
const (
	TxCredit = "CREDIT"
	TxDebit  = "DEBIT"
)

// PartnerTransaction is an immutable ledger entry against a partner profile.
// PayerUserID and OrderRef form the idempotency key for order bonuses: at
// most one credit per (profile, payer, order). Manual adjustments leave both
// nil and are exempt from the unique constraint (MySQL ignores NULLs in
// unique indexes).
type PartnerTransaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProfileID   uint      `gorm:"not null;index:idx_profile_created;uniqueIndex:idx_bonus_key" json:"profile_id"`
	Type        string    `gorm:"type:enum('CREDIT','DEBIT');not null" json:"type"`
	Amount      float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	Description string    `gorm:"type:text;not null" json:"description"`
	PayerUserID *uint     `gorm:"uniqueIndex:idx_bonus_key" json:"payer_user_id,omitempty"`
	OrderRef    *string   `gorm:"type:varchar(64);uniqueIndex:idx_bonus_key" json:"order_ref,omitempty"`
	CreatedAt   time.Time `gorm:"index:idx_profile_created" json:"created_at"`
}

func (PartnerTransaction) TableName() string {
	return "partner_transactions"
}

// Signed returns the amount with its sign applied.
func (t *PartnerTransaction) Signed() float64 {
	if t.Type == TxDebit {
		return -t.Amount
	}
	return t.Amount
}
