package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// History actions. Each action has exactly one payload shape; arbitrary
// payloads are rejected at write time.
const (
	HistoryReferralBonus = "REFERRAL_BONUS"
	HistoryBalanceAdjust = "BALANCE_ADJUST"
	HistoryOrderPaid     = "ORDER_PAID"
)

type ReferralBonusPayload struct {
	Amount      float64 `json:"amount"`
	OrderAmount float64 `json:"order_amount"`
	Level       int     `json:"level"`
	PayerUserID uint    `json:"payer_user_id"`
	OrderRef    string  `json:"order_ref"`
}

type BalanceAdjustPayload struct {
	Amount  float64 `json:"amount"`
	Reason  string  `json:"reason"`
	AdminID int64   `json:"admin_id"`
}

type OrderPaidPayload struct {
	OrderRef string  `json:"order_ref"`
	Amount   float64 `json:"amount"`
}

type UserHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Action    string    `gorm:"size:50;not null" json:"action"`
	Payload   string    `gorm:"type:text;not null" json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

func (UserHistory) TableName() string {
	return "user_histories"
}

// NewUserHistory builds a history row from a typed payload. The payload type
// must match the action.
func NewUserHistory(userID uint, action string, payload interface{}) (*UserHistory, error) {
	ok := false
	switch action {
	case HistoryReferralBonus:
		_, ok = payload.(ReferralBonusPayload)
	case HistoryBalanceAdjust:
		_, ok = payload.(BalanceAdjustPayload)
	case HistoryOrderPaid:
		_, ok = payload.(OrderPaidPayload)
	default:
		return nil, fmt.Errorf("unknown history action %q", action)
	}
	if !ok {
		return nil, fmt.Errorf("payload type does not match action %q", action)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &UserHistory{UserID: userID, Action: action, Payload: string(raw)}, nil
}
