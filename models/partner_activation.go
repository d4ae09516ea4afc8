package models

import "time"

// PartnerActivation is an append-only history of activation state changes.
type PartnerActivation struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	ProfileID uint       `gorm:"not null;index" json:"profile_id"`
	Action    string     `gorm:"type:enum('ACTIVATED','DEACTIVATED');not null" json:"action"`
	Source    *string    `gorm:"type:enum('ADMIN','PURCHASE')" json:"source,omitempty"`
	Reason    string     `gorm:"size:255" json:"reason"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	AdminID   *int64     `json:"admin_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (PartnerActivation) TableName() string {
	return "partner_activations"
}
