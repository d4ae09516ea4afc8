package models

import "time"

// PartnerReferral is a directed edge "profile invited user". ReferredID is
// null for link-generation events where no signup has completed yet.
// Level 1 means a direct referral; deeper levels are derived by walking the
// level-1 edges, never stored redundantly.
type PartnerReferral struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProfileID    uint      `gorm:"not null;index" json:"profile_id"`
	ReferredID   *uint     `gorm:"index" json:"referred_id,omitempty"`
	Level        int       `gorm:"not null;default:1" json:"level"`
	ReferralType string    `gorm:"type:enum('DIRECT','MULTI_LEVEL');default:'DIRECT'" json:"referral_type"`
	CreatedAt    time.Time `json:"created_at"`

	Profile *PartnerProfile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
}

func (PartnerReferral) TableName() string {
	return "partner_referrals"
}
