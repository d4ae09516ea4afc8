package models

import "time"

// Partner program tracks. The track is chosen when the referral link is
// generated and decides the commission schedule for the whole chain.
const (
	ProgramDirect     = "DIRECT"      // single level, 25%
	ProgramMultiLevel = "MULTI_LEVEL" // three levels, 15%/5%/5%
)

// Activation sources.
const (
	ActivationAdmin    = "ADMIN"
	ActivationPurchase = "PURCHASE"
)

type PartnerProfile struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	ProgramType      string     `gorm:"type:enum('DIRECT','MULTI_LEVEL');default:'DIRECT'" json:"program_type"`
	ReferralCode     string     `gorm:"size:20;uniqueIndex;not null" json:"referral_code"`
	Balance          float64    `gorm:"type:decimal(15,2);default:0" json:"balance"`
	Bonus            float64    `gorm:"type:decimal(15,2);default:0" json:"bonus"`
	IsActive         bool       `gorm:"default:false" json:"is_active"`
	ActivatedAt      *time.Time `json:"activated_at,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	ActivationSource *string    `gorm:"type:enum('ADMIN','PURCHASE')" json:"activation_source,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"-"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (PartnerProfile) TableName() string {
	return "partner_profiles"
}

// ActiveNow reports whether the profile is active and not past its expiry.
// Expired profiles are not deactivated here; that happens explicitly on the
// partner dashboard read path.
func (p *PartnerProfile) ActiveNow(now time.Time) bool {
	if !p.IsActive {
		return false
	}
	if p.ExpiresAt != nil && now.After(*p.ExpiresAt) {
		return false
	}
	return true
}
