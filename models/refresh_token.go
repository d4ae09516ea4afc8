package models

import (
	"crypto/rand"
	"fmt"
	"time"
)

// RefreshToken backs admin sessions. The ID doubles as the opaque token
// handed to the client.
type RefreshToken struct {
	ID        string    `gorm:"primaryKey;type:char(68)" json:"id"`
	AdminID   int64     `gorm:"index" json:"admin_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func NewRefreshToken(adminID int64, ttlDays int) (*RefreshToken, error) {
	id, err := generateTokenID(32)
	if err != nil {
		return nil, err
	}
	return &RefreshToken{
		ID:        id,
		AdminID:   adminID,
		ExpiresAt: time.Now().Add(time.Duration(ttlDays) * 24 * time.Hour),
		CreatedAt: time.Now(),
	}, nil
}

// RevokedToken is the DB fallback for access-token revocation when Redis is
// not configured. Rows are keyed by the token's jti.
type RevokedToken struct {
	ID        string    `gorm:"primaryKey;type:char(64)" json:"id"`
	RevokedAt time.Time `json:"revoked_at"`
}

func (RevokedToken) TableName() string {
	return "revoked_tokens"
}

func generateTokenID(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("rt_%x", b), nil
}
