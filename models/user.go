package models

import "time"

type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TelegramID int64     `gorm:"column:telegram_id;uniqueIndex;not null" json:"telegram_id"`
	Username   *string   `gorm:"size:64" json:"username,omitempty"`
	FirstName  string    `gorm:"size:100" json:"first_name"`
	Balance    float64   `gorm:"type:decimal(15,2);default:0" json:"balance"`
	Address    *string   `gorm:"type:varchar(255)" json:"address,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"-"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName returns the best human-readable name for bot messages and admin listings.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != nil && *u.Username != "" {
		return "@" + *u.Username
	}
	return "Пользователь"
}
