package models

import "time"

type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:150;not null" json:"title"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	Price       float64   `gorm:"type:decimal(15,2);not null" json:"price"`
	ImageKey    *string   `gorm:"type:varchar(255)" json:"-"`
	Status      string    `gorm:"type:enum('Active','Inactive');default:'Active'" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}
