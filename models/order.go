package models

import (
	"encoding/json"
	"errors"
	"time"
)

// Order statuses.
const (
	OrderNew        = "New"
	OrderProcessing = "Processing"
	OrderCompleted  = "Completed"
	OrderCancelled  = "Cancelled"
)

// OrderItem is one line of an order. Items are validated at the boundary and
// stored serialized; the order total is always derived from them, never
// stored.
type OrderItem struct {
	ProductID uint    `json:"product_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

func (i *OrderItem) Validate() error {
	if i.Title == "" {
		return errors.New("item title is required")
	}
	if i.Price < 0 {
		return errors.New("item price must be non-negative")
	}
	if i.Quantity < 1 {
		return errors.New("item quantity must be at least 1")
	}
	return nil
}

// Order survives user deletion: UserID is nulled, the row stays.
type Order struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`
	Reference string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"reference"`
	Status    string    `gorm:"type:enum('New','Processing','Completed','Cancelled');default:'New'" json:"status"`
	Items     string    `gorm:"type:text;not null" json:"-"`
	Contact   string    `gorm:"size:255" json:"contact"`
	Comment   *string   `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) SetItems(items []OrderItem) error {
	if len(items) == 0 {
		return errors.New("order must have at least one item")
	}
	for i := range items {
		if err := items[i].Validate(); err != nil {
			return err
		}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	o.Items = string(raw)
	return nil
}

func (o *Order) GetItems() ([]OrderItem, error) {
	var items []OrderItem
	if err := json.Unmarshal([]byte(o.Items), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Total sums price*quantity over the line items. Unparseable payloads count
// as zero so listing endpoints keep working on legacy rows.
func (o *Order) Total() float64 {
	items, err := o.GetItems()
	if err != nil {
		return 0
	}
	total := 0.0
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}
