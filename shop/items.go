package shop

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mag8888/vital-sub000/models"
)

var (
	ErrEmptyOrder        = errors.New("order must have at least one item")
	ErrBadQuantity       = errors.New("item quantity must be at least 1")
	ErrProductNotForSale = errors.New("product not available")
)

type ItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// PriceItems resolves the requested products against the active catalogue.
// Titles and prices always come from the catalogue row, never from the
// client.
func PriceItems(db *gorm.DB, reqs []ItemRequest) ([]models.OrderItem, error) {
	if len(reqs) == 0 {
		return nil, ErrEmptyOrder
	}
	items := make([]models.OrderItem, 0, len(reqs))
	for _, req := range reqs {
		if req.Quantity < 1 {
			return nil, ErrBadQuantity
		}
		var product models.Product
		err := db.Where("id = ? AND status = ?", req.ProductID, "Active").First(&product).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: product %d", ErrProductNotForSale, req.ProductID)
			}
			return nil, fmt.Errorf("load product %d: %w", req.ProductID, err)
		}
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Title:     product.Title,
			Price:     product.Price,
			Quantity:  req.Quantity,
		})
	}
	return items, nil
}
