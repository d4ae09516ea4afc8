package shop

import (
	"errors"
	"testing"

	"github.com/mag8888/vital-sub000/models"
)

func newPayableOrder(t *testing.T, userID uint) *models.Order {
	t.Helper()
	order := &models.Order{
		UserID:    &userID,
		Reference: "VB-TEST1",
		Status:    models.OrderNew,
	}
	err := order.SetItems([]models.OrderItem{
		{ProductID: 1, Title: "Витамин D", Price: 80.00, Quantity: 1},
		{ProductID: 2, Title: "Омега-3", Price: 35.25, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("set items: %v", err)
	}
	return order
}

func TestSettleOrderCompletesOnPayment(t *testing.T) {
	order := newPayableOrder(t, 7)

	amount, err := settleOrder(order)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if amount != 150.50 {
		t.Fatalf("amount = %.2f, want 150.50", amount)
	}
	if order.Status != models.OrderCompleted {
		t.Fatalf("status = %s, payment must flip New to Completed", order.Status)
	}
}

func TestSettleOrderRejectsNonNew(t *testing.T) {
	for _, status := range []string{models.OrderProcessing, models.OrderCompleted, models.OrderCancelled} {
		order := newPayableOrder(t, 7)
		order.Status = status
		if _, err := settleOrder(order); !errors.Is(err, ErrAlreadyPaid) {
			t.Fatalf("status %s: err = %v, want ErrAlreadyPaid", status, err)
		}
	}
}

func TestSettleOrderRejectsOwnerlessAndEmpty(t *testing.T) {
	order := newPayableOrder(t, 7)
	order.UserID = nil
	if _, err := settleOrder(order); !errors.Is(err, ErrNoOwner) {
		t.Fatalf("ownerless: err = %v, want ErrNoOwner", err)
	}

	userID := uint(7)
	free := &models.Order{UserID: &userID, Reference: "VB-TEST2", Status: models.OrderNew}
	err := free.SetItems([]models.OrderItem{{ProductID: 3, Title: "Пробник", Price: 0, Quantity: 1}})
	if err != nil {
		t.Fatalf("set items: %v", err)
	}
	if _, err := settleOrder(free); !errors.Is(err, ErrAlreadyPaid) {
		t.Fatalf("zero total: err = %v, want ErrAlreadyPaid", err)
	}
	if free.Status != models.OrderNew {
		t.Fatalf("a rejected order must keep its status, got %s", free.Status)
	}
}

func TestPriceItemsValidation(t *testing.T) {
	if _, err := PriceItems(nil, nil); !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("empty: err = %v, want ErrEmptyOrder", err)
	}
	if _, err := PriceItems(nil, []ItemRequest{{ProductID: 1, Quantity: 0}}); !errors.Is(err, ErrBadQuantity) {
		t.Fatalf("zero quantity: err = %v, want ErrBadQuantity", err)
	}
}
