package shop

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mag8888/vital-sub000/models"
	"github.com/mag8888/vital-sub000/partner"
	"github.com/mag8888/vital-sub000/utils"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrAlreadyPaid   = errors.New("order is not payable")
	ErrNoOwner       = errors.New("order has no owner")
)

// PayResult reports each stage of a balance payment separately. The debit and
// the status flip are atomic; bonus distribution and partner activation run
// after commit and their failures never undo the payment.
type PayResult struct {
	Order         *models.Order
	Amount        float64
	Awards        []partner.BonusAward
	BonusErr      error
	ActivationErr error
}

// settleOrder checks that the order is payable and marks it completed,
// returning the amount to charge. Balance payment flips New straight to
// Completed; referral bonuses key off that transition.
func settleOrder(order *models.Order) (float64, error) {
	if order.Status != models.OrderNew {
		return 0, ErrAlreadyPaid
	}
	if order.UserID == nil {
		return 0, ErrNoOwner
	}
	amount := utils.RoundFloat(order.Total(), 2)
	if amount <= 0 {
		return 0, ErrAlreadyPaid
	}
	order.Status = models.OrderCompleted
	return amount, nil
}

// PayOrderFromBalance debits the order total from the owner's balance and
// moves the order from New to Completed inside one transaction with row
// locks on both the order and the user. On success it distributes referral
// bonuses and checks the qualifying-purchase activation threshold.
func PayOrderFromBalance(ctx context.Context, db *gorm.DB, engine *partner.Engine, reference string) (*PayResult, error) {
	var order models.Order
	var payerID uint
	var amount float64

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("reference = ?", reference).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("load order: %w", err)
		}
		payAmount, err := settleOrder(&order)
		if err != nil {
			return err
		}
		amount = payAmount
		payerID = *order.UserID

		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, payerID).Error; err != nil {
			return fmt.Errorf("load user: %w", err)
		}

		if user.Balance < amount {
			return partner.ErrInsufficientFunds
		}

		// Guarded decrement so a concurrent debit can never drive the
		// balance negative even outside this lock.
		res := tx.Model(&models.User{}).
			Where("id = ? AND balance >= ?", payerID, amount).
			Update("balance", gorm.Expr("balance - ?", amount))
		if res.Error != nil {
			return fmt.Errorf("debit balance: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return partner.ErrInsufficientFunds
		}

		if err := tx.Model(&order).Update("status", models.OrderCompleted).Error; err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		hist, err := models.NewUserHistory(payerID, models.HistoryOrderPaid, models.OrderPaidPayload{
			OrderRef: order.Reference,
			Amount:   amount,
		})
		if err != nil {
			return err
		}
		return tx.Create(hist).Error
	})
	if err != nil {
		return nil, err
	}

	result := &PayResult{Order: &order, Amount: amount}

	awards, err := engine.DistributeOrderBonuses(ctx, payerID, amount, order.Reference)
	if err != nil {
		log.Printf("[SHOP] bonus distribution failed for order %s: %v", order.Reference, err)
		result.BonusErr = err
	}
	result.Awards = awards

	if err := engine.ActivateOnQualifyingPurchase(ctx, payerID, amount); err != nil {
		log.Printf("[SHOP] qualifying activation failed for order %s: %v", order.Reference, err)
		result.ActivationErr = err
	}

	return result, nil
}
