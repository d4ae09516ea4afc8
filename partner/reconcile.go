package partner

import (
	"context"
	"fmt"
	"log"

	"github.com/mag8888/vital-sub000/models"
	"github.com/mag8888/vital-sub000/utils"
)

// RecalculateBonuses folds the profile's full ledger into a signed total and
// overwrites the profile balance/bonus fields and the owning user's balance
// with it. This is the single repair path for any drift between the ledger
// and the aggregate fields, and it is idempotent.
func (e *Engine) RecalculateBonuses(ctx context.Context, profileID uint) (float64, error) {
	profile, err := e.dir.FindProfileByID(ctx, profileID)
	if err != nil {
		return 0, err
	}
	if profile == nil {
		return 0, ErrNotFound
	}

	txs, err := e.dir.ListTransactionsForProfile(ctx, profileID)
	if err != nil {
		return 0, err
	}

	total := 0.0
	for i := range txs {
		total += txs[i].Signed()
	}
	total = utils.RoundFloat(total, 2)

	if err := e.dir.UpdateProfileBalanceFields(ctx, profileID, total, total); err != nil {
		return 0, err
	}
	if err := e.dir.UpdateUserBalance(ctx, profile.UserID, total); err != nil {
		return 0, err
	}
	log.Printf("[partner] profile %d reconciled to %.2f PZ over %d transactions", profileID, total, len(txs))
	return total, nil
}

// CleanupDuplicateBonuses removes credit rows that share an idempotency key
// with an earlier row, then reconciles. Rows without a payer/order key (old
// format, manual adjustments) are never touched: their intent cannot be
// recovered, so they are left for a human to review.
func (e *Engine) CleanupDuplicateBonuses(ctx context.Context, profileID uint) (int, error) {
	txs, err := e.dir.ListTransactionsForProfile(ctx, profileID)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]bool)
	var duplicates []uint
	for i := range txs {
		tx := &txs[i]
		if tx.Type != models.TxCredit || tx.PayerUserID == nil || tx.OrderRef == nil {
			continue
		}
		key := fmt.Sprintf("%d|%s", *tx.PayerUserID, *tx.OrderRef)
		if seen[key] {
			duplicates = append(duplicates, tx.ID)
			continue
		}
		seen[key] = true
	}

	if len(duplicates) > 0 {
		if err := e.dir.DeleteTransactions(ctx, duplicates); err != nil {
			return 0, err
		}
	}
	if _, err := e.RecalculateBonuses(ctx, profileID); err != nil {
		return len(duplicates), err
	}
	return len(duplicates), nil
}
