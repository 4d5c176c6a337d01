// Package calculator holds the pure algorithms of the ledger: expense
// splitting and settlement planning. Nothing here touches storage.
package calculator

import (
	"fmt"

	"github.com/splitpot/splitpot/internal/models"
)

// Delta is one account's balance adjustment from a split.
type Delta struct {
	Account models.Account
	Amount  int64
}

// Shares divides amount into n integer shares that sum exactly to
// amount. The first amount%n shares get one extra unit, so earlier
// positions absorb the rounding excess.
func Shares(amount int64, n int) []int64 {
	base := amount / int64(n)
	remainder := amount % int64(n)

	shares := make([]int64, n)
	for i := range shares {
		shares[i] = base
		if int64(i) < remainder {
			shares[i]++
		}
	}
	return shares
}

// SplitExpense computes the balance deltas an expense applies, one per
// participant occurrence in listed order.
//
// Each participant's balance drops by their share. The payer's
// occurrence is instead adjusted by amount minus their own share,
// their net lending. Every share is one of the n pieces summing to
// amount, so the deltas cancel exactly when the payer is listed exactly
// once. Duplicates are debited once per occurrence.
func SplitExpense(payer models.Account, amount int64, participants []models.Account) ([]Delta, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", amount)
	}
	if len(participants) == 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}

	shares := Shares(amount, len(participants))

	deltas := make([]Delta, len(participants))
	for i, p := range participants {
		if p == payer {
			deltas[i] = Delta{Account: p, Amount: amount - shares[i]}
		} else {
			deltas[i] = Delta{Account: p, Amount: -shares[i]}
		}
	}
	return deltas, nil
}
