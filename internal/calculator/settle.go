package calculator

import "github.com/splitpot/splitpot/internal/models"

// MemberPosition is one member's net balance, in group-member order.
type MemberPosition struct {
	Account models.Account
	Balance int64
}

// PlanSettlements turns a snapshot of member balances into the sequence
// of payments that zeroes every balance.
//
// Members are partitioned by balance sign into debtors and creditors,
// both keeping group-member order and skipping zero balances. The plan
// repeatedly matches the head of each list: the payment is the smaller
// of the debtor's remaining debt and the creditor's remaining credit,
// and whichever side reaches zero is removed. This is greedy head
// matching, not a minimum-transaction matcher; its output, executed in
// order, still drives every balance to exactly zero because total debt
// equals total credit under the zero-sum invariant.
func PlanSettlements(positions []MemberPosition) []models.Settlement {
	type party struct {
		account models.Account
		amount  int64
	}

	var debtors, creditors []party
	for _, p := range positions {
		switch {
		case p.Balance < 0:
			debtors = append(debtors, party{p.Account, -p.Balance})
		case p.Balance > 0:
			creditors = append(creditors, party{p.Account, p.Balance})
		}
	}

	var settlements []models.Settlement
	for len(debtors) > 0 && len(creditors) > 0 {
		d, c := &debtors[0], &creditors[0]

		settle := min(d.amount, c.amount)
		settlements = append(settlements, models.Settlement{
			From:   d.account,
			To:     c.account,
			Amount: settle,
		})

		d.amount -= settle
		c.amount -= settle

		if d.amount == 0 {
			debtors = debtors[1:]
		}
		if c.amount == 0 {
			creditors = creditors[1:]
		}
	}
	return settlements
}
