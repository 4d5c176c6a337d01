package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/splitpot/splitpot/internal/calculator"
	"github.com/splitpot/splitpot/internal/events"
	"github.com/splitpot/splitpot/internal/models"
	"github.com/splitpot/splitpot/internal/store"
)

// AddExpense records that payer paid amount on behalf of participants
// and adjusts every participant's balance by their integer share.
//
// Amount must be positive and participants non-empty (ErrInvalidAmount
// otherwise); payer and every participant must be current members. The
// participant list is taken as given: duplicates are debited once per
// occurrence, and the payer may be included or not.
func (s *Service) AddExpense(ctx context.Context, payer models.Account, groupID uint32, amount int64, participants []models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.addExpense(ctx, payer, groupID, amount, participants)
	s.metrics.Observe("add_expense", err)
	if err != nil {
		return err
	}

	slog.Info("Expense added", "group_id", groupID, "payer", payer, "amount", amount,
		"participants", len(participants))
	s.publish(ctx, events.ExpenseAdded{GroupID: groupID, Payer: payer, Amount: amount})
	return nil
}

func (s *Service) addExpense(ctx context.Context, payer models.Account, groupID uint32, amount int64, participants []models.Account) error {
	if amount <= 0 {
		return fmt.Errorf("amount %d: %w", amount, ErrInvalidAmount)
	}

	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.HasMember(payer) {
		return fmt.Errorf("payer %s: %w", payer, ErrNotAMember)
	}
	for _, p := range participants {
		if !group.HasMember(p) {
			return fmt.Errorf("participant %s: %w", p, ErrNotAMember)
		}
	}
	if len(participants) == 0 {
		return fmt.Errorf("no participants: %w", ErrInvalidAmount)
	}

	deltas, err := calculator.SplitExpense(payer, amount, participants)
	if err != nil {
		return fmt.Errorf("%v: %w", err, ErrInvalidAmount)
	}
	for _, d := range deltas {
		balance, err := s.balance(ctx, groupID, d.Account)
		if err != nil {
			return err
		}
		if err := s.setJSON(ctx, store.BalanceKey(groupID, d.Account), balance+d.Amount); err != nil {
			return err
		}
	}

	var expenses []models.Expense
	if _, err := s.getJSON(ctx, store.ExpensesKey(groupID), &expenses); err != nil {
		return err
	}
	expenses = append(expenses, models.Expense{
		Payer:        payer,
		Amount:       amount,
		Participants: participants,
		Timestamp:    s.timestamp(),
	})
	if err := s.setJSON(ctx, store.ExpensesKey(groupID), expenses); err != nil {
		return err
	}

	return s.recordActivity(ctx, groupID, models.ActivityExpense, payer, "", amount)
}

// SettleDebt records a payment of amount from a debtor to another
// member, moving from's balance toward zero and to's down by the same
// amount (a symmetric transfer, so the group stays zero-sum).
//
// From must currently owe the group (strictly negative balance) and
// amount may not exceed that debt; both violations are ErrInvalidAmount.
// The recipient's own position is not validated: paying a non-creditor
// is accepted and simply pushes them further positive.
func (s *Service) SettleDebt(ctx context.Context, from models.Account, groupID uint32, to models.Account, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.settleDebt(ctx, from, groupID, to, amount)
	s.metrics.Observe("settle_debt", err)
	if err != nil {
		return err
	}

	slog.Info("Debt settled", "group_id", groupID, "from", from, "to", to, "amount", amount)
	s.publish(ctx, events.DebtSettled{GroupID: groupID, From: from, To: to, Amount: amount})
	return nil
}

func (s *Service) settleDebt(ctx context.Context, from models.Account, groupID uint32, to models.Account, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount %d: %w", amount, ErrInvalidAmount)
	}

	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.HasMember(from) || !group.HasMember(to) {
		return ErrNotAMember
	}

	fromBalance, err := s.balance(ctx, groupID, from)
	if err != nil {
		return err
	}
	if fromBalance >= 0 {
		return fmt.Errorf("%s owes nothing: %w", from, ErrInvalidAmount)
	}
	if amount > -fromBalance {
		return fmt.Errorf("amount %d exceeds debt %d: %w", amount, -fromBalance, ErrInvalidAmount)
	}

	toBalance, err := s.balance(ctx, groupID, to)
	if err != nil {
		return err
	}

	if err := s.setJSON(ctx, store.BalanceKey(groupID, from), fromBalance+amount); err != nil {
		return err
	}
	if err := s.setJSON(ctx, store.BalanceKey(groupID, to), toBalance-amount); err != nil {
		return err
	}

	return s.recordActivity(ctx, groupID, models.ActivitySettlement, from, to, amount)
}

// Balance returns account's balance within the group, defaulting to 0.
func (s *Service) Balance(ctx context.Context, groupID uint32, account models.Account) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balance(ctx, groupID, account)
}

func (s *Service) balance(ctx context.Context, groupID uint32, account models.Account) (int64, error) {
	var balance int64
	if _, err := s.getJSON(ctx, store.BalanceKey(groupID, account), &balance); err != nil {
		return 0, err
	}
	return balance, nil
}

// Expenses returns the group's expense sequence, oldest first. The
// group itself need not exist: a deleted or unknown group yields an
// empty sequence.
func (s *Service) Expenses(ctx context.Context, groupID uint32) ([]models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var expenses []models.Expense
	if _, err := s.getJSON(ctx, store.ExpensesKey(groupID), &expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

// Settlements computes the payments that would zero out every member's
// balance, matching debtors to creditors in member order. The plan is
// derived from the current snapshot and never persisted; executing each
// proposed payment through SettleDebt drives all balances to exactly 0.
func (s *Service) Settlements(ctx context.Context, groupID uint32) ([]models.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	positions := make([]calculator.MemberPosition, 0, len(group.Members))
	for _, m := range group.Members {
		balance, err := s.balance(ctx, groupID, m)
		if err != nil {
			return nil, err
		}
		positions = append(positions, calculator.MemberPosition{Account: m, Balance: balance})
	}
	return calculator.PlanSettlements(positions), nil
}
