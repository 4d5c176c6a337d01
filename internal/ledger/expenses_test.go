package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/splitpot/splitpot/internal/events"
	"github.com/splitpot/splitpot/internal/ledger"
	"github.com/splitpot/splitpot/internal/models"
)

// tripGroup registers carol, mia and max and creates a group with all
// three, returning its id.
func tripGroup(t *testing.T, svc *ledger.Service) uint32 {
	t.Helper()
	registerAll(t, svc, carol, mia, max)
	id, err := svc.CreateGroup(context.Background(), carol, "Trip", []models.Account{mia, max})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return id
}

// Scenario: a 300 expense split across three members leaves the payer
// up 200 and each other participant down 100.
func TestAddExpense(t *testing.T) {
	svc, _, rec := newTestLedger(t)
	ctx := context.Background()
	id := tripGroup(t, svc)

	if err := svc.AddExpense(ctx, carol, id, 300, []models.Account{carol, mia, max}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	requireBalance(t, svc, id, carol, 200)
	requireBalance(t, svc, id, mia, -100)
	requireBalance(t, svc, id, max, -100)
	requireZeroSum(t, svc, id)

	expenses, err := svc.Expenses(ctx, id)
	if err != nil {
		t.Fatalf("Expenses failed: %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("got %d expenses, want 1", len(expenses))
	}
	e := expenses[0]
	if e.Payer != carol || e.Amount != 300 || len(e.Participants) != 3 {
		t.Errorf("expense = %+v", e)
	}
	if e.Timestamp != 1700000000 {
		t.Errorf("timestamp = %d, want pinned clock value", e.Timestamp)
	}

	activities, err := svc.Activities(ctx, id)
	if err != nil {
		t.Fatalf("Activities failed: %v", err)
	}
	if len(activities) != 2 {
		t.Fatalf("got %d activities, want 2", len(activities))
	}
	second := activities[1]
	if second.ID != 2 || second.Kind != models.ActivityExpense || second.Actor != carol ||
		second.Amount != 300 || second.Recipient != "" {
		t.Errorf("expense activity = %+v", second)
	}

	var published bool
	for _, ev := range rec.Events() {
		if added, ok := ev.(events.ExpenseAdded); ok {
			published = true
			if added.GroupID != id || added.Payer != carol || added.Amount != 300 {
				t.Errorf("ExpenseAdded payload = %+v", added)
			}
		}
	}
	if !published {
		t.Error("no ExpenseAdded event published")
	}
}

// An indivisible amount still splits exactly: the first participants in
// list order absorb the extra units.
func TestAddExpenseRemainder(t *testing.T) {
	svc, _, _ := newTestLedger(t)
	ctx := context.Background()
	id := tripGroup(t, svc)

	// 100 over [mia, max, carol]: shares 34, 33, 33.
	if err := svc.AddExpense(ctx, carol, id, 100, []models.Account{mia, max, carol}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	requireBalance(t, svc, id, mia, -34)
	requireBalance(t, svc, id, max, -33)
	requireBalance(t, svc, id, carol, 67)
	requireZeroSum(t, svc, id)
}

// Only participants are touched by a split: a payer who is not listed
// keeps their own balance, and each listed participant is debited a
// full share.
func TestAddExpensePayerNotParticipating(t *testing.T) {
	svc, _, _ := newTestLedger(t)
	ctx := context.Background()
	id := tripGroup(t, svc)

	if err := svc.AddExpense(ctx, carol, id, 100, []models.Account{mia, max}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	requireBalance(t, svc, id, carol, 0)
	requireBalance(t, svc, id, mia, -50)
	requireBalance(t, svc, id, max, -50)
}

// A participant listed twice is debited two shares.
func TestAddExpenseDuplicateParticipant(t *testing.T) {
	svc, _, _ := newTestLedger(t)
	ctx := context.Background()
	id := tripGroup(t, svc)

	if err := svc.AddExpense(ctx, carol, id, 90, []models.Account{mia, mia, max}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	requireBalance(t, svc, id, mia, -60)
	requireBalance(t, svc, id, max, -30)
	requireBalance(t, svc, id, carol, 90)
	requireZeroSum(t, svc, id)
}

func TestAddExpenseErrors(t *testing.T) {
	svc, _, _ := newTestLedger(t)
	ctx := context.Background()
	id := tripGroup(t, svc)
	registerAll(t, svc, nora) // registered but not a member

	tests := []struct {
		name         string
		payer        models.Account
		groupID      uint32
		amount       int64
		participants []models.Account
		wantErr      error
	}{
		{"zero amount", carol, id, 0, []models.Account{mia}, ledger.ErrInvalidAmount},
		{"negative amount", carol, id, -5, []models.Account{mia}, ledger.ErrInvalidAmount},
		{"unknown group", carol, 99, 100, []models.Account{mia}, ledger.ErrGroupNotFound},
		{"payer not a member", nora, id, 100, []models.Account{mia}, ledger.ErrNotAMember},
		{"participant not a member", carol, id, 100, []models.Account{nora}, ledger.ErrNotAMember},
		{"no participants", carol, id, 100, nil, ledger.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.AddExpense(ctx, tt.payer, tt.groupID, tt.amount, tt.participants)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddExpense() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// Failed attempts wrote nothing.
	for _, m := range []models.Account{carol, mia, max} {
		requireBalance(t, svc, id, m, 0)
	}
	expenses, err := svc.Expenses(ctx, id)
	if err != nil {
		t.Fatalf("Expenses failed: %v", err)
	}
	if len(expenses) != 0 {
		t.Errorf("got %d expenses after rejected attempts, want 0", len(expenses))
	}
}

// Scenario: after the 300 split, mia owes exactly 100. Paying 101 must
// be rejected, paying the full 100 zeroes her out.
func TestSettleDebt(t *testing.T) {
	svc, _, rec := newTestLedger(t)
	ctx := context.Background()
	id := tripGroup(t, svc)

	if err := svc.AddExpense(ctx, carol, id, 300, []models.Account{carol, mia, max}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	if err := svc.SettleDebt(ctx, mia, id, carol, 101); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("over-settlement: err = %v, want ErrInvalidAmount", err)
	}
	requireBalance(t, svc, id, mia, -100)

	if err := svc.SettleDebt(ctx, mia, id, carol, 100); err != nil {
		t.Fatalf("SettleDebt failed: %v", err)
	}

	requireBalance(t, svc, id, mia, 0)
	requireBalance(t, svc, id, carol, 100)
	requireBalance(t, svc, id, max, -100)
	requireZeroSum(t, svc, id)

	activities, err := svc.Activities(ctx, id)
	if err != nil {
		t.Fatalf("Activities failed: %v", err)
	}
	last := activities[len(activities)-1]
	if last.ID != 3 || last.Kind != models.ActivitySettlement || last.Actor != mia ||
		last.Recipient != carol || last.Amount != 100 {
		t.Errorf("settlement activity = %+v", last)
	}

	var published bool
	for _, ev := range rec.Events() {
		if settled, ok := ev.(events.DebtSettled); ok {
			published = true
			if settled.From != mia || settled.To != carol || settled.Amount != 100 {
				t.Errorf("DebtSettled payload = %+v", settled)
			}
		}
	}
	if !published {
		t.Error("no DebtSettled event published")
	}
}

func TestSettleDebtErrors(t *testing.T) {
	svc, _, _ := newTestLedger(t)
	ctx := context.Background()
	id := tripGroup(t, svc)
	registerAll(t, svc, nora)

	if err := svc.AddExpense(ctx, carol, id, 100, []models.Account{mia, max}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	tests := []struct {
		name    string
		from    models.Account
		groupID uint32
		to      models.Account
		amount  int64
		wantErr error
	}{
		{"zero amount", mia, id, carol, 0, ledger.ErrInvalidAmount},
		{"unknown group", mia, 99, carol, 10, ledger.ErrGroupNotFound},
		{"from not a member", nora, id, carol, 10, ledger.ErrNotAMember},
		{"to not a member", mia, id, nora, 10, ledger.ErrNotAMember},
		{"from is not a debtor", carol, id, mia, 10, ledger.ErrInvalidAmount},
		{"over-settlement", mia, id, carol, 51, ledger.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.SettleDebt(ctx, tt.from, tt.groupID, tt.to, tt.amount)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SettleDebt() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	requireZeroSum(t, svc, id)
}

// Settling toward a member who is not a net creditor is accepted: the
// transfer is symmetric, so the invariant holds regardless.
func TestSettleDebtToNonCreditor(t *testing.T) {
	svc, _, _ := newTestLedger(t)
	ctx := context.Background()
	id := tripGroup(t, svc)

	if err := svc.AddExpense(ctx, carol, id, 100, []models.Account{mia, max}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	// mia owes 50, max owes 50; mia "pays" max, pushing him positive.
	if err := svc.SettleDebt(ctx, mia, id, max, 50); err != nil {
		t.Fatalf("SettleDebt failed: %v", err)
	}

	requireBalance(t, svc, id, mia, 0)
	requireBalance(t, svc, id, max, 0)
	requireBalance(t, svc, id, carol, 100)
	requireZeroSum(t, svc, id)
}

// The planner's proposals, executed in order through SettleDebt, drive
// every balance to exactly zero.
func TestSettlementsExecuteToZero(t *testing.T) {
	svc, _, _ := newTestLedger(t)
	ctx := context.Background()
	registerAll(t, svc, carol, mia, max, nora)

	id, err := svc.CreateGroup(ctx, carol, "Trip", []models.Account{mia, max, nora})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	// A tangle of expenses with awkward remainders.
	steps := []struct {
		payer        models.Account
		amount       int64
		participants []models.Account
	}{
		{carol, 301, []models.Account{carol, mia, max, nora}},
		{mia, 50, []models.Account{mia, max, nora}},
		{nora, 7, []models.Account{carol, mia, nora}},
	}
	for _, s := range steps {
		if err := svc.AddExpense(ctx, s.payer, id, s.amount, s.participants); err != nil {
			t.Fatalf("AddExpense(%+v) failed: %v", s, err)
		}
	}
	requireZeroSum(t, svc, id)

	plan, err := svc.Settlements(ctx, id)
	if err != nil {
		t.Fatalf("Settlements failed: %v", err)
	}
	if len(plan) == 0 {
		t.Fatal("expected a non-empty settlement plan")
	}

	for _, s := range plan {
		if err := svc.SettleDebt(ctx, s.From, id, s.To, s.Amount); err != nil {
			t.Fatalf("executing settlement %+v failed: %v", s, err)
		}
	}

	group, err := svc.Group(ctx, id)
	if err != nil {
		t.Fatalf("Group failed: %v", err)
	}
	for _, m := range group.Members {
		requireBalance(t, svc, id, m, 0)
	}

	// The plan is derived, never stored: asking again now yields nothing.
	plan, err = svc.Settlements(ctx, id)
	if err != nil {
		t.Fatalf("Settlements failed: %v", err)
	}
	if len(plan) != 0 {
		t.Errorf("plan after full settlement = %v, want empty", plan)
	}
}

func TestSettlementsUnknownGroup(t *testing.T) {
	svc, _, _ := newTestLedger(t)

	if _, err := svc.Settlements(context.Background(), 5); !errors.Is(err, ledger.ErrGroupNotFound) {
		t.Errorf("Settlements(5) error = %v, want ErrGroupNotFound", err)
	}
}

// Journal ids stay 1-based and gap-free across mixed operations.
func TestActivityIDsAreGapFree(t *testing.T) {
	svc, _, _ := newTestLedger(t)
	ctx := context.Background()
	id := tripGroup(t, svc)
	registerAll(t, svc, nora)

	if err := svc.AddExpense(ctx, carol, id, 120, []models.Account{carol, mia, max}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	if err := svc.AddMember(ctx, carol, id, nora); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if err := svc.SettleDebt(ctx, mia, id, carol, 40); err != nil {
		t.Fatalf("SettleDebt failed: %v", err)
	}

	activities, err := svc.Activities(ctx, id)
	if err != nil {
		t.Fatalf("Activities failed: %v", err)
	}
	wantKinds := []models.ActivityKind{
		models.ActivityMemberAdded,
		models.ActivityExpense,
		models.ActivityMemberAdded,
		models.ActivitySettlement,
	}
	if len(activities) != len(wantKinds) {
		t.Fatalf("got %d activities, want %d", len(activities), len(wantKinds))
	}
	for i, a := range activities {
		if a.ID != uint32(i)+1 {
			t.Errorf("activity[%d].ID = %d, want %d", i, a.ID, i+1)
		}
		if a.Kind != wantKinds[i] {
			t.Errorf("activity[%d].Kind = %s, want %s", i, a.Kind, wantKinds[i])
		}
	}
}
