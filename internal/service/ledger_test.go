package service

import (
	"context"
	"sync"
	"testing"

	"github.com/as0628/expense-tracker-project/internal/apperr"
	"github.com/as0628/expense-tracker-project/internal/models"

	"github.com/stretchr/testify/require"
)

func TestLedgerScenarioTotalsAndDailyReport(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(db)
	ctx := context.Background()
	owner := createAccount(t, db, "alice", false)

	_, err := ledger.Add(ctx, owner.ID, expense("100", "food"))
	require.NoError(t, err)
	_, err = ledger.Add(ctx, owner.ID, income("40", "salary"))
	require.NoError(t, err)
	_, err = ledger.Add(ctx, owner.ID, expense("30", "travel"))
	require.NoError(t, err)

	require.Equal(t, int64(13000), totalExpense(t, db, owner.ID))

	engine := newReportEngine(db, []string{PeriodDaily, PeriodMonthly, PeriodYearly})
	report, err := engine.Compute(ctx, owner.ID, PeriodDaily)
	require.NoError(t, err)
	require.Equal(t, int64(4000), report.TotalIncome)
	require.Equal(t, int64(13000), report.TotalExpense)
	require.Equal(t, int64(-9000), report.Balance)
}

func TestLedgerAddValidation(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(db)
	owner := createAccount(t, db, "bob", false)

	cases := []struct {
		name string
		in   TransactionInput
	}{
		{"missing amount", TransactionInput{Description: "d", Category: "c", Type: models.TypeExpense}},
		{"not a number", TransactionInput{Amount: "abc", Description: "d", Category: "c", Type: models.TypeExpense}},
		{"nan", TransactionInput{Amount: "NaN", Description: "d", Category: "c", Type: models.TypeExpense}},
		{"zero", TransactionInput{Amount: "0", Description: "d", Category: "c", Type: models.TypeExpense}},
		{"negative", TransactionInput{Amount: "-5", Description: "d", Category: "c", Type: models.TypeExpense}},
		{"blank description", TransactionInput{Amount: "5", Description: "   ", Category: "c", Type: models.TypeExpense}},
		{"blank category", TransactionInput{Amount: "5", Description: "d", Category: "", Type: models.TypeExpense}},
		{"missing type", TransactionInput{Amount: "5", Description: "d", Category: "c"}},
		{"unknown type", TransactionInput{Amount: "5", Description: "d", Category: "c", Type: "refund"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ledger.Add(context.Background(), owner.ID, tc.in)
			require.ErrorIs(t, err, apperr.ErrValidation)
		})
	}

	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).Count(&count).Error)
	require.Zero(t, count)
	require.Zero(t, totalExpense(t, db, owner.ID))
}

func TestLedgerUpdateTypeChanges(t *testing.T) {
	cases := []struct {
		name     string
		from     TransactionInput
		to       TransactionInput
		expected int64
	}{
		{"expense to expense", expense("50", "food"), expense("80", "food"), 8000},
		{"expense to income", expense("50", "food"), income("80", "gift"), 0},
		{"income to expense", income("50", "gift"), expense("80", "food"), 8000},
		{"income to income", income("50", "gift"), income("80", "gift"), 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := newTestDB(t)
			ledger := newLedger(db)
			ctx := context.Background()
			owner := createAccount(t, db, "carol", false)

			// an unrelated expense that must survive every update untouched
			_, err := ledger.Add(ctx, owner.ID, expense("7", "misc"))
			require.NoError(t, err)

			id, err := ledger.Add(ctx, owner.ID, tc.from)
			require.NoError(t, err)
			require.NoError(t, ledger.Update(ctx, owner.ID, id, tc.to))

			require.Equal(t, tc.expected+700, totalExpense(t, db, owner.ID))
			requireInvariant(t, db, owner.ID)

			got, err := ledger.Get(ctx, owner.ID, id)
			require.NoError(t, err)
			require.Equal(t, tc.to.Type, got.Type)
			require.Equal(t, int64(8000), got.AmountCents)
		})
	}
}

func TestLedgerUpdateInvalidLeavesRowUntouched(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(db)
	ctx := context.Background()
	owner := createAccount(t, db, "dan", false)

	id, err := ledger.Add(ctx, owner.ID, expense("10", "food"))
	require.NoError(t, err)

	err = ledger.Update(ctx, owner.ID, id, TransactionInput{Amount: "x", Description: "d", Category: "c", Type: models.TypeExpense})
	require.ErrorIs(t, err, apperr.ErrValidation)

	got, err := ledger.Get(ctx, owner.ID, id)
	require.NoError(t, err)
	require.Equal(t, int64(1000), got.AmountCents)
	require.Equal(t, int64(1000), totalExpense(t, db, owner.ID))
}

func TestLedgerDeleteTwice(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(db)
	ctx := context.Background()
	owner := createAccount(t, db, "erin", false)

	keep, err := ledger.Add(ctx, owner.ID, expense("20", "food"))
	require.NoError(t, err)
	id, err := ledger.Add(ctx, owner.ID, expense("35.50", "rent"))
	require.NoError(t, err)
	require.Equal(t, int64(5550), totalExpense(t, db, owner.ID))

	require.NoError(t, ledger.Delete(ctx, owner.ID, id))
	require.Equal(t, int64(2000), totalExpense(t, db, owner.ID))

	err = ledger.Delete(ctx, owner.ID, id)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.Equal(t, int64(2000), totalExpense(t, db, owner.ID))

	_, err = ledger.Get(ctx, owner.ID, keep)
	require.NoError(t, err)
	requireInvariant(t, db, owner.ID)
}

func TestLedgerDeleteIncomeKeepsTotal(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(db)
	ctx := context.Background()
	owner := createAccount(t, db, "fay", false)

	_, err := ledger.Add(ctx, owner.ID, expense("12", "food"))
	require.NoError(t, err)
	id, err := ledger.Add(ctx, owner.ID, income("99", "salary"))
	require.NoError(t, err)

	require.NoError(t, ledger.Delete(ctx, owner.ID, id))
	require.Equal(t, int64(1200), totalExpense(t, db, owner.ID))
}

func TestLedgerRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(db)
	ctx := context.Background()
	owner := createAccount(t, db, "gus", false)

	in := TransactionInput{
		Amount:      "19.99",
		Description: "Groceries",
		Category:    "food",
		Type:        models.TypeExpense,
		Note:        "weekly shop",
	}
	id, err := ledger.Add(ctx, owner.ID, in)
	require.NoError(t, err)

	items, err := ledger.List(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)

	got := items[0]
	require.Equal(t, id, got.ID)
	require.Equal(t, owner.ID, got.UserID)
	require.Equal(t, int64(1999), got.AmountCents)
	require.Equal(t, "Groceries", got.Description)
	require.Equal(t, "food", got.Category)
	require.Equal(t, models.TypeExpense, got.Type)
	require.Equal(t, "weekly shop", got.Note)
	require.True(t, got.CreatedAt.Equal(testNow))
}

func TestLedgerCrossOwnerIsolation(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(db)
	ctx := context.Background()
	a := createAccount(t, db, "owner-a", false)
	b := createAccount(t, db, "owner-b", false)

	id, err := ledger.Add(ctx, b.ID, expense("40", "food"))
	require.NoError(t, err)

	err = ledger.Update(ctx, a.ID, id, expense("1", "food"))
	require.ErrorIs(t, err, apperr.ErrNotFound)

	err = ledger.Delete(ctx, a.ID, id)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = ledger.Get(ctx, a.ID, id)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	items, err := ledger.List(ctx, a.ID)
	require.NoError(t, err)
	require.Empty(t, items)

	require.Equal(t, int64(4000), totalExpense(t, db, b.ID))
	require.Zero(t, totalExpense(t, db, a.ID))
}

func TestLedgerConcurrentAdds(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(db)
	owner := createAccount(t, db, "hana", false)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := expense("1.25", "coffee")
			if i%2 == 1 {
				in = income("3", "tips")
			}
			_, err := ledger.Add(context.Background(), owner.ID, in)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int64(n/2*125), totalExpense(t, db, owner.ID))
	requireInvariant(t, db, owner.ID)
}

func TestLedgerListOrderAndPage(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(db)
	ctx := context.Background()
	owner := createAccount(t, db, "ivan", false)

	var ids []uint
	for i := 0; i < 12; i++ {
		id, err := ledger.Add(ctx, owner.ID, expense("1", "misc"))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	items, err := ledger.List(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, items, 12)
	// same created_at, so id breaks the tie, newest first
	require.Equal(t, ids[11], items[0].ID)
	require.Equal(t, ids[0], items[11].ID)

	page, err := ledger.ListPage(ctx, owner.ID, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, page.Page)
	require.Equal(t, 10, page.Limit)
	require.Equal(t, int64(12), page.Total)
	require.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 10)

	page, err = ledger.ListPage(ctx, owner.ID, 2, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, ids[0], page.Items[1].ID)

	page, err = ledger.ListPage(ctx, owner.ID, 1, 500)
	require.NoError(t, err)
	require.Equal(t, 100, page.Limit)
	require.Len(t, page.Items, 12)
}
