package csvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"budget/apperr"
	"budget/ledger"
	"budget/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paths(t *testing.T) (string, string) {
	dir := t.TempDir()
	return filepath.Join(dir, "expenses.csv"), filepath.Join(dir, "incomes.csv")
}

func readFile(t *testing.T, path string) string {
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestOpen_MissingFilesAreEmpty(t *testing.T) {
	exp, inc := paths(t)
	s, err := Open(exp, inc, FormatDated, 1)
	require.NoError(t, err)

	list, err := s.ListExpenses(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOpen_UnknownFormat(t *testing.T) {
	exp, inc := paths(t)
	_, err := Open(exp, inc, Format("xml"), 1)
	assert.Error(t, err)
}

func TestOpen_LoadsDatedRows(t *testing.T) {
	exp, inc := paths(t)
	require.NoError(t, os.WriteFile(exp, []byte("2024-01-15,Bills,100.00\n2024-01-16,Fun,12.5,movie night\n"), 0o644))
	require.NoError(t, os.WriteFile(inc, []byte("2024-01-01,2500.00\n"), 0o644))

	s, err := Open(exp, inc, FormatDated, 1)
	require.NoError(t, err)
	ctx := context.Background()

	list, err := s.ListExpenses(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, uint(2), list[0].ID)
	assert.Equal(t, "movie night", list[0].Description)
	assert.Equal(t, "2024-01-16", list[0].Date.Format(DateLayout))
	assert.Equal(t, uint(1), list[1].ID)

	incomes, err := s.ListIncomes(ctx, 1)
	require.NoError(t, err)
	require.Len(t, incomes, 1)
	assert.True(t, incomes[0].Amount.Equal(decimal.RequireFromString("2500")))
}

func TestOpen_LoadsPlainRows(t *testing.T) {
	exp, inc := paths(t)
	require.NoError(t, os.WriteFile(exp, []byte("Groceries,45.20\n"), 0o644))
	require.NoError(t, os.WriteFile(inc, []byte("1000\n"), 0o644))

	s, err := Open(exp, inc, FormatPlain, 1)
	require.NoError(t, err)

	e, err := s.GetExpense(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", e.Category)
	assert.Equal(t, uint(1), e.UserID)

	in, err := s.GetIncome(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, in.Amount.Equal(decimal.NewFromInt(1000)))
}

func TestOpen_RoundsLoadedAmounts(t *testing.T) {
	exp, inc := paths(t)
	require.NoError(t, os.WriteFile(exp, []byte("Groceries,45.205\n"), 0o644))

	s, err := Open(exp, inc, FormatPlain, 1)
	require.NoError(t, err)

	e, err := s.GetExpense(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "45.21", e.Amount.StringFixed(2))
}

func TestOpen_RejectsWrongWidth(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		exp    string
		inc    string
	}{
		{name: "plain expense with date", format: FormatPlain, exp: "2024-01-15,Bills,100\n"},
		{name: "dated expense without date", format: FormatDated, exp: "Bills,100\n"},
		{name: "dated income without date", format: FormatDated, inc: "100\n"},
		{name: "bad amount", format: FormatPlain, exp: "Bills,abc\n"},
		{name: "bad date", format: FormatDated, exp: "15/01/2024,Bills,100\n"},
		{name: "negative amount", format: FormatPlain, exp: "Bills,-5\n"},
		{name: "zero income", format: FormatPlain, inc: "0\n"},
		{name: "huge exponent", format: FormatDated, exp: "2024-01-15,Bills,1e20000000\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp, inc := paths(t)
			require.NoError(t, os.WriteFile(exp, []byte(tt.exp), 0o644))
			require.NoError(t, os.WriteFile(inc, []byte(tt.inc), 0o644))

			_, err := Open(exp, inc, tt.format, 1)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrStorage)
			assert.Contains(t, err.Error(), ":1")
		})
	}
}

func TestStore_InsertAppendsAndPersists(t *testing.T) {
	exp, inc := paths(t)
	s, err := Open(exp, inc, FormatDated, 1)
	require.NoError(t, err)
	ctx := context.Background()

	date := time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)
	e := &models.Expense{UserID: 1, Category: "Debt", Amount: decimal.RequireFromString("19.9"), Description: "card", Date: date}
	require.NoError(t, s.InsertExpense(ctx, e))
	assert.Equal(t, uint(1), e.ID)

	in := &models.Income{UserID: 1, Amount: decimal.NewFromInt(300), Date: date}
	require.NoError(t, s.InsertIncome(ctx, in))

	assert.Equal(t, "2024-03-01,Debt,19.90,card\n", readFile(t, exp))
	assert.Equal(t, "2024-03-01,300.00\n", readFile(t, inc))

	reopened, err := Open(exp, inc, FormatDated, 1)
	require.NoError(t, err)
	got, err := reopened.GetExpense(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "card", got.Description)
}

func TestStore_InsertRejectsOtherOwner(t *testing.T) {
	exp, inc := paths(t)
	s, err := Open(exp, inc, FormatPlain, 1)
	require.NoError(t, err)

	err = s.InsertExpense(context.Background(), &models.Expense{UserID: 2, Category: "Fun", Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, apperr.ErrStorage)

	list, err := s.ListExpenses(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_UpdateAndDeleteRewriteFile(t *testing.T) {
	exp, inc := paths(t)
	require.NoError(t, os.WriteFile(exp, []byte("Bills,10.00\nFun,5.00\nSavings,7.00\n"), 0o644))
	s, err := Open(exp, inc, FormatPlain, 1)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.UpdateExpense(ctx, 2, ledger.ExpenseFields{
		Category: "Groceries",
		Amount:   decimal.RequireFromString("6.25"),
		Date:     time.Now(),
	}))
	assert.Equal(t, "Bills,10.00\nGroceries,6.25\nSavings,7.00\n", readFile(t, exp))

	require.NoError(t, s.DeleteExpense(ctx, 1))
	assert.Equal(t, "Groceries,6.25\nSavings,7.00\n", readFile(t, exp))

	// 编号在进程内保持不变
	e, err := s.GetExpense(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Savings", e.Category)

	assert.ErrorIs(t, s.DeleteExpense(ctx, 1), apperr.ErrNotFound)
	assert.ErrorIs(t, s.UpdateExpense(ctx, 1, ledger.ExpenseFields{Category: "Fun", Amount: decimal.NewFromInt(1)}), apperr.ErrNotFound)
}

func TestStore_Incomes(t *testing.T) {
	exp, inc := paths(t)
	require.NoError(t, os.WriteFile(inc, []byte("100\n200\n"), 0o644))
	s, err := Open(exp, inc, FormatPlain, 1)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.DeleteIncome(ctx, 1))
	assert.Equal(t, "200.00\n", readFile(t, inc))
	assert.ErrorIs(t, s.DeleteIncome(ctx, 1), apperr.ErrNotFound)

	n, err := s.DeleteIncomesByOwner(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.DeleteIncomesByOwner(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Empty(t, readFile(t, inc))

	_, err = s.GetIncome(ctx, 2)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStore_WorksWithLedgerService(t *testing.T) {
	exp, inc := paths(t)
	s, err := Open(exp, inc, FormatDated, 1)
	require.NoError(t, err)
	svc := ledger.NewService(s, ledger.Options{StrictCategories: true})
	ctx := context.Background()

	_, err = svc.AddIncome(ctx, 1, "1000")
	require.NoError(t, err)
	_, err = svc.AddExpense(ctx, 1, ledger.ExpenseInput{Category: "Bills", Amount: "250.50"})
	require.NoError(t, err)

	view, err := svc.Dashboard(ctx, 1)
	require.NoError(t, err)
	assert.True(t, view.Remaining.Equal(decimal.RequireFromString("749.50")))
}
