package ledger

import (
	"testing"

	"budget/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(nil, nil, models.GetCategories())

	assert.True(t, s.TotalIncome.IsZero())
	assert.True(t, s.TotalSpent.IsZero())
	assert.True(t, s.Remaining.IsZero())
	assert.Len(t, s.TotalsByCategory, len(models.GetCategories()))
	for _, ct := range s.TotalsByCategory {
		assert.True(t, ct.Total.IsZero(), ct.Category)
	}
}

func TestAggregate_Totals(t *testing.T) {
	expenses := []models.Expense{
		{Category: "Bills", Amount: dec("50.00")},
		{Category: "Fun", Amount: dec("12.50")},
		{Category: "Bills", Amount: dec("25.00")},
		{Category: "Unlisted", Amount: dec("1.25")},
	}
	incomes := []models.Income{
		{Amount: dec("100")},
		{Amount: dec("20.10")},
	}

	s := Aggregate(expenses, incomes, []string{"Bills", "Debt", "Fun"})

	assert.True(t, s.TotalIncome.Equal(dec("120.10")))
	assert.True(t, s.TotalSpent.Equal(dec("88.75")))
	assert.True(t, s.Remaining.Equal(dec("31.35")))
	assert.Equal(t, []string{"Bills", "Debt", "Fun"}, s.TotalsByCategory.Labels())
	assert.True(t, s.TotalsByCategory.Get("Bills").Equal(dec("75")))
	assert.True(t, s.TotalsByCategory.Get("Debt").IsZero())
	assert.True(t, s.TotalsByCategory.Get("Fun").Equal(dec("12.5")))
	assert.True(t, s.TotalsByCategory.Get("Unlisted").IsZero())
	assert.Len(t, s.TotalsByCategory.Values(), 3)
}

func TestAggregate_OrderIndependent(t *testing.T) {
	a := []models.Expense{
		{Category: "Bills", Amount: dec("0.10")},
		{Category: "Bills", Amount: dec("0.20")},
		{Category: "Fun", Amount: dec("3")},
	}
	b := []models.Expense{a[2], a[1], a[0]}
	cats := []string{"Bills", "Fun"}

	sa := Aggregate(a, nil, cats)
	sb := Aggregate(b, nil, cats)

	assert.True(t, sa.TotalSpent.Equal(sb.TotalSpent))
	assert.True(t, sa.TotalsByCategory.Get("Bills").Equal(dec("0.3")))
	assert.True(t, sb.TotalsByCategory.Get("Bills").Equal(dec("0.3")))
	assert.True(t, sa.Remaining.Equal(dec("-3.3")))
}
