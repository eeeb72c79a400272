package ledger

import (
	"budget/models"

	"github.com/shopspring/decimal"
)

// CategoryTotal 单个类别的消费合计
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total" swaggertype:"string"`
}

// CategoryTotals 按类别集合顺序排列的合计
type CategoryTotals []CategoryTotal

// Get 返回指定类别的合计，不在集合中返回 0
func (ct CategoryTotals) Get(category string) decimal.Decimal {
	for _, t := range ct {
		if t.Category == category {
			return t.Total
		}
	}
	return decimal.Zero
}

// Labels 图表横轴
func (ct CategoryTotals) Labels() []string {
	labels := make([]string, len(ct))
	for i, t := range ct {
		labels[i] = t.Category
	}
	return labels
}

// Values 图表数据
func (ct CategoryTotals) Values() []decimal.Decimal {
	values := make([]decimal.Decimal, len(ct))
	for i, t := range ct {
		values[i] = t.Total
	}
	return values
}

// Summary 账本汇总
type Summary struct {
	TotalIncome      decimal.Decimal `json:"total_income" swaggertype:"string"`
	TotalSpent       decimal.Decimal `json:"total_spent" swaggertype:"string"`
	Remaining        decimal.Decimal `json:"remaining" swaggertype:"string"`
	TotalsByCategory CategoryTotals  `json:"totals_by_category"`
}

// Aggregate 由一个用户的收支快照计算汇总，无副作用
// 不在 categories 中的消费计入 TotalSpent，但不出现在 TotalsByCategory
func Aggregate(expenses []models.Expense, incomes []models.Income, categories []string) Summary {
	byCategory := make(map[string]decimal.Decimal, len(categories))
	spent := decimal.Zero
	for _, e := range expenses {
		spent = spent.Add(e.Amount)
		byCategory[e.Category] = byCategory[e.Category].Add(e.Amount)
	}

	income := decimal.Zero
	for _, in := range incomes {
		income = income.Add(in.Amount)
	}

	totals := make(CategoryTotals, len(categories))
	for i, c := range categories {
		totals[i] = CategoryTotal{Category: c, Total: byCategory[c]}
	}

	return Summary{
		TotalIncome:      income,
		TotalSpent:       spent,
		Remaining:        income.Sub(spent),
		TotalsByCategory: totals,
	}
}
