// Package ledger 实现收支账本：存储接口、汇总计算与账本服务
package ledger

import (
	"context"
	"time"

	"budget/models"

	"github.com/shopspring/decimal"
)

// ExpenseFields 消费记录可更新字段
type ExpenseFields struct {
	Category    string
	Amount      decimal.Decimal
	Description string
	Date        time.Time
}

// Store 账本持久化接口，按 owner 分区
// 列表按插入顺序倒序返回（最近的在前）
type Store interface {
	InsertExpense(ctx context.Context, e *models.Expense) error
	GetExpense(ctx context.Context, id uint) (models.Expense, error)
	ListExpenses(ctx context.Context, owner uint) ([]models.Expense, error)
	UpdateExpense(ctx context.Context, id uint, fields ExpenseFields) error
	DeleteExpense(ctx context.Context, id uint) error

	InsertIncome(ctx context.Context, in *models.Income) error
	GetIncome(ctx context.Context, id uint) (models.Income, error)
	ListIncomes(ctx context.Context, owner uint) ([]models.Income, error)
	DeleteIncome(ctx context.Context, id uint) error
	DeleteIncomesByOwner(ctx context.Context, owner uint) (int64, error)
}
