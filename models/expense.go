package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense 消费记录模型
type Expense struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	UserID      uint            `json:"user_id" gorm:"index;not null"`
	Category    string          `json:"category" gorm:"size:50;not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null" swaggertype:"string"`
	Description string          `json:"description" gorm:"size:100"`
	Date        time.Time       `json:"date" gorm:"not null"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName 设置表名
func (Expense) TableName() string {
	return "expenses"
}

// 默认消费类别，顺序即仪表盘展示顺序
const (
	CategoryBills     = "Bills"
	CategoryDebt      = "Debt"
	CategorySavings   = "Savings"
	CategoryFun       = "Fun"
	CategoryEmergency = "Emergency Fund"
	CategoryGroceries = "Groceries"
)

// GetCategories 获取默认消费类别
func GetCategories() []string {
	return []string{
		CategoryBills,
		CategoryDebt,
		CategorySavings,
		CategoryFun,
		CategoryEmergency,
		CategoryGroceries,
	}
}
