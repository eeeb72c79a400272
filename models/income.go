package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Income 收入记录模型
type Income struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	UserID    uint            `json:"user_id" gorm:"index;not null"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null" swaggertype:"string"`
	Date      time.Time       `json:"date" gorm:"not null"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (Income) TableName() string {
	return "incomes"
}
