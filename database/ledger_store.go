package database

import (
	"context"

	"budget/apperr"
	"budget/ledger"
	"budget/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// LedgerStore 基于 gorm 的账本存储
type LedgerStore struct {
	db *gorm.DB
}

var _ ledger.Store = (*LedgerStore)(nil)

// NewLedgerStore 创建账本存储
func NewLedgerStore(db *gorm.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

func (s *LedgerStore) InsertExpense(ctx context.Context, e *models.Expense) error {
	return apperr.Storage(s.db.WithContext(ctx).Create(e).Error, "insert expense")
}

func (s *LedgerStore) GetExpense(ctx context.Context, id uint) (models.Expense, error) {
	var e models.Expense
	err := s.db.WithContext(ctx).First(&e, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Expense{}, apperr.NotFoundf("expense %d", id)
	}
	if err != nil {
		return models.Expense{}, apperr.Storage(err, "get expense")
	}
	return e, nil
}

func (s *LedgerStore) ListExpenses(ctx context.Context, owner uint) ([]models.Expense, error) {
	expenses := make([]models.Expense, 0)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", owner).
		Order("id DESC").
		Find(&expenses).Error
	if err != nil {
		return nil, apperr.Storage(err, "list expenses")
	}
	return expenses, nil
}

func (s *LedgerStore) UpdateExpense(ctx context.Context, id uint, fields ledger.ExpenseFields) error {
	res := s.db.WithContext(ctx).
		Model(&models.Expense{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"category":    fields.Category,
			"amount":      fields.Amount,
			"description": fields.Description,
			"date":        fields.Date,
		})
	if res.Error != nil {
		return apperr.Storage(res.Error, "update expense")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFoundf("expense %d", id)
	}
	return nil
}

func (s *LedgerStore) DeleteExpense(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Expense{}, id)
	if res.Error != nil {
		return apperr.Storage(res.Error, "delete expense")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFoundf("expense %d", id)
	}
	return nil
}

func (s *LedgerStore) InsertIncome(ctx context.Context, in *models.Income) error {
	return apperr.Storage(s.db.WithContext(ctx).Create(in).Error, "insert income")
}

func (s *LedgerStore) GetIncome(ctx context.Context, id uint) (models.Income, error) {
	var in models.Income
	err := s.db.WithContext(ctx).First(&in, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Income{}, apperr.NotFoundf("income %d", id)
	}
	if err != nil {
		return models.Income{}, apperr.Storage(err, "get income")
	}
	return in, nil
}

func (s *LedgerStore) ListIncomes(ctx context.Context, owner uint) ([]models.Income, error) {
	incomes := make([]models.Income, 0)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", owner).
		Order("id DESC").
		Find(&incomes).Error
	if err != nil {
		return nil, apperr.Storage(err, "list incomes")
	}
	return incomes, nil
}

func (s *LedgerStore) DeleteIncome(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Income{}, id)
	if res.Error != nil {
		return apperr.Storage(res.Error, "delete income")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFoundf("income %d", id)
	}
	return nil
}

func (s *LedgerStore) DeleteIncomesByOwner(ctx context.Context, owner uint) (int64, error) {
	res := s.db.WithContext(ctx).Where("user_id = ?", owner).Delete(&models.Income{})
	if res.Error != nil {
		return 0, apperr.Storage(res.Error, "reset incomes")
	}
	return res.RowsAffected, nil
}
