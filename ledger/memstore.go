package ledger

import (
	"context"
	"sync"
	"time"

	"budget/apperr"
	"budget/models"
)

// MemoryStore 进程内存储，主要用于测试与 storage.backend=memory
type MemoryStore struct {
	mu       sync.Mutex
	nextID   uint
	expenses []models.Expense
	incomes  []models.Income
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) allocID() uint {
	s.nextID++
	return s.nextID
}

func (s *MemoryStore) InsertExpense(_ context.Context, e *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	e.ID = s.allocID()
	if e.Date.IsZero() {
		e.Date = now
	}
	e.CreatedAt, e.UpdatedAt = now, now
	s.expenses = append(s.expenses, *e)
	return nil
}

func (s *MemoryStore) GetExpense(_ context.Context, id uint) (models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return models.Expense{}, apperr.NotFoundf("expense %d", id)
}

func (s *MemoryStore) ListExpenses(_ context.Context, owner uint) ([]models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]models.Expense, 0)
	for i := len(s.expenses) - 1; i >= 0; i-- {
		if s.expenses[i].UserID == owner {
			list = append(list, s.expenses[i])
		}
	}
	return list, nil
}

func (s *MemoryStore) UpdateExpense(_ context.Context, id uint, fields ExpenseFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.expenses {
		if s.expenses[i].ID != id {
			continue
		}
		e := &s.expenses[i]
		e.Category = fields.Category
		e.Amount = fields.Amount
		e.Description = fields.Description
		e.Date = fields.Date
		e.UpdatedAt = time.Now()
		return nil
	}
	return apperr.NotFoundf("expense %d", id)
}

func (s *MemoryStore) DeleteExpense(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.expenses {
		if e.ID == id {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return nil
		}
	}
	return apperr.NotFoundf("expense %d", id)
}

func (s *MemoryStore) InsertIncome(_ context.Context, in *models.Income) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	in.ID = s.allocID()
	if in.Date.IsZero() {
		in.Date = now
	}
	in.CreatedAt, in.UpdatedAt = now, now
	s.incomes = append(s.incomes, *in)
	return nil
}

func (s *MemoryStore) GetIncome(_ context.Context, id uint) (models.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, in := range s.incomes {
		if in.ID == id {
			return in, nil
		}
	}
	return models.Income{}, apperr.NotFoundf("income %d", id)
}

func (s *MemoryStore) ListIncomes(_ context.Context, owner uint) ([]models.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]models.Income, 0)
	for i := len(s.incomes) - 1; i >= 0; i-- {
		if s.incomes[i].UserID == owner {
			list = append(list, s.incomes[i])
		}
	}
	return list, nil
}

func (s *MemoryStore) DeleteIncome(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, in := range s.incomes {
		if in.ID == id {
			s.incomes = append(s.incomes[:i], s.incomes[i+1:]...)
			return nil
		}
	}
	return apperr.NotFoundf("income %d", id)
}

func (s *MemoryStore) DeleteIncomesByOwner(_ context.Context, owner uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.incomes[:0]
	var removed int64
	for _, in := range s.incomes {
		if in.UserID == owner {
			removed++
			continue
		}
		kept = append(kept, in)
	}
	s.incomes = kept
	return removed, nil
}
