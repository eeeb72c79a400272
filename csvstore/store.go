// Package csvstore 基于 CSV 文件的单用户账本存储
package csvstore

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"budget/apperr"
	"budget/ledger"
	"budget/models"

	"github.com/pkg/errors"
)

// Format CSV 行格式
type Format string

const (
	// FormatPlain category,amount / amount
	FormatPlain Format = "plain"
	// FormatDated date,category,amount[,description] / date,amount
	FormatDated Format = "dated"
)

// DateLayout dated 格式的日期布局
const DateLayout = "2006-01-02"

// Store CSV 存储，数据加载到内存，写操作同步落盘
//
// 编号按文件行序从 1 开始分配，进程内单调递增；文件本身不保存编号。
type Store struct {
	mu          sync.Mutex
	owner       uint
	format      Format
	expensePath string
	incomePath  string

	nextExpenseID uint
	nextIncomeID  uint
	expenses      []models.Expense
	incomes       []models.Income
}

var _ ledger.Store = (*Store)(nil)

// Open 打开（或创建）CSV 存储，owner 为唯一允许的所有者
func Open(expensePath, incomePath string, format Format, owner uint) (*Store, error) {
	if format != FormatPlain && format != FormatDated {
		return nil, fmt.Errorf("未知的 csv 格式 %q", format)
	}
	s := &Store{
		owner:       owner,
		format:      format,
		expensePath: expensePath,
		incomePath:  incomePath,
	}

	rows, err := readRows(expensePath)
	if err != nil {
		return nil, apperr.Storage(err, "load expenses")
	}
	for i, row := range rows {
		e, err := s.parseExpense(row)
		if err != nil {
			return nil, apperr.Storage(errors.Wrapf(err, "%s:%d", expensePath, i+1), "load expenses")
		}
		s.nextExpenseID++
		e.ID = s.nextExpenseID
		s.expenses = append(s.expenses, e)
	}

	rows, err = readRows(incomePath)
	if err != nil {
		return nil, apperr.Storage(err, "load incomes")
	}
	for i, row := range rows {
		in, err := s.parseIncome(row)
		if err != nil {
			return nil, apperr.Storage(errors.Wrapf(err, "%s:%d", incomePath, i+1), "load incomes")
		}
		s.nextIncomeID++
		in.ID = s.nextIncomeID
		s.incomes = append(s.incomes, in)
	}
	return s, nil
}

func readRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	// 列数由格式校验，不交给 csv.Reader
	r.FieldsPerRecord = -1
	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

func (s *Store) parseExpense(row []string) (models.Expense, error) {
	e := models.Expense{UserID: s.owner}
	var amount string
	switch s.format {
	case FormatPlain:
		if len(row) != 2 {
			return e, fmt.Errorf("expected 2 columns, got %d", len(row))
		}
		e.Category, amount = row[0], row[1]
	case FormatDated:
		if len(row) != 3 && len(row) != 4 {
			return e, fmt.Errorf("expected 3 or 4 columns, got %d", len(row))
		}
		date, err := time.ParseInLocation(DateLayout, row[0], time.Local)
		if err != nil {
			return e, err
		}
		e.Date = date
		e.Category, amount = row[1], row[2]
		if len(row) == 4 {
			e.Description = row[3]
		}
	}
	d, err := ledger.ParseAmount(amount)
	if err != nil {
		return e, fmt.Errorf("invalid amount %q: %v", amount, err)
	}
	e.Amount = d
	return e, nil
}

func (s *Store) parseIncome(row []string) (models.Income, error) {
	in := models.Income{UserID: s.owner}
	var amount string
	switch s.format {
	case FormatPlain:
		if len(row) != 1 {
			return in, fmt.Errorf("expected 1 column, got %d", len(row))
		}
		amount = row[0]
	case FormatDated:
		if len(row) != 2 {
			return in, fmt.Errorf("expected 2 columns, got %d", len(row))
		}
		date, err := time.ParseInLocation(DateLayout, row[0], time.Local)
		if err != nil {
			return in, err
		}
		in.Date = date
		amount = row[1]
	}
	d, err := ledger.ParseAmount(amount)
	if err != nil {
		return in, fmt.Errorf("invalid amount %q: %v", amount, err)
	}
	in.Amount = d
	return in, nil
}

func (s *Store) expenseRow(e models.Expense) []string {
	if s.format == FormatPlain {
		return []string{e.Category, e.Amount.StringFixed(2)}
	}
	row := []string{e.Date.Format(DateLayout), e.Category, e.Amount.StringFixed(2)}
	if e.Description != "" {
		row = append(row, e.Description)
	}
	return row
}

func (s *Store) incomeRow(in models.Income) []string {
	if s.format == FormatPlain {
		return []string{in.Amount.StringFixed(2)}
	}
	return []string{in.Date.Format(DateLayout), in.Amount.StringFixed(2)}
}

func (s *Store) checkOwner(owner uint) error {
	if owner != s.owner {
		return fmt.Errorf("csv store belongs to user %d, got %d", s.owner, owner)
	}
	return nil
}

func appendRow(path string, row []string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(row); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// rewrite 写入临时文件后原子替换
func rewrite(path string, rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *Store) expenseRows(list []models.Expense) [][]string {
	rows := make([][]string, 0, len(list))
	for _, e := range list {
		rows = append(rows, s.expenseRow(e))
	}
	return rows
}

func (s *Store) incomeRows(list []models.Income) [][]string {
	rows := make([][]string, 0, len(list))
	for _, in := range list {
		rows = append(rows, s.incomeRow(in))
	}
	return rows
}

func (s *Store) InsertExpense(_ context.Context, e *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOwner(e.UserID); err != nil {
		return apperr.Storage(err, "insert expense")
	}
	now := time.Now()
	if e.Date.IsZero() {
		e.Date = now
	}
	if err := appendRow(s.expensePath, s.expenseRow(*e)); err != nil {
		return apperr.Storage(err, "insert expense")
	}
	s.nextExpenseID++
	e.ID = s.nextExpenseID
	e.CreatedAt, e.UpdatedAt = now, now
	s.expenses = append(s.expenses, *e)
	return nil
}

func (s *Store) GetExpense(_ context.Context, id uint) (models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return models.Expense{}, apperr.NotFoundf("expense %d", id)
}

func (s *Store) ListExpenses(_ context.Context, owner uint) ([]models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]models.Expense, 0, len(s.expenses))
	if owner != s.owner {
		return list, nil
	}
	for i := len(s.expenses) - 1; i >= 0; i-- {
		list = append(list, s.expenses[i])
	}
	return list, nil
}

func (s *Store) UpdateExpense(_ context.Context, id uint, fields ledger.ExpenseFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, e := range s.expenses {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return apperr.NotFoundf("expense %d", id)
	}

	next := make([]models.Expense, len(s.expenses))
	copy(next, s.expenses)
	e := &next[idx]
	e.Category = fields.Category
	e.Amount = fields.Amount
	e.Description = fields.Description
	e.Date = fields.Date
	e.UpdatedAt = time.Now()

	if err := rewrite(s.expensePath, s.expenseRows(next)); err != nil {
		return apperr.Storage(err, "update expense")
	}
	s.expenses = next
	return nil
}

func (s *Store) DeleteExpense(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		if e.ID != id {
			next = append(next, e)
		}
	}
	if len(next) == len(s.expenses) {
		return apperr.NotFoundf("expense %d", id)
	}
	if err := rewrite(s.expensePath, s.expenseRows(next)); err != nil {
		return apperr.Storage(err, "delete expense")
	}
	s.expenses = next
	return nil
}

func (s *Store) InsertIncome(_ context.Context, in *models.Income) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOwner(in.UserID); err != nil {
		return apperr.Storage(err, "insert income")
	}
	now := time.Now()
	if in.Date.IsZero() {
		in.Date = now
	}
	if err := appendRow(s.incomePath, s.incomeRow(*in)); err != nil {
		return apperr.Storage(err, "insert income")
	}
	s.nextIncomeID++
	in.ID = s.nextIncomeID
	in.CreatedAt, in.UpdatedAt = now, now
	s.incomes = append(s.incomes, *in)
	return nil
}

func (s *Store) GetIncome(_ context.Context, id uint) (models.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, in := range s.incomes {
		if in.ID == id {
			return in, nil
		}
	}
	return models.Income{}, apperr.NotFoundf("income %d", id)
}

func (s *Store) ListIncomes(_ context.Context, owner uint) ([]models.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]models.Income, 0, len(s.incomes))
	if owner != s.owner {
		return list, nil
	}
	for i := len(s.incomes) - 1; i >= 0; i-- {
		list = append(list, s.incomes[i])
	}
	return list, nil
}

func (s *Store) DeleteIncome(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.Income, 0, len(s.incomes))
	for _, in := range s.incomes {
		if in.ID != id {
			next = append(next, in)
		}
	}
	if len(next) == len(s.incomes) {
		return apperr.NotFoundf("income %d", id)
	}
	if err := rewrite(s.incomePath, s.incomeRows(next)); err != nil {
		return apperr.Storage(err, "delete income")
	}
	s.incomes = next
	return nil
}

func (s *Store) DeleteIncomesByOwner(_ context.Context, owner uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if owner != s.owner || len(s.incomes) == 0 {
		return 0, nil
	}
	if err := rewrite(s.incomePath, nil); err != nil {
		return 0, apperr.Storage(err, "reset incomes")
	}
	n := int64(len(s.incomes))
	s.incomes = nil
	return n, nil
}
