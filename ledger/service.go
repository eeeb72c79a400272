package ledger

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"budget/apperr"
	"budget/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	maxCategoryLen    = 50
	maxDescriptionLen = 100
	maxAmountLen      = 32

	// 指数超出该范围时 Round 会构造极大的 big.Int
	maxAmountExp = 8
	minAmountExp = -20
)

// maxAmount 与 decimal(10,2) 列宽一致
var maxAmount = decimal.RequireFromString("99999999.99")

// Options 账本能力开关
type Options struct {
	// Categories 固定有序类别集合
	Categories []string
	// StrictCategories 为 false 时接受任意非空类别（单用户自由文本模式）
	StrictCategories bool
}

// ExpenseInput 新增/编辑消费记录的输入
type ExpenseInput struct {
	Category    string
	Amount      string
	Description string
}

// DashboardView 仪表盘数据
type DashboardView struct {
	Expenses   []models.Expense `json:"expenses"`
	Incomes    []models.Income  `json:"incomes"`
	Categories []string         `json:"categories"`
	Summary
}

// Service 账本服务：校验输入、校验归属，再访问存储
type Service struct {
	store Store
	opts  Options
	log   *zap.Logger
	now   func() time.Time
}

// Option 服务可选参数
type Option func(*Service)

// WithClock 替换时间来源
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger 设置日志
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService 创建账本服务
func NewService(store Store, opts Options, options ...Option) *Service {
	if len(opts.Categories) == 0 {
		opts.Categories = models.GetCategories()
	}
	s := &Service{
		store: store,
		opts:  opts,
		log:   zap.NewNop(),
		now:   time.Now,
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Categories 返回配置的类别集合
func (s *Service) Categories() []string {
	out := make([]string, len(s.opts.Categories))
	copy(out, s.opts.Categories)
	return out
}

// ParseAmount 解析正数金额，按两位小数四舍五入
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, apperr.Invalid("amount", "is required")
	}
	if len(raw) > maxAmountLen {
		return decimal.Zero, apperr.Invalid("amount", "is too long")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperr.Invalid("amount", "is not a number")
	}
	if d.IsZero() {
		return decimal.Zero, apperr.Invalid("amount", "must be greater than zero")
	}
	if d.Exponent() > maxAmountExp {
		return decimal.Zero, apperr.Invalid("amount", "is too large")
	}
	if d.Exponent() < minAmountExp {
		return decimal.Zero, apperr.Invalid("amount", "has too many decimal places")
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return decimal.Zero, apperr.Invalid("amount", "must be greater than zero")
	}
	if d.GreaterThan(maxAmount) {
		return decimal.Zero, apperr.Invalid("amount", "is too large")
	}
	return d, nil
}

func (s *Service) validateExpense(in ExpenseInput) (ExpenseFields, error) {
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return ExpenseFields{}, apperr.Invalid("category", "is required")
	}
	if utf8.RuneCountInString(category) > maxCategoryLen {
		return ExpenseFields{}, apperr.Invalid("category", "is too long")
	}
	if s.opts.StrictCategories && !s.knownCategory(category) {
		return ExpenseFields{}, apperr.Invalid("category", "is not one of the configured categories")
	}

	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return ExpenseFields{}, err
	}

	description := strings.TrimSpace(in.Description)
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return ExpenseFields{}, apperr.Invalid("description", "is too long")
	}

	return ExpenseFields{
		Category:    category,
		Amount:      amount,
		Description: description,
		Date:        s.now(),
	}, nil
}

func (s *Service) knownCategory(category string) bool {
	for _, c := range s.opts.Categories {
		if c == category {
			return true
		}
	}
	return false
}

func checkOwner(owner uint) error {
	if owner == 0 {
		return apperr.Invalid("owner", "is required")
	}
	return nil
}

// AddExpense 新增消费记录，日期为当前时间
func (s *Service) AddExpense(ctx context.Context, owner uint, in ExpenseInput) (models.Expense, error) {
	if err := checkOwner(owner); err != nil {
		return models.Expense{}, err
	}
	fields, err := s.validateExpense(in)
	if err != nil {
		return models.Expense{}, err
	}

	e := models.Expense{
		UserID:      owner,
		Category:    fields.Category,
		Amount:      fields.Amount,
		Description: fields.Description,
		Date:        fields.Date,
	}
	if err := s.store.InsertExpense(ctx, &e); err != nil {
		return models.Expense{}, err
	}

	s.log.Info("expense added",
		zap.Uint("owner", owner),
		zap.Uint("id", e.ID),
		zap.String("category", e.Category),
		zap.String("amount", e.Amount.StringFixed(2)))
	return e, nil
}

// GetExpense 获取单条消费记录
func (s *Service) GetExpense(ctx context.Context, owner, id uint) (models.Expense, error) {
	if err := checkOwner(owner); err != nil {
		return models.Expense{}, err
	}
	e, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return models.Expense{}, err
	}
	if e.UserID != owner {
		return models.Expense{}, apperr.Forbiddenf("expense %d", id)
	}
	return e, nil
}

// ListExpenses 获取消费记录，最近的在前
func (s *Service) ListExpenses(ctx context.Context, owner uint) ([]models.Expense, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	return s.store.ListExpenses(ctx, owner)
}

// EditExpense 编辑消费记录，日期重新设为当前时间
func (s *Service) EditExpense(ctx context.Context, owner, id uint, in ExpenseInput) (models.Expense, error) {
	if err := checkOwner(owner); err != nil {
		return models.Expense{}, err
	}
	fields, err := s.validateExpense(in)
	if err != nil {
		return models.Expense{}, err
	}

	e, err := s.GetExpense(ctx, owner, id)
	if err != nil {
		return models.Expense{}, err
	}
	if err := s.store.UpdateExpense(ctx, id, fields); err != nil {
		return models.Expense{}, err
	}

	e.Category = fields.Category
	e.Amount = fields.Amount
	e.Description = fields.Description
	e.Date = fields.Date

	s.log.Info("expense edited", zap.Uint("owner", owner), zap.Uint("id", id))
	return e, nil
}

// DeleteExpense 删除消费记录，重复删除返回 NotFound
func (s *Service) DeleteExpense(ctx context.Context, owner, id uint) error {
	if _, err := s.GetExpense(ctx, owner, id); err != nil {
		return err
	}
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.log.Info("expense deleted", zap.Uint("owner", owner), zap.Uint("id", id))
	return nil
}

// AddIncome 新增收入记录
func (s *Service) AddIncome(ctx context.Context, owner uint, amount string) (models.Income, error) {
	if err := checkOwner(owner); err != nil {
		return models.Income{}, err
	}
	amt, err := ParseAmount(amount)
	if err != nil {
		return models.Income{}, err
	}

	in := models.Income{
		UserID: owner,
		Amount: amt,
		Date:   s.now(),
	}
	if err := s.store.InsertIncome(ctx, &in); err != nil {
		return models.Income{}, err
	}

	s.log.Info("income added",
		zap.Uint("owner", owner),
		zap.Uint("id", in.ID),
		zap.String("amount", in.Amount.StringFixed(2)))
	return in, nil
}

// GetIncome 获取单条收入记录
func (s *Service) GetIncome(ctx context.Context, owner, id uint) (models.Income, error) {
	if err := checkOwner(owner); err != nil {
		return models.Income{}, err
	}
	in, err := s.store.GetIncome(ctx, id)
	if err != nil {
		return models.Income{}, err
	}
	if in.UserID != owner {
		return models.Income{}, apperr.Forbiddenf("income %d", id)
	}
	return in, nil
}

// ListIncomes 获取收入记录，最近的在前
func (s *Service) ListIncomes(ctx context.Context, owner uint) ([]models.Income, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	return s.store.ListIncomes(ctx, owner)
}

// DeleteIncome 删除单条收入记录
func (s *Service) DeleteIncome(ctx context.Context, owner, id uint) error {
	if _, err := s.GetIncome(ctx, owner, id); err != nil {
		return err
	}
	if err := s.store.DeleteIncome(ctx, id); err != nil {
		return err
	}
	s.log.Info("income deleted", zap.Uint("owner", owner), zap.Uint("id", id))
	return nil
}

// ResetIncome 清空当前用户的全部收入
func (s *Service) ResetIncome(ctx context.Context, owner uint) (int64, error) {
	if err := checkOwner(owner); err != nil {
		return 0, err
	}
	n, err := s.store.DeleteIncomesByOwner(ctx, owner)
	if err != nil {
		return 0, err
	}
	s.log.Info("income reset", zap.Uint("owner", owner), zap.Int64("removed", n))
	return n, nil
}

// Dashboard 组合收支列表与汇总
func (s *Service) Dashboard(ctx context.Context, owner uint) (DashboardView, error) {
	if err := checkOwner(owner); err != nil {
		return DashboardView{}, err
	}
	expenses, err := s.store.ListExpenses(ctx, owner)
	if err != nil {
		return DashboardView{}, err
	}
	incomes, err := s.store.ListIncomes(ctx, owner)
	if err != nil {
		return DashboardView{}, err
	}

	categories := s.dashboardCategories(expenses)
	return DashboardView{
		Expenses:   expenses,
		Incomes:    incomes,
		Categories: categories,
		Summary:    Aggregate(expenses, incomes, categories),
	}, nil
}

// dashboardCategories 自由文本模式下在配置集合后追加出现过的其他类别
func (s *Service) dashboardCategories(expenses []models.Expense) []string {
	categories := s.Categories()
	if s.opts.StrictCategories {
		return categories
	}
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		seen[c] = true
	}
	for _, e := range expenses {
		if !seen[e.Category] {
			seen[e.Category] = true
			categories = append(categories, e.Category)
		}
	}
	return categories
}
