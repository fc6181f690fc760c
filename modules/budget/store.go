package budget

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store keeps budget records in process memory, scoped per user. The demo
// deployment has no durable storage; all reads and writes go through here.
type Store struct {
	mu         sync.RWMutex
	categories map[uuid.UUID]*Category
	expenses   map[uuid.UUID]*Expense
	incomes    map[uuid.UUID]*Income
}

func NewStore() *Store {
	return &Store{
		categories: make(map[uuid.UUID]*Category),
		expenses:   make(map[uuid.UUID]*Expense),
		incomes:    make(map[uuid.UUID]*Income),
	}
}

// CreateCategory validates and stores a category, assigning its ID and
// timestamps.
func (s *Store) CreateCategory(_ context.Context, c Category) (Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return Category{}, ErrEmptyName
	}
	if utf8.RuneCountInString(c.Name) > MaxCategoryNameLen {
		return Category{}, ErrNameTooLong
	}
	switch c.Type {
	case TypeExpense, TypeIncome, TypeBoth:
	default:
		return Category{}, ErrInvalidType
	}
	if c.MonthlyBudget != nil {
		if err := validateAmount(*c.MonthlyBudget); err != nil {
			return Category{}, err
		}
	}

	now := time.Now()
	c.ID = uuid.New()
	c.IsActive = true
	c.CreatedAt = now
	c.UpdatedAt = now

	s.mu.Lock()
	s.categories[c.ID] = &c
	s.mu.Unlock()
	return c, nil
}

// ListCategories returns the user's active categories ordered by type, then
// sort order.
func (s *Store) ListCategories(_ context.Context, userID uuid.UUID) []Category {
	s.mu.RLock()
	out := make([]Category, 0, len(s.categories))
	for _, c := range s.categories {
		if c.UserID == userID && c.IsActive {
			out = append(out, *c)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].SortOrder < out[j].SortOrder
	})
	return out
}

// CreateExpense validates and stores a spending record. The category must
// exist, belong to the same user, and accept expenses.
func (s *Store) CreateExpense(_ context.Context, e Expense) (Expense, error) {
	if err := validateAmount(e.Amount); err != nil {
		return Expense{}, err
	}
	if _, err := time.Parse(dateLayout, e.Date); err != nil {
		return Expense{}, ErrInvalidDate
	}
	if utf8.RuneCountInString(e.Memo) > MaxMemoLen {
		return Expense{}, ErrMemoTooLong
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cat, ok := s.categories[e.CategoryID]
	if !ok || cat.UserID != e.UserID || !cat.IsActive || cat.Type == TypeIncome {
		return Expense{}, ErrCategoryNotFound
	}

	now := time.Now()
	e.ID = uuid.New()
	e.CreatedAt = now
	e.UpdatedAt = now
	s.expenses[e.ID] = &e
	return e, nil
}

// CreateIncome validates and stores an earning record.
func (s *Store) CreateIncome(_ context.Context, in Income) (Income, error) {
	if err := validateAmount(in.Amount); err != nil {
		return Income{}, err
	}
	if _, err := time.Parse(dateLayout, in.Date); err != nil {
		return Income{}, ErrInvalidDate
	}
	in.Source = strings.TrimSpace(in.Source)
	if in.Source == "" {
		return Income{}, ErrEmptySource
	}
	if utf8.RuneCountInString(in.Source) > MaxSourceLen {
		return Income{}, ErrSourceTooLong
	}
	if utf8.RuneCountInString(in.Memo) > MaxMemoLen {
		return Income{}, ErrMemoTooLong
	}

	now := time.Now()
	in.ID = uuid.New()
	in.CreatedAt = now
	in.UpdatedAt = now

	s.mu.Lock()
	s.incomes[in.ID] = &in
	s.mu.Unlock()
	return in, nil
}

// ListExpenses returns the user's expenses for one month, newest date first.
func (s *Store) ListExpenses(_ context.Context, userID uuid.UUID, month string) ([]Expense, error) {
	if _, err := time.Parse(monthLayout, month); err != nil {
		return nil, ErrInvalidMonth
	}

	s.mu.RLock()
	out := make([]Expense, 0)
	for _, e := range s.expenses {
		if e.UserID == userID && strings.HasPrefix(e.Date, month) {
			out = append(out, *e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

// ListIncomes returns the user's incomes for one month, newest date first.
func (s *Store) ListIncomes(_ context.Context, userID uuid.UUID, month string) ([]Income, error) {
	if _, err := time.Parse(monthLayout, month); err != nil {
		return nil, ErrInvalidMonth
	}

	s.mu.RLock()
	out := make([]Income, 0)
	for _, in := range s.incomes {
		if in.UserID == userID && strings.HasPrefix(in.Date, month) {
			out = append(out, *in)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

// Summary aggregates one month: per-category spending against budgets plus
// the overall totals.
func (s *Store) Summary(ctx context.Context, userID uuid.UUID, month string) (MonthlySummary, error) {
	expenses, err := s.ListExpenses(ctx, userID, month)
	if err != nil {
		return MonthlySummary{}, err
	}
	incomes, err := s.ListIncomes(ctx, userID, month)
	if err != nil {
		return MonthlySummary{}, err
	}

	spentByCategory := make(map[uuid.UUID]decimal.Decimal)
	totalExpense := decimal.Zero
	for _, e := range expenses {
		spentByCategory[e.CategoryID] = spentByCategory[e.CategoryID].Add(e.Amount)
		totalExpense = totalExpense.Add(e.Amount)
	}

	totalIncome := decimal.Zero
	for _, in := range incomes {
		totalIncome = totalIncome.Add(in.Amount)
	}

	summary := MonthlySummary{
		Month:        month,
		TotalExpense: totalExpense,
		TotalIncome:  totalIncome,
		Balance:      totalIncome.Sub(totalExpense),
	}

	for _, cat := range s.ListCategories(ctx, userID) {
		if cat.Type == TypeIncome {
			continue
		}
		spent := spentByCategory[cat.ID]
		cs := CategorySummary{
			Category: cat,
			Spent:    spent,
			Budget:   cat.MonthlyBudget,
		}
		if cat.MonthlyBudget != nil {
			remaining := cat.MonthlyBudget.Sub(spent)
			cs.Remaining = &remaining
			cs.OverSpent = remaining.IsNegative()
		}
		summary.Categories = append(summary.Categories, cs)
	}

	return summary, nil
}

func validateAmount(d decimal.Decimal) error {
	if d.LessThan(MinAmount) || d.GreaterThan(MaxAmount) {
		return ErrInvalidAmount
	}
	return nil
}
