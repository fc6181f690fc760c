package budget

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category types.
const (
	TypeExpense = "expense"
	TypeIncome  = "income"
	TypeBoth    = "both"
)

// Validation limits, aligned with the client-side rules.
const (
	MaxCategoryNameLen = 20
	MaxMemoLen         = 200
	MaxSourceLen       = 50
)

// Amount bounds. Amounts are whole yen in the demo deployment, but the
// types carry arbitrary precision.
var (
	MinAmount = decimal.NewFromInt(1)
	MaxAmount = decimal.NewFromInt(9_999_999)
)

// Category groups transactions and optionally carries a monthly budget.
type Category struct {
	ID            uuid.UUID        `json:"id"`
	UserID        uuid.UUID        `json:"user_id"`
	Name          string           `json:"name"`
	Icon          string           `json:"icon"`
	Color         string           `json:"color"`
	Type          string           `json:"type"`
	MonthlyBudget *decimal.Decimal `json:"monthly_budget,omitempty"`
	SortOrder     int              `json:"sort_order"`
	IsActive      bool             `json:"is_active"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Expense is one spending record.
type Expense struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	CategoryID uuid.UUID       `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
	Date       string          `json:"transaction_date"`
	Memo       string          `json:"memo,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Income is one earning record.
type Income struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Date      string          `json:"transaction_date"`
	Source    string          `json:"source"`
	Memo      string          `json:"memo,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CategorySummary is one category's slice of a monthly summary.
type CategorySummary struct {
	Category  Category         `json:"category"`
	Spent     decimal.Decimal  `json:"spent"`
	Budget    *decimal.Decimal `json:"budget,omitempty"`
	Remaining *decimal.Decimal `json:"remaining,omitempty"`
	OverSpent bool             `json:"overspent"`
}

// MonthlySummary aggregates one calendar month.
type MonthlySummary struct {
	Month        string            `json:"month"`
	TotalExpense decimal.Decimal   `json:"total_expense"`
	TotalIncome  decimal.Decimal   `json:"total_income"`
	Balance      decimal.Decimal   `json:"balance"`
	Categories   []CategorySummary `json:"categories"`
}

// dateLayout is the transaction-date wire format.
const dateLayout = "2006-01-02"

// monthLayout selects a calendar month, e.g. "2025-06".
const monthLayout = "2006-01"
