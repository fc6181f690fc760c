package budget

import "errors"

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalidAmount    = errors.New("amount must be between 1 and 9999999")
	ErrInvalidDate      = errors.New("transaction date must be YYYY-MM-DD")
	ErrInvalidMonth     = errors.New("month must be YYYY-MM")
	ErrNameTooLong      = errors.New("category name exceeds 20 characters")
	ErrMemoTooLong      = errors.New("memo exceeds 200 characters")
	ErrSourceTooLong    = errors.New("income source exceeds 50 characters")
	ErrEmptyName        = errors.New("category name is required")
	ErrEmptySource      = errors.New("income source is required")
	ErrInvalidType      = errors.New("category type must be expense, income or both")
)
