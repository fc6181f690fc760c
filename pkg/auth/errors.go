package auth

import "errors"

// General authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrNoSession          = errors.New("no active session")
)

// LINE-specific errors
var (
	// ErrNotInLiffEnvironment rejects LINE sign-in outside the LINE context,
	// before any network or SDK call.
	ErrNotInLiffEnvironment = errors.New("LINE login is only available in the LINE app")

	// ErrLineExchangeNotImplemented marks the production LINE credential
	// exchange, which requires a trusted backend outside this repository.
	ErrLineExchangeNotImplemented = errors.New("LINE authentication not fully implemented yet")
)

// OAuth errors
var (
	ErrInvalidCode   = errors.New("invalid authorization code")
	ErrInvalidState  = errors.New("invalid OAuth state")
	ErrStateNotFound = errors.New("OAuth state not found or expired")
)

// fallbackErrorMessage is shown when a provider error carries no usable message.
const fallbackErrorMessage = "authentication failed"

// Error is the normalized shape every user-initiated auth operation fails
// with: a user-facing message and an optional machine code. It wraps the raw
// error so errors.Is/As still work at the caller.
type Error struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	raw     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.raw }

// Coder lets provider errors surface a machine-readable code through
// normalization.
type Coder interface {
	AuthCode() string
}
