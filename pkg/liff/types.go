package liff

import "context"

// Profile is the LINE identity profile. The JSON field names match the
// persisted profile-cache layout.
type Profile struct {
	UserID        string `json:"userId"`
	DisplayName   string `json:"displayName"`
	PictureURL    string `json:"pictureUrl,omitempty"`
	StatusMessage string `json:"statusMessage,omitempty"`
}

// Config holds the LIFF integration settings. The mock-vs-real decision is
// not part of it; NewClient takes that from the access detector, the one
// place the mock flag resolves.
type Config struct {
	// LiffID is the LINE mini-app identifier.
	LiffID string `env:"LIFF_ID"`
	// TestUserID seeds the mock provider's profile.
	TestUserID string `env:"TEST_LINE_USER_ID" envDefault:"mock-user-123"`
	// TestDisplayName seeds the mock provider's profile.
	TestDisplayName string `env:"TEST_LINE_DISPLAY_NAME" envDefault:"テストユーザー"`
}

// Provider is the capability surface the application needs from a LINE
// identity backend. Implementations must be safe for concurrent use.
type Provider interface {
	// Init prepares the provider for the given LIFF ID. Must be called
	// before GetProfile or GetAccessToken.
	Init(ctx context.Context, liffID string) error

	// GetProfile returns the authenticated LINE user's profile.
	GetProfile(ctx context.Context) (Profile, error)

	// GetAccessToken returns the LINE-issued access token.
	GetAccessToken(ctx context.Context) (string, error)

	// IsLoggedIn reports whether a LINE login session exists.
	IsLoggedIn() bool

	// IsInClient reports whether the caller is embedded in the LINE app.
	IsInClient() bool

	// Login starts the LINE login flow. A non-empty return value is a URL
	// the browser must be redirected to; an empty value means no redirect
	// was necessary.
	Login(ctx context.Context) (string, error)

	// OpenWindow asks LINE to reopen url inside the app. A non-empty return
	// value is the deep link to navigate to; empty means no-op.
	OpenWindow(ctx context.Context, url string) (string, error)
}
