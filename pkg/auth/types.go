package auth

import (
	"time"

	"github.com/google/uuid"
)

// Authentication provider identifiers recorded on user metadata.
const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
	ProviderGithub = "github"
	ProviderLine   = "line"
)

// Session-change event names, as emitted by the session provider.
const (
	EventSignedIn       = "SIGNED_IN"
	EventSignedOut      = "SIGNED_OUT"
	EventTokenRefreshed = "TOKEN_REFRESHED"
)

// Metadata is the application-specific extension of a user record.
type Metadata struct {
	DisplayName  string `json:"display_name,omitempty"`
	AvatarURL    string `json:"avatar_url,omitempty"`
	LineUserID   string `json:"line_user_id,omitempty"`
	AuthProvider string `json:"auth_provider,omitempty"`
}

// User is the session's embedded user record.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Metadata  Metadata  `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the provider-issued credential bundle. The orchestrator only
// reads and relays it; the session provider owns its internals.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *User     `json:"user"`
}

// ChangeEvent is one entry of the provider's session-change stream.
// Session is nil for sign-out events.
type ChangeEvent struct {
	Event   string
	Session *Session
}

// ProfileData is the merged record the profile-sync step upserts into the
// application's own user-profile store.
type ProfileData struct {
	Email        string
	DisplayName  string
	AvatarURL    string
	LineUserID   string
	AuthProvider string
}
