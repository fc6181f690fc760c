package auth

import (
	"context"

	"github.com/google/uuid"
)

// SessionProvider is the external session backend the orchestrator drives.
// Every method is an opaque remote call that may fail; Session and User
// return nil without error when no session exists.
type SessionProvider interface {
	// SignInWithPassword authenticates existing credentials.
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)

	// SignUp registers a new user, persisting the metadata atomically with
	// the account, and signs it in.
	SignUp(ctx context.Context, email, password string, metadata Metadata) (*Session, error)

	// OAuthURL builds the provider's redirect-based OAuth entry URL.
	OAuthURL(ctx context.Context, provider, redirectTo string, params map[string]string) (string, error)

	// ExchangeCode trades a callback-route authorization code for a session.
	ExchangeCode(ctx context.Context, code string) (*Session, error)

	// SignOut terminates the current session.
	SignOut(ctx context.Context) error

	// Session returns the current session, or nil when signed out.
	Session(ctx context.Context) (*Session, error)

	// User returns the current user, or nil when signed out.
	User(ctx context.Context) (*User, error)

	// OnChange subscribes to session-change events, delivered in emission
	// order. The returned function cancels the subscription.
	OnChange(cb func(ChangeEvent)) (unsubscribe func())
}

// ProfileStore receives best-effort profile-sync upserts into the
// application's own user-profile records.
type ProfileStore interface {
	UpsertProfile(ctx context.Context, userID uuid.UUID, data ProfileData) error
}

// LineProfileCache is the slice of the persisted LINE-profile store the
// orchestrator needs: clearing it on sign-out.
type LineProfileCache interface {
	Clear(ctx context.Context) error
}
