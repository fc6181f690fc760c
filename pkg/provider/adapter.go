package provider

import "context"

// OAuthProfile is the normalized identity a provider adapter resolves from an
// authorization code.
type OAuthProfile struct {
	ProviderUserID string
	Email          string
	EmailVerified  bool
	Name           string
	AvatarURL      string
}

// Adapter hides one OAuth provider's specifics behind a uniform surface.
type Adapter interface {
	// ProviderID returns the identifier used in metadata and routing
	// ("google", "github").
	ProviderID() string

	// AuthURL builds the provider's authorization URL carrying the CSRF
	// state token. The extra params come from the orchestrator (e.g.
	// Google's offline access and forced consent).
	AuthURL(state string, params map[string]string) string

	// ResolveProfile exchanges the authorization code and fetches the
	// user's profile. Exchange failures surface as auth.ErrInvalidCode.
	ResolveProfile(ctx context.Context, code string) (OAuthProfile, error)
}
