package provider

import "time"

// Config holds the local session provider's settings.
type Config struct {
	TokenSecret     string        `env:"AUTH_TOKEN_SECRET,required"`
	AccessTokenTTL  time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" envDefault:"1h"`
	RefreshTokenTTL time.Duration `env:"AUTH_REFRESH_TOKEN_TTL" envDefault:"720h"`
	BcryptCost      int           `env:"AUTH_BCRYPT_COST" envDefault:"10"`
	StateTTL        time.Duration `env:"AUTH_OAUTH_STATE_TTL" envDefault:"10m"`
	// RedirectURL is the application's OAuth callback route; the provider
	// sends Google/GitHub back here.
	RedirectURL string `env:"AUTH_REDIRECT_URL" envDefault:"http://localhost:8080/auth/callback"`
}

// GoogleConfig holds the Google OAuth client settings.
type GoogleConfig struct {
	ClientID     string   `env:"GOOGLE_OAUTH_CLIENT_ID"`
	ClientSecret string   `env:"GOOGLE_OAUTH_CLIENT_SECRET"`
	Scopes       []string `env:"GOOGLE_OAUTH_SCOPES" envSeparator:"," envDefault:"https://www.googleapis.com/auth/userinfo.email,https://www.googleapis.com/auth/userinfo.profile"`
}

// GithubConfig holds the GitHub OAuth client settings.
type GithubConfig struct {
	ClientID     string   `env:"GITHUB_OAUTH_CLIENT_ID"`
	ClientSecret string   `env:"GITHUB_OAUTH_CLIENT_SECRET"`
	Scopes       []string `env:"GITHUB_OAUTH_SCOPES" envSeparator:"," envDefault:"read:user,user:email"`
}
