package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/moneyflow/moneyflow/pkg/auth"
)

type googleAdapter struct {
	conf       *oauth2.Config
	httpClient *http.Client
	userinfo   string
}

// NewGoogleAdapter creates the Google OAuth adapter. redirectURL is the
// application's callback route.
func NewGoogleAdapter(cfg GoogleConfig, redirectURL string) Adapter {
	return &googleAdapter{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  redirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     google.Endpoint,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
		userinfo:   "https://www.googleapis.com/oauth2/v2/userinfo",
	}
}

func (a *googleAdapter) ProviderID() string {
	return auth.ProviderGoogle
}

func (a *googleAdapter) AuthURL(state string, params map[string]string) string {
	opts := make([]oauth2.AuthCodeOption, 0, len(params))
	for k, v := range params {
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}
	return a.conf.AuthCodeURL(state, opts...)
}

func (a *googleAdapter) ResolveProfile(ctx context.Context, code string) (OAuthProfile, error) {
	tok, err := a.conf.Exchange(ctx, code)
	if err != nil {
		return OAuthProfile{}, auth.ErrInvalidCode
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.userinfo, nil)
	if err != nil {
		return OAuthProfile{}, err
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return OAuthProfile{}, fmt.Errorf("fetch google user: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return OAuthProfile{}, fmt.Errorf("google api returned status %d", resp.StatusCode)
	}

	var user struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return OAuthProfile{}, fmt.Errorf("decode google user: %w", err)
	}

	return OAuthProfile{
		ProviderUserID: user.ID,
		Email:          user.Email,
		EmailVerified:  user.VerifiedEmail,
		Name:           user.Name,
		AvatarURL:      user.Picture,
	}, nil
}

var _ Adapter = (*googleAdapter)(nil)
