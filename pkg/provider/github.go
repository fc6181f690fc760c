package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/moneyflow/moneyflow/pkg/auth"
)

type githubAdapter struct {
	conf       *oauth2.Config
	httpClient *http.Client
	apiBase    string
}

// NewGithubAdapter creates the GitHub OAuth adapter.
func NewGithubAdapter(cfg GithubConfig, redirectURL string) Adapter {
	return &githubAdapter{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  redirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     github.Endpoint,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiBase:    "https://api.github.com",
	}
}

func (a *githubAdapter) ProviderID() string {
	return auth.ProviderGithub
}

func (a *githubAdapter) AuthURL(state string, params map[string]string) string {
	opts := make([]oauth2.AuthCodeOption, 0, len(params))
	for k, v := range params {
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}
	return a.conf.AuthCodeURL(state, opts...)
}

func (a *githubAdapter) ResolveProfile(ctx context.Context, code string) (OAuthProfile, error) {
	tok, err := a.conf.Exchange(ctx, code)
	if err != nil {
		return OAuthProfile{}, auth.ErrInvalidCode
	}

	var user struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := a.getJSON(ctx, tok.AccessToken, "/user", &user); err != nil {
		return OAuthProfile{}, fmt.Errorf("fetch github user: %w", err)
	}

	profile := OAuthProfile{
		ProviderUserID: strconv.FormatInt(user.ID, 10),
		Email:          user.Email,
		Name:           user.Name,
		AvatarURL:      user.AvatarURL,
	}
	if profile.Name == "" {
		profile.Name = user.Login
	}

	// The public email can be hidden; the emails endpoint has the primary.
	if profile.Email == "" {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := a.getJSON(ctx, tok.AccessToken, "/user/emails", &emails); err != nil {
			return OAuthProfile{}, fmt.Errorf("fetch github emails: %w", err)
		}
		for _, e := range emails {
			if e.Primary {
				profile.Email = e.Email
				profile.EmailVerified = e.Verified
				break
			}
		}
	} else {
		profile.EmailVerified = true
	}

	return profile, nil
}

func (a *githubAdapter) getJSON(ctx context.Context, accessToken, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.apiBase+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github api returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var _ Adapter = (*githubAdapter)(nil)
