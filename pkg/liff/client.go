package liff

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/moneyflow/moneyflow/pkg/logger"
)

// Client lifecycle states. There is no transition back to uninitialized
// except through a failed init, which makes the next call retry.
type clientState int

const (
	stateUninitialized clientState = iota
	stateInitializing
	stateReady
)

// Client is the application-facing LINE identity client. The underlying
// implementation (mock or real SDK) is chosen once at construction; the
// client itself is implementation-agnostic. Construct one at the composition
// root and inject it wherever LINE identity is needed.
type Client struct {
	cfg      Config
	provider Provider
	fallback Provider
	log      *slog.Logger

	mu     sync.Mutex
	state  clientState
	active Provider
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithProvider injects the primary provider, overriding config-based selection.
func WithProvider(p Provider) ClientOption {
	return func(c *Client) { c.provider = p }
}

// WithFallback injects the provider used when the primary one fails to init.
func WithFallback(p Provider) ClientOption {
	return func(c *Client) { c.fallback = p }
}

// WithClientLogger sets a custom logger.
func WithClientLogger(log *slog.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// MockDecider answers whether the mock identity backend should be used.
// *access.Detector implements it; the flag resolves there and nowhere else,
// so mock and real selection cannot drift apart.
type MockDecider interface {
	ShouldUseLiffMock() bool
}

// NewClient selects the identity backend: the mock when the decider says so
// (with the real SDK as fallback, so a broken mock never blocks real usage),
// the real SDK otherwise. A nil decider means the real SDK.
func NewClient(cfg Config, decider MockDecider, opts ...ClientOption) *Client {
	c := &Client{
		cfg: cfg,
		log: logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.provider == nil {
		if decider != nil && decider.ShouldUseLiffMock() {
			c.provider = NewMockProvider(cfg)
			if c.fallback == nil {
				c.fallback = NewSDKProvider()
			}
		} else {
			c.provider = NewSDKProvider()
		}
	}
	c.active = c.provider
	return c
}

// Initialize prepares the client. No-op when already initialized. A failure
// leaves the client uninitialized so a later call retries.
func (c *Client) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initLocked(ctx)
}

func (c *Client) initLocked(ctx context.Context) error {
	if c.state == stateReady {
		return nil
	}
	if c.cfg.LiffID == "" {
		return ErrMissingLiffID
	}

	c.state = stateInitializing

	err := c.provider.Init(ctx, c.cfg.LiffID)
	if err != nil && c.fallback != nil {
		c.log.Warn("primary LIFF provider init failed, falling back",
			logger.Component("liff"),
			logger.Error(err),
		)
		if fbErr := c.fallback.Init(ctx, c.cfg.LiffID); fbErr == nil {
			c.active = c.fallback
			err = nil
		}
	}
	if err != nil {
		c.state = stateUninitialized
		return fmt.Errorf("LIFF initialization failed: %w", err)
	}

	c.state = stateReady
	c.log.Info("LIFF initialized", logger.Component("liff"), slog.String("liff_id", c.cfg.LiffID))
	return nil
}

// GetProfile returns the LINE profile, initializing lazily first.
func (c *Client) GetProfile(ctx context.Context) (Profile, error) {
	c.mu.Lock()
	if err := c.initLocked(ctx); err != nil {
		c.mu.Unlock()
		return Profile{}, err
	}
	p := c.active
	c.mu.Unlock()

	profile, err := p.GetProfile(ctx)
	if err != nil {
		c.log.Error("LINE profile fetch failed", logger.Component("liff"), logger.Error(err))
		return Profile{}, fmt.Errorf("%w: %w", ErrProfileFetch, err)
	}
	return profile, nil
}

// IsLoggedIn fails closed: false before initialization, never an error.
func (c *Client) IsLoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateReady {
		return false
	}
	return c.active.IsLoggedIn()
}

// Login starts the LINE login flow, initializing lazily first. A non-empty
// return value is the redirect URL; the caller must treat the redirect as a
// suspension point, not a failure.
func (c *Client) Login(ctx context.Context) (string, error) {
	c.mu.Lock()
	if err := c.initLocked(ctx); err != nil {
		c.mu.Unlock()
		return "", err
	}
	p := c.active
	c.mu.Unlock()

	return p.Login(ctx)
}

// GetAccessToken requires a completed initialization; it never lazily inits.
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.state != stateReady {
		c.mu.Unlock()
		return "", ErrNotInitialized
	}
	p := c.active
	c.mu.Unlock()

	return p.GetAccessToken(ctx)
}

// IsInClient fails closed: false before initialization.
func (c *Client) IsInClient() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateReady {
		return false
	}
	return c.active.IsInClient()
}

// OpenInApp asks the backend to reopen url inside the LINE app. A non-empty
// return value is the navigation target.
func (c *Client) OpenInApp(ctx context.Context, url string) (string, error) {
	c.mu.Lock()
	if c.state != stateReady {
		c.mu.Unlock()
		return "", ErrNotInitialized
	}
	p := c.active
	c.mu.Unlock()

	return p.OpenWindow(ctx, url)
}
