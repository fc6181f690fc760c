package liff

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/moneyflow/moneyflow/pkg/logger"
)

const (
	mockPictureURL    = "https://via.placeholder.com/150"
	mockStatusMessage = "テスト中です"

	// Artificial latency so calling code exercises its loading states.
	mockInitDelay    = 100 * time.Millisecond
	mockProfileDelay = 50 * time.Millisecond
)

// MockProvider is an in-memory stand-in for the LINE identity SDK. It is
// always embedded and always logged in: the mock intentionally never models a
// logged-out LINE state, so the rest of the system can run outside LINE's
// in-app browser without branching on environment.
type MockProvider struct {
	mu          sync.Mutex
	initialized bool

	profile     Profile
	accessToken string

	initDelay    time.Duration
	profileDelay time.Duration
	log          *slog.Logger
}

// MockOption configures a MockProvider.
type MockOption func(*MockProvider)

// WithMockLatency overrides the simulated init and profile-fetch delays.
func WithMockLatency(initDelay, profileDelay time.Duration) MockOption {
	return func(m *MockProvider) {
		m.initDelay = initDelay
		m.profileDelay = profileDelay
	}
}

// WithMockLogger sets a custom logger for the mock.
func WithMockLogger(log *slog.Logger) MockOption {
	return func(m *MockProvider) {
		m.log = log
	}
}

// WithMockProfile replaces the seeded profile entirely.
func WithMockProfile(profile Profile) MockOption {
	return func(m *MockProvider) {
		m.profile = profile
	}
}

// NewMockProvider seeds a mock from configuration, generating defaults for
// anything missing.
func NewMockProvider(cfg Config, opts ...MockOption) *MockProvider {
	m := &MockProvider{
		profile: Profile{
			UserID:        cfg.TestUserID,
			DisplayName:   cfg.TestDisplayName,
			PictureURL:    mockPictureURL,
			StatusMessage: mockStatusMessage,
		},
		accessToken:  fmt.Sprintf("mock-access-token-%d", time.Now().UnixMilli()),
		initDelay:    mockInitDelay,
		profileDelay: mockProfileDelay,
		log:          logger.Discard(),
	}
	if m.profile.UserID == "" {
		m.profile.UserID = "mock-user-123"
	}
	if m.profile.DisplayName == "" {
		m.profile.DisplayName = "テストユーザー"
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init marks the mock initialized after its simulated latency. Re-init is
// harmless; each call logs again like the real SDK would.
func (m *MockProvider) Init(ctx context.Context, liffID string) error {
	m.log.Info("LIFF mock initialized",
		logger.Component("liff-mock"),
		slog.String("liff_id", liffID),
		logger.LineUserID(m.profile.UserID),
	)

	if err := sleep(ctx, m.initDelay); err != nil {
		return err
	}

	m.mu.Lock()
	m.initialized = true
	m.mu.Unlock()
	return nil
}

// GetProfile returns a copy of the seeded profile after simulated latency.
func (m *MockProvider) GetProfile(ctx context.Context) (Profile, error) {
	m.mu.Lock()
	initialized := m.initialized
	profile := m.profile
	m.mu.Unlock()

	if !initialized {
		return Profile{}, ErrNotInitialized
	}
	if err := sleep(ctx, m.profileDelay); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// GetAccessToken returns the seeded token.
func (m *MockProvider) GetAccessToken(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return "", ErrNotInitialized
	}
	return m.accessToken, nil
}

// IsLoggedIn always reports true: the mock is pre-authenticated.
func (m *MockProvider) IsLoggedIn() bool { return true }

// IsInClient always reports true.
func (m *MockProvider) IsInClient() bool { return true }

// Login is a no-op; the mock is already logged in.
func (m *MockProvider) Login(context.Context) (string, error) {
	m.log.Info("LIFF mock login called, already logged in", logger.Component("liff-mock"))
	return "", nil
}

// OpenWindow is a no-op; the mock never navigates.
func (m *MockProvider) OpenWindow(_ context.Context, url string) (string, error) {
	m.log.Info("LIFF mock openWindow called",
		logger.Component("liff-mock"),
		slog.String("url", url),
	)
	return "", nil
}

// Reset returns the mock to its pre-init state. Test helper.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initialized = false
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
