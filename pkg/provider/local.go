package provider

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/moneyflow/moneyflow/pkg/auth"
	"github.com/moneyflow/moneyflow/pkg/broadcast"
	"github.com/moneyflow/moneyflow/pkg/logger"
	"github.com/moneyflow/moneyflow/pkg/token"
)

// Ensure LocalProvider satisfies the orchestrator's collaborator contract.
var _ auth.SessionProvider = (*LocalProvider)(nil)

// LocalProvider is the in-process session backend.
type LocalProvider struct {
	cfg      Config
	users    UserStore
	states   StateStore
	adapters map[string]Adapter
	hub      *broadcast.Hub[auth.ChangeEvent]
	log      *slog.Logger

	mu      sync.RWMutex
	current *auth.Session
}

// LocalOption configures a LocalProvider.
type LocalOption func(*LocalProvider)

// WithLocalLogger sets a custom logger.
func WithLocalLogger(log *slog.Logger) LocalOption {
	return func(p *LocalProvider) { p.log = log }
}

// WithAdapter registers an OAuth provider adapter.
func WithAdapter(a Adapter) LocalOption {
	return func(p *LocalProvider) { p.adapters[a.ProviderID()] = a }
}

// WithStateStore overrides the default in-memory OAuth state store.
func WithStateStore(s StateStore) LocalOption {
	return func(p *LocalProvider) {
		if s != nil {
			p.states = s
		}
	}
}

// NewLocalProvider creates the provider over the given user store.
func NewLocalProvider(cfg Config, users UserStore, opts ...LocalOption) *LocalProvider {
	p := &LocalProvider{
		cfg:      cfg,
		users:    users,
		states:   NewMemoryStateStore(),
		adapters: make(map[string]Adapter),
		hub:      broadcast.NewHub[auth.ChangeEvent](8),
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SignInWithPassword authenticates stored credentials. Unknown emails and
// wrong passwords fail identically so the response does not leak which email
// addresses exist.
func (p *LocalProvider) SignInWithPassword(ctx context.Context, email, password string) (*auth.Session, error) {
	user, err := p.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	hash, err := p.users.GetPasswordHash(ctx, user.ID)
	if err != nil {
		return nil, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return nil, auth.ErrInvalidCredentials
	}

	sess, err := p.issueSession(user)
	if err != nil {
		return nil, err
	}
	p.adopt(sess, auth.EventSignedIn)
	return sess, nil
}

// SignUp registers a new account with its metadata and signs it in. When the
// email is already registered and the password matches, SignUp degrades to a
// sign-in: repeat LINE demo logins reuse their synthetic account instead of
// failing.
func (p *LocalProvider) SignUp(ctx context.Context, email, password string, metadata auth.Metadata) (*auth.Session, error) {
	if _, err := p.users.GetUserByEmail(ctx, email); err == nil {
		sess, signInErr := p.SignInWithPassword(ctx, email, password)
		if signInErr != nil {
			return nil, auth.ErrEmailAlreadyExists
		}
		return sess, nil
	} else if !errors.Is(err, auth.ErrUserNotFound) {
		return nil, fmt.Errorf("check existing email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &auth.User{
		ID:        uuid.New(),
		Email:     normalizeEmail(email),
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}
	if err := p.users.CreateUser(ctx, user, hash); err != nil {
		return nil, err
	}

	p.log.Info("user registered",
		logger.Component("provider"),
		logger.UserID(user.ID.String()),
		logger.Provider(metadata.AuthProvider),
	)

	sess, err := p.issueSession(user)
	if err != nil {
		return nil, err
	}
	p.adopt(sess, auth.EventSignedIn)
	return sess, nil
}

// OAuthURL generates a one-time state token and builds the provider's
// authorization URL.
func (p *LocalProvider) OAuthURL(ctx context.Context, providerID, redirectTo string, params map[string]string) (string, error) {
	adapter, ok := p.adapters[providerID]
	if !ok {
		return "", fmt.Errorf("unsupported oauth provider %q", providerID)
	}

	state, err := generateState()
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	if err := p.states.Store(ctx, state, StateData{Provider: providerID, RedirectTo: redirectTo}, p.cfg.StateTTL); err != nil {
		return "", fmt.Errorf("store state: %w", err)
	}

	return adapter.AuthURL(state, params), nil
}

// ExchangeCode resolves a callback code into a session. The callback route
// joins state and authorization code as "state.code"; the state half is
// consumed exactly once, so replays fail with auth.ErrInvalidState.
func (p *LocalProvider) ExchangeCode(ctx context.Context, code string) (*auth.Session, error) {
	state, rawCode, ok := strings.Cut(code, ".")
	if !ok || state == "" || rawCode == "" {
		return nil, auth.ErrInvalidCode
	}

	data, err := p.states.Consume(ctx, state)
	if err != nil {
		if errors.Is(err, auth.ErrStateNotFound) {
			return nil, auth.ErrInvalidState
		}
		return nil, fmt.Errorf("validate state: %w", err)
	}

	adapter, ok := p.adapters[data.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported oauth provider %q", data.Provider)
	}

	profile, err := adapter.ResolveProfile(ctx, rawCode)
	if err != nil {
		return nil, err
	}
	if profile.Email == "" {
		return nil, fmt.Errorf("oauth profile from %s has no email", data.Provider)
	}

	user, err := p.findOrCreateOAuthUser(ctx, data.Provider, profile)
	if err != nil {
		return nil, err
	}

	sess, err := p.issueSession(user)
	if err != nil {
		return nil, err
	}
	p.adopt(sess, auth.EventSignedIn)
	return sess, nil
}

func (p *LocalProvider) findOrCreateOAuthUser(ctx context.Context, providerID string, profile OAuthProfile) (*auth.User, error) {
	user, err := p.users.GetUserByEmail(ctx, profile.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, auth.ErrUserNotFound) {
		return nil, fmt.Errorf("look up oauth user: %w", err)
	}

	user = &auth.User{
		ID:    uuid.New(),
		Email: normalizeEmail(profile.Email),
		Metadata: auth.Metadata{
			DisplayName:  profile.Name,
			AvatarURL:    profile.AvatarURL,
			AuthProvider: providerID,
		},
		CreatedAt: time.Now(),
	}
	if err := p.users.CreateUser(ctx, user, nil); err != nil {
		return nil, err
	}

	p.log.Info("oauth user created",
		logger.Component("provider"),
		logger.UserID(user.ID.String()),
		logger.Provider(providerID),
	)
	return user, nil
}

// SignOut drops the current session and emits a sign-out event. Signing out
// without a session is a no-op.
func (p *LocalProvider) SignOut(context.Context) error {
	p.mu.Lock()
	had := p.current != nil
	p.current = nil
	p.mu.Unlock()

	if had {
		p.hub.Publish(auth.ChangeEvent{Event: auth.EventSignedOut})
	}
	return nil
}

// Session returns the current session, nil when signed out or expired.
func (p *LocalProvider) Session(context.Context) (*auth.Session, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.current == nil || time.Now().After(p.current.ExpiresAt) {
		return nil, nil
	}
	cp := *p.current
	return &cp, nil
}

// User returns the current session's user, nil when signed out.
func (p *LocalProvider) User(ctx context.Context) (*auth.User, error) {
	sess, err := p.Session(ctx)
	if err != nil || sess == nil {
		return nil, err
	}
	cp := *sess.User
	return &cp, nil
}

// OnChange delivers session-change events to cb in emission order until the
// returned function is called.
func (p *LocalProvider) OnChange(cb func(auth.ChangeEvent)) func() {
	ch, unsubscribe := p.hub.Subscribe()
	go func() {
		for ev := range ch {
			cb(ev)
		}
	}()
	return unsubscribe
}

// Close shuts down the change stream.
func (p *LocalProvider) Close() {
	p.hub.Close()
}

func (p *LocalProvider) issueSession(user *auth.User) (*auth.Session, error) {
	now := time.Now()
	expiresAt := now.Add(p.cfg.AccessTokenTTL)

	access, err := token.Generate(token.SessionClaims{
		UserID:   user.ID.String(),
		Email:    user.Email,
		Kind:     token.KindAccess,
		ExpireAt: expiresAt.Unix(),
	}, p.cfg.TokenSecret)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refresh, err := token.Generate(token.SessionClaims{
		UserID:   user.ID.String(),
		Email:    user.Email,
		Kind:     token.KindRefresh,
		ExpireAt: now.Add(p.cfg.RefreshTokenTTL).Unix(),
	}, p.cfg.TokenSecret)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	cp := *user
	return &auth.Session{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
		User:         &cp,
	}, nil
}

// adopt stores the session and emits the change event while holding the
// lock, so observers never see the session and the event out of order.
func (p *LocalProvider) adopt(sess *auth.Session, event string) {
	p.mu.Lock()
	p.current = sess
	p.mu.Unlock()

	p.hub.Publish(auth.ChangeEvent{Event: event, Session: sess})
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
