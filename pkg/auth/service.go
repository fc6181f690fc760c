package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/moneyflow/moneyflow/pkg/access"
	"github.com/moneyflow/moneyflow/pkg/liff"
	"github.com/moneyflow/moneyflow/pkg/logger"
)

// demoLinePassword backs the development-only LINE exchange: in mock mode a
// LINE identity is approximated by a synthetic email account with this fixed
// password.
const demoLinePassword = "demo-password-123"

// Service is the authentication facade. It owns no session state; it drives
// the session provider and the LIFF client and normalizes their failures.
type Service struct {
	provider SessionProvider
	detector *access.Detector
	liff     *liff.Client

	profiles    ProfileStore
	cache       LineProfileCache
	callbackURL string
	log         *slog.Logger
}

// Option configures a Service during construction.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithProfileStore enables best-effort profile sync after sign-in.
func WithProfileStore(store ProfileStore) Option {
	return func(s *Service) { s.profiles = store }
}

// WithProfileCache lets sign-out clear the persisted LINE profile.
func WithProfileCache(cache LineProfileCache) Option {
	return func(s *Service) { s.cache = cache }
}

// WithCallbackURL sets the OAuth callback target. Defaults to /auth/callback.
func WithCallbackURL(u string) Option {
	return func(s *Service) {
		if u != "" {
			s.callbackURL = u
		}
	}
}

// NewService creates the auth orchestrator.
func NewService(provider SessionProvider, detector *access.Detector, liffClient *liff.Client, opts ...Option) *Service {
	s := &Service{
		provider:    provider,
		detector:    detector,
		liff:        liffClient,
		callbackURL: "/auth/callback",
		log:         logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignInWithEmail authenticates with email and password, then syncs the
// profile best-effort.
func (s *Service) SignInWithEmail(ctx context.Context, email, password string) (*Session, error) {
	sess, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, s.normalize(err)
	}

	s.syncProfile(ctx, ProfileData{
		AuthProvider: ProviderEmail,
		Email:        email,
		DisplayName:  emailLocalPart(email),
	})
	return sess, nil
}

// SignUpWithEmail registers a new account. The display name and provider tag
// travel as metadata with the sign-up itself, so no post-hoc sync runs.
func (s *Service) SignUpWithEmail(ctx context.Context, email, password string) (*Session, error) {
	sess, err := s.provider.SignUp(ctx, email, password, Metadata{
		DisplayName:  emailLocalPart(email),
		AuthProvider: ProviderEmail,
	})
	if err != nil {
		return nil, s.normalize(err)
	}
	return sess, nil
}

// SignInWithGoogle returns the Google OAuth redirect URL. Offline access and
// forced consent guarantee a refresh token even on repeat logins.
func (s *Service) SignInWithGoogle(ctx context.Context) (string, error) {
	url, err := s.provider.OAuthURL(ctx, ProviderGoogle, s.callbackURL, map[string]string{
		"access_type": "offline",
		"prompt":      "consent",
	})
	if err != nil {
		return "", s.normalize(err)
	}
	return url, nil
}

// SignInWithGithub returns the GitHub OAuth redirect URL.
func (s *Service) SignInWithGithub(ctx context.Context) (string, error) {
	url, err := s.provider.OAuthURL(ctx, ProviderGithub, s.callbackURL, nil)
	if err != nil {
		return "", s.normalize(err)
	}
	return url, nil
}

// SignInWithLine signs in through LINE. Outside a LINE context it fails
// immediately, before any SDK or network call. When the LINE layer needs a
// login first, it returns a non-empty redirect URL and no session: the
// redirect is a suspension point, not a failure, and the flow re-enters
// through a fresh request after LINE navigates back.
func (s *Service) SignInWithLine(ctx context.Context, env access.Environment) (*Session, string, error) {
	if !s.detector.IsLiffEnvironment(env) {
		return nil, "", s.normalize(ErrNotInLiffEnvironment)
	}

	if err := s.liff.Initialize(ctx); err != nil {
		return nil, "", s.normalize(err)
	}

	if !s.liff.IsLoggedIn() {
		url, err := s.liff.Login(ctx)
		if err != nil {
			return nil, "", s.normalize(err)
		}
		return nil, url, nil
	}

	profile, err := s.liff.GetProfile(ctx)
	if err != nil {
		return nil, "", s.normalize(err)
	}

	sess, err := s.exchangeLineProfile(ctx, profile)
	if err != nil {
		return nil, "", s.normalize(err)
	}

	s.syncProfile(ctx, ProfileData{
		AuthProvider: ProviderLine,
		LineUserID:   profile.UserID,
		DisplayName:  profile.DisplayName,
		AvatarURL:    profile.PictureURL,
	})
	return sess, "", nil
}

// exchangeLineProfile trades a LINE profile for an application session. The
// real exchange needs a trusted backend verifying the LINE access token and
// minting a credential; only the development approximation exists here.
func (s *Service) exchangeLineProfile(ctx context.Context, profile liff.Profile) (*Session, error) {
	if s.detector.ShouldUseLiffMock() {
		return s.provider.SignUp(ctx, profile.UserID+"@line.demo", demoLinePassword, Metadata{
			DisplayName:  profile.DisplayName,
			AvatarURL:    profile.PictureURL,
			LineUserID:   profile.UserID,
			AuthProvider: ProviderLine,
		})
	}
	return nil, ErrLineExchangeNotImplemented
}

// SignOut terminates the session and clears the persisted LINE profile.
// Cache clearing is best-effort: the sign-out already succeeded.
func (s *Service) SignOut(ctx context.Context) error {
	if err := s.provider.SignOut(ctx); err != nil {
		return s.normalize(err)
	}

	if s.cache != nil {
		if err := s.cache.Clear(ctx); err != nil {
			s.log.Error("failed to clear cached LINE profile",
				logger.Component("auth"),
				logger.Error(err),
			)
		}
	}
	return nil
}

// ExchangeCode resolves a callback-route authorization code into a session.
func (s *Service) ExchangeCode(ctx context.Context, code string) (*Session, error) {
	sess, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, s.normalize(err)
	}
	return sess, nil
}

// Session returns the current session without error normalization; the
// provider answers nil rather than failing for "no session".
func (s *Service) Session(ctx context.Context) (*Session, error) {
	return s.provider.Session(ctx)
}

// User returns the current user. Signed-out callers get ErrNoSession, so
// request handlers can distinguish "not signed in" from a provider failure.
func (s *Service) User(ctx context.Context) (*User, error) {
	user, err := s.provider.User(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNoSession
	}
	return user, nil
}

// OnChange relays the provider's session-change subscription unchanged.
func (s *Service) OnChange(cb func(ChangeEvent)) (unsubscribe func()) {
	return s.provider.OnChange(cb)
}

// syncProfile mirrors identity-provider fields into the application's user
// record. Failures are logged, never surfaced: the sign-in that triggered the
// sync already succeeded.
func (s *Service) syncProfile(ctx context.Context, data ProfileData) {
	if s.profiles == nil {
		return
	}

	user, err := s.provider.User(ctx)
	if err != nil || user == nil {
		s.log.Error("profile sync skipped: no current user",
			logger.Component("auth"),
			logger.Error(err),
		)
		return
	}

	// Prefer explicitly supplied values, fall back to what the provider
	// already stores.
	merged := ProfileData{
		Email:        firstNonEmpty(data.Email, user.Email),
		DisplayName:  firstNonEmpty(data.DisplayName, user.Metadata.DisplayName),
		AvatarURL:    firstNonEmpty(data.AvatarURL, user.Metadata.AvatarURL),
		LineUserID:   firstNonEmpty(data.LineUserID, user.Metadata.LineUserID),
		AuthProvider: data.AuthProvider,
	}

	if err := s.profiles.UpsertProfile(ctx, user.ID, merged); err != nil {
		s.log.Error("profile sync failed",
			logger.Component("auth"),
			logger.UserID(user.ID.String()),
			logger.Provider(data.AuthProvider),
			logger.Error(err),
		)
	}
}

// normalize logs the raw error and converts it into a user-facing *Error.
// The raw error stays reachable through Unwrap for errors.Is checks.
func (s *Service) normalize(err error) error {
	if err == nil {
		return nil
	}

	s.log.Error("auth error", logger.Component("auth"), logger.Error(err))

	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr
	}

	norm := &Error{Message: err.Error(), raw: err}
	if norm.Message == "" {
		norm.Message = fallbackErrorMessage
	}

	var coder Coder
	if errors.As(err, &coder) {
		norm.Code = coder.AuthCode()
	}
	return norm
}

func emailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
