package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/moneyflow/moneyflow/pkg/access"
	"github.com/moneyflow/moneyflow/pkg/liff"
)

const uaDesktop = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

func browserEnv() access.Environment {
	return access.Environment{UserAgent: uaDesktop, Hostname: "moneyflow.app", HasRuntime: true}
}

func liffEnv() access.Environment {
	return access.Environment{UserAgent: uaDesktop, Hostname: "localhost", HasRuntime: true}
}

func demoUser(email string) *User {
	return &User{
		ID:        uuid.New(),
		Email:     email,
		Metadata:  Metadata{AuthProvider: ProviderEmail},
		CreatedAt: time.Now(),
	}
}

func demoSession(user *User) *Session {
	return &Session{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		ExpiresAt:    time.Now().Add(time.Hour),
		User:         user,
	}
}

func newTestService(provider SessionProvider, detectorCfg access.Config, liffClient *liff.Client, opts ...Option) *Service {
	if liffClient == nil {
		liffClient = liff.NewClient(liff.Config{}, nil)
	}
	return NewService(provider, access.NewDetector(detectorCfg), liffClient, opts...)
}

func TestSignInWithEmail(t *testing.T) {
	t.Parallel()

	t.Run("success syncs profile", func(t *testing.T) {
		t.Parallel()

		user := demoUser("demo@moneyflow.app")
		sess := demoSession(user)

		provider := &MockSessionProvider{}
		provider.On("SignInWithPassword", mock.Anything, "demo@moneyflow.app", "correct-pw").Return(sess, nil)
		provider.On("User", mock.Anything).Return(user, nil)

		profiles := &MockProfileStore{}
		profiles.On("UpsertProfile", mock.Anything, user.ID, mock.MatchedBy(func(d ProfileData) bool {
			return d.AuthProvider == ProviderEmail && d.DisplayName == "demo" && d.Email == "demo@moneyflow.app"
		})).Return(nil)

		svc := newTestService(provider, access.Config{}, nil, WithProfileStore(profiles))

		got, err := svc.SignInWithEmail(context.Background(), "demo@moneyflow.app", "correct-pw")
		require.NoError(t, err)
		assert.Equal(t, sess, got)
		assert.Equal(t, "demo@moneyflow.app", got.User.Email)

		provider.AssertExpectations(t)
		profiles.AssertExpectations(t)
	})

	t.Run("failure is normalized", func(t *testing.T) {
		t.Parallel()

		provider := &MockSessionProvider{}
		provider.On("SignInWithPassword", mock.Anything, "demo@moneyflow.app", "wrong-pw").
			Return(nil, ErrInvalidCredentials)

		svc := newTestService(provider, access.Config{}, nil)

		_, err := svc.SignInWithEmail(context.Background(), "demo@moneyflow.app", "wrong-pw")
		require.Error(t, err)

		var authErr *Error
		require.ErrorAs(t, err, &authErr)
		assert.NotEmpty(t, authErr.Message)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("profile sync failure does not fail the sign-in", func(t *testing.T) {
		t.Parallel()

		user := demoUser("demo@moneyflow.app")
		sess := demoSession(user)

		provider := &MockSessionProvider{}
		provider.On("SignInWithPassword", mock.Anything, "demo@moneyflow.app", "correct-pw").Return(sess, nil)
		provider.On("User", mock.Anything).Return(user, nil)

		profiles := &MockProfileStore{}
		profiles.On("UpsertProfile", mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("profiles table missing"))

		svc := newTestService(provider, access.Config{}, nil, WithProfileStore(profiles))

		got, err := svc.SignInWithEmail(context.Background(), "demo@moneyflow.app", "correct-pw")
		require.NoError(t, err)
		assert.Equal(t, sess, got)
	})
}

func TestSignUpWithEmail(t *testing.T) {
	t.Parallel()

	t.Run("attaches metadata at creation", func(t *testing.T) {
		t.Parallel()

		user := demoUser("new@moneyflow.app")
		sess := demoSession(user)

		provider := &MockSessionProvider{}
		provider.On("SignUp", mock.Anything, "new@moneyflow.app", "pw-123456", Metadata{
			DisplayName:  "new",
			AuthProvider: ProviderEmail,
		}).Return(sess, nil)

		svc := newTestService(provider, access.Config{}, nil)

		got, err := svc.SignUpWithEmail(context.Background(), "new@moneyflow.app", "pw-123456")
		require.NoError(t, err)
		assert.Equal(t, sess, got)

		// No separate profile sync runs on sign-up.
		provider.AssertNotCalled(t, "User", mock.Anything)
	})

	t.Run("duplicate email is normalized", func(t *testing.T) {
		t.Parallel()

		provider := &MockSessionProvider{}
		provider.On("SignUp", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, ErrEmailAlreadyExists)

		svc := newTestService(provider, access.Config{}, nil)

		_, err := svc.SignUpWithEmail(context.Background(), "dup@moneyflow.app", "pw-123456")
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	})
}

func TestOAuthSignIn(t *testing.T) {
	t.Parallel()

	t.Run("google requests offline access with forced consent", func(t *testing.T) {
		t.Parallel()

		provider := &MockSessionProvider{}
		provider.On("OAuthURL", mock.Anything, ProviderGoogle, "/auth/callback", map[string]string{
			"access_type": "offline",
			"prompt":      "consent",
		}).Return("https://accounts.google.com/o/oauth2/auth?state=x", nil)

		svc := newTestService(provider, access.Config{}, nil)

		url, err := svc.SignInWithGoogle(context.Background())
		require.NoError(t, err)
		assert.Contains(t, url, "accounts.google.com")
		provider.AssertExpectations(t)
	})

	t.Run("github uses plain redirect", func(t *testing.T) {
		t.Parallel()

		provider := &MockSessionProvider{}
		provider.On("OAuthURL", mock.Anything, ProviderGithub, "/auth/callback", map[string]string(nil)).
			Return("https://github.com/login/oauth/authorize?state=x", nil)

		svc := newTestService(provider, access.Config{}, nil)

		url, err := svc.SignInWithGithub(context.Background())
		require.NoError(t, err)
		assert.Contains(t, url, "github.com")
	})
}

func TestSignOut(t *testing.T) {
	t.Parallel()

	t.Run("clears cached LINE profile", func(t *testing.T) {
		t.Parallel()

		provider := &MockSessionProvider{}
		provider.On("SignOut", mock.Anything).Return(nil)

		cache := &MockProfileCache{}
		cache.On("Clear", mock.Anything).Return(nil)

		svc := newTestService(provider, access.Config{}, nil, WithProfileCache(cache))

		require.NoError(t, svc.SignOut(context.Background()))
		cache.AssertExpectations(t)
	})

	t.Run("cache failure is contained", func(t *testing.T) {
		t.Parallel()

		provider := &MockSessionProvider{}
		provider.On("SignOut", mock.Anything).Return(nil)

		cache := &MockProfileCache{}
		cache.On("Clear", mock.Anything).Return(errors.New("storage gone"))

		svc := newTestService(provider, access.Config{}, nil, WithProfileCache(cache))

		assert.NoError(t, svc.SignOut(context.Background()))
	})

	t.Run("provider failure skips cache clear", func(t *testing.T) {
		t.Parallel()

		provider := &MockSessionProvider{}
		provider.On("SignOut", mock.Anything).Return(errors.New("provider down"))

		cache := &MockProfileCache{}

		svc := newTestService(provider, access.Config{}, nil, WithProfileCache(cache))

		require.Error(t, svc.SignOut(context.Background()))
		cache.AssertNotCalled(t, "Clear", mock.Anything)
	})
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	svc := newTestService(&MockSessionProvider{}, access.Config{}, nil)

	t.Run("nil passes through", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, svc.normalize(nil))
	})

	t.Run("existing Error is preserved", func(t *testing.T) {
		t.Parallel()

		orig := &Error{Message: "bad credentials", Code: "invalid_grant"}
		assert.Same(t, orig, svc.normalize(orig))
	})

	t.Run("coder surfaces machine code", func(t *testing.T) {
		t.Parallel()

		err := svc.normalize(codedError{})
		var authErr *Error
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "rate_limited", authErr.Code)
		assert.Equal(t, "too many attempts", authErr.Message)
	})

	t.Run("empty message falls back", func(t *testing.T) {
		t.Parallel()

		err := svc.normalize(errors.New(""))
		var authErr *Error
		require.ErrorAs(t, err, &authErr)
		assert.NotEmpty(t, authErr.Message)
	})
}

type codedError struct{}

func (codedError) Error() string    { return "too many attempts" }
func (codedError) AuthCode() string { return "rate_limited" }

func TestUser(t *testing.T) {
	t.Parallel()

	t.Run("signed out yields ErrNoSession", func(t *testing.T) {
		t.Parallel()

		provider := &MockSessionProvider{}
		provider.On("User", mock.Anything).Return(nil, nil)

		svc := newTestService(provider, access.Config{}, nil)

		got, err := svc.User(context.Background())
		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("signed in returns the user", func(t *testing.T) {
		t.Parallel()

		user := demoUser("demo@moneyflow.app")
		provider := &MockSessionProvider{}
		provider.On("User", mock.Anything).Return(user, nil)

		svc := newTestService(provider, access.Config{}, nil)

		got, err := svc.User(context.Background())
		require.NoError(t, err)
		assert.Equal(t, user, got)
	})

	t.Run("provider failure passes through unchanged", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("store unavailable")
		provider := &MockSessionProvider{}
		provider.On("User", mock.Anything).Return(nil, boom)

		svc := newTestService(provider, access.Config{}, nil)

		_, err := svc.User(context.Background())
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrNoSession)
	})
}
