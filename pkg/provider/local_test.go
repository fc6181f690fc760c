package provider_test

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneyflow/moneyflow/pkg/auth"
	"github.com/moneyflow/moneyflow/pkg/provider"
)

func testConfig() provider.Config {
	return provider.Config{
		TokenSecret:     "test-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		BcryptCost:      4,
		StateTTL:        time.Minute,
	}
}

type fakeAdapter struct {
	id      string
	profile provider.OAuthProfile
	err     error

	mu    sync.Mutex
	codes []string
}

func (a *fakeAdapter) ProviderID() string { return a.id }

func (a *fakeAdapter) AuthURL(state string, params map[string]string) string {
	q := url.Values{"state": {state}}
	for k, v := range params {
		q.Set(k, v)
	}
	return "https://fake.example/authorize?" + q.Encode()
}

func (a *fakeAdapter) ResolveProfile(_ context.Context, code string) (provider.OAuthProfile, error) {
	a.mu.Lock()
	a.codes = append(a.codes, code)
	a.mu.Unlock()
	if a.err != nil {
		return provider.OAuthProfile{}, a.err
	}
	return a.profile, nil
}

func TestLocalProvider_PasswordRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := provider.NewLocalProvider(testConfig(), provider.NewMemoryUserStore())
	t.Cleanup(p.Close)

	sess, err := p.SignUp(ctx, "Alice@Example.com", "s3cret", auth.Metadata{
		DisplayName:  "Alice",
		AuthProvider: auth.ProviderEmail,
	})
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "alice@example.com", sess.User.Email)
	assert.NotEmpty(t, sess.AccessToken)
	assert.NotEmpty(t, sess.RefreshToken)
	assert.NotEqual(t, sess.AccessToken, sess.RefreshToken)

	require.NoError(t, p.SignOut(ctx))

	got, err := p.Session(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	sess2, err := p.SignInWithPassword(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, sess2.User.ID)
	assert.Equal(t, "Alice", sess2.User.Metadata.DisplayName)

	user, err := p.User(ctx)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, sess.User.ID, user.ID)
}

func TestLocalProvider_SignInFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := provider.NewLocalProvider(testConfig(), provider.NewMemoryUserStore())
	t.Cleanup(p.Close)

	_, err := p.SignUp(ctx, "bob@example.com", "correct", auth.Metadata{})
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := p.SignInWithPassword(ctx, "bob@example.com", "wrong")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := p.SignInWithPassword(ctx, "nobody@example.com", "correct")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestLocalProvider_SignUpExistingEmail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := provider.NewLocalProvider(testConfig(), provider.NewMemoryUserStore())
	t.Cleanup(p.Close)

	first, err := p.SignUp(ctx, "carol@example.com", "pw-one", auth.Metadata{DisplayName: "Carol"})
	require.NoError(t, err)

	t.Run("different password rejected", func(t *testing.T) {
		_, err := p.SignUp(ctx, "carol@example.com", "pw-two", auth.Metadata{})
		assert.ErrorIs(t, err, auth.ErrEmailAlreadyExists)
	})

	t.Run("matching password signs in", func(t *testing.T) {
		sess, err := p.SignUp(ctx, "carol@example.com", "pw-one", auth.Metadata{})
		require.NoError(t, err)
		assert.Equal(t, first.User.ID, sess.User.ID)
		assert.Equal(t, "Carol", sess.User.Metadata.DisplayName)
	})
}

func TestLocalProvider_SessionExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := testConfig()
	cfg.AccessTokenTTL = -time.Minute
	p := provider.NewLocalProvider(cfg, provider.NewMemoryUserStore())
	t.Cleanup(p.Close)

	_, err := p.SignUp(ctx, "dana@example.com", "pw", auth.Metadata{})
	require.NoError(t, err)

	sess, err := p.Session(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess, "expired sessions must not be restored")
}

func TestLocalProvider_OAuthFlow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	adapter := &fakeAdapter{
		id: "google",
		profile: provider.OAuthProfile{
			ProviderUserID: "g-123",
			Email:          "eve@example.com",
			EmailVerified:  true,
			Name:           "Eve",
			AvatarURL:      "https://cdn.example/eve.png",
		},
	}
	p := provider.NewLocalProvider(testConfig(), provider.NewMemoryUserStore(), provider.WithAdapter(adapter))
	t.Cleanup(p.Close)

	authURL, err := p.OAuthURL(ctx, "google", "/dashboard", map[string]string{"prompt": "consent"})
	require.NoError(t, err)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")
	require.NotEmpty(t, state)
	assert.Equal(t, "consent", parsed.Query().Get("prompt"))
	assert.False(t, strings.Contains(state, "."), "state must not collide with the code separator")

	sess, err := p.ExchangeCode(ctx, state+".auth-code-1")
	require.NoError(t, err)
	assert.Equal(t, "eve@example.com", sess.User.Email)
	assert.Equal(t, "Eve", sess.User.Metadata.DisplayName)
	assert.Equal(t, "google", sess.User.Metadata.AuthProvider)
	assert.Equal(t, []string{"auth-code-1"}, adapter.codes)

	t.Run("state is single use", func(t *testing.T) {
		_, err := p.ExchangeCode(ctx, state+".auth-code-1")
		assert.ErrorIs(t, err, auth.ErrInvalidState)
	})

	t.Run("existing email reuses the account", func(t *testing.T) {
		url2, err := p.OAuthURL(ctx, "google", "", nil)
		require.NoError(t, err)
		parsed2, err := url.Parse(url2)
		require.NoError(t, err)

		sess2, err := p.ExchangeCode(ctx, parsed2.Query().Get("state")+".auth-code-2")
		require.NoError(t, err)
		assert.Equal(t, sess.User.ID, sess2.User.ID)
	})
}

func TestLocalProvider_ExchangeCodeRejectsMalformed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := provider.NewLocalProvider(testConfig(), provider.NewMemoryUserStore())
	t.Cleanup(p.Close)

	for _, code := range []string{"", "no-separator", ".code-only", "state-only."} {
		_, err := p.ExchangeCode(ctx, code)
		assert.ErrorIs(t, err, auth.ErrInvalidCode, "code %q", code)
	}

	_, err := p.ExchangeCode(ctx, "never-stored.some-code")
	assert.ErrorIs(t, err, auth.ErrInvalidState)
}

func TestLocalProvider_OAuthURLUnknownProvider(t *testing.T) {
	t.Parallel()

	p := provider.NewLocalProvider(testConfig(), provider.NewMemoryUserStore())
	t.Cleanup(p.Close)

	_, err := p.OAuthURL(context.Background(), "facebook", "", nil)
	assert.ErrorContains(t, err, "unsupported oauth provider")
}

func TestLocalProvider_OnChange(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := provider.NewLocalProvider(testConfig(), provider.NewMemoryUserStore())
	t.Cleanup(p.Close)

	events := make(chan auth.ChangeEvent, 8)
	unsubscribe := p.OnChange(func(ev auth.ChangeEvent) { events <- ev })

	_, err := p.SignUp(ctx, "frank@example.com", "pw", auth.Metadata{})
	require.NoError(t, err)

	ev := waitEvent(t, events)
	assert.Equal(t, auth.EventSignedIn, ev.Event)
	require.NotNil(t, ev.Session)
	assert.Equal(t, "frank@example.com", ev.Session.User.Email)

	require.NoError(t, p.SignOut(ctx))
	ev = waitEvent(t, events)
	assert.Equal(t, auth.EventSignedOut, ev.Event)
	assert.Nil(t, ev.Session)

	// Signing out again emits nothing.
	require.NoError(t, p.SignOut(ctx))

	unsubscribe()
	_, err = p.SignInWithPassword(ctx, "frank@example.com", "pw")
	require.NoError(t, err)

	select {
	case ev := <-events:
		if ev.Event != "" {
			// A sign-in published before the unsubscribe settled is
			// tolerated; nothing beyond it may arrive.
			select {
			case extra := <-events:
				t.Fatalf("event delivered after unsubscribe: %+v", extra)
			case <-time.After(50 * time.Millisecond):
			}
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func waitEvent(t *testing.T, ch <-chan auth.ChangeEvent) auth.ChangeEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change event")
		return auth.ChangeEvent{}
	}
}
