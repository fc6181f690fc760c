package authstate

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/moneyflow/moneyflow/pkg/access"
	"github.com/moneyflow/moneyflow/pkg/auth"
	"github.com/moneyflow/moneyflow/pkg/liff"
	"github.com/moneyflow/moneyflow/pkg/logger"
	"github.com/moneyflow/moneyflow/pkg/profilecache"
)

// State is one observable snapshot. User and Session change together: a
// snapshot never shows a session without its user or a user without a
// session.
type State struct {
	User         *auth.User
	Session      *auth.Session
	LineProfile  *liff.Profile
	AccessMethod access.Method
	IsLoading    bool
}

// Controller maintains the auth state for one runtime context and keeps it
// converged on the session provider through the change subscription.
type Controller struct {
	svc      *auth.Service
	detector *access.Detector
	liff     *liff.Client
	cache    profilecache.Store
	log      *slog.Logger

	mu    sync.RWMutex
	state State

	initDone    sync.Once
	closeOnce   sync.Once
	unsubscribe func()
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithControllerLogger sets a custom logger.
func WithControllerLogger(log *slog.Logger) ControllerOption {
	return func(c *Controller) { c.log = log }
}

// WithLineProfileCache persists the LINE profile across restarts.
func WithLineProfileCache(cache profilecache.Store) ControllerOption {
	return func(c *Controller) { c.cache = cache }
}

// NewController creates the controller in its loading state. Nothing happens
// until Start runs.
func NewController(svc *auth.Service, detector *access.Detector, liffClient *liff.Client, opts ...ControllerOption) *Controller {
	c := &Controller{
		svc:      svc,
		detector: detector,
		liff:     liffClient,
		log:      logger.Discard(),
		state:    State{IsLoading: true, AccessMethod: access.MethodBrowser},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start runs the fixed initial sequence: detect the access method, restore
// any existing session, prepare the LINE layer when the context is LINE, and
// subscribe to session changes. The loading flag clears exactly once when the
// sequence finishes, whatever the individual steps did.
func (c *Controller) Start(ctx context.Context, env access.Environment) {
	defer c.finishInitialLoad()

	method := c.detector.DetectMethod(env)
	c.mu.Lock()
	c.state.AccessMethod = method
	c.mu.Unlock()

	if sess, err := c.svc.Session(ctx); err != nil {
		c.log.Error("session restore failed",
			logger.Component("authstate"),
			logger.Error(err),
		)
	} else if sess != nil {
		c.adoptSession(sess)
	}

	if method == access.MethodLine {
		c.prepareLineContext(ctx)
	}

	c.mu.Lock()
	c.unsubscribe = c.svc.OnChange(c.handleChange)
	c.mu.Unlock()
}

// prepareLineContext initializes LIFF and refreshes the LINE profile. Every
// failure here is logged and swallowed: a broken LINE layer must not block
// the rest of the startup.
func (c *Controller) prepareLineContext(ctx context.Context) {
	if c.cache != nil {
		if cached, err := c.cache.Load(ctx); err == nil {
			c.mu.Lock()
			c.state.LineProfile = &cached
			c.mu.Unlock()
		} else if !errors.Is(err, profilecache.ErrNotFound) {
			c.log.Error("cached LINE profile load failed",
				logger.Component("authstate"),
				logger.Error(err),
			)
		}
	}

	if err := c.liff.Initialize(ctx); err != nil {
		c.log.Error("LIFF initialization failed during startup",
			logger.Component("authstate"),
			logger.Error(err),
		)
		return
	}
	if c.liff.IsLoggedIn() {
		c.refreshLineProfile(ctx)
	}
}

// refreshLineProfile fetches the LINE profile and stores it in memory and,
// when configured, in the profile cache. Failures are logged, never surfaced.
func (c *Controller) refreshLineProfile(ctx context.Context) {
	profile, err := c.liff.GetProfile(ctx)
	if err != nil {
		c.log.Error("LINE profile refresh failed",
			logger.Component("authstate"),
			logger.Error(err),
		)
		return
	}

	c.mu.Lock()
	c.state.LineProfile = &profile
	c.mu.Unlock()

	if c.cache != nil {
		if err := c.cache.Save(ctx, profile); err != nil {
			c.log.Error("LINE profile cache save failed",
				logger.Component("authstate"),
				logger.LineUserID(profile.UserID),
				logger.Error(err),
			)
		}
	}
}

// handleChange converges the state on provider-emitted events so sign-ins
// and sign-outs from any code path land in the snapshot.
func (c *Controller) handleChange(ev auth.ChangeEvent) {
	switch ev.Event {
	case auth.EventSignedIn, auth.EventTokenRefreshed:
		if ev.Session != nil {
			c.adoptSession(ev.Session)
		}
		c.mu.RLock()
		isLine := c.state.AccessMethod == access.MethodLine
		c.mu.RUnlock()
		if ev.Event == auth.EventSignedIn && isLine {
			c.refreshLineProfile(context.Background())
		}
	case auth.EventSignedOut:
		c.clearIdentity()
	}
}

// adoptSession installs session and user in one step.
func (c *Controller) adoptSession(sess *auth.Session) {
	sessCopy := *sess
	var user *auth.User
	if sess.User != nil {
		userCopy := *sess.User
		user = &userCopy
		sessCopy.User = &userCopy
	}

	c.mu.Lock()
	c.state.Session = &sessCopy
	c.state.User = user
	c.mu.Unlock()
}

// clearIdentity wipes user, session and LINE profile from memory and clears
// the persisted profile.
func (c *Controller) clearIdentity() {
	c.mu.Lock()
	c.state.User = nil
	c.state.Session = nil
	c.state.LineProfile = nil
	c.mu.Unlock()

	if c.cache != nil {
		if err := c.cache.Clear(context.Background()); err != nil {
			c.log.Error("LINE profile cache clear failed",
				logger.Component("authstate"),
				logger.Error(err),
			)
		}
	}
}

func (c *Controller) finishInitialLoad() {
	c.initDone.Do(func() {
		c.mu.Lock()
		c.state.IsLoading = false
		c.mu.Unlock()
	})
}

// beginAction flips the loading flag for the duration of one user action.
func (c *Controller) beginAction() func() {
	c.mu.Lock()
	c.state.IsLoading = true
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		c.state.IsLoading = false
		c.mu.Unlock()
	}
}

// SignInWithEmail authenticates with credentials and adopts the session.
func (c *Controller) SignInWithEmail(ctx context.Context, email, password string) error {
	defer c.beginAction()()

	sess, err := c.svc.SignInWithEmail(ctx, email, password)
	if err != nil {
		return err
	}
	c.adoptSession(sess)
	return nil
}

// SignUpWithEmail registers a new account and adopts the session.
func (c *Controller) SignUpWithEmail(ctx context.Context, email, password string) error {
	defer c.beginAction()()

	sess, err := c.svc.SignUpWithEmail(ctx, email, password)
	if err != nil {
		return err
	}
	c.adoptSession(sess)
	return nil
}

// SignInWithGoogle returns the Google OAuth redirect URL. The session arrives
// later through the callback route and the change subscription.
func (c *Controller) SignInWithGoogle(ctx context.Context) (string, error) {
	defer c.beginAction()()
	return c.svc.SignInWithGoogle(ctx)
}

// SignInWithGithub returns the GitHub OAuth redirect URL.
func (c *Controller) SignInWithGithub(ctx context.Context) (string, error) {
	defer c.beginAction()()
	return c.svc.SignInWithGithub(ctx)
}

// SignInWithLine signs in through LINE. A non-empty redirect URL with no
// error means the flow suspended for a LINE login and re-enters later.
func (c *Controller) SignInWithLine(ctx context.Context, env access.Environment) (redirectURL string, err error) {
	defer c.beginAction()()

	sess, redirect, err := c.svc.SignInWithLine(ctx, env)
	if err != nil {
		return "", err
	}
	if redirect != "" {
		return redirect, nil
	}

	c.adoptSession(sess)
	c.refreshLineProfile(ctx)
	return "", nil
}

// SignOut terminates the session and clears all identity state.
func (c *Controller) SignOut(ctx context.Context) error {
	defer c.beginAction()()

	if err := c.svc.SignOut(ctx); err != nil {
		return err
	}
	c.clearIdentity()
	return nil
}

// Snapshot returns a copy of the current state, safe to retain.
func (c *Controller) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := c.state
	if c.state.User != nil {
		u := *c.state.User
		snap.User = &u
	}
	if c.state.Session != nil {
		s := *c.state.Session
		snap.Session = &s
	}
	if c.state.LineProfile != nil {
		p := *c.state.LineProfile
		snap.LineProfile = &p
	}
	return snap
}

// Close cancels the change subscription. Safe to call more than once.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		unsub := c.unsubscribe
		c.unsubscribe = nil
		c.mu.Unlock()

		if unsub != nil {
			unsub()
		}
	})
}
