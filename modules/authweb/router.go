package authweb

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/moneyflow/moneyflow/pkg/auth"
	"github.com/moneyflow/moneyflow/pkg/authstate"
	"github.com/moneyflow/moneyflow/pkg/logger"
)

// Service bundles the HTTP surface of the auth orchestrator.
type Service struct {
	auth       *auth.Service
	state      *authstate.Controller
	log        *slog.Logger
	successURL string
	failureURL string
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a custom logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithSuccessURL sets where the callback route lands after a completed
// sign-in. Defaults to /dashboard.
func WithSuccessURL(u string) Option {
	return func(s *Service) {
		if u != "" {
			s.successURL = u
		}
	}
}

// WithFailureURL sets where the callback route lands on failure; the error
// message travels as a query parameter. Defaults to /auth.
func WithFailureURL(u string) Option {
	return func(s *Service) {
		if u != "" {
			s.failureURL = u
		}
	}
}

// WithStateController exposes the controller's snapshot at GET /state. The
// caller owns the controller's lifecycle; it must be started.
func WithStateController(ctrl *authstate.Controller) Option {
	return func(s *Service) { s.state = ctrl }
}

// NewService creates the HTTP auth module.
func NewService(authSvc *auth.Service, opts ...Option) *Service {
	s := &Service{
		auth:       authSvc,
		log:        logger.Discard(),
		successURL: "/dashboard",
		failureURL: "/auth",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle returns the router, meant to be mounted at /auth.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Post("/signin", s.signIn)
	r.Post("/signup", s.signUp)
	r.Get("/google", s.googleRedirect)
	r.Get("/github", s.githubRedirect)
	r.Post("/line", s.lineSignIn)
	r.Post("/signout", s.signOut)
	r.Get("/session", s.session)
	r.Get("/callback", s.callback)
	if s.state != nil {
		r.Get("/state", s.authState)
	}

	return r
}
