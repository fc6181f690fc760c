package authweb

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/moneyflow/moneyflow/pkg/access"
	"github.com/moneyflow/moneyflow/pkg/auth"
	"github.com/moneyflow/moneyflow/pkg/liff"
	"github.com/moneyflow/moneyflow/pkg/logger"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Session *auth.Session `json:"session"`
}

// lineSignInResponse carries either a completed session or the login
// redirect the client must follow; exactly one is set.
type lineSignInResponse struct {
	Session     *auth.Session `json:"session,omitempty"`
	RedirectURL string        `json:"redirect_url,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// stateResponse mirrors one controller snapshot. Clients poll it instead of
// stitching the session and LINE profile together themselves.
type stateResponse struct {
	User         *auth.User    `json:"user"`
	Session      *auth.Session `json:"session"`
	LineProfile  *liff.Profile `json:"line_profile,omitempty"`
	AccessMethod access.Method `json:"access_method"`
	IsLoading    bool          `json:"is_loading"`
}

func (s *Service) signIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !s.decode(w, r, &req) {
		return
	}

	sess, err := s.auth.SignInWithEmail(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sessionResponse{Session: sess})
}

func (s *Service) signUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !s.decode(w, r, &req) {
		return
	}

	sess, err := s.auth.SignUpWithEmail(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, sessionResponse{Session: sess})
}

func (s *Service) googleRedirect(w http.ResponseWriter, r *http.Request) {
	target, err := s.auth.SignInWithGoogle(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (s *Service) githubRedirect(w http.ResponseWriter, r *http.Request) {
	target, err := s.auth.SignInWithGithub(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (s *Service) lineSignIn(w http.ResponseWriter, r *http.Request) {
	env := access.EnvironmentFromRequest(r)

	sess, redirect, err := s.auth.SignInWithLine(r.Context(), env)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if redirect != "" {
		s.writeJSON(w, http.StatusOK, lineSignInResponse{RedirectURL: redirect})
		return
	}
	s.writeJSON(w, http.StatusOK, lineSignInResponse{Session: sess})
}

func (s *Service) signOut(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.SignOut(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) session(w http.ResponseWriter, r *http.Request) {
	sess, err := s.auth.Session(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sessionResponse{Session: sess})
}

func (s *Service) authState(w http.ResponseWriter, r *http.Request) {
	snap := s.state.Snapshot()
	s.writeJSON(w, http.StatusOK, stateResponse{
		User:         snap.User,
		Session:      snap.Session,
		LineProfile:  snap.LineProfile,
		AccessMethod: snap.AccessMethod,
		IsLoading:    snap.IsLoading,
	})
}

// callback lands the browser after an OAuth provider redirect. An error
// parameter always wins over a code; a callback with neither is treated as
// already signed in and sent to the success page.
func (s *Service) callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if errMsg := q.Get("error"); errMsg != "" {
		if desc := q.Get("error_description"); desc != "" {
			errMsg = desc
		}
		s.redirectWithError(w, r, errMsg)
		return
	}

	code := q.Get("code")
	if code == "" {
		http.Redirect(w, r, s.successURL, http.StatusFound)
		return
	}

	// The state token rides along so the exchange can verify it; the
	// provider receives them joined as one opaque code.
	if state := q.Get("state"); state != "" {
		code = state + "." + code
	}

	if _, err := s.auth.ExchangeCode(r.Context(), code); err != nil {
		s.log.Error("OAuth callback exchange failed",
			logger.Component("authweb"),
			logger.Error(err),
		)
		s.redirectWithError(w, r, err.Error())
		return
	}

	http.Redirect(w, r, s.successURL, http.StatusFound)
}

func (s *Service) redirectWithError(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, s.failureURL+"?error="+url.QueryEscape(msg), http.StatusFound)
}

func (s *Service) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("response encoding failed",
			logger.Component("authweb"),
			logger.Error(err),
		)
	}
}

func (s *Service) writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}

	var authErr *auth.Error
	if errors.As(err, &authErr) {
		resp.Error = authErr.Message
		resp.Code = authErr.Code
	}

	s.writeJSON(w, statusFor(err), resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrEmailAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, auth.ErrNotInLiffEnvironment),
		errors.Is(err, auth.ErrInvalidCode),
		errors.Is(err, auth.ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrLineExchangeNotImplemented):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
