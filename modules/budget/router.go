package budget

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moneyflow/moneyflow/pkg/auth"
	"github.com/moneyflow/moneyflow/pkg/logger"
)

// Service is the HTTP surface of the budget domain. Every route requires a
// signed-in user; records are scoped to that user.
type Service struct {
	store *Store
	auth  *auth.Service
	log   *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a custom logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// NewService creates the HTTP budget module.
func NewService(store *Store, authSvc *auth.Service, opts ...Option) *Service {
	s := &Service{
		store: store,
		auth:  authSvc,
		log:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle returns the router, meant to be mounted at /budget.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/categories", s.listCategories)
	r.Post("/categories", s.createCategory)
	r.Get("/expenses", s.listExpenses)
	r.Post("/expenses", s.createExpense)
	r.Get("/incomes", s.listIncomes)
	r.Post("/incomes", s.createIncome)
	r.Get("/summary", s.summary)

	return r
}

type categoryRequest struct {
	Name          string           `json:"name"`
	Icon          string           `json:"icon"`
	Color         string           `json:"color"`
	Type          string           `json:"type"`
	MonthlyBudget *decimal.Decimal `json:"monthly_budget,omitempty"`
	SortOrder     int              `json:"sort_order"`
}

type expenseRequest struct {
	CategoryID uuid.UUID       `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
	Date       string          `json:"transaction_date"`
	Memo       string          `json:"memo,omitempty"`
}

type incomeRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"transaction_date"`
	Source string          `json:"source"`
	Memo   string          `json:"memo,omitempty"`
}

func (s *Service) listCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, s.store.ListCategories(r.Context(), userID))
}

func (s *Service) createCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	var req categoryRequest
	if !s.decode(w, r, &req) {
		return
	}

	created, err := s.store.CreateCategory(r.Context(), Category{
		UserID:        userID,
		Name:          req.Name,
		Icon:          req.Icon,
		Color:         req.Color,
		Type:          req.Type,
		MonthlyBudget: req.MonthlyBudget,
		SortOrder:     req.SortOrder,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Service) listExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	records, err := s.store.ListExpenses(r.Context(), userID, s.month(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Service) createExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	var req expenseRequest
	if !s.decode(w, r, &req) {
		return
	}

	created, err := s.store.CreateExpense(r.Context(), Expense{
		UserID:     userID,
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		Date:       req.Date,
		Memo:       req.Memo,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Service) listIncomes(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	records, err := s.store.ListIncomes(r.Context(), userID, s.month(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Service) createIncome(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	var req incomeRequest
	if !s.decode(w, r, &req) {
		return
	}

	created, err := s.store.CreateIncome(r.Context(), Income{
		UserID: userID,
		Amount: req.Amount,
		Date:   req.Date,
		Source: req.Source,
		Memo:   req.Memo,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Service) summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	result, err := s.store.Summary(r.Context(), userID, s.month(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// month reads the month query parameter, defaulting to the current month.
func (s *Service) month(r *http.Request) string {
	if m := r.URL.Query().Get("month"); m != "" {
		return m
	}
	return time.Now().Format(monthLayout)
}

// currentUser resolves the signed-in user or answers 401.
func (s *Service) currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	user, err := s.auth.User(r.Context())
	switch {
	case errors.Is(err, auth.ErrNoSession):
		s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "sign in required"})
		return uuid.Nil, false
	case err != nil:
		s.log.Error("current-user lookup failed",
			logger.Component("budget"),
			logger.Error(err),
		)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return uuid.Nil, false
	}
	return user.ID, true
}

func (s *Service) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("response encoding failed",
			logger.Component("budget"),
			logger.Error(err),
		)
	}
}

func (s *Service) writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, ErrCategoryNotFound) {
		status = http.StatusNotFound
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
