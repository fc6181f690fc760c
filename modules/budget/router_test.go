package budget_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneyflow/moneyflow/modules/budget"
	"github.com/moneyflow/moneyflow/pkg/access"
	"github.com/moneyflow/moneyflow/pkg/auth"
	"github.com/moneyflow/moneyflow/pkg/liff"
	"github.com/moneyflow/moneyflow/pkg/provider"
)

func newBudgetRouter(t *testing.T) (http.Handler, *auth.Service, *budget.Store) {
	t.Helper()

	cfg := provider.Config{
		TokenSecret:     "test-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		BcryptCost:      4,
		StateTTL:        time.Minute,
	}
	local := provider.NewLocalProvider(cfg, provider.NewMemoryUserStore())
	t.Cleanup(local.Close)

	detector := access.NewDetector(access.Config{})
	svc := auth.NewService(local, detector, liff.NewClient(liff.Config{}, detector))

	store := budget.NewStore()
	r := chi.NewRouter()
	r.Mount("/budget", budget.NewService(store, svc).Handle())
	return r, svc, store
}

func TestBudgetRoutesRequireSignIn(t *testing.T) {
	t.Parallel()

	h, _, _ := newBudgetRouter(t)

	for _, target := range []string{"/budget/categories", "/budget/expenses", "/budget/summary"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
}

func TestBudgetExpenseFlow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h, svc, store := newBudgetRouter(t)

	sess, err := svc.SignUpWithEmail(ctx, "demo@moneyflow.app", "demo-password")
	require.NoError(t, err)
	require.NoError(t, budget.Seed(ctx, store, sess.User.ID))

	// Find the food category.
	req := httptest.NewRequest(http.MethodGet, "/budget/categories", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var categories []budget.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &categories))
	require.NotEmpty(t, categories)

	var food budget.Category
	for _, c := range categories {
		if c.Name == "食費" {
			food = c
		}
	}
	require.NotZero(t, food.ID)

	body, err := json.Marshal(map[string]any{
		"category_id":      food.ID,
		"amount":           "980",
		"transaction_date": "2025-06-16",
		"memo":             "コンビニ弁当",
	})
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodPost, "/budget/expenses", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created budget.Expense
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, sess.User.ID, created.UserID)
	assert.True(t, created.Amount.Equal(decimal.NewFromInt(980)))

	req = httptest.NewRequest(http.MethodGet, "/budget/summary?month=2025-06", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary budget.MonthlySummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.True(t, summary.TotalExpense.Equal(decimal.NewFromInt(114860)), "got %s", summary.TotalExpense)
}

func TestBudgetRejectsInvalidRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h, svc, _ := newBudgetRouter(t)

	_, err := svc.SignUpWithEmail(ctx, "strict@moneyflow.app", "pw")
	require.NoError(t, err)

	body, err := json.Marshal(map[string]any{
		"amount":           "0",
		"transaction_date": "2025-06-16",
		"source":           "給与",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/budget/incomes", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
