package api

import (
	"context"
	"encoding/json"
	"iter"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendline/expense-approval/internal/core/domain"
	"github.com/spendline/expense-approval/internal/core/ports"
	"github.com/spendline/expense-approval/internal/infrastructure/stream"
)

const testSecret = "router-secret"

type fakeIdentity struct {
	principals map[string]domain.Principal
}

func (f *fakeIdentity) Register(context.Context, string, string) (*ports.Registration, error) {
	return nil, domain.ErrUserExists
}

func (f *fakeIdentity) Login(context.Context, string, string) (string, *domain.Principal, error) {
	return "", nil, domain.ErrInvalidCredentials
}

func (f *fakeIdentity) ResolvePrincipal(_ context.Context, id domain.ExternalIdentity) (domain.Principal, error) {
	if p, ok := f.principals[id.Subject]; ok {
		return p, nil
	}
	return domain.Principal{}, domain.ErrUnknownPrincipal
}

type fakeDirectory struct{}

func (fakeDirectory) AddUser(context.Context, domain.Principal, ports.AddUserInput) (*domain.User, error) {
	return nil, domain.ErrUserExists
}

func (fakeDirectory) ChangeRole(context.Context, domain.Principal, string, domain.Role) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (fakeDirectory) AssignManager(context.Context, domain.Principal, string, *string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (fakeDirectory) ListUsers(context.Context, domain.Principal) ([]*domain.User, error) {
	return []*domain.User{}, nil
}

type fakeExpenses struct{}

func empty() iter.Seq2[*domain.Expense, error] {
	return func(func(*domain.Expense, error) bool) {}
}

func (fakeExpenses) SubmitExpense(context.Context, domain.Principal, ports.SubmitExpenseInput) (*ports.SubmitResult, error) {
	return nil, domain.ErrNoManagerAssigned
}

func (fakeExpenses) DecideExpense(context.Context, domain.Principal, string, domain.ExpenseStatus) (*domain.Expense, error) {
	return nil, domain.ErrAlreadyDecided
}

func (fakeExpenses) OverrideExpense(context.Context, domain.Principal, string, domain.ExpenseStatus) (*domain.Expense, error) {
	return nil, domain.ErrExpenseNotFound
}

func (fakeExpenses) GetExpense(context.Context, domain.Principal, string) (*domain.Expense, error) {
	return nil, domain.ErrExpenseNotFound
}

func (f fakeExpenses) ListMySubmissions(ctx context.Context, p domain.Principal) (iter.Seq2[*domain.Expense, error], error) {
	return empty(), nil
}

func (f fakeExpenses) ListMyApprovalQueue(ctx context.Context, p domain.Principal) (iter.Seq2[*domain.Expense, error], error) {
	return empty(), nil
}

func (f fakeExpenses) ListTeamExpenses(ctx context.Context, p domain.Principal) (iter.Seq2[*domain.Expense, error], error) {
	return empty(), nil
}

func (f fakeExpenses) ListCompanyExpenses(ctx context.Context, p domain.Principal) (iter.Seq2[*domain.Expense, error], error) {
	return empty(), nil
}

func (f fakeExpenses) List(ctx context.Context, p domain.Principal, v domain.ExpenseView) (iter.Seq2[*domain.Expense, error], error) {
	return empty(), nil
}

type fakeAssistant struct{}

func (fakeAssistant) GenerateDescription(context.Context, string) ports.Suggestion {
	return ports.Suggestion{Text: "Client dinner", Available: true}
}

func (fakeAssistant) Summarize(context.Context, domain.Principal) ports.Suggestion {
	return ports.Suggestion{Text: "There are no pending expenses to summarize.", Available: true}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	identity := &fakeIdentity{principals: map[string]domain.Principal{
		"sub-emp": {UserID: "emp", Role: domain.RoleEmployee, CompanyID: "acme"},
		"sub-adm": {UserID: "adm", Role: domain.RoleAdmin, CompanyID: "acme"},
	}}
	return NewRouter(Dependencies{
		Identity:  identity,
		Directory: fakeDirectory{},
		Expenses:  fakeExpenses{},
		Assistant: fakeAssistant{},
		Hub:       stream.NewHub(1, zerolog.Nop()),
		Catalog:   domain.DefaultCatalog(),
		JWTSecret: testSecret,
		Logger:    zerolog.Nop(),
		Metrics:   prometheus.NewRegistry(),
	})
}

func tokenFor(t *testing.T, subject string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   subject,
		"email": subject + "@acme.test",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestRouter(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		name    string
		method  string
		path    string
		subject string
		status  int
		code    string
	}{
		{"liveness", http.MethodGet, "/health", "", http.StatusOK, ""},
		{"readiness without checks", http.MethodGet, "/health/ready", "", http.StatusOK, ""},
		{"no token", http.MethodGet, "/v1/me", "", http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"unknown principal", http.MethodGet, "/v1/me", "sub-stranger", http.StatusForbidden, "UNKNOWN_PRINCIPAL"},
		{"me", http.MethodGet, "/v1/me", "sub-emp", http.StatusOK, ""},
		{"catalog", http.MethodGet, "/v1/catalog", "sub-emp", http.StatusOK, ""},
		{"employee queue is empty, not forbidden", http.MethodGet, "/v1/expenses/queue", "sub-emp", http.StatusOK, ""},
		{"company view requires admin", http.MethodGet, "/v1/expenses/company", "sub-emp", http.StatusForbidden, "NOT_AUTHORIZED"},
		{"company view for admin", http.MethodGet, "/v1/expenses/company", "sub-adm", http.StatusOK, ""},
		{"users require admin", http.MethodGet, "/v1/users", "sub-emp", http.StatusForbidden, "NOT_AUTHORIZED"},
		{"users for admin", http.MethodGet, "/v1/users", "sub-adm", http.StatusOK, ""},
		{"expense not found", http.MethodGet, "/v1/expenses/missing", "sub-emp", http.StatusNotFound, "EXPENSE_NOT_FOUND"},
		{"unknown route", http.MethodGet, "/v2/nothing", "", http.StatusNotFound, "ROUTE_NOT_FOUND"},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.subject != "" {
				req.Header.Set("Authorization", "Bearer "+tokenFor(t, tc.subject))
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			if tc.code != "" {
				var body errorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tc.code, body.Code)
			}
		})
	}
}

func TestRouter_MetricsExposeHTTPRequests(t *testing.T) {
	router := newTestRouter(t)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "expenses_requests_total")
}
