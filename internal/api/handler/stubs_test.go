package handler

import (
	"context"
	"errors"
	"iter"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/spendline/expense-approval/internal/api/middleware"
	"github.com/spendline/expense-approval/internal/core/domain"
	"github.com/spendline/expense-approval/internal/core/ports"
)

var (
	employee = domain.Principal{UserID: "emp", Email: "emp@acme.test", Role: domain.RoleEmployee, CompanyID: "acme", ManagerID: strPtr("mgr")}
	manager  = domain.Principal{UserID: "mgr", Email: "mgr@acme.test", Role: domain.RoleManager, CompanyID: "acme"}
	admin    = domain.Principal{UserID: "adm", Email: "adm@acme.test", Role: domain.RoleAdmin, CompanyID: "acme"}
)

func strPtr(s string) *string { return &s }

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// newContext builds a request context; a non-empty body is sent as JSON.
func newContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func authed(c echo.Context, p domain.Principal) echo.Context {
	middleware.SetPrincipal(c, p)
	return c
}

func withParam(c echo.Context, path, name, value string) echo.Context {
	c.SetPath(path)
	c.SetParamNames(name)
	c.SetParamValues(value)
	return c
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

func sampleExpense(id string) *domain.Expense {
	approver := "mgr"
	return &domain.Expense{
		ID:                id,
		EmployeeID:        "emp",
		EmployeeEmail:     "emp@acme.test",
		CompanyID:         "acme",
		ManagerID:         "mgr",
		Amount:            decimal.RequireFromString("42.5"),
		Currency:          "USD",
		Category:          "Travel",
		Description:       "Taxi to airport",
		Date:              time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
		CreatedAt:         time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
		Status:            domain.StatusPending,
		CurrentApproverID: &approver,
		ApproverChain:     []string{"mgr"},
	}
}

func seqOf(items ...*domain.Expense) iter.Seq2[*domain.Expense, error] {
	return func(yield func(*domain.Expense, error) bool) {
		for _, e := range items {
			if !yield(e, nil) {
				return
			}
		}
	}
}

// --- Services ---

type stubExpenseService struct {
	submitFn   func(ctx context.Context, p domain.Principal, in ports.SubmitExpenseInput) (*ports.SubmitResult, error)
	decideFn   func(ctx context.Context, p domain.Principal, id string, d domain.ExpenseStatus) (*domain.Expense, error)
	overrideFn func(ctx context.Context, p domain.Principal, id string, s domain.ExpenseStatus) (*domain.Expense, error)
	getFn      func(ctx context.Context, p domain.Principal, id string) (*domain.Expense, error)
	listFn     func(ctx context.Context, p domain.Principal, v domain.ExpenseView) (iter.Seq2[*domain.Expense, error], error)
}

func (s *stubExpenseService) SubmitExpense(ctx context.Context, p domain.Principal, in ports.SubmitExpenseInput) (*ports.SubmitResult, error) {
	return s.submitFn(ctx, p, in)
}

func (s *stubExpenseService) DecideExpense(ctx context.Context, p domain.Principal, id string, d domain.ExpenseStatus) (*domain.Expense, error) {
	return s.decideFn(ctx, p, id, d)
}

func (s *stubExpenseService) OverrideExpense(ctx context.Context, p domain.Principal, id string, st domain.ExpenseStatus) (*domain.Expense, error) {
	return s.overrideFn(ctx, p, id, st)
}

func (s *stubExpenseService) GetExpense(ctx context.Context, p domain.Principal, id string) (*domain.Expense, error) {
	return s.getFn(ctx, p, id)
}

func (s *stubExpenseService) ListMySubmissions(ctx context.Context, p domain.Principal) (iter.Seq2[*domain.Expense, error], error) {
	return s.List(ctx, p, domain.ViewMine)
}

func (s *stubExpenseService) ListMyApprovalQueue(ctx context.Context, p domain.Principal) (iter.Seq2[*domain.Expense, error], error) {
	return s.List(ctx, p, domain.ViewQueue)
}

func (s *stubExpenseService) ListTeamExpenses(ctx context.Context, p domain.Principal) (iter.Seq2[*domain.Expense, error], error) {
	return s.List(ctx, p, domain.ViewTeam)
}

func (s *stubExpenseService) ListCompanyExpenses(ctx context.Context, p domain.Principal) (iter.Seq2[*domain.Expense, error], error) {
	return s.List(ctx, p, domain.ViewCompany)
}

func (s *stubExpenseService) List(ctx context.Context, p domain.Principal, v domain.ExpenseView) (iter.Seq2[*domain.Expense, error], error) {
	return s.listFn(ctx, p, v)
}

type stubIdentityService struct {
	registerFn func(ctx context.Context, email, password string) (*ports.Registration, error)
	loginFn    func(ctx context.Context, email, password string) (string, *domain.Principal, error)
}

func (s *stubIdentityService) Register(ctx context.Context, email, password string) (*ports.Registration, error) {
	return s.registerFn(ctx, email, password)
}

func (s *stubIdentityService) Login(ctx context.Context, email, password string) (string, *domain.Principal, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubIdentityService) ResolvePrincipal(context.Context, domain.ExternalIdentity) (domain.Principal, error) {
	return domain.Principal{}, domain.ErrUnknownPrincipal
}

type stubDirectoryService struct {
	addFn     func(ctx context.Context, admin domain.Principal, in ports.AddUserInput) (*domain.User, error)
	roleFn    func(ctx context.Context, admin domain.Principal, userID string, role domain.Role) (*domain.User, error)
	managerFn func(ctx context.Context, admin domain.Principal, userID string, managerID *string) (*domain.User, error)
	listFn    func(ctx context.Context, admin domain.Principal) ([]*domain.User, error)
}

func (s *stubDirectoryService) AddUser(ctx context.Context, a domain.Principal, in ports.AddUserInput) (*domain.User, error) {
	return s.addFn(ctx, a, in)
}

func (s *stubDirectoryService) ChangeRole(ctx context.Context, a domain.Principal, userID string, role domain.Role) (*domain.User, error) {
	return s.roleFn(ctx, a, userID, role)
}

func (s *stubDirectoryService) AssignManager(ctx context.Context, a domain.Principal, userID string, managerID *string) (*domain.User, error) {
	return s.managerFn(ctx, a, userID, managerID)
}

func (s *stubDirectoryService) ListUsers(ctx context.Context, a domain.Principal) ([]*domain.User, error) {
	return s.listFn(ctx, a)
}

type stubAssistantService struct {
	description ports.Suggestion
	summary     ports.Suggestion
	keywords    string
	principal   domain.Principal
}

func (s *stubAssistantService) GenerateDescription(_ context.Context, keywords string) ports.Suggestion {
	s.keywords = keywords
	return s.description
}

func (s *stubAssistantService) Summarize(_ context.Context, p domain.Principal) ports.Suggestion {
	s.principal = p
	return s.summary
}
