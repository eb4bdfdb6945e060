package service

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/spendline/expense-approval/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubExpenseRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Expense
	createErr error
	// beforeUpdate runs inside ConditionalUpdate before the state check.
	beforeUpdate func()
}

func newStubExpenseRepo() *stubExpenseRepo {
	return &stubExpenseRepo{byID: make(map[string]*domain.Expense)}
}

func (r *stubExpenseRepo) Create(_ context.Context, e *domain.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.byID[e.ID] = e.Clone()
	return nil
}

func (r *stubExpenseRepo) GetByID(_ context.Context, id string) (*domain.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrExpenseNotFound
	}
	return e.Clone(), nil
}

func (r *stubExpenseRepo) query(match func(*domain.Expense) bool) iter.Seq2[*domain.Expense, error] {
	return func(yield func(*domain.Expense, error) bool) {
		r.mu.Lock()
		var out []*domain.Expense
		for _, e := range r.byID {
			if match(e) {
				out = append(out, e.Clone())
			}
		}
		r.mu.Unlock()

		slices.SortFunc(out, func(a, b *domain.Expense) int {
			if c := b.Date.Compare(a.Date); c != 0 {
				return c
			}
			return b.CreatedAt.Compare(a.CreatedAt)
		})
		for _, e := range out {
			if !yield(e, nil) {
				return
			}
		}
	}
}

func (r *stubExpenseRepo) QueryByEmployee(_ context.Context, companyID, employeeID string) iter.Seq2[*domain.Expense, error] {
	return r.query(func(e *domain.Expense) bool {
		return e.CompanyID == companyID && e.EmployeeID == employeeID
	})
}

func (r *stubExpenseRepo) QueryByCurrentApprover(_ context.Context, companyID, approverID string) iter.Seq2[*domain.Expense, error] {
	return r.query(func(e *domain.Expense) bool {
		return e.CompanyID == companyID && e.IsCurrentApprover(approverID)
	})
}

func (r *stubExpenseRepo) QueryByManager(_ context.Context, companyID, managerID string) iter.Seq2[*domain.Expense, error] {
	return r.query(func(e *domain.Expense) bool {
		return e.CompanyID == companyID && e.ManagerID == managerID
	})
}

func (r *stubExpenseRepo) QueryByCompany(_ context.Context, companyID string) iter.Seq2[*domain.Expense, error] {
	return r.query(func(e *domain.Expense) bool { return e.CompanyID == companyID })
}

func (r *stubExpenseRepo) ConditionalUpdate(_ context.Context, id string, expected domain.ExpectedState, m domain.ExpenseMutation) error {
	if r.beforeUpdate != nil {
		r.beforeUpdate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return domain.ErrExpenseNotFound
	}
	if e.Status != expected.Status || e.Revision != expected.Revision {
		return domain.ErrConflict
	}
	e.Apply(m)
	return nil
}

type stubUserRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.User
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{byID: make(map[string]*domain.User)}
	for _, u := range users {
		r.byID[u.ID] = cloneUser(u)
	}
	return r
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.ManagerID != nil {
		m := *u.ManagerID
		clone.ManagerID = &m
	}
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[u.ID]; ok {
		return domain.ErrUserExists
	}
	r.byID[u.ID] = cloneUser(u)
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByExternalID(_ context.Context, subject string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.ExternalID != "" && u.ExternalID == subject {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, companyID, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.CompanyID == companyID && u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindUnlinkedByEmail(_ context.Context, email string) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.byID {
		if u.ExternalID == "" && u.Email == email {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r *stubUserRepo) ListByCompany(_ context.Context, companyID string) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.User{}
	for _, u := range r.byID {
		if u.CompanyID == companyID {
			out = append(out, cloneUser(u))
		}
	}
	slices.SortFunc(out, func(a, b *domain.User) int {
		if a.Email < b.Email {
			return -1
		}
		if a.Email > b.Email {
			return 1
		}
		return 0
	})
	return out, nil
}

func (r *stubUserRepo) CountReports(_ context.Context, managerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.byID {
		if u.ManagerID != nil && *u.ManagerID == managerID {
			n++
		}
	}
	return n, nil
}

func (r *stubUserRepo) LinkExternalID(_ context.Context, userID, subject string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if u.ExternalID != "" {
		return domain.ErrConflict
	}
	u.ExternalID = subject
	return nil
}

func (r *stubUserRepo) UpdateRole(_ context.Context, userID string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (r *stubUserRepo) UpdateManager(_ context.Context, userID string, managerID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.ManagerID = managerID
	return nil
}

type stubCompanyRepo struct {
	byID map[string]*domain.Company
}

func newStubCompanyRepo() *stubCompanyRepo {
	return &stubCompanyRepo{byID: make(map[string]*domain.Company)}
}

func (r *stubCompanyRepo) Create(_ context.Context, c *domain.Company) error {
	clone := *c
	r.byID[c.ID] = &clone
	return nil
}

func (r *stubCompanyRepo) FindByID(_ context.Context, id string) (*domain.Company, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrCompanyNotFound
	}
	clone := *c
	return &clone, nil
}

type stubCredentialRepo struct {
	byEmail map[string]*domain.Credential
}

func newStubCredentialRepo() *stubCredentialRepo {
	return &stubCredentialRepo{byEmail: make(map[string]*domain.Credential)}
}

func (r *stubCredentialRepo) Create(_ context.Context, c *domain.Credential) error {
	if _, ok := r.byEmail[c.Email]; ok {
		return domain.ErrUserExists
	}
	clone := *c
	r.byEmail[c.Email] = &clone
	return nil
}

func (r *stubCredentialRepo) FindByEmail(_ context.Context, email string) (*domain.Credential, error) {
	c, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *c
	return &clone, nil
}

// stubGuard mirrors the Redis SubmissionGuard semantics.
type stubGuard struct {
	mu         sync.Mutex
	entries    map[string]string
	reserveErr error
	calls      int
}

const stubPending = "\x00pending"

func newStubGuard() *stubGuard {
	return &stubGuard{entries: make(map[string]string)}
}

func (g *stubGuard) Reserve(_ context.Context, scope, key string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.reserveErr != nil {
		return "", g.reserveErr
	}
	k := scope + ":" + key
	v, ok := g.entries[k]
	if !ok {
		g.entries[k] = stubPending
		return "", nil
	}
	if v == stubPending {
		return "", domain.ErrSubmissionInFlight
	}
	return v, nil
}

func (g *stubGuard) Complete(_ context.Context, scope, key, expenseID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.entries[scope+":"+key] = expenseID
	return nil
}

func (g *stubGuard) Release(_ context.Context, scope, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	delete(g.entries, scope+":"+key)
	return nil
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func newUser(id, email string, role domain.Role, companyID string, managerID *string) *domain.User {
	return &domain.User{
		ID:         id,
		ExternalID: "sub-" + id,
		Email:      email,
		Role:       role,
		CompanyID:  companyID,
		ManagerID:  managerID,
		CreatedAt:  fixedNow,
	}
}

// tenant is a small company: an Admin, a Manager reporting to the Admin and
// an Employee reporting to the Manager.
type tenant struct {
	admin, manager, employee *domain.User
}

func newTenant(companyID string) tenant {
	admin := newUser(companyID+"-admin", "admin@"+companyID+".test", domain.RoleAdmin, companyID, nil)
	manager := newUser(companyID+"-manager", "manager@"+companyID+".test", domain.RoleManager, companyID, strPtr(admin.ID))
	employee := newUser(companyID+"-employee", "employee@"+companyID+".test", domain.RoleEmployee, companyID, strPtr(manager.ID))
	return tenant{admin: admin, manager: manager, employee: employee}
}

func (t tenant) users() []*domain.User {
	return []*domain.User{t.admin, t.manager, t.employee}
}

func validDraft() domain.ExpenseDraft {
	return domain.ExpenseDraft{
		Amount:      decimal.RequireFromString("42.50"),
		Currency:    "USD",
		Category:    "Travel",
		Description: "Taxi to client site",
		Date:        fixedNow.AddDate(0, 0, -1),
	}
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
