package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/spendline/expense-approval/internal/core/domain"
	"github.com/spendline/expense-approval/internal/core/ports"
)

func member(id string, role domain.Role, manager *string) *domain.User {
	return &domain.User{
		ID:        id,
		Email:     id + "@acme.test",
		Role:      role,
		CompanyID: "acme",
		ManagerID: manager,
		CreatedAt: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestUserHandler_Add(t *testing.T) {
	var got ports.AddUserInput
	stub := &stubDirectoryService{
		addFn: func(ctx context.Context, a domain.Principal, in ports.AddUserInput) (*domain.User, error) {
			got = in
			return member("new", in.Role, in.ManagerID), nil
		},
	}

	c, rec := newContext(newEcho(), http.MethodPost, "/v1/users", `{"email":"new@acme.test","role":"employee","manager_id":"mgr"}`)
	authed(c, admin)

	if err := NewUserHandler(stub).Add(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got.Role != domain.RoleEmployee || got.ManagerID == nil || *got.ManagerID != "mgr" {
		t.Fatalf("unexpected input: %+v", got)
	}

	var resp userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Linked || resp.Role != "Employee" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestUserHandler_Add_Errors(t *testing.T) {
	cases := []struct {
		name string
		body string
		err  error
		want error
	}{
		{"unknown role", `{"email":"x@acme.test","role":"owner"}`, nil, domain.ErrInvalidRole},
		{"not admin", `{"email":"x@acme.test","role":"Manager"}`, domain.ErrNotAuthorized, domain.ErrNotAuthorized},
		{"duplicate", `{"email":"x@acme.test","role":"Manager"}`, domain.ErrUserExists, domain.ErrUserExists},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubDirectoryService{
				addFn: func(ctx context.Context, a domain.Principal, in ports.AddUserInput) (*domain.User, error) {
					if tc.err == nil {
						t.Fatalf("should not be called")
					}
					return nil, tc.err
				},
			}
			c, _ := newContext(newEcho(), http.MethodPost, "/v1/users", tc.body)
			authed(c, admin)
			if err := NewUserHandler(stub).Add(c); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestUserHandler_List(t *testing.T) {
	stub := &stubDirectoryService{
		listFn: func(ctx context.Context, a domain.Principal) ([]*domain.User, error) {
			linked := member("adm", domain.RoleAdmin, nil)
			linked.ExternalID = "sub-adm"
			return []*domain.User{linked, member("emp", domain.RoleEmployee, strPtr("adm"))}, nil
		},
	}

	c, rec := newContext(newEcho(), http.MethodGet, "/v1/users", "")
	authed(c, admin)
	if err := NewUserHandler(stub).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp listUsersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Count != 2 || !resp.Data[0].Linked || resp.Data[1].Linked {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestUserHandler_ChangeRole(t *testing.T) {
	stub := &stubDirectoryService{
		roleFn: func(ctx context.Context, a domain.Principal, userID string, role domain.Role) (*domain.User, error) {
			if userID != "emp" || role != domain.RoleManager {
				t.Fatalf("unexpected args: %s %s", userID, role)
			}
			return member(userID, role, nil), nil
		},
	}

	c, rec := newContext(newEcho(), http.MethodPatch, "/v1/users/emp/role", `{"role":"Manager"}`)
	withParam(authed(c, admin), "/v1/users/:id/role", "id", "emp")

	if err := NewUserHandler(stub).ChangeRole(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_AssignManager(t *testing.T) {
	cases := []struct {
		name string
		body string
		want *string
	}{
		{"assign", `{"manager_id":"mgr"}`, strPtr("mgr")},
		{"clear with null", `{"manager_id":null}`, nil},
		{"clear with blank", `{"manager_id":"  "}`, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubDirectoryService{
				managerFn: func(ctx context.Context, a domain.Principal, userID string, managerID *string) (*domain.User, error) {
					if (tc.want == nil) != (managerID == nil) || (managerID != nil && *managerID != *tc.want) {
						t.Fatalf("unexpected manager id: %v", managerID)
					}
					return member(userID, domain.RoleEmployee, managerID), nil
				},
			}
			c, _ := newContext(newEcho(), http.MethodPatch, "/v1/users/emp/manager", tc.body)
			withParam(authed(c, admin), "/v1/users/:id/manager", "id", "emp")
			if err := NewUserHandler(stub).AssignManager(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
		})
	}
}

func TestUserHandler_AssignManager_TenantMismatch(t *testing.T) {
	stub := &stubDirectoryService{
		managerFn: func(ctx context.Context, a domain.Principal, userID string, managerID *string) (*domain.User, error) {
			return nil, domain.ErrTenantMismatch
		},
	}
	c, _ := newContext(newEcho(), http.MethodPatch, "/v1/users/emp/manager", `{"manager_id":"foreign"}`)
	withParam(authed(c, admin), "/v1/users/:id/manager", "id", "emp")

	if err := NewUserHandler(stub).AssignManager(c); !errors.Is(err, domain.ErrTenantMismatch) {
		t.Fatalf("expected ErrTenantMismatch, got %v", err)
	}
}
