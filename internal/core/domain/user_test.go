package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseRole(t *testing.T) {
	for in, want := range map[string]Role{"Admin": RoleAdmin, "manager": RoleManager, " EMPLOYEE ": RoleEmployee} {
		got, err := ParseRole(in)
		if err != nil || got != want {
			t.Errorf("ParseRole(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := ParseRole("owner"); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}
}

func TestRoleCapabilities(t *testing.T) {
	cases := []struct {
		role                                   Role
		manage, override, manageUsers, company bool
	}{
		{RoleAdmin, true, true, true, true},
		{RoleManager, true, false, false, false},
		{RoleEmployee, false, false, false, false},
	}
	for _, tc := range cases {
		if tc.role.CanManage() != tc.manage ||
			tc.role.CanOverride() != tc.override ||
			tc.role.CanManageUsers() != tc.manageUsers ||
			tc.role.CanViewCompany() != tc.company {
			t.Errorf("unexpected capabilities for %s", tc.role)
		}
	}
}

func TestValidateManagerAssignment(t *testing.T) {
	subject := &User{ID: "u1", Role: RoleEmployee, CompanyID: "acme"}

	cases := []struct {
		name    string
		manager *User
		wantErr error
	}{
		{"none", nil, nil},
		{"manager", &User{ID: "m", Role: RoleManager, CompanyID: "acme"}, nil},
		{"admin", &User{ID: "a", Role: RoleAdmin, CompanyID: "acme"}, nil},
		{"employee", &User{ID: "e", Role: RoleEmployee, CompanyID: "acme"}, ErrInvalidManager},
		{"self", &User{ID: "u1", Role: RoleManager, CompanyID: "acme"}, ErrInvalidManager},
		{"other tenant", &User{ID: "m", Role: RoleManager, CompanyID: "globex"}, ErrTenantMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateManagerAssignment(subject, tc.manager)
			if tc.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestPrincipal_CopiesManager(t *testing.T) {
	u := &User{ID: "u1", ManagerID: ptr("m1")}
	p := u.Principal()
	*u.ManagerID = "m2"
	if *p.ManagerID != "m1" {
		t.Fatalf("principal shares manager pointer with user")
	}
}

func TestSameTenant(t *testing.T) {
	if (Principal{}).SameTenant("") {
		t.Fatalf("an unresolved principal must not match the empty tenant")
	}
	if !(Principal{CompanyID: "acme"}).SameTenant("acme") {
		t.Fatalf("expected same tenant")
	}
}

func TestDefaultCompanyName(t *testing.T) {
	if got := DefaultCompanyName("alice@example.com"); got != "alice's Company" {
		t.Fatalf("unexpected name %q", got)
	}
}

func TestCatalogValidateDraft(t *testing.T) {
	c := DefaultCatalog()
	ok := ExpenseDraft{Amount: decimal.RequireFromString("0.01"), Currency: "INR", Category: "Software", Description: "IDE", Date: now}
	if err := c.ValidateDraft(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := map[string]func(*ExpenseDraft){
		"zero amount":      func(d *ExpenseDraft) { d.Amount = decimal.Zero },
		"unknown currency": func(d *ExpenseDraft) { d.Currency = "usd" },
		"unknown category": func(d *ExpenseDraft) { d.Category = "travel" },
		"empty":            func(d *ExpenseDraft) { d.Description = "" },
		"missing date":     func(d *ExpenseDraft) { d.Date = time.Time{} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			d := ok
			mutate(&d)
			if err := c.ValidateDraft(d); !errors.Is(err, ErrInvalidDraft) {
				t.Fatalf("expected ErrInvalidDraft, got %v", err)
			}
		})
	}
}
