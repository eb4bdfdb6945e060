package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of tenant roles.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleManager  Role = "Manager"
	RoleEmployee Role = "Employee"
)

// ParseRole accepts the canonical role names, case-insensitively.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, nil
	case "manager":
		return RoleManager, nil
	case "employee":
		return RoleEmployee, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleEmployee
}

// CanManage reports whether a user with this role may be referenced as
// another user's manager.
func (r Role) CanManage() bool { return r == RoleAdmin || r == RoleManager }

// CanOverride reports whether the role may override any expense decision in
// its tenant.
func (r Role) CanOverride() bool { return r == RoleAdmin }

func (r Role) CanManageUsers() bool { return r == RoleAdmin }

func (r Role) CanViewCompany() bool { return r == RoleAdmin }

// User is a member of exactly one tenant.
type User struct {
	ID string `json:"id"`
	// ExternalID is the identity-provider subject; empty until the user
	// registers credentials.
	ExternalID string    `json:"-"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	CompanyID  string    `json:"company_id"`
	ManagerID  *string   `json:"manager_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Principal returns the resolved authorization tuple for u.
func (u *User) Principal() Principal {
	var manager *string
	if u.ManagerID != nil {
		m := *u.ManagerID
		manager = &m
	}
	return Principal{
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CompanyID: u.CompanyID,
		ManagerID: manager,
	}
}

// Principal is an authenticated actor resolved to a user, role and tenant.
// Every authorization decision takes a Principal as its only source of
// truth for role and tenant scope.
type Principal struct {
	UserID    string
	Email     string
	Role      Role
	CompanyID string
	ManagerID *string
}

// SameTenant reports whether the principal belongs to companyID.
func (p Principal) SameTenant(companyID string) bool {
	return p.CompanyID != "" && p.CompanyID == companyID
}

// ExternalIdentity is what the identity provider vouches for.
type ExternalIdentity struct {
	Subject string
	Email   string
}

// Credential is an identity-provider account.
type Credential struct {
	Subject      string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// NormalizeEmail lowercases and trims an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateManagerAssignment checks that manager may manage subject.
func ValidateManagerAssignment(subject, manager *User) error {
	if manager == nil {
		return nil
	}
	if manager.CompanyID != subject.CompanyID {
		return fmt.Errorf("manager %s: %w", manager.ID, ErrTenantMismatch)
	}
	if manager.ID == subject.ID {
		return fmt.Errorf("%w: user cannot manage themselves", ErrInvalidManager)
	}
	if !manager.Role.CanManage() {
		return fmt.Errorf("%w: %s has role %s", ErrInvalidManager, manager.ID, manager.Role)
	}
	return nil
}
