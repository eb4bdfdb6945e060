package ports

import (
	"context"

	"github.com/spendline/expense-approval/internal/core/domain"
)

// Registration is the outcome of creating identity-provider credentials.
type Registration struct {
	Principal domain.Principal
	// CompanyCreated is true when the registration signed up a new tenant
	// with the registrant as its first Admin.
	CompanyCreated bool
}

// IdentityService authenticates accounts and resolves them to principals.
type IdentityService interface {
	Register(ctx context.Context, email, password string) (*Registration, error)
	Login(ctx context.Context, email, password string) (string, *domain.Principal, error)
	ResolvePrincipal(ctx context.Context, identity domain.ExternalIdentity) (domain.Principal, error)
}

// AddUserInput carries the fields an Admin supplies for a new member.
type AddUserInput struct {
	Email     string
	Role      domain.Role
	ManagerID *string
}

// DirectoryService is the Admin-only user management surface.
type DirectoryService interface {
	AddUser(ctx context.Context, admin domain.Principal, in AddUserInput) (*domain.User, error)
	ChangeRole(ctx context.Context, admin domain.Principal, userID string, role domain.Role) (*domain.User, error)
	AssignManager(ctx context.Context, admin domain.Principal, userID string, managerID *string) (*domain.User, error)
	ListUsers(ctx context.Context, admin domain.Principal) ([]*domain.User, error)
}
