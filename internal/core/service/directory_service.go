package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/spendline/expense-approval/internal/core/domain"
	"github.com/spendline/expense-approval/internal/core/ports"
)

// DirectoryService manages the members of a tenant. Every operation requires
// an Admin principal and only touches users of the Admin's company.
type DirectoryService struct {
	users  ports.UserRepository
	logger zerolog.Logger

	now   func() time.Time
	newID func() string
}

func NewDirectoryService(users ports.UserRepository, logger zerolog.Logger) *DirectoryService {
	return &DirectoryService{
		users:  users,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

func requireAdmin(p domain.Principal) error {
	if !p.Role.CanManageUsers() {
		return fmt.Errorf("%w: user management requires %s", domain.ErrNotAuthorized, domain.RoleAdmin)
	}
	if p.CompanyID == "" {
		return domain.ErrUnknownPrincipal
	}
	return nil
}

// AddUser invites a new member. The user can act once they register
// credentials with the same email.
func (s *DirectoryService) AddUser(ctx context.Context, admin domain.Principal, in ports.AddUserInput) (*domain.User, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("add user: %w: %q", domain.ErrInvalidRole, in.Role)
	}
	email := domain.NormalizeEmail(in.Email)
	if email == "" {
		return nil, fmt.Errorf("add user: %w: email is required", domain.ErrInvalidEmail)
	}

	if _, err := s.users.FindByEmail(ctx, admin.CompanyID, email); err == nil {
		return nil, fmt.Errorf("add user %s: %w", email, domain.ErrUserExists)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("add user: %w", err)
	}

	user := &domain.User{
		ID:        s.newID(),
		Email:     email,
		Role:      in.Role,
		CompanyID: admin.CompanyID,
		CreatedAt: s.now(),
	}

	// Only employees carry a manager.
	if in.Role == domain.RoleEmployee && in.ManagerID != nil && *in.ManagerID != "" {
		if err := s.checkManager(ctx, user, *in.ManagerID); err != nil {
			return nil, fmt.Errorf("add user: %w", err)
		}
		m := *in.ManagerID
		user.ManagerID = &m
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("add user: %w", err)
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("company_id", user.CompanyID).
		Str("role", string(user.Role)).
		Str("admin_id", admin.UserID).
		Msg("user added")
	return user, nil
}

// ChangeRole updates a member's role. A user who still manages someone
// cannot become an Employee, and the last Admin of a company cannot be
// demoted.
func (s *DirectoryService) ChangeRole(ctx context.Context, admin domain.Principal, userID string, role domain.Role) (*domain.User, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, fmt.Errorf("change role: %w: %q", domain.ErrInvalidRole, role)
	}

	user, err := s.tenantUser(ctx, admin, userID)
	if err != nil {
		return nil, fmt.Errorf("change role: %w", err)
	}
	if user.Role == role {
		return user, nil
	}

	if !role.CanManage() {
		reports, err := s.users.CountReports(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("change role: %w", err)
		}
		if reports > 0 {
			return nil, fmt.Errorf("change role: %w: %s still manages %d users", domain.ErrInvalidManager, user.ID, reports)
		}
	}

	if user.Role == domain.RoleAdmin && role != domain.RoleAdmin {
		if err := s.keepsAnAdmin(ctx, user); err != nil {
			return nil, fmt.Errorf("change role: %w", err)
		}
	}

	if err := s.users.UpdateRole(ctx, user.ID, role); err != nil {
		return nil, fmt.Errorf("change role: %w", err)
	}
	user.Role = role

	s.logger.Info().Str("user_id", user.ID).Str("role", string(role)).Str("admin_id", admin.UserID).Msg("role changed")
	return user, nil
}

func (s *DirectoryService) keepsAnAdmin(ctx context.Context, leaving *domain.User) error {
	members, err := s.users.ListByCompany(ctx, leaving.CompanyID)
	if err != nil {
		return err
	}
	for _, m := range members {
		if m.ID != leaving.ID && m.Role == domain.RoleAdmin {
			return nil
		}
	}
	return fmt.Errorf("%w: %s is the only admin of %s", domain.ErrLastAdmin, leaving.ID, leaving.CompanyID)
}

// AssignManager sets or clears a member's manager. Pending expenses keep the
// approver they were routed to at submission.
func (s *DirectoryService) AssignManager(ctx context.Context, admin domain.Principal, userID string, managerID *string) (*domain.User, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}

	user, err := s.tenantUser(ctx, admin, userID)
	if err != nil {
		return nil, fmt.Errorf("assign manager: %w", err)
	}

	var next *string
	if managerID != nil && *managerID != "" {
		if err := s.checkManager(ctx, user, *managerID); err != nil {
			return nil, fmt.Errorf("assign manager: %w", err)
		}
		m := *managerID
		next = &m
	}

	if err := s.users.UpdateManager(ctx, user.ID, next); err != nil {
		return nil, fmt.Errorf("assign manager: %w", err)
	}
	user.ManagerID = next

	ev := s.logger.Info().Str("user_id", user.ID).Str("admin_id", admin.UserID)
	if next != nil {
		ev = ev.Str("manager_id", *next)
	}
	ev.Msg("manager assigned")
	return user, nil
}

// ListUsers returns the Admin's tenant directory.
func (s *DirectoryService) ListUsers(ctx context.Context, admin domain.Principal) ([]*domain.User, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	users, err := s.users.ListByCompany(ctx, admin.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *DirectoryService) tenantUser(ctx context.Context, admin domain.Principal, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !admin.SameTenant(user.CompanyID) {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrTenantMismatch)
	}
	return user, nil
}

func (s *DirectoryService) checkManager(ctx context.Context, subject *domain.User, managerID string) error {
	manager, err := s.users.FindByID(ctx, managerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: manager %s does not exist", domain.ErrInvalidManager, managerID)
		}
		return err
	}
	return domain.ValidateManagerAssignment(subject, manager)
}
