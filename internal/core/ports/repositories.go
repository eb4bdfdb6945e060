package ports

import (
	"context"
	"iter"

	"github.com/spendline/expense-approval/internal/core/domain"
)

// CompanyRepository persists tenants.
type CompanyRepository interface {
	Create(ctx context.Context, c *domain.Company) error
	FindByID(ctx context.Context, id string) (*domain.Company, error)
}

// UserRepository persists tenant members. Writes are direct overwrites.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByExternalID(ctx context.Context, subject string) (*domain.User, error)
	// FindByEmail looks the address up inside one tenant.
	FindByEmail(ctx context.Context, companyID, email string) (*domain.User, error)
	// FindUnlinkedByEmail returns users in any tenant that carry email and
	// have not been linked to an identity-provider subject yet.
	FindUnlinkedByEmail(ctx context.Context, email string) ([]*domain.User, error)
	ListByCompany(ctx context.Context, companyID string) ([]*domain.User, error)
	// CountReports returns how many users name managerID as their manager.
	CountReports(ctx context.Context, managerID string) (int64, error)
	// LinkExternalID sets the subject of an unlinked user; it returns
	// domain.ErrConflict when the user is already linked.
	LinkExternalID(ctx context.Context, userID, subject string) error
	UpdateRole(ctx context.Context, userID string, role domain.Role) error
	UpdateManager(ctx context.Context, userID string, managerID *string) error
}

// CredentialRepository is the identity provider's account store.
type CredentialRepository interface {
	Create(ctx context.Context, c *domain.Credential) error
	FindByEmail(ctx context.Context, email string) (*domain.Credential, error)
}

// ExpenseRepository is the typed contract over the expense collection.
//
// Query methods are tenant-scoped and return lazy sequences ordered by date
// descending. Ranging over a sequence again re-runs the query.
type ExpenseRepository interface {
	Create(ctx context.Context, e *domain.Expense) error
	GetByID(ctx context.Context, id string) (*domain.Expense, error)
	QueryByEmployee(ctx context.Context, companyID, employeeID string) iter.Seq2[*domain.Expense, error]
	// QueryByCurrentApprover only yields pending expenses.
	QueryByCurrentApprover(ctx context.Context, companyID, approverID string) iter.Seq2[*domain.Expense, error]
	QueryByManager(ctx context.Context, companyID, managerID string) iter.Seq2[*domain.Expense, error]
	QueryByCompany(ctx context.Context, companyID string) iter.Seq2[*domain.Expense, error]
	// ConditionalUpdate applies m only if the stored expense still matches
	// expected. It returns domain.ErrConflict when it does not and
	// domain.ErrExpenseNotFound when id is unknown.
	ConditionalUpdate(ctx context.Context, id string, expected domain.ExpectedState, m domain.ExpenseMutation) error
}

// SubmissionGuard remembers Idempotency-Keys of expense submissions.
type SubmissionGuard interface {
	// Reserve claims key for scope. It returns the id of the expense a
	// previous submission created, or "" when the caller now owns the key.
	// A key claimed by a submission that has not completed yet yields
	// domain.ErrSubmissionInFlight.
	Reserve(ctx context.Context, scope, key string) (string, error)
	Complete(ctx context.Context, scope, key, expenseID string) error
	Release(ctx context.Context, scope, key string) error
}

// ChangePublisher receives change notifications from the expense store.
type ChangePublisher interface {
	Publish(change domain.ExpenseChange)
}
