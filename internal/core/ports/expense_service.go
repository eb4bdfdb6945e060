package ports

import (
	"context"
	"iter"

	"github.com/spendline/expense-approval/internal/core/domain"
)

// SubmitExpenseInput is the DTO passed from the transport layer on submit.
type SubmitExpenseInput struct {
	Draft          domain.ExpenseDraft
	IdempotencyKey string
}

// SubmitResult is returned after a submission.
type SubmitResult struct {
	Expense *domain.Expense
	// AlreadyExisted is true when the Idempotency-Key matched an earlier
	// submission; Expense is then the original record.
	AlreadyExisted bool
}

// ExpenseService is the workflow surface exposed to the presentation layer.
type ExpenseService interface {
	SubmitExpense(ctx context.Context, p domain.Principal, in SubmitExpenseInput) (*SubmitResult, error)
	DecideExpense(ctx context.Context, p domain.Principal, expenseID string, decision domain.ExpenseStatus) (*domain.Expense, error)
	OverrideExpense(ctx context.Context, p domain.Principal, expenseID string, status domain.ExpenseStatus) (*domain.Expense, error)
	GetExpense(ctx context.Context, p domain.Principal, expenseID string) (*domain.Expense, error)

	ListMySubmissions(ctx context.Context, p domain.Principal) (iter.Seq2[*domain.Expense, error], error)
	ListMyApprovalQueue(ctx context.Context, p domain.Principal) (iter.Seq2[*domain.Expense, error], error)
	ListTeamExpenses(ctx context.Context, p domain.Principal) (iter.Seq2[*domain.Expense, error], error)
	ListCompanyExpenses(ctx context.Context, p domain.Principal) (iter.Seq2[*domain.Expense, error], error)
	List(ctx context.Context, p domain.Principal, view domain.ExpenseView) (iter.Seq2[*domain.Expense, error], error)
}
