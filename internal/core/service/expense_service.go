package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/spendline/expense-approval/internal/core/domain"
	"github.com/spendline/expense-approval/internal/core/ports"
	"github.com/spendline/expense-approval/internal/pkg/metrics"
)

type ExpenseService struct {
	repo    ports.ExpenseRepository
	users   ports.UserRepository
	guard   ports.SubmissionGuard
	catalog domain.Catalog
	logger  zerolog.Logger

	now   func() time.Time
	newID func() string
}

// NewExpenseService wires the approval workflow. guard may be nil, in which
// case Idempotency-Keys are ignored.
func NewExpenseService(
	repo ports.ExpenseRepository,
	users ports.UserRepository,
	guard ports.SubmissionGuard,
	catalog domain.Catalog,
	logger zerolog.Logger,
) *ExpenseService {
	return &ExpenseService{
		repo:    repo,
		users:   users,
		guard:   guard,
		catalog: catalog,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// SubmitExpense validates and routes a new expense. Every precondition is
// checked before anything is written.
func (s *ExpenseService) SubmitExpense(ctx context.Context, p domain.Principal, in ports.SubmitExpenseInput) (*ports.SubmitResult, error) {
	chain, err := ApproverChain(p)
	if err != nil {
		metrics.RejectedActionsTotal.WithLabelValues(domain.Code(domain.ErrNoManagerAssigned)).Inc()
		s.logger.Debug().Err(err).Str("employee_id", p.UserID).Msg("submission without approver")
		return nil, fmt.Errorf("submit expense: %w", domain.ErrNoManagerAssigned)
	}

	manager, err := s.users.FindByID(ctx, chain[0])
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("submit expense: manager %s: %w", chain[0], domain.ErrNoManagerAssigned)
		}
		return nil, fmt.Errorf("submit expense: load manager: %w", err)
	}
	if manager.CompanyID != p.CompanyID {
		metrics.RejectedActionsTotal.WithLabelValues(domain.Code(domain.ErrTenantMismatch)).Inc()
		return nil, fmt.Errorf("submit expense: manager %s: %w", manager.ID, domain.ErrTenantMismatch)
	}

	if err := s.catalog.ValidateDraft(in.Draft); err != nil {
		return nil, fmt.Errorf("submit expense: %w", err)
	}

	key := in.IdempotencyKey
	if s.guard == nil {
		key = ""
	}
	if key != "" {
		existingID, err := s.guard.Reserve(ctx, p.UserID, key)
		switch {
		case errors.Is(err, domain.ErrSubmissionInFlight):
			return nil, fmt.Errorf("submit expense: %w", err)
		case err != nil:
			// Redis unreachable: submit without replay protection.
			s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency guard unavailable")
			key = ""
		}
		if existingID != "" {
			existing, err := s.repo.GetByID(ctx, existingID)
			if err != nil {
				return nil, fmt.Errorf("submit expense: idempotent replay: %w", err)
			}
			s.logger.Info().Str("idempotency_key", key).Str("expense_id", existingID).Msg("idempotent replay")
			return &ports.SubmitResult{Expense: existing, AlreadyExisted: true}, nil
		}
	}

	expense, err := domain.NewExpense(s.newID(), p, chain, in.Draft, s.now())
	if err != nil {
		s.release(ctx, p, key)
		return nil, fmt.Errorf("submit expense: %w", err)
	}

	if err := s.repo.Create(ctx, expense); err != nil {
		s.release(ctx, p, key)
		s.logger.Error().Err(err).Str("employee_id", p.UserID).Msg("failed to create expense")
		return nil, fmt.Errorf("submit expense: %w", err)
	}

	if key != "" {
		if err := s.guard.Complete(ctx, p.UserID, key, expense.ID); err != nil {
			s.logger.Warn().Err(err).Str("expense_id", expense.ID).Msg("failed to record idempotency key")
		}
	}

	metrics.ExpensesSubmittedTotal.WithLabelValues(expense.Category).Inc()
	s.logger.Info().
		Str("expense_id", expense.ID).
		Str("employee_id", p.UserID).
		Str("approver_id", *expense.CurrentApproverID).
		Msg("expense submitted")

	return &ports.SubmitResult{Expense: expense}, nil
}

func (s *ExpenseService) release(ctx context.Context, p domain.Principal, key string) {
	if key == "" || s.guard == nil {
		return
	}
	if err := s.guard.Release(ctx, p.UserID, key); err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("failed to release idempotency key")
	}
}

// DecideExpense applies the current approver's decision.
func (s *ExpenseService) DecideExpense(ctx context.Context, p domain.Principal, expenseID string, decision domain.ExpenseStatus) (*domain.Expense, error) {
	return s.transition(ctx, "decide", expenseID, func(e *domain.Expense) (domain.ExpenseMutation, error) {
		return e.Decide(p, decision, s.now())
	}, p)
}

// OverrideExpense applies an Admin decision regardless of current status.
func (s *ExpenseService) OverrideExpense(ctx context.Context, p domain.Principal, expenseID string, status domain.ExpenseStatus) (*domain.Expense, error) {
	return s.transition(ctx, "override", expenseID, func(e *domain.Expense) (domain.ExpenseMutation, error) {
		return e.Override(p, status, s.now())
	}, p)
}

// transition reads the expense, computes the mutation and writes it only if
// the expense is unchanged since the read. A lost race is reported as
// domain.ErrAlreadyDecided; it is never retried here because the caller's
// intent was formed against stale state.
func (s *ExpenseService) transition(
	ctx context.Context,
	action, expenseID string,
	decide func(*domain.Expense) (domain.ExpenseMutation, error),
	p domain.Principal,
) (*domain.Expense, error) {
	expense, err := s.repo.GetByID(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("%s expense: %w", action, err)
	}

	mutation, err := decide(expense)
	if err != nil {
		metrics.RejectedActionsTotal.WithLabelValues(domain.Code(err)).Inc()
		return nil, fmt.Errorf("%s expense %s: %w", action, expenseID, err)
	}

	if err := s.repo.ConditionalUpdate(ctx, expenseID, expense.Expected(), mutation); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			metrics.ConflictsTotal.WithLabelValues(action).Inc()
			s.logger.Info().Str("expense_id", expenseID).Str("actor_id", p.UserID).Str("action", action).Msg("lost concurrent update")
			return nil, fmt.Errorf("%s expense %s: %w", action, expenseID, domain.ErrAlreadyDecided)
		}
		return nil, fmt.Errorf("%s expense %s: %w", action, expenseID, err)
	}

	expense.Apply(mutation)
	metrics.TransitionsTotal.WithLabelValues(action, string(expense.Status)).Inc()
	s.logger.Info().
		Str("expense_id", expenseID).
		Str("actor_id", p.UserID).
		Str("action", action).
		Str("status", string(expense.Status)).
		Msg("expense transitioned")

	return expense, nil
}

// GetExpense returns a single expense visible to p: its submitter, its
// manager, its current approver, or an Admin of the tenant.
func (s *ExpenseService) GetExpense(ctx context.Context, p domain.Principal, expenseID string) (*domain.Expense, error) {
	expense, err := s.repo.GetByID(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	if !p.SameTenant(expense.CompanyID) {
		return nil, fmt.Errorf("get expense %s: %w", expenseID, domain.ErrTenantMismatch)
	}
	for _, v := range []domain.ExpenseView{domain.ViewMine, domain.ViewTeam, domain.ViewQueue, domain.ViewCompany} {
		if v.Matches(p, expense) {
			return expense, nil
		}
	}
	return nil, fmt.Errorf("get expense %s: %w", expenseID, domain.ErrNotAuthorized)
}

func (s *ExpenseService) ListMySubmissions(ctx context.Context, p domain.Principal) (iter.Seq2[*domain.Expense, error], error) {
	return s.repo.QueryByEmployee(ctx, p.CompanyID, p.UserID), nil
}

func (s *ExpenseService) ListMyApprovalQueue(ctx context.Context, p domain.Principal) (iter.Seq2[*domain.Expense, error], error) {
	return s.repo.QueryByCurrentApprover(ctx, p.CompanyID, p.UserID), nil
}

func (s *ExpenseService) ListTeamExpenses(ctx context.Context, p domain.Principal) (iter.Seq2[*domain.Expense, error], error) {
	return s.repo.QueryByManager(ctx, p.CompanyID, p.UserID), nil
}

// ListCompanyExpenses is restricted to Admins.
func (s *ExpenseService) ListCompanyExpenses(ctx context.Context, p domain.Principal) (iter.Seq2[*domain.Expense, error], error) {
	if err := domain.ViewCompany.Authorize(p); err != nil {
		return nil, fmt.Errorf("list company expenses: %w", err)
	}
	return s.repo.QueryByCompany(ctx, p.CompanyID), nil
}

// List dispatches to the query for view.
func (s *ExpenseService) List(ctx context.Context, p domain.Principal, view domain.ExpenseView) (iter.Seq2[*domain.Expense, error], error) {
	switch view {
	case domain.ViewMine:
		return s.ListMySubmissions(ctx, p)
	case domain.ViewQueue:
		return s.ListMyApprovalQueue(ctx, p)
	case domain.ViewTeam:
		return s.ListTeamExpenses(ctx, p)
	case domain.ViewCompany:
		return s.ListCompanyExpenses(ctx, p)
	}
	return nil, fmt.Errorf("list expenses: %w: %q", domain.ErrInvalidView, view)
}

// Collect drains seq into a slice.
func Collect(seq iter.Seq2[*domain.Expense, error]) ([]*domain.Expense, error) {
	out := []*domain.Expense{}
	for e, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
