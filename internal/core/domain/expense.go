package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseStatus represents the workflow state of an expense.
type ExpenseStatus string

const (
	StatusPending  ExpenseStatus = "Pending"
	StatusApproved ExpenseStatus = "Approved"
	StatusRejected ExpenseStatus = "Rejected"
)

func (s ExpenseStatus) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// IsTerminal reports whether no normal transition leaves s.
func (s ExpenseStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ParseDecision accepts "Approved" or "Rejected" in any case.
func ParseDecision(s string) (ExpenseStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approved":
		return StatusApproved, nil
	case "rejected":
		return StatusRejected, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDecision, s)
}

// ApprovalEntry records a single decision on an expense. Entries are never
// modified once appended.
type ApprovalEntry struct {
	ApproverID    string        `json:"approver_id"`
	ApproverEmail string        `json:"approver_email"`
	Status        ExpenseStatus `json:"status"`
	Timestamp     time.Time     `json:"timestamp"`
	// Override marks an administrative decision that bypassed the approver.
	Override bool `json:"override,omitempty"`
}

// ExpenseDraft carries the employee-provided content of a new expense.
type ExpenseDraft struct {
	Amount      decimal.Decimal
	Currency    string
	Category    string
	Description string
	Date        time.Time
}

// Expense is the aggregate root of the approval workflow.
//
// EmployeeEmail and ManagerID are snapshots taken at submission and are
// never refreshed from the user directory.
type Expense struct {
	ID            string
	EmployeeID    string
	EmployeeEmail string
	CompanyID     string
	ManagerID     string

	Amount      decimal.Decimal
	Currency    string
	Category    string
	Description string
	Date        time.Time
	CreatedAt   time.Time

	Status ExpenseStatus
	// CurrentApproverID is the head of ApproverChain at ApprovalStep while
	// the expense is pending, and nil otherwise.
	CurrentApproverID *string
	ApproverChain     []string
	ApprovalStep      int
	ApprovalHistory   []ApprovalEntry

	// Revision increases by one on every mutation.
	Revision int64
}

// ExpectedState is the precondition of a conditional update.
type ExpectedState struct {
	Status   ExpenseStatus
	Revision int64
}

// ExpenseMutation is the complete set of changes a transition makes.
type ExpenseMutation struct {
	Status            ExpenseStatus
	CurrentApproverID *string
	ApprovalStep      int
	Append            *ApprovalEntry
}

// NewExpense builds a pending expense routed to the first element of chain.
func NewExpense(id string, employee Principal, chain []string, draft ExpenseDraft, now time.Time) (*Expense, error) {
	if len(chain) == 0 || chain[0] == "" {
		return nil, ErrNoManagerAssigned
	}
	first := chain[0]
	return &Expense{
		ID:                id,
		EmployeeID:        employee.UserID,
		EmployeeEmail:     employee.Email,
		CompanyID:         employee.CompanyID,
		ManagerID:         first,
		Amount:            draft.Amount,
		Currency:          draft.Currency,
		Category:          draft.Category,
		Description:       strings.TrimSpace(draft.Description),
		Date:              draft.Date,
		CreatedAt:         now,
		Status:            StatusPending,
		CurrentApproverID: &first,
		ApproverChain:     append([]string(nil), chain...),
		ApprovalStep:      0,
		ApprovalHistory:   []ApprovalEntry{},
	}, nil
}

// Expected returns the state a conditional update must still observe.
func (e *Expense) Expected() ExpectedState {
	return ExpectedState{Status: e.Status, Revision: e.Revision}
}

// IsCurrentApprover reports whether userID may decide e right now.
func (e *Expense) IsCurrentApprover(userID string) bool {
	return e.Status == StatusPending && e.CurrentApproverID != nil && *e.CurrentApproverID == userID
}

// InChain reports whether userID is one of e's approvers, at any step.
func (e *Expense) InChain(userID string) bool {
	if userID == "" {
		return false
	}
	if e.ManagerID == userID {
		return true
	}
	for _, id := range e.ApproverChain {
		if id == userID {
			return true
		}
	}
	return false
}

// Decide computes the mutation for actor approving or rejecting e.
//
// An approval advances to the next approver in the chain when there is one;
// otherwise the expense becomes terminal.
func (e *Expense) Decide(actor Principal, decision ExpenseStatus, now time.Time) (ExpenseMutation, error) {
	if decision != StatusApproved && decision != StatusRejected {
		return ExpenseMutation{}, fmt.Errorf("%w: %q", ErrInvalidDecision, decision)
	}
	if !actor.SameTenant(e.CompanyID) {
		return ExpenseMutation{}, ErrTenantMismatch
	}
	if !e.InChain(actor.UserID) {
		return ExpenseMutation{}, fmt.Errorf("%w: %s is not an approver of this expense", ErrNotAuthorized, actor.UserID)
	}
	if e.Status.IsTerminal() {
		return ExpenseMutation{}, fmt.Errorf("%w: expense is %s", ErrAlreadyDecided, e.Status)
	}
	if !e.IsCurrentApprover(actor.UserID) {
		return ExpenseMutation{}, fmt.Errorf("%w: %s is not the current approver", ErrNotAuthorized, actor.UserID)
	}

	entry := &ApprovalEntry{
		ApproverID:    actor.UserID,
		ApproverEmail: actor.Email,
		Status:        decision,
		Timestamp:     now,
	}

	next := e.ApprovalStep + 1
	if decision == StatusApproved && next < len(e.ApproverChain) {
		approver := e.ApproverChain[next]
		return ExpenseMutation{
			Status:            StatusPending,
			CurrentApproverID: &approver,
			ApprovalStep:      next,
			Append:            entry,
		}, nil
	}

	return ExpenseMutation{
		Status:       decision,
		ApprovalStep: e.ApprovalStep,
		Append:       entry,
	}, nil
}

// Override computes the mutation for an administrative decision. It is
// allowed from any status and records an override entry in the history.
func (e *Expense) Override(admin Principal, status ExpenseStatus, now time.Time) (ExpenseMutation, error) {
	if status != StatusApproved && status != StatusRejected {
		return ExpenseMutation{}, fmt.Errorf("%w: %q", ErrInvalidDecision, status)
	}
	if !admin.Role.CanOverride() {
		return ExpenseMutation{}, fmt.Errorf("%w: override requires %s", ErrNotAuthorized, RoleAdmin)
	}
	if !admin.SameTenant(e.CompanyID) {
		return ExpenseMutation{}, ErrTenantMismatch
	}
	return ExpenseMutation{
		Status:       status,
		ApprovalStep: e.ApprovalStep,
		Append: &ApprovalEntry{
			ApproverID:    admin.UserID,
			ApproverEmail: admin.Email,
			Status:        status,
			Timestamp:     now,
			Override:      true,
		},
	}, nil
}

// Apply performs m on e in memory. Stores use it to keep their in-memory
// representation identical to what the persisted update produces.
func (e *Expense) Apply(m ExpenseMutation) {
	e.Status = m.Status
	e.CurrentApproverID = nil
	if m.CurrentApproverID != nil {
		a := *m.CurrentApproverID
		e.CurrentApproverID = &a
	}
	e.ApprovalStep = m.ApprovalStep
	if m.Append != nil {
		e.ApprovalHistory = append(e.ApprovalHistory, *m.Append)
	}
	e.Revision++
}

// CheckInvariants verifies the status/approver coupling.
func (e *Expense) CheckInvariants() error {
	if !e.Status.Valid() {
		return fmt.Errorf("expense %s: unknown status %q", e.ID, e.Status)
	}
	pending := e.Status == StatusPending
	hasApprover := e.CurrentApproverID != nil
	if pending != hasApprover {
		return fmt.Errorf("expense %s: status %s with approver set=%t", e.ID, e.Status, hasApprover)
	}
	return nil
}

// Clone returns a deep copy of e.
func (e *Expense) Clone() *Expense {
	c := *e
	if e.CurrentApproverID != nil {
		a := *e.CurrentApproverID
		c.CurrentApproverID = &a
	}
	c.ApproverChain = append([]string(nil), e.ApproverChain...)
	c.ApprovalHistory = append([]ApprovalEntry(nil), e.ApprovalHistory...)
	return &c
}
