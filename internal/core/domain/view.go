package domain

import (
	"fmt"
	"time"
)

// ExpenseView names one of the per-role read projections.
type ExpenseView string

const (
	ViewMine    ExpenseView = "mine"
	ViewQueue   ExpenseView = "queue"
	ViewTeam    ExpenseView = "team"
	ViewCompany ExpenseView = "company"
)

// ParseView validates a view name.
func ParseView(s string) (ExpenseView, error) {
	switch v := ExpenseView(s); v {
	case ViewMine, ViewQueue, ViewTeam, ViewCompany:
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidView, s)
}

// Authorize checks that p may open view v.
func (v ExpenseView) Authorize(p Principal) error {
	if v == ViewCompany && !p.Role.CanViewCompany() {
		return fmt.Errorf("%w: company view requires %s", ErrNotAuthorized, RoleAdmin)
	}
	return nil
}

// Matches reports whether e belongs to view v for principal p.
func (v ExpenseView) Matches(p Principal, e *Expense) bool {
	if e == nil || !p.SameTenant(e.CompanyID) {
		return false
	}
	switch v {
	case ViewMine:
		return e.EmployeeID == p.UserID
	case ViewQueue:
		return e.IsCurrentApprover(p.UserID)
	case ViewTeam:
		return e.ManagerID == p.UserID
	case ViewCompany:
		return p.Role.CanViewCompany()
	}
	return false
}

// Concerns reports whether a change to e must reach a p subscribed to v.
// It is wider than Matches for the queue view: an approver also hears about
// the expense once it has left their queue, so the entry can be removed.
func (v ExpenseView) Concerns(p Principal, e *Expense) bool {
	if v.Matches(p, e) {
		return true
	}
	return v == ViewQueue && e != nil && p.SameTenant(e.CompanyID) && e.InChain(p.UserID)
}

// ChangeOperation is the kind of store write a change notification reports.
type ChangeOperation string

const (
	ChangeInsert  ChangeOperation = "insert"
	ChangeUpdate  ChangeOperation = "update"
	ChangeReplace ChangeOperation = "replace"
)

// ExpenseChange is a change notification emitted by the expense store.
type ExpenseChange struct {
	Operation ChangeOperation
	Expense   *Expense
	At        time.Time
}
