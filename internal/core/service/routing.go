package service

import (
	"fmt"

	"github.com/spendline/expense-approval/internal/core/domain"
)

// AssignApprover returns the approver a new expense from employee is routed
// to: the employee's current manager.
func AssignApprover(employee domain.Principal) (string, error) {
	if employee.ManagerID == nil || *employee.ManagerID == "" {
		return "", fmt.Errorf("assign approver for %s: %w", employee.UserID, domain.ErrRoutingUnavailable)
	}
	return *employee.ManagerID, nil
}

// ApproverChain returns the ordered approvers for a new expense. Routing is
// single-hop, so the chain holds only the assigned approver.
func ApproverChain(employee domain.Principal) ([]string, error) {
	approver, err := AssignApprover(employee)
	if err != nil {
		return nil, err
	}
	return []string{approver}, nil
}
