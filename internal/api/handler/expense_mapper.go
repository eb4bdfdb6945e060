package handler

import (
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spendline/expense-approval/internal/core/domain"
)

// --- Request → domain ---

func toDraft(req submitExpenseRequest) (domain.ExpenseDraft, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return domain.ExpenseDraft{}, fmt.Errorf("%w: amount %q", domain.ErrInvalidDraft, req.Amount)
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return domain.ExpenseDraft{}, fmt.Errorf("%w: date %q", domain.ErrInvalidDraft, req.Date)
	}
	return domain.ExpenseDraft{
		Amount:      amount,
		Currency:    strings.ToUpper(strings.TrimSpace(req.Currency)),
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
		Date:        date,
	}, nil
}

// --- domain → Response ---

func toExpenseResponse(e *domain.Expense) expenseResponse {
	history := make([]approvalEntryResponse, len(e.ApprovalHistory))
	for i, h := range e.ApprovalHistory {
		history[i] = approvalEntryResponse{
			ApproverID:    h.ApproverID,
			ApproverEmail: h.ApproverEmail,
			Status:        string(h.Status),
			Timestamp:     h.Timestamp.UTC(),
			Override:      h.Override,
		}
	}

	links := expenseLinks{Self: "/v1/expenses/" + e.ID}
	if e.Status == domain.StatusPending {
		links.Decision = links.Self + "/decision"
	}

	return expenseResponse{
		ID:                e.ID,
		EmployeeID:        e.EmployeeID,
		EmployeeEmail:     e.EmployeeEmail,
		CompanyID:         e.CompanyID,
		ManagerID:         e.ManagerID,
		Amount:            e.Amount.StringFixed(2),
		Currency:          e.Currency,
		Category:          e.Category,
		Description:       e.Description,
		Date:              e.Date.UTC().Format(dateLayout),
		CreatedAt:         e.CreatedAt.UTC(),
		Status:            string(e.Status),
		CurrentApproverID: e.CurrentApproverID,
		ApprovalStep:      e.ApprovalStep,
		ApprovalHistory:   history,
		Revision:          e.Revision,
		Links:             links,
	}
}

// collectResponses drains a query sequence straight into response items.
func collectResponses(seq iter.Seq2[*domain.Expense, error]) ([]expenseResponse, error) {
	out := []expenseResponse{}
	for e, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, toExpenseResponse(e))
	}
	return out, nil
}

func toChangeResponse(c domain.ExpenseChange) changeResponse {
	return changeResponse{
		Operation: string(c.Operation),
		At:        c.At.UTC(),
		Expense:   toExpenseResponse(c.Expense),
	}
}
