package handler

import "time"

const dateLayout = "2006-01-02"

// errorResponse documents the error envelope rendered by the API error handler.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Kind  string `json:"kind"`
}

// --- Request / Response types ---

type submitExpenseRequest struct {
	Amount      string `json:"amount"      validate:"required,money"`
	Currency    string `json:"currency"    validate:"required,len=3"`
	Category    string `json:"category"    validate:"required"`
	Description string `json:"description" validate:"required,max=500"`
	Date        string `json:"date"        validate:"required,datetime=2006-01-02"`
}

type decisionRequest struct {
	ID     string `param:"id"     json:"-" validate:"required"`
	Status string `json:"status" validate:"required"`
}

type approvalEntryResponse struct {
	ApproverID    string    `json:"approver_id"`
	ApproverEmail string    `json:"approver_email"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	Override      bool      `json:"override,omitempty"`
}

type expenseLinks struct {
	Self     string `json:"self"`
	Decision string `json:"decision,omitempty"`
}

type expenseResponse struct {
	ID                string                  `json:"id"`
	EmployeeID        string                  `json:"employee_id"`
	EmployeeEmail     string                  `json:"employee_email"`
	CompanyID         string                  `json:"company_id"`
	ManagerID         string                  `json:"manager_id"`
	Amount            string                  `json:"amount"`
	Currency          string                  `json:"currency"`
	Category          string                  `json:"category"`
	Description       string                  `json:"description"`
	Date              string                  `json:"date"`
	CreatedAt         time.Time               `json:"created_at"`
	Status            string                  `json:"status"`
	CurrentApproverID *string                 `json:"current_approver_id"`
	ApprovalStep      int                     `json:"approval_step"`
	ApprovalHistory   []approvalEntryResponse `json:"approval_history"`
	Revision          int64                   `json:"revision"`
	Links             expenseLinks            `json:"_links"`
}

type listExpensesResponse struct {
	View  string            `json:"view"`
	Data  []expenseResponse `json:"data"`
	Count int               `json:"count"`
}

type catalogResponse struct {
	Currencies []string `json:"currencies"`
	Categories []string `json:"categories"`
}

// changeResponse is the payload of a live view "change" event.
type changeResponse struct {
	Operation string          `json:"operation"`
	At        time.Time       `json:"at"`
	Expense   expenseResponse `json:"expense"`
}
