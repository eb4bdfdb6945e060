package mongo

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/spendline/expense-approval/internal/core/domain"
)

// Document shapes stored in MongoDB. Ids are uuid strings; amounts are
// Decimal128 so sums and comparisons inside the database stay exact.

type companyDoc struct {
	ID              string    `bson:"_id"`
	Name            string    `bson:"name"`
	DefaultCurrency string    `bson:"default_currency"`
	CreatedAt       time.Time `bson:"created_at"`
}

type userDoc struct {
	ID         string    `bson:"_id"`
	ExternalID string    `bson:"external_id,omitempty"`
	Email      string    `bson:"email"`
	Role       string    `bson:"role"`
	CompanyID  string    `bson:"company_id"`
	ManagerID  *string   `bson:"manager_id"`
	CreatedAt  time.Time `bson:"created_at"`
}

type credentialDoc struct {
	Subject      string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

type approvalEntryDoc struct {
	ApproverID    string    `bson:"approver_id"`
	ApproverEmail string    `bson:"approver_email"`
	Status        string    `bson:"status"`
	Timestamp     time.Time `bson:"timestamp"`
	Override      bool      `bson:"override,omitempty"`
}

type expenseDoc struct {
	ID            string `bson:"_id"`
	EmployeeID    string `bson:"employee_id"`
	EmployeeEmail string `bson:"employee_email"`
	CompanyID     string `bson:"company_id"`
	ManagerID     string `bson:"manager_id"`

	Amount      primitive.Decimal128 `bson:"amount"`
	Currency    string               `bson:"currency"`
	Category    string               `bson:"category"`
	Description string               `bson:"description"`
	Date        time.Time            `bson:"date"`
	CreatedAt   time.Time            `bson:"created_at"`

	Status            string             `bson:"status"`
	CurrentApproverID *string            `bson:"current_approver_id"`
	ApproverChain     []string           `bson:"approver_chain"`
	ApprovalStep      int                `bson:"approval_step"`
	ApprovalHistory   []approvalEntryDoc `bson:"approval_history"`
	Revision          int64              `bson:"revision"`
}

func toCompanyDoc(c *domain.Company) companyDoc {
	return companyDoc{
		ID:              c.ID,
		Name:            c.Name,
		DefaultCurrency: c.DefaultCurrency,
		CreatedAt:       c.CreatedAt.UTC(),
	}
}

func (d companyDoc) toDomain() *domain.Company {
	return &domain.Company{
		ID:              d.ID,
		Name:            d.Name,
		DefaultCurrency: d.DefaultCurrency,
		CreatedAt:       d.CreatedAt.UTC(),
	}
}

func toUserDoc(u *domain.User) userDoc {
	return userDoc{
		ID:         u.ID,
		ExternalID: u.ExternalID,
		Email:      domain.NormalizeEmail(u.Email),
		Role:       string(u.Role),
		CompanyID:  u.CompanyID,
		ManagerID:  u.ManagerID,
		CreatedAt:  u.CreatedAt.UTC(),
	}
}

func (d userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:         d.ID,
		ExternalID: d.ExternalID,
		Email:      d.Email,
		Role:       domain.Role(d.Role),
		CompanyID:  d.CompanyID,
		ManagerID:  d.ManagerID,
		CreatedAt:  d.CreatedAt.UTC(),
	}
}

func toCredentialDoc(c *domain.Credential) credentialDoc {
	return credentialDoc{
		Subject:      c.Subject,
		Email:        domain.NormalizeEmail(c.Email),
		PasswordHash: c.PasswordHash,
		CreatedAt:    c.CreatedAt.UTC(),
	}
}

func (d credentialDoc) toDomain() *domain.Credential {
	return &domain.Credential{
		Subject:      d.Subject,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

func toEntryDoc(e domain.ApprovalEntry) approvalEntryDoc {
	return approvalEntryDoc{
		ApproverID:    e.ApproverID,
		ApproverEmail: e.ApproverEmail,
		Status:        string(e.Status),
		Timestamp:     e.Timestamp.UTC(),
		Override:      e.Override,
	}
}

func (d approvalEntryDoc) toDomain() domain.ApprovalEntry {
	return domain.ApprovalEntry{
		ApproverID:    d.ApproverID,
		ApproverEmail: d.ApproverEmail,
		Status:        domain.ExpenseStatus(d.Status),
		Timestamp:     d.Timestamp.UTC(),
		Override:      d.Override,
	}
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("amount %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("amount %s: %w", v, err)
	}
	return d, nil
}

func toExpenseDoc(e *domain.Expense) (expenseDoc, error) {
	amount, err := toDecimal128(e.Amount)
	if err != nil {
		return expenseDoc{}, err
	}
	history := make([]approvalEntryDoc, 0, len(e.ApprovalHistory))
	for _, h := range e.ApprovalHistory {
		history = append(history, toEntryDoc(h))
	}
	chain := e.ApproverChain
	if chain == nil {
		chain = []string{}
	}
	return expenseDoc{
		ID:                e.ID,
		EmployeeID:        e.EmployeeID,
		EmployeeEmail:     e.EmployeeEmail,
		CompanyID:         e.CompanyID,
		ManagerID:         e.ManagerID,
		Amount:            amount,
		Currency:          e.Currency,
		Category:          e.Category,
		Description:       e.Description,
		Date:              e.Date.UTC(),
		CreatedAt:         e.CreatedAt.UTC(),
		Status:            string(e.Status),
		CurrentApproverID: e.CurrentApproverID,
		ApproverChain:     chain,
		ApprovalStep:      e.ApprovalStep,
		ApprovalHistory:   history,
		Revision:          e.Revision,
	}, nil
}

func (d expenseDoc) toDomain() (*domain.Expense, error) {
	amount, err := fromDecimal128(d.Amount)
	if err != nil {
		return nil, fmt.Errorf("expense %s: %w", d.ID, err)
	}
	history := make([]domain.ApprovalEntry, 0, len(d.ApprovalHistory))
	for _, h := range d.ApprovalHistory {
		history = append(history, h.toDomain())
	}
	return &domain.Expense{
		ID:                d.ID,
		EmployeeID:        d.EmployeeID,
		EmployeeEmail:     d.EmployeeEmail,
		CompanyID:         d.CompanyID,
		ManagerID:         d.ManagerID,
		Amount:            amount,
		Currency:          d.Currency,
		Category:          d.Category,
		Description:       d.Description,
		Date:              d.Date.UTC(),
		CreatedAt:         d.CreatedAt.UTC(),
		Status:            domain.ExpenseStatus(d.Status),
		CurrentApproverID: d.CurrentApproverID,
		ApproverChain:     append([]string(nil), d.ApproverChain...),
		ApprovalStep:      d.ApprovalStep,
		ApprovalHistory:   history,
		Revision:          d.Revision,
	}, nil
}
