package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is the root of every "record does not exist" error.
var ErrNotFound = errors.New("not found")

var (
	ErrExpenseNotFound = fmt.Errorf("expense %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrCompanyNotFound = fmt.Errorf("company %w", ErrNotFound)
)

// Workflow and authorization errors.
var (
	ErrUnknownPrincipal     = errors.New("principal has no tenant membership")
	ErrNotAuthorized        = errors.New("not authorized")
	ErrTenantMismatch       = errors.New("cross-tenant reference")
	ErrNoManagerAssigned    = errors.New("no manager assigned")
	ErrRoutingUnavailable   = errors.New("no approver available")
	ErrAlreadyDecided       = errors.New("expense already decided")
	ErrAssistantUnavailable = errors.New("assistant unavailable")
)

// Input errors.
var (
	ErrInvalidDraft       = errors.New("invalid expense")
	ErrInvalidDecision    = errors.New("invalid decision")
	ErrInvalidView        = errors.New("invalid view")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidManager     = errors.New("invalid manager assignment")
	ErrLastAdmin          = errors.New("company must keep at least one admin")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Store-level errors.
var (
	// ErrConflict is returned by a conditional update whose expected state no
	// longer matches the stored record.
	ErrConflict           = errors.New("conditional update conflict")
	ErrUserExists         = errors.New("user already exists")
	ErrSubmissionInFlight = errors.New("submission with this idempotency key is in progress")
)

// ErrorKind tells a caller what to do with a failure.
type ErrorKind string

const (
	// KindTransient: retry with the same input.
	KindTransient ErrorKind = "transient"
	// KindInvalid: the input or intent was wrong; do not retry unchanged.
	KindInvalid ErrorKind = "invalid"
	// KindForbidden: the principal is not allowed to do this.
	KindForbidden ErrorKind = "forbidden"
	// KindConflict: state moved on; re-read and re-evaluate.
	KindConflict ErrorKind = "conflict"
	KindNotFound ErrorKind = "not_found"
	KindInternal ErrorKind = "internal"
)

// KindOf classifies err into one of the ErrorKind buckets.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnknownPrincipal),
		errors.Is(err, ErrNotAuthorized),
		errors.Is(err, ErrTenantMismatch),
		errors.Is(err, ErrInvalidCredentials):
		return KindForbidden
	case errors.Is(err, ErrAlreadyDecided),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrUserExists):
		return KindConflict
	case errors.Is(err, ErrNoManagerAssigned),
		errors.Is(err, ErrRoutingUnavailable),
		errors.Is(err, ErrInvalidDraft),
		errors.Is(err, ErrInvalidDecision),
		errors.Is(err, ErrInvalidView),
		errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrInvalidManager),
		errors.Is(err, ErrLastAdmin),
		errors.Is(err, ErrInvalidEmail):
		return KindInvalid
	case errors.Is(err, ErrSubmissionInFlight),
		errors.Is(err, ErrAssistantUnavailable):
		return KindTransient
	default:
		return KindInternal
	}
}

// Code returns a stable machine-readable code for err, or "INTERNAL".
func Code(err error) string {
	codes := []struct {
		target error
		code   string
	}{
		{ErrExpenseNotFound, "EXPENSE_NOT_FOUND"},
		{ErrUserNotFound, "USER_NOT_FOUND"},
		{ErrCompanyNotFound, "COMPANY_NOT_FOUND"},
		{ErrUnknownPrincipal, "UNKNOWN_PRINCIPAL"},
		{ErrNotAuthorized, "NOT_AUTHORIZED"},
		{ErrTenantMismatch, "TENANT_MISMATCH"},
		{ErrNoManagerAssigned, "NO_MANAGER_ASSIGNED"},
		{ErrRoutingUnavailable, "ROUTING_UNAVAILABLE"},
		{ErrAlreadyDecided, "ALREADY_DECIDED"},
		{ErrAssistantUnavailable, "ASSISTANT_UNAVAILABLE"},
		{ErrInvalidDraft, "INVALID_EXPENSE"},
		{ErrInvalidDecision, "INVALID_DECISION"},
		{ErrInvalidView, "INVALID_VIEW"},
		{ErrInvalidRole, "INVALID_ROLE"},
		{ErrInvalidManager, "INVALID_MANAGER"},
		{ErrLastAdmin, "LAST_ADMIN"},
		{ErrInvalidEmail, "INVALID_EMAIL"},
		{ErrInvalidCredentials, "INVALID_CREDENTIALS"},
		{ErrConflict, "CONFLICT"},
		{ErrUserExists, "USER_EXISTS"},
		{ErrSubmissionInFlight, "SUBMISSION_IN_FLIGHT"},
	}
	for _, c := range codes {
		if errors.Is(err, c.target) {
			return c.code
		}
	}
	return "INTERNAL"
}
