package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Catalog holds the configured enumerations an expense draft is checked
// against.
type Catalog struct {
	Currencies []string
	Categories []string
}

// DefaultCatalog returns the stock currency and category lists.
func DefaultCatalog() Catalog {
	return Catalog{
		Currencies: []string{"USD", "EUR", "GBP", "JPY", "CAD", "AUD", "INR"},
		Categories: []string{"Travel", "Food", "Office Supplies", "Software", "Other"},
	}
}

// ValidateDraft rejects drafts that must never be persisted.
func (c Catalog) ValidateDraft(d ExpenseDraft) error {
	if !d.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidDraft)
	}
	if !slices.Contains(c.Currencies, d.Currency) {
		return fmt.Errorf("%w: unsupported currency %q", ErrInvalidDraft, d.Currency)
	}
	if !slices.Contains(c.Categories, d.Category) {
		return fmt.Errorf("%w: unsupported category %q", ErrInvalidDraft, d.Category)
	}
	if strings.TrimSpace(d.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidDraft)
	}
	if d.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidDraft)
	}
	return nil
}
