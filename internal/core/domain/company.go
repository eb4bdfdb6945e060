package domain

import (
	"strings"
	"time"
)

// Company is the tenant root. Users and expenses belong to it through
// their CompanyID.
type Company struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	DefaultCurrency string    `json:"default_currency"`
	CreatedAt       time.Time `json:"created_at"`
}

// DefaultCompanyName derives the name given to a company created at admin
// sign-up: "alice@example.com" becomes "alice's Company".
func DefaultCompanyName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		local = email
	}
	return local + "'s Company"
}
