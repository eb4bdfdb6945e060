package ports

import (
	"context"

	"github.com/spendline/expense-approval/internal/core/domain"
)

// Suggestion is advisory assistant output. Available is false when the
// assistant could not produce anything useful; Text then holds a fallback
// message and the caller proceeds with manually entered data.
type Suggestion struct {
	Text      string
	Available bool
	Cached    bool
}

// AssistantService never returns an error: failures degrade to an
// unavailable Suggestion.
type AssistantService interface {
	GenerateDescription(ctx context.Context, keywords string) Suggestion
	Summarize(ctx context.Context, p domain.Principal) Suggestion
}

// TextGenerator is the external text-generation call.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// SuggestionCache stores successful generations keyed by prompt.
type SuggestionCache interface {
	Get(ctx context.Context, prompt string) (string, bool, error)
	Put(ctx context.Context, prompt, text string) error
}
