package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/spendline/expense-approval/internal/core/domain"
	"github.com/spendline/expense-approval/internal/core/ports"
	"github.com/spendline/expense-approval/internal/pkg/metrics"
)

const (
	// FallbackErrorText is shown when the assistant call fails.
	FallbackErrorText = "Error generating response from AI."
	// FallbackEmptyText is shown when the assistant answers with nothing.
	FallbackEmptyText = "No response from AI."
	// EmptyQueueText is returned by Summarize without calling the assistant.
	EmptyQueueText = "There are no pending expenses to summarize."

	descriptionPrompt = "Based on these keywords for an expense report, generate a concise, professional, one-sentence description: %q"
	summaryPrompt     = "Please provide a brief summary and analysis of the following pending expenses for a manager. " +
		"Highlight the total amount, the largest expense, and any potential patterns or items that might need closer review. " +
		"Keep it concise and professional.\n\nExpenses:\n"
)

// AssistantService produces advisory text. Its output never feeds a workflow
// decision.
type AssistantService struct {
	generator ports.TextGenerator
	cache     ports.SuggestionCache
	expenses  ports.ExpenseRepository
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewAssistantService builds the assistant. generator may be nil when no
// provider is configured; cache may be nil to disable caching.
func NewAssistantService(
	generator ports.TextGenerator,
	cache ports.SuggestionCache,
	expenses ports.ExpenseRepository,
	timeout time.Duration,
	logger zerolog.Logger,
) *AssistantService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &AssistantService{
		generator: generator,
		cache:     cache,
		expenses:  expenses,
		timeout:   timeout,
		logger:    logger,
	}
}

// GenerateDescription turns a few keywords into a one-sentence description.
func (s *AssistantService) GenerateDescription(ctx context.Context, keywords string) ports.Suggestion {
	keywords = strings.TrimSpace(keywords)
	if keywords == "" {
		metrics.AssistantCallsTotal.WithLabelValues("description", "empty").Inc()
		return ports.Suggestion{Text: FallbackEmptyText}
	}
	sug := s.generate(ctx, "description", fmt.Sprintf(descriptionPrompt, keywords))
	if sug.Available {
		sug.Text = strings.TrimSpace(strings.ReplaceAll(sug.Text, `"`, ""))
	}
	return sug
}

// Summarize analyses the pending approval queue of p.
func (s *AssistantService) Summarize(ctx context.Context, p domain.Principal) ports.Suggestion {
	pending, err := Collect(s.expenses.QueryByCurrentApprover(ctx, p.CompanyID, p.UserID))
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", p.UserID).Msg("failed to load approval queue for summary")
		metrics.AssistantCallsTotal.WithLabelValues("summary", "error").Inc()
		return ports.Suggestion{Text: FallbackErrorText}
	}
	if len(pending) == 0 {
		return ports.Suggestion{Text: EmptyQueueText, Available: true}
	}
	return s.generate(ctx, "summary", SummaryPrompt(pending))
}

// SummaryPrompt renders the manager summary prompt for expenses.
func SummaryPrompt(expenses []*domain.Expense) string {
	var b strings.Builder
	b.WriteString(summaryPrompt)
	for _, e := range expenses {
		fmt.Fprintf(&b, "- %s %s for %q by %s\n", e.Amount.StringFixed(2), e.Currency, e.Description, e.EmployeeEmail)
	}
	return b.String()
}

func (s *AssistantService) generate(ctx context.Context, operation, prompt string) ports.Suggestion {
	if s.cache != nil {
		text, ok, err := s.cache.Get(ctx, prompt)
		if err != nil {
			s.logger.Warn().Err(err).Str("operation", operation).Msg("suggestion cache read failed")
		} else if ok {
			metrics.AssistantCallsTotal.WithLabelValues(operation, "cached").Inc()
			return ports.Suggestion{Text: text, Available: true, Cached: true}
		}
	}

	if s.generator == nil {
		metrics.AssistantCallsTotal.WithLabelValues(operation, "error").Inc()
		return ports.Suggestion{Text: FallbackErrorText}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.generator.Generate(callCtx, prompt)
	metrics.AssistantDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Warn().Err(err).Str("operation", operation).Msg("assistant call failed")
		metrics.AssistantCallsTotal.WithLabelValues(operation, "error").Inc()
		return ports.Suggestion{Text: FallbackErrorText}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		metrics.AssistantCallsTotal.WithLabelValues(operation, "empty").Inc()
		return ports.Suggestion{Text: FallbackEmptyText}
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, prompt, text); err != nil {
			s.logger.Warn().Err(err).Str("operation", operation).Msg("suggestion cache write failed")
		}
	}
	metrics.AssistantCallsTotal.WithLabelValues(operation, "ok").Inc()
	return ports.Suggestion{Text: text, Available: true}
}
