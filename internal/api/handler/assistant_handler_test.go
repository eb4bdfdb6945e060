package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/spendline/expense-approval/internal/core/ports"
)

func TestAssistantHandler_Description(t *testing.T) {
	stub := &stubAssistantService{description: ports.Suggestion{Text: "Taxi from airport to client office", Available: true}}

	c, rec := newContext(newEcho(), http.MethodPost, "/v1/assistant/description", `{"keywords":"taxi airport client"}`)
	authed(c, employee)

	if err := NewAssistantHandler(stub).Description(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.keywords != "taxi airport client" {
		t.Fatalf("keywords not forwarded: %q", stub.keywords)
	}

	var resp suggestionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Available || resp.Text != "Taxi from airport to client office" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAssistantHandler_UnavailableIsStillOK(t *testing.T) {
	stub := &stubAssistantService{summary: ports.Suggestion{Text: "Error generating response from AI."}}

	c, rec := newContext(newEcho(), http.MethodPost, "/v1/assistant/summary", "")
	authed(c, manager)

	if err := NewAssistantHandler(stub).Summary(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.principal.UserID != "mgr" {
		t.Fatalf("summary not scoped to caller: %+v", stub.principal)
	}

	var resp suggestionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Available {
		t.Fatalf("expected unavailable suggestion")
	}
}

func TestAssistantHandler_Description_RequiresKeywords(t *testing.T) {
	c, _ := newContext(newEcho(), http.MethodPost, "/v1/assistant/description", `{"keywords":""}`)
	authed(c, employee)

	err := NewAssistantHandler(&stubAssistantService{}).Description(c)
	if got := httpStatus(t, err); got != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", got)
	}
}
