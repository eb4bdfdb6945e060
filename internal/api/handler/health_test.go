package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/spendline/expense-approval/internal/core/domain"
)

func check(name string, critical bool, err error) DependencyCheck {
	return DependencyCheck{Name: name, Critical: critical, Ping: func(context.Context) error { return err }}
}

func TestHealth_Liveness(t *testing.T) {
	c, rec := newContext(newEcho(), http.MethodGet, "/health", "")
	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealth_Readiness(t *testing.T) {
	down := errors.New("connection refused")
	cases := []struct {
		name   string
		checks []DependencyCheck
		code   int
		status string
	}{
		{"all up", []DependencyCheck{check("mongodb", true, nil), check("redis", false, nil)}, http.StatusOK, "ok"},
		{"cache down", []DependencyCheck{check("mongodb", true, nil), check("redis", false, down)}, http.StatusOK, "degraded"},
		{"store down", []DependencyCheck{check("mongodb", true, down), check("redis", false, nil)}, http.StatusServiceUnavailable, "unavailable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newContext(newEcho(), http.MethodGet, "/health/ready", "")
			if err := NewHealthDependenciesHandler(tc.checks...).Readiness(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			var resp readinessResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Status != tc.status || len(resp.Dependencies) != 2 {
				t.Fatalf("unexpected payload: %+v", resp)
			}
		})
	}
}

func TestCatalogHandler(t *testing.T) {
	c, rec := newContext(newEcho(), http.MethodGet, "/v1/catalog", "")
	authed(c, employee)
	if err := NewCatalogHandler(domain.DefaultCatalog()).Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp catalogResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Currencies) != 7 || resp.Categories[2] != "Office Supplies" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}
