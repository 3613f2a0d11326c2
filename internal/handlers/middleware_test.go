package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeLimiter struct {
	exceeded    bool
	resetAt     time.Time
	identifiers []string
}

func (f *fakeLimiter) Check(identifier string) (bool, time.Time) {
	f.identifiers = append(f.identifiers, identifier)
	return f.exceeded, f.resetAt
}

func TestRateLimitAllowsUnderLimit(t *testing.T) {
	limiter := &fakeLimiter{}
	m := NewMiddleware(nil, limiter, nil)

	called := false
	handler := m.RateLimit(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/creators/1/invite", nil)
	request.RemoteAddr = "192.0.2.1:4242"
	handler(recorder, request)

	if !called {
		t.Fatal("handler should have been called")
	}
	if len(limiter.identifiers) != 1 || limiter.identifiers[0] != "192.0.2.1:4242" {
		t.Errorf("limiter identifiers = %v, want the client address", limiter.identifiers)
	}
}

func TestRateLimitRejectsOverLimit(t *testing.T) {
	resetAt := time.Now().Add(30 * time.Second)
	limiter := &fakeLimiter{exceeded: true, resetAt: resetAt}
	m := NewMiddleware(nil, limiter, nil)

	handler := m.RateLimit(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run when rate limited")
	})

	recorder := httptest.NewRecorder()
	handler(recorder, httptest.NewRequest("POST", "/api/creators/1/invite", nil))

	if recorder.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", recorder.Code)
	}
	if recorder.Header().Get("Retry-After") == "" {
		t.Error("expected a Retry-After header")
	}

	var body errorResponse
	if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Kind != "rate_limited" {
		t.Errorf("kind = %q, want rate_limited", body.Kind)
	}
	if body.ResetAt == "" {
		t.Error("expected reset_at so the caller can schedule a retry")
	}
}

func TestRequireOperatorRejectsAnonymous(t *testing.T) {
	m := NewMiddleware(nil, &fakeLimiter{}, nil)

	handler := m.RequireOperator(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without authentication")
	})

	recorder := httptest.NewRecorder()
	handler(recorder, httptest.NewRequest("GET", "/api/creators", nil))

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", recorder.Code)
	}
}
