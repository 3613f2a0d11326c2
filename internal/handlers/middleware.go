package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"creatorflow/internal/models"
	"creatorflow/internal/security"
	"creatorflow/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const OperatorContextKey ContextKey = "operator"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	limiter     security.RateLimiter
	csrf        *security.CSRFGenerator
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, limiter security.RateLimiter, csrf *security.CSRFGenerator) *Middleware {
	return &Middleware{
		authService: authService,
		limiter:     limiter,
		csrf:        csrf,
	}
}

// RequireOperator authenticates the request from a session cookie or a
// bearer token and puts the operator on the request context
func (m *Middleware) RequireOperator(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		operator := m.authenticate(w, r)
		if operator == nil {
			respondErrorKind(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), OperatorContextKey, operator)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin is RequireOperator plus an admin role check
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireOperator(func(w http.ResponseWriter, r *http.Request) {
		operator := OperatorFromContext(r.Context())
		if operator == nil || !operator.IsAdmin() {
			respondErrorKind(w, http.StatusForbidden, "unauthorized", "admin role required")
			return
		}
		next(w, r)
	})
}

// RateLimit rejects requests over the per-caller budget. The identifier is
// the authenticated operator where available, the client address otherwise.
// Rejections carry the window reset time so callers can schedule a retry;
// the server never queues on their behalf.
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identifier := security.GetClientIP(r)
		if operator := OperatorFromContext(r.Context()); operator != nil {
			identifier = "operator:" + operator.Email
		}

		if exceeded, resetAt := m.limiter.Check(identifier); exceeded {
			respondRateLimited(w, resetAt)
			return
		}
		next(w, r)
	}
}

// CSRFProtect validates the X-CSRF-Token header on cookie-authenticated
// mutating requests. Bearer-token callers are exempt; they carry no cookie
// a third-party page could ride on.
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			next(w, r)
			return
		}

		token := r.Header.Get("X-CSRF-Token")
		if token == "" || !m.csrf.ValidateToken(cookie.Value, token) {
			respondErrorKind(w, http.StatusForbidden, "csrf", "missing or invalid CSRF token")
			return
		}
		next(w, r)
	}
}

// CSRFToken issues a token bound to the caller's session
func (m *Middleware) CSRFToken(sessionID string) (string, error) {
	return m.csrf.GenerateToken(sessionID)
}

func (m *Middleware) authenticate(w http.ResponseWriter, r *http.Request) *models.Operator {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		operator, err := m.authService.ValidateSession(cookie.Value)
		if err == nil {
			return operator
		}
		// Clear invalid cookie
		http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
	}

	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		operator, err := m.authService.ValidateAPIToken(strings.TrimPrefix(auth, "Bearer "))
		if err == nil {
			return operator
		}
	}

	return nil
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// OperatorFromContext retrieves the operator from the request context
func OperatorFromContext(ctx context.Context) *models.Operator {
	operator, ok := ctx.Value(OperatorContextKey).(*models.Operator)
	if !ok {
		return nil
	}
	return operator
}
