package handlers

import (
	"encoding/json"
	"net/http"

	"creatorflow/internal/models"
	"creatorflow/internal/security"
	"creatorflow/internal/service"
)

// AuthHandler handles operator authentication requests
type AuthHandler struct {
	authService          *service.AuthService
	middleware           *Middleware
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, middleware *Middleware, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL string) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		middleware:           middleware,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
	}
}

type operatorView struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func newOperatorView(o *models.Operator) operatorView {
	return operatorView{ID: o.ID, Email: o.Email, Name: o.Name, Role: o.Role}
}

// Register creates a new operator account
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorKind(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	operator, err := h.authService.Register(req.Email, req.Password, req.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, newOperatorView(operator))
}

// Login authenticates an operator and sets a session cookie
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorKind(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	session, operator, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))

	csrfToken, err := h.middleware.CSRFToken(session.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "failed to generate csrf token", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"operator":   newOperatorView(operator),
		"csrf_token": csrfToken,
	})
}

// Logout invalidates the current session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := h.authService.Logout(cookie.Value); err != nil {
			respondServiceError(w, err)
			return
		}
	}

	http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Me returns the authenticated operator
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	operator := OperatorFromContext(r.Context())
	respondJSON(w, http.StatusOK, newOperatorView(operator))
}

// IssueToken signs a bearer token for automation callers
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	operator := OperatorFromContext(r.Context())

	token, err := h.authService.IssueAPIToken(operator)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "failed to issue token", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}
