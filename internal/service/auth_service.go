package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"creatorflow/internal/models"
	"creatorflow/internal/repository"
	"creatorflow/internal/security"
	"creatorflow/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
)

// AuthService handles operator authentication
type AuthService struct {
	operators       *repository.OperatorRepository
	sessionDuration time.Duration
	tokenSecret     string
}

// NewAuthService creates a new auth service
func NewAuthService(operators *repository.OperatorRepository, sessionDuration time.Duration, tokenSecret string) *AuthService {
	return &AuthService{
		operators:       operators,
		sessionDuration: sessionDuration,
		tokenSecret:     tokenSecret,
	}
}

// Register creates a new operator account. The first account created
// becomes the admin; later accounts start as managers.
func (s *AuthService) Register(email, password, name string) (*models.Operator, error) {
	// Validate inputs
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	// Check if email already exists
	existing, err := s.operators.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing operator: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	operator, err := s.operators.Create(email, passwordHash, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create operator: %w", err)
	}

	return operator, nil
}

// Login authenticates an operator and creates a session
func (s *AuthService) Login(email, password string) (*models.Session, *models.Operator, error) {
	operator, err := s.operators.GetByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get operator: %w", err)
	}
	if operator == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, operator.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.createSession(operator.ID)
	if err != nil {
		return nil, nil, err
	}

	return session, operator, nil
}

// ValidateSession checks if a session is valid and returns the operator
func (s *AuthService) ValidateSession(sessionID string) (*models.Operator, error) {
	session, err := s.operators.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		// Clean up expired session
		_ = s.operators.DeleteSession(sessionID)
		return nil, ErrSessionExpired
	}

	operator, err := s.operators.GetByID(session.OperatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get operator: %w", err)
	}
	if operator == nil {
		return nil, ErrSessionNotFound
	}

	return operator, nil
}

// Logout invalidates a session
func (s *AuthService) Logout(sessionID string) error {
	if err := s.operators.DeleteSession(sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions from the database
func (s *AuthService) CleanupExpiredSessions() error {
	if err := s.operators.DeleteExpiredSessions(); err != nil {
		return fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return nil
}

// IssueAPIToken signs a bearer token carrying the operator's identity,
// used by automation callers that cannot hold a session cookie
func (s *AuthService) IssueAPIToken(operator *models.Operator) (string, error) {
	return security.IssueAPIToken(s.tokenSecret, operator.ID, operator.Role, s.sessionDuration)
}

// ValidateAPIToken verifies a bearer token and returns the operator
func (s *AuthService) ValidateAPIToken(tokenString string) (*models.Operator, error) {
	claims, err := security.ValidateAPIToken(s.tokenSecret, tokenString)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	operator, err := s.operators.GetByID(claims.OperatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get operator: %w", err)
	}
	if operator == nil {
		return nil, ErrInvalidCredentials
	}

	return operator, nil
}

// OAuthLogin authenticates or creates an operator using an OAuth provider
func (s *AuthService) OAuthLogin(provider, subject, email, name string) (*models.Session, *models.Operator, error) {
	if provider == "" || subject == "" {
		return nil, nil, errors.New("missing oauth provider information")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}

	operator, err := s.operators.GetByOAuth(provider, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lookup oauth operator: %w", err)
	}

	if operator == nil {
		existing, err := s.operators.GetByEmail(email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check existing operator: %w", err)
		}
		if existing != nil {
			if existing.OAuthProvider != "" && existing.OAuthProvider != provider {
				return nil, nil, ErrEmailTaken
			}
			if err := s.operators.LinkOAuthProvider(existing.ID, provider, subject); err != nil {
				return nil, nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
			operator = existing
		} else {
			if name == "" {
				name = strings.Split(email, "@")[0]
			}
			randomPasswordHash, err := security.HashPassword(security.GenerateSessionID())
			if err != nil {
				return nil, nil, fmt.Errorf("failed to generate oauth password hash: %w", err)
			}
			created, err := s.operators.Create(email, randomPasswordHash, name)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create oauth operator: %w", err)
			}
			if err := s.operators.LinkOAuthProvider(created.ID, provider, subject); err != nil {
				return nil, nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
			operator = created
		}
	}

	session, err := s.createSession(operator.ID)
	if err != nil {
		return nil, nil, err
	}

	return session, operator, nil
}

func (s *AuthService) createSession(operatorID int64) (*models.Session, error) {
	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)

	session, err := s.operators.CreateSession(sessionID, operatorID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}
