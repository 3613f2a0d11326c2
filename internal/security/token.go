package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// APITokenClaims carries the operator identity inside an API bearer token.
type APITokenClaims struct {
	jwt.RegisteredClaims
	OperatorID int64  `json:"oid"`
	Role       string `json:"role"`
}

// IssueAPIToken signs an HS256 bearer token for the operator, valid for ttl.
func IssueAPIToken(secret string, operatorID int64, role string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("token secret not configured")
	}

	now := time.Now()
	claims := APITokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", operatorID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		OperatorID: operatorID,
		Role:       role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateAPIToken parses and verifies a bearer token issued by IssueAPIToken.
func ValidateAPIToken(secret, tokenString string) (*APITokenClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	claims := &APITokenClaims{}

	parsedToken, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !parsedToken.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.OperatorID == 0 {
		return nil, errors.New("token missing operator id")
	}

	return claims, nil
}
