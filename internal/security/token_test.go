package security

import (
	"testing"
	"time"
)

func TestIssueAndValidateAPIToken(t *testing.T) {
	token, err := IssueAPIToken("test-secret", 42, "admin", time.Hour)
	if err != nil {
		t.Fatalf("IssueAPIToken() error = %v", err)
	}

	claims, err := ValidateAPIToken("test-secret", token)
	if err != nil {
		t.Fatalf("ValidateAPIToken() error = %v", err)
	}
	if claims.OperatorID != 42 {
		t.Errorf("OperatorID = %d, want 42", claims.OperatorID)
	}
	if claims.Role != "admin" {
		t.Errorf("Role = %q, want %q", claims.Role, "admin")
	}
}

func TestValidateAPITokenRejectsWrongSecret(t *testing.T) {
	token, err := IssueAPIToken("secret-a", 1, "manager", time.Hour)
	if err != nil {
		t.Fatalf("IssueAPIToken() error = %v", err)
	}

	if _, err := ValidateAPIToken("secret-b", token); err == nil {
		t.Error("expected validation to fail with wrong secret")
	}
}

func TestValidateAPITokenRejectsExpired(t *testing.T) {
	token, err := IssueAPIToken("test-secret", 1, "manager", -time.Minute)
	if err != nil {
		t.Fatalf("IssueAPIToken() error = %v", err)
	}

	if _, err := ValidateAPIToken("test-secret", token); err == nil {
		t.Error("expected validation to fail for expired token")
	}
}

func TestIssueAPITokenRequiresSecret(t *testing.T) {
	if _, err := IssueAPIToken("", 1, "manager", time.Hour); err == nil {
		t.Error("expected error when secret is empty")
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if !CheckPassword("correct horse battery staple", hash) {
		t.Error("CheckPassword() should accept the original password")
	}
	if CheckPassword("wrong password", hash) {
		t.Error("CheckPassword() should reject a different password")
	}
}
