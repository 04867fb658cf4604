package auth

import (
	"context"
	"time"
)

// TokenService mints and verifies signed session tokens.
type TokenService interface {
	Issue(claims TokenClaims, ttl time.Duration) (string, error)
	// Verify fails with iam TOKEN_EXPIRED or INVALID_TOKEN. When kinds are
	// given the token must be one of them.
	Verify(token string, kinds ...TokenKind) (*TokenClaims, error)
	IssueSessionPair(email, role string) (*SessionPair, error)
	IssueVerificationToken(subject, email string) (string, error)
}

// PasswordService hashes and checks local passwords. Every Hash call draws a
// fresh salt.
type PasswordService interface {
	Hash(plain string) (hash string, salt string, err error)
	Verify(plain, hash, salt string) (bool, error)
}

// AuditService records authentication events.
type AuditService interface {
	LogAccountCreated(ctx context.Context, email, provider string)
	LogSignInAttempt(ctx context.Context, email string, success bool, reason string)
	LogOTPVerification(ctx context.Context, email string, success bool, reason string)
	LogTokenRefresh(ctx context.Context, email string)
	LogPasswordChanged(ctx context.Context, email string)
	LogAccountDeleted(ctx context.Context, email string)
}
