package auth

import (
	"net/http"
	"time"

	"github.com/Abraxas-365/quizcraft/pkg/errx"
)

// TokenKind distinguishes what a token may be used for. It travels in the
// JWT audience claim.
type TokenKind string

const (
	TokenKindAccess       TokenKind = "access"
	TokenKindRefresh      TokenKind = "refresh"
	TokenKindVerification TokenKind = "verification"
)

// TokenClaims represents the identity claims embedded in a token
type TokenClaims struct {
	// Subject is the identity id. Verification tokens use it to bind the
	// token to the record that was created with it.
	Subject   string    `json:"sub,omitempty"`
	Email     string    `json:"email"`
	Role      string    `json:"role,omitempty"`
	Kind      TokenKind `json:"kind"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// SessionPair is the access + refresh token pair returned after authentication.
type SessionPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("AUTH")

var (
	CodeTokenGenerationFailed = ErrRegistry.Register("TOKEN_GENERATION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Token generation failed")
	CodeHashingFailed         = ErrRegistry.Register("HASHING_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Password hashing failed")
)

func ErrTokenGenerationFailed() *errx.Error {
	return ErrRegistry.New(CodeTokenGenerationFailed)
}

func ErrHashingFailed() *errx.Error {
	return ErrRegistry.New(CodeHashingFailed)
}
