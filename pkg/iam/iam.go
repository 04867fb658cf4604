package iam

import (
	"net/http"
	"strings"

	"github.com/Abraxas-365/quizcraft/pkg/errx"
)

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("IAM")

var (
	CodeUnauthorized  = ErrRegistry.Register("UNAUTHORIZED", errx.TypeAuthorization, http.StatusUnauthorized, "Unauthorized")
	CodeInvalidToken  = ErrRegistry.Register("INVALID_TOKEN", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid token")
	CodeTokenExpired  = ErrRegistry.Register("TOKEN_EXPIRED", errx.TypeAuthorization, http.StatusUnauthorized, "Token has expired")
	CodeAccessDenied  = ErrRegistry.Register("ACCESS_DENIED", errx.TypeForbidden, http.StatusForbidden, "Access denied")
	CodeInvalidAPIKey = ErrRegistry.Register("INVALID_API_KEY", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid API key")
)

func ErrUnauthorized() *errx.Error  { return ErrRegistry.New(CodeUnauthorized) }
func ErrInvalidToken() *errx.Error  { return ErrRegistry.New(CodeInvalidToken) }
func ErrTokenExpired() *errx.Error  { return ErrRegistry.New(CodeTokenExpired) }
func ErrAccessDenied() *errx.Error  { return ErrRegistry.New(CodeAccessDenied) }
func ErrInvalidAPIKey() *errx.Error { return ErrRegistry.New(CodeInvalidAPIKey) }

// Provider is the authentication method an identity was created with.
type Provider string

const (
	ProviderEmail    Provider = "email"
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
)

// ParseProvider normalises a provider name. Unknown non-empty names are kept
// as-is so new social providers need no code change.
func ParseProvider(s string) Provider {
	return Provider(strings.ToLower(strings.TrimSpace(s)))
}

// UsesPassword reports whether identities of this provider carry a local password.
func (p Provider) UsesPassword() bool {
	return p == ProviderEmail
}

// DisplayName returns the human-readable provider name
func (p Provider) DisplayName() string {
	switch p {
	case ProviderEmail:
		return "Email"
	case ProviderGoogle:
		return "Google"
	case ProviderFacebook:
		return "Facebook"
	case "":
		return "Unknown"
	default:
		s := string(p)
		return strings.ToUpper(s[:1]) + s[1:]
	}
}

func (p Provider) String() string { return string(p) }

// NormalizeEmail lower-cases and trims an address before it is used as a key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
