package account

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Abraxas-365/quizcraft/pkg/errx"
	"github.com/Abraxas-365/quizcraft/pkg/iam"
	"github.com/Abraxas-365/quizcraft/pkg/iam/auth"
	"github.com/Abraxas-365/quizcraft/pkg/iam/user"
	"github.com/Abraxas-365/quizcraft/pkg/kernel"
)

// RegisterRequest starts a registration. Password is only read for the
// email provider.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required_if=Provider email"`
	Provider string `json:"provider" validate:"required"`
	Image    string `json:"image"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyEmailRequest struct {
	OTP string `json:"otp" validate:"required"`
}

type ResendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ChangePasswordRequest struct {
	Email       string `json:"email" validate:"omitempty,email"`
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// UpdateProfileRequest carries the optional profile fields. Empty values
// are ignored.
type UpdateProfileRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
	Name  string `json:"name"`
	Image string `json:"image"`
	Role  string `json:"role" validate:"omitempty,oneof=user admin"`
}

// Session is returned on every successful authentication.
type Session struct {
	auth.SessionPair
	User user.Profile `json:"user"`
}

// RegisterResult holds exactly one of VerificationToken (email provider) or
// Session (social providers).
type RegisterResult struct {
	VerificationToken string   `json:"verification_token,omitempty"`
	Session           *Session `json:"session,omitempty"`
}

// NeedsVerification reports whether the caller still has to redeem an OTP.
func (r *RegisterResult) NeedsVerification() bool {
	return r.Session == nil
}

// BillingRegistrar creates the payment-side customer for a new identity.
type BillingRegistrar interface {
	CreateCustomer(ctx context.Context, email, name string) (string, error)
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("ACCOUNT")

var (
	CodeEmailAlreadyExists  = ErrRegistry.Register("EMAIL_ALREADY_EXISTS", errx.TypeConflict, http.StatusConflict, "This email already exists!")
	CodeWrongProvider       = ErrRegistry.Register("WRONG_PROVIDER", errx.TypeConflict, http.StatusConflict, "This email is registered with another provider")
	CodeInvalidCredentials  = ErrRegistry.Register("INVALID_CREDENTIALS", errx.TypeAuthorization, http.StatusUnauthorized, "Your credentials are incorrect!")
	CodeAlreadyVerified     = ErrRegistry.Register("ALREADY_VERIFIED", errx.TypeConflict, http.StatusConflict, "Email is already verified")
	CodeInvalidOldPassword  = ErrRegistry.Register("INVALID_OLD_PASSWORD", errx.TypeValidation, http.StatusBadRequest, "Invalid old password")
	CodeSamePassword        = ErrRegistry.Register("SAME_PASSWORD", errx.TypeValidation, http.StatusBadRequest, "New password cannot be the same as the old password")
	CodePasswordRequired    = ErrRegistry.Register("PASSWORD_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "Password is required!")
	CodeNoLocalPassword     = ErrRegistry.Register("NO_LOCAL_PASSWORD", errx.TypeBusiness, http.StatusUnprocessableEntity, "This account signs in through a social provider")
	CodeEmailDeliveryFailed = ErrRegistry.Register("EMAIL_DELIVERY", errx.TypeExternal, http.StatusBadGateway, "Verification email could not be sent, request a new OTP")
)

func ErrEmailAlreadyExists() *errx.Error { return ErrRegistry.New(CodeEmailAlreadyExists) }

// ErrWrongProvider names the provider the identity was verified with.
func ErrWrongProvider(existing iam.Provider) *errx.Error {
	return ErrRegistry.NewWithMessage(CodeWrongProvider,
		fmt.Sprintf("Please try signing in with %s!", existing.DisplayName())).
		WithDetail("provider", existing.String())
}

func ErrInvalidCredentials() *errx.Error { return ErrRegistry.New(CodeInvalidCredentials) }
func ErrAlreadyVerified() *errx.Error    { return ErrRegistry.New(CodeAlreadyVerified) }
func ErrInvalidOldPassword() *errx.Error { return ErrRegistry.New(CodeInvalidOldPassword) }
func ErrSamePassword() *errx.Error       { return ErrRegistry.New(CodeSamePassword) }
func ErrPasswordRequired() *errx.Error   { return ErrRegistry.New(CodePasswordRequired) }
func ErrNoLocalPassword() *errx.Error    { return ErrRegistry.New(CodeNoLocalPassword) }

// ErrEmailDelivery is returned when the identity and OTP were committed but
// the mail did not go out. The verification token is attached so the client
// can still redeem a resent code.
func ErrEmailDelivery(verificationToken string, cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeEmailDeliveryFailed, cause).
		WithDetail("verification_token", verificationToken)
}

// ResolveSubject returns the identity a token-gated request acts on. A body
// email, when sent, must name the caller.
func ResolveSubject(ac *kernel.AuthContext, requested string) (string, error) {
	if !ac.IsValid() {
		return "", iam.ErrUnauthorized()
	}
	subject := iam.NormalizeEmail(ac.Email)
	if requested != "" && iam.NormalizeEmail(requested) != subject {
		return "", iam.ErrAccessDenied().WithDetail("email", requested)
	}
	return subject, nil
}
