package otp

import (
	"errors"
	"net/http"

	"github.com/Abraxas-365/quizcraft/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("OTP")

var (
	CodeInvalidOTP     = ErrRegistry.Register("INVALID_OTP", errx.TypeValidation, http.StatusBadRequest, "Invalid or expired OTP")
	CodeDeliveryFailed = ErrRegistry.Register("DELIVERY_FAILED", errx.TypeExternal, http.StatusBadGateway, "Failed to deliver OTP")
	CodeHashingFailed  = ErrRegistry.Register("HASHING_FAILED", errx.TypeInternal, http.StatusInternalServerError, "OTP hashing failed")
)

func ErrInvalidOTP() *errx.Error     { return ErrRegistry.New(CodeInvalidOTP) }
func ErrDeliveryFailed() *errx.Error { return ErrRegistry.New(CodeDeliveryFailed) }
func ErrHashingFailed() *errx.Error  { return ErrRegistry.New(CodeHashingFailed) }

// Internal causes attached to INVALID_OTP. They are logged, never returned to
// the caller.
var (
	ErrNoOutstandingCode = errors.New("no outstanding code")
	ErrCodeMismatch      = errors.New("code mismatch")
	ErrWindowElapsed     = errors.New("verification window elapsed")
)
