package otpsrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/quizcraft/pkg/iam/otp"
	"github.com/Abraxas-365/quizcraft/pkg/kernel"
	"github.com/Abraxas-365/quizcraft/pkg/logx"
)

// PersistFunc stores the hash of a freshly generated code.
type PersistFunc func(ctx context.Context, hash string) error

type OTPService struct {
	generator           *otp.Generator
	codec               otp.Codec
	notificationService otp.NotificationService
	clock               kernel.Clock
	window              time.Duration
}

func NewOTPService(
	generator *otp.Generator,
	codec otp.Codec,
	notificationService otp.NotificationService,
	clock kernel.Clock,
	window time.Duration,
) *OTPService {
	if window <= 0 {
		window = 2 * time.Minute
	}
	return &OTPService{
		generator:           generator,
		codec:               codec,
		notificationService: notificationService,
		clock:               clock,
		window:              window,
	}
}

// Issue generates a code, stores its hash through persist and mails the
// plain code. A delivery failure is returned after the hash is committed so
// a resend can recover.
func (s *OTPService) Issue(ctx context.Context, contact string, persist PersistFunc) error {
	code := s.generator.Generate()

	hash, err := s.codec.Hash(code)
	if err != nil {
		return err
	}

	if err := persist(ctx, hash); err != nil {
		return err
	}

	if err := s.notificationService.SendOTP(ctx, contact, code); err != nil {
		logx.WithFields(logx.Fields{"contact": contact}).WithError(err).Warn("OTP delivery failed")
		return otp.ErrDeliveryFailed().WithCause(err)
	}
	return nil
}

// Verify checks code against the stored hash and the freshness window that
// started at createdAt. Both must hold. Every rejection is INVALID_OTP with
// the specific reason attached as its cause.
func (s *OTPService) Verify(code string, hash *string, createdAt time.Time) error {
	if hash == nil || *hash == "" {
		return otp.ErrInvalidOTP().WithCause(otp.ErrNoOutstandingCode)
	}

	ok, err := s.codec.Verify(code, *hash)
	if err != nil {
		return err
	}
	if !ok {
		return otp.ErrInvalidOTP().WithCause(otp.ErrCodeMismatch)
	}

	if !otp.IsFresh(createdAt, s.clock.Now(), s.window) {
		return otp.ErrInvalidOTP().WithCause(otp.ErrWindowElapsed)
	}
	return nil
}
