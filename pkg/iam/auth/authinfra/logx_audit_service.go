package authinfra

import (
	"context"

	"github.com/Abraxas-365/quizcraft/pkg/iam/auth"
	"github.com/Abraxas-365/quizcraft/pkg/logx"
)

// LogxAuditService implements auth.AuditService using structured logx logging.
type LogxAuditService struct {
	logger *logx.Logger
}

func NewLogxAuditService(logger *logx.Logger) *LogxAuditService {
	if logger == nil {
		logger = logx.GetDefaultLogger()
	}
	return &LogxAuditService{logger: logger}
}

var _ auth.AuditService = (*LogxAuditService)(nil)

func (s *LogxAuditService) event(name, email string) *logx.Entry {
	return s.logger.WithFields(logx.Fields{
		"audit_event": name,
		"email":       email,
	})
}

func (s *LogxAuditService) LogAccountCreated(_ context.Context, email, provider string) {
	s.event("account_created", email).WithField("provider", provider).Info("Audit: account created")
}

func (s *LogxAuditService) LogSignInAttempt(_ context.Context, email string, success bool, reason string) {
	e := s.event("sign_in_attempt", email).WithField("success", success)
	if success {
		e.Info("Audit: sign in")
		return
	}
	e.WithField("reason", reason).Warn("Audit: sign in rejected")
}

func (s *LogxAuditService) LogOTPVerification(_ context.Context, email string, success bool, reason string) {
	e := s.event("otp_verification", email).WithField("success", success)
	if !success {
		e.WithField("reason", reason)
	}
	e.Info("Audit: OTP verification")
}

func (s *LogxAuditService) LogTokenRefresh(_ context.Context, email string) {
	s.event("token_refresh", email).Info("Audit: token refresh")
}

func (s *LogxAuditService) LogPasswordChanged(_ context.Context, email string) {
	s.event("password_changed", email).Info("Audit: password changed")
}

func (s *LogxAuditService) LogAccountDeleted(_ context.Context, email string) {
	s.event("account_deleted", email).Info("Audit: account deleted")
}
