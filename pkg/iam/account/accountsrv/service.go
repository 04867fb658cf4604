package accountsrv

import (
	"context"
	"errors"

	"github.com/Abraxas-365/quizcraft/pkg/errx"
	"github.com/Abraxas-365/quizcraft/pkg/iam"
	"github.com/Abraxas-365/quizcraft/pkg/iam/account"
	"github.com/Abraxas-365/quizcraft/pkg/iam/auth"
	"github.com/Abraxas-365/quizcraft/pkg/iam/otp"
	"github.com/Abraxas-365/quizcraft/pkg/iam/otp/otpsrv"
	"github.com/Abraxas-365/quizcraft/pkg/iam/user"
	"github.com/Abraxas-365/quizcraft/pkg/kernel"
	"github.com/Abraxas-365/quizcraft/pkg/logx"
	"github.com/Abraxas-365/quizcraft/pkg/ptrx"
)

// Sign-in and verification rejection reasons. They are audited, never returned.
const (
	reasonUnknownEmail   = "unknown_email"
	reasonUnverified     = "unverified"
	reasonWrongProvider  = "wrong_provider"
	reasonWrongPassword  = "wrong_password"
	reasonUnknownAccount = "unknown_account"
	reasonSuperseded     = "superseded_registration"
	reasonNoCode         = "no_outstanding_code"
	reasonCodeMismatch   = "code_mismatch"
	reasonWindowElapsed  = "window_elapsed"
)

// AccountService runs registration, e-mail verification and the
// token-gated account operations.
type AccountService struct {
	repo      user.Repository
	tokens    auth.TokenService
	passwords auth.PasswordService
	otps      *otpsrv.OTPService
	audit     auth.AuditService
	clock     kernel.Clock
	billing   account.BillingRegistrar
}

// NewAccountService wires the service. billing may be nil, in which case no
// payment customer is created on registration.
func NewAccountService(
	repo user.Repository,
	tokens auth.TokenService,
	passwords auth.PasswordService,
	otps *otpsrv.OTPService,
	audit auth.AuditService,
	clock kernel.Clock,
	billing account.BillingRegistrar,
) *AccountService {
	if clock == nil {
		clock = kernel.SystemClock{}
	}
	return &AccountService{
		repo:      repo,
		tokens:    tokens,
		passwords: passwords,
		otps:      otps,
		audit:     audit,
		clock:     clock,
		billing:   billing,
	}
}

// ============================================================================
// Registration / verification
// ============================================================================

// Register creates an identity. Email identities start provisional and get a
// verification token; social identities are verified at once and get a session.
func (s *AccountService) Register(ctx context.Context, req account.RegisterRequest) (*account.RegisterResult, error) {
	email := iam.NormalizeEmail(req.Email)
	provider := iam.ParseProvider(req.Provider)
	if email == "" {
		return nil, errx.Validation("Invalid email format!")
	}
	if provider == "" {
		return nil, errx.Validation("Provider is required!")
	}
	if provider.UsesPassword() && req.Password == "" {
		return nil, account.ErrPasswordRequired()
	}

	existing, err := s.findOptional(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		switch {
		case existing.IsProvisional():
			if err := s.repo.DeleteByEmail(ctx, email); err != nil {
				return nil, err
			}
			logx.WithField("email", email).Debug("Replaced provisional identity")
		case existing.Provider != provider:
			return nil, account.ErrWrongProvider(existing.Provider)
		case provider.UsesPassword():
			return nil, account.ErrEmailAlreadyExists()
		default:
			// Returning social user.
			s.audit.LogSignInAttempt(ctx, email, true, "")
			sess, err := s.newSession(existing)
			if err != nil {
				return nil, err
			}
			return &account.RegisterResult{Session: sess}, nil
		}
	}

	u := user.NewUser(email, req.Name, req.Image, provider, s.clock.Now())
	if provider.UsesPassword() {
		hash, salt, err := s.passwords.Hash(req.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash, u.Salt = hash, salt
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.audit.LogAccountCreated(ctx, u.Email, provider.String())

	s.attachBillingCustomer(ctx, u)

	if !provider.UsesPassword() {
		sess, err := s.newSession(u)
		if err != nil {
			return nil, err
		}
		return &account.RegisterResult{Session: sess}, nil
	}

	token, err := s.tokens.IssueVerificationToken(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	if err := s.otps.Issue(ctx, u.Email, s.storeCode(u.Email)); err != nil {
		if errx.IsCode(err, otp.CodeDeliveryFailed) {
			return nil, account.ErrEmailDelivery(token, err)
		}
		return nil, err
	}
	return &account.RegisterResult{VerificationToken: token}, nil
}

// VerifyEmail redeems an OTP against the identity named by a verification
// token. Wrong, stale and already-used codes are indistinguishable to the caller.
func (s *AccountService) VerifyEmail(ctx context.Context, verificationToken, code string) (*account.Session, error) {
	claims, err := s.tokens.Verify(verificationToken, auth.TokenKindVerification)
	if err != nil {
		return nil, iam.ErrUnauthorized().WithCause(err)
	}

	u, err := s.findOptional(ctx, claims.Email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		s.audit.LogOTPVerification(ctx, claims.Email, false, reasonUnknownAccount)
		return nil, otp.ErrInvalidOTP()
	}
	if u.ID != claims.Subject {
		s.audit.LogOTPVerification(ctx, u.Email, false, reasonSuperseded)
		return nil, otp.ErrInvalidOTP()
	}

	if err := s.otps.Verify(code, u.VerifyCodeHash, u.CreatedAt); err != nil {
		s.audit.LogOTPVerification(ctx, u.Email, false, otpReason(err))
		return nil, err
	}

	verified, err := s.repo.Update(ctx, u.Email, user.Patch{
		EmailVerified:   ptrx.Bool(true),
		ClearVerifyCode: true,
		UpdatedAt:       s.clock.Now(),
	})
	if err != nil {
		return nil, err
	}
	s.audit.LogOTPVerification(ctx, u.Email, true, "")

	return s.newSession(verified)
}

// ResendOTP replaces the outstanding code of a provisional identity. The
// freshness window keeps its original start.
func (s *AccountService) ResendOTP(ctx context.Context, email string) error {
	email = iam.NormalizeEmail(email)
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !u.IsProvisional() {
		return account.ErrAlreadyVerified()
	}
	return s.otps.Issue(ctx, u.Email, s.storeCode(u.Email))
}

// ============================================================================
// Sessions
// ============================================================================

// SignIn authenticates an email identity. Every failure is reported as
// INVALID_CREDENTIALS; the specific cause only reaches the audit log.
func (s *AccountService) SignIn(ctx context.Context, email, password string) (*account.Session, error) {
	email = iam.NormalizeEmail(email)

	u, err := s.findOptional(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, s.rejectSignIn(ctx, email, reasonUnknownEmail)
	}

	if u.IsProvisional() {
		if err := s.repo.DeleteByEmail(ctx, email); err != nil {
			logx.WithField("email", email).WithError(err).Warn("Could not drop provisional identity")
		}
		return nil, s.rejectSignIn(ctx, email, reasonUnverified)
	}

	if !u.Provider.UsesPassword() {
		return nil, s.rejectSignIn(ctx, email, reasonWrongProvider+":"+u.Provider.String())
	}

	ok, err := s.passwords.Verify(password, u.PasswordHash, u.Salt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.rejectSignIn(ctx, email, reasonWrongPassword)
	}

	s.audit.LogSignInAttempt(ctx, email, true, "")
	return s.newSession(u)
}

// RefreshToken issues a new pair from the claims of a valid access or
// refresh token. The store is not consulted.
func (s *AccountService) RefreshToken(ctx context.Context, token string) (*auth.SessionPair, error) {
	if token == "" {
		return nil, iam.ErrUnauthorized()
	}
	claims, err := s.tokens.Verify(token, auth.TokenKindAccess, auth.TokenKindRefresh)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.IssueSessionPair(claims.Email, claims.Role)
	if err != nil {
		return nil, err
	}
	s.audit.LogTokenRefresh(ctx, claims.Email)
	return pair, nil
}

// ChangePassword checks the old password and stores a freshly salted hash
// of the new one.
func (s *AccountService) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	email = iam.NormalizeEmail(email)
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !u.Provider.UsesPassword() {
		return account.ErrNoLocalPassword().WithDetail("provider", u.Provider.String())
	}

	ok, err := s.passwords.Verify(oldPassword, u.PasswordHash, u.Salt)
	if err != nil {
		return err
	}
	if !ok {
		return account.ErrInvalidOldPassword()
	}
	if oldPassword == newPassword {
		return account.ErrSamePassword()
	}

	hash, salt, err := s.passwords.Hash(newPassword)
	if err != nil {
		return err
	}
	if _, err := s.repo.Update(ctx, email, user.Patch{
		PasswordHash: &hash,
		Salt:         &salt,
		UpdatedAt:    s.clock.Now(),
	}); err != nil {
		return err
	}
	s.audit.LogPasswordChanged(ctx, email)
	return nil
}

// ============================================================================
// Profile
// ============================================================================

func (s *AccountService) GetProfile(ctx context.Context, email string) (*user.Profile, error) {
	u, err := s.repo.FindByEmail(ctx, iam.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	p := u.ToProfile()
	return &p, nil
}

// UpdateProfile applies the non-empty fields of req to the caller's own
// identity. Only admins may change a role.
func (s *AccountService) UpdateProfile(ctx context.Context, actor *kernel.AuthContext, req account.UpdateProfileRequest) (*user.Profile, error) {
	email, err := account.ResolveSubject(actor, req.Email)
	if err != nil {
		return nil, err
	}

	patch := user.Patch{
		Name:      ptrx.NonEmpty(req.Name),
		Image:     ptrx.NonEmpty(req.Image),
		UpdatedAt: s.clock.Now(),
	}
	if req.Role != "" {
		if !actor.IsAdmin() {
			return nil, iam.ErrAccessDenied().WithDetail("field", "role")
		}
		patch.Role = ptrx.String(req.Role)
	}

	u, err := s.repo.Update(ctx, email, patch)
	if err != nil {
		return nil, err
	}
	p := u.ToProfile()
	return &p, nil
}

func (s *AccountService) DeleteAccount(ctx context.Context, email string) error {
	email = iam.NormalizeEmail(email)
	if _, err := s.repo.FindByEmail(ctx, email); err != nil {
		return err
	}
	if err := s.repo.DeleteByEmail(ctx, email); err != nil {
		return err
	}
	s.audit.LogAccountDeleted(ctx, email)
	return nil
}

// ============================================================================
// Helpers
// ============================================================================

// findOptional maps USER_NOT_FOUND to a nil identity.
func (s *AccountService) findOptional(ctx context.Context, email string) (*user.User, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errx.IsCode(err, user.CodeUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func (s *AccountService) storeCode(email string) otpsrv.PersistFunc {
	return func(ctx context.Context, hash string) error {
		_, err := s.repo.Update(ctx, email, user.Patch{
			VerifyCodeHash: &hash,
			UpdatedAt:      s.clock.Now(),
		})
		return err
	}
}

// attachBillingCustomer is best effort. A failure leaves the identity
// without a billing id; billing resolves one lazily later.
func (s *AccountService) attachBillingCustomer(ctx context.Context, u *user.User) {
	if s.billing == nil {
		return
	}
	customerID, err := s.billing.CreateCustomer(ctx, u.Email, u.Name)
	if err != nil {
		logx.WithField("email", u.Email).WithError(err).Warn("Billing customer creation failed")
		return
	}
	if _, err := s.repo.Update(ctx, u.Email, user.Patch{
		ExternalBillingID: &customerID,
		UpdatedAt:         s.clock.Now(),
	}); err != nil {
		logx.WithField("email", u.Email).WithError(err).Warn("Could not store billing customer id")
		return
	}
	u.ExternalBillingID = customerID
}

func (s *AccountService) newSession(u *user.User) (*account.Session, error) {
	pair, err := s.tokens.IssueSessionPair(u.Email, u.Role)
	if err != nil {
		return nil, err
	}
	return &account.Session{SessionPair: *pair, User: u.ToProfile()}, nil
}

func (s *AccountService) rejectSignIn(ctx context.Context, email, reason string) error {
	s.audit.LogSignInAttempt(ctx, email, false, reason)
	return account.ErrInvalidCredentials()
}

func otpReason(err error) string {
	switch {
	case errors.Is(err, otp.ErrNoOutstandingCode):
		return reasonNoCode
	case errors.Is(err, otp.ErrCodeMismatch):
		return reasonCodeMismatch
	case errors.Is(err, otp.ErrWindowElapsed):
		return reasonWindowElapsed
	default:
		return err.Error()
	}
}
