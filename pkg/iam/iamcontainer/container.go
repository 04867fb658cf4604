package iamcontainer

import (
	"github.com/Abraxas-365/quizcraft/pkg/config"
	"github.com/Abraxas-365/quizcraft/pkg/iam/account"
	"github.com/Abraxas-365/quizcraft/pkg/iam/account/accountapi"
	"github.com/Abraxas-365/quizcraft/pkg/iam/account/accountsrv"
	"github.com/Abraxas-365/quizcraft/pkg/iam/apikey"
	"github.com/Abraxas-365/quizcraft/pkg/iam/auth"
	"github.com/Abraxas-365/quizcraft/pkg/iam/auth/authinfra"
	"github.com/Abraxas-365/quizcraft/pkg/iam/otp"
	"github.com/Abraxas-365/quizcraft/pkg/iam/otp/otpinfra"
	"github.com/Abraxas-365/quizcraft/pkg/iam/otp/otpsrv"
	"github.com/Abraxas-365/quizcraft/pkg/iam/user"
	"github.com/Abraxas-365/quizcraft/pkg/jobx"
	"github.com/Abraxas-365/quizcraft/pkg/kernel"
	"github.com/Abraxas-365/quizcraft/pkg/logx"
	"github.com/Abraxas-365/quizcraft/pkg/notifx"
	"github.com/gofiber/fiber/v2"
)

// ---------------------------------------------------------------------------
// Deps: explicit external dependencies this bounded context requires.
// ---------------------------------------------------------------------------

type Deps struct {
	Cfg   *config.Config
	Users user.Repository
	Mail  *notifx.Client

	// Jobs is set when OTP mail goes through the queue. Nil sends inline.
	Jobs *jobx.Client

	// Billing registers a provider customer for every new identity. Optional.
	Billing account.BillingRegistrar

	// Clock defaults to the system clock.
	Clock kernel.Clock
}

// ---------------------------------------------------------------------------
// Container: the public surface of the IAM module.
// Only expose what other modules or cmd/ actually need.
// ---------------------------------------------------------------------------

type Container struct {
	// Services
	AccountService *accountsrv.AccountService
	OTPService     *otpsrv.OTPService
	TokenService   auth.TokenService

	// API handlers
	AccountHandlers *accountapi.AccountHandlers

	// Middleware
	AuthMiddleware   *auth.TokenMiddleware
	APIKeyMiddleware fiber.Handler
}

// ---------------------------------------------------------------------------
// New: constructs the entire IAM dependency graph.
// Order matters: infra → services → handlers → middleware.
// ---------------------------------------------------------------------------

func New(deps Deps) (*Container, error) {
	logx.Info("🔧 Initializing IAM container...")

	c := &Container{}
	clock := deps.Clock
	if clock == nil {
		clock = kernel.SystemClock{}
	}

	// ── Infrastructure services ──────────────────────────────────────────

	c.TokenService = auth.NewJWTService(auth.JWTConfig{
		Secret:          deps.Cfg.Auth.Secret,
		Issuer:          deps.Cfg.Auth.Issuer,
		AccessTTL:       deps.Cfg.Auth.AccessTTL,
		RefreshTTL:      deps.Cfg.Auth.RefreshTTL,
		VerificationTTL: deps.Cfg.Auth.VerificationTTL,
	}, clock)

	passwordSvc := authinfra.NewArgon2PasswordService(
		deps.Cfg.Password.Argon2Time,
		deps.Cfg.Password.Argon2Memory,
		deps.Cfg.Password.Argon2Threads,
	)

	auditService := authinfra.NewLogxAuditService(logx.GetDefaultLogger())

	// ── OTP delivery ─────────────────────────────────────────────────────

	emailNotifier, err := otpinfra.NewEmailNotifier(deps.Mail, deps.Cfg.OTP.Window)
	if err != nil {
		return nil, err
	}

	var notifier otp.NotificationService = emailNotifier
	if deps.Jobs != nil {
		queue := "mail"
		if len(deps.Cfg.Jobx.Queues) > 0 {
			queue = deps.Cfg.Jobx.Queues[0]
		}
		notifier = otpinfra.NewQueuedNotifier(deps.Jobs, queue, deps.Cfg.OTP.Window, emailNotifier)
		logx.Infof("  ✅ OTP mail queued on %q", queue)
	} else {
		logx.Info("  ✅ OTP mail sent inline")
	}

	// ── Domain services ──────────────────────────────────────────────────

	c.OTPService = otpsrv.NewOTPService(
		otp.NewGenerator(deps.Cfg.OTP.Length, otp.DefaultRandSource()),
		otp.NewBcryptCodec(deps.Cfg.OTP.BcryptCost),
		notifier,
		clock,
		deps.Cfg.OTP.Window,
	)

	if deps.Billing == nil {
		logx.Warn("  ⚠️  No billing registrar, new accounts get no customer id")
	}

	c.AccountService = accountsrv.NewAccountService(
		deps.Users,
		c.TokenService,
		passwordSvc,
		c.OTPService,
		auditService,
		clock,
		deps.Billing,
	)

	// ── Middleware ────────────────────────────────────────────────────────

	c.AuthMiddleware = auth.NewTokenMiddleware(c.TokenService)
	c.APIKeyMiddleware = apikey.RequireKey(deps.Cfg.Server.APIKey)

	// ── API handlers ─────────────────────────────────────────────────────

	c.AccountHandlers = accountapi.NewAccountHandlers(c.AccountService, c.AuthMiddleware)

	logx.Info("✅ IAM container initialized")
	return c, nil
}
