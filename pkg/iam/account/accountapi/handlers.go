package accountapi

import (
	"github.com/Abraxas-365/quizcraft/pkg/iam"
	"github.com/Abraxas-365/quizcraft/pkg/iam/account"
	"github.com/Abraxas-365/quizcraft/pkg/iam/account/accountsrv"
	"github.com/Abraxas-365/quizcraft/pkg/iam/auth"
	"github.com/Abraxas-365/quizcraft/pkg/respx"
	"github.com/Abraxas-365/quizcraft/pkg/validx"
	"github.com/gofiber/fiber/v2"
)

// AccountHandlers serves /user.
type AccountHandlers struct {
	service *accountsrv.AccountService
	tokens  *auth.TokenMiddleware
}

func NewAccountHandlers(service *accountsrv.AccountService, tokens *auth.TokenMiddleware) *AccountHandlers {
	return &AccountHandlers{service: service, tokens: tokens}
}

// RegisterRoutes mounts the account routes under router, which is expected
// to be the API-key protected /api group.
func (h *AccountHandlers) RegisterRoutes(router fiber.Router) {
	users := router.Group("/user")

	users.Post("/register", h.register)
	users.Post("/login", h.login)
	users.Post("/verify-email", h.verifyEmail)
	users.Post("/resend-otp", h.resendOTP)
	users.Post("/refresh-token", h.refreshToken)

	protected := users.Group("", h.tokens.Authenticate())
	protected.Put("/change-password", h.changePassword)
	protected.Get("/profile", h.getProfile)
	protected.Post("/profile", h.getProfile)
	protected.Put("/profile", h.updateProfile)
	protected.Delete("/delete", h.deleteAccount)
}

func (h *AccountHandlers) register(c *fiber.Ctx) error {
	var req account.RegisterRequest
	if err := validx.Bind(c, &req); err != nil {
		return err
	}

	res, err := h.service.Register(c.UserContext(), req)
	if err != nil {
		return err
	}
	if res.NeedsVerification() {
		return respx.OK(c, "OTP sent successfully!", fiber.Map{"verification_token": res.VerificationToken})
	}
	return respx.OK(c, "Login successfully!", res.Session)
}

func (h *AccountHandlers) login(c *fiber.Ctx) error {
	var req account.SignInRequest
	if err := validx.Bind(c, &req); err != nil {
		return err
	}

	sess, err := h.service.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return respx.OK(c, "Login successfully!", sess)
}

func (h *AccountHandlers) verifyEmail(c *fiber.Ctx) error {
	var req account.VerifyEmailRequest
	if err := validx.Bind(c, &req); err != nil {
		return err
	}
	token := auth.ExtractToken(c)
	if token == "" {
		return iam.ErrUnauthorized().WithDetail("reason", "missing verification token")
	}

	sess, err := h.service.VerifyEmail(c.UserContext(), token, req.OTP)
	if err != nil {
		return err
	}
	return respx.OK(c, "Otp validated successfully!", sess)
}

func (h *AccountHandlers) resendOTP(c *fiber.Ctx) error {
	var req account.ResendOTPRequest
	if err := validx.Bind(c, &req); err != nil {
		return err
	}
	if err := h.service.ResendOTP(c.UserContext(), req.Email); err != nil {
		return err
	}
	return respx.OK(c, "New OTP sent successfully!", nil)
}

func (h *AccountHandlers) refreshToken(c *fiber.Ctx) error {
	pair, err := h.service.RefreshToken(c.UserContext(), auth.ExtractToken(c))
	if err != nil {
		return err
	}
	return respx.OK(c, "Access Token refresh successfully!", pair)
}

func (h *AccountHandlers) changePassword(c *fiber.Ctx) error {
	var req account.ChangePasswordRequest
	if err := validx.Bind(c, &req); err != nil {
		return err
	}
	email, err := subject(c, req.Email)
	if err != nil {
		return err
	}

	if err := h.service.ChangePassword(c.UserContext(), email, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return respx.OK(c, "Password changed successfully", nil)
}

func (h *AccountHandlers) getProfile(c *fiber.Ctx) error {
	email, err := subject(c, optionalEmail(c))
	if err != nil {
		return err
	}

	profile, err := h.service.GetProfile(c.UserContext(), email)
	if err != nil {
		return err
	}
	return respx.OK(c, "User profile found", profile)
}

func (h *AccountHandlers) updateProfile(c *fiber.Ctx) error {
	var req account.UpdateProfileRequest
	if err := validx.Bind(c, &req); err != nil {
		return err
	}
	ac, ok := auth.FromFiber(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	profile, err := h.service.UpdateProfile(c.UserContext(), ac, req)
	if err != nil {
		return err
	}
	return respx.OK(c, "User profile updated", profile)
}

func (h *AccountHandlers) deleteAccount(c *fiber.Ctx) error {
	email, err := subject(c, optionalEmail(c))
	if err != nil {
		return err
	}
	if err := h.service.DeleteAccount(c.UserContext(), email); err != nil {
		return err
	}
	return respx.OK(c, "User deleted successfully", nil)
}

func subject(c *fiber.Ctx, requested string) (string, error) {
	ac, ok := auth.FromFiber(c)
	if !ok {
		return "", iam.ErrUnauthorized()
	}
	return account.ResolveSubject(ac, requested)
}

// optionalEmail reads {"email": ...} when a body was sent. GET and DELETE
// callers usually send none.
func optionalEmail(c *fiber.Ctx) string {
	if len(c.Body()) == 0 {
		return ""
	}
	var body struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&body); err != nil {
		return ""
	}
	return body.Email
}
