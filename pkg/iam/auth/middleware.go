package auth

import (
	"strings"

	"github.com/Abraxas-365/quizcraft/pkg/iam"
	"github.com/Abraxas-365/quizcraft/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

// TokenMiddleware authenticates requests with a session token
type TokenMiddleware struct {
	tokenService TokenService
}

func NewTokenMiddleware(tokenService TokenService) *TokenMiddleware {
	return &TokenMiddleware{tokenService: tokenService}
}

// ExtractToken reads the token from "Authorization: Bearer", the "token"
// header, or the access_token cookie, in that order.
func ExtractToken(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != "" {
			return strings.TrimSpace(parts[1])
		}
	}
	if t := c.Get("token"); t != "" {
		return strings.TrimSpace(t)
	}
	return c.Cookies("access_token")
}

// Authenticate rejects requests without a valid token of one of kinds and
// stores the caller in fiber locals. Errors go through the app ErrorHandler.
func (am *TokenMiddleware) Authenticate(kinds ...TokenKind) fiber.Handler {
	if len(kinds) == 0 {
		kinds = []TokenKind{TokenKindAccess}
	}
	return func(c *fiber.Ctx) error {
		token := ExtractToken(c)
		if token == "" {
			return iam.ErrUnauthorized()
		}

		claims, err := am.tokenService.Verify(token, kinds...)
		if err != nil {
			return err
		}

		c.Locals(string(kernel.AuthContextKey), &kernel.AuthContext{
			Email:     claims.Email,
			Role:      claims.Role,
			TokenKind: string(claims.Kind),
		})
		return c.Next()
	}
}

// RequireAdmin must run after Authenticate.
func (am *TokenMiddleware) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ac, ok := FromFiber(c)
		if !ok {
			return iam.ErrUnauthorized()
		}
		if !ac.IsAdmin() {
			return iam.ErrAccessDenied()
		}
		return c.Next()
	}
}

// FromFiber returns the caller stored by Authenticate.
func FromFiber(c *fiber.Ctx) (*kernel.AuthContext, bool) {
	ac, ok := c.Locals(string(kernel.AuthContextKey)).(*kernel.AuthContext)
	return ac, ok && ac.IsValid()
}
