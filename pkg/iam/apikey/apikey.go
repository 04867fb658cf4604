package apikey

import (
	"crypto/subtle"
	"strings"

	"github.com/Abraxas-365/quizcraft/pkg/iam"
	"github.com/gofiber/fiber/v2"
)

const (
	// HeaderName is the header clients should send the service key in.
	HeaderName = "X-API-Key"
	// LegacyHeaderName is still accepted. Some proxies drop headers with
	// underscores.
	LegacyHeaderName = "api_key"
	// BodyField carries the key in a JSON body when no header is sent.
	BodyField = "api_key"
)

type keyBody struct {
	APIKey string `json:"api_key"`
}

// RequireKey rejects requests whose key does not equal key. The comparison
// runs in constant time.
func RequireKey(key string) fiber.Handler {
	expected := []byte(key)
	return func(c *fiber.Ctx) error {
		provided := providedKey(c)
		if provided == "" {
			return iam.ErrInvalidAPIKey().WithDetail("reason", "missing api key")
		}
		if len(expected) == 0 || subtle.ConstantTimeCompare([]byte(provided), expected) != 1 {
			return iam.ErrInvalidAPIKey()
		}
		return c.Next()
	}
}

// providedKey reads the headers first, then the api_key field of a JSON body.
// The body is left untouched for the handler.
func providedKey(c *fiber.Ctx) string {
	if v := c.Get(HeaderName); v != "" {
		return v
	}
	if v := c.Get(LegacyHeaderName); v != "" {
		return v
	}

	body := c.Body()
	if len(body) == 0 || !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		return ""
	}
	var kb keyBody
	if err := c.App().Config().JSONDecoder(body, &kb); err != nil {
		return ""
	}
	return kb.APIKey
}
