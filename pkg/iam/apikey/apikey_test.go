package apikey

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Abraxas-365/quizcraft/pkg/respx"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireKey(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: respx.ErrorHandler})
	app.Use(RequireKey("k-123"))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) })

	cases := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong", HeaderName, "nope", http.StatusUnauthorized},
		{"x-api-key header", HeaderName, "k-123", http.StatusNoContent},
		{"legacy api_key header", LegacyHeaderName, "k-123", http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set(tc.header, tc.value)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestRequireKey_EmptyConfiguredKeyRejectsAll(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: respx.ErrorHandler})
	app.Use(RequireKey(""))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderName, "anything")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireKey_JSONBodyField(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: respx.ErrorHandler})
	app.Use(RequireKey("k-123"))
	app.Post("/", func(c *fiber.Ctx) error {
		var body struct {
			Email string `json:"email"`
		}
		if err := c.BodyParser(&body); err != nil {
			return err
		}
		return c.SendString(body.Email)
	})

	cases := []struct {
		name        string
		contentType string
		body        string
		want        int
	}{
		{"matching key", fiber.MIMEApplicationJSON, `{"api_key":"k-123","email":"a@b.co"}`, http.StatusOK},
		{"wrong key", fiber.MIMEApplicationJSON, `{"api_key":"nope","email":"a@b.co"}`, http.StatusUnauthorized},
		{"no key", fiber.MIMEApplicationJSON, `{"email":"a@b.co"}`, http.StatusUnauthorized},
		{"not json", fiber.MIMEApplicationForm, `api_key=k-123`, http.StatusUnauthorized},
		{"malformed json", fiber.MIMEApplicationJSON, `{"api_key":`, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			req.Header.Set(fiber.HeaderContentType, tc.contentType)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
			if tc.want == http.StatusOK {
				got, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, "a@b.co", string(got), "handler still reads the body")
			}
		})
	}
}
