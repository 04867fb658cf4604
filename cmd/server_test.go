package main

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Abraxas-365/quizcraft/pkg/config"
	"github.com/Abraxas-365/quizcraft/pkg/logx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContainer(t *testing.T) *Container {
	t.Helper()
	logx.SetOutput(io.Discard)

	cfg := &config.Config{
		Server:   config.ServerConfig{Port: "0", CORSOrigins: "*", APIKey: "svc-key"},
		Auth:     config.AuthConfig{Secret: "server-secret"},
		Password: config.PasswordConfig{Argon2Time: 1, Argon2Memory: 1024, Argon2Threads: 1},
		OTP:      config.OTPConfig{Length: 6, BcryptCost: 4, Window: 2 * time.Minute},
		Store:    config.StoreConfig{Driver: "memory"},
		Notifx:   config.NotifxConfig{Provider: "console", FromAddress: "noreply@example.com"},
		Mail:     config.MailConfig{Delivery: config.MailDeliveryDirect},
		Billing:  config.BillingConfig{StripeSecretKey: "sk_test_unused", CollaboratorTimeout: 100 * time.Millisecond},
	}
	c := NewContainer(cfg)
	t.Cleanup(c.Cleanup)
	return c
}

func decode(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestServer_Health(t *testing.T) {
	app := newApp(newTestContainer(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body := decode(t, resp.Body)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "memory", body["store"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestServer_APIRequiresKey(t *testing.T) {
	app := newApp(newTestContainer(t))

	req := httptest.NewRequest("POST", "/api/user/login", strings.NewReader(`{"email":"a@b.co","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
	assert.Equal(t, "IAM_INVALID_API_KEY", decode(t, resp.Body)["code"])

	req = httptest.NewRequest("POST", "/api/user/login", strings.NewReader(`{"email":"a@b.co","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api_key", "svc-key")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
	assert.Equal(t, "ACCOUNT_INVALID_CREDENTIALS", decode(t, resp.Body)["code"])
}

func TestServer_RegisterThroughConsoleMail(t *testing.T) {
	app := newApp(newTestContainer(t))

	req := httptest.NewRequest("POST", "/api/user/register",
		strings.NewReader(`{"name":"Alice","email":"alice@example.com","password":"Secret123","provider":"email"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", "svc-key")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	body := decode(t, resp.Body)
	assert.Equal(t, true, body["status"])
}

func TestServer_UnknownRoute(t *testing.T) {
	app := newApp(newTestContainer(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode(t, resp.Body)["code"])
}
