package accountapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Abraxas-365/quizcraft/pkg/iam/account/accountsrv"
	"github.com/Abraxas-365/quizcraft/pkg/iam/apikey"
	"github.com/Abraxas-365/quizcraft/pkg/iam/auth"
	"github.com/Abraxas-365/quizcraft/pkg/iam/auth/authinfra"
	"github.com/Abraxas-365/quizcraft/pkg/iam/otp"
	"github.com/Abraxas-365/quizcraft/pkg/iam/otp/otpsrv"
	"github.com/Abraxas-365/quizcraft/pkg/iam/user/userinfra"
	"github.com/Abraxas-365/quizcraft/pkg/kernel"
	"github.com/Abraxas-365/quizcraft/pkg/logx"
	"github.com/Abraxas-365/quizcraft/pkg/respx"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testAPIKey = "test-key"

type mailbox struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *mailbox) SendOTP(_ context.Context, contact, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.codes == nil {
		m.codes = map[string]string{}
	}
	m.codes[contact] = code
	return nil
}

func (m *mailbox) code(contact string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[contact]
}

func newTestApp(t *testing.T) (*fiber.App, *mailbox) {
	t.Helper()
	clock := kernel.NewManualClock(time.Now().UTC())
	tokens := auth.NewJWTService(auth.JWTConfig{Secret: "handler-secret"}, clock)
	mail := &mailbox{}

	svc := accountsrv.NewAccountService(
		userinfra.NewMemoryUserRepository(),
		tokens,
		authinfra.NewArgon2PasswordService(1, 1024, 1),
		otpsrv.NewOTPService(otp.NewGenerator(6, nil), otp.NewBcryptCodec(bcrypt.MinCost), mail, clock, 2*time.Minute),
		authinfra.NewLogxAuditService(logx.NewLogger(&logx.Config{Level: logx.LevelOff, Output: io.Discard})),
		clock,
		nil,
	)

	app := fiber.New(fiber.Config{ErrorHandler: respx.ErrorHandler})
	api := app.Group("/api", apikey.RequireKey(testAPIKey))
	NewAccountHandlers(svc, auth.NewTokenMiddleware(tokens)).RegisterRoutes(api)
	return app, mail
}

type response struct {
	Status  bool           `json:"status"`
	Message string         `json:"message"`
	Code    string         `json:"code"`
	Data    map[string]any `json:"data"`
	Details map[string]any `json:"details"`
}

func call(t *testing.T, app *fiber.App, method, path string, body any, headers map[string]string) (int, response) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(apikey.HeaderName, testAPIKey)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestRegisterVerifyAndFetchProfile(t *testing.T) {
	app, mail := newTestApp(t)

	status, res := call(t, app, http.MethodPost, "/api/user/register", map[string]any{
		"name": "Alice", "email": "alice@example.com", "password": "s3cret", "provider": "email",
	}, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, res.Status)
	assert.Equal(t, "OTP sent successfully!", res.Message)
	token, _ := res.Data["verification_token"].(string)
	require.NotEmpty(t, token)

	status, res = call(t, app, http.MethodPost, "/api/user/verify-email",
		map[string]any{"otp": mail.code("alice@example.com")},
		map[string]string{"token": token})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Otp validated successfully!", res.Message)
	access, _ := res.Data["access_token"].(string)
	require.NotEmpty(t, access)
	assert.NotEmpty(t, res.Data["refresh_token"])

	status, res = call(t, app, http.MethodGet, "/api/user/profile", nil, bearer(access))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice@example.com", res.Data["email"])
	assert.Equal(t, true, res.Data["email_verified"])
	assert.NotContains(t, res.Data, "password_hash")
	assert.NotContains(t, res.Data, "provider")
}

func TestRegister_ValidationFailure(t *testing.T) {
	app, _ := newTestApp(t)

	status, res := call(t, app, http.MethodPost, "/api/user/register", map[string]any{
		"email": "not-an-email", "provider": "email",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, res.Status)
	assert.Contains(t, res.Details, "fields")
}

func TestRegister_SocialReturnsSession(t *testing.T) {
	app, _ := newTestApp(t)

	status, res := call(t, app, http.MethodPost, "/api/user/register", map[string]any{
		"name": "Bob", "email": "bob@example.com", "provider": "google",
	}, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Login successfully!", res.Message)
	assert.NotEmpty(t, res.Data["access_token"])
}

func TestMissingAPIKeyIsRejected(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/user/login", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_GenericFailure(t *testing.T) {
	app, _ := newTestApp(t)

	status, res := call(t, app, http.MethodPost, "/api/user/login", map[string]any{
		"email": "nobody@example.com", "password": "x",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "ACCOUNT_INVALID_CREDENTIALS", res.Code)
	assert.Equal(t, "Your credentials are incorrect!", res.Message)
}

func TestProtectedRoutesNeedAccessToken(t *testing.T) {
	app, _ := newTestApp(t)

	status, res := call(t, app, http.MethodGet, "/api/user/profile", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "IAM_UNAUTHORIZED", res.Code)
}

func socialSession(t *testing.T, app *fiber.App, email string) (string, string) {
	t.Helper()
	status, res := call(t, app, http.MethodPost, "/api/user/register", map[string]any{
		"name": "Bob", "email": email, "provider": "google",
	}, nil)
	require.Equal(t, http.StatusOK, status)
	return res.Data["access_token"].(string), res.Data["refresh_token"].(string)
}

func TestDelete_BodyEmailMustMatchCaller(t *testing.T) {
	app, _ := newTestApp(t)
	access, _ := socialSession(t, app, "bob@example.com")

	status, res := call(t, app, http.MethodDelete, "/api/user/delete",
		map[string]any{"email": "carol@example.com"}, bearer(access))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "IAM_ACCESS_DENIED", res.Code)

	status, _ = call(t, app, http.MethodDelete, "/api/user/delete",
		map[string]any{"email": "bob@example.com"}, bearer(access))
	assert.Equal(t, http.StatusOK, status)

	status, res = call(t, app, http.MethodGet, "/api/user/profile", nil, bearer(access))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "USER_NOT_FOUND", res.Code)
}

func TestRefreshAndUpdateProfile(t *testing.T) {
	app, _ := newTestApp(t)
	_, refresh := socialSession(t, app, "bob@example.com")

	status, res := call(t, app, http.MethodPost, "/api/user/refresh-token", nil, bearer(refresh))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Access Token refresh successfully!", res.Message)
	access := res.Data["access_token"].(string)

	status, res = call(t, app, http.MethodPut, "/api/user/profile",
		map[string]any{"name": "Robert"}, bearer(access))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Robert", res.Data["name"])

	status, _ = call(t, app, http.MethodPut, "/api/user/profile",
		map[string]any{"role": "admin"}, bearer(access))
	assert.Equal(t, http.StatusForbidden, status)

	// refresh tokens never open session routes
	status, _ = call(t, app, http.MethodGet, "/api/user/profile", nil, bearer(refresh))
	assert.Equal(t, http.StatusUnauthorized, status)
}
