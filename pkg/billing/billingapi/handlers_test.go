package billingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Abraxas-365/quizcraft/pkg/billing"
	"github.com/Abraxas-365/quizcraft/pkg/billing/billingsrv"
	"github.com/Abraxas-365/quizcraft/pkg/iam/auth"
	"github.com/Abraxas-365/quizcraft/pkg/kernel"
	"github.com/Abraxas-365/quizcraft/pkg/respx"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider implements the calls these routes reach; anything else
// panics through the nil embedded interface.
type stubProvider struct {
	billing.Provider
	customers map[string]*billing.Customer
}

func (s *stubProvider) FindCustomerByEmail(_ context.Context, email string) (*billing.Customer, error) {
	return s.customers[email], nil
}

func (s *stubProvider) CreateCustomer(_ context.Context, email, _ string) (*billing.Customer, error) {
	c := &billing.Customer{ID: "cus_" + email, Email: email}
	s.customers[email] = c
	return c, nil
}

func (s *stubProvider) CreateCheckoutSession(_ context.Context, in billing.CheckoutInput) (*billing.CheckoutSession, error) {
	return &billing.CheckoutSession{ID: "cs_1", URL: "https://checkout.example/" + in.PriceID}, nil
}

func (s *stubProvider) ListProducts(context.Context) ([]billing.Product, error) {
	return []billing.Product{{ID: "prod_1", Name: "Pro", Active: true}}, nil
}

func (s *stubProvider) ListPrices(_ context.Context, productID string) ([]billing.Price, error) {
	return []billing.Price{{ID: "price_1", ProductID: productID, UnitAmount: 1500, Currency: "usd"}}, nil
}

func (s *stubProvider) CreateProduct(_ context.Context, in billing.ProductInput) (*billing.Product, error) {
	return &billing.Product{ID: "prod_2", Name: in.Name, Active: true}, nil
}

func (s *stubProvider) CreatePrice(_ context.Context, productID string, in billing.PriceInput) (*billing.Price, error) {
	return &billing.Price{ID: "price_2", ProductID: productID, UnitAmount: in.UnitAmount, Currency: in.Currency, Interval: in.Interval}, nil
}

func newTestApp(t *testing.T) (*fiber.App, *auth.JWTService) {
	t.Helper()
	tokens := auth.NewJWTService(auth.JWTConfig{Secret: "billing-secret"}, kernel.NewManualClock(time.Now().UTC()))
	svc := billingsrv.NewBillingService(&stubProvider{customers: map[string]*billing.Customer{}}, nil, billingsrv.Config{})

	app := fiber.New(fiber.Config{ErrorHandler: respx.ErrorHandler})
	NewBillingHandlers(svc, auth.NewTokenMiddleware(tokens)).RegisterRoutes(app.Group("/api"))
	return app, tokens
}

func accessToken(t *testing.T, tokens *auth.JWTService, email, role string) string {
	t.Helper()
	pair, err := tokens.IssueSessionPair(email, role)
	require.NoError(t, err)
	return pair.AccessToken
}

func do(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestListProductsIsPublic(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := do(t, app, http.MethodGet, "/api/products/get-all-products", "", nil)
	require.Equal(t, http.StatusOK, status)
	data := body["data"].([]any)
	require.Len(t, data, 1)
	entry := data[0].(map[string]any)
	assert.Len(t, entry["prices"], 1)
}

func TestCreateProductRequiresAdmin(t *testing.T) {
	app, tokens := newTestApp(t)

	status, _ := do(t, app, http.MethodPost, "/api/products/create-subscription-product", "", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = do(t, app, http.MethodPost, "/api/products/create-subscription-product",
		accessToken(t, tokens, "user@example.com", kernel.RoleUser), map[string]any{})
	assert.Equal(t, http.StatusForbidden, status)

	status, body := do(t, app, http.MethodPost, "/api/products/create-subscription-product",
		accessToken(t, tokens, "admin@example.com", kernel.RoleAdmin), map[string]any{"unit_amount": 999})
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]any)
	price := data["price"].(map[string]any)
	assert.Equal(t, float64(999), price["unit_amount"])
	assert.Equal(t, "year", price["interval"])
}

func TestPaymentMethodsNeedCustomer(t *testing.T) {
	app, tokens := newTestApp(t)

	status, body := do(t, app, http.MethodGet, "/api/payment/get-all-payment-methods",
		accessToken(t, tokens, "alice@example.com", kernel.RoleUser), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "BILLING_CUSTOMER_NOT_FOUND", body["code"])
}

func TestCreateCheckoutLink(t *testing.T) {
	app, tokens := newTestApp(t)
	token := accessToken(t, tokens, "alice@example.com", kernel.RoleUser)

	status, body := do(t, app, http.MethodPost, "/api/checkout/create-checkout-link", token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = do(t, app, http.MethodPost, "/api/checkout/create-checkout-link", token, map[string]any{"priceId": "price_1"})
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, "https://checkout.example/price_1", data["checkoutLink"])
}
