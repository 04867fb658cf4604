package billingapi

import (
	"github.com/Abraxas-365/quizcraft/pkg/billing"
	"github.com/Abraxas-365/quizcraft/pkg/billing/billingsrv"
	"github.com/Abraxas-365/quizcraft/pkg/iam"
	"github.com/Abraxas-365/quizcraft/pkg/iam/auth"
	"github.com/Abraxas-365/quizcraft/pkg/respx"
	"github.com/Abraxas-365/quizcraft/pkg/validx"
	"github.com/gofiber/fiber/v2"
)

type BillingHandlers struct {
	service *billingsrv.BillingService
	tokens  *auth.TokenMiddleware
}

func NewBillingHandlers(service *billingsrv.BillingService, tokens *auth.TokenMiddleware) *BillingHandlers {
	return &BillingHandlers{service: service, tokens: tokens}
}

// RegisterRoutes mounts products, payment, checkout and subscription routes.
// Product changes require an admin access token; listing is open to any
// API key holder.
func (h *BillingHandlers) RegisterRoutes(router fiber.Router) {
	authenticated := h.tokens.Authenticate()

	products := router.Group("/products")
	products.Get("/get-all-products", h.listProducts)
	admin := products.Group("", authenticated, h.tokens.RequireAdmin())
	admin.Post("/create-subscription-product", h.createProduct)
	admin.Put("/deactivate-product/:productId", h.setProductActive(false))
	admin.Put("/activate-product/:productId", h.setProductActive(true))
	admin.Put("/update-product/:productId", h.updateProduct)

	payment := router.Group("/payment", authenticated)
	payment.Post("/add-payment-method", h.addPaymentMethod)
	payment.Get("/get-all-payment-methods", h.listPaymentMethods)

	checkout := router.Group("/checkout", authenticated)
	checkout.Post("/create-checkout-link", h.createCheckoutLink)

	subs := router.Group("/subscription", authenticated)
	subs.Get("/get-subscriptions", h.listSubscriptions)
	subs.Post("/cancel-subscription", h.cancelSubscription)
	subs.Put("/update-subscription", h.updateSubscription)
	subs.Get("/payment-history", h.paymentHistory)
}

// ============================================================================
// Products
// ============================================================================

func (h *BillingHandlers) createProduct(c *fiber.Ctx) error {
	var req billing.CreateProductRequest
	if len(c.Body()) > 0 {
		if err := validx.Bind(c, &req); err != nil {
			return err
		}
	}

	created, err := h.service.CreateSubscriptionProduct(c.UserContext(), req)
	if err != nil {
		return err
	}
	return respx.OK(c, "Subscription product created successfully", created)
}

func (h *BillingHandlers) listProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext())
	if err != nil {
		return err
	}
	return respx.OK(c, "Retrieved all subscription products successfully", products)
}

func (h *BillingHandlers) setProductActive(active bool) fiber.Handler {
	message := "Product deactivated successfully"
	if active {
		message = "Product activated successfully"
	}
	return func(c *fiber.Ctx) error {
		product, err := h.service.SetProductActive(c.UserContext(), c.Params("productId"), active)
		if err != nil {
			return err
		}
		return respx.OK(c, message, product)
	}
}

func (h *BillingHandlers) updateProduct(c *fiber.Ctx) error {
	var req billing.UpdateProductRequest
	if err := validx.Bind(c, &req); err != nil {
		return err
	}

	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("productId"), req)
	if err != nil {
		return err
	}
	return respx.OK(c, "Product updated successfully", product)
}

// ============================================================================
// Payment methods and checkout
// ============================================================================

func (h *BillingHandlers) addPaymentMethod(c *fiber.Ctx) error {
	var req billing.AddPaymentMethodRequest
	if err := validx.Bind(c, &req); err != nil {
		return err
	}
	email, err := caller(c)
	if err != nil {
		return err
	}

	pm, err := h.service.AddPaymentMethod(c.UserContext(), email, req.PaymentMethod.ID)
	if err != nil {
		return err
	}
	return respx.OK(c, "Payment method added successfully", pm)
}

func (h *BillingHandlers) listPaymentMethods(c *fiber.Ctx) error {
	email, err := caller(c)
	if err != nil {
		return err
	}

	methods, err := h.service.ListPaymentMethods(c.UserContext(), email)
	if err != nil {
		return err
	}
	return respx.OK(c, "Payment methods retrieved successfully", methods)
}

func (h *BillingHandlers) createCheckoutLink(c *fiber.Ctx) error {
	var req billing.CheckoutRequest
	if err := validx.Bind(c, &req); err != nil {
		return err
	}
	email, err := caller(c)
	if err != nil {
		return err
	}

	session, err := h.service.CreateCheckoutLink(c.UserContext(), email, req.PriceID)
	if err != nil {
		return err
	}
	return respx.OK(c, "Checkout session created successfully", fiber.Map{
		"checkoutLink": session.URL,
		"session_id":   session.ID,
	})
}

// ============================================================================
// Subscriptions
// ============================================================================

func (h *BillingHandlers) listSubscriptions(c *fiber.Ctx) error {
	email, err := caller(c)
	if err != nil {
		return err
	}

	subs, err := h.service.ListSubscriptions(c.UserContext(), email)
	if err != nil {
		return err
	}
	return respx.OK(c, "Subscriptions list generated successfully", subs)
}

func (h *BillingHandlers) cancelSubscription(c *fiber.Ctx) error {
	var req billing.CancelSubscriptionRequest
	if err := validx.Bind(c, &req); err != nil {
		return err
	}
	email, err := caller(c)
	if err != nil {
		return err
	}

	sub, err := h.service.CancelSubscription(c.UserContext(), email, req.SubscriptionID)
	if err != nil {
		return err
	}
	return respx.OK(c, "Subscription canceled successfully", sub)
}

func (h *BillingHandlers) updateSubscription(c *fiber.Ctx) error {
	var req billing.UpdateSubscriptionRequest
	if err := validx.Bind(c, &req); err != nil {
		return err
	}
	email, err := caller(c)
	if err != nil {
		return err
	}

	sub, err := h.service.UpdateSubscription(c.UserContext(), email, req)
	if err != nil {
		return err
	}
	return respx.OK(c, "Subscription updated successfully", sub)
}

func (h *BillingHandlers) paymentHistory(c *fiber.Ctx) error {
	email, err := caller(c)
	if err != nil {
		return err
	}

	payments, err := h.service.PaymentHistory(c.UserContext(), email)
	if err != nil {
		return err
	}
	return respx.OK(c, "Payment history retrieved successfully", payments)
}

func caller(c *fiber.Ctx) (string, error) {
	ac, ok := auth.FromFiber(c)
	if !ok {
		return "", iam.ErrUnauthorized()
	}
	return ac.Email, nil
}
