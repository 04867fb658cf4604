package billingsrv

import (
	"context"
	"errors"
	"time"

	"github.com/Abraxas-365/quizcraft/pkg/asyncx"
	"github.com/Abraxas-365/quizcraft/pkg/billing"
	"github.com/Abraxas-365/quizcraft/pkg/errx"
	"github.com/Abraxas-365/quizcraft/pkg/iam"
	"github.com/Abraxas-365/quizcraft/pkg/iam/user"
	"github.com/Abraxas-365/quizcraft/pkg/logx"
)

type Config struct {
	SuccessURL string
	CancelURL  string
	// Timeout bounds every provider call. Zero disables it.
	Timeout time.Duration
	// Concurrency caps fan-out over products and prices.
	Concurrency int
}

// BillingService fronts the payment provider. Customers are resolved from
// the caller's e-mail, preferring the id stored on the identity.
type BillingService struct {
	provider billing.Provider
	users    user.Repository
	cfg      Config
}

// NewBillingService builds the service. users may be nil; customers are then
// resolved through the provider only.
func NewBillingService(provider billing.Provider, users user.Repository, cfg Config) *BillingService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &BillingService{provider: provider, users: users, cfg: cfg}
}

// CreateCustomer registers email with the provider and returns its id. It
// satisfies the account module's billing registrar.
func (s *BillingService) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	c, err := call(ctx, s.cfg.Timeout, func(ctx context.Context) (*billing.Customer, error) {
		return s.provider.CreateCustomer(ctx, iam.NormalizeEmail(email), name)
	})
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

// ============================================================================
// Products
// ============================================================================

func (s *BillingService) CreateSubscriptionProduct(ctx context.Context, req billing.CreateProductRequest) (*billing.CreatedProduct, error) {
	req.ApplyDefaults()

	prod, err := call(ctx, s.cfg.Timeout, func(ctx context.Context) (*billing.Product, error) {
		return s.provider.CreateProduct(ctx, billing.ProductInput{
			Name:        req.Name,
			Description: req.Description,
			Images:      req.Images,
			Features:    req.Features,
		})
	})
	if err != nil {
		return nil, err
	}

	price, err := call(ctx, s.cfg.Timeout, func(ctx context.Context) (*billing.Price, error) {
		return s.provider.CreatePrice(ctx, prod.ID, billing.PriceInput{
			UnitAmount: req.UnitAmount,
			Currency:   req.Currency,
			Interval:   req.Interval,
		})
	})
	if err != nil {
		return nil, err
	}

	logx.WithFields(logx.Fields{"product_id": prod.ID, "price_id": price.ID}).Info("Subscription product created")
	return &billing.CreatedProduct{Product: *prod, Price: *price}, nil
}

// ListProducts returns every product with its prices. Price lookups run
// concurrently.
func (s *BillingService) ListProducts(ctx context.Context) ([]billing.ProductWithPrices, error) {
	products, err := call(ctx, s.cfg.Timeout, s.provider.ListProducts)
	if err != nil {
		return nil, err
	}

	return asyncx.Map(ctx, products, s.cfg.Concurrency, func(ctx context.Context, p billing.Product) (billing.ProductWithPrices, error) {
		prices, err := call(ctx, s.cfg.Timeout, func(ctx context.Context) ([]billing.Price, error) {
			return s.provider.ListPrices(ctx, p.ID)
		})
		if err != nil {
			return billing.ProductWithPrices{}, err
		}
		return billing.ProductWithPrices{Product: p, Prices: prices}, nil
	})
}

// SetProductActive toggles every price of the product concurrently and then
// the product itself.
func (s *BillingService) SetProductActive(ctx context.Context, productID string, active bool) (*billing.Product, error) {
	prices, err := call(ctx, s.cfg.Timeout, func(ctx context.Context) ([]billing.Price, error) {
		return s.provider.ListPrices(ctx, productID)
	})
	if err != nil {
		return nil, err
	}

	err = asyncx.ForEach(ctx, prices, s.cfg.Concurrency, func(ctx context.Context, p billing.Price) error {
		_, err := call(ctx, s.cfg.Timeout, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.provider.SetPriceActive(ctx, p.ID, active)
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return call(ctx, s.cfg.Timeout, func(ctx context.Context) (*billing.Product, error) {
		return s.provider.SetProductActive(ctx, productID, active)
	})
}

func (s *BillingService) UpdateProduct(ctx context.Context, productID string, req billing.UpdateProductRequest) (*billing.Product, error) {
	update := billing.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Images:      req.Images,
		Features:    req.Features,
	}
	if update.IsEmpty() {
		return nil, billing.ErrNothingToUpdate()
	}
	return call(ctx, s.cfg.Timeout, func(ctx context.Context) (*billing.Product, error) {
		return s.provider.UpdateProduct(ctx, productID, update)
	})
}

// ============================================================================
// Payment methods and checkout
// ============================================================================

// AddPaymentMethod attaches a payment method to the caller's customer,
// creating the customer when needed, and makes it the invoice default.
func (s *BillingService) AddPaymentMethod(ctx context.Context, email, paymentMethodID string) (*billing.PaymentMethod, error) {
	customerID, err := s.resolveCustomer(ctx, email, true)
	if err != nil {
		return nil, err
	}

	pm, err := call(ctx, s.cfg.Timeout, func(ctx context.Context) (*billing.PaymentMethod, error) {
		return s.provider.AttachPaymentMethod(ctx, paymentMethodID, customerID)
	})
	if err != nil {
		return nil, err
	}

	if _, err := call(ctx, s.cfg.Timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.provider.SetDefaultPaymentMethod(ctx, customerID, pm.ID)
	}); err != nil {
		return nil, err
	}
	return pm, nil
}

func (s *BillingService) ListPaymentMethods(ctx context.Context, email string) ([]billing.PaymentMethod, error) {
	customerID, err := s.resolveCustomer(ctx, email, false)
	if err != nil {
		return nil, err
	}
	return call(ctx, s.cfg.Timeout, func(ctx context.Context) ([]billing.PaymentMethod, error) {
		return s.provider.ListCardPaymentMethods(ctx, customerID)
	})
}

func (s *BillingService) CreateCheckoutLink(ctx context.Context, email, priceID string) (*billing.CheckoutSession, error) {
	customerID, err := s.resolveCustomer(ctx, email, true)
	if err != nil {
		return nil, err
	}
	return call(ctx, s.cfg.Timeout, func(ctx context.Context) (*billing.CheckoutSession, error) {
		return s.provider.CreateCheckoutSession(ctx, billing.CheckoutInput{
			CustomerID: customerID,
			PriceID:    priceID,
			SuccessURL: s.cfg.SuccessURL,
			CancelURL:  s.cfg.CancelURL,
		})
	})
}

// ============================================================================
// Subscriptions
// ============================================================================

func (s *BillingService) ListSubscriptions(ctx context.Context, email string) ([]billing.Subscription, error) {
	customerID, err := s.resolveCustomer(ctx, email, false)
	if err != nil {
		return nil, err
	}
	return s.subscriptions(ctx, customerID)
}

// CancelSubscription cancels one of the caller's own subscriptions.
func (s *BillingService) CancelSubscription(ctx context.Context, email, subscriptionID string) (*billing.Subscription, error) {
	if _, err := s.ownedSubscription(ctx, email, subscriptionID); err != nil {
		return nil, err
	}
	sub, err := call(ctx, s.cfg.Timeout, func(ctx context.Context) (*billing.Subscription, error) {
		return s.provider.CancelSubscription(ctx, subscriptionID)
	})
	if err != nil {
		return nil, err
	}
	logx.WithFields(logx.Fields{"email": email, "subscription_id": subscriptionID}).Info("Subscription canceled")
	return sub, nil
}

// UpdateSubscription toggles cancel-at-period-end and/or moves the first
// item of an owned subscription to another price.
func (s *BillingService) UpdateSubscription(ctx context.Context, email string, req billing.UpdateSubscriptionRequest) (*billing.Subscription, error) {
	if req.CancelAtPeriodEnd == nil && req.PriceID == "" {
		return nil, billing.ErrNothingToUpdate()
	}

	owned, err := s.ownedSubscription(ctx, email, req.SubscriptionID)
	if err != nil {
		return nil, err
	}

	change := billing.SubscriptionChange{CancelAtPeriodEnd: req.CancelAtPeriodEnd}
	if req.PriceID != "" {
		if len(owned.Items) == 0 {
			return nil, billing.ErrInvalidRequest().WithDetail("reason", "subscription has no items")
		}
		change.ItemID = owned.Items[0].ID
		change.PriceID = req.PriceID
	}

	return call(ctx, s.cfg.Timeout, func(ctx context.Context) (*billing.Subscription, error) {
		return s.provider.UpdateSubscription(ctx, req.SubscriptionID, change)
	})
}

func (s *BillingService) PaymentHistory(ctx context.Context, email string) ([]billing.Payment, error) {
	customerID, err := s.resolveCustomer(ctx, email, false)
	if err != nil {
		return nil, err
	}
	return call(ctx, s.cfg.Timeout, func(ctx context.Context) ([]billing.Payment, error) {
		return s.provider.ListPayments(ctx, customerID)
	})
}

// ============================================================================
// Helpers
// ============================================================================

// resolveCustomer returns the provider customer id for email. The id stored
// on the identity wins; otherwise the provider is searched and, when create
// is set, a customer is created. Newly found ids are written back.
func (s *BillingService) resolveCustomer(ctx context.Context, email string, create bool) (string, error) {
	email = iam.NormalizeEmail(email)

	var name string
	if s.users != nil {
		u, err := s.users.FindByEmail(ctx, email)
		switch {
		case err == nil:
			if u.ExternalBillingID != "" {
				return u.ExternalBillingID, nil
			}
			name = u.Name
		case !errx.IsCode(err, user.CodeUserNotFound):
			return "", err
		}
	}

	found, err := call(ctx, s.cfg.Timeout, func(ctx context.Context) (*billing.Customer, error) {
		return s.provider.FindCustomerByEmail(ctx, email)
	})
	if err != nil {
		return "", err
	}
	if found == nil {
		if !create {
			return "", billing.ErrCustomerNotFound().WithDetail("email", email)
		}
		found, err = call(ctx, s.cfg.Timeout, func(ctx context.Context) (*billing.Customer, error) {
			return s.provider.CreateCustomer(ctx, email, name)
		})
		if err != nil {
			return "", err
		}
	}

	s.remember(ctx, email, found.ID)
	return found.ID, nil
}

func (s *BillingService) remember(ctx context.Context, email, customerID string) {
	if s.users == nil {
		return
	}
	if _, err := s.users.Update(ctx, email, user.Patch{ExternalBillingID: &customerID}); err != nil &&
		!errx.IsCode(err, user.CodeUserNotFound) {
		logx.WithField("email", email).WithError(err).Warn("Could not store billing customer id")
	}
}

func (s *BillingService) subscriptions(ctx context.Context, customerID string) ([]billing.Subscription, error) {
	return call(ctx, s.cfg.Timeout, func(ctx context.Context) ([]billing.Subscription, error) {
		return s.provider.ListSubscriptions(ctx, customerID)
	})
}

func (s *BillingService) ownedSubscription(ctx context.Context, email, subscriptionID string) (*billing.Subscription, error) {
	customerID, err := s.resolveCustomer(ctx, email, false)
	if err != nil {
		return nil, err
	}
	subs, err := s.subscriptions(ctx, customerID)
	if err != nil {
		return nil, err
	}
	for i := range subs {
		if subs[i].ID == subscriptionID {
			return &subs[i], nil
		}
	}
	return nil, billing.ErrSubscriptionNotFound().WithDetail("subscription_id", subscriptionID)
}

// call runs fn under the configured timeout and reports an elapsed deadline
// as a provider error.
func call[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	v, err := asyncx.WithTimeout(ctx, timeout, fn)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && !errx.IsType(err, errx.TypeExternal) {
		var zero T
		return zero, billing.ErrProviderError().WithCause(err).WithDetail("reason", "timeout")
	}
	return v, err
}
