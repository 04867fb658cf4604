package billingstripe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Abraxas-365/quizcraft/pkg/billing"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// featuresKey is the product metadata key holding the JSON encoded feature list.
const featuresKey = "features"

// StripeProvider implements billing.Provider on the Stripe API.
type StripeProvider struct {
	api *client.API
}

var _ billing.Provider = (*StripeProvider)(nil)

func NewStripeProvider(secretKey string) *StripeProvider {
	return &StripeProvider{api: client.New(secretKey, nil)}
}

// NewWithBackends lets callers point the client at a different API host.
func NewWithBackends(secretKey string, backends *stripe.Backends) *StripeProvider {
	return &StripeProvider{api: client.New(secretKey, backends)}
}

// ============================================================================
// Customers
// ============================================================================

func (p *StripeProvider) FindCustomerByEmail(ctx context.Context, email string) (*billing.Customer, error) {
	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Limit = stripe.Int64(1)
	params.Context = ctx

	it := p.api.Customers.List(params)
	if it.Next() {
		return toCustomer(it.Customer()), nil
	}
	if err := it.Err(); err != nil {
		return nil, mapError(err)
	}
	return nil, nil
}

func (p *StripeProvider) CreateCustomer(ctx context.Context, email, name string) (*billing.Customer, error) {
	params := &stripe.CustomerParams{Email: stripe.String(email)}
	if name != "" {
		params.Name = stripe.String(name)
	}
	params.Context = ctx

	c, err := p.api.Customers.New(params)
	if err != nil {
		return nil, mapError(err)
	}
	return toCustomer(c), nil
}

// ============================================================================
// Payment methods
// ============================================================================

func (p *StripeProvider) AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) (*billing.PaymentMethod, error) {
	params := &stripe.PaymentMethodAttachParams{Customer: stripe.String(customerID)}
	params.Context = ctx

	pm, err := p.api.PaymentMethods.Attach(paymentMethodID, params)
	if err != nil {
		return nil, mapError(err)
	}
	return toPaymentMethod(pm), nil
}

func (p *StripeProvider) SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error {
	params := &stripe.CustomerParams{
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	}
	params.Context = ctx

	if _, err := p.api.Customers.Update(customerID, params); err != nil {
		return mapError(err)
	}
	return nil
}

func (p *StripeProvider) ListCardPaymentMethods(ctx context.Context, customerID string) ([]billing.PaymentMethod, error) {
	params := &stripe.PaymentMethodListParams{
		Customer: stripe.String(customerID),
		Type:     stripe.String(string(stripe.PaymentMethodTypeCard)),
	}
	params.Context = ctx

	out := []billing.PaymentMethod{}
	it := p.api.PaymentMethods.List(params)
	for it.Next() {
		out = append(out, *toPaymentMethod(it.PaymentMethod()))
	}
	if err := it.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// ============================================================================
// Products and prices
// ============================================================================

func (p *StripeProvider) CreateProduct(ctx context.Context, in billing.ProductInput) (*billing.Product, error) {
	params := &stripe.ProductParams{
		Name:        stripe.String(in.Name),
		Description: stripe.String(in.Description),
		Images:      stripe.StringSlice(in.Images),
	}
	if err := setFeatures(params, in.Features); err != nil {
		return nil, err
	}
	params.Context = ctx

	prod, err := p.api.Products.New(params)
	if err != nil {
		return nil, mapError(err)
	}
	return toProduct(prod), nil
}

func (p *StripeProvider) UpdateProduct(ctx context.Context, productID string, in billing.ProductUpdate) (*billing.Product, error) {
	params := &stripe.ProductParams{
		Name:        in.Name,
		Description: in.Description,
	}
	if in.Images != nil {
		params.Images = stripe.StringSlice(in.Images)
	}
	if in.Features != nil {
		if err := setFeatures(params, in.Features); err != nil {
			return nil, err
		}
	}
	params.Context = ctx

	prod, err := p.api.Products.Update(productID, params)
	if err != nil {
		return nil, mapError(err)
	}
	return toProduct(prod), nil
}

func (p *StripeProvider) SetProductActive(ctx context.Context, productID string, active bool) (*billing.Product, error) {
	params := &stripe.ProductParams{Active: stripe.Bool(active)}
	params.Context = ctx

	prod, err := p.api.Products.Update(productID, params)
	if err != nil {
		return nil, mapError(err)
	}
	return toProduct(prod), nil
}

func (p *StripeProvider) ListProducts(ctx context.Context) ([]billing.Product, error) {
	params := &stripe.ProductListParams{}
	params.Context = ctx

	out := []billing.Product{}
	it := p.api.Products.List(params)
	for it.Next() {
		out = append(out, *toProduct(it.Product()))
	}
	if err := it.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (p *StripeProvider) CreatePrice(ctx context.Context, productID string, in billing.PriceInput) (*billing.Price, error) {
	params := &stripe.PriceParams{
		Product:    stripe.String(productID),
		UnitAmount: stripe.Int64(in.UnitAmount),
		Currency:   stripe.String(in.Currency),
		Recurring: &stripe.PriceRecurringParams{
			Interval: stripe.String(in.Interval),
		},
	}
	params.Context = ctx

	pr, err := p.api.Prices.New(params)
	if err != nil {
		return nil, mapError(err)
	}
	return toPrice(pr), nil
}

func (p *StripeProvider) ListPrices(ctx context.Context, productID string) ([]billing.Price, error) {
	params := &stripe.PriceListParams{Product: stripe.String(productID)}
	params.Context = ctx

	out := []billing.Price{}
	it := p.api.Prices.List(params)
	for it.Next() {
		out = append(out, *toPrice(it.Price()))
	}
	if err := it.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (p *StripeProvider) SetPriceActive(ctx context.Context, priceID string, active bool) error {
	params := &stripe.PriceParams{Active: stripe.Bool(active)}
	params.Context = ctx

	if _, err := p.api.Prices.Update(priceID, params); err != nil {
		return mapError(err)
	}
	return nil
}

// ============================================================================
// Checkout and subscriptions
// ============================================================================

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, in billing.CheckoutInput) (*billing.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(in.CustomerID),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(in.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
	}
	params.Context = ctx

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, mapError(err)
	}
	return &billing.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (p *StripeProvider) ListSubscriptions(ctx context.Context, customerID string) ([]billing.Subscription, error) {
	params := &stripe.SubscriptionListParams{Customer: stripe.String(customerID)}
	params.Context = ctx

	out := []billing.Subscription{}
	it := p.api.Subscriptions.List(params)
	for it.Next() {
		out = append(out, *toSubscription(it.Subscription()))
	}
	if err := it.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (p *StripeProvider) CancelSubscription(ctx context.Context, subscriptionID string) (*billing.Subscription, error) {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx

	s, err := p.api.Subscriptions.Cancel(subscriptionID, params)
	if err != nil {
		return nil, mapError(err)
	}
	return toSubscription(s), nil
}

func (p *StripeProvider) UpdateSubscription(ctx context.Context, subscriptionID string, change billing.SubscriptionChange) (*billing.Subscription, error) {
	params := &stripe.SubscriptionParams{CancelAtPeriodEnd: change.CancelAtPeriodEnd}
	if change.PriceID != "" {
		params.Items = []*stripe.SubscriptionItemsParams{
			{ID: stripe.String(change.ItemID), Price: stripe.String(change.PriceID)},
		}
		params.ProrationBehavior = stripe.String("create_prorations")
	}
	params.Context = ctx

	s, err := p.api.Subscriptions.Update(subscriptionID, params)
	if err != nil {
		return nil, mapError(err)
	}
	return toSubscription(s), nil
}

func (p *StripeProvider) ListPayments(ctx context.Context, customerID string) ([]billing.Payment, error) {
	params := &stripe.PaymentIntentListParams{Customer: stripe.String(customerID)}
	params.Context = ctx

	out := []billing.Payment{}
	it := p.api.PaymentIntents.List(params)
	for it.Next() {
		pi := it.PaymentIntent()
		out = append(out, billing.Payment{
			ID:          pi.ID,
			Amount:      pi.Amount,
			Currency:    string(pi.Currency),
			Status:      string(pi.Status),
			Description: pi.Description,
			CreatedAt:   time.Unix(pi.Created, 0).UTC(),
		})
	}
	if err := it.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// ============================================================================
// Mapping
// ============================================================================

func setFeatures(params *stripe.ProductParams, features []string) error {
	if features == nil {
		features = []string{}
	}
	raw, err := json.Marshal(features)
	if err != nil {
		return billing.ErrInvalidRequest().WithCause(err)
	}
	params.AddMetadata(featuresKey, string(raw))
	return nil
}

func toCustomer(c *stripe.Customer) *billing.Customer {
	return &billing.Customer{ID: c.ID, Email: c.Email, Name: c.Name}
}

func toProduct(p *stripe.Product) *billing.Product {
	out := &billing.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Images:      p.Images,
		Active:      p.Active,
	}
	if raw, ok := p.Metadata[featuresKey]; ok && raw != "" {
		_ = json.Unmarshal([]byte(raw), &out.Features)
	}
	return out
}

func toPrice(pr *stripe.Price) *billing.Price {
	out := &billing.Price{
		ID:         pr.ID,
		UnitAmount: pr.UnitAmount,
		Currency:   string(pr.Currency),
		Active:     pr.Active,
	}
	if pr.Product != nil {
		out.ProductID = pr.Product.ID
	}
	if pr.Recurring != nil {
		out.Interval = string(pr.Recurring.Interval)
	}
	return out
}

func toPaymentMethod(pm *stripe.PaymentMethod) *billing.PaymentMethod {
	out := &billing.PaymentMethod{ID: pm.ID, Type: string(pm.Type)}
	if pm.Card != nil {
		out.Brand = string(pm.Card.Brand)
		out.Last4 = pm.Card.Last4
		out.ExpMonth = pm.Card.ExpMonth
		out.ExpYear = pm.Card.ExpYear
	}
	return out
}

func toSubscription(s *stripe.Subscription) *billing.Subscription {
	out := &billing.Subscription{
		ID:                s.ID,
		Status:            string(s.Status),
		CancelAtPeriodEnd: s.CancelAtPeriodEnd,
		Items:             []billing.SubscriptionItem{},
	}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	if s.CurrentPeriodEnd > 0 {
		out.CurrentPeriodEnd = time.Unix(s.CurrentPeriodEnd, 0).UTC()
	}
	if s.Items != nil {
		for _, item := range s.Items.Data {
			si := billing.SubscriptionItem{ID: item.ID, Quantity: item.Quantity}
			if item.Price != nil {
				si.PriceID = item.Price.ID
			}
			out.Items = append(out.Items, si)
		}
	}
	return out
}

// mapError translates Stripe API failures into billing codes. The Stripe
// message is kept as a detail since it is meant for API consumers.
func mapError(err error) error {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return billing.ErrProviderError().WithCause(err)
	}

	switch {
	case se.HTTPStatusCode == http.StatusNotFound || se.Code == stripe.ErrorCodeResourceMissing:
		return billing.ErrResourceNotFound().WithCause(err).WithDetail("provider_message", se.Msg)
	case se.HTTPStatusCode == http.StatusBadRequest || se.HTTPStatusCode == http.StatusPaymentRequired:
		e := billing.ErrInvalidRequest().WithCause(err).WithDetail("provider_message", se.Msg)
		if se.Param != "" {
			e.WithDetail("param", se.Param)
		}
		return e
	default:
		return billing.ErrProviderError().WithCause(err)
	}
}
