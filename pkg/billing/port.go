package billing

import "context"

// Provider is the payment collaborator. Implementations translate their
// own failures into this package's error codes.
type Provider interface {
	// FindCustomerByEmail returns nil, nil when no customer exists.
	FindCustomerByEmail(ctx context.Context, email string) (*Customer, error)
	CreateCustomer(ctx context.Context, email, name string) (*Customer, error)

	AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) (*PaymentMethod, error)
	SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error
	ListCardPaymentMethods(ctx context.Context, customerID string) ([]PaymentMethod, error)

	CreateProduct(ctx context.Context, in ProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, productID string, in ProductUpdate) (*Product, error)
	SetProductActive(ctx context.Context, productID string, active bool) (*Product, error)
	ListProducts(ctx context.Context) ([]Product, error)

	CreatePrice(ctx context.Context, productID string, in PriceInput) (*Price, error)
	ListPrices(ctx context.Context, productID string) ([]Price, error)
	SetPriceActive(ctx context.Context, priceID string, active bool) error

	CreateCheckoutSession(ctx context.Context, in CheckoutInput) (*CheckoutSession, error)

	ListSubscriptions(ctx context.Context, customerID string) ([]Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
	UpdateSubscription(ctx context.Context, subscriptionID string, change SubscriptionChange) (*Subscription, error)

	ListPayments(ctx context.Context, customerID string) ([]Payment, error)
}
