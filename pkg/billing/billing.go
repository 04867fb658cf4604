package billing

import (
	"time"
)

// Defaults applied to a subscription product when the caller leaves a field out.
const (
	DefaultProductName        = "Subscription Product"
	DefaultProductDescription = "Subscription product description"
	DefaultProductImage       = "https://example.com/default-image.jpg"
	DefaultUnitAmount         = 1500
	DefaultCurrency           = "usd"
	DefaultInterval           = "year"
)

type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Images      []string `json:"images,omitempty"`
	Features    []string `json:"features,omitempty"`
	Active      bool     `json:"active"`
}

// Price is a recurring price of a product. Amounts are in the currency's
// minor unit.
type Price struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	UnitAmount int64  `json:"unit_amount"`
	Currency   string `json:"currency"`
	Interval   string `json:"interval,omitempty"`
	Active     bool   `json:"active"`
}

type ProductWithPrices struct {
	Product Product `json:"product"`
	Prices  []Price `json:"prices"`
}

type PaymentMethod struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Brand    string `json:"brand,omitempty"`
	Last4    string `json:"last4,omitempty"`
	ExpMonth int64  `json:"exp_month,omitempty"`
	ExpYear  int64  `json:"exp_year,omitempty"`
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type SubscriptionItem struct {
	ID       string `json:"id"`
	PriceID  string `json:"price_id"`
	Quantity int64  `json:"quantity"`
}

type Subscription struct {
	ID                string             `json:"id"`
	CustomerID        string             `json:"customer_id"`
	Status            string             `json:"status"`
	CancelAtPeriodEnd bool               `json:"cancel_at_period_end"`
	CurrentPeriodEnd  time.Time          `json:"current_period_end"`
	Items             []SubscriptionItem `json:"items"`
}

// Payment is one entry of a customer's payment history.
type Payment struct {
	ID          string    `json:"id"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ============================================================================
// Provider inputs
// ============================================================================

type ProductInput struct {
	Name        string
	Description string
	Images      []string
	Features    []string
}

// ProductUpdate changes only the non-nil fields.
type ProductUpdate struct {
	Name        *string
	Description *string
	Images      []string
	Features    []string
}

// IsEmpty reports whether the update would change nothing.
func (u ProductUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Images == nil && u.Features == nil
}

type PriceInput struct {
	UnitAmount int64
	Currency   string
	Interval   string
}

type CheckoutInput struct {
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
}

// SubscriptionChange toggles cancel-at-period-end and/or swaps the price of
// one subscription item.
type SubscriptionChange struct {
	CancelAtPeriodEnd *bool
	ItemID            string
	PriceID           string
}
