package billing

// CreateProductRequest creates a product with one recurring price. Zero
// values fall back to the package defaults.
type CreateProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Features    []string `json:"features"`
	UnitAmount  int64    `json:"unit_amount" validate:"min=0"`
	Currency    string   `json:"currency" validate:"omitempty,len=3"`
	Interval    string   `json:"interval" validate:"omitempty,oneof=day week month year"`
}

func (r *CreateProductRequest) ApplyDefaults() {
	if r.Name == "" {
		r.Name = DefaultProductName
	}
	if r.Description == "" {
		r.Description = DefaultProductDescription
	}
	if len(r.Images) == 0 {
		r.Images = []string{DefaultProductImage}
	}
	if r.UnitAmount == 0 {
		r.UnitAmount = DefaultUnitAmount
	}
	if r.Currency == "" {
		r.Currency = DefaultCurrency
	}
	if r.Interval == "" {
		r.Interval = DefaultInterval
	}
}

type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Images      []string `json:"images"`
	Features    []string `json:"features"`
}

type AddPaymentMethodRequest struct {
	PaymentMethod struct {
		ID string `json:"id" validate:"required"`
	} `json:"paymentMethod"`
}

type CheckoutRequest struct {
	PriceID string `json:"priceId" validate:"required"`
}

type CancelSubscriptionRequest struct {
	SubscriptionID string `json:"subscriptionIdToCancel" validate:"required"`
}

type UpdateSubscriptionRequest struct {
	SubscriptionID    string `json:"subscriptionId" validate:"required"`
	CancelAtPeriodEnd *bool  `json:"cancelAtPeriodEnd"`
	PriceID           string `json:"priceId"`
}

// CreatedProduct is returned by product creation.
type CreatedProduct struct {
	Product Product `json:"product"`
	Price   Price   `json:"price"`
}
