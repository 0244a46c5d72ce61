package request

import "github.com/sangkips/investify-pos/internal/domain/entity"

// AddProductRequest represents a request to add a product to the active ticket
type AddProductRequest struct {
	ProductID string   `json:"product_id" binding:"required"`
	Quantity  *float64 `json:"quantity" binding:"omitempty,gt=0"`
}

// UpdateQuantityRequest represents a line quantity change. Zero removes the line.
type UpdateQuantityRequest struct {
	Quantity *float64 `json:"quantity" binding:"required"`
}

// DiscountRequest represents a line or ticket discount. Percent values are
// given as 0..100.
type DiscountRequest struct {
	Value float64 `json:"value" binding:"min=0"`
	Type  string  `json:"type" binding:"omitempty,oneof=PERCENT FIXED FIXED_VES percent fixed fixed_ves"`
}

// NotesRequest represents the ticket notes
type NotesRequest struct {
	Notes string `json:"notes" binding:"max=1000"`
}

// CustomerRequest selects the ticket customer. An empty id clears it.
type CustomerRequest struct {
	ID   string `json:"id"`
	Name string `json:"name" binding:"max=255"`
}

// LocationRequest sets the stock location of the active ticket
type LocationRequest struct {
	LocationID string `json:"location_id" binding:"required"`
}

// SelectionRequest completes a kit add with one product per component group
type SelectionRequest struct {
	Selections map[string]string `json:"selections" binding:"required"`
}

// WeightRequest supplies the weight of a scale item
type WeightRequest struct {
	Weight float64 `json:"weight" binding:"required,gt=0"`
}

// ExchangeRateRequest sets a manual exchange rate override
type ExchangeRateRequest struct {
	Rate float64 `json:"rate" binding:"required,gt=0"`
}

// CheckoutRequest represents the payments tendered for the active ticket
type CheckoutRequest struct {
	Payments []PaymentRequest `json:"payments" binding:"required,min=1,dive"`
}

// PaymentRequest represents one tender
type PaymentRequest struct {
	Method    string  `json:"method" binding:"required"`
	Amount    float64 `json:"amount" binding:"gt=0"`
	Currency  string  `json:"currency"`
	Reference string  `json:"reference"`
}

// ToPayments converts the request into domain payments
func (r *CheckoutRequest) ToPayments() []entity.Payment {
	payments := make([]entity.Payment, len(r.Payments))
	for i, p := range r.Payments {
		payments[i] = entity.Payment{
			Method:    p.Method,
			Amount:    p.Amount,
			Currency:  p.Currency,
			Reference: p.Reference,
		}
	}
	return payments
}
