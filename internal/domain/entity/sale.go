package entity

import (
	"time"

	"github.com/google/uuid"
)

// Payment is one tender applied to a sale
type Payment struct {
	Method    string  `json:"method"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency,omitempty"`
	Reference string  `json:"reference,omitempty"`
}

// SaleLine is a ticket line as sent to the backend, with resolved prices
type SaleLine struct {
	ProductID          string         `json:"product_id"`
	ProductName        string         `json:"product_name"`
	Units              float64        `json:"units"`
	Price              float64        `json:"price"`
	EffectivePrice     float64        `json:"effective_price"`
	TaxID              string         `json:"taxid"`
	TaxRate            float64        `json:"tax_rate"`
	Discount           float64        `json:"discount"`
	DiscountType       string         `json:"discount_type"`
	Subtotal           float64        `json:"subtotal"`
	SelectedComponents []KitComponent `json:"selected_components,omitempty"`
}

// Sale is the finalized transaction posted to the backend
type Sale struct {
	TicketID           uuid.UUID  `json:"ticket_id"`
	Lines              []SaleLine `json:"lines"`
	Payments           []Payment  `json:"payments"`
	Subtotal           float64    `json:"subtotal"`
	Tax                float64    `json:"tax"`
	GlobalDiscount     float64    `json:"global_discount"`
	GlobalDiscountType string     `json:"global_discount_type"`
	Total              float64    `json:"total"`
	TotalDisplay       float64    `json:"total_display"`
	ExchangeRate       float64    `json:"exchange_rate"`
	CustomerID         *string    `json:"customer_id"`
	LocationID         string     `json:"location_id"`
	Notes              string     `json:"notes"`
}

// SaleReceipt is the backend acknowledgement of a created sale
type SaleReceipt struct {
	ID     string `json:"id"`
	Number string `json:"number,omitempty"`
}

// SaleCompletedEvent is published after the backend accepts a sale
type SaleCompletedEvent struct {
	SaleID       string    `json:"sale_id"`
	SaleNumber   string    `json:"sale_number,omitempty"`
	TicketID     string    `json:"ticket_id"`
	CustomerID   string    `json:"customer_id,omitempty"`
	LocationID   string    `json:"location_id,omitempty"`
	LineCount    int       `json:"line_count"`
	Total        float64   `json:"total"`
	TotalDisplay float64   `json:"total_display"`
	ExchangeRate float64   `json:"exchange_rate"`
	CompletedAt  time.Time `json:"completed_at"`
}
