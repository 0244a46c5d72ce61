package entity

import (
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/domain/enum"
)

// QuantityEpsilon is the smallest quantity a line may hold. Anything at or
// below it removes the line.
const QuantityEpsilon = 0.0001

var (
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrLineNotFound    = errors.New("line not found")
)

// Customer is the customer selected on a ticket
type Customer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LineItem is one product line on a ticket. Price is always in the base
// currency; Discount is stored normalized (percent as 0..1).
type LineItem struct {
	ProductID          string            `json:"product_id"`
	ProductName        string            `json:"product_name"`
	Units              float64           `json:"units"`
	Price              float64           `json:"price"`
	TaxID              string            `json:"taxid"`
	TaxRate            float64           `json:"tax_rate"`
	Discount           float64           `json:"discount"`
	DiscountType       enum.DiscountType `json:"discount_type"`
	AutoDiscount       bool              `json:"auto_discount,omitempty"`
	Kind               enum.ProductKind  `json:"product_kind"`
	IsScale            bool              `json:"is_scale,omitempty"`
	SelectedComponents []KitComponent    `json:"selectedComponents,omitempty"`
}

// Ticket is one open sale
type Ticket struct {
	ID                 uuid.UUID         `json:"id"`
	Lines              []LineItem        `json:"lines"`
	SelectedCustomer   *Customer         `json:"selectedCustomer,omitempty"`
	SelectedLineIndex  int               `json:"selectedLineIndex"`
	Notes              string            `json:"notes"`
	GlobalDiscount     float64           `json:"globalDiscount"`
	GlobalDiscountType enum.DiscountType `json:"globalDiscountType"`
	LocationID         string            `json:"locationId,omitempty"`
}

// NewTicket creates an empty ticket with a fresh identifier
func NewTicket() *Ticket {
	return &Ticket{
		ID:                 uuid.New(),
		Lines:              []LineItem{},
		SelectedLineIndex:  -1,
		GlobalDiscountType: enum.DiscountTypePercent,
	}
}

// IsEmpty reports whether the ticket has no lines
func (t Ticket) IsEmpty() bool {
	return len(t.Lines) == 0
}

// FindLine returns the index of the line holding productID, or -1
func (t *Ticket) FindLine(productID string) int {
	for i := range t.Lines {
		if t.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddLine appends line, or merges its units into an existing line for the
// same product. The cursor moves to the affected line.
func (t *Ticket) AddLine(line LineItem) (int, error) {
	if line.Units <= QuantityEpsilon {
		return -1, ErrInvalidQuantity
	}

	if idx := t.FindLine(line.ProductID); idx >= 0 {
		t.Lines[idx].Units += line.Units
		t.SelectedLineIndex = idx
		return idx, nil
	}

	t.Lines = append(t.Lines, line)
	t.SelectedLineIndex = len(t.Lines) - 1
	return t.SelectedLineIndex, nil
}

// RemoveLine deletes the line at index. Out of range indexes are ignored.
func (t *Ticket) RemoveLine(index int) bool {
	if index < 0 || index >= len(t.Lines) {
		return false
	}
	t.Lines = append(t.Lines[:index], t.Lines[index+1:]...)
	t.clampSelection()
	return true
}

// UpdateLineQuantity sets the units of a line, removing it when qty is at or
// below QuantityEpsilon.
func (t *Ticket) UpdateLineQuantity(index int, qty float64) bool {
	if index < 0 || index >= len(t.Lines) {
		return false
	}
	if qty <= QuantityEpsilon {
		return t.RemoveLine(index)
	}
	t.Lines[index].Units = qty
	return true
}

// UpdateLineDiscount stores an already normalized discount on a line
func (t *Ticket) UpdateLineDiscount(index int, discount float64, discountType enum.DiscountType) bool {
	if index < 0 || index >= len(t.Lines) {
		return false
	}
	t.Lines[index].Discount = discount
	t.Lines[index].DiscountType = discountType
	t.Lines[index].AutoDiscount = false
	return true
}

// SetGlobalDiscount stores an already normalized ticket-level discount
func (t *Ticket) SetGlobalDiscount(discount float64, discountType enum.DiscountType) {
	t.GlobalDiscount = discount
	t.GlobalDiscountType = discountType
}

// SelectLine moves the cursor, clamped to the line range
func (t *Ticket) SelectLine(index int) {
	t.SelectedLineIndex = index
	t.clampSelection()
}

// Clear drops lines, customer and selection. Notes and the global discount
// are kept.
func (t *Ticket) Clear() {
	t.Lines = []LineItem{}
	t.SelectedCustomer = nil
	t.SelectedLineIndex = -1
}

// Reset returns the ticket to its freshly created state, keeping its
// identifier and location.
func (t *Ticket) Reset() {
	t.Clear()
	t.Notes = ""
	t.GlobalDiscount = 0
	t.GlobalDiscountType = enum.DiscountTypePercent
}

// Repair restores invariants on a ticket decoded from storage
func (t *Ticket) Repair() {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	lines := make([]LineItem, 0, len(t.Lines))
	for _, line := range t.Lines {
		if line.Units > QuantityEpsilon {
			lines = append(lines, line)
		}
	}
	t.Lines = lines
	t.clampSelection()
}

func (t *Ticket) clampSelection() {
	if len(t.Lines) == 0 {
		t.SelectedLineIndex = -1
		return
	}
	if t.SelectedLineIndex >= len(t.Lines) {
		t.SelectedLineIndex = len(t.Lines) - 1
	}
	if t.SelectedLineIndex < -1 {
		t.SelectedLineIndex = -1
	}
}

// Clone returns a deep copy safe to hand outside the session lock
func (t *Ticket) Clone() *Ticket {
	c := *t
	c.Lines = make([]LineItem, len(t.Lines))
	for i, line := range t.Lines {
		c.Lines[i] = line
		if line.SelectedComponents != nil {
			c.Lines[i].SelectedComponents = append([]KitComponent(nil), line.SelectedComponents...)
		}
	}
	if t.SelectedCustomer != nil {
		customer := *t.SelectedCustomer
		c.SelectedCustomer = &customer
	}
	return &c
}
