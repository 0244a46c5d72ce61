package pricing

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidRate = errors.New("exchange rate must be greater than zero")

// RateState describes the exchange rate currently in effect
type RateState struct {
	Rate      decimal.Decimal `json:"rate"`
	Refreshed decimal.Decimal `json:"refreshed"`
	Manual    bool            `json:"manual"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// RateCell is the exchange rate shared by every open ticket. A manual rate
// wins over refreshed rates until it is cleared.
type RateCell struct {
	mu        sync.RWMutex
	refreshed decimal.Decimal
	manual    *decimal.Decimal
	updatedAt time.Time
}

// NewRateCell creates a cell holding initial, or 1 when initial is not positive
func NewRateCell(initial float64) *RateCell {
	rate := one
	if validRate(initial) {
		rate = decimal.NewFromFloat(initial)
	}
	return &RateCell{refreshed: rate, updatedAt: time.Now()}
}

func validRate(rate float64) bool {
	return rate > 0 && !math.IsInf(rate, 0) && !math.IsNaN(rate)
}

// Rate returns the rate in effect
func (c *RateCell) Rate() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.manual != nil {
		return *c.manual
	}
	return c.refreshed
}

// State returns a copy of the cell contents
func (c *RateCell) State() RateState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	state := RateState{Rate: c.refreshed, Refreshed: c.refreshed, UpdatedAt: c.updatedAt}
	if c.manual != nil {
		state.Rate = *c.manual
		state.Manual = true
	}
	return state
}

// SetManual overrides the refreshed rate
func (c *RateCell) SetManual(rate float64) error {
	if !validRate(rate) {
		return ErrInvalidRate
	}
	d := decimal.NewFromFloat(rate)
	c.mu.Lock()
	c.manual = &d
	c.updatedAt = time.Now()
	c.mu.Unlock()
	return nil
}

// ClearManual drops the override and falls back to the last refreshed rate
func (c *RateCell) ClearManual() {
	c.mu.Lock()
	c.manual = nil
	c.updatedAt = time.Now()
	c.mu.Unlock()
}

// Refresh records a rate from the currency feed. It reports whether the rate
// in effect changed, which is never the case while a manual rate is set.
func (c *RateCell) Refresh(rate float64) (bool, error) {
	if !validRate(rate) {
		return false, ErrInvalidRate
	}
	d := decimal.NewFromFloat(rate)
	c.mu.Lock()
	defer c.mu.Unlock()
	changed := c.manual == nil && !c.refreshed.Equal(d)
	c.refreshed = d
	c.updatedAt = time.Now()
	return changed, nil
}
