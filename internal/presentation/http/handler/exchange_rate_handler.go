package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sangkips/investify-pos/internal/application/service"
	"github.com/sangkips/investify-pos/internal/presentation/http/dto/request"
	"github.com/sangkips/investify-pos/internal/presentation/http/dto/response"
)

// ExchangeRateHandler handles exchange rate HTTP requests
type ExchangeRateHandler struct {
	sessions   *service.SessionService
	currencies *service.CurrencyService
}

// NewExchangeRateHandler creates a new exchange rate handler
func NewExchangeRateHandler(sessions *service.SessionService, currencies *service.CurrencyService) *ExchangeRateHandler {
	return &ExchangeRateHandler{sessions: sessions, currencies: currencies}
}

// Get returns the rate in effect and where it comes from
func (h *ExchangeRateHandler) Get(c *gin.Context) {
	response.OK(c, "Exchange rate retrieved successfully", h.sessions.Rate().State())
}

// Set overrides the backend rate until the override is cleared
func (h *ExchangeRateHandler) Set(c *gin.Context) {
	var req request.ExchangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	state, err := h.sessions.SetExchangeRate(c.Request.Context(), req.Rate)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Exchange rate updated", state)
}

// Clear drops the manual override and returns to the backend rate
func (h *ExchangeRateHandler) Clear(c *gin.Context) {
	response.OK(c, "Exchange rate override cleared", h.sessions.ClearExchangeRateOverride(c.Request.Context()))
}

// Refresh fetches the rate from the backend now
func (h *ExchangeRateHandler) Refresh(c *gin.Context) {
	if _, err := h.currencies.Refresh(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Exchange rate refreshed", h.sessions.State(c.Request.Context()))
}
