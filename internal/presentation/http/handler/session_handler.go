package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sangkips/investify-pos/internal/application/service"
	"github.com/sangkips/investify-pos/internal/domain/entity"
	"github.com/sangkips/investify-pos/internal/presentation/http/dto/request"
	"github.com/sangkips/investify-pos/internal/presentation/http/dto/response"
)

// SessionHandler handles ticket session HTTP requests
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// GetState returns every ticket with its totals
func (h *SessionHandler) GetState(c *gin.Context) {
	response.OK(c, "Session retrieved successfully", h.sessions.State(c.Request.Context()))
}

// AddTicket opens a new ticket and makes it active
func (h *SessionHandler) AddTicket(c *gin.Context) {
	response.Created(c, "Ticket created successfully", h.sessions.AddTicket(c.Request.Context()))
}

// SelectTicket makes the ticket at :index active
func (h *SessionHandler) SelectTicket(c *gin.Context) {
	index, err := GetIndex(c, "index")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Ticket selected", h.sessions.SelectTicket(c.Request.Context(), index))
}

// RemoveTicket deletes the ticket at :index
func (h *SessionHandler) RemoveTicket(c *gin.Context) {
	index, err := GetIndex(c, "index")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Ticket removed", h.sessions.RemoveTicket(c.Request.Context(), index))
}

// ClearTicket empties the active ticket
func (h *SessionHandler) ClearTicket(c *gin.Context) {
	response.OK(c, "Ticket cleared", h.sessions.ClearTicket(c.Request.Context()))
}

// AddProduct adds a product to the active ticket. Adds that wait for a
// weight or a kit selection answer 202 with the pending request.
func (h *SessionHandler) AddProduct(c *gin.Context) {
	var req request.AddProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	result, err := h.sessions.RequestAdd(c.Request.Context(), req.ProductID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondAdd(c, result)
}

func respondAdd(c *gin.Context, result *service.AddResult) {
	switch result.Status {
	case service.DecisionNeedsWeight:
		response.Accepted(c, "Waiting for weight", result)
	case service.DecisionNeedsSelection:
		response.Accepted(c, "Waiting for component selection", result)
	default:
		response.Created(c, "Product added successfully", result)
	}
}

// SelectLine selects the line at :index of the active ticket
func (h *SessionHandler) SelectLine(c *gin.Context) {
	index, err := GetIndex(c, "index")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Line selected", h.sessions.SelectLine(c.Request.Context(), index))
}

// RemoveLine deletes the line at :index of the active ticket
func (h *SessionHandler) RemoveLine(c *gin.Context) {
	index, err := GetIndex(c, "index")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Line removed", h.sessions.RemoveLine(c.Request.Context(), index))
}

// UpdateQuantity sets the units of the line at :index
func (h *SessionHandler) UpdateQuantity(c *gin.Context) {
	index, err := GetIndex(c, "index")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	state, err := h.sessions.UpdateLineQuantity(c.Request.Context(), index, *req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Quantity updated", state)
}

// UpdateLineDiscount sets the discount of the line at :index
func (h *SessionHandler) UpdateLineDiscount(c *gin.Context) {
	index, err := GetIndex(c, "index")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}
	discountType, err := GetDiscountType(req.Type)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Line discount updated", h.sessions.UpdateLineDiscount(c.Request.Context(), index, req.Value, discountType))
}

// SetGlobalDiscount sets the discount of the whole active ticket
func (h *SessionHandler) SetGlobalDiscount(c *gin.Context) {
	var req request.DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}
	discountType, err := GetDiscountType(req.Type)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Ticket discount updated", h.sessions.SetGlobalDiscount(c.Request.Context(), req.Value, discountType))
}

// SetNotes replaces the notes of the active ticket
func (h *SessionHandler) SetNotes(c *gin.Context) {
	var req request.NotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}
	response.OK(c, "Notes updated", h.sessions.SetNotes(c.Request.Context(), req.Notes))
}

// SetCustomer selects the customer of the active ticket
func (h *SessionHandler) SetCustomer(c *gin.Context) {
	var req request.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	var customer *entity.Customer
	if req.ID != "" {
		customer = &entity.Customer{ID: req.ID, Name: req.Name}
	}
	response.OK(c, "Customer updated", h.sessions.SetCustomer(c.Request.Context(), customer))
}

// ClearCustomer removes the customer of the active ticket
func (h *SessionHandler) ClearCustomer(c *gin.Context) {
	response.OK(c, "Customer removed", h.sessions.SetCustomer(c.Request.Context(), nil))
}

// SetLocation sets the stock location of the active ticket
func (h *SessionHandler) SetLocation(c *gin.Context) {
	var req request.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}
	response.OK(c, "Location updated", h.sessions.SetLocation(c.Request.Context(), req.LocationID))
}

// CompleteSelection finishes a kit add waiting for component choices
func (h *SessionHandler) CompleteSelection(c *gin.Context) {
	id, err := GetUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	result, err := h.sessions.CompleteSelection(c.Request.Context(), id, req.Selections)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondAdd(c, result)
}

// ProvideWeight finishes a scale item add waiting for its weight
func (h *SessionHandler) ProvideWeight(c *gin.Context) {
	id, err := GetUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.WeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	result, err := h.sessions.ProvideWeight(c.Request.Context(), id, req.Weight)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondAdd(c, result)
}

// CancelPending drops a pending add
func (h *SessionHandler) CancelPending(c *gin.Context) {
	id, err := GetUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	state, err := h.sessions.CancelPending(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Pending request cancelled", state)
}
