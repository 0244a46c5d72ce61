package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sangkips/investify-pos/internal/application/pricing"
	"github.com/sangkips/investify-pos/internal/domain/entity"
	"github.com/sangkips/investify-pos/internal/domain/repository"
	"github.com/sangkips/investify-pos/pkg/apperror"
)

// CheckoutService turns the active ticket into a backend sale
type CheckoutService struct {
	sessions *SessionService
	sales    repository.SaleRepository
	events   repository.SaleEventPublisher
	logger   *zap.Logger
}

// NewCheckoutService creates a new checkout service. events may be nil.
func NewCheckoutService(sessions *SessionService, sales repository.SaleRepository, events repository.SaleEventPublisher, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{sessions: sessions, sales: sales, events: events, logger: logger}
}

// backendRejection is implemented by backend errors that carry a final
// verdict, such as a sale refused for a business rule.
type backendRejection interface {
	error
	Temporary() bool
	Reason() string
}

// CheckoutInput represents the checkout input
type CheckoutInput struct {
	Payments []entity.Payment
}

// CheckoutResult is the created sale and the session after the ticket reset
type CheckoutResult struct {
	Receipt *entity.SaleReceipt `json:"receipt"`
	Sale    *entity.Sale        `json:"sale"`
	State   *SessionState       `json:"state"`
}

// Checkout posts the active ticket as a sale. On success the ticket is reset
// and a sale completed event is published.
func (s *CheckoutService) Checkout(ctx context.Context, input *CheckoutInput) (*CheckoutResult, error) {
	ticket, totals := s.sessions.CheckoutTicket()
	if ticket.IsEmpty() {
		return nil, apperror.NewBadRequestError("Ticket is empty")
	}
	if len(input.Payments) == 0 {
		return nil, apperror.NewBadRequestError("At least one payment is required")
	}

	sale := BuildSale(ticket, totals, input.Payments)
	receipt, err := s.sales.CreateSale(ctx, sale)
	if err != nil {
		s.logger.Error("sale creation failed", zap.String("ticket_id", ticket.ID.String()), zap.Error(err))
		if apperror.IsAppError(err) {
			return nil, err
		}
		var rejected backendRejection
		if errors.As(err, &rejected) && !rejected.Temporary() {
			return nil, apperror.Wrap(err, apperror.ErrUnprocessable.Code, rejected.Reason())
		}
		return nil, apperror.Wrap(err, apperror.ErrServiceUnavailable.Code, "Sale could not be created, try again")
	}

	state := s.sessions.CompleteTicket(ctx, ticket.ID)
	s.logger.Info("sale created",
		zap.String("sale_id", receipt.ID),
		zap.String("ticket_id", ticket.ID.String()),
		zap.Float64("total", sale.Total))

	s.publish(ctx, sale, receipt)

	return &CheckoutResult{Receipt: receipt, Sale: sale, State: state}, nil
}

// publish is best effort: the sale already exists in the backend
func (s *CheckoutService) publish(ctx context.Context, sale *entity.Sale, receipt *entity.SaleReceipt) {
	if s.events == nil {
		return
	}
	event := entity.SaleCompletedEvent{
		SaleID:       receipt.ID,
		SaleNumber:   receipt.Number,
		TicketID:     sale.TicketID.String(),
		LocationID:   sale.LocationID,
		LineCount:    len(sale.Lines),
		Total:        sale.Total,
		TotalDisplay: sale.TotalDisplay,
		ExchangeRate: sale.ExchangeRate,
		CompletedAt:  time.Now().UTC(),
	}
	if sale.CustomerID != nil {
		event.CustomerID = *sale.CustomerID
	}
	if err := s.events.PublishSaleCompleted(ctx, event); err != nil {
		s.logger.Warn("failed to publish sale completed event", zap.String("sale_id", receipt.ID), zap.Error(err))
	}
}

// BuildSale converts a ticket and its totals into the backend sale payload
func BuildSale(ticket *entity.Ticket, totals pricing.Totals, payments []entity.Payment) *entity.Sale {
	sale := &entity.Sale{
		TicketID:           ticket.ID,
		Lines:              make([]entity.SaleLine, len(ticket.Lines)),
		Payments:           payments,
		Subtotal:           totals.Base.Net.InexactFloat64(),
		Tax:                totals.Base.Tax.InexactFloat64(),
		GlobalDiscount:     ticket.GlobalDiscount,
		GlobalDiscountType: ticket.GlobalDiscountType.String(),
		Total:              totals.Base.Total.InexactFloat64(),
		TotalDisplay:       totals.Display.Total.InexactFloat64(),
		ExchangeRate:       totals.ExchangeRate.InexactFloat64(),
		LocationID:         ticket.LocationID,
		Notes:              ticket.Notes,
	}
	if ticket.SelectedCustomer != nil {
		id := ticket.SelectedCustomer.ID
		sale.CustomerID = &id
	}
	for i, line := range ticket.Lines {
		sl := entity.SaleLine{
			ProductID:          line.ProductID,
			ProductName:        line.ProductName,
			Units:              line.Units,
			Price:              line.Price,
			TaxID:              line.TaxID,
			TaxRate:            line.TaxRate,
			Discount:           line.Discount,
			DiscountType:       line.DiscountType.String(),
			SelectedComponents: line.SelectedComponents,
		}
		if i < len(totals.Lines) {
			sl.EffectivePrice = totals.Lines[i].EffectivePrice.InexactFloat64()
			sl.Subtotal = totals.Lines[i].Subtotal.InexactFloat64()
		}
		sale.Lines[i] = sl
	}
	return sale
}
