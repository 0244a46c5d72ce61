package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sangkips/investify-pos/internal/application/pricing"
	"github.com/sangkips/investify-pos/internal/domain/entity"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/sangkips/investify-pos/internal/domain/repository"
	"github.com/sangkips/investify-pos/pkg/apperror"
)

// DefaultPendingTTL is how long an add waiting for a weight or a kit
// selection is kept
const DefaultPendingTTL = 10 * time.Minute

// SessionConfig holds the session tunables
type SessionConfig struct {
	MaxTickets     int
	AllowZeroStock bool
	LocationID     string
	PendingTTL     time.Duration
}

// SessionService owns the ticket session. Every mutation is serialized,
// recomputes totals and writes a full snapshot. Backend round trips happen
// outside the lock and their results are applied to the ticket captured
// when the request was made.
type SessionService struct {
	mu      sync.Mutex
	session *entity.Session
	pending map[uuid.UUID]*AddRequest

	repo        repository.SessionRepository
	resolver    *pricing.Resolver
	rate        *pricing.RateCell
	eligibility *EligibilityService
	catalog     *CatalogService
	discounts   repository.DiscountRepository
	cfg         SessionConfig
	logger      *zap.Logger
	now         func() time.Time
}

// NewSessionService restores the stored session, or starts a fresh one when
// nothing usable is stored
func NewSessionService(
	ctx context.Context,
	repo repository.SessionRepository,
	resolver *pricing.Resolver,
	rate *pricing.RateCell,
	eligibility *EligibilityService,
	catalog *CatalogService,
	discounts repository.DiscountRepository,
	cfg SessionConfig,
	logger *zap.Logger,
) *SessionService {
	if cfg.MaxTickets <= 0 || cfg.MaxTickets > entity.MaxTickets {
		cfg.MaxTickets = entity.MaxTickets
	}
	if cfg.PendingTTL <= 0 {
		cfg.PendingTTL = DefaultPendingTTL
	}

	s := &SessionService{
		pending:     make(map[uuid.UUID]*AddRequest),
		repo:        repo,
		resolver:    resolver,
		rate:        rate,
		eligibility: eligibility,
		catalog:     catalog,
		discounts:   discounts,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
	s.session = s.restore(ctx)
	return s
}

func (s *SessionService) restore(ctx context.Context) *entity.Session {
	session, err := s.repo.Load(ctx)
	switch {
	case err != nil:
		s.logger.Warn("discarding stored session", zap.Error(err))
		session = entity.NewSession()
	case session == nil:
		session = entity.NewSession()
	default:
		session.Repair()
	}
	session.ApplyLocation(s.cfg.LocationID)
	s.logger.Info("session ready",
		zap.Int("tickets", len(session.Tickets)),
		zap.Int("active", session.ActiveTicketIndex))
	return session
}

// TicketView is a ticket together with its derived totals
type TicketView struct {
	entity.Ticket
	Totals pricing.Totals `json:"totals"`
}

// PendingView describes an add that waits for user input
type PendingView struct {
	ID          uuid.UUID         `json:"id"`
	TicketID    uuid.UUID         `json:"ticket_id"`
	ProductID   string            `json:"product_id"`
	ProductName string            `json:"product_name"`
	Status      DecisionStatus    `json:"status"`
	Groups      []entity.KitGroup `json:"groups,omitempty"`
	ExpiresAt   time.Time         `json:"expires_at"`
}

// SessionState is the session as published to the UI
type SessionState struct {
	Tickets           []TicketView      `json:"tickets"`
	ActiveTicketIndex int               `json:"activeTicketIndex"`
	ExchangeRate      pricing.RateState `json:"exchange_rate"`
	Pending           []PendingView     `json:"pending"`
}

// Active returns the view of the active ticket
func (st *SessionState) Active() TicketView {
	return st.Tickets[st.ActiveTicketIndex]
}

// AddResult reports the outcome of an add request. Status is eligible when
// the line was added; otherwise Pending describes what the add waits for.
type AddResult struct {
	Status  DecisionStatus `json:"status"`
	Pending *PendingView   `json:"pending,omitempty"`
	State   *SessionState  `json:"state"`
}

// State returns the current session with freshly computed totals
func (s *SessionService) State(ctx context.Context) *SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Totals computes the totals of one ticket at the current rate
func (s *SessionService) Totals(ticketID uuid.UUID) (pricing.Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, _ := s.session.TicketByID(ticketID)
	if ticket == nil {
		return pricing.Totals{}, apperror.NewNotFoundError("Ticket")
	}
	return s.resolver.Compute(ticket, s.rate.Rate()), nil
}

// AddTicket opens a new ticket and activates it. Once the limit is reached
// the call leaves the session unchanged.
func (s *SessionService) AddTicket(ctx context.Context) *SessionState {
	return s.mutate(ctx, func(session *entity.Session) {
		if !session.AddTicket(s.cfg.MaxTickets) {
			s.logger.Debug("ticket limit reached", zap.Int("limit", s.cfg.MaxTickets))
		}
	})
}

// RemoveTicket closes the ticket at index. The sole ticket is cleared instead.
func (s *SessionService) RemoveTicket(ctx context.Context, index int) *SessionState {
	return s.mutate(ctx, func(session *entity.Session) {
		session.RemoveTicket(index)
	})
}

// SelectTicket activates the ticket at index
func (s *SessionService) SelectTicket(ctx context.Context, index int) *SessionState {
	return s.mutate(ctx, func(session *entity.Session) {
		session.SelectTicket(index)
	})
}

// ClearTicket drops the lines and customer of the active ticket
func (s *SessionService) ClearTicket(ctx context.Context) *SessionState {
	return s.mutate(ctx, func(session *entity.Session) {
		session.Active().Clear()
	})
}

// SelectLine moves the line cursor of the active ticket
func (s *SessionService) SelectLine(ctx context.Context, index int) *SessionState {
	return s.mutate(ctx, func(session *entity.Session) {
		session.Active().SelectLine(index)
	})
}

// RemoveLine deletes a line of the active ticket
func (s *SessionService) RemoveLine(ctx context.Context, index int) *SessionState {
	return s.mutate(ctx, func(session *entity.Session) {
		session.Active().RemoveLine(index)
	})
}

// UpdateLineDiscount sets a manual discount on a line of the active ticket.
// Percent values are entered as 0..100.
func (s *SessionService) UpdateLineDiscount(ctx context.Context, index int, value float64, discountType enum.DiscountType) *SessionState {
	discount := pricing.NormalizeDiscount(value, discountType)
	return s.mutate(ctx, func(session *entity.Session) {
		session.Active().UpdateLineDiscount(index, discount, discountType)
	})
}

// SetGlobalDiscount sets the ticket level discount of the active ticket.
// Percent values are entered as 0..100.
func (s *SessionService) SetGlobalDiscount(ctx context.Context, value float64, discountType enum.DiscountType) *SessionState {
	discount := pricing.NormalizeDiscount(value, discountType)
	return s.mutate(ctx, func(session *entity.Session) {
		session.Active().SetGlobalDiscount(discount, discountType)
	})
}

// SetNotes replaces the notes of the active ticket
func (s *SessionService) SetNotes(ctx context.Context, notes string) *SessionState {
	return s.mutate(ctx, func(session *entity.Session) {
		session.Active().Notes = notes
	})
}

// SetLocation sets the stock location on every ticket that lacks one
func (s *SessionService) SetLocation(ctx context.Context, locationID string) *SessionState {
	return s.mutate(ctx, func(session *entity.Session) {
		session.ApplyLocation(locationID)
	})
}

// SetExchangeRate overrides the exchange rate for every open ticket
func (s *SessionService) SetExchangeRate(ctx context.Context, rate float64) (*SessionState, error) {
	if err := s.rate.SetManual(rate); err != nil {
		return nil, apperror.NewBadRequestError(err.Error())
	}
	s.logger.Info("exchange rate overridden", zap.Float64("rate", rate))
	return s.State(ctx), nil
}

// ClearExchangeRateOverride returns to the refreshed exchange rate
func (s *SessionService) ClearExchangeRateOverride(ctx context.Context) *SessionState {
	s.rate.ClearManual()
	return s.State(ctx)
}

// SetCustomer selects the customer of the active ticket, or clears it when
// customer is nil. Automatic line discounts are looked up again for the new
// customer.
func (s *SessionService) SetCustomer(ctx context.Context, customer *entity.Customer) *SessionState {
	var ticketID uuid.UUID
	var productIDs []string
	s.mu.Lock()
	ticket := s.session.Active()
	ticket.SelectedCustomer = nil
	if customer != nil {
		c := *customer
		ticket.SelectedCustomer = &c
	}
	ticketID = ticket.ID
	for _, line := range ticket.Lines {
		if line.AutoDiscount || line.Discount == 0 {
			productIDs = append(productIDs, line.ProductID)
		}
	}
	s.persistLocked(ctx)
	s.mu.Unlock()

	offers := make(map[string]*entity.DiscountOffer, len(productIDs))
	if customer != nil {
		for _, productID := range productIDs {
			offers[productID] = s.lookupDiscount(ctx, productID, customer.ID)
		}
	}

	return s.mutate(ctx, func(session *entity.Session) {
		target, _ := session.TicketByID(ticketID)
		if target == nil {
			return
		}
		for i := range target.Lines {
			line := &target.Lines[i]
			offer, ok := offers[line.ProductID]
			if !ok && customer != nil {
				continue
			}
			if !line.AutoDiscount && line.Discount != 0 {
				continue
			}
			applyOffer(line, offer)
		}
	})
}

// RequestAdd asks to add quantity of a product to the active ticket. A nil
// quantity means one unit, or a weight for scale items. The add either
// completes, waits for a weight or a kit selection, or is rejected.
func (s *SessionService) RequestAdd(ctx context.Context, productID string, quantity *float64) (*AddResult, error) {
	s.mu.Lock()
	ticket := s.session.Active()
	req := &AddRequest{
		ID:              uuid.New(),
		TargetTicketID:  ticket.ID,
		TargetLineIndex: ticket.FindLine(productID),
		AllowZeroStock:  s.cfg.AllowZeroStock,
		CreatedAt:       s.now(),
	}
	if req.TargetLineIndex >= 0 {
		req.ExistingUnits = ticket.Lines[req.TargetLineIndex].Units
	}
	if ticket.SelectedCustomer != nil {
		req.CustomerID = ticket.SelectedCustomer.ID
	}
	locationID := ticket.LocationID
	if locationID == "" {
		locationID = s.cfg.LocationID
	}
	s.mu.Unlock()

	if quantity != nil {
		req.Quantity = *quantity
		req.HasQuantity = true
	}

	product, err := s.catalog.Product(ctx, locationID, productID)
	if err != nil {
		return nil, err
	}
	req.Product = *product

	return s.resolve(ctx, req, s.eligibility.Evaluate(ctx, req), nil)
}

// CompleteSelection finishes a kit add waiting for component choices.
// selections maps each group id to the chosen product id.
func (s *SessionService) CompleteSelection(ctx context.Context, requestID uuid.UUID, selections map[string]string) (*AddResult, error) {
	req, err := s.takePending(requestID)
	if err != nil {
		return nil, err
	}
	parked := *req
	if len(req.Groups) == 0 {
		s.park(&parked)
		return nil, apperror.NewConflictError("request is not waiting for a component selection")
	}
	return s.resolve(ctx, req, s.eligibility.FinalizeKit(ctx, req, selections), &parked)
}

// ProvideWeight supplies the captured weight of a scale item add
func (s *SessionService) ProvideWeight(ctx context.Context, requestID uuid.UUID, weight float64) (*AddResult, error) {
	req, err := s.takePending(requestID)
	if err != nil {
		return nil, err
	}
	parked := *req
	if req.HasQuantity {
		s.park(&parked)
		return nil, apperror.NewConflictError("request is not waiting for a weight")
	}
	if weight <= entity.QuantityEpsilon {
		s.park(&parked)
		return nil, apperror.NewUnprocessableError(entity.ErrInvalidQuantity.Error())
	}
	req.Quantity = weight
	req.HasQuantity = true
	return s.resolve(ctx, req, s.eligibility.Evaluate(ctx, req), &parked)
}

// CancelPending drops an add waiting for user input
func (s *SessionService) CancelPending(ctx context.Context, requestID uuid.UUID) (*SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[requestID]; !ok {
		return nil, apperror.NewNotFoundError("Pending request")
	}
	delete(s.pending, requestID)
	return s.stateLocked(), nil
}

// UpdateLineQuantity sets the units of a line on the active ticket. Raising
// the quantity checks eligibility again; a quantity at or below the minimum
// removes the line.
func (s *SessionService) UpdateLineQuantity(ctx context.Context, index int, quantity float64) (*SessionState, error) {
	s.mu.Lock()
	ticket := s.session.Active()
	if index < 0 || index >= len(ticket.Lines) {
		state := s.stateLocked()
		s.mu.Unlock()
		return state, nil
	}
	line := ticket.Lines[index]
	if quantity <= line.Units {
		ticket.UpdateLineQuantity(index, quantity)
		s.persistLocked(ctx)
		state := s.stateLocked()
		s.mu.Unlock()
		return state, nil
	}
	ticketID := ticket.ID
	locationID := ticket.LocationID
	if locationID == "" {
		locationID = s.cfg.LocationID
	}
	s.mu.Unlock()

	product, err := s.catalog.Product(ctx, locationID, line.ProductID)
	if err != nil {
		return nil, err
	}
	req := &AddRequest{
		ID:              uuid.New(),
		TargetTicketID:  ticketID,
		TargetLineIndex: index,
		Product:         *product,
		Quantity:        quantity,
		HasQuantity:     true,
		AllowZeroStock:  s.cfg.AllowZeroStock,
		Components:      line.SelectedComponents,
		CreatedAt:       s.now(),
	}
	if product.Kind == enum.ProductKindKit && req.Components == nil {
		req.Components = []entity.KitComponent{}
	}

	decision := s.eligibility.Evaluate(ctx, req)
	if decision.Status != DecisionEligible {
		return nil, decisionError(decision)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	target, _ := s.session.TicketByID(ticketID)
	if target == nil {
		return nil, apperror.NewNotFoundError("Ticket")
	}
	if index >= len(target.Lines) || target.Lines[index].ProductID != line.ProductID {
		return nil, apperror.NewConflictError("line changed while its stock was checked, try again")
	}
	target.UpdateLineQuantity(index, quantity)
	s.persistLocked(ctx)
	return s.stateLocked(), nil
}

// CheckoutTicket returns a copy of the active ticket with its totals
func (s *SessionService) CheckoutTicket() (*entity.Ticket, pricing.Totals) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket := s.session.Active()
	return ticket.Clone(), s.resolver.Compute(ticket, s.rate.Rate())
}

// CompleteTicket resets the ticket after its sale went through. The ticket
// may no longer be active by then.
func (s *SessionService) CompleteTicket(ctx context.Context, ticketID uuid.UUID) *SessionState {
	return s.mutate(ctx, func(session *entity.Session) {
		if ticket, _ := session.TicketByID(ticketID); ticket != nil {
			ticket.Reset()
		}
	})
}

// Rate returns the exchange rate cell shared by all tickets
func (s *SessionService) Rate() *pricing.RateCell {
	return s.rate
}

// resolve acts on an eligibility decision: the add is applied, parked until
// the user answers, or rejected. parked is the pending request the decision
// answers, if any; it goes back to the pending set when the user can still
// retry it.
func (s *SessionService) resolve(ctx context.Context, req *AddRequest, decision Decision, parked *AddRequest) (*AddResult, error) {
	switch decision.Status {
	case DecisionEligible:
		state, err := s.applyAdd(ctx, req)
		if err != nil {
			return nil, err
		}
		return &AddResult{Status: DecisionEligible, State: state}, nil

	case DecisionNeedsWeight, DecisionNeedsSelection:
		if decision.Reason != "" {
			s.park(parked)
			return nil, apperror.NewUnprocessableError(decision.Reason)
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		s.prunePendingLocked()
		s.pending[req.ID] = req
		view := s.pendingView(req)
		return &AddResult{Status: decision.Status, Pending: &view, State: s.stateLocked()}, nil

	default:
		if decision.Retryable {
			s.park(parked)
		}
		s.logger.Info("add rejected",
			zap.String("product_id", req.Product.ID),
			zap.String("reason", decision.Reason),
			zap.Bool("retryable", decision.Retryable))
		return nil, decisionError(decision)
	}
}

func (s *SessionService) applyAdd(ctx context.Context, req *AddRequest) (*SessionState, error) {
	var offer *entity.DiscountOffer
	if req.CustomerID != "" {
		offer = s.lookupDiscount(ctx, req.Product.ID, req.CustomerID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, _ := s.session.TicketByID(req.TargetTicketID)
	if ticket == nil {
		return nil, apperror.NewNotFoundError("Ticket")
	}

	line := entity.LineItem{
		ProductID:    req.Product.ID,
		ProductName:  req.Product.Name,
		Units:        req.Quantity,
		Price:        req.Product.Price,
		TaxID:        req.Product.TaxID,
		TaxRate:      req.Product.TaxRate,
		DiscountType: enum.DiscountTypePercent,
		Kind:         req.Product.Kind,
		IsScale:      req.Product.IsScale,
	}
	if req.Product.Kind == enum.ProductKindKit {
		line.SelectedComponents = req.Components
	}
	idx, err := ticket.AddLine(line)
	if err != nil {
		return nil, apperror.NewUnprocessableError(err.Error())
	}
	if offer != nil {
		existing := &ticket.Lines[idx]
		if existing.AutoDiscount || existing.Discount == 0 {
			applyOffer(existing, offer)
		}
	}

	s.logger.Debug("line added",
		zap.String("ticket_id", ticket.ID.String()),
		zap.String("product_id", line.ProductID),
		zap.Float64("units", line.Units))
	s.persistLocked(ctx)
	return s.stateLocked(), nil
}

// lookupDiscount degrades to no discount when the backend is unreachable
func (s *SessionService) lookupDiscount(ctx context.Context, productID, customerID string) *entity.DiscountOffer {
	if s.discounts == nil {
		return nil
	}
	offer, err := s.discounts.CalculateDiscount(ctx, productID, customerID)
	if err != nil {
		s.logger.Warn("discount lookup failed",
			zap.String("product_id", productID),
			zap.String("customer_id", customerID),
			zap.Error(err))
		return nil
	}
	return offer
}

func applyOffer(line *entity.LineItem, offer *entity.DiscountOffer) {
	if offer == nil || offer.Quantity <= 0 {
		line.Discount = 0
		line.DiscountType = enum.DiscountTypePercent
		line.AutoDiscount = false
		return
	}
	discountType := enum.DiscountTypeFixed
	if offer.Percentage {
		discountType = enum.DiscountTypePercent
	}
	line.Discount = pricing.NormalizeDiscount(offer.Quantity, discountType)
	line.DiscountType = discountType
	line.AutoDiscount = true
}

func decisionError(decision Decision) error {
	if decision.Retryable {
		return apperror.NewServiceUnavailableError(decision.Reason)
	}
	return apperror.NewUnprocessableError(decision.Reason)
}

func (s *SessionService) mutate(ctx context.Context, fn func(session *entity.Session)) *SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.session)
	s.persistLocked(ctx)
	return s.stateLocked()
}

// persistLocked writes the full snapshot. A failed write is logged and the
// in-memory change stands; the next mutation writes everything again.
func (s *SessionService) persistLocked(ctx context.Context) {
	if err := s.repo.Save(ctx, s.session); err != nil {
		s.logger.Error("failed to persist session", zap.Error(err))
	}
}

func (s *SessionService) stateLocked() *SessionState {
	rate := s.rate.Rate()
	s.session.SelectTicket(s.session.ActiveTicketIndex)

	state := &SessionState{
		Tickets:           make([]TicketView, len(s.session.Tickets)),
		ActiveTicketIndex: s.session.ActiveTicketIndex,
		ExchangeRate:      s.rate.State(),
		Pending:           []PendingView{},
	}
	for i, t := range s.session.Tickets {
		state.Tickets[i] = TicketView{
			Ticket: *t.Clone(),
			Totals: s.resolver.Compute(t, rate),
		}
	}

	s.prunePendingLocked()
	for _, req := range s.pending {
		state.Pending = append(state.Pending, s.pendingView(req))
	}
	sort.Slice(state.Pending, func(i, j int) bool {
		return state.Pending[i].ExpiresAt.Before(state.Pending[j].ExpiresAt)
	})
	return state
}

func (s *SessionService) pendingView(req *AddRequest) PendingView {
	status := DecisionNeedsSelection
	if !req.HasQuantity {
		status = DecisionNeedsWeight
	}
	return PendingView{
		ID:          req.ID,
		TicketID:    req.TargetTicketID,
		ProductID:   req.Product.ID,
		ProductName: req.Product.Name,
		Status:      status,
		Groups:      req.Groups,
		ExpiresAt:   req.CreatedAt.Add(s.cfg.PendingTTL),
	}
}

// takePending removes a pending request so that only one caller can answer
// it. Callers hand it back with park when the answer can be retried.
func (s *SessionService) takePending(id uuid.UUID) (*AddRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prunePendingLocked()
	req, ok := s.pending[id]
	if !ok {
		return nil, apperror.NewNotFoundError("Pending request")
	}
	delete(s.pending, id)
	return req, nil
}

func (s *SessionService) park(req *AddRequest) {
	if req == nil {
		return
	}
	s.mu.Lock()
	s.pending[req.ID] = req
	s.mu.Unlock()
}

func (s *SessionService) prunePendingLocked() {
	now := s.now()
	for id, req := range s.pending {
		if now.Sub(req.CreatedAt) > s.cfg.PendingTTL {
			delete(s.pending, id)
		}
	}
}
