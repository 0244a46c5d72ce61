package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sangkips/investify-pos/internal/domain/entity"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/sangkips/investify-pos/internal/domain/repository"
)

// DecisionStatus is the outcome of an eligibility check
type DecisionStatus int

const (
	DecisionEligible DecisionStatus = iota
	DecisionNeedsWeight
	DecisionNeedsSelection
	DecisionIneligible
)

var decisionNames = map[DecisionStatus]string{
	DecisionEligible:       "eligible",
	DecisionNeedsWeight:    "needs_weight",
	DecisionNeedsSelection: "needs_selection",
	DecisionIneligible:     "ineligible",
}

func (d DecisionStatus) String() string {
	if name, ok := decisionNames[d]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON renders the status by name
func (d DecisionStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// AddRequest captures everything an add needs at the moment it is requested.
// The eventual line is applied to TargetTicketID whatever ticket is active by
// then.
type AddRequest struct {
	ID              uuid.UUID
	TargetTicketID  uuid.UUID
	TargetLineIndex int
	Product         entity.Product
	Quantity        float64
	HasQuantity     bool
	ExistingUnits   float64
	AllowZeroStock  bool
	CustomerID      string
	Components      []entity.KitComponent
	Groups          []entity.KitGroup
	CreatedAt       time.Time
}

// Units is the line quantity the add results in, which is what stock is
// checked against.
func (r *AddRequest) Units() float64 {
	return r.ExistingUnits + r.Quantity
}

// Decision is the verdict on an AddRequest
type Decision struct {
	Status    DecisionStatus
	Reason    string
	Retryable bool
}

func eligible() Decision {
	return Decision{Status: DecisionEligible}
}

func ineligible(format string, args ...interface{}) Decision {
	return Decision{Status: DecisionIneligible, Reason: fmt.Sprintf(format, args...)}
}

func retryable(reason string) Decision {
	return Decision{Status: DecisionIneligible, Reason: reason, Retryable: true}
}

// EligibilityService decides whether a product may be added to a ticket
type EligibilityService struct {
	stock  repository.StockValidator
	kits   repository.KitRepository
	scale  repository.WeightReader
	logger *zap.Logger
}

// NewEligibilityService creates a new eligibility service. scale may be nil,
// in which case weighed items wait for a weight to be provided.
func NewEligibilityService(stock repository.StockValidator, kits repository.KitRepository, scale repository.WeightReader, logger *zap.Logger) *EligibilityService {
	return &EligibilityService{stock: stock, kits: kits, scale: scale, logger: logger}
}

// Evaluate runs the eligibility rules for req. It may fill in req.Quantity
// from the scale and req.Components/req.Groups from the kit definition.
func (s *EligibilityService) Evaluate(ctx context.Context, req *AddRequest) Decision {
	if !req.HasQuantity {
		if !req.Product.IsScale {
			req.Quantity = 1
			req.HasQuantity = true
		} else if !s.readWeight(ctx, req) {
			return Decision{Status: DecisionNeedsWeight}
		}
	}

	if req.Quantity <= entity.QuantityEpsilon {
		return ineligible("%s", entity.ErrInvalidQuantity.Error())
	}

	switch req.Product.Kind {
	case enum.ProductKindService:
		return eligible()
	case enum.ProductKindCompound:
		return s.checkCompound(ctx, req)
	case enum.ProductKindKit:
		return s.checkKit(ctx, req)
	default:
		return s.checkSimple(req)
	}
}

func (s *EligibilityService) readWeight(ctx context.Context, req *AddRequest) bool {
	if s.scale == nil {
		return false
	}
	weight, err := s.scale.ReadWeight(ctx, req.Product.ID)
	if err != nil {
		s.logger.Warn("scale read failed, waiting for manual weight",
			zap.String("product_id", req.Product.ID), zap.Error(err))
		return false
	}
	req.Quantity = weight
	req.HasQuantity = true
	return true
}

func (s *EligibilityService) checkSimple(req *AddRequest) Decision {
	if req.AllowZeroStock || req.Units() <= req.Product.Stock {
		return eligible()
	}
	return ineligible("insufficient stock for %s: requested %s, available %s",
		req.Product.Name, formatQuantity(req.Units()), formatQuantity(req.Product.Stock))
}

func (s *EligibilityService) checkCompound(ctx context.Context, req *AddRequest) Decision {
	check, err := s.stock.ValidateCompoundStock(ctx, req.Product.ID, req.Units())
	if err != nil {
		s.logger.Warn("compound stock validation failed",
			zap.String("product_id", req.Product.ID), zap.Error(err))
		return retryable(fmt.Sprintf("could not validate stock for %s, try again", req.Product.Name))
	}
	if !check.HasStock {
		return ineligible("%s", stockReason(check, "insufficient ingredients for "+req.Product.Name))
	}
	return eligible()
}

func (s *EligibilityService) checkKit(ctx context.Context, req *AddRequest) Decision {
	if req.Components == nil {
		components, err := s.kits.GetKitComponents(ctx, req.Product.ID)
		if err != nil {
			s.logger.Warn("kit components lookup failed",
				zap.String("product_id", req.Product.ID), zap.Error(err))
			return retryable(fmt.Sprintf("could not load components of %s, try again", req.Product.Name))
		}
		if len(components) == 0 {
			return ineligible("kit has no components configured")
		}
		fixed, groups := entity.SplitKitComponents(components)
		req.Components = fixed
		req.Groups = groups
		if req.Components == nil {
			req.Components = []entity.KitComponent{}
		}
	}
	if len(req.Groups) > 0 {
		return Decision{Status: DecisionNeedsSelection}
	}
	return s.validateKit(ctx, req)
}

// FinalizeKit applies one selection per group to a kit request that is
// waiting for selections. selections maps group id to the chosen product
// id. An incomplete or invalid selection keeps the request waiting.
func (s *EligibilityService) FinalizeKit(ctx context.Context, req *AddRequest, selections map[string]string) Decision {
	if len(req.Groups) == 0 {
		return ineligible("no component selection is pending for %s", req.Product.Name)
	}

	known := make(map[string]bool, len(req.Groups))
	chosen := make([]entity.KitComponent, 0, len(req.Groups))
	for _, group := range req.Groups {
		known[group.ID] = true
		productID := selections[group.ID]
		if productID == "" {
			return Decision{Status: DecisionNeedsSelection, Reason: fmt.Sprintf("select one option for %s", group.Name)}
		}
		option, ok := group.Option(productID)
		if !ok {
			return Decision{Status: DecisionNeedsSelection, Reason: fmt.Sprintf("%s is not an option of %s", productID, group.Name)}
		}
		chosen = append(chosen, option)
	}
	for groupID := range selections {
		if !known[groupID] {
			return Decision{Status: DecisionNeedsSelection, Reason: fmt.Sprintf("unknown component group %s", groupID)}
		}
	}

	components := make([]entity.KitComponent, 0, len(req.Components)+len(chosen))
	components = append(components, req.Components...)
	components = append(components, chosen...)

	decision := s.validateKit(ctx, &AddRequest{
		Product:       req.Product,
		Quantity:      req.Quantity,
		ExistingUnits: req.ExistingUnits,
		Components:    components,
	})
	if decision.Status == DecisionEligible {
		req.Components = components
		req.Groups = nil
	}
	return decision
}

func (s *EligibilityService) validateKit(ctx context.Context, req *AddRequest) Decision {
	ids := make([]string, len(req.Components))
	for i, c := range req.Components {
		ids[i] = c.ProductID
	}
	check, err := s.stock.ValidateKitStock(ctx, req.Product.ID, req.Units(), ids)
	if err != nil {
		s.logger.Warn("kit stock validation failed",
			zap.String("product_id", req.Product.ID), zap.Error(err))
		return retryable(fmt.Sprintf("could not validate stock for %s, try again", req.Product.Name))
	}
	if !check.HasStock {
		return ineligible("%s", stockReason(check, "insufficient stock for kit "+req.Product.Name))
	}
	return eligible()
}

// stockReason echoes the backend explanation, falling back when it sent none
func stockReason(check *entity.StockCheck, fallback string) string {
	reason := strings.TrimSpace(check.Message)
	if reason == "" {
		reason = fallback
	}
	if len(check.Details) > 0 {
		reason += ": " + strings.Join(check.Details, "; ")
	}
	return reason
}

func formatQuantity(q float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", q), "0"), ".")
}
