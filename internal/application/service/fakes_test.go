package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/sangkips/investify-pos/internal/application/pricing"
	"github.com/sangkips/investify-pos/internal/domain/entity"
	"github.com/sangkips/investify-pos/internal/domain/enum"
)

type memorySessions struct {
	mu      sync.Mutex
	stored  *entity.Session
	loadErr error
	saveErr error
	saves   int
}

func (m *memorySessions) Load(ctx context.Context) (*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.stored == nil {
		return nil, nil
	}
	return m.stored.Clone(), nil
}

func (m *memorySessions) Save(ctx context.Context, session *entity.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.stored = session.Clone()
	return nil
}

type fakeCatalog struct {
	products []entity.Product
	err      error
}

func (f *fakeCatalog) GetCatalog(ctx context.Context, locationID string) (*entity.Catalog, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &entity.Catalog{LocationID: locationID, Products: f.products}, nil
}

type fakeStock struct {
	kit      func(kitID string, quantity float64, componentIDs []string) (*entity.StockCheck, error)
	compound func(productID string, quantity float64) (*entity.StockCheck, error)

	mu       sync.Mutex
	kitCalls [][]string
}

func (f *fakeStock) ValidateKitStock(ctx context.Context, kitID string, quantity float64, componentIDs []string) (*entity.StockCheck, error) {
	f.mu.Lock()
	f.kitCalls = append(f.kitCalls, componentIDs)
	f.mu.Unlock()
	if f.kit == nil {
		return &entity.StockCheck{HasStock: true}, nil
	}
	return f.kit(kitID, quantity, componentIDs)
}

func (f *fakeStock) ValidateCompoundStock(ctx context.Context, productID string, quantity float64) (*entity.StockCheck, error) {
	if f.compound == nil {
		return &entity.StockCheck{HasStock: true}, nil
	}
	return f.compound(productID, quantity)
}

type fakeKits struct {
	components map[string][]entity.KitComponent
	err        error
}

func (f *fakeKits) GetKitComponents(ctx context.Context, kitID string) ([]entity.KitComponent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.components[kitID], nil
}

type fakeDiscounts struct {
	offers map[string]*entity.DiscountOffer
	err    error
}

func (f *fakeDiscounts) CalculateDiscount(ctx context.Context, productID, customerID string) (*entity.DiscountOffer, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.offers[productID+"/"+customerID], nil
}

type fakeScale struct {
	weight float64
	err    error
}

func (f *fakeScale) ReadWeight(ctx context.Context, productID string) (float64, error) {
	return f.weight, f.err
}

type fixture struct {
	sessions  *memorySessions
	stock     *fakeStock
	kits      *fakeKits
	discounts *fakeDiscounts
	rate      *pricing.RateCell
	svc       *SessionService
}

func testProducts() []entity.Product {
	return []entity.Product{
		{ID: "soda", Name: "Soda", Price: 10, TaxRate: 0.16, Stock: 5, Kind: enum.ProductKindSimple},
		{ID: "repair", Name: "Repair", Price: 25, Kind: enum.ProductKindService},
		{ID: "burger", Name: "Burger", Price: 8, Kind: enum.ProductKindCompound},
		{ID: "combo", Name: "Combo", Price: 12, Kind: enum.ProductKindKit},
		{ID: "cheese", Name: "Cheese", Price: 4, Stock: 100, Kind: enum.ProductKindSimple, IsScale: true},
	}
}

func comboComponents() []entity.KitComponent {
	return []entity.KitComponent{
		{ProductID: "bun", ProductName: "Bun", Quantity: 1},
		{ProductID: "cola", ProductName: "Cola", Quantity: 1, GroupID: "drink", GroupName: "Drink"},
		{ProductID: "water", ProductName: "Water", Quantity: 1, GroupID: "drink", GroupName: "Drink"},
		{ProductID: "fries", ProductName: "Fries", Quantity: 1, GroupID: "side", GroupName: "Side"},
		{ProductID: "salad", ProductName: "Salad", Quantity: 1, GroupID: "side", GroupName: "Side"},
	}
}

func newFixture(sessions *memorySessions) *fixture {
	if sessions == nil {
		sessions = &memorySessions{}
	}
	f := &fixture{
		sessions:  sessions,
		stock:     &fakeStock{},
		kits:      &fakeKits{components: map[string][]entity.KitComponent{"combo": comboComponents()}},
		discounts: &fakeDiscounts{offers: map[string]*entity.DiscountOffer{}},
		rate:      pricing.NewRateCell(1),
	}
	logger := zap.NewNop()
	catalog := NewCatalogService(&fakeCatalog{products: testProducts()}, 0, logger)
	eligibility := NewEligibilityService(f.stock, f.kits, nil, logger)
	f.svc = NewSessionService(context.Background(), sessions, pricing.NewResolver(2), f.rate,
		eligibility, catalog, f.discounts, SessionConfig{LocationID: "main"}, logger)
	return f
}

func qty(v float64) *float64 {
	return &v
}
