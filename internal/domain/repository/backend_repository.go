package repository

import (
	"context"

	"github.com/sangkips/investify-pos/internal/domain/entity"
)

// CatalogRepository fetches the product catalog for a stock location
type CatalogRepository interface {
	GetCatalog(ctx context.Context, locationID string) (*entity.Catalog, error)
}

// KitRepository resolves the declared components of a kit
type KitRepository interface {
	GetKitComponents(ctx context.Context, kitID string) ([]entity.KitComponent, error)
}

// StockValidator asks the backend whether recipes and kits can be fulfilled
type StockValidator interface {
	ValidateKitStock(ctx context.Context, kitID string, quantity float64, componentIDs []string) (*entity.StockCheck, error)
	ValidateCompoundStock(ctx context.Context, productID string, quantity float64) (*entity.StockCheck, error)
}

// DiscountRepository looks up the discount granted for a product and customer
type DiscountRepository interface {
	// CalculateDiscount returns nil when no discount applies
	CalculateDiscount(ctx context.Context, productID, customerID string) (*entity.DiscountOffer, error)
}

// CurrencyRepository lists currencies and their exchange rates
type CurrencyRepository interface {
	ListCurrencies(ctx context.Context) ([]entity.Currency, error)
}

// SaleRepository creates finalized sales
type SaleRepository interface {
	CreateSale(ctx context.Context, sale *entity.Sale) (*entity.SaleReceipt, error)
}

// WeightReader captures the weight of a scale-priced item
type WeightReader interface {
	ReadWeight(ctx context.Context, productID string) (float64, error)
}

// SaleEventPublisher announces completed sales to downstream consumers
type SaleEventPublisher interface {
	PublishSaleCompleted(ctx context.Context, event entity.SaleCompletedEvent) error
}
