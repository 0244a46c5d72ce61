package backend

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/sangkips/investify-pos/internal/domain/entity"
	"github.com/sangkips/investify-pos/internal/domain/repository"
)

var (
	_ repository.CatalogRepository  = (*Client)(nil)
	_ repository.KitRepository      = (*Client)(nil)
	_ repository.StockValidator     = (*Client)(nil)
	_ repository.DiscountRepository = (*Client)(nil)
	_ repository.CurrencyRepository = (*Client)(nil)
	_ repository.SaleRepository     = (*Client)(nil)
)

// GetCatalog fetches categories and products for a stock location
func (c *Client) GetCatalog(ctx context.Context, locationID string) (*entity.Catalog, error) {
	query := url.Values{}
	if locationID != "" {
		query.Set("locationId", locationID)
	}

	var dto catalogDTO
	if err := c.get(ctx, "catalog", query, &dto); err != nil {
		return nil, err
	}

	catalog := &entity.Catalog{
		LocationID: locationID,
		Categories: make([]entity.Category, 0, len(dto.Categories)),
		Products:   make([]entity.Product, 0, len(dto.Products)),
	}
	for _, cat := range dto.Categories {
		catalog.Categories = append(catalog.Categories, entity.Category{ID: string(cat.ID), Name: cat.Name})
	}
	for _, p := range dto.Products {
		if p.ID == "" {
			continue
		}
		catalog.Products = append(catalog.Products, p.toEntity())
	}
	return catalog, nil
}

// GetKitComponents returns the declared components of a kit in backend order
func (c *Client) GetKitComponents(ctx context.Context, kitID string) ([]entity.KitComponent, error) {
	var dto kitComponentsDTO
	if err := c.get(ctx, "product-kits/"+url.PathEscape(kitID), nil, &dto); err != nil {
		return nil, err
	}
	components := make([]entity.KitComponent, 0, len(dto))
	for _, item := range dto {
		components = append(components, item.toEntity())
	}
	return components, nil
}

// ValidateKitStock checks whether quantity kits built from componentIDs can be sold
func (c *Client) ValidateKitStock(ctx context.Context, kitID string, quantity float64, componentIDs []string) (*entity.StockCheck, error) {
	query := url.Values{}
	query.Set("kitId", kitID)
	query.Set("quantity", strconv.FormatFloat(quantity, 'f', -1, 64))
	if len(componentIDs) > 0 {
		query.Set("components", strings.Join(componentIDs, ","))
	}

	var dto stockCheckDTO
	if err := c.get(ctx, "product-kits/validate/stock", query, &dto); err != nil {
		return nil, err
	}
	return dto.toEntity(), nil
}

// ValidateCompoundStock checks whether the recipe of productID covers quantity units
func (c *Client) ValidateCompoundStock(ctx context.Context, productID string, quantity float64) (*entity.StockCheck, error) {
	query := url.Values{}
	query.Set("productId", productID)
	query.Set("quantity", strconv.FormatFloat(quantity, 'f', -1, 64))

	var dto stockCheckDTO
	if err := c.get(ctx, "compound-products/validate/stock", query, &dto); err != nil {
		return nil, err
	}
	return dto.toEntity(), nil
}

// CalculateDiscount returns the discount for a product and customer, or nil
func (c *Client) CalculateDiscount(ctx context.Context, productID, customerID string) (*entity.DiscountOffer, error) {
	var dto *discountDTO
	if err := c.post(ctx, "discounts/calculate", discountRequestDTO{ProductID: productID, CustomerID: customerID}, &dto); err != nil {
		return nil, err
	}
	if dto == nil || dto.Quantity <= 0 {
		return nil, nil
	}
	return &entity.DiscountOffer{Quantity: float64(dto.Quantity), Percentage: bool(dto.Percentage)}, nil
}

// ListCurrencies returns every currency the backend knows
func (c *Client) ListCurrencies(ctx context.Context) ([]entity.Currency, error) {
	var dto []currencyDTO
	if err := c.get(ctx, "currencies", nil, &dto); err != nil {
		return nil, err
	}
	currencies := make([]entity.Currency, 0, len(dto))
	for _, cur := range dto {
		currencies = append(currencies, entity.Currency{
			Code:         strings.TrimSpace(cur.Code),
			ExchangeRate: float64(cur.ExchangeRate),
			IsBase:       bool(cur.IsBase),
		})
	}
	return currencies, nil
}

// CreateSale posts a finalized sale
func (c *Client) CreateSale(ctx context.Context, sale *entity.Sale) (*entity.SaleReceipt, error) {
	var dto saleReceiptDTO
	if err := c.post(ctx, "sales", sale, &dto); err != nil {
		return nil, err
	}
	return &entity.SaleReceipt{ID: string(dto.ID), Number: string(dto.Number)}, nil
}
