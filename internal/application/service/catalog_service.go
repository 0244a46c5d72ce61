package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sangkips/investify-pos/internal/domain/entity"
	"github.com/sangkips/investify-pos/internal/domain/repository"
	"github.com/sangkips/investify-pos/pkg/apperror"
	"github.com/sangkips/investify-pos/pkg/pagination"
)

// CatalogService caches the backend catalog per stock location
type CatalogService struct {
	repo   repository.CatalogRepository
	ttl    time.Duration
	logger *zap.Logger

	mu     sync.RWMutex
	caches map[string]*catalogCache
}

type catalogCache struct {
	catalog  *entity.Catalog
	byID     map[string]int
	loadedAt time.Time
}

// NewCatalogService creates a new catalog service. A non-positive ttl keeps
// a loaded catalog until Refresh is called.
func NewCatalogService(repo repository.CatalogRepository, ttl time.Duration, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		repo:   repo,
		ttl:    ttl,
		logger: logger,
		caches: make(map[string]*catalogCache),
	}
}

// ProductFilter narrows a product listing
type ProductFilter struct {
	Search     string
	CategoryID string
}

// Catalog returns the catalog for locationID, loading it on first use
func (s *CatalogService) Catalog(ctx context.Context, locationID string) (*entity.Catalog, error) {
	cache, err := s.cache(ctx, locationID)
	if err != nil {
		return nil, err
	}
	return cache.catalog, nil
}

// Refresh reloads the catalog for locationID from the backend
func (s *CatalogService) Refresh(ctx context.Context, locationID string) (*entity.Catalog, error) {
	catalog, err := s.repo.GetCatalog(ctx, locationID)
	if err != nil {
		s.logger.Warn("catalog refresh failed", zap.String("location_id", locationID), zap.Error(err))
		return nil, apperror.Wrap(err, apperror.ErrServiceUnavailable.Code, "Catalog is unavailable")
	}

	cache := &catalogCache{
		catalog:  catalog,
		byID:     make(map[string]int, len(catalog.Products)),
		loadedAt: time.Now(),
	}
	for i, p := range catalog.Products {
		cache.byID[p.ID] = i
	}

	s.mu.Lock()
	s.caches[locationID] = cache
	s.mu.Unlock()

	s.logger.Info("catalog loaded",
		zap.String("location_id", locationID),
		zap.Int("products", len(catalog.Products)),
		zap.Int("categories", len(catalog.Categories)))
	return catalog, nil
}

// Product returns a single product. A product missing from the cached
// catalog triggers one reload before it is reported as not found.
func (s *CatalogService) Product(ctx context.Context, locationID, productID string) (*entity.Product, error) {
	cache, err := s.cache(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if p, ok := cache.product(productID); ok {
		return p, nil
	}

	if _, err := s.Refresh(ctx, locationID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	cache = s.caches[locationID]
	s.mu.RUnlock()
	if p, ok := cache.product(productID); ok {
		return p, nil
	}
	return nil, apperror.NewNotFoundError("Product")
}

// ListProducts lists cached products matching filter, one page at a time
func (s *CatalogService) ListProducts(ctx context.Context, locationID string, filter ProductFilter, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Product], error) {
	catalog, err := s.Catalog(ctx, locationID)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	products := make([]entity.Product, 0, len(catalog.Products))
	for _, p := range catalog.Products {
		if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Code), search) {
			continue
		}
		products = append(products, p)
	}

	return pagination.Slice(products, params), nil
}

func (s *CatalogService) cache(ctx context.Context, locationID string) (*catalogCache, error) {
	s.mu.RLock()
	cache, ok := s.caches[locationID]
	s.mu.RUnlock()
	if ok && (s.ttl <= 0 || time.Since(cache.loadedAt) < s.ttl) {
		return cache, nil
	}

	if _, err := s.Refresh(ctx, locationID); err != nil {
		if ok {
			// keep serving the stale catalog while the backend is down
			return cache, nil
		}
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.caches[locationID], nil
}

func (c *catalogCache) product(id string) (*entity.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	p := c.catalog.Products[i]
	return &p, true
}
