package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/holocommerce/storefront/internal/cache"
	"github.com/holocommerce/storefront/internal/domain"
	"github.com/holocommerce/storefront/internal/repository"
	log "github.com/sirupsen/logrus"
)

// FallbackCategories is served by ListCategories while the store is unavailable.
var FallbackCategories = []string{"Watches", "Wearables", "Tech", "Wallets", "Jewelry", "Eyewear"}

// DegradeRecorder counts reads answered with a default result.
type DegradeRecorder interface {
	DegradedResponse(operation string)
}

type CatalogService struct {
	products repository.ProductRepository
	cache    cache.CategoryCache
	recorder DegradeRecorder
	logger   *log.Entry
}

func NewCatalogService(products repository.ProductRepository, categoryCache cache.CategoryCache, recorder DegradeRecorder, logger *log.Entry) *CatalogService {
	return &CatalogService{
		products: products,
		cache:    categoryCache,
		recorder: recorder,
		logger:   logger.WithField("component", "catalog"),
	}
}

func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	items, err := s.products.Find(ctx, q.Filter())
	if errors.Is(err, repository.ErrStoreUnavailable) {
		s.degraded("list_products", err)
		return &ProductPage{Items: []*domain.Product{}, Total: 0}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	if items == nil {
		items = []*domain.Product{}
	}
	return &ProductPage{Items: items, Total: len(items)}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		return nil, ErrNotFound
	case errors.Is(err, repository.ErrStoreUnavailable):
		s.degraded("get_product", err)
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]string, error) {
	cached, err := s.cache.GetCategories(ctx)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.WithError(err).Warn("category cache get failed")
	}

	categories, err := s.products.DistinctCategories(ctx)
	if errors.Is(err, repository.ErrStoreUnavailable) {
		s.degraded("list_categories", err)
		return append([]string(nil), FallbackCategories...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if categories == nil {
		categories = []string{}
	}

	if errSet := s.cache.SetCategories(ctx, categories); errSet != nil {
		s.logger.WithError(errSet).Warn("category cache set failed")
	}
	return categories, nil
}

func (s *CatalogService) degraded(operation string, err error) {
	s.recorder.DegradedResponse(operation)
	s.logger.WithError(err).WithField("operation", operation).Warn("store unavailable, serving default result")
}
