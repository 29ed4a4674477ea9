// internal/domain/catalog/service.go
package catalog

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/berkelium/storefront/internal/infrastructure/commerce"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var ErrProductNotFound = errors.New("product not found")

const (
	cacheTTL    = 5 * time.Minute
	cacheJitter = 30 * time.Second
	keyPrefix   = "catalog:"
)

// Backend is the part of the commerce Store API the catalog reads
type Backend interface {
	ListProducts(ctx context.Context, q commerce.ProductQuery) (*commerce.ProductList, error)
	ListCategories(ctx context.Context) ([]commerce.Category, error)
}

// Cache stores JSON snapshots of catalog reads
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// Service serves the product catalog. Remote failures degrade to empty
// results so browsing never breaks the page.
type Service struct {
	backend Backend
	cache   Cache
	logger  *logrus.Logger
	jitter  func() time.Duration
}

// NewService creates a new catalog service. cache may be nil.
func NewService(backend Backend, cache Cache, logger *logrus.Logger) *Service {
	return &Service{
		backend: backend,
		cache:   cache,
		logger:  logger,
		jitter: func() time.Duration {
			return rand.N(cacheJitter)
		},
	}
}

// ListProducts returns a page of products, optionally within a category
func (s *Service) ListProducts(ctx context.Context, req ListRequest) *ProductPage {
	req = req.normalized()
	key := fmt.Sprintf("%sproducts:%s:%d:%d", keyPrefix, req.CategoryID, req.Limit, req.Offset)

	var page ProductPage
	if s.cached(ctx, key, &page) {
		return &page
	}

	list, err := s.backend.ListProducts(ctx, commerce.ProductQuery{
		Limit:      req.Limit,
		Offset:     req.Offset,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		s.logger.WithError(err).WithField("category_id", req.CategoryID).Error("failed to list products")
		return &ProductPage{Products: []commerce.Product{}, Limit: req.Limit, Offset: req.Offset}
	}

	page = ProductPage{
		Products: list.Products,
		Count:    list.Count,
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
	if page.Products == nil {
		page.Products = []commerce.Product{}
	}
	s.store(ctx, key, page)
	return &page
}

// GetProduct returns the product with handle, or ErrProductNotFound
func (s *Service) GetProduct(ctx context.Context, handle string) (*commerce.Product, error) {
	if handle == "" {
		return nil, ErrProductNotFound
	}
	key := keyPrefix + "product:" + handle

	var product commerce.Product
	if s.cached(ctx, key, &product) {
		return &product, nil
	}

	list, err := s.backend.ListProducts(ctx, commerce.ProductQuery{Handle: handle, Limit: 1})
	if err != nil {
		s.logger.WithError(err).WithField("handle", handle).Error("failed to load product")
		return nil, ErrProductNotFound
	}
	if len(list.Products) == 0 {
		return nil, ErrProductNotFound
	}

	product = list.Products[0]
	s.store(ctx, key, product)
	return &product, nil
}

// ListCategories returns all categories
func (s *Service) ListCategories(ctx context.Context) []commerce.Category {
	key := keyPrefix + "categories"

	var categories []commerce.Category
	if s.cached(ctx, key, &categories) {
		return categories
	}

	categories, err := s.backend.ListCategories(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to list categories")
		return []commerce.Category{}
	}
	if categories == nil {
		categories = []commerce.Category{}
	}
	s.store(ctx, key, categories)
	return categories
}

// CategoryTree returns categories nested under their parents
func (s *Service) CategoryTree(ctx context.Context) []*CategoryTree {
	return BuildTree(s.ListCategories(ctx))
}

func (s *Service) cached(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.GetJSON(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, redis.Nil) {
		s.logger.WithError(err).WithField("key", key).Warn("catalog cache read failed")
	}
	return false
}

func (s *Service) store(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, key, value, cacheTTL+s.jitter()); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("catalog cache write failed")
	}
}
