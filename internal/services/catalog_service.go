package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"backoffice/internal/models"
	"backoffice/internal/repositories"
)

const productCacheTTL = time.Minute

// CatalogService handles business logic related to the product catalog.
type CatalogService struct {
	repo        repositories.ProductRepository
	redisClient *redis.Client
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo repositories.ProductRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

// SetRedisClient enables the read-through product cache. The service works
// without one.
func (s *CatalogService) SetRedisClient(client *redis.Client) {
	s.redisClient = client
}

// GetAllProducts retrieves all products.
func (s *CatalogService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID, served from the
// cache when possible.
func (s *CatalogService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, productCacheKey(id)).Result(); err == nil {
			var product models.Product
			if err := json.Unmarshal([]byte(cached), &product); err == nil {
				return &product, nil
			}
		}
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.redisClient != nil {
		if data, err := json.Marshal(product); err == nil {
			s.redisClient.Set(ctx, productCacheKey(id), data, productCacheTTL)
		}
	}
	return product, nil
}

// CreateProduct creates a new product.
func (s *CatalogService) CreateProduct(ctx context.Context, product *models.Product) error {
	return s.repo.Create(ctx, product)
}

// UpdateProduct updates an existing product and drops its cache entry.
func (s *CatalogService) UpdateProduct(ctx context.Context, product *models.Product) error {
	if err := s.repo.Update(ctx, product); err != nil {
		return err
	}
	s.invalidate(ctx, product.ID)
	return nil
}

// DeleteProduct deletes a product by its ID and drops its cache entry.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context, id string) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, productCacheKey(id))
	}
}

func productCacheKey(id string) string {
	return "product:" + id
}
