package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/storefront/pkg/models"
	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	// ListLimit caps the full product grid.
	ListLimit = 12
	// PageSize is the paginated-browse window.
	PageSize = 6
	// RelatedLimit caps the related-products strip.
	RelatedLimit = 3
)

var ErrInvalidID = errors.New("invalid object id")

type ProductStore interface {
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, limit int64) ([]models.Product, error)
	Page(ctx context.Context, skip, limit int64) ([]models.Product, error)
	Find(ctx context.Context, filter bson.M) ([]models.Product, error)
	Search(ctx context.Context, keyword string) ([]models.Product, error)
	Related(ctx context.Context, productID, categoryID primitive.ObjectID, limit int64) ([]models.Product, error)
	ByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]models.Product, error)
	Count(ctx context.Context) (int64, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Photo(ctx context.Context, id primitive.ObjectID) (*models.Photo, error)
}

type CategoryStore interface {
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, c *models.Category) error
	List(ctx context.Context) ([]models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Cache is satisfied by repository.RedisRepository. A nil Cache
// disables caching without changing behavior.
type Cache interface {
	GetCatalogPage(ctx context.Context, page int) ([]models.Product, error)
	CacheCatalogPage(ctx context.Context, page int, products []models.Product) error
	GetProductCount(ctx context.Context) (int64, error)
	CacheProductCount(ctx context.Context, total int64) error
	InvalidateCatalog(ctx context.Context) error
}

// Service answers the catalog's list/filter/search queries and owns
// product and category writes.
type Service struct {
	products   ProductStore
	categories CategoryStore
	cache      Cache
	logger     *zap.Logger
}

func NewService(products ProductStore, categories CategoryStore, cache Cache, logger *zap.Logger) *Service {
	return &Service{
		products:   products,
		categories: categories,
		cache:      cache,
		logger:     logger,
	}
}

// List returns the newest products capped at ListLimit together with
// the total catalog size.
func (s *Service) List(ctx context.Context) ([]models.Product, int64, error) {
	products, err := s.products.List(ctx, ListLimit)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	total, err := s.products.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}
	return products, total, nil
}

// Page returns one PageSize window of the catalog, newest first.
// Pages beyond the end come back empty.
func (s *Service) Page(ctx context.Context, page int) ([]models.Product, error) {
	if page < 1 {
		page = 1
	}

	if s.cache != nil {
		if products, err := s.cache.GetCatalogPage(ctx, page); err == nil {
			return products, nil
		}
	}

	skip, limit := PageWindow(page)
	products, err := s.products.Page(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("page products: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.CacheCatalogPage(ctx, page, products); err != nil {
			s.logger.Warn("Failed to cache catalog page", zap.Int("page", page), zap.Error(err))
		}
	}
	return products, nil
}

// Filter constrains the catalog by category membership and/or an
// inclusive price range. Empty inputs relax the matching clause.
func (s *Service) Filter(ctx context.Context, checked []string, radio []float64) ([]models.Product, error) {
	ids := make([]primitive.ObjectID, 0, len(checked))
	for _, raw := range checked {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidID, raw)
		}
		ids = append(ids, id)
	}

	products, err := s.products.Find(ctx, BuildFilter(ids, radio))
	if err != nil {
		return nil, fmt.Errorf("filter products: %w", err)
	}
	return products, nil
}

func (s *Service) Search(ctx context.Context, keyword string) ([]models.Product, error) {
	products, err := s.products.Search(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

// Related returns up to RelatedLimit products sharing the category,
// excluding the product itself, along with the category document.
func (s *Service) Related(ctx context.Context, productID, categoryID string) ([]models.Product, *models.Category, error) {
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidID, productID)
	}
	cid, err := primitive.ObjectIDFromHex(categoryID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidID, categoryID)
	}

	products, err := s.products.Related(ctx, pid, cid, RelatedLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("related products: %w", err)
	}
	category, err := s.categories.GetByID(ctx, cid)
	if err != nil {
		return nil, nil, fmt.Errorf("related category: %w", err)
	}
	return products, category, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	if s.cache != nil {
		if total, err := s.cache.GetProductCount(ctx); err == nil {
			return total, nil
		}
	}

	total, err := s.products.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.CacheProductCount(ctx, total); err != nil {
			s.logger.Warn("Failed to cache product count", zap.Error(err))
		}
	}
	return total, nil
}

// BySlug resolves a single product and its category.
func (s *Service) BySlug(ctx context.Context, productSlug string) (*models.Product, *models.Category, error) {
	product, err := s.products.GetBySlug(ctx, productSlug)
	if err != nil {
		return nil, nil, fmt.Errorf("get product: %w", err)
	}
	category, err := s.categories.GetByID(ctx, product.Category)
	if err != nil {
		return nil, nil, fmt.Errorf("get product category: %w", err)
	}
	return product, category, nil
}

func (s *Service) Photo(ctx context.Context, productID string) (*models.Photo, error) {
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, productID)
	}
	photo, err := s.products.Photo(ctx, pid)
	if err != nil {
		return nil, fmt.Errorf("get photo: %w", err)
	}
	return photo, nil
}

// CategoryProducts lists everything in the category named by slug.
func (s *Service) CategoryProducts(ctx context.Context, categorySlug string) (*models.Category, []models.Product, error) {
	category, err := s.categories.GetBySlug(ctx, categorySlug)
	if err != nil {
		return nil, nil, fmt.Errorf("get category: %w", err)
	}
	products, err := s.products.ByCategory(ctx, category.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("category products: %w", err)
	}
	return category, products, nil
}

// ProductInput carries already-validated product fields.
type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Quantity    int
	Shipping    bool
	Photo       *models.Photo
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	cid, err := primitive.ObjectIDFromHex(in.Category)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, in.Category)
	}

	product := &models.Product{
		Name:        in.Name,
		Slug:        slug.Make(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Category:    cid,
		Quantity:    in.Quantity,
		Shipping:    in.Shipping,
	}
	if in.Photo != nil {
		product.Photo = *in.Photo
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.invalidate(ctx)
	return product, nil
}

func (s *Service) UpdateProduct(ctx context.Context, productID string, in ProductInput) (*models.Product, error) {
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, productID)
	}
	cid, err := primitive.ObjectIDFromHex(in.Category)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, in.Category)
	}

	existing, err := s.products.GetByID(ctx, pid)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	existing.Name = in.Name
	existing.Slug = slug.Make(in.Name)
	existing.Description = in.Description
	existing.Price = in.Price
	existing.Category = cid
	existing.Quantity = in.Quantity
	existing.Shipping = in.Shipping
	if in.Photo != nil {
		existing.Photo = *in.Photo
	} else {
		// ReplaceOne would drop the stored photo otherwise.
		photo, err := s.products.Photo(ctx, pid)
		if err == nil {
			existing.Photo = *photo
		}
	}

	if err := s.products.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.invalidate(ctx)
	return existing, nil
}

func (s *Service) DeleteProduct(ctx context.Context, productID string) error {
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, productID)
	}
	if err := s.products.Delete(ctx, pid); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	category := &models.Category{Name: name, Slug: slug.Make(name)}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return category, nil
}

func (s *Service) UpdateCategory(ctx context.Context, categoryID, name string) (*models.Category, error) {
	cid, err := primitive.ObjectIDFromHex(categoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, categoryID)
	}
	category := &models.Category{ID: cid, Name: name, Slug: slug.Make(name)}
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	s.invalidate(ctx)
	return category, nil
}

func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

func (s *Service) CategoryBySlug(ctx context.Context, categorySlug string) (*models.Category, error) {
	return s.categories.GetBySlug(ctx, categorySlug)
}

func (s *Service) DeleteCategory(ctx context.Context, categoryID string) error {
	cid, err := primitive.ObjectIDFromHex(categoryID)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, categoryID)
	}
	if err := s.categories.Delete(ctx, cid); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCatalog(ctx); err != nil {
		s.logger.Warn("Failed to invalidate catalog cache", zap.Error(err))
	}
}
