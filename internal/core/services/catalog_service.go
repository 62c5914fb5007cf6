package services

import (
	"context"
	"errors"
	"log"

	"devicepay/internal/adapters/persistence/models"
	"devicepay/internal/adapters/persistence/repositories"
	"devicepay/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Catalog service errors
var (
	ErrProductNotFound = errors.New("product not found")
)

// CatalogService handles the financeable product catalog. Every product
// carries the financing constraints the origination engine validates
// against, so writes are sanity checked here.
type CatalogService struct {
	productRepo repositories.ProductRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(productRepo repositories.ProductRepository) *CatalogService {
	return &CatalogService{productRepo: productRepo}
}

// CreateProductInput represents create product input
type CreateProductInput struct {
	Name           string          `json:"name" validate:"required,min=2,max=100"`
	SKU            string          `json:"sku"`
	Price          decimal.Decimal `json:"price" validate:"required"`
	MinTenure      int             `json:"min_tenure" validate:"required,min=1"`
	MaxTenure      int             `json:"max_tenure" validate:"required,min=1"`
	MinDownPayment decimal.Decimal `json:"min_down_payment"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	Currency       string          `json:"currency"`
}

// UpdateProductInput represents update product input
type UpdateProductInput struct {
	Name           *string          `json:"name"`
	Price          *decimal.Decimal `json:"price"`
	MinTenure      *int             `json:"min_tenure"`
	MaxTenure      *int             `json:"max_tenure"`
	MinDownPayment *decimal.Decimal `json:"min_down_payment"`
	InterestRate   *decimal.Decimal `json:"interest_rate"`
	IsActive       *bool            `json:"is_active"`
}

// CreateProduct adds a financeable product to a merchant's catalog
func (s *CatalogService) CreateProduct(ctx context.Context, merchantID uint, input *CreateProductInput) (*models.Product, error) {
	currency := input.Currency
	if currency == "" {
		currency = "KES"
	}

	product := &models.Product{
		MerchantID:     merchantID,
		Name:           input.Name,
		SKU:            input.SKU,
		Price:          input.Price,
		MinTenure:      input.MinTenure,
		MaxTenure:      input.MaxTenure,
		MinDownPayment: input.MinDownPayment,
		InterestRate:   input.InterestRate,
		Currency:       currency,
		IsActive:       true,
	}

	if err := validateProductConstraints(product); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	log.Printf("✅ Product created: %s (merchant %d)", product.Name, merchantID)
	return product, nil
}

// GetProduct gets a product, enforcing merchant scope for non-admin callers
func (s *CatalogService) GetProduct(ctx context.Context, id uint, callerMerchantID *uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if callerMerchantID != nil && product.MerchantID != *callerMerchantID {
		return nil, domain.ScopeViolation("product belongs to another merchant", map[string]interface{}{
			"product_id": id,
		})
	}

	return product, nil
}

// ListProducts lists products, scoped to one merchant when merchantID is set
func (s *CatalogService) ListProducts(ctx context.Context, merchantID *uint, offset, limit int) ([]*models.Product, int64, error) {
	return s.productRepo.List(ctx, merchantID, offset, limit)
}

// UpdateProduct updates a product within the caller's merchant scope
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, callerMerchantID *uint, input *UpdateProductInput) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id, callerMerchantID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.MinTenure != nil {
		product.MinTenure = *input.MinTenure
	}
	if input.MaxTenure != nil {
		product.MaxTenure = *input.MaxTenure
	}
	if input.MinDownPayment != nil {
		product.MinDownPayment = *input.MinDownPayment
	}
	if input.InterestRate != nil {
		product.InterestRate = *input.InterestRate
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := validateProductConstraints(product); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// DeleteProduct soft deletes a product within the caller's merchant scope.
// Existing loans keep their rate and amount snapshots, so removal is safe.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint, callerMerchantID *uint) error {
	if _, err := s.GetProduct(ctx, id, callerMerchantID); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

// validateProductConstraints keeps the catalog free of products that can
// never be quoted
func validateProductConstraints(p *models.Product) error {
	if !p.Price.IsPositive() {
		return errors.New("price must be positive")
	}
	if p.MinTenure < 1 {
		return errors.New("minimum tenure must be at least 1 month")
	}
	if p.MaxTenure < p.MinTenure {
		return errors.New("maximum tenure must not be below minimum tenure")
	}
	if p.MinDownPayment.IsNegative() {
		return errors.New("minimum down payment cannot be negative")
	}
	if p.MinDownPayment.GreaterThanOrEqual(p.Price) {
		return errors.New("minimum down payment must be below the price")
	}
	if p.InterestRate.IsNegative() {
		return errors.New("interest rate cannot be negative")
	}
	return nil
}
