package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"devicepay/internal/adapters/persistence/models"
	"devicepay/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Merchant service errors
var (
	ErrMerchantNotFound   = errors.New("merchant not found")
	ErrMerchantCodeExists = errors.New("merchant code already exists")
)

// MerchantService handles merchant onboarding, admin only
type MerchantService struct {
	merchantRepo repositories.MerchantRepository
}

// NewMerchantService creates a new merchant service
func NewMerchantService(merchantRepo repositories.MerchantRepository) *MerchantService {
	return &MerchantService{merchantRepo: merchantRepo}
}

// CreateMerchantInput represents merchant onboarding input
type CreateMerchantInput struct {
	Code string `json:"code" validate:"required,min=2,max=20"`
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// UpdateMerchantInput represents merchant update input
type UpdateMerchantInput struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

// CreateMerchant onboards a new merchant
func (s *MerchantService) CreateMerchant(ctx context.Context, input *CreateMerchantInput) (*models.Merchant, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))

	if _, err := s.merchantRepo.GetByCode(ctx, code); err == nil {
		return nil, ErrMerchantCodeExists
	}

	merchant := &models.Merchant{
		Code:     code,
		Name:     strings.TrimSpace(input.Name),
		IsActive: true,
	}

	if err := s.merchantRepo.Create(ctx, merchant); err != nil {
		return nil, err
	}

	log.Printf("✅ Merchant onboarded: %s (%s)", merchant.Name, merchant.Code)
	return merchant, nil
}

// GetMerchantByID gets a merchant by ID
func (s *MerchantService) GetMerchantByID(ctx context.Context, id uint) (*models.Merchant, error) {
	merchant, err := s.merchantRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, err
	}
	return merchant, nil
}

// ListMerchants lists merchants with pagination
func (s *MerchantService) ListMerchants(ctx context.Context, offset, limit int) ([]*models.Merchant, int64, error) {
	return s.merchantRepo.List(ctx, offset, limit)
}

// UpdateMerchant updates a merchant's name or active flag
func (s *MerchantService) UpdateMerchant(ctx context.Context, id uint, input *UpdateMerchantInput) (*models.Merchant, error) {
	merchant, err := s.GetMerchantByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		merchant.Name = strings.TrimSpace(*input.Name)
	}
	if input.IsActive != nil {
		merchant.IsActive = *input.IsActive
	}

	if err := s.merchantRepo.Update(ctx, merchant); err != nil {
		return nil, err
	}

	return merchant, nil
}
