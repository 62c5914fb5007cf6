package repositories

import (
	"context"

	"devicepay/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// merchantRepository implements MerchantRepository interface
type merchantRepository struct {
	db *gorm.DB
}

// NewMerchantRepository creates a new merchant repository
func NewMerchantRepository(db *gorm.DB) MerchantRepository {
	return &merchantRepository{db: db}
}

// Create creates a new merchant
func (r *merchantRepository) Create(ctx context.Context, merchant *models.Merchant) error {
	return r.db.WithContext(ctx).Create(merchant).Error
}

// GetByID gets a merchant by ID
func (r *merchantRepository) GetByID(ctx context.Context, id uint) (*models.Merchant, error) {
	var merchant models.Merchant
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&merchant).Error
	if err != nil {
		return nil, err
	}
	return &merchant, nil
}

// GetByCode gets a merchant by its unique code
func (r *merchantRepository) GetByCode(ctx context.Context, code string) (*models.Merchant, error) {
	var merchant models.Merchant
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&merchant).Error
	if err != nil {
		return nil, err
	}
	return &merchant, nil
}

// List lists merchants with pagination
func (r *merchantRepository) List(ctx context.Context, offset, limit int) ([]*models.Merchant, int64, error) {
	var merchants []*models.Merchant
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Merchant{})
	query.Count(&total)

	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&merchants).Error

	return merchants, total, err
}

// Update updates a merchant
func (r *merchantRepository) Update(ctx context.Context, merchant *models.Merchant) error {
	return r.db.WithContext(ctx).Save(merchant).Error
}
