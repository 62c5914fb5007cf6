package repositories

import (
	"context"

	"devicepay/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// deviceRepository implements DeviceRepository interface
type deviceRepository struct {
	db *gorm.DB
}

// NewDeviceRepository creates a new device repository
func NewDeviceRepository(db *gorm.DB) DeviceRepository {
	return &deviceRepository{db: db}
}

// Create registers a new device
func (r *deviceRepository) Create(ctx context.Context, device *models.Device) error {
	return r.db.WithContext(ctx).Create(device).Error
}

// GetByID gets a device by ID
func (r *deviceRepository) GetByID(ctx context.Context, id uint) (*models.Device, error) {
	var device models.Device
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&device).Error
	if err != nil {
		return nil, err
	}
	return &device, nil
}

// GetByIMEI gets a device by IMEI. Used by the lock-enforcement poller
// to resolve a handset to its financing status.
func (r *deviceRepository) GetByIMEI(ctx context.Context, imei string) (*models.Device, error) {
	var device models.Device
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Merchant").
		Where("imei = ?", imei).
		First(&device).Error
	if err != nil {
		return nil, err
	}
	return &device, nil
}

// List lists devices with pagination, optionally filtered by merchant and status
func (r *deviceRepository) List(ctx context.Context, merchantID *uint, status string, offset, limit int) ([]*models.Device, int64, error) {
	var devices []*models.Device
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Device{})
	if merchantID != nil {
		query = query.Where("merchant_id = ?", *merchantID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	query.Count(&total)

	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&devices).Error

	return devices, total, err
}
