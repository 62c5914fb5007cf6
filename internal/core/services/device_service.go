package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"devicepay/internal/adapters/persistence/models"
	"devicepay/internal/adapters/persistence/repositories"
	"devicepay/internal/core/domain"

	"gorm.io/gorm"
)

// Device service errors
var (
	ErrDeviceNotFound   = errors.New("device not found")
	ErrIMEIAlreadyKnown = errors.New("imei already registered")
)

// DeviceService handles the device registry. Origination claims devices
// through the transaction layer; this service covers intake and the
// status surface the lock-enforcement poller reads.
type DeviceService struct {
	deviceRepo repositories.DeviceRepository
}

// NewDeviceService creates a new device service
func NewDeviceService(deviceRepo repositories.DeviceRepository) *DeviceService {
	return &DeviceService{deviceRepo: deviceRepo}
}

// RegisterDeviceInput represents device intake input
type RegisterDeviceInput struct {
	IMEI      string `json:"imei" validate:"required,min=14,max=16"`
	ProductID *uint  `json:"product_id"`
}

// DeviceStatusResponse is the contract the lock-enforcement poller reads.
// A LOCKED status instructs the device agent to restrict the handset.
type DeviceStatusResponse struct {
	IMEI     string `json:"imei"`
	Status   string `json:"status"`
	Locked   bool   `json:"locked"`
	Merchant string `json:"merchant,omitempty"`
}

// RegisterDevice adds a handset to a merchant's sellable inventory
func (s *DeviceService) RegisterDevice(ctx context.Context, merchantID uint, input *RegisterDeviceInput) (*models.Device, error) {
	imei := strings.TrimSpace(input.IMEI)

	if _, err := s.deviceRepo.GetByIMEI(ctx, imei); err == nil {
		return nil, ErrIMEIAlreadyKnown
	}

	device := &models.Device{
		MerchantID: &merchantID,
		ProductID:  input.ProductID,
		IMEI:       imei,
		Status:     models.DeviceStatusInStock,
	}

	if err := s.deviceRepo.Create(ctx, device); err != nil {
		return nil, err
	}

	log.Printf("✅ Device registered: %s (merchant %d)", device.IMEI, merchantID)
	return device, nil
}

// GetDevice gets a device within the caller's merchant scope
func (s *DeviceService) GetDevice(ctx context.Context, id uint, callerMerchantID *uint) (*models.Device, error) {
	device, err := s.deviceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}

	if callerMerchantID != nil && (device.MerchantID == nil || *device.MerchantID != *callerMerchantID) {
		return nil, domain.ScopeViolation("device belongs to another merchant", map[string]interface{}{
			"device_id": id,
		})
	}

	return device, nil
}

// ListDevices lists devices, optionally filtered by merchant and status
func (s *DeviceService) ListDevices(ctx context.Context, merchantID *uint, status string, offset, limit int) ([]*models.Device, int64, error) {
	return s.deviceRepo.List(ctx, merchantID, status, offset, limit)
}

// GetStatusByIMEI resolves the lock state for a handset agent poll
func (s *DeviceService) GetStatusByIMEI(ctx context.Context, imei string) (*DeviceStatusResponse, error) {
	device, err := s.deviceRepo.GetByIMEI(ctx, strings.TrimSpace(imei))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}

	resp := &DeviceStatusResponse{
		IMEI:   device.IMEI,
		Status: device.Status,
		Locked: device.Status == models.DeviceStatusLocked,
	}
	if device.Merchant != nil {
		resp.Merchant = device.Merchant.Name
	}

	return resp, nil
}
