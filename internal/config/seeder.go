package config

import (
	"log"

	"devicepay/internal/adapters/persistence/models"
	"devicepay/internal/pkg/password"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders. Each step is idempotent so the seeder can
// run on every startup.
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}
	if err := s.seedDemoMerchant(); err != nil {
		log.Printf("⚠️ Demo merchant seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds the default platform admin.
// This is for development/testing only.
// In production, create admin through secure process.
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", "ADMIN").Count(&count)
	if count > 0 {
		return nil
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: "admin",
		Email:    "admin@devicepay.io",
		Password: hashedPassword,
		Role:     "ADMIN",
		IsActive: true,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Username)
	return nil
}

// seedDemoMerchant seeds a demo merchant with staff, catalog and stock
// so a fresh environment can originate loans immediately.
func (s *Seeder) seedDemoMerchant() error {
	var count int64
	s.db.Model(&models.Merchant{}).Where("code = ?", "DEMO").Count(&count)
	if count > 0 {
		return nil
	}

	merchant := &models.Merchant{
		Code:     "DEMO",
		Name:     "DevicePay Demo Store",
		IsActive: true,
	}
	if err := s.db.Create(merchant).Error; err != nil {
		return err
	}

	hashedPassword, err := password.Hash("merchant123456")
	if err != nil {
		return err
	}
	staff := &models.User{
		MerchantID: &merchant.ID,
		Username:   "demo.merchant",
		Email:      "staff@demo.devicepay.io",
		Password:   hashedPassword,
		Role:       "MERCHANT",
		IsActive:   true,
	}
	if err := s.db.Create(staff).Error; err != nil {
		return err
	}

	products := []models.Product{
		{
			MerchantID:     merchant.ID,
			Name:           "Galaxy A25 128GB",
			SKU:            "GAL-A25-128",
			Price:          decimal.RequireFromString("150000"),
			MinTenure:      3,
			MaxTenure:      12,
			MinDownPayment: decimal.Zero,
			InterestRate:   decimal.RequireFromString("5"),
			Currency:       "KES",
			IsActive:       true,
		},
		{
			MerchantID:     merchant.ID,
			Name:           "Redmi 13C 64GB",
			SKU:            "RED-13C-64",
			Price:          decimal.RequireFromString("100000"),
			MinTenure:      1,
			MaxTenure:      6,
			MinDownPayment: decimal.Zero,
			InterestRate:   decimal.Zero,
			Currency:       "KES",
			IsActive:       true,
		},
	}
	if err := s.db.Create(&products).Error; err != nil {
		return err
	}

	devices := []models.Device{
		{MerchantID: &merchant.ID, ProductID: &products[0].ID, IMEI: "358240051111110", Status: models.DeviceStatusInStock},
		{MerchantID: &merchant.ID, ProductID: &products[0].ID, IMEI: "358240051111128", Status: models.DeviceStatusInStock},
		{MerchantID: &merchant.ID, ProductID: &products[1].ID, IMEI: "358240051111136", Status: models.DeviceStatusInStock},
	}
	if err := s.db.Create(&devices).Error; err != nil {
		return err
	}

	log.Printf("✅ Demo merchant created: %s (%d products, %d devices)",
		merchant.Code, len(products), len(devices))
	return nil
}
