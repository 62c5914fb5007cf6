package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ============================================================
// Identity & Onboarding Tables
// ============================================================

// Merchant represents merchants table
type Merchant struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Code      string         `gorm:"uniqueIndex;size:20;not null" json:"code"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Merchant) TableName() string {
	return "merchants"
}

// User represents staff users table (platform admins and merchant staff).
// MerchantID is NULL for platform-level admins.
type User struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	MerchantID *uint          `gorm:"index" json:"merchant_id"`
	Username   string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email      string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password   string         `gorm:"size:255;not null" json:"-"`
	Role       string         `gorm:"size:20;default:'MERCHANT'" json:"role"`
	IsActive   bool           `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Merchant *Merchant `gorm:"foreignKey:MerchantID" json:"merchant,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID         uint      `json:"id"`
	MerchantID *uint     `json:"merchant_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:         u.ID,
		MerchantID: u.MerchantID,
		Username:   u.Username,
		Email:      u.Email,
		Role:       u.Role,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// Customer represents customers table (merchant-scoped buyers)
type Customer struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	MerchantID uint           `gorm:"not null;index" json:"merchant_id"`
	FullName   string         `gorm:"size:100;not null" json:"full_name"`
	Phone      string         `gorm:"size:20;index" json:"phone"`
	Email      string         `gorm:"size:100" json:"email"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Merchant *Merchant `gorm:"foreignKey:MerchantID" json:"merchant,omitempty"`
}

func (Customer) TableName() string {
	return "customers"
}

// ============================================================
// Catalog Tables
// ============================================================

// Product represents products table (financeable device models).
// Price, tenure bounds, minimum down payment and the monthly interest
// rate are the financing constraints the origination engine validates
// against.
type Product struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	MerchantID     uint            `gorm:"not null;index" json:"merchant_id"`
	Name           string          `gorm:"size:100;not null" json:"name"`
	SKU            string          `gorm:"size:50;index" json:"sku"`
	Price          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"price"`
	MinTenure      int             `gorm:"not null" json:"min_tenure"`
	MaxTenure      int             `gorm:"not null" json:"max_tenure"`
	MinDownPayment decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"min_down_payment"`
	InterestRate   decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"interest_rate"`
	Currency       string          `gorm:"size:3;not null;default:'KES'" json:"currency"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`

	Merchant *Merchant `gorm:"foreignKey:MerchantID" json:"merchant,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// ============================================================
// Device Registry
// ============================================================

// Device represents devices table. A device belongs to a merchant's
// inventory until financed, then carries the financed customer. Its
// status is the contract read by the external lock-enforcement poller.
type Device struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	MerchantID *uint          `gorm:"index" json:"merchant_id"`
	CustomerID *uint          `gorm:"index" json:"customer_id"`
	ProductID  *uint          `gorm:"index" json:"product_id"`
	IMEI       string         `gorm:"uniqueIndex;size:20;not null" json:"imei"`
	Status     string         `gorm:"size:20;not null;default:'IN_STOCK'" json:"status"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Merchant *Merchant `gorm:"foreignKey:MerchantID" json:"merchant,omitempty"`
	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Product  *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (Device) TableName() string {
	return "devices"
}

// Device Status
const (
	DeviceStatusInStock  = "IN_STOCK"
	DeviceStatusFinanced = "FINANCED"
	DeviceStatusLocked   = "LOCKED"
	DeviceStatusReleased = "RELEASED"
)

// ============================================================
// Loan Tables
// ============================================================

// Loan represents loans table. Created only by the origination engine;
// never deleted, only transitioned. InterestRate is a snapshot of the
// product rate at origination time.
type Loan struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	ReferenceNo     string          `gorm:"uniqueIndex;size:40;not null" json:"reference_no"`
	MerchantID      uint            `gorm:"not null;index" json:"merchant_id"`
	CustomerID      uint            `gorm:"not null;index" json:"customer_id"`
	DeviceID        uint            `gorm:"not null;index" json:"device_id"`
	ProductID       uint            `gorm:"not null" json:"product_id"`
	PrincipalAmount decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"principal_amount"`
	DownPayment     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"down_payment"`
	InterestRate    decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"interest_rate"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_amount"`
	MonthlyAmount   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"monthly_amount"`
	Currency        string          `gorm:"size:3;not null" json:"currency"`
	TenureMonths    int             `gorm:"not null" json:"tenure_months"`
	Status          string          `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	StartDate       time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate         time.Time       `gorm:"type:date;not null" json:"end_date"`
	IdempotencyKey  *string         `gorm:"uniqueIndex;size:64" json:"-"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Merchant     *Merchant     `gorm:"foreignKey:MerchantID" json:"merchant,omitempty"`
	Customer     *Customer     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Device       *Device       `gorm:"foreignKey:DeviceID" json:"device,omitempty"`
	Product      *Product      `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Installments []Installment `gorm:"foreignKey:LoanID" json:"installments,omitempty"`
}

func (Loan) TableName() string {
	return "loans"
}

// Loan Status
const (
	LoanStatusPending   = "PENDING"
	LoanStatusActive    = "ACTIVE"
	LoanStatusCompleted = "COMPLETED"
	LoanStatusDefaulted = "DEFAULTED"
)

// Installment represents installments table (1..N per loan, N = tenure).
// Created atomically with its loan; never created independently.
type Installment struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	LoanID    uint            `gorm:"not null;index" json:"loan_id"`
	Sequence  int             `gorm:"not null" json:"sequence"`
	DueDate   time.Time       `gorm:"type:date;not null;index" json:"due_date"`
	AmountDue decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount_due"`
	Status    string          `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	PaidAt    *time.Time      `json:"paid_at"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Loan *Loan `gorm:"foreignKey:LoanID" json:"loan,omitempty"`
}

func (Installment) TableName() string {
	return "installments"
}

// Installment Status (one-way PENDING -> PAID)
const (
	InstallmentStatusPending = "PENDING"
	InstallmentStatusPaid    = "PAID"
)

// LoanResponse DTO
type LoanResponse struct {
	ID              uint            `json:"id"`
	ReferenceNo     string          `json:"reference_no"`
	MerchantID      uint            `json:"merchant_id"`
	CustomerID      uint            `json:"customer_id"`
	CustomerName    string          `json:"customer_name,omitempty"`
	DeviceID        uint            `json:"device_id"`
	DeviceIMEI      string          `json:"device_imei,omitempty"`
	ProductID       uint            `json:"product_id"`
	ProductName     string          `json:"product_name,omitempty"`
	PrincipalAmount decimal.Decimal `json:"principal_amount"`
	DownPayment     decimal.Decimal `json:"down_payment"`
	InterestRate    decimal.Decimal `json:"interest_rate"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	MonthlyAmount   decimal.Decimal `json:"monthly_amount"`
	Currency        string          `json:"currency"`
	TenureMonths    int             `json:"tenure_months"`
	Status          string          `json:"status"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	Installments    []Installment   `json:"installments,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (l *Loan) ToResponse() *LoanResponse {
	resp := &LoanResponse{
		ID:              l.ID,
		ReferenceNo:     l.ReferenceNo,
		MerchantID:      l.MerchantID,
		CustomerID:      l.CustomerID,
		DeviceID:        l.DeviceID,
		ProductID:       l.ProductID,
		PrincipalAmount: l.PrincipalAmount,
		DownPayment:     l.DownPayment,
		InterestRate:    l.InterestRate,
		TotalAmount:     l.TotalAmount,
		MonthlyAmount:   l.MonthlyAmount,
		Currency:        l.Currency,
		TenureMonths:    l.TenureMonths,
		Status:          l.Status,
		StartDate:       l.StartDate,
		EndDate:         l.EndDate,
		Installments:    l.Installments,
		CreatedAt:       l.CreatedAt,
	}

	if l.Customer != nil {
		resp.CustomerName = l.Customer.FullName
	}
	if l.Device != nil {
		resp.DeviceIMEI = l.Device.IMEI
	}
	if l.Product != nil {
		resp.ProductName = l.Product.Name
	}

	return resp
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Merchant{},
		&User{},
		&RefreshToken{},
		&Customer{},
		&Product{},
		&Device{},
		&Loan{},
		&Installment{},
	)
}
