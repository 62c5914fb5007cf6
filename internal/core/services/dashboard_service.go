package services

import (
	"context"
	"time"

	"devicepay/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// DashboardService aggregates portfolio statistics. It queries the
// database directly because every number here is a read-only rollup.
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// ============================================================
// Admin Dashboard
// ============================================================

// AdminDashboardData represents the platform-wide dashboard
type AdminDashboardData struct {
	// Merchant statistics
	TotalMerchants  int64 `json:"total_merchants"`
	ActiveMerchants int64 `json:"active_merchants"`

	// Loan statistics
	TotalLoans     int64   `json:"total_loans"`
	ActiveLoans    int64   `json:"active_loans"`
	CompletedLoans int64   `json:"completed_loans"`
	DefaultedLoans int64   `json:"defaulted_loans"`
	TotalFinanced  float64 `json:"total_financed"`

	// Device statistics
	DevicesFinanced int64 `json:"devices_financed"`
	DevicesLocked   int64 `json:"devices_locked"`

	// Monthly statistics
	LoansThisMonth    int64   `json:"loans_this_month"`
	FinancedThisMonth float64 `json:"financed_this_month"`

	RecentLoans []LoanSummary `json:"recent_loans"`
}

// MerchantDashboardData represents one merchant's portfolio view
type MerchantDashboardData struct {
	// Loan statistics
	TotalLoans     int64   `json:"total_loans"`
	PendingLoans   int64   `json:"pending_loans"`
	ActiveLoans    int64   `json:"active_loans"`
	CompletedLoans int64   `json:"completed_loans"`
	DefaultedLoans int64   `json:"defaulted_loans"`
	TotalFinanced  float64 `json:"total_financed"`
	TotalCollected float64 `json:"total_collected"`

	// Inventory statistics
	DevicesInStock  int64 `json:"devices_in_stock"`
	DevicesFinanced int64 `json:"devices_financed"`
	DevicesLocked   int64 `json:"devices_locked"`

	// Repayment health
	OverdueInstallments int64 `json:"overdue_installments"`

	RecentLoans []LoanSummary `json:"recent_loans"`
}

// LoanSummary represents a loan row on a dashboard
type LoanSummary struct {
	ID           uint      `json:"id"`
	ReferenceNo  string    `json:"reference_no"`
	CustomerName string    `json:"customer_name"`
	TotalAmount  float64   `json:"total_amount"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// GetAdminDashboard returns platform-wide statistics
func (s *DashboardService) GetAdminDashboard(ctx context.Context) (*AdminDashboardData, error) {
	data := &AdminDashboardData{}

	s.db.WithContext(ctx).Table("merchants").Where("deleted_at IS NULL").Count(&data.TotalMerchants)
	s.db.WithContext(ctx).Table("merchants").Where("is_active = ? AND deleted_at IS NULL", true).Count(&data.ActiveMerchants)

	s.db.WithContext(ctx).Table("loans").Count(&data.TotalLoans)
	s.db.WithContext(ctx).Table("loans").Where("status = ?", models.LoanStatusActive).Count(&data.ActiveLoans)
	s.db.WithContext(ctx).Table("loans").Where("status = ?", models.LoanStatusCompleted).Count(&data.CompletedLoans)
	s.db.WithContext(ctx).Table("loans").Where("status = ?", models.LoanStatusDefaulted).Count(&data.DefaultedLoans)

	s.db.WithContext(ctx).Table("loans").
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&data.TotalFinanced)

	s.db.WithContext(ctx).Table("devices").Where("status = ? AND deleted_at IS NULL", models.DeviceStatusFinanced).Count(&data.DevicesFinanced)
	s.db.WithContext(ctx).Table("devices").Where("status = ? AND deleted_at IS NULL", models.DeviceStatusLocked).Count(&data.DevicesLocked)

	startOfMonth := time.Now().AddDate(0, 0, -time.Now().Day()+1).Truncate(24 * time.Hour)
	s.db.WithContext(ctx).Table("loans").
		Where("created_at >= ?", startOfMonth).
		Count(&data.LoansThisMonth)
	s.db.WithContext(ctx).Table("loans").
		Where("created_at >= ?", startOfMonth).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&data.FinancedThisMonth)

	data.RecentLoans = s.recentLoans(ctx, nil)

	return data, nil
}

// GetMerchantDashboard returns one merchant's portfolio statistics
func (s *DashboardService) GetMerchantDashboard(ctx context.Context, merchantID uint) (*MerchantDashboardData, error) {
	data := &MerchantDashboardData{}

	loans := func() *gorm.DB {
		return s.db.WithContext(ctx).Table("loans").Where("merchant_id = ?", merchantID)
	}

	loans().Count(&data.TotalLoans)
	loans().Where("status = ?", models.LoanStatusPending).Count(&data.PendingLoans)
	loans().Where("status = ?", models.LoanStatusActive).Count(&data.ActiveLoans)
	loans().Where("status = ?", models.LoanStatusCompleted).Count(&data.CompletedLoans)
	loans().Where("status = ?", models.LoanStatusDefaulted).Count(&data.DefaultedLoans)
	loans().Select("COALESCE(SUM(total_amount), 0)").Scan(&data.TotalFinanced)

	s.db.WithContext(ctx).Table("installments").
		Joins("JOIN loans ON installments.loan_id = loans.id").
		Where("loans.merchant_id = ? AND installments.status = ?", merchantID, models.InstallmentStatusPaid).
		Select("COALESCE(SUM(installments.amount_due), 0)").
		Scan(&data.TotalCollected)

	devices := func(status string) *gorm.DB {
		return s.db.WithContext(ctx).Table("devices").
			Where("merchant_id = ? AND status = ? AND deleted_at IS NULL", merchantID, status)
	}
	devices(models.DeviceStatusInStock).Count(&data.DevicesInStock)
	devices(models.DeviceStatusFinanced).Count(&data.DevicesFinanced)
	devices(models.DeviceStatusLocked).Count(&data.DevicesLocked)

	s.db.WithContext(ctx).Table("installments").
		Joins("JOIN loans ON installments.loan_id = loans.id").
		Where("loans.merchant_id = ? AND loans.status = ?", merchantID, models.LoanStatusActive).
		Where("installments.status = ? AND installments.due_date < ?", models.InstallmentStatusPending, time.Now()).
		Count(&data.OverdueInstallments)

	data.RecentLoans = s.recentLoans(ctx, &merchantID)

	return data, nil
}

// recentLoans returns the ten newest loans, optionally for one merchant
func (s *DashboardService) recentLoans(ctx context.Context, merchantID *uint) []LoanSummary {
	var rows []struct {
		ID           uint
		ReferenceNo  string
		CustomerName string
		TotalAmount  float64
		Status       string
		CreatedAt    time.Time
	}

	query := s.db.WithContext(ctx).Table("loans").
		Select("loans.id, loans.reference_no, customers.full_name as customer_name, loans.total_amount, loans.status, loans.created_at").
		Joins("LEFT JOIN customers ON loans.customer_id = customers.id")
	if merchantID != nil {
		query = query.Where("loans.merchant_id = ?", *merchantID)
	}
	query.Order("loans.created_at DESC").Limit(10).Scan(&rows)

	summaries := make([]LoanSummary, len(rows))
	for i, row := range rows {
		summaries[i] = LoanSummary{
			ID:           row.ID,
			ReferenceNo:  row.ReferenceNo,
			CustomerName: row.CustomerName,
			TotalAmount:  row.TotalAmount,
			Status:       row.Status,
			CreatedAt:    row.CreatedAt,
		}
	}
	return summaries
}
