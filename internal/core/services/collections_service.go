package services

import (
	"context"
	"log"
	"time"

	"devicepay/internal/adapters/persistence/models"
	"devicepay/internal/adapters/persistence/repositories"
)

// DefaultGracePeriodDays is how long past a due date an installment may
// stay unpaid before the sweep defaults the loan.
const DefaultGracePeriodDays = 14

// CollectionsService defaults loans whose installments are overdue past
// the grace period and flags their devices for locking. The actual remote
// lock is enforced by an external poller that reads the device status
// written here.
type CollectionsService struct {
	loanRepo        repositories.LoanRepository
	txManager       repositories.TxManager
	gracePeriodDays int
	now             func() time.Time
}

// NewCollectionsService creates a new collections service
func NewCollectionsService(loanRepo repositories.LoanRepository, txManager repositories.TxManager, gracePeriodDays int) *CollectionsService {
	if gracePeriodDays <= 0 {
		gracePeriodDays = DefaultGracePeriodDays
	}
	return &CollectionsService{
		loanRepo:        loanRepo,
		txManager:       txManager,
		gracePeriodDays: gracePeriodDays,
		now:             time.Now,
	}
}

// Sweep finds active loans overdue past the grace period, marks each
// DEFAULTED and its device LOCKED. Each loan is handled in its own
// transaction so one failure does not block the rest of the sweep.
func (s *CollectionsService) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().AddDate(0, 0, -s.gracePeriodDays)

	overdue, err := s.loanRepo.ListOverdueActive(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	defaulted := 0
	for _, loan := range overdue {
		err := s.txManager.WithinTransaction(ctx, func(stores repositories.TxStores) error {
			if err := stores.UpdateLoanStatus(ctx, loan.ID, models.LoanStatusDefaulted); err != nil {
				return err
			}
			return stores.UpdateDeviceStatus(ctx, loan.DeviceID, models.DeviceStatusLocked)
		})
		if err != nil {
			log.Printf("⚠️ Collections sweep: failed to default loan %d: %v", loan.ID, err)
			continue
		}
		defaulted++
	}

	if defaulted > 0 {
		log.Printf("🔒 Collections sweep: defaulted %d loan(s), devices flagged for lock", defaulted)
	}

	return defaulted, nil
}
