package repositories

import (
	"context"
	"time"

	"devicepay/internal/adapters/persistence/models"
)

// MerchantRepository defines merchant onboarding repository interface
type MerchantRepository interface {
	Create(ctx context.Context, merchant *models.Merchant) error
	GetByID(ctx context.Context, id uint) (*models.Merchant, error)
	GetByCode(ctx context.Context, code string) (*models.Merchant, error)
	List(ctx context.Context, offset, limit int) ([]*models.Merchant, int64, error)
	Update(ctx context.Context, merchant *models.Merchant) error
}

// UserRepository defines staff user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, merchantID *uint, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// ProductRepository defines product catalog repository interface.
// The origination engine reads financing constraints through GetByID;
// everything else serves the catalog CRUD surface.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	List(ctx context.Context, merchantID *uint, offset, limit int) ([]*models.Product, int64, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uint) error
}

// CustomerRepository defines customer directory repository interface
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id uint) (*models.Customer, error)
	List(ctx context.Context, merchantID uint, offset, limit int) ([]*models.Customer, int64, error)
	Update(ctx context.Context, customer *models.Customer) error
}

// DeviceRepository defines device registry repository interface
type DeviceRepository interface {
	Create(ctx context.Context, device *models.Device) error
	GetByID(ctx context.Context, id uint) (*models.Device, error)
	GetByIMEI(ctx context.Context, imei string) (*models.Device, error)
	List(ctx context.Context, merchantID *uint, status string, offset, limit int) ([]*models.Device, int64, error)
}

// LoanRepository defines read access to loans and their installments.
// All loan writes go through TxStores inside a transaction.
type LoanRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Loan, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*models.Loan, error)
	List(ctx context.Context, merchantID *uint, status string, offset, limit int) ([]*models.Loan, int64, error)
	GetInstallments(ctx context.Context, loanID uint) ([]*models.Installment, error)
	GetInstallment(ctx context.Context, id uint) (*models.Installment, error)
	ListOverdueActive(ctx context.Context, cutoff time.Time) ([]*models.Loan, error)
}

// TxStores is the write surface available inside an atomic transaction.
// Every method either takes full effect with the surrounding commit or
// leaves no trace after rollback.
type TxStores interface {
	CreateLoan(ctx context.Context, loan *models.Loan) error
	CreateInstallments(ctx context.Context, installments []*models.Installment) error
	// AssignDevice transitions a device fromStatus -> toStatus and binds the
	// financed customer. The status predicate makes the update conditional:
	// a concurrent origination that already claimed the device leaves zero
	// affected rows and the whole transaction fails.
	AssignDevice(ctx context.Context, deviceID, customerID uint, fromStatus, toStatus string) error
	UpdateDeviceStatus(ctx context.Context, deviceID uint, status string) error
	UpdateLoanStatus(ctx context.Context, loanID uint, status string) error
	MarkInstallmentPaid(ctx context.Context, installmentID uint, paidAt time.Time) error
	CountPendingInstallments(ctx context.Context, loanID uint) (int64, error)
}

// TxManager runs a function inside a single database transaction with
// all-or-nothing semantics.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(stores TxStores) error) error
}

// IdempotencyStore reserves client-supplied idempotency keys so a retried
// origination cannot create a second loan while the first is in flight.
type IdempotencyStore interface {
	// Reserve returns true if the key was acquired by this caller.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
