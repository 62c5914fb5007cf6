package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"devicepay/internal/adapters/persistence/models"
	"devicepay/internal/adapters/persistence/repositories"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errStorageFault = errors.New("simulated storage fault")

// memoryStore is the committed state shared by the fake repositories and
// the fake transaction manager. Writes only land here when a transaction
// callback returns nil, which is what lets the tests observe rollbacks.
type memoryStore struct {
	mu                sync.Mutex
	loans             map[uint]*models.Loan
	installments      map[uint]*models.Installment
	devices           map[uint]*models.Device
	customers         map[uint]*models.Customer
	products          map[uint]*models.Product
	nextLoanID        uint
	nextInstallmentID uint
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		loans:        make(map[uint]*models.Loan),
		installments: make(map[uint]*models.Installment),
		devices:      make(map[uint]*models.Device),
		customers:    make(map[uint]*models.Customer),
		products:     make(map[uint]*models.Product),
	}
}

func (st *memoryStore) installmentsForLoan(loanID uint) []*models.Installment {
	st.mu.Lock()
	defer st.mu.Unlock()
	var out []*models.Installment
	for _, inst := range st.installments {
		if inst.LoanID == loanID {
			out = append(out, inst)
		}
	}
	return out
}

// fakeTxStores stages writes and applies them on commit. failOn names the
// method that should return errStorageFault, to exercise rollback paths.
type fakeTxStores struct {
	store      *memoryStore
	failOn     string
	stagedPaid map[uint]bool
	ops        []func(st *memoryStore)
}

func (f *fakeTxStores) CreateLoan(_ context.Context, loan *models.Loan) error {
	if f.failOn == "CreateLoan" {
		return errStorageFault
	}
	f.store.mu.Lock()
	f.store.nextLoanID++
	loan.ID = f.store.nextLoanID
	f.store.mu.Unlock()

	f.ops = append(f.ops, func(st *memoryStore) {
		cp := *loan
		st.loans[cp.ID] = &cp
	})
	return nil
}

func (f *fakeTxStores) CreateInstallments(_ context.Context, installments []*models.Installment) error {
	if f.failOn == "CreateInstallments" {
		return errStorageFault
	}
	f.store.mu.Lock()
	for _, inst := range installments {
		f.store.nextInstallmentID++
		inst.ID = f.store.nextInstallmentID
	}
	f.store.mu.Unlock()

	f.ops = append(f.ops, func(st *memoryStore) {
		for _, inst := range installments {
			cp := *inst
			st.installments[cp.ID] = &cp
		}
	})
	return nil
}

func (f *fakeTxStores) AssignDevice(_ context.Context, deviceID, customerID uint, fromStatus, toStatus string) error {
	if f.failOn == "AssignDevice" {
		return errStorageFault
	}
	f.store.mu.Lock()
	device, ok := f.store.devices[deviceID]
	f.store.mu.Unlock()
	if !ok || device.Status != fromStatus {
		return errors.New("device status predicate failed")
	}

	f.ops = append(f.ops, func(st *memoryStore) {
		d := st.devices[deviceID]
		d.Status = toStatus
		d.CustomerID = &customerID
	})
	return nil
}

func (f *fakeTxStores) UpdateDeviceStatus(_ context.Context, deviceID uint, status string) error {
	if f.failOn == "UpdateDeviceStatus" {
		return errStorageFault
	}
	f.ops = append(f.ops, func(st *memoryStore) {
		if d, ok := st.devices[deviceID]; ok {
			d.Status = status
		}
	})
	return nil
}

func (f *fakeTxStores) UpdateLoanStatus(_ context.Context, loanID uint, status string) error {
	if f.failOn == "UpdateLoanStatus" {
		return errStorageFault
	}
	f.ops = append(f.ops, func(st *memoryStore) {
		if l, ok := st.loans[loanID]; ok {
			l.Status = status
		}
	})
	return nil
}

func (f *fakeTxStores) MarkInstallmentPaid(_ context.Context, installmentID uint, paidAt time.Time) error {
	if f.failOn == "MarkInstallmentPaid" {
		return errStorageFault
	}
	if f.stagedPaid == nil {
		f.stagedPaid = make(map[uint]bool)
	}
	f.stagedPaid[installmentID] = true

	f.ops = append(f.ops, func(st *memoryStore) {
		if inst, ok := st.installments[installmentID]; ok {
			inst.Status = models.InstallmentStatusPaid
			inst.PaidAt = &paidAt
		}
	})
	return nil
}

func (f *fakeTxStores) CountPendingInstallments(_ context.Context, loanID uint) (int64, error) {
	if f.failOn == "CountPendingInstallments" {
		return 0, errStorageFault
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var count int64
	for id, inst := range f.store.installments {
		if inst.LoanID == loanID && inst.Status == models.InstallmentStatusPending && !f.stagedPaid[id] {
			count++
		}
	}
	return count, nil
}

// fakeTxManager commits staged writes only when the callback succeeds
type fakeTxManager struct {
	store  *memoryStore
	failOn string
	calls  int
}

func (m *fakeTxManager) WithinTransaction(_ context.Context, fn func(stores repositories.TxStores) error) error {
	m.calls++
	stores := &fakeTxStores{store: m.store, failOn: m.failOn}
	if err := fn(stores); err != nil {
		return err
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for _, op := range stores.ops {
		op(m.store)
	}
	return nil
}

// fakeProductRepo serves products from the shared store
type fakeProductRepo struct{ store *memoryStore }

func (r *fakeProductRepo) Create(_ context.Context, p *models.Product) error {
	r.store.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id uint) (*models.Product, error) {
	if p, ok := r.store.products[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProductRepo) List(_ context.Context, _ *uint, _, _ int) ([]*models.Product, int64, error) {
	return nil, 0, nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *models.Product) error {
	r.store.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id uint) error {
	delete(r.store.products, id)
	return nil
}

// fakeCustomerRepo serves customers from the shared store
type fakeCustomerRepo struct{ store *memoryStore }

func (r *fakeCustomerRepo) Create(_ context.Context, c *models.Customer) error {
	r.store.customers[c.ID] = c
	return nil
}

func (r *fakeCustomerRepo) GetByID(_ context.Context, id uint) (*models.Customer, error) {
	if c, ok := r.store.customers[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCustomerRepo) List(_ context.Context, _ uint, _, _ int) ([]*models.Customer, int64, error) {
	return nil, 0, nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, c *models.Customer) error {
	r.store.customers[c.ID] = c
	return nil
}

// fakeDeviceRepo serves devices from the shared store so committed status
// transitions are visible to subsequent reads
type fakeDeviceRepo struct{ store *memoryStore }

func (r *fakeDeviceRepo) Create(_ context.Context, d *models.Device) error {
	r.store.devices[d.ID] = d
	return nil
}

func (r *fakeDeviceRepo) GetByID(_ context.Context, id uint) (*models.Device, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if d, ok := r.store.devices[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeDeviceRepo) GetByIMEI(_ context.Context, imei string) (*models.Device, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, d := range r.store.devices {
		if d.IMEI == imei {
			cp := *d
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeDeviceRepo) List(_ context.Context, _ *uint, _ string, _, _ int) ([]*models.Device, int64, error) {
	return nil, 0, nil
}

// fakeLoanRepo serves committed loans from the shared store
type fakeLoanRepo struct{ store *memoryStore }

func (r *fakeLoanRepo) GetByID(_ context.Context, id uint) (*models.Loan, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if l, ok := r.store.loans[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeLoanRepo) GetByIdempotencyKey(_ context.Context, key string) (*models.Loan, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, l := range r.store.loans {
		if l.IdempotencyKey != nil && *l.IdempotencyKey == key {
			cp := *l
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeLoanRepo) List(_ context.Context, merchantID *uint, status string, _, _ int) ([]*models.Loan, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*models.Loan
	for _, l := range r.store.loans {
		if merchantID != nil && l.MerchantID != *merchantID {
			continue
		}
		if status != "" && l.Status != status {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *fakeLoanRepo) GetInstallments(_ context.Context, loanID uint) ([]*models.Installment, error) {
	return r.store.installmentsForLoan(loanID), nil
}

func (r *fakeLoanRepo) GetInstallment(_ context.Context, id uint) (*models.Installment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if inst, ok := r.store.installments[id]; ok {
		cp := *inst
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeLoanRepo) ListOverdueActive(_ context.Context, cutoff time.Time) ([]*models.Loan, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	seen := make(map[uint]bool)
	var out []*models.Loan
	for _, inst := range r.store.installments {
		if inst.Status != models.InstallmentStatusPending || !inst.DueDate.Before(cutoff) {
			continue
		}
		loan, ok := r.store.loans[inst.LoanID]
		if !ok || loan.Status != models.LoanStatusActive || seen[loan.ID] {
			continue
		}
		seen[loan.ID] = true
		cp := *loan
		out = append(out, &cp)
	}
	return out, nil
}

// fakeIdempotencyStore is an in-memory key reservation
type fakeIdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{keys: make(map[string]bool)}
}

func (s *fakeIdempotencyStore) Reserve(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *fakeIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

// fixture wires a service graph over one shared in-memory store seeded
// with two merchants' worth of catalog, customers and inventory.
type fixture struct {
	store       *memoryStore
	txManager   *fakeTxManager
	loanRepo    *fakeLoanRepo
	idempotency *fakeIdempotencyStore
	origination *OriginationService
	repayment   *RepaymentService
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func uintPtr(v uint) *uint { return &v }

func newFixture() *fixture {
	store := newMemoryStore()

	store.products[1] = &models.Product{
		ID:             1,
		MerchantID:     1,
		Name:           "Samsung Galaxy A16",
		Price:          d("150000"),
		MinTenure:      3,
		MaxTenure:      12,
		MinDownPayment: d("0"),
		InterestRate:   d("5"),
		Currency:       "KES",
		IsActive:       true,
	}
	store.products[2] = &models.Product{
		ID:             2,
		MerchantID:     2,
		Name:           "Tecno Spark 20",
		Price:          d("100000"),
		MinTenure:      1,
		MaxTenure:      6,
		MinDownPayment: d("0"),
		InterestRate:   d("0"),
		Currency:       "KES",
		IsActive:       true,
	}
	store.customers[1] = &models.Customer{ID: 1, MerchantID: 1, FullName: "Amina Odhiambo"}
	store.customers[2] = &models.Customer{ID: 2, MerchantID: 2, FullName: "Brian Kiprotich"}
	store.devices[1] = &models.Device{ID: 1, MerchantID: uintPtr(1), IMEI: "350000000000001", Status: models.DeviceStatusInStock}
	store.devices[2] = &models.Device{ID: 2, MerchantID: uintPtr(2), IMEI: "350000000000002", Status: models.DeviceStatusInStock}
	store.devices[3] = &models.Device{ID: 3, MerchantID: nil, IMEI: "350000000000003", Status: models.DeviceStatusInStock}
	store.devices[4] = &models.Device{ID: 4, MerchantID: uintPtr(1), IMEI: "350000000000004", Status: models.DeviceStatusFinanced}

	txManager := &fakeTxManager{store: store}
	loanRepo := &fakeLoanRepo{store: store}
	idempotency := newFakeIdempotencyStore()

	origination := NewOriginationService(
		&fakeProductRepo{store: store},
		&fakeCustomerRepo{store: store},
		&fakeDeviceRepo{store: store},
		loanRepo,
		txManager,
		idempotency,
	)
	repayment := NewRepaymentService(loanRepo, txManager)

	return &fixture{
		store:       store,
		txManager:   txManager,
		loanRepo:    loanRepo,
		idempotency: idempotency,
		origination: origination,
		repayment:   repayment,
	}
}
