package services

import (
	"context"
	"errors"
	"log"

	"devicepay/internal/adapters/persistence/models"
	"devicepay/internal/adapters/persistence/repositories"
	"devicepay/internal/core/domain"

	"gorm.io/gorm"
)

// Customer service errors
var (
	ErrCustomerNotFound = errors.New("customer not found")
)

// CustomerService handles the merchant-scoped customer directory
type CustomerService struct {
	customerRepo repositories.CustomerRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repositories.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CreateCustomerInput represents customer registration input
type CreateCustomerInput struct {
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Phone    string `json:"phone" validate:"required"`
	Email    string `json:"email"`
}

// UpdateCustomerInput represents customer update input
type UpdateCustomerInput struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
}

// CreateCustomer registers a customer under the caller's merchant
func (s *CustomerService) CreateCustomer(ctx context.Context, merchantID uint, input *CreateCustomerInput) (*models.Customer, error) {
	customer := &models.Customer{
		MerchantID: merchantID,
		FullName:   input.FullName,
		Phone:      input.Phone,
		Email:      input.Email,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	log.Printf("✅ Customer registered: %s (merchant %d)", customer.FullName, merchantID)
	return customer, nil
}

// GetCustomer gets a customer within the caller's merchant scope
func (s *CustomerService) GetCustomer(ctx context.Context, id uint, callerMerchantID *uint) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	if callerMerchantID != nil && customer.MerchantID != *callerMerchantID {
		return nil, domain.ScopeViolation("customer belongs to another merchant", map[string]interface{}{
			"customer_id": id,
		})
	}

	return customer, nil
}

// ListCustomers lists a merchant's customers with pagination
func (s *CustomerService) ListCustomers(ctx context.Context, merchantID uint, offset, limit int) ([]*models.Customer, int64, error) {
	return s.customerRepo.List(ctx, merchantID, offset, limit)
}

// UpdateCustomer updates a customer within the caller's merchant scope
func (s *CustomerService) UpdateCustomer(ctx context.Context, id uint, callerMerchantID *uint, input *UpdateCustomerInput) (*models.Customer, error) {
	customer, err := s.GetCustomer(ctx, id, callerMerchantID)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		customer.FullName = *input.FullName
	}
	if input.Phone != nil {
		customer.Phone = *input.Phone
	}
	if input.Email != nil {
		customer.Email = *input.Email
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}
