package service

import (
	"database/sql"
	"errors"
	"go-bank-ledger/model"
	"go-bank-ledger/repository"

	"golang.org/x/crypto/bcrypt"
)

var ErrDuplicateCustomer = errors.New("a customer with that aadhar number already exists")

// CustomerService handles customer registration.
type CustomerService struct {
	customerRepo repository.ICustomerRepository
}

func NewCustomerService(customerRepo repository.ICustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CreateCustomer registers a new customer. Duplicates are detected with an
// explicit existence check up front; the PIN is stored as a bcrypt hash and
// never persisted or logged in the clear.
func (s *CustomerService) CreateCustomer(req model.CreateCustomerRequest) (*model.Customer, error) {
	exists, err := s.customerRepo.ExistsByAadharNumber(req.AadharNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateCustomer
	}

	pinHash, err := bcrypt.GenerateFromPassword([]byte(req.Pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	customer := &model.Customer{
		Name:         req.Name,
		PhoneNumber:  req.PhoneNumber,
		Email:        req.Email,
		Address:      req.Address,
		PinHash:      string(pinHash),
		AadharNumber: req.AadharNumber,
		DOB:          req.DOB,
		Status:       model.CustomerActive,
	}

	if err := s.customerRepo.CreateCustomer(customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// GetCustomer retrieves one customer by aadhar number.
func (s *CustomerService) GetCustomer(aadharNumber string) (*model.Customer, error) {
	customer, err := s.customerRepo.GetByAadharNumber(aadharNumber)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}

// GetAllCustomers retrieves every registered customer.
func (s *CustomerService) GetAllCustomers() ([]*model.Customer, error) {
	return s.customerRepo.GetAllCustomers()
}
