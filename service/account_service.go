package service

import (
	"database/sql"
	"errors"
	"fmt"
	"go-bank-ledger/model"
	"go-bank-ledger/repository"

	"github.com/shopspring/decimal"
)

var (
	ErrCustomerNotFound    = errors.New("no customer registered for that aadhar number")
	ErrBelowMinimumBalance = errors.New("opening balance is below the minimum balance")
)

// firstAccountNumber seeds the 12-digit sequential account number range.
const firstAccountNumber = int64(100000000000)

// AccountService handles account provisioning. Balance mutations after
// provisioning belong exclusively to the transfer engine.
type AccountService struct {
	accountRepo    repository.IAccountRepository
	customerRepo   repository.ICustomerRepository
	minimumBalance decimal.Decimal
}

func NewAccountService(accountRepo repository.IAccountRepository, customerRepo repository.ICustomerRepository, minimumBalance decimal.Decimal) *AccountService {
	return &AccountService{
		accountRepo:    accountRepo,
		customerRepo:   customerRepo,
		minimumBalance: minimumBalance,
	}
}

// CreateNewAccount provisions an account for an existing customer. The
// customer is looked up by aadhar number before any mutation; the account
// number is assigned sequentially.
func (s *AccountService) CreateNewAccount(req model.CreateAccountRequest) (*model.Account, error) {
	customer, err := s.customerRepo.GetByAadharNumber(req.AadharNumber)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	openingBalance := req.OpeningBalance
	if openingBalance.IsZero() {
		openingBalance = s.minimumBalance
	}
	if openingBalance.LessThan(s.minimumBalance) {
		return nil, ErrBelowMinimumBalance
	}

	lastAccountNumber, err := s.accountRepo.GetLastAccountNumber()
	if err != nil {
		return nil, err
	}
	if lastAccountNumber == 0 {
		lastAccountNumber = firstAccountNumber
	}

	account := &model.Account{
		CustomerID:        customer.ID,
		AccountNumber:     fmt.Sprintf("%012d", lastAccountNumber+1),
		Balance:           openingBalance,
		AccountType:       req.AccountType,
		AccountName:       req.AccountName,
		PhoneNumberLinked: req.PhoneNumberLinked,
		IFSCCode:          req.IFSCCode,
		BankName:          req.BankName,
		Status:            model.AccountActive,
	}

	if err := s.accountRepo.CreateAccount(account); err != nil {
		return nil, err
	}
	return account, nil
}

// GetAccount retrieves one account by its account number.
func (s *AccountService) GetAccount(accountNumber string) (*model.Account, error) {
	account, err := s.accountRepo.GetByAccountNumber(accountNumber)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// GetAllAccounts retrieves every account. Not cached so the view stays fresh.
func (s *AccountService) GetAllAccounts() ([]*model.Account, error) {
	return s.accountRepo.GetAllAccounts()
}
