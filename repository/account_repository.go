package repository

import (
	"database/sql"
	"errors"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ErrNegativeBalance is returned before any statement is issued when a caller
// attempts to write a balance below zero.
var ErrNegativeBalance = errors.New("account balance cannot be negative")

// IAccountRepository defines the account side of the ledger store. The
// *sql.Tx parameters mark the operations that must run inside the transfer
// commit's transaction boundary.
type IAccountRepository interface {
	CreateAccount(account *model.Account) error
	GetByAccountNumber(accountNumber string) (*model.Account, error)
	GetAllAccounts() ([]*model.Account, error)
	GetLastAccountNumber() (int64, error)
	GetAccountForUpdate(tx *sql.Tx, accountNumber string) (*model.Account, error)
	UpdateAccountBalance(tx *sql.Tx, accountNumber string, newBalance decimal.Decimal) error
	GetBalance(accountNumber string) (decimal.Decimal, error)
	GetPinHashByAccountNumber(tx *sql.Tx, accountNumber string) (string, error)
	GetContactByAccountNumber(accountNumber string) (*model.Contact, error)
}

type AccountRepository struct {
	DB *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{DB: db}
}

const accountColumns = `account_id, customer_id, account_number, balance, account_type, account_name, phone_number_linked, ifsc_code, bank_name, status, created_at, modified_at`

func scanAccount(row interface{ Scan(...interface{}) error }) (*model.Account, error) {
	acc := &model.Account{}
	err := row.Scan(&acc.ID, &acc.CustomerID, &acc.AccountNumber, &acc.Balance,
		&acc.AccountType, &acc.AccountName, &acc.PhoneNumberLinked, &acc.IFSCCode,
		&acc.BankName, &acc.Status, &acc.CreatedAt, &acc.ModifiedAt)
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// CreateAccount adds a new account to the database.
func (r *AccountRepository) CreateAccount(account *model.Account) error {
	log := logger.Log.WithFields(logrus.Fields{
		"customer_id":    account.CustomerID,
		"account_number": account.AccountNumber,
		"bank_name":      account.BankName,
	})
	log.Info("Executing query to create a new account")

	query := `INSERT INTO accounts (customer_id, account_number, balance, account_type, account_name, phone_number_linked, ifsc_code, bank_name, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING account_id, created_at, modified_at`
	err := r.DB.QueryRow(query, account.CustomerID, account.AccountNumber, account.Balance,
		account.AccountType, account.AccountName, account.PhoneNumberLinked,
		account.IFSCCode, account.BankName, account.Status).
		Scan(&account.ID, &account.CreatedAt, &account.ModifiedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create account query")
		return err
	}
	return nil
}

// GetByAccountNumber retrieves a single account, or sql.ErrNoRows.
func (r *AccountRepository) GetByAccountNumber(accountNumber string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`
	account, err := scanAccount(r.DB.QueryRow(query, accountNumber))
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).WithField("account_number", accountNumber).
				Error("Failed to execute query for account by number")
		}
		return nil, err
	}
	return account, nil
}

// GetAllAccounts retrieves all accounts from the database.
func (r *AccountRepository) GetAllAccounts() ([]*model.Account, error) {
	logger.Log.Info("Executing query to get all accounts")

	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY account_id`
	rows, err := r.DB.Query(query)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute query for all accounts")
		return nil, err
	}
	defer rows.Close()

	var accounts []*model.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			logger.Log.WithError(err).Error("Failed to scan account row")
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// GetLastAccountNumber returns the highest assigned account number, or zero
// when no accounts exist yet.
func (r *AccountRepository) GetLastAccountNumber() (int64, error) {
	var last sql.NullInt64
	query := `SELECT MAX(account_number::BIGINT) FROM accounts`
	if err := r.DB.QueryRow(query).Scan(&last); err != nil {
		logger.Log.WithError(err).Error("Failed to fetch last account number")
		return 0, err
	}
	return last.Int64, nil
}

// GetAccountForUpdate locks the account row for the duration of the enclosing
// transaction. Concurrent transfers touching this account serialize here.
func (r *AccountRepository) GetAccountForUpdate(tx *sql.Tx, accountNumber string) (*model.Account, error) {
	log := logger.Log.WithField("account_number", accountNumber)
	log.Info("Executing query to get account for update")

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1 FOR UPDATE`
	account, err := scanAccount(tx.QueryRow(query, accountNumber))
	if err != nil {
		if err == sql.ErrNoRows {
			log.Info("Account not found for update")
		} else {
			log.WithError(err).Error("Failed to execute get account for update query")
		}
		return nil, err
	}
	return account, nil
}

// UpdateAccountBalance writes a new balance inside the given transaction.
// Negative balances are rejected here in addition to the schema CHECK.
func (r *AccountRepository) UpdateAccountBalance(tx *sql.Tx, accountNumber string, newBalance decimal.Decimal) error {
	log := logger.Log.WithFields(logrus.Fields{
		"account_number": accountNumber,
		"new_balance":    newBalance.String(),
	})

	if newBalance.IsNegative() {
		log.Error("Rejected attempt to set a negative balance")
		return ErrNegativeBalance
	}
	log.Info("Executing query to update account balance")

	query := `UPDATE accounts SET balance = $1, modified_at = NOW() WHERE account_number = $2`
	if _, err := tx.Exec(query, newBalance, accountNumber); err != nil {
		log.WithError(err).Error("Failed to execute update account balance query")
		return err
	}
	return nil
}

// GetBalance reads the current balance outside any transfer transaction.
func (r *AccountRepository) GetBalance(accountNumber string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	query := `SELECT balance FROM accounts WHERE account_number = $1`
	if err := r.DB.QueryRow(query, accountNumber).Scan(&balance); err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).WithField("account_number", accountNumber).
				Error("Failed to fetch account balance")
		}
		return decimal.Decimal{}, err
	}
	return balance, nil
}

// GetPinHashByAccountNumber resolves the authorization PIN hash through the
// account's owning customer. Runs inside the transfer transaction so the
// authorization decision and the balance mutation see the same rows.
func (r *AccountRepository) GetPinHashByAccountNumber(tx *sql.Tx, accountNumber string) (string, error) {
	var pinHash string
	query := `SELECT c.customer_pin FROM customers c
		JOIN accounts a ON a.customer_id = c.customer_id
		WHERE a.account_number = $1`
	if err := tx.QueryRow(query, accountNumber).Scan(&pinHash); err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).WithField("account_number", accountNumber).
				Error("Failed to resolve pin for account")
		}
		return "", err
	}
	return pinHash, nil
}

// GetContactByAccountNumber resolves the holder name and email through the
// owning customer, plus the account's bank name, for notification dispatch.
func (r *AccountRepository) GetContactByAccountNumber(accountNumber string) (*model.Contact, error) {
	contact := &model.Contact{}
	query := `SELECT c.name, c.email, a.bank_name FROM customers c
		JOIN accounts a ON a.customer_id = c.customer_id
		WHERE a.account_number = $1`
	err := r.DB.QueryRow(query, accountNumber).Scan(&contact.HolderName, &contact.Email, &contact.BankName)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).WithField("account_number", accountNumber).
				Error("Failed to resolve contact for account")
		}
		return nil, err
	}
	return contact, nil
}
