package repository

import (
	"database/sql"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"

	"github.com/sirupsen/logrus"
)

// ITransactionRepository defines the append-only transaction log. Rows are
// never updated or deleted once written.
type ITransactionRepository interface {
	CreateTransaction(tx *sql.Tx, transaction *model.Transaction) error
	GetByAccountNumber(accountNumber string) ([]*model.Transaction, error)
	GetAll() ([]*model.Transaction, error)
}

type TransactionRepository struct {
	DB *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{DB: db}
}

// CreateTransaction appends one row inside the transfer's transaction. The
// database assigns the identifier and the commit timestamp.
func (r *TransactionRepository) CreateTransaction(tx *sql.Tx, transaction *model.Transaction) error {
	log := logger.Log.WithFields(logrus.Fields{
		"sender_account_number":   transaction.SenderAccountNumber,
		"receiver_account_number": transaction.ReceiverAccountNumber,
		"amount":                  transaction.Amount.String(),
	})
	log.Info("Executing query to create a new transaction")

	query := `INSERT INTO transactions (sender_account_number, receiver_account_number, amount, description)
		VALUES ($1, $2, $3, $4) RETURNING transaction_id, transaction_time`
	err := tx.QueryRow(query, transaction.SenderAccountNumber, transaction.ReceiverAccountNumber,
		transaction.Amount, transaction.Description).
		Scan(&transaction.ID, &transaction.TransactionTime)
	if err != nil {
		log.WithError(err).Error("Failed to execute create transaction query")
		return err
	}
	return nil
}

// GetByAccountNumber retrieves every transaction the account took part in,
// sent or received, newest first.
func (r *TransactionRepository) GetByAccountNumber(accountNumber string) ([]*model.Transaction, error) {
	log := logger.Log.WithField("account_number", accountNumber)
	log.Info("Executing query to get transactions by account number")

	query := `
		SELECT transaction_id, sender_account_number, receiver_account_number, amount, COALESCE(description, ''), transaction_time
		FROM transactions
		WHERE sender_account_number = $1 OR receiver_account_number = $1
		ORDER BY transaction_time DESC`

	rows, err := r.DB.Query(query, accountNumber)
	if err != nil {
		log.WithError(err).Error("Failed to execute query for transactions by account number")
		return nil, err
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// GetAll retrieves the full transaction log, newest id first.
func (r *TransactionRepository) GetAll() ([]*model.Transaction, error) {
	logger.Log.Info("Executing query to get all transactions")

	query := `
		SELECT transaction_id, sender_account_number, receiver_account_number, amount, COALESCE(description, ''), transaction_time
		FROM transactions
		ORDER BY transaction_id DESC`

	rows, err := r.DB.Query(query)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute query for all transactions")
		return nil, err
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func collectTransactions(rows *sql.Rows) ([]*model.Transaction, error) {
	var transactions []*model.Transaction
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.SenderAccountNumber, &t.ReceiverAccountNumber,
			&t.Amount, &t.Description, &t.TransactionTime); err != nil {
			logger.Log.WithError(err).Error("Failed to scan transaction row")
			return nil, err
		}
		transactions = append(transactions, &t)
	}
	return transactions, rows.Err()
}
