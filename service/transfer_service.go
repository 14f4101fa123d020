package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"
	"go-bank-ledger/notifier"
	"go-bank-ledger/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrSameAccountTransfer = errors.New("sender and receiver must differ")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrIncorrectPin        = errors.New("incorrect pin")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrAccountNotFound     = errors.New("account not found")
)

// StorageError marks a durability or connectivity failure on the commit path.
// The commit has already been rolled back when it is returned; callers may
// retry the whole transfer.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// TransferService executes fund transfers as single atomic units against the
// ledger. It holds no state across calls.
type TransferService struct {
	db              *sql.DB
	accountRepo     repository.IAccountRepository
	transactionRepo repository.ITransactionRepository
	cache           ICacheClient
	notifier        notifier.Notifier
	minimumBalance  decimal.Decimal
}

func NewTransferService(
	db *sql.DB,
	accountRepo repository.IAccountRepository,
	transactionRepo repository.ITransactionRepository,
	cache ICacheClient,
	n notifier.Notifier,
	minimumBalance decimal.Decimal,
) *TransferService {
	return &TransferService{
		db:              db,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		cache:           cache,
		notifier:        n,
		minimumBalance:  minimumBalance,
	}
}

// ExecuteTransfer validates the request, then debits the sender, credits the
// receiver and appends one transaction row inside a single database
// transaction. On success it returns the persisted transaction with its
// assigned identifier and timestamp; notification dispatch happens after the
// commit and can never undo it.
func (s *TransferService) ExecuteTransfer(ctx context.Context, req model.TransferRequest) (*model.Transaction, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"sender_account_number":   req.SenderAccountNumber,
		"receiver_account_number": req.ReceiverAccountNumber,
		"amount":                  req.Amount.String(),
	})
	log.Info("Starting money transfer process")

	if req.SenderAccountNumber == req.ReceiverAccountNumber {
		return nil, ErrSameAccountTransfer
	}
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &StorageError{Op: "begin transfer", Err: err}
	}
	defer tx.Rollback()

	sender, receiver, err := s.lockAccounts(tx, req.SenderAccountNumber, req.ReceiverAccountNumber)
	if err != nil {
		return nil, err
	}

	pinHash, err := s.accountRepo.GetPinHashByAccountNumber(tx, req.SenderAccountNumber)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrIncorrectPin
		}
		return nil, &StorageError{Op: "resolve sender pin", Err: err}
	}
	if bcrypt.CompareHashAndPassword([]byte(pinHash), []byte(req.Pin)) != nil {
		log.Warn("Transfer rejected: pin mismatch")
		return nil, ErrIncorrectPin
	}

	if sender.Balance.LessThan(req.Amount) {
		return nil, ErrInsufficientFunds
	}
	newSenderBalance := sender.Balance.Sub(req.Amount)
	// Funded accounts may not dip below the minimum-balance floor; accounts
	// that already sit below it are only held to balance >= amount.
	if sender.Balance.GreaterThanOrEqual(s.minimumBalance) && newSenderBalance.LessThan(s.minimumBalance) {
		return nil, ErrInsufficientFunds
	}

	if err := s.accountRepo.UpdateAccountBalance(tx, sender.AccountNumber, newSenderBalance); err != nil {
		return nil, &StorageError{Op: "debit sender", Err: err}
	}
	if err := s.accountRepo.UpdateAccountBalance(tx, receiver.AccountNumber, receiver.Balance.Add(req.Amount)); err != nil {
		return nil, &StorageError{Op: "credit receiver", Err: err}
	}

	transaction := &model.Transaction{
		SenderAccountNumber:   req.SenderAccountNumber,
		ReceiverAccountNumber: req.ReceiverAccountNumber,
		Amount:                req.Amount,
		Description:           req.Description,
	}
	if err := s.transactionRepo.CreateTransaction(tx, transaction); err != nil {
		return nil, &StorageError{Op: "append transaction", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return nil, &StorageError{Op: "commit transfer", Err: err}
	}

	s.cache.Del(ctx, transactionsCacheKey(req.SenderAccountNumber), transactionsCacheKey(req.ReceiverAccountNumber))

	go s.dispatchTransferAlerts(*transaction)

	log.WithField("transaction_id", transaction.ID).Info("Transfer completed successfully")
	return transaction, nil
}

// lockAccounts takes both row locks in account-number order so that two
// opposite-direction transfers over the same pair cannot deadlock. A missing
// sender reports ErrIncorrectPin, a missing receiver ErrAccountNotFound.
func (s *TransferService) lockAccounts(tx *sql.Tx, senderNumber, receiverNumber string) (sender, receiver *model.Account, err error) {
	first, second := senderNumber, receiverNumber
	if second < first {
		first, second = second, first
	}

	locked := make(map[string]*model.Account, 2)
	for _, number := range []string{first, second} {
		account, err := s.accountRepo.GetAccountForUpdate(tx, number)
		if err == sql.ErrNoRows {
			if number == senderNumber {
				return nil, nil, ErrIncorrectPin
			}
			return nil, nil, ErrAccountNotFound
		}
		if err != nil {
			return nil, nil, &StorageError{Op: "lock account", Err: err}
		}
		locked[number] = account
	}
	return locked[senderNumber], locked[receiverNumber], nil
}

// dispatchTransferAlerts resolves both parties' contact details and hands one
// message per party to the notifier. Runs outside the commit; every failure
// here is logged and swallowed, and one party's failure never blocks the
// other's delivery.
func (s *TransferService) dispatchTransferAlerts(t model.Transaction) {
	log := logger.Log.WithField("transaction_id", t.ID)

	if contact, err := s.accountRepo.GetContactByAccountNumber(t.SenderAccountNumber); err != nil {
		log.WithError(err).Warn("Could not resolve sender contact for notification")
	} else {
		s.notifier.Notify(contact.Email, notifier.TransferAlertSubject,
			notifier.ComposeDebitAlert(contact, t.ReceiverAccountNumber, t.Amount))
	}

	if contact, err := s.accountRepo.GetContactByAccountNumber(t.ReceiverAccountNumber); err != nil {
		log.WithError(err).Warn("Could not resolve receiver contact for notification")
	} else {
		s.notifier.Notify(contact.Email, notifier.TransferAlertSubject,
			notifier.ComposeCreditAlert(contact, t.SenderAccountNumber, t.Amount))
	}
}
