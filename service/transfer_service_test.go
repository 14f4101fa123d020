// service/transfer_service_test.go
package service

import (
	"context"
	"database/sql"
	"errors"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// TestMain runs setup before any tests in this package are executed.
func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// MockAccountRepository is a mock for IAccountRepository.
type MockAccountRepository struct{ mock.Mock }

func (m *MockAccountRepository) GetAccountForUpdate(tx *sql.Tx, accountNumber string) (*model.Account, error) {
	args := m.Called(tx, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalance(tx *sql.Tx, accountNumber string, newBalance decimal.Decimal) error {
	args := m.Called(tx, accountNumber, newBalance)
	return args.Error(0)
}

func (m *MockAccountRepository) GetPinHashByAccountNumber(tx *sql.Tx, accountNumber string) (string, error) {
	args := m.Called(tx, accountNumber)
	return args.String(0), args.Error(1)
}

func (m *MockAccountRepository) GetContactByAccountNumber(accountNumber string) (*model.Contact, error) {
	args := m.Called(accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contact), args.Error(1)
}

func (m *MockAccountRepository) CreateAccount(account *model.Account) error {
	args := m.Called(account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByAccountNumber(accountNumber string) (*model.Account, error) {
	args := m.Called(accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountRepository) GetAllAccounts() ([]*model.Account, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Account), args.Error(1)
}

func (m *MockAccountRepository) GetLastAccountNumber() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) GetBalance(accountNumber string) (decimal.Decimal, error) {
	args := m.Called(accountNumber)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockTransactionRepository is a mock for ITransactionRepository.
type MockTransactionRepository struct{ mock.Mock }

func (m *MockTransactionRepository) CreateTransaction(tx *sql.Tx, t *model.Transaction) error {
	args := m.Called(tx, t)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByAccountNumber(accountNumber string) ([]*model.Transaction, error) {
	args := m.Called(accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetAll() ([]*model.Transaction, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Transaction), args.Error(1)
}

// fakeCache is an in-memory ICacheClient recording what was invalidated.
type fakeCache struct {
	mu      sync.Mutex
	values  map[string]string
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}}
}

func (c *fakeCache) Get(ctx context.Context, key string) *redis.StringCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	if value, ok := c.values[key]; ok {
		return redis.NewStringResult(value, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		c.values[key] = string(v)
	case string:
		c.values[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (c *fakeCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.values, key)
		c.deleted = append(c.deleted, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

// fakeNotifier records deliveries on a channel so tests can wait for the
// asynchronous dispatch.
type fakeNotifier struct {
	delivered chan string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{delivered: make(chan string, 16)}
}

func (n *fakeNotifier) Notify(recipientEmail, subject, body string) {
	n.delivered <- recipientEmail
}

func (n *fakeNotifier) waitFor(t *testing.T, count int) []string {
	t.Helper()
	var recipients []string
	for i := 0; i < count; i++ {
		select {
		case r := <-n.delivered:
			recipients = append(recipients, r)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for notification %d of %d", i+1, count)
		}
	}
	return recipients
}

const (
	senderNumber   = "100000000001"
	receiverNumber = "100000000002"
	correctPin     = "123456"
)

var minimumBalance = decimal.NewFromInt(50)

func pinHashForTest(t *testing.T) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(correctPin), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hash)
}

func decimalEq(expected decimal.Decimal) interface{} {
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(expected) })
}

func transferRequest(amount int64) model.TransferRequest {
	return model.TransferRequest{
		SenderAccountNumber:   senderNumber,
		ReceiverAccountNumber: receiverNumber,
		Amount:                decimal.NewFromInt(amount),
		Pin:                   correctPin,
		Description:           "rent",
	}
}

func TestTransferService_ExecuteTransfer_Success(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mockAccountRepo := new(MockAccountRepository)
	mockTxnRepo := new(MockTransactionRepository)
	cache := newFakeCache()
	notified := newFakeNotifier()
	pinHash := pinHashForTest(t)

	transferService := NewTransferService(db, mockAccountRepo, mockTxnRepo, cache, notified, minimumBalance)

	sender := &model.Account{AccountNumber: senderNumber, Balance: decimal.NewFromInt(1000)}
	receiver := &model.Account{AccountNumber: receiverNumber, Balance: decimal.NewFromInt(200)}

	dbMock.ExpectBegin()
	mockAccountRepo.On("GetAccountForUpdate", mock.Anything, senderNumber).Return(sender, nil).Once()
	mockAccountRepo.On("GetAccountForUpdate", mock.Anything, receiverNumber).Return(receiver, nil).Once()
	mockAccountRepo.On("GetPinHashByAccountNumber", mock.Anything, senderNumber).Return(pinHash, nil).Once()
	mockAccountRepo.On("UpdateAccountBalance", mock.Anything, senderNumber, decimalEq(decimal.NewFromInt(500))).Return(nil).Once()
	mockAccountRepo.On("UpdateAccountBalance", mock.Anything, receiverNumber, decimalEq(decimal.NewFromInt(700))).Return(nil).Once()
	mockTxnRepo.On("CreateTransaction", mock.Anything, mock.AnythingOfType("*model.Transaction")).
		Run(func(args mock.Arguments) {
			txn := args.Get(1).(*model.Transaction)
			txn.ID = 42
			txn.TransactionTime = time.Now()
		}).Return(nil).Once()
	dbMock.ExpectCommit()

	mockAccountRepo.On("GetContactByAccountNumber", senderNumber).
		Return(&model.Contact{HolderName: "Asha", Email: "asha@example.com", BankName: "SBI"}, nil).Once()
	mockAccountRepo.On("GetContactByAccountNumber", receiverNumber).
		Return(&model.Contact{HolderName: "Ravi", Email: "ravi@example.com", BankName: "SBI"}, nil).Once()

	transaction, err := transferService.ExecuteTransfer(context.Background(), transferRequest(500))

	assert.NoError(t, err)
	assert.NotNil(t, transaction)
	assert.Equal(t, 42, transaction.ID)
	assert.False(t, transaction.TransactionTime.IsZero())
	assert.Equal(t, senderNumber, transaction.SenderAccountNumber)
	assert.Equal(t, receiverNumber, transaction.ReceiverAccountNumber)
	assert.True(t, transaction.Amount.Equal(decimal.NewFromInt(500)))

	// Both parties get exactly one alert each; dispatch is asynchronous.
	recipients := notified.waitFor(t, 2)
	assert.ElementsMatch(t, []string{"asha@example.com", "ravi@example.com"}, recipients)

	assert.ElementsMatch(t, []string{"transactions:" + senderNumber, "transactions:" + receiverNumber}, cache.deleted)

	mockAccountRepo.AssertExpectations(t)
	mockTxnRepo.AssertExpectations(t)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestTransferService_ExecuteTransfer_Validation(t *testing.T) {
	// Validation failures happen before any transaction is opened, so the
	// sqlmock connection carries no expectations at all.
	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mockAccountRepo := new(MockAccountRepository)
	mockTxnRepo := new(MockTransactionRepository)
	transferService := NewTransferService(db, mockAccountRepo, mockTxnRepo, newFakeCache(), newFakeNotifier(), minimumBalance)

	t.Run("sender equals receiver", func(t *testing.T) {
		req := transferRequest(100)
		req.ReceiverAccountNumber = req.SenderAccountNumber

		_, err := transferService.ExecuteTransfer(context.Background(), req)

		assert.ErrorIs(t, err, ErrSameAccountTransfer)
	})

	t.Run("negative amount", func(t *testing.T) {
		req := transferRequest(100)
		req.Amount = decimal.NewFromInt(-10)

		_, err := transferService.ExecuteTransfer(context.Background(), req)

		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("zero amount", func(t *testing.T) {
		req := transferRequest(100)
		req.Amount = decimal.Zero

		_, err := transferService.ExecuteTransfer(context.Background(), req)

		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	// Repeating an invalid request any number of times must never reach
	// storage.
	t.Run("failure is idempotent", func(t *testing.T) {
		req := transferRequest(100)
		req.Amount = decimal.NewFromInt(-10)

		for i := 0; i < 5; i++ {
			_, err := transferService.ExecuteTransfer(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidAmount)
		}
	})

	mockAccountRepo.AssertNotCalled(t, "GetAccountForUpdate", mock.Anything, mock.Anything)
	mockTxnRepo.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestTransferService_ExecuteTransfer_IncorrectPin(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mockAccountRepo := new(MockAccountRepository)
	mockTxnRepo := new(MockTransactionRepository)
	transferService := NewTransferService(db, mockAccountRepo, mockTxnRepo, newFakeCache(), newFakeNotifier(), minimumBalance)

	sender := &model.Account{AccountNumber: senderNumber, Balance: decimal.NewFromInt(1000)}
	receiver := &model.Account{AccountNumber: receiverNumber, Balance: decimal.NewFromInt(200)}
	pinHash := pinHashForTest(t)

	dbMock.ExpectBegin()
	mockAccountRepo.On("GetAccountForUpdate", mock.Anything, senderNumber).Return(sender, nil).Once()
	mockAccountRepo.On("GetAccountForUpdate", mock.Anything, receiverNumber).Return(receiver, nil).Once()
	mockAccountRepo.On("GetPinHashByAccountNumber", mock.Anything, senderNumber).Return(pinHash, nil).Once()
	dbMock.ExpectRollback()

	req := transferRequest(500)
	req.Pin = "654321"

	_, err = transferService.ExecuteTransfer(context.Background(), req)

	assert.ErrorIs(t, err, ErrIncorrectPin)
	mockAccountRepo.AssertNotCalled(t, "UpdateAccountBalance", mock.Anything, mock.Anything, mock.Anything)
	mockTxnRepo.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
	mockAccountRepo.AssertExpectations(t)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestTransferService_ExecuteTransfer_UnknownAccounts(t *testing.T) {
	t.Run("unknown sender reports incorrect pin", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mockAccountRepo := new(MockAccountRepository)
		transferService := NewTransferService(db, mockAccountRepo, new(MockTransactionRepository), newFakeCache(), newFakeNotifier(), minimumBalance)

		dbMock.ExpectBegin()
		mockAccountRepo.On("GetAccountForUpdate", mock.Anything, senderNumber).Return(nil, sql.ErrNoRows).Once()
		dbMock.ExpectRollback()

		_, err = transferService.ExecuteTransfer(context.Background(), transferRequest(500))

		assert.ErrorIs(t, err, ErrIncorrectPin)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("unknown receiver reports not found", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mockAccountRepo := new(MockAccountRepository)
		transferService := NewTransferService(db, mockAccountRepo, new(MockTransactionRepository), newFakeCache(), newFakeNotifier(), minimumBalance)

		sender := &model.Account{AccountNumber: senderNumber, Balance: decimal.NewFromInt(1000)}

		dbMock.ExpectBegin()
		mockAccountRepo.On("GetAccountForUpdate", mock.Anything, senderNumber).Return(sender, nil).Once()
		mockAccountRepo.On("GetAccountForUpdate", mock.Anything, receiverNumber).Return(nil, sql.ErrNoRows).Once()
		dbMock.ExpectRollback()

		_, err = transferService.ExecuteTransfer(context.Background(), transferRequest(500))

		assert.ErrorIs(t, err, ErrAccountNotFound)
		mockAccountRepo.AssertNotCalled(t, "GetPinHashByAccountNumber", mock.Anything, mock.Anything)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestTransferService_ExecuteTransfer_InsufficientFunds(t *testing.T) {
	pinHash := pinHashForTest(t)

	run := func(t *testing.T, senderBalance, amount int64, wantErr error) {
		db, dbMock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mockAccountRepo := new(MockAccountRepository)
		mockTxnRepo := new(MockTransactionRepository)
		transferService := NewTransferService(db, mockAccountRepo, mockTxnRepo, newFakeCache(), newFakeNotifier(), minimumBalance)

		sender := &model.Account{AccountNumber: senderNumber, Balance: decimal.NewFromInt(senderBalance)}
		receiver := &model.Account{AccountNumber: receiverNumber, Balance: decimal.NewFromInt(200)}

		dbMock.ExpectBegin()
		mockAccountRepo.On("GetAccountForUpdate", mock.Anything, senderNumber).Return(sender, nil).Once()
		mockAccountRepo.On("GetAccountForUpdate", mock.Anything, receiverNumber).Return(receiver, nil).Once()
		mockAccountRepo.On("GetPinHashByAccountNumber", mock.Anything, senderNumber).Return(pinHash, nil).Once()
		dbMock.ExpectRollback()

		_, err = transferService.ExecuteTransfer(context.Background(), transferRequest(amount))

		assert.ErrorIs(t, err, wantErr)
		mockAccountRepo.AssertNotCalled(t, "UpdateAccountBalance", mock.Anything, mock.Anything, mock.Anything)
		mockTxnRepo.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	}

	t.Run("amount exceeds balance", func(t *testing.T) {
		run(t, 100, 500, ErrInsufficientFunds)
	})

	t.Run("transfer would breach the minimum balance floor", func(t *testing.T) {
		// 100 - 60 = 40, below the floor of 50.
		run(t, 100, 60, ErrInsufficientFunds)
	})
}

func TestTransferService_ExecuteTransfer_SenderAlreadyBelowFloor(t *testing.T) {
	// Pre-existing accounts below the floor are not retroactively held to it;
	// they only need balance >= amount.
	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mockAccountRepo := new(MockAccountRepository)
	mockTxnRepo := new(MockTransactionRepository)
	notified := newFakeNotifier()
	transferService := NewTransferService(db, mockAccountRepo, mockTxnRepo, newFakeCache(), notified, minimumBalance)

	sender := &model.Account{AccountNumber: senderNumber, Balance: decimal.NewFromInt(40)}
	receiver := &model.Account{AccountNumber: receiverNumber, Balance: decimal.NewFromInt(200)}

	dbMock.ExpectBegin()
	mockAccountRepo.On("GetAccountForUpdate", mock.Anything, senderNumber).Return(sender, nil).Once()
	mockAccountRepo.On("GetAccountForUpdate", mock.Anything, receiverNumber).Return(receiver, nil).Once()
	mockAccountRepo.On("GetPinHashByAccountNumber", mock.Anything, senderNumber).Return(pinHashForTest(t), nil).Once()
	mockAccountRepo.On("UpdateAccountBalance", mock.Anything, senderNumber, decimalEq(decimal.NewFromInt(30))).Return(nil).Once()
	mockAccountRepo.On("UpdateAccountBalance", mock.Anything, receiverNumber, decimalEq(decimal.NewFromInt(210))).Return(nil).Once()
	mockTxnRepo.On("CreateTransaction", mock.Anything, mock.AnythingOfType("*model.Transaction")).Return(nil).Once()
	dbMock.ExpectCommit()
	mockAccountRepo.On("GetContactByAccountNumber", mock.Anything).Return(nil, sql.ErrNoRows).Maybe()

	_, err = transferService.ExecuteTransfer(context.Background(), transferRequest(10))

	assert.NoError(t, err)
	mockAccountRepo.AssertExpectations(t)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestTransferService_ExecuteTransfer_CommitError(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mockAccountRepo := new(MockAccountRepository)
	mockTxnRepo := new(MockTransactionRepository)
	transferService := NewTransferService(db, mockAccountRepo, mockTxnRepo, newFakeCache(), newFakeNotifier(), minimumBalance)

	sender := &model.Account{AccountNumber: senderNumber, Balance: decimal.NewFromInt(1000)}
	receiver := &model.Account{AccountNumber: receiverNumber, Balance: decimal.NewFromInt(200)}

	dbMock.ExpectBegin()
	mockAccountRepo.On("GetAccountForUpdate", mock.Anything, senderNumber).Return(sender, nil).Once()
	mockAccountRepo.On("GetAccountForUpdate", mock.Anything, receiverNumber).Return(receiver, nil).Once()
	mockAccountRepo.On("GetPinHashByAccountNumber", mock.Anything, senderNumber).Return(pinHashForTest(t), nil).Once()
	mockAccountRepo.On("UpdateAccountBalance", mock.Anything, mock.Anything, mock.Anything).Return(nil).Twice()
	mockTxnRepo.On("CreateTransaction", mock.Anything, mock.AnythingOfType("*model.Transaction")).Return(nil).Once()
	dbMock.ExpectCommit().WillReturnError(errors.New("connection reset"))

	_, err = transferService.ExecuteTransfer(context.Background(), transferRequest(500))

	assert.Error(t, err)
	var storageErr *StorageError
	assert.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "commit transfer", storageErr.Op)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

// fakeLedger is a stateful in-memory ledger used for the exhaustion property:
// repeated transfers against one sender must succeed exactly as long as funds
// allow and leave the books balanced.
type fakeLedger struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
	pinHash  string
	nextID   int
}

func (l *fakeLedger) GetAccountForUpdate(tx *sql.Tx, accountNumber string) (*model.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	balance, ok := l.balances[accountNumber]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &model.Account{AccountNumber: accountNumber, Balance: balance}, nil
}

func (l *fakeLedger) UpdateAccountBalance(tx *sql.Tx, accountNumber string, newBalance decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if newBalance.IsNegative() {
		return errors.New("negative balance")
	}
	l.balances[accountNumber] = newBalance
	return nil
}

func (l *fakeLedger) GetPinHashByAccountNumber(tx *sql.Tx, accountNumber string) (string, error) {
	return l.pinHash, nil
}

func (l *fakeLedger) GetContactByAccountNumber(accountNumber string) (*model.Contact, error) {
	return &model.Contact{HolderName: "Holder", Email: accountNumber + "@example.com", BankName: "SBI"}, nil
}

func (l *fakeLedger) CreateTransaction(tx *sql.Tx, t *model.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	t.ID = l.nextID
	t.TransactionTime = time.Now()
	return nil
}

func (l *fakeLedger) CreateAccount(*model.Account) error                 { return nil }
func (l *fakeLedger) GetByAccountNumber(string) (*model.Account, error) { return nil, sql.ErrNoRows }
func (l *fakeLedger) GetAllAccounts() ([]*model.Account, error)         { return nil, nil }
func (l *fakeLedger) GetLastAccountNumber() (int64, error)              { return 0, nil }
func (l *fakeLedger) GetBalance(accountNumber string) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[accountNumber], nil
}
func (l *fakeLedger) sum() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := decimal.Zero
	for _, balance := range l.balances {
		total = total.Add(balance)
	}
	return total
}

// ledgerTxnRepo adapts fakeLedger to ITransactionRepository.
type ledgerTxnRepo struct{ *fakeLedger }

func (r ledgerTxnRepo) GetByAccountNumber(string) ([]*model.Transaction, error) { return nil, nil }
func (r ledgerTxnRepo) GetAll() ([]*model.Transaction, error)                   { return nil, nil }

// nopNotifier discards every message. Used where delivery volume is not under
// test.
type nopNotifier struct{}

func (nopNotifier) Notify(recipientEmail, subject, body string) {}

// lockingLedger emulates row locking over fakeLedger: the first
// GetAccountForUpdate of a transaction takes an exclusive lock that is held
// until that transaction's log append, so concurrent transfers serialize the
// same way FOR UPDATE serializes them. Only valid for transfers that reach
// the append.
type lockingLedger struct {
	*fakeLedger
	rowLock sync.Mutex
	ownerMu sync.Mutex
	owner   *sql.Tx
}

func (l *lockingLedger) GetAccountForUpdate(tx *sql.Tx, accountNumber string) (*model.Account, error) {
	l.ownerMu.Lock()
	holding := l.owner == tx
	l.ownerMu.Unlock()
	if !holding {
		l.rowLock.Lock()
		l.ownerMu.Lock()
		l.owner = tx
		l.ownerMu.Unlock()
	}
	return l.fakeLedger.GetAccountForUpdate(tx, accountNumber)
}

func (l *lockingLedger) CreateTransaction(tx *sql.Tx, t *model.Transaction) error {
	err := l.fakeLedger.CreateTransaction(tx, t)
	l.ownerMu.Lock()
	l.owner = nil
	l.ownerMu.Unlock()
	l.rowLock.Unlock()
	return err
}

// lockingTxnRepo routes the log append through lockingLedger so the emulated
// row lock is released there.
type lockingTxnRepo struct{ *lockingLedger }

func (r lockingTxnRepo) GetByAccountNumber(string) ([]*model.Transaction, error) { return nil, nil }
func (r lockingTxnRepo) GetAll() ([]*model.Transaction, error)                   { return nil, nil }

func TestTransferService_ExecuteTransfer_ConcurrentSendersConserveMoney(t *testing.T) {
	senders := []string{"100000000011", "100000000012", "100000000013", "100000000014"}
	balances := map[string]decimal.Decimal{receiverNumber: decimal.NewFromInt(200)}
	for _, s := range senders {
		balances[s] = decimal.NewFromInt(1000)
	}
	ledger := &lockingLedger{fakeLedger: &fakeLedger{
		balances: balances,
		pinHash:  pinHashForTest(t),
	}}
	sumBefore := ledger.sum()

	const transfersPerSender = 3
	var wg sync.WaitGroup
	errs := make(chan error, len(senders)*(transfersPerSender+1))

	for _, sender := range senders {
		wg.Add(1)
		go func(sender string) {
			defer wg.Done()

			db, dbMock, err := sqlmock.New()
			if err != nil {
				errs <- err
				return
			}
			defer db.Close()
			for i := 0; i < transfersPerSender; i++ {
				dbMock.ExpectBegin()
				dbMock.ExpectCommit()
			}

			transferService := NewTransferService(db, ledger, lockingTxnRepo{ledger}, newFakeCache(), nopNotifier{}, minimumBalance)
			for i := 0; i < transfersPerSender; i++ {
				req := model.TransferRequest{
					SenderAccountNumber:   sender,
					ReceiverAccountNumber: receiverNumber,
					Amount:                decimal.NewFromInt(100),
					Pin:                   correctPin,
				}
				if _, err := transferService.ExecuteTransfer(context.Background(), req); err != nil {
					errs <- err
				}
			}
		}(sender)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	// Every credit to the hot receiver must survive the contention; no
	// lost updates, no money created or destroyed.
	receiverBalance, _ := ledger.GetBalance(receiverNumber)
	assert.True(t, receiverBalance.Equal(decimal.NewFromInt(1400)), "receiver balance = %s", receiverBalance)
	for _, sender := range senders {
		balance, _ := ledger.GetBalance(sender)
		assert.True(t, balance.Equal(decimal.NewFromInt(700)), "sender %s balance = %s", sender, balance)
	}
	assert.True(t, ledger.sum().Equal(sumBefore))
	assert.Equal(t, len(senders)*transfersPerSender, ledger.nextID)
}

func TestTransferService_ExecuteTransfer_ExhaustsFundsExactly(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ledger := &fakeLedger{
		balances: map[string]decimal.Decimal{
			senderNumber:   decimal.NewFromInt(1000),
			receiverNumber: decimal.NewFromInt(200),
		},
		pinHash: pinHashForTest(t),
	}
	transferService := NewTransferService(db, ledger, ledgerTxnRepo{ledger}, newFakeCache(), newFakeNotifier(), minimumBalance)

	// Five transfers of 300 against a balance of 1000 with a floor of 50:
	// exactly three can commit (1000 -> 700 -> 400 -> 100).
	const attempts = 5
	expected := []bool{true, true, true, false, false}
	sumBefore := ledger.sum()

	for _, wantSuccess := range expected {
		dbMock.ExpectBegin()
		if wantSuccess {
			dbMock.ExpectCommit()
		} else {
			dbMock.ExpectRollback()
		}
	}

	successes := 0
	for i := 0; i < attempts; i++ {
		_, err := transferService.ExecuteTransfer(context.Background(), transferRequest(300))
		if expected[i] {
			assert.NoError(t, err, "attempt %d", i)
			successes++
		} else {
			assert.ErrorIs(t, err, ErrInsufficientFunds, "attempt %d", i)
		}
	}

	assert.Equal(t, 3, successes)

	senderBalance, _ := ledger.GetBalance(senderNumber)
	receiverBalance, _ := ledger.GetBalance(receiverNumber)
	assert.True(t, senderBalance.Equal(decimal.NewFromInt(100)), "sender balance = %s", senderBalance)
	assert.True(t, receiverBalance.Equal(decimal.NewFromInt(1100)), "receiver balance = %s", receiverBalance)

	// Conservation: no money created or destroyed across the whole run.
	assert.True(t, ledger.sum().Equal(sumBefore))
	assert.NoError(t, dbMock.ExpectationsWereMet())
}
