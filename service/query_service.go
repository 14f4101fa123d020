package service

import (
	"context"
	"encoding/json"
	"go-bank-ledger/model"
	"go-bank-ledger/repository"
	"time"
)

const transactionsCacheTTL = 10 * time.Minute

// QueryService serves read-only projections over the transaction log. It has
// no mutation capability.
type QueryService struct {
	transactionRepo repository.ITransactionRepository
	cache           ICacheClient
}

func NewQueryService(transactionRepo repository.ITransactionRepository, cache ICacheClient) *QueryService {
	return &QueryService{
		transactionRepo: transactionRepo,
		cache:           cache,
	}
}

// TransactionsForAccount returns the merged sent+received history of one
// account, newest first, utilizing a cache-aside strategy. The transfer
// engine invalidates both parties' entries on every commit.
func (s *QueryService) TransactionsForAccount(ctx context.Context, accountNumber string) ([]*model.Transaction, error) {
	cacheKey := transactionsCacheKey(accountNumber)

	cached, err := s.cache.Get(ctx, cacheKey).Result()
	if err == nil {
		var transactions []*model.Transaction
		if err := json.Unmarshal([]byte(cached), &transactions); err == nil {
			return transactions, nil
		}
	}

	transactions, err := s.transactionRepo.GetByAccountNumber(accountNumber)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(transactions); err == nil {
		s.cache.Set(ctx, cacheKey, data, transactionsCacheTTL)
	}

	return transactions, nil
}

// AllTransactions returns the full log, newest id first. Not cached: the
// global view backs the export and should stay fresh.
func (s *QueryService) AllTransactions(ctx context.Context) ([]*model.Transaction, error) {
	return s.transactionRepo.GetAll()
}
