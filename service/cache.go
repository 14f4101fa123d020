// file: service/cache.go

package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ICacheClient defines the contract for a cache client.
// This abstraction decouples the query service and the transfer engine from a
// concrete Redis implementation, enabling easier testing.
type ICacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// transactionsCacheKey names the cached transaction history of one account.
// Written by QueryService, invalidated by TransferService after each commit.
func transactionsCacheKey(accountNumber string) string {
	return "transactions:" + accountNumber
}
