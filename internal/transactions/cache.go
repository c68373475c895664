package transactions

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"givetrace/donor-portal/donor-portal-backend/internal/ledger"
)

const chainHistoryKeyPrefix = "chainhistory:"

// ChainHistoryCache caches distributed-ledger transfer histories per wallet
// so reconciliation queries don't hit Horizon on every call. A miss is
// never an error: callers fall through to the gateway.
type ChainHistoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewChainHistoryCache creates the cache.
func NewChainHistoryCache(client *redis.Client, ttl time.Duration) *ChainHistoryCache {
	if ttl == 0 {
		ttl = 2 * time.Minute
	}
	return &ChainHistoryCache{client: client, ttl: ttl}
}

// Get returns the cached history for a wallet, or ok=false on a miss.
func (c *ChainHistoryCache) Get(ctx context.Context, wallet string) ([]ledger.TransferEvent, bool) {
	data, err := c.client.Get(ctx, chainHistoryKeyPrefix+wallet).Bytes()
	if err != nil {
		return nil, false
	}
	var events []ledger.TransferEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, false
	}
	return events, true
}

// Set stores the history for a wallet.
func (c *ChainHistoryCache) Set(ctx context.Context, wallet string, events []ledger.TransferEvent) error {
	data, err := json.Marshal(events)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, chainHistoryKeyPrefix+wallet, data, c.ttl).Err()
}

// Invalidate drops the cached history for a wallet, forcing the next query
// back to the gateway. Called after a release settles a new transfer.
func (c *ChainHistoryCache) Invalidate(ctx context.Context, wallet string) error {
	return c.client.Del(ctx, chainHistoryKeyPrefix+wallet).Err()
}
