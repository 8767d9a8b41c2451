// Package cache keeps a read-side copy of user balances in Redis.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"lottery/config"
	"lottery/models"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// Values are stored as "<version>:<amount>".
const keyUserBalance = "lottery:user:%d:balance"

// storeBalanceScript writes the balance unless the key already holds the same or a
// later version. ARGV: version, amount, ttl in milliseconds (0 keeps no expiry).
const storeBalanceScript = `
local cur = redis.call("GET", KEYS[1])
if cur then
	local v = tonumber(string.match(cur, "^(%d+):"))
	if v and v >= tonumber(ARGV[1]) then
		return 0
	end
end
local value = ARGV[1] .. ":" .. ARGV[2]
if tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[1], value, "PX", ARGV[3])
else
	redis.call("SET", KEYS[1], value)
end
return 1
`

// client is the slice of *redis.Client the cache needs.
type client interface {
	Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

type BalanceCache struct {
	client client
	ttl    time.Duration
}

// Connect dials Redis and fails fast when it does not answer a ping.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, errors.Wrapf(err, "connect to redis at %s", cfg.Addr)
	}
	return rdb, nil
}

func NewBalanceCache(c client, ttl time.Duration) *BalanceCache {
	return &BalanceCache{client: c, ttl: ttl}
}

func (b *BalanceCache) StoreBalance(ctx context.Context, userID uint, balance models.Balance) error {
	key := fmt.Sprintf(keyUserBalance, userID)
	err := b.client.Eval(ctx, storeBalanceScript, []string{key},
		balance.Version, balance.Amount.String(), b.ttl.Milliseconds()).Err()
	if err != nil {
		return errors.Wrapf(err, "cache balance of user %d", userID)
	}
	return nil
}

// balance returns the cached balance; ok is false on a miss.
func (b *BalanceCache) balance(ctx context.Context, userID uint) (models.Balance, bool, error) {
	raw, err := b.client.Get(ctx, fmt.Sprintf(keyUserBalance, userID)).Result()
	if err == redis.Nil {
		return models.Balance{}, false, nil
	}
	if err != nil {
		return models.Balance{}, false, errors.Wrapf(err, "read cached balance of user %d", userID)
	}
	return parseBalance(raw)
}

func parseBalance(raw string) (models.Balance, bool, error) {
	version, amount, found := strings.Cut(raw, ":")
	if !found {
		return models.Balance{}, false, errors.Errorf("malformed cached balance %q", raw)
	}
	v, err := strconv.ParseInt(version, 10, 64)
	if err != nil {
		return models.Balance{}, false, errors.Wrapf(err, "parse cached balance version %q", raw)
	}
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return models.Balance{}, false, errors.Wrapf(err, "parse cached balance %q", raw)
	}
	return models.Balance{Amount: a, Version: v}, true, nil
}
