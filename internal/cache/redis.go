package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/courtbooking/config"
	"github.com/Domenick1991/courtbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still belongs to the caller.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

type RedisCache struct {
	client    *redis.Client
	courtsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, courtsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		courtsTTL: courtsTTL,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) GetCourts(ctx context.Context, clubID string) ([]domain.Court, error) {
	data, err := c.client.Get(ctx, courtsKey(clubID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var courts []domain.Court
	if err := json.Unmarshal(data, &courts); err != nil {
		return nil, err
	}
	return courts, nil
}

func (c *RedisCache) SetCourts(ctx context.Context, clubID string, courts []domain.Court) error {
	payload, err := json.Marshal(courts)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, courtsKey(clubID), payload, c.courtsTTL).Err()
}

// AcquireSlotLock is the fast path in front of the database uniqueness check.
// It never replaces that check; a lost lock only means the database decides.
func (c *RedisCache) AcquireSlotLock(ctx context.Context, key domain.SlotKey, owner string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, slotLockKey(key), owner, ttl).Result()
}

func (c *RedisCache) ReleaseSlotLock(ctx context.Context, key domain.SlotKey, owner string) error {
	return releaseScript.Run(ctx, c.client, []string{slotLockKey(key)}, owner).Err()
}

func courtsKey(clubID string) string {
	return fmt.Sprintf("cache:club:%s:courts", clubID)
}

func slotLockKey(key domain.SlotKey) string {
	return "lock:slot:" + key.String()
}
