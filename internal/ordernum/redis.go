package ordernum

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisReserver holds reservations as expiring Redis keys, so several
// kiosk processes sharing a pickup board never print the same number.
type RedisReserver struct {
	client *redis.Client
	prefix string
}

var _ Reserver = (*RedisReserver)(nil)

// NewRedisReserver connects to addr and verifies the connection with a ping.
func NewRedisReserver(ctx context.Context, addr, password, prefix string) (*RedisReserver, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ordernum: redis ping: %w", err)
	}
	if prefix == "" {
		prefix = "kiosk:order-number:"
	}
	return &RedisReserver{client: client, prefix: prefix}, nil
}

func (r *RedisReserver) Reserve(ctx context.Context, number string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, r.prefix+number, time.Now().Unix(), ttl).Result()
}

func (r *RedisReserver) Release(ctx context.Context, number string) error {
	return r.client.Del(ctx, r.prefix+number).Err()
}

// Close closes the Redis client.
func (r *RedisReserver) Close() error {
	return r.client.Close()
}
