package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"btevta-wasl-backend/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Publisher is the subset of the Redis client used here.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisNotifier publishes each event as JSON on <prefix>.<kind> for live dashboards.
type RedisNotifier struct {
	rdb    Publisher
	prefix string
}

func NewRedisNotifier(rdb Publisher, prefix string) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, prefix: prefix}
}

// ConnectRedis creates and verifies a Redis client connection.
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

func (r *RedisNotifier) Channel(kind domain.EventKind) string {
	return r.prefix + "." + string(kind)
}

func (r *RedisNotifier) Send(ctx context.Context, ev domain.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := r.rdb.Publish(ctx, r.Channel(ev.Kind), body).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Kind, err)
	}
	return nil
}
