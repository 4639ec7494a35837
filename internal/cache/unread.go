// Package cache keeps per-user unread notification counts in Redis.
package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UnreadCounter caches unread notification counts per user.
type UnreadCounter interface {
	// Get returns the cached count and whether it was present.
	Get(ctx context.Context, userID primitive.ObjectID) (int64, bool, error)
	Set(ctx context.Context, userID primitive.ObjectID, count int64) error
	Invalidate(ctx context.Context, userIDs ...primitive.ObjectID) error
}

const defaultUnreadTTL = 10 * time.Minute

// RedisUnreadCounter stores counts under "<prefix>unread:<user id hex>".
type RedisUnreadCounter struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisUnreadCounter(client *redis.Client, prefix string, ttl time.Duration) *RedisUnreadCounter {
	if ttl <= 0 {
		ttl = defaultUnreadTTL
	}
	return &RedisUnreadCounter{client: client, prefix: prefix, ttl: ttl}
}

// NewRedisClient parses the URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (c *RedisUnreadCounter) key(userID primitive.ObjectID) string {
	return c.prefix + "unread:" + userID.Hex()
}

func (c *RedisUnreadCounter) Get(ctx context.Context, userID primitive.ObjectID) (int64, bool, error) {
	val, err := c.client.Get(ctx, c.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return n, true, nil
}

func (c *RedisUnreadCounter) Set(ctx context.Context, userID primitive.ObjectID, count int64) error {
	return c.client.Set(ctx, c.key(userID), count, c.ttl).Err()
}

func (c *RedisUnreadCounter) Invalidate(ctx context.Context, userIDs ...primitive.ObjectID) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = c.key(id)
	}
	return c.client.Del(ctx, keys...).Err()
}

// Nop is used when Redis is not configured; every Get misses.
type Nop struct{}

func (Nop) Get(context.Context, primitive.ObjectID) (int64, bool, error) { return 0, false, nil }
func (Nop) Set(context.Context, primitive.ObjectID, int64) error { return nil }
func (Nop) Invalidate(context.Context, ...primitive.ObjectID) error { return nil }
