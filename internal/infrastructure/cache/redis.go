// Package cache provides the Redis side of the service: live notification
// delivery and the lock that keeps one worker running a job at a time.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"shopledger/internal/domain/notification"
	"shopledger/pkg/logger"
)

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// Client wraps a Redis client and its lock client.
type Client struct {
	rdb    redis.UniversalClient
	locker *redislock.Client
}

// NewClient connects to Redis and pings it.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	logger.Info(ctx, "connected to redis", "addr", cfg.Addr)
	return NewFromRedis(rdb), nil
}

// NewFromRedis wraps an existing client.
func NewFromRedis(rdb redis.UniversalClient) *Client {
	return &Client{rdb: rdb, locker: redislock.New(rdb)}
}

// Check pings Redis for the readiness probe.
func (c *Client) Check(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// ErrLocked is returned by WithLock when another holder owns the lock.
var ErrLocked = errors.New("lock is held by another worker")

// WithLock runs fn while holding the named lock. The lock expires after ttl
// even if the holder dies. It does not wait: a held lock yields ErrLocked.
func (c *Client) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	lock, err := c.locker.Obtain(ctx, "lock:"+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return ErrLocked
	}
	if err != nil {
		return fmt.Errorf("obtain lock %s: %w", key, err)
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			logger.Warn(ctx, "release lock failed", "key", key, "error", err)
		}
	}()

	lockCtx, cancel := context.WithTimeout(ctx, ttl)
	defer cancel()
	return fn(lockCtx)
}

// NotificationChannel is the pub/sub channel of one user.
func NotificationChannel(userID string) string {
	return "notifications:" + userID
}

// Publisher implements notification.Publisher with Redis PUBLISH.
type Publisher struct {
	rdb redis.UniversalClient
}

var _ notification.Publisher = (*Publisher)(nil)

// Publisher returns the notification publisher.
func (c *Client) Publisher() *Publisher {
	return &Publisher{rdb: c.rdb}
}

// Publish sends n as JSON to the owner's channel.
func (p *Publisher) Publish(ctx context.Context, n *notification.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := p.rdb.Publish(ctx, NotificationChannel(n.UserID.String()), payload).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}
