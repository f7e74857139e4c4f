// Package scancache remembers which tickets have already been admitted so a repeat scan can be
// denied without a database round trip. A ticket never becomes unused again, so a cached entry
// cannot go stale; a miss always falls through to the store.
package scancache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis"
)

const keyPrefix = "ticket-used-"

type Cache interface {
	UsedAt(ctx context.Context, ticketID string) (*time.Time, error)
	MarkUsed(ctx context.Context, ticketID string, at time.Time) error
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) Cache {
	return &redisCache{client: client, ttl: ttl}
}

// UsedAt returns nil when the ticket has not been seen as used.
func (c *redisCache) UsedAt(ctx context.Context, ticketID string) (*time.Time, error) {
	v, err := c.client.WithContext(ctx).Get(keyPrefix + ticketID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("usedAt: unable to read %s: %w", ticketID, err)
	}

	at, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return nil, fmt.Errorf("usedAt: corrupt entry for %s: %w", ticketID, err)
	}
	return &at, nil
}

// MarkUsed records the admission time. An existing entry is kept, it holds the first admission.
func (c *redisCache) MarkUsed(ctx context.Context, ticketID string, at time.Time) error {
	err := c.client.WithContext(ctx).SetNX(keyPrefix+ticketID, at.UTC().Format(time.RFC3339Nano), c.ttl).Err()
	if err != nil {
		return fmt.Errorf("markUsed: unable to save %s: %w", ticketID, err)
	}
	return nil
}

type nop struct{}

// Nop never remembers anything; every scan goes to the store.
func Nop() Cache {
	return nop{}
}

func (nop) UsedAt(context.Context, string) (*time.Time, error) { return nil, nil }

func (nop) MarkUsed(context.Context, string, time.Time) error { return nil }
