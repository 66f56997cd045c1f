package payterms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ConditionReader is the subset of the store the cache wraps.
type ConditionReader interface {
	GetCondition(ctx context.Context, id int64) (PaymentCondition, error)
}

// CachedSource is a Redis read-through cache in front of the catalog.
// Concurrent loads of the same condition are coalesced through singleflight.
type CachedSource struct {
	reader ConditionReader
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewCachedSource constructs the cache. A nil client disables caching and all
// reads go straight to the reader.
func NewCachedSource(reader ConditionReader, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedSource {
	return &CachedSource{reader: reader, client: client, ttl: ttl, logger: logger}
}

func conditionKey(id int64) string {
	return fmt.Sprintf("payterms:condition:%d", id)
}

// GetCondition returns the condition from cache, loading and storing it on miss.
func (c *CachedSource) GetCondition(ctx context.Context, id int64) (PaymentCondition, error) {
	if c.client == nil {
		return c.reader.GetCondition(ctx, id)
	}

	key := conditionKey(id)
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var cond PaymentCondition
		if err := json.Unmarshal(payload, &cond); err == nil {
			return cond, nil
		}
		// Corrupt entry: drop it and fall through to a fresh load.
		c.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("condition cache read failed", slog.Int64("id", id), slog.Any("error", err))
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		cond, err := c.reader.GetCondition(ctx, id)
		if err != nil {
			return PaymentCondition{}, err
		}
		if data, err := json.Marshal(cond); err == nil {
			if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
				c.logger.Warn("condition cache write failed", slog.Int64("id", id), slog.Any("error", err))
			}
		}
		return cond, nil
	})
	if err != nil {
		return PaymentCondition{}, err
	}
	return v.(PaymentCondition), nil
}

// Invalidate drops a cached condition after a catalog write.
func (c *CachedSource) Invalidate(ctx context.Context, id int64) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, conditionKey(id)).Err(); err != nil {
		c.logger.Warn("condition cache invalidation failed", slog.Int64("id", id), slog.Any("error", err))
	}
}

// Warm pre-loads every condition into the cache. Used by the scheduled warmup job.
func (c *CachedSource) Warm(ctx context.Context, conditions []PaymentCondition) error {
	if c.client == nil {
		return nil
	}
	for _, cond := range conditions {
		data, err := json.Marshal(cond)
		if err != nil {
			return err
		}
		if err := c.client.Set(ctx, conditionKey(cond.ID), data, c.ttl).Err(); err != nil {
			return err
		}
	}
	return nil
}
