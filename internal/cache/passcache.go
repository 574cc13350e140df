// Package cache provides a Redis-backed cache for the active pass list, the
// hottest read on the public site.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/sharedsmiles/ticketdesk/internal/model"
)

const activePassesKey = "passes:active"

// PassCache caches the active pass list under a single key with a TTL. All
// failures degrade silently to a miss; the catalog falls through to Postgres.
type PassCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New constructs a PassCache. A nil client yields a cache that always misses.
func New(client *redis.Client, ttl time.Duration) *PassCache {
	return &PassCache{client: client, ttl: ttl}
}

// Get returns the cached active pass list, or ok=false on miss or error.
func (c *PassCache) Get(ctx context.Context) ([]model.Pass, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, activePassesKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			logrus.WithError(err).Warn("pass cache read failed")
		}
		return nil, false
	}
	var passes []model.Pass
	if err := json.Unmarshal(data, &passes); err != nil {
		logrus.WithError(err).Warn("pass cache decode failed")
		return nil, false
	}
	return passes, true
}

// Set stores the active pass list.
func (c *PassCache) Set(ctx context.Context, passes []model.Pass) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(passes)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, activePassesKey, data, c.ttl).Err(); err != nil {
		logrus.WithError(err).Warn("pass cache write failed")
	}
}

// Invalidate drops the cached list. Called after any admin pass mutation.
func (c *PassCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, activePassesKey).Err(); err != nil {
		logrus.WithError(err).Warn("pass cache invalidate failed")
	}
}
