package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskhub/task-service/internal/api/metrics"
)

const avatarTTL = 15 * time.Minute

// AvatarCache is a read-through cache for avatar blobs. Entries expire on
// their own; writes and deletes invalidate eagerly so a stale image is never
// served past the next upload.
type AvatarCache struct {
	client *redis.Client
}

// NewAvatarCache creates an AvatarCache wrapping the given Redis client.
func NewAvatarCache(client *redis.Client) *AvatarCache {
	return &AvatarCache{client: client}
}

// Get returns the cached avatar and whether it was present. A missing key is
// a miss, not an error.
func (c *AvatarCache) Get(ctx context.Context, userID string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.AvatarCacheTotal.WithLabelValues("miss").Inc()
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("avatar cache get: %w", err)
	}
	metrics.AvatarCacheTotal.WithLabelValues("hit").Inc()
	return data, true, nil
}

// Set stores the avatar with a bounded TTL.
func (c *AvatarCache) Set(ctx context.Context, userID string, data []byte) error {
	if err := c.client.Set(ctx, c.key(userID), data, avatarTTL).Err(); err != nil {
		return fmt.Errorf("avatar cache set: %w", err)
	}
	return nil
}

// Invalidate drops the cached entry. Deleting an absent key is a no-op.
func (c *AvatarCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("avatar cache invalidate: %w", err)
	}
	return nil
}

func (c *AvatarCache) key(userID string) string {
	return fmt.Sprintf("avatar:%s", userID)
}
