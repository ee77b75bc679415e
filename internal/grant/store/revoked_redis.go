package store

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"memscope/internal/grant/models"
)

var revokedCheckDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "memscope_grant_revoked_check_duration_ms",
	Help:    "Latency of grant revocation cache checks in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

const revokedDigestKeyPrefix = "grant:revoked:"

// RedisRevokedCache caches revoked token digests so continuations can
// reject a revoked grant without a database round trip. Revocation is
// monotonic, so a cache hit is always trustworthy; a miss falls through
// to the store of record.
type RedisRevokedCache struct {
	client *redis.Client
}

func NewRedisRevokedCache(client *redis.Client) *RedisRevokedCache {
	return &RedisRevokedCache{client: client}
}

// MarkRevoked records the digest for ttl. The ttl should cover the
// grant's remaining lifetime; after expiry the store rejects the grant
// on its own.
func (c *RedisRevokedCache) MarkRevoked(ctx context.Context, digest models.TokenDigest, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, revokedDigestKeyPrefix+digest.Hex(), "1", ttl).Err()
}

// IsRevoked reports whether the digest is known revoked. Returns false
// on a miss; the caller must still consult the store.
func (c *RedisRevokedCache) IsRevoked(ctx context.Context, digest models.TokenDigest) (bool, error) {
	start := time.Now()
	defer func() {
		revokedCheckDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	err := c.client.Get(ctx, revokedDigestKeyPrefix+digest.Hex()).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
