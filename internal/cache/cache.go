package cache

import (
	"context"
	"time"
)

// BytesCache is a best-effort byte cache. Callers treat every miss or error
// as a cache miss and fall back to the database.
type BytesCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}
