package cache

import (
	"context"
	"time"
)

// ProgressCache holds short-lived campaign progress snapshots keyed by
// campaign id. Values are opaque JSON; the service layer owns the shape.
type ProgressCache interface {
	GetSnapshot(ctx context.Context, campaignID string) ([]byte, error)
	StoreSnapshot(ctx context.Context, campaignID string, snapshot []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, campaignID string) error
}
