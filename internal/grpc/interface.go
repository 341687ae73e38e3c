package grpc

import (
	"context"
	"time"

	"github.com/shannong20/Evalytics-sub000/internal/analytics"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

type AnalyticsService interface {
	InstructorReport(ctx context.Context, f analytics.Filter) (*analytics.Report, error)
}
