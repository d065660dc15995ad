package driven

import (
	"context"
	"time"

	"xdrive-driver/internal/driver-client/core/domain/model"
)

// WatchOptions gates a position stream: a fix is delivered only after
// moving at least MinDistanceMeters or after MinInterval has elapsed.
type WatchOptions struct {
	MinDistanceMeters float64
	MinInterval       time.Duration
}

// PositionProvider abstracts the device location capability.
type PositionProvider interface {
	// RequestPermission reports whether location access is granted.
	// Denial is a recoverable condition, not an error.
	RequestPermission(ctx context.Context) (bool, error)
	CurrentPosition(ctx context.Context) (model.PositionSample, error)
	Watch(ctx context.Context, opts WatchOptions) (PositionSubscription, error)
}

// PositionSubscription is a live position stream. Updates is closed after
// Stop returns; Stop is idempotent.
type PositionSubscription interface {
	Updates() <-chan model.PositionSample
	Stop()
}
