package services

import (
	"context"
	"sync"
	"time"

	"xdrive-driver/internal/driver-client/core/domain/dto"
	"xdrive-driver/internal/driver-client/core/domain/model"
	"xdrive-driver/internal/driver-client/core/myerrors"
	"xdrive-driver/internal/driver-client/core/ports/driven"
	"xdrive-driver/internal/mylogger"

	"github.com/oapi-codegen/nullable"
)

type TrackerConfig struct {
	MinDistanceMeters float64
	MinInterval       time.Duration
	// ReplayMaxAge caps how old a cached position may be and still get
	// forwarded to the server at start.
	ReplayMaxAge time.Duration
}

// PositionObserver receives every sample the tracker processes.
type PositionObserver func(model.PositionSample)

// LocationTracker runs the Stopped → Starting → Running → Stopped machine.
// At most one subscription is live at a time; starting while running stops
// the previous one first. All server pushes are best-effort telemetry.
type LocationTracker struct {
	provider  driven.PositionProvider
	telemetry driven.TelemetryAPI
	cache     *PositionCache
	store     driven.KeyValueStore
	cfg       TrackerConfig
	now       func() time.Time
	mylog     mylogger.Logger

	mu     sync.Mutex
	sub    driven.PositionSubscription
	cancel context.CancelFunc
	done   chan struct{}
}

func NewLocationTracker(provider driven.PositionProvider, telemetry driven.TelemetryAPI, cache *PositionCache, store driven.KeyValueStore, cfg TrackerConfig, mylog mylogger.Logger) *LocationTracker {
	return &LocationTracker{
		provider:  provider,
		telemetry: telemetry,
		cache:     cache,
		store:     store,
		cfg:       cfg,
		now:       time.Now,
		mylog:     mylog,
	}
}

// Start requests permission, replays the cached position, takes one fresh
// fix, and subscribes to the gated position stream. Permission denial comes
// back as a KindPermissionDenied error for the caller to branch on.
func (lt *LocationTracker) Start(ctx context.Context, driverID string, onUpdate PositionObserver) error {
	lt.Stop()

	granted, err := lt.provider.RequestPermission(ctx)
	if err != nil {
		return myerrors.Wrap(myerrors.KindPermissionDenied, "requesting location permission", err)
	}
	if !granted {
		return myerrors.New(myerrors.KindPermissionDenied, "location permission not granted")
	}

	// runCtx outlives the Start call; Stop cancels it, aborting any
	// in-flight push before it can write against stale state.
	runCtx, cancel := context.WithCancel(context.Background())

	if cached, ok := lt.cache.Get(); ok {
		if onUpdate != nil {
			onUpdate(cached)
		}
		if cached.Age(lt.now()) < lt.cfg.ReplayMaxAge {
			lt.push(runCtx, cached, false)
		}
	}

	if fix, err := lt.provider.CurrentPosition(ctx); err == nil {
		lt.cache.Save(fix)
		if onUpdate != nil {
			onUpdate(fix)
		}
		lt.push(runCtx, fix, false)
	} else {
		lt.mylog.Warn("initial fix unavailable", "error", err.Error())
	}

	sub, err := lt.provider.Watch(runCtx, driven.WatchOptions{
		MinDistanceMeters: lt.cfg.MinDistanceMeters,
		MinInterval:       lt.cfg.MinInterval,
	})
	if err != nil {
		cancel()
		return err
	}

	lt.mu.Lock()
	lt.sub = sub
	lt.cancel = cancel
	lt.done = make(chan struct{})
	done := lt.done
	lt.mu.Unlock()

	if err := lt.store.Set(keyTracking, "true"); err != nil {
		lt.mylog.Error("persisting tracking flag", err)
	}

	go func() {
		defer close(done)
		for sample := range sub.Updates() {
			lt.cache.Save(sample)
			if onUpdate != nil {
				onUpdate(sample)
			}
			lt.push(runCtx, sample, true)
		}
	}()

	lt.mylog.Action("tracking_started").Info("location tracking running", "driver_id", driverID)
	return nil
}

// Stop cancels the active subscription and persists "not tracking".
// Idempotent.
func (lt *LocationTracker) Stop() {
	lt.mu.Lock()
	sub := lt.sub
	cancel := lt.cancel
	done := lt.done
	lt.sub = nil
	lt.cancel = nil
	lt.done = nil
	lt.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sub != nil {
		sub.Stop()
	}
	if done != nil {
		<-done
	}

	if err := lt.store.Set(keyTracking, "false"); err != nil {
		lt.mylog.Error("persisting tracking flag", err)
	}
}

// IsActive requires both the persisted flag and a live subscription, so a
// stale flag surviving a restart never reads as active.
func (lt *LocationTracker) IsActive() bool {
	lt.mu.Lock()
	sub := lt.sub
	lt.mu.Unlock()
	if sub == nil {
		return false
	}

	flag, ok, _ := lt.store.Get(keyTracking)
	return ok && flag == "true"
}

// push forwards a sample to the server. Stream samples are tagged with the
// current availability flag; start-time forwards go untagged. Failures are
// logged only.
func (lt *LocationTracker) push(ctx context.Context, sample model.PositionSample, tagged bool) {
	update := dto.LocationUpdate{
		Latitude:  sample.Latitude,
		Longitude: sample.Longitude,
		Timestamp: sample.CapturedAt,
	}
	if sample.Accuracy > 0 {
		update.Accuracy = nullable.NewNullableWithValue(sample.Accuracy)
	}
	if tagged {
		flag, ok, _ := lt.store.Get(keyAvailable)
		if ok {
			update.IsAvailable = nullable.NewNullableWithValue(flag == "true")
		}
	}

	if err := lt.telemetry.PushLocation(ctx, update); err != nil {
		if ctx.Err() != nil {
			return
		}
		lt.mylog.Warn("location push failed", "error", err.Error())
	}
}
