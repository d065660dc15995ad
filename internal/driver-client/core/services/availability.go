package services

import (
	"context"

	"xdrive-driver/internal/driver-client/core/domain/dto"
	"xdrive-driver/internal/driver-client/core/ports/driven"
	"xdrive-driver/internal/mylogger"

	"github.com/oapi-codegen/nullable"
)

// AvailabilityController is the single source of truth for the on/off-duty
// flag. available==true always implies the tracker is running; a failed
// tracker start rolls the flag back so no "available but untracked" state
// can persist.
type AvailabilityController struct {
	store     driven.KeyValueStore
	tracker   *LocationTracker
	telemetry driven.TelemetryAPI
	cache     *PositionCache
	driverID  func() string
	mylog     mylogger.Logger
}

func NewAvailabilityController(store driven.KeyValueStore, tracker *LocationTracker, telemetry driven.TelemetryAPI, cache *PositionCache, driverID func() string, mylog mylogger.Logger) *AvailabilityController {
	return &AvailabilityController{
		store:     store,
		tracker:   tracker,
		telemetry: telemetry,
		cache:     cache,
		driverID:  driverID,
		mylog:     mylog,
	}
}

// SetAvailable toggles duty state. Turning on starts tracking (permission
// first); turning off stops it. Either way the new flag is pushed to the
// server best-effort, paired with the cached position when one exists.
func (ac *AvailabilityController) SetAvailable(ctx context.Context, value bool, onUpdate PositionObserver) error {
	if value {
		if err := ac.store.Set(keyAvailable, "true"); err != nil {
			return err
		}
		if err := ac.tracker.Start(ctx, ac.driverID(), onUpdate); err != nil {
			if rbErr := ac.store.Set(keyAvailable, "false"); rbErr != nil {
				ac.mylog.Error("rolling back availability flag", rbErr)
			}
			return err
		}
	} else {
		ac.tracker.Stop()
		if err := ac.store.Set(keyAvailable, "false"); err != nil {
			return err
		}
	}

	ac.announce(ctx, value)
	return nil
}

// Get reads the persisted flag, never inferring from tracker state.
func (ac *AvailabilityController) Get() bool {
	flag, ok, _ := ac.store.Get(keyAvailable)
	return ok && flag == "true"
}

// Sync adopts the server's availability flag, reconciling state after a
// relaunch. The server wins; a mismatch overwrites the local flag but never
// starts tracking on its own.
func (ac *AvailabilityController) Sync(ctx context.Context) (bool, error) {
	available, err := ac.telemetry.AvailabilityStatus(ctx)
	if err != nil {
		return ac.Get(), err
	}

	flag := "false"
	if available {
		flag = "true"
	}
	if err := ac.store.Set(keyAvailable, flag); err != nil {
		return available, err
	}
	return available, nil
}

// announce pushes the new flag to the server. Telemetry only: failures are
// logged and never surface to the driver.
func (ac *AvailabilityController) announce(ctx context.Context, value bool) {
	if err := ac.telemetry.UpdateAvailability(ctx, value); err != nil {
		ac.mylog.Warn("availability push failed", "error", err.Error())
	}

	sample, ok := ac.cache.Get()
	if !ok {
		// No position to pair; the flag-only payload above already went out.
		return
	}

	update := dto.LocationUpdate{
		Latitude:    sample.Latitude,
		Longitude:   sample.Longitude,
		IsAvailable: nullable.NewNullableWithValue(value),
		Timestamp:   sample.CapturedAt,
	}
	if sample.Accuracy > 0 {
		update.Accuracy = nullable.NewNullableWithValue(sample.Accuracy)
	}
	if err := ac.telemetry.PushLocation(ctx, update); err != nil {
		ac.mylog.Warn("availability location push failed", "error", err.Error())
	}
}
