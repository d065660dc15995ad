package services

import (
	"encoding/json"

	"xdrive-driver/internal/driver-client/core/domain/model"
	"xdrive-driver/internal/driver-client/core/ports/driven"
	"xdrive-driver/internal/mylogger"
)

// PositionCache holds the single most recent device fix. Persistence is
// fire-and-forget: losing a cached position is not fatal, so write
// failures are logged and swallowed.
type PositionCache struct {
	store driven.KeyValueStore
	mylog mylogger.Logger
}

func NewPositionCache(store driven.KeyValueStore, mylog mylogger.Logger) *PositionCache {
	return &PositionCache{
		store: store,
		mylog: mylog,
	}
}

func (pc *PositionCache) Save(sample model.PositionSample) {
	raw, err := json.Marshal(sample)
	if err != nil {
		pc.mylog.Error("encoding position", err)
		return
	}
	if err := pc.store.Set(keyLastPosition, string(raw)); err != nil {
		pc.mylog.Error("persisting position", err)
	}
}

func (pc *PositionCache) Get() (model.PositionSample, bool) {
	raw, ok, err := pc.store.Get(keyLastPosition)
	if err != nil || !ok {
		return model.PositionSample{}, false
	}

	var sample model.PositionSample
	if err := json.Unmarshal([]byte(raw), &sample); err != nil {
		pc.mylog.Warn("discarding unreadable cached position", "error", err.Error())
		return model.PositionSample{}, false
	}
	return sample, true
}
