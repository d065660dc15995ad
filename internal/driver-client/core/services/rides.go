package services

import (
	"context"

	"xdrive-driver/internal/driver-client/core/domain/dto"
	"xdrive-driver/internal/driver-client/core/domain/model"
	"xdrive-driver/internal/driver-client/core/ports/driven"
	"xdrive-driver/internal/mylogger"
)

// RidesCatalog reads ride collections and reports: pending offers, history
// pages, stats. Write paths live on RideFlow.
type RidesCatalog struct {
	api   driven.RidesAPI
	mylog mylogger.Logger
}

func NewRidesCatalog(api driven.RidesAPI, mylog mylogger.Logger) *RidesCatalog {
	return &RidesCatalog{
		api:   api,
		mylog: mylog,
	}
}

func (rc *RidesCatalog) PendingRides(ctx context.Context) ([]model.Ride, error) {
	return rc.api.AvailableRides(ctx)
}

func (rc *RidesCatalog) RideDetails(ctx context.Context, rideID string) (model.Ride, error) {
	return rc.api.RideDetails(ctx, rideID)
}

func (rc *RidesCatalog) History(ctx context.Context, page, limit int) (dto.RideHistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return rc.api.RideHistory(ctx, page, limit)
}

func (rc *RidesCatalog) Stats(ctx context.Context, period string) (dto.DriverStats, error) {
	if period == "" {
		period = "week"
	}
	return rc.api.Stats(ctx, period)
}
