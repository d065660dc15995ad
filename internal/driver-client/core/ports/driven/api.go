package driven

import (
	"context"

	"xdrive-driver/internal/driver-client/core/domain/dto"
	"xdrive-driver/internal/driver-client/core/domain/model"
)

// AuthAPI covers the session endpoints. Errors carry myerrors kinds; a
// KindAuth error means the credential was rejected.
type AuthAPI interface {
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	Profile(ctx context.Context) (model.Driver, error)
	UpdateProfile(ctx context.Context, req dto.ProfileUpdateRequest) (model.Driver, error)
	RegisterPushToken(ctx context.Context, token string) error
}

// TelemetryAPI covers the best-effort availability/location pushes.
type TelemetryAPI interface {
	UpdateAvailability(ctx context.Context, available bool) error
	AvailabilityStatus(ctx context.Context) (bool, error)
	PushLocation(ctx context.Context, update dto.LocationUpdate) error
}

// RidesAPI covers ride retrieval and lifecycle endpoints.
type RidesAPI interface {
	AvailableRides(ctx context.Context) ([]model.Ride, error)
	RideDetails(ctx context.Context, rideID string) (model.Ride, error)
	AcceptRide(ctx context.Context, rideID string) (dto.AcceptRideResponse, error)
	DeclineRide(ctx context.Context, rideID, reason string) error
	UpdateRideStatus(ctx context.Context, rideID string, status model.RideStatus) error
	DownloadVoucher(ctx context.Context, rideID string) ([]byte, error)
	RideHistory(ctx context.Context, page, limit int) (dto.RideHistoryPage, error)
	Stats(ctx context.Context, period string) (dto.DriverStats, error)
}
