package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"xdrive-driver/internal/driver-client/core/domain/dto"
	"xdrive-driver/internal/driver-client/core/domain/model"
	"xdrive-driver/internal/driver-client/core/myerrors"
)

// Client exposes the driver API endpoints over a Gateway. It implements
// driven.AuthAPI, driven.TelemetryAPI and driven.RidesAPI.
type Client struct {
	gw *Gateway
}

func NewClient(gw *Gateway) *Client {
	return &Client{gw: gw}
}

func decode[T any](data []byte) (T, error) {
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return out, myerrors.Wrap(myerrors.KindMalformedResponse, "decoding response", err)
	}
	return out, nil
}

func (c *Client) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	data, err := c.gw.Do(ctx, http.MethodPost, "/api/driver/login", req)
	if err != nil {
		return dto.LoginResponse{}, err
	}
	return decode[dto.LoginResponse](data)
}

func (c *Client) Profile(ctx context.Context) (model.Driver, error) {
	data, err := c.gw.Do(ctx, http.MethodGet, "/api/driver/profile", nil)
	if err != nil {
		return model.Driver{}, err
	}
	resp, err := decode[dto.ProfileResponse](data)
	return resp.Driver, err
}

func (c *Client) UpdateProfile(ctx context.Context, req dto.ProfileUpdateRequest) (model.Driver, error) {
	data, err := c.gw.Do(ctx, http.MethodPut, "/api/driver/profile", req)
	if err != nil {
		return model.Driver{}, err
	}
	resp, err := decode[dto.ProfileResponse](data)
	return resp.Driver, err
}

func (c *Client) RegisterPushToken(ctx context.Context, token string) error {
	_, err := c.gw.Do(ctx, http.MethodPost, "/api/driver/register-push-token", dto.RegisterPushTokenRequest{PushToken: token})
	return err
}

func (c *Client) UpdateAvailability(ctx context.Context, available bool) error {
	_, err := c.gw.Do(ctx, http.MethodPut, "/api/driver/availability", dto.AvailabilityUpdate{Available: available})
	return err
}

func (c *Client) AvailabilityStatus(ctx context.Context) (bool, error) {
	data, err := c.gw.Do(ctx, http.MethodGet, "/api/driver/availability", nil)
	if err != nil {
		return false, err
	}
	resp, err := decode[dto.AvailabilityStatus](data)
	return resp.Available, err
}

func (c *Client) PushLocation(ctx context.Context, update dto.LocationUpdate) error {
	_, err := c.gw.Do(ctx, http.MethodPost, "/api/driver/location", update)
	return err
}

func (c *Client) AvailableRides(ctx context.Context) ([]model.Ride, error) {
	data, err := c.gw.Do(ctx, http.MethodGet, "/api/driver/available-rides", nil)
	if err != nil {
		return nil, err
	}
	resp, err := decode[dto.PendingRidesResponse](data)
	return resp.PendingRides, err
}

func (c *Client) RideDetails(ctx context.Context, rideID string) (model.Ride, error) {
	data, err := c.gw.Do(ctx, http.MethodGet, "/api/ride/"+url.PathEscape(rideID), nil)
	if err != nil {
		return model.Ride{}, err
	}
	return decode[model.Ride](data)
}

func (c *Client) AcceptRide(ctx context.Context, rideID string) (dto.AcceptRideResponse, error) {
	data, err := c.gw.Do(ctx, http.MethodPost, "/api/ride/accept", dto.AcceptRideRequest{RideID: rideID})
	if err != nil {
		return dto.AcceptRideResponse{}, err
	}
	return decode[dto.AcceptRideResponse](data)
}

func (c *Client) DeclineRide(ctx context.Context, rideID, reason string) error {
	_, err := c.gw.Do(ctx, http.MethodPost, "/api/ride/decline", dto.DeclineRideRequest{RideID: rideID, Reason: reason})
	return err
}

func (c *Client) UpdateRideStatus(ctx context.Context, rideID string, status model.RideStatus) error {
	endpoint := fmt.Sprintf("/api/ride/%s/status", url.PathEscape(rideID))
	_, err := c.gw.Do(ctx, http.MethodPut, endpoint, dto.RideStatusUpdate{Status: status})
	return err
}

func (c *Client) DownloadVoucher(ctx context.Context, rideID string) ([]byte, error) {
	return c.gw.Do(ctx, http.MethodGet, "/api/ride/bon-commande/"+url.PathEscape(rideID), nil)
}

func (c *Client) RideHistory(ctx context.Context, page, limit int) (dto.RideHistoryPage, error) {
	endpoint := fmt.Sprintf("/api/driver/ride-history?page=%d&limit=%d", page, limit)
	data, err := c.gw.Do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return dto.RideHistoryPage{}, err
	}
	return decode[dto.RideHistoryPage](data)
}

func (c *Client) Stats(ctx context.Context, period string) (dto.DriverStats, error) {
	data, err := c.gw.Do(ctx, http.MethodGet, "/api/driver/stats?period="+url.QueryEscape(period), nil)
	if err != nil {
		return dto.DriverStats{}, err
	}
	return decode[dto.DriverStats](data)
}
