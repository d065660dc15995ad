package dto

import "xdrive-driver/internal/driver-client/core/domain/model"

type PendingRidesResponse struct {
	PendingRides []model.Ride `json:"pendingRides"`
}

type AcceptRideRequest struct {
	RideID string `json:"rideId"`
}

// AcceptRideResponse may carry a voucher (bon de commande) reference; its
// absence is not an error.
type AcceptRideResponse struct {
	BonCommande string `json:"bonCommande,omitempty"`
}

type DeclineRideRequest struct {
	RideID string `json:"rideId"`
	Reason string `json:"reason"`
}

type RideStatusUpdate struct {
	Status model.RideStatus `json:"status"`
}

type RideHistoryPage struct {
	Rides      []model.Ride `json:"rides"`
	Page       int          `json:"page"`
	Limit      int          `json:"limit"`
	TotalPages int          `json:"totalPages"`
}

type DriverStats struct {
	Period         string  `json:"period"`
	RidesCompleted int     `json:"ridesCompleted"`
	Earnings       float64 `json:"earnings"`
	DistanceKm     float64 `json:"distanceKm"`
}

// RideOffer is a ride pushed over the offer feed.
type RideOffer struct {
	OfferID string     `json:"offer_id"`
	Ride    model.Ride `json:"ride"`
}
