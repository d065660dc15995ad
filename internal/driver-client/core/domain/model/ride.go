package model

import (
	"errors"
	"strings"
)

// RideStatus is a ride status as sent to `PUT /api/ride/:id/status`.
type RideStatus string

const (
	StatusPending       RideStatus = "pending"
	StatusAssigned      RideStatus = "assigned"
	StatusEnRoute       RideStatus = "en_route"
	StatusArrived       RideStatus = "arrived"
	StatusInProgress    RideStatus = "in_progress"
	StatusCompleted     RideStatus = "completed"
	StatusCashCollected RideStatus = "cash_collected"
	StatusDeclined      RideStatus = "declined"
)

const (
	PaymentCash = "cash"
	PaymentCard = "card"
)

var ErrInvalidStatus = errors.New("invalid ride status")

// ParseStatus normalizes (lowercases+trims) and validates a status string.
func ParseStatus(in string) (RideStatus, error) {
	status := RideStatus(strings.ToLower(strings.TrimSpace(in)))
	if status.Valid() {
		return status, nil
	}
	return "", ErrInvalidStatus
}

// Valid reports whether status is one of the allowed ride status constants.
func (status RideStatus) Valid() bool {
	switch status {
	case StatusPending, StatusAssigned, StatusEnRoute, StatusArrived,
		StatusInProgress, StatusCompleted, StatusCashCollected, StatusDeclined:
		return true
	default:
		return false
	}
}

// String returns the string representation of the RideStatus.
func (status RideStatus) String() string {
	return string(status)
}

// CanTransitionTo specifies if the status can transition to the next status.
// Transitions are driver-initiated and strictly forward; cash_collected is
// reachable only from completed (payment-method gating happens in the
// lifecycle machine, which knows the ride).
func (status RideStatus) CanTransitionTo(next RideStatus) bool {
	switch status {
	case StatusPending:
		return next == StatusAssigned || next == StatusDeclined

	case StatusAssigned:
		return next == StatusEnRoute

	case StatusEnRoute:
		return next == StatusArrived

	case StatusArrived:
		return next == StatusInProgress

	case StatusInProgress:
		return next == StatusCompleted

	case StatusCompleted:
		return next == StatusCashCollected

	case StatusCashCollected, StatusDeclined:
		return false

	default:
		return false
	}
}

// Terminal indicates if the status is in a terminal state.
func (status RideStatus) Terminal() bool {
	return status == StatusCashCollected || status == StatusDeclined
}

// Ride is the local working snapshot of a remote ride; the server owns the
// authoritative copy.
type Ride struct {
	ID              string     `json:"id"`
	PickupTime      string     `json:"pickupTime,omitempty"`
	PickupLocation  string     `json:"pickupLocation"`
	DropoffLocation string     `json:"dropoffLocation"`
	PickupLat       float64    `json:"pickupLat,omitempty"`
	PickupLng       float64    `json:"pickupLng,omitempty"`
	DropoffLat      float64    `json:"dropoffLat,omitempty"`
	DropoffLng      float64    `json:"dropoffLng,omitempty"`
	DistanceKm      float64    `json:"distance,omitempty"`
	DurationMin     int        `json:"duration,omitempty"`
	Price           float64    `json:"price"`
	PaymentMethod   string     `json:"paymentMethod"`
	Status          RideStatus `json:"status,omitempty"`
}
