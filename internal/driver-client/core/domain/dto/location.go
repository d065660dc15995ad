package dto

import (
	"time"

	"github.com/oapi-codegen/nullable"
)

// LocationUpdate is the body of `POST /api/driver/location`. Accuracy and
// IsAvailable are omitted from the wire when unknown rather than sent with
// fabricated values.
type LocationUpdate struct {
	Latitude    float64                    `json:"latitude"`
	Longitude   float64                    `json:"longitude"`
	Accuracy    nullable.Nullable[float64] `json:"accuracy,omitempty"`
	IsAvailable nullable.Nullable[bool]    `json:"isAvailable,omitempty"`
	Timestamp   time.Time                  `json:"timestamp"`
}

// AvailabilityUpdate is the body of `PUT /api/driver/availability`. The
// flag-only shape lets a driver toggle off without a GPS fix.
type AvailabilityUpdate struct {
	Available bool `json:"available"`
}

type AvailabilityStatus struct {
	Available bool `json:"available"`
}
