package model

import (
	"math"
	"time"
)

// PositionSample is one device fix. Samples are replaced wholesale, never
// mutated in place.
type PositionSample struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Accuracy   float64   `json:"accuracy,omitempty"`
	CapturedAt time.Time `json:"timestamp"`
}

func (p PositionSample) Age(now time.Time) time.Duration {
	return now.Sub(p.CapturedAt)
}

// DistanceMeters is the haversine distance between two samples in meters.
func (p PositionSample) DistanceMeters(other PositionSample) float64 {
	const R = 6371000 // Earth radius in meters
	dLat := (other.Latitude - p.Latitude) * math.Pi / 180
	dLng := (other.Longitude - p.Longitude) * math.Pi / 180
	lat1 := p.Latitude * math.Pi / 180
	lat2 := other.Latitude * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1)*math.Cos(lat2)
	return 2 * R * math.Asin(math.Sqrt(h))
}
