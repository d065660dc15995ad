package model

import "time"

type Driver struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone,omitempty"`
	Vehicle string  `json:"vehicle,omitempty"`
	Rating  float64 `json:"rating,omitempty"`
}

// Session is the authenticated context held by the client. It is valid
// while its age stays under the configured TTL and the server keeps
// accepting the token.
type Session struct {
	Token    string
	DriverID string
	LoginAt  time.Time
}

func (s Session) Age(now time.Time) time.Duration {
	return now.Sub(s.LoginAt)
}

func (s Session) Expired(now time.Time, ttl time.Duration) bool {
	return s.Age(now) >= ttl
}
