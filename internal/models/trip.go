package models

import (
	"strings"
	"time"

	apperrors "greentrip/internal/common/errors"
)

// Mode selects the optimization target for one orchestration run.
type Mode string

const (
	ModePriceOptimal Mode = "price-optimal"
	ModeBalanced     Mode = "balanced"
)

const MaxTripDays = 30

// TripRequest is the immutable input to one orchestration run.
type TripRequest struct {
	Destination string   `json:"destination"`
	Origin      string   `json:"origin,omitempty"`
	NumDays     int      `json:"num_days"`
	Budget      float64  `json:"budget"`
	Preferences []string `json:"preferences"`
	Mode        Mode     `json:"mode"`
	StartDate   string   `json:"start_date,omitempty"` // YYYY-MM-DD, defaults to 30 days out
}

// Validate rejects malformed requests before any provider dispatch.
func (r *TripRequest) Validate() error {
	if strings.TrimSpace(r.Destination) == "" {
		return apperrors.NewValidationError("destination is required")
	}
	if r.NumDays <= 0 {
		return apperrors.NewValidationError("num_days must be positive")
	}
	if r.NumDays > MaxTripDays {
		return apperrors.NewValidationError("num_days must not exceed 30")
	}
	if r.Budget < 0 {
		return apperrors.NewValidationError("budget must not be negative")
	}
	switch r.Mode {
	case ModePriceOptimal, ModeBalanced:
	default:
		return apperrors.NewValidationError("mode must be price-optimal or balanced")
	}
	if r.StartDate != "" {
		if _, err := time.Parse("2006-01-02", r.StartDate); err != nil {
			return apperrors.NewValidationError("start_date must be YYYY-MM-DD")
		}
	}
	return nil
}

// Start resolves the trip start date. When the caller did not pick one, the
// trip is assumed to begin 30 days out, matching the booking search window.
func (r *TripRequest) Start(now time.Time) time.Time {
	if r.StartDate != "" {
		if d, err := time.Parse("2006-01-02", r.StartDate); err == nil {
			return d
		}
	}
	return now.UTC().Truncate(24 * time.Hour).AddDate(0, 0, 30)
}

// End returns the last trip day.
func (r *TripRequest) End(now time.Time) time.Time {
	return r.Start(now).AddDate(0, 0, r.NumDays-1)
}

// OriginOrDefault returns the origin airport code, defaulting to JFK the way
// the search layer does when the caller omits it.
func (r *TripRequest) OriginOrDefault() string {
	if strings.TrimSpace(r.Origin) == "" {
		return "JFK"
	}
	return strings.ToUpper(strings.TrimSpace(r.Origin))
}
