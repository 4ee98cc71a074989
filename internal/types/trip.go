package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TripContext is what the prompts need to know about a trip.
type TripContext struct {
	Destination string   `json:"destination"`
	Duration    string   `json:"duration"`
	Preferences []string `json:"preferences"`
	Budget      string   `json:"budget"`
}

type Trip struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Destination string    `json:"destination"`
	Duration    string    `json:"duration"`
	Preferences []string  `json:"preferences"`
	Budget      string    `json:"budget"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t Trip) Context() TripContext {
	return TripContext{
		Destination: t.Destination,
		Duration:    t.Duration,
		Preferences: t.Preferences,
		Budget:      t.Budget,
	}
}

type GeocodeStatus string

const (
	GeocodePending  GeocodeStatus = "pending"
	GeocodeFound    GeocodeStatus = "found"
	GeocodeNotFound GeocodeStatus = "not_found"
)

// Activity is a curated place on a trip.
type Activity struct {
	ID            uuid.UUID     `json:"id"`
	TripID        uuid.UUID     `json:"trip_id"`
	Position      int           `json:"position"`
	DisplayText   string        `json:"display_text"`
	PlaceName     string        `json:"place_name"`
	Latitude      *float64      `json:"latitude,omitempty"`
	Longitude     *float64      `json:"longitude,omitempty"`
	Address       string        `json:"address,omitempty"`
	GeocodeStatus GeocodeStatus `json:"geocode_status"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Located reports whether the activity has usable coordinates.
func (a Activity) Located() bool {
	return a.GeocodeStatus == GeocodeFound && a.Latitude != nil && a.Longitude != nil
}

// PoolKey identifies a place independently of its ID, rounded so that small
// float noise from the LLM does not matter.
func PoolKey(name string, lon, lat float64) string {
	return fmt.Sprintf("%s_%.4f_%.4f", name, lon, lat)
}

type GeocodeResult struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

type GeocodeSummary struct {
	Found    int      `json:"found"`
	NotFound int      `json:"not_found"`
	Missing  []string `json:"missing,omitempty"`
}

type CreateTripRequest struct {
	Destination string   `json:"destination"`
	Duration    string   `json:"duration"`
	Preferences []string `json:"preferences"`
	Budget      string   `json:"budget"`
}

type AddActivitiesRequest struct {
	Suggestions []Suggestion `json:"suggestions"`
}

// TripState is everything known about a trip, as returned by GET /trips/{id}.
type TripState struct {
	Trip        Trip              `json:"trip"`
	Messages    []ChatMessage     `json:"messages"`
	Suggestions []Suggestion      `json:"suggestions"`
	Activities  []Activity        `json:"activities"`
	Basic       *BasicItinerary   `json:"basic_itinerary,omitempty"`
	Detailed    DetailedItinerary `json:"detailed_itinerary,omitempty"`
}
