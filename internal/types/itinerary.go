package types

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-trip-day-planner/internal/itinerary"
)

// BasicItinerary is the geographic day split of the located activities.
type BasicItinerary struct {
	RequestedDays int                `json:"requested_days"`
	EffectiveDays int                `json:"effective_days"`
	Days          map[int][]Activity `json:"days"`
}

// Stop is a single scheduled entry of a detailed day plan.
type Stop struct {
	Time        string     `json:"time"`
	Type        string     `json:"type"`
	Name        string     `json:"name"`
	Coordinates [2]float64 `json:"coordinates"` // [lon, lat]
	Description string     `json:"description"`
	Zoom        float64    `json:"zoom,omitempty"`
	Pitch       float64    `json:"pitch,omitempty"`
	Bearing     float64    `json:"bearing,omitempty"`
	ActivityID  *uuid.UUID `json:"activity_id,omitempty"`
}

func (s Stop) Longitude() float64 { return s.Coordinates[0] }
func (s Stop) Latitude() float64  { return s.Coordinates[1] }

type DayPlan struct {
	Day   int    `json:"day"`
	Title string `json:"title,omitempty"`
	Stops []Stop `json:"stops"`
}

// DetailedItinerary is ordered by day number.
type DetailedItinerary []DayPlan

// DayIndex returns the slice index of day, or -1.
func (d DetailedItinerary) DayIndex(day int) int {
	for i, plan := range d {
		if plan.Day == day {
			return i
		}
	}
	return -1
}

type ItineraryRequest struct {
	NumDays int `json:"num_days"`
}

type ModifyItineraryRequest struct {
	Instruction string `json:"instruction"`
}

type AddStopRequest struct {
	ActivityID uuid.UUID `json:"activity_id"`
	Day        int       `json:"day"`
}

type MoveDirection string

const (
	MoveUp   MoveDirection = "up"
	MoveDown MoveDirection = "down"
)

type MoveStopRequest struct {
	Direction MoveDirection `json:"direction"`
}

type QuickPlanRequest struct {
	Destination string `json:"destination"`
	Duration    string `json:"duration"`
	Vibe        string `json:"vibe"`
}

type QuickPlanResponse struct {
	State          *TripState `json:"state"`
	NumDays        int        `json:"num_days"`
	Missing        []string   `json:"missing,omitempty"`
	// ItineraryError is set when the trip was saved but no detailed itinerary could be built.
	ItineraryError string     `json:"itinerary_error,omitempty"`
}

// ClusterRequest is the stateless clustering payload. Records keep whatever
// fields the caller sent; values are re-encoded compactly.
type ClusterRequest struct {
	NumDays int                                 `json:"num_days"`
	Records []itinerary.Record[json.RawMessage] `json:"records"`
}

type ClusterResponse struct {
	RequestedDays int                                      `json:"requested_days"`
	EffectiveDays int                                      `json:"effective_days"`
	Days          itinerary.DayAssignment[json.RawMessage] `json:"days"`
}
