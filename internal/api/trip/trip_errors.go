package trip

import "errors"

var (
	ErrTripNotFound         = errors.New("trip not found")
	ErrActivityNotFound     = errors.New("activity not found")
	ErrNoGeocodedActivities = errors.New("trip has no geocoded activities")
	ErrNoDetailedItinerary  = errors.New("trip has no detailed itinerary")
	ErrDayNotFound          = errors.New("day not found in itinerary")
	ErrStopNotFound         = errors.New("stop not found")
	ErrInvalidMove          = errors.New("stop cannot move further in that direction")
	ErrActivityNotInPool    = errors.New("activity is not available in the pool")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrLLM                  = errors.New("language model request failed")
)

// BrainstormFailureReply is stored as the assistant turn when the model call fails.
const BrainstormFailureReply = "Sorry, I encountered an error connecting to the AI."
