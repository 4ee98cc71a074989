package itinerary

import (
	"errors"
	"fmt"
)

// ErrNoItinerary is wrapped by every input-level failure of Cluster. Callers
// that only care whether a plan exists can test for it with errors.Is.
var ErrNoItinerary = errors.New("no itinerary could be produced")

var (
	ErrEmptyInput         = fmt.Errorf("%w: no activities supplied", ErrNoItinerary)
	ErrInvalidDayCount    = fmt.Errorf("%w: day count must be positive", ErrNoItinerary)
	ErrNoValidCoordinates = fmt.Errorf("%w: no activity has usable coordinates", ErrNoItinerary)
)
