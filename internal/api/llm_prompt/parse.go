package llmPrompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-trip-day-planner/internal/types"
)

var (
	ErrInvalidItinerary = errors.New("llm returned an invalid itinerary")
	ErrNoPlaces         = errors.New("llm returned no places")
)

const DefaultDurationDays = 3

const (
	defaultStopZoom  = 16
	defaultStopPitch = 50
	defaultStopType  = "sightseeing"
)

var (
	boldWithDescription = regexp.MustCompile(`^[*\-\d]*\.?\s*\*\*(.*?)\*\*\s*[:\-]?\s*(.*)`)
	boldOnly            = regexp.MustCompile(`^[*\-\d]*\.?\s*\*\*(.*?)\*\*$`)
	plainListItem       = regexp.MustCompile(`^[*\-\d]+\.?\s+(.*)`)
	firstNumber         = regexp.MustCompile(`\d+`)
)

// ParseSuggestions extracts place suggestions from a brainstorm reply, one per line.
func ParseSuggestions(text string) []types.Suggestion {
	var out []types.Suggestion
	for _, raw := range strings.Split(strings.TrimSpace(text), "\n") {
		line := strings.TrimSpace(raw)

		var place, display string
		if m := boldWithDescription.FindStringSubmatch(line); m != nil {
			place = strings.TrimSpace(m[1])
			display = "**" + place + "**"
			if desc := strings.TrimSpace(m[2]); desc != "" {
				display += ": " + desc
			}
		} else if m := boldOnly.FindStringSubmatch(line); m != nil {
			place = strings.TrimSpace(m[1])
			display = "**" + place + "**"
		} else if m := plainListItem.FindStringSubmatch(line); m != nil {
			place = strings.TrimSpace(m[1])
			display = place
		} else if len([]rune(line)) > 5 {
			place = strings.Trim(line, "*-. ")
			display = line
		}

		place = strings.TrimSpace(strings.NewReplacer("*", "", ":", "").Replace(place))
		if place == "" {
			continue
		}
		out = append(out, types.Suggestion{PlaceName: place, DisplayText: display})
	}
	return out
}

// ParseDurationDays reads the first integer out of a free text duration such as "5 days".
// Values below one become one; text without a number gives DefaultDurationDays.
func ParseDurationDays(duration string) int {
	m := firstNumber.FindString(duration)
	if m == "" {
		return DefaultDurationDays
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return DefaultDurationDays
	}
	return max(1, n)
}

// ParsePlaceNames accepts a JSON array of names or an object with a "places" array.
// Names are trimmed and deduplicated case-insensitively, first spelling wins.
func ParsePlaceNames(text string) ([]string, error) {
	cleaned := cleanJSONResponse(text)

	var names []string
	if err := json.Unmarshal([]byte(cleaned), &names); err != nil {
		var wrapped struct {
			Places []string `json:"places"`
		}
		if err2 := json.Unmarshal([]byte(cleaned), &wrapped); err2 != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoPlaces, err2)
		}
		names = wrapped.Places
	}

	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := strings.ToLower(n)
		if n == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, ErrNoPlaces
	}
	return out, nil
}

type wireStop struct {
	Time        string    `json:"time"`
	Type        string    `json:"type"`
	Name        string    `json:"name"`
	Coordinates []float64 `json:"coordinates"`
	Description string    `json:"description"`
	Zoom        float64   `json:"zoom"`
	Pitch       float64   `json:"pitch"`
	Bearing     float64   `json:"bearing"`
}

type wireDay struct {
	Day   int         `json:"day"`
	Title string      `json:"title"`
	Stops *[]wireStop `json:"stops"`
}

// ParseDetailedItinerary validates an LLM itinerary reply and returns it sorted by day.
func ParseDetailedItinerary(text string) (types.DetailedItinerary, error) {
	cleaned := cleanJSONResponse(text)

	var days []wireDay
	if strings.HasPrefix(cleaned, "[") {
		if err := json.Unmarshal([]byte(cleaned), &days); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidItinerary, err)
		}
	} else {
		var wrapped struct {
			Itinerary []wireDay `json:"itinerary"`
		}
		if err := json.Unmarshal([]byte(cleaned), &wrapped); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidItinerary, err)
		}
		days = wrapped.Itinerary
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("%w: no days", ErrInvalidItinerary)
	}

	seen := make(map[int]bool, len(days))
	out := make(types.DetailedItinerary, 0, len(days))
	for _, d := range days {
		if d.Day < 1 {
			return nil, fmt.Errorf("%w: day number %d", ErrInvalidItinerary, d.Day)
		}
		if seen[d.Day] {
			return nil, fmt.Errorf("%w: day %d appears twice", ErrInvalidItinerary, d.Day)
		}
		seen[d.Day] = true
		if d.Stops == nil {
			return nil, fmt.Errorf("%w: day %d has no stops list", ErrInvalidItinerary, d.Day)
		}

		plan := types.DayPlan{Day: d.Day, Title: strings.TrimSpace(d.Title), Stops: make([]types.Stop, 0, len(*d.Stops))}
		for i, s := range *d.Stops {
			stop, err := s.toStop()
			if err != nil {
				return nil, fmt.Errorf("%w: day %d stop %d: %w", ErrInvalidItinerary, d.Day, i+1, err)
			}
			plan.Stops = append(plan.Stops, stop)
		}
		out = append(out, plan)
	}

	slices.SortFunc(out, func(a, b types.DayPlan) int { return a.Day - b.Day })
	return out, nil
}

func (s wireStop) toStop() (types.Stop, error) {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return types.Stop{}, errors.New("missing name")
	}
	if len(s.Coordinates) != 2 {
		return types.Stop{}, fmt.Errorf("coordinates must be [lon, lat], got %d values", len(s.Coordinates))
	}
	lon, lat := s.Coordinates[0], s.Coordinates[1]
	if math.IsNaN(lon) || math.IsNaN(lat) || lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return types.Stop{}, fmt.Errorf("coordinates [%g, %g] out of range", lon, lat)
	}

	stop := types.Stop{
		Time:        strings.TrimSpace(s.Time),
		Type:        strings.TrimSpace(s.Type),
		Name:        name,
		Coordinates: [2]float64{lon, lat},
		Description: strings.TrimSpace(s.Description),
		Zoom:        s.Zoom,
		Pitch:       s.Pitch,
		Bearing:     s.Bearing,
	}
	if stop.Type == "" {
		stop.Type = defaultStopType
	}
	if stop.Zoom == 0 {
		stop.Zoom = defaultStopZoom
	}
	if stop.Pitch == 0 {
		stop.Pitch = defaultStopPitch
	}
	return stop, nil
}

// cleanJSONResponse strips markdown fences and any prose around the first JSON value.
func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)
	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else {
		response = strings.TrimPrefix(response, "```")
	}
	response = strings.TrimSpace(strings.TrimSuffix(response, "```"))

	start := strings.IndexAny(response, "{[")
	if start == -1 {
		return response
	}
	closer := "}"
	if response[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(response, closer)
	if end <= start {
		return response
	}
	return response[start : end+1]
}
