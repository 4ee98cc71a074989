package itinerary

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

const (
	LatitudeKey  = "latitude"
	LongitudeKey = "longitude"
)

// Record is one curated activity. Only the latitude and longitude keys are
// read; every other key is payload and is handed back untouched.
type Record[V any] map[string]V

// DayAssignment maps a 1-based day number to the records planned for that day.
type DayAssignment[V any] map[int][]Record[V]

// Days returns the day numbers in ascending order.
func (d DayAssignment[V]) Days() []int {
	days := make([]int, 0, len(d))
	for day := range d {
		days = append(days, day)
	}
	sort.Ints(days)
	return days
}

// Len returns the number of records across all days.
func (d DayAssignment[V]) Len() int {
	total := 0
	for _, records := range d {
		total += len(records)
	}
	return total
}

// Coordinates reports the record's position. ok is false when either key is
// missing, cannot be read as a finite number, or falls outside the valid
// latitude/longitude range.
func (r Record[V]) Coordinates() (lat, lon float64, ok bool) {
	latRaw, found := r[LatitudeKey]
	if !found {
		return 0, 0, false
	}
	lonRaw, found := r[LongitudeKey]
	if !found {
		return 0, 0, false
	}

	lat, ok = toFloat(any(latRaw))
	if !ok || lat < -90 || lat > 90 {
		return 0, 0, false
	}
	lon, ok = toFloat(any(lonRaw))
	if !ok || lon < -180 || lon > 180 {
		return 0, 0, false
	}
	return lat, lon, true
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return finite(t)
	case float32:
		return finite(float64(t))
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case *float64:
		if t == nil {
			return 0, false
		}
		return finite(*t)
	case json.Number:
		return parseFloat(t.String())
	case json.RawMessage:
		return rawToFloat(t)
	case string:
		return parseFloat(t)
	default:
		return 0, false
	}
}

// rawToFloat accepts a JSON number or a JSON string holding a number.
func rawToFloat(raw json.RawMessage) (float64, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0, false
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return 0, false
		}
		return parseFloat(s)
	}
	return parseFloat(string(trimmed))
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return finite(f)
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
