package itinerary

import (
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activity(name string, lat, lon any) Record[any] {
	return Record[any]{
		"place_name": name,
		"latitude":   lat,
		"longitude":  lon,
	}
}

func namesByDay(days DayAssignment[any]) map[int][]string {
	out := make(map[int][]string, len(days))
	for day, records := range days {
		names := make([]string, 0, len(records))
		for _, r := range records {
			names = append(names, r["place_name"].(string))
		}
		out[day] = names
	}
	return out
}

func lisbonAndPorto() []Record[any] {
	return []Record[any]{
		activity("Belem Tower", 38.6916, -9.2160),
		activity("Ribeira", 41.1406, -8.6110),
		activity("Alfama", 38.7118, -9.1300),
		activity("Livraria Lello", 41.1469, -8.6149),
		activity("Oceanario", 38.7635, -9.0937),
		activity("Serralves", 41.1596, -8.6598),
	}
}

func TestCluster_TwoObviousGroups(t *testing.T) {
	days, err := Cluster(lisbonAndPorto(), 2)
	require.NoError(t, err)

	want := map[int][]string{
		1: {"Belem Tower", "Alfama", "Oceanario"},
		2: {"Ribeira", "Livraria Lello", "Serralves"},
	}
	if diff := cmp.Diff(want, namesByDay(days)); diff != "" {
		t.Errorf("unexpected day assignment (-want +got):\n%s", diff)
	}
}

func TestCluster_FewerRecordsThanDays(t *testing.T) {
	records := []Record[any]{
		activity("Louvre", 48.8606, 2.3376),
		activity("Eiffel Tower", 48.8584, 2.2945),
	}

	days, err := Cluster(records, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, days.Days())
	assert.Equal(t, 2, days.Len())
}

func TestCluster_NoItinerarySignals(t *testing.T) {
	records := lisbonAndPorto()

	testCases := []struct {
		name     string
		records  []Record[any]
		numDays  int
		expected error
	}{
		{name: "empty input", records: nil, numDays: 3, expected: ErrEmptyInput},
		{name: "empty slice", records: []Record[any]{}, numDays: 3, expected: ErrEmptyInput},
		{name: "zero days", records: records, numDays: 0, expected: ErrInvalidDayCount},
		{name: "negative days", records: records, numDays: -1, expected: ErrInvalidDayCount},
		{
			name: "no usable coordinates",
			records: []Record[any]{
				activity("Nowhere", "not a number", 10.0),
				{"place_name": "Missing"},
			},
			numDays:  2,
			expected: ErrNoValidCoordinates,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			days, err := Cluster(tc.records, tc.numDays)
			assert.Nil(t, days)
			assert.ErrorIs(t, err, tc.expected)
			assert.ErrorIs(t, err, ErrNoItinerary)
		})
	}
}

func TestCluster_NonNumericLatitudeIsDropped(t *testing.T) {
	records := []Record[any]{
		activity("Colosseum", 41.8902, 12.4922),
		activity("Broken", "not a number", 12.4964),
		activity("Vatican Museums", 41.9065, 12.4536),
	}

	days, err := Cluster(records, 2)
	require.NoError(t, err)

	assert.Equal(t, map[int][]string{
		1: {"Colosseum"},
		2: {"Vatican Museums"},
	}, namesByDay(days))
}

func TestCluster_DuplicateCoordinatesKeepEveryRecord(t *testing.T) {
	records := []Record[any]{
		activity("Cafe A", 52.5200, 13.4050),
		activity("Cafe B", 52.5200, 13.4050),
		activity("Museum A", 52.5163, 13.3777),
		activity("Museum B", 52.5163, 13.3777),
	}

	days, err := Cluster(records, 2)
	require.NoError(t, err)
	require.Equal(t, 4, days.Len())

	seen := map[string]int{}
	for _, recs := range days {
		for _, r := range recs {
			seen[r["place_name"].(string)]++
		}
	}
	assert.Equal(t, map[string]int{"Cafe A": 1, "Cafe B": 1, "Museum A": 1, "Museum B": 1}, seen)
}

func TestCluster_IdenticalPointsLeaveEmptyDays(t *testing.T) {
	records := []Record[any]{
		activity("One", 40.0, -3.0),
		activity("Two", 40.0, -3.0),
		activity("Three", 40.0, -3.0),
	}

	days, err := Cluster(records, 3)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, days.Days())
	assert.Len(t, days[1], 3)
	assert.NotNil(t, days[2])
	assert.Empty(t, days[2])
	assert.Empty(t, days[3])
}

func TestCluster_FiltersInvalidCoordinates(t *testing.T) {
	nan := math.NaN()
	records := []Record[any]{
		activity("ok-1", 10.0, 10.0),
		activity("nan", nan, 10.0),
		activity("inf", 10.0, math.Inf(1)),
		activity("lat out of range", 91.0, 10.0),
		activity("lon out of range", 10.0, -180.5),
		activity("bool", true, 10.0),
		activity("nil", nil, 10.0),
		activity("nan string", "NaN", 10.0),
		{"place_name": "no longitude", "latitude": 10.0},
		activity("ok-2", "10.5", json.Number("10.5")),
		nil,
	}

	days, err := Cluster(records, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, days.Len())

	for _, recs := range days {
		for _, r := range recs {
			assert.Contains(t, []string{"ok-1", "ok-2"}, r["place_name"])
		}
	}
}

func TestCluster_Deterministic(t *testing.T) {
	records := make([]Record[any], 0, 40)
	for i := 0; i < 40; i++ {
		lat := 45.0 + math.Sin(float64(i))*0.3
		lon := 7.0 + math.Cos(float64(i)*1.7)*0.4
		records = append(records, activity(fmt.Sprintf("poi-%d", i), lat, lon))
	}

	first, err := Cluster(records, 4)
	require.NoError(t, err)
	second, err := Cluster(records, 4)
	require.NoError(t, err)

	if diff := cmp.Diff(namesByDay(first), namesByDay(second)); diff != "" {
		t.Errorf("repeated call changed the plan (-first +second):\n%s", diff)
	}
}

func TestCluster_DayCountBoundAndCompleteness(t *testing.T) {
	records := make([]Record[any], 0, 25)
	for i := 0; i < 25; i++ {
		records = append(records, activity(fmt.Sprintf("poi-%d", i), -33.9+float64(i%5)*0.05, 18.4+float64(i/5)*0.07))
	}

	for numDays := 1; numDays <= 30; numDays++ {
		days, err := Cluster(records, numDays)
		require.NoError(t, err)

		assert.LessOrEqual(t, len(days), numDays)
		assert.LessOrEqual(t, len(days), len(records))
		assert.Equal(t, min(numDays, len(records)), len(days))
		assert.Equal(t, len(records), days.Len())

		seen := make(map[string]bool, len(records))
		for _, recs := range days {
			for _, r := range recs {
				name := r["place_name"].(string)
				assert.False(t, seen[name], "record %s assigned twice", name)
				seen[name] = true
			}
		}
	}
}

func TestCluster_FirstRecordLandsOnDayOneAndOrderIsKept(t *testing.T) {
	records := lisbonAndPorto()
	// Porto first this time.
	records[0], records[1] = records[1], records[0]

	days, err := Cluster(records, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"Ribeira", "Livraria Lello", "Serralves"}, namesByDay(days)[1])
	assert.Equal(t, []string{"Belem Tower", "Alfama", "Oceanario"}, namesByDay(days)[2])
}

func TestCluster_ReturnsTheSameRecordMaps(t *testing.T) {
	records := lisbonAndPorto()
	records[2]["notes"] = []string{"sunset", "tram 28"}

	days, err := Cluster(records, 2)
	require.NoError(t, err)

	for _, recs := range days {
		for _, r := range recs {
			if r["place_name"] == "Alfama" {
				assert.Equal(t, []string{"sunset", "tram 28"}, r["notes"])
				r["visited"] = true
			}
		}
	}
	assert.Equal(t, true, records[2]["visited"], "output must hand back the caller's record, not a copy")
}

func TestCluster_RawJSONPayloadIsPreserved(t *testing.T) {
	body := `[
		{"place_name": "Sagrada Familia", "latitude": "41.4036", "longitude": 2.1744, "description": "  Gaudí's basilica! "},
		{"place_name": "Park Guell", "latitude": 41.4145, "longitude": "2.1527", "tags": {"kind": ["park", "view"]}},
		{"place_name": "Bad", "latitude": null, "longitude": 2.0}
	]`
	var records []Record[json.RawMessage]
	require.NoError(t, json.Unmarshal([]byte(body), &records))

	days, err := Cluster(records, 3)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, days.Days())

	assert.Equal(t, `"  Gaudí's basilica! "`, string(days[1][0]["description"]))
	assert.Equal(t, `{"kind": ["park", "view"]}`, string(days[2][0]["tags"]))
}

func TestCluster_SafeForConcurrentUse(t *testing.T) {
	records := lisbonAndPorto()
	want, err := Cluster(records, 2)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]map[int][]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			days, err := Cluster(records, 2)
			if err == nil {
				results[i] = namesByDay(days)
			}
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, namesByDay(want), got)
	}
}

func TestCluster_OptionsChangeNothingForObviousGroups(t *testing.T) {
	days, err := Cluster(lisbonAndPorto(), 2, WithSeed(7), WithRuns(1), WithMaxIterations(5), WithTolerance(0))
	require.NoError(t, err)

	assert.Equal(t, []string{"Belem Tower", "Alfama", "Oceanario"}, namesByDay(days)[1])
}
