package itinerary

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDayClusterer_FallsBackToDefaults(t *testing.T) {
	c := NewDayClusterer(Params{Seed: 3, Runs: 0, MaxIterations: -1, Tolerance: -2})

	assert.Equal(t, Params{
		Seed:          3,
		Runs:          DefaultRuns,
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
	}, c.Params())
}

func TestPartition_SingleClusterAndEmptyInput(t *testing.T) {
	c := NewDayClusterer(DefaultParams())

	assert.Nil(t, c.Partition(nil, 3))
	assert.Equal(t, []int{0, 0, 0}, c.Partition([][]float64{{0, 0}, {1, 1}, {5, 5}}, 1))
}

func TestPartition_SeparatesGroupsAndNumbersByFirstAppearance(t *testing.T) {
	points := [][]float64{
		{10, 10}, {-10, -10}, {10.1, 9.9}, {0, 20}, {-9.8, -10.2}, {0.2, 19.9},
	}

	labels := NewDayClusterer(DefaultParams()).Partition(points, 3)

	assert.Equal(t, []int{0, 1, 0, 2, 1, 2}, labels)
}

func TestPartition_EveryPointItsOwnCluster(t *testing.T) {
	points := [][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}}

	labels := NewDayClusterer(DefaultParams()).Partition(points, 4)

	assert.ElementsMatch(t, []int{0, 1, 2, 3}, labels)
	assert.Equal(t, 0, labels[0])
}

func TestRelabelByFirstAppearance(t *testing.T) {
	assert.Equal(t, []int{0, 0, 1, 2, 1}, relabelByFirstAppearance([]int{2, 2, 0, 1, 0}, 3))
	assert.Equal(t, []int{0, 0}, relabelByFirstAppearance([]int{1, 1}, 3))
}

func TestStandardize(t *testing.T) {
	t.Run("unit variance per axis", func(t *testing.T) {
		points := standardize([]float64{1, 2, 3}, []float64{10, 20, 30})
		require.Len(t, points, 3)

		assert.InDelta(t, -1.224744871, points[0][0], 1e-9)
		assert.InDelta(t, 0, points[1][0], 1e-9)
		assert.InDelta(t, 1.224744871, points[2][0], 1e-9)
		assert.InDelta(t, points[0][0], points[0][1], 1e-9)
	})

	t.Run("axis without spread stays at zero", func(t *testing.T) {
		points := standardize([]float64{0.1, 0.1, 0.1}, []float64{-3, 0, 3})

		for _, p := range points {
			assert.Equal(t, 0.0, p[0])
		}
		assert.InDelta(t, -1.224744871, points[0][1], 1e-9)
	})
}

func TestRecordCoordinates(t *testing.T) {
	testCases := []struct {
		name   string
		lat    any
		lon    any
		wantOK bool
	}{
		{"floats", 38.7, -9.1, true},
		{"ints", 38, -9, true},
		{"float32", float32(10.5), float32(-1.25), true},
		{"numeric strings", " 38.7 ", "-9.1", true},
		{"json numbers", json.Number("38.7"), json.Number("-9.1"), true},
		{"raw json", json.RawMessage(`38.7`), json.RawMessage(`"-9.1"`), true},
		{"pointer", ptr(1.5), ptr(2.5), true},
		{"nil pointer", (*float64)(nil), 2.5, false},
		{"bounds inclusive", 90, -180, true},
		{"lat too large", 90.0001, 0, false},
		{"lon too small", 0, -180.0001, false},
		{"garbage string", "north", 0, false},
		{"empty string", "", 0, false},
		{"raw null", json.RawMessage(`null`), json.RawMessage(`1`), false},
		{"infinity string", "Inf", 0, false},
		{"slice", []float64{1}, 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, ok := Record[any]{"latitude": tc.lat, "longitude": tc.lon}.Coordinates()
			assert.Equal(t, tc.wantOK, ok)
		})
	}
}

func ptr(f float64) *float64 { return &f }
