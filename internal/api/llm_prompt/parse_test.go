package llmPrompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-day-planner/internal/types"
)

func TestParseSuggestions(t *testing.T) {
	reply := `Here are some ideas for you:

1. **Belém Tower** - Iconic historical tower.
* **Oceanário de Lisboa**: Explore marine life.
- **Jerónimos Monastery**
**LX Factory:**
- Time Out Market
Hi!
----------`

	got := ParseSuggestions(reply)

	assert.Equal(t, []types.Suggestion{
		{PlaceName: "Here are some ideas for you", DisplayText: "Here are some ideas for you:"},
		{PlaceName: "Belém Tower", DisplayText: "**Belém Tower**: Iconic historical tower."},
		{PlaceName: "Oceanário de Lisboa", DisplayText: "**Oceanário de Lisboa**: Explore marine life."},
		{PlaceName: "Jerónimos Monastery", DisplayText: "**Jerónimos Monastery**"},
		{PlaceName: "LX Factory", DisplayText: "**LX Factory:**"},
		{PlaceName: "Time Out Market", DisplayText: "Time Out Market"},
	}, got)
}

func TestParseSuggestions_Empty(t *testing.T) {
	assert.Empty(t, ParseSuggestions(""))
	assert.Empty(t, ParseSuggestions("\n\n  ok  \n***"))
}

func TestParseDurationDays(t *testing.T) {
	testCases := map[string]int{
		"5 days":               5,
		"about 2-3 days":       2,
		"a week":               DefaultDurationDays,
		"":                     DefaultDurationDays,
		"0 days":               1,
		"99999999999999999999": DefaultDurationDays,
	}
	for in, want := range testCases {
		assert.Equal(t, want, ParseDurationDays(in), "duration %q", in)
	}
}

func TestParsePlaceNames(t *testing.T) {
	t.Run("object in fences", func(t *testing.T) {
		got, err := ParsePlaceNames("Sure!\n```json\n{\"places\": [\"Colosseum, Rome\", \" Pantheon, Rome \", \"colosseum, rome\", \"\"]}\n```")
		require.NoError(t, err)
		assert.Equal(t, []string{"Colosseum, Rome", "Pantheon, Rome"}, got)
	})

	t.Run("bare array", func(t *testing.T) {
		got, err := ParsePlaceNames(`["Trevi Fountain"]`)
		require.NoError(t, err)
		assert.Equal(t, []string{"Trevi Fountain"}, got)
	})

	t.Run("nothing usable", func(t *testing.T) {
		_, err := ParsePlaceNames(`{"places": []}`)
		assert.ErrorIs(t, err, ErrNoPlaces)

		_, err = ParsePlaceNames("I cannot help with that.")
		assert.ErrorIs(t, err, ErrNoPlaces)
	})
}

func TestParseDetailedItinerary(t *testing.T) {
	t.Run("wrapped object with prose and fences", func(t *testing.T) {
		reply := "Here is your plan:\n```json\n" + `{
  "itinerary": [
    {"day": 2, "title": "Belém", "stops": [
      {"time": "10:00", "type": "museum", "name": "Jerónimos Monastery", "coordinates": [-9.2065, 38.6979], "description": "Manueline cloisters.", "zoom": 17, "pitch": 60, "bearing": 20}
    ]},
    {"day": 1, "title": "Alfama", "stops": [
      {"time": "09:00", "name": "Castelo de São Jorge", "coordinates": [-9.1334, 38.7139]}
    ]}
  ]
}` + "\n```\nEnjoy!"

		got, err := ParseDetailedItinerary(reply)
		require.NoError(t, err)
		require.Len(t, got, 2)

		assert.Equal(t, 1, got[0].Day)
		assert.Equal(t, types.Stop{
			Time:        "09:00",
			Type:        "sightseeing",
			Name:        "Castelo de São Jorge",
			Coordinates: [2]float64{-9.1334, 38.7139},
			Zoom:        16,
			Pitch:       50,
		}, got[0].Stops[0])

		assert.Equal(t, 2, got[1].Day)
		assert.Equal(t, "museum", got[1].Stops[0].Type)
		assert.Equal(t, 17.0, got[1].Stops[0].Zoom)
		assert.Equal(t, 20.0, got[1].Stops[0].Bearing)
		assert.Equal(t, 38.6979, got[1].Stops[0].Latitude())
	})

	t.Run("bare array with an empty day", func(t *testing.T) {
		got, err := ParseDetailedItinerary(`[{"day": 1, "stops": []}]`)
		require.NoError(t, err)
		assert.Equal(t, types.DetailedItinerary{{Day: 1, Stops: []types.Stop{}}}, got)
	})

	invalid := map[string]string{
		"not json":            "I could not build an itinerary.",
		"no days":             `{"itinerary": []}`,
		"day zero":            `[{"day": 0, "stops": []}]`,
		"duplicate day":       `[{"day": 1, "stops": []}, {"day": 1, "stops": []}]`,
		"missing stops":       `[{"day": 1}]`,
		"one coordinate":      `[{"day": 1, "stops": [{"name": "X", "coordinates": [1]}]}]`,
		"latitude too large":  `[{"day": 1, "stops": [{"name": "X", "coordinates": [10, 95]}]}]`,
		"longitude too small": `[{"day": 1, "stops": [{"name": "X", "coordinates": [-181, 10]}]}]`,
		"unnamed stop":        `[{"day": 1, "stops": [{"name": " ", "coordinates": [1, 1]}]}]`,
	}
	for name, reply := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDetailedItinerary(reply)
			assert.ErrorIs(t, err, ErrInvalidItinerary)
		})
	}
}

func TestCleanJSONResponse(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanJSONResponse("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `[1,2]`, cleanJSONResponse("result: [1,2] done"))
	assert.Equal(t, "no json here", cleanJSONResponse("  no json here "))
}
