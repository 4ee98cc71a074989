package llmPrompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-trip-day-planner/internal/types"
)

const (
	notSpecified  = "Not specified"
	noneSpecified = "None specified"
)

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// BrainstormSystemPrompt is the system instruction for the suggestion chat.
func BrainstormSystemPrompt(tc types.TripContext) string {
	prefs := strings.Join(tc.Preferences, ", ")
	return fmt.Sprintf(`You are a helpful travel brainstorming assistant. Your goal is to suggest individual activities, sights, or places based on the user's request and the trip context.

**Trip Context:**
*   **Destination:** %s
*   **Duration:** %s
*   **Preferences:** %s
*   **Budget:** %s

**Your Task:**
1.  Analyze the user's latest request in the context of the ongoing conversation and the trip details above.
2.  Suggest a list of **specific, individual activities or places** relevant to their request.
3.  **IMPORTANT FORMATTING:** For each suggestion, put the main **Place Name in bold** using markdown (**Place Name**). You can optionally add a short description after the bolded name, separated by a colon or hyphen. Example: `+"`**Oceanário de Lisboa**: Explore marine life.`"+`
4.  **DO NOT** create a daily schedule or itinerary at this stage. Just list potential options.
5.  **DO NOT** format in a table, just list out things in sentences.
6.  **DO NOT** include meta-commentary or think out loud.
7.  Provide around 3-7 suggestions per response unless the user asks for more/less.

Start suggesting based on the user's next message. Adhere strictly to the requested format.`,
		orDefault(tc.Destination, notSpecified),
		orDefault(tc.Duration, notSpecified),
		orDefault(prefs, noneSpecified),
		orDefault(tc.Budget, notSpecified),
	)
}

// QuickPlacesPrompt asks for a flat list of geocodable place names.
func QuickPlacesPrompt(destination, duration, vibe string) string {
	return fmt.Sprintf(`
        Suggest between 8 and 15 specific places to visit in %s for a trip of %s.
        The traveller describes the trip like this: %s
        Only include real places that exist on a map (sights, museums, parks, markets, restaurants, viewpoints).
        Write each name so that it can be found by a geocoder, adding the city when the name is ambiguous.
        Return the response STRICTLY as a JSON object with:
        {
        "places": ["Place Name, City", "Another Place, City"]
        }`, destination, orDefault(duration, "3 days"), orDefault(vibe, noneSpecified))
}

type promptActivity struct {
	Name      string  `json:"place_name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DetailedItineraryPrompt asks for a day by day schedule over the located activities.
func DetailedItineraryPrompt(tc types.TripContext, activities []types.Activity, numDays int) string {
	located := make([]promptActivity, 0, len(activities))
	for _, a := range activities {
		if !a.Located() {
			continue
		}
		located = append(located, promptActivity{Name: a.PlaceName, Latitude: *a.Latitude, Longitude: *a.Longitude})
	}
	activitiesJSON, _ := json.MarshalIndent(located, "        ", "  ")

	return fmt.Sprintf(`
        Create a %d-day itinerary for a trip to %s.
        Traveller preferences: %s. Budget: %s.
        Use these places, each with its coordinates:
        %s
        Group nearby places on the same day and order each day so it flows naturally.
        You may add meal breaks or short transfers as extra stops when useful.
        Every stop must keep the coordinates of the place it refers to, written as [longitude, latitude].
        Return the response STRICTLY as a JSON object with:
        {
        "itinerary": [
            {
            "day": 1,
            "title": "A short title for the day",
            "stops": [
                {
                "time": "09:00",
                "type": "sightseeing | museum | park | lunch | dinner | break | viewpoint | shopping | activity",
                "name": "Place name exactly as given",
                "coordinates": [<longitude float>, <latitude float>],
                "description": "One or two sentences about the visit.",
                "zoom": 16,
                "pitch": 50,
                "bearing": 0
                }
            ]
            }
        ]
        }`,
		numDays,
		orDefault(tc.Destination, notSpecified),
		orDefault(strings.Join(tc.Preferences, ", "), noneSpecified),
		orDefault(tc.Budget, notSpecified),
		activitiesJSON,
	)
}

// ModifyItineraryPrompt asks for the whole itinerary back with the instruction applied.
func ModifyItineraryPrompt(tc types.TripContext, current types.DetailedItinerary, instruction string) string {
	currentJSON, _ := json.MarshalIndent(map[string]any{"itinerary": current}, "        ", "  ")
	return fmt.Sprintf(`
        This is the current itinerary for a trip to %s:
        %s
        Apply the following change requested by the traveller: %s
        Keep every day and stop that the change does not affect exactly as it is.
        Coordinates stay [longitude, latitude].
        Return the complete updated itinerary STRICTLY as a JSON object with the same shape:
        {
        "itinerary": [ { "day": 1, "title": "...", "stops": [ ... ] } ]
        }`, orDefault(tc.Destination, notSpecified), currentJSON, instruction)
}
