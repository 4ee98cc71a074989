// Package itinerary groups geotagged activities into day-by-day plans.
package itinerary

// Cluster partitions records into at most numDays geographically coherent
// days. Records without usable coordinates are left out. When fewer valid
// records than days remain, the day count shrinks to the record count.
//
// The result always holds every day 1..k, some possibly empty, and lists
// records in their input order. Identical input yields identical output.
// Input-level failures return an error wrapping ErrNoItinerary and a nil map.
func Cluster[V any](records []Record[V], numDays int, opts ...Option) (DayAssignment[V], error) {
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}
	if numDays <= 0 {
		return nil, ErrInvalidDayCount
	}

	// valid[i] is the input index of the i-th usable record.
	valid := make([]int, 0, len(records))
	lats := make([]float64, 0, len(records))
	lons := make([]float64, 0, len(records))
	for i, rec := range records {
		lat, lon, ok := rec.Coordinates()
		if !ok {
			continue
		}
		valid = append(valid, i)
		lats = append(lats, lat)
		lons = append(lons, lon)
	}
	if len(valid) == 0 {
		return nil, ErrNoValidCoordinates
	}

	k := min(numDays, len(valid))

	params := DefaultParams()
	for _, opt := range opts {
		opt(&params)
	}
	labels := NewDayClusterer(params).Partition(standardize(lats, lons), k)

	days := make(DayAssignment[V], k)
	for day := 1; day <= k; day++ {
		days[day] = []Record[V]{}
	}
	for i, idx := range valid {
		day := labels[i] + 1
		days[day] = append(days[day], records[idx])
	}
	return days, nil
}
