package itinerary

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// spreadEpsilon is the smallest standard deviation treated as real spread.
// Summing identical values can leave a few ulps of noise in the mean.
const spreadEpsilon = 1e-12

// standardize centers latitude and longitude on their means and scales each
// axis to unit population variance. An axis without spread stays at zero.
func standardize(lats, lons []float64) [][]float64 {
	latMean, latStd := stat.PopMeanStdDev(lats, nil)
	lonMean, lonStd := stat.PopMeanStdDev(lons, nil)

	points := make([][]float64, len(lats))
	for i := range lats {
		points[i] = []float64{
			scaleAxis(lats[i], latMean, latStd),
			scaleAxis(lons[i], lonMean, lonStd),
		}
	}
	return points
}

func scaleAxis(v, mean, std float64) float64 {
	if std <= spreadEpsilon*math.Max(1, math.Abs(mean)) {
		return 0
	}
	return (v - mean) / std
}
