package itinerary

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultSeed makes repeated calls with the same input produce the same days.
	DefaultSeed uint64 = 42
	// DefaultRuns is the number of independent seedings; the lowest inertia wins.
	DefaultRuns = 10
	// DefaultMaxIterations caps Lloyd iterations per run.
	DefaultMaxIterations = 300
	// DefaultTolerance is the total squared centroid shift treated as converged.
	DefaultTolerance = 1e-4
)

// Params holds the k-means tuning knobs.
type Params struct {
	Seed          uint64
	Runs          int
	MaxIterations int
	Tolerance     float64
}

// DefaultParams returns the production clustering parameters.
func DefaultParams() Params {
	return Params{
		Seed:          DefaultSeed,
		Runs:          DefaultRuns,
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
	}
}

// Option adjusts the parameters used by Cluster.
type Option func(*Params)

// WithSeed sets the seed of the k-means++ initialisation.
func WithSeed(seed uint64) Option {
	return func(p *Params) { p.Seed = seed }
}

// WithRuns sets how many seeded restarts are tried; the lowest inertia wins.
func WithRuns(runs int) Option {
	return func(p *Params) { p.Runs = runs }
}

// WithMaxIterations caps the Lloyd iterations of a single run.
func WithMaxIterations(n int) Option {
	return func(p *Params) { p.MaxIterations = n }
}

// WithTolerance sets the total squared centroid shift below which a run stops.
func WithTolerance(tol float64) Option {
	return func(p *Params) { p.Tolerance = tol }
}

// WithParams replaces all parameters at once, e.g. from configuration.
func WithParams(params Params) Option {
	return func(p *Params) { *p = params }
}

// DayClusterer partitions standardized points with k-means.
type DayClusterer struct {
	params Params
}

// NewDayClusterer returns a clusterer. Non-positive runs, iterations or a
// negative tolerance fall back to the defaults.
func NewDayClusterer(params Params) *DayClusterer {
	if params.Runs <= 0 {
		params.Runs = DefaultRuns
	}
	if params.MaxIterations <= 0 {
		params.MaxIterations = DefaultMaxIterations
	}
	if params.Tolerance < 0 || math.IsNaN(params.Tolerance) {
		params.Tolerance = DefaultTolerance
	}
	return &DayClusterer{params: params}
}

// Params returns the effective parameters.
func (c *DayClusterer) Params() Params {
	return c.params
}

// Partition groups points into k clusters and returns one label per point.
// k must be between 1 and len(points). Labels are numbered by first
// appearance, so points[0] is always in cluster 0 and clusters left empty
// take the highest labels.
func (c *DayClusterer) Partition(points [][]float64, k int) []int {
	n := len(points)
	if n == 0 {
		return nil
	}
	if k <= 1 {
		return make([]int, n)
	}

	rng := rand.New(rand.NewPCG(c.params.Seed, c.params.Seed))

	var best []int
	bestInertia := math.Inf(1)
	for run := 0; run < c.params.Runs; run++ {
		labels, inertia := c.lloyd(points, seedCentroids(points, k, rng))
		if inertia < bestInertia {
			best, bestInertia = labels, inertia
		}
	}
	return relabelByFirstAppearance(best, k)
}

// seedCentroids picks k starting centroids with k-means++ weighting.
func seedCentroids(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(points)
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clonePoint(points[rng.IntN(n)]))

	dist := make([]float64, n)
	for i, p := range points {
		dist[i] = sqDistance(p, centroids[0])
	}

	for len(centroids) < k {
		total := floats.Sum(dist)
		next := -1
		if total > 0 {
			target := rng.Float64() * total
			cumulative := 0.0
			for i, d := range dist {
				if d == 0 {
					continue
				}
				cumulative += d
				next = i
				if cumulative >= target {
					break
				}
			}
		}
		if next < 0 {
			// every remaining point sits on a centroid already
			next = rng.IntN(n)
		}

		centroid := clonePoint(points[next])
		centroids = append(centroids, centroid)
		for i, p := range points {
			if d := sqDistance(p, centroid); d < dist[i] {
				dist[i] = d
			}
		}
	}
	return centroids
}

// lloyd refines centroids in place and returns the final labels and inertia.
func (c *DayClusterer) lloyd(points, centroids [][]float64) ([]int, float64) {
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = -1
	}

	for iter := 0; iter < c.params.MaxIterations; iter++ {
		if !assignNearest(points, centroids, labels) {
			break
		}
		if shift := updateCentroids(points, labels, centroids); shift <= c.params.Tolerance {
			break
		}
	}
	assignNearest(points, centroids, labels)

	inertia := 0.0
	for i, p := range points {
		inertia += sqDistance(p, centroids[labels[i]])
	}
	return labels, inertia
}

// assignNearest labels each point with its closest centroid, ties going to
// the lower index. It reports whether any label changed.
func assignNearest(points, centroids [][]float64, labels []int) bool {
	changed := false
	for i, p := range points {
		nearest := 0
		nearestDist := sqDistance(p, centroids[0])
		for j := 1; j < len(centroids); j++ {
			if d := sqDistance(p, centroids[j]); d < nearestDist {
				nearest, nearestDist = j, d
			}
		}
		if labels[i] != nearest {
			labels[i] = nearest
			changed = true
		}
	}
	return changed
}

// updateCentroids moves each centroid to the mean of its points and returns
// the total squared movement. A centroid with no points stays where it is.
func updateCentroids(points [][]float64, labels []int, centroids [][]float64) float64 {
	dim := len(centroids[0])
	sums := make([][]float64, len(centroids))
	counts := make([]int, len(centroids))
	for j := range sums {
		sums[j] = make([]float64, dim)
	}
	for i, p := range points {
		floats.Add(sums[labels[i]], p)
		counts[labels[i]]++
	}

	shift := 0.0
	for j := range centroids {
		if counts[j] == 0 {
			continue
		}
		floats.Scale(1/float64(counts[j]), sums[j])
		shift += sqDistance(centroids[j], sums[j])
		copy(centroids[j], sums[j])
	}
	return shift
}

func relabelByFirstAppearance(labels []int, k int) []int {
	mapping := make([]int, k)
	for j := range mapping {
		mapping[j] = -1
	}
	next := 0
	out := make([]int, len(labels))
	for i, l := range labels {
		if mapping[l] < 0 {
			mapping[l] = next
			next++
		}
		out[i] = mapping[l]
	}
	return out
}

func sqDistance(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func clonePoint(p []float64) []float64 {
	return append([]float64(nil), p...)
}
