package plot

import (
	"sort"

	"github.com/golang/geo/s2"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/hehuanshu96/geoplot/quad"
)

// Reducer folds a cell's value-column samples into one summary statistic.
// Reducers are only applied to cells above the significance threshold, so the
// input slice is never empty.
type Reducer func(values []float64) float64

func Mean(values []float64) float64 { return stat.Mean(values, nil) }

func Median(values []float64) float64 {
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	return stat.Quantile(0.5, stat.Empirical, s, nil)
}

func Sum(values []float64) float64    { return floats.Sum(values) }
func Max(values []float64) float64    { return floats.Max(values) }
func Min(values []float64) float64    { return floats.Min(values) }
func Count(values []float64) float64  { return float64(len(values)) }
func StdDev(values []float64) float64 { return stat.StdDev(values, nil) }

// ReducerByName resolves the statistic names accepted by the HTTP API.
func ReducerByName(name string) (Reducer, bool) {
	switch name {
	case "", "mean":
		return Mean, true
	case "median":
		return Median, true
	case "sum":
		return Sum, true
	case "max":
		return Max, true
	case "min":
		return Min, true
	case "count":
		return Count, true
	case "stddev":
		return StdDev, true
	}
	return nil, false
}

// Options controls one aggregation run. Zero values pick the defaults:
// nmax = the observation count, nmin = min(20, 5% of the count), nsig = 0,
// reducer = Mean.
type Options struct {
	NMin    int
	NMax    int
	NSig    int
	Reducer Reducer
}

// Patch is one output rectangle: a leaf of the partition plus its summary
// statistic. A patch with at most nsig observations carries no statistic and
// is flagged insignificant so renderers can blank it out.
type Patch struct {
	Bounds      quad.Bounds
	N           int
	Value       float64
	Significant bool
}

// Aggregate partitions the observations into rectangles and reduces each
// leaf's value column to one summary statistic.
func Aggregate(points []quad.Point, opts Options) ([]Patch, error) {
	ix, err := quad.NewIndex(points)
	if err != nil {
		return nil, err
	}

	nmax := opts.NMax
	if nmax <= 0 {
		nmax = len(points)
	}
	nmin := opts.NMin
	if nmin <= 0 {
		nmin = len(points) / 20
		if nmin > 20 {
			nmin = 20
		}
		if nmin < 1 {
			nmin = 1
		}
	}
	reduce := opts.Reducer
	if reduce == nil {
		reduce = Mean
	}

	cells, err := ix.Partition(nmin, nmax)
	if err != nil {
		return nil, err
	}

	patches := make([]Patch, len(cells))
	for i, c := range cells {
		p := Patch{Bounds: c.Bounds, N: c.N()}
		if p.N > opts.NSig {
			p.Value = reduce(c.Values())
			p.Significant = true
		}
		patches[i] = p
	}
	return patches, nil
}

// ValueRange returns the min and max statistic across significant patches,
// for binding values onto a colormap.
func ValueRange(patches []Patch) (lo, hi float64) {
	var values []float64
	for _, p := range patches {
		if p.Significant {
			values = append(values, p.Value)
		}
	}
	if len(values) == 0 {
		return 0, 0
	}
	return floats.Min(values), floats.Max(values)
}

const earthRadiusKm = 6371.01

// AreaKM2 returns the geodesic area of a long/lat box in square kilometers.
func AreaKM2(b quad.Bounds) float64 {
	rect := s2.RectFromLatLng(s2.LatLngFromDegrees(b.MinY, b.MinX))
	rect = rect.AddPoint(s2.LatLngFromDegrees(b.MaxY, b.MaxX))
	return rect.Area() * earthRadiusKm * earthRadiusKm
}

// DensityPerKM2 is the observation density of a long/lat box.
func DensityPerKM2(n int, b quad.Bounds) float64 {
	a := AreaKM2(b)
	if a == 0 {
		return 0
	}
	return float64(n) / a
}
