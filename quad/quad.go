package quad

import "math"

// Point is one observation handed to the engine: a 2D coordinate, the sample
// of the value column being aggregated, and the index of the source row so
// callers can get back to the full record.
type Point struct {
	Row   int
	X, Y  float64
	Value float64
}

// Bounds is an axis-aligned rectangle. Zero-width or zero-height boxes are
// legal and represent a single line or point.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Extend expands bounds to include another point
func (b *Bounds) Extend(x, y float64) {
	b.MinX = math.Min(b.MinX, x)
	b.MinY = math.Min(b.MinY, y)
	b.MaxX = math.Max(b.MaxX, x)
	b.MaxY = math.Max(b.MaxY, y)
}

func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Midpoint returns the arithmetic center of the box on both axes.
func (b Bounds) Midpoint() (float64, float64) {
	return (b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2
}

func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

type coord struct {
	x, y float64
}

// Index is the precomputed view over an input point set: the global bounding
// box plus the grouping of points by exact coincident coordinate. It is never
// mutated after construction.
type Index struct {
	Points []Point
	Bounds Bounds

	groups map[coord]int // exact coordinate -> number of observations there
}

// NewIndex builds the spatial index for a point set. The input must be
// non-empty; an empty set has no bounding box to aggregate over.
func NewIndex(points []Point) (*Index, error) {
	if len(points) == 0 {
		return nil, configErrorf("cannot build a spatial index over an empty dataset")
	}

	ix := &Index{
		Points: points,
		Bounds: Bounds{
			MinX: math.Inf(1),
			MinY: math.Inf(1),
			MaxX: math.Inf(-1),
			MaxY: math.Inf(-1),
		},
		groups: make(map[coord]int),
	}

	for _, p := range points {
		ix.Bounds.Extend(p.X, p.Y)
		ix.groups[coord{p.X, p.Y}]++
	}

	return ix, nil
}

// MaxCoincidence returns the size of the largest group of points sharing one
// exact coordinate. No spatial split can ever separate such a group, so this
// bounds the smallest achievable cell size.
func (ix *Index) MaxCoincidence() int {
	max := 0
	for _, n := range ix.groups {
		if n > max {
			max = n
		}
	}
	return max
}
