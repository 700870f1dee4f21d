package dataset

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/hehuanshu96/geoplot/quad"
)

// Point is one row of a loaded dataset: a lon/lat coordinate plus named
// numeric columns and free-form metadata.
type Point struct {
	ID       uint32
	X, Y     float64
	Metrics  map[string]float64
	Metadata map[string]interface{}
}

// Dataset holds the rows an aggregation runs over. Points are immutable once
// loaded.
type Dataset struct {
	ID      string
	Created time.Time
	Points  []Point
}

func New(id string, points []Point) *Dataset {
	return &Dataset{
		ID:      id,
		Created: time.Now(),
		Points:  points,
	}
}

// Column extracts one numeric column as engine points. Rows that do not carry
// the column are dropped, the way missing samples are dropped before an
// aggregation. Fails if no row carries the column at all.
func (d *Dataset) Column(name string) ([]quad.Point, error) {
	points := make([]quad.Point, 0, len(d.Points))
	for i, p := range d.Points {
		v, ok := p.Metrics[name]
		if !ok {
			continue
		}
		points = append(points, quad.Point{Row: i, X: p.X, Y: p.Y, Value: v})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("dataset %s has no column %q", d.ID, name)
	}
	return points, nil
}

// Columns lists the metric names present anywhere in the dataset.
func (d *Dataset) Columns() []string {
	seen := make(map[string]bool)
	for _, p := range d.Points {
		for k := range p.Metrics {
			seen[k] = true
		}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Bounds returns the dataset's bounding box.
func (d *Dataset) Bounds() quad.Bounds {
	b := quad.Bounds{
		MinX: 1e308, MinY: 1e308,
		MaxX: -1e308, MaxY: -1e308,
	}
	for _, p := range d.Points {
		b.Extend(p.X, p.Y)
	}
	return b
}

// GenerateTestPoints creates n random points within a bounding box, with a
// handful of synthetic metric columns. Used by the server and the profiler.
func GenerateTestPoints(n int, bounds quad.Bounds) []Point {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	points := make([]Point, n)

	for i := 0; i < n; i++ {
		x := bounds.MinX + r.Float64()*(bounds.MaxX-bounds.MinX)
		y := bounds.MinY + r.Float64()*(bounds.MaxY-bounds.MinY)

		points[i] = Point{
			ID: uint32(i + 1),
			X:  x,
			Y:  y,
			Metrics: map[string]float64{
				"value":     r.Float64() * 100,
				"sales":     r.Float64() * 1000,
				"customers": float64(r.Intn(100)),
			},
			Metadata: map[string]interface{}{
				"category": []string{"A", "B", "C"}[r.Intn(3)],
			},
		}
	}

	return points
}
