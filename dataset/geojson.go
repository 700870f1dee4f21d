package dataset

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// FromGeoJSON loads a dataset from a GeoJSON feature collection. Numeric
// properties become metric columns and everything else is kept as metadata.
// Non-point geometries are reduced to their centroids.
func FromGeoJSON(id string, data []byte) (*Dataset, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GeoJSON: %v", err)
	}

	points := make([]Point, 0, len(fc.Features))
	for _, f := range fc.Features {
		var pt orb.Point
		switch g := f.Geometry.(type) {
		case orb.Point:
			pt = g
		case nil:
			continue
		default:
			pt, _ = planar.CentroidArea(g)
		}

		p := Point{
			ID:       uint32(len(points) + 1),
			X:        pt.X(),
			Y:        pt.Y(),
			Metrics:  make(map[string]float64),
			Metadata: make(map[string]interface{}),
		}
		for k, v := range f.Properties {
			switch n := v.(type) {
			case float64:
				p.Metrics[k] = n
			case int:
				p.Metrics[k] = float64(n)
			default:
				p.Metadata[k] = v
			}
		}
		points = append(points, p)
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("GeoJSON contains no usable features")
	}
	return New(id, points), nil
}

// ToGeoJSON exports the dataset rows as a point feature collection.
func (d *Dataset) ToGeoJSON() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range d.Points {
		f := geojson.NewFeature(orb.Point{p.X, p.Y})
		f.Properties["id"] = p.ID
		for k, v := range p.Metrics {
			f.Properties[k] = v
		}
		for k, v := range p.Metadata {
			f.Properties[k] = v
		}
		fc.Append(f)
	}
	return fc
}
