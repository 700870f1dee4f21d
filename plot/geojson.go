package plot

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ToGeoJSON exports patches as polygon features for map clients. Insignificant
// patches carry no value property, just their count and flag.
func ToGeoJSON(patches []Patch) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range patches {
		b := p.Bounds
		ring := orb.Ring{
			{b.MinX, b.MinY},
			{b.MaxX, b.MinY},
			{b.MaxX, b.MaxY},
			{b.MinX, b.MaxY},
			{b.MinX, b.MinY},
		}

		f := geojson.NewFeature(orb.Polygon{ring})
		f.Properties["n"] = p.N
		f.Properties["significant"] = p.Significant
		if p.Significant {
			f.Properties["value"] = p.Value
		}
		fc.Append(f)
	}
	return fc
}
