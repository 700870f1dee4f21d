package dataset

import (
	"fmt"
	"strconv"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/proj"
)

// longlatProj is the spatial reference the toolkit works in.
const longlatProj = "+proj=longlat"

// LoadShapefile reads records from a shapefile, reprojecting them to long/lat.
// The named attribute fields are parsed as numeric columns where possible and
// kept as metadata otherwise. Non-point shapes are reduced to centroids.
func LoadShapefile(id, path string, fields ...string) (*Dataset, error) {
	dec, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open shapefile: %v", err)
	}
	defer dec.Close()

	srcSR, err := dec.SR()
	if err != nil {
		return nil, fmt.Errorf("failed to read shapefile projection: %v", err)
	}
	dstSR, err := proj.Parse(longlatProj)
	if err != nil {
		return nil, fmt.Errorf("failed to parse target projection: %v", err)
	}
	trans, err := srcSR.NewTransform(dstSR)
	if err != nil {
		return nil, fmt.Errorf("failed to create projection transform: %v", err)
	}

	var points []Point
	for {
		g, attrs, more := dec.DecodeRowFields(fields...)
		if !more {
			break
		}

		gg, err := g.Transform(trans)
		if err != nil {
			return nil, fmt.Errorf("failed to reproject geometry: %v", err)
		}

		c := centroidOf(gg)
		p := Point{
			ID:       uint32(len(points) + 1),
			X:        c.X,
			Y:        c.Y,
			Metrics:  make(map[string]float64),
			Metadata: make(map[string]interface{}),
		}
		for k, v := range attrs {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				p.Metrics[k] = f
			} else {
				p.Metadata[k] = v
			}
		}
		points = append(points, p)
	}

	if err := dec.Error(); err != nil {
		return nil, fmt.Errorf("failed while reading shapefile: %v", err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("shapefile %s contains no usable records", path)
	}
	return New(id, points), nil
}

func centroidOf(g geom.Geom) geom.Point {
	switch gt := g.(type) {
	case geom.Point:
		return gt
	case geom.Polygonal:
		return gt.Centroid()
	default:
		b := g.Bounds()
		return geom.Point{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
	}
}
