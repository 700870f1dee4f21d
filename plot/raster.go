package plot

import (
	"image"
	"image/color"
	"math"

	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"

	"github.com/hehuanshu96/geoplot/quad"
)

// RenderImage rasterizes the aggregation into a square image, optionally
// overlaying the raw observations as dots. The vertical axis is flipped so
// north stays up.
func RenderImage(patches []Patch, points []quad.Point, cm Colormap, size int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	gc := draw2dimg.NewGraphicContext(img)

	gc.SetFillColor(color.White)
	draw2dkit.Rectangle(gc, 0, 0, float64(size), float64(size))
	gc.Fill()

	if len(patches) == 0 {
		return img
	}

	root := boundsOf(patches)
	span := math.Max(root.Width(), root.Height())
	if span == 0 {
		return img
	}
	scale := float64(size) / span

	lo, hi := ValueRange(patches)
	for _, p := range patches {
		x1 := (p.Bounds.MinX - root.MinX) * scale
		y1 := (root.MaxY - p.Bounds.MaxY) * scale
		x2 := (p.Bounds.MaxX - root.MinX) * scale
		y2 := (root.MaxY - p.Bounds.MinY) * scale

		gc.SetFillColor(patchColor(p, cm, lo, hi))
		draw2dkit.Rectangle(gc, x1, y1, x2, y2)
		gc.Fill()
	}

	dot := float64(size) / 256
	gc.SetFillColor(color.NRGBA{30, 30, 30, 200})
	for _, pt := range points {
		cx := (pt.X - root.MinX) * scale
		cy := (root.MaxY - pt.Y) * scale
		draw2dkit.Circle(gc, cx, cy, dot)
		gc.Fill()
	}

	return img
}
