package plot

import (
	"fmt"
	"image/color"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/hehuanshu96/geoplot/quad"
)

const legendHeight = 40

// RenderSVG draws the aggregation as a choropleth of rectangles plus a small
// legend. Insignificant patches are painted white, matching how sparse cells
// are blanked out of the plot.
func RenderSVG(w io.Writer, patches []Patch, cm Colormap, width int) {
	canvas := svg.New(w)

	if len(patches) == 0 {
		canvas.Start(width, width)
		canvas.End()
		return
	}

	root := boundsOf(patches)
	scale := 0.0
	height := width
	if root.Width() > 0 {
		scale = float64(width) / root.Width()
		if h := int(root.Height() * scale); h > 0 {
			height = h
		}
	}

	canvas.Start(width, height+legendHeight)

	lo, hi := ValueRange(patches)
	for _, p := range patches {
		x := int((p.Bounds.MinX - root.MinX) * scale)
		// SVG y grows downward; flip so north stays up.
		y := int((root.MaxY - p.Bounds.MaxY) * scale)
		pw := int(p.Bounds.Width() * scale)
		ph := int(p.Bounds.Height() * scale)
		if pw < 1 {
			pw = 1
		}
		if ph < 1 {
			ph = 1
		}

		canvas.Rect(x, y, pw, ph, fillStyle(patchColor(p, cm, lo, hi)))
	}

	drawLegend(canvas, cm, lo, hi, width, height)
	canvas.End()
}

func patchColor(p Patch, cm Colormap, lo, hi float64) color.NRGBA {
	if !p.Significant {
		return color.NRGBA{255, 255, 255, 255}
	}
	t := 0.0
	if hi > lo {
		t = (p.Value - lo) / (hi - lo)
	}
	return cm.At(t)
}

func fillStyle(c color.NRGBA) string {
	return fmt.Sprintf("fill:rgb(%d,%d,%d);stroke:white;stroke-width:0.5", c.R, c.G, c.B)
}

func drawLegend(canvas *svg.SVG, cm Colormap, lo, hi float64, width, top int) {
	const swatches = 6
	sw := width / (swatches * 2)
	y := top + 10

	for i := 0; i < swatches; i++ {
		c := cm.At(float64(i) / float64(swatches-1))
		canvas.Rect(10+i*sw, y, sw, 12, fillStyle(c))
	}
	canvas.Text(10, y+26, fmt.Sprintf("%.3g", lo), "font-size:10px;fill:black")
	canvas.Text(10+swatches*sw, y+26, fmt.Sprintf("%.3g", hi), "font-size:10px;fill:black")
}

// boundsOf is the union box of a patch set.
func boundsOf(patches []Patch) quad.Bounds {
	if len(patches) == 0 {
		return quad.Bounds{}
	}
	b := patches[0].Bounds
	for _, p := range patches[1:] {
		b.Extend(p.Bounds.MinX, p.Bounds.MinY)
		b.Extend(p.Bounds.MaxX, p.Bounds.MaxY)
	}
	return b
}
