package plot

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hehuanshu96/geoplot/quad"
)

func renderPatches() []Patch {
	return []Patch{
		{Bounds: quad.Bounds{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}, N: 20, Value: 1, Significant: true},
		{Bounds: quad.Bounds{MinX: 10, MinY: 0, MaxX: 20, MaxY: 10}, N: 30, Value: 5, Significant: true},
		{Bounds: quad.Bounds{MinX: 0, MinY: 10, MaxX: 20, MaxY: 20}, N: 2},
	}
}

func TestColormapAt(t *testing.T) {
	if c := Viridis.At(0); c != Viridis.Stops[0] {
		t.Errorf("Expected the first stop at t=0, got %+v", c)
	}
	if c := Viridis.At(1); c != Viridis.Stops[len(Viridis.Stops)-1] {
		t.Errorf("Expected the last stop at t=1, got %+v", c)
	}
	if c := Viridis.At(-5); c != Viridis.Stops[0] {
		t.Errorf("Expected clamping below zero, got %+v", c)
	}

	mid := Blues.At(0.5)
	if mid == Blues.Stops[0] || mid == Blues.Stops[len(Blues.Stops)-1] {
		t.Errorf("Expected an interpolated color at t=0.5, got %+v", mid)
	}
}

func TestColormapByName(t *testing.T) {
	if cm, ok := ColormapByName(""); !ok || cm.Name != "viridis" {
		t.Errorf("Expected empty name to resolve to viridis, got %q", cm.Name)
	}
	if _, ok := ColormapByName("plasma"); ok {
		t.Error("Expected unknown colormap name to fail")
	}
}

func TestRenderSVG(t *testing.T) {
	var buf bytes.Buffer
	RenderSVG(&buf, renderPatches(), Viridis, 400)

	out := buf.String()
	if !strings.Contains(out, "<svg") {
		t.Fatal("Expected SVG output")
	}
	// Three patch rectangles plus six legend swatches.
	if n := strings.Count(out, "<rect"); n != 9 {
		t.Errorf("Expected 9 rectangles, got %d", n)
	}
	// The insignificant patch is blanked to white.
	if !strings.Contains(out, "fill:rgb(255,255,255)") {
		t.Error("Expected an insignificant patch painted white")
	}
}

func TestRenderSVGEmpty(t *testing.T) {
	var buf bytes.Buffer
	RenderSVG(&buf, nil, Viridis, 400)
	if !strings.Contains(buf.String(), "<svg") {
		t.Error("Expected a valid empty document")
	}
}

func TestRenderImage(t *testing.T) {
	points := []quad.Point{{X: 5, Y: 5}, {X: 15, Y: 5}}
	img := RenderImage(renderPatches(), points, Viridis, 256)

	b := img.Bounds()
	if b.Dx() != 256 || b.Dy() != 256 {
		t.Errorf("Expected a 256x256 image, got %dx%d", b.Dx(), b.Dy())
	}

	// The top-left corner maps to an insignificant patch, so it stays white.
	r, g, bl, _ := img.At(10, 10).RGBA()
	if r>>8 != 255 || g>>8 != 255 || bl>>8 != 255 {
		t.Errorf("Expected white at (10,10), got rgb(%d,%d,%d)", r>>8, g>>8, bl>>8)
	}
}

func TestPatchToGeoJSON(t *testing.T) {
	fc := ToGeoJSON(renderPatches())
	if len(fc.Features) != 3 {
		t.Fatalf("Expected 3 features, got %d", len(fc.Features))
	}

	data, err := json.Marshal(fc)
	if err != nil {
		t.Fatalf("Failed to marshal feature collection: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"FeatureCollection"`) || !strings.Contains(out, `"Polygon"`) {
		t.Error("Expected polygon features in the collection")
	}

	// Insignificant patches must not carry a value property.
	for _, f := range fc.Features {
		sig, _ := f.Properties["significant"].(bool)
		_, hasValue := f.Properties["value"]
		if sig != hasValue {
			t.Errorf("Expected value property only on significant patches: significant=%v hasValue=%v", sig, hasValue)
		}
	}
}
