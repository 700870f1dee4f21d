package plot

import (
	"testing"

	"github.com/hehuanshu96/geoplot/quad"
)

func TestPatchIndexQuery(t *testing.T) {
	patches := []Patch{
		{Bounds: quad.Bounds{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}, N: 5},
		{Bounds: quad.Bounds{MinX: 20, MinY: 20, MaxX: 30, MaxY: 30}, N: 7},
		{Bounds: quad.Bounds{MinX: 100, MinY: 100, MaxX: 110, MaxY: 110}, N: 9},
	}

	idx := NewPatchIndex(patches)
	if idx.Len() != 3 {
		t.Fatalf("Expected 3 indexed patches, got %d", idx.Len())
	}

	hits := idx.Query(quad.Bounds{MinX: 5, MinY: 5, MaxX: 25, MaxY: 25})
	if len(hits) != 2 {
		t.Fatalf("Expected 2 patches in viewport, got %d", len(hits))
	}
	for _, p := range hits {
		if p.N != 5 && p.N != 7 {
			t.Errorf("Unexpected patch in viewport: %+v", p)
		}
	}

	hits = idx.Query(quad.Bounds{MinX: 500, MinY: 500, MaxX: 600, MaxY: 600})
	if len(hits) != 0 {
		t.Errorf("Expected empty viewport, got %d patches", len(hits))
	}
}

func TestPatchIndexDegenerateBox(t *testing.T) {
	// A single-coordinate patch still needs to be findable.
	patches := []Patch{
		{Bounds: quad.Bounds{MinX: 5, MinY: 5, MaxX: 5, MaxY: 5}, N: 3},
	}

	idx := NewPatchIndex(patches)
	hits := idx.Query(quad.Bounds{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10})
	if len(hits) != 1 {
		t.Errorf("Expected the degenerate patch to be found, got %d hits", len(hits))
	}
}
