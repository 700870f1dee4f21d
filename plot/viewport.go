package plot

import (
	"github.com/dhconnelly/rtreego"

	"github.com/hehuanshu96/geoplot/quad"
)

// PatchIndex is an R-tree over a patch set, used by the server to answer
// viewport queries without rescanning every rectangle.
type PatchIndex struct {
	tree *rtreego.Rtree
}

type indexedPatch struct {
	patch Patch
	rect  rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (p *indexedPatch) Bounds() rtreego.Rect { return p.rect }

func NewPatchIndex(patches []Patch) *PatchIndex {
	tree := rtreego.NewTree(2, 25, 50)
	for _, p := range patches {
		tree.Insert(&indexedPatch{patch: p, rect: rectFor(p.Bounds)})
	}
	return &PatchIndex{tree: tree}
}

func rectFor(b quad.Bounds) rtreego.Rect {
	lengths := []float64{b.Width(), b.Height()}
	// R-tree rectangles need positive extent; degenerate boxes get a sliver.
	for i := range lengths {
		if lengths[i] <= 0 {
			lengths[i] = 1e-9
		}
	}
	rect, _ := rtreego.NewRect(rtreego.Point{b.MinX, b.MinY}, lengths)
	return rect
}

// Query returns the patches intersecting the given viewport.
func (pi *PatchIndex) Query(b quad.Bounds) []Patch {
	results := pi.tree.SearchIntersect(rectFor(b))
	patches := make([]Patch, len(results))
	for i, r := range results {
		patches[i] = r.(*indexedPatch).patch
	}
	return patches
}

// Len returns the number of indexed patches.
func (pi *PatchIndex) Len() int { return pi.tree.Size() }
