package quad

// Cell is one node of the partition tree: a rectangle plus the observations
// that fall inside it. Only leaves are reported to the caller; internal nodes
// exist just for the duration of the recursion.
type Cell struct {
	Bounds Bounds
	Points []Point
}

// N returns the number of observations in the cell.
func (c Cell) N() int { return len(c.Points) }

// Values returns the value-column samples of the contained observations.
func (c Cell) Values() []float64 {
	vs := make([]float64, len(c.Points))
	for i, p := range c.Points {
		vs[i] = p.Value
	}
	return vs
}

// Partition recursively quarters the index bounds until every leaf holds at
// most nmax observations, preferring leaves of at least nmin. The returned
// leaves tile the root bounding box exactly: empty quadrants are reported as
// empty leaves rather than dropped, so there are no gaps in the coverage.
// Leaf order carries no meaning.
//
// nmax is a hard ceiling and takes priority over nmin: a cell over the
// ceiling always splits, even when that leaves a child below the floor.
// A cell between the two thresholds splits only if none of the resulting
// non-empty children would fall under nmin.
//
// Point assignment at a split midpoint is half-open: x < mid goes west,
// x >= mid goes east, and likewise for y, so every observation lands in
// exactly one child.
func (ix *Index) Partition(nmin, nmax int) ([]Cell, error) {
	if nmin <= 0 {
		return nil, configErrorf("nmin must be positive, got %d", nmin)
	}
	if nmax < nmin {
		return nil, configErrorf("nmax (%d) must be at least nmin (%d)", nmax, nmin)
	}

	// A coincident cluster larger than nmin could never be divided down to
	// the floor: the recursion would split forever chasing it. Reject before
	// the first split rather than hitting a depth limit later.
	if coloc := ix.MaxCoincidence(); coloc > nmin {
		return nil, configErrorf(
			"nmin is set to %d, but there is a coordinate containing %d observations in the dataset",
			nmin, coloc)
	}

	var leaves []Cell
	split(Cell{Bounds: ix.Bounds, Points: ix.Points}, nmin, nmax, &leaves)
	return leaves, nil
}

func split(c Cell, nmin, nmax int, out *[]Cell) {
	n := len(c.Points)
	switch {
	case n > nmax:
		// Over the ceiling: must split, whatever it does to the children.
		children, ok := quarter(c)
		if !ok {
			// Box cannot shrink on either axis; forced leaf.
			*out = append(*out, c)
			return
		}
		for _, ch := range children {
			split(ch, nmin, nmax, out)
		}
	case n <= nmin:
		*out = append(*out, c)
	default:
		// Between the thresholds the cell is already legal; refine only if
		// no non-empty child would end up under the floor.
		children, ok := quarter(c)
		if !ok || undercuts(children, nmin) {
			*out = append(*out, c)
			return
		}
		for _, ch := range children {
			split(ch, nmin, nmax, out)
		}
	}
}

// undercuts reports whether a tentative split would strand observations in a
// child below the floor.
func undercuts(children []Cell, nmin int) bool {
	for _, ch := range children {
		if n := len(ch.Points); n > 0 && n < nmin {
			return true
		}
	}
	return false
}

// quarter bisects a cell at the arithmetic midpoint of both axes. An axis is
// splittable only when the midpoint falls strictly inside the interval; a
// degenerate axis (zero extent, or so narrow the midpoint rounds onto an
// endpoint) is left whole, halving the cell instead of quartering it. When
// both axes are degenerate the cell cannot be subdivided and ok is false.
func quarter(c Cell) (children []Cell, ok bool) {
	b := c.Bounds
	midX, midY := b.Midpoint()
	splitX := midX > b.MinX && midX < b.MaxX
	splitY := midY > b.MinY && midY < b.MaxY

	switch {
	case splitX && splitY:
		children = []Cell{
			{Bounds: Bounds{b.MinX, b.MinY, midX, midY}}, // SW
			{Bounds: Bounds{midX, b.MinY, b.MaxX, midY}}, // SE
			{Bounds: Bounds{b.MinX, midY, midX, b.MaxY}}, // NW
			{Bounds: Bounds{midX, midY, b.MaxX, b.MaxY}}, // NE
		}
	case splitX:
		children = []Cell{
			{Bounds: Bounds{b.MinX, b.MinY, midX, b.MaxY}},
			{Bounds: Bounds{midX, b.MinY, b.MaxX, b.MaxY}},
		}
	case splitY:
		children = []Cell{
			{Bounds: Bounds{b.MinX, b.MinY, b.MaxX, midY}},
			{Bounds: Bounds{b.MinX, midY, b.MaxX, b.MaxY}},
		}
	default:
		return nil, false
	}

	for _, p := range c.Points {
		i := 0
		if splitX && splitY {
			if p.X >= midX {
				i = 1
			}
			if p.Y >= midY {
				i += 2
			}
		} else if splitX {
			if p.X >= midX {
				i = 1
			}
		} else {
			if p.Y >= midY {
				i = 1
			}
		}
		children[i].Points = append(children[i].Points, p)
	}

	return children, true
}
