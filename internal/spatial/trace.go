package spatial

import (
	"github.com/blocklink/worldindex/internal/geom"
	"github.com/blocklink/worldindex/internal/level"
)

// TraceFlags select what a trace collects.
type TraceFlags uint8

const (
	TraceLines TraceFlags = 1 << iota
	TraceActors
)

// Intercept is a line or actor crossed by a trace. Frac is the position
// along the trace segment, FracUnit at its end.
type Intercept struct {
	Frac  geom.Fixed
	Line  *level.Line
	Actor *Actor
	done  bool
}

func (in *Intercept) IsLine() bool { return in.Line != nil }

// PathTraverse holds the intercepts of one trace. Collection happens up
// front; Next hands them out nearest first.
type PathTraverse struct {
	ix    *Index
	trace geom.Divline

	// MaxFrac stops Next at intercepts farther along than this. It defaults
	// to FracUnit and callers may lower it while consuming.
	MaxFrac geom.Fixed

	intercepts []Intercept
	truncated  bool
}

// Trace collects everything crossed by the segment (x1,y1)-(x2,y2).
func (ix *Index) Trace(x1, y1, x2, y2 geom.Fixed, flags TraceFlags) *PathTraverse {
	pt := &PathTraverse{
		ix:      ix,
		trace:   geom.Divline{X: x1, Y: y1, Dx: x2 - x1, Dy: y2 - y1},
		MaxFrac: geom.FracUnit,
	}
	if n := len(ix.spareIntercepts); n > 0 {
		pt.intercepts = ix.spareIntercepts[n-1]
		ix.spareIntercepts = ix.spareIntercepts[:n-1]
	}
	ix.traces++
	ix.traceStamps.next()
	pt.walk(x1, y1, x2, y2, flags)
	ix.intercepts += uint64(len(pt.intercepts))
	return pt
}

// walk steps a DDA through the cells under the segment. A start point on
// a cell boundary is moved one unit inward so the stepping never has to
// decide which of two cells it is in; intercept fractions still use the
// caller's segment.
func (pt *PathTraverse) walk(x1, y1, x2, y2 geom.Fixed, flags TraceFlags) {
	g := &pt.ix.grid

	if g.OffX(x1)&int64(level.BlockSize-1) == 0 {
		x1 += geom.FracUnit
	}
	if g.OffY(y1)&int64(level.BlockSize-1) == 0 {
		y1 += geom.FracUnit
	}
	// Origin-relative start in cell units, 16.16.
	cx1 := geom.Fixed(g.OffX(x1) >> level.BlockToFrac)
	cy1 := geom.Fixed(g.OffY(y1) >> level.BlockToFrac)
	dx, dy := x2-x1, y2-y1

	xt1, yt1 := g.BlockX(x1), g.BlockY(y1)
	xt2, yt2 := g.BlockX(x2), g.BlockY(y2)

	var (
		mapxstep, mapystep int
		partialx, partialy geom.Fixed
		xstep, ystep       geom.Fixed
	)

	switch {
	case xt2 > xt1:
		mapxstep = 1
		partialx = geom.FracUnit - (cx1 & (geom.FracUnit - 1))
		ystep = geom.Div(dy, dx.Abs())
	case xt2 < xt1:
		mapxstep = -1
		partialx = cx1 & (geom.FracUnit - 1)
		ystep = geom.Div(dy, dx.Abs())
	default:
		partialx = geom.FracUnit
		ystep = 256 * geom.FracUnit
	}
	yintercept := cy1 + geom.Mul(partialx, ystep)

	switch {
	case yt2 > yt1:
		mapystep = 1
		partialy = geom.FracUnit - (cy1 & (geom.FracUnit - 1))
		xstep = geom.Div(dx, dy.Abs())
	case yt2 < yt1:
		mapystep = -1
		partialy = cy1 & (geom.FracUnit - 1)
		xstep = geom.Div(dx, dy.Abs())
	default:
		partialy = geom.FracUnit
		xstep = 256 * geom.FracUnit
	}
	xintercept := cx1 + geom.Mul(partialy, xstep)

	// A perfect diagonal through a cell corner would otherwise skip one of
	// the two cells sharing that corner.
	if xstep.Abs() == geom.FracUnit && ystep.Abs() == geom.FracUnit {
		if ystep < 0 {
			partialx = geom.FracUnit - partialx
		}
		if xstep < 0 {
			partialy = geom.FracUnit - partialy
		}
		if partialx == partialy {
			xintercept = geom.Fixed(xt1) << geom.FracBits
			yintercept = geom.Fixed(yt1) << geom.FracBits
		}
	}

	var actors BlockActorsIterator
	if flags&TraceActors != 0 {
		actors.init(pt.ix, xt1, yt1, xt1, yt1)
	}
	visit := func(x, y int) {
		if flags&TraceLines != 0 {
			pt.addLineIntercepts(x, y)
		}
		if flags&TraceActors != 0 {
			pt.addActorIntercepts(x, y, &actors)
		}
	}

	mapx, mapy := xt1, yt1
	for count := 0; count < pt.ix.opts.MaxTraceSteps; count++ {
		visit(mapx, mapy)

		if mapx == xt2 && mapy == yt2 {
			return
		}

		onX := int(xintercept>>geom.FracBits) == mapx
		onY := int(yintercept>>geom.FracBits) == mapy
		switch {
		case onX && onY:
			// Through a corner: both neighbours are crossed.
			visit(mapx+mapxstep, mapy)
			visit(mapx, mapy+mapystep)
			xintercept += xstep
			yintercept += ystep
			mapx += mapxstep
			mapy += mapystep
		case onX:
			xintercept += xstep
			mapy += mapystep
		case onY:
			yintercept += ystep
			mapx += mapxstep
		default:
			// Lost the line; stop rather than wander.
			pt.truncated = true
			return
		}
	}
	pt.truncated = true
}

func (pt *PathTraverse) addLineIntercepts(bx, by int) {
	var it BlockLinesIterator
	it.init(pt.ix, &pt.ix.traceStamps, bx, by, bx, by, true)

	tr := &pt.trace
	long := tr.Dx > 16*geom.FracUnit || tr.Dy > 16*geom.FracUnit ||
		tr.Dx < -16*geom.FracUnit || tr.Dy < -16*geom.FracUnit

	for ld := it.Next(); ld != nil; ld = it.Next() {
		var s1, s2 int
		if long {
			s1 = geom.PointOnDivlineSide(ld.V1.X, ld.V1.Y, tr)
			s2 = geom.PointOnDivlineSide(ld.V2.X, ld.V2.Y, tr)
		} else {
			s1 = level.PointOnLineSide(tr.X, tr.Y, ld)
			s2 = level.PointOnLineSide(tr.X+tr.Dx, tr.Y+tr.Dy, ld)
		}
		if s1 == s2 {
			continue
		}

		dl := ld.Divline()
		frac := geom.InterceptVector(tr, &dl)
		if frac < 0 {
			continue
		}
		pt.intercepts = append(pt.intercepts, Intercept{Frac: frac, Line: ld})
	}
}

func (pt *PathTraverse) addActorIntercepts(bx, by int, it *BlockActorsIterator) {
	it.SwitchBlock(bx, by)
	tr := &pt.trace
	for a := it.Next(); a != nil; a = it.Next() {
		r := a.Radius
		edges := [4]geom.Divline{
			{X: a.X + r, Y: a.Y + r, Dx: -r * 2}, // top
			{X: a.X + r, Y: a.Y - r, Dy: r * 2},  // right
			{X: a.X - r, Y: a.Y - r, Dx: r * 2},  // bottom
			{X: a.X - r, Y: a.Y + r, Dy: -r * 2}, // left
		}
		numfronts := 0
		for i := range edges {
			edge := &edges[i]
			if geom.PointOnDivlineSide(tr.X, tr.Y, edge) != 0 {
				continue
			}
			numfronts++
			if geom.PointOnDivlineSide(edge.X, edge.Y, tr) ==
				geom.PointOnDivlineSide(edge.X+edge.Dx, edge.Y+edge.Dy, tr) {
				continue
			}
			frac := geom.InterceptVector(tr, edge)
			if frac < 0 {
				continue
			}
			pt.intercepts = append(pt.intercepts, Intercept{Frac: frac, Actor: a})
		}

		// No edge faces the origin: the trace starts inside the box.
		if numfronts == 0 {
			pt.intercepts = append(pt.intercepts, Intercept{Frac: 0, Actor: a})
		}
	}
}

// Next returns the nearest intercept not yet handed out, or nil when none
// is left within MaxFrac.
func (pt *PathTraverse) Next() *Intercept {
	var best *Intercept
	dist := geom.MaxFixed
	for i := range pt.intercepts {
		in := &pt.intercepts[i]
		if !in.done && in.Frac < dist {
			dist = in.Frac
			best = in
		}
	}
	if best == nil || dist > pt.MaxFrac {
		return nil
	}
	best.done = true
	return best
}

// Divline is the traced segment as given by the caller.
func (pt *PathTraverse) Divline() geom.Divline { return pt.trace }

// Len is the number of intercepts collected.
func (pt *PathTraverse) Len() int { return len(pt.intercepts) }

// Truncated reports whether the walk hit the step cap before reaching the
// end cell.
func (pt *PathTraverse) Truncated() bool { return pt.truncated }

// HitPoint returns the map position at fraction frac along the trace.
func (pt *PathTraverse) HitPoint(frac geom.Fixed) (x, y geom.Fixed) {
	return pt.trace.X + geom.Mul(pt.trace.Dx, frac), pt.trace.Y + geom.Mul(pt.trace.Dy, frac)
}

// Release hands the intercept buffer back to the index. The traversal must
// not be used afterwards.
func (pt *PathTraverse) Release() {
	if pt.intercepts == nil {
		return
	}
	pt.ix.spareIntercepts = append(pt.ix.spareIntercepts, pt.intercepts[:0])
	pt.intercepts = nil
}
