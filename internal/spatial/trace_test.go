package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blocklink/worldindex/internal/geom"
	"github.com/blocklink/worldindex/internal/level"
)

// fenceLevel has one vertical line at x=250 crossing row 0 of a 4x4 grid.
func fenceLevel(t *testing.T) (*level.Level, *level.Line) {
	t.Helper()
	b := level.NewBuilder().Grid(0, 0, 4, 4)
	s := b.Sector("field", 0, 128)
	v1 := b.Vertex(250, -64)
	v2 := b.Vertex(250, 256)
	fence := b.Line(v1, v2, s, -1, level.LineBlocking)
	lvl, err := b.Build()
	require.NoError(t, err)
	return lvl, lvl.Lines[fence]
}

func drain(pt *PathTraverse) []*Intercept {
	var out []*Intercept
	for in := pt.Next(); in != nil; in = pt.Next() {
		out = append(out, in)
	}
	return out
}

func TestTraceLineAtHalf(t *testing.T) {
	lvl, fence := fenceLevel(t)
	ix := newIndex(t, lvl)

	pt := ix.Trace(fx(0), fx(0), fx(500), fx(0), TraceLines)
	defer pt.Release()

	got := drain(pt)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsLine())
	assert.Same(t, fence, got[0].Line)
	assert.Equal(t, geom.FracUnit/2, got[0].Frac)
	assert.False(t, pt.Truncated())

	x, y := pt.HitPoint(got[0].Frac)
	assert.Equal(t, fx(250), x)
	assert.Equal(t, fx(0), y)
}

func TestTraceShortSegment(t *testing.T) {
	lvl, fence := fenceLevel(t)
	ix := newIndex(t, lvl)

	// Both axes under 16 units: sides are taken against the line.
	for _, tc := range []struct{ x1, x2 int }{{245, 255}, {255, 245}} {
		pt := ix.Trace(fx(tc.x1), fx(0), fx(tc.x2), fx(0), TraceLines)
		got := drain(pt)
		require.Len(t, got, 1)
		assert.Same(t, fence, got[0].Line)
		assert.Equal(t, geom.FracUnit/2, got[0].Frac)
		pt.Release()
	}

	// Short and clear of the fence.
	pt := ix.Trace(fx(230), fx(0), fx(240), fx(0), TraceLines)
	defer pt.Release()
	assert.Empty(t, drain(pt))
}

func TestTraceBehindStartIgnored(t *testing.T) {
	lvl, _ := fenceLevel(t)
	ix := newIndex(t, lvl)

	// Starts in the fence's cell just past it.
	pt := ix.Trace(fx(252), fx(10), fx(500), fx(10), TraceLines)
	defer pt.Release()
	assert.Equal(t, 0, pt.Len())
	assert.Empty(t, drain(pt))

	// Ends just short of it: collected beyond MaxFrac, never returned.
	back := ix.Trace(fx(500), fx(10), fx(252), fx(10), TraceLines)
	defer back.Release()
	assert.Equal(t, 1, back.Len())
	assert.Empty(t, drain(back))
}

func TestTraceOrdering(t *testing.T) {
	lvl, fence := fenceLevel(t)
	ix := newIndex(t, lvl)
	near := newActor(100, 0, 16)
	far := newActor(384, 0, 16) // spans cells (2,0) and (3,0)
	ix.Link(far)
	ix.Link(near)

	pt := ix.Trace(fx(0), fx(0), fx(500), fx(0), TraceLines|TraceActors)
	defer pt.Release()
	got := drain(pt)
	require.Len(t, got, 3)

	assert.Same(t, near, got[0].Actor)
	assert.Equal(t, geom.Fixed(84*65536/500), got[0].Frac)
	assert.Same(t, fence, got[1].Line)
	assert.Same(t, far, got[2].Actor)
	assert.Equal(t, geom.Fixed(368*65536/500), got[2].Frac)

	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].Frac, got[i].Frac)
	}
}

func TestTraceMaxFrac(t *testing.T) {
	lvl, fence := fenceLevel(t)
	ix := newIndex(t, lvl)
	ix.Link(newActor(384, 0, 16))

	pt := ix.Trace(fx(0), fx(0), fx(500), fx(0), TraceLines|TraceActors)
	defer pt.Release()
	pt.MaxFrac = geom.FracUnit * 6 / 10

	got := drain(pt)
	require.Len(t, got, 1)
	assert.Same(t, fence, got[0].Line)
	assert.Equal(t, 2, pt.Len())
}

func TestTraceStartsInsideActor(t *testing.T) {
	ix := newIndex(t, openLevel(t))
	a := newActor(200, 200, 32)
	ix.Link(a)

	pt := ix.Trace(fx(190), fx(210), fx(450), fx(300), TraceActors)
	defer pt.Release()
	got := drain(pt)
	require.Len(t, got, 1)
	assert.Same(t, a, got[0].Actor)
	assert.Equal(t, geom.Fixed(0), got[0].Frac)
}

func TestTraceDiagonalThroughCorners(t *testing.T) {
	ix := newIndex(t, openLevel(t))
	var want []*Actor
	for _, c := range []int{96, 200, 330, 440} {
		a := newActor(c, c, 8)
		ix.Link(a)
		want = append(want, a)
	}
	offPath := newActor(440, 64, 8)
	ix.Link(offPath)

	pt := ix.Trace(fx(64), fx(64), fx(500), fx(500), TraceActors)
	defer pt.Release()
	got := drain(pt)
	require.Len(t, got, len(want))
	for i, in := range got {
		assert.Same(t, want[i], in.Actor)
	}
}

func TestTraceStepCap(t *testing.T) {
	lvl, _ := fenceLevel(t)
	ix := New(lvl, Options{MaxTraceSteps: 1}, zap.NewNop())
	far := newActor(450, 64, 8)
	ix.Link(far)

	pt := ix.Trace(fx(10), fx(64), fx(500), fx(64), TraceLines|TraceActors)
	defer pt.Release()
	assert.True(t, pt.Truncated())
	assert.Empty(t, drain(pt))
}

func TestTraceReleaseReusesBuffer(t *testing.T) {
	lvl, _ := fenceLevel(t)
	ix := newIndex(t, lvl)

	pt := ix.Trace(fx(0), fx(0), fx(500), fx(0), TraceLines)
	require.Equal(t, 1, pt.Len())
	pt.Release()
	assert.Len(t, ix.spareIntercepts, 1)

	again := ix.Trace(fx(0), fx(10), fx(500), fx(10), TraceLines)
	assert.Empty(t, ix.spareIntercepts)
	assert.Equal(t, 1, again.Len())
	again.Release()

	st := ix.Stats()
	assert.Equal(t, uint64(2), st.Traces)
	assert.Equal(t, uint64(2), st.Intercepts)
}
