package telemetry

import "github.com/blocklink/worldindex/internal/spatial"

// Collector accumulates per-tick index samples and event counts and turns
// them into WindowStats every window ticks.
type Collector struct {
	window      int
	windowStart uint64
	ticks       int

	lastTraces     uint64
	lastIntercepts uint64

	nodesPerActor      []float64
	interceptsPerTrace []float64
	traces             int

	targetsAcquired int
	sightBlocked    int
	removed         int
}

func NewCollector(window int) *Collector {
	if window < 1 {
		window = 1
	}
	return &Collector{
		window:        window,
		nodesPerActor: make([]float64, 0, window),
	}
}

func (c *Collector) RecordTargetAcquired() { c.targetsAcquired++ }
func (c *Collector) RecordSightBlocked()   { c.sightBlocked++ }
func (c *Collector) RecordRemoved()        { c.removed++ }

// Sample records the index state at the end of tick. When the sample closes
// a window it returns the window's stats.
func (c *Collector) Sample(tick uint64, st spatial.Stats) (WindowStats, bool) {
	if c.ticks == 0 {
		c.windowStart = tick
	}
	c.ticks++

	if st.LinkedActors > 0 {
		c.nodesPerActor = append(c.nodesPerActor, float64(st.LiveNodes)/float64(st.LinkedActors))
	}
	if dt := st.Traces - c.lastTraces; dt > 0 {
		di := st.Intercepts - c.lastIntercepts
		c.interceptsPerTrace = append(c.interceptsPerTrace, float64(di)/float64(dt))
		c.traces += int(dt)
	}
	c.lastTraces, c.lastIntercepts = st.Traces, st.Intercepts

	if c.ticks < c.window {
		return WindowStats{}, false
	}

	ws := WindowStats{
		WindowStartTick: c.windowStart,
		WindowEndTick:   tick,
		LinkedActors:    st.LinkedActors,
		LiveNodes:       st.LiveNodes,
		FreeNodes:       st.FreeNodes,
		TouchNodes:      st.TouchNodes,
		OccupiedCells:   st.OccupiedCells,
		Traces:          c.traces,
		TargetsAcquired: c.targetsAcquired,
		SightBlocked:    c.sightBlocked,
		Removed:         c.removed,
	}
	ws.NodesPerActorMean, ws.NodesPerActorStd = meanStd(c.nodesPerActor)
	ws.InterceptsPerTrace, _ = meanStd(c.interceptsPerTrace)
	ws.InterceptsPerTraceP90 = quantile(0.9, c.interceptsPerTrace)

	c.reset()
	return ws, true
}

func (c *Collector) reset() {
	c.ticks = 0
	c.nodesPerActor = c.nodesPerActor[:0]
	c.interceptsPerTrace = c.interceptsPerTrace[:0]
	c.traces = 0
	c.targetsAcquired = 0
	c.sightBlocked = 0
	c.removed = 0
}
