package spatial

import (
	"go.uber.org/zap"

	"github.com/blocklink/worldindex/internal/level"
)

// DefaultMaxTraceSteps bounds the cells a single trace may visit.
const DefaultMaxTraceSteps = 100

// Options tune an Index. Zero values select the defaults.
type Options struct {
	// MaxTraceSteps caps DDA steps per trace; longer traces are truncated.
	MaxTraceSteps int
	// LegacyMapThings makes LinkForMapThing locate sectors with the legacy
	// side test and honour FixMapThingPos.
	LegacyMapThings bool
}

// Index keeps actors registered in the blockmap and sector lists of one
// level and answers range, trace and ring queries over them.
//
// Accessed only from the simulation goroutine; no locks.
type Index struct {
	lvl  *level.Level
	grid Grid
	log  *zap.Logger
	opts Options

	pool  *BlockNodePool
	cells []NodeID // per-cell actor list heads

	sectorActors []*Actor    // per-sector actor list heads
	touch        secNodePool // sector touch nodes
	sectorTouch  []secNodeID // per-sector touching-actor list heads

	// Dedup passes for caller iterators, touch reconciliation and traces.
	lineStamps  lineStamps
	touchStamps lineStamps
	traceStamps lineStamps

	nextSerial uint32
	linked     int

	spareIntercepts [][]Intercept

	traces     uint64
	intercepts uint64
}

// New builds an empty index over lvl.
func New(lvl *level.Level, opts Options, log *zap.Logger) *Index {
	if opts.MaxTraceSteps <= 0 {
		opts.MaxTraceSteps = DefaultMaxTraceSteps
	}
	g := gridOf(&lvl.Blockmap)
	return &Index{
		lvl:          lvl,
		grid:         g,
		log:          log,
		opts:         opts,
		pool:         NewBlockNodePool(g.Width),
		cells:        make([]NodeID, g.Width*g.Height),
		sectorActors: make([]*Actor, len(lvl.Sectors)),
		touch:        newSecNodePool(),
		sectorTouch:  make([]secNodeID, len(lvl.Sectors)),
		lineStamps:   newLineStamps(lvl),
		touchStamps:  newLineStamps(lvl),
		traceStamps:  newLineStamps(lvl),
	}
}

func (ix *Index) Level() *level.Level  { return ix.lvl }
func (ix *Index) Grid() Grid           { return ix.grid }
func (ix *Index) Pool() *BlockNodePool { return ix.pool }

// lineStamps marks the lines and polyobjects already returned in one
// dedup pass.
type lineStamps struct {
	gen   uint32
	lines []uint32
	polys []uint32
}

func newLineStamps(lvl *level.Level) lineStamps {
	return lineStamps{
		lines: make([]uint32, len(lvl.Lines)),
		polys: make([]uint32, len(lvl.Polys)),
	}
}

// next starts a new pass. Stamps are cleared on wrap so a stale stamp
// never matches.
func (s *lineStamps) next() {
	s.gen++
	if s.gen == 0 {
		clear(s.lines)
		clear(s.polys)
		s.gen = 1
	}
}

// markLine reports whether ld is new to this pass and stamps it.
func (s *lineStamps) markLine(ld *level.Line) bool {
	if s.lines[ld.Index] == s.gen {
		return false
	}
	s.lines[ld.Index] = s.gen
	return true
}

func (s *lineStamps) markPoly(p *level.Poly) bool {
	if s.polys[p.Index] == s.gen {
		return false
	}
	s.polys[p.Index] = s.gen
	return true
}

// Stats is a point-in-time view of index occupancy.
type Stats struct {
	LinkedActors   int
	LiveNodes      int
	FreeNodes      int
	TouchNodes     int
	OccupiedCells  int
	LineGeneration uint32
	Traces         uint64
	Intercepts     uint64
}

func (ix *Index) Stats() Stats {
	occupied := 0
	for _, head := range ix.cells {
		if head != NoNode {
			occupied++
		}
	}
	return Stats{
		LinkedActors:   ix.linked,
		LiveNodes:      ix.pool.Live(),
		FreeNodes:      ix.pool.FreeCount(),
		TouchNodes:     ix.touch.live(),
		OccupiedCells:  occupied,
		LineGeneration: ix.lineStamps.gen,
		Traces:         ix.traces,
		Intercepts:     ix.intercepts,
	}
}

// ActorCells returns the flat indices of the cells the actor occupies, in
// chain order.
func (ix *Index) ActorCells(a *Actor) []int {
	var out []int
	for id := a.blocks; id != NoNode; id = ix.pool.node(id).nextBlock {
		out = append(out, ix.pool.Cell(id))
	}
	return out
}

// CellActors returns the actors listed in one cell, most recently linked
// first. Invalid cells yield nil.
func (ix *Index) CellActors(cx, cy int) []*Actor {
	if !ix.grid.Contains(cx, cy) {
		return nil
	}
	var out []*Actor
	for id := ix.cells[ix.grid.Index(cx, cy)]; id != NoNode; id = ix.pool.node(id).nextActor {
		out = append(out, ix.pool.Actor(id))
	}
	return out
}

// SectorActors calls fn for each actor whose center lies in sector s until
// fn returns false.
func (ix *Index) SectorActors(s *level.Sector, fn func(*Actor) bool) {
	for a := ix.sectorActors[s.Index]; a != nil; {
		next := a.snext
		if !fn(a) {
			return
		}
		a = next
	}
}

// TouchingActors calls fn for each actor whose box overlaps sector s until
// fn returns false.
func (ix *Index) TouchingActors(s *level.Sector, fn func(*Actor) bool) {
	for id := ix.sectorTouch[s.Index]; id != noSecNode; {
		n := ix.touch.node(id)
		next := n.snext
		if !fn(n.actor) {
			return
		}
		id = next
	}
}

// TouchedSectors returns the sectors the actor's box overlaps.
func (ix *Index) TouchedSectors(a *Actor) []*level.Sector {
	var out []*level.Sector
	for id := a.touching; id != noSecNode; id = ix.touch.node(id).tnext {
		out = append(out, ix.lvl.Sectors[ix.touch.node(id).sector])
	}
	return out
}
