package world

import (
	"github.com/blocklink/worldindex/internal/core/ecs"
	"github.com/blocklink/worldindex/internal/data"
	"github.com/blocklink/worldindex/internal/geom"
	"github.com/blocklink/worldindex/internal/spatial"
)

// Mobj is the gameplay component of a map object. Its Actor is linked into
// the spatial index for as long as the entity lives.
// Accessed only from the simulation goroutine; no locks.
type Mobj struct {
	Kind   *data.KindTemplate
	Actor  spatial.Actor
	Team   int
	Health int

	// Momentum per tick, applied by the movement system.
	MomX, MomY geom.Fixed

	// AI state
	Target     ecs.EntityID // zero = no target
	SightTimer int          // ticks until the next sight check
	InSight    bool         // target was visible at the last check
	Searches   int          // ring searches run

	Dead bool // queued for removal
}

// Hunter reports whether the object looks for targets.
func (m *Mobj) Hunter() bool { return m.Kind.Hunter && !m.Dead }

var kindFlags = map[string]spatial.Flags{
	"no_sector":   spatial.NoSector,
	"no_blockmap": spatial.NoBlockmap,
	"fix_pos":     spatial.FixMapThingPos,
}

func actorFlags(names []string) spatial.Flags {
	var f spatial.Flags
	for _, n := range names {
		f |= kindFlags[n]
	}
	return f
}
