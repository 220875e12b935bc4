package spatial

import (
	"github.com/blocklink/worldindex/internal/geom"
	"github.com/blocklink/worldindex/internal/level"
)

// Flags select which spatial structures an actor takes part in.
type Flags uint32

const (
	// NoSector keeps the actor out of sector actor lists and touch lists.
	NoSector Flags = 1 << iota
	// NoBlockmap keeps the actor out of the blockmap; it is invisible to
	// range queries, traces and ring searches.
	NoBlockmap
	// FixMapThingPos pushes a map thing spawned on top of a wall line back
	// into its sector. Only honoured by LinkForMapThing.
	FixMapThingPos
)

// LinkState is the actor's position in the link lifecycle.
type LinkState uint8

const (
	Unlinked LinkState = iota // never linked
	Linked
	Detached // linked once, currently unlinked
)

func (s LinkState) String() string {
	switch s {
	case Unlinked:
		return "unlinked"
	case Linked:
		return "linked"
	case Detached:
		return "detached"
	}
	return "unknown"
}

// Actor is the spatial half of a map object. Gameplay code owns the actor
// and sets its position and shape; only the Index touches the link fields.
// The zero value is a valid unlinked actor.
type Actor struct {
	X, Y, Z geom.Fixed
	Radius  geom.Fixed
	Height  geom.Fixed
	Flags   Flags

	// ID is an opaque handle for the owner (an entity ID, say).
	ID uint64

	sector      *level.Sector
	serial      uint32
	state       LinkState
	linkedFlags Flags

	snext, sprev *Actor
	blocks       NodeID
	touching     secNodeID
}

// Sector is the sector the actor was last linked into.
func (a *Actor) Sector() *level.Sector { return a.sector }

func (a *Actor) State() LinkState { return a.state }

// Serial is assigned on first link and never reused by the index.
func (a *Actor) Serial() uint32 { return a.serial }

// Box is the actor's square bounding box in map space.
func (a *Actor) Box() geom.Box { return geom.BoxAround(a.X, a.Y, a.Radius) }
