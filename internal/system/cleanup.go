package system

import (
	"time"

	"github.com/blocklink/worldindex/internal/core/event"
	coresys "github.com/blocklink/worldindex/internal/core/system"
	"github.com/blocklink/worldindex/internal/world"
)

// CleanupSystem releases despawned objects from the index, destroys their
// entities and closes the tick. Phase 5 (Cleanup).
type CleanupSystem struct {
	world *world.State
}

func NewCleanupSystem(ws *world.State) *CleanupSystem {
	return &CleanupSystem{world: ws}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	ws := s.world
	for _, r := range ws.FlushRemovals() {
		event.Emit(ws.Bus, event.MobjRemoved{Entity: r.Entity, Serial: r.Serial, Tick: ws.Tick()})
	}
	ws.AdvanceTick()
}
