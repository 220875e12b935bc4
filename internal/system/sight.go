package system

import (
	"time"

	"github.com/blocklink/worldindex/internal/core/ecs"
	"github.com/blocklink/worldindex/internal/core/event"
	coresys "github.com/blocklink/worldindex/internal/core/system"
	"github.com/blocklink/worldindex/internal/spatial"
	"github.com/blocklink/worldindex/internal/world"
)

// SightSystem traces from each hunter to its target every interval ticks.
// A blocking line or another actor in front of the target breaks sight and
// drops the target; a clear line lets the hunter deal its damage.
// Phase 2 (Think), after HuntSystem.
type SightSystem struct {
	world    *world.State
	interval int
	checks   int
	hits     int
}

func NewSightSystem(ws *world.State, interval int) *SightSystem {
	if interval < 1 {
		interval = 1
	}
	return &SightSystem{world: ws, interval: interval}
}

func (s *SightSystem) Phase() coresys.Phase { return coresys.PhaseThink }

func (s *SightSystem) Update(_ time.Duration) {
	ws := s.world
	ws.Mobjs.Each(func(id ecs.EntityID, m *world.Mobj) {
		if !m.Hunter() || m.Target == 0 {
			return
		}
		if m.SightTimer > 0 {
			m.SightTimer--
			return
		}
		m.SightTimer = s.interval

		target := ws.Mobj(m.Target)
		if target == nil || target.Dead {
			return
		}
		s.checks++
		blocked, ok := s.check(&m.Actor, &target.Actor)
		if !ok {
			blocked.Hunter, blocked.Target, blocked.Tick = id, m.Target, ws.Tick()
			event.Emit(ws.Bus, blocked)
			m.Target = 0
			m.InSight = false
			return
		}
		m.InSight = true
		s.hits++
		target.Health -= m.Kind.Damage
		if target.Health <= 0 {
			ws.Despawn(m.Target)
			m.Target = 0
			m.InSight = false
		}
	})
}

// check walks the intercepts between the two actors nearest first. It
// reports the obstruction when something other than the target comes first.
func (s *SightSystem) check(from, to *spatial.Actor) (event.SightBlocked, bool) {
	pt := s.world.Index.Trace(from.X, from.Y, to.X, to.Y, spatial.TraceLines|spatial.TraceActors)
	defer pt.Release()

	for in := pt.Next(); in != nil; in = pt.Next() {
		if in.IsLine() {
			if in.Line.Blocks() {
				return event.SightBlocked{Line: in.Line.Index, Frac: in.Frac.Float()}, false
			}
			continue
		}
		switch in.Actor {
		case from:
			continue
		case to:
			return event.SightBlocked{}, true
		}
		return event.SightBlocked{Line: -1, Blocker: world.EntityOf(in.Actor), Frac: in.Frac.Float()}, false
	}
	// The target sits past the step cap or outside the grid.
	return event.SightBlocked{}, !pt.Truncated()
}

// Stats returns sight checks run and how many saw their target.
func (s *SightSystem) Stats() (checks, hits int) { return s.checks, s.hits }
