package system

import (
	"time"

	"github.com/blocklink/worldindex/internal/core/ecs"
	"github.com/blocklink/worldindex/internal/core/event"
	coresys "github.com/blocklink/worldindex/internal/core/system"
	"github.com/blocklink/worldindex/internal/geom"
	"github.com/blocklink/worldindex/internal/scripting"
	"github.com/blocklink/worldindex/internal/spatial"
	"github.com/blocklink/worldindex/internal/world"
)

// HuntSystem gives every idle hunter a target: a ring search of the
// blockmap around it, filtered by the is_okay_to_attack hook. Targets that
// died since the last tick are dropped first. Phase 2 (Think).
type HuntSystem struct {
	world   *world.State
	scripts *scripting.Engine
	radius  int
}

func NewHuntSystem(ws *world.State, scripts *scripting.Engine, radius int) *HuntSystem {
	return &HuntSystem{world: ws, scripts: scripts, radius: radius}
}

func (s *HuntSystem) Phase() coresys.Phase { return coresys.PhaseThink }

func (s *HuntSystem) Update(_ time.Duration) {
	ws := s.world
	ws.Mobjs.Each(func(id ecs.EntityID, m *world.Mobj) {
		if !m.Hunter() {
			return
		}
		if m.Target != 0 {
			if t := ws.Mobj(m.Target); t != nil && !t.Dead {
				return
			}
			m.Target = 0
			m.InSight = false
		}

		m.Searches++
		found := ws.Index.RoughMonsterSearch(&m.Actor, s.radius, s.okay)
		if found == nil {
			return
		}
		m.Target = world.EntityOf(found)
		m.SightTimer = 0
		event.Emit(ws.Bus, event.TargetAcquired{Hunter: id, Target: m.Target, Tick: ws.Tick()})
	})
}

func (s *HuntSystem) okay(origin, target *spatial.Actor) bool {
	hunter := s.world.MobjOf(origin)
	prey := s.world.MobjOf(target)
	if hunter == nil || prey == nil || prey.Dead {
		return false
	}
	dist := geom.AproxDistance(target.X-origin.X, target.Y-origin.Y).Int()
	ctx := scripting.AttackContext{
		Hunter: view(hunter),
		Target: view(prey),
		Dist:   dist,
	}
	if s.scripts == nil {
		return ctx.Target.Health > 0 && ctx.Target.Team != ctx.Hunter.Team
	}
	return s.scripts.IsOkayToAttack(ctx)
}

func view(m *world.Mobj) scripting.MobjView {
	return scripting.MobjView{
		Kind:   m.Kind.Name,
		Team:   m.Team,
		Health: m.Health,
		X:      m.Actor.X.Int(),
		Y:      m.Actor.Y.Int(),
	}
}
