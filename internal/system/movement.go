package system

import (
	"math"
	"time"

	"github.com/blocklink/worldindex/internal/core/ecs"
	coresys "github.com/blocklink/worldindex/internal/core/system"
	"github.com/blocklink/worldindex/internal/geom"
	"github.com/blocklink/worldindex/internal/level"
	"github.com/blocklink/worldindex/internal/scripting"
	"github.com/blocklink/worldindex/internal/world"
)

// MovementSystem steps every moving object by its momentum and relinks it.
// A step that would overlap a wall is refused and the mover bounces off
// with a heading picked by the bounce_angle hook. Phase 1 (Move).
type MovementSystem struct {
	world   *world.State
	scripts *scripting.Engine
	moved   int
	bounced int
}

func NewMovementSystem(ws *world.State, scripts *scripting.Engine) *MovementSystem {
	return &MovementSystem{world: ws, scripts: scripts}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseMove }

func (s *MovementSystem) Update(_ time.Duration) {
	ix := s.world.Index
	s.world.Mobjs.Each(func(_ ecs.EntityID, m *world.Mobj) {
		if m.Dead || (m.MomX == 0 && m.MomY == 0) {
			return
		}
		a := &m.Actor
		nx, ny := a.X+m.MomX, a.Y+m.MomY
		if s.blocked(m, nx, ny) {
			s.bounce(m)
			return
		}
		ix.SetOrigin(a, nx, ny, a.Z)
		a.Z = a.Sector().FloorZ
		s.moved++
	})
}

// blocked reports whether the mover's box at (x,y) would straddle a line it
// may not cross.
func (s *MovementSystem) blocked(m *world.Mobj, x, y geom.Fixed) bool {
	box := geom.BoxAround(x, y, m.Actor.Radius)
	it := s.world.Index.LinesInBox(box)
	for ld := it.Next(); ld != nil; ld = it.Next() {
		if !box.Overlaps(ld.BBox) {
			continue
		}
		if !ld.Blocks() && !(m.Kind.Hunter && ld.Flags&level.LineBlockMonsters != 0) {
			continue
		}
		if level.BoxOnLineSide(box, ld) == -1 {
			return true
		}
	}
	return false
}

func (s *MovementSystem) bounce(m *world.Mobj) {
	heading := int(math.Round(math.Atan2(m.MomY.Float(), m.MomX.Float()) * 180 / math.Pi))
	heading = (heading + 360) % 360
	roll := s.world.Rand().Intn(90)
	next := heading + 180
	if s.scripts != nil {
		next = s.scripts.BounceAngle(heading, roll)
	}
	speed := float64(m.Kind.Speed)
	rad := float64(next) * math.Pi / 180
	m.MomX = geom.FromFloat(speed * math.Cos(rad))
	m.MomY = geom.FromFloat(speed * math.Sin(rad))
	s.bounced++
}

// Stats returns how many steps were taken and refused so far.
func (s *MovementSystem) Stats() (moved, bounced int) { return s.moved, s.bounced }
