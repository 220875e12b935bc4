package world

import (
	"fmt"
	"math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/blocklink/worldindex/internal/core/ecs"
	"github.com/blocklink/worldindex/internal/core/event"
	"github.com/blocklink/worldindex/internal/data"
	"github.com/blocklink/worldindex/internal/geom"
	"github.com/blocklink/worldindex/internal/level"
	"github.com/blocklink/worldindex/internal/spatial"
)

// Removed describes an object destroyed by FlushRemovals.
type Removed struct {
	Entity ecs.EntityID
	Serial uint32
}

// State is the simulation world: the level, its spatial index and the map
// objects linked into it.
// Accessed only from the simulation goroutine; no locks.
type State struct {
	Level *level.Level
	Index *spatial.Index
	ECS   *ecs.World
	Mobjs *ecs.Store[Mobj]
	Bus   *event.Bus

	rng   *rand.Rand
	log   *zap.Logger
	tick  uint64
	dying []ecs.EntityID
}

func NewState(lvl *level.Level, opts spatial.Options, seed int64, log *zap.Logger) *State {
	w := ecs.NewWorld()
	mobjs := ecs.NewStore[Mobj]()
	w.Register(mobjs)
	return &State{
		Level: lvl,
		Index: spatial.New(lvl, opts, log.Named("index")),
		ECS:   w,
		Mobjs: mobjs,
		Bus:   event.NewBus(),
		rng:   rand.New(rand.NewSource(seed)),
		log:   log,
	}
}

func (s *State) Tick() uint64     { return s.tick }
func (s *State) AdvanceTick()     { s.tick++ }
func (s *State) Rand() *rand.Rand { return s.rng }

// Spawn creates a map object of the given kind at (x,y) map units, heading
// angle degrees, and links it as a map thing.
func (s *State) Spawn(kind *data.KindTemplate, x, y, angle int) ecs.EntityID {
	id := s.ECS.CreateEntity()
	m := &Mobj{
		Kind:   kind,
		Team:   kind.Team,
		Health: kind.Health,
	}
	m.Actor = spatial.Actor{
		X:      geom.FromInt(x),
		Y:      geom.FromInt(y),
		Radius: geom.FromInt(kind.Radius),
		Height: geom.FromInt(kind.Height),
		Flags:  actorFlags(kind.Flags),
		ID:     uint64(id),
	}
	if kind.Speed > 0 {
		rad := float64(angle) * math.Pi / 180
		speed := float64(kind.Speed)
		m.MomX = geom.FromFloat(speed * math.Cos(rad))
		m.MomY = geom.FromFloat(speed * math.Sin(rad))
	}
	s.Mobjs.Set(id, m)
	s.Index.LinkForMapThing(&m.Actor)
	m.Actor.Z = m.Actor.Sector().FloorZ
	return id
}

// SpawnLevel spawns every thing listed by the level data, scattering
// groups inside their random box and giving movers a random heading.
func (s *State) SpawnLevel(ld *data.LevelData) (int, error) {
	n := 0
	for i, t := range ld.Things {
		kind, ok := ld.Kinds[t.Kind]
		if !ok {
			return n, fmt.Errorf("thing %d: unknown kind %q", i, t.Kind)
		}
		for c := 0; c < t.Count; c++ {
			x, y, angle := t.X, t.Y, t.Angle
			if t.RandomX > 0 {
				x += s.rng.Intn(2*t.RandomX+1) - t.RandomX
			}
			if t.RandomY > 0 {
				y += s.rng.Intn(2*t.RandomY+1) - t.RandomY
			}
			if t.Count > 1 {
				angle = s.rng.Intn(360)
			}
			s.Spawn(kind, x, y, angle)
			n++
		}
	}
	s.log.Info("level populated",
		zap.String("level", ld.Name),
		zap.Int("spawned", n),
		zap.Int("linked", s.Index.Stats().LinkedActors),
	)
	return n, nil
}

// Mobj returns the live object for id, or nil.
func (s *State) Mobj(id ecs.EntityID) *Mobj {
	if !s.ECS.Alive(id) {
		return nil
	}
	m, _ := s.Mobjs.Get(id)
	return m
}

// EntityOf maps an actor found by an index query back to its entity.
func EntityOf(a *spatial.Actor) ecs.EntityID { return ecs.EntityID(a.ID) }

// MobjOf returns the object owning an actor found by an index query.
func (s *State) MobjOf(a *spatial.Actor) *Mobj {
	return s.Mobj(EntityOf(a))
}

// Despawn queues an object for removal at the end of the tick. It stays
// linked until then, so queries later in the same tick still see it.
func (s *State) Despawn(id ecs.EntityID) {
	m := s.Mobj(id)
	if m == nil || m.Dead {
		return
	}
	m.Dead = true
	s.dying = append(s.dying, id)
	s.ECS.MarkForDestruction(id)
}

// FlushRemovals releases the actors of despawned objects from the index and
// destroys their entities.
func (s *State) FlushRemovals() []Removed {
	if len(s.dying) == 0 {
		return nil
	}
	out := make([]Removed, 0, len(s.dying))
	for _, id := range s.dying {
		m, ok := s.Mobjs.Get(id)
		if !ok {
			continue
		}
		s.Index.Release(&m.Actor)
		out = append(out, Removed{Entity: id, Serial: m.Actor.Serial()})
	}
	s.dying = s.dying[:0]
	s.ECS.FlushDestroyQueue()
	return out
}

// Live is the number of objects not yet destroyed.
func (s *State) Live() int { return s.Mobjs.Len() }
