package event

import "github.com/blocklink/worldindex/internal/core/ecs"

// TargetAcquired is emitted when a hunter's ring search picks a target.
type TargetAcquired struct {
	Hunter ecs.EntityID
	Target ecs.EntityID
	Tick   uint64
}

// SightBlocked is emitted when a sight trace toward the current target hits
// a blocking line or another actor first.
type SightBlocked struct {
	Hunter  ecs.EntityID
	Target  ecs.EntityID
	Line    int          // -1 when an actor blocked the view
	Blocker ecs.EntityID // zero when a line blocked the view
	Frac    float64
	Tick    uint64
}

// MobjRemoved is emitted after an object has been unlinked and destroyed.
type MobjRemoved struct {
	Entity ecs.EntityID
	Serial uint32
	Tick   uint64
}
