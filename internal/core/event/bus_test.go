package event

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blocklink/worldindex/internal/core/ecs"
)

func TestBusDeliversNextTick(t *testing.T) {
	b := NewBus()
	var got []ecs.EntityID
	Subscribe(b, func(e MobjRemoved) { got = append(got, e.Entity) })

	Emit(b, MobjRemoved{Entity: 4})
	assert.Zero(t, b.DispatchAll(), "not visible before the swap")

	b.SwapBuffers()
	assert.Equal(t, 1, b.DispatchAll())
	assert.Equal(t, []ecs.EntityID{4}, got)

	b.SwapBuffers()
	assert.Zero(t, b.DispatchAll())
	assert.Equal(t, uint64(1), b.Emitted())
}

func TestBusDispatchOrder(t *testing.T) {
	b := NewBus()
	var log []string
	Subscribe(b, func(TargetAcquired) { log = append(log, "acquired") })
	Subscribe(b, func(e SightBlocked) { log = append(log, "blocked") })
	Subscribe(b, func(MobjRemoved) { log = append(log, "removed") })

	Emit(b, SightBlocked{Line: 3})
	Emit(b, TargetAcquired{Hunter: 1, Target: 2})
	Emit(b, SightBlocked{Line: -1})
	Emit(b, MobjRemoved{})
	b.SwapBuffers()
	assert.Equal(t, 4, b.DispatchAll())
	assert.Equal(t, []string{"blocked", "blocked", "acquired", "removed"}, log)
}

func TestBusWithoutHandlers(t *testing.T) {
	b := NewBus()
	Emit(b, TargetAcquired{})
	b.SwapBuffers()
	assert.Equal(t, 1, b.DispatchAll())
}
