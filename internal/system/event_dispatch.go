package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/blocklink/worldindex/internal/core/event"
	coresys "github.com/blocklink/worldindex/internal/core/system"
	"github.com/blocklink/worldindex/internal/telemetry"
	"github.com/blocklink/worldindex/internal/world"
)

// EventDispatchSystem delivers last tick's events at the start of each tick
// and wires the standard subscribers: telemetry counters and debug logging.
// Phase 0 (Events).
type EventDispatchSystem struct {
	bus       *event.Bus
	delivered int
}

func NewEventDispatchSystem(ws *world.State, collector *telemetry.Collector, log *zap.Logger) *EventDispatchSystem {
	bus := ws.Bus
	event.Subscribe(bus, func(e event.TargetAcquired) {
		collector.RecordTargetAcquired()
		log.Debug("target acquired",
			zap.Uint64("hunter", uint64(e.Hunter)),
			zap.Uint64("target", uint64(e.Target)),
			zap.Uint64("tick", e.Tick),
		)
	})
	event.Subscribe(bus, func(e event.SightBlocked) {
		collector.RecordSightBlocked()
		log.Debug("sight blocked",
			zap.Uint64("hunter", uint64(e.Hunter)),
			zap.Int("line", e.Line),
			zap.Uint64("blocker", uint64(e.Blocker)),
			zap.Float64("frac", e.Frac),
		)
	})
	event.Subscribe(bus, func(e event.MobjRemoved) {
		collector.RecordRemoved()
		log.Debug("mobj removed",
			zap.Uint64("entity", uint64(e.Entity)),
			zap.Uint32("serial", e.Serial),
		)
	})
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseEvents }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.delivered += s.bus.DispatchAll()
}

// Delivered is the number of events handed to subscribers so far.
func (s *EventDispatchSystem) Delivered() int { return s.delivered }
