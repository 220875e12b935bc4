package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/blocklink/worldindex/internal/core/system"
	"github.com/blocklink/worldindex/internal/telemetry"
	"github.com/blocklink/worldindex/internal/world"
)

// TelemetrySystem samples index occupancy once per tick and writes a CSV
// row each time a window closes. Closed windows queue for PersistenceSystem.
// Phase 3 (Telemetry).
type TelemetrySystem struct {
	world     *world.State
	collector *telemetry.Collector
	out       *telemetry.OutputManager
	log       *zap.Logger
	pending   []telemetry.WindowStats
	windows   int
}

func NewTelemetrySystem(ws *world.State, collector *telemetry.Collector, out *telemetry.OutputManager, log *zap.Logger) *TelemetrySystem {
	return &TelemetrySystem{world: ws, collector: collector, out: out, log: log}
}

func (s *TelemetrySystem) Phase() coresys.Phase { return coresys.PhaseTelemetry }

func (s *TelemetrySystem) Update(_ time.Duration) {
	ws, done := s.collector.Sample(s.world.Tick(), s.world.Index.Stats())
	if !done {
		return
	}
	s.windows++
	if err := s.out.WriteWindow(ws); err != nil {
		s.log.Error("telemetry write failed", zap.Error(err))
	}
	s.pending = append(s.pending, ws)
	s.log.Debug("telemetry window",
		zap.Uint64("end", ws.WindowEndTick),
		zap.Int("linked", ws.LinkedActors),
		zap.Int("live_nodes", ws.LiveNodes),
		zap.Float64("nodes_per_actor", ws.NodesPerActorMean),
		zap.Int("traces", ws.Traces),
	)
}

// Drain hands over the windows closed since the last call.
func (s *TelemetrySystem) Drain() []telemetry.WindowStats {
	out := s.pending
	s.pending = nil
	return out
}

func (s *TelemetrySystem) Windows() int { return s.windows }
