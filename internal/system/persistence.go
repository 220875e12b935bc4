package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	coresys "github.com/blocklink/worldindex/internal/core/system"
	"github.com/blocklink/worldindex/internal/telemetry"
)

// WindowStore is where closed telemetry windows end up.
type WindowStore interface {
	SaveWindows(ctx context.Context, runID int64, windows []telemetry.WindowStats) error
}

// PersistenceSystem periodically saves the windows TelemetrySystem closed.
// Failed batches stay queued and are retried on the next save.
// Phase 4 (Persist).
type PersistenceSystem struct {
	telemetry *TelemetrySystem
	store     WindowStore
	runID     int64
	log       *zap.Logger
	queued    []telemetry.WindowStats
	tickCount int
	interval  int // save every N ticks
	saved     int
}

func NewPersistenceSystem(ts *TelemetrySystem, store WindowStore, runID int64, log *zap.Logger, intervalTicks int) *PersistenceSystem {
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	return &PersistenceSystem{
		telemetry: ts,
		store:     store,
		runID:     runID,
		log:       log,
		interval:  intervalTicks,
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.save()
}

// Flush saves everything queued. Called on shutdown.
func (s *PersistenceSystem) Flush() {
	s.save()
}

func (s *PersistenceSystem) save() {
	s.queued = append(s.queued, s.telemetry.Drain()...)
	if len(s.queued) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.SaveWindows(ctx, s.runID, s.queued); err != nil {
		s.log.Error("save telemetry windows failed",
			zap.Int("queued", len(s.queued)),
			zap.Error(err),
		)
		return
	}
	s.saved += len(s.queued)
	s.queued = s.queued[:0]
}

// Saved is the number of windows stored so far.
func (s *PersistenceSystem) Saved() int { return s.saved }
