package system

import "time"

// Phase orders systems within a tick.
type Phase int

const (
	PhaseEvents    Phase = iota // deliver last tick's events
	PhaseMove                   // relink moved objects
	PhaseThink                  // ring searches and sight traces
	PhaseTelemetry              // sample index stats
	PhasePersist                // flush telemetry windows
	PhaseCleanup                // destroy queued entities
)

var phaseNames = [...]string{"events", "move", "think", "telemetry", "persist", "cleanup"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// System is implemented by everything the Runner ticks.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
