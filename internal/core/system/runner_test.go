package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	phase Phase
	name  string
	log   *[]string
}

func (r recorder) Phase() Phase { return r.phase }
func (r recorder) Update(time.Duration) {
	*r.log = append(*r.log, r.name)
}

func TestRunnerPhaseOrder(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{PhaseCleanup, "cleanup", &log})
	r.Register(recorder{PhaseThink, "hunt", &log})
	r.Register(recorder{PhaseEvents, "events", &log})
	r.Register(recorder{PhaseThink, "sight", &log})

	r.Tick(time.Millisecond)
	assert.Equal(t, []string{"events", "hunt", "sight", "cleanup"}, log)
	assert.Equal(t, uint64(1), r.Ticks())

	log = log[:0]
	r.TickPhase(PhaseThink, time.Millisecond)
	assert.Equal(t, []string{"hunt", "sight"}, log)
	assert.Equal(t, uint64(1), r.Ticks())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "think", PhaseThink.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
