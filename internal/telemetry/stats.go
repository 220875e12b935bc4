package telemetry

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated index statistics for a window of ticks.
type WindowStats struct {
	WindowStartTick uint64 `csv:"-"`
	WindowEndTick   uint64 `csv:"window_end"`

	// Occupancy at window end
	LinkedActors  int `csv:"linked"`
	LiveNodes     int `csv:"live_nodes"`
	FreeNodes     int `csv:"free_nodes"`
	TouchNodes    int `csv:"touch_nodes"`
	OccupiedCells int `csv:"occupied_cells"`

	// Block nodes per linked actor, sampled every tick
	NodesPerActorMean float64 `csv:"nodes_per_actor_mean"`
	NodesPerActorStd  float64 `csv:"nodes_per_actor_std"`

	// Traces during the window
	Traces                int     `csv:"traces"`
	InterceptsPerTrace    float64 `csv:"intercepts_per_trace"`
	InterceptsPerTraceP90 float64 `csv:"intercepts_per_trace_p90"`

	// Events during the window
	TargetsAcquired int `csv:"targets_acquired"`
	SightBlocked    int `csv:"sight_blocked"`
	Removed         int `csv:"removed"`
}

// meanStd returns the mean and sample standard deviation, zero for an
// empty sample.
func meanStd(xs []float64) (mean, std float64) {
	switch len(xs) {
	case 0:
		return 0, 0
	case 1:
		return xs[0], 0
	}
	return stat.MeanStdDev(xs, nil)
}

// quantile returns the p-quantile of xs (sorted in place).
func quantile(p float64, xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	slices.Sort(xs)
	return stat.Quantile(p, stat.Empirical, xs, nil)
}
