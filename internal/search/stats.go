package search

import (
	"context"
	"log/slog"
	"time"
)

type Stats struct {
	Nodes          int64           `json:"nodes"`
	Evaluations    int64           `json:"evaluations"`
	Cutoffs        int64           `json:"cutoffs"`
	Wins           int64           `json:"wins"`
	TargetDepth    int             `json:"target_depth"`
	CompletedDepth int             `json:"completed_depth"`
	TimedOut       bool            `json:"timed_out"`
	Elapsed        time.Duration   `json:"elapsed"`
	DepthDurations []time.Duration `json:"depth_durations"`
}

func logSearchStats(logger *slog.Logger, tag string, stats Stats) {
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	nps := 0.0
	if stats.Elapsed > 0 {
		nps = float64(stats.Nodes) / stats.Elapsed.Seconds()
	}
	depthTimes := make([]int64, len(stats.DepthDurations))
	for i, d := range stats.DepthDurations {
		depthTimes[i] = d.Milliseconds()
	}
	logger.Debug("search finished",
		"tag", tag,
		"elapsed_ms", stats.Elapsed.Milliseconds(),
		"depth", stats.TargetDepth,
		"completed", stats.CompletedDepth,
		"nodes", stats.Nodes,
		"nps", int64(nps),
		"evals", stats.Evaluations,
		"cutoffs", stats.Cutoffs,
		"wins", stats.Wins,
		"timed_out", stats.TimedOut,
		"depth_times_ms", depthTimes,
	)
}
