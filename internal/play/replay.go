package play

import (
	"io/ioutil"
	"log"
	"sort"

	"git.lost.host/meutraa/scanline/internal/game"
	"git.lost.host/meutraa/scanline/internal/score"
)

// ReplayStep is the tick spacing used between recorded inputs.
const ReplayStep = 1.0 / 120

// Replay plays a recorded input list against the chart without a clock
// and returns the final aggregate. Inputs are applied on a tick at their
// recorded time, so a session replayed with its own recording ends in the
// same state.
func Replay(chart *game.Chart, options Options, inputs []game.Input) score.PlayStateView {
	if nil == options.Logger {
		options.Logger = log.New(ioutil.Discard, "", 0)
	}
	s := NewSession(chart, options)

	sorted := make([]game.Input, len(inputs))
	copy(sorted, inputs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time < sorted[j].Time
	})

	end := chart.EndTime() + 1
	t := -SpawnAhead
	next := 0
	for t <= end && s.State() != StateCompleted && s.State() != StateFailed {
		step := t + ReplayStep
		if next < len(sorted) && sorted[next].Time < step {
			step = sorted[next].Time
			if step < t {
				step = t
			}
		}
		for next < len(sorted) && sorted[next].Time <= step {
			s.HandleInput(sorted[next])
			next++
		}
		s.Tick(step)
		t = step
	}
	return s.state.View()
}
