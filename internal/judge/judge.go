package judge

import (
	"math"

	"git.lost.host/meutraa/scanline/internal/game"
)

// A band awards grade when the timing error is under limit, or equal to it
// when inclusive.
type band struct {
	grade     game.Grade
	limit     float64
	inclusive bool
}

func (b band) contains(d float64) bool {
	if b.inclusive {
		return d <= b.limit
	}
	return d < b.limit
}

// Windows holds the bands for each side of the ideal time, best grade
// first.
type Windows struct {
	early []band
	late  []band

	// Whether a Great is weighted towards Perfect by how close it was
	weighted bool
}

var (
	standard = Windows{
		early: []band{
			{game.Perfect, 0.040, true},
			{game.Great, 0.070, false},
			{game.Good, 0.200, false},
			{game.Bad, 0.400, false},
		},
		late: []band{
			{game.Perfect, 0.040, true},
			{game.Great, 0.070, false},
			{game.Good, 0.150, false},
			{game.Bad, 0.200, false},
		},
		weighted: true,
	}
	practice = Windows{
		early: []band{
			{game.Perfect, 0.070, false},
			{game.Great, 0.200, false},
			{game.Good, 0.400, false},
			{game.Bad, 0.800, false},
		},
		late: []band{
			{game.Perfect, 0.070, false},
			{game.Great, 0.150, false},
			{game.Good, 0.200, false},
			{game.Bad, 0.300, false},
		},
	}
	flick = Windows{
		early: []band{{game.Perfect, 0.120, true}, {game.Great, 0.400, false}},
		late:  []band{{game.Perfect, 0.060, true}, {game.Great, 0.150, false}},
	}
	flickPractice = Windows{
		early: []band{{game.Perfect, 0.200, true}, {game.Great, 0.800, false}},
		late:  []band{{game.Perfect, 0.100, true}, {game.Great, 0.300, false}},
	}
	drag = Windows{
		early: []band{{game.Perfect, 0.500, false}},
		late:  []band{{game.Perfect, 0.200, false}},
	}
)

// For returns the windows used to judge a note of type t in mode.
func For(t game.NoteType, mode game.Mode) Windows {
	switch {
	case t.IsDrag():
		return drag
	case t == game.Flick && mode == game.Practice:
		return flickPractice
	case t == game.Flick:
		return flick
	case mode == game.Practice:
		return practice
	}
	return standard
}

// Judge grades a timing error. timeUntilStart is positive for early
// touches and negative for late ones. A touch earlier than every window is
// Undetermined and should not consume the note; a touch later than every
// window is a Miss.
func (w Windows) Judge(timeUntilStart float64) (game.Grade, float64) {
	bands, outside := w.early, game.Undetermined
	if timeUntilStart < 0 {
		bands, outside = w.late, game.Miss
	}
	d := math.Abs(timeUntilStart)
	for _, b := range bands {
		if !b.contains(d) {
			continue
		}
		if b.grade == game.Great && w.weighted {
			return b.grade, GreatWeight(d)
		}
		return b.grade, 0
	}
	return outside, 0
}

// GreatWeight is 1 at the Perfect boundary, falling to 0 at the Great
// boundary.
func GreatWeight(d float64) float64 {
	return clamp01(1 - (d-0.040)/(0.070-0.040))
}

func Timing(t game.NoteType, mode game.Mode, timeUntilStart float64) (game.Grade, float64) {
	return For(t, mode).Judge(timeUntilStart)
}

// MissThreshold is how long after its start a note is left before it is
// missed.
func MissThreshold(t game.NoteType) float64 {
	if t == game.DragChild {
		return 0.150
	}
	return 0.300
}

// Fractions of a hold's duration that must be held for each grade.
var holdRatios = []struct {
	grade game.Grade
	ratio float64
}{
	{game.Perfect, 0.95},
	{game.Great, 0.70},
	{game.Good, 0.50},
	{game.Bad, 0.30},
}

const ratioEpsilon = 1e-9

// Hold grades a hold note on how much of duration was held. In ranked
// modes a press that started lateBy seconds after the start is graded on
// the late table as well and the worse grade is kept.
func Hold(mode game.Mode, duration, held, lateBy float64) (game.Grade, float64) {
	grade, weight := holdRatio(duration, held)
	if !mode.Ranked() || lateBy <= 0 {
		return grade, weight
	}
	late, lateWeight := standard.Judge(-lateBy)
	if late < grade {
		return late, lateWeight
	}
	return grade, weight
}

func holdRatio(duration, held float64) (game.Grade, float64) {
	if duration <= 0 {
		return game.Perfect, 0
	}
	ratio := held / duration
	for _, r := range holdRatios {
		if ratio+ratioEpsilon >= r.ratio {
			if r.grade == game.Great {
				return r.grade, clamp01((ratio - 0.70) / (0.95 - 0.70))
			}
			return r.grade, 0
		}
	}
	return game.Miss, 0
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}

// Policy is the judgement policy of one session, with the player's
// calibration offset applied to every timing.
type Policy struct {
	Mode   game.Mode
	Offset float64
}

func (p Policy) Timing(t game.NoteType, timeUntilStart float64) (game.Grade, float64) {
	return Timing(t, p.Mode, timeUntilStart+p.Offset)
}

// Missed reports whether a note starting in timeUntilStart seconds is past
// its miss threshold.
func (p Policy) Missed(t game.NoteType, timeUntilStart float64) bool {
	return -(timeUntilStart + p.Offset) > MissThreshold(t)
}

func (p Policy) Hold(duration, held, lateBy float64) (game.Grade, float64) {
	return Hold(p.Mode, duration, held, lateBy)
}
