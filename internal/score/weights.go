package score

import "git.lost.host/meutraa/scanline/internal/game"

const MaxScore = 1000000.0

// ScoreWeight is the share of a note's score a grade earns.
func ScoreWeight(g game.Grade, ranked bool) float64 {
	switch g {
	case game.Perfect:
		return 1
	case game.Great:
		if ranked {
			return 0.9
		}
		return 1
	case game.Good:
		if ranked {
			return 0.5
		}
		return 0.7
	case game.Bad:
		if ranked {
			return 0.1
		}
		return 0.3
	}
	return 0
}

// AccuracyWeight is the same in every mode.
func AccuracyWeight(g game.Grade) float64 {
	switch g {
	case game.Perfect:
		return 1
	case game.Great:
		return 0.7
	case game.Good:
		return 0.3
	}
	return 0
}

// Per note multiplier changes before scaling by the note count
func multiplierDelta(g game.Grade) float64 {
	switch g {
	case game.Perfect:
		return 0.002
	case game.Great:
		return 0.0005
	case game.Good:
		return -0.005
	case game.Bad:
		return -0.025
	}
	return -0.05
}

var ranks = []struct {
	name string
	min  float64
}{
	{"MAX", MaxScore},
	{"SSS", 999000},
	{"SS", 995000},
	{"S", 990000},
	{"AA", 950000},
	{"A", 900000},
	{"B", 800000},
	{"C", 700000},
	{"D", 600000},
}

// Rank is the letter grade of a final score.
func Rank(score float64) string {
	for _, r := range ranks {
		if score >= r.min {
			return r.name
		}
	}
	return "F"
}

type healthKind int

const (
	absolute healthKind = iota
	percentage
)

type healthMod struct {
	value float64
	kind  healthKind
}

// Columns are Perfect, ranked Great, Great, Good, Bad, Miss. Ranked Good
// and Bad read the column of the grade above them.
type healthTable map[game.NoteType][6]healthMod

func healthColumn(g game.Grade, ranked bool) int {
	switch g {
	case game.Perfect:
		return 0
	case game.Great:
		if ranked {
			return 1
		}
		return 2
	case game.Good:
		if ranked {
			return 2
		}
		return 3
	case game.Bad:
		if ranked {
			return 3
		}
		return 4
	}
	return 5
}

func abs(v float64) healthMod { return healthMod{v, absolute} }
func pct(v float64) healthMod { return healthMod{v, percentage} }

var (
	holdHard   = [6]healthMod{abs(0.5), abs(0.25), pct(-1.5), pct(-4), pct(-9), pct(-12)}
	holdExHard = [6]healthMod{abs(0.5), abs(0), pct(-6), pct(-12), pct(-20), pct(-25)}

	hardHealth = healthTable{
		game.Click:     {abs(1), abs(0.5), pct(-1), pct(-3), pct(-6), pct(-8)},
		game.Hold:      holdHard,
		game.LongHold:  holdHard,
		game.DragHead:  {abs(0.2), abs(0), abs(0), abs(0), abs(0), pct(-8)},
		game.DragChild: {abs(0.1), abs(0), abs(0), abs(0), abs(0), pct(-2.4)},
		game.Flick:     {abs(1), abs(0.5), pct(-0.75), pct(-2.25), pct(-4), pct(-6)},
	}
	exHardHealth = healthTable{
		game.Click:     {abs(1), abs(0), pct(-4), pct(-8), pct(-15), pct(-20)},
		game.Hold:      holdExHard,
		game.LongHold:  holdExHard,
		game.DragHead:  {abs(0.2), abs(0), abs(0), abs(0), abs(0), pct(-20)},
		game.DragChild: {abs(0.1), abs(0), abs(0), abs(0), abs(0), pct(-6)},
		game.Flick:     {abs(1), abs(0), pct(-3), pct(-6), pct(-12), pct(-15)},
	}
)

func (t healthTable) change(kind game.NoteType, g game.Grade, ranked bool, maxHealth float64) float64 {
	mods, ok := t[kind]
	if !ok {
		return 0
	}
	mod := mods[healthColumn(g, ranked)]
	if mod.kind == percentage {
		return mod.value / 100 * maxHealth
	}
	return mod.value
}
