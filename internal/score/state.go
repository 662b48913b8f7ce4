package score

import (
	"math"
	"strconv"

	"git.lost.host/meutraa/scanline/internal/game"
)

const DefaultMaxHealth = 1000.0

type Judgement struct {
	Judged bool
	Type   game.NoteType
	Grade  game.Grade
	Error  float64 // Seconds, positive when late
}

// PlayState aggregates every judgement of one session. It is written only
// by the session tick and read through View.
type PlayState struct {
	Rules     game.Rules
	MaxHealth float64

	NoteTotal  int
	Judgements map[int]*Judgement
	Cleared    int

	Score              float64
	Accuracy           float64
	Combo              int
	MaxCombo           int
	Health             float64
	Multiplier         float64
	CanAchieveMaxScore bool
	ShouldFail         bool

	Counts map[game.Grade]int

	accumulatedAccuracy float64
	multiplierFactor    float64
}

func New(noteIDs []int, rules game.Rules) *PlayState {
	s := &PlayState{
		Rules:              rules,
		MaxHealth:          DefaultMaxHealth,
		Health:             DefaultMaxHealth,
		NoteTotal:          len(noteIDs),
		Judgements:         make(map[int]*Judgement, len(noteIDs)),
		Multiplier:         1,
		CanAchieveMaxScore: true,
		Counts:             map[game.Grade]int{},
		multiplierFactor:   math.Sqrt(float64(len(noteIDs))) / 3,
	}
	for _, id := range noteIDs {
		s.Judgements[id] = &Judgement{}
	}
	return s
}

func ForChart(chart *game.Chart, rules game.Rules) *PlayState {
	return New(chart.Chronological, rules)
}

func (s *PlayState) ranked() bool {
	return s.Rules.Mode.Ranked()
}

func (s *PlayState) IsJudged(id int) bool {
	j, ok := s.Judgements[id]
	return ok && j.Judged
}

func (s *PlayState) Grade(id int) game.Grade {
	if j, ok := s.Judgements[id]; ok {
		return j.Grade
	}
	return game.Undetermined
}

// RecordJudgment applies the grade of a freshly cleared note. It returns
// false, changing nothing, when the note is unknown or already judged.
func (s *PlayState) RecordJudgment(id int, kind game.NoteType, grade game.Grade, timingError, greatWeight float64) bool {
	if grade == game.Undetermined {
		panic(&game.InvariantViolation{Reason: "note " + strconv.Itoa(id) + " recorded without a grade"})
	}
	j, ok := s.Judgements[id]
	if !ok || j.Judged {
		return false
	}
	j.Judged = true
	j.Type = kind
	j.Grade = grade
	j.Error = timingError

	s.Cleared++
	s.Counts[grade]++

	if grade.BreaksCombo() {
		s.Combo = 0
	} else {
		s.Combo++
		if s.Combo > s.MaxCombo {
			s.MaxCombo = s.Combo
		}
	}

	if s.ranked() {
		if grade != game.Perfect {
			s.CanAchieveMaxScore = false
		}
	} else if grade != game.Perfect && grade != game.Great {
		s.CanAchieveMaxScore = false
	}

	n := float64(s.NoteTotal)
	if s.ranked() {
		s.Multiplier += multiplierDelta(grade) * s.multiplierFactor
		s.Multiplier = math.Max(0, math.Min(1, s.Multiplier))

		weight := ScoreWeight(grade, true)
		if grade == game.Great {
			weight += (ScoreWeight(game.Perfect, true) - weight) * greatWeight
		}
		s.Score += MaxScore / n * weight * s.Multiplier
	} else {
		s.Score += 900000/n*ScoreWeight(grade, false) +
			100000/(n*(n+1)/2)*float64(s.Combo)
	}
	if s.Score > 999500 && s.Cleared == s.NoteTotal && s.CanAchieveMaxScore {
		s.Score = MaxScore
	}
	s.Score = math.Max(0, math.Min(MaxScore, s.Score))

	s.accumulatedAccuracy += 100 * AccuracyWeight(grade)
	s.Accuracy = s.accumulatedAccuracy / float64(s.Cleared)

	mods := s.Rules.Mods
	if mods.Has(game.Hard) || mods.Has(game.ExHard) {
		table := hardHealth
		if mods.Has(game.ExHard) {
			table = exHardHealth
		}
		s.Health += table.change(kind, grade, s.ranked(), s.MaxHealth)
		s.Health = math.Max(0, math.Min(s.MaxHealth, s.Health))
		if s.Health <= 0 {
			s.ShouldFail = true
		}
	}
	if mods.Has(game.AllPerfect) && grade != game.Perfect ||
		mods.Has(game.FullCombo) && grade.BreaksCombo() {
		s.ShouldFail = true
	}
	return true
}

// IsCompleted reports whether every note has been judged.
func (s *PlayState) IsCompleted() bool {
	return s.Cleared == s.NoteTotal
}

// EarlyLate counts imperfect hits on either side, leaving out Misses.
func (s *PlayState) EarlyLate() (early, late int) {
	for _, j := range s.Judgements {
		if !j.Judged || j.Grade == game.Perfect || j.Grade == game.Miss {
			continue
		}
		if j.Error < 0 {
			early++
		} else if j.Error > 0 {
			late++
		}
	}
	return early, late
}

// TimingError is the mean and standard deviation of the error of every
// judged note that was not missed.
func (s *PlayState) TimingError() (mean, stdev float64) {
	errors := []float64{}
	for _, j := range s.Judgements {
		if j.Judged && j.Grade != game.Miss {
			errors = append(errors, j.Error)
		}
	}
	if len(errors) == 0 {
		return 0, 0
	}
	for _, e := range errors {
		mean += e
	}
	mean /= float64(len(errors))
	for _, e := range errors {
		stdev += (e - mean) * (e - mean)
	}
	return mean, math.Sqrt(stdev / float64(len(errors)))
}

// PlayStateView is a copy of the aggregate safe to hand to another
// goroutine.
type PlayStateView struct {
	NoteTotal          int
	Cleared            int
	Score              float64
	Accuracy           float64
	Combo              int
	MaxCombo           int
	Health             float64
	MaxHealth          float64
	Multiplier         float64
	CanAchieveMaxScore bool
	ShouldFail         bool
	Counts             map[game.Grade]int
	Grades             map[int]game.Grade
	Early, Late        int
	MeanError          float64
	StdError           float64
	Rank               string
}

func (s *PlayState) View() PlayStateView {
	v := PlayStateView{
		NoteTotal:          s.NoteTotal,
		Cleared:            s.Cleared,
		Score:              s.Score,
		Accuracy:           s.Accuracy,
		Combo:              s.Combo,
		MaxCombo:           s.MaxCombo,
		Health:             s.Health,
		MaxHealth:          s.MaxHealth,
		Multiplier:         s.Multiplier,
		CanAchieveMaxScore: s.CanAchieveMaxScore,
		ShouldFail:         s.ShouldFail,
		Counts:             make(map[game.Grade]int, len(s.Counts)),
		Grades:             make(map[int]game.Grade, len(s.Judgements)),
		Rank:               Rank(s.Score),
	}
	for g, c := range s.Counts {
		v.Counts[g] = c
	}
	for id, j := range s.Judgements {
		v.Grades[id] = j.Grade
	}
	v.Early, v.Late = s.EarlyLate()
	v.MeanError, v.StdError = s.TimingError()
	return v
}
