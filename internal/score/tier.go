package score

import (
	"math"

	"git.lost.host/meutraa/scanline/internal/game"
	"github.com/pkg/errors"
)

// Share of lost health given back between two stages
const tierRefill = 0.3

// TierState runs several charts back to back as stages sharing health and
// combo.
type TierState struct {
	Stages    []*PlayState
	StageMax  int
	Threshold float64 // Accuracy fraction needed to pass

	Combo     int
	MaxCombo  int
	Health    float64
	MaxHealth float64

	Failed     bool
	Completion float64 // 0 when failed, otherwise between 1 and 2
}

func NewTier(stages int, threshold, maxHealth float64) *TierState {
	return &TierState{
		StageMax:  stages,
		Threshold: threshold,
		Health:    maxHealth,
		MaxHealth: maxHealth,
	}
}

// Begin adds the next stage, handing it the carried health and combo.
func (t *TierState) Begin(stage *PlayState) error {
	if len(t.Stages) >= t.StageMax {
		return errors.Errorf("tier has only %d stages", t.StageMax)
	}
	if t.Failed {
		return errors.New("tier already failed")
	}
	stage.MaxHealth = t.MaxHealth
	stage.Health = t.Health
	stage.Combo = t.Combo
	stage.MaxCombo = t.MaxCombo
	t.Stages = append(t.Stages, stage)
	return nil
}

// End takes the result of the current stage and refills part of the lost
// health for the next one.
func (t *TierState) End() {
	if len(t.Stages) == 0 {
		return
	}
	stage := t.Stages[len(t.Stages)-1]
	t.Combo = stage.Combo
	t.MaxCombo = stage.MaxCombo
	if stage.ShouldFail || !stage.IsCompleted() {
		t.Failed = true
		t.Health = stage.Health
		return
	}
	t.Health = math.Min(t.MaxHealth, stage.Health+(t.MaxHealth-stage.Health)*tierRefill)
}

func (t *TierState) IsCompleted() bool {
	if len(t.Stages) < t.StageMax {
		return false
	}
	for _, s := range t.Stages {
		if !s.IsCompleted() {
			return false
		}
	}
	return true
}

// AverageAccuracy over the stages as a fraction.
func (t *TierState) AverageAccuracy() float64 {
	if len(t.Stages) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range t.Stages {
		sum += s.Accuracy / 100
	}
	return sum / float64(len(t.Stages))
}

// Complete computes the completion once every stage has ended.
func (t *TierState) Complete() (float64, error) {
	if !t.IsCompleted() {
		return 0, errors.New("tier is not completed")
	}
	if t.Failed || t.AverageAccuracy() < t.Threshold {
		t.Completion = 0
		return 0, nil
	}
	c := 1.0
	if t.Threshold < 1 {
		c = (t.AverageAccuracy() - t.Threshold) / (1 - t.Threshold)
	}
	t.Completion = 1 + math.Max(0, math.Min(1, c))
	return t.Completion, nil
}

func (t *TierState) Counts() map[game.Grade]int {
	counts := map[game.Grade]int{}
	for _, s := range t.Stages {
		for g, c := range s.Counts {
			counts[g] += c
		}
	}
	return counts
}

func (t *TierState) EarlyLate() (early, late int) {
	for _, s := range t.Stages {
		e, l := s.EarlyLate()
		early += e
		late += l
	}
	return early, late
}
