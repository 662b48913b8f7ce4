package score

import (
	"math"
	"testing"

	"git.lost.host/meutraa/scanline/internal/game"
)

func playStage(tier *TierState, grades ...game.Grade) *PlayState {
	s := newState(len(grades), game.Tier, game.Hard)
	if err := tier.Begin(s); nil != err {
		panic(err)
	}
	for i, g := range grades {
		s.RecordJudgment(i, game.Click, g, 0, 0)
	}
	tier.End()
	return s
}

func TestTierHealthRefill(t *testing.T) {
	tier := NewTier(2, 0.9, 1000)
	playStage(tier, game.Miss, game.Perfect)
	// 1000 - 80 + 1, then 30% of the 79 lost comes back
	if math.Abs(tier.Health-(921+79*0.3)) > 1e-9 {
		t.Log("health", tier.Health)
		t.Fail()
	}
	if tier.Combo != 1 || tier.MaxCombo != 1 {
		t.Log("combo", tier.Combo, tier.MaxCombo)
		t.Fail()
	}

	second := playStage(tier, game.Perfect, game.Perfect)
	if second.MaxCombo != 3 {
		t.Log("combo not carried", second.MaxCombo)
		t.Fail()
	}
	if _, err := tier.Complete(); nil != err {
		t.Fatal(err)
	}
	// Accuracy is 50% and 100%, averaging below the threshold
	if tier.Completion != 0 {
		t.Log("completion", tier.Completion)
		t.Fail()
	}
	if tier.Counts()[game.Perfect] != 3 {
		t.Log(tier.Counts())
		t.Fail()
	}
}

func TestTierCompletion(t *testing.T) {
	tier := NewTier(2, 0.8, 1000)
	if _, err := tier.Complete(); nil == err {
		t.Log("completed before any stage")
		t.Fail()
	}
	playStage(tier, game.Perfect, game.Great)
	playStage(tier, game.Perfect, game.Perfect)
	if err := tier.Begin(newState(1, game.Tier)); nil == err {
		t.Log("began a third stage")
		t.Fail()
	}
	c, err := tier.Complete()
	if nil != err {
		t.Fatal(err)
	}
	// Average accuracy (0.85 + 1) / 2
	expected := 1 + (0.925-0.8)/(1-0.8)
	if math.Abs(c-expected) > 1e-9 {
		t.Log("completion", c, expected)
		t.Fail()
	}
}

func TestTierFailure(t *testing.T) {
	tier := NewTier(3, 0.5, 1000)
	s := newState(2, game.Tier, game.AllPerfect)
	if err := tier.Begin(s); nil != err {
		t.Fatal(err)
	}
	s.RecordJudgment(0, game.Click, game.Good, 0, 0)
	tier.End()
	if !tier.Failed {
		t.Fatal("tier should have failed")
	}
	if err := tier.Begin(newState(1, game.Tier)); nil == err {
		t.Log("began a stage after failing")
		t.Fail()
	}
}
