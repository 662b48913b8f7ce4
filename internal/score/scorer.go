package score

import (
	"time"

	"git.lost.host/meutraa/scanline/internal/game"
)

type Store interface {
	Init() error
	Deinit()

	// Save the result and inputs of a finished performance
	Save(history *History) error

	// Load every previous performance of the chart with this checksum
	Load(checksum string) []History
}

type History struct {
	ID       string // Session id
	Checksum string
	Mode     game.Mode
	Mods     game.Mods
	Rate     float64
	Offset   float64
	Hitbox   float64 // Hit radius multiplier, 0 for plays saved without one
	Score    float64
	Accuracy float64
	MaxCombo int
	Rank     string
	PlayedAt time.Time
	Inputs   []game.Input
}

func (h *History) Apply(view PlayStateView) {
	h.Score = view.Score
	h.Accuracy = view.Accuracy
	h.MaxCombo = view.MaxCombo
	h.Rank = view.Rank
}
