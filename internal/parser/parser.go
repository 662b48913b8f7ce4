package parser

import "git.lost.host/meutraa/scanline/internal/game"

type Parser interface {
	Parse(data []byte) (*game.Chart, error)
	ParseFile(file string) (*game.Chart, error)
}

// Layout maps chart space onto world space, the coordinate system touch
// positions are reported in.
type Layout struct {
	BaseSize        float64 // Half the visible height in world units
	HorizontalRatio float64
	VerticalRatio   float64
	VerticalOffset  float64
	ScreenRatio     float64 // Width over height
}

func DefaultLayout() Layout {
	return Layout{
		BaseSize:        5,
		HorizontalRatio: 0.85,
		VerticalRatio:   6.5 / 9.0,
		VerticalOffset:  0,
		ScreenRatio:     16.0 / 9.0,
	}
}

type Options struct {
	FlipX, FlipY bool

	// Multiplies every note speed, 1.5 with Fast and 0.75 with Slow
	ApproachMultiplier float64

	Layout Layout
}

func DefaultOptions() Options {
	return Options{ApproachMultiplier: 1, Layout: DefaultLayout()}
}

// OptionsFor derives the parse options the given mods ask for.
func OptionsFor(mods game.Mods) Options {
	o := DefaultOptions()
	o.FlipX = mods.Has(game.FlipX) || mods.Has(game.FlipAll)
	o.FlipY = mods.Has(game.FlipY) || mods.Has(game.FlipAll)
	if mods.Has(game.Fast) {
		o.ApproachMultiplier = 1.5
	} else if mods.Has(game.Slow) {
		o.ApproachMultiplier = 0.75
	}
	return o
}
