package play

import "git.lost.host/meutraa/scanline/internal/game"

// Geometry decides whether a pointer touches a note centred at center.
type Geometry interface {
	Collides(kind game.NoteType, center, pos game.Vec2) bool
}

const (
	DefaultHitbox = 1.3333
	LargeHitbox   = 1.5555
)

// CircleGeometry gives each note type a round hitbox.
type CircleGeometry struct {
	Radii map[game.NoteType]float64
}

// NewCircleGeometry sizes notes for a view baseSize world units high from
// the middle, scaling every hitbox by multiplier.
func NewCircleGeometry(baseSize, multiplier float64) CircleGeometry {
	click := baseSize * 2 * (7.0 / 9.0) / 5 * 1.2675
	sizes := map[game.NoteType]float64{
		game.Click:     click,
		game.Hold:      click,
		game.LongHold:  click,
		game.DragHead:  click * 0.8,
		game.DragChild: click * 0.65,
		game.Flick:     click * 1.125,
	}
	g := CircleGeometry{Radii: make(map[game.NoteType]float64, len(sizes))}
	for kind, size := range sizes {
		g.Radii[kind] = size / 2 * multiplier
	}
	return g
}

func (g CircleGeometry) Collides(kind game.NoteType, center, pos game.Vec2) bool {
	r, ok := g.Radii[kind]
	if !ok {
		return false
	}
	return pos.Sub(center).Len() <= r
}
