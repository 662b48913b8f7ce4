package render

import (
	"math"

	"git.lost.host/meutraa/scanline/internal/game"
	"git.lost.host/meutraa/scanline/internal/parser"
)

// Viewport maps world space, y pointing up with the origin in the middle,
// onto terminal cells.
type Viewport struct {
	Width, Height int
	Layout        parser.Layout
}

func (v Viewport) halfWidth() float64 {
	return v.Layout.BaseSize * v.Layout.ScreenRatio
}

func (v Viewport) Cell(p game.Vec2) (col, row int) {
	col = int(math.Floor((p.X/v.halfWidth() + 1) / 2 * float64(v.Width)))
	row = int(math.Floor((1 - p.Y/v.Layout.BaseSize) / 2 * float64(v.Height)))
	return col, row
}

// World is the centre of a cell in world space.
func (v Viewport) World(col, row int) game.Vec2 {
	if v.Width <= 0 || v.Height <= 0 {
		return game.Vec2{}
	}
	x := (2*(float64(col)+0.5)/float64(v.Width) - 1) * v.halfWidth()
	y := (1 - 2*(float64(row)+0.5)/float64(v.Height)) * v.Layout.BaseSize
	return game.Vec2{X: x, Y: y}
}

// ScanlineRow is the row of the scanline progress through a page scanned
// in direction.
func (v Viewport) ScanlineRow(direction int, progress float64) int {
	l := v.Layout
	y := l.VerticalRatio*float64(direction)*(-l.BaseSize+2*l.BaseSize*progress) + l.VerticalOffset
	_, row := v.Cell(game.Vec2{Y: y})
	return row
}

func (v Viewport) Contains(col, row int) bool {
	return col >= 0 && row >= 0 && col < v.Width && row < v.Height
}
