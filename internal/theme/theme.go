package theme

import (
	"git.lost.host/meutraa/scanline/internal/game"
	"github.com/gdamore/tcell/v2"
)

type Theme interface {
	RenderNote(kind game.NoteType, progress float64) (string, tcell.Style)
	RenderHoldBody(kind game.NoteType, holding bool) (string, tcell.Style)
	RenderScanline(direction int) (string, tcell.Style)
	RenderGrade(g game.Grade) (string, tcell.Style)
	Text() tcell.Style
}
