package render

import (
	"time"

	"git.lost.host/meutraa/scanline/internal/play"
	"github.com/gdamore/tcell/v2"
)

type Renderer interface {
	Init() error
	Deinit() error
	AddDecoration(col, row int, content string, style tcell.Style, frames int)
	RenderLoop(period time.Duration, render func(now time.Time) bool)
	Fill(row, column int, message string)
	FillStyle(row, column int, style tcell.Style, message string)
	Draw(snap play.Snapshot, events []play.NoteEvent)
	Viewport() Viewport
}
