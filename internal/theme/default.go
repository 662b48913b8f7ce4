package theme

import (
	"git.lost.host/meutraa/scanline/internal/game"
	"github.com/gdamore/tcell/v2"
)

type DefaultTheme struct {
}

func (t *DefaultTheme) RenderNote(kind game.NoteType, progress float64) (string, tcell.Style) {
	style := tcell.StyleDefault.Foreground(getNoteColor(kind))
	// Notes fade in until they reach full size at their start time
	if progress < 0.5 {
		style = style.Dim(true)
	}
	return noteSyms[kind], style
}

func (t *DefaultTheme) RenderHoldBody(kind game.NoteType, holding bool) (string, tcell.Style) {
	style := tcell.StyleDefault.Foreground(getNoteColor(kind))
	if holding {
		return holdSym, style.Bold(true)
	}
	return holdSym, style.Dim(true)
}

func (t *DefaultTheme) RenderScanline(direction int) (string, tcell.Style) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	if direction < 0 {
		return scanlineDown, style
	}
	return scanlineUp, style
}

func (t *DefaultTheme) RenderGrade(g game.Grade) (string, tcell.Style) {
	col, ok := gradeColors[g]
	if !ok {
		col = gradeColors[game.Miss]
	}
	return g.String(), tcell.StyleDefault.Foreground(col).Bold(true)
}

func (t *DefaultTheme) Text() tcell.Style {
	return tcell.StyleDefault.Foreground(tcell.ColorWhite)
}

const (
	holdSym      = "┃"
	scanlineUp   = "▔"
	scanlineDown = "▁"
)

var (
	noteSyms = map[game.NoteType]string{
		game.Click:     "⬤",
		game.Hold:      "◉",
		game.LongHold:  "◎",
		game.DragHead:  "◆",
		game.DragChild: "◇",
		game.Flick:     "◀▶",
	}
	noteColors = map[game.NoteType]tcell.Color{
		game.Click:     tcell.NewRGBColor(53, 161, 255),
		game.Hold:      tcell.NewRGBColor(255, 222, 40),
		game.LongHold:  tcell.NewRGBColor(244, 171, 35),
		game.DragHead:  tcell.NewRGBColor(171, 71, 188),
		game.DragChild: tcell.NewRGBColor(206, 147, 216),
		game.Flick:     tcell.NewRGBColor(38, 198, 218),
	}
	gradeColors = map[game.Grade]tcell.Color{
		game.Perfect: tcell.NewHexColor(0x5BC0EB),
		game.Great:   tcell.NewHexColor(0xFDE74C),
		game.Good:    tcell.NewHexColor(0x9BC53D),
		game.Bad:     tcell.NewHexColor(0xE55934),
		game.Miss:    tcell.NewHexColor(0x333333),
	}
)

func getNoteColor(kind game.NoteType) tcell.Color {
	col, ok := noteColors[kind]
	if !ok {
		return tcell.ColorWhite
	}
	return col
}
