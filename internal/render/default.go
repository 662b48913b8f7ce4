package render

import (
	"fmt"
	"time"

	"git.lost.host/meutraa/scanline/internal/game"
	"git.lost.host/meutraa/scanline/internal/parser"
	"git.lost.host/meutraa/scanline/internal/play"
	"git.lost.host/meutraa/scanline/internal/theme"
	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
)

type DefaultRenderer struct {
	Screen tcell.Screen
	Theme  theme.Theme
	Layout parser.Layout

	decorations []*decoration
}

type decoration struct {
	X, Y    int
	Content string
	Style   tcell.Style
	Frames  int // remaining frames until removed
}

func New(screen tcell.Screen, th theme.Theme, layout parser.Layout) *DefaultRenderer {
	return &DefaultRenderer{Screen: screen, Theme: th, Layout: layout}
}

func (r *DefaultRenderer) Init() error {
	if err := r.Screen.Init(); nil != err {
		return errors.Wrap(err, "unable to initialise screen")
	}
	r.Screen.EnableMouse(tcell.MouseMotionEvents)
	r.Screen.HideCursor()
	r.Screen.Clear()
	return nil
}

func (r *DefaultRenderer) Deinit() error {
	r.Screen.DisableMouse()
	r.Screen.Fini()
	return nil
}

func (r *DefaultRenderer) Viewport() Viewport {
	w, h := r.Screen.Size()
	return Viewport{Width: w, Height: h, Layout: r.Layout}
}

func (r *DefaultRenderer) AddDecoration(col, row int, content string, style tcell.Style, frames int) {
	r.decorations = append(r.decorations, &decoration{
		X:       col,
		Y:       row,
		Content: content,
		Style:   style,
		Frames:  frames,
	})
}

func (r *DefaultRenderer) tickDecorations() {
	nd := make([]*decoration, 0, len(r.decorations))
	for _, d := range r.decorations {
		if d.Frames == 0 {
			continue
		}
		r.FillStyle(d.Y, d.X, d.Style, d.Content)
		nd = append(nd, d)
		d.Frames--
	}
	r.decorations = nd
}

func (r *DefaultRenderer) RenderLoop(period time.Duration, render func(now time.Time) bool) {
	cont := true
	for cont {
		now := time.Now()
		deadline := now.Add(period)

		cont = render(now)

		remainingTime := deadline.Sub(time.Now())
		time.Sleep(remainingTime)
	}
}

func (r *DefaultRenderer) Fill(row, column int, message string) {
	r.FillStyle(row, column, r.Theme.Text(), message)
}

func (r *DefaultRenderer) FillStyle(row, column int, style tcell.Style, message string) {
	for i, c := range []rune(message) {
		r.Screen.SetContent(column+i, row, c, nil, style)
	}
}

// Draw renders one frame of the session and shows it.
func (r *DefaultRenderer) Draw(snap play.Snapshot, events []play.NoteEvent) {
	v := r.Viewport()
	r.Screen.Clear()

	if snap.PageDirection != 0 {
		row := v.ScanlineRow(snap.PageDirection, snap.PageProgress)
		sym, style := r.Theme.RenderScanline(snap.PageDirection)
		for col := 0; col < v.Width; col++ {
			r.FillStyle(row, col, style, sym)
		}
	}

	for _, n := range snap.Notes {
		if n.State != play.Emerged {
			continue
		}
		col, row := v.Cell(n.Position)
		if n.Type.IsHold() && n.Duration > 0 {
			_, end := v.Cell(n.EndPosition)
			step := 1
			if end < row {
				step = -1
			}
			sym, style := r.Theme.RenderHoldBody(n.Type, n.Holding)
			for y := row + step; y != end+step; y += step {
				r.FillStyle(y, col, style, sym)
			}
		}
		sym, style := r.Theme.RenderNote(n.Type, n.Progress)
		r.FillStyle(row, col, style, sym)
	}

	for _, e := range events {
		if e.Kind != play.NoteCleared {
			continue
		}
		text, style := r.Theme.RenderGrade(e.Grade)
		col, row := v.Cell(e.Position)
		r.AddDecoration(col-len(text)/2, row+1, text, style, 24)
	}
	r.tickDecorations()

	r.renderStats(snap)
	r.Screen.Show()
}

func (r *DefaultRenderer) renderStats(snap play.Snapshot) {
	s := snap.Score
	r.Fill(0, 1, fmt.Sprintf("%07.0f  %s", s.Score, s.Rank))
	r.Fill(1, 1, fmt.Sprintf("%6.2f%%  %dx", s.Accuracy, s.Combo))
	r.Fill(2, 1, fmt.Sprintf("HP %4.0f/%4.0f", s.Health, s.MaxHealth))
	if snap.State != play.StatePlaying {
		r.Fill(3, 1, snap.State)
	}
	for i, g := range []game.Grade{game.Perfect, game.Great, game.Good, game.Bad, game.Miss} {
		text, style := r.Theme.RenderGrade(g)
		r.FillStyle(5+i, 1, style, fmt.Sprintf("%8s %5d", text, s.Counts[g]))
	}
}
