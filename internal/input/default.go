package input

import (
	"git.lost.host/meutraa/scanline/internal/game"
	"github.com/gdamore/tcell/v2"
)

type Command int

const (
	None Command = iota
	Quit
	TogglePause
	SeekBack
	SeekForward
	Resize
)

// Event is either a pointer event or a command, never both.
type Event struct {
	Command Command
	Pointer *game.Input
}

// Each mouse button is its own finger
var buttons = [...]struct {
	mask   tcell.ButtonMask
	finger int
}{
	{tcell.Button1, 1},
	{tcell.Button2, 2},
	{tcell.Button3, 3},
}

var keyCommands = map[tcell.Key]Command{
	tcell.KeyEscape: Quit,
	tcell.KeyCtrlC:  Quit,
	tcell.KeyLeft:   SeekBack,
	tcell.KeyRight:  SeekForward,
}

var runeCommands = map[rune]Command{
	'q': Quit,
	' ': TogglePause,
	'p': TogglePause,
}

// Tracker turns terminal mouse reports into per-finger Down, Move and Up
// events. The terminal only reports which buttons are held, so transitions
// are found by comparing with the previous report.
type Tracker struct {
	ToWorld func(col, row int) game.Vec2

	held     tcell.ButtonMask
	col, row int
}

func (t *Tracker) Translate(ev tcell.Event) []Event {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if c := KeyCommand(ev.Key(), ev.Rune()); c != None {
			return []Event{{Command: c}}
		}
	case *tcell.EventResize:
		return []Event{{Command: Resize}}
	case *tcell.EventMouse:
		col, row := ev.Position()
		return t.mouse(col, row, ev.Buttons())
	}
	return nil
}

func (t *Tracker) mouse(col, row int, mask tcell.ButtonMask) []Event {
	moved := col != t.col || row != t.row
	t.col, t.row = col, row
	pos := t.ToWorld(col, row)

	events := []Event{}
	for _, b := range buttons {
		was, is := t.held&b.mask != 0, mask&b.mask != 0
		var phase game.Phase
		switch {
		case is && !was:
			phase = game.Down
		case is && was && moved:
			phase = game.Move
		case !is && was:
			phase = game.Up
		default:
			continue
		}
		events = append(events, Event{Pointer: &game.Input{Finger: b.finger, Position: pos, Phase: phase}})
	}
	t.held = mask & (tcell.Button1 | tcell.Button2 | tcell.Button3)
	return events
}

func KeyCommand(key tcell.Key, r rune) Command {
	if key == tcell.KeyRune {
		return runeCommands[r]
	}
	return keyCommands[key]
}

// ReadInput polls the screen on its own goroutine, sending everything the
// tracker makes of it to events until the screen is finalised.
func ReadInput(screen tcell.Screen, tracker *Tracker, events chan<- Event) {
	go func() {
		for {
			ev := screen.PollEvent()
			if nil == ev {
				close(events)
				return
			}
			for _, e := range tracker.Translate(ev) {
				events <- e
			}
		}
	}()
}
