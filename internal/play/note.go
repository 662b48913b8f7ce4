package play

import (
	"math"

	"git.lost.host/meutraa/scanline/internal/game"
	"git.lost.host/meutraa/scanline/internal/judge"
)

// AutoFinger holds notes on behalf of the auto-play mods.
const AutoFinger = -1

type NoteState int

const (
	Pending NoteState = iota
	Emerged
	Cleared
)

func (s NoteState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Emerged:
		return "emerged"
	case Cleared:
		return "cleared"
	}
	return "unknown"
}

// Note is the runtime state of one spawned note. Notes are only touched
// from the session tick.
type Note struct {
	Model *game.NoteModel

	cleared     bool
	grade       game.Grade
	greatWeight float64
	clearedAt   float64

	// Holds
	fingers      []int
	held         bool
	holdingStart float64
	heldDuration float64

	// Flicks
	flicking       bool
	flickStart     game.Vec2
	flickStartTime float64

	// Drag heads slide along their chain, from and to are the chain notes
	// the head is travelling between. end is nil when the chain leads out
	// of the chart.
	from, to *game.NoteModel
	end      *game.NoteModel
	position game.Vec2
}

func newNote(chart *game.Chart, model *game.NoteModel) *Note {
	n := &Note{Model: model, position: model.Position}
	if model.Type != game.DragHead {
		return n
	}
	n.from = model
	n.to = model
	if next, ok := chart.Note(model.NextID); ok {
		n.to = next
	}
	n.end = model
	for steps := 0; n.end != nil && n.end.HasNext() && steps < chart.Len(); steps++ {
		next, ok := chart.Note(n.end.NextID)
		if !ok {
			n.end = nil
			break
		}
		n.end = next
	}
	return n
}

func (n *Note) ID() int {
	return n.Model.ID
}

func (n *Note) State(now float64) NoteState {
	if n.cleared {
		return Cleared
	}
	if now >= n.Model.IntroTime {
		return Emerged
	}
	return Pending
}

func (n *Note) IsCleared() bool {
	return n.cleared
}

func (n *Note) Grade() game.Grade {
	return n.grade
}

func (n *Note) GreatWeight() float64 {
	return n.greatWeight
}

func (n *Note) IsHolding() bool {
	return len(n.fingers) > 0
}

func (n *Note) Fingers() []int {
	out := make([]int, len(n.fingers))
	copy(out, n.fingers)
	return out
}

func (n *Note) HeldDuration() float64 {
	return n.heldDuration
}

func (n *Note) IsFlicking() bool {
	return n.flicking
}

// Position is where the note is drawn and touched.
func (n *Note) Position() game.Vec2 {
	return n.position
}

// Progress is how far into its lifetime the note is, 0 at intro, 1 at
// start and above 1 while a hold is being held.
func (n *Note) Progress(now float64) float64 {
	m := n.Model
	if now < m.StartTime {
		span := m.StartTime - m.IntroTime
		if span <= 0 {
			return 1
		}
		return math.Max(0, (now-m.IntroTime)/span)
	}
	if d := m.Duration(); d > 0 {
		return 1 + math.Min(1, (now-m.StartTime)/d)
	}
	return 1
}

func (n *Note) timeUntilStart(s *Session) float64 {
	return n.Model.StartTime - s.time
}

func (n *Note) shouldMiss(s *Session) bool {
	if n.Model.Type.IsHold() && n.IsHolding() {
		return false
	}
	return s.policy.Missed(n.Model.Type, n.timeUntilStart(s))
}

// clear records the grade once, later calls change nothing.
func (n *Note) clear(s *Session, grade game.Grade, weight float64) bool {
	if n.cleared || grade == game.Undetermined {
		return false
	}
	n.cleared = true
	n.grade = grade
	n.greatWeight = weight
	n.clearedAt = s.time
	n.fingers = nil
	n.flicking = false

	timingError := s.time - n.Model.StartTime
	if n.Model.Type.IsHold() && n.held {
		timingError = n.holdingStart - n.Model.StartTime
	}
	s.record(n, timingError)
	return true
}

// restore marks the note cleared with a grade recorded before a seek,
// without recording it again.
func (n *Note) restore(s *Session, grade game.Grade) {
	n.cleared = true
	n.grade = grade
	n.clearedAt = s.time
}

// calculateGrade judges the note as if it were cleared now.
func (n *Note) calculateGrade(s *Session) (game.Grade, float64) {
	if s.rules.IsAutoEnabled(n.Model.Type) {
		return game.Perfect, 0
	}
	if n.Model.Type.IsHold() {
		late := 0.0
		if n.holdingStart > n.Model.StartTime {
			late = n.holdingStart - n.Model.StartTime
		}
		return s.policy.Hold(n.Model.Duration(), n.heldDuration, late)
	}
	return s.policy.Timing(n.Model.Type, n.timeUntilStart(s))
}

func (n *Note) tryClear(s *Session) bool {
	if n.cleared {
		return false
	}
	if s.rules.IsAutoEnabled(n.Model.Type) {
		return n.clear(s, game.Perfect, 0)
	}
	if n.shouldMiss(s) {
		return n.clear(s, game.Miss, 0)
	}
	grade, weight := n.calculateGrade(s)
	return n.clear(s, grade, weight)
}

// touch is a finger landing on the note. Holds are graded on release
// instead.
func (n *Note) touch(s *Session) {
	if n.cleared || n.Model.Type.IsHold() {
		return
	}
	if n.Model.Type.IsDrag() {
		until := n.timeUntilStart(s)
		if until > 0.31 {
			return
		}
		if n.Model.PageIndex > s.page && n.Model.PageIndex < len(s.chart.Pages) &&
			until > s.chart.Pages[n.Model.PageIndex].Duration()/2 {
			return
		}
	}
	n.tryClear(s)
}

// hold adds or removes a finger. Releasing the last finger after the start
// time grades the hold.
func (n *Note) hold(s *Session, finger int, holding bool) {
	if n.cleared {
		return
	}
	if holding {
		for _, f := range n.fingers {
			if f == finger {
				return
			}
		}
		if len(n.fingers) == 0 {
			n.held = true
			n.holdingStart = s.time
		}
		n.fingers = append(n.fingers, finger)
		return
	}

	for i, f := range n.fingers {
		if f == finger {
			n.fingers = append(n.fingers[:i], n.fingers[i+1:]...)
			break
		}
	}
	if len(n.fingers) == 0 && s.time > n.Model.StartTime {
		n.updateHeld(s)
		grade, weight := n.calculateGrade(s)
		n.clear(s, grade, weight)
	}
}

func (n *Note) updateHeld(s *Session) {
	from := math.Max(n.holdingStart, n.Model.StartTime)
	to := math.Min(s.time, n.Model.EndTime)
	n.heldDuration = math.Max(0, to-from)
}

func (n *Note) startFlick(s *Session, pos game.Vec2) {
	n.flicking = true
	n.flickStart = pos
	n.flickStartTime = s.time
}

// stopFlick abandons a swipe whose finger lifted before it completed.
func (n *Note) stopFlick() {
	n.flicking = false
}

// FlickDistance is the horizontal swipe in world units that completes a
// flick.
const FlickDistance = 0.05

// updateFlick reports whether the swipe completed, clearing the note.
func (n *Note) updateFlick(s *Session, pos game.Vec2) bool {
	if !n.flicking {
		return false
	}
	if math.Abs(pos.X-n.flickStart.X) <= FlickDistance {
		return false
	}
	n.flicking = false
	n.tryClear(s)
	return true
}

func (n *Note) update(s *Session) {
	m := n.Model
	if !n.cleared {
		if s.rules.IsAutoEnabled(m.Type) && s.time >= m.StartTime {
			if m.Type.IsHold() {
				n.hold(s, AutoFinger, true)
			} else {
				n.clear(s, game.Perfect, 0)
			}
		}
		if n.shouldMiss(s) {
			n.clear(s, game.Miss, 0)
		}
	}

	if m.Type.IsHold() && n.IsHolding() && !n.cleared {
		n.updateHeld(s)
		if s.time >= m.EndTime {
			n.fingers = nil
			grade, weight := n.calculateGrade(s)
			n.clear(s, grade, weight)
		}
	}

	if m.Type == game.DragHead {
		n.updateDrag(s)
	}
}

func (n *Note) updateDrag(s *Session) {
	for n.to != n.from && s.time >= n.to.StartTime {
		n.from = n.to
		if next, ok := s.chart.Note(n.from.NextID); ok && n.from.HasNext() {
			n.to = next
		}
	}
	if n.to == n.from {
		n.position = n.from.Position
	} else {
		span := n.to.StartTime - n.from.StartTime
		t := 0.0
		if span > 0 {
			t = (s.time - n.from.StartTime) / span
		}
		n.position = n.from.Position.Lerp(n.to.Position, t)
	}

	if n.cleared || s.time < n.Model.StartTime || n.end == nil || n.end == n.Model {
		return
	}
	if end, ok := s.live[n.end.ID]; ok && end.cleared {
		grade, weight := judge.For(game.DragHead, s.rules.Mode).Judge(n.timeUntilStart(s) + s.policy.Offset)
		if grade == game.Undetermined {
			grade = game.Miss
		}
		n.clear(s, grade, weight)
	}
}

// expired reports whether a cleared note can be recycled.
func (n *Note) expired(s *Session) bool {
	if !n.cleared {
		return false
	}
	if n.Model.Type == game.DragHead {
		end := n.Model.EndTime
		if n.end != nil {
			end = n.end.EndTime
		}
		return s.time >= end+judge.MissThreshold(game.DragChild)
	}
	return s.time >= math.Max(n.clearedAt, n.Model.EndTime)+judge.MissThreshold(n.Model.Type)
}
