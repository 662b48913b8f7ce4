package play

import (
	"git.lost.host/meutraa/scanline/internal/game"
	"git.lost.host/meutraa/scanline/internal/score"
)

type NoteView struct {
	ID           int
	Type         game.NoteType
	State        NoteState
	Position     game.Vec2
	EndPosition  game.Vec2
	Rotation     float64
	Progress     float64
	Grade        game.Grade
	Holding      bool
	HeldDuration float64
	Duration     float64
	Direction    int
}

// Snapshot is a copy of the session for renderers and reports.
type Snapshot struct {
	ID    string
	State string
	Time  float64

	Page          int
	PageDirection int
	PageProgress  float64 // 0 at the start of the page, 1 at its end

	Score score.PlayStateView
	Notes []NoteView // Chronological
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:    s.ID,
		State: s.fsm.Current(),
		Time:  s.time,
		Page:  s.page,
		Score: s.state.View(),
		Notes: make([]NoteView, 0, len(s.order)),
	}
	if s.page < len(s.chart.Pages) {
		p := s.chart.Pages[s.page]
		snap.PageDirection = p.Direction
		if d := p.Duration(); d > 0 {
			snap.PageProgress = clamp((s.time-p.StartTime)/d, 0, 1)
		}
	}
	for _, n := range s.order {
		m := n.Model
		snap.Notes = append(snap.Notes, NoteView{
			ID:           m.ID,
			Type:         m.Type,
			State:        n.State(s.time),
			Position:     n.Position(),
			EndPosition:  m.EndPosition,
			Rotation:     m.Rotation,
			Progress:     n.Progress(s.time),
			Grade:        n.grade,
			Holding:      n.IsHolding(),
			HeldDuration: n.heldDuration,
			Duration:     m.Duration(),
			Direction:    m.Direction,
		})
	}
	return snap
}

func clamp(f, lo, hi float64) float64 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}
