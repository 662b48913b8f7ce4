package play

import (
	"math"

	"git.lost.host/meutraa/scanline/internal/game"
)

// Router turns pointer events into note touches, hold bindings and flicks.
type Router struct {
	geometry Geometry

	tracked  map[int]bool
	holding  map[int]*Note
	flicking map[int]*Note

	// Rebuilt every tick from the emerged, uncleared notes
	drags  []*Note
	normal []*Note
	holds  []*Note
}

func NewRouter(geometry Geometry) *Router {
	return &Router{
		geometry: geometry,
		tracked:  map[int]bool{},
		holding:  map[int]*Note{},
		flicking: map[int]*Note{},
	}
}

func (r *Router) refresh(live []*Note, now float64) {
	r.drags = r.drags[:0]
	r.normal = r.normal[:0]
	r.holds = r.holds[:0]
	for _, n := range live {
		if n.State(now) != Emerged {
			continue
		}
		if n.Model.Type.IsDrag() {
			r.drags = append(r.drags, n)
			continue
		}
		r.normal = append(r.normal, n)
		if n.Model.Type.IsHold() && !n.IsHolding() {
			r.holds = append(r.holds, n)
		}
	}
}

func (r *Router) collides(n *Note, pos game.Vec2) bool {
	return r.geometry.Collides(n.Model.Type, n.Position(), pos)
}

func (r *Router) firstHit(notes []*Note, pos game.Vec2) *Note {
	for _, n := range notes {
		if !n.IsCleared() && r.collides(n, pos) {
			return n
		}
	}
	return nil
}

// Route applies one pointer event. Events for fingers that never went
// down are refused with an InputOutOfRange.
func (r *Router) Route(s *Session, in game.Input) error {
	switch in.Phase {
	case game.Down:
		r.tracked[in.Finger] = true
		r.down(s, in)
		r.move(s, in, true)
	case game.Move:
		if !r.tracked[in.Finger] {
			return &game.InputOutOfRange{Finger: in.Finger, Phase: in.Phase}
		}
		r.move(s, in, false)
	case game.Up:
		if !r.tracked[in.Finger] {
			return &game.InputOutOfRange{Finger: in.Finger, Phase: in.Phase}
		}
		r.up(s, in.Finger)
	default:
		return &game.InputOutOfRange{Finger: in.Finger, Phase: in.Phase}
	}
	return nil
}

func (r *Router) down(s *Session, in game.Input) {
	drag := r.firstHit(r.drags, in.Position)
	if nil != drag {
		drag.touch(s)
	}

	for _, n := range r.normal {
		if n.IsCleared() || !r.collides(n, in.Position) {
			continue
		}
		if n.Model.Type == game.Flick {
			if _, ok := r.flicking[in.Finger]; ok || n.IsFlicking() {
				continue
			}
			n.startFlick(s, in.Position)
			r.flicking[in.Finger] = n
			return
		}

		until := n.timeUntilStart(s)
		if nil != drag && n.Model.PageIndex < len(s.chart.Pages) &&
			math.Abs(until) > s.chart.Pages[n.Model.PageIndex].Duration()/8 {
			continue
		}
		if n.Model.PageIndex > s.page && s.page < len(s.chart.Pages) &&
			until > s.chart.Pages[s.page].Duration()*0.5 {
			continue
		}
		n.touch(s)
		return
	}
}

// move follows a finger. When it runs as part of a Down the drag under
// the finger was already touched by down.
func (r *Router) move(s *Session, in game.Input, pressed bool) {
	if n, ok := r.flicking[in.Finger]; ok {
		if n.IsCleared() || n.updateFlick(s, in.Position) {
			delete(r.flicking, in.Finger)
		}
	}

	if !pressed {
		if drag := r.firstHit(r.drags, in.Position); nil != drag {
			drag.touch(s)
		}
	}

	held, ok := r.holding[in.Finger]
	if ok && held.IsCleared() {
		delete(r.holding, in.Finger)
		ok = false
	}
	if !ok {
		for _, n := range r.holds {
			if n.IsCleared() || !r.collides(n, in.Position) {
				continue
			}
			n.hold(s, in.Finger, true)
			r.holding[in.Finger] = n
			return
		}
		for _, n := range r.normal {
			if !n.Model.Type.IsHold() || !n.IsHolding() || n.IsCleared() || !r.collides(n, in.Position) {
				continue
			}
			n.hold(s, in.Finger, true)
			r.holding[in.Finger] = n
			return
		}
		return
	}

	if !r.collides(held, in.Position) {
		delete(r.holding, in.Finger)
		held.hold(s, in.Finger, false)
	}
}

func (r *Router) up(s *Session, finger int) {
	delete(r.tracked, finger)
	r.dropFlick(finger)
	if n, ok := r.holding[finger]; ok {
		delete(r.holding, finger)
		n.hold(s, finger, false)
	}
}

// releaseAll lifts every finger, grading the holds they were on.
func (r *Router) releaseAll(s *Session) {
	for finger := range r.tracked {
		r.up(s, finger)
	}
	for finger, n := range r.holding {
		delete(r.holding, finger)
		n.hold(s, finger, false)
	}
	for finger := range r.flicking {
		r.dropFlick(finger)
	}
}

func (r *Router) dropFlick(finger int) {
	if n, ok := r.flicking[finger]; ok {
		delete(r.flicking, finger)
		n.stopFlick()
	}
}

func (r *Router) reset() {
	r.tracked = map[int]bool{}
	r.holding = map[int]*Note{}
	r.flicking = map[int]*Note{}
	r.drags, r.normal, r.holds = nil, nil, nil
}

// Holding reports which note a finger is bound to.
func (r *Router) Holding(finger int) (*Note, bool) {
	n, ok := r.holding[finger]
	return n, ok
}
