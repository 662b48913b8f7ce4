package play

import (
	"context"
	"log"
	"sync"
	"time"

	"git.lost.host/meutraa/scanline/internal/game"
	"git.lost.host/meutraa/scanline/internal/judge"
	"git.lost.host/meutraa/scanline/internal/score"
	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/pkg/errors"
)

// Notes are spawned this many seconds before their start time.
const SpawnAhead = 2.0

// Lifecycle states
const (
	StateLoaded    = "loaded"
	StatePlaying   = "playing"
	StatePaused    = "paused"
	StateCompleted = "completed"
	StateFailed    = "failed"
)

type EventKind int

const (
	NoteCleared EventKind = iota
	SpeedUp
	SpeedDown
	PageChanged
)

func (k EventKind) String() string {
	switch k {
	case NoteCleared:
		return "cleared"
	case SpeedUp:
		return "speed-up"
	case SpeedDown:
		return "speed-down"
	case PageChanged:
		return "page"
	}
	return "unknown"
}

// NoteEvent is something the host may want to react to, a sound or a
// flash. Only NoteCleared events carry a note and grade.
type NoteEvent struct {
	Kind     EventKind
	Time     float64
	NoteID   int
	Type     game.NoteType
	Grade    game.Grade
	Error    float64
	Position game.Vec2
	Page     int
	Args     string
}

type Options struct {
	Rules    game.Rules
	Offset   float64 // Judgement offset in seconds
	Geometry Geometry
	Logger   *log.Logger

	// Aggregate to record into, a fresh one for the chart when nil. Tier
	// stages pass one begun on their TierState.
	State *score.PlayState

	// Wall clock for scheduled actions, time.Now when nil
	Now func() time.Time
}

// Session plays one chart. Every method is safe to call from any
// goroutine, the tick loop and input polling usually run separately.
type Session struct {
	ID string

	mu     sync.Mutex
	chart  *game.Chart
	rules  game.Rules
	policy judge.Policy
	state  *score.PlayState
	router *Router
	fsm    *fsm.FSM
	log    *log.Logger
	now    func() time.Time

	time        float64
	page        int
	eventCursor int
	spawnCursor int
	live        map[int]*Note
	order       []*Note // Live notes in chronological order

	pending  []game.Input
	inputs   []game.Input
	events   []NoteEvent
	resumeAt time.Time
}

func NewSession(chart *game.Chart, options Options) *Session {
	if nil == options.Logger {
		options.Logger = log.Default()
	}
	if nil == options.Now {
		options.Now = time.Now
	}
	if nil == options.Geometry {
		options.Geometry = NewCircleGeometry(5, DefaultHitbox)
	}
	if nil == options.State {
		options.State = score.ForChart(chart, options.Rules)
	}

	s := &Session{
		ID:     uuid.New().String(),
		chart:  chart,
		rules:  options.Rules,
		policy: judge.Policy{Mode: options.Rules.Mode, Offset: options.Offset},
		state:  options.State,
		router: NewRouter(options.Geometry),
		log:    options.Logger,
		now:    options.Now,
		live:   map[int]*Note{},
		time:   -SpawnAhead,
	}
	s.fsm = fsm.NewFSM(
		StateLoaded,
		fsm.Events{
			{Name: "start", Src: []string{StateLoaded}, Dst: StatePlaying},
			{Name: "pause", Src: []string{StatePlaying}, Dst: StatePaused},
			{Name: "resume", Src: []string{StatePaused}, Dst: StatePlaying},
			{Name: "complete", Src: []string{StatePlaying}, Dst: StateCompleted},
			{Name: "fail", Src: []string{StatePlaying}, Dst: StateFailed},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				s.log.Printf("session %s: %s -> %s at %.3f", s.ID, e.Src, e.Dst, s.time)
			},
		},
	)
	return s
}

func (s *Session) transition(event string) error {
	return errors.Wrapf(s.fsm.Event(context.Background(), event), "unable to %s session", event)
}

func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fsm.Current()
}

func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transition("start")
}

// HandleInput queues a pointer event for the next tick. Events arriving
// while the session is paused or over are dropped.
func (s *Session) HandleInput(in game.Input) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state := s.fsm.Current(); state != StatePlaying && state != StateLoaded {
		return
	}
	s.pending = append(s.pending, in)
}

// Tick advances the session to time t and returns everything that
// happened since the last tick.
func (s *Session) Tick(t float64) []NoteEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fsm.Current() == StateLoaded {
		if err := s.transition("start"); nil != err {
			s.log.Println(err)
		}
	}
	if s.fsm.Current() == StatePaused && !s.resumeAt.IsZero() && !s.now().Before(s.resumeAt) {
		s.resumeAt = time.Time{}
		if err := s.transition("resume"); nil != err {
			s.log.Println(err)
		}
	}
	if s.fsm.Current() != StatePlaying {
		return s.drain()
	}
	if t < s.time {
		s.log.Printf("session %s: ignoring tick at %.4f, already at %.4f", s.ID, t, s.time)
		return s.drain()
	}

	s.time = t
	s.advance()

	for _, n := range s.order {
		n.update(s)
	}

	s.router.refresh(s.order, t)
	for _, in := range s.pending {
		in.Time = t
		s.inputs = append(s.inputs, in)
		if err := s.router.Route(s, in); nil != err {
			s.log.Println(err)
		}
	}
	s.pending = s.pending[:0]

	s.spawn(false)
	s.recycle()

	switch {
	case s.state.ShouldFail:
		if err := s.transition("fail"); nil != err {
			s.log.Println(err)
		}
	case s.state.IsCompleted():
		if err := s.transition("complete"); nil != err {
			s.log.Println(err)
		}
	}
	return s.drain()
}

func (s *Session) drain() []NoteEvent {
	events := s.events
	s.events = nil
	return events
}

// advance moves the page and chart event cursors up to the current time.
func (s *Session) advance() {
	if page := s.chart.PageAt(s.time); page != s.page {
		s.page = page
		s.events = append(s.events, NoteEvent{Kind: PageChanged, Time: s.time, Page: page})
	}
	for s.eventCursor < len(s.chart.Events) && s.chart.Events[s.eventCursor].Time <= s.time {
		order := s.chart.Events[s.eventCursor]
		for _, e := range order.Events {
			kind := SpeedUp
			if e.Type == game.EventSpeedDown {
				kind = SpeedDown
			}
			s.events = append(s.events, NoteEvent{Kind: kind, Time: order.Time, Page: s.page, Args: e.Args})
		}
		s.eventCursor++
	}
}

// spawn brings notes near their start time into play. Seeking skips
// notes whose judgement window has already passed, judging any that
// were never judged as missed, and brings back judged notes cleared.
func (s *Session) spawn(seeking bool) {
	for s.spawnCursor < len(s.chart.Chronological) {
		model, _ := s.chart.Note(s.chart.Chronological[s.spawnCursor])
		if model.StartTime-SpawnAhead >= s.time && model.IntroTime > s.time {
			break
		}
		s.spawnCursor++

		if seeking && s.time > model.EndTime+judge.MissThreshold(model.Type) {
			if s.state.RecordJudgment(model.ID, model.Type, game.Miss, s.time-model.StartTime, 0) {
				s.events = append(s.events, NoteEvent{
					Kind:     NoteCleared,
					Time:     s.time,
					NoteID:   model.ID,
					Type:     model.Type,
					Grade:    game.Miss,
					Position: model.Position,
				})
			}
			continue
		}
		n := newNote(s.chart, model)
		if seeking && s.state.IsJudged(model.ID) {
			n.restore(s, s.state.Grade(model.ID))
		}
		s.live[model.ID] = n
		s.order = append(s.order, n)
	}
}

func (s *Session) recycle() {
	kept := s.order[:0]
	for _, n := range s.order {
		if n.expired(s) {
			delete(s.live, n.ID())
			continue
		}
		kept = append(kept, n)
	}
	for i := len(kept); i < len(s.order); i++ {
		s.order[i] = nil
	}
	s.order = kept
}

func (s *Session) record(n *Note, timingError float64) {
	if !s.state.RecordJudgment(n.ID(), n.Model.Type, n.grade, timingError, n.greatWeight) {
		return
	}
	s.events = append(s.events, NoteEvent{
		Kind:     NoteCleared,
		Time:     s.time,
		NoteID:   n.ID(),
		Type:     n.Model.Type,
		Grade:    n.grade,
		Error:    timingError,
		Position: n.Position(),
		Page:     s.page,
	})
}

// Pause freezes the session. Held holds are released and graded as if
// every finger had lifted.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transition("pause"); nil != err {
		return err
	}
	s.router.releaseAll(s)
	s.pending = s.pending[:0]
	s.resumeAt = time.Time{}
	return nil
}

// Resume unpauses after countdown has passed on the wall clock, checked
// on every tick. A countdown of zero resumes immediately.
func (s *Session) Resume(countdown time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fsm.Current() != StatePaused {
		return errors.Errorf("unable to resume a %s session", s.fsm.Current())
	}
	if countdown <= 0 {
		s.resumeAt = time.Time{}
		return s.transition("resume")
	}
	s.resumeAt = s.now().Add(countdown)
	return nil
}

// Seek moves the session to time t, respawning notes from scratch.
func (s *Session) Seek(t float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.fsm.Current() {
	case StateCompleted, StateFailed:
		return errors.Errorf("unable to seek a %s session", s.fsm.Current())
	}

	s.router.reset()
	s.live = map[int]*Note{}
	s.order = nil
	s.pending = s.pending[:0]
	s.time = t
	s.page = s.chart.PageAt(t)
	s.eventCursor = 0
	for s.eventCursor < len(s.chart.Events) && s.chart.Events[s.eventCursor].Time <= t {
		s.eventCursor++
	}
	s.spawnCursor = 0
	s.spawn(true)
	return nil
}

// Inputs returns every pointer event applied so far, stamped with the
// time of the tick that applied it.
func (s *Session) Inputs() []game.Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]game.Input, len(s.inputs))
	copy(out, s.inputs)
	return out
}

func (s *Session) Chart() *game.Chart {
	return s.chart
}

func (s *Session) Rules() game.Rules {
	return s.rules
}
