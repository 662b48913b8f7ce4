package main

import (
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"git.lost.host/meutraa/scanline/internal/audio"
	"git.lost.host/meutraa/scanline/internal/config"
	"git.lost.host/meutraa/scanline/internal/game"
	"git.lost.host/meutraa/scanline/internal/input"
	"git.lost.host/meutraa/scanline/internal/parser"
	"git.lost.host/meutraa/scanline/internal/play"
	"git.lost.host/meutraa/scanline/internal/render"
	"git.lost.host/meutraa/scanline/internal/score"
	"git.lost.host/meutraa/scanline/internal/theme"
	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
)

// Seconds moved by one seek key press
const seekStep = 5.0

// Time the final frame stays up once the session is over
const linger = 2 * time.Second

type Program struct {
	Parser   parser.Parser
	Store    score.Store
	Theme    theme.Theme
	Renderer render.Renderer
	Session  *play.Session
	Player   *audio.Player

	// Set in tier mode, every directory is one stage
	Tier *score.TierState

	options   parser.Options
	rules     game.Rules
	stage     int
	audioFile string
	chartFile string
	chart     *game.Chart

	events   chan input.Event
	resuming bool
	endedAt  time.Time
	quit     bool
}

func (p *Program) Init() error {
	var err error
	p.rules, err = config.Rules()
	if nil != err {
		return err
	}
	p.options = parser.OptionsFor(p.rules.Mods)
	p.Parser = parser.New(p.options)
	p.Theme = &theme.DefaultTheme{}
	p.Store = score.NewStore(*config.Database)
	if p.rules.Mode == game.Tier {
		p.Tier = score.NewTier(len(*config.Directories), *config.TierThreshold, score.DefaultMaxHealth)
	}

	if err := p.Store.Init(); nil != err {
		return err
	}

	screen, err := tcell.NewScreen()
	if nil != err {
		return errors.Wrap(err, "unable to open terminal")
	}
	p.Renderer = render.New(screen, p.Theme, p.options.Layout)
	if err := p.Renderer.Init(); nil != err {
		return err
	}

	p.events = make(chan input.Event, 128)
	tracker := &input.Tracker{ToWorld: func(col, row int) game.Vec2 {
		return p.Renderer.Viewport().World(col, row)
	}}
	input.ReadInput(screen, tracker, p.events)

	return p.load(0)
}

// load prepares the chart and music of one song directory and starts it.
func (p *Program) load(stage int) error {
	dir := (*config.Directories)[stage]
	p.stage = stage
	p.audioFile, p.chartFile = "", ""
	if err := filepath.Walk(dir, func(fp string, info os.FileInfo, err error) error {
		if nil != err {
			return err
		}
		switch strings.ToLower(path.Ext(info.Name())) {
		case ".ogg", ".mp3":
			p.audioFile = fp
		case ".json", ".txt":
			p.chartFile = fp
		}
		return nil
	}); nil != err {
		return errors.Wrap(err, "unable to walk song directory")
	}
	if p.audioFile == "" || p.chartFile == "" {
		return errors.Errorf("unable to find a chart and an .mp3/.ogg file in %s", dir)
	}

	var err error
	p.chart, err = p.Parser.ParseFile(p.chartFile)
	if nil != err {
		return err
	}
	log.Printf("Opening %v (%v)\n", p.audioFile, p.chartFile)
	if nil != p.Player {
		if err := p.Player.Close(); nil != err {
			log.Println(err)
		}
	}
	p.Player, err = audio.Open(p.audioFile, *config.Rate)
	if nil != err {
		return err
	}
	p.Player.Offset = p.chart.MusicOffset

	state := score.ForChart(p.chart, p.rules)
	if nil != p.Tier {
		if err := p.Tier.Begin(state); nil != err {
			return err
		}
	}
	p.Session = play.NewSession(p.chart, play.Options{
		Rules:    p.rules,
		Offset:   config.Offset.Seconds(),
		Geometry: play.NewCircleGeometry(p.options.Layout.BaseSize, hitbox()),
		State:    state,
	})
	p.resuming = false
	p.endedAt = time.Time{}

	return p.Player.Start(*config.Delay)
}

func hitbox() float64 {
	if *config.LargeHitbox {
		return play.LargeHitbox
	}
	return play.DefaultHitbox
}

func (p *Program) Deinit() {
	if nil != p.Renderer {
		if err := p.Renderer.Deinit(); nil != err {
			log.Println(err)
		}
	}
	if nil != p.Player {
		if err := p.Player.Close(); nil != err {
			log.Println(err)
		}
	}
	if nil != p.Store {
		p.Store.Deinit()
	}
}

// Update applies everything read from the terminal since the last frame
// and moves the session to the current music time.
func (p *Program) Update(now time.Time) []play.NoteEvent {
read:
	for {
		select {
		case ev, ok := <-p.events:
			if !ok {
				p.quit = true
				return nil
			}
			if nil != ev.Pointer {
				p.Session.HandleInput(*ev.Pointer)
			} else {
				p.command(ev.Command)
			}
		default:
			break read
		}
	}

	events := p.Session.Tick(p.Player.Now())
	state := p.Session.State()
	if p.resuming && state == play.StatePlaying {
		p.resuming = false
		p.Player.Resume()
	}
	if p.endedAt.IsZero() && (state == play.StateCompleted || state == play.StateFailed) {
		p.endedAt = now
		p.save()
		if nil != p.Tier {
			p.Tier.End()
		}
	}
	return events
}

func (p *Program) command(c input.Command) {
	switch c {
	case input.Quit:
		p.quit = true
	case input.TogglePause:
		switch p.Session.State() {
		case play.StatePlaying:
			if err := p.Session.Pause(); nil != err {
				log.Println(err)
				return
			}
			p.Player.Pause()
		case play.StatePaused:
			if err := p.Session.Resume(*config.Delay); nil != err {
				log.Println(err)
				return
			}
			p.resuming = true
		}
	case input.SeekBack, input.SeekForward:
		if p.rules.Mode != game.Practice {
			log.Println("seeking is only allowed in practice")
			return
		}
		t := p.Player.Now() + seekStep
		if c == input.SeekBack {
			t = p.Player.Now() - seekStep
		}
		if err := p.Player.Seek(t); nil != err {
			log.Println(err)
			return
		}
		if err := p.Session.Seek(p.Player.Now()); nil != err {
			log.Println(err)
		}
	case input.Resize:
		if s, ok := p.Renderer.(*render.DefaultRenderer); ok {
			s.Screen.Sync()
		}
	}
}

func (p *Program) Render(events []play.NoteEvent) {
	p.Renderer.Draw(p.Session.Snapshot(), events)
}

// Done reports whether the program should exit, moving on to the next
// stage once the current one has been shown long enough.
func (p *Program) Done(now time.Time) bool {
	if p.quit {
		return true
	}
	if !p.endedAt.IsZero() && now.Sub(p.endedAt) > linger {
		return !p.next()
	}
	end := p.chart.EndTime()
	if song := p.Player.Length() + p.Player.Offset; song > end {
		end = song
	}
	return p.Player.Now() > end+5
}

// next loads the following stage, if there is one worth playing.
func (p *Program) next() bool {
	if nil != p.Tier && p.Tier.Failed {
		log.Println("tier failed at stage", p.stage+1)
		return false
	}
	if p.stage+1 >= len(*config.Directories) {
		if nil != p.Tier {
			completion, err := p.Tier.Complete()
			if nil != err {
				log.Println(err)
			} else {
				log.Printf("tier completion %.2f, accuracy %.2f%%\n", completion, p.Tier.AverageAccuracy()*100)
			}
		}
		return false
	}
	if err := p.load(p.stage + 1); nil != err {
		log.Println(err)
		return false
	}
	return true
}

// save records a finished session. Auto plays are not saved.
func (p *Program) save() {
	if p.rules.Mods.AnyAuto() {
		return
	}
	h := &score.History{
		ID:       p.Session.ID,
		Checksum: p.chart.Checksum,
		Mode:     p.rules.Mode,
		Mods:     p.rules.Mods,
		Rate:     *config.Rate,
		Offset:   config.Offset.Seconds(),
		Hitbox:   hitbox(),
		PlayedAt: time.Now(),
		Inputs:   p.Session.Inputs(),
	}
	h.Apply(p.Session.Snapshot().Score)
	if err := p.Store.Save(h); nil != err {
		log.Println(err)
	}
}
