package parser

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"io/ioutil"
	"strings"

	"git.lost.host/meutraa/scanline/internal/game"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type DefaultParser struct {
	Options Options
}

func New(options Options) *DefaultParser {
	return &DefaultParser{Options: options}
}

// The intermediate form both chart formats are read into before times and
// positions are derived.
type rawChart struct {
	timeBase    float64
	musicOffset float64
	tempos      []game.Tempo
	pages       []rawPage
	notes       []rawNote
	events      []game.EventOrder
}

type rawPage struct {
	line      int
	startTick float64
	endTick   float64
	direction int
}

type rawNote struct {
	line         int
	id           int
	kind         game.NoteType
	pageIndex    int
	tick         float64
	holdTick     float64
	x            float64
	nextID       int
	approachRate float64
}

func (p *DefaultParser) ParseFile(file string) (*game.Chart, error) {
	data, err := ioutil.ReadFile(file)
	if nil != err {
		return nil, errors.Wrap(err, "unable to read chart")
	}
	return p.Parse(data)
}

func (p *DefaultParser) Parse(data []byte) (*game.Chart, error) {
	text, err := decode(data)
	if nil != err {
		return nil, err
	}

	var raw *rawChart
	if strings.HasPrefix(strings.TrimSpace(text), "{") {
		raw, err = parseJSON(text)
	} else {
		raw, err = parseLegacy(text)
	}
	if nil != err {
		return nil, err
	}

	chart, err := p.build(raw)
	if nil != err {
		return nil, err
	}
	chart.Checksum = Checksum(text)
	return chart, nil
}

// decode strips a UTF-8 byte order mark, converts UTF-16 when a BOM says so
// and normalizes line endings.
func decode(data []byte) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, data)
	if nil != err {
		return "", errors.Wrap(err, "unable to decode chart text")
	}
	out = bytes.ReplaceAll(out, []byte("\r\n"), []byte("\n"))
	out = bytes.ReplaceAll(out, []byte("\r"), []byte("\n"))
	return string(out), nil
}

func Checksum(text string) string {
	sum := sha256.Sum256([]byte(text))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func (p *DefaultParser) build(raw *rawChart) (*game.Chart, error) {
	if raw.timeBase <= 0 {
		return nil, &game.ParseError{Reason: "time base must be positive"}
	}
	if len(raw.tempos) == 0 {
		return nil, &game.ParseError{Reason: "chart has no tempo"}
	}
	if len(raw.notes) == 0 {
		return nil, &game.ParseError{Reason: "chart has no notes"}
	}
	if len(raw.pages) == 0 {
		return nil, &game.ParseError{Reason: "chart has no pages"}
	}

	multiplier := p.Options.ApproachMultiplier
	if multiplier <= 0 {
		multiplier = 1
	}
	layout := p.Options.Layout
	if layout.BaseSize == 0 {
		layout = DefaultLayout()
	}

	t := timeline{timeBase: raw.timeBase, tempos: raw.tempos}
	chart := &game.Chart{
		TimeBase:    raw.timeBase,
		MusicOffset: raw.musicOffset,
		Tempos:      make([]game.Tempo, len(raw.tempos)),
		Pages:       make([]game.Page, len(raw.pages)),
		Notes:       make([]*game.NoteModel, 0, len(raw.notes)),
		Events:      make([]game.EventOrder, len(raw.events)),
	}

	for i, tempo := range raw.tempos {
		tempo.Time = t.toTime(tempo.Tick)
		chart.Tempos[i] = tempo
	}

	for i, event := range raw.events {
		event.Time = t.toTime(event.Tick)
		chart.Events[i] = event
	}

	for i, rp := range raw.pages {
		if rp.endTick <= rp.startTick {
			return nil, &game.ParseError{Line: rp.line, Reason: "page must end after it starts"}
		}
		page := game.Page{
			StartTick: rp.startTick,
			EndTick:   rp.endTick,
			Direction: rp.direction,
			StartTime: t.toTime(rp.startTick),
			EndTime:   t.toTime(rp.endTick),
		}
		if page.Direction != 1 {
			page.Direction = -1
		}
		if i != 0 {
			page.ActualStartTick = chart.Pages[i-1].EndTick
			page.ActualStartTime = chart.Pages[i-1].EndTime
		}
		if p.Options.FlipY {
			page.Direction = -page.Direction
		}
		chart.Pages[i] = page
	}

	g := geometry{layout: layout, pages: chart.Pages, flipX: p.Options.FlipX}
	seen := make(map[int]bool, len(raw.notes))
	for _, rn := range raw.notes {
		if seen[rn.id] {
			return nil, &game.ParseError{Line: rn.line, Reason: "duplicate note id " + itoa(rn.id)}
		}
		seen[rn.id] = true
		if rn.pageIndex < 0 || rn.pageIndex >= len(chart.Pages) {
			return nil, &game.ParseError{Line: rn.line, Reason: "page index " + itoa(rn.pageIndex) + " out of range"}
		}
		if rn.holdTick < 0 {
			return nil, &game.ParseError{Line: rn.line, Reason: "negative hold tick"}
		}
		page := chart.Pages[rn.pageIndex]

		note := &game.NoteModel{
			ID:           rn.id,
			Type:         rn.kind,
			PageIndex:    rn.pageIndex,
			Tick:         rn.tick,
			HoldTick:     rn.holdTick,
			X:            rn.x,
			NextID:       rn.nextID,
			ApproachRate: rn.approachRate,
			Direction:    page.Direction,
			StartTime:    t.toTime(rn.tick),
			EndTime:      t.toTime(rn.tick + rn.holdTick),
		}
		note.Speed = 1
		if rn.pageIndex != 0 {
			note.Speed = noteSpeed(chart.Pages, rn.pageIndex, rn.tick)
		}
		note.Speed *= rn.approachRate * multiplier

		note.Y = g.chartY(page, rn.tick)
		note.Position = game.Vec2{X: g.screenX(rn.x), Y: g.noteScreenY(page, rn.tick)}
		note.EndPosition = game.Vec2{X: note.Position.X, Y: g.tickScreenY(rn.tick + rn.holdTick)}

		if note.Type.IsDrag() {
			note.IntroTime = note.StartTime - 1.175/note.Speed
		} else {
			note.IntroTime = note.StartTime - 1.367/note.Speed
		}
		chart.Notes = append(chart.Notes, note)
	}

	chart.Index()
	if err := validateChains(chart); nil != err {
		return nil, err
	}
	for _, note := range chart.Notes {
		if next, ok := chart.Note(note.NextID); note.HasNext() && ok {
			note.Rotation = rotation(note.Position, next.Position)
		}
	}
	return chart, nil
}
