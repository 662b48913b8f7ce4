package parser

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"testing"

	"git.lost.host/meutraa/scanline/internal/game"
	"git.lost.host/meutraa/scanline/internal/testdata"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func parse(t *testing.T, data []byte) *game.Chart {
	t.Helper()
	chart, err := New(DefaultOptions()).Parse(data)
	if nil != err {
		t.Fatal("unable to parse chart", err)
	}
	return chart
}

var noteTimes = map[int][2]float64{
	0: {1.0, 1.0},
	1: {2.0, 3.0},
	2: {2.5, 2.5},
	3: {2.75, 2.75},
	4: {3.0, 3.0},
	5: {4.5, 4.5},
	6: {5.0, 5.5},
}

func TestParseChart(t *testing.T) {
	chart := parse(t, testdata.Chart())
	if chart.Len() != len(noteTimes) {
		t.Fatal("expected", len(noteTimes), "notes, got", chart.Len())
	}
	for id, times := range noteTimes {
		note, ok := chart.Note(id)
		if !ok {
			t.Log("missing note", id)
			t.Fail()
			continue
		}
		if !near(note.StartTime, times[0]) || !near(note.EndTime, times[1]) {
			t.Log("note", id, "start", note.StartTime, "end", note.EndTime, "expected", times)
			t.Fail()
		}
		if note.IntroTime > note.StartTime || note.StartTime > note.EndTime {
			t.Log("note", id, "times out of order", note.IntroTime, note.StartTime, note.EndTime)
			t.Fail()
		}
	}

	if end := chart.DragEnd(2); nil == end || end.ID != 4 {
		t.Log("drag end of 2", end)
		t.Fail()
	}
	if chart.Pages[1].Direction != -1 || chart.Pages[2].Direction != 1 {
		t.Log("page directions", chart.Pages[1].Direction, chart.Pages[2].Direction)
		t.Fail()
	}
	if len(chart.Events) != 1 || !near(chart.Events[0].Time, 4.0) {
		t.Log("events", chart.Events)
		t.Fail()
	}
	expected := []int{0, 1, 2, 3, 4, 5, 6}
	if fmt.Sprint(chart.Chronological) != fmt.Sprint(expected) {
		t.Log("chronological", chart.Chronological)
		t.Fail()
	}
}

func TestNoteSpeedOnFirstPage(t *testing.T) {
	chart := parse(t, testdata.Chart())
	note, _ := chart.Note(0)
	if note.Speed != 1 {
		t.Log("speed", note.Speed)
		t.Fail()
	}
	if !near(note.IntroTime, note.StartTime-1.367) {
		t.Log("intro", note.IntroTime)
		t.Fail()
	}
	drag, _ := chart.Note(2)
	if !near(drag.IntroTime, drag.StartTime-1.175/drag.Speed) {
		t.Log("drag intro", drag.IntroTime)
		t.Fail()
	}
}

func TestFlipX(t *testing.T) {
	plain := parse(t, testdata.Chart())
	flipped, err := New(OptionsFor(game.NewMods(game.FlipX))).Parse(testdata.Chart())
	if nil != err {
		t.Fatal(err)
	}
	for i := range plain.Notes {
		if !near(plain.Notes[i].Position.X, -flipped.Notes[i].Position.X) {
			t.Log("note", plain.Notes[i].ID, plain.Notes[i].Position, flipped.Notes[i].Position)
			t.Fail()
		}
	}
}

func TestFastMultipliesSpeed(t *testing.T) {
	plain := parse(t, testdata.Chart())
	fast, err := New(OptionsFor(game.NewMods(game.Fast))).Parse(testdata.Chart())
	if nil != err {
		t.Fatal(err)
	}
	for i := range plain.Notes {
		if !near(plain.Notes[i].Speed*1.5, fast.Notes[i].Speed) {
			t.Log("note", plain.Notes[i].ID, plain.Notes[i].Speed, fast.Notes[i].Speed)
			t.Fail()
		}
	}
}

func replaceChart(old, new string) []byte {
	return []byte(strings.Replace(string(testdata.Chart()), old, new, 1))
}

func TestStructuralErrors(t *testing.T) {
	tests := map[string]struct {
		data   []byte
		noteID int
		reason string
	}{
		"dangling": {
			replaceChart(`"id": 3, "tick": 1320, "x": 0.7, "hold_tick": 0, "next_id": 4`,
				`"id": 3, "tick": 1320, "x": 0.7, "hold_tick": 0, "next_id": 99`),
			3, "dangling",
		},
		"cycle": {
			replaceChart(`"id": 4, "tick": 1440, "x": 0.8, "hold_tick": 0, "next_id": -1`,
				`"id": 4, "tick": 1440, "x": 0.8, "hold_tick": 0, "next_id": 2`),
			2, "cycle",
		},
	}
	for name, test := range tests {
		_, err := New(DefaultOptions()).Parse(test.data)
		var se *game.StructuralError
		if !errors.As(err, &se) {
			t.Log(name, "expected structural error, got", err)
			t.Fail()
			continue
		}
		if se.NoteID != test.noteID || !strings.Contains(se.Reason, test.reason) {
			t.Log(name, se)
			t.Fail()
		}
	}
}

func TestParseErrorLines(t *testing.T) {
	tests := map[string]struct {
		data []byte
		line int
	}{
		"note type": {replaceChart(`"type": 5`, `"type": 9`), 19},
		"page range": {replaceChart(`"page_index": 2, "type": 5`, `"page_index": 7, "type": 5`), 19},
		"duplicate": {replaceChart(`"id": 6`, `"id": 5`), 20},
		"tick type":  {replaceChart(`"tick": 480,`, `"tick": "soon",`), 14},
		"missing x":  {replaceChart(`"tick": 480, "x": 0.5,`, `"tick": 480,`), 14},
		"syntax":     {replaceChart(`"tick": 960,`, `"tick": 960,,`), 15},
		"time base":  {replaceChart(`"time_base": 480`, `"time_base": 0`), 0},
		"page order": {replaceChart(`"end_tick": 1920`, `"end_tick": 960`), 10},
	}
	for name, test := range tests {
		_, err := New(DefaultOptions()).Parse(test.data)
		var pe *game.ParseError
		if !errors.As(err, &pe) {
			t.Log(name, "expected parse error, got", err)
			t.Fail()
			continue
		}
		if pe.Line != test.line {
			t.Log(name, "expected line", test.line, "got", pe)
			t.Fail()
		}
	}
}

const spreadChart = `{
  "time_base": 480,
  "tempo_list": [{"tick": 0, "value": 1000000}],
  "page_list": [{"start_tick": 0, "end_tick": 960, "scan_line_direction": 1}],
  "note_list": [
    {
      "page_index": 0,
      "type": 0,
      "id": 0,
      "tick": 480,
      "x": %s,
      "approach_rate": %s
    }
  ],
  "event_order_list": [
    {
      "tick": 0,
      "event_list": [
        {"type": 0, "args": "R"},
        {"type": %s, "args": "R"}
      ]
    }
  ]
}`

func TestParseErrorValueLines(t *testing.T) {
	tests := map[string]struct {
		x, rate, event string
		line           int
	}{
		"x":          {`"left"`, "1", "1", 11},
		"rate":       {"0.5", "-1", "1", 12},
		"event type": {"0.5", "1", "1.5", 20},
	}
	for name, test := range tests {
		data := fmt.Sprintf(spreadChart, test.x, test.rate, test.event)
		_, err := New(DefaultOptions()).Parse([]byte(data))
		var pe *game.ParseError
		if !errors.As(err, &pe) || pe.Line != test.line {
			t.Log(name, "expected line", test.line, "got", err)
			t.Fail()
		}
	}

	if _, err := New(DefaultOptions()).Parse([]byte(fmt.Sprintf(spreadChart, "0.5", "1", "1"))); nil != err {
		t.Log("valid spread chart", err)
		t.Fail()
	}
}

func TestDecodeByteOrderMarks(t *testing.T) {
	plain := parse(t, testdata.Chart())

	withBOM := append([]byte("\xEF\xBB\xBF"), testdata.Chart()...)
	utf16, _, err := transform.Bytes(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder(), testdata.Chart())
	if nil != err {
		t.Fatal(err)
	}
	crlf := []byte(strings.ReplaceAll(string(testdata.Chart()), "\n", "\r\n"))

	for name, data := range map[string][]byte{"utf8 bom": withBOM, "utf16": utf16, "crlf": crlf} {
		chart := parse(t, data)
		if chart.Checksum != plain.Checksum || chart.Len() != plain.Len() {
			t.Log(name, "decoded differently", chart.Checksum, plain.Checksum)
			t.Fail()
		}
	}
}

func TestParseLegacy(t *testing.T) {
	chart := parse(t, testdata.Legacy())
	if chart.Len() != 5 {
		t.Fatal("expected 5 notes, got", chart.Len())
	}
	if !near(chart.MusicOffset, 1) {
		t.Log("music offset", chart.MusicOffset)
		t.Fail()
	}

	expected := []struct {
		kind  game.NoteType
		x     float64
		start float64
		page  int
		next  int
	}{
		{game.Click, 0.25, 1.5, 1, 0},
		{game.Click, 0.75, 1.5, 1, 0},
		{game.Hold, 0.5, 2.25, 2, 0},
		{game.DragHead, 0.3, 3.0, 3, 4},
		{game.DragChild, 0.4, 3.25, 3, -1},
	}
	for id, e := range expected {
		note, ok := chart.Note(id)
		if !ok {
			t.Fatal("missing note", id)
		}
		if note.Type != e.kind || note.X != e.x || !near(note.StartTime, e.start) ||
			note.PageIndex != e.page || note.NextID != e.next {
			t.Log("note", id, note.Type, note.X, note.StartTime, note.PageIndex, note.NextID)
			t.Fail()
		}
	}
	hold, _ := chart.Note(2)
	if !near(hold.Duration(), 0.5) {
		t.Log("hold duration", hold.Duration())
		t.Fail()
	}
	if len(chart.Pages) != 4 || chart.Pages[0].Direction != -1 || chart.Pages[1].Direction != 1 {
		t.Log("pages", chart.Pages)
		t.Fail()
	}
}

func TestLegacyErrors(t *testing.T) {
	_, err := New(DefaultOptions()).Parse([]byte("PAGE_SIZE 1\nNOTE 0 x 0.5 0\n"))
	var pe *game.ParseError
	if !errors.As(err, &pe) || pe.Line != 2 {
		t.Log("malformed number", err)
		t.Fail()
	}

	_, err = New(DefaultOptions()).Parse([]byte("NOTE 0 1 0.5 0\n"))
	if !errors.As(err, &pe) || pe.Line != 0 {
		t.Log("missing page size", err)
		t.Fail()
	}

	_, err = New(DefaultOptions()).Parse([]byte("PAGE_SIZE 1\nNOTE 0 1 0.5 0\nLINK 0 7\n"))
	var se *game.StructuralError
	if !errors.As(err, &se) || se.NoteID != 7 {
		t.Log("unknown link", err)
		t.Fail()
	}
}

func clickChart(ticks []int) []byte {
	notes := make([]string, len(ticks))
	for i, tick := range ticks {
		notes[i] = fmt.Sprintf(`{"page_index": %d, "type": 0, "id": %d, "tick": %d, "x": 0.5}`, tick/960, i, tick)
	}
	return []byte(`{"time_base": 480, "tempo_list": [{"tick": 0, "value": 500000}],
"page_list": [{"start_tick": 0, "end_tick": 960}, {"start_tick": 960, "end_tick": 1920}, {"start_tick": 1920, "end_tick": 2880}],
"note_list": [` + strings.Join(notes, ",\n") + `]}`)
}

func TestPropertyChronologicalOrder(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("chronological order is sorted by time then id", prop.ForAll(
		func(ticks []int) bool {
			if len(ticks) == 0 {
				return true
			}
			chart, err := New(DefaultOptions()).Parse(clickChart(ticks))
			if nil != err {
				return false
			}
			return sort.SliceIsSorted(chart.Chronological, func(i, j int) bool {
				a, _ := chart.Note(chart.Chronological[i])
				b, _ := chart.Note(chart.Chronological[j])
				if a.StartTime != b.StartTime {
					return a.StartTime < b.StartTime
				}
				return a.ID < b.ID
			}) && len(chart.Chronological) == len(ticks)
		},
		gen.SliceOf(gen.IntRange(0, 2879)),
	))

	properties.Property("parsing is deterministic", prop.ForAll(
		func(ticks []int) bool {
			if len(ticks) == 0 {
				return true
			}
			data := clickChart(ticks)
			a, errA := New(DefaultOptions()).Parse(data)
			b, errB := New(DefaultOptions()).Parse(data)
			if nil != errA || nil != errB {
				return false
			}
			if a.Checksum != b.Checksum || fmt.Sprint(a.Chronological) != fmt.Sprint(b.Chronological) {
				return false
			}
			for i := range a.Notes {
				if *a.Notes[i] != *b.Notes[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 2879)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func BenchmarkParse(b *testing.B) {
	p := New(DefaultOptions())
	data := testdata.Chart()
	for i := 0; i < b.N; i++ {
		if _, err := p.Parse(data); nil != err {
			b.Fatal(err)
		}
	}
}
