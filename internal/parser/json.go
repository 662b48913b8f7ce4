package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"git.lost.host/meutraa/scanline/internal/game"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

type jsonReader struct {
	text string
}

// line of the first byte of res, which must come from the document root
// or a ForEach over one of its lists.
func (r jsonReader) line(res gjson.Result) int {
	if res.Index <= 0 || res.Index > len(r.text) {
		return 1
	}
	return strings.Count(r.text[:r.start(res)], "\n") + 1
}

// start is the offset of the first byte of res. List elements may be
// reported at the whitespace before them.
func (r jsonReader) start(res gjson.Result) int {
	i := res.Index
	for i < len(r.text) && strings.IndexByte(" \t\r\n", r.text[i]) >= 0 {
		i++
	}
	return i
}

// get looks up key in obj, keeping the offset of the value into the
// whole text. gjson reports offsets relative to the object it searched.
func (r jsonReader) get(obj gjson.Result, key string) gjson.Result {
	res := obj.Get(key)
	if res.Index > 0 {
		res.Index += r.start(obj)
	}
	return res
}

func (r jsonReader) number(obj gjson.Result, key string, required bool, def float64) (float64, error) {
	res := r.get(obj, key)
	if !res.Exists() || res.Type == gjson.Null {
		if required {
			return 0, &game.ParseError{Line: r.line(obj), Reason: fmt.Sprintf("missing %q", key)}
		}
		return def, nil
	}
	if res.Type != gjson.Number {
		return 0, &game.ParseError{
			Line:   r.line(res),
			Reason: fmt.Sprintf("%q is not a number: %s", key, res.Raw),
		}
	}
	return res.Float(), nil
}

func (r jsonReader) integer(obj gjson.Result, key string, required bool, def int) (int, error) {
	f, err := r.number(obj, key, required, float64(def))
	if nil != err {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, &game.ParseError{
			Line:   r.line(r.get(obj, key)),
			Reason: fmt.Sprintf("%q is not an integer: %v", key, f),
		}
	}
	return int(f), nil
}

func (r jsonReader) array(key string) (gjson.Result, error) {
	res := gjson.Get(r.text, key)
	if !res.Exists() || res.Type == gjson.Null {
		return res, nil
	}
	if !res.IsArray() {
		return res, &game.ParseError{Line: r.line(res), Reason: fmt.Sprintf("%q is not a list", key)}
	}
	return res, nil
}

func syntaxLine(text string) int {
	var raw json.RawMessage
	err := json.Unmarshal([]byte(text), &raw)
	var se *json.SyntaxError
	if errors.As(err, &se) && se.Offset <= int64(len(text)) {
		return strings.Count(text[:se.Offset], "\n") + 1
	}
	return 0
}

// parseJSON reads the structured chart format. Unknown keys are ignored.
func parseJSON(text string) (*rawChart, error) {
	if !gjson.Valid(text) {
		return nil, &game.ParseError{Line: syntaxLine(text), Reason: "invalid JSON"}
	}
	r := jsonReader{text: text}
	root := gjson.Parse(text)
	root.Index = len(text) - len(strings.TrimLeft(text, " \t\r\n"))
	raw := &rawChart{}

	var err error
	if raw.timeBase, err = r.number(root, "time_base", true, 0); nil != err {
		return nil, err
	}
	if raw.musicOffset, err = r.number(root, "music_offset", false, 0); nil != err {
		return nil, err
	}

	// Each list is walked with ForEach so every element keeps its offset
	// into the text for error lines.
	walk := func(key string, fn func(elem gjson.Result) error) error {
		list, err := r.array(key)
		if nil != err {
			return err
		}
		list.ForEach(func(_, elem gjson.Result) bool {
			if !elem.IsObject() {
				err = &game.ParseError{Line: r.line(elem), Reason: fmt.Sprintf("%q entry is not an object", key)}
				return false
			}
			err = fn(elem)
			return nil == err
		})
		return err
	}

	if err := walk("tempo_list", func(elem gjson.Result) error {
		tick, err := r.number(elem, "tick", true, 0)
		if nil != err {
			return err
		}
		value, err := r.number(elem, "value", true, 0)
		if nil != err {
			return err
		}
		if value <= 0 {
			return &game.ParseError{Line: r.line(r.get(elem, "value")), Reason: "tempo value must be positive"}
		}
		raw.tempos = append(raw.tempos, game.Tempo{Tick: tick, Value: int64(value)})
		return nil
	}); nil != err {
		return nil, err
	}

	if err := walk("page_list", func(elem gjson.Result) error {
		page := rawPage{line: r.line(elem)}
		var err error
		if page.startTick, err = r.number(elem, "start_tick", true, 0); nil != err {
			return err
		}
		if page.endTick, err = r.number(elem, "end_tick", true, 0); nil != err {
			return err
		}
		if page.direction, err = r.integer(elem, "scan_line_direction", false, 1); nil != err {
			return err
		}
		raw.pages = append(raw.pages, page)
		return nil
	}); nil != err {
		return nil, err
	}

	if err := walk("note_list", func(elem gjson.Result) error {
		note := rawNote{line: r.line(elem)}
		var err error
		if note.id, err = r.integer(elem, "id", true, 0); nil != err {
			return err
		}
		kind, err := r.integer(elem, "type", true, 0)
		if nil != err {
			return err
		}
		note.kind = game.NoteType(kind)
		if !note.kind.Valid() {
			return &game.ParseError{Line: r.line(r.get(elem, "type")), Reason: fmt.Sprintf("unknown note type %d", kind)}
		}
		if note.pageIndex, err = r.integer(elem, "page_index", true, 0); nil != err {
			return err
		}
		if note.tick, err = r.number(elem, "tick", true, 0); nil != err {
			return err
		}
		if note.x, err = r.number(elem, "x", true, 0); nil != err {
			return err
		}
		if note.holdTick, err = r.number(elem, "hold_tick", false, 0); nil != err {
			return err
		}
		if note.nextID, err = r.integer(elem, "next_id", false, 0); nil != err {
			return err
		}
		if note.approachRate, err = r.number(elem, "approach_rate", false, 1); nil != err {
			return err
		}
		if note.approachRate <= 0 {
			return &game.ParseError{Line: r.line(r.get(elem, "approach_rate")), Reason: "approach rate must be positive"}
		}
		raw.notes = append(raw.notes, note)
		return nil
	}); nil != err {
		return nil, err
	}

	if err := walk("event_order_list", func(elem gjson.Result) error {
		tick, err := r.number(elem, "tick", true, 0)
		if nil != err {
			return err
		}
		order := game.EventOrder{Tick: tick}
		r.get(elem, "event_list").ForEach(func(_, ev gjson.Result) bool {
			var kind int
			if kind, err = r.integer(ev, "type", true, 0); nil != err {
				return false
			}
			order.Events = append(order.Events, game.ChartEvent{Type: kind, Args: ev.Get("args").String()})
			return true
		})
		if nil != err {
			return err
		}
		raw.events = append(raw.events, order)
		return nil
	}); nil != err {
		return nil, err
	}

	return raw, nil
}
