package parser

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"git.lost.host/meutraa/scanline/internal/game"
)

const legacyTimeBase = 480

type legacyNote struct {
	line       int
	originalID int
	time       float64
	x          float64
	duration   float64
	drag       bool
	chainHead  bool
	next       *legacyNote
	id         int
}

type legacyReader struct {
	lineNo int
	fields []string
}

func (r legacyReader) float(i int) (float64, error) {
	if i >= len(r.fields) {
		return 0, &game.ParseError{Line: r.lineNo, Reason: fmt.Sprintf("%s expects %d values", r.fields[0], i)}
	}
	f, err := strconv.ParseFloat(r.fields[i], 64)
	if nil != err || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &game.ParseError{Line: r.lineNo, Reason: fmt.Sprintf("malformed number %q", r.fields[i])}
	}
	return f, nil
}

func (r legacyReader) integer(i int) (int, error) {
	if i >= len(r.fields) {
		return 0, &game.ParseError{Line: r.lineNo, Reason: fmt.Sprintf("%s expects %d values", r.fields[0], i)}
	}
	n, err := strconv.Atoi(r.fields[i])
	if nil != err {
		return 0, &game.ParseError{Line: r.lineNo, Reason: fmt.Sprintf("malformed integer %q", r.fields[i])}
	}
	return n, nil
}

// parseLegacy reads the line based format and converts it into the same
// shape as the structured one: a single tempo lasting one page, pages of
// one beat each alternating direction and notes renumbered in time order.
func parseLegacy(text string) (*rawChart, error) {
	pageSize := 0.0
	pageShift := 0.0
	notes := map[int]*legacyNote{}

	for i, line := range strings.Split(text, "\n") {
		r := legacyReader{lineNo: i + 1, fields: strings.Fields(line)}
		if len(r.fields) == 0 {
			continue
		}
		var err error
		switch r.fields[0] {
		case "PAGE_SIZE":
			if pageSize, err = r.float(1); nil != err {
				return nil, err
			}
			if pageSize <= 0 {
				return nil, &game.ParseError{Line: r.lineNo, Reason: "page size must be positive"}
			}
		case "PAGE_SHIFT":
			if pageShift, err = r.float(1); nil != err {
				return nil, err
			}
		case "NOTE":
			n := &legacyNote{line: r.lineNo}
			if n.originalID, err = r.integer(1); nil != err {
				return nil, err
			}
			if n.time, err = r.float(2); nil != err {
				return nil, err
			}
			if n.x, err = r.float(3); nil != err {
				return nil, err
			}
			if n.duration, err = r.float(4); nil != err {
				return nil, err
			}
			if n.duration < 0 {
				return nil, &game.ParseError{Line: r.lineNo, Reason: "negative duration"}
			}
			if _, ok := notes[n.originalID]; ok {
				return nil, &game.ParseError{Line: r.lineNo, Reason: "duplicate note id " + itoa(n.originalID)}
			}
			notes[n.originalID] = n
		case "LINK":
			chain := []*legacyNote{}
			for _, field := range r.fields[1:] {
				id, err := strconv.Atoi(field)
				if nil != err {
					continue
				}
				n, ok := notes[id]
				if !ok {
					return nil, &game.StructuralError{NoteID: id, Reason: fmt.Sprintf("line %d links unknown note", r.lineNo)}
				}
				n.drag = true
				if !containsNote(chain, n) {
					chain = append(chain, n)
				}
			}
			for j := 0; j+1 < len(chain); j++ {
				chain[j].next = chain[j+1]
			}
			if len(chain) > 0 {
				chain[0].chainHead = true
			}
		}
	}

	if pageSize <= 0 {
		return nil, &game.ParseError{Reason: "missing PAGE_SIZE"}
	}

	sorted := make([]*legacyNote, 0, len(notes))
	for _, n := range notes {
		sorted = append(sorted, n)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].time != sorted[j].time {
			return sorted[i].time < sorted[j].time
		}
		return sorted[i].originalID < sorted[j].originalID
	})
	for i, n := range sorted {
		n.id = i
	}

	pageShift += pageSize
	if pageShift < 0 {
		pageShift += 2 * pageSize
	}
	tempo := int64(pageSize * 1e6)
	shiftTicks := pageShift / pageSize * legacyTimeBase
	ticksPerSecond := legacyTimeBase * 1e6 / float64(tempo)

	raw := &rawChart{
		timeBase:    legacyTimeBase,
		musicOffset: shiftTicks / legacyTimeBase / 1e6 * float64(tempo),
		tempos:      []game.Tempo{{Tick: 0, Value: tempo}},
	}

	lastPage := 0
	for _, n := range sorted {
		note := rawNote{
			line:         n.line,
			id:           n.id,
			kind:         game.Click,
			tick:         n.time*ticksPerSecond + shiftTicks,
			holdTick:     n.duration * ticksPerSecond,
			x:            n.x,
			approachRate: 1,
		}
		switch {
		case n.drag && n.chainHead:
			note.kind = game.DragHead
		case n.drag:
			note.kind = game.DragChild
		case n.duration > 0:
			note.kind = game.Hold
		}
		if n.drag {
			note.nextID = -1
			if nil != n.next {
				note.nextID = n.next.id
			}
		}
		note.pageIndex = int(math.Floor(note.tick / legacyTimeBase))
		if note.pageIndex > lastPage {
			lastPage = note.pageIndex
		}
		raw.notes = append(raw.notes, note)
	}

	direction := -1
	for i := 0; i <= lastPage; i++ {
		raw.pages = append(raw.pages, rawPage{
			startTick: float64(i * legacyTimeBase),
			endTick:   float64((i + 1) * legacyTimeBase),
			direction: direction,
		})
		direction = -direction
	}
	return raw, nil
}

func containsNote(notes []*legacyNote, n *legacyNote) bool {
	for _, o := range notes {
		if o == n {
			return true
		}
	}
	return false
}
