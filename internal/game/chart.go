package game

import "sort"

// Chart is built once by the parser and never mutated afterwards, so it
// can be shared between the tick loop and readers without locking.
type Chart struct {
	TimeBase    float64
	MusicOffset float64
	Tempos      []Tempo
	Pages       []Page
	Notes       []*NoteModel // Parse order
	Events      []EventOrder

	// Note ids ordered by start time, ties broken by id
	Chronological []int

	// base64 sha256 of the normalized chart text
	Checksum string

	byID map[int]*NoteModel
}

type Tempo struct {
	Tick  float64
	Value int64 // Microseconds per beat
	Time  float64
}

func (t Tempo) BPM() float64 {
	if t.Value == 0 {
		return 0
	}
	return 60e6 / float64(t.Value)
}

type Page struct {
	StartTick float64
	EndTick   float64
	Direction int // 1 scans upwards, -1 downwards

	StartTime       float64
	EndTime         float64
	ActualStartTick float64
	ActualStartTime float64
}

func (p Page) Duration() float64 {
	return p.EndTime - p.StartTime
}

// Scanline speed change markers
const (
	EventSpeedUp   = 0
	EventSpeedDown = 1
)

type ChartEvent struct {
	Type int
	Args string
}

type EventOrder struct {
	Tick   float64
	Time   float64
	Events []ChartEvent
}

// Index (re)builds the id lookup and the chronological order.
func (c *Chart) Index() {
	c.byID = make(map[int]*NoteModel, len(c.Notes))
	for _, n := range c.Notes {
		c.byID[n.ID] = n
	}

	sorted := make([]*NoteModel, len(c.Notes))
	copy(sorted, c.Notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].StartTime != sorted[j].StartTime {
			return sorted[i].StartTime < sorted[j].StartTime
		}
		return sorted[i].ID < sorted[j].ID
	})
	c.Chronological = make([]int, len(sorted))
	for i, n := range sorted {
		c.Chronological[i] = n.ID
	}
}

func (c *Chart) Len() int {
	return len(c.Notes)
}

func (c *Chart) Note(id int) (*NoteModel, bool) {
	n, ok := c.byID[id]
	return n, ok
}

// DragEnd follows the chain from id to its terminal note. A chain
// referencing a note outside the chart ends at the last resolvable note.
func (c *Chart) DragEnd(id int) *NoteModel {
	n, ok := c.byID[id]
	if !ok {
		return nil
	}
	for steps := 0; n.HasNext() && steps < len(c.Notes); steps++ {
		next, ok := c.byID[n.NextID]
		if !ok {
			break
		}
		n = next
	}
	return n
}

// PageAt returns the index of the page being scanned at time, which is
// len(Pages) once the last page has ended.
func (c *Chart) PageAt(time float64) int {
	i := 0
	for i < len(c.Pages) && time > c.Pages[i].EndTime {
		i++
	}
	return i
}

func (c *Chart) NotesOnPage(page int) []*NoteModel {
	notes := []*NoteModel{}
	for _, id := range c.Chronological {
		if n := c.byID[id]; n.PageIndex == page {
			notes = append(notes, n)
		}
	}
	return notes
}

// EndTime is the latest end time of any note.
func (c *Chart) EndTime() float64 {
	end := 0.0
	for _, n := range c.Notes {
		if n.EndTime > end {
			end = n.EndTime
		}
	}
	return end
}
