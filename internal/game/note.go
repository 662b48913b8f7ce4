package game

import "fmt"

type NoteType int

// Values match the chart wire format
const (
	Click NoteType = iota
	Hold
	LongHold
	DragHead
	DragChild
	Flick
)

var noteTypeNames = [...]string{"click", "hold", "long-hold", "drag-head", "drag-child", "flick"}

func (t NoteType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("NoteType(%d)", int(t))
	}
	return noteTypeNames[t]
}

func (t NoteType) Valid() bool {
	return t >= Click && t <= Flick
}

func (t NoteType) IsDrag() bool {
	return t == DragHead || t == DragChild
}

func (t NoteType) IsHold() bool {
	return t == Hold || t == LongHold
}

type NoteModel struct {
	ID        int
	Type      NoteType
	PageIndex int
	Tick      float64 // Chart tick of the ideal hit
	HoldTick  float64 // Length in ticks, 0 for instantaneous notes
	X         float64 // Chart space, 0 = left edge, 1 = right edge
	Y         float64 // Chart space along the page, signed by scan direction
	NextID    int     // Next note in a drag chain, <= 0 when absent

	ApproachRate float64

	// Derived at parse time
	IntroTime   float64 // When the note becomes visible and touchable
	StartTime   float64 // The time the note should be hit
	EndTime     float64 // StartTime for instantaneous types
	Position    Vec2
	EndPosition Vec2
	Rotation    float64 // Degrees, pointing towards the next chain note
	Speed       float64
	Direction   int // Scan direction of the page, 1 or -1
}

func (n *NoteModel) HasNext() bool {
	return n.NextID > 0
}

func (n *NoteModel) Duration() float64 {
	return n.EndTime - n.StartTime
}
