package parser

import (
	"math"
	"strconv"

	"git.lost.host/meutraa/scanline/internal/game"
)

// The time it takes the scanline to cross one page at the reference tempo
const referenceScan = 1.367

type timeline struct {
	timeBase float64
	tempos   []game.Tempo
}

func (t timeline) toTime(tick float64) float64 {
	result := 0.0
	currentTick := 0.0
	zone := 0
	for i := 1; i < len(t.tempos); i++ {
		if t.tempos[i].Tick >= tick {
			break
		}
		result += (t.tempos[i].Tick - currentTick) * 1e-6 * float64(t.tempos[i-1].Value) / t.timeBase
		currentTick = t.tempos[i].Tick
		zone++
	}
	return result + (tick-currentTick)*1e-6*float64(t.tempos[zone].Value)/t.timeBase
}

// noteSpeed scales the approach of notes on pages shorter than the
// reference scan so they are not visible for less time than usual.
func noteSpeed(pages []game.Page, index int, tick float64) float64 {
	page := pages[index]
	previous := pages[index-1]
	ratio := (tick - page.ActualStartTick) / (page.EndTick - page.ActualStartTick)
	tempo := (page.EndTime-page.ActualStartTime)*ratio +
		(previous.EndTime-previous.ActualStartTime)*(referenceScan-ratio)
	if tempo >= referenceScan || tempo <= 0 {
		return 1
	}
	return referenceScan / tempo
}

type geometry struct {
	layout Layout
	pages  []game.Page
	flipX  bool
}

func (g geometry) screenX(x float64) float64 {
	l := g.layout
	sx := (x*2*l.HorizontalRatio - l.HorizontalRatio) * l.BaseSize * l.ScreenRatio
	if g.flipX {
		return -sx
	}
	return sx
}

func (g geometry) chartY(page game.Page, tick float64) float64 {
	return float64(page.Direction) * (tick - page.StartTick) / (page.EndTick - page.StartTick)
}

func (g geometry) noteScreenY(page game.Page, tick float64) float64 {
	l := g.layout
	return l.VerticalRatio*float64(page.Direction)*
		(-l.BaseSize+2*l.BaseSize*(tick-page.StartTick)/(page.EndTick-page.StartTick)) +
		l.VerticalOffset
}

// tickScreenY places a tick on whichever page it falls in, mirroring past
// the last page.
func (g geometry) tickScreenY(tick float64) float64 {
	i := 0
	for i < len(g.pages) && tick > g.pages[i].EndTick {
		i++
	}
	if i < len(g.pages) {
		return g.noteScreenY(g.pages[i], tick)
	}
	l := g.layout
	last := g.pages[len(g.pages)-1]
	return -l.VerticalRatio*float64(last.Direction)*
		(-l.BaseSize+2*l.BaseSize*(tick-last.EndTick)/(last.EndTick-last.StartTick)) +
		l.VerticalOffset
}

// rotation in degrees of a chain segment from p towards next
func rotation(p, next game.Vec2) float64 {
	switch {
	case p == next:
		return 0
	case math.Abs(p.Y-next.Y) < 0.000001:
		if p.X > next.X {
			return 90
		}
		return -90
	case math.Abs(p.X-next.X) < 0.000001:
		if p.Y > next.Y {
			return -180
		}
		return 0
	}
	deg := math.Atan((next.X-p.X)/(next.Y-p.Y)) / math.Pi * 180
	if next.Y <= p.Y {
		deg += 180
	}
	return -deg
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
