package play

import (
	"math"
	"testing"
	"time"

	"git.lost.host/meutraa/scanline/internal/game"
)

func TestWallClock(t *testing.T) {
	now := time.Unix(1700000000, 0)
	c := NewWallClock(1.5)
	c.now = func() time.Time { return now }

	if c.Now() != 0 {
		t.Log("a new clock should be paused at zero", c.Now())
		t.Fail()
	}
	c.Start(-1)
	now = now.Add(2 * time.Second)
	if math.Abs(c.Now()-2) > 1e-9 {
		t.Log("expected 2 at rate 1.5, got", c.Now())
		t.Fail()
	}

	c.Pause()
	now = now.Add(time.Hour)
	if math.Abs(c.Now()-2) > 1e-9 {
		t.Log("paused clock moved", c.Now())
		t.Fail()
	}
	c.Resume()
	now = now.Add(time.Second)
	if math.Abs(c.Now()-3.5) > 1e-9 {
		t.Log(c.Now())
		t.Fail()
	}

	c.Seek(10)
	now = now.Add(time.Second)
	if math.Abs(c.Now()-11.5) > 1e-9 {
		t.Log(c.Now())
		t.Fail()
	}
}

var geometryTests = map[float64]bool{
	0:    true,
	1.31: true,
	1.32: false,
}

func TestCircleGeometry(t *testing.T) {
	g := NewCircleGeometry(5, DefaultHitbox)
	for x, hit := range geometryTests {
		if g.Collides(game.Click, game.Vec2{}, game.Vec2{X: x}) != hit {
			t.Log(x, "expected", hit)
			t.Fail()
		}
	}
	large := NewCircleGeometry(5, LargeHitbox)
	if !large.Collides(game.Click, game.Vec2{}, game.Vec2{X: 1.4}) {
		t.Log("large hitbox too small")
		t.Fail()
	}
	if g.Radii[game.DragChild] >= g.Radii[game.DragHead] || g.Radii[game.DragHead] >= g.Radii[game.Click] ||
		g.Radii[game.Flick] <= g.Radii[game.Click] {
		t.Log(g.Radii)
		t.Fail()
	}
}
