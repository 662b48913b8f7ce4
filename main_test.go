package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"git.lost.host/meutraa/scanline/internal/game"
	"git.lost.host/meutraa/scanline/internal/parser"
	"git.lost.host/meutraa/scanline/internal/play"
	"git.lost.host/meutraa/scanline/internal/score"
	"git.lost.host/meutraa/scanline/internal/testdata"
)

func writeChart(t *testing.T) (dir, file string) {
	dir = t.TempDir()
	file = filepath.Join(dir, "chart.json")
	if err := os.WriteFile(file, testdata.Chart(), 0644); nil != err {
		t.Fatal(err)
	}
	return dir, file
}

func TestCheck(t *testing.T) {
	_, file := writeChart(t)
	var out bytes.Buffer
	if err := run([]string{"check", file}, &out); nil != err {
		t.Fatal(err)
	}
	for _, want := range []string{"notes       7", "drag-child       2", "pages       3"} {
		if !strings.Contains(out.String(), want) {
			t.Log("missing", want, "in", out.String())
			t.Fail()
		}
	}
}

func TestHistoryEmpty(t *testing.T) {
	dir, file := writeChart(t)
	var out bytes.Buffer
	if err := run([]string{"--db", filepath.Join(dir, "scores.db"), "history", file}, &out); nil != err {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "no plays recorded") {
		t.Log(out.String())
		t.Fail()
	}
}

func TestReplayAuto(t *testing.T) {
	dir, file := writeChart(t)
	db := filepath.Join(dir, "scores.db")

	chart, err := parser.New(parser.DefaultOptions()).ParseFile(file)
	if nil != err {
		t.Fatal(err)
	}
	store := score.NewStore(db)
	if err := store.Init(); nil != err {
		t.Fatal(err)
	}
	err = store.Save(&score.History{
		ID:       "auto",
		Checksum: chart.Checksum,
		Mode:     game.Normal,
		Mods:     game.NewMods(game.Auto),
		Rate:     1,
		Score:    1e6,
		Accuracy: 100,
		MaxCombo: 7,
		Rank:     "MAX",
		PlayedAt: time.Now(),
	})
	store.Deinit()
	if nil != err {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := run([]string{"--db", db, "replay", file}, &out); nil != err {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "score  1000000") {
		t.Log(out.String())
		t.Fail()
	}

	out.Reset()
	if err := run([]string{"--db", db, "history", file}, &out); nil != err {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "auto") {
		t.Log(out.String())
		t.Fail()
	}

	if err := run([]string{"--db", db, "replay", file, "missing"}, &out); nil == err {
		t.Log("replayed an unknown play")
		t.Fail()
	}
}

func TestReplayUsesRecordedHitbox(t *testing.T) {
	tests := map[float64]bool{
		0:                  false,
		play.DefaultHitbox: false,
		play.LargeHitbox:   true,
	}
	for box, hits := range tests {
		options := replayOptions(&score.History{Hitbox: box}, parser.DefaultOptions())
		if options.Geometry.Collides(game.Click, game.Vec2{}, game.Vec2{X: 1.4}) != hits {
			t.Log("hitbox", box, "expected hit", hits)
			t.Fail()
		}
	}
}
