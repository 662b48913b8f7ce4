package score

import (
	"database/sql"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"git.lost.host/meutraa/scanline/internal/game"
)

var compactTests = []struct {
	inputs  []game.Input
	compact []InputsCompact
}{
	{[]game.Input{}, []InputsCompact{}},
	{
		[]game.Input{
			{Finger: 3, Time: 0.5, Phase: game.Down, Position: game.Vec2{X: 1, Y: 2}},
			{Finger: 1, Time: 1, Phase: game.Down},
			{Finger: 3, Time: 1.5, Phase: game.Up, Position: game.Vec2{X: 1, Y: 2}},
		},
		[]InputsCompact{
			{Finger: 1, Times: []float64{1}, Phases: []game.Phase{game.Down}, Positions: []game.Vec2{{}}},
			{Finger: 3, Times: []float64{0.5, 1.5}, Phases: []game.Phase{game.Down, game.Up}, Positions: []game.Vec2{{X: 1, Y: 2}, {X: 1, Y: 2}}},
		},
	},
	{
		[]game.Input{
			{Finger: 1, Time: 2, Phase: game.Down},
			{Finger: 2, Time: 2, Phase: game.Down},
			{Finger: 1, Time: 2.1, Phase: game.Move},
		},
		[]InputsCompact{
			{Finger: 1, Times: []float64{2, 2.1}, Phases: []game.Phase{game.Down, game.Move}, Positions: []game.Vec2{{}, {}}},
			{Finger: 2, Times: []float64{2}, Phases: []game.Phase{game.Down}, Positions: []game.Vec2{{}}},
		},
	},
}

func TestCompactInputs(t *testing.T) {
	for _, test := range compactTests {
		out := compactInputs(test.inputs)
		if !reflect.DeepEqual(out, test.compact) {
			t.Log("out     ", out)
			t.Log("expected", test.compact)
			t.Fail()
		}
	}
}

func TestUncompactInputs(t *testing.T) {
	for _, test := range compactTests {
		out := uncompactInputs(test.compact)
		if !reflect.DeepEqual(out, test.inputs) {
			t.Log("in      ", test.compact)
			t.Log("out     ", out)
			t.Log("expected", test.inputs)
			t.Fail()
		}
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "scores.db"))
	if err := store.Init(); nil != err {
		t.Fatal(err)
	}
	defer store.Deinit()

	played := time.Unix(1700000000, 0)
	history := &History{
		ID:       "4f1c6a52-0d6e-4a47-9b51-1b0f6b8c2d11",
		Checksum: "sum",
		Mode:     game.Ranked,
		Mods:     game.NewMods(game.Hard, game.FlipX),
		Rate:     1,
		Hitbox:   1.5555,
		Score:    987654,
		Accuracy: 97.5,
		MaxCombo: 120,
		Rank:     "AA",
		PlayedAt: played,
		Inputs:   compactTests[1].inputs,
	}
	if err := store.Save(history); nil != err {
		t.Fatal(err)
	}
	if err := store.Save(history); nil == err {
		t.Log("saving the same session twice should fail")
		t.Fail()
	}

	if len(store.Load("other")) != 0 {
		t.Fail()
	}
	loaded := store.Load("sum")
	if len(loaded) != 1 {
		t.Fatal("expected one history, got", len(loaded))
	}
	h := loaded[0]
	if h.ID != history.ID || h.Mode != game.Ranked || h.Mods.String() != "flip-x,hard" ||
		h.Score != history.Score || h.Hitbox != 1.5555 || h.MaxCombo != 120 || h.Rank != "AA" || !h.PlayedAt.Equal(played) {
		t.Log("loaded", h)
		t.Fail()
	}
	if !reflect.DeepEqual(h.Inputs, history.Inputs) {
		t.Log("inputs", h.Inputs)
		t.Fail()
	}
}

func TestStoreAddsHitboxColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.db")
	db, err := sql.Open("sqlite3", path)
	if nil != err {
		t.Fatal(err)
	}
	_, err = db.Exec(`
	create table scores
	  (
		  id text not null primary key,
		  sum text,
		  mode text,
		  mods text,
		  rate real,
		  judge_offset real,
		  score real,
		  accuracy real,
		  max_combo integer,
		  letter text,
		  played_at integer,
		  inputs bytearray
	  );
	insert into scores values('old', 'sum', 'normal', '', 1, 0, 900000, 95, 10, 'A', 0, '[]');
	`)
	db.Close()
	if nil != err {
		t.Fatal(err)
	}

	store := NewStore(path)
	if err := store.Init(); nil != err {
		t.Fatal(err)
	}
	defer store.Deinit()
	loaded := store.Load("sum")
	if len(loaded) != 1 || loaded[0].ID != "old" || loaded[0].Hitbox != 0 {
		t.Log(loaded)
		t.Fail()
	}
	// Opening again finds the column already there
	again := NewStore(path)
	if err := again.Init(); nil != err {
		t.Fatal(err)
	}
	again.Deinit()
}
