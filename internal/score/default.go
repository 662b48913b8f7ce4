package score

import (
	"database/sql"
	"encoding/json"
	"log"
	"sort"
	"strings"
	"time"

	"git.lost.host/meutraa/scanline/internal/game"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

type DefaultStore struct {
	Path string
	db   *sql.DB
}

func NewStore(path string) *DefaultStore {
	return &DefaultStore{Path: path}
}

// InputsCompact holds every event of one finger as parallel lists.
type InputsCompact struct {
	Finger    int
	Times     []float64
	Phases    []game.Phase
	Positions []game.Vec2
}

func compactInputs(inputs []game.Input) []InputsCompact {
	byFinger := map[int]*InputsCompact{}
	fingers := []int{}
	for _, i := range inputs {
		c, ok := byFinger[i.Finger]
		if !ok {
			c = &InputsCompact{Finger: i.Finger}
			byFinger[i.Finger] = c
			fingers = append(fingers, i.Finger)
		}
		c.Times = append(c.Times, i.Time)
		c.Phases = append(c.Phases, i.Phase)
		c.Positions = append(c.Positions, i.Position)
	}
	sort.Ints(fingers)
	ins := make([]InputsCompact, len(fingers))
	for n, f := range fingers {
		ins[n] = *byFinger[f]
	}
	return ins
}

// uncompactInputs restores the time order, fingers breaking ties.
func uncompactInputs(inputs []InputsCompact) []game.Input {
	ins := []game.Input{}
	for _, c := range inputs {
		for n, t := range c.Times {
			if n >= len(c.Phases) || n >= len(c.Positions) {
				break
			}
			ins = append(ins, game.Input{
				Finger:   c.Finger,
				Time:     t,
				Phase:    c.Phases[n],
				Position: c.Positions[n],
			})
		}
	}
	sort.SliceStable(ins, func(i, j int) bool {
		if ins[i].Time != ins[j].Time {
			return ins[i].Time < ins[j].Time
		}
		return ins[i].Finger < ins[j].Finger
	})
	return ins
}

func (s *DefaultStore) Init() error {
	db, err := sql.Open("sqlite3", s.Path)
	if err != nil {
		return errors.Wrap(err, "unable to open score database")
	}

	initStatement := `
	create table if not exists scores
	  (
		  id text not null primary key,
		  sum text,
		  mode text,
		  mods text,
		  rate real,
		  judge_offset real,
		  hitbox real not null default 0,
		  score real,
		  accuracy real,
		  max_combo integer,
		  letter text,
		  played_at integer,
		  inputs bytearray
	  );
	create index if not exists scores_sum on scores(sum);
	`
	if _, err = db.Exec(initStatement); nil != err {
		db.Close()
		return errors.Wrap(err, "unable to create score table")
	}

	// Databases written before the hitbox was stored
	if _, err = db.Exec("alter table scores add column hitbox real not null default 0"); nil != err &&
		!strings.Contains(err.Error(), "duplicate column") {
		db.Close()
		return errors.Wrap(err, "unable to add hitbox column")
	}

	s.db = db
	return nil
}

func (s *DefaultStore) Deinit() {
	if nil != s.db {
		s.db.Close()
	}
}

func (s *DefaultStore) Save(h *History) error {
	if nil == s.db {
		return errors.New("score database is not open")
	}
	data, err := json.Marshal(compactInputs(h.Inputs))
	if nil != err {
		return errors.Wrap(err, "unable to marshal inputs")
	}
	_, err = s.db.Exec(
		"insert into scores(id, sum, mode, mods, rate, judge_offset, hitbox, score, accuracy, max_combo, letter, played_at, inputs) values(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		h.ID, h.Checksum, h.Mode.String(), h.Mods.String(), h.Rate, h.Offset, h.Hitbox,
		h.Score, h.Accuracy, h.MaxCombo, h.Rank, h.PlayedAt.UnixNano(), data,
	)
	return errors.Wrap(err, "unable to save score")
}

func (s *DefaultStore) Load(checksum string) []History {
	histories := []History{}
	if nil == s.db {
		return histories
	}
	rows, err := s.db.Query(
		"select id, sum, mode, mods, rate, judge_offset, hitbox, score, accuracy, max_combo, letter, played_at, inputs from scores where sum = ? order by played_at",
		checksum,
	)
	if nil != err {
		log.Println("unable to load scores", err)
		return histories
	}
	defer rows.Close()
	for rows.Next() {
		var h History
		var mode, mods string
		var playedAt int64
		var inputs []byte
		if err := rows.Scan(&h.ID, &h.Checksum, &mode, &mods, &h.Rate, &h.Offset, &h.Hitbox,
			&h.Score, &h.Accuracy, &h.MaxCombo, &h.Rank, &playedAt, &inputs); nil != err {
			log.Println("unable to read score row", err)
			continue
		}
		h.Mode = game.ModeMap[mode]
		if h.Mods, err = game.ParseMods(mods); nil != err {
			log.Println("unable to parse stored mods", err)
			continue
		}
		h.PlayedAt = time.Unix(0, playedAt)

		var ins []InputsCompact
		if err := json.Unmarshal(inputs, &ins); nil != err {
			log.Println("unable to unmarshal input history", err)
			continue
		}
		h.Inputs = uncompactInputs(ins)
		histories = append(histories, h)
	}
	return histories
}
