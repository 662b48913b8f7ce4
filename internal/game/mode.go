package game

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

type Mode int

const (
	Normal Mode = iota
	Practice
	Ranked
	Tier
)

var ModeMap = map[string]Mode{
	"normal":   Normal,
	"practice": Practice,
	"ranked":   Ranked,
	"tier":     Tier,
}

func (m Mode) String() string {
	for name, mode := range ModeMap {
		if mode == m {
			return name
		}
	}
	return "unknown"
}

// Ranked reports whether the mode scores with the ranked formula.
func (m Mode) Ranked() bool {
	return m == Ranked || m == Tier
}

type Mod string

const (
	Auto       Mod = "auto"
	AutoHold   Mod = "auto-hold"
	AutoDrag   Mod = "auto-drag"
	AutoFlick  Mod = "auto-flick"
	Hard       Mod = "hard"
	ExHard     Mod = "ex-hard"
	AllPerfect Mod = "all-perfect"
	FullCombo  Mod = "full-combo"
	FlipX      Mod = "flip-x"
	FlipY      Mod = "flip-y"
	FlipAll    Mod = "flip-all"
	Fast       Mod = "fast"
	Slow       Mod = "slow"
)

var AllMods = []Mod{Auto, AutoHold, AutoDrag, AutoFlick, Hard, ExHard, AllPerfect, FullCombo, FlipX, FlipY, FlipAll, Fast, Slow}

func ParseMod(s string) (Mod, error) {
	for _, m := range AllMods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", errors.Errorf("unknown mod %q", s)
}

type Mods map[Mod]bool

func NewMods(mods ...Mod) Mods {
	ms := Mods{}
	for _, m := range mods {
		ms[m] = true
	}
	return ms
}

func (ms Mods) Has(m Mod) bool {
	return ms[m]
}

func (ms Mods) IsAutoEnabled(t NoteType) bool {
	if ms[Auto] {
		return true
	}
	switch {
	case t.IsHold():
		return ms[AutoHold]
	case t.IsDrag():
		return ms[AutoDrag]
	case t == Flick:
		return ms[AutoFlick]
	}
	return false
}

// AnyAuto reports whether any auto-play mod is active.
func (ms Mods) AnyAuto() bool {
	return ms[Auto] || ms[AutoHold] || ms[AutoDrag] || ms[AutoFlick]
}

// String is sorted so it can be stored and compared.
func (ms Mods) String() string {
	names := make([]string, 0, len(ms))
	for m, on := range ms {
		if on {
			names = append(names, string(m))
		}
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

func ParseMods(s string) (Mods, error) {
	ms := Mods{}
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name == "" {
			continue
		}
		m, err := ParseMod(name)
		if nil != err {
			return nil, err
		}
		ms[m] = true
	}
	return ms, nil
}

// Rules answers the auto-play and game mode queries for one session.
type Rules struct {
	Mode Mode
	Mods Mods
}

func (r Rules) IsAutoEnabled(t NoteType) bool {
	return r.Mods.IsAutoEnabled(t)
}

func (r Rules) GameMode() Mode {
	return r.Mode
}
