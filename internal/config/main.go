package config

import (
	"strings"

	"git.lost.host/meutraa/scanline/internal/game"
	"github.com/pkg/errors"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	app = kingpin.New("scanline", "Scanline rhythm game in the terminal").Version("0.3.0")

	Rate        = app.Flag("rate", "Playback speed").Default("1.0").Short('r').Float64()
	Offset      = app.Flag("offset", "Judgement offset, positive when you hit late").Default("0ms").Short('o').Duration()
	Delay       = app.Flag("delay", "Start delay").Default("1.5s").Short('d').Duration()
	FramePeriod = app.Flag("frame-period", "Render frame period").Default("4ms").Short('p').Duration()
	mode        = app.Flag("mode", "Game mode").Default("normal").Short('m').Enum("normal", "practice", "ranked", "tier")
	mods        = app.Flag("mod", "Game modifier, may be repeated").Strings()
	LargeHitbox = app.Flag("large-hitbox", "Use the larger note hitboxes").Bool()
	Database    = app.Flag("db", "Score database").Default("scores.db").String()
	LogFile     = app.Flag("log", "Where to log while the game is running").Default("scanline.log").String()

	Play          = app.Command("play", "Play a chart, or several one after another").Default()
	TierThreshold = Play.Flag("tier-threshold", "Average accuracy needed to pass a tier").Default("0.9").Float64()
	Directories   = Play.Arg("directory", "Song directory with a chart and an .mp3/.ogg file, one per tier stage").Required().ExistingDirs()

	Check      = app.Command("check", "Parse a chart and report on it")
	CheckChart = Check.Arg("chart", "Chart file").Required().ExistingFile()

	History      = app.Command("history", "List previous plays of a chart")
	HistoryChart = History.Arg("chart", "Chart file").Required().ExistingFile()

	Replay      = app.Command("replay", "Replay a recorded play of a chart")
	ReplayChart = Replay.Arg("chart", "Chart file").Required().ExistingFile()
	ReplayID    = Replay.Arg("id", "Session id, the latest play when empty").String()
)

// Parse reads the command line, returning the selected command.
func Parse(args []string) (string, error) {
	return app.Parse(args)
}

func Rules() (game.Rules, error) {
	ms, err := game.ParseMods(strings.Join(*mods, ","))
	if nil != err {
		return game.Rules{}, errors.Wrap(err, "invalid mod")
	}
	return game.Rules{Mode: game.ModeMap[*mode], Mods: ms}, nil
}
