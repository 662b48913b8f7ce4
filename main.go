package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"time"

	"git.lost.host/meutraa/scanline/internal/config"
	"git.lost.host/meutraa/scanline/internal/game"
	"git.lost.host/meutraa/scanline/internal/parser"
	"git.lost.host/meutraa/scanline/internal/play"
	"git.lost.host/meutraa/scanline/internal/score"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); nil != err {
		log.Fatalln(err)
	}
}

func run(args []string, out io.Writer) error {
	command, err := config.Parse(args)
	if nil != err {
		return err
	}

	switch command {
	case config.Play.FullCommand():
		return playChart()
	case config.Check.FullCommand():
		return check(out, *config.CheckChart)
	case config.History.FullCommand():
		return history(out, *config.HistoryChart)
	case config.Replay.FullCommand():
		return replay(out, *config.ReplayChart, *config.ReplayID)
	}
	return errors.Errorf("unknown command %s", command)
}

func playChart() error {
	// The terminal belongs to the game until it exits
	f, err := os.OpenFile(*config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if nil != err {
		return errors.Wrap(err, "unable to open log file")
	}
	defer f.Close()
	log.SetOutput(f)
	defer log.SetOutput(os.Stderr)

	p := &Program{}
	defer p.Deinit()
	if err := p.Init(); nil != err {
		return err
	}

	p.Renderer.RenderLoop(*config.FramePeriod, func(now time.Time) bool {
		events := p.Update(now)
		p.Render(events)
		return !p.Done(now)
	})
	return nil
}

// bold wraps s in an escape sequence when out is a terminal.
func bold(out io.Writer, s string) string {
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "\033[1m" + s + "\033[0m"
	}
	return s
}

func check(out io.Writer, file string) error {
	chart, err := parser.New(parser.DefaultOptions()).ParseFile(file)
	if nil != err {
		return err
	}

	counts := map[game.NoteType]int{}
	for _, n := range chart.Notes {
		counts[n.Type]++
	}
	fmt.Fprintln(out, bold(out, file))
	fmt.Fprintf(out, "  checksum  %v\n", chart.Checksum)
	fmt.Fprintf(out, "     notes  %6v\n", chart.Len())
	for t := game.Click; t <= game.Flick; t++ {
		if counts[t] == 0 {
			continue
		}
		fmt.Fprintf(out, "%10v  %6v\n", t, counts[t])
	}
	fmt.Fprintf(out, "     pages  %6v\n", len(chart.Pages))
	fmt.Fprintf(out, "    tempos  %6v\n", len(chart.Tempos))
	fmt.Fprintf(out, "    length  %6.2fs\n", chart.EndTime())
	if len(chart.Tempos) > 0 {
		fmt.Fprintf(out, "       bpm  %6.1f\n", chart.Tempos[0].BPM())
	}
	return nil
}

func loadHistory(file string) (*game.Chart, []score.History, error) {
	chart, err := parser.New(parser.DefaultOptions()).ParseFile(file)
	if nil != err {
		return nil, nil, err
	}
	store := score.NewStore(*config.Database)
	if err := store.Init(); nil != err {
		return nil, nil, err
	}
	defer store.Deinit()
	hs := store.Load(chart.Checksum)
	sort.SliceStable(hs, func(i, j int) bool {
		return hs[i].PlayedAt.After(hs[j].PlayedAt)
	})
	return chart, hs, nil
}

func history(out io.Writer, file string) error {
	_, hs, err := loadHistory(file)
	if nil != err {
		return err
	}
	if len(hs) == 0 {
		fmt.Fprintln(out, "no plays recorded")
		return nil
	}
	fmt.Fprintln(out, bold(out, fmt.Sprintf("%-36v  %-16v  %-8v  %7v  %7v  %5v  %4v  %v", "id", "played", "mode", "score", "acc", "combo", "rank", "mods")))
	for _, h := range hs {
		fmt.Fprintf(out, "%-36v  %-16v  %-8v  %07.0f  %6.2f%%  %5v  %4v  %v\n",
			h.ID, h.PlayedAt.Format("2006-01-02 15:04"), h.Mode, h.Score, h.Accuracy, h.MaxCombo, h.Rank, h.Mods)
	}
	return nil
}

// replayOptions judges a recording the way it was played.
func replayOptions(h *score.History, options parser.Options) play.Options {
	box := h.Hitbox
	if box <= 0 {
		box = play.DefaultHitbox
	}
	return play.Options{
		Rules:    game.Rules{Mode: h.Mode, Mods: h.Mods},
		Offset:   h.Offset,
		Geometry: play.NewCircleGeometry(options.Layout.BaseSize, box),
	}
}

// replay plays back a recorded session, the latest when id is empty.
func replay(out io.Writer, file, id string) error {
	_, hs, err := loadHistory(file)
	if nil != err {
		return err
	}
	var h *score.History
	for i := range hs {
		if id == "" || hs[i].ID == id {
			h = &hs[i]
			break
		}
	}
	if nil == h {
		return errors.Errorf("no play %q recorded for %s", id, file)
	}

	// Mods change note positions and speeds, so parse again with them
	options := parser.OptionsFor(h.Mods)
	chart, err := parser.New(options).ParseFile(file)
	if nil != err {
		return err
	}
	view := play.Replay(chart, replayOptions(h, options), h.Inputs)

	fmt.Fprintln(out, bold(out, h.ID))
	fmt.Fprintf(out, "     score  %07.0f  (recorded %07.0f)\n", view.Score, h.Score)
	fmt.Fprintf(out, "  accuracy  %6.2f%%  (recorded %6.2f%%)\n", view.Accuracy, h.Accuracy)
	fmt.Fprintf(out, " max combo  %7v  (recorded %v)\n", view.MaxCombo, h.MaxCombo)
	fmt.Fprintf(out, "      rank  %7v\n", view.Rank)
	for _, g := range game.Grades {
		fmt.Fprintf(out, "%10v  %7v\n", g, view.Counts[g])
	}
	fmt.Fprintf(out, "early/late  %3v/%-3v\n", view.Early, view.Late)
	fmt.Fprintf(out, "     error  %+.1fms ± %.1fms\n", view.MeanError*1000, view.StdError*1000)
	if view.Score != h.Score {
		log.Printf("replay of %s diverged from the recorded score\n", h.ID)
	}
	return nil
}
