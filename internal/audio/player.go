package audio

import (
	"math"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"git.lost.host/meutraa/scanline/internal/play"
	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/pkg/errors"
)

// Player plays the music of a chart and is the clock of the session. The
// clock runs off the wall clock from the moment playback is scheduled, the
// speaker buffer is too coarse to time notes with.
type Player struct {
	// Added to the song position to get the chart time
	Offset float64

	mu       sync.Mutex
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	rate     float64
	clock    *play.WallClock
	timer    *time.Timer
}

// Open decodes an .mp3 or .ogg file. Playing at rate is done by telling
// the speaker the wrong sample rate.
func Open(file string, rate float64) (*Player, error) {
	if rate <= 0 {
		return nil, errors.Errorf("invalid rate %v", rate)
	}
	f, err := os.Open(file)
	if nil != err {
		return nil, errors.Wrap(err, "unable to open music")
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(path.Ext(file)) {
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	default:
		f.Close()
		return nil, errors.Errorf("unsupported music format %s", path.Ext(file))
	}
	if nil != err {
		return nil, errors.Wrapf(err, "unable to decode %s", file)
	}

	return &Player{
		streamer: streamer,
		format:   format,
		ctrl:     &beep.Ctrl{Streamer: streamer},
		rate:     rate,
		clock:    play.NewWallClock(rate),
	}, nil
}

// Length of the song in seconds of song time.
func (p *Player) Length() float64 {
	return p.format.SampleRate.D(p.streamer.Len()).Seconds()
}

// Start begins playback after delay. The clock starts immediately, negative
// until the music does.
func (p *Player) Start(delay time.Duration) error {
	sampleRate := beep.SampleRate(math.Round(float64(p.format.SampleRate) * p.rate))
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/60)); nil != err {
		return errors.Wrap(err, "unable to initialise speaker")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.clock.Start(p.Offset - delay.Seconds()*p.rate)
	p.timer = time.AfterFunc(delay, func() {
		speaker.Play(p.ctrl)
	})
	return nil
}

func (p *Player) Now() float64 {
	return p.clock.Now()
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
	p.clock.Pause()
}

func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	speaker.Lock()
	p.ctrl.Paused = false
	speaker.Unlock()
	p.clock.Resume()
}

// Seek moves playback to chart time t.
func (p *Player) Seek(t float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	song := t - p.Offset
	if song < 0 {
		song = 0
	}
	speaker.Lock()
	err := p.streamer.Seek(p.format.SampleRate.N(time.Duration(song * float64(time.Second))))
	speaker.Unlock()
	if nil != err {
		return errors.Wrap(err, "unable to seek music")
	}
	p.clock.Seek(song + p.Offset)
	return nil
}

func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if nil != p.timer {
		p.timer.Stop()
	}
	speaker.Clear()
	return p.streamer.Close()
}
