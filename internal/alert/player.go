package alert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/ayusman/handsoff/internal/logger"
)

// DefaultPlayTimeout bounds a single playback.
const DefaultPlayTimeout = 30 * time.Second

var (
	// ErrAlreadyPlaying is returned by Play while a previous playback runs.
	ErrAlreadyPlaying = errors.New("sound already playing")

	// ErrNoPlayer is returned when no player command is available.
	ErrNoPlayer = errors.New("no sound player available")
)

// Player plays the alert sound and reports when playback ends.
type Player interface {
	// Play starts playback and returns without waiting for it to finish.
	Play() error

	// OnPlaybackFinished registers fn to run after every playback ends.
	OnPlaybackFinished(fn func())
}

// finisher holds the single playback-finished subscriber and the in-flight
// flag shared by the player implementations.
type finisher struct {
	mu         sync.Mutex
	onFinished func()
	playing    bool
}

func (f *finisher) OnPlaybackFinished(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onFinished = fn
}

// begin marks a playback as in flight, failing if one already is.
func (f *finisher) begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.playing {
		return ErrAlreadyPlaying
	}
	f.playing = true
	return nil
}

// abort clears the in-flight flag without emitting the finished event.
func (f *finisher) abort() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = false
}

// finish clears the in-flight flag and notifies the subscriber.
func (f *finisher) finish() {
	f.mu.Lock()
	f.playing = false
	fn := f.onFinished
	f.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// CommandPlayer plays a sound file by running an external player such as
// afplay or paplay. Process exit is the playback-finished event.
type CommandPlayer struct {
	finisher
	command []string
	sound   string
	timeout time.Duration
	log     *logger.Logger
}

// NewCommandPlayer creates a player running command with sound appended as
// the last argument. An empty command selects DefaultPlayerCommand.
func NewCommandPlayer(command []string, sound string, timeout time.Duration) (*CommandPlayer, error) {
	if len(command) == 0 {
		command = DefaultPlayerCommand()
	}
	if len(command) == 0 {
		return nil, ErrNoPlayer
	}
	if sound == "" {
		return nil, errors.New("no sound file configured")
	}
	if timeout <= 0 {
		timeout = DefaultPlayTimeout
	}

	return &CommandPlayer{
		command: command,
		sound:   sound,
		timeout: timeout,
		log:     logger.Named("player"),
	}, nil
}

// DefaultPlayerCommand returns the stock audio player for this platform,
// or nil if none is installed.
func DefaultPlayerCommand() []string {
	var candidates [][]string
	switch runtime.GOOS {
	case "darwin":
		candidates = [][]string{{"afplay"}}
	case "linux":
		candidates = [][]string{{"paplay"}, {"aplay", "-q"}, {"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"}}
	}

	for _, c := range candidates {
		if _, err := exec.LookPath(c[0]); err == nil {
			return c
		}
	}
	return nil
}

// Play starts the player process.
func (p *CommandPlayer) Play() error {
	if err := p.begin(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)

	args := append(append([]string{}, p.command[1:]...), p.sound)
	cmd := exec.CommandContext(ctx, p.command[0], args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		cancel()
		p.abort()
		return fmt.Errorf("start %s: %w", p.command[0], err)
	}

	go func() {
		defer cancel()

		err := cmd.Wait()
		switch {
		case ctx.Err() == context.DeadlineExceeded:
			p.log.Warn().Dur("timeout", p.timeout).Msg("sound playback timed out")
		case err != nil:
			p.log.Warn().Err(err).Str("stderr", strings.TrimSpace(stderr.String())).Msg("sound player failed")
		}

		p.finish()
	}()

	return nil
}

// BeepPlayer plays a system beep. It is the fallback when no sound file is
// configured.
type BeepPlayer struct {
	finisher
	freq     float64
	duration int
	beep     func(freq float64, duration int) error
	log      *logger.Logger
}

// NewBeepPlayer creates a BeepPlayer with beeep's default tone.
func NewBeepPlayer() *BeepPlayer {
	return &BeepPlayer{
		freq:     beeep.DefaultFreq,
		duration: beeep.DefaultDuration,
		beep:     beeep.Beep,
		log:      logger.Named("player"),
	}
}

// Play beeps on a background goroutine.
func (p *BeepPlayer) Play() error {
	if err := p.begin(); err != nil {
		return err
	}

	go func() {
		if err := p.beep(p.freq, p.duration); err != nil {
			p.log.Warn().Err(err).Msg("beep failed")
		}
		p.finish()
	}()

	return nil
}
