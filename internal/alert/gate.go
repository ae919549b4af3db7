// Package alert implements the debounced sound alert and the desktop
// notification sinks.
package alert

import (
	"sync"

	"github.com/ayusman/handsoff/internal/logger"
)

// Message is the notification shown on every touched detection.
type Message struct {
	Title string
	Body  string
}

// DefaultMessage matches the stock alert text.
var DefaultMessage = Message{Title: "Touched", Body: "Hand down"}

// Gate debounces the sound so that a sustained touched state plays it once
// per episode. It starts armed, disarms when it plays, and re-arms only when
// the player reports that playback finished.
//
// Notifications are not debounced: every Trigger sends one, armed or not.
// The notifier applies its own cooldown.
type Gate struct {
	player   Player
	notifier Notifier
	msg      Message
	log      *logger.Logger

	mu       sync.Mutex
	armed    bool
	plays    int
	triggers int
}

// NewGate creates an armed Gate and subscribes it to the player's
// playback-finished event.
func NewGate(player Player, notifier Notifier, msg Message) *Gate {
	g := &Gate{
		player:   player,
		notifier: notifier,
		msg:      msg,
		log:      logger.Named("alert"),
		armed:    true,
	}
	player.OnPlaybackFinished(g.rearm)
	return g
}

// Trigger reports one touched detection.
func (g *Gate) Trigger() {
	g.mu.Lock()
	g.triggers++
	fire := g.armed
	g.armed = false
	g.mu.Unlock()

	if fire {
		if err := g.player.Play(); err != nil {
			// Nothing is playing, so no finished event will come.
			g.log.Warn().Err(err).Msg("alert sound failed to start")
			g.rearm()
		} else {
			g.mu.Lock()
			g.plays++
			g.mu.Unlock()
			g.log.Info().Msg("alert sound playing")
		}
	}

	if g.notifier != nil {
		if err := g.notifier.Notify(g.msg.Title, g.msg.Body); err != nil {
			g.log.Debug().Err(err).Msg("notification not shown")
		}
	}
}

func (g *Gate) rearm() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.armed = true
}

// Armed reports whether the next Trigger will play the sound.
func (g *Gate) Armed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.armed
}

// Plays returns how many times the sound was started.
func (g *Gate) Plays() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.plays
}

// Triggers returns how many touched detections were reported.
func (g *Gate) Triggers() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.triggers
}
