// Package app wires the camera, embedding model, classifier, alert and
// session together and owns their lifecycle.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ayusman/handsoff/internal/alert"
	"github.com/ayusman/handsoff/internal/capture"
	"github.com/ayusman/handsoff/internal/classifier"
	"github.com/ayusman/handsoff/internal/config"
	"github.com/ayusman/handsoff/internal/embed"
	"github.com/ayusman/handsoff/internal/logger"
	"github.com/ayusman/handsoff/internal/session"
	"github.com/ayusman/handsoff/internal/store"
)

// Options configures an App. Nil collaborators are built from Config.
type Options struct {
	Config   config.Config
	Store    *store.Store
	Camera   capture.Camera
	Embedder embed.Embedder
	Player   alert.Player
	Notifier alert.Notifier
}

// App is the assembled detector.
type App struct {
	opts Options
	log  *logger.Logger

	mu       sync.Mutex
	started  bool
	camera   capture.Camera
	embedder embed.Embedder
	knn      *classifier.KNN
	gate     *alert.Gate
	session  *session.Session
	recorder *Recorder
}

// New creates an App. Nothing is acquired until Start.
func New(opts Options) *App {
	return &App{
		opts: opts,
		log:  logger.Named("app"),
	}
}

// Start acquires the camera, loads the embedding model and initialises the
// alert sinks, in that order. Camera failures are fatal: the returned error
// wraps capture.ErrNoDevice or capture.ErrPermissionDenied.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		return nil
	}
	cfg := a.opts.Config

	cam := a.opts.Camera
	if cam == nil {
		cam = capture.NewCamera(cameraConfig(cfg.Camera))
	}
	if err := cam.Open(ctx); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	a.log.Info().Int("device", cfg.Camera.Device).Msg("camera ready")

	emb, kind := a.loadEmbedder(cfg.Model)
	a.log.Info().Str("embedder", kind).Msg("model ready")

	player := a.opts.Player
	if player == nil {
		player = newPlayer(cfg.Alert)
	}
	notifier := a.opts.Notifier
	if notifier == nil {
		notifier = alert.NewDesktopNotifier(cfg.Cooldown())
	}
	a.log.Info().Dur("cooldown", cfg.Cooldown()).Msg("notifications ready")

	p := buildPipeline(cfg, cam, emb, player, notifier)

	a.camera = cam
	a.embedder = emb
	a.knn = p.knn
	a.gate = p.gate
	a.session = p.session

	if st := a.opts.Store; st != nil {
		if n, err := st.Episodes().CloseOpen(time.Now()); err != nil {
			a.log.Warn().Err(err).Msg("failed to close stale episodes")
		} else if n > 0 {
			a.log.Info().Int("episodes", n).Msg("closed stale episodes")
		}
		if err := st.Settings().Set(SettingEmbedder, kind); err != nil {
			a.log.Warn().Err(err).Msg("failed to save settings")
		}

		a.recorder = NewRecorder(st, p.gate.Plays)
		p.session.AddObserver(a.recorder)
	}

	a.started = true
	a.log.Info().Msg("ready")
	return nil
}

// Stop ends detection and releases the camera and model.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.started {
		return
	}

	if a.session.Phase() == session.Detecting {
		if err := a.session.Stop(); err != nil {
			a.log.Warn().Err(err).Msg("error stopping detection")
		}
	}
	if a.recorder != nil {
		a.recorder.Close()
	}

	if err := a.camera.Close(); err != nil {
		a.log.Warn().Err(err).Msg("error closing camera")
	}
	if err := a.embedder.Close(); err != nil {
		a.log.Warn().Err(err).Msg("error closing embedder")
	}

	a.started = false
	a.log.Info().Msg("stopped")
}

// loadEmbedder loads the configured model, falling back to the pixel
// embedder when the model cannot be loaded.
func (a *App) loadEmbedder(m config.Model) (embed.Embedder, string) {
	if a.opts.Embedder != nil {
		return a.opts.Embedder, "custom"
	}

	emb, err := embed.Load(embedConfig(m))
	if err != nil {
		a.log.Warn().Err(err).Str("path", m.Path).Msg("model not available, using pixel embedder")
		return embed.NewPixelEmbedder(embed.DefaultPixelSize), "pixel"
	}
	if m.Path == "" {
		return emb, "pixel"
	}
	return emb, "dnn"
}

// newPlayer returns a command player for the configured sound, or a beep
// when no sound file or player is available.
func newPlayer(c config.Alert) alert.Player {
	if c.Sound != "" {
		p, err := alert.NewCommandPlayer(c.Player, c.Sound, 0)
		if err == nil {
			return p
		}
		logger.Named("app").Warn().Err(err).Msg("sound player unavailable, falling back to beep")
	}
	return alert.NewBeepPlayer()
}

// Session returns the session. It is nil before Start.
func (a *App) Session() *session.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// Camera returns the camera instance. It is nil before Start.
func (a *App) Camera() capture.Camera {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.camera
}

// Gate returns the alert gate. It is nil before Start.
func (a *App) Gate() *alert.Gate {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gate
}

// Recorder returns the episode recorder, nil without a store.
func (a *App) Recorder() *Recorder {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.recorder
}
