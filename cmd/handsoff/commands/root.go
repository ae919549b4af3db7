// Package commands implements the handsoff CLI.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/handsoff/internal/app"
	"github.com/ayusman/handsoff/internal/config"
	"github.com/ayusman/handsoff/internal/logger"
	"github.com/ayusman/handsoff/internal/server"
	"github.com/ayusman/handsoff/internal/session"
	"github.com/ayusman/handsoff/internal/store"
	"github.com/ayusman/handsoff/internal/tray"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "handsoff",
	Short: "Warns you when you touch your face",
	Long: `handsoff watches your webcam and plays a sound when you touch your face.

Train it once with your hands away (Train 1) and once touching your face
(Train 2), then press Run. Controls live in the system tray and in the local
web UI.`,
	SilenceUsage: true,
	RunE:         runDetector,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.Flags().String("addr", "", "HTTP listen address (overrides server.addr)")
	rootCmd.Flags().Int("camera", -1, "camera device index (overrides camera.device)")
	rootCmd.Flags().Bool("no-tray", false, "run without the system tray")

	rootCmd.AddCommand(episodesCmd, configCmd, versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the configuration and initialises logging from it.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logger.Init(logger.Options{Level: level, Format: cfg.Log.Format})
	return cfg, nil
}

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("addr") {
		addr, err := cmd.Flags().GetString("addr")
		if err != nil {
			return fmt.Errorf("failed to read 'addr' flag: %w", err)
		}
		cfg.Server.Addr = addr
	}
	if cmd.Flags().Changed("camera") {
		dev, err := cmd.Flags().GetInt("camera")
		if err != nil {
			return fmt.Errorf("failed to read 'camera' flag: %w", err)
		}
		cfg.Camera.Device = dev
	}
	if cmd.Flags().Changed("no-tray") {
		noTray, err := cmd.Flags().GetBool("no-tray")
		if err != nil {
			return fmt.Errorf("failed to read 'no-tray' flag: %w", err)
		}
		cfg.Tray.Enabled = !noTray
	}
	return nil
}

func openStore(cfg config.Config) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return store.New(cfg.Store.Path)
}

func runDetector(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, &cfg); err != nil {
		return err
	}
	log := logger.Named("main")

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := app.New(app.Options{Config: cfg, Store: st})
	if err := a.Start(ctx); err != nil {
		return err
	}
	defer a.Stop()

	staticDir := cfg.Server.StaticDir
	if staticDir == "" {
		staticDir = findWebDir()
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		Store:     st,
		Camera:    a.Camera(),
		Session:   a.Session(),
		Context:   ctx,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(cfg.Server.Addr)
	}()

	if cfg.Tray.Enabled {
		runTray(ctx, cancel, a.Session(), "http://"+cfg.Server.Addr)
	} else {
		select {
		case <-ctx.Done():
		case err := <-errCh:
			if err != nil {
				log.Error().Err(err).Msg("http server failed")
			}
		}
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		log.Warn().Err(err).Msg("http shutdown")
	}
	return nil
}

// runTray blocks on the tray event loop until Quit or ctx is cancelled.
func runTray(ctx context.Context, cancel context.CancelFunc, s *session.Session, uiURL string) {
	log := logger.Named("tray")

	t := tray.New()
	s.AddObserver(t)

	t.OnAction(func(a session.Action) {
		if err := s.Do(ctx, a); err != nil {
			log.Warn().Err(err).Stringer("action", a).Msg("action rejected")
		}
	})
	t.OnOpenUI(func() {
		if err := openBrowser(uiURL); err != nil {
			log.Warn().Err(err).Str("url", uiURL).Msg("failed to open browser")
		}
	})
	t.OnQuit(cancel)

	go func() {
		<-ctx.Done()
		t.Quit()
	}()

	t.Run()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and the config directory's web/.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	candidates := []string{"web", "../web", "../../web"}
	if dir, err := config.Dir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "web"))
	}

	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
