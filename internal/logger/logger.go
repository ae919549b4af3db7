// Package logger provides the process-wide zerolog logger for handsoff.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the root logger.
type Options struct {
	Level  string // trace, debug, info, warn, error
	Format string // console or json
	Writer io.Writer
}

// Logger is the project-wide logging type.
type Logger = zerolog.Logger

var (
	once   sync.Once
	root   atomic.Pointer[zerolog.Logger]
	inited atomic.Bool
)

// Init builds the root logger. Only the first call has an effect.
func Init(opt Options) {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano

		var w io.Writer = os.Stderr
		if opt.Writer != nil {
			w = opt.Writer
		}
		if strings.ToLower(opt.Format) != "json" {
			w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
		}

		l := zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp().Logger()
		root.Store(&l)
		inited.Store(true)
	})
}

// Get returns the root logger, initialising it with defaults if needed.
func Get() *Logger {
	if !inited.Load() {
		Init(Options{Level: "info"})
	}
	return root.Load()
}

// Named returns a child logger tagged with a component field.
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}

// Nop returns a logger that discards everything. Handy in tests.
func Nop() *Logger {
	l := zerolog.Nop()
	return &l
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
