// Package session runs the train-then-detect workflow: two labelled sampling
// phases followed by a detection loop that drives the alert.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ayusman/handsoff/internal/classifier"
	"github.com/ayusman/handsoff/internal/embed"
	"github.com/ayusman/handsoff/internal/logger"
)

// ErrActionDisabled is returned when a command is not permitted in the
// current phase.
var ErrActionDisabled = errors.New("action not enabled in current phase")

// Classifier embeds the current camera frame and classifies vectors.
// classifier.Adapter implements it.
type Classifier interface {
	Embed() (embed.Vector, error)
	AddExample(v embed.Vector, label classifier.Label) error
	PredictClass(v embed.Vector) (classifier.Result, error)
	Counts() map[classifier.Label]int
}

// Alerter receives one call per touched detection. alert.Gate implements it.
type Alerter interface {
	Trigger()
}

// Config holds the session timings.
type Config struct {
	SampleCount      int
	TrainingDuration time.Duration
	TickInterval     time.Duration
	Threshold        float64
}

// DefaultConfig returns 50 samples over 5s per label, a 1s detection tick and
// a 0.8 threshold.
func DefaultConfig() Config {
	return Config{
		SampleCount:      50,
		TrainingDuration: 5 * time.Second,
		TickInterval:     time.Second,
		Threshold:        0.8,
	}
}

// TrainingReport describes one finished sampling phase.
type TrainingReport struct {
	Label      classifier.Label
	Requested  int
	Collected  int
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}

// Status is a point-in-time view of the session.
type Status struct {
	Phase   Phase                    `json:"phase"`
	Actions Actions                  `json:"actions"`
	Touched bool                     `json:"touched"`
	Last    *classifier.Result       `json:"last,omitempty"`
	Counts  map[classifier.Label]int `json:"counts"`
	Error   string                   `json:"error,omitempty"`
}

// Session owns the classifier and alert and sequences training and
// detection. All methods are safe for concurrent use.
type Session struct {
	config Config
	clf    Classifier
	alert  Alerter
	log    *logger.Logger

	mu        sync.Mutex
	phase     Phase
	touched   bool
	last      *classifier.Result
	err       error
	cancel    context.CancelFunc
	done      chan struct{}
	observers []Observer
}

// New creates an idle Session.
func New(clf Classifier, alert Alerter, config Config) *Session {
	return &Session{
		config: config,
		clf:    clf,
		alert:  alert,
		log:    logger.Named("session"),
		phase:  Idle,
	}
}

// AddObserver subscribes o to session events.
func (s *Session) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Actions returns the commands enabled right now.
func (s *Session) Actions() Actions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ActionsFor(s.phase)
}

// IsTouched reports the outcome of the latest detection tick.
func (s *Session) IsTouched() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// Err returns the error that ended detection, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.mu.Lock()
	st := Status{
		Phase:   s.phase,
		Actions: ActionsFor(s.phase),
		Touched: s.touched,
		Last:    s.last,
	}
	if s.err != nil {
		st.Error = s.err.Error()
	}
	s.mu.Unlock()

	st.Counts = s.clf.Counts()
	return st
}

// StartTrainingA collects NotTouched examples. It blocks until the
// collection ends.
func (s *Session) StartTrainingA(ctx context.Context) error {
	run, err := s.beginTraining(Idle, TrainingA, AwaitingB, classifier.NotTouched)
	if err != nil {
		return err
	}
	return run(ctx)
}

// StartTrainingB collects Touched examples. It blocks until the collection
// ends.
func (s *Session) StartTrainingB(ctx context.Context) error {
	run, err := s.beginTraining(AwaitingB, TrainingB, ReadyToDetect, classifier.Touched)
	if err != nil {
		return err
	}
	return run(ctx)
}

// StartDetection launches the detection loop and returns immediately. The
// loop runs until Stop, ctx cancellation or a failed tick.
func (s *Session) StartDetection(ctx context.Context) error {
	s.mu.Lock()
	if s.phase != ReadyToDetect {
		p := s.phase
		s.mu.Unlock()
		return fmt.Errorf("%w: detect in %s", ErrActionDisabled, p)
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.phase = Detecting
	s.cancel = cancel
	s.done = done
	s.err = nil
	s.mu.Unlock()

	s.publishPhase(Detecting)
	s.log.Info().Float64("threshold", s.config.Threshold).Dur("tick", s.config.TickInterval).Msg("detection started")

	d := NewDetector(s.clf, s.alert, s.config.Threshold, s.config.TickInterval, s.setTouched)
	go func() {
		defer close(done)
		defer cancel()

		err := d.Run(runCtx)
		if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			s.log.Info().Msg("detection stopped")
			return
		}

		// The phase stays Detecting; the last state remains on display.
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()

		s.log.Error().Err(err).Msg("detection failed")
		s.publishError(err)
	}()

	return nil
}

// Stop cancels detection, waits for the loop to exit and moves to Stopped.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.phase != Detecting {
		p := s.phase
		s.mu.Unlock()
		return fmt.Errorf("%w: stop in %s", ErrActionDisabled, p)
	}
	cancel, done := s.cancel, s.done
	s.phase = Stopped
	s.touched = false
	s.mu.Unlock()

	cancel()
	<-done

	s.publishPhase(Stopped)
	return nil
}

// Do starts action in the background and returns once the phase change has
// been accepted. It is the entry point for the tray and the HTTP API, which
// must not block on a training run.
func (s *Session) Do(ctx context.Context, action Action) error {
	switch action {
	case ActionTrainA, ActionTrainB:
		var run func(context.Context) error
		var err error
		if action == ActionTrainA {
			run, err = s.beginTraining(Idle, TrainingA, AwaitingB, classifier.NotTouched)
		} else {
			run, err = s.beginTraining(AwaitingB, TrainingB, ReadyToDetect, classifier.Touched)
		}
		if err != nil {
			return err
		}
		go run(ctx)
		return nil
	case ActionDetect:
		return s.StartDetection(ctx)
	case ActionStop:
		return s.Stop()
	}
	return fmt.Errorf("%w: %s", ErrActionDisabled, action)
}

// Done returns a channel closed when the detection loop has exited. Before
// detection starts the channel is already closed.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		c := make(chan struct{})
		close(c)
		return c
	}
	return s.done
}

// beginTraining moves from -> during under the lock and returns the
// collection to run. The returned func restores from on failure.
func (s *Session) beginTraining(from, during, to Phase, label classifier.Label) (func(context.Context) error, error) {
	s.mu.Lock()
	if s.phase != from {
		p := s.phase
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: train %s in %s", ErrActionDisabled, label, p)
	}
	s.phase = during
	s.mu.Unlock()

	s.publishPhase(during)

	run := func(ctx context.Context) error {
		report := TrainingReport{
			Label:     label,
			Requested: s.config.SampleCount,
			StartedAt: time.Now(),
		}
		s.log.Info().Stringer("label", label).Int("samples", s.config.SampleCount).Msg("training started")

		sampler := NewSampler(s.clf, s.publishProgress)
		n, err := sampler.Collect(ctx, label, s.config.SampleCount, s.config.TrainingDuration)

		report.Collected = n
		report.FinishedAt = time.Now()
		report.Err = err

		next := to
		if err != nil {
			next = from
		}
		s.mu.Lock()
		s.phase = next
		s.mu.Unlock()

		s.publishTraining(report)
		s.publishPhase(next)

		if err != nil {
			s.log.Error().Err(err).Stringer("label", label).Int("collected", n).Msg("training failed")
			s.publishError(err)
			return fmt.Errorf("train %s: %w", label, err)
		}
		s.log.Info().Stringer("label", label).Int("collected", n).Msg("training finished")
		return nil
	}
	return run, nil
}

func (s *Session) setTouched(touched bool, r classifier.Result) {
	s.mu.Lock()
	// Stop already cleared the state; a late tick must not set it again.
	if s.phase != Detecting {
		s.mu.Unlock()
		return
	}
	s.touched = touched
	s.last = &r
	s.mu.Unlock()

	for _, o := range s.snapshotObservers() {
		o.OnTouched(touched, r)
	}
}
