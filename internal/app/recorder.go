package app

import (
	"sync"
	"time"

	"github.com/ayusman/handsoff/internal/classifier"
	"github.com/ayusman/handsoff/internal/logger"
	"github.com/ayusman/handsoff/internal/session"
	"github.com/ayusman/handsoff/internal/store"
)

// Recorder persists detection episodes and training runs. An episode opens
// on the first touched tick and closes on the next not-touched tick or when
// detection ends.
type Recorder struct {
	session.BaseObserver

	store *store.Store
	plays func() int
	now   func() time.Time
	log   *logger.Logger

	mu         sync.Mutex
	open       *store.Episode
	playsStart int
}

// NewRecorder creates a Recorder. plays reports the running count of alert
// sounds and is used to attribute sounds to episodes.
func NewRecorder(st *store.Store, plays func() int) *Recorder {
	return &Recorder{
		store: st,
		plays: plays,
		now:   time.Now,
		log:   logger.Named("recorder"),
	}
}

func (r *Recorder) OnTouched(touched bool, res classifier.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !touched {
		r.closeLocked()
		return
	}

	conf := res.Confidence(classifier.Touched)
	if r.open == nil {
		// The alert for this tick fires after observers run, so the count
		// taken here excludes it.
		r.playsStart = r.plays()
		e := &store.Episode{StartedAt: r.now(), Ticks: 1, PeakConfidence: conf}
		if err := r.store.Episodes().Create(e); err != nil {
			r.log.Warn().Err(err).Msg("failed to record episode")
			return
		}
		r.open = e
		r.log.Debug().Str("episode", e.ID).Msg("episode started")
		return
	}

	r.open.Ticks++
	if conf > r.open.PeakConfidence {
		r.open.PeakConfidence = conf
	}
	r.open.Sounds = r.plays() - r.playsStart
	if err := r.store.Episodes().Update(r.open); err != nil {
		r.log.Warn().Err(err).Msg("failed to update episode")
	}
}

func (r *Recorder) OnPhase(p session.Phase, _ session.Actions) {
	if p == session.Detecting {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked()
}

func (r *Recorder) OnTraining(rep session.TrainingReport) {
	run := &store.TrainingRun{
		Label:      rep.Label.String(),
		Requested:  rep.Requested,
		Collected:  rep.Collected,
		StartedAt:  rep.StartedAt,
		FinishedAt: rep.FinishedAt,
	}
	if rep.Err != nil {
		run.Error = rep.Err.Error()
	}
	if err := r.store.TrainingRuns().Create(run); err != nil {
		r.log.Warn().Err(err).Msg("failed to record training run")
	}
}

// Close ends the open episode, if any.
func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked()
}

// Current returns a copy of the open episode, or nil.
func (r *Recorder) Current() *store.Episode {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.open == nil {
		return nil
	}
	e := *r.open
	return &e
}

func (r *Recorder) closeLocked() {
	if r.open == nil {
		return
	}
	e := r.open
	r.open = nil

	ended := r.now()
	e.EndedAt = &ended
	e.Sounds = r.plays() - r.playsStart
	if err := r.store.Episodes().Update(e); err != nil {
		r.log.Warn().Err(err).Msg("failed to close episode")
		return
	}
	r.log.Info().Str("episode", e.ID).Int("ticks", e.Ticks).Int("sounds", e.Sounds).Msg("episode ended")
}
