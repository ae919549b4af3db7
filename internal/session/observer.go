package session

import "github.com/ayusman/handsoff/internal/classifier"

// Observer receives session events. Callbacks run synchronously on the
// goroutine that produced the event and must not block.
type Observer interface {
	OnPhase(p Phase, a Actions)
	OnProgress(label classifier.Label, fraction float64)
	OnTouched(touched bool, r classifier.Result)
	OnTraining(report TrainingReport)
	OnError(err error)
}

// BaseObserver implements Observer with no-ops. Embed it to handle only
// some events.
type BaseObserver struct{}

func (BaseObserver) OnPhase(Phase, Actions)               {}
func (BaseObserver) OnProgress(classifier.Label, float64) {}
func (BaseObserver) OnTouched(bool, classifier.Result)    {}
func (BaseObserver) OnTraining(TrainingReport)            {}
func (BaseObserver) OnError(error)                        {}

func (s *Session) snapshotObservers() []Observer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Observer, len(s.observers))
	copy(out, s.observers)
	return out
}

func (s *Session) publishPhase(p Phase) {
	a := ActionsFor(p)
	for _, o := range s.snapshotObservers() {
		o.OnPhase(p, a)
	}
}

func (s *Session) publishProgress(label classifier.Label, fraction float64) {
	for _, o := range s.snapshotObservers() {
		o.OnProgress(label, fraction)
	}
}

func (s *Session) publishTraining(r TrainingReport) {
	for _, o := range s.snapshotObservers() {
		o.OnTraining(r)
	}
}

func (s *Session) publishError(err error) {
	for _, o := range s.snapshotObservers() {
		o.OnError(err)
	}
}
