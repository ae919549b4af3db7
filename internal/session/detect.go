package session

import (
	"context"
	"fmt"
	"time"

	"github.com/ayusman/handsoff/internal/classifier"
)

// Decide applies the detection rule: touched only when the predicted label is
// Touched and its confidence is strictly above threshold.
func Decide(r classifier.Result, threshold float64) bool {
	return r.Label == classifier.Touched && r.Confidence(classifier.Touched) > threshold
}

// Detector runs the periodic classify-and-alert loop.
type Detector struct {
	clf       Classifier
	alert     Alerter
	threshold float64
	tick      time.Duration
	onTick    func(touched bool, r classifier.Result)
}

// NewDetector creates a Detector. onTick may be nil.
func NewDetector(clf Classifier, alert Alerter, threshold float64, tick time.Duration, onTick func(bool, classifier.Result)) *Detector {
	return &Detector{
		clf:       clf,
		alert:     alert,
		threshold: threshold,
		tick:      tick,
		onTick:    onTick,
	}
}

// Run classifies one frame per tick until ctx is cancelled or a tick fails.
// A failed tick ends the loop and its error is returned; the loop is never
// restarted. A touched tick reports the state before triggering the alert.
// A not-touched tick only clears the state; the alert re-arms on its own.
func (d *Detector) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		v, err := d.clf.Embed()
		if err != nil {
			return fmt.Errorf("detect: %w", err)
		}
		r, err := d.clf.PredictClass(v)
		if err != nil {
			return fmt.Errorf("detect: %w", err)
		}

		touched := Decide(r, d.threshold)
		if d.onTick != nil {
			d.onTick(touched, r)
		}
		if touched && d.alert != nil {
			d.alert.Trigger()
		}

		if err := sleep(ctx, d.tick); err != nil {
			return err
		}
	}
}
