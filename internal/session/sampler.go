package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/handsoff/internal/classifier"
)

// ErrInvalidSampling is returned for a non-positive sample count or a
// negative duration.
var ErrInvalidSampling = errors.New("invalid sampling parameters")

// Sampler collects labelled training examples at a fixed rate.
type Sampler struct {
	clf        Classifier
	onProgress func(label classifier.Label, fraction float64)
}

// NewSampler creates a Sampler feeding clf. onProgress may be nil.
func NewSampler(clf Classifier, onProgress func(classifier.Label, float64)) *Sampler {
	return &Sampler{clf: clf, onProgress: onProgress}
}

// Collect embeds sampleCount frames spread evenly over total and stores each
// as an example of label. It returns the number of examples added.
//
// There are no retries: the first failure aborts the collection and the
// examples added so far stay in the classifier.
func (s *Sampler) Collect(ctx context.Context, label classifier.Label, sampleCount int, total time.Duration) (int, error) {
	if sampleCount < 1 || total < 0 {
		return 0, fmt.Errorf("%w: %d samples over %s", ErrInvalidSampling, sampleCount, total)
	}
	if !label.Valid() {
		return 0, classifier.ErrUnknownLabel
	}

	interval := total / time.Duration(sampleCount)

	for i := 0; i < sampleCount; i++ {
		if err := ctx.Err(); err != nil {
			return i, err
		}

		v, err := s.clf.Embed()
		if err != nil {
			return i, fmt.Errorf("sample %d: %w", i, err)
		}
		if err := s.clf.AddExample(v, label); err != nil {
			return i, fmt.Errorf("sample %d: %w", i, err)
		}

		if s.onProgress != nil {
			s.onProgress(label, float64(i+1)/float64(sampleCount))
		}

		// A cancel during the pause after the last sample does not undo a
		// finished collection.
		if err := sleep(ctx, interval); err != nil && i < sampleCount-1 {
			return i + 1, err
		}
	}

	return sampleCount, nil
}

// sleep pauses for d or until ctx is done. A zero duration does not pause.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
