package classifier

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/ayusman/handsoff/internal/embed"
)

// DefaultK is the number of neighbours consulted by PredictClass.
const DefaultK = 3

var (
	// ErrNotReady is returned by PredictClass while at least one label has
	// no examples to compare against.
	ErrNotReady = errors.New("classifier not ready: every label needs examples")

	// ErrDimensionMismatch is returned when a vector's length differs from
	// the examples already stored.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Result is the outcome of one classification.
type Result struct {
	Label       Label             `json:"label"`
	Confidences map[Label]float64 `json:"confidences"`
}

// Confidence returns the confidence for l, 0 when absent.
func (r Result) Confidence(l Label) float64 {
	return r.Confidences[l]
}

type example struct {
	label  Label
	vector embed.Vector
	norm   float64
}

// KNN is an in-memory k-nearest-neighbour classifier over embedding vectors.
// Examples are only ever appended; there is no capacity bound.
type KNN struct {
	k        int
	examples []example
	counts   map[Label]int
	dim      int
	mu       sync.RWMutex
}

// NewKNN creates a KNN consulting k neighbours. k <= 0 selects DefaultK.
func NewKNN(k int) *KNN {
	if k <= 0 {
		k = DefaultK
	}
	return &KNN{
		k:      k,
		counts: make(map[Label]int),
	}
}

// AddExample stores a labelled vector. The vector is copied.
func (c *KNN) AddExample(v embed.Vector, label Label) error {
	if !label.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownLabel, int(label))
	}
	if len(v) == 0 {
		return fmt.Errorf("%w: empty vector", ErrDimensionMismatch)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dim != 0 && len(v) != c.dim {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(v), c.dim)
	}

	cp := make(embed.Vector, len(v))
	copy(cp, v)

	c.dim = len(v)
	c.examples = append(c.examples, example{
		label:  label,
		vector: cp,
		norm:   floats.Norm(cp, 2),
	})
	c.counts[label]++

	return nil
}

// PredictClass labels v by a majority vote of its k most similar examples.
// Similarity is cosine similarity. The confidence of a label is its share of
// the votes, so confidences sum to 1. Ties go to the label declared first.
func (c *KNN) PredictClass(v embed.Vector) (Result, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, l := range Labels {
		if c.counts[l] == 0 {
			return Result{}, ErrNotReady
		}
	}
	if len(v) != c.dim {
		return Result{}, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(v), c.dim)
	}

	type scored struct {
		index      int
		similarity float64
	}

	qnorm := floats.Norm(v, 2)
	scores := make([]scored, len(c.examples))
	for i, ex := range c.examples {
		scores[i] = scored{index: i, similarity: cosine(v, qnorm, ex.vector, ex.norm)}
	}

	// Stable keeps insertion order among equal similarities
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].similarity > scores[j].similarity
	})

	k := c.k
	if k > len(scores) {
		k = len(scores)
	}

	votes := make(map[Label]int, len(Labels))
	for _, s := range scores[:k] {
		votes[c.examples[s.index].label]++
	}

	result := Result{Confidences: make(map[Label]float64, len(Labels))}
	best := -1
	for _, l := range Labels {
		result.Confidences[l] = float64(votes[l]) / float64(k)
		if votes[l] > best {
			best = votes[l]
			result.Label = l
		}
	}

	return result, nil
}

// Count returns the number of examples stored under label.
func (c *KNN) Count(label Label) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.counts[label]
}

// Counts returns the number of examples per label.
func (c *KNN) Counts() map[Label]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[Label]int, len(Labels))
	for _, l := range Labels {
		out[l] = c.counts[l]
	}
	return out
}

// Len returns the total number of examples.
func (c *KNN) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.examples)
}

// Reset drops every example.
func (c *KNN) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.examples = nil
	c.counts = make(map[Label]int)
	c.dim = 0
}

// cosine returns the cosine similarity of a and b given their norms.
// A zero vector is treated as orthogonal to everything.
func cosine(a embed.Vector, anorm float64, b embed.Vector, bnorm float64) float64 {
	if anorm == 0 || bnorm == 0 {
		return 0
	}
	return floats.Dot(a, b) / (anorm * bnorm)
}
