package embed

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockEmbedder is a test implementation of the Embedder interface.
// It allows tests to control the returned vectors.
type MockEmbedder struct {
	mu     sync.Mutex
	vector Vector
	next   func() (Vector, error)
	err    error
	calls  int
}

// NewMockEmbedder creates a MockEmbedder that returns v for every frame.
func NewMockEmbedder(v Vector) *MockEmbedder {
	return &MockEmbedder{vector: v}
}

// SetVector sets the vector that will be returned by Embed.
func (m *MockEmbedder) SetVector(v Vector) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vector = v
}

// SetFunc makes Embed delegate to fn, overriding SetVector.
func (m *MockEmbedder) SetFunc(fn func() (Vector, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next = fn
}

// SetError sets the error that will be returned by Embed.
func (m *MockEmbedder) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Embed was invoked.
func (m *MockEmbedder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Embed returns the pre-configured vector or error. The frame is ignored.
func (m *MockEmbedder) Embed(frame *gocv.Mat) (Vector, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.next != nil {
		return m.next()
	}
	out := make(Vector, len(m.vector))
	copy(out, m.vector)
	return out, nil
}

// Close is a no-op for the mock embedder.
func (m *MockEmbedder) Close() error {
	return nil
}
