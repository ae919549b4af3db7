package classifier

import (
	"errors"
	"fmt"

	"github.com/ayusman/handsoff/internal/capture"
	"github.com/ayusman/handsoff/internal/embed"
)

// ErrInference wraps any failure to turn the current frame into a vector.
var ErrInference = errors.New("inference failed")

// Adapter joins the camera, the embedding model and the example store.
type Adapter struct {
	camera   capture.Camera
	embedder embed.Embedder
	knn      *KNN
}

// NewAdapter creates an Adapter. A nil knn gets a fresh store with DefaultK.
func NewAdapter(camera capture.Camera, embedder embed.Embedder, knn *KNN) *Adapter {
	if knn == nil {
		knn = NewKNN(DefaultK)
	}
	return &Adapter{
		camera:   camera,
		embedder: embedder,
		knn:      knn,
	}
}

// Embed grabs the current camera frame and returns its embedding.
func (a *Adapter) Embed() (embed.Vector, error) {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		return nil, fmt.Errorf("%w: read frame: %w", ErrInference, err)
	}
	defer frame.Close()

	v, err := a.embedder.Embed(frame)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInference, err)
	}
	return v, nil
}

// AddExample stores v under label.
func (a *Adapter) AddExample(v embed.Vector, label Label) error {
	return a.knn.AddExample(v, label)
}

// PredictClass classifies v against the stored examples.
func (a *Adapter) PredictClass(v embed.Vector) (Result, error) {
	return a.knn.PredictClass(v)
}

// Counts returns the number of stored examples per label.
func (a *Adapter) Counts() map[Label]int {
	return a.knn.Counts()
}
