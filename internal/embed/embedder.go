// Package embed turns video frames into fixed-length feature vectors.
package embed

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Vector is the embedding of a single frame.
type Vector []float64

// Embedder defines the interface for frame embedding implementations.
type Embedder interface {
	// Embed returns the feature vector for frame. Implementations must be
	// deterministic for identical pixel input.
	Embed(frame *gocv.Mat) (Vector, error)

	// Close releases any resources held by the embedder.
	Close() error
}

// Config holds configuration options for the DNN embedder.
type Config struct {
	// ModelPath is the network weights file (ONNX, Caffe, TensorFlow, ...).
	ModelPath string

	// ConfigPath is the optional network description file.
	ConfigPath string

	// InputSize is the square input resolution the network expects.
	InputSize int

	// Scale multiplies pixel values after mean subtraction.
	Scale float64

	// Mean is subtracted per channel before scaling.
	Mean [3]float64

	// SwapRB converts OpenCV's BGR order to RGB.
	SwapRB bool

	// OutputLayer names the layer whose activations form the embedding.
	// Empty means the network's final output.
	OutputLayer string
}

// DefaultConfig returns settings matching a MobileNet-style feature
// extractor with inputs scaled to [-1, 1].
func DefaultConfig() Config {
	return Config{
		InputSize: 224,
		Scale:     1.0 / 127.5,
		Mean:      [3]float64{127.5, 127.5, 127.5},
		SwapRB:    true,
	}
}

// Load returns a DNN embedder when a model path is configured and the
// built-in pixel embedder otherwise.
func Load(config Config) (Embedder, error) {
	if config.ModelPath == "" {
		return NewPixelEmbedder(DefaultPixelSize), nil
	}

	e, err := NewDNNEmbedder(config)
	if err != nil {
		return nil, fmt.Errorf("load embedding model: %w", err)
	}
	return e, nil
}
