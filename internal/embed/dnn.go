package embed

import (
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// ErrEmptyFrame is returned when asked to embed a nil or empty frame.
var ErrEmptyFrame = errors.New("empty frame")

// DNNEmbedder runs a pretrained network through OpenCV's dnn module and
// uses the activations of one layer as the embedding.
type DNNEmbedder struct {
	config Config
	net    gocv.Net
	mu     sync.Mutex
	closed bool
}

// NewDNNEmbedder loads the network described by config.
func NewDNNEmbedder(config Config) (*DNNEmbedder, error) {
	if _, err := os.Stat(config.ModelPath); err != nil {
		return nil, fmt.Errorf("model %s: %w", config.ModelPath, err)
	}
	if config.InputSize <= 0 {
		return nil, fmt.Errorf("invalid input size: %d", config.InputSize)
	}

	net := gocv.ReadNet(config.ModelPath, config.ConfigPath)
	if net.Empty() {
		net.Close()
		return nil, fmt.Errorf("model %s: network is empty", config.ModelPath)
	}

	return &DNNEmbedder{
		config: config,
		net:    net,
	}, nil
}

// Embed runs one forward pass over frame.
func (d *DNNEmbedder) Embed(frame *gocv.Mat) (Vector, error) {
	if frame == nil || frame.Empty() {
		return nil, ErrEmptyFrame
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, errors.New("embedder is closed")
	}

	size := d.config.InputSize
	mean := gocv.NewScalar(d.config.Mean[0], d.config.Mean[1], d.config.Mean[2], 0)

	blob := gocv.BlobFromImage(*frame, d.config.Scale, image.Pt(size, size), mean, d.config.SwapRB, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	out := d.net.Forward(d.config.OutputLayer)
	defer out.Close()

	if out.Empty() {
		return nil, errors.New("forward pass produced no output")
	}

	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read activations: %w", err)
	}

	v := make(Vector, len(data))
	for i, x := range data {
		v[i] = float64(x)
	}
	return v, nil
}

// Close releases the network.
func (d *DNNEmbedder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	return d.net.Close()
}
