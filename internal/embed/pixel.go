package embed

import (
	"image"

	"gocv.io/x/gocv"
)

// DefaultPixelSize is the side length of the thumbnail used by PixelEmbedder.
const DefaultPixelSize = 8

// PixelEmbedder is a model-free fallback: it shrinks the frame to a tiny
// colour thumbnail and uses the centred pixel values as the embedding.
// It is crude but deterministic, and it separates "hand in front of the face"
// from "no hand" well enough when the camera and lighting do not move.
type PixelEmbedder struct {
	size int
}

// NewPixelEmbedder creates a PixelEmbedder producing size*size*3 values.
func NewPixelEmbedder(size int) *PixelEmbedder {
	if size <= 0 {
		size = DefaultPixelSize
	}
	return &PixelEmbedder{size: size}
}

// Dim returns the length of the vectors this embedder produces.
func (p *PixelEmbedder) Dim() int {
	return p.size * p.size * 3
}

// Embed resizes frame with area interpolation and maps each byte to [-0.5, 0.5].
func (p *PixelEmbedder) Embed(frame *gocv.Mat) (Vector, error) {
	if frame == nil || frame.Empty() {
		return nil, ErrEmptyFrame
	}

	bgr := gocv.NewMat()
	defer bgr.Close()

	switch frame.Channels() {
	case 1:
		gocv.CvtColor(*frame, &bgr, gocv.ColorGrayToBGR)
	case 4:
		gocv.CvtColor(*frame, &bgr, gocv.ColorBGRAToBGR)
	default:
		frame.CopyTo(&bgr)
	}

	small := gocv.NewMat()
	defer small.Close()
	gocv.Resize(bgr, &small, image.Pt(p.size, p.size), 0, 0, gocv.InterpolationArea)

	data := small.ToBytes()
	v := make(Vector, len(data))
	for i, b := range data {
		v[i] = float64(b)/255.0 - 0.5
	}
	return v, nil
}

// Close is a no-op.
func (p *PixelEmbedder) Close() error {
	return nil
}
