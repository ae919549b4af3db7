// Package testdata builds synthetic webcam frames for tests: a face on a
// plain background, with or without a hand over it.
package testdata

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Default frame size, matching a small webcam preview.
const (
	Width  = 64
	Height = 48
)

var (
	background = color.RGBA{R: 70, G: 80, B: 90, A: 0}
	skin       = color.RGBA{R: 225, G: 180, B: 150, A: 0}
	sleeve     = color.RGBA{R: 30, G: 60, B: 160, A: 0}
)

// FaceFrame returns a frame with a face and no hands. shade shifts the
// background brightness so consecutive frames are not identical.
func FaceFrame(shade int) *gocv.Mat {
	m := blank(shade)
	drawFace(&m)
	return &m
}

// TouchFrame returns a frame with a hand raised over the lower face.
func TouchFrame(shade int) *gocv.Mat {
	m := blank(shade)
	drawFace(&m)

	// forearm from the bottom edge up to the chin
	gocv.Rectangle(&m, image.Rect(Width/2-6, Height*2/3, Width/2+6, Height), sleeve, -1)
	// hand covering mouth and cheek
	gocv.Ellipse(&m, image.Pt(Width/2+2, Height/2+6), image.Pt(9, 7), 20, 0, 360, skin, -1)
	return &m
}

// FaceSequence returns n FaceFrames with cycling shade.
func FaceSequence(n int) []*gocv.Mat {
	return sequence(n, FaceFrame)
}

// TouchSequence returns n TouchFrames with cycling shade.
func TouchSequence(n int) []*gocv.Mat {
	return sequence(n, TouchFrame)
}

// CloseAll releases every frame in frames.
func CloseAll(frames []*gocv.Mat) {
	for _, f := range frames {
		if f != nil {
			f.Close()
		}
	}
}

func sequence(n int, build func(int) *gocv.Mat) []*gocv.Mat {
	frames := make([]*gocv.Mat, 0, n)
	for i := 0; i < n; i++ {
		frames = append(frames, build(i%5*3))
	}
	return frames
}

func blank(shade int) gocv.Mat {
	bg := gocv.NewScalar(
		float64(background.B)+float64(shade),
		float64(background.G)+float64(shade),
		float64(background.R)+float64(shade),
		0,
	)
	return gocv.NewMatWithSizeFromScalar(bg, Height, Width, gocv.MatTypeCV8UC3)
}

func drawFace(m *gocv.Mat) {
	gocv.Ellipse(m, image.Pt(Width/2, Height/2), image.Pt(12, 16), 0, 0, 360, skin, -1)
}
