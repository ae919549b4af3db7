// Package capture provides camera capture functionality using GoCV (OpenCV).
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Default camera settings
const (
	DefaultFPS    = 15
	DefaultWidth  = 640
	DefaultHeight = 480
	DefaultWarmup = 5 * time.Second
)

// firstFramePoll is how often Open retries while waiting for the first frame.
const firstFramePoll = 50 * time.Millisecond

var (
	// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")

	// ErrNoDevice is returned when no capture device could be opened.
	ErrNoDevice = errors.New("no camera device")

	// ErrPermissionDenied is returned when the device opened but never
	// delivered a frame. This is how a denied camera permission presents
	// on macOS.
	ErrPermissionDenied = errors.New("camera permission denied")
)

// Config holds camera settings.
type Config struct {
	DeviceID int
	Width    int
	Height   int
	FPS      int
	Warmup   time.Duration // max wait for the first frame in Open
}

// DefaultConfig returns a Config for the default device.
func DefaultConfig() Config {
	return Config{
		DeviceID: 0,
		Width:    DefaultWidth,
		Height:   DefaultHeight,
		FPS:      DefaultFPS,
		Warmup:   DefaultWarmup,
	}
}

// Camera defines the interface for camera capture implementations.
type Camera interface {
	// Open acquires the stream and returns once the first frame is available.
	Open(ctx context.Context) error
	Close() error
	// ReadFrame returns the current frame. The caller must close it.
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// cameraImpl manages video capture from a camera device using GoCV.
type cameraImpl struct {
	config  Config
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
	fps     int
}

// NewCamera creates a new Camera with the given configuration.
// Zero values in config fall back to the defaults.
func NewCamera(config Config) Camera {
	if config.Width <= 0 {
		config.Width = DefaultWidth
	}
	if config.Height <= 0 {
		config.Height = DefaultHeight
	}
	if config.FPS <= 0 {
		config.FPS = DefaultFPS
	}
	if config.Warmup <= 0 {
		config.Warmup = DefaultWarmup
	}

	return &cameraImpl{
		config: config,
		fps:    config.FPS,
	}
}

// Open opens the camera and waits until it delivers a non-empty frame.
func (c *cameraImpl) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.config.DeviceID)
	if err != nil {
		return fmt.Errorf("%w: device %d: %v", ErrNoDevice, c.config.DeviceID, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return fmt.Errorf("%w: device %d", ErrNoDevice, c.config.DeviceID)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, float64(c.config.Width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(c.config.Height))
	capture.Set(gocv.VideoCaptureFPS, float64(c.fps))

	if err := waitFirstFrame(ctx, capture, c.config.Warmup); err != nil {
		capture.Close()
		return err
	}

	c.capture = capture
	c.running = true

	return nil
}

// waitFirstFrame polls the capture until it yields a non-empty frame.
func waitFirstFrame(ctx context.Context, capture *gocv.VideoCapture, warmup time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, warmup)
	defer cancel()

	mat := gocv.NewMat()
	defer mat.Close()

	for {
		if capture.Read(&mat) && !mat.Empty() {
			return nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w: no frame within %v", ErrPermissionDenied, warmup)
			}
			return ctx.Err()
		case <-time.After(firstFramePoll):
		}
	}
}

// Close closes the camera and releases resources.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame reads a single frame from the camera.
// The caller is responsible for closing the returned Mat.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, errors.New("failed to read frame from camera")
	}

	if mat.Empty() {
		mat.Close()
		return nil, errors.New("captured frame is empty")
	}

	return &mat, nil
}

// SetFPS sets the frames per second for capture.
// Values less than or equal to 0 are ignored.
func (c *cameraImpl) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps

	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current frames per second setting.
func (c *cameraImpl) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fps
}

// IsOpen returns true if the camera is currently open and running.
func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}
