package server

import (
	"fmt"
	"net/http"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/handsoff/internal/capture"
)

// streamInterval paces the MJPEG stream at about 15 FPS.
const streamInterval = 66 * time.Millisecond

// StreamHandler serves MJPEG frames from the camera.
type StreamHandler struct {
	camera capture.Camera
}

// NewStreamHandler creates a new StreamHandler with the given camera.
func NewStreamHandler(camera capture.Camera) *StreamHandler {
	return &StreamHandler{camera: camera}
}

// ServeHTTP streams MJPEG frames until the client disconnects.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for {
		select {
		case <-r.Context().Done():
			return
		default:
		}

		if err := h.writeFrame(w); err != nil {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		select {
		case <-r.Context().Done():
			return
		case <-time.After(streamInterval):
		}
	}
}

// writeFrame encodes one camera frame as a multipart JPEG part.
func (h *StreamHandler) writeFrame(w http.ResponseWriter) error {
	frame, err := h.camera.ReadFrame()
	if err != nil {
		return err
	}
	defer frame.Close()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return err
	}
	defer buf.Close()

	fmt.Fprintf(w, "--frame\r\n")
	fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
	fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", buf.Len())
	w.Write(buf.GetBytes())
	fmt.Fprintf(w, "\r\n")
	return nil
}
