package capture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/disintegration/imaging"
	"github.com/vova616/screenshot"
)

// Screen captures are scaled to this size before they are stored.
const (
	ScreenCaptureWidth  = 1080
	ScreenCaptureHeight = 720
)

// ErrNoFrame is returned by FrameSink when no frame has been rendered yet.
var ErrNoFrame = errors.New("no frame available")

// Trigger describes one capture decision made by the frame loop.
type Trigger struct {
	Zone  int
	Time  time.Time
	Frame []byte // latest annotated frame, JPEG encoded
}

// Artifact is the evidence produced for a trigger.
type Artifact struct {
	Data   []byte
	Format string // file extension without dot
}

// Sink turns a trigger into an evidence artifact.
type Sink interface {
	Grab(trigger Trigger) (Artifact, error)
	Name() string
}

// FrameSink stores the annotated video frame.
type FrameSink struct{}

func (FrameSink) Name() string { return "frame" }

// Grab returns a copy of the trigger's frame.
func (FrameSink) Grab(trigger Trigger) (Artifact, error) {
	if len(trigger.Frame) == 0 {
		return Artifact{}, ErrNoFrame
	}
	data := make([]byte, len(trigger.Frame))
	copy(data, trigger.Frame)
	return Artifact{Data: data, Format: "jpg"}, nil
}

// ScreenSink stores a screenshot of the whole display, so the evidence shows
// whatever the operator was looking at when the alarm fired.
type ScreenSink struct {
	grab func() (*image.RGBA, error)
}

// NewScreenSink creates a sink backed by the primary display.
func NewScreenSink() *ScreenSink {
	return &ScreenSink{grab: screenshot.CaptureScreen}
}

func (s *ScreenSink) Name() string { return "screen" }

// Grab captures the screen, scales it to 1080x720 and encodes it as PNG.
func (s *ScreenSink) Grab(trigger Trigger) (Artifact, error) {
	img, err := s.grab()
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to capture screen: %w", err)
	}
	data, err := encodeScaled(img)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{Data: data, Format: "png"}, nil
}

func encodeScaled(img image.Image) ([]byte, error) {
	resized := imaging.Resize(img, ScreenCaptureWidth, ScreenCaptureHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode screenshot: %w", err)
	}
	return buf.Bytes(), nil
}
