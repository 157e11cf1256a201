// Package capture provides camera capture functionality using GoCV (OpenCV).
package capture

import (
	"errors"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/visage/internal/frame"
)

// Default camera settings
const (
	DefaultFPS    = 15
	DefaultWidth  = 640
	DefaultHeight = 480
)

// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
var ErrCameraNotOpen = errors.New("camera is not open")

// Camera defines the interface for camera capture implementations.
// Implementations deliver frames as ordered plane sequences with a
// device-native format code, per the frame.RawFrame contract.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*frame.RawFrame, error)
	SensorOrientation() int
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// cameraImpl manages video capture from a camera device using GoCV.
// Captured BGR frames are converted to NV21: the luma plane comes from a
// grayscale conversion, the chroma plane is neutral. The detector only
// reads luma, so chroma fidelity is not needed.
type cameraImpl struct {
	deviceID    int
	orientation int
	capture     *gocv.VideoCapture
	mu          sync.Mutex
	running     bool
	fps         int
}

// NewCamera creates a new Camera with the given device ID and sensor
// orientation in degrees.
func NewCamera(deviceID, orientation int) Camera {
	return &cameraImpl{
		deviceID:    deviceID,
		orientation: orientation,
		fps:         DefaultFPS,
	}
}

// Open opens the camera for capturing frames.
// It sets the resolution to 640x480 for performance.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.deviceID)
	if err != nil {
		return err
	}

	capture.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
	capture.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
	capture.Set(gocv.VideoCaptureFPS, float64(c.fps))

	c.capture = capture
	c.running = true

	return nil
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

// ReadFrame reads a single frame and converts it to an NV21 RawFrame.
func (c *cameraImpl) ReadFrame() (*frame.RawFrame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	defer mat.Close()

	if ok := c.capture.Read(&mat); !ok {
		return nil, errors.New("failed to read frame from camera")
	}
	if mat.Empty() {
		return nil, errors.New("captured frame is empty")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if mat.Channels() > 1 {
		gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)
	} else {
		mat.CopyTo(&gray)
	}

	width := gray.Cols()
	height := gray.Rows()

	luma := make([]byte, width*height)
	copy(luma, gray.ToBytes())

	// Neutral interleaved VU plane; half the luma height at full stride.
	chroma := make([]byte, width*height/2)
	for i := range chroma {
		chroma[i] = 128
	}

	return &frame.RawFrame{
		Planes: []frame.Plane{
			{Bytes: luma, BytesPerRow: width, Width: width, Height: height},
			{Bytes: chroma, BytesPerRow: width, Width: width, Height: height / 2},
		},
		Width:      width,
		Height:     height,
		FormatCode: 17, // NV21
		Timestamp:  time.Now().UnixMilli(),
	}, nil
}

// SensorOrientation returns the configured sensor orientation in degrees.
func (c *cameraImpl) SensorOrientation() int {
	return c.orientation
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
