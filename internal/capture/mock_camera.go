package capture

import (
	"fmt"
	"sync"

	"github.com/ayusman/visage/internal/frame"
)

// MockCamera plays back pre-built frames for testing
type MockCamera struct {
	frames      []frame.RawFrame
	orientation int
	index       int
	loop        bool
	mu          sync.Mutex
	running     bool
	openErr     error
}

func NewMockCamera(frames []frame.RawFrame, loop bool) *MockCamera {
	return &MockCamera{
		frames: frames,
		loop:   loop,
	}
}

// SetOpenError makes Open fail with the given error, simulating a missing device.
func (c *MockCamera) SetOpenError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openErr = err
}

// SetOrientation sets the value returned by SensorOrientation.
func (c *MockCamera) SetOrientation(degrees int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orientation = degrees
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.openErr != nil {
		return c.openErr
	}
	c.running = true
	c.index = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

func (c *MockCamera) ReadFrame() (*frame.RawFrame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}

	if len(c.frames) == 0 {
		return nil, fmt.Errorf("no frames available")
	}

	if c.index >= len(c.frames) {
		if c.loop {
			c.index = 0
		} else {
			return nil, fmt.Errorf("no more frames")
		}
	}

	raw := c.frames[c.index]
	c.index++

	return &raw, nil
}

func (c *MockCamera) SensorOrientation() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orientation
}

func (c *MockCamera) SetFPS(fps int) {}
func (c *MockCamera) FPS() int       { return DefaultFPS }
func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// SetFrames replaces the frame sequence
func (c *MockCamera) SetFrames(frames []frame.RawFrame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = frames
	c.index = 0
}

// Reset restarts playback from the beginning
func (c *MockCamera) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = 0
}
