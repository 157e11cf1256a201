package detector

import (
	"sync"
	"time"

	"github.com/ayusman/visage/internal/frame"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results and timing.
type MockDetector struct {
	mu     sync.Mutex
	faces  []FaceRegion
	err    error
	delay  time.Duration
	calls  int
	closed bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetFaces sets the faces that will be returned by Detect.
func (m *MockDetector) SetFaces(faces []FaceRegion) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faces = faces
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetDelay makes Detect sleep for the given duration before returning,
// simulating a slow detector.
func (m *MockDetector) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured faces or error.
func (m *MockDetector) Detect(desc *frame.ImageDescriptor) ([]FaceRegion, error) {
	m.mu.Lock()
	m.calls++
	faces := m.faces
	err := m.err
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	if err != nil {
		return nil, err
	}
	return faces, nil
}

// Close marks the detector as closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// TwoFaces returns a preset pair of face regions for tests.
func TwoFaces() []FaceRegion {
	return []FaceRegion{
		{Left: 120, Top: 80, Width: 96, Height: 96},
		{Left: 400, Top: 150, Width: 84, Height: 84},
	}
}
