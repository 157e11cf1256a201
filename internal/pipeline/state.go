package pipeline

import (
	"fmt"
	"sync"

	"github.com/ayusman/visage/internal/detector"
)

// Status messages shown to the rendering side.
const (
	StatusNoFaces = "No Faces Detected"
	statusFacesF  = "Faces Detected: %d"
)

// State holds the last published detection result and its status summary.
// It is read by rendering collaborators at arbitrary times and overwritten
// atomically on each publish.
type State struct {
	mu     sync.RWMutex
	faces  []detector.FaceRegion
	status string
}

// NewState creates a State with no result and the empty status message.
func NewState() *State {
	return &State{status: StatusNoFaces}
}

// Publish replaces the last result and recomputes the status message.
func (s *State) Publish(faces []detector.FaceRegion) {
	status := StatusNoFaces
	if len(faces) > 0 {
		status = fmt.Sprintf(statusFacesF, len(faces))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.faces = faces
	s.status = status
}

// Faces returns a copy of the last published face regions.
func (s *State) Faces() []detector.FaceRegion {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]detector.FaceRegion, len(s.faces))
	copy(out, s.faces)
	return out
}

// Status returns the last published status message.
func (s *State) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}
