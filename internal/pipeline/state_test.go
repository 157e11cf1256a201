package pipeline

import (
	"testing"

	"github.com/ayusman/visage/internal/detector"
)

func TestState_Publish(t *testing.T) {
	t.Run("initial status is no faces", func(t *testing.T) {
		s := NewState()

		if got := s.Status(); got != StatusNoFaces {
			t.Errorf("Status() = %q, want %q", got, StatusNoFaces)
		}
		if got := s.Faces(); len(got) != 0 {
			t.Errorf("expected no faces, got %d", len(got))
		}
	})

	t.Run("status counts published faces", func(t *testing.T) {
		s := NewState()
		s.Publish(detector.TwoFaces())

		if got := s.Status(); got != "Faces Detected: 2" {
			t.Errorf("Status() = %q, want %q", got, "Faces Detected: 2")
		}
		if got := s.Faces(); len(got) != 2 {
			t.Errorf("expected 2 faces, got %d", len(got))
		}
	})

	t.Run("empty publish resets status", func(t *testing.T) {
		s := NewState()
		s.Publish(detector.TwoFaces())
		s.Publish(nil)

		if got := s.Status(); got != StatusNoFaces {
			t.Errorf("Status() = %q, want %q", got, StatusNoFaces)
		}
	})

	t.Run("faces returns a copy", func(t *testing.T) {
		s := NewState()
		s.Publish(detector.TwoFaces())

		faces := s.Faces()
		faces[0].Left = -1

		if s.Faces()[0].Left == -1 {
			t.Error("mutating the returned slice must not affect state")
		}
	})
}
