package detector

import "github.com/ayusman/visage/internal/frame"

// FaceRegion is a detected face's bounding box in frame pixel coordinates.
type FaceRegion struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Detector defines the interface for face detection implementations.
type Detector interface {
	// Detect analyzes an image descriptor and returns detected face regions.
	// Returns an empty slice if no faces are found.
	Detect(desc *frame.ImageDescriptor) ([]FaceRegion, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for face detection.
type Config struct {
	// CascadePath is the path to the Haar cascade model file.
	CascadePath string

	// MinNeighbors controls how many neighbor rectangles a candidate
	// needs before it is accepted (default: 3).
	MinNeighbors int

	// ScaleFactor is the image pyramid scale step (default: 1.1).
	ScaleFactor float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		CascadePath:  "models/haarcascade_frontalface_default.xml",
		MinNeighbors: 3,
		ScaleFactor:  1.1,
	}
}
