// Package frame converts raw multi-plane camera frames into normalized,
// detector-ready image descriptors.
package frame

import "errors"

// Build errors. Both mean the frame is skipped; neither is fatal to the stream.
var (
	// ErrUnsupportedFormat is returned when the frame's native format code
	// does not map to a known pixel format.
	ErrUnsupportedFormat = errors.New("unsupported pixel format")

	// ErrEmptyFrame is returned when the frame carries no planes.
	ErrEmptyFrame = errors.New("frame has no planes")
)

// Plane is a raw byte buffer with its row stride and dimensions.
// It is a view into a RawFrame and must not outlive it.
type Plane struct {
	Bytes       []byte
	BytesPerRow int
	Width       int
	Height      int
}

// RawFrame is one camera-delivered frame: an ordered sequence of planes
// plus frame-level dimensions and the device-native format code.
// RawFrames are immutable; the pipeline owns one for the duration of a
// single processing step and then discards it.
type RawFrame struct {
	Planes     []Plane
	Width      int
	Height     int
	FormatCode int
	Timestamp  int64
}

// PlaneMetadata carries a plane's stride and dimensions without its bytes.
// The bytes were already concatenated into ImageDescriptor.Bytes.
type PlaneMetadata struct {
	BytesPerRow int
	Width       int
	Height      int
}

// ImageDescriptor is the normalized representation handed to the detector.
// It is constructed fresh per frame and never mutated after Build returns.
type ImageDescriptor struct {
	Bytes    []byte
	Width    float64
	Height   float64
	Rotation Rotation
	Format   PixelFormat
	Planes   []PlaneMetadata
}

// Build converts a raw frame plus the device's sensor orientation into an
// ImageDescriptor. Plane bytes are concatenated in plane order (detectors
// expect luma first, then chroma). Returns ErrEmptyFrame when the frame has
// zero planes and ErrUnsupportedFormat when the format code is unrecognized.
func Build(raw RawFrame, sensorOrientation int) (*ImageDescriptor, error) {
	if len(raw.Planes) == 0 {
		return nil, ErrEmptyFrame
	}

	format := MapFormat(raw.FormatCode)
	if format == FormatUnsupported {
		return nil, ErrUnsupportedFormat
	}

	total := 0
	for _, p := range raw.Planes {
		total += len(p.Bytes)
	}

	buf := make([]byte, 0, total)
	meta := make([]PlaneMetadata, 0, len(raw.Planes))
	for _, p := range raw.Planes {
		buf = append(buf, p.Bytes...)
		meta = append(meta, PlaneMetadata{
			BytesPerRow: p.BytesPerRow,
			Width:       p.Width,
			Height:      p.Height,
		})
	}

	return &ImageDescriptor{
		Bytes:    buf,
		Width:    float64(raw.Width),
		Height:   float64(raw.Height),
		Rotation: MapRotation(sensorOrientation),
		Format:   format,
		Planes:   meta,
	}, nil
}
