package detector

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/visage/internal/frame"
)

// CascadeDetector implements Detector using an OpenCV Haar cascade classifier.
// Detection runs on the frame's luma plane; chroma is ignored.
type CascadeDetector struct {
	config     Config
	classifier gocv.CascadeClassifier
	mu         sync.Mutex
	closed     bool
}

// NewCascadeDetector creates a CascadeDetector from the given config.
// It fails if the cascade model file cannot be loaded.
func NewCascadeDetector(config Config) (*CascadeDetector, error) {
	if config.MinNeighbors <= 0 {
		config.MinNeighbors = DefaultConfig().MinNeighbors
	}
	if config.ScaleFactor <= 1.0 {
		config.ScaleFactor = DefaultConfig().ScaleFactor
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(config.CascadePath) {
		classifier.Close()
		return nil, fmt.Errorf("load cascade model %s: not found or invalid", config.CascadePath)
	}

	return &CascadeDetector{
		config:     config,
		classifier: classifier,
	}, nil
}

// Detect runs the cascade classifier over the descriptor's luma plane and
// returns detected faces in the unrotated frame's pixel coordinates.
func (d *CascadeDetector) Detect(desc *frame.ImageDescriptor) ([]FaceRegion, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, fmt.Errorf("detector is closed")
	}

	gray, err := lumaMat(desc)
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	upright, err := rotateUpright(gray, desc.Rotation)
	if err != nil {
		return nil, err
	}
	defer upright.Close()

	rects := d.classifier.DetectMultiScaleWithParams(
		upright, d.config.ScaleFactor, d.config.MinNeighbors, 0,
		image.Point{}, image.Point{},
	)

	width := int(desc.Width)
	height := int(desc.Height)
	faces := make([]FaceRegion, 0, len(rects))
	for _, r := range rects {
		faces = append(faces, unrotateRegion(r, desc.Rotation, width, height))
	}

	return faces, nil
}

// Close releases the underlying classifier.
func (d *CascadeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	return d.classifier.Close()
}

// lumaMat builds a grayscale Mat from the descriptor's first plane.
// Rows wider than the image (padded strides) are cropped away.
func lumaMat(desc *frame.ImageDescriptor) (gocv.Mat, error) {
	if len(desc.Planes) == 0 {
		return gocv.Mat{}, fmt.Errorf("descriptor has no planes")
	}

	luma := desc.Planes[0]
	size := luma.BytesPerRow * luma.Height
	if size > len(desc.Bytes) {
		return gocv.Mat{}, fmt.Errorf("luma plane %d bytes exceeds descriptor buffer %d", size, len(desc.Bytes))
	}

	mat, err := gocv.NewMatFromBytes(luma.Height, luma.BytesPerRow, gocv.MatTypeCV8UC1, desc.Bytes[:size])
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("luma mat: %w", err)
	}

	if luma.BytesPerRow > luma.Width {
		cropped := mat.Region(image.Rect(0, 0, luma.Width, luma.Height))
		clone := cropped.Clone()
		cropped.Close()
		mat.Close()
		return clone, nil
	}

	return mat, nil
}

// rotateUpright rotates the luma image so faces are upright for the classifier.
func rotateUpright(src gocv.Mat, rotation frame.Rotation) (gocv.Mat, error) {
	if rotation == frame.Rotation0 {
		return src.Clone(), nil
	}

	var code gocv.RotateFlag
	switch rotation {
	case frame.Rotation90:
		code = gocv.Rotate90Clockwise
	case frame.Rotation180:
		code = gocv.Rotate180Clockwise
	case frame.Rotation270:
		code = gocv.Rotate90CounterClockwise
	default:
		return src.Clone(), nil
	}

	dst := gocv.NewMat()
	gocv.Rotate(src, &dst, code)
	return dst, nil
}

// unrotateRegion maps a rectangle detected in the upright image back into
// the unrotated frame's coordinate space. Width and height are the
// unrotated frame dimensions.
func unrotateRegion(r image.Rectangle, rotation frame.Rotation, width, height int) FaceRegion {
	w := r.Dx()
	h := r.Dy()

	switch rotation {
	case frame.Rotation90:
		return FaceRegion{Left: r.Min.Y, Top: height - r.Max.X, Width: h, Height: w}
	case frame.Rotation180:
		return FaceRegion{Left: width - r.Max.X, Top: height - r.Max.Y, Width: w, Height: h}
	case frame.Rotation270:
		return FaceRegion{Left: width - r.Max.Y, Top: r.Min.X, Width: h, Height: w}
	default:
		return FaceRegion{Left: r.Min.X, Top: r.Min.Y, Width: w, Height: h}
	}
}
