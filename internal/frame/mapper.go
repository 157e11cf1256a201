package frame

// PixelFormat is the closed set of pixel formats the detector accepts.
type PixelFormat int

const (
	// FormatUnsupported marks a device format code we cannot process.
	FormatUnsupported PixelFormat = iota
	// FormatNV21 is YUV 4:2:0 semi-planar (Y plane + interleaved VU).
	FormatNV21
	// FormatYUV420 is YUV 4:2:0 planar (separate Y, U, V planes).
	FormatYUV420
)

// Device-native format codes, as reported by the camera sensor.
const (
	formatCodeNV21   = 17
	formatCodeYUV420 = 35
)

// String returns the format name.
func (f PixelFormat) String() string {
	switch f {
	case FormatNV21:
		return "NV21"
	case FormatYUV420:
		return "YUV420"
	default:
		return "unsupported"
	}
}

// MapFormat maps a device-native format code to a PixelFormat.
// Unknown codes map to FormatUnsupported. Total over all inputs.
func MapFormat(code int) PixelFormat {
	switch code {
	case formatCodeNV21:
		return FormatNV21
	case formatCodeYUV420:
		return FormatYUV420
	default:
		return FormatUnsupported
	}
}

// Rotation is the closed set of frame rotations.
type Rotation int

const (
	Rotation0 Rotation = iota
	Rotation90
	Rotation180
	Rotation270
)

// Degrees returns the rotation angle in degrees.
func (r Rotation) Degrees() int {
	switch r {
	case Rotation90:
		return 90
	case Rotation180:
		return 180
	case Rotation270:
		return 270
	default:
		return 0
	}
}

// String returns the rotation as "<degrees>deg".
func (r Rotation) String() string {
	switch r {
	case Rotation90:
		return "90deg"
	case Rotation180:
		return "180deg"
	case Rotation270:
		return "270deg"
	default:
		return "0deg"
	}
}

// MapRotation maps a device-native orientation code to a Rotation.
// Codes outside {0, 90, 180, 270} default to Rotation0. Total over all inputs.
func MapRotation(code int) Rotation {
	switch code {
	case 90:
		return Rotation90
	case 180:
		return Rotation180
	case 270:
		return Rotation270
	default:
		return Rotation0
	}
}
