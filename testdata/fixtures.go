// Package testdata provides synthetic frame fixtures shared across tests.
package testdata

import "github.com/ayusman/visage/internal/frame"

// Device-native format codes used by fixtures.
const (
	FormatCodeNV21   = 17
	FormatCodeYUV420 = 35
)

// NV21Frame builds a synthetic two-plane NV21 frame of the given size.
// The luma plane carries a gradient so frames are not uniform.
func NV21Frame(width, height int) frame.RawFrame {
	luma := make([]byte, width*height)
	for i := range luma {
		luma[i] = byte(i % 256)
	}
	chroma := make([]byte, width*height/2)
	for i := range chroma {
		chroma[i] = 128
	}

	return frame.RawFrame{
		Planes: []frame.Plane{
			{Bytes: luma, BytesPerRow: width, Width: width, Height: height},
			{Bytes: chroma, BytesPerRow: width, Width: width, Height: height / 2},
		},
		Width:      width,
		Height:     height,
		FormatCode: FormatCodeNV21,
	}
}

// YUV420Frame builds a synthetic three-plane YUV420 frame of the given size.
func YUV420Frame(width, height int) frame.RawFrame {
	y := make([]byte, width*height)
	for i := range y {
		y[i] = byte(i % 256)
	}
	u := make([]byte, width*height/4)
	v := make([]byte, width*height/4)
	for i := range u {
		u[i] = 128
		v[i] = 128
	}

	return frame.RawFrame{
		Planes: []frame.Plane{
			{Bytes: y, BytesPerRow: width, Width: width, Height: height},
			{Bytes: u, BytesPerRow: width / 2, Width: width / 2, Height: height / 2},
			{Bytes: v, BytesPerRow: width / 2, Width: width / 2, Height: height / 2},
		},
		Width:      width,
		Height:     height,
		FormatCode: FormatCodeYUV420,
	}
}

// BadFormatFrame builds a frame whose format code maps to no known format.
func BadFormatFrame(width, height int) frame.RawFrame {
	raw := NV21Frame(width, height)
	raw.FormatCode = 999
	return raw
}

// FrameSequence builds n NV21 frames with increasing timestamps.
func FrameSequence(n, width, height int) []frame.RawFrame {
	frames := make([]frame.RawFrame, n)
	for i := range frames {
		frames[i] = NV21Frame(width, height)
		frames[i].Timestamp = int64(i)
	}
	return frames
}
