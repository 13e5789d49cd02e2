// Package qoi implements the QOI ("Quite OK Image") lossless image format.
//
// A QOI stream is a 14-byte header, a sequence of chunks and an 8-byte end
// marker. Each chunk describes one or more pixels as a reference into a
// 64-entry cache of recently seen colors, a small delta from the previous
// pixel, a run of the previous pixel, or literal channel values.
//
// Encode and Decode work on flat pixel buffers (RGB or RGBA, 8 bits per
// channel, rows top to bottom). EncodeImage and DecodeImage adapt the codec
// to the image package, and importing this package registers the "qoi"
// format with image.Decode.
package qoi

import (
	"errors"
	"fmt"

	"github.com/svanichkin/qoi/internal/oops"
)

const (
	magic      = "qoif"
	headerSize = 14

	// MaxPixels bounds width*height. With at most five bytes per pixel an
	// encoded stream stays under 2GB, and a decoded buffer fits in an int on
	// 32-bit platforms.
	MaxPixels = 400_000_000
)

var endMarker = [8]byte{0, 0, 0, 0, 0, 0, 0, 1}

// Chunk tags.
const (
	opIndex = 0x00 // 00xxxxxx
	opDiff  = 0x40 // 01xxxxxx
	opLuma  = 0x80 // 10xxxxxx
	opRun   = 0xc0 // 11xxxxxx
	opRGB   = 0xfe // 11111110
	opRGBA  = 0xff // 11111111

	opMask = 0xc0

	maxRun = 62
)

var (
	// ErrHeader reports a bad magic, an unknown channel or colorspace tag, or
	// a zero dimension.
	ErrHeader = errors.New("qoi: invalid header")
	// ErrSize reports a pixel buffer whose length does not match its
	// descriptor, or dimensions above MaxPixels.
	ErrSize = errors.New("qoi: invalid size")
	// ErrTruncated reports a stream that ends before every pixel is
	// reconstructed, or whose end marker is missing or wrong.
	ErrTruncated = errors.New("qoi: truncated input")
)

// Channels is the number of channels per pixel in a buffer or stream.
type Channels uint8

const (
	RGB  Channels = 3
	RGBA Channels = 4
)

func (c Channels) valid() bool {
	return c == RGB || c == RGBA
}

func (c Channels) String() string {
	switch c {
	case RGB:
		return "RGB"
	case RGBA:
		return "RGBA"
	}
	return fmt.Sprintf("Channels(%d)", uint8(c))
}

// Colorspace is carried through the format untouched; it does not change how
// pixels are encoded.
type Colorspace uint8

const (
	SRGB   Colorspace = 0 // sRGB with linear alpha
	Linear Colorspace = 1 // all channels linear
)

func (c Colorspace) valid() bool {
	return c == SRGB || c == Linear
}

func (c Colorspace) String() string {
	switch c {
	case SRGB:
		return "sRGB"
	case Linear:
		return "linear"
	}
	return fmt.Sprintf("Colorspace(%d)", uint8(c))
}

// Descriptor describes the pixel buffer behind a QOI stream.
type Descriptor struct {
	Width      uint32
	Height     uint32
	Channels   Channels
	Colorspace Colorspace
}

// NewDescriptor builds a Descriptor from raw header values and validates it.
func NewDescriptor(width, height uint32, channels, colorspace uint8) (Descriptor, error) {
	desc := Descriptor{
		Width:      width,
		Height:     height,
		Channels:   Channels(channels),
		Colorspace: Colorspace(colorspace),
	}
	if err := desc.Validate(); err != nil {
		return Descriptor{}, err
	}
	return desc, nil
}

// Validate reports ErrHeader for a zero dimension or an unknown tag and
// ErrSize when the image holds more than MaxPixels pixels.
func (d Descriptor) Validate() error {
	if d.Width == 0 || d.Height == 0 {
		return oops.New(ErrHeader, "zero image dimension %dx%d", d.Width, d.Height)
	}
	if !d.Channels.valid() {
		return oops.New(ErrHeader, "unexpected channel count %d", uint8(d.Channels))
	}
	if !d.Colorspace.valid() {
		return oops.New(ErrHeader, "unexpected colorspace %d", uint8(d.Colorspace))
	}
	if uint64(d.Width)*uint64(d.Height) > MaxPixels {
		return oops.New(ErrSize, "%dx%d exceeds the maximum of %d pixels", d.Width, d.Height, MaxPixels)
	}
	return nil
}

// PixelCount is only meaningful for a valid descriptor.
func (d Descriptor) PixelCount() int {
	return int(d.Width) * int(d.Height)
}

// BufferLen is the length in bytes of the pixel buffer d describes.
func (d Descriptor) BufferLen() int {
	return d.PixelCount() * int(d.Channels)
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%dx%d %s %s", d.Width, d.Height, d.Channels, d.Colorspace)
}
