package qoi

import (
	"bytes"
	"encoding/binary"

	"github.com/svanichkin/qoi/internal/oops"
)

// Decoder decodes QOI streams, reusing its pixel buffer between calls.
// A Decoder is not safe for concurrent use.
type Decoder struct {
	pix []byte
}

// NewDecoder returns a Decoder with no buffer allocated yet.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a complete QOI stream into a new pixel buffer laid out as
// the returned Descriptor describes.
func Decode(data []byte) ([]byte, Descriptor, error) {
	var d Decoder
	return d.decode(data, 0)
}

// DecodeChannels is like Decode but produces a buffer with the given number
// of channels regardless of the header. Decoding an RGBA stream to RGB drops
// alpha; decoding an RGB stream to RGBA fills alpha from the stream, which is
// 255 unless the encoder wrote otherwise. The returned Descriptor reports the
// requested channels.
func DecodeChannels(data []byte, channels Channels) ([]byte, Descriptor, error) {
	if !channels.valid() {
		return nil, Descriptor{}, oops.New(ErrHeader, "unexpected channel count %d requested", uint8(channels))
	}
	var d Decoder
	return d.decode(data, channels)
}

// Decode is like the package-level Decode. The returned buffer is owned by
// the Decoder and is overwritten by the next call.
func (d *Decoder) Decode(data []byte) ([]byte, Descriptor, error) {
	return d.decode(data, 0)
}

// DecodeHeader parses and validates the 14-byte header at the start of data.
func DecodeHeader(data []byte) (Descriptor, error) {
	if len(data) < len(magic) {
		return Descriptor{}, oops.New(ErrTruncated, "stream of %d bytes is too short for a magic", len(data))
	}
	if string(data[:len(magic)]) != magic {
		return Descriptor{}, oops.New(ErrHeader, "unexpected magic %q", data[:len(magic)])
	}
	if len(data) < headerSize {
		return Descriptor{}, oops.New(ErrTruncated, "stream of %d bytes is too short for a header", len(data))
	}
	return NewDescriptor(
		binary.BigEndian.Uint32(data[4:8]),
		binary.BigEndian.Uint32(data[8:12]),
		data[12],
		data[13],
	)
}

func (d *Decoder) decode(data []byte, override Channels) ([]byte, Descriptor, error) {
	desc, err := DecodeHeader(data)
	if err != nil {
		return nil, Descriptor{}, err
	}
	if override != 0 {
		desc.Channels = override
	}

	// a chunk byte never yields more than maxRun pixels
	minChunks := (desc.PixelCount() + maxRun - 1) / maxRun
	if len(data)-headerSize-len(endMarker) < minChunks {
		return nil, Descriptor{}, oops.New(ErrTruncated, "stream of %d bytes cannot hold %d pixels", len(data), desc.PixelCount())
	}

	channels := int(desc.Channels)
	size := desc.BufferLen()
	if cap(d.pix) < size {
		d.pix = make([]byte, size)
	}
	pix := d.pix[:size]

	var cache colorCache
	px := startPixel
	pos := headerSize
	run := 0

	for i := 0; i < size; i += channels {
		if run > 0 {
			run--
		} else {
			if pos >= len(data) {
				return nil, Descriptor{}, truncatedAt(i/channels, desc)
			}
			b := data[pos]
			pos++

			switch {
			case b == opRGB:
				if len(data)-pos < 3 {
					return nil, Descriptor{}, truncatedAt(i/channels, desc)
				}
				px.r, px.g, px.b = data[pos], data[pos+1], data[pos+2]
				pos += 3
			case b == opRGBA:
				if len(data)-pos < 4 {
					return nil, Descriptor{}, truncatedAt(i/channels, desc)
				}
				px = pixel{r: data[pos], g: data[pos+1], b: data[pos+2], a: data[pos+3]}
				pos += 4
			case b&opMask == opIndex:
				px = cache[b]
			case b&opMask == opDiff:
				px.r = decodeDelta8(px.r, int(b>>4&0x03)-2)
				px.g = decodeDelta8(px.g, int(b>>2&0x03)-2)
				px.b = decodeDelta8(px.b, int(b&0x03)-2)
			case b&opMask == opLuma:
				if pos >= len(data) {
					return nil, Descriptor{}, truncatedAt(i/channels, desc)
				}
				b2 := data[pos]
				pos++
				dg := int(b&0x3f) - 32
				px.r = decodeDelta8(px.r, dg-8+int(b2>>4))
				px.g = decodeDelta8(px.g, dg)
				px.b = decodeDelta8(px.b, dg-8+int(b2&0x0f))
			default:
				// the current pixel is the first of the run
				run = int(b & 0x3f)
			}
		}

		cache[px.hash()] = px
		writePixel(pix, i, channels, px)
	}

	if len(data)-pos < len(endMarker) {
		return nil, Descriptor{}, oops.New(ErrTruncated, "stream ends %d bytes into the end marker", len(data)-pos)
	}
	if !bytes.Equal(data[pos:pos+len(endMarker)], endMarker[:]) {
		return nil, Descriptor{}, oops.New(ErrTruncated, "unexpected end marker % x", data[pos:pos+len(endMarker)])
	}

	d.pix = pix
	return pix, desc, nil
}

func truncatedAt(n int, desc Descriptor) error {
	return oops.New(ErrTruncated, "stream ends after %d of %d pixels", n, desc.PixelCount())
}
