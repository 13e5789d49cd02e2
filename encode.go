package qoi

import (
	"encoding/binary"
	"io"

	"github.com/svanichkin/qoi/internal/oops"
)

// Encoder encodes pixel buffers into QOI streams, reusing its output buffer
// between calls. An Encoder is not safe for concurrent use.
type Encoder struct {
	out []byte
}

// NewEncoder returns an Encoder with no buffer allocated yet.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode encodes pix, laid out as desc describes, into a new QOI stream.
func Encode(pix []byte, desc Descriptor) ([]byte, error) {
	var e Encoder
	return e.Encode(pix, desc)
}

// Encode encodes pix as desc describes. The returned slice is owned by the
// Encoder and is overwritten by the next call.
func (e *Encoder) Encode(pix []byte, desc Descriptor) ([]byte, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if len(pix) != desc.BufferLen() {
		return nil, oops.New(ErrSize, "pixel buffer holds %d bytes, %s needs %d", len(pix), desc, desc.BufferLen())
	}

	channels := int(desc.Channels)
	// worst case: every pixel is an RGBA literal (RGB images: RGB literal)
	maxSize := headerSize + desc.PixelCount()*(channels+1) + len(endMarker)
	if cap(e.out) < maxSize {
		e.out = make([]byte, 0, maxSize)
	}

	out := appendHeader(e.out[:0], desc)

	var cache colorCache
	prev := startPixel
	run := 0
	last := len(pix) - channels

	for i := 0; i < len(pix); i += channels {
		px := readPixel(pix, i, channels)
		h := px.hash()

		if px == prev {
			run++
			if run == maxRun || i == last {
				out = append(out, opRun|byte(run-1))
				run = 0
			}
		} else {
			if run > 0 {
				out = append(out, opRun|byte(run-1))
				run = 0
			}

			switch {
			case cache[h] == px:
				out = append(out, opIndex|h)
			case px.a == prev.a:
				out = appendDelta(out, prev, px)
			default:
				out = append(out, opRGBA, px.r, px.g, px.b, px.a)
			}
		}

		cache[h] = px
		prev = px
	}

	out = append(out, endMarker[:]...)
	e.out = out
	return out, nil
}

// EncodeTo encodes pix and writes the stream to w.
func (e *Encoder) EncodeTo(w io.Writer, pix []byte, desc Descriptor) error {
	data, err := e.Encode(pix, desc)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func appendHeader(out []byte, desc Descriptor) []byte {
	out = append(out, magic...)
	out = binary.BigEndian.AppendUint32(out, desc.Width)
	out = binary.BigEndian.AppendUint32(out, desc.Height)
	return append(out, byte(desc.Channels), byte(desc.Colorspace))
}

// appendDelta encodes px relative to prev when both share an alpha value:
// DIFF if every channel moved by -2..1, LUMA if green moved by -32..31 and
// red and blue stayed within -8..7 of green's move, an RGB literal otherwise.
func appendDelta(out []byte, prev, px pixel) []byte {
	dr := int(encodeDelta8(prev.r, px.r))
	dg := int(encodeDelta8(prev.g, px.g))
	db := int(encodeDelta8(prev.b, px.b))
	drdg := dr - dg
	dbdg := db - dg

	switch {
	case inRange(dr, -2, 1) && inRange(dg, -2, 1) && inRange(db, -2, 1):
		return append(out, opDiff|byte(dr+2)<<4|byte(dg+2)<<2|byte(db+2))
	case inRange(dg, -32, 31) && inRange(drdg, -8, 7) && inRange(dbdg, -8, 7):
		return append(out, opLuma|byte(dg+32), byte(drdg+8)<<4|byte(dbdg+8))
	}
	return append(out, opRGB, px.r, px.g, px.b)
}

func inRange(v, lo, hi int) bool {
	return v >= lo && v <= hi
}
