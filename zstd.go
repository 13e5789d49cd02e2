package qoi

import (
	"errors"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/svanichkin/qoi/internal/oops"
)

// CompressedExt is the file extension appended to zstd-wrapped QOI streams,
// as in "image.qoi.zst".
const CompressedExt = ".zst"

// ErrCompressed reports a zstd container that could not be read.
var ErrCompressed = errors.New("qoi: invalid zstd container")

func mustNewZstdEncoder() *zstd.Encoder {
	enc, err := zstd.NewWriter(
		nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		zstd.WithLowerEncoderMem(true),
	)
	if err != nil {
		panic(err)
	}
	return enc
}

func mustNewZstdDecoder() *zstd.Decoder {
	dec, err := zstd.NewReader(
		nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
		// a qoi stream never exceeds 5 bytes per pixel plus framing
		zstd.WithDecoderMaxMemory(5*MaxPixels+headerSize+uint64(len(endMarker))),
	)
	if err != nil {
		panic(err)
	}
	return dec
}

var zstdEncPool = sync.Pool{
	New: func() any {
		return mustNewZstdEncoder()
	},
}

var zstdDecPool = sync.Pool{
	New: func() any {
		return mustNewZstdDecoder()
	},
}

// EncodeCompressed encodes pix like Encode and wraps the stream in a zstd frame.
func EncodeCompressed(pix []byte, desc Descriptor) ([]byte, error) {
	data, err := Encode(pix, desc)
	if err != nil {
		return nil, err
	}
	return Compress(data), nil
}

// DecodeCompressed unwraps a stream written by EncodeCompressed and decodes it.
func DecodeCompressed(data []byte) ([]byte, Descriptor, error) {
	raw, err := Decompress(data)
	if err != nil {
		return nil, Descriptor{}, err
	}
	return Decode(raw)
}

// Compress wraps an encoded QOI stream in a zstd frame.
func Compress(data []byte) []byte {
	enc := zstdEncPool.Get().(*zstd.Encoder)
	out := enc.EncodeAll(data, nil)
	zstdEncPool.Put(enc)
	return out
}

// Decompress unwraps a zstd frame written by Compress. It does not check
// that the result is a valid QOI stream.
func Decompress(data []byte) ([]byte, error) {
	dec := zstdDecPool.Get().(*zstd.Decoder)
	out, err := dec.DecodeAll(data, nil)
	zstdDecPool.Put(dec)
	if err != nil {
		return nil, oops.New(ErrCompressed, "zstd decode: %v", err)
	}
	return out, nil
}
