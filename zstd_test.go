package qoi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressed_RoundTrip(t *testing.T) {
	desc := Descriptor{Width: 64, Height: 64, Channels: RGBA, Colorspace: Linear}
	pix := makeTestPixels(64, 64, RGBA)

	comp, err := EncodeCompressed(pix, desc)
	require.NoError(t, err)

	plain, err := Encode(pix, desc)
	require.NoError(t, err)
	assert.NotEqual(t, plain[:4], comp[:4], "compressed output should not start with the qoi magic")

	dec, gotDesc, err := DecodeCompressed(comp)
	require.NoError(t, err)
	assert.Equal(t, desc, gotDesc)
	assert.Equal(t, pix, dec)
}

func TestCompressed_Errors(t *testing.T) {
	_, _, err := DecodeCompressed([]byte("not a zstd frame"))
	assert.ErrorIs(t, err, ErrCompressed)

	// a valid frame around a broken qoi stream keeps the qoi error kind
	_, _, err = DecodeCompressed(Compress([]byte("qoif")))
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = EncodeCompressed(nil, Descriptor{Width: 1, Height: 1, Channels: RGB})
	assert.ErrorIs(t, err, ErrSize)
}
