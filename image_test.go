package qoi

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTestImage(w, h int, opaque bool) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := uint8(255)
			if !opaque {
				a = uint8(255 - (x+y)%3*60)
			}
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8((x * 17) ^ (y * 31)),
				G: uint8((x * 43) + (y * 13)),
				B: uint8((x * 7) ^ (y * 11)),
				A: a,
			})
		}
	}
	return img
}

func assertSamePixels(t *testing.T, want, got image.Image) {
	t.Helper()
	require.Equal(t, want.Bounds().Size(), got.Bounds().Size())
	wb, gb := want.Bounds(), got.Bounds()
	for y := 0; y < wb.Dy(); y++ {
		for x := 0; x < wb.Dx(); x++ {
			w := color.NRGBAModel.Convert(want.At(wb.Min.X+x, wb.Min.Y+y))
			g := color.NRGBAModel.Convert(got.At(gb.Min.X+x, gb.Min.Y+y))
			if w != g {
				t.Fatalf("pixel (%d,%d): want %v, got %v", x, y, w, g)
			}
		}
	}
}

func TestEncodeImage_Channels(t *testing.T) {
	for _, tc := range []struct {
		name   string
		opaque bool
		opts   *Options
		want   Channels
	}{
		{name: "auto opaque", opaque: true, want: RGB},
		{name: "auto translucent", opaque: false, want: RGBA},
		{name: "forced rgba", opaque: true, opts: &Options{Channels: RGBA}, want: RGBA},
		{name: "linear", opaque: true, opts: &Options{Colorspace: Linear}, want: RGB},
	} {
		t.Run(tc.name, func(t *testing.T) {
			src := makeTestImage(13, 9, tc.opaque)
			var buf bytes.Buffer
			require.NoError(t, EncodeImage(&buf, src, tc.opts))

			desc, err := DecodeHeader(buf.Bytes())
			require.NoError(t, err)
			assert.Equal(t, tc.want, desc.Channels)
			if tc.opts != nil {
				assert.Equal(t, tc.opts.Colorspace, desc.Colorspace)
			}

			img, gotDesc, err := DecodeNRGBA(&buf)
			require.NoError(t, err)
			assert.Equal(t, tc.want, gotDesc.Channels)
			assertSamePixels(t, src, img)
		})
	}
}

func TestEncodeImage_ForcedRGBDropsAlpha(t *testing.T) {
	src := makeTestImage(4, 4, false)
	var buf bytes.Buffer
	require.NoError(t, EncodeImage(&buf, src, &Options{Channels: RGB}))

	img, err := DecodeImage(&buf)
	require.NoError(t, err)
	c := img.At(1, 0).(color.NRGBA)
	assert.Equal(t, uint8(255), c.A)
	assert.Equal(t, src.NRGBAAt(1, 0).R, c.R)
}

func TestEncodeImage_SubImage(t *testing.T) {
	full := makeTestImage(20, 20, true)
	sub := full.SubImage(image.Rect(5, 7, 15, 12))

	var buf bytes.Buffer
	require.NoError(t, EncodeImage(&buf, sub, nil))
	img, err := DecodeImage(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 10, 5), img.Bounds())
	assertSamePixels(t, sub, img)
}

func TestEncodeImage_TopRowsSubImage(t *testing.T) {
	full := makeTestImage(8, 8, false)

	for _, channels := range []Channels{0, RGB, RGBA} {
		t.Run(channels.String(), func(t *testing.T) {
			sub := full.SubImage(image.Rect(0, 0, 8, 3)).(*image.NRGBA)
			require.Len(t, sub.Pix, len(full.Pix), "SubImage keeps the rows below the rectangle")

			var buf bytes.Buffer
			require.NoError(t, EncodeImage(&buf, sub, &Options{Channels: channels}))
			img, desc, err := DecodeNRGBA(&buf)
			require.NoError(t, err)
			assert.Equal(t, uint32(8), desc.Width)
			assert.Equal(t, uint32(3), desc.Height)
			if channels != RGB {
				assertSamePixels(t, sub, img)
			}
		})
	}

	n := ImageToNRGBA(full.SubImage(image.Rect(0, 0, 8, 3)))
	assert.Len(t, n.Pix, 8*3*4)
	assert.Same(t, full, ImageToNRGBA(full))
}

func TestEncodeImage_Empty(t *testing.T) {
	var buf bytes.Buffer
	err := EncodeImage(&buf, image.NewNRGBA(image.Rect(0, 0, 0, 3)), nil)
	assert.ErrorIs(t, err, ErrHeader)
	assert.Zero(t, buf.Len())
}

func TestImageToNRGBA(t *testing.T) {
	src := makeTestImage(3, 3, true)
	assert.Same(t, src, ImageToNRGBA(src))

	gray := image.NewGray(image.Rect(2, 2, 4, 5))
	gray.SetGray(2, 2, color.Gray{Y: 77})
	out := ImageToNRGBA(gray)
	assert.Equal(t, image.Rect(0, 0, 2, 3), out.Bounds())
	assert.Equal(t, color.NRGBA{R: 77, G: 77, B: 77, A: 255}, out.NRGBAAt(0, 0))
}

func TestDecodeConfig(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeImage(&buf, makeTestImage(31, 7, false), nil))

	cfg, err := DecodeConfig(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 31, cfg.Width)
	assert.Equal(t, 7, cfg.Height)
	assert.Equal(t, color.NRGBAModel, cfg.ColorModel)

	_, err = DecodeConfig(bytes.NewReader(buf.Bytes()[:9]))
	assert.ErrorIs(t, err, ErrTruncated)
	_, err = DecodeConfig(bytes.NewReader([]byte("GIF89a........")))
	assert.ErrorIs(t, err, ErrHeader)
}

func TestImageDecodeRegistration(t *testing.T) {
	src := makeTestImage(16, 16, false)
	var buf bytes.Buffer
	require.NoError(t, EncodeImage(&buf, src, nil))

	img, format, err := image.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "qoi", format)
	assertSamePixels(t, src, img)
}
