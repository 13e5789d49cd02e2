package qoi

import (
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"

	"github.com/svanichkin/qoi/internal/oops"
)

func init() {
	image.RegisterFormat("qoi", magic, DecodeImage, DecodeConfig)
}

// Options controls EncodeImage.
type Options struct {
	// Channels is the channel count written to the stream. The zero value
	// picks RGB for fully opaque images and RGBA otherwise. RGB discards alpha.
	Channels Channels
	// Colorspace is written to the header as is.
	Colorspace Colorspace
}

// DecodeImage reads a QOI stream from r. The returned image is always an
// *image.NRGBA whose bounds start at (0,0).
func DecodeImage(r io.Reader) (image.Image, error) {
	img, _, err := DecodeNRGBA(r)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// DecodeNRGBA reads a QOI stream from r and also returns its header.
func DecodeNRGBA(r io.Reader) (*image.NRGBA, Descriptor, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, Descriptor{}, oops.New(err, "failed to read qoi stream")
	}
	pix, desc, err := DecodeChannels(data, RGBA)
	if err != nil {
		return nil, Descriptor{}, err
	}
	w, h := int(desc.Width), int(desc.Height)
	return &image.NRGBA{
		Pix:    pix,
		Stride: 4 * w,
		Rect:   image.Rect(0, 0, w, h),
	}, desc, nil
}

// DecodeConfig returns the dimensions of a QOI image without decoding its
// pixels. The color model is always color.NRGBAModel.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var header [headerSize]byte
	n, err := io.ReadFull(r, header[:])
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return image.Config{}, oops.New(err, "failed to read qoi header")
	}
	desc, err := DecodeHeader(header[:n])
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(desc.Width),
		Height:     int(desc.Height),
	}, nil
}

// EncodeImage writes m to w as a QOI stream. A nil o means default options.
func EncodeImage(w io.Writer, m image.Image, o *Options) error {
	var opts Options
	if o != nil {
		opts = *o
	}

	img := ImageToNRGBA(m)
	b := img.Bounds()
	if uint64(b.Dx()) > math.MaxUint32 || uint64(b.Dy()) > math.MaxUint32 {
		return oops.New(ErrSize, "image of %dx%d does not fit a qoi header", b.Dx(), b.Dy())
	}

	channels := opts.Channels
	if channels == 0 {
		channels = RGBA
		if img.Opaque() {
			channels = RGB
		}
	}

	desc := Descriptor{
		Width:      uint32(b.Dx()),
		Height:     uint32(b.Dy()),
		Channels:   channels,
		Colorspace: opts.Colorspace,
	}
	if err := desc.Validate(); err != nil {
		return err
	}

	pix := img.Pix
	if channels == RGB {
		pix = dropAlpha(img.Pix)
	}
	return NewEncoder().EncodeTo(w, pix, desc)
}

// ImageToNRGBA returns src as a tightly packed *image.NRGBA with bounds
// starting at (0,0), copying only when src is not one already.
func ImageToNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) && n.Stride == 4*n.Rect.Dx() {
		// SubImage keeps every byte past the rectangle in Pix
		size := 4 * n.Rect.Dx() * n.Rect.Dy()
		if len(n.Pix) == size {
			return n
		}
		if len(n.Pix) > size {
			return &image.NRGBA{Pix: n.Pix[:size:size], Stride: n.Stride, Rect: n.Rect}
		}
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

func dropAlpha(rgba []byte) []byte {
	rgb := make([]byte, 0, len(rgba)/4*3)
	for i := 0; i+3 < len(rgba); i += 4 {
		rgb = append(rgb, rgba[i], rgba[i+1], rgba[i+2])
	}
	return rgb
}
