package convert

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/svanichkin/qoi"
	"github.com/svanichkin/qoi/internal/oops"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type Format int

const (
	FormatOther Format = iota
	FormatQOI
	FormatCompressedQOI
	FormatPNG
	FormatBMP
	FormatTIFF
	FormatJPEG
)

const qoiExt = ".qoi"

// FormatOf classifies path by its extension, case-insensitively.
func FormatOf(path string) Format {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, qoiExt+qoi.CompressedExt) {
		return FormatCompressedQOI
	}
	switch filepath.Ext(lower) {
	case qoiExt:
		return FormatQOI
	case ".png":
		return FormatPNG
	case ".bmp":
		return FormatBMP
	case ".tif", ".tiff":
		return FormatTIFF
	case ".jpg", ".jpeg":
		return FormatJPEG
	}
	return FormatOther
}

func (f Format) isQOI() bool {
	return f == FormatQOI || f == FormatCompressedQOI
}

type Options struct {
	// Output overrides the derived output path. Only valid for one input.
	Output    string
	OutputDir string

	Channels   qoi.Channels
	Colorspace qoi.Colorspace
	// Compress writes .qoi.zst instead of .qoi when encoding.
	Compress bool
}

// OutputPath derives where in should be written: QOI inputs become PNG,
// everything else becomes QOI.
func OutputPath(in string, opts Options) string {
	if opts.Output != "" {
		return opts.Output
	}

	base := in
	if FormatOf(in) == FormatCompressedQOI {
		base = base[:len(base)-len(qoi.CompressedExt)]
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))

	var out string
	switch {
	case FormatOf(in).isQOI():
		out = base + ".png"
	case opts.Compress:
		out = base + qoiExt + qoi.CompressedExt
	default:
		out = base + qoiExt
	}

	if opts.OutputDir != "" {
		out = filepath.Join(opts.OutputDir, filepath.Base(out))
	}
	return out
}

// File converts in to out, picking decoders and encoders by extension.
// It returns the number of bytes written.
func File(in, out string, opts Options) (int, error) {
	if filepath.Clean(in) == filepath.Clean(out) {
		return 0, oops.New(nil, "refusing to overwrite input %s", in)
	}

	data, err := os.ReadFile(in)
	if err != nil {
		return 0, oops.New(err, "failed to read input")
	}

	img, err := decode(data, FormatOf(in))
	if err != nil {
		return 0, oops.New(err, "failed to decode %s", in)
	}

	encoded, err := encode(img, FormatOf(out), opts)
	if err != nil {
		return 0, oops.New(err, "failed to encode %s", out)
	}

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, oops.New(err, "failed to create output directory")
		}
	}
	if err := os.WriteFile(out, encoded, 0o644); err != nil {
		return 0, oops.New(err, "failed to write output")
	}
	return len(encoded), nil
}

func decode(data []byte, format Format) (image.Image, error) {
	switch format {
	case FormatQOI:
		img, _, err := qoi.DecodeNRGBA(bytes.NewReader(data))
		return img, err
	case FormatCompressedQOI:
		raw, err := qoi.Decompress(data)
		if err != nil {
			return nil, err
		}
		img, _, err := qoi.DecodeNRGBA(bytes.NewReader(raw))
		return img, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

func encode(img image.Image, format Format, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch format {
	case FormatQOI, FormatCompressedQOI:
		err = qoi.EncodeImage(&buf, img, &qoi.Options{
			Channels:   opts.Channels,
			Colorspace: opts.Colorspace,
		})
		if err == nil && format == FormatCompressedQOI {
			return qoi.Compress(buf.Bytes()), nil
		}
	case FormatPNG:
		err = png.Encode(&buf, img)
	case FormatBMP:
		err = bmp.Encode(&buf, img)
	case FormatTIFF:
		err = tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate})
	case FormatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95})
	default:
		return nil, oops.New(nil, "no encoder for this output extension")
	}

	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
