package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svanichkin/qoi"
	"github.com/svanichkin/qoi/internal/config"
)

func TestRootCommand_EncodesIntoOutputDir(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 6, 4))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 11)
	}
	img.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	in := filepath.Join(dir, "in.png")
	f, err := os.Create(in)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	outDir := filepath.Join(dir, "out")
	RootCommand.SetArgs([]string{"--log-level", "error", "--colorspace", "linear", "-d", outDir, "-j", "1", in})
	require.NoError(t, RootCommand.Execute())

	data, err := os.ReadFile(filepath.Join(outDir, "in.qoi"))
	require.NoError(t, err)
	desc, err := qoi.DecodeHeader(data)
	require.NoError(t, err)
	assert.Equal(t, qoi.Linear, desc.Colorspace)
	assert.Equal(t, qoi.RGBA, desc.Channels)
}

func TestRootCommand_RejectsBadFlags(t *testing.T) {
	RootCommand.SetArgs([]string{"--log-level", "error", "--channels", "cmyk", "x.png"})
	assert.Error(t, RootCommand.Execute())
	config.Config.Channels = config.ChannelsAuto

	RootCommand.SetArgs([]string{"--log-level", "loud", "x.png"})
	assert.Error(t, RootCommand.Execute())
}

func TestConfigMapping(t *testing.T) {
	assert.Equal(t, qoi.Channels(0), channelsFromConfig(config.ChannelsAuto))
	assert.Equal(t, qoi.RGB, channelsFromConfig(config.ChannelsRGB))
	assert.Equal(t, qoi.RGBA, channelsFromConfig(config.ChannelsRGBA))
	assert.Equal(t, qoi.SRGB, colorspaceFromConfig(config.ColorspaceSRGB))
	assert.Equal(t, qoi.Linear, colorspaceFromConfig(config.ColorspaceLinear))
}
