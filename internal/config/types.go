package config

import (
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/svanichkin/qoi/internal/oops"
)

// ChannelMode selects how many channels the converter writes into new QOI files.
type ChannelMode string

const (
	ChannelsAuto ChannelMode = "auto"
	ChannelsRGB  ChannelMode = "rgb"
	ChannelsRGBA ChannelMode = "rgba"
)

type ColorspaceName string

const (
	ColorspaceSRGB   ColorspaceName = "srgb"
	ColorspaceLinear ColorspaceName = "linear"
)

type QOIConfig struct {
	LogLevel zerolog.Level

	// Jobs caps the number of files converted at once.
	Jobs       int
	Channels   ChannelMode
	Colorspace ColorspaceName
	Compress   bool
	OutputDir  string
}

// Config is the process-wide configuration. The CLI binds its flags onto it.
var Config = Default()

func Default() QOIConfig {
	return QOIConfig{
		LogLevel:   zerolog.InfoLevel,
		Jobs:       runtime.NumCPU(),
		Channels:   ChannelsAuto,
		Colorspace: ColorspaceSRGB,
	}
}

func (c QOIConfig) Validate() error {
	if c.Jobs < 1 {
		return oops.New(nil, "jobs must be at least 1, got %d", c.Jobs)
	}
	switch c.Channels {
	case ChannelsAuto, ChannelsRGB, ChannelsRGBA:
	default:
		return oops.New(nil, "unknown channel mode %q (want auto, rgb or rgba)", c.Channels)
	}
	switch c.Colorspace {
	case ColorspaceSRGB, ColorspaceLinear:
	default:
		return oops.New(nil, "unknown colorspace %q (want srgb or linear)", c.Colorspace)
	}
	return nil
}

// ParseLogLevel accepts zerolog level names, case-insensitively.
func ParseLogLevel(s string) (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zerolog.NoLevel, oops.New(nil, "unknown log level %q", s)
	}
	return level, nil
}
