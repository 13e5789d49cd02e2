package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/svanichkin/qoi"
	"github.com/svanichkin/qoi/internal/config"
	"github.com/svanichkin/qoi/internal/convert"
	"github.com/svanichkin/qoi/internal/logging"
	"github.com/svanichkin/qoi/internal/oops"
)

var (
	outputPath string
	logLevel   string
)

var RootCommand = &cobra.Command{
	Use:   "qoiconv [flags] <input>...",
	Short: "Convert images to and from QOI",
	Long: `Convert images to and from the QOI format.

.qoi and .qoi.zst inputs are decoded to PNG (or to the format named by --output).
Any other input (png, jpeg, gif, bmp, tiff, webp) is encoded to .qoi.`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logging.LogPanicValue(nil, r, "qoiconv panicked")
				err = oops.New(nil, "internal error: %v", r)
			}
		}()

		level, err := config.ParseLogLevel(logLevel)
		if err != nil {
			return err
		}
		config.Config.LogLevel = level
		logging.SetLevel(level)

		if err := config.Config.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts := convert.Options{
			Output:     outputPath,
			OutputDir:  config.Config.OutputDir,
			Channels:   channelsFromConfig(config.Config.Channels),
			Colorspace: colorspaceFromConfig(config.Config.Colorspace),
			Compress:   config.Config.Compress,
		}

		start := time.Now()
		results, batchErr := convert.Batch(ctx, args, opts, config.Config.Jobs)

		converted := 0
		for _, res := range results {
			if res.Err == nil {
				converted++
				fmt.Printf("%s → %s\n", res.Input, res.Output)
			}
		}
		logging.Info().
			Int("converted", converted).
			Int("failed", len(results)-converted).
			Dur("elapsed", time.Since(start)).
			Msg("Done")

		return batchErr
	},
}

func init() {
	flags := RootCommand.Flags()
	flags.StringVarP(&outputPath, "output", "o", "", "output file (only with a single input)")
	flags.StringVarP(&config.Config.OutputDir, "output-dir", "d", config.Config.OutputDir, "directory for output files")
	flags.IntVarP(&config.Config.Jobs, "jobs", "j", config.Config.Jobs, "number of files converted at once")
	flags.StringVar((*string)(&config.Config.Channels), "channels", string(config.Config.Channels), "channels of new QOI files: auto, rgb or rgba")
	flags.StringVar((*string)(&config.Config.Colorspace), "colorspace", string(config.Config.Colorspace), "colorspace tag of new QOI files: srgb or linear")
	flags.BoolVar(&config.Config.Compress, "compress", config.Config.Compress, "wrap new QOI files in zstd (.qoi.zst)")
	flags.StringVar(&logLevel, "log-level", config.Config.LogLevel.String(), "log level: debug, info, warn or error")
}

func channelsFromConfig(mode config.ChannelMode) qoi.Channels {
	switch mode {
	case config.ChannelsRGB:
		return qoi.RGB
	case config.ChannelsRGBA:
		return qoi.RGBA
	}
	return 0
}

func colorspaceFromConfig(name config.ColorspaceName) qoi.Colorspace {
	if name == config.ColorspaceLinear {
		return qoi.Linear
	}
	return qoi.SRGB
}

func main() {
	if err := RootCommand.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "qoiconv:", err)
		os.Exit(1)
	}
}
