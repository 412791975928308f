package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"minute-condenser/infrastructure/config"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
	cfgErr  error
)

var rootCmd = &cobra.Command{
	Use:   "minute-condenser <input_path>",
	Short: "Condense a video to exactly one minute",
	Long: `minute-condenser speeds a video up (or slows it down) uniformly so that it
plays for exactly 60 seconds, and writes the result next to the input.

Two backends are available:

  - ffmpeg   runs ffmpeg with hardware decode when available and fast-start
             muxing; writes <name>_1min_ffmpeg_fast<ext>
  - library  builds an ffmpeg-go filter graph with exact audio retiming;
             writes <name>_1min<ext>

The ffmpeg backend retimes audio with a single tempo filter capped at 2x, so
for inputs longer than two minutes its audio track will outlast the video.
Inputs shorter than 30 seconds ask that filter for a tempo below 0.5x, which
ffmpeg rejects; use --no-sound or the library backend for those.

Example:
  minute-condenser holiday.mp4
  minute-condenser holiday.mp4 --no-sound --backend library`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCondense,
}

// Execute runs the root command and exits non-zero on any failure
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.DefaultPath+")")
}

func initConfig() {
	if cfgFile == "" {
		// The default file is optional
		cfg, cfgErr = config.LoadOrDefault(config.DefaultPath)
		return
	}
	cfg, cfgErr = config.Load(cfgFile)
}

// GetConfig returns the loaded configuration
func GetConfig() (*config.Config, error) {
	return cfg, cfgErr
}

// configPath returns the file config commands read and write
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath
}
