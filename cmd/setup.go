package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"minute-condenser/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
	Select(message string, options []string, defaultValue string) (string, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

func (p *SurveyPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through choosing a backend, locating the ffmpeg
and ffprobe binaries, and tuning the encoder settings.`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	return RunSetupWithPrompter(DefaultPrompter, configPath(), os.Stdout)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, out OutputWriter) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Welcome to minute-condenser setup!")
	fmt.Fprintln(out)

	cfg := config.Default()

	if err := promptBackend(prompter, cfg); err != nil {
		return err
	}

	if err := promptTools(prompter, cfg); err != nil {
		return err
	}

	if err := promptEncoding(prompter, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	return nil
}

func promptBackend(prompter Prompter, cfg *config.Config) error {
	backend, err := prompter.Select("Which backend should condense videos?",
		[]string{config.BackendFFmpeg, config.BackendLibrary}, cfg.Backend)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Backend = backend

	probe, err := prompter.Select("How should durations be probed?",
		[]string{config.ProbeFFprobe, config.ProbeLibrary, config.ProbeOpenCV}, cfg.ProbeName())
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Probe = probe

	return nil
}

func promptTools(prompter Prompter, cfg *config.Config) error {
	ffmpegPath, err := prompter.Input("Path to the ffmpeg binary?", cfg.FFmpeg.FFmpegPath)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if ffmpegPath == "" {
		return fmt.Errorf("ffmpeg path is required")
	}
	cfg.FFmpeg.FFmpegPath = ffmpegPath

	ffprobePath, err := prompter.Input("Path to the ffprobe binary?", cfg.FFmpeg.FFprobePath)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if ffprobePath == "" {
		return fmt.Errorf("ffprobe path is required")
	}
	cfg.FFmpeg.FFprobePath = ffprobePath

	return nil
}

func promptEncoding(prompter Prompter, cfg *config.Config) error {
	if cfg.Backend == config.BackendLibrary {
		overwrite, err := prompter.Confirm("Replace existing output files?", cfg.Library.Overwrite)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		cfg.Library.Overwrite = overwrite
		return nil
	}

	hwaccel, err := prompter.Input("Hardware decode method (empty to disable)?", cfg.FFmpeg.HWAccel)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.FFmpeg.HWAccel = hwaccel

	if hwaccel != "" {
		codec, err := prompter.Input("Hardware video encoder?", cfg.FFmpeg.HWVideoCodec)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if codec == "" {
			return fmt.Errorf("hardware video encoder is required when hwaccel is set")
		}
		cfg.FFmpeg.HWVideoCodec = codec
	}

	height, err := prompter.Input("Maximum output height in pixels (0 keeps the source size)?", strconv.Itoa(cfg.FFmpeg.MaxHeight))
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	n, err := strconv.Atoi(height)
	if err != nil || n < 0 {
		return fmt.Errorf("maximum height must be a non-negative integer")
	}
	cfg.FFmpeg.MaxHeight = n

	return nil
}
