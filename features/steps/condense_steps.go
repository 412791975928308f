//go:build integration

package steps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"minute-condenser/cmd"
	"minute-condenser/domain/video"
	"minute-condenser/infrastructure/config"
	"minute-condenser/infrastructure/ffmpeg"
	"minute-condenser/infrastructure/filesystem"

	"github.com/cucumber/godog"
)

const featureStagingID = "feature"

// recordingRunner stands in for ffmpeg and records every invocation
type recordingRunner struct {
	runs       [][]string
	outputs    [][]string
	hwaccels   string
	failWith   string
	writeFiles bool
}

func (r *recordingRunner) Run(ctx context.Context, name string, args ...string) error {
	r.runs = append(r.runs, args)
	if r.failWith != "" {
		return &ffmpeg.CommandError{Name: name, Stderr: r.failWith, Err: errors.New("exit status 1")}
	}
	if r.writeFiles && len(args) > 0 {
		return writeOutput(args)
	}
	return nil
}

// writeOutput creates the library staging file, or the trailing output path
func writeOutput(args []string) error {
	for _, a := range args {
		if strings.HasPrefix(filepath.Base(a), ".") && strings.Contains(a, featureStagingID) {
			return os.WriteFile(a, []byte("encoded"), 0644)
		}
	}
	return os.WriteFile(args[len(args)-1], []byte("encoded"), 0644)
}

func (r *recordingRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.outputs = append(r.outputs, args)
	if len(args) > 0 && args[len(args)-1] == "-hwaccels" {
		return []byte(r.hwaccels), nil
	}
	return []byte("ffmpeg version 6.1"), nil
}

// featureProber returns a fixed duration for every path
type featureProber struct {
	duration float64
	calls    int
}

func (p *featureProber) Duration(ctx context.Context, path string) (float64, error) {
	p.calls++
	return p.duration, nil
}

// featureInspector reports a fixed number of audio streams for every path
type featureInspector struct {
	audioStreams int
}

func (i *featureInspector) Inspect(ctx context.Context, path string) (*video.MediaInfo, error) {
	return &video.MediaInfo{VideoStreams: 1, AudioStreams: i.audioStreams}, nil
}

// condenseContext holds test state for condense scenarios
type condenseContext struct {
	dir       string
	cfg       *config.Config
	runner    *recordingRunner
	prober    *featureProber
	inspector *featureInspector
	inputPath string
	output    *bytes.Buffer
	err       error
}

// SharedCondenseContext is reset before each scenario via Before hook
var SharedCondenseContext *condenseContext

func getCondenseContext() *condenseContext {
	return SharedCondenseContext
}

func InitializeCondenseScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		dir, err := os.MkdirTemp("", "condense-test-*")
		if err != nil {
			return c, err
		}
		SharedCondenseContext = &condenseContext{
			dir:       dir,
			cfg:       config.Default(),
			runner:    &recordingRunner{writeFiles: true},
			prober:    &featureProber{},
			inspector: &featureInspector{audioStreams: 1},
			output:    &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if t := getCondenseContext(); t != nil && t.dir != "" {
			os.RemoveAll(t.dir)
		}
		SharedCondenseContext = nil
		return c, nil
	})

	ctx.Step(`^the "([^"]*)" backend is configured$`, theBackendIsConfigured)
	ctx.Step(`^ffmpeg lists the hardware method "([^"]*)"$`, ffmpegListsTheHardwareMethod)
	ctx.Step(`^ffmpeg fails with "([^"]*)"$`, ffmpegFailsWith)
	ctx.Step(`^a (\d+(?:\.\d+)?) second video named "([^"]*)"$`, aSecondVideoNamed)
	ctx.Step(`^the video has no audio track$`, theVideoHasNoAudioTrack)
	ctx.Step(`^no video named "([^"]*)"$`, noVideoNamed)
	ctx.Step(`^an existing output named "([^"]*)"$`, anExistingOutputNamed)
	ctx.Step(`^I condense the video$`, iCondenseTheVideo)
	ctx.Step(`^I condense the video without sound$`, iCondenseTheVideoWithoutSound)
	ctx.Step(`^the condense should succeed$`, theCondenseShouldSucceed)
	ctx.Step(`^the condense should fail with "([^"]*)"$`, theCondenseShouldFailWith)
	ctx.Step(`^the output file "([^"]*)" should exist$`, theOutputFileShouldExist)
	ctx.Step(`^the output file "([^"]*)" should not exist$`, theOutputFileShouldNotExist)
	ctx.Step(`^the output file "([^"]*)" should contain "([^"]*)"$`, theOutputFileShouldContain)
	ctx.Step(`^ffmpeg should have been called with "([^"]*)" set to "([^"]*)"$`, ffmpegShouldHaveBeenCalledWithSetTo)
	ctx.Step(`^ffmpeg arguments should include "([^"]*)"$`, ffmpegArgumentsShouldInclude)
	ctx.Step(`^ffmpeg arguments should not include "([^"]*)"$`, ffmpegArgumentsShouldNotInclude)
	ctx.Step(`^ffmpeg should not have been run$`, ffmpegShouldNotHaveBeenRun)
	ctx.Step(`^the duration should not have been probed$`, theDurationShouldNotHaveBeenProbed)
	ctx.Step(`^the report should say "([^"]*)"$`, theReportShouldSay)
	ctx.Step(`^the report should not say "([^"]*)"$`, theReportShouldNotSay)
}

func theBackendIsConfigured(name string) error {
	t := getCondenseContext()
	t.cfg.Backend = name
	return t.cfg.Validate()
}

func ffmpegListsTheHardwareMethod(method string) error {
	t := getCondenseContext()
	t.runner.hwaccels = "Hardware acceleration methods:\n" + method + "\n"
	return nil
}

func ffmpegFailsWith(diagnostic string) error {
	t := getCondenseContext()
	t.runner.failWith = diagnostic
	return nil
}

func aSecondVideoNamed(seconds, name string) error {
	t := getCondenseContext()
	d, err := strconv.ParseFloat(seconds, 64)
	if err != nil {
		return err
	}
	t.prober.duration = d
	t.inputPath = filepath.Join(t.dir, name)
	return os.WriteFile(t.inputPath, []byte("source"), 0644)
}

func theVideoHasNoAudioTrack() error {
	t := getCondenseContext()
	t.inspector.audioStreams = 0
	return nil
}

func noVideoNamed(name string) error {
	t := getCondenseContext()
	t.inputPath = filepath.Join(t.dir, name)
	return nil
}

func anExistingOutputNamed(name string) error {
	t := getCondenseContext()
	return os.WriteFile(filepath.Join(t.dir, name), []byte("previous"), 0644)
}

func (t *condenseContext) dependencies() cmd.CondenseDependencies {
	checker := filesystem.NewChecker()

	var retimer video.Retimer
	if t.cfg.Backend == config.BackendLibrary {
		retimer = ffmpeg.NewLibraryRetimer(t.cfg.Library,
			ffmpeg.WithLibraryCommandRunner(t.runner),
			ffmpeg.WithStagingID(func() string { return featureStagingID }),
			ffmpeg.WithStreamInspector(t.inspector),
		)
	} else {
		retimer = ffmpeg.NewTranscoder(t.cfg.FFmpeg, ffmpeg.WithCommandRunner(t.runner))
	}

	return cmd.CondenseDependencies{
		Prober:      t.prober,
		Retimer:     retimer,
		FileChecker: checker,
		Remover:     checker,
	}
}

func (t *condenseContext) condense(removeAudio bool) error {
	t.err = cmd.RunCondenseWithDependencies(
		context.Background(),
		t.dependencies(),
		t.inputPath,
		removeAudio,
		t.output,
	)
	return nil
}

func iCondenseTheVideo() error {
	return getCondenseContext().condense(false)
}

func iCondenseTheVideoWithoutSound() error {
	return getCondenseContext().condense(true)
}

func theCondenseShouldSucceed() error {
	t := getCondenseContext()
	if t.err != nil {
		return fmt.Errorf("unexpected error: %v", t.err)
	}
	return nil
}

func theCondenseShouldFailWith(message string) error {
	t := getCondenseContext()
	if t.err == nil {
		return fmt.Errorf("expected an error containing %q", message)
	}
	msg := strings.ReplaceAll(t.err.Error(), t.dir+string(filepath.Separator), "")
	if !strings.Contains(msg, message) {
		return fmt.Errorf("expected error containing %q, got %q", message, msg)
	}
	return nil
}

func theOutputFileShouldExist(name string) error {
	t := getCondenseContext()
	if _, err := os.Stat(filepath.Join(t.dir, name)); err != nil {
		return fmt.Errorf("expected %s to exist: %v", name, err)
	}
	return nil
}

func theOutputFileShouldNotExist(name string) error {
	t := getCondenseContext()
	if _, err := os.Stat(filepath.Join(t.dir, name)); err == nil {
		return fmt.Errorf("expected %s not to exist", name)
	}
	return nil
}

func theOutputFileShouldContain(name, content string) error {
	t := getCondenseContext()
	data, err := os.ReadFile(filepath.Join(t.dir, name))
	if err != nil {
		return err
	}
	if string(data) != content {
		return fmt.Errorf("expected %s to contain %q, got %q", name, content, string(data))
	}
	return nil
}

func (t *condenseContext) lastRun() ([]string, error) {
	if len(t.runner.runs) == 0 {
		return nil, fmt.Errorf("ffmpeg was not run")
	}
	return t.runner.runs[len(t.runner.runs)-1], nil
}

func ffmpegShouldHaveBeenCalledWithSetTo(flag, value string) error {
	t := getCondenseContext()
	args, err := t.lastRun()
	if err != nil {
		return err
	}
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			got := strings.ReplaceAll(args[i+1], t.dir+string(filepath.Separator), "")
			if got != value {
				return fmt.Errorf("expected %s %q, got %q", flag, value, got)
			}
			return nil
		}
	}
	return fmt.Errorf("flag %s not found in %v", flag, args)
}

func ffmpegArgumentsShouldInclude(fragment string) error {
	t := getCondenseContext()
	args, err := t.lastRun()
	if err != nil {
		return err
	}
	if !strings.Contains(strings.Join(args, " "), fragment) {
		return fmt.Errorf("expected %q in %v", fragment, args)
	}
	return nil
}

func ffmpegArgumentsShouldNotInclude(fragment string) error {
	t := getCondenseContext()
	args, err := t.lastRun()
	if err != nil {
		return err
	}
	if strings.Contains(strings.Join(args, " "), fragment) {
		return fmt.Errorf("did not expect %q in %v", fragment, args)
	}
	return nil
}

func ffmpegShouldNotHaveBeenRun() error {
	t := getCondenseContext()
	if len(t.runner.runs) != 0 || len(t.runner.outputs) != 0 {
		return fmt.Errorf("expected no ffmpeg calls, got runs=%v outputs=%v", t.runner.runs, t.runner.outputs)
	}
	return nil
}

func theDurationShouldNotHaveBeenProbed() error {
	t := getCondenseContext()
	if t.prober.calls != 0 {
		return fmt.Errorf("expected no probe calls, got %d", t.prober.calls)
	}
	return nil
}

func theReportShouldSay(text string) error {
	t := getCondenseContext()
	report := strings.ReplaceAll(t.output.String(), t.dir+string(filepath.Separator), "")
	if !strings.Contains(report, text) {
		return fmt.Errorf("expected report to contain %q, got:\n%s", text, report)
	}
	return nil
}

func theReportShouldNotSay(text string) error {
	t := getCondenseContext()
	if strings.Contains(t.output.String(), text) {
		return fmt.Errorf("expected report not to contain %q, got:\n%s", text, t.output.String())
	}
	return nil
}
