//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"minute-condenser/cmd"
	"minute-condenser/infrastructure/config"

	"github.com/cucumber/godog"
)

type configContext struct {
	tempDir    string
	configPath string
	config     *config.Config
	output     *bytes.Buffer
	err        error
}

var SharedConfigContext = &configContext{}

func InitializeConfigScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedConfigContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "config-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config", "config.yaml")
		testCtx.config = nil
		testCtx.output = &bytes.Buffer{}
		testCtx.err = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^a config file with content:$`, testCtx.aConfigFileWithContent)
	ctx.Step(`^no config file exists$`, testCtx.noConfigFileExists)
	ctx.Step(`^I load the configuration$`, testCtx.iLoadTheConfiguration)
	ctx.Step(`^loading should fail with "([^"]*)"$`, testCtx.loadingShouldFailWith)
	ctx.Step(`^the backend should be "([^"]*)"$`, testCtx.theBackendShouldBe)
	ctx.Step(`^the probe should be "([^"]*)"$`, testCtx.theProbeShouldBe)
	ctx.Step(`^I list the config$`, testCtx.iListTheConfig)
	ctx.Step(`^I get config key "([^"]*)"$`, testCtx.iGetConfigKey)
	ctx.Step(`^I set config key "([^"]*)" to "([^"]*)"$`, testCtx.iSetConfigKeyTo)
	ctx.Step(`^the config command should fail with "([^"]*)"$`, testCtx.theConfigCommandShouldFailWith)
	ctx.Step(`^the config output should contain "([^"]*)"$`, testCtx.theConfigOutputShouldContain)
	ctx.Step(`^the config output should be "([^"]*)"$`, testCtx.theConfigOutputShouldBe)
	ctx.Step(`^the saved config should have "([^"]*)" set to "([^"]*)"$`, testCtx.theSavedConfigShouldHaveSetTo)
}

func (c *configContext) aConfigFileWithContent(content *godog.DocString) error {
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(c.configPath, []byte(content.Content), 0644)
}

func (c *configContext) noConfigFileExists() error {
	return nil
}

func (c *configContext) iLoadTheConfiguration() error {
	c.config, c.err = config.LoadOrDefault(c.configPath)
	return nil
}

func (c *configContext) loadingShouldFailWith(message string) error {
	if c.err == nil {
		return fmt.Errorf("expected loading to fail with %q", message)
	}
	if !strings.Contains(c.err.Error(), message) {
		return fmt.Errorf("expected error containing %q, got %q", message, c.err.Error())
	}
	return nil
}

func (c *configContext) loaded() (*config.Config, error) {
	if c.config == nil {
		cfg, err := config.LoadOrDefault(c.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		c.config = cfg
	}
	return c.config, nil
}

func (c *configContext) theBackendShouldBe(expected string) error {
	if c.err != nil {
		return c.err
	}
	if c.config.Backend != expected {
		return fmt.Errorf("expected backend %q, got %q", expected, c.config.Backend)
	}
	return nil
}

func (c *configContext) theProbeShouldBe(expected string) error {
	if c.err != nil {
		return c.err
	}
	if c.config.ProbeName() != expected {
		return fmt.Errorf("expected probe %q, got %q", expected, c.config.ProbeName())
	}
	return nil
}

func (c *configContext) iListTheConfig() error {
	cfg, err := c.loaded()
	if err != nil {
		return err
	}
	c.err = cmd.RunConfigListWithDependencies(cfg, c.configPath, c.output)
	return nil
}

func (c *configContext) iGetConfigKey(key string) error {
	cfg, err := c.loaded()
	if err != nil {
		return err
	}
	c.err = cmd.RunConfigGetWithDependencies(cfg, c.configPath, key, c.output)
	return nil
}

func (c *configContext) iSetConfigKeyTo(key, value string) error {
	cfg, err := c.loaded()
	if err != nil {
		return err
	}
	c.err = cmd.RunConfigSetWithDependencies(cfg, c.configPath, key, value, c.output)
	return nil
}

func (c *configContext) theConfigCommandShouldFailWith(message string) error {
	return c.loadingShouldFailWith(message)
}

func (c *configContext) theConfigOutputShouldContain(text string) error {
	if c.err != nil {
		return fmt.Errorf("config command failed: %w", c.err)
	}
	if !strings.Contains(c.output.String(), text) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", text, c.output.String())
	}
	return nil
}

func (c *configContext) theConfigOutputShouldBe(expected string) error {
	if c.err != nil {
		return fmt.Errorf("config command failed: %w", c.err)
	}
	if got := strings.TrimSpace(c.output.String()); got != expected {
		return fmt.Errorf("expected output %q, got %q", expected, got)
	}
	return nil
}

func (c *configContext) theSavedConfigShouldHaveSetTo(key, expected string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}
	got, err := config.NewConfigManager(cfg, c.configPath).Get(key)
	if err != nil {
		return err
	}
	if got != expected {
		return fmt.Errorf("expected %s %q, got %q", key, expected, got)
	}
	return nil
}
