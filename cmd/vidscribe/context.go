package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"vidscribe/internal/config"
	"vidscribe/internal/logging"
	"vidscribe/internal/services"
)

// skipConfigAnnotation marks commands that run without loading config.
const skipConfigAnnotation = "skipConfigLoad"

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

// commandContext loads config and the logger lazily, once per process.
type commandContext struct {
	flags globalFlags

	loadConfig func() (loadedConfig, error)
	newLogger  func() (*slog.Logger, error)

	configPath string
}

type loadedConfig struct {
	cfg  *config.Config
	path string
}

func newCommandContext() *commandContext {
	c := &commandContext{}
	c.loadConfig = sync.OnceValues(c.readConfig)
	c.newLogger = sync.OnceValues(c.buildLogger)
	return c
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	loaded, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	c.configPath = loaded.path
	return loaded.cfg, nil
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	return c.newLogger()
}

func (c *commandContext) readConfig() (loadedConfig, error) {
	cfg, path, _, err := config.Load(strings.TrimSpace(c.flags.configPath))
	if err != nil {
		return loadedConfig{}, services.Wrap(services.ErrConfiguration, "", "load config", "", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return loadedConfig{}, services.Wrap(services.ErrConfiguration, "", "ensure directories", "", err)
	}
	if v := strings.TrimSpace(c.flags.logLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(c.flags.logFormat); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	return loadedConfig{cfg: cfg, path: path}, nil
}

// buildLogger writes to stderr and to the log file in the state directory.
func (c *commandContext) buildLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "init logger", "", err)
	}
	return logger, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipConfigAnnotation] == "true" {
			return true
		}
	}
	return false
}

func usageError(format string, args ...any) error {
	return services.Wrap(services.ErrValidation, "", "", fmt.Sprintf(format, args...), nil)
}
