package main

import (
	"log/slog"
	"strings"
	"sync"

	"patchforge/internal/catalog"
	"patchforge/internal/config"
	"patchforge/internal/detection"
	"patchforge/internal/logging"
	"patchforge/internal/services/vision"
	"patchforge/internal/workflow"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

// withStore opens the catalog for the duration of one command.
func (c *commandContext) withStore(fn func(*config.Config, *catalog.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}

// withPipeline opens the catalog and wires the full pipeline, including the
// vision-backed detector.
func (c *commandContext) withPipeline(fn func(*config.Config, *catalog.Store, *workflow.Pipeline) error) error {
	return c.withStore(func(cfg *config.Config, store *catalog.Store) error {
		logger := c.ensureLogger()
		client := vision.NewClient(vision.Config{
			APIKey:         cfg.Vision.APIKey,
			BaseURL:        cfg.Vision.BaseURL,
			Model:          cfg.Vision.Model,
			Referer:        cfg.Vision.Referer,
			Title:          cfg.Vision.Title,
			TimeoutSeconds: cfg.Vision.TimeoutSeconds,
		})
		detector := detection.NewDetector(client, cfg.Vision.Model, logger)
		pipeline := workflow.New(cfg, store, detector, logger)
		return fn(cfg, store, pipeline)
	})
}
