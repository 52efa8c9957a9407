package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"bookscout/internal/config"
	"bookscout/internal/logging"
	"bookscout/internal/scores"
	"bookscout/internal/source"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
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

// environment bundles the shared dependencies a command needs: the loaded
// config, a run-scoped logger, the caching page source, and the snapshot
// store.
type environment struct {
	cfg       *config.Config
	logger    *slog.Logger
	src       *source.Client
	snapshots *scores.SnapshotStore
}

func (c *commandContext) newEnvironment() (*environment, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: os.Stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	logger = logger.With(logging.String(logging.FieldRunID, uuid.NewString()))

	src, err := source.NewClient(source.Config{
		BaseURL:       cfg.Goodreads.BaseURL,
		CacheDir:      cfg.Paths.CacheDir,
		Cookie:        cfg.Goodreads.Cookie,
		UserAgent:     cfg.Goodreads.UserAgent,
		RetryAttempts: cfg.Source.RetryAttempts,
		Timeout:       time.Duration(cfg.Source.TimeoutSeconds) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create page source: %w", err)
	}

	snapshots, err := scores.OpenSnapshots(cfg.SnapshotDBPath())
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}

	return &environment{
		cfg:       cfg,
		logger:    logger,
		src:       src,
		snapshots: snapshots,
	}, nil
}

func (e *environment) close() {
	if err := e.snapshots.Close(); err != nil {
		e.logger.Warn("failed to close snapshot store", logging.Error(err))
	}
}
