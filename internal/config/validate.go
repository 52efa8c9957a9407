package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateGoodreads(); err != nil {
		return err
	}
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		return errors.New("paths.cache_dir must be set")
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateGoodreads() error {
	if c.Goodreads.BaseURL == "" {
		return errors.New("goodreads.base_url must be set")
	}
	parsed, err := url.Parse(c.Goodreads.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("goodreads.base_url %q is not an absolute URL", c.Goodreads.BaseURL)
	}
	return nil
}

func (c *Config) validateSource() error {
	if c.Source.RetryAttempts < 1 {
		return errors.New("source.retry_attempts must be at least 1")
	}
	if c.Source.TimeoutSeconds < 1 {
		return errors.New("source.timeout_seconds must be at least 1")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if c.Recommend.MaxResults < 1 {
		return errors.New("recommend.max_results must be at least 1")
	}
	if c.Recommend.ReviewPages < 1 {
		return errors.New("recommend.review_pages must be at least 1")
	}
	if c.Recommend.LikedThreshold < 1 || c.Recommend.LikedThreshold > 5 {
		return errors.New("recommend.liked_threshold must be between 1 and 5")
	}
	if c.Recommend.ReviewerMinRating < 1 || c.Recommend.ReviewerMinRating > 5 {
		return errors.New("recommend.reviewer_min_rating must be between 1 and 5")
	}
	if c.Recommend.MinAverageRating < 1 || c.Recommend.MinAverageRating > 5 {
		return errors.New("recommend.min_average_rating must be between 1 and 5")
	}
	return nil
}

func (c *Config) validateScan() error {
	if c.Scan.ListPages < 1 {
		return errors.New("scan.list_pages must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not supported (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not supported", c.Logging.Level)
	}
	return nil
}
