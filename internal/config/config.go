package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and output configuration.
type Paths struct {
	CacheDir   string `toml:"cache_dir"`
	DataDir    string `toml:"data_dir"`
	OutputFile string `toml:"output_file"`
}

// Goodreads contains settings for talking to the source site.
type Goodreads struct {
	BaseURL   string `toml:"base_url"`
	Cookie    string `toml:"cookie"`
	UserAgent string `toml:"user_agent"`
}

// Source contains fetch and retry settings for the page cache.
type Source struct {
	RetryAttempts  int `toml:"retry_attempts"`
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Recommend contains tuning knobs for the recommendation pipeline.
type Recommend struct {
	MaxResults        int      `toml:"max_results"`
	ReviewPages       int      `toml:"review_pages"`
	LikedThreshold    int      `toml:"liked_threshold"`
	ReviewerMinRating int      `toml:"reviewer_min_rating"`
	MinAverageRating  float64  `toml:"min_average_rating"`
	ReportShelves     []string `toml:"report_shelves"`
}

// Scan contains settings for bulk list/shelf scanning.
type Scan struct {
	ListPages int `toml:"list_pages"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for bookscout.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Goodreads Goodreads `toml:"goodreads"`
	Source    Source    `toml:"source"`
	Recommend Recommend `toml:"recommend"`
	Scan      Scan      `toml:"scan"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/bookscout/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized. The boolean reports whether a
// config file was found; defaults are returned when none exists.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("bookscout.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	for _, field := range []*string{&c.Paths.CacheDir, &c.Paths.DataDir} {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	if strings.TrimSpace(c.Paths.OutputFile) != "" {
		expanded, err := expandPath(c.Paths.OutputFile)
		if err != nil {
			return err
		}
		c.Paths.OutputFile = expanded
	}
	c.Goodreads.BaseURL = strings.TrimRight(strings.TrimSpace(c.Goodreads.BaseURL), "/")
	c.Goodreads.Cookie = strings.TrimSpace(c.Goodreads.Cookie)
	c.Goodreads.UserAgent = strings.TrimSpace(c.Goodreads.UserAgent)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}

// EnsureDirectories creates the cache and data directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CacheDir, c.Paths.DataDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SnapshotDBPath returns the location of the score snapshot database.
func (c *Config) SnapshotDBPath() string {
	return filepath.Join(c.Paths.DataDir, "snapshots.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
