package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bookscout/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigShowCommand())
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "Cache dir:          %s\n", cfg.Paths.CacheDir)
			fmt.Fprintf(out, "Data dir:           %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "Output file:        %s\n", cfg.Paths.OutputFile)
			fmt.Fprintf(out, "Base URL:           %s\n", cfg.Goodreads.BaseURL)
			fmt.Fprintf(out, "Cookie set:         %s\n", yesNo(cfg.Goodreads.Cookie != ""))
			fmt.Fprintf(out, "Retry attempts:     %d\n", cfg.Source.RetryAttempts)
			fmt.Fprintf(out, "Fetch timeout:      %ds\n", cfg.Source.TimeoutSeconds)
			fmt.Fprintf(out, "Max results:        %d\n", cfg.Recommend.MaxResults)
			fmt.Fprintf(out, "Review pages:       %d\n", cfg.Recommend.ReviewPages)
			fmt.Fprintf(out, "Liked threshold:    %d\n", cfg.Recommend.LikedThreshold)
			fmt.Fprintf(out, "Reviewer min score: %d\n", cfg.Recommend.ReviewerMinRating)
			fmt.Fprintf(out, "Min average rating: %v\n", cfg.Recommend.MinAverageRating)
			fmt.Fprintf(out, "Report shelves:     %s\n", strings.Join(cfg.Recommend.ReportShelves, ", "))
			fmt.Fprintf(out, "List pages:         %d\n", cfg.Scan.ListPages)
			fmt.Fprintf(out, "Log format:         %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "Log level:          %s\n", cfg.Logging.Level)
			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set the goodreads cookie in the file before running recommend.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
