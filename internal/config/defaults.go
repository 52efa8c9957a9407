package config

const (
	defaultCacheDir          = "~/.cache/bookscout/pages"
	defaultDataDir           = "~/.local/share/bookscout"
	defaultBaseURL           = "https://www.goodreads.com"
	defaultUserAgent         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0"
	defaultRetryAttempts     = 3
	defaultTimeoutSeconds    = 10
	defaultMaxResults        = 40
	defaultReviewPages       = 2
	defaultLikedThreshold    = 3
	defaultReviewerMinRating = 4
	defaultMinAverageRating  = 4.0
	defaultListPages         = 4
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir: defaultCacheDir,
			DataDir:  defaultDataDir,
		},
		Goodreads: Goodreads{
			BaseURL:   defaultBaseURL,
			UserAgent: defaultUserAgent,
		},
		Source: Source{
			RetryAttempts:  defaultRetryAttempts,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Recommend: Recommend{
			MaxResults:        defaultMaxResults,
			ReviewPages:       defaultReviewPages,
			LikedThreshold:    defaultLikedThreshold,
			ReviewerMinRating: defaultReviewerMinRating,
			MinAverageRating:  defaultMinAverageRating,
		},
		Scan: Scan{
			ListPages: defaultListPages,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
