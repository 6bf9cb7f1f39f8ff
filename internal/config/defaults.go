package config

import "marquee/internal/movies"

const (
	defaultOMDbBaseURL             = "https://www.omdbapi.com/"
	defaultOMDbTimeoutSeconds      = 10
	defaultOMDbRequestsPerSecond   = 10
	defaultBreakerFailureThreshold = 5
	defaultBreakerOpenSeconds      = 30
	defaultBrowseQuery             = "guardians of the galaxy"
	defaultDebounceMillis          = 300
	defaultPlaceholderPoster       = movies.DefaultPlaceholder
	defaultColumns                 = 4
	defaultCacheTTLSeconds         = 600
	defaultServerBind              = "127.0.0.1:7488"
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		OMDb: OMDb{
			BaseURL:                 defaultOMDbBaseURL,
			TimeoutSeconds:          defaultOMDbTimeoutSeconds,
			RequestsPerSecond:       defaultOMDbRequestsPerSecond,
			BreakerEnabled:          true,
			BreakerFailureThreshold: defaultBreakerFailureThreshold,
			BreakerOpenSeconds:      defaultBreakerOpenSeconds,
		},
		Browse: Browse{
			DefaultQuery:      defaultBrowseQuery,
			DebounceMillis:    defaultDebounceMillis,
			PlaceholderPoster: defaultPlaceholderPoster,
			Columns:           defaultColumns,
			DiscardStale:      true,
		},
		Cache: Cache{
			TTLSeconds: defaultCacheTTLSeconds,
		},
		Server: Server{
			Bind: defaultServerBind,
		},
		Logging: Logging{
			Format:  defaultLogFormat,
			Level:   defaultLogLevel,
			Outputs: []string{"stderr"},
		},
	}
}
