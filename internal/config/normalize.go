package config

import (
	"os"
	"strings"
)

func (c *Config) normalize() {
	c.normalizeOMDb()
	c.normalizeBrowse()
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	c.normalizeLogging()
}

func (c *Config) normalizeOMDb() {
	c.OMDb.APIKey = strings.TrimSpace(c.OMDb.APIKey)
	if c.OMDb.APIKey == "" {
		if value, ok := os.LookupEnv("OMDB_API_KEY"); ok {
			c.OMDb.APIKey = strings.TrimSpace(value)
		}
	}
	c.OMDb.BaseURL = strings.TrimSpace(c.OMDb.BaseURL)
	if c.OMDb.BaseURL == "" {
		c.OMDb.BaseURL = defaultOMDbBaseURL
	}
	if c.OMDb.TimeoutSeconds <= 0 {
		c.OMDb.TimeoutSeconds = defaultOMDbTimeoutSeconds
	}
}

func (c *Config) normalizeBrowse() {
	c.Browse.DefaultQuery = strings.ToLower(strings.TrimSpace(c.Browse.DefaultQuery))
	if c.Browse.DefaultQuery == "" {
		c.Browse.DefaultQuery = defaultBrowseQuery
	}
	c.Browse.PlaceholderPoster = strings.TrimSpace(c.Browse.PlaceholderPoster)
	if c.Browse.PlaceholderPoster == "" {
		c.Browse.PlaceholderPoster = defaultPlaceholderPoster
	}
	if c.Browse.Columns <= 0 {
		c.Browse.Columns = defaultColumns
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	switch c.Logging.Level {
	case "":
		c.Logging.Level = defaultLogLevel
	case "warning":
		c.Logging.Level = "warn"
	}
	outputs := make([]string, 0, len(c.Logging.Outputs))
	for _, out := range c.Logging.Outputs {
		if trimmed := strings.TrimSpace(out); trimmed != "" {
			outputs = append(outputs, trimmed)
		}
	}
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}
	c.Logging.Outputs = outputs
}
