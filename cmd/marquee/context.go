package main

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"marquee/internal/config"
	"marquee/internal/logging"
	"marquee/internal/movies"
	"marquee/internal/omdb"
	"marquee/internal/resolver"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		var level string
		if c.logLevelFlag != nil {
			level = strings.TrimSpace(*c.logLevelFlag)
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg, level)
	})
	return c.logger, c.loggerErr
}

// newResolver wires the OMDb client, cache, and resolver from configuration.
func (c *commandContext) newResolver() (*resolver.Resolver, *config.Config, *slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, nil, err
	}

	opts := []omdb.Option{
		omdb.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}),
		omdb.WithRateLimit(cfg.OMDb.RequestsPerSecond, movies.MaxResults),
		omdb.WithLogger(logger),
	}
	if cfg.OMDb.BreakerEnabled {
		opts = append(opts, omdb.WithBreaker(omdb.BreakerSettings{
			FailureThreshold: cfg.OMDb.BreakerFailureThreshold,
			OpenTimeout:      cfg.BreakerOpenTimeout(),
		}))
	}
	client, err := omdb.New(cfg.OMDb.APIKey, cfg.OMDb.BaseURL, opts...)
	if err != nil {
		return nil, nil, nil, err
	}

	r := resolver.New(
		resolver.NewCachingClient(client, cfg.CacheTTL()),
		resolver.WithLogger(logger),
		resolver.WithPlaceholder(cfg.Browse.PlaceholderPoster),
	)
	return r, cfg, logger, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
