package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/fdfskit/pkg/config"
	"github.com/dmitrymomot/fdfskit/pkg/fdfs"
	"github.com/dmitrymomot/fdfskit/pkg/fdfshttp"
	"github.com/dmitrymomot/fdfskit/pkg/httpserver"
	"github.com/dmitrymomot/fdfskit/pkg/logger"
)

type appConfig struct {
	FDFS fdfs.Config       `envPrefix:"FDFS_"`
	HTTP httpserver.Config `envPrefix:"HTTP_"`
	Log  logger.Config
}

// loadConfig parses the environment on every call; the env and yaml files
// of the current invocation may have changed it.
func loadConfig() (appConfig, error) {
	var cfg appConfig
	err := config.ForceReloadConfig(&cfg)
	return cfg, err
}

func newLogger(cfg logger.Config, w io.Writer) *slog.Logger {
	return logger.New(
		logger.WithConfig(cfg),
		logger.WithOutput(w),
		logger.WithContextExtractors(fdfshttp.RequestIDExtractor()),
	)
}

// openClient builds the storage client from the environment. Logs go to
// the command's stderr so stdout stays usable for file content.
func openClient(cmd *cobra.Command) (*fdfs.Client, appConfig, *slog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, cfg, nil, err
	}

	log := newLogger(cfg.Log, cmd.ErrOrStderr())
	client, err := fdfs.NewFromConfig(cmd.Context(), cfg.FDFS, log)
	if errors.Is(err, fdfs.ErrDisabled) {
		return nil, cfg, nil, fmt.Errorf("%w: set FDFS_ENABLED=true", err)
	}
	if err != nil {
		return nil, cfg, nil, err
	}
	return client, cfg, log, nil
}
