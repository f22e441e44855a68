package cli

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/cache"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/config"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/delivery"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/logger"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/pipeline"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/schema"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/store"
)

// env holds the collaborators built from configuration for one command.
type env struct {
	cfg     *config.Config
	log     logger.Logger
	closers []func() error
}

// newFormatter builds the formatter for cmd's output streams.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// loadEnv reads configuration. --verbose raises the log level to debug.
func loadEnv(opts *RootOptions) (*env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	level := cfg.Log.Level
	if opts.Verbose {
		level = "debug"
	}
	return &env{cfg: cfg, log: logger.NewStructured(level, cfg.Log.Format)}, nil
}

// Close releases everything opened through e.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i]()
	}
}

// pipeline builds the compile pipeline with the CUE schema check and, when
// redis.address is set and reachable, the shared artifact cache.
func (e *env) pipeline(ctx context.Context) (*pipeline.Pipeline, error) {
	checker, err := schema.NewChecker()
	if err != nil {
		return nil, err
	}
	opts := []pipeline.Option{pipeline.WithSchema(checker), pipeline.WithLogger(e.log)}

	if rc := e.cfg.Redis; rc.Address != "" {
		r := cache.NewRedis(cache.Config{
			Address:  rc.Address,
			Password: rc.Password,
			DB:       rc.DB,
			Prefix:   rc.Prefix,
			TTL:      rc.TTL,
		})
		if err := r.Ping(ctx); err != nil {
			e.log.WithError(err).Warn("artifact cache unavailable", logger.Fields{"address": rc.Address})
			_ = r.Close()
		} else {
			e.closers = append(e.closers, r.Close)
			opts = append(opts, pipeline.WithCache(r))
		}
	}
	return pipeline.New(opts...), nil
}

// store opens the configured SQLite store.
func (e *env) store() (*store.Store, error) {
	st, err := store.Open(e.cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	e.closers = append(e.closers, st.Close)
	return st, nil
}

// dispatcher builds a delivery dispatcher. The push messenger is enabled
// when a channel token is configured.
func (e *env) dispatcher() *delivery.Dispatcher {
	dc := e.cfg.Delivery
	client := &http.Client{Timeout: dc.Timeout}
	opts := []delivery.Option{delivery.WithHTTPClient(client), delivery.WithLogger(e.log)}
	if dc.LineChannelToken != "" {
		endpoint := dc.PushEndpoint
		if endpoint == "" {
			endpoint = delivery.DefaultPushEndpoint
		}
		opts = append(opts, delivery.WithMessenger(&delivery.PushMessenger{
			Endpoint: endpoint,
			Token:    dc.LineChannelToken,
			Client:   client,
		}))
	}
	return delivery.New(opts...)
}

// offlineLogger is used by commands that run without configuration.
// Only warnings reach stderr unless --verbose is set.
func offlineLogger(opts *RootOptions) logger.Logger {
	if opts.Verbose {
		return logger.NewStructured("debug", "text")
	}
	return logger.NewStructured("warn", "text")
}
