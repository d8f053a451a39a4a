package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/crimson-sun/vitigate/internal/auth"
	"github.com/crimson-sun/vitigate/internal/config"
	"github.com/crimson-sun/vitigate/internal/logging"
	"github.com/crimson-sun/vitigate/internal/pipeline"
	"github.com/crimson-sun/vitigate/internal/taxonomy"
	"github.com/crimson-sun/vitigate/internal/tracing"
	"github.com/crimson-sun/vitigate/internal/upstream"
)

func newLogger(cfg config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Server.Debug, logging.ParseLevel(cfg.Log.Level))
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return logger, nil
}

func newAccounts(cfg config.AuthConfig) (*auth.Service, error) {
	creds, err := auth.NewCredentials(cfg.Username, cfg.Password)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokens(cfg.Secret, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	return auth.NewService(creds, tokens), nil
}

// newPipeline builds the pipeline over the configured upstream source.
// accounts protects data routes when non-nil.
func newPipeline(cfg config.Config, logger *zap.Logger, tp *tracing.Provider, accounts auth.Authenticator) (*pipeline.Pipeline, error) {
	fetcher, err := upstream.New(upstream.Config{
		Source:  cfg.Upstream.Source,
		BaseURL: cfg.Upstream.BaseURL,
		Dir:     cfg.Upstream.Dir,
		Timeout: cfg.Upstream.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("creating upstream: %w", err)
	}

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithTracer(tp.Tracer()),
		pipeline.WithTimeout(cfg.Upstream.Timeout),
		pipeline.WithBodyLogging(cfg.Upstream.LogBody),
		pipeline.WithCharset(cfg.Upstream.Charset),
	}
	if accounts != nil {
		opts = append(opts, pipeline.WithAuthenticator(accounts))
	}
	return pipeline.New(taxonomy.Default(), fetcher, opts...), nil
}
