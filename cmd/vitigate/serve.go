package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/crimson-sun/vitigate/internal/auth"
	"github.com/crimson-sun/vitigate/internal/config"
	"github.com/crimson-sun/vitigate/internal/server"
	"github.com/crimson-sun/vitigate/internal/tracing"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, v)
		},
	}
	cmd.Flags().String("listen", "", "listen address (default 0.0.0.0:5000)")
	cmd.Flags().Bool("protect-data", false, "require a bearer token on data routes")
	_ = v.BindPFlag("server.listen", cmd.Flags().Lookup("listen"))
	_ = v.BindPFlag("auth.protect_data", cmd.Flags().Lookup("protect-data"))
	return cmd
}

func runServe(cmd *cobra.Command, v *viper.Viper) error {
	cfg := config.Load(v)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tp, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("creating tracer: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	accounts, err := newAccounts(cfg.Auth)
	if err != nil {
		return fmt.Errorf("creating accounts: %w", err)
	}
	var dataAuth auth.Authenticator
	if cfg.Auth.ProtectData {
		dataAuth = accounts
	}
	p, err := newPipeline(cfg, logger, tp, dataAuth)
	if err != nil {
		return err
	}

	handler := server.NewHandler(p, accounts, logger)
	srv, err := server.New(server.Config{
		Addr:            cfg.Server.Listen,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, server.Chain(handler.Routes(), logger, tp.Tracer()), logger)
	if err != nil {
		return err
	}

	logger.Info("vitigate starting",
		zap.String("version", config.Version),
		zap.String("upstream", cfg.Upstream.Source),
		zap.Bool("protect_data", cfg.Auth.ProtectData),
		zap.Bool("tracing", tp.Enabled()))
	if cfg.Auth.Secret == config.InsecureSecret {
		logger.Warn("using the insecure default signing secret")
	}
	return srv.Run(cmd.Context())
}
