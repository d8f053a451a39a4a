package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/crimson-sun/vitigate/internal/config"
	"github.com/crimson-sun/vitigate/internal/output"
	"github.com/crimson-sun/vitigate/internal/output/async"
	"github.com/crimson-sun/vitigate/internal/output/file"
	"github.com/crimson-sun/vitigate/internal/output/multi"
	"github.com/crimson-sun/vitigate/internal/output/stdout"
	"github.com/crimson-sun/vitigate/internal/output/webhook"
	"github.com/crimson-sun/vitigate/internal/pipeline"
	"github.com/crimson-sun/vitigate/internal/tracing"
)

type fetchOptions struct {
	all       bool
	out       string
	maxSize   int64
	webhook   string
	gzip      bool
	verbosity string
	pretty    bool
}

func newFetchCmd(v *viper.Viper) *cobra.Command {
	var opts fetchOptions
	cmd := &cobra.Command{
		Use:   "fetch [action] [type]",
		Short: "Fetch one dataset (or every dataset with --all) and write it as JSON",
		Example: `  vitigate fetch processamento viniferas
  vitigate fetch comercializacao --verbosity minimal --pretty
  vitigate fetch --all --out data.jsonl --max-size 10485760`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.all {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.RangeArgs(1, 2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, v, opts, args)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&opts.all, "all", false, "fetch every (action, type) in the taxonomy")
	f.StringVarP(&opts.out, "out", "o", "", "append NDJSON results to this file instead of stdout")
	f.Int64Var(&opts.maxSize, "max-size", 0, "rotate --out when it would exceed this many bytes (0 disables)")
	f.StringVar(&opts.webhook, "webhook", "", "also POST results in batches to this URL")
	f.BoolVar(&opts.gzip, "webhook-gzip", false, "gzip webhook request bodies")
	f.StringVar(&opts.verbosity, "verbosity", "", "minimal, standard or full (default standard, full with --all)")
	f.BoolVar(&opts.pretty, "pretty", false, "indent JSON written to stdout")
	return cmd
}

func runFetch(cmd *cobra.Command, v *viper.Viper, opts fetchOptions, args []string) error {
	cfg := config.Load(v)
	if err := cfg.ValidateClient(); err != nil {
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
		_ = tp.Shutdown(ctx)
	}()

	p, err := newPipeline(cfg, logger, tp, nil)
	if err != nil {
		return err
	}

	verbosity := output.Standard
	if opts.all {
		verbosity = output.Full
	}
	if opts.verbosity != "" {
		verbosity = output.ParseVerbosity(opts.verbosity)
	}
	out, err := buildOutputs(cmd, opts, verbosity, logger)
	if err != nil {
		return err
	}

	var requests []pipeline.Request
	if opts.all {
		reg := p.Registry()
		for _, action := range reg.Actions() {
			for _, typ := range reg.Types(action) {
				requests = append(requests, pipeline.Request{Action: action, Type: typ})
			}
		}
	} else {
		req := pipeline.Request{Action: args[0]}
		if len(args) > 1 {
			req.Type = args[1]
		}
		requests = append(requests, req)
	}

	failed := 0
	for _, req := range requests {
		env := p.Handle(cmd.Context(), req)
		if !env.OK() {
			failed++
		}
		if err := out.Write(cmd.Context(), output.Result{Action: req.Action, Type: req.Type, Envelope: env}); err != nil {
			logger.Error("write result", zap.String("action", req.Action), zap.String("type", req.Type), zap.Error(err))
			failed++
		}
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing outputs: %w", err)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d requests failed", failed, len(requests))
	}
	return nil
}

func buildOutputs(cmd *cobra.Command, opts fetchOptions, verbosity output.Verbosity, logger *zap.Logger) (output.Output, error) {
	var outs []output.Output
	if opts.out != "" {
		fo, err := file.New(opts.out, verbosity, file.WithMaxSize(opts.maxSize))
		if err != nil {
			return nil, err
		}
		outs = append(outs, fo)
	} else {
		outs = append(outs, stdout.New(cmd.OutOrStdout(), verbosity, opts.pretty))
	}

	if opts.webhook != "" {
		whOpts := []webhook.Option{webhook.WithLogger(logger)}
		if opts.verbosity != "" {
			whOpts = append(whOpts, webhook.WithVerbosity(verbosity))
		}
		if opts.gzip {
			whOpts = append(whOpts, webhook.WithGzip())
		}
		outs = append(outs, async.New(webhook.New(opts.webhook, whOpts...), async.WithLogger(logger)))
	}

	if len(outs) == 1 {
		return outs[0], nil
	}
	return multi.New(outs...), nil
}
