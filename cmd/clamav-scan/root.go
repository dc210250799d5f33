package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	clamav "github.com/DevHatRo/clamav-sdk-go"
	"github.com/DevHatRo/clamav-sdk-go/cmd/clamav-scan/internal/config"
	"github.com/DevHatRo/clamav-sdk-go/cmd/clamav-scan/internal/logger"
	"github.com/DevHatRo/clamav-sdk-go/grpc"
)

// scannerFactory builds the client for the configured transport. reg is nil
// when metrics are disabled.
type scannerFactory func(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (clamav.Scanner, error)

func newScanner(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (clamav.Scanner, error) {
	l := logger.Get(ctx)

	if cfg.Transport == config.TransportGRPC {
		interleave, err := grpc.ParseInterleave(cfg.Interleave)
		if err != nil {
			return nil, err
		}
		c, err := grpc.NewClient(cfg.GRPCAddr,
			grpc.WithTimeout(cfg.Timeout),
			grpc.WithChunkSize(cfg.ChunkSize),
			grpc.WithInterleave(interleave),
			grpc.WithLogger(l),
			grpc.WithMetrics(reg),
		)
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	c, err := clamav.NewClient(cfg.RESTURL,
		clamav.WithTimeout(cfg.Timeout),
		clamav.WithConcurrency(cfg.Concurrency),
		clamav.WithLogger(l),
		clamav.WithMetrics(reg),
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// env is shared by the subcommands. cfg is set once flags are parsed.
type env struct {
	cfg     *config.Config
	factory scannerFactory
}

func newRootCommand(factory scannerFactory) *cobra.Command {
	e := &env{factory: factory}
	var configPath string

	root := &cobra.Command{
		Use:           "clamav-scan",
		Short:         "Scan files with a ClamAV API server",
		Long:          "Scan files with a ClamAV API server over REST or gRPC.\n\n" + config.Usage(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			e.cfg = cfg

			l := logger.Setup(cfg.Environment)
			cmd.SetContext(logger.WithLogger(cmd.Context(), l))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			_ = logger.Get(cmd.Context()).Sync()
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (yaml)")

	root.AddCommand(
		scanCommand(e),
		healthCommand(e),
		versionCommand(e),
	)

	return root
}

// open builds the scanner and, when configured, the metrics endpoint. The
// returned func releases both.
func (e *env) open(ctx context.Context) (clamav.Scanner, func(), error) {
	var (
		reg  prometheus.Registerer
		stop = func() {}
	)
	if e.cfg.MetricsAddr != "" {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
		reg = registry
		stop = serveMetrics(ctx, e.cfg.MetricsAddr, registry)
	}

	s, err := e.factory(ctx, e.cfg, reg)
	if err != nil {
		stop()
		return nil, nil, err
	}

	return s, func() {
		if err := s.Close(); err != nil {
			logger.Warn(ctx, "could not close client", zap.Error(err))
		}
		stop()
	}, nil
}

func serveMetrics(ctx context.Context, addr string, g prometheus.Gatherer) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		logger.Info(ctx, "serving metrics", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "could not serve metrics", zap.Error(err))
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn(ctx, "could not stop metrics server", zap.Error(err))
		}
	}
}
