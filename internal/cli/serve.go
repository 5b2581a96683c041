package cli

import (
	"context"
	"fmt"
	"log"
	"net"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/ChuLiYu/cpu-scheduler-sim/internal/api"
	"github.com/ChuLiYu/cpu-scheduler-sim/internal/metrics"
	"github.com/ChuLiYu/cpu-scheduler-sim/internal/server"
)

func buildServeCommand() *cobra.Command {
	var grpcPort, httpPort int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the simulator gRPC and HTTP services",
		Long: `Serve simulations over gRPC (used by run/compare --server) and a JSON
HTTP API under /api/v1. A port of 0 disables that front-end.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile, cmd.Flags().Changed("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cmd.Flags().Changed("grpc-port") {
				cfg.Server.GRPCPort = grpcPort
			}
			if cmd.Flags().Changed("http-port") {
				cfg.Server.HTTPPort = httpPort
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().IntVar(&grpcPort, "grpc-port", 0, "gRPC port (default from config)")
	cmd.Flags().IntVar(&httpPort, "http-port", 0, "HTTP port (default from config)")
	return cmd
}

// runServe blocks until ctx is cancelled or a front-end fails
func runServe(ctx context.Context, cfg *Config) error {
	algs, err := cfg.algorithms()
	if err != nil {
		return err
	}
	if cfg.Server.GRPCPort == 0 && cfg.Server.HTTPPort == 0 {
		return fmt.Errorf("nothing to serve: both grpc_port and http_port are 0")
	}

	opts := server.Options{
		Defaults:   cfg.engineConfig(),
		Algorithms: algs,
		Workers:    cfg.Comparison.Workers,
	}

	var gatherer prometheus.Gatherer
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts.Observer = metrics.NewCollector(reg)
		gatherer = reg
	}
	svc := server.NewService(opts)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := make(chan error, 3)
	running := 0

	if cfg.Server.GRPCPort != 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
		if err != nil {
			return fmt.Errorf("failed to listen on gRPC port %d: %w", cfg.Server.GRPCPort, err)
		}
		srv := server.NewServer(svc)
		running++
		go func() {
			errCh <- srv.Serve(lis)
		}()
		go func() {
			<-ctx.Done()
			srv.Stop()
		}()
	}

	if cfg.Server.HTTPPort != 0 {
		// /metrics rides on the API port unless a separate port is configured
		var apiGatherer prometheus.Gatherer
		if gatherer != nil && cfg.Metrics.Port == cfg.Server.HTTPPort {
			apiGatherer = gatherer
		}
		app := api.NewApp(api.NewSchedulerHandlerImpl(svc), apiGatherer)
		running++
		go func() {
			errCh <- api.Serve(ctx, app, fmt.Sprintf(":%d", cfg.Server.HTTPPort))
		}()
	}

	if gatherer != nil && cfg.Metrics.Port != cfg.Server.HTTPPort {
		running++
		go func() {
			log.Printf("Starting metrics server on :%d\n", cfg.Metrics.Port)
			errCh <- metrics.StartServer(ctx, cfg.Metrics.Port, gatherer)
		}()
	}

	log.Println("schedsim is running. Press Ctrl+C to stop.")

	var firstErr error
	for ; running > 0; running-- {
		if err := <-errCh; err != nil && firstErr == nil {
			log.Printf("Server error: %v\n", err)
			firstErr = err
		}
		// one front-end stopping stops the rest
		cancel()
	}
	log.Println("schedsim stopped")
	return firstErr
}
