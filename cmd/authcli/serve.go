// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/luxfi/auth/api"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and prometheus metrics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		n, err := openNode(cmd, registry)
		if err != nil {
			return err
		}
		defer n.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		n.log.Info("Initializing authorizer API",
			log.Uint64("epoch", n.auth.CurrentEpoch()),
			log.Stringer("owner", n.auth.Owner()),
		)

		apiServer := &http.Server{
			Addr:              fmt.Sprintf(":%d", n.cfg.APIPort),
			Handler:           api.NewHandler(n.log, n.auth, n.events),
			ReadHeaderTimeout: 10 * time.Second,
		}
		metricsServer := &http.Server{
			Addr:              fmt.Sprintf(":%d", n.cfg.MetricsPort),
			Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errGroup, ctx := errgroup.WithContext(ctx)
		for name, server := range map[string]*http.Server{
			"api":     apiServer,
			"metrics": metricsServer,
		} {
			errGroup.Go(func() error {
				return runServer(ctx, n.log, name, server)
			})
		}
		return errGroup.Wait()
	},
}

// runServer serves until ctx is done, then shuts down gracefully.
func runServer(ctx context.Context, logger log.Logger, name string, server *http.Server) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("Starting server", log.String("server", name), log.String("addr", server.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start %s server: %w", name, err)
	}
	return nil
}
