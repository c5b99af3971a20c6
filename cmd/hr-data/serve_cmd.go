package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/nicolasimarinw/hr-ontology/modules/assistant"
	"github.com/nicolasimarinw/hr-ontology/modules/assistant/presentation/controllers"
	"github.com/nicolasimarinw/hr-ontology/modules/graph"
	"github.com/nicolasimarinw/hr-ontology/pkg/metrics"
	"github.com/nicolasimarinw/hr-ontology/pkg/middleware"
	"github.com/nicolasimarinw/hr-ontology/pkg/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the assistant HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := newEnv()
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			defer e.tracing(ctx)()

			b := e.openBackends(ctx)
			defer b.Close(context.Background())

			srv, err := e.httpServer(b)
			if err != nil {
				return withCode(exitUsage, err)
			}
			e.log.WithField("address", e.conf.SocketAddress).Info("listening")
			if err := srv.Start(ctx, e.conf.SocketAddress); err != nil {
				return fail(exitFailure, fmt.Errorf("serve: %w", err))
			}
			return nil
		},
	}
}

func (e *env) httpServer(b *backends) (*server.HTTPServer, error) {
	opts := controllers.ChatControllerOptions{
		VisualizationDir: e.visualizationDir(),
		Logger:           e.log,
	}
	var (
		runner  graph.Runner
		querier assistant.LakeQuerier
		tables  controllers.TableChecker
	)
	if b.graph != nil {
		runner = b.graph
		opts.Employees = graph.NewAnalytics(b.graph)
	}
	if b.lake != nil {
		querier = b.lake
		tables = b.lake
	}
	if runner != nil || querier != nil {
		opts.Overview = assistant.NewOverviewService(runner, querier, e.log)
	}
	if agent, err := e.agent(b); err != nil {
		e.log.WithError(err).Warn("chat disabled")
	} else {
		opts.Chat = agent
	}

	mws := []mux.MiddlewareFunc{
		middleware.WithLogger(e.log, middleware.DefaultLoggerOptions()),
		middleware.TracedMiddleware("hr-ontology"),
		middleware.Cors(e.conf.Origins()...),
	}
	if e.conf.RateLimit.Enabled && e.conf.RateLimit.GlobalRPS > 0 {
		cfg := middleware.RateLimitConfig{RequestsPerPeriod: e.conf.RateLimit.GlobalRPS, Period: "S"}
		if e.conf.RateLimit.Storage == "redis" {
			store, err := middleware.NewRedisStore(e.conf.RateLimit.RedisURL)
			if err != nil {
				return nil, fmt.Errorf("rate limit store: %w", err)
			}
			cfg.Store = store
		}
		limit, err := middleware.RateLimit(cfg)
		if err != nil {
			return nil, err
		}
		mws = append(mws, limit)
	}

	srv := &server.HTTPServer{
		Controllers: []server.Controller{
			controllers.NewHealthController(b.graph != nil, opts.Chat != nil, tables),
			controllers.NewChatController(opts),
		},
		Middlewares: mws,
	}
	if e.conf.Prometheus.Enabled {
		srv.Controllers = append(srv.Controllers, metrics.NewPrometheusController(e.conf.Prometheus.Path))
	}
	return srv, nil
}
