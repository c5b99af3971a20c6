package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/nicolasimarinw/hr-ontology/modules/assistant"
	"github.com/nicolasimarinw/hr-ontology/modules/graph"
	"github.com/nicolasimarinw/hr-ontology/modules/lake"
	"github.com/nicolasimarinw/hr-ontology/pkg/configuration"
	"github.com/nicolasimarinw/hr-ontology/pkg/eventbus"
	"github.com/nicolasimarinw/hr-ontology/pkg/logging"
)

// env carries what every command needs: configuration, logger and bus.
type env struct {
	conf *configuration.Configuration
	log  *logrus.Logger
	bus  *eventbus.Bus
}

func newEnv() *env {
	conf := configuration.Use()
	logger := conf.Logger()
	return &env{conf: conf, log: logger, bus: eventbus.New(logger)}
}

// tracing installs the OTLP exporter when enabled and returns its cleanup.
func (e *env) tracing(ctx context.Context) func() {
	if !e.conf.OpenTelemetry.Enabled {
		return func() {}
	}
	e.log.WithField("endpoint", e.conf.OpenTelemetry.TempoURL).Info("OpenTelemetry tracing enabled")
	return logging.SetupTracing(ctx, e.conf.OpenTelemetry.ServiceName, e.conf.OpenTelemetry.TempoURL)
}

// openLake opens the DuckDB lake and registers a view per built table.
func (e *env) openLake(ctx context.Context) (*lake.Store, error) {
	store, err := lake.Open(e.conf.Data.LakeDir, e.log)
	if err != nil {
		return nil, fail(exitLake, fmt.Errorf("open lake: %w", err))
	}
	if _, err := store.RegisterViews(ctx); err != nil {
		_ = store.Close()
		return nil, fail(exitLake, fmt.Errorf("register lake views: %w", err))
	}
	return store, nil
}

func (e *env) openGraph(ctx context.Context) (*graph.Conn, error) {
	conn, err := graph.Open(ctx, e.conf.Neo4j, e.log)
	if err != nil {
		return nil, fail(exitGraph, fmt.Errorf("connect to neo4j at %s: %w", e.conf.Neo4j.URI, err))
	}
	return conn, nil
}

func (e *env) visualizationDir() string {
	return filepath.Join(e.conf.Data.ExportsDir, "visualizations")
}

func (e *env) chatCache() assistant.Cache {
	if !e.conf.ChatCache.Enabled {
		return nil
	}
	opts, err := redis.ParseURL(e.conf.RedisURL)
	if err != nil {
		opts = &redis.Options{Addr: e.conf.RedisURL}
	}
	return assistant.NewRedisCache(redis.NewClient(opts), "", e.conf.ChatCache.TTL)
}

// backends holds whichever data sources could be opened. Commands that can
// run degraded use it instead of failing on the first unreachable store.
type backends struct {
	lake  *lake.Store
	graph *graph.Conn
}

func (e *env) openBackends(ctx context.Context) *backends {
	b := &backends{}
	if store, err := e.openLake(ctx); err != nil {
		e.log.WithError(err).Warn("data lake unavailable")
	} else {
		b.lake = store
	}
	if conn, err := e.openGraph(ctx); err != nil {
		e.log.WithError(err).Warn("graph unavailable")
	} else {
		b.graph = conn
	}
	return b
}

func (b *backends) Close(ctx context.Context) {
	if b.lake != nil {
		_ = b.lake.Close()
	}
	if b.graph != nil {
		_ = b.graph.Close(ctx)
	}
}

// toolbox builds the assistant tools over the open backends. Missing
// backends are passed as untyped nil so the tools report them as
// unavailable.
func (e *env) toolbox(b *backends) *assistant.Toolbox {
	var (
		runner     graph.Runner
		querier    assistant.LakeQuerier
		algorithms assistant.GraphTools
	)
	if b.graph != nil {
		runner = b.graph
		algorithms = graph.NewDispatcher(b.graph, graph.NewRenderer(e.visualizationDir()))
	}
	if b.lake != nil {
		querier = b.lake
	}
	return assistant.NewToolbox(runner, querier, algorithms)
}

func (e *env) agent(b *backends) (*assistant.Agent, error) {
	return assistant.NewAgent(assistant.Config{
		APIKey:    e.conf.LLM.APIKey,
		BaseURL:   e.conf.LLM.BaseURL,
		Model:     e.conf.LLM.Model,
		MaxTokens: e.conf.LLM.MaxTokens,
		Tools:     e.toolbox(b),
		Cache:     e.chatCache(),
		Logger:    e.log,
	})
}
