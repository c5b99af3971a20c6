// Package graph loads the lake into Neo4j and runs the organisational
// analytics and visualisations over the resulting property graph.
package graph

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sirupsen/logrus"

	"github.com/nicolasimarinw/hr-ontology/pkg/configuration"
)

// Runner executes Cypher. Read returns one map per record with raw driver
// values (nodes, relationships and paths are kept as-is).
type Runner interface {
	Write(ctx context.Context, cypher string, params map[string]any) error
	Read(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
}

type Conn struct {
	driver   neo4j.DriverWithContext
	database string
	log      logrus.FieldLogger
}

// Open connects to Neo4j and verifies connectivity before returning.
func Open(ctx context.Context, opts configuration.Neo4jOptions, log logrus.FieldLogger) (*Conn, error) {
	driver, err := neo4j.NewDriverWithContext(opts.URI, neo4j.BasicAuth(opts.User, opts.Password, ""))
	if err != nil {
		return nil, errors.Wrap(err, "create neo4j driver")
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, errors.Wrapf(err, "connect to %s", opts.URI)
	}
	log.WithField("uri", opts.URI).Debug("neo4j connection verified")
	return &Conn{driver: driver, database: opts.Database, log: log}, nil
}

func (c *Conn) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

func (c *Conn) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database, AccessMode: mode})
}

func (c *Conn) Write(ctx context.Context, cypher string, params map[string]any) error {
	session := c.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	return err
}

func (c *Conn) Read(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	session := c.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			rows = append(rows, rec.AsMap())
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]map[string]any), nil
}
