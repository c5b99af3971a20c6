package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/nicolasimarinw/hr-ontology/modules/graph"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Load the lake into Neo4j and run graph analytics",
	}
	cmd.AddCommand(newGraphConstraintsCmd())
	cmd.AddCommand(newGraphLoadCmd())
	cmd.AddCommand(newGraphRunCmd())
	cmd.AddCommand(newGraphQueryCmd())
	cmd.AddCommand(newGraphEmployeeCmd())
	cmd.AddCommand(newGraphEgoCmd())
	return cmd
}

func newGraphConstraintsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "constraints",
		Short: "Create the ontology constraints and indexes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := newEnv()
			ctx := cmd.Context()
			conn, err := e.openGraph(ctx)
			if err != nil {
				return err
			}
			defer conn.Close(ctx)

			n, err := graph.NewLoader(conn, nil, e.bus, e.log).ApplyConstraints(ctx)
			if err != nil {
				return fail(exitGraph, err)
			}
			return writeJSONLine(map[string]any{"constraints": n})
		},
	}
}

func newGraphLoadCmd() *cobra.Command {
	var (
		wipe      bool
		batchSize int
		progress  bool
	)
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Merge every lake table into the knowledge graph",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := newEnv()
			ctx := cmd.Context()
			defer e.tracing(ctx)()

			store, err := e.openLake(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			conn, err := e.openGraph(ctx)
			if err != nil {
				return err
			}
			defer conn.Close(ctx)

			if progress {
				unsubscribe, err := e.bus.Subscribe(func(ev graph.MappingLoaded) {
					reportProgress(progressEvent{Stage: "graph", Event: "mapping_loaded", Name: ev.Name, Kind: ev.Kind, Rows: ev.Rows, Skipped: ev.Skipped})
				})
				if err != nil {
					return err
				}
				defer unsubscribe()
			}

			res, err := graph.NewLoader(conn, store, e.bus, e.log).Load(ctx, graph.LoadOptions{
				Wipe:      wipe,
				BatchSize: batchSize,
			})
			if err != nil {
				return fail(exitGraph, err)
			}
			return writeJSONLine(res)
		},
	}
	cmd.Flags().BoolVar(&wipe, "wipe", false, "delete every node before loading")
	cmd.Flags().IntVar(&batchSize, "batch-size", graph.DefaultBatchSize, "rows per UNWIND batch")
	cmd.Flags().BoolVar(&progress, "progress", false, "print one JSON line per loaded label or relationship type")
	return cmd
}

func newGraphRunCmd() *cobra.Command {
	var req graph.AlgorithmRequest
	cmd := &cobra.Command{
		Use:   "run <algorithm>",
		Short: "Run an analytic or render a canned visualization",
		Long:  "Algorithms: " + strings.Join(graph.Algorithms(), ", "),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEnv()
			ctx := cmd.Context()
			defer e.tracing(ctx)()
			conn, err := e.openGraph(ctx)
			if err != nil {
				return err
			}
			defer conn.Close(ctx)

			req.Algorithm = args[0]
			out, err := graph.NewDispatcher(conn, graph.NewRenderer(e.visualizationDir())).Run(ctx, req)
			if err != nil {
				return fail(exitGraph, err)
			}
			return writeJSONLine(out)
		},
	}
	cmd.Flags().StringVar(&req.EmployeeID, "employee", "", "employee id for cascade")
	cmd.Flags().StringVar(&req.Emp1ID, "from", "", "first employee id for org_distance")
	cmd.Flags().StringVar(&req.Emp2ID, "to", "", "second employee id for org_distance")
	cmd.Flags().IntVar(&req.TopN, "top", graph.DefaultTopN, "number of results for ranked algorithms")
	return cmd
}

func newGraphQueryCmd() *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "query <cypher>",
		Short: "Run read-only Cypher; with --render, draw the result as HTML",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEnv()
			ctx := cmd.Context()
			cypher := strings.Join(args, " ")
			if err := graph.CheckReadOnly(cypher); err != nil {
				return fail(exitValidation, err)
			}
			conn, err := e.openGraph(ctx)
			if err != nil {
				return err
			}
			defer conn.Close(ctx)

			if title != "" {
				res, err := graph.NewDispatcher(conn, graph.NewRenderer(e.visualizationDir())).Visualize(ctx, cypher, title)
				if err != nil {
					return fail(exitGraph, err)
				}
				return writeJSONLine(res)
			}
			rows, err := conn.Read(ctx, cypher, nil)
			if err != nil {
				return fail(exitGraph, err)
			}
			return writeJSONLine(map[string]any{"rows": graph.PlainRows(rows), "count": len(rows)})
		},
	}
	cmd.Flags().StringVar(&title, "render", "", "render the result as a visualization with this title")
	return cmd
}

func newGraphEmployeeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "employee <employee-id>",
		Short: "Print an employee's profile from the graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEnv()
			ctx := cmd.Context()
			conn, err := e.openGraph(ctx)
			if err != nil {
				return err
			}
			defer conn.Close(ctx)

			profile, err := graph.NewAnalytics(conn).EmployeeProfile(ctx, args[0])
			if err != nil {
				return fail(exitGraph, err)
			}
			return writeJSONLine(profile)
		},
	}
}

func newGraphEgoCmd() *cobra.Command {
	var hops int
	cmd := &cobra.Command{
		Use:   "ego <employee-id>",
		Short: "Render an employee's neighbourhood as a visualization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEnv()
			ctx := cmd.Context()
			conn, err := e.openGraph(ctx)
			if err != nil {
				return err
			}
			defer conn.Close(ctx)

			g, err := graph.NewAnalytics(conn).EgoGraph(ctx, args[0], hops)
			if err != nil {
				return fail(exitGraph, err)
			}
			path, err := graph.NewRenderer(e.visualizationDir()).Save(ctx, g, graph.SafeName("ego_graph_"+args[0]))
			if err != nil {
				return fail(exitIO, err)
			}
			return writeJSONLine(map[string]any{
				"employee_id":   args[0],
				"hops":          graph.ClampHops(hops),
				"nodes":         len(g.Nodes),
				"edges":         len(g.Edges),
				"visualization": path,
			})
		},
	}
	cmd.Flags().IntVar(&hops, "hops", graph.DefaultEgoHops, "relationship hops around the employee (1 or 2)")
	return cmd
}
