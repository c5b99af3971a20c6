package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nicolasimarinw/hr-ontology/modules/lake"
)

func newLakeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lake",
		Short: "Build and query the Parquet data lake",
	}
	cmd.AddCommand(newLakeBuildCmd())
	cmd.AddCommand(newLakeCatalogCmd())
	cmd.AddCommand(newLakeQualityCmd())
	cmd.AddCommand(newLakeQueryCmd())
	cmd.AddCommand(newLakeExportCmd())
	return cmd
}

func newLakeBuildCmd() *cobra.Command {
	var rawDir string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Convert the raw CSVs into Parquet and write the schema catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := newEnv()
			ctx := cmd.Context()
			defer e.tracing(ctx)()
			if rawDir == "" {
				rawDir = e.conf.Data.RawDir
			}

			store, err := lake.Open(e.conf.Data.LakeDir, e.log)
			if err != nil {
				return fail(exitLake, fmt.Errorf("open lake: %w", err))
			}
			defer store.Close()

			results, err := lake.NewBuilder(store, rawDir).Build(ctx)
			if err != nil {
				return fail(exitLake, err)
			}
			catalogPath, _, err := store.WriteCatalog(ctx)
			if err != nil {
				return fail(exitIO, fmt.Errorf("write catalog: %w", err))
			}
			return writeJSONLine(map[string]any{
				"lake_dir": e.conf.Data.LakeDir,
				"tables":   results,
				"catalog":  catalogPath,
			})
		},
	}
	cmd.Flags().StringVar(&rawDir, "raw", "", "raw CSV directory (defaults to RAW_DATA_DIR)")
	return cmd
}

func newLakeCatalogCmd() *cobra.Command {
	var markdown bool
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Describe every built table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := newEnv()
			store, err := e.openLake(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Catalog(cmd.Context())
			if err != nil {
				return fail(exitLake, err)
			}
			if markdown {
				_, err := fmt.Fprint(cmd.OutOrStdout(), lake.RenderCatalog(entries))
				return err
			}
			return writeJSONLine(entries)
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "print the catalog as Markdown")
	return cmd
}

func newLakeQualityCmd() *cobra.Command {
	var (
		maxIssues int
		output    string
	)
	cmd := &cobra.Command{
		Use:   "quality",
		Short: "Check keys, references and business rules; exits 6 when a check fails",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := newEnv()
			store, err := e.openLake(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			report, err := store.RunQuality(cmd.Context(), maxIssues)
			if err != nil {
				return fail(exitLake, err)
			}
			if output != "" {
				if err := writeReport(output, report); err != nil {
					return err
				}
			}
			if err := writeJSONLine(report.Summary); err != nil {
				return err
			}
			if !report.Passed() {
				return withCode(exitQualityGate, fmt.Errorf("quality gate failed: %d checks failed", report.Summary.Failed))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxIssues, "max-issues", 100, "maximum issues kept in the report")
	cmd.Flags().StringVar(&output, "output", "", "write the full report as JSON to this path")
	return cmd
}

func newLakeQueryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a read-only SQL query against the lake views",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEnv()
			store, err := e.openLake(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			res, err := store.Query(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return fail(exitLake, err)
			}
			return writeJSONLine(res)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", lake.DefaultRowLimit, "maximum rows returned")
	return cmd
}

func newLakeExportCmd() *cobra.Command {
	var (
		output string
		tables []string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export lake tables into an Excel workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := newEnv()
			store, err := e.openLake(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			if output == "" {
				output = filepath.Join(e.conf.Data.ExportsDir, "hr_lake.xlsx")
			}
			if err := outputDir(filepath.Dir(output)); err != nil {
				return err
			}
			sheets, err := store.ExportXLSX(cmd.Context(), output, tables)
			if err != nil {
				return fail(exitIO, err)
			}
			return writeJSONLine(map[string]any{"path": output, "sheets": sheets})
		},
	}
	cmd.Flags().StringVar(&output, "output", "", "workbook path (defaults to EXPORTS_DIR/hr_lake.xlsx)")
	cmd.Flags().StringSliceVar(&tables, "table", nil, "tables to export (repeatable, default all)")
	return cmd
}
