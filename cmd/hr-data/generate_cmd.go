package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nicolasimarinw/hr-ontology/modules/synth/profile"
	"github.com/nicolasimarinw/hr-ontology/modules/synth/services"
)

func newGenerateCmd() *cobra.Command {
	var (
		seed        int64
		rawDir      string
		profilePath string
		progress    bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the synthetic HRIS, ATS, performance and compensation CSVs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := newEnv()
			ctx := cmd.Context()
			defer e.tracing(ctx)()

			if !cmd.Flags().Changed("seed") {
				seed = e.conf.Data.Seed
			}
			if rawDir == "" {
				rawDir = e.conf.Data.RawDir
			}
			if profilePath == "" {
				profilePath = e.conf.Data.ProfilePath
			}
			if err := outputDir(rawDir); err != nil {
				return err
			}

			var p *profile.Profile
			if profilePath != "" {
				loaded, err := profile.Load(profilePath)
				if err != nil {
					return fail(exitValidation, fmt.Errorf("load profile %s: %w", profilePath, err))
				}
				p = loaded
			}

			if progress {
				unsubscribe, err := e.bus.Subscribe(func(ev *services.StepCompleted) {
					reportProgress(progressEvent{
						Stage: "generate", Event: "step_completed", Name: ev.Generator,
						Tables: ev.Tables, DurationMS: ev.Duration.Milliseconds(),
					})
				})
				if err != nil {
					return err
				}
				defer unsubscribe()
			}

			summary, err := services.NewOrchestrator(e.log, e.bus).Run(ctx, services.Options{
				Seed:    seed,
				RawDir:  rawDir,
				Profile: p,
			})
			if err != nil {
				return fail(exitFailure, err)
			}
			return writeJSONLine(summary)
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", services.DefaultSeed, "random seed (defaults to SEED)")
	cmd.Flags().StringVar(&rawDir, "output", "", "raw CSV directory (defaults to RAW_DATA_DIR)")
	cmd.Flags().StringVar(&profilePath, "profile", "", "YAML company profile (defaults to COMPANY_PROFILE)")
	cmd.Flags().BoolVar(&progress, "progress", false, "print one JSON line per completed generator")
	return cmd
}
