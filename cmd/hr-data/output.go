package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nicolasimarinw/hr-ontology/modules/synth/services"
)

// Command results go to stdout as one JSON document per line so the stages
// can be piped into jq. Tests swap the writer.
var stdout io.Writer = os.Stdout

// progressEvent is one --progress line of a long running stage.
type progressEvent struct {
	Stage      string                  `json:"stage"`
	Event      string                  `json:"event"`
	Name       string                  `json:"name"`
	Kind       string                  `json:"kind,omitempty"`
	Rows       int                     `json:"rows,omitempty"`
	Skipped    bool                    `json:"skipped,omitempty"`
	Tables     []services.TableSummary `json:"tables,omitempty"`
	DurationMS int64                   `json:"duration_ms,omitempty"`
}

func writeJSONLine(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fail(exitIO, fmt.Errorf("write result: %w", err))
	}
	return nil
}

// reportProgress never fails the stage it reports on.
func reportProgress(ev progressEvent) {
	_ = writeJSONLine(ev)
}

func outputDir(path string) error {
	if strings.TrimSpace(path) == "" {
		return withCode(exitUsage, fmt.Errorf("output directory is required"))
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fail(exitIO, err)
	}
	return nil
}

// writeReport stores an indented JSON report, creating its directory.
func writeReport(path string, v any) error {
	if err := outputDir(filepath.Dir(path)); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fail(exitFailure, fmt.Errorf("encode report: %w", err))
	}
	return fail(exitIO, os.WriteFile(path, b, 0o644))
}
