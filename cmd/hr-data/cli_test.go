package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/nicolasimarinw/hr-ontology/modules/assistant"
	"github.com/nicolasimarinw/hr-ontology/modules/graph"
	"github.com/nicolasimarinw/hr-ontology/modules/lake"
	"github.com/nicolasimarinw/hr-ontology/modules/synth/generators"
)

func TestExitCode(t *testing.T) {
	invalid := &generators.ValidationError{Generator: "ats", Problems: []string{"3 interviews dated before company founding"}}
	pathErr := &fs.PathError{Op: "open", Path: "data/raw/hris", Err: fs.ErrPermission}

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"plain", errors.New("plain"), exitFailure},
		{"pinned", withCode(exitQualityGate, errors.New("gate")), exitQualityGate},
		{"pinned and wrapped", fmt.Errorf("wrapped: %w", withCode(exitUsage, errors.New("usage"))), exitUsage},
		{"generator validation", fail(exitFailure, fmt.Errorf("generator ats: %w", invalid)), exitValidation},
		{"raw dir not writable", fail(exitFailure, fmt.Errorf("generator hris: %w", pathErr)), exitIO},
		{"interrupted", fail(exitFailure, fmt.Errorf("generator hris: %w", context.Canceled)), exitInterrupted},
		{"unknown employee", fail(exitGraph, fmt.Errorf("profile: %w", graph.ErrEmployeeNotFound)), exitValidation},
		{"unknown algorithm", fail(exitGraph, graph.ErrUnknownAlgorithm), exitUsage},
		{"write sql", fail(exitLake, lake.ErrNotReadOnly), exitValidation},
		{"no api key", fail(exitUsage, assistant.ErrNoAPIKey), exitLLM},
		{"stage fallback", fail(exitGraph, errors.New("connection refused")), exitGraph},
		{"pinned beats chain", fail(exitLake, withCode(exitQualityGate, invalid)), exitQualityGate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := exitCode(tc.err); got != tc.want {
				t.Fatalf("exitCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
	if withCode(exitIO, nil) != nil || fail(exitIO, nil) != nil {
		t.Fatal("nil errors must stay nil")
	}
}

func TestReportProgress(t *testing.T) {
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })

	reportProgress(progressEvent{Stage: "graph", Event: "mapping_loaded", Name: "Employee", Kind: "node", Rows: 750})
	reportProgress(progressEvent{Stage: "generate", Event: "step_completed", Name: "hris", DurationMS: 12})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `"rows":750`) || strings.Contains(lines[0], "duration_ms") {
		t.Fatalf("unexpected graph line %s", lines[0])
	}
	if !strings.Contains(lines[1], `"stage":"generate"`) || strings.Contains(lines[1], "skipped") {
		t.Fatalf("unexpected generate line %s", lines[1])
	}
}

func TestRepl_KeepsHistory(t *testing.T) {
	in := strings.NewReader("first\n\nsecond\nreset\nthird\nexit\nignored\n")
	var out bytes.Buffer
	var lengths []int
	err := repl(in, &out, func(history []assistant.Message, q string) (string, error) {
		lengths = append(lengths, len(history))
		if q == "second" {
			return "", errors.New("upstream down")
		}
		return "answer to " + q, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// "second" failed, so it is not added to the history.
	want := []int{0, 2, 0}
	if fmt.Sprint(lengths) != fmt.Sprint(want) {
		t.Fatalf("history lengths = %v, want %v", lengths, want)
	}
	for _, s := range []string{"answer to first", "error: upstream down", "history cleared", "answer to third"} {
		if !strings.Contains(out.String(), s) {
			t.Fatalf("output missing %q:\n%s", s, out.String())
		}
	}
	if strings.Contains(out.String(), "ignored") {
		t.Fatal("input after exit must not be processed")
	}
}

func TestRootCmd_Commands(t *testing.T) {
	root := newRootCmd()
	for _, path := range [][]string{
		{"generate"},
		{"lake", "build"},
		{"lake", "quality"},
		{"lake", "export"},
		{"graph", "load"},
		{"graph", "run"},
		{"graph", "employee"},
		{"graph", "ego"},
		{"chat"},
		{"serve"},
	} {
		cmd, _, err := root.Find(path)
		if err != nil || cmd.Name() != path[len(path)-1] {
			t.Fatalf("command %v not registered: %v", path, err)
		}
	}
}
