package main

import (
	"context"
	"io/fs"

	"github.com/go-faster/errors"

	"github.com/nicolasimarinw/hr-ontology/modules/assistant"
	"github.com/nicolasimarinw/hr-ontology/modules/graph"
	"github.com/nicolasimarinw/hr-ontology/modules/lake"
	"github.com/nicolasimarinw/hr-ontology/modules/synth/generators"
	"github.com/nicolasimarinw/hr-ontology/modules/synth/profile"
)

// Exit codes, one per failure class of the generate -> lake -> graph -> chat
// pipeline, so scripts chaining the stages can tell what to retry.
const (
	exitOK          = 0
	exitFailure     = 1
	exitValidation  = 2 // generated data, profile or request is invalid
	exitUsage       = 3
	exitIO          = 4 // raw CSVs, reports or exports could not be read or written
	exitLake        = 5 // DuckDB open, build or query failed
	exitQualityGate = 6
	exitGraph       = 7 // Neo4j unreachable or a load failed
	exitLLM         = 8
	exitInterrupted = 130
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

// withCode pins err to code regardless of what it wraps.
func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

// fail tags err with the class found in its chain, or stage when the chain
// holds nothing more specific.
func fail(stage int, err error) error {
	if err == nil {
		return nil
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return err
	}
	if code, ok := classify(err); ok {
		return &cliError{code: code, err: err}
	}
	return &cliError{code: stage, err: err}
}

func classify(err error) (int, bool) {
	var (
		invalid *generators.ValidationError
		pathErr *fs.PathError
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return exitInterrupted, true
	case errors.As(err, &invalid),
		errors.Is(err, profile.ErrInvalidProfile),
		errors.Is(err, lake.ErrNotReadOnly),
		errors.Is(err, graph.ErrNotReadOnly),
		errors.Is(err, graph.ErrEmployeeNotFound):
		return exitValidation, true
	case errors.Is(err, graph.ErrUnknownAlgorithm), errors.Is(err, graph.ErrMissingArgument):
		return exitUsage, true
	case errors.Is(err, assistant.ErrNoAPIKey):
		return exitLLM, true
	case errors.As(err, &pathErr):
		return exitIO, true
	}
	return 0, false
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	if code, ok := classify(err); ok {
		return code
	}
	return exitFailure
}
