package services

import (
	"time"

	"github.com/google/uuid"
)

// StepCompleted is published after a generator's tables were validated and
// written.
type StepCompleted struct {
	RunID     uuid.UUID
	Generator string
	Tables    []TableSummary
	Duration  time.Duration
}

// RunCompleted is published once every generator succeeded.
type RunCompleted struct {
	Summary *RunSummary
}
