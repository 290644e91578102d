package db

import (
	"time"

	"github.com/google/uuid"
)

// FlowRun is one recorded execution of a user flow.
type FlowRun struct {
	ID         uuid.UUID `json:"id"`
	VisitorID  string    `json:"visitor_id"`
	Flow       string    `json:"flow"`
	Outcome    string    `json:"outcome"`
	Message    *string   `json:"message,omitempty"`
	Error      *string   `json:"error,omitempty"`
	DurationMs int       `json:"duration_ms"`
	StartedAt  time.Time `json:"started_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// FlowRunInput represents input for recording a flow run
type FlowRunInput struct {
	VisitorID string
	Flow      string
	Outcome   string
	// Message is the notice shown to the visitor, if any.
	Message   string
	Error     string
	Duration  time.Duration
	StartedAt time.Time
}

// OutcomeCount is the number of runs of a flow that ended with an outcome.
type OutcomeCount struct {
	Flow    string `json:"flow"`
	Outcome string `json:"outcome"`
	Count   int    `json:"count"`
}
