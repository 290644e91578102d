package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// Flow Run Methods
// -----------------------------------------------------------------------------

// RecordFlowRun stores a finished flow run
func (db *DB) RecordFlowRun(ctx context.Context, input *FlowRunInput) (*FlowRun, error) {
	if input == nil {
		return nil, fmt.Errorf("flow run input is required")
	}

	var run FlowRun
	err := db.pool.QueryRow(ctx,
		`INSERT INTO flow_runs (id, visitor_id, flow, outcome, message, error, duration_ms, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, visitor_id, flow, outcome, message, error, duration_ms, started_at, created_at`,
		uuid.New(), input.VisitorID, input.Flow, input.Outcome,
		nullableString(input.Message), nullableString(input.Error),
		int(input.Duration.Milliseconds()), input.StartedAt,
	).Scan(&run.ID, &run.VisitorID, &run.Flow, &run.Outcome, &run.Message,
		&run.Error, &run.DurationMs, &run.StartedAt, &run.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record flow run: %w", err)
	}
	return &run, nil
}

// GetFlowRun retrieves a flow run by ID, or nil when it does not exist
func (db *DB) GetFlowRun(ctx context.Context, id uuid.UUID) (*FlowRun, error) {
	var run FlowRun
	err := db.pool.QueryRow(ctx,
		`SELECT id, visitor_id, flow, outcome, message, error, duration_ms, started_at, created_at
		 FROM flow_runs WHERE id = $1`,
		id,
	).Scan(&run.ID, &run.VisitorID, &run.Flow, &run.Outcome, &run.Message,
		&run.Error, &run.DurationMs, &run.StartedAt, &run.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get flow run: %w", err)
	}
	return &run, nil
}

// ListFlowRuns returns a visitor's most recent runs, newest first
func (db *DB) ListFlowRuns(ctx context.Context, visitorID string, limit int) ([]FlowRun, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, visitor_id, flow, outcome, message, error, duration_ms, started_at, created_at
		 FROM flow_runs
		 WHERE visitor_id = $1
		 ORDER BY started_at DESC
		 LIMIT $2`,
		visitorID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list flow runs: %w", err)
	}
	defer rows.Close()

	var runs []FlowRun
	for rows.Next() {
		var run FlowRun
		if err := rows.Scan(&run.ID, &run.VisitorID, &run.Flow, &run.Outcome, &run.Message,
			&run.Error, &run.DurationMs, &run.StartedAt, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan flow run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// CountFlowOutcomes groups all recorded runs by flow and outcome
func (db *DB) CountFlowOutcomes(ctx context.Context) ([]OutcomeCount, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT flow, outcome, COUNT(*) FROM flow_runs GROUP BY flow, outcome ORDER BY flow, outcome`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count flow outcomes: %w", err)
	}
	defer rows.Close()

	var counts []OutcomeCount
	for rows.Next() {
		var c OutcomeCount
		if err := rows.Scan(&c.Flow, &c.Outcome, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan outcome count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
