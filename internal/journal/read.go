package journal

import (
	"context"
	"database/sql"
	"fmt"
)

// ReadRun returns a run and its steps by run token.
// Steps come back ordered by index; a missing token yields sql.ErrNoRows.
func (j *Journal) ReadRun(ctx context.Context, runToken string) (RunRecord, []StepRecord, error) {
	var run RunRecord
	var success int
	err := j.db.QueryRowContext(ctx, `
		SELECT run_token, seq, steps, total_fee, success, created_at
		FROM runs WHERE run_token = ?
	`, runToken).Scan(
		&run.RunToken,
		&run.Seq,
		&run.Steps,
		&run.TotalFee,
		&success,
		&run.CreatedAt,
	)
	if err != nil {
		return RunRecord{}, nil, fmt.Errorf("read run %s: %w", runToken, err)
	}
	run.Success = success != 0

	rows, err := j.db.QueryContext(ctx, `
		SELECT run_token, step_index, kind, name, provider_id, fee, commitment, signature, error
		FROM run_steps
		WHERE run_token = ?
		ORDER BY step_index ASC
	`, runToken)
	if err != nil {
		return RunRecord{}, nil, fmt.Errorf("read run steps: %w", err)
	}
	defer rows.Close()

	var steps []StepRecord
	for rows.Next() {
		var s StepRecord
		if err := rows.Scan(
			&s.RunToken,
			&s.Index,
			&s.Kind,
			&s.Name,
			&s.ProviderID,
			&s.Fee,
			&s.Commitment,
			&s.Signature,
			&s.Error,
		); err != nil {
			return RunRecord{}, nil, fmt.Errorf("scan run step: %w", err)
		}
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return RunRecord{}, nil, fmt.Errorf("iterate run steps: %w", err)
	}

	return run, steps, nil
}

// ReadSelections returns the most recent selections, newest first,
// capped at limit (0 means no cap).
func (j *Journal) ReadSelections(ctx context.Context, limit int) ([]SelectionRecord, error) {
	query := `
		SELECT seq, level, token, amount, provider_id, score, fee, latency_ms, created_at
		FROM selections
		ORDER BY seq DESC
	`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = j.db.QueryContext(ctx, query+" LIMIT ?", limit)
	} else {
		rows, err = j.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("read selections: %w", err)
	}
	defer rows.Close()

	var out []SelectionRecord
	for rows.Next() {
		var r SelectionRecord
		if err := rows.Scan(
			&r.Seq,
			&r.Level,
			&r.Token,
			&r.Amount,
			&r.ProviderID,
			&r.Score,
			&r.Fee,
			&r.LatencyMS,
			&r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan selection: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate selections: %w", err)
	}
	return out, nil
}
