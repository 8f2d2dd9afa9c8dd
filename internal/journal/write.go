package journal

import (
	"context"
	"fmt"
	"time"
)

// SelectionRecord is one routing decision.
type SelectionRecord struct {
	Seq        int64
	Level      string
	Token      string
	Amount     float64
	ProviderID string
	Score      float64
	Fee        float64
	LatencyMS  int64
	CreatedAt  int64
}

// RunRecord is one pipeline execution.
type RunRecord struct {
	RunToken  string
	Seq       int64
	Steps     int
	TotalFee  float64
	Success   bool
	CreatedAt int64
}

// StepRecord is one attempted step within a run.
type StepRecord struct {
	RunToken   string
	Index      int
	Kind       string
	Name       string
	ProviderID string
	Fee        float64
	Commitment string
	Signature  string
	Error      string
}

// WriteSelection persists a routing decision, stamping seq and created
// time. Returns the stamped record.
func (j *Journal) WriteSelection(ctx context.Context, rec SelectionRecord) (SelectionRecord, error) {
	rec.Seq = j.next()
	rec.CreatedAt = time.Now().Unix()

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO selections
		(seq, level, token, amount, provider_id, score, fee, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.Seq,
		rec.Level,
		rec.Token,
		rec.Amount,
		rec.ProviderID,
		rec.Score,
		rec.Fee,
		rec.LatencyMS,
		rec.CreatedAt,
	)
	if err != nil {
		return SelectionRecord{}, fmt.Errorf("write selection: %w", err)
	}
	return rec, nil
}

// WriteRun persists a run and its attempted steps in one transaction,
// so a crash never leaves steps without their run row.
// ON CONFLICT DO NOTHING makes re-recording a run token idempotent.
func (j *Journal) WriteRun(ctx context.Context, run RunRecord, steps []StepRecord) error {
	run.Seq = j.next()
	run.CreatedAt = time.Now().Unix()

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	success := 0
	if run.Success {
		success = 1
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_token, seq, steps, total_fee, success, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_token) DO NOTHING
	`,
		run.RunToken,
		run.Seq,
		run.Steps,
		run.TotalFee,
		success,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	for _, step := range steps {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_steps
			(run_token, step_index, kind, name, provider_id, fee, commitment, signature, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(run_token, step_index) DO NOTHING
		`,
			run.RunToken,
			step.Index,
			step.Kind,
			step.Name,
			step.ProviderID,
			step.Fee,
			step.Commitment,
			step.Signature,
			step.Error,
		)
		if err != nil {
			return fmt.Errorf("write run step %d: %w", step.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}
