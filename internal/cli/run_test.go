package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veilio/veil/internal/journal"
)

func TestRunExecutesPlan(t *testing.T) {
	journalPath := filepath.Join(t.TempDir(), "veil.db")

	buf := &bytes.Buffer{}
	cmd := NewRunCommand(&RootOptions{Format: "json", Config: writeTestConfig(t)})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{writeTestPlan(t), "--journal", journalPath})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string  `json:"status"`
		Data   runView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Success)
	assert.NotEmpty(t, resp.Data.RunToken)
	require.Len(t, resp.Data.Steps, 3)

	// The withdraw inherits the deposit's commitment through the shared
	// execution context.
	assert.NotEmpty(t, resp.Data.Steps[0].Commitment)
	assert.InDelta(t, 0.0395, resp.Data.TotalFee, 1e-9)

	// The run and its steps land in the journal under the run token.
	j, err := journal.Open(journalPath)
	require.NoError(t, err)
	defer j.Close()

	run, steps, err := j.ReadRun(context.Background(), resp.Data.RunToken)
	require.NoError(t, err)
	assert.True(t, run.Success)
	assert.Equal(t, 3, run.Steps)
	require.Len(t, steps, 3)
	assert.Equal(t, "deposit", steps[0].Kind)
	assert.Equal(t, steps[0].Commitment, resp.Data.Steps[0].Commitment)
}

func TestRunText(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRunCommand(&RootOptions{Format: "text", Config: writeTestConfig(t)})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{writeTestPlan(t)})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "Plan: shield-and-exit")
	assert.Contains(t, output, "Run completed")
}

func TestRunFailureExitCode(t *testing.T) {
	// A lone withdraw has no prior deposit, so no commitment is available
	// and the step fails.
	const src = `
plan: {
	name: "premature-exit"
	steps: [
		{kind: "withdraw", provider: "mixcoin", token: "ETH", amount: 1.0, recipient: "0xdead"},
	]
}
`
	planPath := filepath.Join(t.TempDir(), "plan.cue")
	require.NoError(t, os.WriteFile(planPath, []byte(src), 0o644))

	buf := &bytes.Buffer{}
	cmd := NewRunCommand(&RootOptions{Format: "text", Config: writeTestConfig(t)})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{planPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "Run failed")
}
