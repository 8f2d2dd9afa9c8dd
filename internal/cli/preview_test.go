package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewPreviewCommand(&RootOptions{Format: "json", Config: writeTestConfig(t)})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{writeTestPlan(t)})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string         `json:"status"`
		Data   projectionView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "shield-and-exit", resp.Data.Plan)
	require.Len(t, resp.Data.Steps, 3)

	// deposit: 0.01 + 10*0.1% = 0.02; withdraw: 0.01 + 9.5*0.1% = 0.0195
	assert.InDelta(t, 0.02, resp.Data.Steps[0].Fee, 1e-9)
	assert.InDelta(t, 0.0, resp.Data.Steps[1].Fee, 1e-9)
	assert.InDelta(t, 0.0195, resp.Data.Steps[2].Fee, 1e-9)
	assert.InDelta(t, 0.0395, resp.Data.TotalFee, 1e-9)

	// 5000ms per provider step plus the 5ms wait.
	assert.Equal(t, int64(10005), resp.Data.TotalLatencyMS)
}

func TestPreviewText(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewPreviewCommand(&RootOptions{Format: "text", Config: writeTestConfig(t)})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{writeTestPlan(t)})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "Plan: shield-and-exit")
	assert.Contains(t, output, "via mixcoin")
	assert.Contains(t, output, "Total: fee 0.0395")
}

func TestPreviewBadPlan(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewPreviewCommand(&RootOptions{Format: "text", Config: writeTestConfig(t)})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"no-such-plan.cue"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
