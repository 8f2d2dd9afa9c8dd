package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veilio/veil/internal/journal"
)

func TestHistoryEmpty(t *testing.T) {
	journalPath := filepath.Join(t.TempDir(), "veil.db")

	buf := &bytes.Buffer{}
	cmd := NewHistoryCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--journal", journalPath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "No selections recorded.")
}

func TestHistoryListsSelections(t *testing.T) {
	journalPath := filepath.Join(t.TempDir(), "veil.db")

	j, err := journal.Open(journalPath)
	require.NoError(t, err)
	_, err = j.WriteSelection(context.Background(), journal.SelectionRecord{
		Level:      "full-encryption",
		Token:      "ETH",
		Amount:     42,
		ProviderID: "mixcoin",
		Score:      150,
		Fee:        0.05,
		LatencyMS:  5000,
	})
	require.NoError(t, err)
	require.NoError(t, j.Close())

	buf := &bytes.Buffer{}
	cmd := NewHistoryCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--journal", journalPath})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "mixcoin")
	assert.Contains(t, output, "level=full-encryption")
	assert.Contains(t, output, "score 150")
}

func TestHistoryRunNotFound(t *testing.T) {
	journalPath := filepath.Join(t.TempDir(), "veil.db")

	buf := &bytes.Buffer{}
	cmd := NewHistoryCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--journal", journalPath, "--run", "no-such-token"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "RUN_NOT_FOUND")
}
