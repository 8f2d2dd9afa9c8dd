package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvidersJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewProvidersCommand(&RootOptions{Format: "json", Config: writeTestConfig(t)})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string         `json:"status"`
		Data   []providerView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 2)

	// Registry order is by ID: mixcoin before plainpay.
	assert.Equal(t, "mixcoin", resp.Data[0].ID)
	assert.True(t, resp.Data[0].Ready)
	assert.True(t, resp.Data[0].Compliance)
	assert.Equal(t, []string{"amount-hidden", "full-encryption"}, resp.Data[0].Levels)
	assert.Equal(t, "plainpay", resp.Data[1].ID)
	assert.Nil(t, resp.Data[0].Balance)
}

func TestProvidersText(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewProvidersCommand(&RootOptions{Format: "text", Config: writeTestConfig(t)})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "MixCoin (mixcoin)")
	assert.Contains(t, output, "PlainPay (plainpay)")
	assert.Contains(t, output, "ready: true")
}

func TestProvidersBalances(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewProvidersCommand(&RootOptions{Format: "json", Config: writeTestConfig(t)})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--balances", "--token", "ETH"})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Data []providerView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	require.NotNil(t, resp.Data[0].Balance)
	assert.Equal(t, 50.0, *resp.Data[0].Balance)
	require.NotNil(t, resp.Data[1].Balance)
	assert.Equal(t, 0.0, *resp.Data[1].Balance)
}

func TestProvidersMissingConfig(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewProvidersCommand(&RootOptions{Format: "text", Config: "does-not-exist.yaml"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
