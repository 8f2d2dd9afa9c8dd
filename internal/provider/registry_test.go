package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSim(id string, levels ...PrivacyLevel) *Sim {
	if len(levels) == 0 {
		levels = []PrivacyLevel{LevelAmountHidden}
	}
	return NewSim(SimConfig{
		Descriptor: Descriptor{
			ID:     id,
			Name:   id,
			Levels: levels,
			Tokens: []string{TokenWildcard},
		},
	})
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	p := newTestSim("mixcoin")

	r.Register(p)

	got, err := r.Get("mixcoin")
	require.NoError(t, err)
	assert.Same(t, Provider(p), got)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("ghost")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var ce *ContractError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "ghost", ce.ProviderID)
}

func TestRegistry_RegisterReplacesSameID(t *testing.T) {
	r := NewRegistry()
	first := newTestSim("mixcoin", LevelAmountHidden)
	second := newTestSim("mixcoin", LevelFullEncryption)

	r.Register(first)
	r.Register(second)

	got, err := r.Get("mixcoin")
	require.NoError(t, err)
	assert.Same(t, Provider(second), got)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_ListOrderedByID(t *testing.T) {
	r := NewRegistry()
	r.Register(newTestSim("zephyr"))
	r.Register(newTestSim("aztec"))
	r.Register(newTestSim("mixcoin"))

	ids := make([]string, 0, 3)
	for _, p := range r.List() {
		ids = append(ids, p.Descriptor().ID)
	}

	assert.Equal(t, []string{"aztec", "mixcoin", "zephyr"}, ids)
}
