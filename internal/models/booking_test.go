package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseState(t *testing.T) {
	tests := []struct {
		raw  string
		want State
	}{
		{"", StateAll},
		{"   ", StateAll},
		{"ALL", StateAll},
		{"all", StateAll},
		{"  current ", StateCurrent},
		{"Past", StatePast},
		{"FUTURE", StateFuture},
		{"waiting", StateWaiting},
		{"REJECTED", StateRejected},
	}
	for _, tt := range tests {
		got, err := ParseState(tt.raw)
		require.NoError(t, err, "raw %q", tt.raw)
		assert.Equal(t, tt.want, got, "raw %q", tt.raw)
	}
}

func TestParseStateUnknown(t *testing.T) {
	_, err := ParseState("BOGUS")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown state: BOGUS")

	_, err = ParseState("APPROVED")
	require.Error(t, err)
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusWaiting.Terminal())
	assert.True(t, StatusApproved.Terminal())
	assert.True(t, StatusRejected.Terminal())
}
