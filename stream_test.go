package h2dec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStreamStartsIdleWithDefaultPriority(t *testing.T) {
	s := newStream(7)
	assert.Equal(t, uint32(7), s.ID())
	assert.Equal(t, StreamIdle, s.State())
	assert.Equal(t, DefaultPriority, s.Priority())
	assert.True(t, s.isIdle())
	assert.False(t, s.isClosed())
	assert.False(t, s.canReceiveData())
}

func TestStreamCanReceiveDataOnlyWhileOpenOrHalfClosedLocal(t *testing.T) {
	s := newStream(1)

	s.setState(StreamOpen)
	assert.True(t, s.canReceiveData())

	s.setState(StreamHalfClosedLocal)
	assert.True(t, s.canReceiveData())

	s.setState(StreamHalfClosedRemote)
	assert.False(t, s.canReceiveData())

	s.setState(StreamClosed)
	assert.True(t, s.isClosed())
	assert.False(t, s.canReceiveData())
}

func TestStreamStateStringsAreHumanReadable(t *testing.T) {
	cases := map[StreamState]string{
		StreamIdle:             "IDLE",
		StreamReservedLocal:    "RESERVED_LOCAL",
		StreamReservedRemote:   "RESERVED_REMOTE",
		StreamOpen:             "OPEN",
		StreamHalfClosedLocal:  "HALF_CLOSED_LOCAL",
		StreamHalfClosedRemote: "HALF_CLOSED_REMOTE",
		StreamClosed:           "CLOSED",
	}
	for state, want := range cases {
		assert.Equal(t, want, state.String())
	}
	assert.Equal(t, "UNKNOWN_STATE", StreamState(99).String())
}

func TestSetStateIsVisibleThroughExportedAndPrivateAccessors(t *testing.T) {
	s := newStream(1)
	s.SetState(StreamOpen)
	assert.Equal(t, StreamOpen, s.State())
}
