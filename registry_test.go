package h2dec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryInsertLookupRemoveKeepsSortedOrder(t *testing.T) {
	r := newStreamRegistry()

	r.insert(newStream(5))
	r.insert(newStream(1))
	r.insert(newStream(3))

	var ids []uint32
	for _, s := range r.list {
		ids = append(ids, s.id)
	}
	assert.Equal(t, []uint32{1, 3, 5}, ids)

	require.NotNil(t, r.lookup(3))
	assert.Nil(t, r.lookup(4))

	removed := r.remove(3)
	require.NotNil(t, removed)
	assert.Equal(t, uint32(3), removed.id)
	assert.Nil(t, r.lookup(3))
}

func TestCreateRemoteStreamRejectsReuseOfAnOlderOrEqualID(t *testing.T) {
	r := newStreamRegistry()

	s, err := r.createRemoteStream(3)
	require.NoError(t, err)
	assert.Equal(t, StreamOpen, s.State())
	assert.Equal(t, uint32(3), r.lastStreamCreated())

	_, err = r.createRemoteStream(3)
	require.Error(t, err)
	var closedErr *ClosedStreamCreationError
	require.ErrorAs(t, err, &closedErr)
	assert.Equal(t, uint32(3), closedErr.StreamID)

	_, err = r.createRemoteStream(1)
	require.Error(t, err)
}

func TestReservePushStreamEntersReservedRemote(t *testing.T) {
	r := newStreamRegistry()

	s, err := r.reservePushStream(2)
	require.NoError(t, err)
	assert.Equal(t, StreamReservedRemote, s.State())
	assert.Equal(t, uint32(2), r.lastStreamCreated())
}

func TestGetOrCreateIdleReusesExistingStream(t *testing.T) {
	r := newStreamRegistry()

	first := r.getOrCreateIdle(9)
	assert.Equal(t, StreamIdle, first.State())

	second := r.getOrCreateIdle(9)
	assert.Same(t, first, second)
}
