package h2dec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConnectionSeedsBothEndpointsAtDefaults(t *testing.T) {
	c := NewConnection(true, false)

	assert.Equal(t, uint32(DefaultHeaderTableSize), c.Local.HeaderTableSize())
	assert.Equal(t, uint32(DefaultInitialWindowSize), c.Local.InitialWindowSize())
	assert.Equal(t, uint32(DefaultMaxFrameSize), c.Local.MaxFrameSize())
	assert.True(t, c.Local.AllowPush())
	assert.False(t, c.Remote.AllowPush())

	assert.False(t, c.GoAwaySent())
	assert.False(t, c.GoAwayReceived())
}

func TestEndpointAtConcurrencyLimit(t *testing.T) {
	e := newEndpoint(false)
	assert.False(t, e.atConcurrencyLimit(), "zero means unbounded")

	e.maxConcurrentStreams = 2
	assert.False(t, e.atConcurrencyLimit())

	e.openStreamCount = 2
	assert.True(t, e.atConcurrencyLimit())
}

func TestMarkGoAwayLatches(t *testing.T) {
	c := NewConnection(true, true)

	c.markGoAwaySent(11)
	assert.True(t, c.GoAwaySent())
	assert.Equal(t, uint32(11), c.lastStreamIDSent)

	c.markGoAwayReceived(13)
	assert.True(t, c.GoAwayReceived())
	assert.Equal(t, uint32(13), c.lastStreamIDRecvd)
}

func TestHPACKTableIsReusedAcrossCalls(t *testing.T) {
	e := newEndpoint(false)

	tbl := e.HPACKTable()
	assert.Same(t, tbl, e.HPACKTable(), "subsequent calls reuse the same table")
}
