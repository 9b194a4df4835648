package h2test

import (
	"sync"

	"github.com/arlobridge/h2dec"
)

// LifecycleManager is a recording double of h2dec.LifecycleManager,
// grounded on the state transitions performed inline in
// serverConn.handleEndRequest and serverConn.writeReset.
type LifecycleManager struct {
	mu sync.Mutex

	ClosedRemoteSides []uint32
	ClosedStreams     []uint32
}

func NewLifecycleManager() *LifecycleManager {
	return &LifecycleManager{}
}

func (l *LifecycleManager) CloseRemoteSide(strm *h2dec.Stream) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch strm.State() {
	case h2dec.StreamOpen:
		strm.SetState(h2dec.StreamHalfClosedRemote)
	case h2dec.StreamHalfClosedLocal:
		strm.SetState(h2dec.StreamClosed)
	}

	l.ClosedRemoteSides = append(l.ClosedRemoteSides, strm.ID())
}

func (l *LifecycleManager) CloseStream(strm *h2dec.Stream, code h2dec.ErrorCode) {
	l.mu.Lock()
	defer l.mu.Unlock()

	strm.SetState(h2dec.StreamClosed)
	l.ClosedStreams = append(l.ClosedStreams, strm.ID())
}
