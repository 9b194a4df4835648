package h2dec

// LifecycleManager is the collaborator responsible for the side
// effects of a stream state transition: releasing whatever
// application-level resources were attached to the stream (the
// request context in serverConn.handleEndRequest), and telling the
// transport layer a stream is gone.
//
// Grounded on serverConn.handleEndRequest/writeReset/createStream,
// which interleaves this bookkeeping directly into its read loop; here
// it is pulled out so the decoder core can drive it without owning a
// net.Conn.
type LifecycleManager interface {
	// CloseRemoteSide transitions strm out of its remote-open half
	// (OPEN -> HALF_CLOSED_REMOTE, or HALF_CLOSED_LOCAL -> CLOSED) after
	// an END_STREAM flag has been observed.
	CloseRemoteSide(strm *Stream)

	// CloseStream tears strm down entirely, following an applicable
	// RST_STREAM, a protocol error local to that stream, or both sides
	// reaching half-closed.
	CloseStream(strm *Stream, code ErrorCode)
}

// noopLifecycleManager performs the state transition bookkeeping
// methods need (so StreamState stays consistent) without any external
// side effects, useful for tests and for decoders that don't need to
// hook resource cleanup.
type noopLifecycleManager struct{}

var _ LifecycleManager = noopLifecycleManager{}

func (noopLifecycleManager) CloseRemoteSide(strm *Stream) {
	switch strm.State() {
	case StreamOpen:
		strm.setState(StreamHalfClosedRemote)
	case StreamHalfClosedLocal:
		strm.setState(StreamClosed)
	}
}

func (noopLifecycleManager) CloseStream(strm *Stream, code ErrorCode) {
	strm.setState(StreamClosed)
	if code != NoError {
		strm.resetReceived = true
	}
}
