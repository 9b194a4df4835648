package h2dec

// StreamState is a node in the stream lifecycle state machine.
//
// https://httpwg.org/specs/rfc7540.html#StreamStates
type StreamState int8

const (
	StreamIdle StreamState = iota
	StreamReservedLocal
	StreamReservedRemote
	StreamOpen
	StreamHalfClosedLocal
	StreamHalfClosedRemote
	StreamClosed
)

func (ss StreamState) String() string {
	switch ss {
	case StreamIdle:
		return "IDLE"
	case StreamReservedLocal:
		return "RESERVED_LOCAL"
	case StreamReservedRemote:
		return "RESERVED_REMOTE"
	case StreamOpen:
		return "OPEN"
	case StreamHalfClosedLocal:
		return "HALF_CLOSED_LOCAL"
	case StreamHalfClosedRemote:
		return "HALF_CLOSED_REMOTE"
	case StreamClosed:
		return "CLOSED"
	}
	return "UNKNOWN_STATE"
}

// Priority is the dependency triple carried by HEADERS (with the
// PRIORITY flag set) and by standalone PRIORITY frames.
type Priority struct {
	StreamDependency uint32
	Weight           uint8 // 1..=256 for the caller; wire value is Weight-1
	Exclusive        bool
}

// DefaultPriority is the priority assumed for a stream that never
// received an explicit one.
var DefaultPriority = Priority{StreamDependency: 0, Weight: 16, Exclusive: false}

// Stream is one HTTP/2 stream's lifecycle and bookkeeping state as seen
// by the decoder. It carries no frame payloads; those are handed
// straight to the FrameListener.
type Stream struct {
	id    uint32
	state StreamState

	priority Priority

	resetSent     bool
	resetReceived bool

	// endOfStreamSeen is not set or read by the decoder core. A second
	// END_STREAM from the remote side is rejected by the state checks
	// instead: DATA or HEADERS on a HALF_CLOSED_REMOTE stream raise a
	// STREAM_CLOSED stream error.
	endOfStreamSeen bool
}

func newStream(id uint32) *Stream {
	return &Stream{id: id, state: StreamIdle, priority: DefaultPriority}
}

func (s *Stream) ID() uint32 { return s.id }

func (s *Stream) State() StreamState { return s.state }

func (s *Stream) setState(state StreamState) { s.state = state }

// SetState lets an external LifecycleManager drive this stream's
// state transition. The decoder core itself uses the unexported
// setState; this exported twin exists for collaborators like
// h2test.LifecycleManager that live outside the package.
func (s *Stream) SetState(state StreamState) { s.state = state }

func (s *Stream) Priority() Priority { return s.priority }

func (s *Stream) setPriority(p Priority) { s.priority = p }

func (s *Stream) ResetSent() bool { return s.resetSent }

func (s *Stream) ResetReceived() bool { return s.resetReceived }

// isClosed reports whether the stream may no longer be the target of
// any accounting operation other than a tolerated trailing frame.
func (s *Stream) isClosed() bool { return s.state == StreamClosed }

// isIdle reports whether the stream has never been opened, reserved or
// closed: the RFC 7540 IDLE state.
func (s *Stream) isIdle() bool { return s.state == StreamIdle }

// canReceiveData reports whether the remote side may still legally
// send DATA/HEADERS frames carrying a message body.
func (s *Stream) canReceiveData() bool {
	switch s.state {
	case StreamOpen, StreamHalfClosedLocal:
		return true
	}
	return false
}
