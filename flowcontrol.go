package h2dec

import "sync/atomic"

// InboundFlowController accounts for bytes the remote peer has sent
// against this side's advertised flow-control windows (connection-wide
// and per-stream), and decides when enough has been consumed to emit a
// WINDOW_UPDATE.
//
// Mirrors the Conn.currentWindow/maxWindow/updateWindow bookkeeping in
// conn.go, generalized from one hardcoded connection
// window into a per-stream-aware interface so the decoder core can
// swap in a caller-supplied accounting strategy.
type InboundFlowController interface {
	// ReceiveFlowControlledFrame records length bytes of flow-controlled
	// payload (DATA, including any padding) arriving on streamID. It
	// returns a ConnError(FlowControlError) if the connection window is
	// exceeded, or a StreamError(FlowControlError) if the stream window
	// is.
	ReceiveFlowControlledFrame(streamID uint32, length int) error

	// UnconsumedBytes reports how many flow-controlled bytes received on
	// streamID (0 for the connection window) have not yet been reported
	// as processed through ConsumeBytes.
	UnconsumedBytes(streamID uint32) int

	// ConsumeBytes marks length bytes as processed by the application,
	// making them eligible to be returned to the peer's window.
	ConsumeBytes(streamID uint32, length int) error

	// InitialWindowSize is the window every newly created stream starts
	// with; changing it retroactively resizes every open stream's
	// window by the delta (RFC 7540 §6.9.2).
	InitialWindowSize() uint32

	// SetInitialWindowSize applies a new SETTINGS_INITIAL_WINDOW_SIZE,
	// adjusting every currently open stream's available window by the
	// signed delta.
	SetInitialWindowSize(n uint32) error
}

type streamWindow struct {
	available int64 // may go negative right after a SETTINGS shrink
	received  int64
	consumed  int64
}

// defaultFlowController is a straightforward per-stream window ledger:
// every DATA byte decrements the matching stream and connection
// windows, and ConsumeBytes hands the corresponding credit back.
type defaultFlowController struct {
	connWindow    int64
	connReceived  int64
	connConsumed  int64
	initialWindow uint32
	streams       map[uint32]*streamWindow
}

func newDefaultFlowController(initialWindow uint32) *defaultFlowController {
	return &defaultFlowController{
		connWindow:    1 << 20,
		initialWindow: initialWindow,
		streams:       make(map[uint32]*streamWindow),
	}
}

func (f *defaultFlowController) windowFor(streamID uint32) *streamWindow {
	w, ok := f.streams[streamID]
	if !ok {
		w = &streamWindow{available: int64(f.initialWindow)}
		f.streams[streamID] = w
	}
	return w
}

func (f *defaultFlowController) ReceiveFlowControlledFrame(streamID uint32, length int) error {
	atomic.AddInt64(&f.connWindow, -int64(length))
	atomic.AddInt64(&f.connReceived, int64(length))
	if f.connWindow < 0 {
		return NewConnError(FlowControlError, "connection flow-control window exceeded")
	}

	if streamID != 0 {
		w := f.windowFor(streamID)
		w.available -= int64(length)
		w.received += int64(length)
		if w.available < 0 {
			return NewStreamError(streamID, FlowControlError, "stream flow-control window exceeded")
		}
	}

	return nil
}

// UnconsumedBytes reports bytes received but not yet reported as
// processed: received minus consumed, per the interface contract.
func (f *defaultFlowController) UnconsumedBytes(streamID uint32) int {
	if streamID == 0 {
		return int(atomic.LoadInt64(&f.connReceived) - atomic.LoadInt64(&f.connConsumed))
	}
	w, ok := f.streams[streamID]
	if !ok {
		return 0
	}
	return int(w.received - w.consumed)
}

func (f *defaultFlowController) ConsumeBytes(streamID uint32, length int) error {
	if length < 0 {
		return NewConnError(ProtocolError, "negative ConsumeBytes length")
	}

	atomic.AddInt64(&f.connConsumed, int64(length))
	atomic.AddInt64(&f.connWindow, int64(length))

	if streamID != 0 {
		w := f.windowFor(streamID)
		w.consumed += int64(length)
		w.available += int64(length)
	}

	return nil
}

func (f *defaultFlowController) InitialWindowSize() uint32 { return f.initialWindow }

func (f *defaultFlowController) SetInitialWindowSize(n uint32) error {
	delta := int64(n) - int64(f.initialWindow)
	f.initialWindow = n

	for id, w := range f.streams {
		w.available += delta
		if w.available > (1<<31 - 1) {
			return NewStreamError(id, FlowControlError, "window update overflows the 31-bit limit")
		}
	}

	return nil
}
