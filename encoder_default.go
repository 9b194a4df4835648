package h2dec

import (
	"bufio"
	"sync"

	"github.com/arlobridge/h2dec/h2frame"
)

// NewNoopLifecycleManager returns the package's built-in
// LifecycleManager: it performs exactly the state bookkeeping the
// dispatch core relies on and nothing else. Most callers that don't
// need to hook resource cleanup (closing a request context, freeing a
// buffer pool entry) can use this directly instead of writing their
// own.
func NewNoopLifecycleManager() LifecycleManager { return noopLifecycleManager{} }

// simpleOutboundFlowController is the built-in OutboundFlowController:
// a per-stream int64 ledger with RFC 7540 §6.9.1 overflow checking.
type simpleOutboundFlowController struct {
	mu      sync.Mutex
	windows map[uint32]int64
}

func newSimpleOutboundFlowController() *simpleOutboundFlowController {
	return &simpleOutboundFlowController{windows: make(map[uint32]int64)}
}

func (f *simpleOutboundFlowController) AddWindowSize(streamID uint32, increment uint32) error {
	if increment == 0 {
		return NewStreamError(streamID, ProtocolError, "window increment of 0")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.windows[streamID] += int64(increment)
	if f.windows[streamID] > (1<<31 - 1) {
		if streamID == 0 {
			return NewConnError(FlowControlError, "connection window is above limits")
		}
		return NewStreamError(streamID, FlowControlError, "stream window is above limits")
	}

	return nil
}

// WireEncoder is the package's built-in Encoder: it writes real
// SETTINGS-ack and PING-ack frames to an underlying *bufio.Writer
// using h2frame, the same way serverConn writes directly to sc.bw in
// writeReset/writeGoAway/handleSettings.
type WireEncoder struct {
	mu      sync.Mutex
	bw      *bufio.Writer
	pending PendingSettingsQueue
	flow    OutboundFlowController
}

// NewWireEncoder builds an Encoder that writes frames to bw.
func NewWireEncoder(bw *bufio.Writer) *WireEncoder {
	return &WireEncoder{bw: bw, flow: newSimpleOutboundFlowController()}
}

// PushLocalSettings records a locally transmitted SETTINGS payload as
// awaiting acknowledgement. Production callers call this at the same
// point they flush the outbound SETTINGS frame.
func (e *WireEncoder) PushLocalSettings(settings map[uint16]uint32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending.Push(settings)
}

func (e *WireEncoder) WriteSettingsAck() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := h2frame.AcquireFrame(h2frame.FrameSettings).(*h2frame.Settings)
	st.SetAck(true)

	frh := h2frame.AcquireFrameHeader()
	frh.SetBody(st)
	defer h2frame.ReleaseFrameHeader(frh)

	if _, err := frh.WriteTo(e.bw); err != nil {
		return err
	}
	return e.bw.Flush()
}

func (e *WireEncoder) WritePing(data [8]byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := h2frame.AcquireFrame(h2frame.FramePing).(*h2frame.Ping)
	p.SetAck(true)
	p.SetData(data[:])

	frh := h2frame.AcquireFrameHeader()
	frh.SetBody(p)
	defer h2frame.ReleaseFrameHeader(frh)

	if _, err := frh.WriteTo(e.bw); err != nil {
		return err
	}
	return e.bw.Flush()
}

// RemoteSettings is a no-op in the built-in encoder: mirroring the
// peer's advertised limits into outbound framing (HPACK table size,
// max frame size) is the production encoder's job, not this package's.
// This default exists so WireEncoder satisfies the interface for
// simple consumers like cmd/h2dec-inspect.
func (e *WireEncoder) RemoteSettings(id uint16, value uint32) error { return nil }

func (e *WireEncoder) PollSentSettings() (map[uint16]uint32, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending.Pop()
}

func (e *WireEncoder) FlowController() OutboundFlowController { return e.flow }

func (e *WireEncoder) FrameWriter() *bufio.Writer { return e.bw }
