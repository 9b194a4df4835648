package h2dec

import "bufio"

// OutboundFlowController is the write-side counterpart of
// InboundFlowController: it tracks how much the remote peer has told
// THIS side it may send, so a WINDOW_UPDATE read by the decoder can
// replenish it.
type OutboundFlowController interface {
	// AddWindowSize applies a WINDOW_UPDATE increment to streamID (0 for
	// the connection window), returning an error with code
	// FlowControlError if the result would overflow the 31-bit window.
	AddWindowSize(streamID uint32, increment uint32) error
}

// Encoder is the write-side collaborator the decoder core calls back
// into when a frame it just decoded demands an immediate response:
// acknowledging SETTINGS, echoing PING, or reading back the settings
// this side itself previously sent so a SETTINGS ack can be matched to
// its payload.
//
// Grounded on serverConn's sc.bw/sc.enc fields and its
// WritePing/handleSettings methods, split into an interface so the
// decoder core never touches a net.Conn or bufio.Writer directly.
type Encoder interface {
	// WriteSettingsAck replies to a non-ack SETTINGS frame.
	WriteSettingsAck() error

	// WritePing replies to a PING frame that did not have the ACK flag
	// set, echoing back the same 8 bytes of opaque data.
	WritePing(data [8]byte) error

	// RemoteSettings is called once per applied SETTINGS parameter so
	// the encoder can mirror the peer's advertised limits (e.g.
	// HPACK table size) into its own outbound framing.
	RemoteSettings(id uint16, value uint32) error

	// PollSentSettings pops the oldest locally-sent, still-unacknowledged
	// SETTINGS payload this decoder is now acking, FIFO order per RFC
	// 7540 §6.5.3. ok is false if no SETTINGS frame is outstanding, in
	// which case the decoder core applies nothing and only notifies the
	// listener of the ack.
	PollSentSettings() (settings map[uint16]uint32, ok bool)

	// FlowController exposes the write-side window ledger so the
	// decoder core can apply WINDOW_UPDATE frames to it.
	FlowController() OutboundFlowController

	// FrameWriter exposes the underlying writer for collaborators (like
	// h2frame) that serialize an outbound frame directly.
	FrameWriter() *bufio.Writer
}

// PendingSettingsQueue is a FIFO of locally-sent SETTINGS payloads
// awaiting acknowledgement, shared by every Encoder implementation
// that needs PollSentSettings semantics (RFC 7540 §6.5.3: each ack
// matches the oldest outstanding SETTINGS, not any specific one by
// content).
type PendingSettingsQueue struct {
	pending []map[uint16]uint32
}

// Push records that a SETTINGS frame carrying settings was just sent
// and has not yet been acked.
func (q *PendingSettingsQueue) Push(settings map[uint16]uint32) {
	q.pending = append(q.pending, settings)
}

// Pop removes and returns the oldest outstanding SETTINGS payload.
func (q *PendingSettingsQueue) Pop() (map[uint16]uint32, bool) {
	if len(q.pending) == 0 {
		return nil, false
	}
	s := q.pending[0]
	q.pending = q.pending[1:]
	return s, true
}

// Len reports how many SETTINGS frames are still outstanding.
func (q *PendingSettingsQueue) Len() int { return len(q.pending) }
