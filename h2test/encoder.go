// Package h2test provides minimal concrete doubles for the decoder
// core's write-side collaborators (Encoder, LifecycleManager), enough
// to drive the scenarios in the decoder's test suite without pulling
// in a real transport.
//
// Grounded on serverConn.writeReset/writeGoAway/handleSettings
// (serverConn.go): those methods show what a real encoder does on
// SETTINGS-ack/PING/RST_STREAM. This package performs the same
// bookkeeping against an in-memory buffer instead of a net.Conn.
package h2test

import (
	"bufio"
	"bytes"
	"sync"

	"github.com/arlobridge/h2dec"
)

// RecordingOutboundFlowController is an h2dec.OutboundFlowController
// double that just accumulates WINDOW_UPDATE increments per stream.
type RecordingOutboundFlowController struct {
	mu       sync.Mutex
	Windows  map[uint32]int64
}

func NewRecordingOutboundFlowController() *RecordingOutboundFlowController {
	return &RecordingOutboundFlowController{Windows: make(map[uint32]int64)}
}

func (f *RecordingOutboundFlowController) AddWindowSize(streamID uint32, increment uint32) error {
	if increment == 0 {
		return h2dec.NewStreamError(streamID, h2dec.ProtocolError, "window increment of 0")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.Windows[streamID] += int64(increment)
	if f.Windows[streamID] > (1<<31 - 1) {
		return h2dec.NewStreamError(streamID, h2dec.FlowControlError, "window is above limits")
	}
	return nil
}

// Encoder is a recording double of h2dec.Encoder. Instead of writing
// real frames it records each call in the matching field (a SETTINGS
// ack also leaves a one-byte marker in Buf; a PING reply is kept in
// PingsWritten), so assertions can inspect ordering and counts without
// decoding a buffer.
type Encoder struct {
	mu sync.Mutex

	Buf *bytes.Buffer
	bw  *bufio.Writer

	pending h2dec.PendingSettingsQueue
	flow    *RecordingOutboundFlowController

	SettingsAcksWritten int
	PingsWritten        [][8]byte
	RemoteSettingsSeen  map[uint16]uint32
}

func NewEncoder() *Encoder {
	buf := &bytes.Buffer{}
	return &Encoder{
		Buf:                buf,
		bw:                 bufio.NewWriter(buf),
		flow:               NewRecordingOutboundFlowController(),
		RemoteSettingsSeen: make(map[uint16]uint32),
	}
}

// PushLocalSettings records that the decoder under test has (nominally)
// sent a SETTINGS frame carrying settings, awaiting the peer's ack.
// The production counterpart would enqueue this the moment the frame
// was actually written.
func (e *Encoder) PushLocalSettings(settings map[uint16]uint32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending.Push(settings)
}

func (e *Encoder) WriteSettingsAck() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.SettingsAcksWritten++
	e.bw.WriteByte(0) // placeholder wire marker; tests assert on counters, not bytes
	return e.bw.Flush()
}

func (e *Encoder) WritePing(data [8]byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	// Retain a copy: per §5, the original buffer may be reused by the
	// transport once the callback returns.
	cp := data
	e.PingsWritten = append(e.PingsWritten, cp)
	return e.bw.Flush()
}

func (e *Encoder) RemoteSettings(id uint16, value uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.RemoteSettingsSeen[id] = value
	return nil
}

func (e *Encoder) PollSentSettings() (map[uint16]uint32, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending.Pop()
}

func (e *Encoder) FlowController() h2dec.OutboundFlowController { return e.flow }

func (e *Encoder) FrameWriter() *bufio.Writer { return e.bw }
