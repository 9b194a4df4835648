package h2dec

// FrameListener receives decoded, validated frame events. The decoder
// core calls at most one On*Read method per inbound frame, and only
// after the frame has passed every connection- and stream-state check
// in §4.2; ignored or rejected frames, and CONTINUATION frames, reach
// no listener method. A listener never has to re-validate what it is
// handed.
//
// Modeled on Netty's Http2FrameListener, the project this decoder's
// behavior was distilled from: OnDataRead returns the number of bytes
// the listener has "processed" for flow-control purposes, which may be
// less than len(data) if application-level backpressure means only
// part of the payload was consumed so far. The decoder passes that
// return value to ConsumeBytes as is; it does not add the frame's
// padding bytes to it.
type FrameListener interface {
	// OnDataRead is handed a DATA frame's application payload (padding
	// already stripped). It must return the number of bytes processed,
	// which the decoder core feeds back into ConsumeBytes on behalf of
	// the caller. This is the frame's mandatory finalizer: forgetting to
	// account for processed bytes silently stalls that stream's flow
	// control.
	OnDataRead(streamID uint32, data []byte, padded bool, endOfStream bool) (processed int, err error)

	OnHeadersRead(streamID uint32, headerBlock []byte, priority *Priority, endOfStream bool) error

	OnPriorityRead(streamID uint32, priority Priority) error

	OnRstStreamRead(streamID uint32, code ErrorCode) error

	OnSettingsRead(settings map[uint16]uint32) error

	OnSettingsAckRead() error

	OnPingRead(data [8]byte, ack bool) error

	OnPushPromiseRead(streamID, promisedStreamID uint32, headerBlock []byte) error

	OnGoAwayRead(lastStreamID uint32, code ErrorCode, debugData []byte) error

	OnWindowUpdateRead(streamID uint32, increment uint32) error

	OnUnknownFrameRead(frameType uint8, streamID uint32, flags uint8, payload []byte) error
}

// NoopListener implements FrameListener by discarding every event. It
// is useful as an embedded default for listeners that only care about
// a handful of frame kinds.
type NoopListener struct{}

var _ FrameListener = NoopListener{}

func (NoopListener) OnDataRead(streamID uint32, data []byte, padded bool, endOfStream bool) (int, error) {
	return len(data), nil
}

func (NoopListener) OnHeadersRead(streamID uint32, headerBlock []byte, priority *Priority, endOfStream bool) error {
	return nil
}

func (NoopListener) OnPriorityRead(streamID uint32, priority Priority) error { return nil }

func (NoopListener) OnRstStreamRead(streamID uint32, code ErrorCode) error { return nil }

func (NoopListener) OnSettingsRead(settings map[uint16]uint32) error { return nil }

func (NoopListener) OnSettingsAckRead() error { return nil }

func (NoopListener) OnPingRead(data [8]byte, ack bool) error { return nil }

func (NoopListener) OnPushPromiseRead(streamID, promisedStreamID uint32, headerBlock []byte) error {
	return nil
}

func (NoopListener) OnGoAwayRead(lastStreamID uint32, code ErrorCode, debugData []byte) error {
	return nil
}

func (NoopListener) OnWindowUpdateRead(streamID uint32, increment uint32) error { return nil }

func (NoopListener) OnUnknownFrameRead(frameType uint8, streamID uint32, flags uint8, payload []byte) error {
	return nil
}
