package h2dec

import (
	"context"

	"github.com/arlobridge/h2dec/h2frame"
)

// stream returns the stream registered for id on the remote endpoint
// (every stream the decoder dispatches over was opened, reserved, or
// implicitly created by the remote peer), or nil if none exists yet.
func (d *Decoder) stream(id uint32) *Stream {
	if id == 0 {
		return nil
	}
	return d.conn.Remote.streams.lookup(id)
}

// requireStream raises a connection PROTOCOL_ERROR if id has no
// registered stream (§6, §9: "stream() returns an optional handle;
// requireStream() raises on absence").
func (d *Decoder) requireStream(id uint32) (*Stream, error) {
	s := d.stream(id)
	if s == nil {
		return nil, NewConnError(ProtocolError, "no such stream")
	}
	return s, nil
}

// shouldIgnore implements §4.2's shared predicate. Stream 0 is never
// ignored.
func (d *Decoder) shouldIgnore(strm *Stream, allowAfterReset bool) bool {
	if strm != nil && strm.id == 0 {
		return false
	}

	if d.conn.GoAwaySent() {
		if strm == nil || d.conn.Remote.streams.lastStreamCreated() <= streamIDOrZero(strm) {
			return true
		}
	}

	if !allowAfterReset && strm != nil && strm.resetSent {
		return true
	}

	return false
}

func streamIDOrZero(s *Stream) uint32 {
	if s == nil {
		return 0
	}
	return s.id
}

// verifyGoAwayNotReceived implements §4.2: raises a connection error
// if goaway-received is latched. Called by the HEADERS, PRIORITY,
// PUSH_PROMISE and WINDOW_UPDATE handlers before they act, and by DATA
// after its flow-control accounting; the RST_STREAM, SETTINGS, PING,
// GOAWAY and UNKNOWN handlers do not call it.
func (d *Decoder) verifyGoAwayNotReceived() error {
	if d.conn.GoAwayReceived() {
		return NewConnError(ProtocolError, "received frames after receiving GO_AWAY")
	}
	return nil
}

// --- DATA ------------------------------------------------------------

func (d *Decoder) handleData(_ context.Context, frh *h2frame.FrameHeader) error {
	data := frh.Body().(*h2frame.Data)
	streamID := frh.Stream()

	strm, err := d.requireStream(streamID)
	if err != nil {
		return err
	}

	// Unlike every other handler, a goaway-received violation on DATA is
	// not raised immediately: flow-control accounting below must run
	// first so the window stays balanced even on a connection that is
	// about to be torn down (§8 S6).
	goAwayErr := d.verifyGoAwayNotReceived()

	ignore := d.shouldIgnore(strm, false)

	var stateErr error
	switch strm.State() {
	case StreamOpen, StreamHalfClosedLocal:
		// valid
	case StreamHalfClosedRemote:
		stateErr = NewStreamError(streamID, StreamClosedError, "DATA after remote half-close")
	case StreamClosed:
		if !ignore {
			stateErr = NewStreamError(streamID, StreamClosedError, "DATA on closed stream")
		}
	default: // IDLE, RESERVED_LOCAL, RESERVED_REMOTE
		if !ignore {
			stateErr = NewConnError(ProtocolError, "DATA on a stream that was never opened")
		}
	}

	bytesToReturn := frh.Len()
	unconsumed0 := d.flow.UnconsumedBytes(streamID)

	// This is the sole window-accounting entry point and must run
	// regardless of what happens below, per §4.3.
	frcErr := d.flow.ReceiveFlowControlledFrame(streamID, bytesToReturn)

	var outErr error
	switch {
	case frcErr != nil:
		outErr = frcErr
	case goAwayErr != nil:
		outErr = goAwayErr
	case ignore:
		// bytesToReturn stays the full frame length.
	case stateErr != nil:
		outErr = stateErr
	default:
		processed, lerr := d.lis.OnDataRead(streamID, data.Data(), data.Padded(), data.EndStream())
		if lerr != nil {
			unconsumedAfter := d.flow.UnconsumedBytes(streamID)
			delta := unconsumed0 - unconsumedAfter
			bytesToReturn += delta
			outErr = lerr
		} else {
			bytesToReturn = processed
		}
	}

	// Finalization runs on every exit path (§5, §9).
	if bytesToReturn > 0 {
		if cerr := d.flow.ConsumeBytes(streamID, bytesToReturn); cerr != nil && outErr == nil {
			outErr = cerr
		}
	}
	if data.EndStream() {
		d.life.CloseRemoteSide(strm)
	}

	return outErr
}

// --- HEADERS -----------------------------------------------------------

func (d *Decoder) handleHeaders(_ context.Context, frh *h2frame.FrameHeader) error {
	h := frh.Body().(*h2frame.Headers)
	streamID := frh.Stream()

	strm := d.stream(streamID)

	if gerr := d.verifyGoAwayNotReceived(); gerr != nil {
		return gerr
	}
	if d.shouldIgnore(strm, false) {
		return nil
	}

	if strm == nil {
		if d.conn.Remote.atConcurrencyLimit() {
			return NewStreamError(streamID, RefusedStreamError, "max concurrent streams exceeded")
		}

		var err error
		strm, err = d.conn.Remote.streams.createRemoteStream(streamID)
		if err != nil {
			return NewConnError(ProtocolError, "cannot open stream for HEADERS")
		}
		d.conn.Remote.openStreamCount++
		if h.EndStream() {
			strm.setState(StreamHalfClosedRemote)
		} else {
			strm.setState(StreamOpen)
		}
	} else {
		switch strm.State() {
		case StreamReservedRemote, StreamIdle:
			d.conn.Remote.openStreamCount++
			if h.EndStream() {
				strm.setState(StreamHalfClosedRemote)
			} else {
				strm.setState(StreamOpen)
			}
		case StreamOpen, StreamHalfClosedLocal:
			// trailers: no state change
		case StreamHalfClosedRemote, StreamClosed:
			return NewStreamError(streamID, StreamClosedError, "HEADERS on a half-closed-remote or closed stream")
		default:
			return NewConnError(ProtocolError, "HEADERS in an invalid state")
		}
	}

	prio := headersPriority(h)

	if err := d.lis.OnHeadersRead(streamID, h.Headers(), &prio, h.EndStream()); err != nil {
		return err
	}

	strm.setPriority(prio)

	if h.EndStream() {
		d.life.CloseRemoteSide(strm)
	}

	return nil
}

// headersPriority extracts the priority triple carried by a HEADERS
// frame, substituting the short-form default (§4.2) when the PRIORITY
// flag was absent.
func headersPriority(h *h2frame.Headers) Priority {
	if !h.HasPriority() {
		return Priority{StreamDependency: 0, Weight: h2frame.DefaultPriorityWeight, Exclusive: false}
	}
	return Priority{
		StreamDependency: h.StreamDependency(),
		Weight:           h.Weight() + 1, // wire value is Weight-1
		Exclusive:        h.Exclusive(),
	}
}

// --- PRIORITY ------------------------------------------------------------

func (d *Decoder) handlePriority(_ context.Context, frh *h2frame.FrameHeader) error {
	p := frh.Body().(*h2frame.Priority)
	streamID := frh.Stream()

	strm := d.stream(streamID)

	if gerr := d.verifyGoAwayNotReceived(); gerr != nil {
		return gerr
	}
	if d.shouldIgnore(strm, true) {
		return nil
	}

	if strm == nil {
		var err error
		strm, err = d.conn.Remote.streams.createRemoteStream(streamID)
		if err != nil {
			// PRIORITY on an already-closed stream id is benign (§4.2 step 4).
			if _, ok := err.(*ClosedStreamCreationError); ok {
				return nil
			}
			return err
		}
		strm.setState(StreamIdle)
	}

	// Recording a dependency may implicitly create the parent stream.
	if p.StreamDependency() != 0 {
		if parent := d.stream(p.StreamDependency()); parent == nil {
			if created, err := d.conn.Remote.streams.createRemoteStream(p.StreamDependency()); err != nil {
				if _, ok := err.(*ClosedStreamCreationError); ok {
					// swallow: the parent is already closed, benign.
				} else {
					return err
				}
			} else {
				created.setState(StreamIdle)
			}
		}
	}

	prio := Priority{
		StreamDependency: p.StreamDependency(),
		Weight:           p.Weight() + 1,
		Exclusive:        p.Exclusive(),
	}
	strm.setPriority(prio)

	return d.lis.OnPriorityRead(streamID, prio)
}

// --- RST_STREAM ------------------------------------------------------------

func (d *Decoder) handleRstStream(_ context.Context, frh *h2frame.FrameHeader) error {
	r := frh.Body().(*h2frame.RstStream)
	streamID := frh.Stream()

	strm, err := d.requireStream(streamID)
	if err != nil {
		return err
	}

	if strm.isClosed() {
		return nil
	}

	strm.resetReceived = true

	if err := d.lis.OnRstStreamRead(streamID, ErrorCode(r.Code())); err != nil {
		return err
	}

	d.life.CloseStream(strm, ErrorCode(r.Code()))
	d.log.Printf("stream %d destroyed by RST_STREAM(%s)", streamID, ErrorCode(r.Code()))

	return nil
}

// --- SETTINGS ------------------------------------------------------------

func (d *Decoder) handleSettings(_ context.Context, st *h2frame.Settings) error {
	settings := make(map[uint16]uint32, len(st.Params()))
	for _, p := range st.Params() {
		settings[p.ID] = p.Value
		if err := d.enc.RemoteSettings(p.ID, p.Value); err != nil {
			return err
		}
	}

	if err := d.enc.WriteSettingsAck(); err != nil {
		return err
	}

	d.log.Printf("applied %d remote SETTINGS parameter(s)", len(settings))

	return d.lis.OnSettingsRead(settings)
}

func (d *Decoder) handleSettingsAck(_ context.Context) error {
	settings, ok := d.enc.PollSentSettings()
	if ok {
		update := LocalSettingsUpdate{}
		for id, value := range settings {
			value := value
			switch id {
			case h2frame.SettingEnablePush:
				v := value != 0
				update.EnablePush = &v
			case h2frame.SettingMaxConcurrentStreams:
				update.MaxConcurrentStreams = &value
			case h2frame.SettingHeaderTableSize:
				update.HeaderTableSize = &value
			case h2frame.SettingMaxFrameSize:
				update.MaxFrameSize = &value
			case h2frame.SettingInitialWindowSize:
				update.InitialWindowSize = &value
			}
		}

		if err := d.ApplyLocalSettings(d.isServer, update); err != nil {
			return err
		}
	}

	return d.lis.OnSettingsAckRead()
}

// --- PING ------------------------------------------------------------

func (d *Decoder) handlePing(_ context.Context, frh *h2frame.FrameHeader) error {
	p := frh.Body().(*h2frame.Ping)

	var data [8]byte
	copy(data[:], p.Data())

	if !p.IsAck() {
		if err := d.enc.WritePing(data); err != nil {
			return err
		}
	}

	return d.lis.OnPingRead(data, p.IsAck())
}

// --- PUSH_PROMISE ------------------------------------------------------------

func (d *Decoder) handlePushPromise(_ context.Context, frh *h2frame.FrameHeader) error {
	pp := frh.Body().(*h2frame.PushPromise)
	parentID := frh.Stream()
	promisedID := pp.PromisedStreamID()

	parent, err := d.requireStream(parentID)
	if err != nil {
		return err
	}
	if gerr := d.verifyGoAwayNotReceived(); gerr != nil {
		return gerr
	}
	if d.shouldIgnore(parent, false) {
		return nil
	}

	switch parent.State() {
	case StreamOpen, StreamHalfClosedLocal:
		// valid
	default:
		return NewConnError(ProtocolError, "PUSH_PROMISE on a parent stream that is not OPEN or HALF_CLOSED_LOCAL")
	}

	authority, method, err := d.promisedRequestPseudoHeaders(pp.Headers())
	if err != nil {
		return NewConnError(CompressionError, "malformed promised-request header block")
	}
	if !d.verif.IsAuthoritative(authority) {
		return NewStreamError(promisedID, ProtocolError, "promised request is not authoritative")
	}
	if !d.verif.IsCacheable(method) {
		return NewStreamError(promisedID, ProtocolError, "promised request method is not cacheable")
	}
	if !d.verif.IsSafe(method) {
		return NewStreamError(promisedID, ProtocolError, "promised request method is not safe")
	}

	promised, err := d.conn.Remote.streams.reservePushStream(promisedID)
	if err != nil {
		return NewConnError(ProtocolError, "cannot reserve promised stream")
	}
	promised.setPriority(parent.Priority())

	return d.lis.OnPushPromiseRead(parentID, promisedID, pp.Headers())
}

// promisedRequestPseudoHeaders decodes just enough of a PUSH_PROMISE's
// header block to hand the verifier real :authority/:method values,
// using the decoding table the local endpoint advertised to the peer
// (the table the peer's encoder is bound to honor).
func (d *Decoder) promisedRequestPseudoHeaders(headerBlock []byte) (authority, method string, err error) {
	fields, err := d.conn.Local.HPACKTable().Decoder().DecodeFull(headerBlock)
	if err != nil {
		return "", "", err
	}
	for _, f := range fields {
		switch f.Name {
		case ":authority":
			authority = f.Value
		case ":method":
			method = f.Value
		}
	}
	return authority, method, nil
}

// --- GOAWAY ------------------------------------------------------------

func (d *Decoder) handleGoAway(_ context.Context, frh *h2frame.FrameHeader) error {
	g := frh.Body().(*h2frame.GoAway)

	d.log.Printf("GOAWAY received: lastStreamId=%d code=%s", g.LastStreamID(), ErrorCode(g.Code()))

	d.conn.markGoAwayReceived(g.LastStreamID())

	return d.lis.OnGoAwayRead(g.LastStreamID(), ErrorCode(g.Code()), g.Data())
}

// --- WINDOW_UPDATE ------------------------------------------------------------

func (d *Decoder) handleWindowUpdate(_ context.Context, frh *h2frame.FrameHeader) error {
	w := frh.Body().(*h2frame.WindowUpdate)
	streamID := frh.Stream()

	var strm *Stream
	if streamID != 0 {
		var err error
		strm, err = d.requireStream(streamID)
		if err != nil {
			return err
		}
	}

	if gerr := d.verifyGoAwayNotReceived(); gerr != nil {
		return gerr
	}
	if strm != nil && (strm.isClosed() || d.shouldIgnore(strm, false)) {
		return nil
	}

	if err := d.enc.FlowController().AddWindowSize(streamID, uint32(w.Increment())); err != nil {
		return err
	}

	return d.lis.OnWindowUpdateRead(streamID, uint32(w.Increment()))
}

// --- UNKNOWN ------------------------------------------------------------

func (d *Decoder) handleUnknown(_ context.Context, frh *h2frame.FrameHeader) error {
	u := frh.Body().(*h2frame.Unknown)
	return d.lis.OnUnknownFrameRead(uint8(u.Type()), frh.Stream(), uint8(frh.Flags()), u.Payload())
}
