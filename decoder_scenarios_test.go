package h2dec

import (
	"bufio"
	"bytes"
	"context"
	"testing"

	"github.com/arlobridge/h2dec/h2frame"
	"github.com/arlobridge/h2dec/h2test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildFrame round-trips body through the wire codec so the resulting
// FrameHeader carries a correctly computed Len(), the same way a real
// Decoder would see one off the network.
func buildFrame(t *testing.T, streamID uint32, body h2frame.Frame) *h2frame.FrameHeader {
	t.Helper()

	frh := h2frame.AcquireFrameHeader()
	frh.SetStream(streamID)
	frh.SetBody(body)

	buf := &bytes.Buffer{}
	bw := bufio.NewWriter(buf)
	_, err := frh.WriteTo(bw)
	require.NoError(t, err)
	require.NoError(t, bw.Flush())
	h2frame.ReleaseFrameHeader(frh)

	br := bufio.NewReader(buf)
	out, err := h2frame.ReadFrameFrom(br)
	require.NoError(t, err)
	return out
}

type fakeFrameReader struct {
	queue []*h2frame.FrameHeader
}

func (r *fakeFrameReader) ReadFrame(uint32) (*h2frame.FrameHeader, error) {
	if len(r.queue) == 0 {
		panic("fakeFrameReader: queue exhausted")
	}
	frh := r.queue[0]
	r.queue = r.queue[1:]
	return frh, nil
}

// scenarioListener is a FrameListener double that records every call
// and lets a test override OnDataRead's behavior.
type scenarioListener struct {
	NoopListener

	onData func(streamID uint32, data []byte, padded, endOfStream bool) (int, error)

	dataCalls     int
	headersCalls  int
	settingsCalls int
	settingsAcks  int
	goAwayCalls   int
	pushCalls     int
	rstCalls      int
}

func (l *scenarioListener) OnRstStreamRead(streamID uint32, code ErrorCode) error {
	l.rstCalls++
	return nil
}

func (l *scenarioListener) OnDataRead(streamID uint32, data []byte, padded, endOfStream bool) (int, error) {
	l.dataCalls++
	if l.onData != nil {
		return l.onData(streamID, data, padded, endOfStream)
	}
	return len(data), nil
}

func (l *scenarioListener) OnHeadersRead(streamID uint32, headerBlock []byte, priority *Priority, endOfStream bool) error {
	l.headersCalls++
	return nil
}

func (l *scenarioListener) OnSettingsRead(settings map[uint16]uint32) error {
	l.settingsCalls++
	return nil
}

func (l *scenarioListener) OnSettingsAckRead() error {
	l.settingsAcks++
	return nil
}

func (l *scenarioListener) OnGoAwayRead(lastStreamID uint32, code ErrorCode, debugData []byte) error {
	l.goAwayCalls++
	return nil
}

func (l *scenarioListener) OnPushPromiseRead(streamID, promisedStreamID uint32, headerBlock []byte) error {
	l.pushCalls++
	return nil
}

// recordingFlowController is an InboundFlowController double that
// records every call's arguments, for assertions that need to see the
// exact sequence rather than just its net effect.
type recordingFlowController struct {
	inner          InboundFlowController
	received       []int
	consumed       []int
	unconsumedNext map[uint32]int // overrides UnconsumedBytes's answer for a stream, once
}

func newRecordingFlowController(initial uint32) *recordingFlowController {
	return &recordingFlowController{
		inner:          newDefaultFlowController(initial),
		unconsumedNext: map[uint32]int{},
	}
}

func (f *recordingFlowController) ReceiveFlowControlledFrame(streamID uint32, length int) error {
	f.received = append(f.received, length)
	return f.inner.ReceiveFlowControlledFrame(streamID, length)
}

func (f *recordingFlowController) UnconsumedBytes(streamID uint32) int {
	if v, ok := f.unconsumedNext[streamID]; ok {
		delete(f.unconsumedNext, streamID)
		return v
	}
	return f.inner.UnconsumedBytes(streamID)
}

func (f *recordingFlowController) ConsumeBytes(streamID uint32, length int) error {
	f.consumed = append(f.consumed, length)
	return f.inner.ConsumeBytes(streamID, length)
}

func (f *recordingFlowController) InitialWindowSize() uint32 { return f.inner.InitialWindowSize() }

func (f *recordingFlowController) SetInitialWindowSize(n uint32) error {
	return f.inner.SetInitialWindowSize(n)
}

func newTestDecoder(t *testing.T, lis *scenarioListener, flow InboundFlowController, verif PromisedRequestVerifier) (*Decoder, *h2test.Encoder, *h2test.LifecycleManager) {
	t.Helper()

	conn := NewConnection(true, true)
	enc := h2test.NewEncoder()
	life := h2test.NewLifecycleManager()

	if flow == nil {
		flow = newDefaultFlowController(conn.Local.InitialWindowSize())
	}
	if verif == nil {
		verif = AcceptAllVerifier{}
	}

	dec, err := NewDecoder(DecoderConfig{
		Connection:       conn,
		IsServer:         true,
		LifecycleManager: life,
		Encoder:          enc,
		FrameReader:      &fakeFrameReader{},
		Listener:         lis,
		RequestVerifier:  verif,
		FlowController:   flow,
	})
	require.NoError(t, err)

	return dec, enc, life
}

// --- S1: preface violation -------------------------------------------------

func TestScenario_PrefaceViolation(t *testing.T) {
	lis := &scenarioListener{}
	dec, _, _ := newTestDecoder(t, lis, nil, nil)

	p := h2frame.AcquireFrame(h2frame.FramePing).(*h2frame.Ping)
	frh := buildFrame(t, 0, p)

	err := dec.dispatch(context.Background(), frh)

	var connErr *ConnError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, ProtocolError, connErr.Code)
	assert.Equal(t, 0, lis.dataCalls+lis.headersCalls+lis.settingsCalls)
	assert.False(t, dec.PrefaceReceived())
}

// --- S2: DATA on half-closed-remote ----------------------------------------

func TestScenario_DataOnHalfClosedRemote(t *testing.T) {
	lis := &scenarioListener{}
	flow := newRecordingFlowController(DefaultInitialWindowSize)
	dec, _, _ := newTestDecoder(t, lis, flow, nil)

	strm := newStream(3)
	strm.setState(StreamHalfClosedRemote)
	dec.conn.Remote.streams.insert(strm)

	d := h2frame.AcquireFrame(h2frame.FrameData).(*h2frame.Data)
	d.SetData(make([]byte, 8))
	frh := buildFrame(t, 3, d)

	err := dec.handleData(context.Background(), frh)

	var streamErr *StreamError
	require.ErrorAs(t, err, &streamErr)
	assert.Equal(t, StreamClosedError, streamErr.Code)
	assert.Equal(t, uint32(3), streamErr.StreamID)

	require.Len(t, flow.received, 1)
	assert.Equal(t, 8, flow.received[0])
	require.Len(t, flow.consumed, 1)
	assert.Equal(t, 8, flow.consumed[0], "bytes must still be returned: the listener was never invoked")
	assert.Equal(t, 0, lis.dataCalls)
	assert.Equal(t, StreamHalfClosedRemote, strm.State(), "no state change")
}

// --- S3: DATA partial consumption then listener error ----------------------

func TestScenario_DataPartialConsumptionThenListenerError(t *testing.T) {
	var flow *recordingFlowController
	lis := &scenarioListener{
		onData: func(streamID uint32, data []byte, padded, endOfStream bool) (int, error) {
			// After the listener runs, 40 bytes are unconsumed on stream 1.
			// Simulate that by overriding what UnconsumedBytes answers the
			// next time it's polled (the post-listener snapshot).
			flow.unconsumedNext[streamID] = 40
			return 0, NewStreamError(streamID, CancelError, "application gave up")
		},
	}
	flow = newRecordingFlowController(65535)
	dec, _, _ := newTestDecoder(t, lis, flow, nil)

	strm := newStream(1)
	strm.setState(StreamOpen)
	dec.conn.Remote.streams.insert(strm)

	d := h2frame.AcquireFrame(h2frame.FrameData).(*h2frame.Data)
	d.SetData(make([]byte, 100))
	frh := buildFrame(t, 1, d)

	err := dec.handleData(context.Background(), frh)

	var streamErr *StreamError
	require.ErrorAs(t, err, &streamErr)
	assert.Equal(t, CancelError, streamErr.Code)

	require.Len(t, flow.received, 1)
	assert.Equal(t, 100, flow.received[0])
	require.Len(t, flow.consumed, 1)
	assert.Equal(t, 60, flow.consumed[0])
}

// --- S4: SETTINGS ack with local PUSH_ENABLE on server ----------------------

func TestScenario_SettingsAckRejectsServerPushEnable(t *testing.T) {
	lis := &scenarioListener{}
	dec, enc, _ := newTestDecoder(t, lis, nil, nil)

	enc.PushLocalSettings(map[uint16]uint32{h2frame.SettingEnablePush: 1})
	enc.PushLocalSettings(map[uint16]uint32{h2frame.SettingMaxFrameSize: 32768})

	err := dec.handleSettingsAck(context.Background())
	var connErr *ConnError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, ProtocolError, connErr.Code)

	// The errored entry was already popped; the next ack applies the
	// next FIFO entry instead of retrying the rejected one.
	err = dec.handleSettingsAck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(32768), dec.conn.Local.MaxFrameSize())
}

// A client-mode decoder that sent its own ENABLE_PUSH is not governed
// by the server-only restriction: acking it must succeed.
func TestScenario_SettingsAckAllowsClientPushEnable(t *testing.T) {
	lis := &scenarioListener{}
	conn := NewConnection(true, true)
	enc := h2test.NewEncoder()
	life := h2test.NewLifecycleManager()

	dec, err := NewDecoder(DecoderConfig{
		Connection:       conn,
		IsServer:         false,
		LifecycleManager: life,
		Encoder:          enc,
		FrameReader:      &fakeFrameReader{},
		Listener:         lis,
		FlowController:   newDefaultFlowController(conn.Local.InitialWindowSize()),
	})
	require.NoError(t, err)

	enc.PushLocalSettings(map[uint16]uint32{h2frame.SettingEnablePush: 0})

	require.NoError(t, dec.handleSettingsAck(context.Background()))
	assert.False(t, dec.conn.Local.AllowPush())
}

// --- S5: PUSH_PROMISE unsafe -------------------------------------------------

// capturingVerifier records the authority/method it was actually
// handed, so a test can confirm the verifier saw the real decoded
// pseudo-headers rather than placeholder values.
type capturingVerifier struct {
	authoritative, cacheable, safe bool
	gotAuthority, gotMethod        *string
}

func (v capturingVerifier) IsAuthoritative(authority string) bool {
	*v.gotAuthority = authority
	return v.authoritative
}
func (v capturingVerifier) IsCacheable(method string) bool {
	*v.gotMethod = method
	return v.cacheable
}
func (v capturingVerifier) IsSafe(string) bool { return v.safe }

// literalAuthorityIndexedPostHeaderBlock is a real HPACK-encoded header
// block (no huffman) carrying ":authority: example.com" as a literal
// with an indexed name (static index 1) followed by the fully-indexed
// static entry 3, ":method: POST".
func literalAuthorityIndexedPostHeaderBlock() []byte {
	b := []byte{0x41, 0x0b}
	b = append(b, "example.com"...)
	b = append(b, 0x83)
	return b
}

func TestScenario_PushPromiseUnsafe(t *testing.T) {
	lis := &scenarioListener{}
	var gotAuthority, gotMethod string
	verif := capturingVerifier{authoritative: true, cacheable: true, safe: false, gotAuthority: &gotAuthority, gotMethod: &gotMethod}
	dec, _, _ := newTestDecoder(t, lis, nil, verif)

	parent := newStream(3)
	parent.setState(StreamOpen)
	dec.conn.Remote.streams.insert(parent)

	pp := h2frame.AcquireFrame(h2frame.FramePushPromise).(*h2frame.PushPromise)
	pp.SetPromisedStreamID(4)
	pp.SetHeaders(literalAuthorityIndexedPostHeaderBlock())
	frh := buildFrame(t, 3, pp)

	err := dec.handlePushPromise(context.Background(), frh)

	var streamErr *StreamError
	require.ErrorAs(t, err, &streamErr)
	assert.Equal(t, ProtocolError, streamErr.Code)
	assert.Equal(t, uint32(4), streamErr.StreamID)

	assert.Equal(t, "example.com", gotAuthority, "verifier must see the real decoded :authority")
	assert.Equal(t, "POST", gotMethod, "verifier must see the real decoded :method")

	assert.Nil(t, dec.conn.Remote.streams.lookup(4), "the promised stream must not be reserved")
	assert.Equal(t, StreamOpen, parent.State(), "parent stream unchanged")
	assert.Equal(t, 0, lis.pushCalls)
}

// --- S6: GOAWAY then subsequent DATA -----------------------------------------

func TestScenario_DataAfterGoAway(t *testing.T) {
	lis := &scenarioListener{}
	flow := newRecordingFlowController(DefaultInitialWindowSize)
	dec, _, _ := newTestDecoder(t, lis, flow, nil)

	strm := newStream(3)
	strm.setState(StreamOpen)
	dec.conn.Remote.streams.insert(strm)

	ga := h2frame.AcquireFrame(h2frame.FrameGoAway).(*h2frame.GoAway)
	ga.SetLastStreamID(99)
	ga.SetCode(0)
	gaFrh := buildFrame(t, 0, ga)

	require.NoError(t, dec.handleGoAway(context.Background(), gaFrh))
	assert.True(t, dec.conn.GoAwayReceived())
	assert.Equal(t, 1, lis.goAwayCalls)

	d := h2frame.AcquireFrame(h2frame.FrameData).(*h2frame.Data)
	d.SetData(make([]byte, 4))
	dataFrh := buildFrame(t, 3, d)

	err := dec.handleData(context.Background(), dataFrh)

	var connErr *ConnError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, ProtocolError, connErr.Code)

	require.Len(t, flow.received, 1, "flow control must still run before the error is raised")
	assert.Equal(t, 4, flow.received[0])
}

// --- Universal properties ----------------------------------------------------

// Property 1: bytes returned to the flow controller plus bytes left
// unconsumed on the stream always sum to the frame's payload length,
// whether or not the listener succeeds.
func TestUniversalProperty_FlowControlBalances(t *testing.T) {
	lis := &scenarioListener{
		onData: func(streamID uint32, data []byte, padded, endOfStream bool) (int, error) {
			return 70, nil
		},
	}
	flow := newRecordingFlowController(65535)
	dec, _, _ := newTestDecoder(t, lis, flow, nil)

	strm := newStream(1)
	strm.setState(StreamOpen)
	dec.conn.Remote.streams.insert(strm)

	d := h2frame.AcquireFrame(h2frame.FrameData).(*h2frame.Data)
	d.SetData(make([]byte, 100))
	frh := buildFrame(t, 1, d)

	require.NoError(t, dec.handleData(context.Background(), frh))

	require.Len(t, flow.consumed, 1)
	returned := flow.consumed[0]
	unconsumedLeft := flow.UnconsumedBytes(1)
	assert.Equal(t, 100, returned+unconsumedLeft)
}

// Property 2: any frame sequence not beginning with SETTINGS, GOAWAY,
// or UNKNOWN raises a connection PROTOCOL_ERROR on the very first
// frame, before the preface gate ever flips to Running.
func TestUniversalProperty_PrefaceRejectsEverythingButSettingsGoAwayUnknown(t *testing.T) {
	lis := &scenarioListener{}

	for _, body := range []h2frame.Frame{
		h2frame.AcquireFrame(h2frame.FrameHeaders),
		h2frame.AcquireFrame(h2frame.FramePriority),
		h2frame.AcquireFrame(h2frame.FramePing),
		h2frame.AcquireFrame(h2frame.FrameWindowUpdate),
	} {
		dec, _, _ := newTestDecoder(t, lis, nil, nil)
		frh := buildFrame(t, 1, body)

		err := dec.dispatch(context.Background(), frh)
		var connErr *ConnError
		require.ErrorAsf(t, err, &connErr, "frame type %s should be rejected before preface", body.Type())
		assert.Equal(t, ProtocolError, connErr.Code)
		assert.False(t, dec.PrefaceReceived())
	}
}

// Property 3: a stream's visited states form a path in the HTTP/2
// state diagram terminating at CLOSED, with no repeats.
func TestUniversalProperty_StreamPathHasNoRepeats(t *testing.T) {
	lis := &scenarioListener{}
	dec, _, life := newTestDecoder(t, lis, nil, nil)

	h := h2frame.AcquireFrame(h2frame.FrameHeaders).(*h2frame.Headers)
	h.SetHeaders([]byte("hdrs"))
	frh := buildFrame(t, 1, h)

	var visited []StreamState
	require.NoError(t, dec.handleHeaders(context.Background(), frh))
	strm := dec.conn.Remote.streams.lookup(1)
	visited = append(visited, strm.State())
	assert.Equal(t, StreamOpen, strm.State())

	d := h2frame.AcquireFrame(h2frame.FrameData).(*h2frame.Data)
	d.SetData([]byte("body"))
	d.SetEndStream(true)
	dataFrh := buildFrame(t, 1, d)
	require.NoError(t, dec.handleData(context.Background(), dataFrh))
	visited = append(visited, strm.State())
	assert.Equal(t, StreamHalfClosedRemote, strm.State())

	life.CloseStream(strm, NoError)
	visited = append(visited, strm.State())
	assert.Equal(t, StreamClosed, strm.State())

	seen := map[StreamState]bool{}
	for _, s := range visited {
		assert.False(t, seen[s], "state %s repeated", s)
		seen[s] = true
	}
	assert.Equal(t, StreamClosed, visited[len(visited)-1])
}

// Property 4: a SETTINGS ack is written before the listener is ever
// handed the settings.
func TestUniversalProperty_SettingsAckPrecedesListener(t *testing.T) {
	var ackCountAtListenerCall int
	lis := &scenarioListener{}
	dec, enc, _ := newTestDecoder(t, lis, nil, nil)
	// Wrap the listener to capture enc's ack counter at call time.
	dec.lis = &orderCheckingListener{
		scenarioListener: lis,
		check:            func() { ackCountAtListenerCall = enc.SettingsAcksWritten },
	}

	st := h2frame.AcquireFrame(h2frame.FrameSettings).(*h2frame.Settings)
	st.Add(h2frame.SettingMaxFrameSize, 32768)
	frh := buildFrame(t, 0, st)

	require.NoError(t, dec.handleSettings(context.Background(), frh.Body().(*h2frame.Settings)))
	assert.Equal(t, 1, ackCountAtListenerCall, "ack must already be written by the time onSettingsRead runs")
	assert.Equal(t, 1, enc.SettingsAcksWritten)
}

type orderCheckingListener struct {
	*scenarioListener
	check func()
}

func (l *orderCheckingListener) OnSettingsRead(settings map[uint16]uint32) error {
	l.check()
	return l.scenarioListener.OnSettingsRead(settings)
}

// Property 5: each ack removes exactly one FIFO entry; acking an
// empty FIFO is a no-op.
func TestUniversalProperty_SettingsAckFIFODiscipline(t *testing.T) {
	lis := &scenarioListener{}
	dec, enc, _ := newTestDecoder(t, lis, nil, nil)

	require.NoError(t, dec.handleSettingsAck(context.Background()))
	assert.Equal(t, 1, lis.settingsAcks)

	enc.PushLocalSettings(map[uint16]uint32{h2frame.SettingHeaderTableSize: 8192})
	enc.PushLocalSettings(map[uint16]uint32{h2frame.SettingHeaderTableSize: 2048})

	require.NoError(t, dec.handleSettingsAck(context.Background()))
	assert.Equal(t, uint32(8192), dec.conn.Local.HeaderTableSize())

	require.NoError(t, dec.handleSettingsAck(context.Background()))
	assert.Equal(t, uint32(2048), dec.conn.Local.HeaderTableSize())
}

// Property 6: RST_STREAM on a CLOSED stream is a no-op; a second
// GOAWAY updates the latch without re-raising.
func TestUniversalProperty_ClosedStreamResetAndRepeatGoAwayAreNoops(t *testing.T) {
	lis := &scenarioListener{}
	dec, _, _ := newTestDecoder(t, lis, nil, nil)

	strm := newStream(1)
	strm.setState(StreamClosed)
	dec.conn.Remote.streams.insert(strm)

	r := h2frame.AcquireFrame(h2frame.FrameResetStream).(*h2frame.RstStream)
	r.SetCode(uint32(CancelError))
	frh := buildFrame(t, 1, r)

	require.NoError(t, dec.handleRstStream(context.Background(), frh))
	assert.Equal(t, 0, lis.rstCalls, "RST_STREAM on a CLOSED stream must not reach the listener")

	ga1 := h2frame.AcquireFrame(h2frame.FrameGoAway).(*h2frame.GoAway)
	ga1.SetLastStreamID(9)
	frh1 := buildFrame(t, 0, ga1)
	require.NoError(t, dec.handleGoAway(context.Background(), frh1))

	ga2 := h2frame.AcquireFrame(h2frame.FrameGoAway).(*h2frame.GoAway)
	ga2.SetLastStreamID(11)
	frh2 := buildFrame(t, 0, ga2)
	require.NoError(t, dec.handleGoAway(context.Background(), frh2))

	assert.True(t, dec.conn.GoAwayReceived())
	assert.Equal(t, 2, lis.goAwayCalls)
}
