// Package h2frame is the frame-reader collaborator assumed external by
// the decoder core: it turns a byte stream into typed HTTP/2 frames and
// back. The decoder never parses wire bytes itself: it only calls
// ReadFrameFromWithSize/WriteTo and dispatches on the resulting Frame's Type().
//
// Layout mirrors frameHeader.go: one FrameHeader carrying the 9-byte
// fixed header plus a pooled, type-specific Frame body.
package h2frame

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/arlobridge/h2dec/h2utils"
)

// FrameType identifies the kind of an HTTP/2 frame.
//
// https://httpwg.org/specs/rfc7540.html#FrameTypes
type FrameType uint8

const (
	FrameData         FrameType = 0x0
	FrameHeaders      FrameType = 0x1
	FramePriority     FrameType = 0x2
	FrameResetStream  FrameType = 0x3
	FrameSettings     FrameType = 0x4
	FramePushPromise  FrameType = 0x5
	FramePing         FrameType = 0x6
	FrameGoAway       FrameType = 0x7
	FrameWindowUpdate FrameType = 0x8
	FrameContinuation FrameType = 0x9

	maxKnownFrameType = FrameContinuation
)

func (t FrameType) String() string {
	switch t {
	case FrameData:
		return "DATA"
	case FrameHeaders:
		return "HEADERS"
	case FramePriority:
		return "PRIORITY"
	case FrameResetStream:
		return "RST_STREAM"
	case FrameSettings:
		return "SETTINGS"
	case FramePushPromise:
		return "PUSH_PROMISE"
	case FramePing:
		return "PING"
	case FrameGoAway:
		return "GOAWAY"
	case FrameWindowUpdate:
		return "WINDOW_UPDATE"
	case FrameContinuation:
		return "CONTINUATION"
	}
	return "UNKNOWN"
}

// FrameFlags are the frame header flags. A single byte is shared across
// frame kinds: FlagEndStream and FlagAck both reuse bit 0x1.
type FrameFlags uint8

const (
	FlagAck        FrameFlags = 0x1
	FlagEndStream  FrameFlags = 0x1
	FlagEndHeaders FrameFlags = 0x4
	FlagPadded     FrameFlags = 0x8
	FlagPriority   FrameFlags = 0x20
)

func (f FrameFlags) Has(o FrameFlags) bool { return f&o == o }
func (f FrameFlags) Add(o FrameFlags) FrameFlags { return f | o }

// DefaultFrameSize is the size in bytes of the fixed frame header.
const DefaultFrameSize = 9

// defaultMaxLen is SETTINGS_MAX_FRAME_SIZE's default value.
const defaultMaxLen = 1 << 14

// Frame is the per-kind frame body: settings, priority, data and so on.
type Frame interface {
	Type() FrameType
	Reset()
	// Deserialize decodes fr's raw payload into the concrete frame.
	Deserialize(fr *FrameHeader) error
	// Serialize encodes the concrete frame fields into fr's payload.
	Serialize(fr *FrameHeader)
}

// FrameWithHeaders is implemented by frame kinds that carry a header
// block fragment (HEADERS, PUSH_PROMISE, CONTINUATION).
type FrameWithHeaders interface {
	Headers() []byte
}

var ErrUnknownFrameType = fmt.Errorf("h2frame: unknown frame type")
var ErrMissingBytes = fmt.Errorf("h2frame: frame payload too short")
var ErrPayloadExceeds = fmt.Errorf("h2frame: frame payload exceeds negotiated maximum size")

var frameHeaderPool = sync.Pool{
	New: func() interface{} { return &FrameHeader{} },
}

// FrameHeader is the wire representation of an HTTP/2 frame: the fixed
// 9-byte header plus a decoded body. Use AcquireFrameHeader/
// ReleaseFrameHeader to pool allocations the way frameHeaderPool does.
//
// A FrameHeader MUST NOT be used from more than one goroutine at a time.
type FrameHeader struct {
	length int
	kind   FrameType
	flags  FrameFlags
	stream uint32

	maxLen uint32

	rawHeader [DefaultFrameSize]byte
	payload   []byte

	body Frame
}

func AcquireFrameHeader() *FrameHeader {
	fr := frameHeaderPool.Get().(*FrameHeader)
	fr.Reset()
	return fr
}

func ReleaseFrameHeader(fr *FrameHeader) {
	if fr.body != nil {
		ReleaseFrame(fr.body)
	}
	frameHeaderPool.Put(fr)
}

func (frh *FrameHeader) Reset() {
	frh.kind = 0
	frh.flags = 0
	frh.stream = 0
	frh.length = 0
	frh.maxLen = defaultMaxLen
	frh.body = nil
	frh.payload = frh.payload[:0]
}

func (frh *FrameHeader) Type() FrameType    { return frh.kind }
func (frh *FrameHeader) Flags() FrameFlags  { return frh.flags }
func (frh *FrameHeader) SetFlags(f FrameFlags) { frh.flags = f }
func (frh *FrameHeader) Stream() uint32     { return frh.stream }
func (frh *FrameHeader) SetStream(s uint32) { frh.stream = s }
func (frh *FrameHeader) Len() int           { return frh.length }
func (frh *FrameHeader) MaxLen() uint32     { return frh.maxLen }
func (frh *FrameHeader) SetMaxLen(n uint32) { frh.maxLen = n }
func (frh *FrameHeader) Payload() []byte    { return frh.payload }

func (frh *FrameHeader) Body() Frame { return frh.body }

func (frh *FrameHeader) SetBody(fr Frame) {
	if fr == nil {
		panic("h2frame: body cannot be nil")
	}
	frh.kind = fr.Type()
	frh.body = fr
}

func (frh *FrameHeader) setPayload(b []byte) {
	frh.payload = append(frh.payload[:0], b...)
}

func (frh *FrameHeader) checkLen() error {
	if frh.maxLen != 0 && frh.length > int(frh.maxLen) {
		return ErrPayloadExceeds
	}
	return nil
}

func (frh *FrameHeader) parseValues(header []byte) {
	frh.length = int(h2utils.BytesToUint24(header[:3]))
	frh.kind = FrameType(header[3])
	frh.flags = FrameFlags(header[4])
	frh.stream = h2utils.BytesToStreamID(header[5:])
}

func (frh *FrameHeader) packHeader(header []byte) {
	h2utils.Uint24ToBytes(header[:3], uint32(frh.length))
	header[3] = byte(frh.kind)
	header[4] = byte(frh.flags)
	h2utils.Uint32ToBytes(header[5:], frh.stream)
}

// ReadFrameFrom reads one frame using the default max frame size.
func ReadFrameFrom(br *bufio.Reader) (*FrameHeader, error) {
	return ReadFrameFromWithSize(br, defaultMaxLen)
}

// ReadFrameFromWithSize reads one frame, rejecting payloads above max
// (the negotiated SETTINGS_MAX_FRAME_SIZE).
func ReadFrameFromWithSize(br *bufio.Reader, max uint32) (*FrameHeader, error) {
	frh := AcquireFrameHeader()
	frh.maxLen = max

	n, err := frh.readFrom(br)
	if err != nil {
		if n >= 0 {
			ReleaseFrameHeader(frh)
		} else {
			frameHeaderPool.Put(frh)
		}
		return nil, err
	}

	return frh, nil
}

func (frh *FrameHeader) readFrom(br *bufio.Reader) (int64, error) {
	header, err := br.Peek(DefaultFrameSize)
	if err != nil {
		return -1, err
	}
	_, _ = br.Discard(DefaultFrameSize)

	rn := int64(DefaultFrameSize)

	frh.parseValues(header)
	if err := frh.checkLen(); err != nil {
		_, _ = br.Discard(frh.length)
		return 0, err
	}

	frh.body = AcquireFrame(frh.kind)

	if frh.length > 0 {
		frh.payload = h2utils.Resize(frh.payload, frh.length)

		var n int
		n, err = io.ReadFull(br, frh.payload[:frh.length])
		rn += int64(n)
		if err != nil {
			return rn, err
		}
	}

	return rn, frh.body.Deserialize(frh)
}

// WriteTo serializes the frame body into the header and writes both to w.
func (frh *FrameHeader) WriteTo(w *bufio.Writer) (int64, error) {
	frh.body.Serialize(frh)

	frh.length = len(frh.payload)
	frh.packHeader(frh.rawHeader[:])

	n, err := w.Write(frh.rawHeader[:])
	if err != nil {
		return int64(n), err
	}

	n2, err := w.Write(frh.payload)
	return int64(n + n2), err
}
