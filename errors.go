package h2dec

import "fmt"

// ErrorCode is an HTTP/2 error code.
//
// http://httpwg.org/specs/rfc7540.html#ErrorCodes
type ErrorCode uint32

const (
	NoError              ErrorCode = 0x0
	ProtocolError        ErrorCode = 0x1
	InternalError        ErrorCode = 0x2
	FlowControlError     ErrorCode = 0x3
	SettingsTimeoutError ErrorCode = 0x4
	StreamClosedError    ErrorCode = 0x5
	FrameSizeError       ErrorCode = 0x6
	RefusedStreamError   ErrorCode = 0x7
	CancelError          ErrorCode = 0x8
	CompressionError     ErrorCode = 0x9
	ConnectError         ErrorCode = 0xa
	EnhanceYourCalmError ErrorCode = 0xb
	InadequateSecurity   ErrorCode = 0xc
	HTTP11Required       ErrorCode = 0xd
)

var errCodeNames = [...]string{
	"NO_ERROR", "PROTOCOL_ERROR", "INTERNAL_ERROR", "FLOW_CONTROL_ERROR",
	"SETTINGS_TIMEOUT", "STREAM_CLOSED", "FRAME_SIZE_ERROR", "REFUSED_STREAM",
	"CANCEL", "COMPRESSION_ERROR", "CONNECT_ERROR", "ENHANCE_YOUR_CALM",
	"INADEQUATE_SECURITY", "HTTP_1_1_REQUIRED",
}

func (c ErrorCode) String() string {
	if int(c) < len(errCodeNames) {
		return errCodeNames[c]
	}
	return fmt.Sprintf("UNKNOWN_ERROR(0x%x)", uint32(c))
}

// ConnError is a connection-fatal error: the caller must emit GOAWAY and
// tear down the whole connection.
type ConnError struct {
	Code    ErrorCode
	Message string
}

func NewConnError(code ErrorCode, message string) *ConnError {
	return &ConnError{Code: code, Message: message}
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("connection error: %s: %s", e.Code, e.Message)
}

// StreamError is a stream-fatal error: the caller must emit RST_STREAM
// for StreamID and may continue serving the rest of the connection.
type StreamError struct {
	StreamID uint32
	Code     ErrorCode
	Message  string
}

func NewStreamError(streamID uint32, code ErrorCode, message string) *StreamError {
	return &StreamError{StreamID: streamID, Code: code, Message: message}
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream error: stream=%d: %s: %s", e.StreamID, e.Code, e.Message)
}

// ClosedStreamCreationError is raised internally when an operation tries
// to create or reserve a stream id that is already closed. It is
// swallowed by the PRIORITY handler (§4.2) and must not leak anywhere
// else.
type ClosedStreamCreationError struct {
	StreamID uint32
}

func (e *ClosedStreamCreationError) Error() string {
	return fmt.Sprintf("stream %d is already closed", e.StreamID)
}
