package h2dec

import (
	"github.com/arlobridge/h2dec/h2frame"
	"github.com/valyala/fasthttp"
)

// FrameReader is the raw frame-parsing collaborator (§6): it turns
// wire bytes into a typed h2frame.FrameHeader, honoring whatever
// maximum frame size the decoder's current local policy allows.
//
// h2frame.ReadFrameFromWithSize already implements this contract
// directly; FrameReader exists so a caller can substitute a different
// source (a replay buffer in tests, a captured pcap, ...).
type FrameReader interface {
	ReadFrame(maxFrameSize uint32) (*h2frame.FrameHeader, error)
}

// DecoderConfig configures a Decoder. Required fields mirror
// server.go's Config pattern: a private defaults() fills in
// everything the caller left zero, called once by NewDecoder.
type DecoderConfig struct {
	// Connection is required: the shared connection/stream state this
	// decoder mutates.
	Connection *Connection

	// IsServer reports whether the local endpoint is a server. It
	// governs the asymmetric SETTINGS-ack check in §4.2: a server's own
	// SETTINGS_ENABLE_PUSH ack is a connection error, a client's is not.
	IsServer bool

	// LifecycleManager is required: closes streams on end-of-stream or
	// reset.
	LifecycleManager LifecycleManager

	// Encoder is required: the write-side collaborator for SETTINGS
	// acks, PING replies, and outbound flow-control updates.
	Encoder Encoder

	// FrameReader is required: produces the next frame from the wire.
	FrameReader FrameReader

	// Listener is required: receives decoded frame events.
	Listener FrameListener

	// RequestVerifier defaults to AcceptAllVerifier{} if nil.
	RequestVerifier PromisedRequestVerifier

	// FlowController defaults, if nil, to the built-in per-stream ledger
	// whose initial window is Connection.Local's advertised initial
	// window size. The Decoder holds it; Connection itself holds no
	// flow controller.
	FlowController InboundFlowController

	// Logger defaults to this package's own stdout logger (prefix
	// "[h2dec] "), the way serverConn defaults serverConn.logger.
	Logger fasthttp.Logger
}

func (cfg *DecoderConfig) defaults() error {
	if cfg.Connection == nil {
		return NewConnError(InternalError, "DecoderConfig.Connection is required")
	}
	if cfg.LifecycleManager == nil {
		return NewConnError(InternalError, "DecoderConfig.LifecycleManager is required")
	}
	if cfg.Encoder == nil {
		return NewConnError(InternalError, "DecoderConfig.Encoder is required")
	}
	if cfg.FrameReader == nil {
		return NewConnError(InternalError, "DecoderConfig.FrameReader is required")
	}
	if cfg.Listener == nil {
		return NewConnError(InternalError, "DecoderConfig.Listener is required")
	}
	if cfg.RequestVerifier == nil {
		cfg.RequestVerifier = AcceptAllVerifier{}
	}
	if cfg.FlowController == nil {
		cfg.FlowController = newDefaultFlowController(cfg.Connection.Local.InitialWindowSize())
	}
	if cfg.Logger == nil {
		cfg.Logger = defaultLogger{}
	}
	return nil
}
