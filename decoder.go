// Package h2dec implements the inbound HTTP/2 connection decoder
// core: preface gating, per-frame validation and dispatch, stream
// state transitions, inbound flow-control accounting, and SETTINGS
// coordination. Raw byte parsing, HPACK, the outbound encoder, and
// stream lifecycle teardown are all external collaborators consumed
// through the interfaces in this package.
package h2dec

import (
	"context"
	"fmt"

	"github.com/arlobridge/h2dec/h2frame"
)

// DispatchMode is the decoder's one bit of private mode state (§3):
// AwaitingPreface until the first SETTINGS frame is accepted, Running
// forever after. The transition is one-way.
type DispatchMode uint8

const (
	AwaitingPreface DispatchMode = iota
	Running
)

func (m DispatchMode) String() string {
	if m == Running {
		return "Running"
	}
	return "AwaitingPreface"
}

// Decoder is the connection-scoped decoder core. One Decoder per
// connection; not safe for concurrent use (§5: single-threaded,
// non-reentrant, driven by a serial event source).
type Decoder struct {
	conn     *Connection
	isServer bool
	life     LifecycleManager
	enc      Encoder
	rd       FrameReader
	lis      FrameListener
	verif    PromisedRequestVerifier
	flow     InboundFlowController
	log      interface {
		Printf(string, ...interface{})
	}

	mode DispatchMode
}

// NewDecoder builds a Decoder from cfg, filling zero fields with
// cfg.defaults(). Returns a connection error if a required
// collaborator is missing.
func NewDecoder(cfg DecoderConfig) (*Decoder, error) {
	if err := cfg.defaults(); err != nil {
		return nil, err
	}

	return &Decoder{
		conn:     cfg.Connection,
		isServer: cfg.IsServer,
		life:     cfg.LifecycleManager,
		enc:      cfg.Encoder,
		rd:       cfg.FrameReader,
		lis:      cfg.Listener,
		verif:    cfg.RequestVerifier,
		flow:     cfg.FlowController,
		log:      cfg.Logger,
		mode:     AwaitingPreface,
	}, nil
}

func (d *Decoder) PrefaceReceived() bool { return d.mode == Running }

func (d *Decoder) Connection() *Connection { return d.conn }

func (d *Decoder) Listener() FrameListener { return d.lis }

func (d *Decoder) FlowControllerRef() InboundFlowController { return d.flow }

// Close releases the frame reader's resources. The decoder core owns
// no transport I/O itself: Close calls the FrameReader's own
// Close() error method when it has one, and otherwise does nothing.
func (d *Decoder) Close() error {
	if c, ok := d.rd.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// LocalSettingsSnapshot is the assembled view returned by
// LocalSettings(): the decoder's current inbound policy.
type LocalSettingsSnapshot struct {
	HeaderTableSize      uint32
	InitialWindowSize    uint32
	MaxFrameSize         uint32
	MaxConcurrentStreams uint32
	EnablePush           bool
}

// LocalSettings assembles a snapshot from the header-table and
// frame-size policy, the flow controller's initial window, and the
// remote endpoint's max-active-streams bound (§6).
func (d *Decoder) LocalSettings() LocalSettingsSnapshot {
	return LocalSettingsSnapshot{
		HeaderTableSize:      d.conn.Local.HeaderTableSize(),
		InitialWindowSize:    d.flow.InitialWindowSize(),
		MaxFrameSize:         d.conn.Local.MaxFrameSize(),
		MaxConcurrentStreams: d.conn.Remote.MaxConcurrentStreams(),
		EnablePush:           d.conn.Local.AllowPush(),
	}
}

// ApplyLocalSettings applies the non-absent fields of s to the
// decoder's own advertised (local) policy, subject to the same
// PUSH_ENABLE-on-a-server check the SETTINGS-ack path performs.
// Fields use pointers so "absent" is distinguishable from "set to
// zero".
type LocalSettingsUpdate struct {
	HeaderTableSize      *uint32
	InitialWindowSize    *uint32
	MaxFrameSize         *uint32
	MaxConcurrentStreams *uint32
	EnablePush           *bool
}

func (d *Decoder) ApplyLocalSettings(isServer bool, s LocalSettingsUpdate) error {
	if isServer && s.EnablePush != nil {
		return NewConnError(ProtocolError, "server SETTINGS may not carry ENABLE_PUSH")
	}
	if s.HeaderTableSize != nil {
		d.conn.Local.headerTableSize = *s.HeaderTableSize
		if d.conn.Local.hpack != nil {
			d.conn.Local.hpack.SetMaxDynamicTableSize(*s.HeaderTableSize)
		}
	}
	if s.InitialWindowSize != nil {
		if err := d.flow.SetInitialWindowSize(*s.InitialWindowSize); err != nil {
			return err
		}
		d.conn.Local.initialWindowSize = *s.InitialWindowSize
	}
	if s.MaxFrameSize != nil {
		d.conn.Local.maxFrameSize = *s.MaxFrameSize
	}
	if s.MaxConcurrentStreams != nil {
		d.conn.Remote.maxConcurrentStreams = *s.MaxConcurrentStreams
	}
	if s.EnablePush != nil {
		d.conn.Local.allowPush = *s.EnablePush
	}
	return nil
}

// DecodeFrame drives one iteration of the reader: it reads the next
// frame and dispatches it through the preface gate or, once past it,
// straight through the running dispatch core.
func (d *Decoder) DecodeFrame(ctx context.Context) error {
	frh, err := d.rd.ReadFrame(d.conn.Local.MaxFrameSize())
	if err != nil {
		return err
	}
	defer h2frame.ReleaseFrameHeader(frh)

	return d.dispatch(ctx, frh)
}

func (d *Decoder) dispatch(ctx context.Context, frh *h2frame.FrameHeader) error {
	if d.mode == AwaitingPreface {
		return d.dispatchPreface(ctx, frh)
	}
	return d.dispatchRunning(ctx, frh)
}

// dispatchPreface implements §4.1: the first frame must be SETTINGS,
// except that GOAWAY and UNKNOWN are tolerated unconditionally. The
// mode flips to Running synchronously, before the SETTINGS frame is
// handed to the running dispatcher, so any nested callback observes
// PrefaceReceived() == true.
func (d *Decoder) dispatchPreface(ctx context.Context, frh *h2frame.FrameHeader) error {
	switch frh.Type() {
	case h2frame.FrameSettings:
		st := frh.Body().(*h2frame.Settings)
		if !st.IsAck() {
			d.mode = Running
		}
		return d.dispatchRunning(ctx, frh)
	case h2frame.FrameGoAway:
		return d.handleGoAway(ctx, frh)
	default:
		if frh.Type() > 0x9 {
			return d.handleUnknown(ctx, frh)
		}
	}
	return NewConnError(ProtocolError, fmt.Sprintf("first frame must be SETTINGS, got %s", frh.Type()))
}

func (d *Decoder) dispatchRunning(ctx context.Context, frh *h2frame.FrameHeader) error {
	switch frh.Type() {
	case h2frame.FrameData:
		return d.handleData(ctx, frh)
	case h2frame.FrameHeaders:
		return d.handleHeaders(ctx, frh)
	case h2frame.FramePriority:
		return d.handlePriority(ctx, frh)
	case h2frame.FrameResetStream:
		return d.handleRstStream(ctx, frh)
	case h2frame.FrameSettings:
		st := frh.Body().(*h2frame.Settings)
		if st.IsAck() {
			return d.handleSettingsAck(ctx)
		}
		return d.handleSettings(ctx, st)
	case h2frame.FramePushPromise:
		return d.handlePushPromise(ctx, frh)
	case h2frame.FramePing:
		return d.handlePing(ctx, frh)
	case h2frame.FrameGoAway:
		return d.handleGoAway(ctx, frh)
	case h2frame.FrameWindowUpdate:
		return d.handleWindowUpdate(ctx, frh)
	case h2frame.FrameContinuation:
		// CONTINUATION is delivered as a trailing fragment of the
		// preceding HEADERS/PUSH_PROMISE block; the frame reader
		// collaborator is responsible for folding it into rawHeaders
		// before this decoder ever sees a complete header block, so
		// there is nothing left for the dispatch core to do here but
		// tolerate it.
		return nil
	default:
		return d.handleUnknown(ctx, frh)
	}
}
