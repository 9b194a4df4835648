package h2dec

import "github.com/arlobridge/h2dec/h2hpack"

// Default values for SETTINGS parameters, per RFC 7540 §6.5.2, used to
// seed a fresh Endpoint before any SETTINGS frame has been exchanged.
const (
	DefaultHeaderTableSize   = 4096
	DefaultInitialWindowSize = 1<<16 - 1 // 65535
	DefaultMaxFrameSize      = 1 << 14
)

// Endpoint is one direction's view of the connection: the policy
// values it has advertised (or had advertised to it) via SETTINGS, and
// the registry of streams it has opened.
//
// A Connection holds two Endpoints, local and remote, because each
// side's SETTINGS govern the OTHER side's behavior (RFC 7540 §6.5):
// the flow-control window a peer may use is the window *I* advertised.
type Endpoint struct {
	streams *StreamRegistry

	headerTableSize   uint32
	initialWindowSize uint32
	maxFrameSize      uint32
	maxConcurrentStreams uint32 // 0 means unbounded
	allowPush         bool

	openStreamCount uint32

	hpack *h2hpack.Table
}

func newEndpoint(allowPush bool) *Endpoint {
	return &Endpoint{
		streams:           newStreamRegistry(),
		headerTableSize:   DefaultHeaderTableSize,
		initialWindowSize: DefaultInitialWindowSize,
		maxFrameSize:      DefaultMaxFrameSize,
		allowPush:         allowPush,
	}
}

func (e *Endpoint) Streams() *StreamRegistry { return e.streams }

func (e *Endpoint) HeaderTableSize() uint32 { return e.headerTableSize }

func (e *Endpoint) InitialWindowSize() uint32 { return e.initialWindowSize }

func (e *Endpoint) MaxFrameSize() uint32 { return e.maxFrameSize }

func (e *Endpoint) MaxConcurrentStreams() uint32 { return e.maxConcurrentStreams }

func (e *Endpoint) AllowPush() bool { return e.allowPush }

func (e *Endpoint) OpenStreamCount() uint32 { return e.openStreamCount }

// HPACKTable lazily builds this endpoint's header-table configuration,
// sized at whatever HeaderTableSize currently holds. The decoder core
// uses the local endpoint's table only to decode a PUSH_PROMISE's
// :authority/:method for the verifier; every other header block is
// handed to the listener undecoded.
func (e *Endpoint) HPACKTable() *h2hpack.Table {
	if e.hpack == nil {
		e.hpack = h2hpack.NewTable(e.headerTableSize, nil)
	}
	return e.hpack
}

// atConcurrencyLimit reports whether accepting one more remote stream
// would exceed SETTINGS_MAX_CONCURRENT_STREAMS.
func (e *Endpoint) atConcurrencyLimit() bool {
	return e.maxConcurrentStreams != 0 && e.openStreamCount >= e.maxConcurrentStreams
}

// Connection is the connection-scoped state shared by every frame
// dispatch: the two endpoints' negotiated policy and each direction's
// GOAWAY latch.
//
// Local is this decoder's own advertised policy (what the remote peer
// must obey); the decoder updates it when the peer acknowledges a
// SETTINGS frame this side sent. Remote holds the streams the peer
// opens or reserves, together with the max-concurrent-streams bound
// this side's own acknowledged SETTINGS impose on them; the decoder
// creates and transitions those streams as inbound frames arrive.
type Connection struct {
	Local  *Endpoint
	Remote *Endpoint

	goAwaySent        bool
	goAwayReceived    bool
	lastStreamIDSent  uint32
	lastStreamIDRecvd uint32
}

// NewConnection builds a Connection with both endpoints seeded at the
// RFC 7540 defaults. localAllowsPush/remoteAllowsPush set the initial
// SETTINGS_ENABLE_PUSH each side assumes before any SETTINGS exchange.
func NewConnection(localAllowsPush, remoteAllowsPush bool) *Connection {
	return &Connection{
		Local:  newEndpoint(localAllowsPush),
		Remote: newEndpoint(remoteAllowsPush),
	}
}

func (c *Connection) GoAwaySent() bool     { return c.goAwaySent }
func (c *Connection) GoAwayReceived() bool { return c.goAwayReceived }

func (c *Connection) markGoAwaySent(lastStreamID uint32) {
	c.goAwaySent = true
	c.lastStreamIDSent = lastStreamID
}

func (c *Connection) markGoAwayReceived(lastStreamID uint32) {
	c.goAwayReceived = true
	c.lastStreamIDRecvd = lastStreamID
}
