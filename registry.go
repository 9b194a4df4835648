package h2dec

import "sort"

// StreamRegistry tracks every stream id a connection endpoint has ever
// seen, sorted by id the way the Streams type keeps its slice sorted
// for binary search.
type StreamRegistry struct {
	list        []*Stream
	lastCreated uint32
}

func newStreamRegistry() *StreamRegistry {
	return &StreamRegistry{}
}

func (r *StreamRegistry) search(id uint32) int {
	return sort.Search(len(r.list), func(i int) bool {
		return r.list[i].id >= id
	})
}

// lookup returns the stream with id, or nil if it was never created.
func (r *StreamRegistry) lookup(id uint32) *Stream {
	i := r.search(id)
	if i < len(r.list) && r.list[i].id == id {
		return r.list[i]
	}
	return nil
}

func (r *StreamRegistry) insert(s *Stream) {
	i := r.search(s.id)
	if i == len(r.list) {
		r.list = append(r.list, s)
		return
	}
	r.list = append(r.list, nil)
	copy(r.list[i+1:], r.list[i:])
	r.list[i] = s
}

func (r *StreamRegistry) remove(id uint32) *Stream {
	i := r.search(id)
	if i < len(r.list) && r.list[i].id == id {
		s := r.list[i]
		r.list = append(r.list[:i], r.list[i+1:]...)
		return s
	}
	return nil
}

// lastStreamCreated is the highest-numbered stream id ever created
// through this registry. shouldIgnore compares it with a frame's
// stream id once this side has sent GOAWAY.
func (r *StreamRegistry) lastStreamCreated() uint32 {
	return r.lastCreated
}

// createRemoteStream creates and registers a new stream opened by the
// remote peer (odd-numbered on a server, even-numbered on a client),
// returning a ClosedStreamCreationError if id is at or below a
// previously seen id: the remote is trying to reopen a stream number
// that can never legally recur.
func (r *StreamRegistry) createRemoteStream(id uint32) (*Stream, error) {
	if id <= r.lastCreated && r.lastCreated != 0 {
		return nil, &ClosedStreamCreationError{StreamID: id}
	}
	s := newStream(id)
	s.setState(StreamOpen)
	r.insert(s)
	r.lastCreated = id
	return s, nil
}

// reservePushStream registers a push stream id in RESERVED_REMOTE
// state: the remote peer is promising it via PUSH_PROMISE, so from
// this decoder's side it is the peer's half that is open first.
func (r *StreamRegistry) reservePushStream(id uint32) (*Stream, error) {
	if id <= r.lastCreated && r.lastCreated != 0 {
		return nil, &ClosedStreamCreationError{StreamID: id}
	}
	s := newStream(id)
	s.setState(StreamReservedRemote)
	r.insert(s)
	r.lastCreated = id
	return s, nil
}

// getOrCreateIdle returns the stream for id, implicitly creating it in
// IDLE state if no frame has ever referenced it yet. Unlike
// createRemoteStream it neither checks nor advances lastCreated; the
// PRIORITY handler does not use it (it creates streams through
// createRemoteStream and then moves them to IDLE).
func (r *StreamRegistry) getOrCreateIdle(id uint32) *Stream {
	if s := r.lookup(id); s != nil {
		return s
	}
	s := newStream(id)
	r.insert(s)
	return s
}
