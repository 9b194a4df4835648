package h2frame

import "sync"

var (
	dataPool         = sync.Pool{New: func() interface{} { return &Data{} }}
	headersPool      = sync.Pool{New: func() interface{} { return &Headers{} }}
	priorityPool     = sync.Pool{New: func() interface{} { return &Priority{} }}
	rstStreamPool    = sync.Pool{New: func() interface{} { return &RstStream{} }}
	settingsPool     = sync.Pool{New: func() interface{} { return &Settings{} }}
	pushPromisePool  = sync.Pool{New: func() interface{} { return &PushPromise{} }}
	pingPool         = sync.Pool{New: func() interface{} { return &Ping{} }}
	goAwayPool       = sync.Pool{New: func() interface{} { return &GoAway{} }}
	windowUpdatePool = sync.Pool{New: func() interface{} { return &WindowUpdate{} }}
	continuationPool = sync.Pool{New: func() interface{} { return &Continuation{} }}
	unknownPool      = sync.Pool{New: func() interface{} { return &Unknown{} }}
)

// AcquireFrame returns a pooled Frame body for kind, reset and ready to use.
func AcquireFrame(kind FrameType) Frame {
	var fr Frame

	switch kind {
	case FrameData:
		fr = dataPool.Get().(*Data)
	case FrameHeaders:
		fr = headersPool.Get().(*Headers)
	case FramePriority:
		fr = priorityPool.Get().(*Priority)
	case FrameResetStream:
		fr = rstStreamPool.Get().(*RstStream)
	case FrameSettings:
		fr = settingsPool.Get().(*Settings)
	case FramePushPromise:
		fr = pushPromisePool.Get().(*PushPromise)
	case FramePing:
		fr = pingPool.Get().(*Ping)
	case FrameGoAway:
		fr = goAwayPool.Get().(*GoAway)
	case FrameWindowUpdate:
		fr = windowUpdatePool.Get().(*WindowUpdate)
	case FrameContinuation:
		fr = continuationPool.Get().(*Continuation)
	default:
		fr = unknownPool.Get().(*Unknown)
		fr.(*Unknown).kind = kind
	}

	fr.Reset()
	return fr
}

// ReleaseFrame returns fr to its pool.
func ReleaseFrame(fr Frame) {
	switch v := fr.(type) {
	case *Data:
		dataPool.Put(v)
	case *Headers:
		headersPool.Put(v)
	case *Priority:
		priorityPool.Put(v)
	case *RstStream:
		rstStreamPool.Put(v)
	case *Settings:
		settingsPool.Put(v)
	case *PushPromise:
		pushPromisePool.Put(v)
	case *Ping:
		pingPool.Put(v)
	case *GoAway:
		goAwayPool.Put(v)
	case *WindowUpdate:
		windowUpdatePool.Put(v)
	case *Continuation:
		continuationPool.Put(v)
	case *Unknown:
		unknownPool.Put(v)
	}
}
