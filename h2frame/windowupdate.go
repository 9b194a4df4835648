package h2frame

import "github.com/arlobridge/h2dec/h2utils"

var _ Frame = (*WindowUpdate)(nil)

// WindowUpdate increments a flow-control window.
//
// https://tools.ietf.org/html/rfc7540#section-6.9
type WindowUpdate struct {
	increment int32
}

func (w *WindowUpdate) Type() FrameType      { return FrameWindowUpdate }
func (w *WindowUpdate) Reset()               { w.increment = 0 }
func (w *WindowUpdate) Increment() int32     { return w.increment }
func (w *WindowUpdate) SetIncrement(n int32) { w.increment = n }

func (w *WindowUpdate) Deserialize(frh *FrameHeader) error {
	if len(frh.payload) < 4 {
		return ErrMissingBytes
	}
	w.increment = int32(h2utils.BytesToStreamID(frh.payload))
	return nil
}

func (w *WindowUpdate) Serialize(frh *FrameHeader) {
	frh.setPayload(h2utils.AppendUint32Bytes(nil, uint32(w.increment)))
}
