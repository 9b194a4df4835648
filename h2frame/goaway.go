package h2frame

import "github.com/arlobridge/h2dec/h2utils"

var _ Frame = (*GoAway)(nil)

// GoAway tells the peer the highest stream id it will continue to process.
//
// https://tools.ietf.org/html/rfc7540#section-6.8
type GoAway struct {
	lastStreamID uint32
	code         uint32
	data         []byte
}

func (g *GoAway) Type() FrameType { return FrameGoAway }

func (g *GoAway) Reset() {
	g.lastStreamID = 0
	g.code = 0
	g.data = g.data[:0]
}

func (g *GoAway) LastStreamID() uint32  { return g.lastStreamID }
func (g *GoAway) SetLastStreamID(s uint32) { g.lastStreamID = s & (1<<31 - 1) }
func (g *GoAway) Code() uint32          { return g.code }
func (g *GoAway) SetCode(c uint32)      { g.code = c }
func (g *GoAway) Data() []byte          { return g.data }
func (g *GoAway) SetData(b []byte)      { g.data = append(g.data[:0], b...) }

func (g *GoAway) Deserialize(frh *FrameHeader) error {
	if len(frh.payload) < 8 {
		return ErrMissingBytes
	}
	g.lastStreamID = h2utils.BytesToStreamID(frh.payload)
	g.code = h2utils.BytesToUint32(frh.payload[4:])
	if len(frh.payload) > 8 {
		g.data = append(g.data[:0], frh.payload[8:]...)
	}
	return nil
}

func (g *GoAway) Serialize(frh *FrameHeader) {
	payload := h2utils.AppendUint32Bytes(nil, g.lastStreamID)
	payload = h2utils.AppendUint32Bytes(payload, g.code)
	payload = append(payload, g.data...)
	frh.setPayload(payload)
}
