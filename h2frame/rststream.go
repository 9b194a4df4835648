package h2frame

import "github.com/arlobridge/h2dec/h2utils"

var _ Frame = (*RstStream)(nil)

// RstStream aborts a stream.
//
// https://tools.ietf.org/html/rfc7540#section-6.4
type RstStream struct {
	code uint32
}

func (r *RstStream) Type() FrameType { return FrameResetStream }
func (r *RstStream) Reset()          { r.code = 0 }
func (r *RstStream) Code() uint32    { return r.code }
func (r *RstStream) SetCode(c uint32) { r.code = c }

func (r *RstStream) Deserialize(frh *FrameHeader) error {
	if len(frh.payload) < 4 {
		return ErrMissingBytes
	}
	r.code = h2utils.BytesToUint32(frh.payload)
	return nil
}

func (r *RstStream) Serialize(frh *FrameHeader) {
	frh.setPayload(h2utils.AppendUint32Bytes(nil, r.code))
}
