package h2frame

import "github.com/arlobridge/h2dec/h2utils"

var (
	_ Frame            = (*PushPromise)(nil)
	_ FrameWithHeaders = (*PushPromise)(nil)
)

// PushPromise announces a server-initiated stream.
//
// https://tools.ietf.org/html/rfc7540#section-6.6
type PushPromise struct {
	padded       bool
	endHeaders   bool
	promisedID   uint32
	rawHeaders   []byte
}

func (pp *PushPromise) Type() FrameType { return FramePushPromise }

func (pp *PushPromise) Reset() {
	pp.padded = false
	pp.endHeaders = false
	pp.promisedID = 0
	pp.rawHeaders = pp.rawHeaders[:0]
}

func (pp *PushPromise) PromisedStreamID() uint32   { return pp.promisedID }
func (pp *PushPromise) SetPromisedStreamID(s uint32) { pp.promisedID = s & (1<<31 - 1) }
func (pp *PushPromise) EndHeaders() bool           { return pp.endHeaders }
func (pp *PushPromise) SetEndHeaders(v bool)       { pp.endHeaders = v }
func (pp *PushPromise) Headers() []byte            { return pp.rawHeaders }
func (pp *PushPromise) SetHeaders(b []byte)        { pp.rawHeaders = append(pp.rawHeaders[:0], b...) }

func (pp *PushPromise) Deserialize(frh *FrameHeader) error {
	payload := frh.payload

	if frh.Flags().Has(FlagPadded) {
		var err error
		payload, err = h2utils.CutPadding(payload, frh.Len())
		if err != nil {
			return err
		}
		pp.padded = true
	}

	if len(payload) < 4 {
		return ErrMissingBytes
	}

	pp.promisedID = h2utils.BytesToStreamID(payload)
	pp.rawHeaders = append(pp.rawHeaders[:0], payload[4:]...)
	pp.endHeaders = frh.Flags().Has(FlagEndHeaders)

	return nil
}

func (pp *PushPromise) Serialize(frh *FrameHeader) {
	if pp.endHeaders {
		frh.SetFlags(frh.Flags().Add(FlagEndHeaders))
	}

	payload := h2utils.AppendUint32Bytes(nil, pp.promisedID)
	payload = append(payload, pp.rawHeaders...)

	if pp.padded {
		frh.SetFlags(frh.Flags().Add(FlagPadded))
		payload = h2utils.AddPadding(payload)
	}

	frh.setPayload(payload)
}
