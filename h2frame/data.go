package h2frame

import "github.com/arlobridge/h2dec/h2utils"

var _ Frame = (*Data)(nil)

// Data is a DATA frame: application payload plus the stream's end flag.
//
// https://tools.ietf.org/html/rfc7540#section-6.1
type Data struct {
	endStream bool
	padded    bool
	padLen    int
	b         []byte
}

func (d *Data) Type() FrameType { return FrameData }

func (d *Data) Reset() {
	d.endStream = false
	d.padded = false
	d.padLen = 0
	d.b = d.b[:0]
}

func (d *Data) EndStream() bool        { return d.endStream }
func (d *Data) SetEndStream(v bool)    { d.endStream = v }
func (d *Data) Data() []byte           { return d.b }
func (d *Data) SetData(b []byte)       { d.b = append(d.b[:0], b...) }
func (d *Data) Padded() bool           { return d.padded }
func (d *Data) SetPadded(v bool)       { d.padded = v }
func (d *Data) Len() int               { return len(d.b) }

func (d *Data) Deserialize(frh *FrameHeader) error {
	payload := frh.payload

	d.padded = frh.Flags().Has(FlagPadded)
	if d.padded {
		var err error
		payload, err = h2utils.CutPadding(payload, frh.Len())
		if err != nil {
			return err
		}
	}

	d.endStream = frh.Flags().Has(FlagEndStream)
	d.b = append(d.b[:0], payload...)

	return nil
}

func (d *Data) Serialize(frh *FrameHeader) {
	if d.endStream {
		frh.SetFlags(frh.Flags().Add(FlagEndStream))
	}
	if d.padded {
		frh.SetFlags(frh.Flags().Add(FlagPadded))
		frh.setPayload(h2utils.AddPadding(d.b))
		return
	}
	frh.setPayload(d.b)
}
