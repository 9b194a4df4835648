package h2frame

var (
	_ Frame            = (*Continuation)(nil)
	_ FrameWithHeaders = (*Continuation)(nil)
)

// Continuation carries header block fragments that didn't fit in the
// preceding HEADERS/PUSH_PROMISE frame.
//
// https://tools.ietf.org/html/rfc7540#section-6.10
type Continuation struct {
	endHeaders bool
	rawHeaders []byte
}

func (c *Continuation) Type() FrameType { return FrameContinuation }

func (c *Continuation) Reset() {
	c.endHeaders = false
	c.rawHeaders = c.rawHeaders[:0]
}

func (c *Continuation) Headers() []byte     { return c.rawHeaders }
func (c *Continuation) EndHeaders() bool    { return c.endHeaders }
func (c *Continuation) SetEndHeaders(v bool) { c.endHeaders = v }

func (c *Continuation) Deserialize(frh *FrameHeader) error {
	c.endHeaders = frh.Flags().Has(FlagEndHeaders)
	c.rawHeaders = append(c.rawHeaders[:0], frh.payload...)
	return nil
}

func (c *Continuation) Serialize(frh *FrameHeader) {
	if c.endHeaders {
		frh.SetFlags(frh.Flags().Add(FlagEndHeaders))
	}
	frh.setPayload(c.rawHeaders)
}
