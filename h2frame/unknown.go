package h2frame

var _ Frame = (*Unknown)(nil)

// Unknown carries the raw payload of a frame type the protocol does not
// define. Per RFC 7540 §4.1, unknown frame types MUST be ignored, so the
// decoder core delivers them to the listener without validation.
type Unknown struct {
	kind    FrameType
	payload []byte
}

func (u *Unknown) Type() FrameType { return u.kind }

func (u *Unknown) Reset() {
	u.payload = u.payload[:0]
}

func (u *Unknown) Payload() []byte { return u.payload }

func (u *Unknown) Deserialize(frh *FrameHeader) error {
	u.kind = frh.Type()
	u.payload = append(u.payload[:0], frh.payload...)
	return nil
}

func (u *Unknown) Serialize(frh *FrameHeader) {
	frh.setPayload(u.payload)
}
