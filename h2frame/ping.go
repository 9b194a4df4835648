package h2frame

var _ Frame = (*Ping)(nil)

// Ping is a connection-level keepalive/RTT probe.
//
// https://tools.ietf.org/html/rfc7540#section-6.7
type Ping struct {
	ack  bool
	data [8]byte
}

func (p *Ping) Type() FrameType { return FramePing }
func (p *Ping) Reset()          { p.ack = false; p.data = [8]byte{} }
func (p *Ping) IsAck() bool     { return p.ack }
func (p *Ping) SetAck(v bool)   { p.ack = v }
func (p *Ping) Data() []byte    { return p.data[:] }

func (p *Ping) SetData(b []byte) {
	var d [8]byte
	copy(d[:], b)
	p.data = d
}

func (p *Ping) Deserialize(frh *FrameHeader) error {
	if len(frh.payload) < 8 {
		return ErrMissingBytes
	}
	p.ack = frh.Flags().Has(FlagAck)
	p.SetData(frh.payload)
	return nil
}

func (p *Ping) Serialize(frh *FrameHeader) {
	if p.ack {
		frh.SetFlags(frh.Flags().Add(FlagAck))
	}
	frh.setPayload(p.data[:])
}
