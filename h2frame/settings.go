package h2frame

import "github.com/arlobridge/h2dec/h2utils"

var _ Frame = (*Settings)(nil)

// Settings parameter identifiers.
//
// https://httpwg.org/specs/rfc7540.html#SettingValues
const (
	SettingHeaderTableSize      uint16 = 0x1
	SettingEnablePush           uint16 = 0x2
	SettingMaxConcurrentStreams uint16 = 0x3
	SettingInitialWindowSize    uint16 = 0x4
	SettingMaxFrameSize         uint16 = 0x5
	SettingMaxHeaderListSize    uint16 = 0x6
)

// Param is a single SETTINGS key/value pair, preserving wire order
// (the decoder core applies parameters in the order they arrive).
type Param struct {
	ID    uint16
	Value uint32
}

// Settings is the SETTINGS frame: either a list of parameters, or (if
// Ack) an empty acknowledgement.
//
// https://tools.ietf.org/html/rfc7540#section-6.5
type Settings struct {
	ack    bool
	params []Param
}

func (s *Settings) Type() FrameType { return FrameSettings }

func (s *Settings) Reset() {
	s.ack = false
	s.params = s.params[:0]
}

func (s *Settings) IsAck() bool   { return s.ack }
func (s *Settings) SetAck(v bool) { s.ack = v }
func (s *Settings) Params() []Param { return s.params }

func (s *Settings) Add(id uint16, value uint32) {
	s.params = append(s.params, Param{ID: id, Value: value})
}

// CopyTo deep-copies s into dst, used when a decoder keeps the settings
// payload around after the originating FrameHeader has been released
// back into the pool.
func (s *Settings) CopyTo(dst *Settings) {
	dst.ack = s.ack
	dst.params = append(dst.params[:0], s.params...)
}

func (s *Settings) Deserialize(frh *FrameHeader) error {
	s.ack = frh.Flags().Has(FlagAck)

	payload := frh.payload
	if s.ack {
		if len(payload) != 0 {
			return ErrPayloadExceeds
		}
		return nil
	}

	if len(payload)%6 != 0 {
		return ErrMissingBytes
	}

	for i := 0; i+6 <= len(payload); i += 6 {
		id := uint16(payload[i])<<8 | uint16(payload[i+1])
		value := h2utils.BytesToUint32(payload[i+2 : i+6])
		s.Add(id, value)
	}

	return nil
}

func (s *Settings) Serialize(frh *FrameHeader) {
	if s.ack {
		frh.SetFlags(frh.Flags().Add(FlagAck))
		frh.setPayload(nil)
		return
	}

	payload := make([]byte, 0, len(s.params)*6)
	for _, p := range s.params {
		payload = append(payload, byte(p.ID>>8), byte(p.ID))
		payload = h2utils.AppendUint32Bytes(payload, p.Value)
	}

	frh.setPayload(payload)
}
