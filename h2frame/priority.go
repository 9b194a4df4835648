package h2frame

import "github.com/arlobridge/h2dec/h2utils"

var _ Frame = (*Priority)(nil)

// Priority carries the dependency/weight/exclusive triple.
//
// https://tools.ietf.org/html/rfc7540#section-6.3
type Priority struct {
	streamDep uint32
	exclusive bool
	weight    uint8
}

func (p *Priority) Type() FrameType { return FramePriority }

func (p *Priority) Reset() {
	p.streamDep = 0
	p.exclusive = false
	p.weight = 0
}

func (p *Priority) StreamDependency() uint32 { return p.streamDep }
func (p *Priority) Exclusive() bool          { return p.exclusive }
func (p *Priority) Weight() uint8            { return p.weight }

func (p *Priority) SetPriority(streamDep uint32, weight uint8, exclusive bool) {
	p.streamDep = streamDep & (1<<31 - 1)
	p.weight = weight
	p.exclusive = exclusive
}

func (p *Priority) Deserialize(frh *FrameHeader) error {
	payload := frh.payload
	if len(payload) < 5 {
		return ErrMissingBytes
	}

	raw := h2utils.BytesToUint32(payload)
	p.exclusive = raw&(1<<31) != 0
	p.streamDep = raw & (1<<31 - 1)
	p.weight = payload[4]

	return nil
}

func (p *Priority) Serialize(frh *FrameHeader) {
	dep := p.streamDep
	if p.exclusive {
		dep |= 1 << 31
	}

	payload := h2utils.AppendUint32Bytes(nil, dep)
	payload = append(payload, p.weight)

	frh.setPayload(payload)
}
