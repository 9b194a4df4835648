package h2frame

import "github.com/arlobridge/h2dec/h2utils"

var (
	_ Frame            = (*Headers)(nil)
	_ FrameWithHeaders = (*Headers)(nil)
)

// DefaultPriorityWeight is applied when a short-form HEADERS (no
// PRIORITY flag) is treated as carrying an implicit priority triple.
const DefaultPriorityWeight = 16

// Headers is a HEADERS frame, optionally carrying the PRIORITY fields.
//
// https://tools.ietf.org/html/rfc7540#section-6.2
type Headers struct {
	padded      bool
	hasPriority bool
	streamDep   uint32
	exclusive   bool
	weight      uint8
	endStream   bool
	endHeaders  bool
	rawHeaders  []byte
}

func (h *Headers) Type() FrameType { return FrameHeaders }

func (h *Headers) Reset() {
	h.padded = false
	h.hasPriority = false
	h.streamDep = 0
	h.exclusive = false
	h.weight = 0
	h.endStream = false
	h.endHeaders = false
	h.rawHeaders = h.rawHeaders[:0]
}

func (h *Headers) Headers() []byte        { return h.rawHeaders }
func (h *Headers) SetHeaders(b []byte)    { h.rawHeaders = append(h.rawHeaders[:0], b...) }
func (h *Headers) AppendHeaders(b []byte) { h.rawHeaders = append(h.rawHeaders, b...) }

func (h *Headers) EndStream() bool     { return h.endStream }
func (h *Headers) SetEndStream(v bool) { h.endStream = v }
func (h *Headers) EndHeaders() bool    { return h.endHeaders }
func (h *Headers) SetEndHeaders(v bool) { h.endHeaders = v }
func (h *Headers) Padded() bool        { return h.padded }
func (h *Headers) SetPadded(v bool)    { h.padded = v }

func (h *Headers) HasPriority() bool     { return h.hasPriority }
func (h *Headers) StreamDependency() uint32 { return h.streamDep }
func (h *Headers) Exclusive() bool       { return h.exclusive }
func (h *Headers) Weight() uint8         { return h.weight }

func (h *Headers) SetPriority(streamDep uint32, weight uint8, exclusive bool) {
	h.hasPriority = true
	h.streamDep = streamDep & (1<<31 - 1)
	h.weight = weight
	h.exclusive = exclusive
}

func (h *Headers) Deserialize(frh *FrameHeader) error {
	flags := frh.Flags()
	payload := frh.payload

	if flags.Has(FlagPadded) {
		var err error
		payload, err = h2utils.CutPadding(payload, frh.Len())
		if err != nil {
			return err
		}
		h.padded = true
	}

	if flags.Has(FlagPriority) {
		if len(payload) < 5 {
			return ErrMissingBytes
		}
		raw := h2utils.BytesToUint32(payload)
		h.exclusive = raw&(1<<31) != 0
		h.streamDep = raw & (1<<31 - 1)
		h.weight = payload[4]
		h.hasPriority = true
		payload = payload[5:]
	}

	h.endStream = flags.Has(FlagEndStream)
	h.endHeaders = flags.Has(FlagEndHeaders)
	h.rawHeaders = append(h.rawHeaders[:0], payload...)

	return nil
}

func (h *Headers) Serialize(frh *FrameHeader) {
	if h.endStream {
		frh.SetFlags(frh.Flags().Add(FlagEndStream))
	}
	if h.endHeaders {
		frh.SetFlags(frh.Flags().Add(FlagEndHeaders))
	}

	payload := append([]byte(nil), h.rawHeaders...)

	if h.hasPriority {
		frh.SetFlags(frh.Flags().Add(FlagPriority))

		dep := h.streamDep
		if h.exclusive {
			dep |= 1 << 31
		}

		prefix := make([]byte, 5)
		h2utils.Uint32ToBytes(prefix, dep)
		prefix[4] = h.weight

		payload = append(prefix, payload...)
	}

	if h.padded {
		frh.SetFlags(frh.Flags().Add(FlagPadded))
		payload = h2utils.AddPadding(payload)
	}

	frh.setPayload(payload)
}
