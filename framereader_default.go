package h2dec

import (
	"bufio"

	"github.com/arlobridge/h2dec/h2frame"
)

// streamFrameReader adapts an h2frame.ReadFrameFromWithSize call over
// a *bufio.Reader into the FrameReader interface.
type streamFrameReader struct {
	br *bufio.Reader
}

// NewStreamFrameReader builds the package's built-in FrameReader,
// reading frames directly off br.
func NewStreamFrameReader(br *bufio.Reader) FrameReader {
	return &streamFrameReader{br: br}
}

func (r *streamFrameReader) ReadFrame(maxFrameSize uint32) (*h2frame.FrameHeader, error) {
	return h2frame.ReadFrameFromWithSize(r.br, maxFrameSize)
}
