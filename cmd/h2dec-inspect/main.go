// Command h2dec-inspect reads a raw capture of framed HTTP/2 bytes
// from stdin (no TLS, no preface magic, just the frame stream) and
// prints the decoded event sequence, one line per frame, using the
// decoder core directly. It exists so the library has a runnable
// consumer, the same way small main.go front-ends ship under demo/ and
// examples/ next to the library itself.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/arlobridge/h2dec"
)

type printingListener struct {
	out io.Writer
}

func (l *printingListener) OnDataRead(streamID uint32, data []byte, padded bool, endOfStream bool) (int, error) {
	fmt.Fprintf(l.out, "DATA stream=%d bytes=%d end_stream=%v\n", streamID, len(data), endOfStream)
	return len(data), nil
}

func (l *printingListener) OnHeadersRead(streamID uint32, headerBlock []byte, priority *h2dec.Priority, endOfStream bool) error {
	fmt.Fprintf(l.out, "HEADERS stream=%d block_len=%d end_stream=%v\n", streamID, len(headerBlock), endOfStream)
	return nil
}

func (l *printingListener) OnPriorityRead(streamID uint32, priority h2dec.Priority) error {
	fmt.Fprintf(l.out, "PRIORITY stream=%d dep=%d weight=%d exclusive=%v\n",
		streamID, priority.StreamDependency, priority.Weight, priority.Exclusive)
	return nil
}

func (l *printingListener) OnRstStreamRead(streamID uint32, code h2dec.ErrorCode) error {
	fmt.Fprintf(l.out, "RST_STREAM stream=%d code=%s\n", streamID, code)
	return nil
}

func (l *printingListener) OnSettingsRead(settings map[uint16]uint32) error {
	fmt.Fprintf(l.out, "SETTINGS params=%d\n", len(settings))
	return nil
}

func (l *printingListener) OnSettingsAckRead() error {
	fmt.Fprintln(l.out, "SETTINGS ack")
	return nil
}

func (l *printingListener) OnPingRead(data [8]byte, ack bool) error {
	fmt.Fprintf(l.out, "PING ack=%v\n", ack)
	return nil
}

func (l *printingListener) OnPushPromiseRead(streamID, promisedStreamID uint32, headerBlock []byte) error {
	fmt.Fprintf(l.out, "PUSH_PROMISE stream=%d promised=%d\n", streamID, promisedStreamID)
	return nil
}

func (l *printingListener) OnGoAwayRead(lastStreamID uint32, code h2dec.ErrorCode, debugData []byte) error {
	fmt.Fprintf(l.out, "GOAWAY last=%d code=%s\n", lastStreamID, code)
	return nil
}

func (l *printingListener) OnWindowUpdateRead(streamID uint32, increment uint32) error {
	fmt.Fprintf(l.out, "WINDOW_UPDATE stream=%d inc=%d\n", streamID, increment)
	return nil
}

func (l *printingListener) OnUnknownFrameRead(frameType uint8, streamID uint32, flags uint8, payload []byte) error {
	fmt.Fprintf(l.out, "UNKNOWN type=%d stream=%d len=%d\n", frameType, streamID, len(payload))
	return nil
}

func main() {
	conn := h2dec.NewConnection(false, true)

	br := bufio.NewReader(os.Stdin)
	bw := bufio.NewWriter(io.Discard)

	dec, err := h2dec.NewDecoder(h2dec.DecoderConfig{
		Connection:       conn,
		LifecycleManager: h2dec.NewNoopLifecycleManager(),
		Encoder:          h2dec.NewWireEncoder(bw),
		FrameReader:      h2dec.NewStreamFrameReader(br),
		Listener:         &printingListener{out: os.Stdout},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "h2dec-inspect:", err)
		os.Exit(1)
	}

	ctx := context.Background()

	for {
		if err := dec.DecodeFrame(ctx); err != nil {
			if err == io.EOF {
				return
			}
			fmt.Fprintln(os.Stderr, "h2dec-inspect:", err)
			os.Exit(1)
		}
	}
}
