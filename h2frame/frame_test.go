package h2frame

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAndRead(t *testing.T, frh *FrameHeader) *FrameHeader {
	t.Helper()

	buf := &bytes.Buffer{}
	bw := bufio.NewWriter(buf)

	_, err := frh.WriteTo(bw)
	require.NoError(t, err)
	require.NoError(t, bw.Flush())

	br := bufio.NewReader(buf)
	out, err := ReadFrameFrom(br)
	require.NoError(t, err)

	return out
}

func TestDataFrameRoundTrip(t *testing.T) {
	d := AcquireFrame(FrameData).(*Data)
	d.SetData([]byte("make h2dec great again"))
	d.SetEndStream(true)

	frh := AcquireFrameHeader()
	frh.SetStream(3)
	frh.SetBody(d)

	out := writeAndRead(t, frh)
	defer ReleaseFrameHeader(out)

	assert.Equal(t, FrameData, out.Type())
	assert.Equal(t, uint32(3), out.Stream())

	got := out.Body().(*Data)
	assert.Equal(t, "make h2dec great again", string(got.Data()))
	assert.True(t, got.EndStream())
}

func TestHeadersFrameWithPriorityRoundTrip(t *testing.T) {
	h := AcquireFrame(FrameHeaders).(*Headers)
	h.SetHeaders([]byte("raw-header-block"))
	h.SetEndHeaders(true)
	h.SetPriority(5, 200, true)

	frh := AcquireFrameHeader()
	frh.SetStream(1)
	frh.SetBody(h)

	out := writeAndRead(t, frh)
	defer ReleaseFrameHeader(out)

	got := out.Body().(*Headers)
	assert.True(t, got.HasPriority())
	assert.Equal(t, uint32(5), got.StreamDependency())
	assert.Equal(t, uint8(200), got.Weight())
	assert.True(t, got.Exclusive())
	assert.Equal(t, "raw-header-block", string(got.Headers()))
}

func TestSettingsAckHasEmptyPayload(t *testing.T) {
	st := AcquireFrame(FrameSettings).(*Settings)
	st.SetAck(true)

	frh := AcquireFrameHeader()
	frh.SetBody(st)

	out := writeAndRead(t, frh)
	defer ReleaseFrameHeader(out)

	got := out.Body().(*Settings)
	assert.True(t, got.IsAck())
	assert.Empty(t, got.Params())
}

func TestSettingsParamsPreserveWireOrder(t *testing.T) {
	st := AcquireFrame(FrameSettings).(*Settings)
	st.Add(SettingInitialWindowSize, 1000)
	st.Add(SettingHeaderTableSize, 2000)
	st.Add(SettingEnablePush, 0)

	frh := AcquireFrameHeader()
	frh.SetBody(st)

	out := writeAndRead(t, frh)
	defer ReleaseFrameHeader(out)

	got := out.Body().(*Settings)
	require.Len(t, got.Params(), 3)
	assert.Equal(t, SettingInitialWindowSize, got.Params()[0].ID)
	assert.Equal(t, SettingHeaderTableSize, got.Params()[1].ID)
	assert.Equal(t, SettingEnablePush, got.Params()[2].ID)
}

func TestUnknownFrameTypePassesThrough(t *testing.T) {
	buf := &bytes.Buffer{}
	bw := bufio.NewWriter(buf)

	frh := AcquireFrameHeader()
	u := AcquireFrame(FrameType(0x42)).(*Unknown)
	u.payload = append(u.payload[:0], []byte("opaque")...)
	frh.SetBody(u)
	frh.SetStream(0)

	_, err := frh.WriteTo(bw)
	require.NoError(t, err)
	require.NoError(t, bw.Flush())

	br := bufio.NewReader(buf)
	out, err := ReadFrameFrom(br)
	require.NoError(t, err)
	defer ReleaseFrameHeader(out)

	assert.Equal(t, FrameType(0x42), out.Type())
	got := out.Body().(*Unknown)
	assert.Equal(t, "opaque", string(got.Payload()))
}

func TestReadFrameFromWithSizeRejectsOversizedFrame(t *testing.T) {
	buf := &bytes.Buffer{}
	bw := bufio.NewWriter(buf)

	d := AcquireFrame(FrameData).(*Data)
	d.SetData(make([]byte, 100))

	frh := AcquireFrameHeader()
	frh.SetStream(1)
	frh.SetBody(d)

	_, err := frh.WriteTo(bw)
	require.NoError(t, err)
	require.NoError(t, bw.Flush())

	br := bufio.NewReader(buf)
	_, err = ReadFrameFromWithSize(br, 50)
	assert.ErrorIs(t, err, ErrPayloadExceeds)
}
