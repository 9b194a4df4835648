package h2utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint24RoundTrip(t *testing.T) {
	var b [3]byte
	Uint24ToBytes(b[:], 0xABCDEF)
	assert.Equal(t, uint32(0xABCDEF), BytesToUint24(b[:]))
}

func TestUint32RoundTrip(t *testing.T) {
	var b [4]byte
	Uint32ToBytes(b[:], 0xDEADBEEF)
	assert.Equal(t, uint32(0xDEADBEEF), BytesToUint32(b[:]))

	out := AppendUint32Bytes(nil, 0x01020304)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, out)
}

func TestBytesToStreamIDMasksReservedBit(t *testing.T) {
	b := AppendUint32Bytes(nil, 1<<31|5)
	assert.Equal(t, uint32(5), BytesToStreamID(b))
}

func TestResizeGrowsAndReuses(t *testing.T) {
	b := make([]byte, 0, 4)
	b = Resize(b, 2)
	assert.Len(t, b, 2)

	b2 := Resize(b, 10)
	assert.Len(t, b2, 10)
}

func TestCutPadding(t *testing.T) {
	payload := append([]byte{13}, []byte("8971293nfasv7asnrnqw9bma 237urkf8")...)

	p, err := CutPadding(payload, len(payload))
	require.NoError(t, err)
	assert.Equal(t, len(payload)-1-13, len(p))
}

func TestCutPaddingRejectsOverlongPadding(t *testing.T) {
	payload := []byte{250, 1, 2, 3}

	_, err := CutPadding(payload, len(payload))
	assert.Error(t, err)
}

func TestAddPaddingRoundTrip(t *testing.T) {
	data := []byte("hello world")
	padded := AddPadding(data)

	assert.Greater(t, len(padded), len(data))

	unpadded, err := CutPadding(padded, len(padded))
	require.NoError(t, err)
	assert.Equal(t, data, unpadded)
}

func TestFastStringBytesRoundTrip(t *testing.T) {
	s := "round-trip-me"
	b := FastStringToBytes(s)
	assert.Equal(t, s, FastBytesToString(b))
}
