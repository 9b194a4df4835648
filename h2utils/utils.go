// Package h2utils holds the byte-twiddling helpers shared by the frame
// codec and the decoder core: big-endian uint24/uint32 packing, the
// zero-copy byte/string casts, and padding helpers for frames that
// carry the PADDED flag.
package h2utils

import (
	"crypto/rand"
	"fmt"
	"reflect"
	"unsafe"

	"github.com/valyala/fastrand"
)

func Uint24ToBytes(b []byte, n uint32) {
	_ = b[2] // bound checking
	b[0] = byte(n >> 16)
	b[1] = byte(n >> 8)
	b[2] = byte(n)
}

func BytesToUint24(b []byte) uint32 {
	_ = b[2] // bound checking
	return uint32(b[0])<<16 |
		uint32(b[1])<<8 |
		uint32(b[2])
}

func Uint32ToBytes(b []byte, n uint32) {
	_ = b[3] // bound checking
	b[0] = byte(n >> 24)
	b[1] = byte(n >> 16)
	b[2] = byte(n >> 8)
	b[3] = byte(n)
}

func AppendUint32Bytes(dst []byte, n uint32) []byte {
	dst = append(dst, byte(n>>24))
	dst = append(dst, byte(n>>16))
	dst = append(dst, byte(n>>8))
	dst = append(dst, byte(n))
	return dst
}

func BytesToUint32(b []byte) uint32 {
	_ = b[3] // bound checking
	return uint32(b[0])<<24 |
		uint32(b[1])<<16 |
		uint32(b[2])<<8 |
		uint32(b[3])
}

// BytesToStreamID strips the reserved high bit, yielding a 31-bit stream id.
func BytesToStreamID(b []byte) uint32 {
	return BytesToUint32(b) & (1<<31 - 1)
}

func Resize(b []byte, neededLen int) []byte {
	b = b[:cap(b)]

	if n := neededLen - len(b); n > 0 {
		b = append(b, make([]byte, n)...)
	}

	return b[:neededLen]
}

// CutPadding strips the 1-byte pad length prefix plus the trailing pad
// bytes, returning the remaining frame payload.
func CutPadding(payload []byte, length int) ([]byte, error) {
	if length == 0 {
		return payload, nil
	}
	if length > len(payload) {
		return nil, fmt.Errorf("h2utils: frame shorter than declared length: %d < %d", len(payload), length)
	}

	pad := int(payload[0])
	if pad+1 > length {
		return nil, fmt.Errorf("h2utils: padding out of range: pad=%d length=%d", pad, length)
	}

	return payload[1 : length-pad], nil
}

// AddPadding prepends a random pad-length byte (9..255) and appends that
// many random bytes, for fabricating test fixtures for padded DATA and
// HEADERS frames.
func AddPadding(b []byte) []byte {
	n := int(fastrand.Uint32n(256-9)) + 9
	nn := len(b)

	b = Resize(b, nn+n)
	b = append(b[:1], b...)
	b[0] = uint8(n)

	_, _ = rand.Read(b[nn+1 : nn+1+n])

	return b
}

// FastBytesToString converts b to a string without copying.
func FastBytesToString(b []byte) string {
	return *(*string)(unsafe.Pointer(&b))
}

// FastStringToBytes converts s to a byte slice without copying.
func FastStringToBytes(s string) []byte {
	sh := (*reflect.StringHeader)(unsafe.Pointer(&s))
	bh := reflect.SliceHeader{
		Data: sh.Data,
		Len:  sh.Len,
		Cap:  sh.Len,
	}

	return *(*[]byte)(unsafe.Pointer(&bh))
}
