// Package h2hpack configures the HPACK header-compression tables used
// by the two endpoints of a connection. It never encodes or decodes a
// header block itself, that stays inside golang.org/x/net/http2/hpack,
// per the decoder core's "HPACK header table (configured, not
// implemented here)" boundary.
package h2hpack

import "golang.org/x/net/http2/hpack"

// Table wraps an x/net hpack.Decoder, exposing only the sizing knobs the
// decoder core needs when it applies a SETTINGS_HEADER_TABLE_SIZE value.
type Table struct {
	dec *hpack.Decoder
}

// NewTable builds a Table whose dynamic table starts at maxSize bytes.
// emitFunc receives each decoded header field; pass a no-op if the
// caller only wants table-size bookkeeping.
func NewTable(maxSize uint32, emitFunc func(hpack.HeaderField)) *Table {
	if emitFunc == nil {
		emitFunc = func(hpack.HeaderField) {}
	}

	dec := hpack.NewDecoder(maxSize, emitFunc)

	return &Table{dec: dec}
}

// SetMaxDynamicTableSize applies a new SETTINGS_HEADER_TABLE_SIZE value.
func (t *Table) SetMaxDynamicTableSize(n uint32) {
	t.dec.SetMaxDynamicTableSize(n)
}

// SetAllowedMaxDynamicTableSize bounds how large a peer-advertised table
// size update may grow the table, mirroring hpack.Decoder's own guard.
func (t *Table) SetAllowedMaxDynamicTableSize(n uint32) {
	t.dec.SetAllowedMaxDynamicTableSize(n)
}

// Decoder exposes the underlying x/net decoder for the HPACK header
// block itself, a collaborator this package configures but does not
// reimplement.
func (t *Table) Decoder() *hpack.Decoder {
	return t.dec
}
