// Package codec implements the canonical binary encoding spec.md §4.1
// requires: arrays only (never maps), no floating-point fields in
// anything that is hashed, length-prefixed variable-width integers,
// length-prefixed blobs, and 16-byte big-endian GUIDs.
//
// There is no generic "array" wrapper type here — a canonical array is
// simply a fixed number of fields written in declaration order by a
// hand-written Encode/Decode pair per Go type, the same technique the
// teacher library's section package uses for its fixed header layout
// (section/numeric_header.go's paired Bytes()/Parse()), just with
// variable-width integers instead of a fixed 32-byte struct.
package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/tectonic-sim/platetruth/errs"
	"github.com/tectonic-sim/platetruth/guid"
)

// Writer appends canonical-encoded fields to an in-memory buffer. The
// zero value is ready to use; callers typically start from a pooled
// buffer (internal/pool) to avoid repeated allocation.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer backed by buf (which may be nil or reused
// pooled storage); subsequent writes append to it.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf[:0]}
}

// Bytes returns the accumulated encoding. The returned slice aliases the
// Writer's internal buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// WriteUvarint appends v as an unsigned LEB128 varint.
func (w *Writer) WriteUvarint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	w.buf = append(w.buf, tmp[:n]...)
}

// WriteVarint appends v as a zig-zag encoded signed varint. Zig-zag
// encoding keeps small-magnitude negative numbers (e.g. a sentinel -1
// head sequence) as short as positive ones, and never represents a
// signed integer as a raw float bit pattern.
func (w *Writer) WriteVarint(v int64) {
	w.WriteUvarint(zigzagEncode(v))
}

// WriteFixed appends b verbatim, with no length prefix. Use only for
// fields whose length is fixed and known to both sides (32-byte hashes,
// 16-byte GUIDs).
func (w *Writer) WriteFixed(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteBytes appends a length-prefixed variable-length byte blob.
func (w *Writer) WriteBytes(b []byte) {
	w.WriteUvarint(uint64(len(b)))
	w.buf = append(w.buf, b...)
}

// WriteString appends a length-prefixed UTF-8 string.
func (w *Writer) WriteString(s string) {
	w.WriteUvarint(uint64(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteGUID appends g's 16 raw bytes verbatim, in whatever byte order g
// already holds. Callers that need RFC-4122 big-endian order (the only
// order this store ever persists — spec.md §4.1) must pass a GUID already
// in that order; codec does not reorder, it only ever writes the canonical
// bytes a guid.GUID already carries once the writer constructed it that way.
func (w *Writer) WriteGUID(g guid.GUID) {
	w.WriteFixed(g[:])
}

// WriteBool appends a single tag byte: 1 for true, 0 for false.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// Reader consumes canonical-encoded fields from a byte slice in order.
// It never restarts: once a field has been read the cursor has moved
// past it, matching the non-restartable lazy-sequence contract spec.md §9
// asks of the higher-level event reader.
type Reader struct {
	buf []byte
	pos int
}

// NewReader returns a Reader over buf. buf is not copied; the caller must
// not mutate it while the Reader is in use.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Done reports whether every byte has been consumed.
func (r *Reader) Done() bool { return r.pos >= len(r.buf) }

func (r *Reader) ReadUvarint() (uint64, error) {
	v, n := binary.Uvarint(r.buf[r.pos:])
	if n <= 0 {
		return 0, fmt.Errorf("%w: truncated varint at offset %d", errs.ErrInvalidEncoding, r.pos)
	}
	r.pos += n

	return v, nil
}

func (r *Reader) ReadVarint() (int64, error) {
	v, err := r.ReadUvarint()
	if err != nil {
		return 0, err
	}

	return zigzagDecode(v), nil
}

// ReadFixed reads exactly n raw bytes with no length prefix.
func (r *Reader) ReadFixed(n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes, have %d at offset %d", errs.ErrInvalidEncoding, n, r.Remaining(), r.pos)
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+n])
	r.pos += n

	return out, nil
}

// ReadBytes reads a length-prefixed variable-length byte blob.
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadUvarint()
	if err != nil {
		return nil, err
	}

	return r.ReadFixed(int(n))
}

// ReadString reads a length-prefixed UTF-8 string.
func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// ReadGUID reads the next 16 raw bytes as a GUID, in whatever byte order
// they were written.
func (r *Reader) ReadGUID() (guid.GUID, error) {
	b, err := r.ReadFixed(guid.Size)
	if err != nil {
		return guid.GUID{}, err
	}

	return guid.FromBytes(b)
}

func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadFixed(1)
	if err != nil {
		return false, err
	}

	return b[0] != 0, nil
}

func zigzagEncode(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

func zigzagDecode(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}
