// Package kbin implements the primitive wire encodings of the Kafka
// protocol: fixed-width big-endian scalars, unsigned and zig-zag varints,
// and the compact/non-compact string, bytes and array length rules.
//
// Writer is an append-style builder; Reader is an accumulate-and-check
// cursor that records the first failure it hits and lets every subsequent
// read return a zero value, so a struct's decode function can read every
// field unconditionally and check Complete/Err once at the end.
package kbin

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// Writer appends primitive values to a growable byte slice.
type Writer struct {
	B []byte
}

func (w *Writer) AppendBool(v bool) {
	if v {
		w.B = append(w.B, 1)
	} else {
		w.B = append(w.B, 0)
	}
}

func (w *Writer) AppendInt8(v int8) { w.B = append(w.B, byte(v)) }
func (w *Writer) AppendUint8(v uint8) { w.B = append(w.B, v) }

func (w *Writer) AppendInt16(v int16) {
	w.B = append(w.B, 0, 0)
	binary.BigEndian.PutUint16(w.B[len(w.B)-2:], uint16(v))
}

func (w *Writer) AppendUint16(v uint16) {
	w.B = append(w.B, 0, 0)
	binary.BigEndian.PutUint16(w.B[len(w.B)-2:], v)
}

func (w *Writer) AppendInt32(v int32) {
	w.B = append(w.B, 0, 0, 0, 0)
	binary.BigEndian.PutUint32(w.B[len(w.B)-4:], uint32(v))
}

func (w *Writer) AppendUint32(v uint32) {
	w.B = append(w.B, 0, 0, 0, 0)
	binary.BigEndian.PutUint32(w.B[len(w.B)-4:], v)
}

func (w *Writer) AppendInt64(v int64) {
	w.B = append(w.B, 0, 0, 0, 0, 0, 0, 0, 0)
	binary.BigEndian.PutUint64(w.B[len(w.B)-8:], uint64(v))
}

func (w *Writer) AppendUint64(v uint64) {
	w.B = append(w.B, 0, 0, 0, 0, 0, 0, 0, 0)
	binary.BigEndian.PutUint64(w.B[len(w.B)-8:], v)
}

func (w *Writer) AppendFloat64(v float64) {
	w.AppendUint64(math.Float64bits(v))
}

func (w *Writer) AppendUuid(v [16]byte) {
	w.B = append(w.B, v[:]...)
}

// AppendUvarint appends an unsigned LEB128 varint.
func (w *Writer) AppendUvarint(v uint32) {
	for v >= 0x80 {
		w.B = append(w.B, byte(v)|0x80)
		v >>= 7
	}
	w.B = append(w.B, byte(v))
}

// AppendUvarint64 appends an unsigned LEB128 varint for tag IDs and lengths
// that may exceed 32 bits.
func (w *Writer) AppendUvarint64(v uint64) {
	for v >= 0x80 {
		w.B = append(w.B, byte(v)|0x80)
		v >>= 7
	}
	w.B = append(w.B, byte(v))
}

// AppendVarint appends a zig-zag encoded signed varint, as used inside
// record batches.
func (w *Writer) AppendVarint(v int64) {
	w.AppendUvarint64(uint64(v<<1) ^ uint64(v>>63))
}

// AppendVarint32 is the int32 form of AppendVarint, used for record header
// key/value lengths where the wire width is nominally 32 bits.
func (w *Writer) AppendVarint32(v int32) {
	w.AppendVarint(int64(v))
}

// non-compact forms

func (w *Writer) AppendString(s string) {
	w.AppendInt16(int16(len(s)))
	w.B = append(w.B, s...)
}

func (w *Writer) AppendNullableString(s *string) {
	if s == nil {
		w.AppendInt16(-1)
		return
	}
	w.AppendString(*s)
}

func (w *Writer) AppendBytes(b []byte) {
	w.AppendInt32(int32(len(b)))
	w.B = append(w.B, b...)
}

func (w *Writer) AppendNullableBytes(b []byte) {
	if b == nil {
		w.AppendInt32(-1)
		return
	}
	w.AppendBytes(b)
}

// AppendArrayLen writes the non-compact i32 array length header. n<0 writes
// the null sentinel.
func (w *Writer) AppendArrayLen(n int) {
	w.AppendInt32(int32(n))
}

// compact forms

func (w *Writer) AppendCompactString(s string) {
	w.AppendUvarint(uint32(len(s)) + 1)
	w.B = append(w.B, s...)
}

func (w *Writer) AppendCompactNullableString(s *string) {
	if s == nil {
		w.AppendUvarint(0)
		return
	}
	w.AppendCompactString(*s)
}

func (w *Writer) AppendCompactBytes(b []byte) {
	w.AppendUvarint(uint32(len(b)) + 1)
	w.B = append(w.B, b...)
}

func (w *Writer) AppendCompactNullableBytes(b []byte) {
	if b == nil {
		w.AppendUvarint(0)
		return
	}
	w.AppendCompactBytes(b)
}

// AppendCompactArrayLen writes the compact (uvarint, biased by 1) array
// length header. n<0 writes the null sentinel (0).
func (w *Writer) AppendCompactArrayLen(n int) {
	if n < 0 {
		w.AppendUvarint(0)
		return
	}
	w.AppendUvarint(uint32(n) + 1)
}

// Reader is a cursor over a byte slice that accumulates the first error it
// encounters; every read after a failure returns the zero value for its
// type so callers can read an entire struct unconditionally and check
// Err/Complete once at the end.
type Reader struct {
	Src []byte
	// start is the length of Src when the Reader was constructed, used to
	// compute Offset() for error reporting.
	start int
	err   error
}

// NewReader returns a Reader positioned at the start of src.
func NewReader(src []byte) *Reader {
	return &Reader{Src: src, start: len(src)}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int { return r.start - len(r.Src) }

// Err returns the first error the Reader encountered, if any.
func (r *Reader) Err() error { return r.err }

// fail records err if this is the first failure, and returns true if the
// reader is already (or now) in a failed state.
func (r *Reader) fail(err error) bool {
	if r.err == nil {
		r.err = err
	}
	r.Src = nil
	return true
}

func (r *Reader) failed() bool { return r.err != nil }

// ensure returns the buffer to consume n bytes from, or nil if the reader
// does not have n bytes remaining (and records onShort as the failure).
func (r *Reader) ensure(n int, onShort error) []byte {
	if r.failed() || len(r.Src) < n {
		if !r.failed() {
			r.fail(onShort)
		}
		return nil
	}
	b := r.Src[:n]
	r.Src = r.Src[n:]
	return b
}

func (r *Reader) Bool() bool {
	b := r.ensure(1, ErrNotEnoughData)
	if b == nil {
		return false
	}
	return b[0] != 0
}

func (r *Reader) Int8() int8 {
	b := r.ensure(1, ErrNotEnoughData)
	if b == nil {
		return 0
	}
	return int8(b[0])
}

func (r *Reader) Uint8() uint8 {
	b := r.ensure(1, ErrNotEnoughData)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) Int16() int16 {
	b := r.ensure(2, ErrNotEnoughData)
	if b == nil {
		return 0
	}
	return int16(binary.BigEndian.Uint16(b))
}

func (r *Reader) Uint16() uint16 {
	b := r.ensure(2, ErrNotEnoughData)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

func (r *Reader) Int32() int32 {
	b := r.ensure(4, ErrNotEnoughData)
	if b == nil {
		return 0
	}
	return int32(binary.BigEndian.Uint32(b))
}

func (r *Reader) Uint32() uint32 {
	b := r.ensure(4, ErrNotEnoughData)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (r *Reader) Int64() int64 {
	b := r.ensure(8, ErrNotEnoughData)
	if b == nil {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b))
}

func (r *Reader) Uint64() uint64 {
	b := r.ensure(8, ErrNotEnoughData)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func (r *Reader) Float64() float64 {
	return math.Float64frombits(r.Uint64())
}

func (r *Reader) Uuid() [16]byte {
	var u [16]byte
	b := r.ensure(16, ErrNotEnoughData)
	if b == nil {
		return u
	}
	copy(u[:], b)
	return u
}

// Uvarint reads an unsigned LEB128 varint, failing with ErrVarintOverflow if
// it spans more than 5 bytes (the maximum needed for 32 bits).
func (r *Reader) Uvarint() uint32 {
	v, err := r.uvarintN(5)
	if err != nil {
		r.fail(err)
		return 0
	}
	return uint32(v)
}

// Uvarint64 reads an unsigned LEB128 varint up to 64 bits wide, used for tag
// IDs and tag-entry byte lengths which are not bounded to 32 bits.
func (r *Reader) Uvarint64() uint64 {
	v, err := r.uvarintN(10)
	if err != nil {
		r.fail(err)
		return 0
	}
	return v
}

func (r *Reader) uvarintN(maxBytes int) (uint64, error) {
	if r.failed() {
		return 0, r.err
	}
	var v uint64
	for i := 0; i < maxBytes; i++ {
		if len(r.Src) == 0 {
			return 0, ErrNotEnoughData
		}
		b := r.Src[0]
		r.Src = r.Src[1:]
		v |= uint64(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, ErrVarintOverflow
}

// Varint reads a zig-zag encoded signed varint.
func (r *Reader) Varint() int64 {
	v := r.Uvarint64()
	return int64(v>>1) ^ -int64(v&1)
}

// Varint32 is the int32 form of Varint.
func (r *Reader) Varint32() int32 {
	return int32(r.Varint())
}

// Span returns the next n bytes verbatim, or nil (and fails) if short.
func (r *Reader) Span(n int) []byte {
	if n < 0 {
		r.fail(ErrNotEnoughData)
		return nil
	}
	b := r.ensure(n, ErrNotEnoughData)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// String reads a non-compact (i16-length) string.
func (r *Reader) String() string {
	l := r.Int16()
	if r.failed() || l < 0 {
		return ""
	}
	b := r.ensure(int(l), ErrNotEnoughData)
	if b == nil {
		return ""
	}
	return string(b)
}

// NullableString reads a non-compact nullable string, returning nil for the
// -1 sentinel.
func (r *Reader) NullableString() *string {
	l := r.Int16()
	if r.failed() {
		return nil
	}
	if l < 0 {
		return nil
	}
	b := r.ensure(int(l), ErrNotEnoughData)
	if b == nil {
		return nil
	}
	s := string(b)
	return &s
}

// Bytes reads a non-compact (i32-length) byte slice.
func (r *Reader) Bytes() []byte {
	l := r.Int32()
	if r.failed() || l < 0 {
		return nil
	}
	return r.Span(int(l))
}

// NullableBytes reads a non-compact nullable byte slice.
func (r *Reader) NullableBytes() []byte {
	l := r.Int32()
	if r.failed() || l < 0 {
		return nil
	}
	return r.Span(int(l))
}

// ArrayLen reads the non-compact i32 array length header. A negative result
// denotes a null array.
func (r *Reader) ArrayLen() int32 {
	return r.Int32()
}

// CompactString reads a compact (uvarint-biased) string.
func (r *Reader) CompactString() string {
	l := r.Uvarint()
	if r.failed() || l == 0 {
		return ""
	}
	b := r.ensure(int(l-1), ErrNotEnoughData)
	if b == nil {
		return ""
	}
	return string(b)
}

// CompactNullableString reads a compact nullable string, nil for the 0
// sentinel.
func (r *Reader) CompactNullableString() *string {
	l := r.Uvarint()
	if r.failed() {
		return nil
	}
	if l == 0 {
		return nil
	}
	b := r.ensure(int(l-1), ErrNotEnoughData)
	if b == nil {
		return nil
	}
	s := string(b)
	return &s
}

// CompactBytes reads a compact byte slice.
func (r *Reader) CompactBytes() []byte {
	l := r.Uvarint()
	if r.failed() || l == 0 {
		return nil
	}
	return r.Span(int(l - 1))
}

// CompactNullableBytes reads a compact nullable byte slice.
func (r *Reader) CompactNullableBytes() []byte {
	l := r.Uvarint()
	if r.failed() || l == 0 {
		return nil
	}
	return r.Span(int(l - 1))
}

// CompactArrayLen reads the compact array length header, returning -1 for
// the null sentinel and the actual element count otherwise.
func (r *Reader) CompactArrayLen() int32 {
	l := r.Uvarint()
	if r.failed() {
		return 0
	}
	if l == 0 {
		return -1
	}
	return int32(l - 1)
}

// Complete returns ErrTrailingData if any bytes remain unread, or the first
// error recorded during reading.
func (r *Reader) Complete() error {
	if r.err != nil {
		return r.err
	}
	if len(r.Src) > 0 {
		return ErrTrailingData
	}
	return nil
}

// ValidateUtf8 reports whether s is valid UTF-8; callers translate a false
// result into kerr.InvalidUtf8 with field-path context.
func ValidateUtf8(s string) bool {
	return utf8.ValidString(s)
}
