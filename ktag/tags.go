// Package ktag implements the tagged-field buffer that trails every
// flexibly-versioned struct and the root body of a flexible message.
//
// Unknown tags are preserved verbatim across a decode/re-encode cycle so
// that round-tripping a frame produced by a newer broker does not drop
// fields this codec does not understand.
package ktag

import (
	"sort"

	"github.com/tansu-io/kafkawire/kbin"
)

// Tags is an opaque, map-backed set of tag-id -> raw bytes. It keeps no
// insertion order; Each and AppendTo always visit tags in ascending tag-id
// order.
type Tags struct {
	keyvals map[uint32][]byte
}

// Len returns the number of tags set.
func (t *Tags) Len() int { return len(t.keyvals) }

// Set records val under key, overwriting any previous value.
func (t *Tags) Set(key uint32, val []byte) {
	if t.keyvals == nil {
		t.keyvals = make(map[uint32][]byte)
	}
	t.keyvals[key] = val
}

// Get returns the bytes set for key, if any.
func (t *Tags) Get(key uint32) ([]byte, bool) {
	v, ok := t.keyvals[key]
	return v, ok
}

// Each calls fn for every key/val pair in strictly ascending key order, the
// order required on the wire by §4.4's tag-order-preservation invariant.
func (t *Tags) Each(fn func(key uint32, val []byte)) {
	if len(t.keyvals) == 0 {
		return
	}
	ordered := make([]uint32, 0, len(t.keyvals))
	for k := range t.keyvals {
		ordered = append(ordered, k)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })
	for _, k := range ordered {
		fn(k, t.keyvals[k])
	}
}

// AppendTo appends the tag count and each (tag-id, length, bytes) entry, in
// ascending tag-id order, to w.
func (t *Tags) AppendTo(w *kbin.Writer) {
	w.AppendUvarint(uint32(t.Len()))
	t.Each(func(key uint32, val []byte) {
		w.AppendUvarint(key)
		w.AppendUvarint(uint32(len(val)))
		w.B = append(w.B, val...)
	})
}

// ReadFrom reads a tag buffer from r, accepting entries in any order on the
// wire. The order they were read in is not kept (a later entry with the
// same tag id overwrites an earlier one); only AppendTo's ascending
// re-emission order is meaningful.
func ReadFrom(r *kbin.Reader) Tags {
	var t Tags
	n := r.Uvarint()
	for i := uint32(0); i < n; i++ {
		key := r.Uvarint()
		size := r.Uvarint()
		val := r.Span(int(size))
		t.Set(key, val)
	}
	return t
}

// Skip discards a tag buffer from r without retaining its contents.
func Skip(r *kbin.Reader) {
	n := r.Uvarint()
	for i := uint32(0); i < n; i++ {
		r.Uvarint()
		size := r.Uvarint()
		r.Span(int(size))
	}
}
