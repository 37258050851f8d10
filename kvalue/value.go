// Package kvalue is the schema-agnostic in-memory value tree that
// kcodec.Codec's decode methods produce and its encode methods consume. It is the "value
// tree" named throughout SPEC_FULL.md §3-§4: a generic structure able to
// represent any field kind kschema.FieldMeta can describe, so the decoder
// and encoder can be written once against kschema's tables instead of once
// per message type.
package kvalue

import "github.com/tansu-io/kafkawire/kschema"

// Value is a tagged union holding the decoded form of one field.
type Value struct {
	Kind kschema.FieldKind

	Null bool

	Bool bool
	I64  int64 // widened storage for I8/I16/I32/I64/U8/U16/U32/U64
	F64  float64
	Str  string
	Byt  []byte
	Uuid [16]byte

	// Seq holds element values for KindSequence.
	Seq []Value

	// Struct holds the field values for KindStruct.
	Struct *StructValue

	// Records holds the opaque, possibly-compressed bytes of a KindRecords
	// field. The core codec never interprets these bytes beyond validating
	// the record-batch framing (see package krecordbatch).
	Records []byte
}

// NullValue returns a null marker of the given kind.
func NullValue(kind kschema.FieldKind) Value {
	return Value{Kind: kind, Null: true}
}

// FieldValue pairs a field name with its decoded value, preserving the
// declared field order of the struct it belongs to.
type FieldValue struct {
	Name  string
	Value Value
}

// StructValue is the ordered field list of a decoded struct, plus the
// tagged-field buffer trailing it when the struct was read in flexible
// mode.
type StructValue struct {
	Fields []FieldValue
	// Tags holds entries the schema did not recognize, preserved verbatim
	// so re-encoding is byte-identical. Known tagged fields are decoded
	// into Fields instead and are not duplicated here.
	Tags map[uint32][]byte
	// HasTags records whether this struct was read in flexible mode (i.e.
	// whether a tag buffer was present at all, even if Tags is empty and
	// every tagged field was recognized). The encoder does not consult it:
	// it writes a tag buffer whenever the message version is flexible.
	HasTags bool
}

// Get returns the value of the named field and whether it was present.
func (s *StructValue) Get(name string) (Value, bool) {
	if s == nil {
		return Value{}, false
	}
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Set appends or overwrites the named field.
func (s *StructValue) Set(name string, v Value) {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			s.Fields[i].Value = v
			return
		}
	}
	s.Fields = append(s.Fields, FieldValue{Name: name, Value: v})
}

// Constructors for common scalar kinds, used by handlers (e.g. kfake) that
// build a value tree by hand instead of via a decode.

func Bool(v bool) Value { return Value{Kind: kschema.KindBool, Bool: v} }
func I8(v int8) Value   { return Value{Kind: kschema.KindI8, I64: int64(v)} }
func I16(v int16) Value { return Value{Kind: kschema.KindI16, I64: int64(v)} }
func I32(v int32) Value { return Value{Kind: kschema.KindI32, I64: int64(v)} }
func I64(v int64) Value { return Value{Kind: kschema.KindI64, I64: v} }
func U8(v uint8) Value  { return Value{Kind: kschema.KindU8, I64: int64(v)} }
func U16(v uint16) Value { return Value{Kind: kschema.KindU16, I64: int64(v)} }
func U32(v uint32) Value { return Value{Kind: kschema.KindU32, I64: int64(v)} }
func U64(v uint64) Value { return Value{Kind: kschema.KindU64, I64: int64(v)} }
func F64(v float64) Value { return Value{Kind: kschema.KindF64, F64: v} }
func Str(v string) Value { return Value{Kind: kschema.KindString, Str: v} }
func Byt(v []byte) Value { return Value{Kind: kschema.KindBytes, Byt: v} }

func NullStr() Value { return Value{Kind: kschema.KindString, Null: true} }
func NullByt() Value { return Value{Kind: kschema.KindBytes, Null: true} }

func Seq(kind kschema.FieldKind, vs ...Value) Value {
	return Value{Kind: kschema.KindSequence, Seq: vs}
}

func Struct(fields ...FieldValue) Value {
	return Value{Kind: kschema.KindStruct, Struct: &StructValue{Fields: fields}}
}

func F(name string, v Value) FieldValue { return FieldValue{Name: name, Value: v} }
