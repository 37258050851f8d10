package kcodec

import (
	"fmt"

	"github.com/tansu-io/kafkawire/kbin"
	"github.com/tansu-io/kafkawire/kerr"
	"github.com/tansu-io/kafkawire/krecordbatch"
	"github.com/tansu-io/kafkawire/kschema"
	"github.com/tansu-io/kafkawire/ktag"
	"github.com/tansu-io/kafkawire/kvalue"
)

// decodeStruct walks sm's fields in declaration order, reading each from r.
// apiVersion and flexible are fixed for the whole message: computed once by
// the caller (kcodec.Codec.DecodeRequest/DecodeResponse) and threaded down
// unchanged through every nested struct and sequence element, since a
// single message never mixes flexible and non-flexible framing partway
// through.
func decodeStruct(r *kbin.Reader, meta kschema.MessageMeta, sm kschema.StructMeta, apiVersion int16, flexible bool, path string) (*kvalue.StructValue, error) {
	sv := &kvalue.StructValue{}

	for i := range sm.Fields {
		fm := sm.Fields[i]
		if fm.Tag != nil {
			continue // carried in the tag buffer, handled below
		}
		if !fm.Versions.Contains(apiVersion) {
			continue
		}
		v, err := decodeField(r, meta, fm, apiVersion, flexible, path+"."+fm.Name)
		if err != nil {
			return nil, err
		}
		sv.Fields = append(sv.Fields, kvalue.FieldValue{Name: fm.Name, Value: v})
	}

	if !flexible {
		return sv, nil
	}

	sv.HasTags = true
	tags := ktag.ReadFrom(r)
	if err := readErr(r, path); err != nil {
		return nil, err
	}

	used := make(map[uint32]bool)
	for i := range sm.Fields {
		fm := sm.Fields[i]
		if fm.Tag == nil || !fm.Versions.Contains(apiVersion) {
			continue
		}
		raw, ok := tags.Get(*fm.Tag)
		if !ok {
			continue
		}
		tr := kbin.NewReader(raw)
		v, err := decodeField(tr, meta, fm, apiVersion, flexible, path+"."+fm.Name)
		if err != nil {
			return nil, err
		}
		if err := tr.Complete(); err != nil {
			return nil, translateErr(err, path+"."+fm.Name, tr.Offset())
		}
		sv.Fields = append(sv.Fields, kvalue.FieldValue{Name: fm.Name, Value: v})
		used[*fm.Tag] = true
	}

	remaining := map[uint32][]byte{}
	tags.Each(func(key uint32, val []byte) {
		if !used[key] {
			remaining[key] = val
		}
	})
	if len(remaining) > 0 {
		sv.Tags = remaining
	}
	return sv, nil
}

// decodeField reads a single field's value, dispatching on its wire kind.
// Every variable-length kind is read through its *Nullable* accessor
// unconditionally, even when fm is not nullable at this version, so a
// corrupt or malicious null sentinel on a non-nullable field is caught as
// kerr.UnexpectedNull instead of silently decoding as an empty value.
func decodeField(r *kbin.Reader, meta kschema.MessageMeta, fm kschema.FieldMeta, apiVersion int16, flexible bool, path string) (kvalue.Value, error) {
	nullable := fm.Nullable.Contains(apiVersion)

	switch fm.Kind {
	case kschema.KindBool:
		v := r.Bool()
		return kvalue.Bool(v), readErr(r, path)
	case kschema.KindI8:
		v := r.Int8()
		return kvalue.I8(v), readErr(r, path)
	case kschema.KindI16:
		v := r.Int16()
		return kvalue.I16(v), readErr(r, path)
	case kschema.KindI32:
		v := r.Int32()
		return kvalue.I32(v), readErr(r, path)
	case kschema.KindI64:
		v := r.Int64()
		return kvalue.I64(v), readErr(r, path)
	case kschema.KindU8:
		v := r.Uint8()
		return kvalue.U8(v), readErr(r, path)
	case kschema.KindU16:
		v := r.Uint16()
		return kvalue.U16(v), readErr(r, path)
	case kschema.KindU32:
		v := r.Uint32()
		return kvalue.U32(v), readErr(r, path)
	case kschema.KindU64:
		v := r.Uint64()
		return kvalue.U64(v), readErr(r, path)
	case kschema.KindF64:
		v := r.Float64()
		return kvalue.F64(v), readErr(r, path)
	case kschema.KindUuid:
		v := r.Uuid()
		val := kvalue.Value{Kind: kschema.KindUuid, Uuid: v}
		return val, readErr(r, path)

	case kschema.KindString:
		var s *string
		if flexible {
			s = r.CompactNullableString()
		} else {
			s = r.NullableString()
		}
		if err := readErr(r, path); err != nil {
			return kvalue.Value{}, err
		}
		if s == nil {
			if !nullable {
				return kvalue.Value{}, kerr.New(kerr.UnexpectedNull, path, r.Offset())
			}
			return kvalue.NullValue(kschema.KindString), nil
		}
		if !kbin.ValidateUtf8(*s) {
			return kvalue.Value{}, kerr.New(kerr.InvalidUtf8, path, r.Offset())
		}
		return kvalue.Str(*s), nil

	case kschema.KindBytes:
		var b []byte
		var null bool
		if flexible {
			b = r.CompactNullableBytes()
		} else {
			b = r.NullableBytes()
		}
		if err := readErr(r, path); err != nil {
			return kvalue.Value{}, err
		}
		null = b == nil
		if null {
			if !nullable {
				return kvalue.Value{}, kerr.New(kerr.UnexpectedNull, path, r.Offset())
			}
			return kvalue.NullValue(kschema.KindBytes), nil
		}
		return kvalue.Byt(b), nil

	case kschema.KindRecords:
		var b []byte
		if flexible {
			b = r.CompactNullableBytes()
		} else {
			b = r.NullableBytes()
		}
		if err := readErr(r, path); err != nil {
			return kvalue.Value{}, err
		}
		if b == nil {
			if !nullable {
				return kvalue.Value{}, kerr.New(kerr.UnexpectedNull, path, r.Offset())
			}
			return kvalue.NullValue(kschema.KindRecords), nil
		}
		if _, err := krecordbatch.DecodeAll(b, path); err != nil {
			return kvalue.Value{}, err
		}
		return kvalue.Value{Kind: kschema.KindRecords, Records: b}, nil

	case kschema.KindSequence:
		var n int32
		if flexible {
			n = r.CompactArrayLen()
		} else {
			n = r.ArrayLen()
		}
		if err := readErr(r, path); err != nil {
			return kvalue.Value{}, err
		}
		if n < 0 {
			if !nullable {
				return kvalue.Value{}, kerr.New(kerr.UnexpectedNull, path, r.Offset())
			}
			return kvalue.NullValue(kschema.KindSequence), nil
		}
		elems := make([]kvalue.Value, n)
		for i := 0; i < int(n); i++ {
			elemPath := fmt.Sprintf("%s[%d]", path, i)
			v, err := decodeField(r, meta, *fm.Elem, apiVersion, flexible, elemPath)
			if err != nil {
				return kvalue.Value{}, err
			}
			elems[i] = v
		}
		return kvalue.Value{Kind: kschema.KindSequence, Seq: elems}, nil

	case kschema.KindStruct:
		sm, ok := meta.Struct(fm.Struct)
		if !ok {
			return kvalue.Value{}, kerr.Newf(kerr.UnknownApiKey, path, r.Offset(), "registered struct", fm.Struct)
		}
		sv, err := decodeStruct(r, meta, sm, apiVersion, flexible, path)
		if err != nil {
			return kvalue.Value{}, err
		}
		return kvalue.Value{Kind: kschema.KindStruct, Struct: sv}, nil
	}

	return kvalue.Value{}, kerr.New(kerr.UnknownApiKey, path, r.Offset())
}

// readErr translates the Reader's accumulated failure, if any, into a
// kerr.Error anchored at path.
func readErr(r *kbin.Reader, path string) error {
	if err := r.Err(); err != nil {
		return translateErr(err, path, r.Offset())
	}
	return nil
}

func translateErr(err error, path string, offset int) error {
	if ce, ok := err.(*kerr.Error); ok {
		return ce
	}
	switch err {
	case kbin.ErrNotEnoughData:
		return kerr.New(kerr.ShortRead, path, offset)
	case kbin.ErrVarintOverflow:
		return kerr.New(kerr.VarintOverflow, path, offset)
	case kbin.ErrTrailingData:
		return kerr.New(kerr.TrailingBytes, path, offset)
	default:
		return kerr.New(kerr.ShortRead, path, offset)
	}
}
