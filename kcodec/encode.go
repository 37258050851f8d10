package kcodec

import (
	"fmt"
	"math"

	"github.com/tansu-io/kafkawire/kbin"
	"github.com/tansu-io/kafkawire/kerr"
	"github.com/tansu-io/kafkawire/kschema"
	"github.com/tansu-io/kafkawire/ktag"
	"github.com/tansu-io/kafkawire/kvalue"
)

// encodeStruct is decodeStruct's mirror: a field missing from sv is treated
// as an explicit null, so for string, bytes, records and sequence fields the
// usual null-not-permitted check catches a caller that forgot a required
// field instead of silently omitting it. Scalar kinds have no null form: a
// missing scalar field is written as its zero value.
func encodeStruct(w *kbin.Writer, meta kschema.MessageMeta, sm kschema.StructMeta, apiVersion int16, flexible bool, path string, sv *kvalue.StructValue) error {
	for i := range sm.Fields {
		fm := sm.Fields[i]
		if fm.Tag != nil {
			continue
		}
		if !fm.Versions.Contains(apiVersion) {
			continue
		}
		v, ok := sv.Get(fm.Name)
		if !ok {
			v = kvalue.NullValue(fm.Kind)
		}
		if err := encodeField(w, meta, fm, apiVersion, flexible, path+"."+fm.Name, v); err != nil {
			return err
		}
	}

	if !flexible {
		return nil
	}

	var tags ktag.Tags
	for i := range sm.Fields {
		fm := sm.Fields[i]
		if fm.Tag == nil || !fm.Versions.Contains(apiVersion) {
			continue
		}
		v, ok := sv.Get(fm.Name)
		if !ok || v.Null {
			continue // optional tagged field, omitted entirely
		}
		var sub kbin.Writer
		if err := encodeField(&sub, meta, fm, apiVersion, flexible, path+"."+fm.Name, v); err != nil {
			return err
		}
		tags.Set(*fm.Tag, sub.B)
	}
	for key, val := range sv.Tags {
		tags.Set(key, val)
	}
	tags.AppendTo(w)
	return nil
}

func encodeField(w *kbin.Writer, meta kschema.MessageMeta, fm kschema.FieldMeta, apiVersion int16, flexible bool, path string, v kvalue.Value) error {
	nullable := fm.Nullable.Contains(apiVersion)

	switch fm.Kind {
	case kschema.KindBool:
		w.AppendBool(v.Bool)
		return nil
	case kschema.KindI8:
		if v.I64 < math.MinInt8 || v.I64 > math.MaxInt8 {
			return outOfRange(w, path, "int8", v.I64)
		}
		w.AppendInt8(int8(v.I64))
		return nil
	case kschema.KindI16:
		if v.I64 < math.MinInt16 || v.I64 > math.MaxInt16 {
			return outOfRange(w, path, "int16", v.I64)
		}
		w.AppendInt16(int16(v.I64))
		return nil
	case kschema.KindI32:
		if v.I64 < math.MinInt32 || v.I64 > math.MaxInt32 {
			return outOfRange(w, path, "int32", v.I64)
		}
		w.AppendInt32(int32(v.I64))
		return nil
	case kschema.KindI64:
		w.AppendInt64(v.I64)
		return nil
	case kschema.KindU8:
		if v.I64 < 0 || v.I64 > math.MaxUint8 {
			return outOfRange(w, path, "uint8", v.I64)
		}
		w.AppendUint8(uint8(v.I64))
		return nil
	case kschema.KindU16:
		if v.I64 < 0 || v.I64 > math.MaxUint16 {
			return outOfRange(w, path, "uint16", v.I64)
		}
		w.AppendUint16(uint16(v.I64))
		return nil
	case kschema.KindU32:
		if v.I64 < 0 || v.I64 > math.MaxUint32 {
			return outOfRange(w, path, "uint32", v.I64)
		}
		w.AppendUint32(uint32(v.I64))
		return nil
	case kschema.KindU64:
		w.AppendUint64(uint64(v.I64))
		return nil
	case kschema.KindF64:
		w.AppendFloat64(v.F64)
		return nil
	case kschema.KindUuid:
		w.AppendUuid(v.Uuid)
		return nil

	case kschema.KindString:
		if v.Null {
			if !nullable {
				return kerr.New(kerr.NullNotPermitted, path, len(w.B))
			}
			writeNullString(w, flexible)
			return nil
		}
		if !kbin.ValidateUtf8(v.Str) {
			return kerr.New(kerr.InvalidUtf8, path, len(w.B))
		}
		if flexible {
			w.AppendCompactString(v.Str)
		} else {
			if len(v.Str) > math.MaxInt16 {
				return outOfRange(w, path, "string", int64(len(v.Str)))
			}
			w.AppendString(v.Str)
		}
		return nil

	case kschema.KindBytes:
		if v.Null {
			if !nullable {
				return kerr.New(kerr.NullNotPermitted, path, len(w.B))
			}
			writeNullBytes(w, flexible)
			return nil
		}
		if flexible {
			w.AppendCompactBytes(v.Byt)
		} else {
			w.AppendBytes(v.Byt)
		}
		return nil

	case kschema.KindRecords:
		if v.Null {
			if !nullable {
				return kerr.New(kerr.NullNotPermitted, path, len(w.B))
			}
			writeNullBytes(w, flexible)
			return nil
		}
		if flexible {
			w.AppendCompactBytes(v.Records)
		} else {
			w.AppendBytes(v.Records)
		}
		return nil

	case kschema.KindSequence:
		if v.Null {
			if !nullable {
				return kerr.New(kerr.NullNotPermitted, path, len(w.B))
			}
			if flexible {
				w.AppendCompactArrayLen(-1)
			} else {
				w.AppendArrayLen(-1)
			}
			return nil
		}
		if flexible {
			w.AppendCompactArrayLen(len(v.Seq))
		} else {
			w.AppendArrayLen(len(v.Seq))
		}
		for i, elem := range v.Seq {
			elemPath := fmt.Sprintf("%s[%d]", path, i)
			if err := encodeField(w, meta, *fm.Elem, apiVersion, flexible, elemPath, elem); err != nil {
				return err
			}
		}
		return nil

	case kschema.KindStruct:
		sm, ok := meta.Struct(fm.Struct)
		if !ok {
			return kerr.Newf(kerr.UnknownApiKey, path, len(w.B), "registered struct", fm.Struct)
		}
		sv := v.Struct
		if sv == nil {
			sv = &kvalue.StructValue{}
		}
		return encodeStruct(w, meta, sm, apiVersion, flexible, path, sv)
	}
	return kerr.New(kerr.UnknownApiKey, path, len(w.B))
}

func writeNullString(w *kbin.Writer, flexible bool) {
	if flexible {
		w.AppendCompactNullableString(nil)
	} else {
		w.AppendNullableString(nil)
	}
}

func writeNullBytes(w *kbin.Writer, flexible bool) {
	if flexible {
		w.AppendCompactNullableBytes(nil)
	} else {
		w.AppendNullableBytes(nil)
	}
}

func outOfRange(w *kbin.Writer, path, typ string, val int64) error {
	return kerr.Newf(kerr.ValueOutOfRange, path, len(w.B), typ, fmt.Sprintf("%d", val))
}
