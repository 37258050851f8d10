package krecordbatch

import (
	"bytes"
	"testing"

	"github.com/tansu-io/kafkawire/kerr"
)

func oneRecordBatch(value []byte) Batch {
	return Batch{
		Header: Header{
			BaseOffset:           0,
			PartitionLeaderEpoch: -1,
			Magic:                2,
			Attributes:           0,
			LastOffsetDelta:      0,
			BaseTimestamp:        1000,
			MaxTimestamp:         1000,
			ProducerId:           -1,
			ProducerEpoch:        -1,
			BaseSequence:         -1,
		},
		Records: []Record{
			{Value: value},
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	b := oneRecordBatch([]byte("def"))
	encoded := Encode(nil, b)

	decoded, err := Decode(encoded, "test")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(decoded.Records) != 1 {
		t.Fatalf("len(Records) = %d, want 1", len(decoded.Records))
	}
	if !bytes.Equal(decoded.Records[0].Value, []byte("def")) {
		t.Fatalf("Records[0].Value = %q, want %q", decoded.Records[0].Value, "def")
	}

	reencoded := Encode(nil, decoded)
	if !bytes.Equal(reencoded, encoded) {
		t.Fatalf("re-encode mismatch:\ngot  % x\nwant % x", reencoded, encoded)
	}
}

func TestElevenMixedRecords(t *testing.T) {
	b := Batch{
		Header: Header{Magic: 2, ProducerId: -1, ProducerEpoch: -1, BaseSequence: -1},
	}
	for i := 0; i < 11; i++ {
		rec := Record{
			TimestampDelta: int64(i),
			OffsetDelta:    int64(i),
		}
		switch {
		case i%3 == 0:
			rec.Key = []byte("k")
			rec.Value = []byte("v")
		case i%3 == 1:
			rec.Key = nil // null key
			rec.Value = []byte("v-only")
		default:
			rec.Value = nil // null value
			rec.Headers = []RecordHeader{{Key: "h", Value: []byte("hv")}}
		}
		b.Records = append(b.Records, rec)
	}

	encoded := Encode(nil, b)
	decoded, err := Decode(encoded, "test")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(decoded.Records) != 11 {
		t.Fatalf("len(Records) = %d, want 11", len(decoded.Records))
	}
	for i, rec := range decoded.Records {
		switch {
		case i%3 == 0:
			if string(rec.Value) != "v" {
				t.Fatalf("record %d: Value = %q", i, rec.Value)
			}
		case i%3 == 1:
			if rec.Key != nil {
				t.Fatalf("record %d: Key = %v, want nil", i, rec.Key)
			}
		default:
			if rec.Value != nil {
				t.Fatalf("record %d: Value = %v, want nil", i, rec.Value)
			}
			if len(rec.Headers) != 1 || rec.Headers[0].Key != "h" {
				t.Fatalf("record %d: Headers = %v", i, rec.Headers)
			}
		}
	}
}

func TestCrcMismatchFails(t *testing.T) {
	encoded := Encode(nil, oneRecordBatch([]byte("def")))
	corrupt := append([]byte{}, encoded...)
	corrupt[len(corrupt)-1] ^= 0xff // flip every bit of the last byte of the record area

	_, err := Decode(corrupt, "test")
	if err == nil {
		t.Fatal("Decode() on corrupted batch succeeded, want BatchCrcMismatch")
	}
	ce, ok := err.(*kerr.Error)
	if !ok || ce.Kind != kerr.BatchCrcMismatch {
		t.Fatalf("error = %v, want kerr.BatchCrcMismatch", err)
	}
}

func TestDecodeAllDiscardsPartialTrailingBatch(t *testing.T) {
	full := Encode(nil, oneRecordBatch([]byte("x")))
	partial := full[:len(full)-3] // truncate the second batch mid-stream
	in := append(append([]byte{}, full...), partial...)

	batches, err := DecodeAll(in, "test")
	if err != nil {
		t.Fatalf("DecodeAll() error = %v", err)
	}
	if len(batches) != 1 {
		t.Fatalf("len(batches) = %d, want 1", len(batches))
	}
}
