// Package krecordbatch implements Kafka's inner record-batch format: the
// payload carried opaquely inside a Records field of the outer message
// codec. It is a self-contained sub-codec reached from kcodec only through
// an opaque-bytes interface on the outside (raw batch bytes in, raw batch
// bytes out) and a decoded Batch (header plus a slice of records) on the
// inside, per SPEC_FULL.md §9's re-architecture hint.
//
// The sub-codec validates framing and the CRC but never decompresses: the
// Records field of a batch is handed back to the caller exactly as read,
// compressed or not. See package kbatchcodec for optional, downstream
// decompression.
package krecordbatch

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/tansu-io/kafkawire/kbin"
	"github.com/tansu-io/kafkawire/kerr"
)

// crc32c is the Castagnoli table the protocol uses for record-batch CRCs,
// matching the client library's own crc32.MakeTable(crc32.Castagnoli).
var crc32c = crc32.MakeTable(crc32.Castagnoli)

const headerSize = 61 // bytes from BaseOffset through RecordsCount inclusive

// Header is the fixed 61-byte prefix of a record batch.
type Header struct {
	BaseOffset           int64
	BatchLength          int32
	PartitionLeaderEpoch int32
	Magic                int8
	CRC                  uint32
	Attributes           int16
	LastOffsetDelta      int32
	BaseTimestamp        int64
	MaxTimestamp         int64
	ProducerId           int64
	ProducerEpoch        int16
	BaseSequence         int32
	RecordsCount         int32
}

// RecordHeader is a single Kafka record header (not to be confused with
// Header, the batch header).
type RecordHeader struct {
	Key   string
	Value []byte
}

// Record is one decoded record inside a batch.
type Record struct {
	Attributes     int8
	TimestampDelta int64
	OffsetDelta    int64
	Key            []byte // nil means the record's key is null
	Value          []byte // nil means the record's value is null
	Headers        []RecordHeader
}

// Batch is a fully decoded record batch.
type Batch struct {
	Header  Header
	Records []Record
}

// Attributes low-bit compression codec, exposed for kbatchcodec.
const CompressionCodecMask = 0x07

// Decode parses exactly one record batch from in, verifying its CRC. It
// returns kerr.BatchCrcMismatch if the computed CRC does not match the
// encoded one, and a ShortRead/LengthOutOfRange kerr.Error if in is too
// short or the encoded length does not fit within in.
func Decode(in []byte, path string) (Batch, error) {
	if len(in) < headerSize {
		return Batch{}, kerr.New(kerr.ShortRead, path, len(in))
	}

	var h Header
	h.BaseOffset = int64(binary.BigEndian.Uint64(in[0:8]))
	h.BatchLength = int32(binary.BigEndian.Uint32(in[8:12]))

	total := 12 + int(h.BatchLength)
	if h.BatchLength < 0 || total > len(in) {
		return Batch{}, kerr.Newf(kerr.LengthOutOfRange, path, 8, "<= remaining bytes", "batch_length out of range")
	}

	h.PartitionLeaderEpoch = int32(binary.BigEndian.Uint32(in[12:16]))
	h.Magic = int8(in[16])
	h.CRC = binary.BigEndian.Uint32(in[17:21])
	h.Attributes = int16(binary.BigEndian.Uint16(in[21:23]))
	h.LastOffsetDelta = int32(binary.BigEndian.Uint32(in[23:27]))
	h.BaseTimestamp = int64(binary.BigEndian.Uint64(in[27:35]))
	h.MaxTimestamp = int64(binary.BigEndian.Uint64(in[35:43]))
	h.ProducerId = int64(binary.BigEndian.Uint64(in[43:51]))
	h.ProducerEpoch = int16(binary.BigEndian.Uint16(in[51:53]))
	h.BaseSequence = int32(binary.BigEndian.Uint32(in[53:57]))
	h.RecordsCount = int32(binary.BigEndian.Uint32(in[57:61]))

	calc := crc32.Checksum(in[21:total], crc32c)
	if calc != h.CRC {
		return Batch{}, kerr.Newf(kerr.BatchCrcMismatch, path, 17,
			formatUint32(h.CRC), formatUint32(calc))
	}

	records, err := decodeRecords(int(h.RecordsCount), in[headerSize:total], path)
	if err != nil {
		return Batch{}, err
	}

	return Batch{Header: h, Records: records}, nil
}

// DecodeAll parses as many whole record batches as in contains back to
// back, discarding a final short trailing batch (Kafka brokers may
// legitimately write a partial final batch as a write-size optimization,
// the same behavior the client library's own ReadRecordBatches documents).
// A structurally complete batch with a bad CRC is still a fatal error.
func DecodeAll(in []byte, path string) ([]Batch, error) {
	var out []Batch
	for len(in) > 12 {
		length := int32(binary.BigEndian.Uint32(in[8:12]))
		total := 12 + int(length)
		if length < 0 || total > len(in) {
			return out, nil
		}
		b, err := Decode(in[:total], path)
		if err != nil {
			return out, err
		}
		out = append(out, b)
		in = in[total:]
	}
	return out, nil
}

func decodeRecords(n int, in []byte, path string) ([]Record, error) {
	if n < 0 {
		n = 0
	}
	records := make([]Record, n)
	for i := 0; i < n; i++ {
		r := kbin.NewReader(in)
		length := r.Varint()
		if r.Err() != nil {
			return nil, kerr.New(kerr.ShortRead, path, r.Offset())
		}
		used := r.Offset()
		total := used + int(length)
		if length < 0 || total > len(in) {
			return nil, kerr.Newf(kerr.LengthOutOfRange, path, used, "<= remaining bytes", "record length out of range")
		}

		rec, err := decodeOneRecord(in[used:total], path)
		if err != nil {
			return nil, err
		}
		records[i] = rec
		in = in[total:]
	}
	return records, nil
}

func decodeOneRecord(in []byte, path string) (Record, error) {
	r := kbin.NewReader(in)
	var rec Record
	rec.Attributes = r.Int8()
	rec.TimestampDelta = r.Varint()
	rec.OffsetDelta = r.Varint()

	keyLen := r.Varint32()
	if keyLen >= 0 {
		rec.Key = r.Span(int(keyLen))
	}
	valLen := r.Varint32()
	if valLen >= 0 {
		rec.Value = r.Span(int(valLen))
	}

	headerCount := r.Varint32()
	if headerCount > 0 {
		rec.Headers = make([]RecordHeader, headerCount)
		for i := range rec.Headers {
			keyLen := r.Varint32()
			var key string
			if keyLen >= 0 {
				key = string(r.Span(int(keyLen)))
			}
			valLen := r.Varint32()
			var val []byte
			if valLen >= 0 {
				val = r.Span(int(valLen))
			}
			rec.Headers[i] = RecordHeader{Key: key, Value: val}
		}
	}

	if err := r.Complete(); err != nil {
		return Record{}, kerr.New(kerr.ShortRead, path, r.Offset())
	}
	return rec, nil
}

// Encode appends b to dst, recomputing BatchLength and CRC from the
// record contents so the caller never has to maintain them by hand.
func Encode(dst []byte, b Batch) []byte {
	w := kbin.Writer{B: dst}
	bodyStart := len(w.B)

	w.AppendInt64(b.Header.BaseOffset)
	lengthPos := len(w.B)
	w.AppendInt32(0) // patched below
	w.AppendInt32(b.Header.PartitionLeaderEpoch)
	w.AppendInt8(b.Header.Magic)
	crcPos := len(w.B)
	w.AppendUint32(0) // patched below
	attrsStart := len(w.B)
	w.AppendInt16(b.Header.Attributes)
	w.AppendInt32(b.Header.LastOffsetDelta)
	w.AppendInt64(b.Header.BaseTimestamp)
	w.AppendInt64(b.Header.MaxTimestamp)
	w.AppendInt64(b.Header.ProducerId)
	w.AppendInt16(b.Header.ProducerEpoch)
	w.AppendInt32(b.Header.BaseSequence)
	w.AppendInt32(int32(len(b.Records)))

	for _, rec := range b.Records {
		encodeOneRecord(&w, rec)
	}

	total := len(w.B) - bodyStart
	binary.BigEndian.PutUint32(w.B[lengthPos:], uint32(total-12))
	crc := crc32.Checksum(w.B[attrsStart:], crc32c)
	binary.BigEndian.PutUint32(w.B[crcPos:], crc)

	return w.B
}

func encodeOneRecord(w *kbin.Writer, rec Record) {
	var body kbin.Writer
	body.AppendInt8(rec.Attributes)
	body.AppendVarint(rec.TimestampDelta)
	body.AppendVarint(rec.OffsetDelta)
	appendVarintBytes(&body, rec.Key)
	appendVarintBytes(&body, rec.Value)
	body.AppendVarint(int64(len(rec.Headers)))
	for _, h := range rec.Headers {
		body.AppendVarint32(int32(len(h.Key)))
		body.B = append(body.B, h.Key...)
		appendVarintBytes(&body, h.Value)
	}

	w.AppendVarint(int64(len(body.B)))
	w.B = append(w.B, body.B...)
}

func appendVarintBytes(w *kbin.Writer, b []byte) {
	if b == nil {
		w.AppendVarint(-1)
		return
	}
	w.AppendVarint(int64(len(b)))
	w.B = append(w.B, b...)
}

func formatUint32(v uint32) string {
	const hex = "0123456789abcdef"
	buf := [10]byte{'0', 'x', 0, 0, 0, 0, 0, 0, 0, 0}
	for i := 0; i < 8; i++ {
		buf[9-i] = hex[(v>>(4*uint(i)))&0xf]
	}
	return string(buf[:])
}
