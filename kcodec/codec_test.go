package kcodec

import (
	"bytes"
	"testing"

	"github.com/tansu-io/kafkawire/kerr"
	"github.com/tansu-io/kafkawire/krecordbatch"
	"github.com/tansu-io/kafkawire/kschema"
	"github.com/tansu-io/kafkawire/kvalue"
)

// TestApiVersionsRequestV3Literal decodes the literal byte sequence from
// the protocol's own ApiVersions v3 walkthrough and checks both the
// decoded fields and that re-encoding reproduces the input exactly.
func TestApiVersionsRequestV3Literal(t *testing.T) {
	frame := append([]byte{
		0x00, 0x12, // api_key = 18
		0x00, 0x03, // api_version = 3
		0x00, 0x00, 0x00, 0x03, // correlation_id = 3
		0x00, 0x10, // client_id length = 16 (non-compact)
	}, []byte("console-producer")...)
	frame = append(frame, 0x00)  // request header tag count
	frame = append(frame, 0x12)  // compact string len (18 => 17 bytes)
	frame = append(frame, []byte("apache-kafka-java")...)
	frame = append(frame, 0x06) // compact string len (6 => 5 bytes)
	frame = append(frame, []byte("3.6.1")...)
	frame = append(frame, 0x00) // body tag count

	c := New()
	h, body, err := c.DecodeRequest(frame)
	if err != nil {
		t.Fatalf("DecodeRequest() error = %v", err)
	}
	if h.ApiKey != 18 || h.ApiVersion != 3 || h.CorrelationId != 3 {
		t.Fatalf("header = %+v", h)
	}
	if h.ClientId == nil || *h.ClientId != "console-producer" {
		t.Fatalf("ClientId = %v", h.ClientId)
	}
	name, _ := body.Struct.Get("ClientSoftwareName")
	if name.Str != "apache-kafka-java" {
		t.Fatalf("ClientSoftwareName = %q", name.Str)
	}
	version, _ := body.Struct.Get("ClientSoftwareVersion")
	if version.Str != "3.6.1" {
		t.Fatalf("ClientSoftwareVersion = %q", version.Str)
	}

	reencoded, err := c.EncodeRequest(h, body)
	if err != nil {
		t.Fatalf("EncodeRequest() error = %v", err)
	}
	if !bytes.Equal(reencoded, frame) {
		t.Fatalf("re-encode mismatch:\ngot  % x\nwant % x", reencoded, frame)
	}
}

func apiVersionsEntry(apiKey, minVersion, maxVersion int16) kvalue.FieldValue {
	return kvalue.F("", kvalue.Struct(
		kvalue.F("ApiKey", kvalue.I16(apiKey)),
		kvalue.F("MinVersion", kvalue.I16(minVersion)),
		kvalue.F("MaxVersion", kvalue.I16(maxVersion)),
	))
}

// TestApiVersionsResponseV1RoundTrip exercises the non-flexible response
// path (no header or body tag buffers at all) with a 37-entry api key
// array, matching the real broker's advertised RPC count.
func TestApiVersionsResponseV1RoundTrip(t *testing.T) {
	entries := make([]kvalue.Value, 37)
	for i := range entries {
		entries[i] = apiVersionsEntry(int16(i), 0, 0).Value
	}
	body := kvalue.Struct(
		kvalue.F("ErrorCode", kvalue.I16(0)),
		kvalue.F("ApiKeys", kvalue.Value{Kind: kschema.KindSequence, Seq: entries}),
		kvalue.F("ThrottleTimeMs", kvalue.I32(0)),
	)

	c := New()
	encoded, err := c.EncodeResponse(18, 1, ResponseHeader{CorrelationId: 7}, body)
	if err != nil {
		t.Fatalf("EncodeResponse() error = %v", err)
	}

	h, decoded, err := c.DecodeResponse(18, 1, encoded)
	if err != nil {
		t.Fatalf("DecodeResponse() error = %v", err)
	}
	if h.CorrelationId != 7 {
		t.Fatalf("CorrelationId = %d, want 7", h.CorrelationId)
	}
	keys, _ := decoded.Struct.Get("ApiKeys")
	if len(keys.Seq) != 37 {
		t.Fatalf("len(ApiKeys) = %d, want 37", len(keys.Seq))
	}

	reencoded, err := c.EncodeResponse(18, 1, h, decoded)
	if err != nil {
		t.Fatalf("re-EncodeResponse() error = %v", err)
	}
	if !bytes.Equal(reencoded, encoded) {
		t.Fatalf("re-encode mismatch:\ngot  % x\nwant % x", reencoded, encoded)
	}
}

// TestApiVersionsResponseV3HeaderQuirk checks that a v3 (flexible-body)
// ApiVersions response is still encoded with a NON-flexible header: no
// header tag buffer byte, even though the body carries one.
func TestApiVersionsResponseV3HeaderQuirk(t *testing.T) {
	body := kvalue.Struct(
		kvalue.F("ErrorCode", kvalue.I16(0)),
		kvalue.F("ApiKeys", kvalue.Value{Kind: kschema.KindSequence, Seq: []kvalue.Value{apiVersionsEntry(18, 0, 3).Value}}),
		kvalue.F("ThrottleTimeMs", kvalue.I32(0)),
	)

	c := New()
	encoded, err := c.EncodeResponse(18, 3, ResponseHeader{CorrelationId: 42}, body)
	if err != nil {
		t.Fatalf("EncodeResponse() error = %v", err)
	}

	// First 4 bytes are the correlation id; a flexible header would insert
	// a tag-count byte immediately after. Since this api key's header is
	// never flexible, bytes 4-5 are the body's ErrorCode and byte 6 is the
	// ApiKeys compact length (1 entry => 0x02); with a header tag byte,
	// byte 6 would be ErrorCode's low byte (0x00) instead.
	if len(encoded) < 7 {
		t.Fatalf("encoded too short: % x", encoded)
	}
	if encoded[4] != 0x00 || encoded[5] != 0x00 || encoded[6] != 0x02 {
		t.Fatalf("expected ErrorCode=0 then ApiKeys length immediately after correlation id, got % x", encoded[4:7])
	}

	h, decoded, err := c.DecodeResponse(18, 3, encoded)
	if err != nil {
		t.Fatalf("DecodeResponse() error = %v", err)
	}
	if h.CorrelationId != 42 {
		t.Fatalf("CorrelationId = %d, want 42", h.CorrelationId)
	}

	reencoded, err := c.EncodeResponse(18, 3, h, decoded)
	if err != nil {
		t.Fatalf("re-EncodeResponse() error = %v", err)
	}
	if !bytes.Equal(reencoded, encoded) {
		t.Fatalf("re-encode mismatch:\ngot  % x\nwant % x", reencoded, encoded)
	}
}

// TestCreateTopicsResponseV7RoundTrip builds a response with one topic
// carrying 31 resolved config entries, exercising compact strings,
// nullable strings and nested sequences at the flexible v7 version.
func TestCreateTopicsResponseV7RoundTrip(t *testing.T) {
	configs := make([]kvalue.Value, 31)
	for i := range configs {
		val := kvalue.Str("1048576")
		if i%5 == 0 {
			val = kvalue.NullStr()
		}
		configs[i] = kvalue.Struct(
			kvalue.F("Name", kvalue.Str("config.key")),
			kvalue.F("Value", val),
			kvalue.F("ReadOnly", kvalue.Bool(i%2 == 0)),
			kvalue.F("ConfigSource", kvalue.I8(1)),
			kvalue.F("IsSensitive", kvalue.Bool(false)),
		)
	}

	topic := kvalue.Struct(
		kvalue.F("Name", kvalue.Str("orders")),
		kvalue.F("TopicId", kvalue.Value{Kind: kschema.KindUuid}),
		kvalue.F("ErrorCode", kvalue.I16(0)),
		kvalue.F("ErrorMessage", kvalue.NullStr()),
		kvalue.F("NumPartitions", kvalue.I32(12)),
		kvalue.F("ReplicationFactor", kvalue.I16(3)),
		kvalue.F("Configs", kvalue.Value{Kind: kschema.KindSequence, Seq: configs}),
	)
	body := kvalue.Struct(
		kvalue.F("ThrottleTimeMs", kvalue.I32(0)),
		kvalue.F("Topics", kvalue.Value{Kind: kschema.KindSequence, Seq: []kvalue.Value{topic}}),
	)

	c := New()
	encoded, err := c.EncodeResponse(19, 7, ResponseHeader{CorrelationId: 1}, body)
	if err != nil {
		t.Fatalf("EncodeResponse() error = %v", err)
	}

	h, decoded, err := c.DecodeResponse(19, 7, encoded)
	if err != nil {
		t.Fatalf("DecodeResponse() error = %v", err)
	}
	topics, _ := decoded.Struct.Get("Topics")
	gotConfigs, _ := topics.Seq[0].Struct.Get("Configs")
	if len(gotConfigs.Seq) != 31 {
		t.Fatalf("len(Configs) = %d, want 31", len(gotConfigs.Seq))
	}

	reencoded, err := c.EncodeResponse(19, 7, h, decoded)
	if err != nil {
		t.Fatalf("re-EncodeResponse() error = %v", err)
	}
	if !bytes.Equal(reencoded, encoded) {
		t.Fatalf("re-encode mismatch:\ngot  % x\nwant % x", reencoded, encoded)
	}
}

func elevenMixedRecords() krecordbatch.Batch {
	b := krecordbatch.Batch{
		Header: krecordbatch.Header{Magic: 2, ProducerId: -1, ProducerEpoch: -1, BaseSequence: -1},
	}
	for i := 0; i < 11; i++ {
		rec := krecordbatch.Record{TimestampDelta: int64(i), OffsetDelta: int64(i)}
		switch {
		case i%3 == 0:
			rec.Key = []byte("k")
			rec.Value = []byte("v")
		case i%3 == 1:
			rec.Value = []byte("v-only")
		default:
			rec.Headers = []krecordbatch.RecordHeader{{Key: "h", Value: []byte("hv")}}
		}
		b.Records = append(b.Records, rec)
	}
	return b
}

// TestFetchResponseV12RecordBatch carries an 11-record batch through the
// Records field of a flexible Fetch response, checking that the embedded
// batch's CRC and varint record framing survive the outer frame untouched.
func TestFetchResponseV12RecordBatch(t *testing.T) {
	batchBytes := krecordbatch.Encode(nil, elevenMixedRecords())

	partition := kvalue.Struct(
		kvalue.F("PartitionIndex", kvalue.I32(0)),
		kvalue.F("ErrorCode", kvalue.I16(0)),
		kvalue.F("HighWatermark", kvalue.I64(11)),
		kvalue.F("LastStableOffset", kvalue.I64(11)),
		kvalue.F("LogStartOffset", kvalue.I64(0)),
		kvalue.F("AbortedTransactions", kvalue.NullValue(kschema.KindSequence)),
		kvalue.F("PreferredReadReplica", kvalue.I32(-1)),
		kvalue.F("Records", kvalue.Value{Kind: kschema.KindRecords, Records: batchBytes}),
	)
	topic := kvalue.Struct(
		kvalue.F("Topic", kvalue.Str("orders")),
		kvalue.F("Partitions", kvalue.Value{Kind: kschema.KindSequence, Seq: []kvalue.Value{partition}}),
	)
	body := kvalue.Struct(
		kvalue.F("ThrottleTimeMs", kvalue.I32(0)),
		kvalue.F("ErrorCode", kvalue.I16(0)),
		kvalue.F("SessionId", kvalue.I32(0)),
		kvalue.F("Responses", kvalue.Value{Kind: kschema.KindSequence, Seq: []kvalue.Value{topic}}),
	)

	c := New()
	encoded, err := c.EncodeResponse(1, 12, ResponseHeader{CorrelationId: 3}, body)
	if err != nil {
		t.Fatalf("EncodeResponse() error = %v", err)
	}

	_, decoded, err := c.DecodeResponse(1, 12, encoded)
	if err != nil {
		t.Fatalf("DecodeResponse() error = %v", err)
	}
	responses, _ := decoded.Struct.Get("Responses")
	partitions, _ := responses.Seq[0].Struct.Get("Partitions")
	records, _ := partitions.Seq[0].Struct.Get("Records")
	if !bytes.Equal(records.Records, batchBytes) {
		t.Fatalf("Records bytes mismatch")
	}

	batch, err := krecordbatch.Decode(records.Records, "test")
	if err != nil {
		t.Fatalf("krecordbatch.Decode() error = %v", err)
	}
	if len(batch.Records) != 11 {
		t.Fatalf("len(batch.Records) = %d, want 11", len(batch.Records))
	}
}

// TestProduceRequestV9RoundTrip carries a single record batch of one
// record with value "def" through a flexible Produce request.
func TestProduceRequestV9RoundTrip(t *testing.T) {
	batch := krecordbatch.Batch{
		Header: krecordbatch.Header{Magic: 2, ProducerId: -1, ProducerEpoch: -1, BaseSequence: -1},
		Records: []krecordbatch.Record{
			{Value: []byte("def")},
		},
	}
	batchBytes := krecordbatch.Encode(nil, batch)

	partitionData := kvalue.Struct(
		kvalue.F("Index", kvalue.I32(0)),
		kvalue.F("Records", kvalue.Value{Kind: kschema.KindRecords, Records: batchBytes}),
	)
	topicData := kvalue.Struct(
		kvalue.F("Name", kvalue.Str("orders")),
		kvalue.F("PartitionData", kvalue.Value{Kind: kschema.KindSequence, Seq: []kvalue.Value{partitionData}}),
	)
	body := kvalue.Struct(
		kvalue.F("TransactionalId", kvalue.NullStr()),
		kvalue.F("Acks", kvalue.I16(-1)),
		kvalue.F("TimeoutMs", kvalue.I32(30000)),
		kvalue.F("TopicData", kvalue.Value{Kind: kschema.KindSequence, Seq: []kvalue.Value{topicData}}),
	)
	clientID := "producer-1"
	h := RequestHeader{ApiKey: 0, ApiVersion: 9, CorrelationId: 5, ClientId: &clientID}

	c := New()
	encoded, err := c.EncodeRequest(h, body)
	if err != nil {
		t.Fatalf("EncodeRequest() error = %v", err)
	}

	decodedHeader, decoded, err := c.DecodeRequest(encoded)
	if err != nil {
		t.Fatalf("DecodeRequest() error = %v", err)
	}
	if decodedHeader.ApiVersion != 9 {
		t.Fatalf("ApiVersion = %d, want 9", decodedHeader.ApiVersion)
	}
	topics, _ := decoded.Struct.Get("TopicData")
	partitions, _ := topics.Seq[0].Struct.Get("PartitionData")
	records, _ := partitions.Seq[0].Struct.Get("Records")
	if !bytes.Equal(records.Records, batchBytes) {
		t.Fatalf("Records mismatch")
	}

	reencoded, err := c.EncodeRequest(decodedHeader, decoded)
	if err != nil {
		t.Fatalf("re-EncodeRequest() error = %v", err)
	}
	if !bytes.Equal(reencoded, encoded) {
		t.Fatalf("re-encode mismatch:\ngot  % x\nwant % x", reencoded, encoded)
	}
}

func TestUnknownApiKeyFails(t *testing.T) {
	c := New()
	_, _, err := c.DecodeRequest([]byte{0x7f, 0xff, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
	ce, ok := err.(*kerr.Error)
	if !ok || ce.Kind != kerr.UnknownApiKey {
		t.Fatalf("error = %v, want kerr.UnknownApiKey", err)
	}
}

func TestUnsupportedApiVersionFails(t *testing.T) {
	c := New()
	_, _, err := c.DecodeRequest([]byte{0x00, 0x12, 0x00, 0x63, 0x00, 0x00, 0x00, 0x00})
	ce, ok := err.(*kerr.Error)
	if !ok || ce.Kind != kerr.UnsupportedApiVersion {
		t.Fatalf("error = %v, want kerr.UnsupportedApiVersion", err)
	}
}

func TestInvalidUtf8Rejected(t *testing.T) {
	body := kvalue.Struct(
		kvalue.F("ClientSoftwareName", kvalue.Str(string([]byte{0xff, 0xfe}))),
		kvalue.F("ClientSoftwareVersion", kvalue.Str("1.0")),
	)
	h := RequestHeader{ApiKey: 18, ApiVersion: 3, CorrelationId: 1}
	c := New()
	_, err := c.EncodeRequest(h, body)
	ce, ok := err.(*kerr.Error)
	if !ok || ce.Kind != kerr.InvalidUtf8 {
		t.Fatalf("error = %v, want kerr.InvalidUtf8", err)
	}
}

func TestFrameTooLarge(t *testing.T) {
	r := bytes.NewReader(append([]byte{0x7f, 0xff, 0xff, 0xff}, make([]byte, 16)...))
	_, err := ReadFrame(r, 1024)
	ce, ok := err.(*kerr.Error)
	if !ok || ce.Kind != kerr.FrameTooLarge {
		t.Fatalf("error = %v, want kerr.FrameTooLarge", err)
	}
}

// TestTagOrderPreservedOnUnknownTags checks that an unrecognized tag in a
// flexible struct's tag buffer survives a decode/re-encode cycle, and that
// tags are always written back in ascending tag-id order regardless of the
// order they were read in.
func TestTagOrderPreservedOnUnknownTags(t *testing.T) {
	frame := []byte{
		0x00, 0x12, // api_key = 18
		0x00, 0x03, // api_version = 3
		0x00, 0x00, 0x00, 0x01, // correlation_id = 1
		0xff, 0xff, // client_id = null
		0x00, // header tag count (never flexible fields to add; still v3 flexible header)
	}
	frame = append(frame, 0x12)
	frame = append(frame, []byte("apache-kafka-java")...)
	frame = append(frame, 0x06)
	frame = append(frame, []byte("3.6.1")...)
	frame = append(frame, 0x02)                // 2 tags, out of ascending order on the wire
	frame = append(frame, 0x05, 0x01, 0xaa)    // tag 5
	frame = append(frame, 0x01, 0x01, 0xbb)    // tag 1

	c := New()
	h, body, err := c.DecodeRequest(frame)
	if err != nil {
		t.Fatalf("DecodeRequest() error = %v", err)
	}
	if !body.Struct.HasTags || len(body.Struct.Tags) != 2 {
		t.Fatalf("Tags = %+v", body.Struct.Tags)
	}

	reencoded, err := c.EncodeRequest(h, body)
	if err != nil {
		t.Fatalf("EncodeRequest() error = %v", err)
	}
	want := []byte{0x02, 0x01, 0x01, 0xbb, 0x05, 0x01, 0xaa}
	if idx := bytes.Index(reencoded, want); idx < 0 {
		t.Fatalf("tags not written in ascending order: % x", reencoded)
	}
}

func TestVersionGatingOmitsAbsentFields(t *testing.T) {
	c := New()
	body := kvalue.Struct(
		kvalue.F("ErrorCode", kvalue.I16(0)),
		kvalue.F("ApiKeys", kvalue.Value{Kind: kschema.KindSequence}),
	)
	// ThrottleTimeMs is absent at v0; omitting it from sv must not error.
	encoded, err := c.EncodeResponse(18, 0, ResponseHeader{CorrelationId: 1}, body)
	if err != nil {
		t.Fatalf("EncodeResponse() error = %v", err)
	}
	if len(encoded) == 0 {
		t.Fatal("encoded empty")
	}
	_, decoded, err := c.DecodeResponse(18, 0, encoded)
	if err != nil {
		t.Fatalf("DecodeResponse() error = %v", err)
	}
	if _, ok := decoded.Struct.Get("ThrottleTimeMs"); ok {
		t.Fatal("ThrottleTimeMs present at v0, want absent")
	}
}
