package kfake

import (
	"net"
	"testing"

	"github.com/tansu-io/kafkawire/kcodec"
	"github.com/tansu-io/kafkawire/kschema"
	"github.com/tansu-io/kafkawire/kvalue"
)

func dialCluster(t *testing.T, c *Cluster) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", c.ListenAddrs()[0])
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestApiVersionsRoundTripOverSocket(t *testing.T) {
	c, err := NewCluster()
	if err != nil {
		t.Fatalf("NewCluster() error = %v", err)
	}
	t.Cleanup(func() { c.Close() }) // runs after dialCluster's conn.Close

	conn := dialCluster(t, c)
	codec := kcodec.New()

	clientID := "test-client"
	reqHeader := kcodec.RequestHeader{
		ApiKey: kschema.ApiKeyApiVersions, ApiVersion: 3, CorrelationId: 1, ClientId: &clientID,
	}
	reqBody := kvalue.Struct(
		kvalue.F("ClientSoftwareName", kvalue.Str("kafkawire-test")),
		kvalue.F("ClientSoftwareVersion", kvalue.Str("0.0.1")),
	)
	frame, err := codec.EncodeRequest(reqHeader, reqBody)
	if err != nil {
		t.Fatalf("EncodeRequest() error = %v", err)
	}
	if err := kcodec.WriteFrame(conn, frame); err != nil {
		t.Fatalf("WriteFrame() error = %v", err)
	}

	respFrame, err := kcodec.ReadFrame(conn, codec.MaxFrameBytes())
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	respHeader, respBody, err := codec.DecodeResponse(kschema.ApiKeyApiVersions, 3, respFrame)
	if err != nil {
		t.Fatalf("DecodeResponse() error = %v", err)
	}
	if respHeader.CorrelationId != 1 {
		t.Fatalf("CorrelationId = %d, want 1", respHeader.CorrelationId)
	}
	keys, _ := respBody.Struct.Get("ApiKeys")
	if len(keys.Seq) == 0 {
		t.Fatal("ApiKeys empty")
	}
}

func TestCreateTopicsEchoesRequestedTopics(t *testing.T) {
	c, err := NewCluster()
	if err != nil {
		t.Fatalf("NewCluster() error = %v", err)
	}
	t.Cleanup(func() { c.Close() }) // runs after dialCluster's conn.Close

	conn := dialCluster(t, c)
	codec := kcodec.New()

	topic := kvalue.Struct(
		kvalue.F("Name", kvalue.Str("orders")),
		kvalue.F("NumPartitions", kvalue.I32(3)),
		kvalue.F("ReplicationFactor", kvalue.I16(1)),
		kvalue.F("Assignments", kvalue.Value{Kind: kschema.KindSequence}),
		kvalue.F("Configs", kvalue.Value{Kind: kschema.KindSequence}),
	)
	reqBody := kvalue.Struct(
		kvalue.F("Topics", kvalue.Value{Kind: kschema.KindSequence, Seq: []kvalue.Value{topic}}),
		kvalue.F("TimeoutMs", kvalue.I32(5000)),
		kvalue.F("ValidateOnly", kvalue.Bool(false)),
	)
	reqHeader := kcodec.RequestHeader{ApiKey: kschema.ApiKeyCreateTopics, ApiVersion: 7, CorrelationId: 2}
	frame, err := codec.EncodeRequest(reqHeader, reqBody)
	if err != nil {
		t.Fatalf("EncodeRequest() error = %v", err)
	}
	if err := kcodec.WriteFrame(conn, frame); err != nil {
		t.Fatalf("WriteFrame() error = %v", err)
	}

	respFrame, err := kcodec.ReadFrame(conn, codec.MaxFrameBytes())
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	_, respBody, err := codec.DecodeResponse(kschema.ApiKeyCreateTopics, 7, respFrame)
	if err != nil {
		t.Fatalf("DecodeResponse() error = %v", err)
	}
	topics, _ := respBody.Struct.Get("Topics")
	if len(topics.Seq) != 1 {
		t.Fatalf("len(Topics) = %d, want 1", len(topics.Seq))
	}
	name, _ := topics.Seq[0].Struct.Get("Name")
	if name.Str != "orders" {
		t.Fatalf("Name = %q, want orders", name.Str)
	}
}
