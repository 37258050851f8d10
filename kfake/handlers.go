package kfake

import (
	"github.com/tansu-io/kafkawire/kcodec"
	"github.com/tansu-io/kafkawire/kschema"
	"github.com/tansu-io/kafkawire/kvalue"
)

// installDefaultHandlers registers the canned responses for the four RPCs
// this codec ships schemas for. A real broker's ApiVersions response lists
// every api key it supports; this one lists only those four, which is
// enough for a client's version-negotiation handshake against the fake
// cluster to succeed.
func installDefaultHandlers(c *Cluster) {
	c.handlers[kschema.ApiKeyApiVersions] = handleApiVersions
	c.handlers[kschema.ApiKeyCreateTopics] = handleCreateTopics
	c.handlers[kschema.ApiKeyFetch] = handleFetch
	c.handlers[kschema.ApiKeyProduce] = handleProduce
}

func apiKeyEntry(apiKey, minVersion, maxVersion int16) kvalue.Value {
	return kvalue.Struct(
		kvalue.F("ApiKey", kvalue.I16(apiKey)),
		kvalue.F("MinVersion", kvalue.I16(minVersion)),
		kvalue.F("MaxVersion", kvalue.I16(maxVersion)),
	)
}

func handleApiVersions(_ kcodec.RequestHeader, _ kvalue.Value) (kvalue.Value, error) {
	keys := []kvalue.Value{
		apiKeyEntry(kschema.ApiKeyProduce, 0, 9),
		apiKeyEntry(kschema.ApiKeyFetch, 0, 12),
		apiKeyEntry(kschema.ApiKeyCreateTopics, 0, 7),
		apiKeyEntry(kschema.ApiKeyApiVersions, 0, 3),
	}
	return kvalue.Struct(
		kvalue.F("ErrorCode", kvalue.I16(0)),
		kvalue.F("ApiKeys", kvalue.Value{Kind: kschema.KindSequence, Seq: keys}),
		kvalue.F("ThrottleTimeMs", kvalue.I32(0)),
	), nil
}

// handleCreateTopics always succeeds, echoing back every requested topic
// with a zero error code and no resolved configs.
func handleCreateTopics(_ kcodec.RequestHeader, body kvalue.Value) (kvalue.Value, error) {
	reqTopics, _ := body.Struct.Get("Topics")
	results := make([]kvalue.Value, len(reqTopics.Seq))
	for i, t := range reqTopics.Seq {
		name, _ := t.Struct.Get("Name")
		numPartitions, _ := t.Struct.Get("NumPartitions")
		replicationFactor, _ := t.Struct.Get("ReplicationFactor")
		results[i] = kvalue.Struct(
			kvalue.F("Name", name),
			kvalue.F("TopicId", kvalue.Value{Kind: kschema.KindUuid}),
			kvalue.F("ErrorCode", kvalue.I16(0)),
			kvalue.F("ErrorMessage", kvalue.NullStr()),
			kvalue.F("NumPartitions", numPartitions),
			kvalue.F("ReplicationFactor", replicationFactor),
			kvalue.F("Configs", kvalue.NullValue(kschema.KindSequence)),
		)
	}
	return kvalue.Struct(
		kvalue.F("ThrottleTimeMs", kvalue.I32(0)),
		kvalue.F("Topics", kvalue.Value{Kind: kschema.KindSequence, Seq: results}),
	), nil
}

// handleFetch always reports an empty log: high watermark 0, no records.
// Tests that need the cluster to actually hold data install their own
// handler via WithHandler instead.
func handleFetch(_ kcodec.RequestHeader, body kvalue.Value) (kvalue.Value, error) {
	reqTopics, _ := body.Struct.Get("Topics")
	responses := make([]kvalue.Value, len(reqTopics.Seq))
	for i, t := range reqTopics.Seq {
		topic, _ := t.Struct.Get("Topic")
		reqPartitions, _ := t.Struct.Get("Partitions")
		partitions := make([]kvalue.Value, len(reqPartitions.Seq))
		for j, p := range reqPartitions.Seq {
			idx, _ := p.Struct.Get("Partition")
			partitions[j] = kvalue.Struct(
				kvalue.F("PartitionIndex", idx),
				kvalue.F("ErrorCode", kvalue.I16(0)),
				kvalue.F("HighWatermark", kvalue.I64(0)),
				kvalue.F("LastStableOffset", kvalue.I64(0)),
				kvalue.F("LogStartOffset", kvalue.I64(0)),
				kvalue.F("AbortedTransactions", kvalue.NullValue(kschema.KindSequence)),
				kvalue.F("PreferredReadReplica", kvalue.I32(-1)),
				kvalue.F("Records", kvalue.NullValue(kschema.KindRecords)),
			)
		}
		responses[i] = kvalue.Struct(
			kvalue.F("Topic", topic),
			kvalue.F("Partitions", kvalue.Value{Kind: kschema.KindSequence, Seq: partitions}),
		)
	}
	return kvalue.Struct(
		kvalue.F("ThrottleTimeMs", kvalue.I32(0)),
		kvalue.F("ErrorCode", kvalue.I16(0)),
		kvalue.F("SessionId", kvalue.I32(0)),
		kvalue.F("Responses", kvalue.Value{Kind: kschema.KindSequence, Seq: responses}),
	), nil
}

// handleProduce always acknowledges at offset 0 without retaining the
// records; see handleFetch.
func handleProduce(_ kcodec.RequestHeader, body kvalue.Value) (kvalue.Value, error) {
	topicData, _ := body.Struct.Get("TopicData")
	responses := make([]kvalue.Value, len(topicData.Seq))
	for i, t := range topicData.Seq {
		name, _ := t.Struct.Get("Name")
		reqPartitions, _ := t.Struct.Get("PartitionData")
		partitions := make([]kvalue.Value, len(reqPartitions.Seq))
		for j, p := range reqPartitions.Seq {
			idx, _ := p.Struct.Get("Index")
			partitions[j] = kvalue.Struct(
				kvalue.F("Index", idx),
				kvalue.F("ErrorCode", kvalue.I16(0)),
				kvalue.F("BaseOffset", kvalue.I64(0)),
				kvalue.F("LogAppendTimeMs", kvalue.I64(-1)),
				kvalue.F("LogStartOffset", kvalue.I64(0)),
			)
		}
		responses[i] = kvalue.Struct(
			kvalue.F("Name", name),
			kvalue.F("PartitionResponses", kvalue.Value{Kind: kschema.KindSequence, Seq: partitions}),
		)
	}
	return kvalue.Struct(
		kvalue.F("Responses", kvalue.Value{Kind: kschema.KindSequence, Seq: responses}),
		kvalue.F("ThrottleTimeMs", kvalue.I32(0)),
	), nil
}
