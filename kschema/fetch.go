package kschema

// Fetch (api key 1) is the consume path: a client asks for records from one
// or more topic-partitions at a given offset, and the broker returns
// whatever record batches it has, opaquely, via a Records field.
const ApiKeyFetch int16 = 1

func init() {
	Default.Register(Request, MessageMeta{
		ApiKey:        ApiKeyFetch,
		ApiName:       "Fetch",
		MaxVersion:    12,
		FlexibleSince: 12,
		Root: StructMeta{
			Fields: []FieldMeta{
				{Name: "ReplicaId", Kind: KindI32, Versions: Always},
				{Name: "MaxWaitMs", Kind: KindI32, Versions: Always},
				{Name: "MinBytes", Kind: KindI32, Versions: Always},
				{Name: "MaxBytes", Kind: KindI32, Versions: VersionRange{3, -1}},
				{Name: "IsolationLevel", Kind: KindI8, Versions: VersionRange{4, -1}},
				{Name: "SessionId", Kind: KindI32, Versions: VersionRange{7, -1}},
				{Name: "SessionEpoch", Kind: KindI32, Versions: VersionRange{7, -1}},
				{Name: "Topics", Kind: KindSequence, Versions: Always,
					Elem: &FieldMeta{Kind: KindStruct, Struct: "FetchTopic", Versions: Always}},
			},
		},
		Structs: map[string]StructMeta{
			"FetchTopic": {
				Fields: []FieldMeta{
					{Name: "Topic", Kind: KindString, Versions: Always},
					{Name: "Partitions", Kind: KindSequence, Versions: Always,
						Elem: &FieldMeta{Kind: KindStruct, Struct: "FetchPartition", Versions: Always}},
				},
			},
			"FetchPartition": {
				Fields: []FieldMeta{
					{Name: "Partition", Kind: KindI32, Versions: Always},
					{Name: "CurrentLeaderEpoch", Kind: KindI32, Versions: VersionRange{9, -1}},
					{Name: "FetchOffset", Kind: KindI64, Versions: Always},
					{Name: "LastFetchedEpoch", Kind: KindI32, Versions: VersionRange{12, -1}},
					{Name: "LogStartOffset", Kind: KindI64, Versions: VersionRange{5, -1}},
					{Name: "PartitionMaxBytes", Kind: KindI32, Versions: Always},
				},
			},
		},
	})

	Default.Register(Response, MessageMeta{
		ApiKey:        ApiKeyFetch,
		ApiName:       "Fetch",
		MaxVersion:    12,
		FlexibleSince: 12,
		Root: StructMeta{
			Fields: []FieldMeta{
				{Name: "ThrottleTimeMs", Kind: KindI32, Versions: VersionRange{1, -1}},
				{Name: "ErrorCode", Kind: KindI16, Versions: VersionRange{7, -1}},
				{Name: "SessionId", Kind: KindI32, Versions: VersionRange{7, -1}},
				{Name: "Responses", Kind: KindSequence, Versions: Always,
					Elem: &FieldMeta{Kind: KindStruct, Struct: "FetchableTopicResponse", Versions: Always}},
			},
		},
		Structs: map[string]StructMeta{
			"FetchableTopicResponse": {
				Fields: []FieldMeta{
					{Name: "Topic", Kind: KindString, Versions: Always},
					{Name: "Partitions", Kind: KindSequence, Versions: Always,
						Elem: &FieldMeta{Kind: KindStruct, Struct: "FetchablePartitionResponse", Versions: Always}},
				},
			},
			"FetchablePartitionResponse": {
				Fields: []FieldMeta{
					{Name: "PartitionIndex", Kind: KindI32, Versions: Always},
					{Name: "ErrorCode", Kind: KindI16, Versions: Always},
					{Name: "HighWatermark", Kind: KindI64, Versions: Always},
					{Name: "LastStableOffset", Kind: KindI64, Versions: VersionRange{4, -1}},
					{Name: "LogStartOffset", Kind: KindI64, Versions: VersionRange{5, -1}},
					{Name: "AbortedTransactions", Kind: KindSequence, Versions: VersionRange{4, -1}, Nullable: VersionRange{4, -1},
						Elem: &FieldMeta{Kind: KindStruct, Struct: "AbortedTransaction", Versions: Always}},
					{Name: "PreferredReadReplica", Kind: KindI32, Versions: VersionRange{11, -1}},
					{Name: "Records", Kind: KindRecords, Versions: Always, Nullable: Always},
				},
			},
			"AbortedTransaction": {
				Fields: []FieldMeta{
					{Name: "ProducerId", Kind: KindI64, Versions: Always},
					{Name: "FirstOffset", Kind: KindI64, Versions: Always},
				},
			},
		},
	})
}
