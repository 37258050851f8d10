package kschema

// Produce (api key 0) is the publish path: a client sends one record batch
// per topic-partition, carried opaquely in a Records field.
const ApiKeyProduce int16 = 0

func init() {
	Default.Register(Request, MessageMeta{
		ApiKey:        ApiKeyProduce,
		ApiName:       "Produce",
		MaxVersion:    9,
		FlexibleSince: 9,
		Root: StructMeta{
			Fields: []FieldMeta{
				{Name: "TransactionalId", Kind: KindString, Versions: VersionRange{3, -1}, Nullable: VersionRange{3, -1}},
				{Name: "Acks", Kind: KindI16, Versions: Always},
				{Name: "TimeoutMs", Kind: KindI32, Versions: Always},
				{Name: "TopicData", Kind: KindSequence, Versions: Always,
					Elem: &FieldMeta{Kind: KindStruct, Struct: "TopicProduceData", Versions: Always}},
			},
		},
		Structs: map[string]StructMeta{
			"TopicProduceData": {
				Fields: []FieldMeta{
					{Name: "Name", Kind: KindString, Versions: Always},
					{Name: "PartitionData", Kind: KindSequence, Versions: Always,
						Elem: &FieldMeta{Kind: KindStruct, Struct: "PartitionProduceData", Versions: Always}},
				},
			},
			"PartitionProduceData": {
				Fields: []FieldMeta{
					{Name: "Index", Kind: KindI32, Versions: Always},
					{Name: "Records", Kind: KindRecords, Versions: Always, Nullable: Always},
				},
			},
		},
	})

	Default.Register(Response, MessageMeta{
		ApiKey:        ApiKeyProduce,
		ApiName:       "Produce",
		MaxVersion:    9,
		FlexibleSince: 9,
		Root: StructMeta{
			Fields: []FieldMeta{
				{Name: "Responses", Kind: KindSequence, Versions: Always,
					Elem: &FieldMeta{Kind: KindStruct, Struct: "TopicProduceResponse", Versions: Always}},
				{Name: "ThrottleTimeMs", Kind: KindI32, Versions: VersionRange{1, -1}},
			},
		},
		Structs: map[string]StructMeta{
			"TopicProduceResponse": {
				Fields: []FieldMeta{
					{Name: "Name", Kind: KindString, Versions: Always},
					{Name: "PartitionResponses", Kind: KindSequence, Versions: Always,
						Elem: &FieldMeta{Kind: KindStruct, Struct: "PartitionProduceResponse", Versions: Always}},
				},
			},
			"PartitionProduceResponse": {
				Fields: []FieldMeta{
					{Name: "Index", Kind: KindI32, Versions: Always},
					{Name: "ErrorCode", Kind: KindI16, Versions: Always},
					{Name: "BaseOffset", Kind: KindI64, Versions: Always},
					{Name: "LogAppendTimeMs", Kind: KindI64, Versions: VersionRange{2, -1}},
					{Name: "LogStartOffset", Kind: KindI64, Versions: VersionRange{5, -1}},
				},
			},
		},
	})
}
