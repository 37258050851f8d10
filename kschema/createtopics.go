package kschema

// CreateTopics (api key 19) creates one or more topics, optionally
// returning the resolved per-topic configuration.
const ApiKeyCreateTopics int16 = 19

func init() {
	Default.Register(Request, MessageMeta{
		ApiKey:        ApiKeyCreateTopics,
		ApiName:       "CreateTopics",
		MaxVersion:    7,
		FlexibleSince: 5,
		Root: StructMeta{
			Fields: []FieldMeta{
				{Name: "Topics", Kind: KindSequence, Versions: Always,
					Elem: &FieldMeta{Kind: KindStruct, Struct: "CreatableTopic", Versions: Always}},
				{Name: "TimeoutMs", Kind: KindI32, Versions: Always},
				{Name: "ValidateOnly", Kind: KindBool, Versions: VersionRange{1, -1}},
			},
		},
		Structs: map[string]StructMeta{
			"CreatableTopic": {
				Fields: []FieldMeta{
					{Name: "Name", Kind: KindString, Versions: Always},
					{Name: "NumPartitions", Kind: KindI32, Versions: Always},
					{Name: "ReplicationFactor", Kind: KindI16, Versions: Always},
					{Name: "Assignments", Kind: KindSequence, Versions: Always,
						Elem: &FieldMeta{Kind: KindStruct, Struct: "CreatableReplicaAssignment", Versions: Always}},
					{Name: "Configs", Kind: KindSequence, Versions: Always,
						Elem: &FieldMeta{Kind: KindStruct, Struct: "CreateableTopicConfig", Versions: Always}},
				},
			},
			"CreatableReplicaAssignment": {
				Fields: []FieldMeta{
					{Name: "PartitionIndex", Kind: KindI32, Versions: Always},
					{Name: "BrokerIds", Kind: KindSequence, Versions: Always,
						Elem: &FieldMeta{Kind: KindI32, Versions: Always}},
				},
			},
			"CreateableTopicConfig": {
				Fields: []FieldMeta{
					{Name: "Name", Kind: KindString, Versions: Always},
					{Name: "Value", Kind: KindString, Versions: Always, Nullable: Always},
				},
			},
		},
	})

	Default.Register(Response, MessageMeta{
		ApiKey:        ApiKeyCreateTopics,
		ApiName:       "CreateTopics",
		MaxVersion:    7,
		FlexibleSince: 5,
		Root: StructMeta{
			Fields: []FieldMeta{
				{Name: "ThrottleTimeMs", Kind: KindI32, Versions: VersionRange{2, -1}},
				{Name: "Topics", Kind: KindSequence, Versions: Always,
					Elem: &FieldMeta{Kind: KindStruct, Struct: "CreatableTopicResult", Versions: Always}},
			},
		},
		Structs: map[string]StructMeta{
			"CreatableTopicResult": {
				Fields: []FieldMeta{
					{Name: "Name", Kind: KindString, Versions: Always},
					{Name: "TopicId", Kind: KindUuid, Versions: VersionRange{7, -1}},
					{Name: "ErrorCode", Kind: KindI16, Versions: Always},
					{Name: "ErrorMessage", Kind: KindString, Versions: VersionRange{1, -1}, Nullable: VersionRange{1, -1}},
					{Name: "NumPartitions", Kind: KindI32, Versions: VersionRange{5, -1}},
					{Name: "ReplicationFactor", Kind: KindI16, Versions: VersionRange{5, -1}},
					{Name: "Configs", Kind: KindSequence, Versions: VersionRange{5, -1}, Nullable: VersionRange{5, -1},
						Elem: &FieldMeta{Kind: KindStruct, Struct: "CreatableTopicConfigs", Versions: Always}},
				},
			},
			"CreatableTopicConfigs": {
				Fields: []FieldMeta{
					{Name: "Name", Kind: KindString, Versions: Always},
					{Name: "Value", Kind: KindString, Versions: Always, Nullable: Always},
					{Name: "ReadOnly", Kind: KindBool, Versions: Always},
					{Name: "ConfigSource", Kind: KindI8, Versions: Always},
					{Name: "IsSensitive", Kind: KindBool, Versions: Always},
				},
			},
		},
	})
}
