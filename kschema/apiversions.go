package kschema

// ApiVersions (api key 18) negotiates the version of every other RPC a
// client and broker can speak. It is the first request any client issues,
// which is why its response header quirk (see registry.go) exists: a client
// cannot know whether the broker understands a compact client id until
// after this exchange completes.
const ApiKeyApiVersions int16 = 18

func init() {
	Default.Register(Request, MessageMeta{
		ApiKey:        ApiKeyApiVersions,
		ApiName:       "ApiVersions",
		MaxVersion:    3,
		FlexibleSince: 3,
		Root: StructMeta{
			Name: "",
			Fields: []FieldMeta{
				{Name: "ClientSoftwareName", Kind: KindString, Versions: VersionRange{3, -1}},
				{Name: "ClientSoftwareVersion", Kind: KindString, Versions: VersionRange{3, -1}},
			},
		},
	})

	Default.Register(Response, MessageMeta{
		ApiKey:        ApiKeyApiVersions,
		ApiName:       "ApiVersions",
		MaxVersion:    3,
		FlexibleSince: 3,
		Root: StructMeta{
			Name: "",
			Fields: []FieldMeta{
				{Name: "ErrorCode", Kind: KindI16, Versions: Always},
				{Name: "ApiKeys", Kind: KindSequence, Versions: Always,
					Elem: &FieldMeta{Kind: KindStruct, Struct: "ApiVersionsResponseKey", Versions: Always}},
				{Name: "ThrottleTimeMs", Kind: KindI32, Versions: VersionRange{1, -1}},
			},
		},
		Structs: map[string]StructMeta{
			"ApiVersionsResponseKey": {
				Name: "ApiVersionsResponseKey",
				Fields: []FieldMeta{
					{Name: "ApiKey", Kind: KindI16, Versions: Always},
					{Name: "MinVersion", Kind: KindI16, Versions: Always},
					{Name: "MaxVersion", Kind: KindI16, Versions: Always},
				},
			},
		},
	})
}
