package pinecone

import (
	"github.com/pinecone-io/go-pinecone/v2/pinecone"
	"google.golang.org/protobuf/types/known/structpb"
)

// metadataToProto converts record metadata into the protobuf struct the
// service expects. Nil or empty input yields nil.
func metadataToProto(metadata map[string]string) (*pinecone.Metadata, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	fields := make(map[string]interface{}, len(metadata))
	for k, v := range metadata {
		fields[k] = v
	}
	return structpb.NewStruct(fields)
}

// metadataFromProto extracts string fields from service metadata. Non-string
// values are skipped.
func metadataFromProto(metadata *pinecone.Metadata) map[string]string {
	if metadata == nil || len(metadata.Fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(metadata.Fields))
	for k, v := range metadata.Fields {
		if s, ok := v.GetKind().(*structpb.Value_StringValue); ok {
			out[k] = s.StringValue
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
