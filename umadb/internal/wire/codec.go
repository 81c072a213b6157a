package wire

import (
	jsoniter "github.com/json-iterator/go"
	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content-subtype of the JSON codec; calls must carry
// grpc.CallContentSubtype(CodecName) so both ends pick it.
const CodecName = "json"

type jsonCodec struct {
	api jsoniter.API
}

func (c jsonCodec) Marshal(v any) ([]byte, error) {
	return c.api.Marshal(v)
}

func (c jsonCodec) Unmarshal(data []byte, v any) error {
	return c.api.Unmarshal(data, v)
}

func (c jsonCodec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{api: jsoniter.ConfigCompatibleWithStandardLibrary})
}
