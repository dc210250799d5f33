package proto

import (
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
	_ "google.golang.org/grpc/encoding/proto" // registers the standard "proto" codec
	"google.golang.org/grpc/mem"
)

// Codec encodes Message values in protobuf wire format. Its name is "proto",
// so calls carry the standard application/grpc+proto content type. Values
// that are not a Message, such as generated messages of other services on
// the same server, are handed to the registered "proto" codec.
type Codec struct{}

var _ encoding.Codec = Codec{}

// Name returns the content-subtype of the codec.
func (Codec) Name() string { return "proto" }

// Marshal encodes v.
func (Codec) Marshal(v any) ([]byte, error) {
	if m, ok := v.(Message); ok {
		return m.Marshal()
	}

	fallback, err := standardCodec()
	if err != nil {
		return nil, err
	}
	out, err := fallback.Marshal(v)
	if err != nil {
		return nil, err
	}
	defer out.Free()
	return out.Materialize(), nil
}

// Unmarshal decodes data into v.
func (Codec) Unmarshal(data []byte, v any) error {
	if m, ok := v.(Message); ok {
		return m.Unmarshal(data)
	}

	fallback, err := standardCodec()
	if err != nil {
		return err
	}
	return fallback.Unmarshal(mem.BufferSlice{mem.SliceBuffer(data)}, v)
}

func standardCodec() (encoding.CodecV2, error) {
	c := encoding.GetCodecV2("proto")
	if c == nil {
		return nil, fmt.Errorf("proto: no standard codec registered")
	}
	return c, nil
}

// ServerCodec is the grpc.ServerOption servers built on these stubs need.
// Other services registered on the same server keep working.
func ServerCodec() grpc.ServerOption {
	return grpc.ForceServerCodec(Codec{})
}
