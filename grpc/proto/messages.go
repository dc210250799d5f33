// Package proto holds the message types and service stubs of the
// clamav.ClamAVScanner gRPC service.
//
// Messages are encoded in protobuf wire format with
// google.golang.org/protobuf/encoding/protowire, so they interoperate with
// servers built from the service's .proto definition. The stubs force the
// package Codec on every call; servers built on these stubs must be created
// with ServerCodec.
package proto

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Message is implemented by every message of the service.
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal(b []byte) error
}

// HealthCheckRequest has no fields.
type HealthCheckRequest struct{}

// HealthCheckResponse reports service health. Status is "healthy" when the daemon is reachable.
type HealthCheckResponse struct {
	Status  string
	Message string
}

// ScanFileRequest carries a whole file in one message.
type ScanFileRequest struct {
	Data     []byte
	Filename string
}

// ScanStreamRequest is one chunk frame. Filename is set on the first frame of
// a payload, IsLast on the final one. RequestId and Seq correlate frames in
// multi-file sessions; servers that predate them ignore both.
type ScanStreamRequest struct {
	Chunk     []byte
	Filename  string
	IsLast    bool
	RequestId string
	Seq       uint64
}

// ScanResponse is the terminal response for one payload.
type ScanResponse struct {
	Status    string
	Message   string
	ScanTime  float64
	Filename  string
	RequestId string
}

func (m *HealthCheckRequest) Marshal() ([]byte, error) { return nil, nil }

func (m *HealthCheckRequest) Unmarshal(b []byte) error {
	return decode(b, func(protowire.Number, protowire.Type, []byte) int { return 0 })
}

func (m *HealthCheckResponse) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Status)
	b = appendString(b, 2, m.Message)
	return b, nil
}

func (m *HealthCheckResponse) Unmarshal(b []byte) error {
	*m = HealthCheckResponse{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return consumeString(typ, b, &m.Status)
		case 2:
			return consumeString(typ, b, &m.Message)
		}
		return 0
	})
}

func (m *ScanFileRequest) Marshal() ([]byte, error) {
	b := make([]byte, 0, len(m.Data)+len(m.Filename)+16)
	b = appendBytes(b, 1, m.Data)
	b = appendString(b, 2, m.Filename)
	return b, nil
}

func (m *ScanFileRequest) Unmarshal(b []byte) error {
	*m = ScanFileRequest{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return consumeBytes(typ, b, &m.Data)
		case 2:
			return consumeString(typ, b, &m.Filename)
		}
		return 0
	})
}

func (m *ScanStreamRequest) Marshal() ([]byte, error) {
	b := make([]byte, 0, len(m.Chunk)+len(m.Filename)+len(m.RequestId)+32)
	b = appendBytes(b, 1, m.Chunk)
	b = appendString(b, 2, m.Filename)
	if m.IsLast {
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	b = appendString(b, 4, m.RequestId)
	if m.Seq != 0 {
		b = protowire.AppendTag(b, 5, protowire.VarintType)
		b = protowire.AppendVarint(b, m.Seq)
	}
	return b, nil
}

func (m *ScanStreamRequest) Unmarshal(b []byte) error {
	*m = ScanStreamRequest{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return consumeBytes(typ, b, &m.Chunk)
		case 2:
			return consumeString(typ, b, &m.Filename)
		case 3:
			var v uint64
			n := consumeVarint(typ, b, &v)
			m.IsLast = protowire.DecodeBool(v)
			return n
		case 4:
			return consumeString(typ, b, &m.RequestId)
		case 5:
			return consumeVarint(typ, b, &m.Seq)
		}
		return 0
	})
}

func (m *ScanResponse) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Status)
	b = appendString(b, 2, m.Message)
	if m.ScanTime != 0 {
		b = protowire.AppendTag(b, 3, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(m.ScanTime))
	}
	b = appendString(b, 4, m.Filename)
	b = appendString(b, 5, m.RequestId)
	return b, nil
}

func (m *ScanResponse) Unmarshal(b []byte) error {
	*m = ScanResponse{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return consumeString(typ, b, &m.Status)
		case 2:
			return consumeString(typ, b, &m.Message)
		case 3:
			if typ != protowire.Fixed64Type {
				return 0
			}
			v, n := protowire.ConsumeFixed64(b)
			if n >= 0 {
				m.ScanTime = math.Float64frombits(v)
			}
			return n
		case 4:
			return consumeString(typ, b, &m.Filename)
		case 5:
			return consumeString(typ, b, &m.RequestId)
		}
		return 0
	})
}

// decode walks the fields of b. field returns the bytes consumed for a known
// field, 0 to skip the field as unknown, or a negative protowire error code.
func decode(b []byte, field func(num protowire.Number, typ protowire.Type, b []byte) int) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		n = field(num, typ, b)
		if n == 0 {
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
	}
	return nil
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func consumeString(typ protowire.Type, b []byte, dst *string) int {
	if typ != protowire.BytesType {
		return 0
	}
	v, n := protowire.ConsumeString(b)
	if n >= 0 {
		*dst = v
	}
	return n
}

// consumeBytes copies the value; gRPC may reuse the receive buffer.
func consumeBytes(typ protowire.Type, b []byte, dst *[]byte) int {
	if typ != protowire.BytesType {
		return 0
	}
	v, n := protowire.ConsumeBytes(b)
	if n >= 0 {
		*dst = append([]byte(nil), v...)
	}
	return n
}

func consumeVarint(typ protowire.Type, b []byte, dst *uint64) int {
	if typ != protowire.VarintType {
		return 0
	}
	v, n := protowire.ConsumeVarint(b)
	if n >= 0 {
		*dst = v
	}
	return n
}
