// Package api defines the stockkeeper.v1.Inventory gRPC service: its
// messages, service descriptor, server registration and typed client.
// Messages travel as JSON under the "json" content subtype.
package api

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// Codec is the content subtype every call is made with.
const Codec = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return Codec }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
