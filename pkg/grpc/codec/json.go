// Package codec registers a JSON wire codec with gRPC so plain Go structs
// can be used as request and response messages.
package codec

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// Name is the content-subtype clients select with grpc.CallContentSubtype.
const Name = "json"

func init() {
	encoding.RegisterCodec(JSON{})
}

// JSON implements encoding.Codec.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json codec marshal %T: %w", v, err)
	}
	return b, nil
}

func (JSON) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json codec unmarshal %T: %w", v, err)
	}
	return nil
}

func (JSON) Name() string {
	return Name
}
