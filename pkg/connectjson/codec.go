// Package connectjson provides a connect codec for plain Go structs.
//
// connect's built-in JSON codec only accepts proto messages. taskdeck's RPC
// messages are ordinary structs with json tags, so handlers and clients
// register this codec under the same "json" name instead.
package connectjson

import (
	"bytes"
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

const Name = "json"

type Codec struct{}

var _ connect.Codec = Codec{}

func (Codec) Name() string { return Name }

func (Codec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}
	return data, nil
}

// Unmarshal treats an empty body as an empty message, which is what
// connect GET requests and bodiless unary calls send.
func (Codec) Unmarshal(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %T: %w", v, err)
	}
	return nil
}

// WithCodec is the option handlers and clients pass to use Codec.
func WithCodec() connect.Option {
	return connect.WithCodec(Codec{})
}
