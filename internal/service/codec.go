package service

import (
	"encoding/json"
	"fmt"
)

// jsonCodec lets Connect carry plain Go structs. Connect's built-in JSON
// codec only accepts protobuf messages.
type jsonCodec struct{}

// Codec is the codec handlers and clients of KioskService must share.
var Codec = jsonCodec{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", msg, err)
	}
	return b, nil
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal %T: %w", msg, err)
	}
	return nil
}
