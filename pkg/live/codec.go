package live

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Frames are a single type byte followed by a msgpack-encoded payload.
// Keeping the discriminator outside the payload lets clients route a frame
// without decoding it.

// EncodeFrame encodes one live protocol frame
func EncodeFrame(ft FrameType, payload interface{}) ([]byte, error) {
	body, err := msgpack.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %#x frame: %w", byte(ft), err)
	}
	buf := make([]byte, 0, len(body)+1)
	buf = append(buf, byte(ft))
	return append(buf, body...), nil
}

// DecodeFrame splits a frame into its type and raw payload bytes
func DecodeFrame(data []byte) (FrameType, []byte, error) {
	if len(data) < 1 {
		return 0, nil, errors.New("empty live frame")
	}
	ft := FrameType(data[0])
	switch ft {
	case FrameReload, FrameBuildError, FrameControl:
		return ft, data[1:], nil
	default:
		return 0, nil, fmt.Errorf("unknown live frame type %#x", data[0])
	}
}

// DecodeReload decodes a FrameReload payload
func DecodeReload(body []byte) (*ReloadPayload, error) {
	var payload ReloadPayload
	if err := msgpack.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode reload frame: %w", err)
	}
	return &payload, nil
}

// DecodeError decodes a FrameBuildError payload
func DecodeError(body []byte) (*ErrorPayload, error) {
	var payload ErrorPayload
	if err := msgpack.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode error frame: %w", err)
	}
	return &payload, nil
}
