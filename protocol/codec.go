package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrEmptyFrame   = errors.New("protocol: empty frame")
	ErrEmptyType    = errors.New("protocol: envelope without type")
	ErrEmptyPayload = errors.New("protocol: empty payload")
)

// Encode wraps payload in an envelope of type t. Every event carries a
// payload, so nil is refused; use Empty{} for events without fields.
func Encode(t string, payload any) ([]byte, error) {
	switch {
	case t == "":
		return nil, ErrEmptyType
	case payload == nil:
		return nil, fmt.Errorf("encode %q: %w", t, ErrEmptyPayload)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %q: %w", t, err)
	}
	return json.Marshal(Envelope{T: t, P: raw})
}

// DecodeEnvelope parses one frame. The payload stays raw until a handler
// knows which type to decode it into.
func DecodeEnvelope(frame []byte) (Envelope, error) {
	if len(frame) == 0 {
		return Envelope{}, ErrEmptyFrame
	}
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.T == "" {
		return Envelope{}, ErrEmptyType
	}
	return env, nil
}

// DecodePayload unmarshals the envelope payload into a fresh T.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 || string(env.P) == "null" {
		return out, fmt.Errorf("decode %q: %w", env.T, ErrEmptyPayload)
	}
	if err := json.Unmarshal(env.P, &out); err != nil {
		return out, fmt.Errorf("decode %q: %w", env.T, err)
	}
	return out, nil
}
