package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/optica/admin/internal/domain/shared"
)

// Envelope is the response wrapper used by the admin API. Some list
// endpoints skip it and return a bare array, which decodes as Data.
type Envelope struct {
	Status  *shared.Flag    `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Token   string          `json:"token"`
	User    json.RawMessage `json:"user"`
}

// OK reports whether the server flagged the call as successful. A missing
// status counts as success.
func (e *Envelope) OK() bool {
	return e.Status == nil || bool(*e.Status)
}

func decodeEnvelope(body []byte) (*Envelope, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return &Envelope{}, nil
	}
	if trimmed[0] == '[' {
		return &Envelope{Data: json.RawMessage(trimmed)}, nil
	}
	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &env, nil
}

// maxListDepth bounds how many "data" wrappers a list may sit under
const maxListDepth = 3

// decodeList unmarshals a list that may be wrapped as [...], {data: [...]}
// or {data: {data: [...]}}. A missing or null payload is an empty list.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	for depth := 0; ; depth++ {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || string(raw) == "null" {
			return []T{}, nil
		}
		if raw[0] == '[' {
			var out []T
			if err := json.Unmarshal(raw, &out); err != nil {
				return nil, fmt.Errorf("decoding list: %w", err)
			}
			return out, nil
		}
		if depth == maxListDepth {
			return nil, fmt.Errorf("decoding list: no array within %d data wrappers", maxListDepth)
		}
		var wrapper struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil, fmt.Errorf("decoding list: %w", err)
		}
		raw = wrapper.Data
	}
}

// decodeObject unmarshals raw into dst, first descending into the first
// of keys that holds an object. It mirrors the `data.data || data` reads
// the API requires.
func decodeObject(raw json.RawMessage, dst any, keys ...string) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if len(keys) > 0 && raw[0] == '{' {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return fmt.Errorf("decoding object: %w", err)
		}
		for _, k := range keys {
			if inner := bytes.TrimSpace(fields[k]); len(inner) > 0 && inner[0] == '{' {
				raw = inner
				break
			}
		}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decoding object: %w", err)
	}
	return nil
}
