package objectstorage

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// unwrapEnvelope returns the payload of a {"data": ...} envelope, or the body
// itself when the endpoint answered with the raw payload.
func unwrapEnvelope(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return trimmed
	}
	if data, ok := env["data"]; ok {
		return bytes.TrimSpace(data)
	}
	return trimmed
}

// decodeOne decodes a single resource from either envelope shape.
func decodeOne[T any](body []byte) (T, error) {
	var out T
	payload := unwrapEnvelope(body)
	if len(payload) == 0 {
		return out, decodeError(fmt.Errorf("empty response body"))
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return out, decodeError(err)
	}
	return out, nil
}

// decodeList decodes a list from {"data": [...]}, a raw array, or an object
// holding the array under one of keys.
func decodeList[T any](body []byte, keys ...string) ([]T, error) {
	payload := unwrapEnvelope(body)
	if len(payload) == 0 || isNull(payload) {
		return []T{}, nil
	}

	if payload[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(payload, &obj); err != nil {
			return nil, decodeError(err)
		}
		found := false
		for _, k := range keys {
			if v, ok := obj[k]; ok {
				payload, found = bytes.TrimSpace(v), true
				break
			}
		}
		if !found {
			// {"status":"success"} with nothing else is an empty listing
			if _, ok := obj["status"]; ok && len(obj) == 1 {
				return []T{}, nil
			}
			return nil, decodeError(fmt.Errorf("expected a list, got an object"))
		}
		if isNull(payload) {
			return []T{}, nil
		}
	}

	out := []T{}
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, decodeError(err)
	}
	return out, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func decodeError(err error) *Error {
	return &Error{
		Kind:    KindTransport,
		Code:    CodeDecode,
		Message: "decode response: " + err.Error(),
		Err:     err,
	}
}
