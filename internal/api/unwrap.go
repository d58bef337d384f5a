package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Matcher extracts the raw JSON array from one known response envelope.
// ok is false when the body does not have that shape.
type Matcher func(body map[string]json.RawMessage, raw []byte) (json.RawMessage, bool)

// BareArray matches a body that is itself a JSON array.
func BareArray() Matcher {
	return func(_ map[string]json.RawMessage, raw []byte) (json.RawMessage, bool) {
		if isJSONArray(raw) {
			return raw, true
		}
		return nil, false
	}
}

// Field matches an object whose key holds a JSON array.
func Field(key string) Matcher {
	return func(body map[string]json.RawMessage, _ []byte) (json.RawMessage, bool) {
		v, ok := body[key]
		if !ok || !isJSONArray(v) {
			return nil, false
		}
		return v, true
	}
}

// listEnvelopes is the ordered set of shapes the list endpoints are known to
// return. The API should settle on one of them; until then both list
// endpoints are normalised through here so a silent contract change shows up
// as an empty list rather than a decode failure.
var listEnvelopes = []Matcher{
	BareArray(),
	Field("categories"),
	Field("data"),
}

// NormalizeList decodes raw into a slice using the first matcher that fits.
// Bodies that match no shape, including empty and non-JSON bodies, yield an
// empty, non-nil slice. Only array items that do not decode into T are errors.
func NormalizeList[T any](raw []byte, matchers ...Matcher) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(matchers) == 0 {
		matchers = listEnvelopes
	}

	var obj map[string]json.RawMessage
	if !isJSONArray(raw) {
		if err := json.Unmarshal(raw, &obj); err != nil {
			return []T{}, nil
		}
	}

	for _, match := range matchers {
		arr, ok := match(obj, raw)
		if !ok {
			continue
		}
		out := []T{}
		if err := json.Unmarshal(arr, &out); err != nil {
			return nil, fmt.Errorf("failed to decode list items: %w", err)
		}
		return out, nil
	}
	return []T{}, nil
}

func isJSONArray(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}
