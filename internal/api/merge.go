package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

var errInvalidBody = errors.New("invalid request body")

// 服务端维护的字段，不接受客户端写入。
var serverOwned = []string{"id", "createdAt", "updatedAt"}

// decodeObject parses a JSON object body. An empty body is an empty object.
func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	if len(body) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	if fields == nil {
		// body 为 null
		fields = map[string]json.RawMessage{}
	}
	return fields, nil
}

// mergePatch overlays patch on the JSON form of existing: keys present in
// patch win, omitted keys keep their value, protected keys are ignored.
func mergePatch[T any](existing *T, patch map[string]json.RawMessage, protected ...string) error {
	current, err := json.Marshal(existing)
	if err != nil {
		return fmt.Errorf("encode current record: %w", err)
	}
	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(current, &merged); err != nil {
		return fmt.Errorf("decode current record: %w", err)
	}

	for key, value := range patch {
		if isProtected(key, protected) {
			continue
		}
		merged[key] = value
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encode merged record: %w", err)
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	*existing = out
	return nil
}

func isProtected(key string, protected []string) bool {
	for _, p := range serverOwned {
		if key == p {
			return true
		}
	}
	for _, p := range protected {
		if key == p {
			return true
		}
	}
	return false
}
