package folders

import (
	"encoding/json"
	"strings"
)

// decodeColumns accepts both stored shapes: ["a","b"] and [{"key":"a"}, ...].
// Empty or null payloads fall back to the default layout.
func decodeColumns(raw []byte) ([]string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return defaultColumns(), nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var key string
		if err := json.Unmarshal(item, &key); err == nil {
			out = append(out, key)
			continue
		}
		var obj struct {
			Key string `json:"key"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return nil, err
		}
		if obj.Key != "" {
			out = append(out, obj.Key)
		}
	}
	return dedupe(out), nil
}

func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
