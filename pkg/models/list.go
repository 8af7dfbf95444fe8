package models

import (
	"bytes"
	"encoding/json"
	"sort"
)

// List is a JSON array field that decodes any non-array value as empty.
// The engine is not consistent about collection shapes; views should never
// fail because a collection came back as an object, string or null.
type List[T any] []T

// UnmarshalJSON decodes arrays normally and everything else as an empty list.
func (l *List[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		*l = List[T]{}
		return nil
	}
	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}
	*l = items
	return nil
}

// YaraTags holds rule tags, sent by the engine either as a string array or as
// an object keyed by tag name.
type YaraTags []string

// UnmarshalJSON accepts ["a","b"] or {"a":...,"b":...}.
func (t *YaraTags) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	*t = YaraTags{}
	if len(trimmed) == 0 {
		return nil
	}
	switch trimmed[0] {
	case '[':
		var raw []interface{}
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		for _, v := range raw {
			if s, ok := v.(string); ok && s != "" {
				*t = append(*t, s)
			}
		}
	case '{':
		var raw map[string]interface{}
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		for k := range raw {
			*t = append(*t, k)
		}
		sort.Strings(*t)
	}
	return nil
}
