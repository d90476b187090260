package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// TagList is an ordered list of short tag strings. It is stored as a
// comma-joined TEXT column but tolerates rows written as a native array
// (JSON or Postgres array literal) by earlier versions of the schema.
type TagList []string

// ParseTags decodes a stored tag representation into an ordered list.
// Empty input yields an empty list; elements are trimmed and blank
// elements dropped.
func ParseTags(stored string) TagList {
	s := strings.TrimSpace(stored)
	if s == "" {
		return TagList{}
	}

	if strings.HasPrefix(s, "[") {
		var tags []string
		if err := json.Unmarshal([]byte(s), &tags); err == nil {
			return cleanTags(tags)
		}
	}
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		s = strings.Trim(s, "{}")
		if s == "" {
			return TagList{}
		}
		return cleanTags(strings.Split(s, ","))
	}

	return cleanTags(strings.Split(s, ","))
}

func cleanTags(raw []string) TagList {
	tags := make(TagList, 0, len(raw))
	for _, t := range raw {
		t = strings.Trim(strings.TrimSpace(t), `"`)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// String encodes the list into its stored comma-joined form.
func (t TagList) String() string {
	return strings.Join(t, ",")
}

func (t TagList) Value() (driver.Value, error) {
	return t.String(), nil
}

func (t *TagList) Scan(value interface{}) error {
	if value == nil {
		*t = TagList{}
		return nil
	}
	switch v := value.(type) {
	case string:
		*t = ParseTags(v)
	case []byte:
		*t = ParseTags(string(v))
	default:
		return fmt.Errorf("cannot scan %T into TagList", value)
	}
	return nil
}

// MarshalJSON always emits an array so clients never see null tags.
func (t TagList) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}
