package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// TagList stores a blog's tags as a JSON array inside a single text column.
type TagList []string

// Value implements driver.Valuer.
func (t TagList) Value() (driver.Value, error) {
	if len(t) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (t *TagList) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*t = nil
		return nil
	case []byte:
		if len(v) == 0 {
			*t = nil
			return nil
		}
		return json.Unmarshal(v, t)
	case string:
		if v == "" {
			*t = nil
			return nil
		}
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("unsupported tags column type %T", value)
	}
}

// GormDataType tells the migrator to back TagList with a text column.
func (TagList) GormDataType() string { return "text" }

// Contains reports whether the list holds the given normalized tag.
func (t TagList) Contains(tag string) bool {
	for _, v := range t {
		if v == tag {
			return true
		}
	}
	return false
}

// TagsField accepts the loose payload shapes clients send for tags: either a
// comma-separated string or an array of strings. Both decode to raw pieces;
// NormalizeTags resolves them into the canonical set.
type TagsField []string

// UnmarshalJSON implements json.Unmarshaler.
func (t *TagsField) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = TagsField(strings.Split(single, ","))
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*t = TagsField(list)
	return nil
}

// NormalizeTags trims, lowercases and deduplicates raw tag pieces, dropping
// empties. Both the create and update paths go through here so a stored tag
// is always in canonical form.
func NormalizeTags(raw []string) TagList {
	seen := make(map[string]struct{}, len(raw))
	out := make(TagList, 0, len(raw))
	for _, piece := range raw {
		tag := strings.ToLower(strings.TrimSpace(piece))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
