package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MediaKeySuffix marks stored image references inside repeater content.
const MediaKeySuffix = ".medialibrary.key"

// RepeaterValue is one field of a stored repeater row.
type RepeaterValue struct {
	Key     string          `json:"key"`
	Type    FieldType       `json:"type"`
	Content json.RawMessage `json:"content,omitempty"`
}

// RepeaterRow is one entry of a repeater: the key of the repeater group it was
// created from and its field values.
type RepeaterRow struct {
	Key    string          `json:"key"`
	Fields []RepeaterValue `json:"fields"`
}

// Images returns the image values of the row.
func (r RepeaterRow) Images() []RepeaterValue {
	var images []RepeaterValue
	for _, v := range r.Fields {
		if v.Type == FieldTypeImage {
			images = append(images, v)
		}
	}
	return images
}

// RepeaterImageKey is the storage key of an image inside a repeater row:
// "{item}-{row}-{field}".
func RepeaterImageKey(item, row, field string) string {
	return fmt.Sprintf("%s-%s-%s", item, row, field)
}

// MediaKey is the reference stored in place of an uploaded repeater image.
func MediaKey(imageKey string) string {
	return imageKey + MediaKeySuffix
}

// RepeaterContent holds the value of a repeater attribute, which arrives either
// still encoded (as stored) or already decoded (as posted by the admin UI).
// Rows normalizes both to decoded rows.
type RepeaterContent struct {
	raw     string
	rows    []RepeaterRow
	decoded bool
}

// RawRepeater wraps encoded content.
func RawRepeater(encoded string) RepeaterContent {
	return RepeaterContent{raw: encoded}
}

// DecodedRepeater wraps rows.
func DecodedRepeater(rows []RepeaterRow) RepeaterContent {
	return RepeaterContent{rows: rows, decoded: true}
}

// IsDecoded reports whether the content holds rows rather than an encoded
// string.
func (c RepeaterContent) IsDecoded() bool {
	return c.decoded
}

// Rows returns the decoded rows. Empty encoded content yields no rows.
func (c RepeaterContent) Rows() ([]RepeaterRow, error) {
	if c.decoded {
		return c.rows, nil
	}
	if len(bytes.TrimSpace([]byte(c.raw))) == 0 {
		return nil, nil
	}

	var rows []RepeaterRow
	if err := json.Unmarshal([]byte(c.raw), &rows); err != nil {
		return nil, fmt.Errorf("decode repeater: %w", err)
	}
	return rows, nil
}

// Encode returns the stored form.
func (c RepeaterContent) Encode() (string, error) {
	if !c.decoded {
		return c.raw, nil
	}
	rows := c.rows
	if rows == nil {
		rows = []RepeaterRow{}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("encode repeater: %w", err)
	}
	return string(data), nil
}

// MarshalJSON always emits the decoded rows.
func (c RepeaterContent) MarshalJSON() ([]byte, error) {
	rows, err := c.Rows()
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []RepeaterRow{}
	}
	return json.Marshal(rows)
}

// UnmarshalJSON accepts either a JSON string holding encoded rows or an array
// of rows.
func (c *RepeaterContent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*c = RepeaterContent{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*c = RawRepeater(raw)
		return nil
	default:
		var rows []RepeaterRow
		if err := json.Unmarshal(data, &rows); err != nil {
			return fmt.Errorf("decode repeater: %w", err)
		}
		*c = DecodedRepeater(rows)
		return nil
	}
}
