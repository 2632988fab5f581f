package schema

import (
	"encoding/json"
	"testing"
)

const sampleRows = `[{"key":"slide","fields":[` +
	`{"key":"image","type":"image","content":"1-0-image.medialibrary.key"},` +
	`{"key":"caption","type":"string","content":"Hello"}]}]`

func TestRepeaterContent_Rows(t *testing.T) {
	tests := []struct {
		name    string
		content RepeaterContent
		want    int
		wantErr bool
	}{
		{"raw", RawRepeater(sampleRows), 1, false},
		{"empty raw", RawRepeater("  "), 0, false},
		{"invalid raw", RawRepeater("{"), 0, true},
		{"decoded", DecodedRepeater([]RepeaterRow{{Key: "a"}, {Key: "b"}}), 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := tt.content.Rows()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Rows() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(rows) != tt.want {
				t.Errorf("len(rows) = %d, want %d", len(rows), tt.want)
			}
		})
	}
}

func TestRepeaterContent_UnmarshalJSON(t *testing.T) {
	var encoded struct {
		Slides RepeaterContent `json:"slides"`
	}
	data, _ := json.Marshal(map[string]string{"slides": sampleRows})
	if err := json.Unmarshal(data, &encoded); err != nil {
		t.Fatalf("Unmarshal string error = %v", err)
	}
	if encoded.Slides.IsDecoded() {
		t.Error("string content should stay encoded")
	}

	var decoded struct {
		Slides RepeaterContent `json:"slides"`
	}
	if err := json.Unmarshal([]byte(`{"slides":`+sampleRows+`}`), &decoded); err != nil {
		t.Fatalf("Unmarshal array error = %v", err)
	}
	if !decoded.Slides.IsDecoded() {
		t.Error("array content should be decoded")
	}

	a, _ := encoded.Slides.Rows()
	b, _ := decoded.Slides.Rows()
	if len(a) != 1 || len(b) != 1 || a[0].Key != b[0].Key || len(a[0].Fields) != len(b[0].Fields) {
		t.Errorf("both forms should yield the same rows: %+v vs %+v", a, b)
	}
}

func TestRepeaterContent_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(RawRepeater(""))
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("empty content = %s, want []", data)
	}

	data, err = json.Marshal(RawRepeater(sampleRows))
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if data[0] != '[' {
		t.Errorf("encoded content should marshal as rows: %s", data)
	}
}

func TestRepeaterContent_Encode(t *testing.T) {
	s, err := DecodedRepeater(nil).Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if s != "[]" {
		t.Errorf("Encode() = %q, want []", s)
	}

	s, _ = RawRepeater(sampleRows).Encode()
	if s != sampleRows {
		t.Error("raw content should encode unchanged")
	}
}

func TestRepeaterRow_Images(t *testing.T) {
	rows, err := RawRepeater(sampleRows).Rows()
	if err != nil {
		t.Fatalf("Rows() error = %v", err)
	}

	images := rows[0].Images()
	if len(images) != 1 || images[0].Key != "image" {
		t.Errorf("Images() = %+v, want the image field", images)
	}
}

func TestRepeaterImageKey(t *testing.T) {
	key := RepeaterImageKey("1", "0", "image")
	if key != "1-0-image" {
		t.Errorf("RepeaterImageKey() = %q, want 1-0-image", key)
	}
	if got := MediaKey(key); got != "1-0-image.medialibrary.key" {
		t.Errorf("MediaKey() = %q", got)
	}
}
