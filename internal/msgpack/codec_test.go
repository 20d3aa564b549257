package msgpack

import (
	"testing"
)

type sample struct {
	Schema string `msgpack:"schema"`
	Table  string `msgpack:"table"`
}

type extended struct {
	Schema string `msgpack:"schema"`
	Table  string `msgpack:"table"`
	Extra  int    `msgpack:"extra"`
}

func TestEncodeDecode(t *testing.T) {
	data, err := Encode(sample{Schema: "splunk", Table: "main"})
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	var got sample
	if err := Decode(data, &got); err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	if got.Schema != "splunk" || got.Table != "main" {
		t.Errorf("Decode() = %+v", got)
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	data, err := Encode(extended{Schema: "splunk", Table: "main", Extra: 1})
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	var got sample
	if err := Decode(data, &got); err == nil {
		t.Error("Expected error for unknown field")
	}
}

func TestDecodeEmpty(t *testing.T) {
	var got sample
	if err := Decode(nil, &got); err == nil {
		t.Error("Expected error for empty data")
	}
}
