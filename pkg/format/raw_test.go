package format

import (
	"encoding/json"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestRawFromFloat(t *testing.T) {
	tests := []struct {
		value    float64
		expected Raw
	}{
		{12.5, "12,5"},
		{30, "30"},
		{1234.56, "1234,56"},
	}
	for _, tt := range tests {
		got := RawFromFloat(tt.value)
		if got != tt.expected {
			t.Errorf("RawFromFloat(%v) = %q, expected %q", tt.value, got, tt.expected)
		}
		if got.Amount() != tt.value {
			t.Errorf("RawFromFloat(%v).Amount() = %v", tt.value, got.Amount())
		}
	}
}

func TestRawUnmarshalJSON(t *testing.T) {
	var payload struct {
		A Raw `json:"a"`
		B Raw `json:"b"`
		C Raw `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a": "1.234,56", "b": 12.5, "c": null}`), &payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.A.Amount() != 1234.56 {
		t.Errorf("string amount = %v", payload.A.Amount())
	}
	if payload.B != "12,5" || payload.B.Amount() != 12.5 {
		t.Errorf("numeric amount = %q", payload.B)
	}
	if !payload.C.IsBlank() {
		t.Errorf("null amount should be blank, got %q", payload.C)
	}

	var bad struct {
		A Raw `json:"a"`
	}
	if err := json.Unmarshal([]byte(`{"a": true}`), &bad); err == nil {
		t.Error("expected error for boolean amount")
	}
}

func TestRawUnmarshalYAML(t *testing.T) {
	var payload struct {
		A Raw `yaml:"a"`
		B Raw `yaml:"b"`
		C Raw `yaml:"c"`
	}
	doc := "a: \"20.000\"\nb: 7.5\nc: 30\n"
	if err := yaml.Unmarshal([]byte(doc), &payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.A.Amount() != 20000 {
		t.Errorf("a = %v", payload.A.Amount())
	}
	if payload.B.Amount() != 7.5 {
		t.Errorf("b = %v", payload.B.Amount())
	}
	if payload.C.Amount() != 30 {
		t.Errorf("c = %v", payload.C.Amount())
	}
}

func TestRawDecodeHook(t *testing.T) {
	hook := RawDecodeHook()
	got, err := hook(reflect.TypeOf(0.25), rawType, 0.25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != Raw("0,25") {
		t.Errorf("float hook = %#v", got)
	}
	got, _ = hook(reflect.TypeOf(42), rawType, 42)
	if got != Raw("42") {
		t.Errorf("int hook = %#v", got)
	}
	got, _ = hook(reflect.TypeOf("x"), reflect.TypeOf(""), "x")
	if got != "x" {
		t.Errorf("non-Raw target should pass through, got %#v", got)
	}
}
