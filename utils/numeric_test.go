package utils

import (
	"encoding/json"
	"testing"
)

func TestAsFloat(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  float64
		ok    bool
	}{
		{"float64", float64(1.5), 1.5, true},
		{"float32", float32(2), 2, true},
		{"int", 3, 3, true},
		{"int32", int32(4), 4, true},
		{"int64", int64(5), 5, true},
		{"json.Number", json.Number("6.5"), 6.5, true},
		{"negative", -1, -1, true},
		{"string", "halfway", 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
		{"bad json.Number", json.Number("abc"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsFloat(tt.value)
			if ok != tt.ok || got != tt.want {
				t.Errorf("AsFloat(%v) = (%v, %v), want (%v, %v)", tt.value, got, ok, tt.want, tt.ok)
			}
		})
	}
}
