package config

import (
	"testing"
)

func TestNormalizePrefix(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"single segment", "team", "team"},
		{"trailing slash", "team/", "team"},
		{"leading slash", "/team", "team"},
		{"both slashes", "/team/photos/", "team/photos"},
		{"double slash middle", "team//photos", "team/photos"},
		{"multiple slashes", "team///photos///", "team/photos"},
		{"only slashes", "///", ""},
		{"dot", ".", ""},
		{"backslashes", "team\\photos", "team/photos"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePrefix(tt.input)
			if got != tt.expected {
				t.Errorf("NormalizePrefix(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
