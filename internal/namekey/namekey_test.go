package namekey

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Milk", "milk"},
		{"  Milk  ", "milk"},
		{"MILK", "milk"},
		{"Whole   Milk", "whole milk"},
		{"whole\tmilk", "whole milk"},
		{" Red  Bell\n Pepper ", "red bell pepper"},
		{"", ""},
		{"   ", ""},
		{"\t\n", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeEquivalence(t *testing.T) {
	variants := []string{"  Milk  ", "milk", "MILK", "Milk"}
	want := Normalize(variants[0])
	for _, v := range variants[1:] {
		if Normalize(v) != want {
			t.Errorf("Normalize(%q) = %q, want %q", v, Normalize(v), want)
		}
	}
}
