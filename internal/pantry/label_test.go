package pantry

import "testing"

func TestSuggestLabel(t *testing.T) {
	tests := []struct {
		name string
		want string // "" means no suggestion
	}{
		{"Milk", "dairy"},
		{"  Whole Milk  ", "dairy"},
		{"cream cheese", "dairy"},
		{"Chicken Breast", "meat"},
		{"ground turkey", "meat"},
		{"Sourdough Bread", "bakery"},
		{"olive oil", "pantry"},
		{"Frozen Pizza", "frozen"},
		{"sparkling water", "beverages"},
		{"unobtainium", ""},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		got := SuggestLabel(tt.name)
		if tt.want == "" {
			if got != nil {
				t.Errorf("SuggestLabel(%q) = %q, want nil", tt.name, *got)
			}
			continue
		}
		if got == nil || *got != tt.want {
			t.Errorf("SuggestLabel(%q) = %v, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSuggestLabelLongestPhraseWins(t *testing.T) {
	// "peanut butter" must not fall into dairy via "butter".
	got := SuggestLabel("Peanut Butter")
	if got == nil || *got != "pantry" {
		t.Errorf("SuggestLabel(peanut butter) = %v, want pantry", got)
	}
}
