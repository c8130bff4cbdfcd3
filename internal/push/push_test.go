package push

import (
	"testing"
	"time"

	"github.com/larderhq/larder/internal/model"
)

func itemWithExpiry(name string, exp time.Time) *model.FridgeItem {
	return &model.FridgeItem{Name: name, ExpirationDate: &exp}
}

func TestGenerateVAPIDKeys(t *testing.T) {
	pub, priv, err := GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if pub == "" || priv == "" {
		t.Error("expected non-empty keys")
	}

	pub2, _, err := GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if pub == pub2 {
		t.Error("expected distinct key pairs")
	}
}

func TestVAPIDPublicKey(t *testing.T) {
	svc := NewService("pub-key", "priv-key", "mailto:admin@example.com")
	if svc.VAPIDPublicKey() != "pub-key" {
		t.Errorf("public key = %q", svc.VAPIDPublicKey())
	}
}

func TestExpiryBody(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		exp  time.Time
		want string
	}{
		{"Milk", now.Add(-24 * time.Hour), "Milk expired"},
		{"Milk", now.Add(6 * time.Hour), "Milk expires today"},
		{"Milk", now.Add(30 * time.Hour), "Milk expires tomorrow"},
		{"Milk", now.Add(80 * time.Hour), "Milk expires in 3 days"},
	}
	for _, tc := range cases {
		item := itemWithExpiry(tc.name, tc.exp)
		if got := expiryBody(item, now); got != tc.want {
			t.Errorf("expiryBody(%v) = %q, want %q", tc.exp, got, tc.want)
		}
	}
}
