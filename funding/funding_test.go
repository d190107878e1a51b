package funding

import "testing"

func TestModeFromURL(t *testing.T) {
	cases := []struct {
		url  string
		want Mode
	}{
		{"https://api.fullstack.cash/v5/", ModeManual},
		{"https://bch.fullstack.cash", ModeManual},
		{"https://free-bch.fullstack.cash", ModeManual},
		{"https://consumer.psfoundation.info", ModeDelegated},
		{"http://localhost:5005", ModeDelegated},
		{"", ModeDelegated},
	}

	for _, tc := range cases {
		if got := ModeFromURL(tc.url); got != tc.want {
			t.Errorf("ModeFromURL(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

func TestConfigResolveMode(t *testing.T) {
	// An explicit mode always wins over the URL.
	cfg := Config{BchServerURL: "https://api.fullstack.cash/v5/", Mode: ModeDelegated}
	if cfg.ResolveMode() != ModeDelegated {
		t.Fatal("Expected explicit mode to win over URL derivation")
	}

	cfg = Config{BchServerURL: "https://api.fullstack.cash/v5/"}
	if cfg.ResolveMode() != ModeManual {
		t.Fatal("Expected manual mode derived from fullstack URL")
	}
}
