package util

import "testing"

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("", 24); got != 24 {
		t.Fatalf("expected default, got %d", got)
	}
	if got := ParseIntDefault("x", 24); got != 24 {
		t.Fatalf("expected default, got %d", got)
	}
	if got := ParseIntDefault("12", 24); got != 12 {
		t.Fatalf("expected 12, got %d", got)
	}
}

func TestStripCodeFence(t *testing.T) {
	cases := map[string]string{
		`[1]`:                  `[1]`,
		"```json\n[1, 2]\n```": `[1, 2]`,
		"```\n[]\n```":         `[]`,
		"  ```json\n{}```  ":   `{}`,
	}
	for in, want := range cases {
		if got := StripCodeFence(in); got != want {
			t.Fatalf("StripCodeFence(%q) = %q; want %q", in, got, want)
		}
	}
}
