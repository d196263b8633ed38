package contract

import (
	"testing"
	"unicode/utf8"
)

// FuzzTruncateText checks that truncation never exceeds the width and stays valid UTF-8.
func FuzzTruncateText(f *testing.F) {
	seeds := []struct {
		text  string
		width int
	}{
		{"feat: add new utility functions", 10},
		{"", 5},
		{"ドキュメント", 4},
		{"short", 100},
	}
	for _, seed := range seeds {
		f.Add(seed.text, seed.width)
	}

	f.Fuzz(func(t *testing.T, text string, width int) {
		if !utf8.ValidString(text) {
			return
		}
		out := TruncateText(text, width)
		if width > 3 && utf8.RuneCountInString(out) > width {
			t.Fatalf("TruncateText(%q, %d) = %q exceeds width", text, width, out)
		}
		if !utf8.ValidString(out) {
			t.Fatalf("TruncateText produced invalid UTF-8: %q", out)
		}
	})
}

// FuzzParseIntOr ensures the lenient parser never panics.
func FuzzParseIntOr(f *testing.F) {
	for _, s := range []string{"365", "0", "-1", "abc", "", "9999999999999999999999"} {
		f.Add(s)
	}
	f.Fuzz(func(_ *testing.T, s string) {
		_ = ParseIntOr(s, 365)
	})
}
