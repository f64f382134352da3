package urlnorm

import (
	"errors"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/errors"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://www.ics.uci.edu/page?x=1#top", "https://www.ics.uci.edu/page"},
		{"https://www.ics.uci.edu/", "https://www.ics.uci.edu/"},
		{"HTTP://example.com/a/b", "https://example.com/a/b"},
		{"http://example.com/path?", "https://example.com/path"},
		{"//example.com/x#frag", "https://example.com/x"},
		{"  http://example.com/~alice/  ", "https://example.com/~alice/"},
		{"ftp://files.example.com/pub", "https://files.example.com/pub"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Normalize(tt.in)
			if err != nil {
				t.Fatalf("Normalize(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"http://www.ics.uci.edu/page?x=1#top",
		"http://example.com/a%20b/c",
		"http://user@example.com:8080/p;params?q#f",
		"https://example.com",
	}
	for _, in := range inputs {
		once, err := Normalize(in)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", in, err)
		}
		twice, err := Normalize(once)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", once, err)
		}
		if once != twice {
			t.Errorf("not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}

func TestNormalizeMalformed(t *testing.T) {
	for _, in := range []string{"", "not a url", "mailto:someone@example.com", "http://[::1", "/relative/path"} {
		if _, err := Normalize(in); !errors.Is(err, apperrors.ErrMalformedURL) {
			t.Errorf("Normalize(%q) err = %v, want ErrMalformedURL", in, err)
		}
	}
}
