package typo

import "testing"

func TestSuggest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		domain string
		want   string
	}{
		{"transposition", "gmial.com", "gmail.com"},
		{"missing letter", "gmal.com", "gmail.com"},
		{"doubled letter", "gmaill.com", "gmail.com"},
		{"wrong tld", "gmail.con", "gmail.com"},
		{"hotmail typo", "hotmial.com", "hotmail.com"},
		{"yahoo typo", "yaho.com", "yahoo.com"},
		{"exact match yields nothing", "gmail.com", ""},
		{"far from everything", "example.com", ""},
		{"empty domain", "", ""},
		{"case insensitive", "GMIAL.COM", "gmail.com"},
	}

	s := NewSuggester(nil, 0)
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := s.Suggest(tt.domain); got != tt.want {
				t.Errorf("Suggest(%q) = %q, want %q", tt.domain, got, tt.want)
			}
		})
	}
}

func TestSuggestCustomProviders(t *testing.T) {
	t.Parallel()

	s := NewSuggester([]string{"corp.example.com"}, 2)
	if got := s.Suggest("corp.exmaple.com"); got != "corp.example.com" {
		t.Errorf("Suggest() = %q, want %q", got, "corp.example.com")
	}
	// The built-in list must not leak into a custom configuration.
	if got := s.Suggest("gmial.com"); got != "" {
		t.Errorf("Suggest() = %q, want empty with custom providers", got)
	}
}

func TestLevenshtein(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"gmial", "gmail", 2},
		{"kitten", "sitting", 3},
		{"gmail.com", "gmail.con", 1},
	}

	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
