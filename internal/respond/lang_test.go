package respond

import "testing"

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		fallback string
		want     string
	}{
		{"plain english", "The weather is lovely today.", "en", "en"},
		{"empty text keeps fallback", "", "en", "en"},
		{"empty fallback defaults to english", "hello there", "", "en"},
		{"devanagari", "आज मौसम बहुत अच्छा है", "en", "hi"},
		{"hinglish", "yeh kaam kaise karna hai", "en", "hi"},
		{"stray hinglish word stays english", "the party was accha fun overall yesterday evening", "en", "en"},
		{"other fallback preserved", "bonjour tout le monde", "fr", "fr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectLanguage(tt.text, tt.fallback); got != tt.want {
				t.Errorf("DetectLanguage(%q, %q) = %q, want %q", tt.text, tt.fallback, got, tt.want)
			}
		})
	}
}
