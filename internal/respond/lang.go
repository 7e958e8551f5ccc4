package respond

import "strings"

// Common romanized Hindi words. A reply where these dominate is Hinglish and
// sounds better through the Hindi voice.
var hinglishWords = map[string]struct{}{
	"hai": {}, "hain": {}, "kar": {}, "kya": {}, "kaise": {}, "kahan": {},
	"kab": {}, "kyun": {}, "kaun": {}, "aur": {}, "hum": {}, "tum": {},
	"aap": {}, "yeh": {}, "woh": {}, "mera": {}, "tera": {}, "apka": {},
	"karna": {}, "hona": {}, "jana": {}, "aana": {}, "lena": {}, "dena": {},
	"accha": {}, "bahut": {}, "thik": {}, "nahi": {}, "haan": {}, "sab": {},
}

// DetectLanguage picks the speech language for a reply. Devanagari-heavy
// text and Hinglish both map to Hindi; everything else keeps the default.
func DetectLanguage(text, fallback string) string {
	if fallback == "" {
		fallback = "en"
	}
	if text == "" {
		return fallback
	}

	var devanagari, letters int
	for _, r := range text {
		if r >= 0x0900 && r <= 0x097F {
			devanagari++
		}
		if r > ' ' {
			letters++
		}
	}
	if letters > 0 && float64(devanagari)/float64(letters) > 0.3 {
		return "hi"
	}

	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return fallback
	}
	var hits int
	for _, w := range words {
		if _, ok := hinglishWords[strings.Trim(w, ".,!?")]; ok {
			hits++
		}
	}
	if float64(hits)/float64(len(words)) > 0.2 {
		return "hi"
	}

	return fallback
}
