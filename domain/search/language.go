package search

import "strings"

// Language is a supported query language tag.
type Language string

// Supported languages. Anything else maps to English.
const (
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
	LanguageBengali Language = "bn"
	LanguageMarathi Language = "mr"
)

// ParseLanguage maps a caller-supplied tag onto a supported language.
func ParseLanguage(tag string) Language {
	switch Language(strings.ToLower(strings.TrimSpace(tag))) {
	case LanguageHindi:
		return LanguageHindi
	case LanguageBengali:
		return LanguageBengali
	case LanguageMarathi:
		return LanguageMarathi
	default:
		return LanguageEnglish
	}
}

// Marathi uses retroflex ḷa (and the eyelash ra cluster) heavily while
// standard Hindi almost never does; it is the cheapest deterministic
// separator between the two Devanagari languages.
const marathiMarkers = "ळऱ"

// DetectLanguage classifies text by Unicode script. Statistical detectors
// are randomized; counting script runes is deterministic for a given input,
// which the request tests depend on.
func DetectLanguage(text string) Language {
	var devanagari, bengali, marathi int

	for _, r := range text {
		switch {
		case r >= 0x0980 && r <= 0x09FF:
			bengali++
		case r >= 0x0900 && r <= 0x097F:
			devanagari++
			if strings.ContainsRune(marathiMarkers, r) {
				marathi++
			}
		}
	}

	switch {
	case bengali > 0 && bengali >= devanagari:
		return LanguageBengali
	case devanagari > 0 && marathi > 0:
		return LanguageMarathi
	case devanagari > 0:
		return LanguageHindi
	default:
		return LanguageEnglish
	}
}
