package index

import (
	"sort"
	"strings"
	"unicode"

	"github.com/shramsetu/ncosearch/domain/occupation"
)

// MinKeywordLength is the shortest word the inverted index carries.
const MinKeywordLength = 3

// Inverted maps lowercased words of at least three letters to the codes of
// records whose title or synonyms contain that word.
type Inverted struct {
	words map[string][]string
}

// BuildInverted scans titles and synonyms of every catalog record.
func BuildInverted(catalog occupation.Catalog) Inverted {
	words := make(map[string][]string)

	for _, record := range catalog.Records() {
		seen := make(map[string]struct{})
		for _, token := range Tokenize(record.Title()) {
			seen[token] = struct{}{}
		}
		for _, syn := range record.Synonyms() {
			for _, token := range Tokenize(syn) {
				seen[token] = struct{}{}
			}
		}
		for token := range seen {
			words[token] = append(words[token], record.Code())
		}
	}

	// Postings stay sorted so match counting is order-independent.
	for token := range words {
		sort.Strings(words[token])
	}

	return Inverted{words: words}
}

// Len returns the number of distinct indexed words.
func (i Inverted) Len() int { return len(i.words) }

// Codes returns the posting list for one word.
func (i Inverted) Codes(word string) []string {
	codes := i.words[word]
	result := make([]string, len(codes))
	copy(result, codes)
	return result
}

// MatchCounts returns, per code, how many of the given tokens hit its
// posting lists.
func (i Inverted) MatchCounts(tokens []string) map[string]int {
	counts := make(map[string]int)
	for _, token := range tokens {
		for _, code := range i.words[token] {
			counts[code]++
		}
	}
	return counts
}

// Tokenize splits text into lowercased maximal runs of letters, dropping
// runs shorter than MinKeywordLength.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) >= MinKeywordLength {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
