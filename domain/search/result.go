package search

// MaxMatchedSynonyms caps the "why matched" annotations per result.
const MaxMatchedSynonyms = 3

// Result origin confidences. Non-vector origins carry sentinel confidences
// below every threshold so they never mask a rescue.
const (
	KeywordFallbackConfidence = 0.25
	FuzzyFallbackConfidence   = 0.20
)

// Result is one annotated search hit.
type Result struct {
	code            string
	title           string
	description     string
	score           float64
	confidence      float64
	matchedSynonyms []string
}

// NewResult creates a new Result.
func NewResult(code, title, description string, score, confidence float64) Result {
	return Result{
		code:        code,
		title:       title,
		description: description,
		score:       score,
		confidence:  confidence,
	}
}

// Code returns the occupation code.
func (r Result) Code() string { return r.code }

// Title returns the occupation title.
func (r Result) Title() string { return r.title }

// Description returns the occupation description.
func (r Result) Description() string { return r.description }

// Score returns the raw similarity; zero for non-vector origins.
func (r Result) Score() float64 { return r.score }

// Confidence returns the softmax weight, or an origin sentinel.
func (r Result) Confidence() float64 { return r.confidence }

// MatchedSynonyms returns up to three strings explaining the match.
func (r Result) MatchedSynonyms() []string {
	result := make([]string, len(r.matchedSynonyms))
	copy(result, r.matchedSynonyms)
	return result
}

// WithMatchedSynonyms returns a copy annotated with matched synonyms,
// truncated to the cap.
func (r Result) WithMatchedSynonyms(matched []string) Result {
	if len(matched) > MaxMatchedSynonyms {
		matched = matched[:MaxMatchedSynonyms]
	}
	copied := make([]string, len(matched))
	copy(copied, matched)
	r.matchedSynonyms = copied
	return r
}

// Response is the complete outcome of one pipeline run.
type Response struct {
	results       []Result
	lowConfidence bool
	language      Language
	translated    bool
	suggestions   []string
	alternatives  []string
}

// NewResponse creates a new Response.
func NewResponse(results []Result, lowConfidence bool, language Language, translated bool) Response {
	copied := make([]Result, len(results))
	copy(copied, results)
	return Response{
		results:       copied,
		lowConfidence: lowConfidence,
		language:      language,
		translated:    translated,
	}
}

// Results returns the ordered result list.
func (r Response) Results() []Result {
	result := make([]Result, len(r.results))
	copy(result, r.results)
	return result
}

// LowConfidence reports whether the confidence gate flagged the response.
func (r Response) LowConfidence() bool { return r.lowConfidence }

// Language returns the detected or caller-supplied language.
func (r Response) Language() Language { return r.language }

// Translated reports whether translation rescue produced the result set.
func (r Response) Translated() bool { return r.translated }

// Suggestions returns guidance texts attached on low confidence.
func (r Response) Suggestions() []string {
	result := make([]string, len(r.suggestions))
	copy(result, r.suggestions)
	return result
}

// Alternatives returns alternate query phrasings attached on low confidence.
func (r Response) Alternatives() []string {
	result := make([]string, len(r.alternatives))
	copy(result, r.alternatives)
	return result
}

// WithRescueHints returns a copy carrying suggestions and alternatives.
func (r Response) WithRescueHints(suggestions, alternatives []string) Response {
	s := make([]string, len(suggestions))
	copy(s, suggestions)
	a := make([]string, len(alternatives))
	copy(a, alternatives)
	r.suggestions = s
	r.alternatives = a
	return r
}
