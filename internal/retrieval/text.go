package retrieval

import (
	"regexp"
	"strings"
)

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	nonAlnumPattern   = regexp.MustCompile(`[^a-z0-9]+`)
)

// stopWords are dropped from query terms so that filler vocabulary never
// counts as evidence overlap.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {},
	"your": {}, "this": {}, "that": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "about": {}, "into": {}, "does": {},
	"have": {}, "will": {}, "would": {}, "there": {}, "their": {},
}

// CleanText collapses all whitespace runs into single spaces.
func CleanText(input string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(input, " "))
}

// Truncate shortens text to at most length characters, ellipsized.
func Truncate(text string, length int) string {
	if len(text) <= length {
		return text
	}
	if length <= 3 {
		return text[:length]
	}
	return text[:length-3] + "..."
}

// SentenceSplit breaks text on sentence-ending punctuation followed by
// whitespace, returning cleaned non-empty sentences.
func SentenceSplit(input string) []string {
	var sentences []string
	start := 0

	for i := 0; i < len(input); i++ {
		switch input[i] {
		case '.', '!', '?':
			if i+1 < len(input) && (input[i+1] == ' ' || input[i+1] == '\t' || input[i+1] == '\n' || input[i+1] == '\r') {
				if s := CleanText(input[start : i+1]); s != "" {
					sentences = append(sentences, s)
				}
				start = i + 1
			}
		}
	}

	if s := CleanText(input[start:]); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// Tokenize lowercases and splits on non-alphanumeric runs, keeping only
// tokens longer than two characters.
func Tokenize(input string) []string {
	lowered := strings.ToLower(CleanText(input))
	parts := nonAlnumPattern.Split(lowered, -1)

	tokens := make([]string, 0, len(parts))
	for _, token := range parts {
		if len(token) > 2 {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// QueryTerms tokenizes a query and removes stop words.
func QueryTerms(query string) []string {
	tokens := Tokenize(query)
	terms := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, skip := stopWords[token]; !skip {
			terms = append(terms, token)
		}
	}
	return terms
}

// TokenSet returns the unique tokens of a text.
func TokenSet(input string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range Tokenize(input) {
		set[token] = struct{}{}
	}
	return set
}

// Jaccard computes token-set similarity between two texts.
func Jaccard(a, b string) float64 {
	aSet := TokenSet(a)
	bSet := TokenSet(b)
	if len(aSet) == 0 || len(bSet) == 0 {
		return 0
	}

	intersection := 0
	for token := range aSet {
		if _, ok := bSet[token]; ok {
			intersection++
		}
	}

	union := len(aSet) + len(bSet) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
