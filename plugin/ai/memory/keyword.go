package memory

import (
	"regexp"
	"strings"
)

// stopWords are common words carrying no retrieval signal.
var stopWords = map[string]struct{}{
	"the": {}, "is": {}, "at": {}, "which": {}, "on": {},
	"a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "with": {}, "to": {}, "of": {}, "for": {},
}

// punctuationRe strips sentence punctuation, including curly quotes, before
// tokenization. Apostrophes inside words are removed rather than splitting,
// so "don't" tokenizes as "dont".
var punctuationRe = regexp.MustCompile(`[.,?!;:()\[\]{}“”‘’'"]`)

// ExtractKeywords tokenizes a query into deduplicated lowercase keywords.
// Tokens of length two or less and stop words are dropped. Order follows
// first appearance in the query.
func ExtractKeywords(query string) []string {
	cleaned := punctuationRe.ReplaceAllString(strings.ToLower(query), "")

	seen := map[string]struct{}{}
	keywords := []string{}
	for _, token := range strings.Fields(cleaned) {
		if len(token) <= 2 {
			continue
		}
		if _, ok := stopWords[token]; ok {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
	}
	return keywords
}
