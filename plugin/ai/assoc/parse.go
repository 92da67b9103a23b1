package assoc

import (
	"regexp"
	"strings"
)

// Tokens that carry no fact signal on either side of a pair.
var stopTokens = map[string]struct{}{
	"the": {}, "this": {}, "that": {}, "there": {}, "here": {}, "and": {},
	"but": {}, "with": {}, "then": {}, "when": {}, "what": {}, "why": {},
	"are": {}, "you": {}, "your": {}, "have": {}, "has": {}, "was": {},
	"all": {}, "any": {}, "each": {}, "every": {}, "for": {}, "from": {},
	"into": {}, "just": {}, "like": {}, "more": {}, "most": {}, "not": {},
	"now": {}, "only": {}, "other": {}, "out": {}, "own": {}, "same": {},
	"than": {}, "them": {}, "these": {}, "they": {}, "very": {}, "well": {},
	"will": {},
}

var (
	trainingRe = regexp.MustCompile(`\b(remember|associate|map|define|set|means)\b`)
	whitespace = regexp.MustCompile(`\s+`)
	chunkSplit = regexp.MustCompile(`[;,]`)

	// In training mode "is" and "equals" count as the pairing verb; outside
	// it only an explicit "=" does, so ordinary sentences don't turn into
	// facts.
	eqTrainingRe = regexp.MustCompile(`\b([a-z0-9_-]{3,})\s*(=|is|equals)\s*([a-z0-9_-]{3,})\b`)
	eqStrictRe   = regexp.MustCompile(`\b([a-z0-9_-]{3,})\s*(=)\s*([a-z0-9_-]{3,})\b`)

	hasLetterRe = regexp.MustCompile(`[a-z]`)
	tokenSplit  = regexp.MustCompile(`[\s,]+`)
	nonTokenRe  = regexp.MustCompile(`[^a-z0-9_,\s-]`)
)

// ParsePairs extracts fact statements from text, at most one per
// comma/semicolon chunk.
func ParsePairs(text string) []Pair {
	if text == "" {
		return nil
	}

	lc := strings.ToLower(text)
	eqRe := eqStrictRe
	if trainingRe.MatchString(lc) {
		eqRe = eqTrainingRe
	}
	normalized := whitespace.ReplaceAllString(lc, " ")

	pairs := []Pair{}
	for _, chunk := range chunkSplit.Split(normalized, -1) {
		m := eqRe.FindStringSubmatch(chunk)
		if m == nil {
			continue
		}
		left, right := m[1], m[3]
		if validToken(left) && validToken(right) {
			pairs = append(pairs, Pair{Left: left, Right: right})
		}
	}
	return pairs
}

// tokenize lowercases text and splits it into candidate tokens for
// right-side matching.
func tokenize(text string) []string {
	cleaned := nonTokenRe.ReplaceAllString(strings.ToLower(text), " ")
	tokens := []string{}
	for _, tok := range tokenSplit.Split(cleaned, -1) {
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func validToken(tok string) bool {
	if len(tok) < 3 {
		return false
	}
	if _, ok := stopTokens[tok]; ok {
		return false
	}
	return hasLetterRe.MatchString(tok)
}
