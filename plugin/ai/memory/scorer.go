package memory

import (
	"math"
	"strings"
	"time"
)

// Scoring weights. The components sum to at most 0.8 + 0.1*n + bonuses, so
// the final score is clamped to [0, 1].
const (
	exactMatchWeight    = 0.8
	keywordMatchWeight  = 0.1
	positionBonusWeight = 0.05
	densityWeight       = 0.2
	brevityWeight       = 0.05
	recencyWeight       = 0.15

	// scoreThreshold is exclusive: a candidate must score strictly above
	// it to be selected.
	scoreThreshold = 0.2
)

// similarity scores how relevant content is to the query, in [0, 1].
//
// The score is additive: an exact substring match of the whole query
// dominates, individual keyword hits accumulate with a bonus for matches
// near the start of the content, keyword density and brevity nudge short
// focused messages up, and a recency boost favors messages inside the
// recency window.
func similarity(query string, keywords []string, content string, createdTs int64, now time.Time, recencyWindowDays int) float64 {
	score := 0.0
	queryLower := strings.ToLower(strings.TrimSpace(query))
	contentLower := strings.ToLower(content)

	if queryLower != "" && strings.Contains(contentLower, queryLower) {
		score += exactMatchWeight
	}

	matched := 0
	for _, keyword := range keywords {
		idx := strings.Index(contentLower, keyword)
		if idx < 0 {
			continue
		}
		matched++
		score += keywordMatchWeight
		score += math.Max(0, 1-float64(idx)/float64(len(contentLower))) * positionBonusWeight
	}

	if len(keywords) > 0 {
		score += float64(matched) / float64(len(keywords)) * densityWeight
	}

	score += math.Min(1, 100/math.Max(float64(len(content)), 1)) * brevityWeight
	score += recencyBoost(createdTs, now, recencyWindowDays)

	return math.Min(1, math.Max(0, score))
}

// recencyBoost returns a boost in [0, recencyWeight] that decays linearly
// over the recency window. Messages older than the window, messages with a
// future timestamp, and unparseable timestamps all get zero.
func recencyBoost(createdTs int64, now time.Time, recencyWindowDays int) float64 {
	if createdTs <= 0 || recencyWindowDays <= 0 {
		return 0
	}
	ageDays := now.Sub(time.Unix(createdTs, 0)).Hours() / 24
	if math.IsNaN(ageDays) || ageDays < 0 {
		return 0
	}
	window := float64(recencyWindowDays)
	if ageDays > window {
		return 0
	}
	return (window - ageDays) / window * recencyWeight
}
