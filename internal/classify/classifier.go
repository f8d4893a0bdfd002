// Package classify assigns a best-guess category to an extracted record by
// scoring keyword occurrences. Assignment is advisory: no guess beats a wrong
// guess, and classification can never fail an ingestion.
package classify

import (
	"strings"

	"github.com/google/uuid"

	"github.com/solobooks/solobooks/constants"
	"github.com/solobooks/solobooks/internal/entity"
)

// Match scores the candidate categories against vendor name + description and
// returns the id of the strictly best-scoring one, or nil when every score is
// zero. Ties keep the first-seen candidate.
func Match(vendorName, description string, categories []entity.Category) *uuid.UUID {
	haystack := strings.ToLower(strings.TrimSpace(vendorName + " " + description))
	if haystack == "" || len(categories) == 0 {
		return nil
	}

	var best *uuid.UUID
	bestScore := 0
	for i := range categories {
		score := scoreCategory(haystack, categories[i].Name)
		if score > bestScore {
			bestScore = score
			best = &categories[i].ID
		}
	}
	return best
}

func scoreCategory(haystack, name string) int {
	score := 0
	for _, kw := range constants.CategoryKeywords[name] {
		score += strings.Count(haystack, kw)
	}
	if n := strings.ToLower(strings.TrimSpace(name)); n != "" && strings.Contains(haystack, n) {
		score += constants.NameBonus
	}
	return score
}
