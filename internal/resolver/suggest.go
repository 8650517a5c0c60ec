package resolver

import (
	"github.com/hbollon/go-edlib"
)

// suggestLocked scans every known fully-qualified name for the best
// Jaro-Winkler match. Callers hold at least the read lock.
func (r *Resolver) suggestLocked(fullName string) (string, bool) {
	best := ""
	bestScore := float32(r.threshold)

	for _, names := range r.byName {
		for candidate := range names {
			if candidate == fullName {
				continue
			}
			score, err := edlib.StringsSimilarity(fullName, candidate, edlib.JaroWinkler)
			if err != nil {
				continue
			}
			if score > bestScore || (score == bestScore && best == "") {
				best = candidate
				bestScore = score
			}
		}
	}

	return best, best != ""
}
