package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// DefaultSimilarity is the default Jaro-Winkler threshold.
const DefaultSimilarity = 0.92

// maxSimilarCandidates bounds the pairwise comparison to the most frequent journals.
const maxSimilarCandidates = 300

// JournalPair is two journal names that look like spelling variants.
type JournalPair struct {
	A          string  `json:"a"`
	B          string  `json:"b"`
	CountA     int     `json:"count_a"`
	CountB     int     `json:"count_b"`
	Similarity float32 `json:"similarity"`
}

// SimilarJournals flags pairs of journal names whose case-insensitive
// Jaro-Winkler similarity is at least threshold. Counts are never merged.
// Pairs are ordered by similarity descending.
func SimilarJournals(ranked []JournalCount, threshold float32) ([]JournalPair, error) {
	if threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("similarity threshold must be in (0, 1], got %v", threshold)
	}
	if len(ranked) > maxSimilarCandidates {
		ranked = ranked[:maxSimilarCandidates]
	}

	lowered := make([]string, len(ranked))
	for i, jc := range ranked {
		lowered[i] = strings.ToLower(strings.TrimSpace(jc.Journal))
	}

	var pairs []JournalPair
	for i := 0; i < len(ranked); i++ {
		for j := i + 1; j < len(ranked); j++ {
			sim, err := edlib.StringsSimilarity(lowered[i], lowered[j], edlib.JaroWinkler)
			if err != nil {
				return nil, fmt.Errorf("comparing %q and %q: %w", ranked[i].Journal, ranked[j].Journal, err)
			}
			if sim >= threshold {
				pairs = append(pairs, JournalPair{
					A:          ranked[i].Journal,
					B:          ranked[j].Journal,
					CountA:     ranked[i].Count,
					CountB:     ranked[j].Count,
					Similarity: sim,
				})
			}
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Similarity > pairs[j].Similarity
	})
	return pairs, nil
}

