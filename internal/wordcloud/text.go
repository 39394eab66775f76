package wordcloud

import (
	"sort"
	"strings"
	"unicode"
)

// isWordRune matches the word characters of a Unicode regexp \w class.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsNumber(r)
}

// splitWords returns runs that start with a word character and continue with
// word characters or apostrophes.
func splitWords(text string) []string {
	var words []string
	start := -1
	for i, r := range text {
		switch {
		case start < 0 && isWordRune(r):
			start = i
		case start >= 0 && !isWordRune(r) && r != '\'':
			words = append(words, text[start:i])
			start = -1
		}
	}
	if start >= 0 {
		words = append(words, text[start:])
	}
	return words
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

// ProcessText splits text into words and counts them. A trailing "'s" is
// stripped, pure numbers are dropped, stopwords are removed without regard to
// case, and with normalizePlurals a word ending in a single "s" is folded into
// its singular when the singular also occurs.
func ProcessText(text string, stopwords map[string]struct{}, normalizePlurals bool) map[string]int {
	lowered := make(map[string]struct{}, len(stopwords))
	for w := range stopwords {
		lowered[strings.ToLower(w)] = struct{}{}
	}

	counts := make(map[string]int)
	for _, w := range splitWords(text) {
		if strings.HasSuffix(strings.ToLower(w), "'s") {
			w = w[:len(w)-2]
		}
		if w == "" || isNumeric(w) {
			continue
		}
		w = strings.ToLower(w)
		if _, stop := lowered[w]; stop {
			continue
		}
		counts[w]++
	}

	if normalizePlurals {
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !strings.HasSuffix(k, "s") || strings.HasSuffix(k, "ss") {
				continue
			}
			singular := k[:len(k)-1]
			if _, ok := counts[singular]; ok {
				counts[singular] += counts[k]
				delete(counts, k)
			}
		}
	}

	return counts
}

// weighted is a word with its count and its frequency relative to the top word.
type weighted struct {
	word   string
	count  int
	weight float64
}

// rankFrequencies orders words by count descending (ties alphabetical),
// keeps at most maxWords, and normalizes weights by the top count.
func rankFrequencies(counts map[string]int, maxWords int) []weighted {
	ranked := make([]weighted, 0, len(counts))
	for w, c := range counts {
		if c > 0 {
			ranked = append(ranked, weighted{word: w, count: c})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].word < ranked[j].word
	})
	if maxWords > 0 && len(ranked) > maxWords {
		ranked = ranked[:maxWords]
	}
	if len(ranked) == 0 {
		return ranked
	}

	top := float64(ranked[0].count)
	for i := range ranked {
		ranked[i].weight = float64(ranked[i].count) / top
	}
	return ranked
}
