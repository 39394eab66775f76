// Package wordfreq extracts, filters and ranks words from paper titles.
//
// Titles are joined and lowercased, split into runs of ASCII letters, and
// stripped of stopwords. The result is shown either as a ranked top-N
// table (ModeBar) or as a word density map (ModeCloud).
package wordfreq

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/matsen/paperdash/internal/paper"
	"github.com/matsen/paperdash/internal/wordcloud"
)

// Top-N bounds for the ranked table.
const (
	MinTopN     = 5
	MaxTopN     = 50
	DefaultTopN = 20
)

// ErrEmpty is returned when there are no words to show.
var ErrEmpty = errors.New("empty result")

// Mode selects how word frequencies are presented.
type Mode int

const (
	// ModeBar ranks the top N words for a bar chart.
	ModeBar Mode = iota
	// ModeCloud lays the words out as a density map.
	ModeCloud
)

// String returns the canonical name used in URLs and flags.
func (m Mode) String() string {
	switch m {
	case ModeBar:
		return "bar"
	case ModeCloud:
		return "cloud"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "bar" or "cloud" (and the aliases "top", "wordcloud").
// An empty string selects ModeBar.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bar", "top":
		return ModeBar, nil
	case "cloud", "wordcloud":
		return ModeCloud, nil
	default:
		return ModeBar, fmt.Errorf("invalid mode %q: must be bar or cloud", s)
	}
}

// ClampTopN forces n into [MinTopN, MaxTopN]; zero selects DefaultTopN.
func ClampTopN(n int) int {
	switch {
	case n == 0:
		return DefaultTopN
	case n < MinTopN:
		return MinTopN
	case n > MaxTopN:
		return MaxTopN
	default:
		return n
	}
}

// WordCount is one row of the ranked table.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

var lower = cases.Lower(language.Und)

// JoinTitles concatenates the present titles with single spaces and
// lowercases the result.
func JoinTitles(records []paper.Record) string {
	titles := make([]string, 0, len(records))
	for _, r := range records {
		if r.HasTitle() {
			titles = append(titles, *r.Title)
		}
	}
	return lower.String(strings.Join(titles, " "))
}

// isWordRune matches the word characters of a Unicode regexp \w class.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsNumber(r)
}

// Tokenize returns the words of text made only of lowercase ASCII letters
// and at least two letters long. A word is a maximal run of word characters
// (letters, digits, underscore), so "covid19" yields nothing while
// "covid-19" yields "covid".
func Tokenize(text string) []string {
	var tokens []string
	start := -1
	ascii := true

	flush := func(end int) {
		if start >= 0 && ascii && end-start >= 2 {
			tokens = append(tokens, text[start:end])
		}
		start = -1
		ascii = true
	}

	for i, r := range text {
		if !isWordRune(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
		}
		if r < 'a' || r > 'z' {
			ascii = false
		}
	}
	flush(len(text))
	return tokens
}

// Filter drops tokens that are stopwords.
func Filter(tokens []string, stopwords Stopwords) []string {
	kept := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !stopwords.Contains(t) {
			kept = append(kept, t)
		}
	}
	return kept
}

// Count tallies token occurrences.
func Count(tokens []string) map[string]int {
	counts := make(map[string]int)
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}

// TopWords ranks tokens by count, most frequent first, with equal counts in
// alphabetical order, and keeps the first n (all when n <= 0).
// Returns ErrEmpty if tokens is empty.
func TopWords(tokens []string, n int) ([]WordCount, error) {
	if len(tokens) == 0 {
		return nil, ErrEmpty
	}

	counts := Count(tokens)
	ranked := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		ranked = append(ranked, WordCount{Word: w, Count: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Word < ranked[j].Word
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// DensityMap lays out the words of the joined title text on a word cloud
// canvas. Returns ErrEmpty when the text is blank or nothing survives
// stopword removal.
func DensityMap(text string, stopwords Stopwords, opts wordcloud.Options) (*wordcloud.Layout, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmpty
	}
	layout, err := wordcloud.Generate(text, stopwords, opts)
	if errors.Is(err, wordcloud.ErrNoWords) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("laying out word cloud: %w", err)
	}
	return layout, nil
}
