package wordfreq

import (
	"sort"
	"strings"
)

// Stopwords is a set of lowercase words excluded from frequency analysis.
type Stopwords map[string]struct{}

// englishStopwords is the general-purpose English list used by word clouds.
var englishStopwords = []string{
	"a", "about", "above", "after", "again", "against", "all", "also", "am", "an",
	"and", "any", "are", "aren't", "as", "at",
	"be", "because", "been", "before", "being", "below", "between", "both", "but", "by",
	"can", "can't", "cannot", "com", "could", "couldn't",
	"did", "didn't", "do", "does", "doesn't", "doing", "don't", "down", "during",
	"each", "else", "ever",
	"few", "for", "from", "further",
	"get",
	"had", "hadn't", "has", "hasn't", "have", "haven't", "having", "he", "he'd", "he'll",
	"he's", "hence", "her", "here", "here's", "hers", "herself", "him", "himself", "his",
	"how", "how's", "however", "http",
	"i", "i'd", "i'll", "i'm", "i've", "if", "in", "into", "is", "isn't", "it", "it's",
	"its", "itself",
	"just",
	"k",
	"let's", "like",
	"me", "more", "most", "mustn't", "my", "myself",
	"no", "nor", "not",
	"of", "off", "on", "once", "only", "or", "other", "otherwise", "ought", "our", "ours",
	"ourselves", "out", "over", "own",
	"r",
	"same", "shall", "shan't", "she", "she'd", "she'll", "she's", "should", "shouldn't",
	"since", "so", "some", "such",
	"than", "that", "that's", "the", "their", "theirs", "them", "themselves", "then",
	"there", "there's", "therefore", "these", "they", "they'd", "they'll", "they're",
	"they've", "this", "those", "through", "to", "too",
	"under", "until", "up",
	"very",
	"was", "wasn't", "we", "we'd", "we'll", "we're", "we've", "were", "weren't", "what",
	"what's", "when", "when's", "where", "where's", "which", "while", "who", "who's",
	"whom", "why", "why's", "with", "won't", "would", "wouldn't", "www",
	"you", "you'd", "you'll", "you're", "you've", "your", "yours", "yourself", "yourselves",
}

// domainStopwords are frequent in paper titles but carry no topic.
var domainStopwords = []string{
	"using", "based", "study", "analysis", "of", "in", "and", "the", "for", "with", "to",
	"on", "by", "from", "an", "a", "at", "is", "are", "be", "as", "that", "this", "it",
	"its", "into", "was", "were", "or", "abstract", "expression", "following", "high",
	"type", "approach", "use", "method",
}

// NewStopwords builds a set from words, lowercased.
func NewStopwords(words ...string) Stopwords {
	s := make(Stopwords, len(words))
	s.Add(words...)
	return s
}

// DefaultStopwords returns the English list joined with the title-specific list.
func DefaultStopwords() Stopwords {
	s := NewStopwords(englishStopwords...)
	s.Add(domainStopwords...)
	return s
}

// Add inserts words, lowercased and trimmed. Blank words are ignored.
func (s Stopwords) Add(words ...string) {
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			s[w] = struct{}{}
		}
	}
}

// Contains reports whether word is in the set.
func (s Stopwords) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// Union returns a new set holding the words of both sets.
func (s Stopwords) Union(other Stopwords) Stopwords {
	u := make(Stopwords, len(s)+len(other))
	for w := range s {
		u[w] = struct{}{}
	}
	for w := range other {
		u[w] = struct{}{}
	}
	return u
}

// Sorted returns the words in alphabetical order.
func (s Stopwords) Sorted() []string {
	words := make([]string, 0, len(s))
	for w := range s {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}
