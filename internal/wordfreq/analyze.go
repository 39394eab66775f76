package wordfreq

import (
	"github.com/matsen/paperdash/internal/paper"
	"github.com/matsen/paperdash/internal/wordcloud"
)

// Request holds the presentation choices for one analysis.
type Request struct {
	Mode Mode
	// TopN is clamped into [MinTopN, MaxTopN]; only ModeBar uses it.
	TopN int
	// Stopwords defaults to DefaultStopwords when nil.
	Stopwords Stopwords
	// Cloud configures ModeCloud, usually starting from wordcloud.DefaultOptions.
	// Zero sizing fields take the defaults.
	Cloud wordcloud.Options
}

// Result holds the output of exactly one mode.
type Result struct {
	Mode  Mode              `json:"-"`
	TopN  int               `json:"top_n,omitempty"`
	Words []WordCount       `json:"words,omitempty"`
	Cloud *wordcloud.Layout `json:"cloud,omitempty"`
}

// Analyze runs the selected mode over the titles of records.
// It does not modify records and depends only on its inputs.
func Analyze(records []paper.Record, req Request) (Result, error) {
	stopwords := req.Stopwords
	if stopwords == nil {
		stopwords = DefaultStopwords()
	}
	text := JoinTitles(records)

	switch req.Mode {
	case ModeCloud:
		layout, err := DensityMap(text, stopwords, req.Cloud)
		if err != nil {
			return Result{Mode: ModeCloud}, err
		}
		return Result{Mode: ModeCloud, Cloud: layout}, nil
	default:
		n := ClampTopN(req.TopN)
		words, err := TopWords(Filter(Tokenize(text), stopwords), n)
		if err != nil {
			return Result{Mode: ModeBar, TopN: n}, err
		}
		return Result{Mode: ModeBar, TopN: n, Words: words}, nil
	}
}
