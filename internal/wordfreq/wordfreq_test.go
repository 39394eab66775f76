package wordfreq

import (
	"errors"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/matsen/paperdash/internal/paper"
	"github.com/matsen/paperdash/internal/wordcloud"
)

func titled(titles ...string) []paper.Record {
	records := make([]paper.Record, len(titles))
	for i, t := range titles {
		records[i] = paper.Record{PublishTime: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Title: paper.String(t)}
	}
	return records
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"letters only", "rapid diagnosis of covid", []string{"rapid", "diagnosis", "of", "covid"}},
		{"hyphen splits digits off", "covid-19 antibody", []string{"covid", "antibody"}},
		{"digits inside word drop it", "covid19 sars2 pcr", []string{"pcr"}},
		{"single letters dropped", "a b cd", []string{"cd"}},
		{"punctuation", "(pcr), rt-pcr; don't", []string{"pcr", "rt", "pcr", "don"}},
		{"underscore joins", "foo_bar baz", []string{"baz"}},
		{"non-ascii letters drop word", "café naïve virus", []string{"virus"}},
		{"uppercase is not matched", "COVID", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestJoinTitles(t *testing.T) {
	records := titled("Rapid DIAGNOSIS", "PCR")
	records = append(records, paper.Record{})
	got := JoinTitles(records)
	if got != "rapid diagnosis pcr" {
		t.Errorf("JoinTitles() = %q", got)
	}
}

func TestCaseInsensitive(t *testing.T) {
	sw := DefaultStopwords()
	upper := Filter(Tokenize(JoinTitles(titled("COVID Study"))), sw)
	lowerCase := Filter(Tokenize(JoinTitles(titled("covid study"))), sw)
	if !reflect.DeepEqual(upper, lowerCase) {
		t.Errorf("token multisets differ: %q vs %q", upper, lowerCase)
	}
	if !reflect.DeepEqual(upper, []string{"covid"}) {
		t.Errorf("filtered tokens = %q, want [covid]", upper)
	}
}

func TestDefaultStopwords(t *testing.T) {
	sw := DefaultStopwords()
	for _, w := range []string{"using", "method", "the", "however", "abstract", "www"} {
		if !sw.Contains(w) {
			t.Errorf("stopwords missing %q", w)
		}
	}
	for _, w := range []string{"covid", "virus", "pcr"} {
		if sw.Contains(w) {
			t.Errorf("stopwords unexpectedly contain %q", w)
		}
	}
}

func TestStopwordsUnion(t *testing.T) {
	a := NewStopwords("Alpha", " beta ", "")
	b := NewStopwords("gamma")
	u := a.Union(b)
	if !reflect.DeepEqual(u.Sorted(), []string{"alpha", "beta", "gamma"}) {
		t.Errorf("Union() = %v", u.Sorted())
	}
	if len(a) != 2 {
		t.Errorf("Union() modified receiver: %v", a.Sorted())
	}
}

func TestTopWords_Scenario(t *testing.T) {
	records := titled("Rapid diagnosis of COVID-19 using PCR", "COVID-19 antibody testing")
	tokens := Filter(Tokenize(JoinTitles(records)), DefaultStopwords())

	got, err := TopWords(tokens, 5)
	if err != nil {
		t.Fatalf("TopWords() error = %v", err)
	}
	want := []WordCount{
		{"covid", 2},
		{"antibody", 1},
		{"diagnosis", 1},
		{"pcr", 1},
		{"rapid", 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopWords() = %v, want %v", got, want)
	}

	all, err := TopWords(tokens, MaxTopN)
	if err != nil {
		t.Fatal(err)
	}
	var words []string
	for _, wc := range all {
		words = append(words, wc.Word)
	}
	sort.Strings(words)
	wantWords := []string{"antibody", "covid", "diagnosis", "pcr", "rapid", "testing"}
	if !reflect.DeepEqual(words, wantWords) {
		t.Errorf("all words = %v, want %v", words, wantWords)
	}
}

func TestTopWords_Properties(t *testing.T) {
	records := titled(
		"Epidemiology of SARS-CoV-2 transmission in households",
		"Household transmission dynamics: a modelling study",
		"Transmission of influenza and coronavirus in schools",
		"Modelling school closures during the 2020 pandemic",
	)
	sw := DefaultStopwords()
	tokens := Filter(Tokenize(JoinTitles(records)), sw)

	for _, n := range []int{1, 3, 5, 50} {
		got, err := TopWords(tokens, n)
		if err != nil {
			t.Fatalf("TopWords(%d) error = %v", n, err)
		}
		if len(got) > n {
			t.Errorf("TopWords(%d) returned %d words", n, len(got))
		}
		for i, wc := range got {
			if i > 0 && got[i-1].Count < wc.Count {
				t.Errorf("counts not non-increasing at %d", i)
			}
			if len(wc.Word) < 2 {
				t.Errorf("word %q shorter than 2", wc.Word)
			}
			for _, r := range wc.Word {
				if r < 'a' || r > 'z' {
					t.Errorf("word %q is not lowercase alphabetic", wc.Word)
				}
			}
			if sw.Contains(wc.Word) {
				t.Errorf("stopword %q returned", wc.Word)
			}
		}
	}

	got, _ := TopWords(tokens, 1)
	if got[0] != (WordCount{"transmission", 3}) {
		t.Errorf("top word = %v, want transmission x3", got[0])
	}
}

func TestTopWords_Empty(t *testing.T) {
	if _, err := TopWords(nil, 10); !errors.Is(err, ErrEmpty) {
		t.Errorf("TopWords(nil) error = %v, want ErrEmpty", err)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeBar, false},
		{"bar", ModeBar, false},
		{"Cloud", ModeCloud, false},
		{"wordcloud", ModeCloud, false},
		{"pie", ModeBar, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if ModeCloud.String() != "cloud" || ModeBar.String() != "bar" {
		t.Error("Mode.String() mismatch")
	}
}

func TestClampTopN(t *testing.T) {
	tests := map[int]int{0: DefaultTopN, 1: MinTopN, 5: 5, 33: 33, 50: 50, 99: MaxTopN, -4: MinTopN}
	for in, want := range tests {
		if got := ClampTopN(in); got != want {
			t.Errorf("ClampTopN(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestDensityMap_Empty(t *testing.T) {
	opts := wordcloud.DefaultOptions()
	for _, text := range []string{"", "   \n"} {
		if _, err := DensityMap(text, DefaultStopwords(), opts); !errors.Is(err, ErrEmpty) {
			t.Errorf("DensityMap(%q) error = %v, want ErrEmpty", text, err)
		}
	}
	if _, err := DensityMap("the of and", DefaultStopwords(), opts); !errors.Is(err, ErrEmpty) {
		t.Errorf("stopword-only text: error = %v, want ErrEmpty", err)
	}
}

func TestAnalyze(t *testing.T) {
	records := titled("Rapid diagnosis of COVID-19 using PCR", "COVID-19 antibody testing")

	bar, err := Analyze(records, Request{Mode: ModeBar, TopN: 2})
	if err != nil {
		t.Fatalf("Analyze(bar) error = %v", err)
	}
	if bar.TopN != MinTopN {
		t.Errorf("TopN = %d, want clamped to %d", bar.TopN, MinTopN)
	}
	if bar.Cloud != nil || len(bar.Words) != 5 {
		t.Errorf("bar result = %+v", bar)
	}

	opts := wordcloud.DefaultOptions()
	opts.Width, opts.Height = 400, 200
	cloud, err := Analyze(records, Request{Mode: ModeCloud, Cloud: opts})
	if err != nil {
		t.Fatalf("Analyze(cloud) error = %v", err)
	}
	if cloud.Cloud == nil || cloud.Words != nil {
		t.Fatalf("cloud result = %+v", cloud)
	}
	for _, w := range cloud.Cloud.Words {
		if DefaultStopwords().Contains(w.Text) {
			t.Errorf("stopword %q in density map", w.Text)
		}
	}
}

func TestAnalyze_EmptyTable(t *testing.T) {
	for _, mode := range []Mode{ModeBar, ModeCloud} {
		if _, err := Analyze(nil, Request{Mode: mode}); !errors.Is(err, ErrEmpty) {
			t.Errorf("Analyze(%v) on empty table error = %v, want ErrEmpty", mode, err)
		}
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	records := titled("Masks and transmission", "Transmission in schools", "Masks in schools")
	a, errA := Analyze(records, Request{Mode: ModeBar, TopN: 10})
	b, errB := Analyze(records, Request{Mode: ModeBar, TopN: 10})
	if errA != nil || errB != nil {
		t.Fatal(errA, errB)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("Analyze() not idempotent")
	}
}

func TestStopwordLists_NoDuplicates(t *testing.T) {
	for name, list := range map[string][]string{"english": englishStopwords, "domain": domainStopwords} {
		seen := make(map[string]bool, len(list))
		for _, w := range list {
			if seen[w] {
				t.Errorf("%s list repeats %q", name, w)
			}
			seen[w] = true
		}
	}
}
