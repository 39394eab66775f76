package wordcloud

import (
	"reflect"
	"testing"
)

func TestSplitWords(t *testing.T) {
	got := splitWords("covid-19 patients' data; o'brien_2 (pcr)")
	want := []string{"covid", "19", "patients'", "data", "o'brien_2", "pcr"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitWords() = %q, want %q", got, want)
	}
}

func TestProcessText(t *testing.T) {
	stop := map[string]struct{}{"The": {}, "of": {}}

	tests := []struct {
		name    string
		text    string
		plurals bool
		want    map[string]int
	}{
		{
			name: "stopwords removed case-insensitively",
			text: "the spread of virus",
			want: map[string]int{"spread": 1, "virus": 1},
		},
		{
			name: "possessive stripped and numbers dropped",
			text: "patient's outcome in 2020 patient",
			want: map[string]int{"patient": 2, "outcome": 1, "in": 1},
		},
		{
			name:    "plural folded into singular",
			text:    "cases case cases class classes",
			plurals: true,
			want:    map[string]int{"case": 3, "class": 1, "classes": 1},
		},
		{
			name:    "plural kept without singular",
			text:    "masks masks",
			plurals: true,
			want:    map[string]int{"masks": 2},
		},
		{
			name:    "no folding when disabled",
			text:    "cases case",
			plurals: false,
			want:    map[string]int{"cases": 1, "case": 1},
		},
		{
			name: "empty",
			text: "  ",
			want: map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProcessText(tt.text, stop, tt.plurals)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ProcessText() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRankFrequencies(t *testing.T) {
	ranked := rankFrequencies(map[string]int{"b": 2, "a": 2, "c": 4, "d": 1}, 3)
	var words []string
	for _, w := range ranked {
		words = append(words, w.word)
	}
	if !reflect.DeepEqual(words, []string{"c", "a", "b"}) {
		t.Errorf("order = %v", words)
	}
	if ranked[0].weight != 1 || ranked[1].weight != 0.5 {
		t.Errorf("weights = %v, %v", ranked[0].weight, ranked[1].weight)
	}
}
