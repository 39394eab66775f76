package aggregate

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/matsen/paperdash/internal/paper"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func recordsAt(dates ...string) []paper.Record {
	records := make([]paper.Record, len(dates))
	for i, d := range dates {
		records[i] = paper.Record{PublishTime: day(d)}
	}
	return records
}

func withJournals(names ...*string) []paper.Record {
	records := make([]paper.Record, len(names))
	for i, n := range names {
		records[i] = paper.Record{PublishTime: day("2020-03-01"), Journal: n}
	}
	return records
}

func TestMonthlyCounts(t *testing.T) {
	tests := []struct {
		name  string
		dates []string
		want  map[string]int
		order []string
	}{
		{
			name:  "two months",
			dates: []string{"2020-01-15", "2020-01-20", "2020-02-01"},
			want:  map[string]int{"2020-01": 2, "2020-02": 1},
			order: []string{"2020-01", "2020-02"},
		},
		{
			name:  "unsorted input comes out chronological",
			dates: []string{"2020-03-09", "2019-12-31", "2020-03-01"},
			want:  map[string]int{"2019-12": 1, "2020-01": 0, "2020-02": 0, "2020-03": 2},
			order: []string{"2019-12", "2020-01", "2020-02", "2020-03"},
		},
		{
			name:  "empty",
			dates: nil,
			want:  map[string]int{},
			order: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := recordsAt(tt.dates...)
			got := MonthlyCounts(records)
			if got == nil {
				t.Fatal("MonthlyCounts() returned nil")
			}

			gotMap := make(map[string]int)
			var gotOrder []string
			for _, m := range got {
				gotMap[m.Label()] = m.Count
				gotOrder = append(gotOrder, m.Label())
			}
			if !reflect.DeepEqual(gotMap, tt.want) {
				t.Errorf("MonthlyCounts() = %v, want %v", gotMap, tt.want)
			}
			if !reflect.DeepEqual(gotOrder, tt.order) {
				t.Errorf("month order = %v, want %v", gotOrder, tt.order)
			}
			if Total(got) != len(records) {
				t.Errorf("sum of counts = %d, want %d", Total(got), len(records))
			}
		})
	}
}

func TestMonthlyCounts_UsesUTCMonth(t *testing.T) {
	east := time.FixedZone("UTC+9", 9*3600)
	records := []paper.Record{
		// 2020-02-01 03:00 in UTC+9 is still January in UTC.
		{PublishTime: time.Date(2020, 2, 1, 3, 0, 0, 0, east)},
	}
	got := MonthlyCounts(records)
	if len(got) != 1 || got[0].Label() != "2020-01" {
		t.Errorf("MonthlyCounts() = %+v, want a single 2020-01 entry", got)
	}
}

func TestJournalFrequency(t *testing.T) {
	var names []*string
	for i, n := range []int{12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1} {
		name := string(rune('A' + i))
		for range n {
			names = append(names, paper.String("Journal "+name))
		}
	}
	names = append(names, paper.String("   "), nil, paper.String(""))

	got, err := JournalFrequency(withJournals(names...))
	if err != nil {
		t.Fatalf("JournalFrequency() error = %v", err)
	}
	if len(got) != TopJournalLimit {
		t.Fatalf("got %d journals, want %d", len(got), TopJournalLimit)
	}
	if got[0].Journal != "Journal A" || got[0].Count != 12 {
		t.Errorf("first = %+v, want Journal A with 12", got[0])
	}
	for i, jc := range got {
		if paper.IsBlank(&jc.Journal) {
			t.Errorf("entry %d has blank journal name", i)
		}
		if i > 0 && got[i-1].Count < jc.Count {
			t.Errorf("counts not non-increasing at %d: %d < %d", i, got[i-1].Count, jc.Count)
		}
	}
}

func TestJournalFrequency_TiesAlphabetical(t *testing.T) {
	records := withJournals(
		paper.String("Virology"), paper.String("BMJ"), paper.String("Lancet"),
		paper.String("BMJ"), paper.String("Lancet"),
	)
	got, err := JournalFrequency(records)
	if err != nil {
		t.Fatalf("JournalFrequency() error = %v", err)
	}
	want := []JournalCount{{"BMJ", 2}, {"Lancet", 2}, {"Virology", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("JournalFrequency() = %v, want %v", got, want)
	}
}

func TestJournalFrequency_Empty(t *testing.T) {
	tests := []struct {
		name    string
		records []paper.Record
	}{
		{"no records", nil},
		{"all whitespace", withJournals(paper.String("   "), paper.String("   "), paper.String("   "))},
		{"all missing", withJournals(nil, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := JournalFrequency(tt.records)
			if !errors.Is(err, ErrEmpty) {
				t.Errorf("JournalFrequency() error = %v, want ErrEmpty", err)
			}
			_, err = JournalLongTail(tt.records)
			if !errors.Is(err, ErrEmpty) {
				t.Errorf("JournalLongTail() error = %v, want ErrEmpty", err)
			}
		})
	}
}

func TestNormalizeJournal(t *testing.T) {
	if NormalizeJournal(paper.String(" \t ")) != nil {
		t.Error("whitespace journal should normalize to nil")
	}
	if NormalizeJournal(nil) != nil {
		t.Error("missing journal should stay nil")
	}
	in := paper.String("Nature ")
	if got := NormalizeJournal(in); got == nil || *got != "Nature " {
		t.Errorf("NormalizeJournal(%q) = %v, want value unchanged", *in, got)
	}
}

func TestJournalLongTail(t *testing.T) {
	records := withJournals(
		paper.String("A"), paper.String("A"), paper.String("A"),
		paper.String("B"), paper.String("B"),
		paper.String("C"),
		paper.String("  "),
	)
	got, err := JournalLongTail(records)
	if err != nil {
		t.Fatalf("JournalLongTail() error = %v", err)
	}
	want := []RankCount{{1, 3}, {2, 2}, {3, 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("JournalLongTail() = %v, want %v", got, want)
	}
}

func TestDerivationsAreIdempotent(t *testing.T) {
	records := withJournals(paper.String("A"), paper.String("B"), paper.String("B"))
	records = append(records, recordsAt("2020-01-15", "2021-06-30")...)

	if !reflect.DeepEqual(MonthlyCounts(records), MonthlyCounts(records)) {
		t.Error("MonthlyCounts() not idempotent")
	}
	a, _ := JournalFrequency(records)
	b, _ := JournalFrequency(records)
	if !reflect.DeepEqual(a, b) {
		t.Error("JournalFrequency() not idempotent")
	}
}
