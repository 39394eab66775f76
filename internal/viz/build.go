package viz

import (
	"errors"
	"fmt"

	"github.com/matsen/paperdash/internal/aggregate"
	"github.com/matsen/paperdash/internal/loader"
	"github.com/matsen/paperdash/internal/paper"
	"github.com/matsen/paperdash/internal/wordfreq"
)

// BuildDashboard derives every panel from table. Empty panels carry a
// warning instead of failing the page; only unexpected errors are returned.
func BuildDashboard(table *loader.Table, req wordfreq.Request) (*Dashboard, error) {
	if table == nil {
		return nil, fmt.Errorf("table cannot be nil")
	}
	records := table.Records

	d := &Dashboard{
		Summary: Summary{
			Path:     table.Source.Path,
			Rows:     table.Rows,
			Records:  table.Len(),
			Dropped:  table.Dropped,
			LoadedAt: table.LoadedAt,
		},
	}

	for i := 0; i < len(records) && i < PreviewRows; i++ {
		d.Preview = append(d.Preview, previewRow(records[i]))
	}

	d.Timeline.Months = aggregate.MonthlyCounts(records)
	d.Timeline.Total = aggregate.Total(d.Timeline.Months)
	if len(d.Timeline.Months) == 0 {
		d.Timeline.Warning = MsgNoTimeline
	}

	journals, err := aggregate.JournalFrequency(records)
	switch {
	case errors.Is(err, aggregate.ErrEmpty):
		d.Journals.Warning = MsgNoJournalsPlot
	case err != nil:
		return nil, fmt.Errorf("counting journals: %w", err)
	default:
		d.Journals.Journals = journals
	}

	tail, err := aggregate.JournalLongTail(records)
	switch {
	case errors.Is(err, aggregate.ErrEmpty):
		d.LongTail.Warning = MsgNoJournals
	case err != nil:
		return nil, fmt.Errorf("ranking journals: %w", err)
	default:
		d.LongTail.Points = tail
	}

	words, err := buildWords(records, req)
	if err != nil {
		return nil, err
	}
	d.Words = words

	return d, nil
}

func buildWords(records []paper.Record, req wordfreq.Request) (WordsPanel, error) {
	res, err := wordfreq.Analyze(records, req)
	panel := WordsPanel{Mode: res.Mode.String(), TopN: wordfreq.ClampTopN(req.TopN)}

	if errors.Is(err, wordfreq.ErrEmpty) {
		panel.Warning = MsgNoWords
		if res.Mode == wordfreq.ModeCloud {
			panel.Warning = MsgNoTitles
		}
		return panel, nil
	}
	if err != nil {
		return panel, fmt.Errorf("analyzing titles: %w", err)
	}

	panel.Words = res.Words
	panel.Cloud = res.Cloud
	return panel, nil
}
