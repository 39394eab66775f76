// Package viz assembles the dashboard panels and renders them as a
// self-contained HTML page.
package viz

import (
	"time"

	"github.com/matsen/paperdash/internal/aggregate"
	"github.com/matsen/paperdash/internal/paper"
	"github.com/matsen/paperdash/internal/wordcloud"
	"github.com/matsen/paperdash/internal/wordfreq"
)

// Messages shown in place of a panel that has nothing to draw.
const (
	MsgNoTimeline     = "No papers with a valid publish date."
	MsgNoJournalsPlot = "No journal data available to plot."
	MsgNoJournals     = "No journal data available."
	MsgNoWords        = "No words extracted. Check if 'title' column has values."
	MsgNoTitles       = "No titles available to generate word cloud."
)

// PreviewRows is how many records the dataset preview shows.
const PreviewRows = 5

// Dashboard holds every panel of one page render.
type Dashboard struct {
	Summary  Summary       `json:"summary"`
	Preview  []PreviewRow  `json:"preview"`
	Timeline TimelinePanel `json:"timeline"`
	Journals JournalsPanel `json:"journals"`
	LongTail LongTailPanel `json:"long_tail"`
	Words    WordsPanel    `json:"words"`
}

// Summary describes the loaded table.
type Summary struct {
	Path     string    `json:"path"`
	Rows     int       `json:"rows"`
	Records  int       `json:"records"`
	Dropped  int       `json:"dropped"`
	LoadedAt time.Time `json:"loaded_at"`
}

// PreviewRow is one record as shown in the dataset preview.
type PreviewRow struct {
	CordUID     string `json:"cord_uid"`
	Title       string `json:"title"`
	Journal     string `json:"journal"`
	PublishTime string `json:"publish_time"`
}

// TimelinePanel is the papers-per-month line chart.
type TimelinePanel struct {
	Months  []aggregate.MonthCount `json:"months"`
	Total   int                    `json:"total"`
	Warning string                 `json:"warning,omitempty"`
}

// JournalsPanel is the top journals bar chart.
type JournalsPanel struct {
	Journals []aggregate.JournalCount `json:"journals"`
	Warning  string                   `json:"warning,omitempty"`
}

// LongTailPanel is the log-log rank/count scatter of all journals.
type LongTailPanel struct {
	Points  []aggregate.RankCount `json:"points"`
	Warning string                `json:"warning,omitempty"`
}

// WordsPanel shows title words in the selected mode.
type WordsPanel struct {
	Mode  string               `json:"mode"`
	TopN  int                  `json:"top_n"`
	Words []wordfreq.WordCount `json:"words,omitempty"`
	Cloud *wordcloud.Layout    `json:"-"`
	// Warning is set when the panel is empty.
	Warning string `json:"warning,omitempty"`
}

// IsEmpty returns true if no records survived loading.
func (d *Dashboard) IsEmpty() bool {
	return d.Summary.Records == 0
}

func previewRow(r paper.Record) PreviewRow {
	return PreviewRow{
		CordUID:     r.CordUID,
		Title:       r.TitleText(),
		Journal:     r.JournalText(),
		PublishTime: r.PublishTime.Format("2006-01-02"),
	}
}
