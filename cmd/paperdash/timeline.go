package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/paperdash/internal/aggregate"
	"github.com/matsen/paperdash/internal/viz"
)

func init() {
	rootCmd.AddCommand(timelineCmd)
}

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Count papers published per month",
	Long: `Count papers published per calendar month.

Every month between the earliest and latest publish date is listed,
including months with no papers.

Examples:
  paperdash timeline
  paperdash timeline --human`,
	Args: cobra.NoArgs,
	RunE: runTimeline,
}

// TimelineResponse is the JSON output of the timeline command.
type TimelineResponse struct {
	Months []TimelineMonth `json:"months"`
	Total  int             `json:"total"`
}

// TimelineMonth is one month of the timeline.
type TimelineMonth struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

func runTimeline(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	table := mustLoadTable(cmd.Context(), cfg, newLogger(cfg))

	series := aggregate.MonthlyCounts(table.Records)
	if len(series) == 0 {
		outputEmpty(viz.MsgNoTimeline)
		return nil
	}

	if humanOutput {
		max := 0
		for _, m := range series {
			if m.Count > max {
				max = m.Count
			}
		}
		for _, m := range series {
			outputHuman("%s  %8s  %s\n", m.Label(), formatCount(m.Count), bar(m.Count, max))
		}
		outputHuman("\n%s papers over %d months\n", formatCount(aggregate.Total(series)), len(series))
		return nil
	}

	resp := TimelineResponse{Months: make([]TimelineMonth, len(series)), Total: aggregate.Total(series)}
	for i, m := range series {
		resp.Months[i] = TimelineMonth{Month: m.Label(), Count: m.Count}
	}
	outputJSON(resp)
	return nil
}
