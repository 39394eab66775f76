package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/matsen/paperdash/internal/aggregate"
	"github.com/matsen/paperdash/internal/viz"
)

var (
	journalsLongTail  bool
	journalsSimilar   bool
	journalsThreshold float32
)

const msgNoSimilar = "No similar journal names found."

func init() {
	journalsCmd.Flags().BoolVar(&journalsLongTail, "longtail", false, "Show papers per journal for every journal, by rank")
	journalsCmd.Flags().BoolVar(&journalsSimilar, "similar", false, "List journal names that look like spelling variants")
	journalsCmd.Flags().Float32Var(&journalsThreshold, "threshold", aggregate.DefaultSimilarity, "Similarity threshold for --similar, in (0, 1]")
	journalsCmd.MarkFlagsMutuallyExclusive("longtail", "similar")
	rootCmd.AddCommand(journalsCmd)
}

var journalsCmd = &cobra.Command{
	Use:   "journals",
	Short: "Rank journals by paper count",
	Long: `Rank journals by number of papers.

By default the ten most frequent journals are shown. Papers without a
journal are not counted.

Examples:
  paperdash journals --human
  paperdash journals --longtail
  paperdash journals --similar --threshold 0.95`,
	Args: cobra.NoArgs,
	RunE: runJournals,
}

// LongTailResponse is the JSON output of journals --longtail.
type LongTailResponse struct {
	Journals int                   `json:"journals"`
	Points   []aggregate.RankCount `json:"points"`
}

func runJournals(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	table := mustLoadTable(cmd.Context(), cfg, newLogger(cfg))

	switch {
	case journalsLongTail:
		points, err := aggregate.JournalLongTail(table.Records)
		if errors.Is(err, aggregate.ErrEmpty) {
			outputEmpty(viz.MsgNoJournals)
			return nil
		}
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			for _, p := range points {
				outputHuman("%6d  %s\n", p.Rank, formatCount(p.Count))
			}
			return nil
		}
		outputJSON(LongTailResponse{Journals: len(points), Points: points})

	case journalsSimilar:
		all := aggregate.AllJournals(table.Records)
		if len(all) == 0 {
			outputEmpty(viz.MsgNoJournals)
			return nil
		}
		pairs, err := aggregate.SimilarJournals(all, journalsThreshold)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if len(pairs) == 0 {
			outputEmpty(msgNoSimilar)
			return nil
		}
		if humanOutput {
			for _, p := range pairs {
				outputHuman("%.3f  %s (%s)  ~  %s (%s)\n", p.Similarity,
					truncateString(p.A, JournalNameMaxLen), formatCount(p.CountA),
					truncateString(p.B, JournalNameMaxLen), formatCount(p.CountB))
			}
			return nil
		}
		outputJSON(pairs)

	default:
		journals, err := aggregate.JournalFrequency(table.Records)
		if errors.Is(err, aggregate.ErrEmpty) {
			outputEmpty(viz.MsgNoJournalsPlot)
			return nil
		}
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			max := journals[0].Count
			for _, j := range journals {
				outputHuman("%s  %8s  %s\n", padRight(truncateString(j.Journal, JournalNameMaxLen), JournalNameMaxLen),
					formatCount(j.Count), bar(j.Count, max))
			}
			return nil
		}
		outputJSON(journals)
	}
	return nil
}
