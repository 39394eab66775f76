package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/paperdash/internal/viz"
	"github.com/matsen/paperdash/internal/wordfreq"
)

var (
	wordsMode string
	wordsTop  int
	wordsPNG  string
	wordsSeed uint64
)

func init() {
	wordsCmd.Flags().StringVar(&wordsMode, "mode", "", "Presentation: bar or cloud (default from config)")
	wordsCmd.Flags().IntVarP(&wordsTop, "top", "n", 0, "Number of words for bar mode, 5 to 50 (default from config)")
	wordsCmd.Flags().StringVar(&wordsPNG, "png", "", "Write the word cloud image to this file (cloud mode)")
	wordsCmd.Flags().Uint64Var(&wordsSeed, "seed", 0, "Random seed for the word cloud layout")
	rootCmd.AddCommand(wordsCmd)
}

var wordsCmd = &cobra.Command{
	Use:   "words",
	Short: "Find the most frequent title words",
	Long: `Find the most frequent words in paper titles.

Titles are lowercased and split into words of two or more letters;
stopwords are removed. Bar mode ranks the top N words. Cloud mode lays the
words out as a density map, optionally written as a PNG.

Examples:
  paperdash words --human -n 10
  paperdash words --mode cloud --png cloud.png`,
	Args: cobra.NoArgs,
	RunE: runWords,
}

func runWords(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	if wordsMode == "" {
		wordsMode = cfg.Mode
	}
	mode := mustParseMode(wordsMode)
	if wordsTop == 0 {
		wordsTop = cfg.TopN
	}
	if wordsTop < wordfreq.MinTopN || wordsTop > wordfreq.MaxTopN {
		exitWithError(ExitError, "--top must be between %d and %d, got %d", wordfreq.MinTopN, wordfreq.MaxTopN, wordsTop)
	}
	if wordsPNG != "" && mode != wordfreq.ModeCloud {
		exitWithError(ExitError, "--png requires --mode cloud")
	}

	table := mustLoadTable(cmd.Context(), cfg, newLogger(cfg))

	result, err := wordfreq.Analyze(table.Records, wordfreq.Request{
		Mode:      mode,
		TopN:      wordsTop,
		Stopwords: stopwords(cfg),
		Cloud:     cloudOptions(wordsSeed),
	})
	if errors.Is(err, wordfreq.ErrEmpty) {
		if mode == wordfreq.ModeCloud {
			outputEmpty(viz.MsgNoTitles)
		} else {
			outputEmpty(viz.MsgNoWords)
		}
		return nil
	}
	if err != nil {
		exitWithError(ExitError, "analyzing titles: %v", err)
	}

	if mode == wordfreq.ModeCloud {
		if wordsPNG != "" {
			if err := writePNG(wordsPNG, result); err != nil {
				exitWithError(ExitError, "%v", err)
			}
			if !humanOutput {
				outputJSON(StatusResponse{Status: "written", Path: wordsPNG})
			} else {
				outputHuman("Word cloud written to %s (%s)\n", wordsPNG, result.Cloud.Summary())
			}
			return nil
		}
		if humanOutput {
			outputHuman("%s\n", result.Cloud.Summary())
			for _, w := range result.Cloud.Words {
				outputHuman("%-24s %6s  %3dpx\n", w.Text, formatCount(w.Count), w.FontSize)
			}
			return nil
		}
		outputJSON(result.Cloud)
		return nil
	}

	if humanOutput {
		max := result.Words[0].Count
		for i, w := range result.Words {
			outputHuman("%2d. %-20s %8s  %s\n", i+1, w.Word, formatCount(w.Count), bar(w.Count, max))
		}
		return nil
	}
	outputJSON(result)
	return nil
}

func writePNG(path string, result wordfreq.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := result.Cloud.RenderPNG(f); err != nil {
		f.Close()
		return fmt.Errorf("rendering word cloud: %w", err)
	}
	return f.Close()
}
