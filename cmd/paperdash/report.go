package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/paperdash/internal/viz"
	"github.com/matsen/paperdash/internal/wordfreq"
)

var (
	reportOutput string
	reportMode   string
	reportTop    int
	reportSeed   uint64
)

func init() {
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Output file path (default: stdout)")
	reportCmd.Flags().StringVar(&reportMode, "mode", "", "Word panel: bar or cloud (default from config)")
	reportCmd.Flags().IntVarP(&reportTop, "top", "n", 0, "Number of words for bar mode (default from config)")
	reportCmd.Flags().Uint64Var(&reportSeed, "seed", 0, "Random seed for the word cloud layout")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the dashboard as a static HTML file",
	Long: `Write every dashboard panel to a single HTML page.

The page loads Chart.js from a CDN; a word cloud is embedded as an image.

Examples:
  # Generate HTML to stdout
  paperdash report > dashboard.html

  # Generate to file with a word cloud
  paperdash report --mode cloud -o dashboard.html`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	if reportMode == "" {
		reportMode = cfg.Mode
	}
	if reportTop == 0 {
		reportTop = cfg.TopN
	}
	table := mustLoadTable(cmd.Context(), cfg, newLogger(cfg))

	dashboard, err := viz.BuildDashboard(table, wordfreq.Request{
		Mode:      mustParseMode(reportMode),
		TopN:      reportTop,
		Stopwords: stopwords(cfg),
		Cloud:     cloudOptions(reportSeed),
	})
	if err != nil {
		return fmt.Errorf("building dashboard: %w", err)
	}

	html, err := viz.GenerateHTML(dashboard, viz.DefaultOptions())
	if err != nil {
		return fmt.Errorf("generating HTML: %w", err)
	}

	// Output
	if reportOutput == "" {
		fmt.Print(html)
	} else {
		if err := os.WriteFile(reportOutput, []byte(html), 0644); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
		if !humanOutput {
			outputJSON(StatusResponse{Status: "written", Path: reportOutput})
		} else {
			fmt.Printf("Dashboard written to %s\n", reportOutput)
		}
	}

	return nil
}
