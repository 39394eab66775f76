package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/paperdash/internal/config"
)

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configStopwordsCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
	Long: `Inspect the effective configuration.

Values come from the config file, then PAPERDASH_* environment variables
(a .env file in the working directory is read too), then flags.

Usage:
  paperdash config show     # Effective configuration
  paperdash config path     # Location of the config file
  paperdash config stopwords  # Words excluded from title analysis`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := mustLoadConfig()
		if humanOutput {
			out, err := cfg.YAML()
			if err != nil {
				exitWithError(ExitError, "%v", err)
			}
			outputHuman("%s", out)
			return nil
		}
		outputJSON(cfg)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.GlobalConfigPath()
		}
		path = config.ExpandPath(path)
		if humanOutput {
			outputHuman("%s\n", path)
			return nil
		}
		outputJSON(StatusResponse{Status: "ok", Path: path})
		return nil
	},
}

// StopwordsResponse is the JSON output of config stopwords.
type StopwordsResponse struct {
	Count int      `json:"count"`
	Words []string `json:"words"`
}

var configStopwordsCmd = &cobra.Command{
	Use:   "stopwords",
	Short: "List the effective stopwords",
	Long: `List the words removed before counting title words: the built-in
English and title lists plus extra_stopwords from the config.`,
	Args: cobra.NoArgs,
	RunE: runConfigStopwords,
}

func runConfigStopwords(cmd *cobra.Command, args []string) error {
	words := stopwords(mustLoadConfig()).Sorted()
	if humanOutput {
		for _, w := range words {
			outputHuman("%s\n", w)
		}
		return nil
	}
	outputJSON(StopwordsResponse{Count: len(words), Words: words})
	return nil
}
