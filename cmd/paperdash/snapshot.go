package main

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matsen/paperdash/internal/config"
	"github.com/matsen/paperdash/internal/loader"
	"github.com/matsen/paperdash/internal/snapshot"
)

func init() {
	snapshotCmd.AddCommand(snapshotRebuildCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	rootCmd.AddCommand(snapshotCmd)
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage stored table snapshots",
	Long: `Manage the SQLite store of parsed tables.

A snapshot is keyed by the content hash of the metadata file, so an
unchanged file is never parsed twice. The CSV remains the source of truth.`,
}

var snapshotRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Parse the metadata file and replace all snapshots",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotRebuild,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotList,
}

// RebuildResult is the response for the snapshot rebuild command.
type RebuildResult struct {
	Status  string `json:"status"`
	Key     string `json:"key"`
	Rows    int    `json:"rows"`
	Records int    `json:"records"`
	Dropped int    `json:"dropped"`
	Pruned  int    `json:"pruned"`
}

func mustOpenSnapshotStore(cfg *config.Config) *snapshot.DB {
	if !cfg.SnapshotsEnabled() {
		exitWithError(ExitConfigError, "snapshots are disabled (snapshot_path: %s)", cfg.SnapshotPath)
	}
	db, err := snapshot.Open(cfg.ResolvedSnapshotPath())
	if err != nil {
		exitWithError(ExitError, "opening snapshot store: %v", err)
	}
	return db
}

func runSnapshotRebuild(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	db := mustOpenSnapshotStore(cfg)
	defer db.Close()

	table, err := loader.Load(cmd.Context(), cfg.DataPath)
	if err != nil {
		exitWithError(dataExitCode(err), "loading %s: %v", cfg.DataPath, err)
	}

	key := table.Source.Key()
	meta := snapshot.Meta{
		Key:     key,
		Path:    table.Source.Path,
		Rows:    table.Rows,
		Dropped: table.Dropped,
	}
	if err := db.Save(meta, table.Records); err != nil {
		exitWithError(ExitError, "saving snapshot: %v", err)
	}
	pruned, err := db.Prune(key)
	if err != nil {
		exitWithError(ExitError, "pruning snapshots: %v", err)
	}

	result := RebuildResult{
		Status:  "rebuilt",
		Key:     key,
		Rows:    table.Rows,
		Records: table.Len(),
		Dropped: table.Dropped,
		Pruned:  pruned,
	}
	if humanOutput {
		outputHuman("Rebuilt snapshot %s\n", truncateString(key, 19))
		outputHuman("  %s rows, %s records, %s dropped\n",
			formatCount(result.Rows), formatCount(result.Records), formatCount(result.Dropped))
		if pruned > 0 {
			outputHuman("  removed %d stale snapshot(s)\n", pruned)
		}
		return nil
	}
	outputJSON(result)
	return nil
}

func runSnapshotList(cmd *cobra.Command, args []string) error {
	db := mustOpenSnapshotStore(mustLoadConfig())
	defer db.Close()

	metas, err := db.List()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if !humanOutput {
		if metas == nil {
			metas = []snapshot.Meta{}
		}
		outputJSON(metas)
		return nil
	}
	if len(metas) == 0 {
		outputHuman("No snapshots stored\n")
		return nil
	}
	for _, m := range metas {
		outputHuman("%s  %s  %s records  saved %s\n",
			truncateString(m.Key, 19), m.Path, formatCount(m.Records), savedAgo(m.SavedAt))
	}
	return nil
}

func savedAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}
