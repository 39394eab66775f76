package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matsen/paperdash/internal/viz"
	"github.com/matsen/paperdash/internal/wordfreq"
)

const commandCSV = `cord_uid,source_x,title,doi,journal,publish_time
a1,PMC,COVID-19 vaccine trial,10.1/a,Lancet,2020-01-15
a2,PMC,Vaccine response in covid patients,10.1/b,Lancet,2020-01-20
a3,PMC,Airborne transmission,10.1/c,BMJ,2020-03-01
`

// stopwordCSV has titles made only of stopwords and no journals.
const stopwordCSV = `cord_uid,source_x,title,doi,journal,publish_time
b1,PMC,The study of,10.1/a,,2020-01-15
b2,PMC,Analysis based on,10.1/b,  ,2020-02-01
`

// setupCommand points the CLI at a data file holding content and resets
// the flag globals when the test ends.
func setupCommand(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()

	data := filepath.Join(dir, "metadata.csv")
	if err := os.WriteFile(data, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	cfgFile := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(cfgFile, []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PAPERDASH_DATA_PATH", data)
	t.Setenv("PAPERDASH_SNAPSHOT_PATH", "off")
	t.Setenv("PAPERDASH_LOG_LEVEL", "error")
	t.Setenv("PAPERDASH_MODE", "bar")
	t.Setenv("PAPERDASH_TOP_N", "20")
	t.Setenv("PAPERDASH_EXTRA_STOPWORDS", "")

	saved := struct {
		human               bool
		config, data, level string
		mode                string
		top                 int
		png                 string
		longTail, similar   bool
		reportOut           string
	}{humanOutput, configPath, dataPath, logLevel, wordsMode, wordsTop, wordsPNG, journalsLongTail, journalsSimilar, reportOutput}
	t.Cleanup(func() {
		humanOutput, configPath, dataPath, logLevel = saved.human, saved.config, saved.data, saved.level
		wordsMode, wordsTop, wordsPNG = saved.mode, saved.top, saved.png
		journalsLongTail, journalsSimilar = saved.longTail, saved.similar
		reportOutput, reportMode, reportTop = saved.reportOut, "", 0
	})

	humanOutput = false
	configPath = cfgFile
	dataPath, logLevel = "", ""
	wordsMode, wordsTop, wordsPNG = "", 0, ""
	journalsLongTail, journalsSimilar = false, false
	reportOutput, reportMode, reportTop = "", "", 0
}

// captureStdout returns what fn writes to os.Stdout.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	out := make(chan string)
	go func() {
		b, _ := io.ReadAll(r)
		out <- string(b)
	}()

	fn()
	w.Close()
	return <-out
}

func runCommand(t *testing.T, run func() error) string {
	t.Helper()
	var err error
	out := captureStdout(t, func() { err = run() })
	if err != nil {
		t.Fatalf("command error = %v", err)
	}
	return out
}

func TestRunWords_EmptyResult(t *testing.T) {
	tests := []struct {
		name string
		mode string
		want string
	}{
		{"bar", "bar", viz.MsgNoWords},
		{"cloud", "cloud", viz.MsgNoTitles},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupCommand(t, stopwordCSV)
			wordsMode = tt.mode
			wordsCmd.SetContext(context.Background())

			out := runCommand(t, func() error { return runWords(wordsCmd, nil) })

			var resp EmptyResponse
			if err := json.Unmarshal([]byte(out), &resp); err != nil {
				t.Fatalf("output is not JSON: %v\n%s", err, out)
			}
			if !resp.Empty || resp.Message != tt.want {
				t.Errorf("response = %+v, want empty with %q", resp, tt.want)
			}
		})
	}
}

func TestRunWords_Bar(t *testing.T) {
	setupCommand(t, commandCSV)
	wordsTop = 5
	wordsCmd.SetContext(context.Background())

	out := runCommand(t, func() error { return runWords(wordsCmd, nil) })

	var result wordfreq.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if result.TopN != 5 || len(result.Words) == 0 {
		t.Fatalf("result = %+v", result)
	}
	top := result.Words[0]
	if top.Count != 2 || (top.Word != "covid" && top.Word != "vaccine") {
		t.Errorf("top word = %+v, want covid or vaccine with 2", top)
	}
}

func TestRunTimeline(t *testing.T) {
	setupCommand(t, commandCSV)
	timelineCmd.SetContext(context.Background())

	out := runCommand(t, func() error { return runTimeline(timelineCmd, nil) })

	var resp TimelineResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	want := []TimelineMonth{{"2020-01", 2}, {"2020-02", 0}, {"2020-03", 1}}
	if !slices.Equal(resp.Months, want) || resp.Total != 3 {
		t.Errorf("timeline = %+v, want %+v total 3", resp, want)
	}
}

func TestRunJournals_Empty(t *testing.T) {
	setupCommand(t, stopwordCSV)
	journalsCmd.SetContext(context.Background())

	out := runCommand(t, func() error { return runJournals(journalsCmd, nil) })

	if !strings.Contains(out, `"empty": true`) || !strings.Contains(out, viz.MsgNoJournalsPlot) {
		t.Errorf("output = %s, want empty journals message", out)
	}
}

func TestRunJournals_Human(t *testing.T) {
	setupCommand(t, commandCSV)
	humanOutput = true
	journalsCmd.SetContext(context.Background())

	out := runCommand(t, func() error { return runJournals(journalsCmd, nil) })

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "Lancet") || !strings.HasPrefix(lines[1], "BMJ") {
		t.Errorf("output = %q, want Lancet then BMJ", out)
	}
}

func TestRunConfigStopwords(t *testing.T) {
	setupCommand(t, commandCSV)
	t.Setenv("PAPERDASH_EXTRA_STOPWORDS", "Covid, SARS")

	out := runCommand(t, func() error { return runConfigStopwords(configStopwordsCmd, nil) })

	var resp StopwordsResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if resp.Count != len(resp.Words) || !slices.IsSorted(resp.Words) {
		t.Errorf("words not a sorted list: %+v", resp)
	}
	for _, w := range []string{"covid", "sars", "the", "study"} {
		if !slices.Contains(resp.Words, w) {
			t.Errorf("stopwords missing %q", w)
		}
	}
}

func TestRunSnapshotRebuild(t *testing.T) {
	setupCommand(t, commandCSV)
	dbPath := filepath.Join(t.TempDir(), "snapshots.db")
	t.Setenv("PAPERDASH_SNAPSHOT_PATH", dbPath)
	snapshotRebuildCmd.SetContext(context.Background())

	out := runCommand(t, func() error { return runSnapshotRebuild(snapshotRebuildCmd, nil) })

	var result RebuildResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if result.Status != "rebuilt" || result.Rows != 3 || result.Records != 3 || result.Dropped != 0 {
		t.Errorf("result = %+v", result)
	}
	if !strings.HasPrefix(result.Key, "blake2b-256:") {
		t.Errorf("key = %q", result.Key)
	}
}

func TestRunReport_WritesFile(t *testing.T) {
	setupCommand(t, commandCSV)
	reportOutput = filepath.Join(t.TempDir(), "dashboard.html")
	reportCmd.SetContext(context.Background())

	out := runCommand(t, func() error { return runReport(reportCmd, nil) })

	var status StatusResponse
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if status.Path != reportOutput {
		t.Errorf("status = %+v, want path %s", status, reportOutput)
	}
	html, err := os.ReadFile(reportOutput)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<html", "Lancet", "vaccine"} {
		if !strings.Contains(string(html), want) {
			t.Errorf("report missing %q", want)
		}
	}
}
