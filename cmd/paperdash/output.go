package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

// Constants for output formatting.
const (
	JournalNameMaxLen = 48 // Journal column width in tables
	BarWidth          = 40 // Width of the longest bar in text charts
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// outputEmpty reports a view with nothing to show. It is not an error.
func outputEmpty(message string) {
	if humanOutput {
		fmt.Fprintf(os.Stderr, "warning: %s\n", message)
		return
	}
	outputJSON(EmptyResponse{Empty: true, Message: message})
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// EmptyResponse is returned when a view has no data.
type EmptyResponse struct {
	Empty   bool   `json:"empty"`
	Message string `json:"message"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-3]) + "..."
}

// padRight pads s with spaces to width runes.
func padRight(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// bar draws a text bar for count scaled against max.
func bar(count, max int) string {
	if max <= 0 || count <= 0 {
		return ""
	}
	n := count * BarWidth / max
	if n == 0 {
		n = 1
	}
	return strings.Repeat("#", n)
}

// formatCount formats n with thousands separators.
func formatCount(n int) string {
	return humanize.Comma(int64(n))
}
