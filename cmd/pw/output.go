package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/pubwatch/internal/arxiv"
	"github.com/matsen/pubwatch/internal/storage"
)

// Constants for output formatting.
const (
	DefaultListLimit = 50 // Default limit for edge listings

	ListTitleMaxLen   = 60 // Used in edge and paper listings
	DetailTitleMaxLen = 70 // Used in lookup results

	TextWrapWidth = 68
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

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

// exitCodeFor maps pipeline errors to exit codes.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case arxiv.IsParseError(err):
		return ExitParseError
	case arxiv.IsTransportError(err):
		return ExitAPIError
	case errors.Is(err, storage.ErrMissingAuthors):
		return ExitDataError
	default:
		return ExitError
	}
}

// describeError renders err with a remedy for errors the user can act on.
func describeError(err error) string {
	if arxiv.IsRateLimited(err) {
		return err.Error() + "\n\narXiv is throttling requests; wait a few minutes or raise arxiv.request_interval_ms."
	}
	return err.Error()
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// wrapText wraps text to the specified width with indentation on subsequent lines.
func wrapText(text string, width int, indent string) string {
	if len(text) <= width {
		return text
	}

	var lines []string
	words := strings.Fields(text)
	var currentLine strings.Builder

	for _, word := range words {
		if currentLine.Len() == 0 {
			currentLine.WriteString(word)
		} else if currentLine.Len()+1+len(word) <= width {
			currentLine.WriteString(" ")
			currentLine.WriteString(word)
		} else {
			lines = append(lines, currentLine.String())
			currentLine.Reset()
			currentLine.WriteString(word)
		}
	}
	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}

	return strings.Join(lines, "\n"+indent)
}

// formatYear renders an unknown year as "-".
func formatYear(year int) string {
	if year == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", year)
}
