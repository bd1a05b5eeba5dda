// package formatter renders match results as CSV, Markdown, plain text or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/ytgrab/internal/models"
	"github.com/desertthunder/ytgrab/internal/shared"
)

// Format is an output format for [Export].
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatText     Format = "txt"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts a format name case-insensitively, with "md" and "text" as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "txt", "text":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want json, csv, txt or markdown)", shared.ErrInvalidFlag, s)
	}
}

// Document is a resolved resource and its matches.
type Document struct {
	Link    string               `json:"link"`
	Name    string               `json:"name"`
	Matches []models.MatchResult `json:"tracks"`
}

func (d Document) matched() int {
	return models.CountMatched(d.Matches)
}

// ExportToCSV converts a Document to CSV format with columns: Index, Title, YouTube URL, Status
func ExportToCSV(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Index", "Title", "YouTube URL", "Status"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range doc.Matches {
		status := "matched"
		if !m.Found() {
			status = "not-found"
		}
		record := []string{strconv.Itoa(m.Index + 1), m.Title, m.MediaURL, status}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a Document to a Markdown list linking each matched title
func ExportToMarkdown(doc Document) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", doc.Name)
	if doc.Link != "" {
		fmt.Fprintf(&buf, "**Source**: %s\n\n", doc.Link)
	}
	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(doc.Matches))
	fmt.Fprintf(&buf, "**Matched**: %d\n\n", doc.matched())

	buf.WriteString("## Tracks\n\n")
	for _, m := range doc.Matches {
		if m.Found() {
			fmt.Fprintf(&buf, "%d. [%s](%s)\n", m.Index+1, m.Title, m.MediaURL)
		} else {
			fmt.Fprintf(&buf, "%d. %s *(not found)*\n", m.Index+1, m.Title)
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a Document to plain text format
func ExportToText(doc Document) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Name: %s\n", doc.Name)
	fmt.Fprintf(&buf, "Tracks: %d (%d matched)\n\n", len(doc.Matches), doc.matched())

	for _, m := range doc.Matches {
		url := m.MediaURL
		if !m.Found() {
			url = "not found"
		}
		fmt.Fprintf(&buf, "%d. %s -> %s\n", m.Index+1, m.Title, url)
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a Document to indented JSON; unmatched tracks have a null youtubeUrl
func ExportToJSON(doc Document) ([]byte, error) {
	if doc.Matches == nil {
		doc.Matches = []models.MatchResult{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// Export renders doc in the given format.
func Export(f Format, doc Document) ([]byte, error) {
	switch f {
	case FormatJSON:
		return ExportToJSON(doc)
	case FormatCSV:
		return ExportToCSV(doc)
	case FormatText:
		return ExportToText(doc)
	case FormatMarkdown:
		return ExportToMarkdown(doc)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, f)
	}
}

// Write renders doc to w.
func Write(w io.Writer, f Format, doc Document) error {
	data, err := Export(f, doc)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s output: %w", f, err)
	}
	return nil
}

// WriteFile renders doc into a file at path.
//
// Defaults to {sanitized name}.{ext} when path is empty and returns the path written.
func WriteFile(path string, f Format, doc Document) (string, error) {
	if path == "" {
		path = shared.SanitizeFilename(doc.Name) + "." + f.Extension()
	}

	data, err := Export(f, doc)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", f, err)
	}
	return path, nil
}

// Extension is the file extension for f.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}
