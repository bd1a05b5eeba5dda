package formatter

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/ytgrab/internal/models"
	"github.com/desertthunder/ytgrab/internal/shared"
	th "github.com/desertthunder/ytgrab/internal/testing"
)

func sampleDocument() Document {
	return Document{
		Link: "https://open.spotify.com/playlist/abc123",
		Name: "Road Trip",
		Matches: []models.MatchResult{
			{Index: 0, Title: "Artist A - Song 1", MediaURL: "https://www.youtube.com/watch?v=one"},
			{Index: 1, Title: "Artist B - Song, 2", Err: shared.ErrNoMatch},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"json": FormatJSON, "": FormatJSON, "CSV": FormatCSV,
		"txt": FormatText, "text": FormatText, "md": FormatMarkdown, "markdown": FormatMarkdown,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}

	if _, err := ParseFormat("yaml"); !errors.Is(err, shared.ErrInvalidFlag) {
		t.Errorf("expected ErrInvalidFlag, got %v", err)
	}
}

func TestExporters(t *testing.T) {
	doc := sampleDocument()

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(doc)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "Index,Title,YouTube URL,Status\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1,Artist A - Song 1,https://www.youtube.com/watch?v=one,matched\n") {
			t.Errorf("CSV missing matched row, got: %s", output)
		}
		if !strings.Contains(output, `2,"Artist B - Song, 2",,not-found`) {
			t.Errorf("CSV missing quoted unmatched row, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(doc)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Road Trip\n",
			"**Source**: https://open.spotify.com/playlist/abc123",
			"**Tracks**: 2\n",
			"**Matched**: 1\n",
			"1. [Artist A - Song 1](https://www.youtube.com/watch?v=one)\n",
			"2. Artist B - Song, 2 *(not found)*\n",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(doc)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Tracks: 2 (1 matched)") {
			t.Errorf("Text missing summary, got: %s", output)
		}
		if !strings.Contains(output, "2. Artist B - Song, 2 -> not found\n") {
			t.Errorf("Text missing unmatched line, got: %s", output)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(doc)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded struct {
			Name   string `json:"name"`
			Tracks []struct {
				Title      string  `json:"title"`
				YouTubeURL *string `json:"youtubeUrl"`
			} `json:"tracks"`
		}
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Name != "Road Trip" || len(decoded.Tracks) != 2 {
			t.Fatalf("unexpected document: %+v", decoded)
		}
		if decoded.Tracks[1].YouTubeURL != nil {
			t.Errorf("expected null URL for unmatched track, got %q", *decoded.Tracks[1].YouTubeURL)
		}
	})

	t.Run("ExportToJSON with no matches", func(t *testing.T) {
		data, err := ExportToJSON(Document{Name: "Empty"})
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), `"tracks": []`) {
			t.Errorf("expected empty tracks array, got %s", data)
		}
	})
}

func TestWrite(t *testing.T) {
	t.Run("writer error", func(t *testing.T) {
		if err := Write(&th.FWriter{}, FormatText, sampleDocument()); err == nil {
			t.Error("expected error from failing writer")
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		var sb strings.Builder
		if err := Write(&sb, Format("xml"), sampleDocument()); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestWriteFile(t *testing.T) {
	t.Run("WithCustomPath", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")

		got, err := WriteFile(path, FormatCSV, sampleDocument())
		if err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		if got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
		th.AssertFileExists(t, path)
		if !strings.Contains(th.MustReadFile(t, path), "matched") {
			t.Error("CSV file missing content")
		}
	})

	t.Run("WithDefaultPath", func(t *testing.T) {
		t.Chdir(t.TempDir())
		doc := sampleDocument()
		doc.Name = "Road/Trip"

		got, err := WriteFile("", FormatMarkdown, doc)
		if err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		if got != "RoadTrip.md" {
			t.Errorf("expected RoadTrip.md, got %s", got)
		}
		if _, err := os.Stat(got); err != nil {
			t.Errorf("expected file to exist: %v", err)
		}
	})
}
