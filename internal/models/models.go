// package models defines the data model for resolving catalog links into matched and downloaded tracks
package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/ytgrab/internal/shared"
)

// ResourceKind is the catalog resource type taken from a link.
type ResourceKind string

const (
	KindTrack    ResourceKind = "track"
	KindAlbum    ResourceKind = "album"
	KindPlaylist ResourceKind = "playlist"
)

// Known reports whether k is one of the supported kinds.
func (k ResourceKind) Known() bool {
	switch k {
	case KindTrack, KindAlbum, KindPlaylist:
		return true
	default:
		return false
	}
}

// ResourceRef identifies a catalog resource. It is produced by [ParseLink] and never modified.
type ResourceRef struct {
	Kind ResourceKind `json:"kind"`
	ID   string       `json:"id"`
}

func (r ResourceRef) String() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}

// ParseLink extracts a [ResourceRef] from a catalog link.
//
// The kind is the second-to-last path segment and the ID is the last one with any
// query string or fragment removed, so "https://open.spotify.com/playlist/ABC?si=x"
// yields {playlist ABC}. URIs of the form "spotify:album:ID" are also accepted.
// The kind is not checked against the known kinds.
func ParseLink(link string) (ResourceRef, error) {
	link = strings.TrimSpace(link)

	if strings.HasPrefix(link, "spotify:") {
		parts := strings.Split(link, ":")
		if len(parts) == 3 && parts[1] != "" && parts[2] != "" {
			return ResourceRef{Kind: ResourceKind(parts[1]), ID: parts[2]}, nil
		}
		return ResourceRef{}, fmt.Errorf("%w: %q", shared.ErrInvalidLink, link)
	}

	parts := strings.Split(strings.TrimRight(link, "/"), "/")
	if len(parts) < 2 {
		return ResourceRef{}, fmt.Errorf("%w: %q", shared.ErrInvalidLink, link)
	}

	kind := parts[len(parts)-2]
	id := parts[len(parts)-1]
	if i := strings.IndexAny(id, "?#"); i >= 0 {
		id = id[:i]
	}

	if kind == "" || id == "" {
		return ResourceRef{}, fmt.Errorf("%w: %q", shared.ErrInvalidLink, link)
	}

	return ResourceRef{Kind: ResourceKind(kind), ID: id}, nil
}

// TrackQuery is one title to match, keyed by its position in the track list.
type TrackQuery struct {
	Index int
	Title string
}

// NewQueries builds queries for titles, assigning indices in order.
func NewQueries(titles []string) []TrackQuery {
	queries := make([]TrackQuery, len(titles))
	for i, title := range titles {
		queries[i] = TrackQuery{Index: i, Title: title}
	}
	return queries
}

// MatchResult is the outcome of searching for one [TrackQuery].
//
// An empty MediaURL means no video was found; Err carries the cause when there was one.
type MatchResult struct {
	Index    int
	Title    string
	MediaURL string
	Err      error
}

// Found reports whether a video URL was matched.
func (m MatchResult) Found() bool {
	return m.MediaURL != ""
}

// MarshalJSON encodes the match as {index, title, youtubeUrl} with a null URL when nothing was found.
func (m MatchResult) MarshalJSON() ([]byte, error) {
	var url *string
	if m.Found() {
		url = &m.MediaURL
	}
	return json.Marshal(struct {
		Index      int     `json:"index"`
		Title      string  `json:"title"`
		YouTubeURL *string `json:"youtubeUrl"`
	}{m.Index, m.Title, url})
}

// DownloadStatus is the terminal state of one download attempt.
type DownloadStatus string

const (
	StatusSkippedExisting DownloadStatus = "skipped-existing"
	StatusSuccess         DownloadStatus = "success"
	StatusNotFound        DownloadStatus = "not-found"
	StatusFailed          DownloadStatus = "failed"
)

// DownloadOutcome is the result of processing one [MatchResult] in download mode.
type DownloadOutcome struct {
	Index  int
	Title  string
	Status DownloadStatus
	Path   string
	Err    error
}

// OutcomeCounts tallies outcomes by status.
type OutcomeCounts struct {
	Success         int `json:"success"`
	SkippedExisting int `json:"skippedExisting"`
	NotFound        int `json:"notFound"`
	Failed          int `json:"failed"`
}

// CountOutcomes tallies outcomes by status.
func CountOutcomes(outcomes []DownloadOutcome) OutcomeCounts {
	var c OutcomeCounts
	for _, o := range outcomes {
		switch o.Status {
		case StatusSuccess:
			c.Success++
		case StatusSkippedExisting:
			c.SkippedExisting++
		case StatusNotFound:
			c.NotFound++
		case StatusFailed:
			c.Failed++
		}
	}
	return c
}

// CountMatched returns how many results carry a video URL.
func CountMatched(results []MatchResult) int {
	n := 0
	for _, r := range results {
		if r.Found() {
			n++
		}
	}
	return n
}
