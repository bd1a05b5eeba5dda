// package services defines the external collaborators of the pipeline and implements them
//
// Spotify (catalog), yt-dlp (search and download)
package services

import (
	"context"

	"github.com/desertthunder/ytgrab/internal/models"
)

// Catalog lists the titles of a catalog resource.
type Catalog interface {
	// TrackList returns "artist - title" strings in catalog order.
	// Any remote failure returns an error and no titles.
	TrackList(ctx context.Context, ref models.ResourceRef) ([]string, error)

	// DisplayName returns a human readable name for the resource, used to name its folder.
	DisplayName(ctx context.Context, ref models.ResourceRef) (string, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// Searcher finds a video for a free-text query.
type Searcher interface {
	// FindVideo returns the URL of the best match. An empty URL with a nil error means nothing matched.
	FindVideo(ctx context.Context, query string) (string, error)
}

// Downloader fetches the audio of a video into a directory.
type Downloader interface {
	// DownloadAudio writes dir/basename.<ext> for the video at url.
	DownloadAudio(ctx context.Context, url, dir, basename string) error

	// Extension is the file extension of the produced audio (e.g., "mp3").
	Extension() string
}
