// YouTube implementations of [Searcher] and [Downloader] backed by yt-dlp
package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/desertthunder/ytgrab/internal/shared"
	"github.com/lrstanley/go-ytdlp"
)

const youtubeWatchURL = "https://www.youtube.com/watch?v="

// YTDLPSearcher implements [Searcher] by running a "ytsearch1:" query through go-ytdlp.
type YTDLPSearcher struct {
	// BinaryPath is the path to the yt-dlp executable. Empty uses yt-dlp from PATH.
	BinaryPath string
	// CookiesPath is an optional Netscape cookies file passed with --cookies.
	CookiesPath string
}

// NewYTDLPSearcher creates a searcher for the given binary and optional cookies file.
func NewYTDLPSearcher(binary, cookiesPath string) *YTDLPSearcher {
	return &YTDLPSearcher{BinaryPath: binary, CookiesPath: cookiesPath}
}

// FindVideo returns the watch URL of the first search result for query.
func (s *YTDLPSearcher) FindVideo(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("%w: empty query", shared.ErrInvalidInput)
	}

	search := ytdlp.New().
		FlatPlaylist().
		NoWarnings().
		Print("id")

	if s.CookiesPath != "" {
		search.Cookies(s.CookiesPath)
	}
	if s.BinaryPath != "" {
		search.SetExecutable(s.BinaryPath)
	}

	result, err := search.Run(ctx, "ytsearch1:"+query)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: search %q: %v", shared.ErrTimeout, query, ctx.Err())
		}
		return "", fmt.Errorf("%w: yt-dlp search failed: %v", shared.ErrAPIRequest, err)
	}

	for line := range strings.Lines(result.Stdout) {
		id := strings.TrimSpace(line)
		if id == "" || id == "NA" {
			continue
		}
		return youtubeWatchURL + id, nil
	}

	return "", nil
}

// YTDLPDownloader implements [Downloader] with go-ytdlp, extracting audio with ffmpeg.
type YTDLPDownloader struct {
	binary      string
	cookiesPath string
	format      string
	quality     string
}

// DownloaderOpts contains configuration for a [YTDLPDownloader].
type DownloaderOpts struct {
	BinaryPath   string // empty uses yt-dlp from PATH
	CookiesPath  string
	AudioFormat  string // defaults to mp3
	AudioQuality string // e.g. "320K"; empty keeps the yt-dlp default
}

// NewYTDLPDownloader creates a downloader with the given options.
func NewYTDLPDownloader(opts DownloaderOpts) *YTDLPDownloader {
	if opts.AudioFormat == "" {
		opts.AudioFormat = "mp3"
	}
	return &YTDLPDownloader{
		binary:      opts.BinaryPath,
		cookiesPath: opts.CookiesPath,
		format:      opts.AudioFormat,
		quality:     opts.AudioQuality,
	}
}

func (d *YTDLPDownloader) Extension() string {
	return d.format
}

// DownloadAudio downloads the best audio stream of url and converts it to dir/basename.<format>.
func (d *YTDLPDownloader) DownloadAudio(ctx context.Context, url, dir, basename string) error {
	// yt-dlp expands %(field)s in output templates
	template := filepath.Join(dir, strings.ReplaceAll(basename, "%", "%%")+".%(ext)s")

	dl := ytdlp.New().
		Format("bestaudio/best").
		ExtractAudio().
		AudioFormat(d.format).
		NoPlaylist().
		NoWarnings().
		Quiet().
		Output(template)

	if d.quality != "" {
		dl.AudioQuality(d.quality)
	}
	if d.cookiesPath != "" {
		dl.Cookies(d.cookiesPath)
	}
	if d.binary != "" {
		dl.SetExecutable(d.binary)
	}

	if _, err := dl.Run(ctx, url); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: download %s: %v", shared.ErrTimeout, url, ctx.Err())
		}
		return fmt.Errorf("%w: %v", shared.ErrDownloadFailed, err)
	}
	return nil
}
