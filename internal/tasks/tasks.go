package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytgrab/internal/models"
	"github.com/desertthunder/ytgrab/internal/services"
	"github.com/desertthunder/ytgrab/internal/shared"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Timings records how long each stage of a request took.
type Timings struct {
	Parse    time.Duration `json:"parse"`
	Name     time.Duration `json:"name"`
	List     time.Duration `json:"list"`
	Match    time.Duration `json:"match"`
	Download time.Duration `json:"download"`
}

// Total is the sum of all stages.
func (t Timings) Total() time.Duration {
	return t.Parse + t.Name + t.List + t.Match + t.Download
}

// Resolution is the result of listing and matching one resource.
type Resolution struct {
	Ref          models.ResourceRef
	Name         string
	NameFallback bool // Name is a default because the catalog lookup failed
	Matches      []models.MatchResult
	Timings      Timings
}

// Report is the result of fully processing one link in download mode.
type Report struct {
	Link      string
	Ref       models.ResourceRef
	Name      string
	Directory string
	Matches   []models.MatchResult
	Outcomes  []models.DownloadOutcome
	Counts    models.OutcomeCounts
	Timings   Timings
}

// PipelineOpts contains the collaborators and limits of a [Pipeline].
type PipelineOpts struct {
	Catalog    services.Catalog
	Searcher   services.Searcher
	Downloader services.Downloader

	MatchWorkers    int           // default 8
	DownloadWorkers int           // default 32
	SearchTimeout   time.Duration // per search, default 30s
	DownloadTimeout time.Duration // per download, default 10m
	SearchRate      float64       // searches per second across all workers, 0 disables pacing

	BaseDir string // root of all download directories, default "downloads"
	Logger  *log.Logger
}

// Pipeline sequences link resolution, listing, matching and downloading.
//
// A Pipeline holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	catalog    services.Catalog
	searcher   services.Searcher
	downloader services.Downloader

	matchWorkers    int
	downloadWorkers int
	searchTimeout   time.Duration
	downloadTimeout time.Duration
	limiter         *rate.Limiter

	baseDir string
	logger  *log.Logger
}

// NewPipeline creates a [Pipeline], filling unset limits with defaults.
func NewPipeline(opts PipelineOpts) *Pipeline {
	if opts.MatchWorkers <= 0 {
		opts.MatchWorkers = 8
	}
	if opts.DownloadWorkers <= 0 {
		opts.DownloadWorkers = 32
	}
	if opts.SearchTimeout <= 0 {
		opts.SearchTimeout = 30 * time.Second
	}
	if opts.DownloadTimeout <= 0 {
		opts.DownloadTimeout = 10 * time.Minute
	}
	if opts.BaseDir == "" {
		opts.BaseDir = "downloads"
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	var limiter *rate.Limiter
	if opts.SearchRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.SearchRate), 1)
	}

	return &Pipeline{
		catalog:         opts.Catalog,
		searcher:        opts.Searcher,
		downloader:      opts.Downloader,
		matchWorkers:    opts.MatchWorkers,
		downloadWorkers: opts.DownloadWorkers,
		searchTimeout:   opts.SearchTimeout,
		downloadTimeout: opts.DownloadTimeout,
		limiter:         limiter,
		baseDir:         opts.BaseDir,
		logger:          opts.Logger,
	}
}

// BaseDir returns the root download directory.
func (p *Pipeline) BaseDir() string {
	return p.baseDir
}

// FallbackName is the folder name used when the catalog cannot name a resource.
func FallbackName(kind models.ResourceKind) string {
	switch kind {
	case models.KindPlaylist:
		return "playlist_downloads"
	case models.KindAlbum:
		return "album_downloads"
	default:
		return "downloads"
	}
}

// Destination resolves the directory that downloads for a resource are written to.
//
// An override folder wins and is kept inside base. A single track with no override
// goes straight into base. Anything else gets a subfolder named after the sanitized
// display name, or [FallbackName] when the sanitized name is empty, "." or "..".
func Destination(base, folder string, ref models.ResourceRef, displayName string) string {
	if folder != "" {
		return filepath.Join(base, filepath.Clean(string(filepath.Separator)+folder))
	}
	if ref.Kind == models.KindTrack {
		return base
	}
	name := strings.TrimSpace(shared.SanitizeFilename(displayName))
	switch name {
	case "", ".", "..":
		name = FallbackName(ref.Kind)
	}
	return filepath.Join(base, name)
}

// Resolve fetches the display name and track list of ref, then matches every track.
//
// The name and the list are fetched concurrently. A failed name lookup falls back to
// [FallbackName]; a failed listing aborts with no partial result. An empty listing
// resolves to an empty Matches slice.
func (p *Pipeline) Resolve(ctx context.Context, ref models.ResourceRef, prog chan<- ProgressUpdate) (*Resolution, error) {
	if p.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}
	logger := shared.WithLogger(p.logger, "resource", ref.String())

	res := &Resolution{Ref: ref}
	var titles []string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		defer func() { res.Timings.Name = time.Since(start) }()

		name, err := p.catalog.DisplayName(gctx, ref)
		if err != nil || name == "" {
			logger.Warn("could not fetch display name", "err", err)
			res.Name = FallbackName(ref.Kind)
			res.NameFallback = true
			return nil
		}
		res.Name = name
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		defer func() { res.Timings.List = time.Since(start) }()

		list, err := p.catalog.TrackList(gctx, ref)
		if err != nil {
			return fmt.Errorf("list %s: %w", ref, err)
		}
		titles = list
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Error("listing failed", "err", err)
		return nil, err
	}

	sendPhase(ctx, prog, fetchedNameUpdate(res.Name, res.NameFallback))
	logger.Debug("stage completed", "stage", "name", "elapsed", res.Timings.Name)
	logger.Debug("stage completed", "stage", "list", "elapsed", res.Timings.List, "tracks", len(titles))

	sendPhase(ctx, prog, listedTracksUpdate(len(titles)))
	if len(titles) == 0 {
		res.Matches = []models.MatchResult{}
		return res, nil
	}

	start := time.Now()
	res.Matches = p.MatchAll(ctx, models.NewQueries(titles), prog)
	res.Timings.Match = time.Since(start)

	logger.Debug("stage completed", "stage", "match", "elapsed", res.Timings.Match,
		"matched", models.CountMatched(res.Matches), "total", len(res.Matches))

	return res, nil
}

// Process runs the whole pipeline for one link: parse, resolve, match and download
// into the directory chosen by [Destination].
func (p *Pipeline) Process(ctx context.Context, link, folder string, prog chan<- ProgressUpdate) (*Report, error) {
	logger := shared.WithLogger(p.logger, "link", link)

	start := time.Now()
	ref, err := models.ParseLink(link)
	parsed := time.Since(start)
	if err != nil {
		logger.Error("invalid link", "err", err)
		return nil, err
	}
	sendPhase(ctx, prog, resolvedLinkUpdate(ref))

	res, err := p.Resolve(ctx, ref, prog)
	if err != nil {
		return nil, err
	}
	if len(res.Matches) == 0 {
		logger.Error("nothing to download", "name", res.Name)
		return nil, fmt.Errorf("%w: %s", shared.ErrNoTracks, ref)
	}

	dir := Destination(p.baseDir, folder, ref, res.Name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	start = time.Now()
	outcomes := p.DownloadAll(ctx, res.Matches, dir, prog)

	report := &Report{
		Link:      link,
		Ref:       ref,
		Name:      res.Name,
		Directory: dir,
		Matches:   res.Matches,
		Outcomes:  outcomes,
		Counts:    models.CountOutcomes(outcomes),
		Timings:   res.Timings,
	}
	report.Timings.Parse = parsed
	report.Timings.Download = time.Since(start)

	logger.Info("link processed",
		"name", report.Name,
		"dir", report.Directory,
		"success", report.Counts.Success,
		"skipped", report.Counts.SkippedExisting,
		"not_found", report.Counts.NotFound,
		"failed", report.Counts.Failed,
		"elapsed", report.Timings.Total(),
	)
	sendPhase(ctx, prog, finishedUpdate(report))

	return report, nil
}

// MatchAll searches a video for every query on a pool of at most MatchWorkers goroutines.
//
// The result has one entry per query, in query order. A failed or empty search yields
// an entry without a URL; nothing aborts the pool.
func (p *Pipeline) MatchAll(ctx context.Context, queries []models.TrackQuery, prog chan<- ProgressUpdate) []models.MatchResult {
	total := len(queries)
	var done atomic.Int64

	sendPhase(ctx, prog, matchStartedUpdate(total))

	return RunPool(ctx, p.matchWorkers, total, func(ctx context.Context, i int) models.MatchResult {
		res := p.match(ctx, queries[i])
		step := int(done.Add(1))
		sendProgress(prog, matchUpdate(step, total, res))
		return res
	})
}

func (p *Pipeline) match(ctx context.Context, q models.TrackQuery) (res models.MatchResult) {
	res = models.MatchResult{Index: q.Index, Title: q.Title}

	defer func() {
		if r := recover(); r != nil {
			res.MediaURL = ""
			res.Err = fmt.Errorf("search panicked: %v", r)
			p.logger.Error("search panicked", "title", q.Title, "panic", r)
		}
	}()

	if p.searcher == nil {
		res.Err = fmt.Errorf("%w: searcher not initialized", shared.ErrServiceUnavailable)
		return res
	}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			res.Err = err
			return res
		}
	}

	sctx, cancel := context.WithTimeout(ctx, p.searchTimeout)
	defer cancel()

	url, err := p.searcher.FindVideo(sctx, q.Title)
	switch {
	case err != nil:
		if errors.Is(sctx.Err(), context.DeadlineExceeded) && !errors.Is(err, shared.ErrTimeout) {
			err = fmt.Errorf("%w: %v", shared.ErrTimeout, err)
		}
		res.Err = err
		p.logger.Warn("search failed", "title", q.Title, "err", err)
	case url == "":
		res.Err = shared.ErrNoMatch
		p.logger.Debug("no match", "title", q.Title)
	default:
		res.MediaURL = url
		p.logger.Debug("matched", "title", q.Title, "url", url)
	}
	return res
}

// DownloadAll processes every match on a pool of at most DownloadWorkers goroutines.
//
// For each match the target file is computed from the title first. An existing file
// is reported as skipped without calling the downloader, a match without a URL as
// not found, and anything else is downloaded. The result is in match order.
func (p *Pipeline) DownloadAll(ctx context.Context, matches []models.MatchResult, dir string, prog chan<- ProgressUpdate) []models.DownloadOutcome {
	total := len(matches)
	var done atomic.Int64

	sendPhase(ctx, prog, downloadStartedUpdate(total, dir))

	return RunPool(ctx, p.downloadWorkers, total, func(ctx context.Context, i int) models.DownloadOutcome {
		out := p.download(ctx, matches[i], dir)
		step := int(done.Add(1))
		sendProgress(prog, downloadUpdate(step, total, out))
		return out
	})
}

func (p *Pipeline) download(ctx context.Context, m models.MatchResult, dir string) (out models.DownloadOutcome) {
	out = models.DownloadOutcome{Index: m.Index, Title: m.Title}

	defer func() {
		if r := recover(); r != nil {
			out.Status = models.StatusFailed
			out.Err = fmt.Errorf("download panicked: %v", r)
			p.logger.Error("download panicked", "title", m.Title, "panic", r)
		}
	}()

	ext := "mp3"
	if p.downloader != nil {
		ext = p.downloader.Extension()
	}
	basename := shared.TrackBasename(m.Title)
	out.Path = filepath.Join(dir, basename+"."+ext)

	if shared.FileExists(out.Path) {
		out.Status = models.StatusSkippedExisting
		p.logger.Debug("already exists", "path", out.Path)
		return out
	}

	if !m.Found() {
		out.Status = models.StatusNotFound
		out.Err = m.Err
		return out
	}

	if p.downloader == nil {
		out.Status = models.StatusFailed
		out.Err = fmt.Errorf("%w: downloader not initialized", shared.ErrServiceUnavailable)
		return out
	}
	if err := ctx.Err(); err != nil {
		out.Status = models.StatusFailed
		out.Err = err
		return out
	}

	dctx, cancel := context.WithTimeout(ctx, p.downloadTimeout)
	defer cancel()

	if err := p.downloader.DownloadAudio(dctx, m.MediaURL, dir, basename); err != nil {
		out.Status = models.StatusFailed
		out.Err = err
		p.logger.Warn("download failed", "title", m.Title, "err", err)
		return out
	}

	out.Status = models.StatusSuccess
	p.logger.Debug("downloaded", "title", m.Title, "path", out.Path)
	return out
}
