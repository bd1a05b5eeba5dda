package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytgrab/internal/models"
	"github.com/desertthunder/ytgrab/internal/shared"
	"github.com/desertthunder/ytgrab/internal/tasks"
	"golang.org/x/sync/errgroup"
)

// Resolver lists and matches a resource. Implemented by [tasks.Pipeline].
type Resolver interface {
	Resolve(ctx context.Context, ref models.ResourceRef, prog chan<- tasks.ProgressUpdate) (*tasks.Resolution, error)
}

// Processor runs the full download pipeline for one link. Implemented by [tasks.Pipeline].
type Processor interface {
	Process(ctx context.Context, link, folder string, prog chan<- tasks.ProgressUpdate) (*tasks.Report, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// Health reports that the server is up.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type playlistRequest struct {
	Link string `json:"link"`
}

type playlistTrack struct {
	Title      string  `json:"title"`
	YouTubeURL *string `json:"youtubeUrl"`
}

type playlistResponse struct {
	Name   string          `json:"name"`
	Tracks []playlistTrack `json:"tracks"`
}

// newPlaylistResponse keeps match order; a track's position is its index.
func newPlaylistResponse(name string, matches []models.MatchResult) playlistResponse {
	tracks := make([]playlistTrack, len(matches))
	for i, m := range matches {
		tracks[i].Title = m.Title
		if m.Found() {
			tracks[i].YouTubeURL = &m.MediaURL
		}
	}
	return playlistResponse{Name: name, Tracks: tracks}
}

// PlaylistHandler resolves a playlist link into matched tracks.
//
// Only playlist links are accepted here even though the pipeline can list albums
// and single tracks. Per-track search failures appear as a null youtubeUrl.
type PlaylistHandler struct {
	resolver Resolver
	logger   *log.Logger
}

func NewPlaylistHandler(resolver Resolver, logger *log.Logger) *PlaylistHandler {
	return &PlaylistHandler{resolver: resolver, logger: logger}
}

func (h *PlaylistHandler) Method() string   { return http.MethodPost }
func (h *PlaylistHandler) Routes() []string { return []string{"/api/playlist"} }

func (h *PlaylistHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Link == "" {
		writeError(w, http.StatusBadRequest, "link is required")
		return
	}

	ref, err := models.ParseLink(req.Link)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if ref.Kind != models.KindPlaylist {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("expected a playlist link, got %s", ref.Kind))
		return
	}

	res, err := h.resolver.Resolve(r.Context(), ref, nil)
	if err != nil {
		h.logger.Error("playlist lookup failed", "ref", ref.String(), "err", err)
		writeError(w, http.StatusFailedDependency, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, newPlaylistResponse(res.Name, res.Matches))
}

type downloadRequest struct {
	Links  []string `json:"links"`
	Folder *string  `json:"folder"`
}

type downloadResponse struct {
	Message string `json:"message"`
	JobID   string `json:"jobId"`
}

// DownloadHandler starts a background download job and responds immediately.
//
// Jobs run on the handler's own context, not the request's, and their results are
// only logged.
type DownloadHandler struct {
	ctx       context.Context
	processor Processor
	limit     int
	logger    *log.Logger
	wg        sync.WaitGroup
}

// NewDownloadHandler creates a [DownloadHandler] whose jobs run on ctx.
//
// Each job processes at most limit links at once.
func NewDownloadHandler(ctx context.Context, processor Processor, limit int, logger *log.Logger) *DownloadHandler {
	if limit <= 0 {
		limit = 4
	}
	return &DownloadHandler{ctx: ctx, processor: processor, limit: limit, logger: logger}
}

func (h *DownloadHandler) Method() string   { return http.MethodPost }
func (h *DownloadHandler) Routes() []string { return []string{"/api/download"} }

func (h *DownloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	links := make([]string, 0, len(req.Links))
	for _, link := range req.Links {
		if link != "" {
			links = append(links, link)
		}
	}
	if len(links) == 0 {
		writeError(w, http.StatusBadRequest, "links must not be empty")
		return
	}

	folder := ""
	if req.Folder != nil {
		folder = *req.Folder
	}

	jobID := shared.GenerateID()
	h.start(jobID, links, folder)

	writeJSON(w, http.StatusOK, downloadResponse{
		Message: fmt.Sprintf("Download started for %d link(s)", len(links)),
		JobID:   jobID,
	})
}

func (h *DownloadHandler) start(jobID string, links []string, folder string) {
	logger := shared.WithLogger(h.logger, "job", jobID)
	logger.Info("download job started", "links", len(links), "folder", folder)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()

		g := new(errgroup.Group)
		g.SetLimit(min(h.limit, len(links)))

		for _, link := range links {
			g.Go(func() error {
				report, err := h.processor.Process(h.ctx, link, folder, nil)
				if err != nil {
					level := log.ErrorLevel
					if errors.Is(err, shared.ErrInvalidLink) {
						level = log.WarnLevel
					}
					logger.Log(level, "link failed", "link", link, "err", err)
					return nil
				}
				logger.Info("link done",
					"link", link,
					"dir", report.Directory,
					"success", report.Counts.Success,
					"skipped", report.Counts.SkippedExisting,
					"not_found", report.Counts.NotFound,
					"failed", report.Counts.Failed,
				)
				return nil
			})
		}

		_ = g.Wait()
		logger.Info("download job finished")
	}()
}

// Wait blocks until every started job has finished.
func (h *DownloadHandler) Wait() {
	h.wg.Wait()
}
