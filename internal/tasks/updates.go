package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/ytgrab/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data ([models.MatchResult], [models.DownloadOutcome])
}

// Operation phase enumeration
type Phase int

const (
	ResolveLink Phase = iota
	FetchName
	ListTracks
	MatchTracks
	DownloadTracks
	Finished
)

func (p Phase) String() string {
	switch p {
	case ResolveLink:
		return "resolve_link"
	case FetchName:
		return "fetch_name"
	case ListTracks:
		return "list_tracks"
	case MatchTracks:
		return "match_tracks"
	case DownloadTracks:
		return "download_tracks"
	case Finished:
		return "finished"
	default:
		return ""
	}
}

// sendProgress delivers a per-item update without blocking; it is dropped when nobody keeps up.
func sendProgress(prog chan<- ProgressUpdate, update ProgressUpdate) {
	if prog == nil {
		return
	}
	select {
	case prog <- update:
	default:
	}
}

// sendPhase delivers a phase boundary, waiting for the consumer until ctx is done.
func sendPhase(ctx context.Context, prog chan<- ProgressUpdate, update ProgressUpdate) {
	if prog == nil {
		return
	}
	select {
	case prog <- update:
	case <-ctx.Done():
	}
}

func resolvedLinkUpdate(ref models.ResourceRef) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveLink,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Resolved %s %s", ref.Kind, ref.ID),
		Data:    ref,
	}
}

func fetchedNameUpdate(name string, fallback bool) ProgressUpdate {
	msg := fmt.Sprintf("📁 %s", name)
	if fallback {
		msg += " (name unavailable)"
	}
	return ProgressUpdate{Phase: FetchName, Step: 1, Total: 1, Message: msg, Data: name}
}

func listedTracksUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ListTracks,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("🎵 Found %d tracks", total),
	}
}

func matchStartedUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MatchTracks,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Searching YouTube for %d tracks...", total),
	}
}

func matchUpdate(step, total int, res models.MatchResult) ProgressUpdate {
	msg := fmt.Sprintf("[%d/%d] ✓ %s", step, total, res.Title)
	if !res.Found() {
		msg = fmt.Sprintf("[%d/%d] ⚠️ not found: %s", step, total, res.Title)
	}
	return ProgressUpdate{Phase: MatchTracks, Step: step, Total: total, Message: msg, Data: res}
}

func downloadStartedUpdate(total int, dir string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadTracks,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Saving %d tracks to %s", total, dir),
		Data:    dir,
	}
}

func downloadUpdate(step, total int, out models.DownloadOutcome) ProgressUpdate {
	var msg string
	switch out.Status {
	case models.StatusSkippedExisting:
		msg = fmt.Sprintf("[%d/%d] ✅ exists: %s", step, total, out.Title)
	case models.StatusSuccess:
		msg = fmt.Sprintf("[%d/%d] ⬇️ downloaded: %s", step, total, out.Title)
	case models.StatusNotFound:
		msg = fmt.Sprintf("[%d/%d] ⚠️ not found: %s", step, total, out.Title)
	default:
		msg = fmt.Sprintf("[%d/%d] ❌ failed: %s: %v", step, total, out.Title, out.Err)
	}
	return ProgressUpdate{Phase: DownloadTracks, Step: step, Total: total, Message: msg, Data: out}
}

func finishedUpdate(report *Report) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Finished,
		Step:    len(report.Outcomes),
		Total:   len(report.Outcomes),
		Message: fmt.Sprintf("✅ Finished: %s", report.Name),
		Data:    report,
	}
}
