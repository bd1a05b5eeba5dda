package ui

import (
	"fmt"
	"io"

	"github.com/desertthunder/ytgrab/internal/models"
	"github.com/desertthunder/ytgrab/internal/tasks"
	"github.com/schollz/progressbar/v3"
)

// TrackerOpts configures a [Tracker].
type TrackerOpts struct {
	Label   string // prefix for status lines, usually the link or its position
	ShowBar bool
	Verbose bool // print a line for every item, not only misses and failures
}

// Tracker renders progress updates for a single link.
//
// Not safe for concurrent use; run one consumer goroutine per Tracker.
type Tracker struct {
	w       io.Writer
	opts    TrackerOpts
	palette *Palette
	bar     *progressbar.ProgressBar
}

// NewTracker creates a [Tracker] writing to w.
func NewTracker(w io.Writer, opts TrackerOpts) *Tracker {
	return &Tracker{w: w, opts: opts, palette: Styles()}
}

// Consume handles updates until the channel is closed.
func (t *Tracker) Consume(updates <-chan tasks.ProgressUpdate) {
	for u := range updates {
		t.Handle(u)
	}
	t.finishBar()
}

// Handle renders one update.
func (t *Tracker) Handle(u tasks.ProgressUpdate) {
	switch u.Phase {
	case tasks.ResolveLink:
		if t.opts.Verbose {
			t.line(t.palette.Help(u.Message))
		}
	case tasks.FetchName:
		t.line(t.palette.Title(u.Message))
	case tasks.ListTracks:
		t.line(u.Message)
	case tasks.MatchTracks:
		t.step(u, "searching")
		if res, ok := u.Data.(models.MatchResult); ok {
			switch {
			case !res.Found():
				t.line(t.palette.Warn(u.Message))
			case t.opts.Verbose:
				t.line(u.Message)
			}
		}
	case tasks.DownloadTracks:
		t.step(u, "downloading")
		if out, ok := u.Data.(models.DownloadOutcome); ok {
			switch {
			case out.Status == models.StatusFailed:
				t.line(t.palette.Err(u.Message))
			case out.Status == models.StatusNotFound:
				t.line(t.palette.Warn(u.Message))
			case t.opts.Verbose:
				t.line(u.Message)
			}
		}
	case tasks.Finished:
		t.finishBar()
		t.line(t.palette.OK(u.Message))
	}
}

// step starts a bar on the first update of a phase and moves it to u.Step afterwards.
func (t *Tracker) step(u tasks.ProgressUpdate, verb string) {
	if u.Step == 0 {
		t.finishBar()
		t.bar = progressbar.NewOptions(
			u.Total,
			progressbar.OptionSetWriter(t.w),
			progressbar.OptionSetVisibility(t.opts.ShowBar),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetTheme(progressbar.ThemeASCII),
			progressbar.OptionFullWidth(),
			progressbar.OptionShowCount(),
			progressbar.OptionSetDescription(fmt.Sprintf("[cyan]%s[reset] %s...", t.opts.Label, verb)),
		)
		return
	}
	if t.bar != nil {
		_ = t.bar.Set(u.Step)
	}
}

func (t *Tracker) finishBar() {
	if t.bar == nil {
		return
	}
	_ = t.bar.Finish()
	if t.opts.ShowBar {
		fmt.Fprintln(t.w)
	}
	t.bar = nil
}

func (t *Tracker) line(msg string) {
	if t.bar != nil && t.opts.ShowBar {
		_ = t.bar.Clear()
	}
	if t.opts.Label != "" {
		fmt.Fprintf(t.w, "%s %s\n", t.palette.Help(t.opts.Label), msg)
		return
	}
	fmt.Fprintln(t.w, msg)
}
