package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/desertthunder/ytgrab/internal/models"
	"github.com/desertthunder/ytgrab/internal/shared"
	"github.com/desertthunder/ytgrab/internal/tasks"
	"github.com/desertthunder/ytgrab/internal/ui"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

// linkResult is the outcome of one link in a download run.
type linkResult struct {
	Link   string
	Report *tasks.Report
	Err    error
}

type linkSummaryJSON struct {
	Link      string                `json:"link"`
	Name      string                `json:"name,omitempty"`
	Directory string                `json:"directory,omitempty"`
	Counts    *models.OutcomeCounts `json:"counts,omitempty"`
	Timings   *tasks.Timings        `json:"timings,omitempty"`
	Error     string                `json:"error,omitempty"`
	Failed    []trackJSON           `json:"failed,omitempty"`
}

type trackJSON struct {
	Title  string `json:"title"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Download matches and downloads every link given as arguments or, when there are none,
// read as a comma-separated list from the input.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
	links := cleanLinks(cmd.StringArgs("links"))
	if len(links) == 0 {
		prompted, err := r.promptLinks()
		if err != nil {
			return err
		}
		links = prompted
	}
	if len(links) == 0 {
		return fmt.Errorf("%w: no links provided", shared.ErrMissingArgument)
	}

	if err := r.ensurePipeline(); err != nil {
		return err
	}

	folder := cmd.String("folder")
	start := time.Now()
	results := r.downloadLinks(ctx, links, folder)

	if cmd.Bool("json") {
		return r.writeJSON(summarize(results), true)
	}
	r.writeSummary(results, time.Since(start))
	return nil
}

// downloadLinks processes links concurrently, at most LinkConcurrency at once, and
// returns one result per link in input order.
func (r *Runner) downloadLinks(ctx context.Context, links []string, folder string) []linkResult {
	results := make([]linkResult, len(links))

	limit := 4
	if r.config != nil && r.config.Pipeline.LinkConcurrency > 0 {
		limit = r.config.Pipeline.LinkConcurrency
	}

	g := new(errgroup.Group)
	g.SetLimit(min(limit, len(links)))

	for i, link := range links {
		g.Go(func() error {
			label := fmt.Sprintf("[%d/%d]", i+1, len(links))
			report, err := r.processLink(ctx, label, link, folder)
			results[i] = linkResult{Link: link, Report: report, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (r *Runner) processLink(ctx context.Context, label, link, folder string) (*tasks.Report, error) {
	palette := ui.Styles()
	r.writePlain("%s %s\n", palette.Title(label), link)

	prog := make(chan tasks.ProgressUpdate, 64)
	tracker := ui.NewTracker(r.output, ui.TrackerOpts{
		Label:   label,
		ShowBar: r.showProgress,
		Verbose: r.verbose,
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		tracker.Consume(prog)
	}()

	report, err := r.pipeline.Process(ctx, link, folder, prog)
	close(prog)
	<-done

	if err != nil {
		r.writePlain("%s %s\n", palette.Help(label), palette.Err("❌ "+err.Error()))
		if !errors.Is(err, shared.ErrInvalidLink) {
			r.logger.Error("link failed", "link", link, "error", err)
		}
	}
	return report, err
}

// promptLinks asks for a comma-separated list of links on the input.
func (r *Runner) promptLinks() ([]string, error) {
	r.writePlain("%s ", ui.Styles().Title("Enter Spotify links (comma-separated):"))

	line, err := bufio.NewReader(r.input).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read links: %w", err)
	}
	return cleanLinks(strings.Split(line, ",")), nil
}

// cleanLinks trims each link and drops empty ones.
func cleanLinks(raw []string) []string {
	links := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			links = append(links, l)
		}
	}
	return links
}

func (r *Runner) writeSummary(results []linkResult, elapsed time.Duration) {
	palette := ui.Styles()

	r.writePlainln("")
	r.writePlainHeader("Summary")

	failedLinks := 0
	for _, res := range results {
		if res.Err != nil {
			failedLinks++
			r.writePlain("%s %s\n  %s\n", palette.Err("✗"), res.Link, palette.Err(res.Err.Error()))
			continue
		}

		rep := res.Report
		c := rep.Counts
		r.writePlain("%s %s → %s\n", palette.OK("✓"), rep.Name, rep.Directory)
		r.writePlain("  downloaded: %d  existing: %d  not found: %d  failed: %d  (%s)\n",
			c.Success, c.SkippedExisting, c.NotFound, c.Failed, rep.Timings.Total().Round(time.Millisecond))

		for _, out := range rep.Outcomes {
			if out.Err != nil && out.Status == models.StatusFailed {
				r.writePlain("    %s %s: %v\n", palette.Warn("!"), out.Title, out.Err)
			}
		}
	}

	r.writePlainln("%d link(s), %d failed, %s elapsed", len(results), failedLinks, elapsed.Round(time.Millisecond))
}

func summarize(results []linkResult) []linkSummaryJSON {
	out := make([]linkSummaryJSON, len(results))
	for i, res := range results {
		s := linkSummaryJSON{Link: res.Link}
		if res.Err != nil {
			s.Error = res.Err.Error()
			out[i] = s
			continue
		}
		rep := res.Report
		s.Name = rep.Name
		s.Directory = rep.Directory
		s.Counts = &rep.Counts
		s.Timings = &rep.Timings
		for _, o := range rep.Outcomes {
			if o.Err == nil {
				continue
			}
			s.Failed = append(s.Failed, trackJSON{Title: o.Title, Status: string(o.Status), Error: o.Err.Error()})
		}
		out[i] = s
	}
	return out
}
