package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/ytgrab/internal/formatter"
	"github.com/desertthunder/ytgrab/internal/models"
	"github.com/desertthunder/ytgrab/internal/shared"
	"github.com/urfave/cli/v3"
)

// Match lists a resource and finds a video for each track without downloading anything.
func (r *Runner) Match(ctx context.Context, cmd *cli.Command) error {
	link := cmd.StringArg("link")
	if link == "" {
		return fmt.Errorf("%w: link is required", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	ref, err := models.ParseLink(link)
	if err != nil {
		return err
	}

	if err := r.ensurePipeline(); err != nil {
		return err
	}

	res, err := r.pipeline.Resolve(ctx, ref, nil)
	if err != nil {
		return err
	}
	r.logger.Info("matched", "name", res.Name, "tracks", len(res.Matches),
		"found", models.CountMatched(res.Matches), "elapsed", res.Timings.Total())

	doc := formatter.Document{Link: link, Name: res.Name, Matches: res.Matches}

	if path := cmd.String("output"); path != "" {
		written, err := formatter.WriteFile(path, format, doc)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Wrote %s\n", written)
	}
	return formatter.Write(r.output, format, doc)
}
