package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/mkraev/atelier/internal/client/scan"
	"github.com/mkraev/atelier/internal/client/uploader"
)

// Upload scans a directory and runs the upload pipeline against the
// control plane, printing progress and a final summary.
func (a *App) Upload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	dir := fs.String("dir", "", "directory to upload")
	folder := fs.String("folder", "", "target folder name")
	mode := fs.String("mode", string(uploader.ModeOverride), "override or copy")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dir == "" || *folder == "" {
		return fmt.Errorf("upload: -dir and -folder are required")
	}

	m := uploader.Mode(*mode)
	if m != uploader.ModeOverride && m != uploader.ModeCopy {
		return fmt.Errorf("upload: unknown mode %q", *mode)
	}

	rows, err := scan.Dir(*dir)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", *dir, err)
	}
	if len(rows) == 0 {
		fmt.Fprintln(a.out, "Nothing to upload.")
		return nil
	}
	fmt.Fprintf(a.out, "Found %d files in %s\n", len(rows), *dir)

	pipeline, err := uploader.NewPipeline(uploader.Config{
		Control:       a.api,
		Executor:      uploader.NewExecutor(60 * time.Second),
		Logger:        a.logger,
		BatchSize:     a.config.BatchSize,
		ConflictDelay: a.config.ConflictDelay,
		OnProgress: func(p uploader.Progress) {
			fmt.Fprintf(a.out, "\r%d/%d (%.0f%%) eta %s   ", p.Done, p.Total, p.Percent, p.ETA.Round(time.Second))
		},
	})
	if err != nil {
		return err
	}

	report, err := pipeline.Run(ctx, rows, *folder, m, nil, uploader.ProfileWeb)
	fmt.Fprintln(a.out)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Done in %s: %d succeeded, %d failed, folder %q\n",
		report.Duration.Round(time.Second), report.Succeeded, report.Failed, report.TargetFolder)

	for _, r := range report.Results {
		if r.Failed() {
			fmt.Fprintf(a.out, "  FAILED %s: %v\n", r.Row.RelativePath, r.Err)
		}
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", report.Failed, len(rows))
	}
	return nil
}
