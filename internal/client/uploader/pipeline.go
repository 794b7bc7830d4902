package uploader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mkraev/atelier/internal/logging"
)

// DefaultBatchSize keeps intent batches deliberately small so one-time
// URLs are consumed shortly after they are issued; larger batches risk
// expiring on slow links.
const DefaultBatchSize = 2

// Pacing: a short pause every paceEvery files to avoid bursting the
// storage provider. Not a correctness mechanism.
const (
	paceEvery = 25
	paceDelay = 250 * time.Millisecond
)

// ErrOrphanedUpload marks the documented gap between storage and the
// metadata database: the bytes were stored but the commit failed, leaving
// an asset with no record. No compensating delete is attempted; the id is
// surfaced so operators can reconcile.
var ErrOrphanedUpload = errors.New("asset stored but metadata commit failed")

// Progress is emitted after every intent batch and every processed row.
type Progress struct {
	CreatedIntents int
	Done           int
	Total          int
	Percent        float64
	ETA            time.Duration
}

// RowResult is the terminal outcome for one row. Exactly one of
// {committed, failed} holds for every input row.
type RowResult struct {
	Row       Row
	AssetID   string
	Refreshed bool
	Attempts  int
	Err       error
}

// Failed reports whether the row terminated without a metadata commit.
func (r RowResult) Failed() bool { return r.Err != nil }

// Report summarizes one pipeline run.
type Report struct {
	Succeeded int
	Failed    int
	// TargetFolder is the folder the run actually landed in; in copy
	// mode the server may have renamed it.
	TargetFolder string
	Duration     time.Duration
	Results      []RowResult
}

// Config wires the pipeline's collaborators. Control and Executor are
// required; the rest default sensibly.
type Config struct {
	Control  ControlPlane
	Executor *Executor
	Logger   logging.Logger

	BatchSize     int
	ConflictDelay time.Duration

	// OnProgress, when set, receives progress updates; it is called from
	// the pipeline goroutine only.
	OnProgress func(Progress)

	// ReadFile loads a row's bytes; defaults to os.ReadFile.
	ReadFile func(name string) ([]byte, error)

	// sleep and now are test seams.
	sleep func(context.Context, time.Duration) error
	now   func() time.Time
}

// Pipeline runs upload jobs. One Pipeline is safe for sequential reuse;
// it holds no per-run state.
type Pipeline struct {
	cfg Config
}

// NewPipeline validates config and applies defaults.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if cfg.Control == nil {
		return nil, errors.New("uploader: Config.Control is required")
	}
	if cfg.Executor == nil {
		return nil, errors.New("uploader: Config.Executor is required")
	}
	if cfg.Logger == nil {
		return nil, errors.New("uploader: Config.Logger is required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.ConflictDelay <= 0 {
		cfg.ConflictDelay = DefaultConflictDelay
	}
	if cfg.ReadFile == nil {
		cfg.ReadFile = os.ReadFile
	}
	if cfg.sleep == nil {
		cfg.sleep = sleepCtx
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}
	return &Pipeline{cfg: cfg}, nil
}

// Run uploads rows into targetFolder, strictly sequentially: one intent
// batch at a time, one row at a time within a batch, each row's metadata
// committed before the next row begins. Rows are processed in input
// order and none is silently dropped.
//
// An intent-creation failure aborts the whole remaining run (nothing can
// proceed without intents); every other failure is terminal for its row
// only. The returned error is non-nil only for run-level aborts; per-row
// failures live in the report.
func (p *Pipeline) Run(ctx context.Context, rows []Row, targetFolder string, mode Mode, transforms map[string]Transform, defaultProfile Profile) (*Report, error) {
	log := p.cfg.Logger.With("module", "uploader")
	started := p.cfg.now()

	report := &Report{TargetFolder: targetFolder}
	created := 0
	processed := 0

	batches := splitBatches(rows, p.cfg.BatchSize)
	log.Info(ctx, "starting upload run", "rows", len(rows), "batches", len(batches), "targetFolder", targetFolder, "mode", string(mode))

	for bi, batch := range batches {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		resp, err := p.cfg.Control.CreateIntents(ctx, IntentRequest{
			Files:          intentFiles(batch),
			Transforms:     transformsFor(batch, transforms),
			DefaultProfile: defaultProfile,
			TargetFolder:   report.TargetFolder,
			Mode:           mode,
		})
		if err != nil {
			return report, fmt.Errorf("creating intents for batch %d: %w", bi+1, err)
		}
		if !resp.OK || resp.Intents == nil {
			return report, fmt.Errorf("creating intents for batch %d: server refused: %s", bi+1, resp.Message)
		}
		// The server may have re-aimed the run (folder renamed on
		// collision in copy mode); later batches must follow.
		if resp.TargetFolder != "" {
			report.TargetFolder = resp.TargetFolder
		}
		created += len(resp.Intents)
		p.emitProgress(created, processed, len(rows), started)

		byLocal := make(map[string]Intent, len(resp.Intents))
		for _, in := range resp.Intents {
			byLocal[in.LocalID] = in
		}

		for _, row := range batch {
			result := p.processRow(ctx, row, byLocal, report.TargetFolder, mode, defaultProfile, transforms)
			if result.Failed() {
				report.Failed++
				log.Warn(ctx, "row failed", "row", row.ID, "attempts", result.Attempts, "error", result.Err.Error())
			} else {
				report.Succeeded++
			}
			report.Results = append(report.Results, result)
			processed++
			p.emitProgress(created, processed, len(rows), started)

			if processed%paceEvery == 0 && processed < len(rows) {
				if err := p.cfg.sleep(ctx, paceDelay); err != nil {
					return report, err
				}
			}
		}
	}

	report.Duration = p.cfg.now().Sub(started)
	log.Info(ctx, "upload run finished", "succeeded", report.Succeeded, "failed", report.Failed, "duration", report.Duration.String())
	return report, nil
}

// processRow takes one row from bytes to committed metadata. All failure
// classification is folded into the result; nothing escapes as a panic or
// a run-level error.
func (p *Pipeline) processRow(ctx context.Context, row Row, intents map[string]Intent, targetFolder string, mode Mode, defaultProfile Profile, transforms map[string]Transform) RowResult {
	result := RowResult{Row: row}

	intent, ok := intents[row.ID]
	if !ok {
		result.Err = fmt.Errorf("no intent issued for row %s", row.ID)
		return result
	}

	data, err := p.cfg.ReadFile(row.Path)
	if err != nil {
		result.Err = fmt.Errorf("reading %s: %w", row.Path, err)
		return result
	}

	upload := func(ctx context.Context, in Intent) (string, error) {
		return p.cfg.Executor.Upload(ctx, in.UploadURL, in.UploadFields, row.FileName, data)
	}
	refresh := func(ctx context.Context) (*Intent, error) {
		return p.refreshIntent(ctx, row, targetFolder, mode, defaultProfile, transforms)
	}

	ladder := runLadder(ctx, intent, upload, refresh, p.cfg.ConflictDelay, p.cfg.sleep)
	result.Attempts = ladder.Attempts
	result.Refreshed = ladder.Refreshed
	result.AssetID = ladder.Intent.ID
	if ladder.Err != nil {
		result.Err = ladder.Err
		return result
	}

	// Commit strictly after the successful upload, under the final id.
	err = p.cfg.Control.CommitMetadata(ctx, CommitRequest{
		CFImageID: ladder.Intent.ID,
		SizeBytes: row.SizeBytes,
		MimeType:  row.MimeType,
		Width:     row.Width,
		Height:    row.Height,
	})
	if err != nil {
		result.Err = fmt.Errorf("%w: asset %s: %v", ErrOrphanedUpload, ladder.Intent.ID, err)
	}
	return result
}

// refreshIntent requests exactly one fresh intent for a single row, with
// the batch's (possibly server-renamed) target folder and mode.
func (p *Pipeline) refreshIntent(ctx context.Context, row Row, targetFolder string, mode Mode, defaultProfile Profile, transforms map[string]Transform) (*Intent, error) {
	resp, err := p.cfg.Control.CreateIntents(ctx, IntentRequest{
		Files:          intentFiles([]Row{row}),
		Transforms:     transformsFor([]Row{row}, transforms),
		DefaultProfile: defaultProfile,
		TargetFolder:   targetFolder,
		Mode:           mode,
	})
	if err != nil {
		return nil, err
	}
	if !resp.OK || len(resp.Intents) != 1 {
		return nil, fmt.Errorf("server refused fresh intent: %s", resp.Message)
	}
	return &resp.Intents[0], nil
}

func (p *Pipeline) emitProgress(created, done, total int, started time.Time) {
	if p.cfg.OnProgress == nil {
		return
	}
	pr := Progress{CreatedIntents: created, Done: done, Total: total}
	if total > 0 {
		pr.Percent = float64(done) / float64(total) * 100
	}
	if done > 0 && done < total {
		elapsed := p.cfg.now().Sub(started)
		pr.ETA = time.Duration(float64(elapsed) / float64(done) * float64(total-done))
	}
	p.cfg.OnProgress(pr)
}

// transformsFor narrows the transform map to the rows of one request.
func transformsFor(rows []Row, all map[string]Transform) map[string]Transform {
	if len(all) == 0 {
		return nil
	}
	out := make(map[string]Transform)
	for _, r := range rows {
		if t, ok := all[r.ID]; ok {
			out[r.ID] = t
		} else if r.CustomTransform != nil {
			out[r.ID] = *r.CustomTransform
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
