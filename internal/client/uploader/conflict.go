package uploader

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultConflictDelay is the settling pause before the second attempt.
// Storage can racily 409 right after a neighbouring write to the same
// derived path; a short wait lets eventual consistency catch up.
const DefaultConflictDelay = 1500 * time.Millisecond

// ladderState enumerates the per-row upload state machine.
type ladderState int

const (
	stateAttempt1 ladderState = iota
	stateWait
	stateAttempt2
	stateRefreshIntent
	stateAttempt3
	stateDone
	stateFatal
)

// attemptFunc uploads the row's bytes against the given intent (URL plus
// signed policy fields) and returns the asset id echoed by storage, if any.
type attemptFunc func(ctx context.Context, in Intent) (string, error)

// refreshFunc obtains exactly one fresh intent for the affected row, with
// the same target folder and mode as the original batch.
type refreshFunc func(ctx context.Context) (*Intent, error)

// ladderResult reports how a row left the ladder.
type ladderResult struct {
	// Intent is the final intent: the original, or its replacement when
	// the ladder refreshed. Its ID is the id metadata must be committed
	// under.
	Intent Intent
	// Attempts is how many upload attempts were made (1..3).
	Attempts int
	// Refreshed is true when a fresh intent was requested.
	Refreshed bool
	// Err is nil on success; a terminal classification otherwise.
	Err error
}

// runLadder drives one row through the bounded conflict-recovery ladder:
//
//	Attempt1 -(conflict)-> Wait -> Attempt2 -(conflict)-> RefreshIntent -> Attempt3
//
// Success at any attempt is Done. Any non-conflict error is immediately
// fatal. A conflict on the third attempt is terminal for the row; the
// ladder never makes a fourth attempt.
func runLadder(ctx context.Context, intent Intent, upload attemptFunc, refresh refreshFunc, delay time.Duration, sleep func(context.Context, time.Duration) error) ladderResult {
	res := ladderResult{Intent: intent}
	state := stateAttempt1

	for {
		switch state {
		case stateAttempt1, stateAttempt2, stateAttempt3:
			res.Attempts++
			assetID, err := upload(ctx, res.Intent)
			if err == nil {
				if assetID != "" {
					res.Intent.ID = assetID
				}
				state = stateDone
				break
			}
			var conflict *ConflictError
			if !errors.As(err, &conflict) {
				res.Err = err
				state = stateFatal
				break
			}
			switch state {
			case stateAttempt1:
				state = stateWait
			case stateAttempt2:
				state = stateRefreshIntent
			default:
				res.Err = fmt.Errorf("conflict persisted after %d attempts: %w", res.Attempts, err)
				state = stateFatal
			}

		case stateWait:
			if err := sleep(ctx, delay); err != nil {
				res.Err = err
				state = stateFatal
				break
			}
			state = stateAttempt2

		case stateRefreshIntent:
			fresh, err := refresh(ctx)
			if err != nil {
				res.Err = fmt.Errorf("refreshing intent: %w", err)
				state = stateFatal
				break
			}
			// The fresh id, URL and policy fields replace the originals
			// for the last attempt and for the metadata commit.
			res.Refreshed = true
			res.Intent.ID = fresh.ID
			res.Intent.UploadURL = fresh.UploadURL
			res.Intent.UploadFields = fresh.UploadFields
			state = stateAttempt3

		case stateDone, stateFatal:
			return res
		}
	}
}

// sleepCtx waits for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
