package ingest

import (
	"context"
	"errors"
	"io"
)

// SkipFunc observes skipped records.
type SkipFunc func(rec Record, reason SkipReason)

// Drain feeds every record from src into r. It stops early when ctx is done;
// nothing has been persisted at that point.
func Drain(ctx context.Context, src Source, r *Reconciler, onSkip SkipFunc) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if reason := r.Add(rec); reason != "" && onSkip != nil {
			onSkip(rec, reason)
		}
	}
}
