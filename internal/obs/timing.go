// Package obs carries run-scoped identifiers and timing logs for the driver.
package obs

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

type ctxKey string

// RunIDKey is the context key of the run identifier.
const RunIDKey ctxKey = "run_id"

// WithRunID returns ctx tagged with a fresh run id, and the id itself.
func WithRunID(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()

	return context.WithValue(ctx, RunIDKey, id), id
}

// RunID returns the run id stored in ctx, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(RunIDKey).(string)

	return id
}

// Time logs the duration of the operation name when the returned func is
// called, together with the error errp points to.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()
	runID := RunID(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Printf("run_id=%s op=%s dur=%dms err=%v", runID, name, dur.Milliseconds(), *errp)
			return
		}
		log.Printf("run_id=%s op=%s dur=%dms", runID, name, dur.Milliseconds())
	}
}
