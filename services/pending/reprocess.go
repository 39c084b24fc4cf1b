package pending

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/codes"

	"gymkeeper-backend/services/scheduler"
)

// Booker retries a stored request against the live site. Implemented
// by scheduler.Service.
type Booker interface {
	Schedule(ctx context.Context, request scheduler.Request) (booked bool, err error)
}

// Outcome is the result of one reprocessed request. Exactly one of
// three states: booked, still deferred (Booked false, Err empty), or
// failed.
type Outcome struct {
	Request Request
	Booked  bool
	Err     string
}

// ReprocessAll retries every stored request in order. Requests that
// book or fail are removed from the store and reported; requests whose
// slot is still unlisted and still outside the notice window remain
// queued, keeping their relative order. The store is rewritten once,
// after the whole pass.
func (s Store) ReprocessAll(ctx context.Context, booker Booker) ([]Outcome, error) {
	ctx, span := tracer.Start(ctx, "ReprocessAll")
	defer span.End()

	entries, err := s.load()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not load pending requests")
		return nil, err
	}

	var outcomes []Outcome
	var kept []Request

	for _, entry := range entries {
		request, err := entry.ScheduleRequest()
		if err != nil {
			// Unparseable entries are evicted so they can't wedge the
			// queue forever; the outcome tells the user what to re-add.
			outcomes = append(outcomes, Outcome{Request: entry, Err: err.Error()})
			continue
		}

		booked, err := booker.Schedule(ctx, request)
		switch {
		case err != nil:
			outcomes = append(outcomes, Outcome{Request: entry, Err: err.Error()})
		case booked:
			outcomes = append(outcomes, Outcome{Request: entry, Booked: true})
		default:
			kept = append(kept, entry)
		}
	}

	slog.InfoContext(ctx, "reprocessed pending requests",
		"total", len(entries),
		"resolved", len(outcomes),
		"kept", len(kept),
	)

	if err := s.writeAll(kept); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not rewrite pending store")
		return outcomes, err
	}
	return outcomes, nil
}
