// Package scheduler decides whether a requested class can be booked or
// cancelled right now, drives the site session to do it, and reports
// "not yet" separately from failure so callers can retry later.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gymkeeper-backend/lib/attemptlog"
	"gymkeeper-backend/lib/scrapers/gymsite"
	"gymkeeper-backend/lib/textutil"
	"gymkeeper-backend/lib/timezone"

	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel/codes"
)

// minimum lead time before a class start at which its slot must
// already be listed on the site
const DefaultNoticeWindow = 18 * time.Hour

// Session is one exclusively-owned browsing session against the gym
// site. It is acquired at the start of an operation and released at
// the end, never shared between in-flight operations.
type Session interface {
	FetchSlots(ctx context.Context) ([]gymsite.Slot, error)
	Book(ctx context.Context, slot gymsite.Slot) error
	FetchReservations(ctx context.Context) ([]gymsite.Reservation, error)
	Cancel(ctx context.Context, reservation gymsite.Reservation) error
	Close() error
}

type Request struct {
	Email    string
	Activity string
	Date     time.Time
	Start    gymsite.Clock
}

func (r Request) key() Key {
	return Key{Activity: r.Activity, Date: r.Date, Start: r.Start}
}

func (r Request) StartsAt() time.Time {
	return time.Date(
		r.Date.Year(), r.Date.Month(), r.Date.Day(),
		r.Start.Hour, r.Start.Minute, 0, 0,
		timezone.Location,
	)
}

type Options struct {
	OpenSession func(ctx context.Context, email string) (Session, error)
	// defaults to DefaultNoticeWindow
	NoticeWindow time.Duration
	// defaults to timezone.Now
	Now func() time.Time
	// optional attempt history, skipped when nil
	Attempts *attemptlog.Store
}

type Service struct {
	openSession  func(ctx context.Context, email string) (Session, error)
	noticeWindow time.Duration
	now          func() time.Time
	attempts     *attemptlog.Store
}

func NewService(options Options) Service {
	if options.NoticeWindow == 0 {
		options.NoticeWindow = DefaultNoticeWindow
	}
	if options.Now == nil {
		options.Now = timezone.Now
	}
	return Service{
		openSession:  options.OpenSession,
		noticeWindow: options.NoticeWindow,
		now:          options.Now,
		attempts:     options.Attempts,
	}
}

// Schedule books the requested class if its slot is listed. It returns
// (false, nil) when the slot is not listed yet and the class is still
// far enough away, the caller may queue the request and retry later.
// Every other miss is an error.
func (s Service) Schedule(ctx context.Context, req Request) (bool, error) {
	ctx, span := tracer.Start(ctx, "service:Schedule")
	defer span.End()

	session, err := s.openSession(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open session")
		return false, err
	}
	defer s.release(ctx, session)

	slots, err := session.FetchSlots(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch slots")
		s.record(ctx, req, "schedule", attemptlog.OutcomeFailed, err.Error())
		return false, err
	}

	result := MatchRecords(slots, slotKey, req.key())
	switch result.Kind {
	case AmbiguousMatch:
		err := fmt.Errorf(
			"%w: %q on %s at %s matched %d slots",
			ErrIntegrity, req.Activity, req.Date.Format("02-01-2006"),
			req.Start, len(result.Ambiguous),
		)
		span.SetStatus(codes.Error, err.Error())
		s.record(ctx, req, "schedule", attemptlog.OutcomeFailed, err.Error())
		return false, err

	case NoMatch:
		if s.insideNoticeWindow(req) {
			err := s.slotWindowError(req, slots)
			span.SetStatus(codes.Error, err.Error())
			s.record(ctx, req, "schedule", attemptlog.OutcomeFailed, err.Error())
			return false, err
		}
		slog.InfoContext(
			ctx, "slot not listed yet",
			"activity", req.Activity,
			"date", req.Date.Format("02-01-2006"),
			"time", req.Start,
		)
		s.record(ctx, req, "schedule", attemptlog.OutcomeDeferred, "")
		return false, nil
	}

	err = session.Book(ctx, result.Record)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "booking failed")
		s.record(ctx, req, "schedule", attemptlog.OutcomeFailed, err.Error())
		return false, err
	}

	slog.InfoContext(
		ctx, "booked class",
		"email", req.Email,
		"activity", req.Activity,
		"date", req.Date.Format("02-01-2006"),
		"time", req.Start,
	)
	s.record(ctx, req, "schedule", attemptlog.OutcomeBooked, "")
	return true, nil
}

// CancelSchedule cancels an existing active reservation matching the
// request. Only reservations the site still marks active are
// considered.
func (s Service) CancelSchedule(ctx context.Context, req Request) (bool, error) {
	ctx, span := tracer.Start(ctx, "service:CancelSchedule")
	defer span.End()

	session, err := s.openSession(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open session")
		return false, err
	}
	defer s.release(ctx, session)

	reservations, err := session.FetchReservations(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch reservations")
		s.record(ctx, req, "cancel", attemptlog.OutcomeFailed, err.Error())
		return false, err
	}

	var active []gymsite.Reservation
	for _, r := range reservations {
		if r.Status == gymsite.StatusActive {
			active = append(active, r)
		}
	}

	result := MatchRecords(active, reservationKey, req.key())
	switch result.Kind {
	case NoMatch:
		err := fmt.Errorf(
			"%w: %q on %s at %s",
			ErrNotFound, req.Activity, req.Date.Format("02-01-2006"), req.Start,
		)
		span.SetStatus(codes.Error, err.Error())
		s.record(ctx, req, "cancel", attemptlog.OutcomeFailed, err.Error())
		return false, err

	case AmbiguousMatch:
		err := fmt.Errorf(
			"%w: %q on %s at %s matched %d reservations",
			ErrIntegrity, req.Activity, req.Date.Format("02-01-2006"),
			req.Start, len(result.Ambiguous),
		)
		span.SetStatus(codes.Error, err.Error())
		s.record(ctx, req, "cancel", attemptlog.OutcomeFailed, err.Error())
		return false, err
	}

	err = session.Cancel(ctx, result.Record)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "cancel failed")
		s.record(ctx, req, "cancel", attemptlog.OutcomeFailed, err.Error())
		return false, err
	}

	slog.InfoContext(
		ctx, "cancelled reservation",
		"email", req.Email,
		"activity", req.Activity,
		"date", req.Date.Format("02-01-2006"),
		"time", req.Start,
	)
	s.record(ctx, req, "cancel", attemptlog.OutcomeCancelled, "")
	return true, nil
}

// ActiveReservations lists the user's active reservations without
// their cancel handles, which are only valid inside the session that
// extracted them.
func (s Service) ActiveReservations(ctx context.Context, email string) ([]gymsite.Reservation, error) {
	ctx, span := tracer.Start(ctx, "service:ActiveReservations")
	defer span.End()

	session, err := s.openSession(ctx, email)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open session")
		return nil, err
	}
	defer s.release(ctx, session)

	reservations, err := session.FetchReservations(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch reservations")
		return nil, err
	}

	var active []gymsite.Reservation
	for _, r := range reservations {
		if r.Status != gymsite.StatusActive {
			continue
		}
		r.CancelTarget = ""
		active = append(active, r)
	}
	return active, nil
}

func (s Service) release(ctx context.Context, session Session) {
	if err := session.Close(); err != nil {
		slog.WarnContext(ctx, "failed to release session", "err", err)
	}
}

func (s Service) insideNoticeWindow(req Request) bool {
	return req.StartsAt().Sub(s.now()) < s.noticeWindow
}

func (s Service) slotWindowError(req Request, slots []gymsite.Slot) error {
	err := fmt.Errorf(
		"%w: %q on %s at %s",
		ErrSlotWindow, req.Activity, req.Date.Format("02-01-2006"), req.Start,
	)
	if suggestion := closestActivity(req.Activity, slots); suggestion != "" {
		err = fmt.Errorf("%w (closest listed class: %q)", err, suggestion)
	}
	return err
}

// closestActivity finds the listed activity name nearest to the
// requested one, to surface typos in the error. Exact matches never
// reach this point.
func closestActivity(requested string, slots []gymsite.Slot) string {
	const minSimilarity = 0.85

	best := ""
	bestScore := 0.0
	seen := map[string]bool{}
	for _, slot := range slots {
		name := textutil.NormalizeActivity(slot.Activity)
		if seen[name] {
			continue
		}
		seen[name] = true

		score := matchr.JaroWinkler(textutil.NormalizeActivity(requested), name, true)
		if score > bestScore {
			bestScore = score
			best = slot.Activity
		}
	}
	if bestScore < minSimilarity {
		return ""
	}
	return best
}

func (s Service) record(ctx context.Context, req Request, operation string, outcome attemptlog.Outcome, detail string) {
	if s.attempts == nil {
		return
	}
	err := s.attempts.Record(ctx, attemptlog.Attempt{
		Time:      s.now(),
		Email:     req.Email,
		Activity:  req.Activity,
		ClassDate: req.Date.Format("02-01-2006"),
		ClassTime: req.Start.String(),
		Operation: operation,
		Outcome:   outcome,
		Detail:    detail,
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to record attempt", "err", err)
	}
}
