package scheduler

import (
	"time"

	"gymkeeper-backend/lib/scrapers/gymsite"
	"gymkeeper-backend/lib/textutil"
)

type MatchKind int

const (
	NoMatch MatchKind = iota
	OneMatch
	AmbiguousMatch
)

// Key identifies one class occurrence: what, which day, what time.
// Activity comparison is case-insensitive, date and start are exact.
type Key struct {
	Activity string
	Date     time.Time
	Start    gymsite.Clock
}

func (k Key) matches(other Key) bool {
	return textutil.EqualActivity(k.Activity, other.Activity) &&
		sameDay(k.Date, other.Date) &&
		k.Start == other.Start
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// MatchResult is the outcome of matching a requested key against
// extracted records. More than one hit means the site showed the same
// class twice, which well-formed pages never do; callers must treat it
// as fatal rather than pick one.
type MatchResult[T any] struct {
	Kind   MatchKind
	Record T
	// populated only for AmbiguousMatch
	Ambiguous []T
}

// MatchRecords filters records against the requested key and
// classifies the hit count.
func MatchRecords[T any](records []T, keyOf func(T) Key, want Key) MatchResult[T] {
	var hits []T
	for _, record := range records {
		if keyOf(record).matches(want) {
			hits = append(hits, record)
		}
	}

	switch len(hits) {
	case 0:
		return MatchResult[T]{Kind: NoMatch}
	case 1:
		return MatchResult[T]{Kind: OneMatch, Record: hits[0]}
	default:
		return MatchResult[T]{Kind: AmbiguousMatch, Ambiguous: hits}
	}
}

func slotKey(s gymsite.Slot) Key {
	return Key{Activity: s.Activity, Date: s.Date, Start: s.Start}
}

func reservationKey(r gymsite.Reservation) Key {
	return Key{Activity: r.Activity, Date: r.Date, Start: r.Start}
}
