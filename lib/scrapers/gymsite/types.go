package gymsite

import (
	"fmt"
	"time"

	"gymkeeper-backend/lib/timezone"
)

// Clock is a wall-clock time of day on a 24 hour dial.
type Clock struct {
	Hour   int
	Minute int
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ParseClock parses an "HH:MM" string as displayed by the site.
func ParseClock(s string) (Clock, error) {
	var c Clock
	_, err := fmt.Sscanf(s, "%d:%d", &c.Hour, &c.Minute)
	if err != nil {
		return Clock{}, fmt.Errorf("invalid clock value %q: %w", s, err)
	}
	return c, nil
}

type ReservationStatus int

const (
	StatusOther ReservationStatus = iota
	StatusActive
)

// Slot is a bookable calendar cell on the booking page. It is a
// snapshot of one extraction pass and holds no lifecycle of its own.
type Slot struct {
	Activity string
	// midnight of the class day in the site's timezone
	Date  time.Time
	Start Clock
	// absolute booking link, the handle the session uses to perform
	// the booking interaction
	Target string
}

// StartsAt combines the slot's date and start time.
func (s Slot) StartsAt() time.Time {
	return time.Date(
		s.Date.Year(), s.Date.Month(), s.Date.Day(),
		s.Start.Hour, s.Start.Minute, 0, 0,
		timezone.Location,
	)
}

// Reservation is an existing booking owned by the logged-in user as
// listed on the reservations page.
type Reservation struct {
	Activity string
	Date     time.Time
	Start    Clock
	Status   ReservationStatus
	// absolute cancel link, empty for rows that expose none
	CancelTarget string
}
