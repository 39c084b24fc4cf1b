package gymsite

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"gymkeeper-backend/lib/htmlutil"
	"gymkeeper-backend/lib/timezone"

	"github.com/PuerkitoBio/goquery"
)

const reservationColumns = 8

// marker the status column carries for a reservation that can still be
// cancelled
const activeStatusMarker = "Activa"

// UnexpectedLayoutError reports a reservations table whose shape does
// not match the known site format. It signals format drift, not bad
// input, and is never retried.
type UnexpectedLayoutError struct {
	Columns int
}

func (e UnexpectedLayoutError) Error() string {
	return fmt.Sprintf(
		"reservation row has %d columns, expected %d; the site layout has changed",
		e.Columns, reservationColumns,
	)
}

// ExtractReservations parses the reservations page table into typed
// records. Every row is parsed; rows without the active marker come
// back with StatusOther so callers can decide what to surface.
func ExtractReservations(base *url.URL, doc *goquery.Document) ([]Reservation, error) {
	var reservations []Reservation
	var firstErr error

	doc.Find("table#gradient-style tbody tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() != reservationColumns {
			firstErr = UnexpectedLayoutError{Columns: cells.Length()}
			return false
		}

		r, err := reservationFromRow(base, cells)
		if err != nil {
			firstErr = err
			return false
		}
		reservations = append(reservations, r)
		return true
	})

	if firstErr != nil {
		return nil, firstErr
	}
	return reservations, nil
}

func reservationFromRow(base *url.URL, cells *goquery.Selection) (Reservation, error) {
	// column order: activity, _, _, date, time, _, _, status
	activity := htmlutil.CleanText(cells.Eq(0).Text())

	dateText := htmlutil.CleanText(cells.Eq(3).Text())
	date, err := time.ParseInLocation("2006-01-02", dateText, timezone.Location)
	if err != nil {
		return Reservation{}, fmt.Errorf("bad reservation date %q: %w", dateText, err)
	}

	start, err := ParseClock(htmlutil.CleanText(cells.Eq(4).Text()))
	if err != nil {
		return Reservation{}, err
	}

	statusCell := cells.Eq(reservationColumns - 1)
	status := StatusOther
	cancelTarget := ""
	if containsText(statusCell, activeStatusMarker) {
		status = StatusActive
		cancelTarget = resolveHref(base, statusCell.Find("a").First().AttrOr("href", ""))
	}

	return Reservation{
		Activity:     activity,
		Date:         date,
		Start:        start,
		Status:       status,
		CancelTarget: cancelTarget,
	}, nil
}

func containsText(sel *goquery.Selection, marker string) bool {
	for _, n := range sel.Nodes {
		if strings.Contains(htmlutil.GetText(n), marker) {
			return true
		}
	}
	return false
}
