package gymsite

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"gymkeeper-backend/lib/htmlutil"
	"gymkeeper-backend/lib/timezone"

	"golang.org/x/net/html"
)

// marker present in the href of every booking link on the calendar
const bookingLinkMarker = "sectiune=programari"

// number of elements to advance past a matched slot group. A group is
// 3 elements plus one separator the site always renders between groups.
const slotGroupStride = 4

var ErrMalformedSlot = fmt.Errorf("slot markup is missing expected data")

// looking for something like "Crossfit incepatori 07:00-08:00"
var timeRangeRegex = regexp.MustCompile(`(\d\d:\d\d)-(\d\d:\d\d)$`)

// ExtractSlots turns calendar table cells into slot records. `cells`
// are the <td> nodes that contain at least one booking link and `base`
// is the URL of the page they came from, needed to absolutize hrefs.
//
// A bookable class shows up as three consecutive element children of
// its cell:
//
//	<strong> ... </strong>              -> name
//	<a href="...programari..."> ... </a> -> booking link
//	<div id="info_<number>"> ... </div>  -> class info
//
// Decorative markup may sit between groups, so the scan walks the
// children one by one and only commits when the full triple lines up.
func ExtractSlots(base *url.URL, cells []*html.Node) ([]Slot, error) {
	var slots []Slot
	for _, cell := range cells {
		for _, group := range scanSlotGroups(htmlutil.ElementChildren(cell)) {
			slot, err := slotFromGroup(base, group)
			if err != nil {
				return nil, err
			}
			slots = append(slots, slot)
		}
	}
	return slots, nil
}

type slotGroup struct {
	name *html.Node
	link *html.Node
	info *html.Node
}

func isSlotGroup(g slotGroup) bool {
	href := htmlutil.AttrOr(g.link, "href", "")
	divId := htmlutil.AttrOr(g.info, "id", "")
	return g.name.Data == "strong" &&
		g.link.Data == "a" &&
		g.info.Data == "div" &&
		strings.Contains(divId, "info") &&
		strings.Contains(href, bookingLinkMarker)
}

func scanSlotGroups(elements []*html.Node) []slotGroup {
	var groups []slotGroup

	counter := 0
	for counter < len(elements)-2 {
		sample := slotGroup{
			name: elements[counter],
			link: elements[counter+1],
			info: elements[counter+2],
		}
		if isSlotGroup(sample) {
			groups = append(groups, sample)
			counter += slotGroupStride
		} else {
			counter++
		}
	}

	return groups
}

func slotFromGroup(base *url.URL, group slotGroup) (Slot, error) {
	target := resolveHref(base, htmlutil.AttrOr(group.link, "href", ""))

	date, err := dateFromBookingLink(target)
	if err != nil {
		return Slot{}, err
	}
	start, err := startFromInfoText(htmlutil.GetText(group.info))
	if err != nil {
		return Slot{}, err
	}

	return Slot{
		Activity: htmlutil.CleanText(htmlutil.GetText(group.name)),
		Date:     date,
		Start:    start,
		Target:   target,
	}, nil
}

// dateFromBookingLink recovers the class date from the booking link.
// Link example:
//
//	Extern.php?sectiune=programari2&ID_CL=85.0&wData=08-04-2016
func dateFromBookingLink(link string) (time.Time, error) {
	parsed, err := url.Parse(link)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad booking link %q", ErrMalformedSlot, link)
	}

	values := parsed.Query()["wData"]
	if len(values) != 1 {
		return time.Time{}, fmt.Errorf(
			"%w: booking link %q should carry exactly one date", ErrMalformedSlot, link,
		)
	}

	date, err := time.ParseInLocation("02-01-2006", values[0], timezone.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", ErrMalformedSlot, values[0])
	}
	return date, nil
}

// startFromInfoText recovers the start time from the info block, whose
// text ends in a "<start>-<end>" range. Only the start matters.
func startFromInfoText(text string) (Clock, error) {
	groups := timeRangeRegex.FindStringSubmatch(strings.TrimRight(text, " \t\n"))
	if groups == nil {
		return Clock{}, fmt.Errorf(
			"%w: no time range in info text %q", ErrMalformedSlot, text,
		)
	}
	return ParseClock(groups[1])
}

func resolveHref(base *url.URL, href string) string {
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
