package gymsite

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"gymkeeper-backend/lib/timezone"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func calendarCells(t *testing.T, tableBody string) []*html.Node {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		"<html><body><table><tr>" + tableBody + "</tr></table></body></html>",
	))
	if err != nil {
		t.Fatal(err)
	}
	return doc.Find("td").Nodes
}

func mustUrl(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

const crossfitCell = `<td>
	<strong> Crossfit </strong>
	<a href="Extern.php?sectiune=programari2&amp;ID_CL=85.0&amp;wData=09-04-2016">Programeaza-te</a>
	<div id="info_85">Crossfit incepatori 14:00-15:00</div>
	<br/>
</td>`

func TestExtractSlots(t *testing.T) {
	base := mustUrl(t, "http://89.137.4.84/site/Extern.php?sectiune=program")

	slots, err := ExtractSlots(base, calendarCells(t, crossfitCell))
	require.NoError(t, err)
	require.Len(t, slots, 1)

	require.Equal(t, "Crossfit", slots[0].Activity)
	require.Equal(t,
		time.Date(2016, 4, 9, 0, 0, 0, 0, timezone.Location),
		slots[0].Date,
	)
	require.Equal(t, Clock{Hour: 14, Minute: 0}, slots[0].Start)
	require.Equal(t,
		"http://89.137.4.84/site/Extern.php?sectiune=programari2&ID_CL=85.0&wData=09-04-2016",
		slots[0].Target,
	)
}

func TestExtractSlotsInterleavedMarkup(t *testing.T) {
	// decorative markup before and between groups must not derail the
	// positional scan
	cell := `<td>
		<span class="deco"></span>
		<strong>Crossfit</strong>
		<a href="Extern.php?sectiune=programari2&amp;ID_CL=85.0&amp;wData=09-04-2016">x</a>
		<div id="info_85">07:00-08:00</div>
		<br/>
		<img src="spacer.gif"/>
		<strong>Yoga</strong>
		<a href="Extern.php?sectiune=programari2&amp;ID_CL=86.0&amp;wData=09-04-2016">x</a>
		<div id="info_86">18:30-19:30</div>
		<br/>
	</td>`

	slots, err := ExtractSlots(nil, calendarCells(t, cell))
	require.NoError(t, err)
	require.Len(t, slots, 2)
	require.Equal(t, "Crossfit", slots[0].Activity)
	require.Equal(t, Clock{Hour: 7, Minute: 0}, slots[0].Start)
	require.Equal(t, "Yoga", slots[1].Activity)
	require.Equal(t, Clock{Hour: 18, Minute: 30}, slots[1].Start)
}

func TestExtractSlotsIgnoresPartialGroups(t *testing.T) {
	// a link without the booking marker, or an info div without the
	// info id, is not a bookable class
	cell := `<td>
		<strong>Crossfit</strong>
		<a href="Extern.php?sectiune=altceva">x</a>
		<div id="info_85">07:00-08:00</div>
		<strong>Pilates</strong>
		<a href="Extern.php?sectiune=programari2&amp;wData=09-04-2016">x</a>
		<div id="details_86">07:00-08:00</div>
	</td>`

	slots, err := ExtractSlots(nil, calendarCells(t, cell))
	require.NoError(t, err)
	require.Len(t, slots, 0)
}

func TestExtractSlotsIdempotent(t *testing.T) {
	base := mustUrl(t, "http://89.137.4.84/site/Extern.php?sectiune=program")
	cells := calendarCells(t, crossfitCell+crossfitCell)

	first, err := ExtractSlots(base, cells)
	require.NoError(t, err)
	second, err := ExtractSlots(base, cells)
	require.NoError(t, err)

	require.Empty(t, cmp.Diff(first, second))
	require.Len(t, first, 2)
}

func TestExtractSlotsMissingDate(t *testing.T) {
	cell := `<td>
		<strong>Crossfit</strong>
		<a href="Extern.php?sectiune=programari2&amp;ID_CL=85.0">x</a>
		<div id="info_85">14:00-15:00</div>
	</td>`

	_, err := ExtractSlots(nil, calendarCells(t, cell))
	require.ErrorIs(t, err, ErrMalformedSlot)
}

func TestExtractSlotsMissingTimeRange(t *testing.T) {
	cell := `<td>
		<strong>Crossfit</strong>
		<a href="Extern.php?sectiune=programari2&amp;wData=09-04-2016">x</a>
		<div id="info_85">fara program</div>
	</td>`

	_, err := ExtractSlots(nil, calendarCells(t, cell))
	require.ErrorIs(t, err, ErrMalformedSlot)
}

func TestStartFromInfoText(t *testing.T) {
	testCases := []struct {
		text     string
		expected Clock
		fails    bool
	}{
		{text: "Crossfit incepatori 07:00-08:00", expected: Clock{7, 0}},
		{text: "14:00-15:00", expected: Clock{14, 0}},
		{text: "Crossfit incepatori 07:00-08:00 (plin)", fails: true},
		{text: "", fails: true},
	}

	for _, test := range testCases {
		clock, err := startFromInfoText(test.text)
		if test.fails {
			require.Error(t, err, test.text)
			continue
		}
		require.NoError(t, err, test.text)
		require.Equal(t, test.expected, clock, test.text)
	}
}
