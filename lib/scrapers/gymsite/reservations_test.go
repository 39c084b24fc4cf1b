package gymsite

import (
	"strings"
	"testing"
	"time"

	"gymkeeper-backend/lib/timezone"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func reservationsDoc(t *testing.T, rows string) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<html><body><table id="gradient-style"><tbody>` + rows + `</tbody></table></body></html>`,
	))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

const activeRow = `<tr>
	<td>Crossfit</td><td>Sala 1</td><td>Antrenor</td>
	<td>2016-04-09</td><td>14:00</td><td>-</td><td>-</td>
	<td>Activa <a href="Extern.php?sectiune=anulare&amp;ID=12">Anuleaza</a></td>
</tr>`

const cancelledRow = `<tr>
	<td>Yoga</td><td>Sala 2</td><td>Antrenor</td>
	<td>2016-04-10</td><td>18:30</td><td>-</td><td>-</td>
	<td>Anulata</td>
</tr>`

func TestExtractReservations(t *testing.T) {
	base := mustUrl(t, "http://89.137.4.84/site/Extern.php?sectiune=programari")

	reservations, err := ExtractReservations(base, reservationsDoc(t, activeRow+cancelledRow))
	require.NoError(t, err)
	require.Len(t, reservations, 2)

	active := reservations[0]
	require.Equal(t, "Crossfit", active.Activity)
	require.Equal(t, time.Date(2016, 4, 9, 0, 0, 0, 0, timezone.Location), active.Date)
	require.Equal(t, Clock{Hour: 14, Minute: 0}, active.Start)
	require.Equal(t, StatusActive, active.Status)
	require.Equal(t,
		"http://89.137.4.84/site/Extern.php?sectiune=anulare&ID=12",
		active.CancelTarget,
	)

	cancelled := reservations[1]
	require.Equal(t, "Yoga", cancelled.Activity)
	require.Equal(t, StatusOther, cancelled.Status)
	require.Equal(t, "", cancelled.CancelTarget)
}

func TestExtractReservationsColumnDrift(t *testing.T) {
	row := `<tr><td>Crossfit</td><td>2016-04-09</td><td>14:00</td></tr>`

	_, err := ExtractReservations(nil, reservationsDoc(t, row))

	var layoutErr UnexpectedLayoutError
	require.ErrorAs(t, err, &layoutErr)
	require.Equal(t, 3, layoutErr.Columns)
}

func TestExtractReservationsBadDate(t *testing.T) {
	row := `<tr>
		<td>Crossfit</td><td>-</td><td>-</td>
		<td>09-04-2016</td><td>14:00</td><td>-</td><td>-</td>
		<td>Activa</td>
	</tr>`

	_, err := ExtractReservations(nil, reservationsDoc(t, row))
	require.Error(t, err)
}
