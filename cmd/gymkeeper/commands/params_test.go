package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gymkeeper-backend/lib/scrapers/gymsite"
)

func TestCanonicalActivity(t *testing.T) {
	name, err := canonicalActivity("crossfit")
	require.NoError(t, err)
	require.Equal(t, "Crossfit", name)

	name, err = canonicalActivity("YOGA")
	require.NoError(t, err)
	require.Equal(t, "Yoga", name)

	_, err = canonicalActivity("swimming")
	require.ErrorContains(t, err, "unknown activity")
}

func TestParseClassTime(t *testing.T) {
	date, start, err := parseClassTime("14-04-2016-18:30")
	require.NoError(t, err)
	require.Equal(t, 2016, date.Year())
	require.Equal(t, time.April, date.Month())
	require.Equal(t, 14, date.Day())
	require.Equal(t, gymsite.Clock{Hour: 18, Minute: 30}, start)
}

func TestParseClassTimeRejectsBadShapes(t *testing.T) {
	for _, value := range []string{
		"14-04-2016",
		"14-04-2016-1830",
		"32-04-2016-18:30",
		"14-13-2016-18:30",
		"14-04-2016-61:30",
		"14-04-2016-18:61",
		"xx-04-2016-18:30",
	} {
		_, _, err := parseClassTime(value)
		require.Error(t, err, value)
	}
}

func TestParseClassTimeKeepsSiteTolerance(t *testing.T) {
	// the site's own forms accept 60, so the CLI does too
	_, start, err := parseClassTime("14-04-2016-60:60")
	require.NoError(t, err)
	require.Equal(t, gymsite.Clock{Hour: 60, Minute: 60}, start)
}

func TestParseRequests(t *testing.T) {
	requests, err := parseRequests("kim@example.com", "trx", []string{
		"14-04-2016-18:30",
		"15-04-2016-07:30",
	})
	require.NoError(t, err)
	require.Len(t, requests, 2)
	require.Equal(t, "Trx", requests[0].Activity)
	require.Equal(t, "kim@example.com", requests[0].Email)
	require.Equal(t, gymsite.Clock{Hour: 7, Minute: 30}, requests[1].Start)
}
