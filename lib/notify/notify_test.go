package notify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gymkeeper-backend/services/pending"
)

func TestFormatOutcomes(t *testing.T) {
	body := formatOutcomes([]pending.Outcome{
		{
			Request: pending.Request{Activity: "Crossfit", Date: "14-04-2016", Time: "18:30"},
			Booked:  true,
		},
		{
			Request: pending.Request{Activity: "Yoga", Date: "15-04-2016", Time: "07:30"},
			Err:     "no free spots",
		},
	})

	require.Contains(t, body, "Crossfit on 14-04-2016 at 18:30: booked")
	require.Contains(t, body, "Yoga on 15-04-2016 at 07:30: failed (no free spots)")
}
