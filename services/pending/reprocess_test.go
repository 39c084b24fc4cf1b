package pending

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"gymkeeper-backend/services/scheduler"
)

type stubBooker struct {
	// keyed by activity
	booked   map[string]bool
	failures map[string]error
	calls    []scheduler.Request
}

func (b *stubBooker) Schedule(ctx context.Context, request scheduler.Request) (bool, error) {
	b.calls = append(b.calls, request)
	if err := b.failures[request.Activity]; err != nil {
		return false, err
	}
	return b.booked[request.Activity], nil
}

func TestReprocessBooksAndRemoves(t *testing.T) {
	store := tempStore(t)
	request := Request{Email: "kim@example.com", Activity: "Crossfit", Date: "14-04-2016", Time: "18:30"}
	require.NoError(t, store.Enqueue(request))
	require.NoError(t, store.Enqueue(request))

	entries, err := store.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	booker := &stubBooker{booked: map[string]bool{"Crossfit": true}}
	outcomes, err := store.ReprocessAll(context.Background(), booker)
	require.NoError(t, err)

	require.Len(t, outcomes, 1)
	require.True(t, outcomes[0].Booked)
	require.Empty(t, outcomes[0].Err)
	require.Equal(t, request, outcomes[0].Request)

	entries, err = store.List()
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestReprocessKeepsDeferredInOrder(t *testing.T) {
	store := tempStore(t)
	deferred1 := Request{Email: "kim@example.com", Activity: "Yoga", Date: "15-04-2016", Time: "07:30"}
	bookable := Request{Email: "kim@example.com", Activity: "Crossfit", Date: "14-04-2016", Time: "18:30"}
	deferred2 := Request{Email: "kim@example.com", Activity: "Pilates", Date: "16-04-2016", Time: "09:00"}
	for _, r := range []Request{deferred1, bookable, deferred2} {
		require.NoError(t, store.Enqueue(r))
	}

	booker := &stubBooker{booked: map[string]bool{"Crossfit": true}}
	outcomes, err := store.ReprocessAll(context.Background(), booker)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	entries, err := store.List()
	require.NoError(t, err)
	require.Equal(t, []Request{deferred1, deferred2}, entries)
	require.Len(t, booker.calls, 3)
}

func TestReprocessReportsAndEvictsFailures(t *testing.T) {
	store := tempStore(t)
	failing := Request{Email: "kim@example.com", Activity: "Trx", Date: "14-04-2016", Time: "18:30"}
	require.NoError(t, store.Enqueue(failing))

	booker := &stubBooker{failures: map[string]error{"Trx": fmt.Errorf("no free spots")}}
	outcomes, err := store.ReprocessAll(context.Background(), booker)
	require.NoError(t, err)

	require.Len(t, outcomes, 1)
	require.False(t, outcomes[0].Booked)
	require.Contains(t, outcomes[0].Err, "no free spots")

	entries, err := store.List()
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestReprocessEvictsUnparseableEntries(t *testing.T) {
	store := tempStore(t)
	bad := Request{Email: "kim@example.com", Activity: "Crossfit", Date: "not-a-date", Time: "18:30"}
	require.NoError(t, store.Enqueue(bad))

	booker := &stubBooker{}
	outcomes, err := store.ReprocessAll(context.Background(), booker)
	require.NoError(t, err)

	require.Len(t, outcomes, 1)
	require.NotEmpty(t, outcomes[0].Err)
	require.Empty(t, booker.calls)

	entries, err := store.List()
	require.NoError(t, err)
	require.Empty(t, entries)
}
