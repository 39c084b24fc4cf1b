package pending

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"gymkeeper-backend/lib/scrapers/gymsite"
	"gymkeeper-backend/lib/timezone"
)

func tempStore(t *testing.T) Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "pending.json"))
	require.NoError(t, err)

	err = store.writeAll(nil)
	require.NoError(t, err)
	return store
}

func TestEnqueueAndList(t *testing.T) {
	store := tempStore(t)

	first := Request{Email: "kim@example.com", Activity: "Crossfit", Date: "14-04-2016", Time: "18:30"}
	second := Request{Email: "kim@example.com", Activity: "Yoga", Date: "15-04-2016", Time: "07:30"}

	require.NoError(t, store.Enqueue(first))
	require.NoError(t, store.Enqueue(second))

	entries, err := store.List()
	require.NoError(t, err)
	require.Empty(t, cmp.Diff([]Request{first, second}, entries))
}

func TestEnqueueDeduplicates(t *testing.T) {
	store := tempStore(t)

	request := Request{Email: "kim@example.com", Activity: "Crossfit", Date: "14-04-2016", Time: "18:30"}
	require.NoError(t, store.Enqueue(request))
	require.NoError(t, store.Enqueue(request))

	entries, err := store.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestDifferingFieldIsNotADuplicate(t *testing.T) {
	store := tempStore(t)

	request := Request{Email: "kim@example.com", Activity: "Crossfit", Date: "14-04-2016", Time: "18:30"}
	later := request
	later.Time = "19:30"

	require.NoError(t, store.Enqueue(request))
	require.NoError(t, store.Enqueue(later))

	entries, err := store.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestMissingExplicitPath(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	_, err = store.List()
	require.ErrorIs(t, err, ErrStoragePath)
}

func TestMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending.json")
	err := os.WriteFile(path, []byte("{not json"), 0644)
	require.NoError(t, err)

	store, err := NewStore(path)
	require.NoError(t, err)

	_, err = store.List()
	require.ErrorIs(t, err, ErrStorageFormat)
}

func TestStoredFormatRoundTrip(t *testing.T) {
	date := time.Date(2016, time.April, 14, 0, 0, 0, 0, timezone.Location)
	request := NewRequest("kim@example.com", "Crossfit", date, gymsite.Clock{Hour: 18, Minute: 30})

	require.Equal(t, "14-04-2016", request.Date)
	require.Equal(t, "18:30", request.Time)

	parsed, err := request.ScheduleRequest()
	require.NoError(t, err)
	require.Equal(t, "kim@example.com", parsed.Email)
	require.Equal(t, "Crossfit", parsed.Activity)
	require.True(t, parsed.Date.Equal(date))
	require.Equal(t, gymsite.Clock{Hour: 18, Minute: 30}, parsed.Start)
}

func TestScheduleRequestBadDate(t *testing.T) {
	request := Request{Email: "kim@example.com", Activity: "Crossfit", Date: "2016-04-14", Time: "18:30"}
	_, err := request.ScheduleRequest()
	require.Error(t, err)
}
