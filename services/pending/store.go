// Package pending is the durable queue of booking requests whose slot
// was not listed yet. Entries survive process restarts and are drained
// idempotently by reprocessing.
package pending

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gymkeeper-backend/lib/osutil"
	"gymkeeper-backend/lib/scrapers/gymsite"
	"gymkeeper-backend/lib/timezone"

	"gymkeeper-backend/services/scheduler"
)

var (
	ErrStorageFormat = fmt.Errorf("pending store is not valid JSON")
	ErrStoragePath   = fmt.Errorf("pending store path does not exist")
)

// Request is one persisted booking intent. The four fields together
// are its identity; a second enqueue of an equal request is a no-op.
type Request struct {
	Email    string `json:"email"`
	Activity string `json:"activity"`
	// DD-MM-YYYY
	Date string `json:"date"`
	// HH:MM, 24-hour
	Time string `json:"time"`
}

// NewRequest formats a typed booking request for storage.
func NewRequest(email, activity string, date time.Time, start gymsite.Clock) Request {
	return Request{
		Email:    email,
		Activity: activity,
		Date:     date.Format("02-01-2006"),
		Time:     start.String(),
	}
}

// ScheduleRequest parses the stored fields back into an engine
// request.
func (r Request) ScheduleRequest() (scheduler.Request, error) {
	date, err := time.ParseInLocation("02-01-2006", r.Date, timezone.Location)
	if err != nil {
		return scheduler.Request{}, fmt.Errorf("bad stored date %q: %w", r.Date, err)
	}
	start, err := gymsite.ParseClock(r.Time)
	if err != nil {
		return scheduler.Request{}, err
	}
	return scheduler.Request{
		Email:    r.Email,
		Activity: r.Activity,
		Date:     date,
		Start:    start,
	}, nil
}

// Store is a file-backed collection of pending requests. The whole
// collection is read, mutated and atomically rewritten on every
// change; queues are small enough that simplicity wins over partial
// updates. Concurrent writers on the same path are the caller's
// problem.
type Store struct {
	path        string
	defaultPath bool
}

// DefaultPath returns the conventional store location under the user's
// home directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".gymkeeper", "pending.json"), nil
}

// NewStore opens a store at `path`, or the default location when
// `path` is empty. A missing default file means an empty queue; a
// missing caller-specified file is an error surfaced on first access.
func NewStore(path string) (Store, error) {
	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return Store{}, err
		}
		return Store{path: defaultPath, defaultPath: true}, nil
	}
	return Store{path: path}, nil
}

// List returns the stored requests in order.
func (s Store) List() ([]Request, error) {
	return s.load()
}

// Enqueue appends a request unless an identical one is already stored.
func (s Store) Enqueue(request Request) error {
	entries, err := s.load()
	if err != nil {
		return err
	}

	for _, existing := range entries {
		if existing == request {
			return nil
		}
	}

	return s.writeAll(append(entries, request))
}

func (s Store) load() ([]Request, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		if s.defaultPath {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrStoragePath, s.path)
	}
	if err != nil {
		return nil, err
	}

	var entries []Request
	err = json.Unmarshal(raw, &entries)
	if err != nil {
		return nil, fmt.Errorf("%w: check the file at %s: %v", ErrStorageFormat, s.path, err)
	}
	return entries, nil
}

// writeAll replaces the collection on disk. The new content lands in a
// temporary file first and is renamed over the old one, so a crash
// mid-write leaves the previous set intact rather than a truncated
// file.
func (s Store) writeAll(entries []Request) error {
	if err := osutil.EnsureParentDir(s.path); err != nil {
		return err
	}

	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".pending-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
