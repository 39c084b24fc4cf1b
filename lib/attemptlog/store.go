// Package attemptlog keeps a queryable history of every booking and
// cancellation the system attempted, and how each attempt ended.
package attemptlog

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"gymkeeper-backend/lib/attemptlog/db"
	"gymkeeper-backend/lib/osutil"

	_ "modernc.org/sqlite"
)

type Outcome string

const (
	OutcomeBooked    Outcome = "booked"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeDeferred  Outcome = "deferred"
	OutcomeFailed    Outcome = "failed"
)

type Attempt struct {
	Time      time.Time
	Email     string
	Activity  string
	ClassDate string
	ClassTime string
	Operation string
	Outcome   Outcome
	Detail    string
}

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

// Open opens (creating if needed) the attempt database at the given
// path and applies the schema. `:memory:` works for tests.
func Open(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := osutil.EnsureParentDir(path); err != nil {
			return nil, err
		}
	}
	sqlite, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	_, err = sqlite.Exec(db.Schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		sqlite.Close()
		return nil, err
	}
	return sqlite, nil
}

func (s Store) Record(ctx context.Context, attempt Attempt) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO attempt (time, email, activity, class_date, class_time, operation, outcome, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		attempt.Time.Unix(),
		attempt.Email,
		attempt.Activity,
		attempt.ClassDate,
		attempt.ClassTime,
		attempt.Operation,
		string(attempt.Outcome),
		attempt.Detail,
	)
	return err
}

// History returns a user's attempts, most recent first.
func (s Store) History(ctx context.Context, email string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT time, email, activity, class_date, class_time, operation, outcome, detail
		 FROM attempt WHERE email = ? ORDER BY time DESC, id DESC`,
		email,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var unix int64
		var outcome string
		err := rows.Scan(
			&unix, &a.Email, &a.Activity, &a.ClassDate, &a.ClassTime,
			&a.Operation, &outcome, &a.Detail,
		)
		if err != nil {
			return nil, err
		}
		a.Time = time.Unix(unix, 0)
		a.Outcome = Outcome(outcome)
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
