// internal/recorder/recorder.go
package recorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/tamzrod/a429sched/internal/poller"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS rx_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session TEXT NOT NULL,
    timestamp TEXT NOT NULL,
    channel TEXT NOT NULL,
    label TEXT NOT NULL,
    rx_key INTEGER NOT NULL,
    frame INTEGER NOT NULL,
    status TEXT NOT NULL,
    age_ms INTEGER NOT NULL
);`

const insertSQL = `INSERT INTO rx_events(session, timestamp, channel, label, rx_key, frame, status, age_ms) VALUES(?, ?, ?, ?, ?, ?, ?, ?)`

// Recorder persists receive events to SQLite. One session id per process
// run separates recordings in the same file.
type Recorder struct {
	db      *sql.DB
	session uuid.UUID
	log     zerolog.Logger
}

// Open opens or creates the database at path.
func Open(path string, log zerolog.Logger) (*Recorder, error) {
	if path == "" {
		return nil, errors.New("recorder: path required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("recorder: open %s: %w", path, err)
	}
	// single writer goroutine; one connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("recorder: create table in %s: %w", path, err)
	}

	r := &Recorder{db: db, session: uuid.New(), log: log}
	log.Info().Str("path", path).Str("session", r.session.String()).Msg("recorder opened")
	return r, nil
}

func (r *Recorder) Session() uuid.UUID { return r.session }

// Record writes every event of res in one transaction.
func (r *Recorder) Record(ctx context.Context, res poller.PollResult) error {
	if len(res.Events) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("recorder: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("recorder: prepare: %w", err)
	}
	defer stmt.Close()

	ts := res.At.UTC().Format("2006-01-02 15:04:05.000")
	for _, ev := range res.Events {
		if _, err := stmt.ExecContext(ctx,
			r.session.String(),
			ts,
			ev.Channel.String(),
			fmt.Sprintf("%03o", ev.Frame.Label()),
			ev.Key,
			int64(ev.Frame),
			ev.Status.String(),
			ev.AgeMs,
		); err != nil {
			return fmt.Errorf("recorder: insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("recorder: commit: %w", err)
	}
	return nil
}

// Run records results from in until it is closed or ctx is cancelled.
// On cancel, results already buffered in the channel are still written.
func (r *Recorder) Run(ctx context.Context, in <-chan poller.PollResult) {
	write := func(res poller.PollResult) {
		// a cancelled ctx must not abort the final drain
		wctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.Record(wctx, res); err != nil {
			r.log.Error().Err(err).Msg("recorder write failed")
		}
	}

	for {
		select {
		case res, ok := <-in:
			if !ok {
				return
			}
			write(res)

		case <-ctx.Done():
			for len(in) > 0 {
				write(<-in)
			}
			return
		}
	}
}

// Count returns the events recorded in this session.
func (r *Recorder) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rx_events WHERE session = ?`, r.session.String(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("recorder: count: %w", err)
	}
	return n, nil
}

func (r *Recorder) Close() error {
	return r.db.Close()
}
