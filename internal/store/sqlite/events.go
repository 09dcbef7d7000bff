package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/errs"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/model"
)

// Events implements store.Events on SQLite.
type Events struct{ db *DB }

// NewEvents constructs the event store.
func NewEvents(db *DB) *Events { return &Events{db: db} }

// Timestamps are stored as unix microseconds, matching the precision of the
// remote store so a pulled value round-trips without drift.

const eventColumns = `id, title, ts, location, description, color, todo_count, completed_todo_count`

func scanEvent(row interface{ Scan(...any) error }) (*model.Event, error) {
	var (
		e     model.Event
		ts    int64
		color sql.NullInt32
	)
	if err := row.Scan(&e.ID, &e.Title, &ts, &e.Location, &e.Description, &color, &e.TodoCount, &e.CompletedTodoCount); err != nil {
		return nil, err
	}
	e.Timestamp = time.UnixMicro(ts).UTC()
	if color.Valid {
		v := color.Int32
		e.Color = &v
	}
	return &e, nil
}

func nullColor(c *int32) any {
	if c == nil {
		return nil
	}
	return *c
}

// Get returns a single event by id.
func (s *Events) Get(ctx context.Context, id string) (*model.Event, error) {
	row := s.db.sql.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id=?`, id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	return e, err
}

// List returns all events ordered by date.
func (s *Events) List(ctx context.Context) ([]model.Event, error) {
	rows, err := s.db.sql.QueryContext(ctx, `SELECT `+eventColumns+` FROM events ORDER BY ts ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// Watch emits the current event list and re-emits after every event mutation.
func (s *Events) Watch(ctx context.Context) <-chan []model.Event {
	out := make(chan []model.Event, 1)
	sig := s.db.hub.subscribe(topicEvents)
	go func() {
		defer close(out)
		defer s.db.hub.unsubscribe(topicEvents, sig)
		for {
			if evs, err := s.List(ctx); err == nil {
				select {
				case out <- evs:
				case <-ctx.Done():
					return
				}
			}
			select {
			case <-ctx.Done():
				return
			case <-sig:
			}
		}
	}()
	return out
}

// Save upserts the event. A blank id is replaced with a fresh random one; the
// assigned id is returned. Counters are written as-is: the caller owns them
// only on insert, afterwards the todo store maintains them.
func (s *Events) Save(ctx context.Context, e *model.Event) (string, error) {
	if e.ID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return "", err
		}
		e.ID = id.String()
	}
	const q = `
INSERT INTO events (id, title, ts, location, description, color, todo_count, completed_todo_count)
VALUES (?,?,?,?,?,?,?,?)
ON CONFLICT(id) DO UPDATE SET
  title=excluded.title, ts=excluded.ts, location=excluded.location,
  description=excluded.description, color=excluded.color`
	_, err := s.db.sql.ExecContext(ctx, q,
		e.ID, e.Title, e.Timestamp.UnixMicro(), e.Location, e.Description, nullColor(e.Color),
		e.TodoCount, e.CompletedTodoCount)
	if err != nil {
		return "", err
	}
	s.db.hub.notify(topicEvents)
	return e.ID, nil
}

// Delete removes the event; todos, to-buys and participants cascade via
// foreign keys.
func (s *Events) Delete(ctx context.Context, id string) error {
	res, err := s.db.sql.ExecContext(ctx, `DELETE FROM events WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	s.db.hub.notify(topicEvents, topicTodos+id, topicToBuys+id)
	return nil
}

// SetTodoCounts overwrites the denormalized counters for an event.
func (s *Events) SetTodoCounts(ctx context.Context, id string, total, completed int) error {
	res, err := s.db.sql.ExecContext(ctx,
		`UPDATE events SET todo_count=?, completed_todo_count=? WHERE id=?`, total, completed, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	s.db.hub.notify(topicEvents)
	return nil
}

// Count returns the number of stored events.
func (s *Events) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}
