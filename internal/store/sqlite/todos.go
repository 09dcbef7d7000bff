package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gofrs/uuid/v5"

	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/errs"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/model"
)

// Todos implements store.Todos on SQLite. Every mutation recomputes the
// parent event's denormalized counters in the same transaction, so the cache
// can never drift from the true counts.
type Todos struct{ db *DB }

// NewTodos constructs the todo store.
func NewTodos(db *DB) *Todos { return &Todos{db: db} }

const todoColumns = `id, title, is_done, assignee, event_id, is_priority`

func scanTodo(row interface{ Scan(...any) error }) (*model.Todo, error) {
	var t model.Todo
	if err := row.Scan(&t.ID, &t.Title, &t.Done, &t.Assignee, &t.EventID, &t.Priority); err != nil {
		return nil, err
	}
	return &t, nil
}

// Get returns a single todo by id.
func (s *Todos) Get(ctx context.Context, id string) (*model.Todo, error) {
	row := s.db.sql.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id=?`, id)
	t, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	return t, err
}

// ListByEvent returns the event's todos, priority first.
func (s *Todos) ListByEvent(ctx context.Context, eventID string) ([]model.Todo, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE event_id=? ORDER BY is_priority DESC, title ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// Watch emits the event's todo list and re-emits after every todo mutation
// for that event.
func (s *Todos) Watch(ctx context.Context, eventID string) <-chan []model.Todo {
	out := make(chan []model.Todo, 1)
	sig := s.db.hub.subscribe(topicTodos + eventID)
	go func() {
		defer close(out)
		defer s.db.hub.unsubscribe(topicTodos+eventID, sig)
		for {
			if ts, err := s.ListByEvent(ctx, eventID); err == nil {
				select {
				case out <- ts:
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

// Save upserts the todo and refreshes the parent event's counters
// atomically. A blank id is assigned.
func (s *Todos) Save(ctx context.Context, t *model.Todo) (id string, err error) {
	if t.EventID == "" {
		return "", errors.New("todo without event id")
	}
	if t.ID == "" {
		uid, uerr := uuid.NewV4()
		if uerr != nil {
			return "", uerr
		}
		t.ID = uid.String()
	}

	tx, err := s.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	const q = `
INSERT INTO todos (id, title, is_done, assignee, event_id, is_priority)
VALUES (?,?,?,?,?,?)
ON CONFLICT(id) DO UPDATE SET
  title=excluded.title, is_done=excluded.is_done, assignee=excluded.assignee,
  is_priority=excluded.is_priority`
	if _, err = tx.ExecContext(ctx, q, t.ID, t.Title, t.Done, t.Assignee, t.EventID, t.Priority); err != nil {
		return "", err
	}
	if err = refreshCounts(ctx, tx, t.EventID); err != nil {
		return "", err
	}
	s.db.hub.notify(topicTodos+t.EventID, topicEvents)
	return t.ID, nil
}

// SetDone flips the completion flag and refreshes counters.
func (s *Todos) SetDone(ctx context.Context, id string, done bool) error {
	return s.update(ctx, id, `UPDATE todos SET is_done=? WHERE id=?`, done)
}

// SetPriority flips the priority flag.
func (s *Todos) SetPriority(ctx context.Context, id string, priority bool) error {
	return s.update(ctx, id, `UPDATE todos SET is_priority=? WHERE id=?`, priority)
}

func (s *Todos) update(ctx context.Context, id, q string, v any) (err error) {
	tx, err := s.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	var eventID string
	if err = tx.QueryRowContext(ctx, `SELECT event_id FROM todos WHERE id=?`, id).Scan(&eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}
	if _, err = tx.ExecContext(ctx, q, v, id); err != nil {
		return err
	}
	if err = refreshCounts(ctx, tx, eventID); err != nil {
		return err
	}
	s.db.hub.notify(topicTodos+eventID, topicEvents)
	return nil
}

// Delete removes the todo and refreshes counters.
func (s *Todos) Delete(ctx context.Context, id string) (err error) {
	tx, err := s.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	var eventID string
	if err = tx.QueryRowContext(ctx, `SELECT event_id FROM todos WHERE id=?`, id).Scan(&eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM todos WHERE id=?`, id); err != nil {
		return err
	}
	if err = refreshCounts(ctx, tx, eventID); err != nil {
		return err
	}
	s.db.hub.notify(topicTodos+eventID, topicEvents)
	return nil
}

// CountPriority counts priority todos across all events.
func (s *Todos) CountPriority(ctx context.Context) (int, error) {
	var n int
	err := s.db.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM todos WHERE is_priority=1`).Scan(&n)
	return n, err
}

// refreshCounts recomputes an event's denormalized todo counters from the
// todos table within the caller's transaction.
func refreshCounts(ctx context.Context, tx *sql.Tx, eventID string) error {
	const q = `
UPDATE events SET
  todo_count = (SELECT COUNT(*) FROM todos WHERE event_id=?1),
  completed_todo_count = (SELECT COUNT(*) FROM todos WHERE event_id=?1 AND is_done=1)
WHERE id=?1`
	_, err := tx.ExecContext(ctx, q, eventID)
	return err
}
