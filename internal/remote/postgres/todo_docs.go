package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/errs"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/remote"
)

// TodoDocs implements remote.TodoDocs using PostgreSQL.
type TodoDocs struct{ db *DB }

// NewTodoDocs constructs the todo document repository.
func NewTodoDocs(db *DB) *TodoDocs { return &TodoDocs{db: db} }

const todoDocColumns = `id, title, is_done, attributed_to, event_id, is_urgent`

// Get returns the todo document or errs.ErrNotFound.
func (r *TodoDocs) Get(ctx context.Context, id string) (*remote.TodoDoc, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+todoDocColumns+` FROM todos WHERE id=$1`, id)
	var d remote.TodoDoc
	if err := row.Scan(&d.ID, &d.Title, &d.Done, &d.AttributedTo, &d.EventID, &d.Urgent); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// ListByEvent returns all todo documents referencing the event.
func (r *TodoDocs) ListByEvent(ctx context.Context, eventID string) ([]remote.TodoDoc, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+todoDocColumns+` FROM todos WHERE event_id=$1 ORDER BY id ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []remote.TodoDoc
	for rows.Next() {
		var d remote.TodoDoc
		if err := rows.Scan(&d.ID, &d.Title, &d.Done, &d.AttributedTo, &d.EventID, &d.Urgent); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Save upserts the document and returns the id (assigning when blank).
func (r *TodoDocs) Save(ctx context.Context, d *remote.TodoDoc) (string, error) {
	if d.ID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return "", err
		}
		d.ID = id.String()
	}
	const q = `
INSERT INTO todos (id, title, is_done, attributed_to, event_id, is_urgent)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
  title=EXCLUDED.title, is_done=EXCLUDED.is_done,
  attributed_to=EXCLUDED.attributed_to, is_urgent=EXCLUDED.is_urgent`
	_, err := r.db.Pool.Exec(ctx, q, d.ID, d.Title, d.Done, d.AttributedTo, d.EventID, d.Urgent)
	if err != nil {
		return "", err
	}
	return d.ID, nil
}

// Delete removes the document.
func (r *TodoDocs) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM todos WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
