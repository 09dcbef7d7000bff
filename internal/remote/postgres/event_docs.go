package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/errs"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/remote"
)

// EventDocs implements remote.EventDocs using PostgreSQL. The child id lists
// and the participant role map are jsonb columns mutated with per-field
// partial updates, never rewritten wholesale by Save.
type EventDocs struct{ db *DB }

// NewEventDocs constructs the event document repository.
func NewEventDocs(db *DB) *EventDocs { return &EventDocs{db: db} }

// Get returns the event document or errs.ErrNotFound.
func (r *EventDocs) Get(ctx context.Context, id string) (*remote.EventDoc, error) {
	const q = `
SELECT id, event_name, event_date, location, description, color, participants, todo_ids, to_buy_ids
FROM events WHERE id=$1`
	row := r.db.Pool.QueryRow(ctx, q, id)

	var (
		d     remote.EventDoc
		date  sql.NullTime
		color sql.NullInt32
	)
	err := row.Scan(&d.ID, &d.Name, &date, &d.Location, &d.Description, &color,
		&d.Participants, &d.TodoIDs, &d.ToBuyIDs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	if date.Valid {
		d.Date = date.Time.UTC()
	}
	if color.Valid {
		v := color.Int32
		d.Color = &v
	}
	return &d, nil
}

// Save upserts the document's own fields and returns the id (assigning a
// fresh one when blank). Child id lists are left untouched on update.
func (r *EventDocs) Save(ctx context.Context, d *remote.EventDoc) (string, error) {
	if d.ID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return "", err
		}
		d.ID = id.String()
	}
	participants := d.Participants
	if participants == nil {
		participants = map[string]string{}
	}
	const q = `
INSERT INTO events (id, event_name, event_date, location, description, color, participants, todo_ids, to_buy_ids)
VALUES ($1,$2,$3,$4,$5,$6,$7,'[]'::jsonb,'[]'::jsonb)
ON CONFLICT (id) DO UPDATE SET
  event_name=EXCLUDED.event_name, event_date=EXCLUDED.event_date,
  location=EXCLUDED.location, description=EXCLUDED.description, color=EXCLUDED.color`
	_, err := r.db.Pool.Exec(ctx, q,
		d.ID, d.Name, nullDate(d.Date), d.Location, d.Description, nullColor(d.Color), participants)
	if err != nil {
		return "", err
	}
	return d.ID, nil
}

// Delete removes the document; child todo/to-buy documents cascade.
func (r *EventDocs) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM events WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// AddParticipant records userID under role in the event's role map.
func (r *EventDocs) AddParticipant(ctx context.Context, eventID, role, userID string) error {
	const q = `UPDATE events SET participants = jsonb_set(participants, ARRAY[$2], to_jsonb($3::text)) WHERE id=$1`
	return r.exec(ctx, q, eventID, role, userID)
}

// RemoveParticipant drops the role entry from the event's role map.
func (r *EventDocs) RemoveParticipant(ctx context.Context, eventID, role string) error {
	const q = `UPDATE events SET participants = participants - $2 WHERE id=$1`
	return r.exec(ctx, q, eventID, role)
}

// AddTodoID registers a todo id in the event's list (idempotent).
func (r *EventDocs) AddTodoID(ctx context.Context, eventID, todoID string) error {
	const q = `
UPDATE events SET todo_ids = todo_ids || to_jsonb($2::text)
WHERE id=$1 AND NOT todo_ids ? $2`
	tag, err := r.db.Pool.Exec(ctx, q, eventID, todoID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either the event is missing or the id is already registered;
		// distinguish so the caller can surface missing events.
		return r.exists(ctx, eventID)
	}
	return nil
}

// RemoveTodoID removes a todo id from the event's list.
func (r *EventDocs) RemoveTodoID(ctx context.Context, eventID, todoID string) error {
	const q = `UPDATE events SET todo_ids = todo_ids - $2 WHERE id=$1`
	return r.exec(ctx, q, eventID, todoID)
}

// AddToBuyID registers a to-buy id in the event's list (idempotent).
func (r *EventDocs) AddToBuyID(ctx context.Context, eventID, toBuyID string) error {
	const q = `
UPDATE events SET to_buy_ids = to_buy_ids || to_jsonb($2::text)
WHERE id=$1 AND NOT to_buy_ids ? $2`
	tag, err := r.db.Pool.Exec(ctx, q, eventID, toBuyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.exists(ctx, eventID)
	}
	return nil
}

// RemoveToBuyID removes a to-buy id from the event's list.
func (r *EventDocs) RemoveToBuyID(ctx context.Context, eventID, toBuyID string) error {
	const q = `UPDATE events SET to_buy_ids = to_buy_ids - $2 WHERE id=$1`
	return r.exec(ctx, q, eventID, toBuyID)
}

func (r *EventDocs) exec(ctx context.Context, q string, args ...any) error {
	tag, err := r.db.Pool.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *EventDocs) exists(ctx context.Context, id string) error {
	var one int
	if err := r.db.Pool.QueryRow(ctx, `SELECT 1 FROM events WHERE id=$1`, id).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}
	return nil
}

func nullDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullColor(c *int32) any {
	if c == nil {
		return nil
	}
	return *c
}
