package sqlite

import (
	"context"

	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/errs"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/model"
)

// Participants implements store.Participants on SQLite.
type Participants struct{ db *DB }

// NewParticipants constructs the participant store.
func NewParticipants(db *DB) *Participants { return &Participants{db: db} }

// ListByEvent returns the event's participants in insertion order.
func (s *Participants) ListByEvent(ctx context.Context, eventID string) ([]model.Participant, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT id, name, event_id FROM participants WHERE event_id=? ORDER BY id ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Participant
	for rows.Next() {
		var p model.Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.EventID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Add inserts a participant and returns the assigned numeric id.
func (s *Participants) Add(ctx context.Context, eventID, name string) (int64, error) {
	res, err := s.db.sql.ExecContext(ctx,
		`INSERT INTO participants (name, event_id) VALUES (?,?)`, name, eventID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Remove deletes a participant by id.
func (s *Participants) Remove(ctx context.Context, id int64) error {
	res, err := s.db.sql.ExecContext(ctx, `DELETE FROM participants WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}
