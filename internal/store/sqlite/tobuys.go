package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gofrs/uuid/v5"

	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/errs"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/model"
)

// ToBuys implements store.ToBuys on SQLite.
type ToBuys struct{ db *DB }

// NewToBuys constructs the shopping item store.
func NewToBuys(db *DB) *ToBuys { return &ToBuys{db: db} }

const toBuyColumns = `id, title, quantity, price, is_bought, assignee, event_id, is_priority`

func scanToBuy(row interface{ Scan(...any) error }) (*model.ToBuy, error) {
	var (
		b     model.ToBuy
		price sql.NullFloat64
	)
	if err := row.Scan(&b.ID, &b.Title, &b.Quantity, &price, &b.Bought, &b.Assignee, &b.EventID, &b.Priority); err != nil {
		return nil, err
	}
	if price.Valid {
		v := price.Float64
		b.Price = &v
	}
	return &b, nil
}

func nullPrice(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

// Get returns a single item by id.
func (s *ToBuys) Get(ctx context.Context, id string) (*model.ToBuy, error) {
	row := s.db.sql.QueryRowContext(ctx, `SELECT `+toBuyColumns+` FROM to_buys WHERE id=?`, id)
	b, err := scanToBuy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	return b, err
}

// ListByEvent returns the event's shopping items, priority first.
func (s *ToBuys) ListByEvent(ctx context.Context, eventID string) ([]model.ToBuy, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT `+toBuyColumns+` FROM to_buys WHERE event_id=? ORDER BY is_priority DESC, title ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ToBuy
	for rows.Next() {
		b, err := scanToBuy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// Watch emits the event's item list and re-emits after every mutation for
// that event.
func (s *ToBuys) Watch(ctx context.Context, eventID string) <-chan []model.ToBuy {
	out := make(chan []model.ToBuy, 1)
	sig := s.db.hub.subscribe(topicToBuys + eventID)
	go func() {
		defer close(out)
		defer s.db.hub.unsubscribe(topicToBuys+eventID, sig)
		for {
			if bs, err := s.ListByEvent(ctx, eventID); err == nil {
				select {
				case out <- bs:
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

// Save upserts the item. A blank id is assigned; quantity is clamped to >= 1.
func (s *ToBuys) Save(ctx context.Context, b *model.ToBuy) (string, error) {
	if b.EventID == "" {
		return "", errors.New("to-buy without event id")
	}
	if b.ID == "" {
		uid, err := uuid.NewV4()
		if err != nil {
			return "", err
		}
		b.ID = uid.String()
	}
	if b.Quantity < 1 {
		b.Quantity = 1
	}
	const q = `
INSERT INTO to_buys (id, title, quantity, price, is_bought, assignee, event_id, is_priority)
VALUES (?,?,?,?,?,?,?,?)
ON CONFLICT(id) DO UPDATE SET
  title=excluded.title, quantity=excluded.quantity, price=excluded.price,
  is_bought=excluded.is_bought, assignee=excluded.assignee, is_priority=excluded.is_priority`
	_, err := s.db.sql.ExecContext(ctx, q,
		b.ID, b.Title, b.Quantity, nullPrice(b.Price), b.Bought, b.Assignee, b.EventID, b.Priority)
	if err != nil {
		return "", err
	}
	s.db.hub.notify(topicToBuys + b.EventID)
	return b.ID, nil
}

// SetBought flips the purchased flag.
func (s *ToBuys) SetBought(ctx context.Context, id string, bought bool) error {
	return s.update(ctx, id, `UPDATE to_buys SET is_bought=? WHERE id=?`, bought)
}

// SetPriority flips the priority flag. Unlike todo priority this is purely
// cosmetic ordering; it is not counted by any gate.
func (s *ToBuys) SetPriority(ctx context.Context, id string, priority bool) error {
	return s.update(ctx, id, `UPDATE to_buys SET is_priority=? WHERE id=?`, priority)
}

// SetQuantity overwrites the quantity (minimum 1).
func (s *ToBuys) SetQuantity(ctx context.Context, id string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	return s.update(ctx, id, `UPDATE to_buys SET quantity=? WHERE id=?`, quantity)
}

func (s *ToBuys) update(ctx context.Context, id, q string, v any) error {
	var eventID string
	if err := s.db.sql.QueryRowContext(ctx, `SELECT event_id FROM to_buys WHERE id=?`, id).Scan(&eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}
	if _, err := s.db.sql.ExecContext(ctx, q, v, id); err != nil {
		return err
	}
	s.db.hub.notify(topicToBuys + eventID)
	return nil
}

// Delete removes the item.
func (s *ToBuys) Delete(ctx context.Context, id string) error {
	var eventID string
	if err := s.db.sql.QueryRowContext(ctx, `SELECT event_id FROM to_buys WHERE id=?`, id).Scan(&eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}
	if _, err := s.db.sql.ExecContext(ctx, `DELETE FROM to_buys WHERE id=?`, id); err != nil {
		return err
	}
	s.db.hub.notify(topicToBuys + eventID)
	return nil
}
