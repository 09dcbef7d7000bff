package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/errs"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/remote"
)

// ToBuyDocs implements remote.ToBuyDocs using PostgreSQL.
type ToBuyDocs struct{ db *DB }

// NewToBuyDocs constructs the to-buy document repository.
func NewToBuyDocs(db *DB) *ToBuyDocs { return &ToBuyDocs{db: db} }

const toBuyDocColumns = `id, title, quantity, price, is_bought, attributed_to, event_id, is_urgent`

func scanToBuyDoc(row interface{ Scan(...any) error }) (*remote.ToBuyDoc, error) {
	var (
		d     remote.ToBuyDoc
		price sql.NullFloat64
	)
	err := row.Scan(&d.ID, &d.Title, &d.Quantity, &price, &d.Bought, &d.AttributedTo, &d.EventID, &d.Urgent)
	if err != nil {
		return nil, err
	}
	if price.Valid {
		v := price.Float64
		d.Price = &v
	}
	return &d, nil
}

// Get returns the to-buy document or errs.ErrNotFound.
func (r *ToBuyDocs) Get(ctx context.Context, id string) (*remote.ToBuyDoc, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+toBuyDocColumns+` FROM to_buys WHERE id=$1`, id)
	d, err := scanToBuyDoc(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

// ListByEvent returns all to-buy documents referencing the event.
func (r *ToBuyDocs) ListByEvent(ctx context.Context, eventID string) ([]remote.ToBuyDoc, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+toBuyDocColumns+` FROM to_buys WHERE event_id=$1 ORDER BY id ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []remote.ToBuyDoc
	for rows.Next() {
		d, err := scanToBuyDoc(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// Save upserts the document and returns the id (assigning when blank).
func (r *ToBuyDocs) Save(ctx context.Context, d *remote.ToBuyDoc) (string, error) {
	if d.ID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return "", err
		}
		d.ID = id.String()
	}
	if d.Quantity < 1 {
		d.Quantity = 1
	}
	const q = `
INSERT INTO to_buys (id, title, quantity, price, is_bought, attributed_to, event_id, is_urgent)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  title=EXCLUDED.title, quantity=EXCLUDED.quantity, price=EXCLUDED.price,
  is_bought=EXCLUDED.is_bought, attributed_to=EXCLUDED.attributed_to, is_urgent=EXCLUDED.is_urgent`
	_, err := r.db.Pool.Exec(ctx, q,
		d.ID, d.Title, d.Quantity, nullPriceDoc(d.Price), d.Bought, d.AttributedTo, d.EventID, d.Urgent)
	if err != nil {
		return "", err
	}
	return d.ID, nil
}

// Delete removes the document.
func (r *ToBuyDocs) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM to_buys WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func nullPriceDoc(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
