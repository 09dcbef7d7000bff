package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/errs"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/remote"
)

// UserDocs implements remote.UserDocs using PostgreSQL.
type UserDocs struct{ db *DB }

// NewUserDocs constructs the user document repository.
func NewUserDocs(db *DB) *UserDocs { return &UserDocs{db: db} }

const userDocColumns = `id, username, email, is_premium, pwd_hash, salt_auth,
is_vegetarian, is_vegan, is_gluten_free, allergies, events, created_at`

func scanUserDoc(row pgx.Row) (*remote.UserDoc, error) {
	var d remote.UserDoc
	err := row.Scan(&d.ID, &d.Username, &d.Email, &d.Premium, &d.PwdHash, &d.SaltAuth,
		&d.Vegetarian, &d.Vegan, &d.GlutenFree, &d.Allergies, &d.Events, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// Get returns the user document or errs.ErrNotFound.
func (r *UserDocs) Get(ctx context.Context, id string) (*remote.UserDoc, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+userDocColumns+` FROM users WHERE id=$1`, id)
	return scanUserDoc(row)
}

// GetByUsername returns the user document or errs.ErrNotFound.
func (r *UserDocs) GetByUsername(ctx context.Context, username string) (*remote.UserDoc, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+userDocColumns+` FROM users WHERE username=$1`, username)
	return scanUserDoc(row)
}

// Create inserts a new user document; errs.ErrAlreadyExists when the
// username is taken. A blank id is assigned.
func (r *UserDocs) Create(ctx context.Context, d *remote.UserDoc) error {
	if d.ID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		d.ID = id.String()
	}
	const q = `
INSERT INTO users (id, username, email, is_premium, pwd_hash, salt_auth,
                   is_vegetarian, is_vegan, is_gluten_free, allergies, events)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,'{}'::jsonb)`
	_, err := r.db.Pool.Exec(ctx, q,
		d.ID, d.Username, d.Email, d.Premium, d.PwdHash, d.SaltAuth,
		d.Vegetarian, d.Vegan, d.GlutenFree, d.Allergies)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// UpdatePreferences overwrites the dietary fields.
func (r *UserDocs) UpdatePreferences(ctx context.Context, id string, vegetarian, vegan, glutenFree bool, allergies string) error {
	const q = `
UPDATE users SET is_vegetarian=$2, is_vegan=$3, is_gluten_free=$4, allergies=$5
WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, vegetarian, vegan, glutenFree, allergies)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// AddEvent records the event under the user's event map with the given role.
func (r *UserDocs) AddEvent(ctx context.Context, userID, eventID, role string) error {
	const q = `UPDATE users SET events = jsonb_set(events, ARRAY[$2], to_jsonb($3::text)) WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, userID, eventID, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// RemoveEvent drops the event from the user's event map.
func (r *UserDocs) RemoveEvent(ctx context.Context, userID, eventID string) error {
	const q = `UPDATE users SET events = events - $2 WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, userID, eventID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
