package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/errs"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/remote"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

func eventDocRow(id string) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "event_name", "event_date", "location", "description",
		"color", "participants", "todo_ids", "to_buy_ids"}).
		AddRow(id, "BBQ", time.Date(2026, 7, 14, 19, 0, 0, 0, time.UTC), "Park", "",
			int32(5), map[string]string{remote.RoleCreator: "u1"}, []string{"t1"}, []string{})
}

func TestEventDocs_Get(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEventDocs(db)
	ctx := context.Background()

	mock.ExpectQuery(`FROM events WHERE id=\$1`).
		WithArgs("e1").
		WillReturnRows(eventDocRow("e1"))
	d, err := r.Get(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, "BBQ", d.Name)
	require.Equal(t, map[string]string{remote.RoleCreator: "u1"}, d.Participants)
	require.Equal(t, []string{"t1"}, d.TodoIDs)
	require.NotNil(t, d.Color)
	require.Equal(t, int32(5), *d.Color)

	mock.ExpectQuery(`FROM events WHERE id=\$1`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.Get(ctx, "ghost")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestEventDocs_Get_AbsentDateAndColor(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEventDocs(db)

	rows := pgxmock.NewRows([]string{"id", "event_name", "event_date", "location", "description",
		"color", "participants", "todo_ids", "to_buy_ids"}).
		AddRow("e1", "BBQ", nil, "", "", nil, map[string]string{}, []string{}, []string{})
	mock.ExpectQuery(`FROM events WHERE id=\$1`).WithArgs("e1").WillReturnRows(rows)

	d, err := r.Get(context.Background(), "e1")
	require.NoError(t, err)
	require.True(t, d.Date.IsZero())
	require.Nil(t, d.Color)
}

func TestEventDocs_Save_AssignsID(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEventDocs(db)

	d := &remote.EventDoc{Name: "BBQ", Location: "Park"}
	mock.ExpectExec(`INSERT INTO events`).
		WithArgs(pgxmock.AnyArg(), "BBQ", nil, "Park", "", nil, map[string]string{}).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	id, err := r.Save(context.Background(), d)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.Equal(t, id, d.ID)
}

func TestEventDocs_Save_UpdateKeepsChildLists(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEventDocs(db)

	date := time.Date(2026, 7, 14, 19, 0, 0, 0, time.UTC)
	d := &remote.EventDoc{ID: "e1", Name: "BBQ", Date: date,
		Participants: map[string]string{remote.RoleCreator: "u1"}}

	// The upsert never writes todo_ids/to_buy_ids on conflict.
	mock.ExpectExec(`ON CONFLICT \(id\) DO UPDATE SET\s+event_name=EXCLUDED.event_name`).
		WithArgs("e1", "BBQ", date, "", "", nil, map[string]string{remote.RoleCreator: "u1"}).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	id, err := r.Save(context.Background(), d)
	require.NoError(t, err)
	require.Equal(t, "e1", id)
}

func TestEventDocs_Delete(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEventDocs(db)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM events WHERE id=\$1`).
		WithArgs("e1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, r.Delete(ctx, "e1"))

	mock.ExpectExec(`DELETE FROM events WHERE id=\$1`).
		WithArgs("ghost").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.ErrorIs(t, r.Delete(ctx, "ghost"), errs.ErrNotFound)
}

func TestEventDocs_AddTodoID(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEventDocs(db)
	ctx := context.Background()

	// New id appended.
	mock.ExpectExec(`todo_ids = todo_ids \|\| to_jsonb\(\$2::text\)`).
		WithArgs("e1", "t1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.AddTodoID(ctx, "e1", "t1"))

	// Already registered: no row updated but the event exists, still OK.
	mock.ExpectExec(`todo_ids = todo_ids \|\| to_jsonb\(\$2::text\)`).
		WithArgs("e1", "t1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT 1 FROM events WHERE id=\$1`).
		WithArgs("e1").
		WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))
	require.NoError(t, r.AddTodoID(ctx, "e1", "t1"))

	// Missing event.
	mock.ExpectExec(`todo_ids = todo_ids \|\| to_jsonb\(\$2::text\)`).
		WithArgs("ghost", "t1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT 1 FROM events WHERE id=\$1`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)
	require.ErrorIs(t, r.AddTodoID(ctx, "ghost", "t1"), errs.ErrNotFound)
}

func TestEventDocs_RemoveTodoID(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEventDocs(db)

	mock.ExpectExec(`todo_ids = todo_ids - \$2`).
		WithArgs("e1", "t1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.RemoveTodoID(context.Background(), "e1", "t1"))
}

func TestEventDocs_Participants(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEventDocs(db)
	ctx := context.Background()

	mock.ExpectExec(`participants = jsonb_set\(participants, ARRAY\[\$2\], to_jsonb\(\$3::text\)\)`).
		WithArgs("e1", remote.RoleParticipant, "u2").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.AddParticipant(ctx, "e1", remote.RoleParticipant, "u2"))

	mock.ExpectExec(`participants = participants - \$2`).
		WithArgs("e1", remote.RoleParticipant).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.RemoveParticipant(ctx, "e1", remote.RoleParticipant))

	mock.ExpectExec(`participants = participants - \$2`).
		WithArgs("ghost", remote.RoleParticipant).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, r.RemoveParticipant(ctx, "ghost", remote.RoleParticipant), errs.ErrNotFound)
}
