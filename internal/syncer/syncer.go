// Package syncer reconciles the local entity store with the remote document
// store. The merge is deliberately direction-by-call-site: a pull (SyncAll,
// SyncEvent) overwrites local state from remote, a push (PushLocalChanges)
// overwrites remote state from local. There are no version vectors; whichever
// direction runs last wins. Errors never escape as Go errors: every public
// operation recovers them into an Error state.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/convert"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/errs"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/model"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/remote"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/session"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/store"
)

// Sessions is the slice of the session manager the syncer consumes.
type Sessions interface {
	Current(ctx context.Context) (session.Session, error)
}

// Manager performs one-shot reconciliation passes. It holds no locks around
// its read-modify-write sequences: concurrent pull and push for the same
// event can interleave, and a cancelled context aborts mid-pass without
// rollback. Callers must tolerate partial completion.
type Manager struct {
	log *zap.Logger

	sess Sessions

	events store.Events
	todos  store.Todos
	toBuys store.ToBuys

	remoteEvents remote.EventDocs
	remoteTodos  remote.TodoDocs
	remoteToBuys remote.ToBuyDocs
	remoteUsers  remote.UserDocs

	now func() time.Time
}

// New constructs a reconciliation manager.
func New(
	log *zap.Logger,
	sess Sessions,
	events store.Events, todos store.Todos, toBuys store.ToBuys,
	remoteEvents remote.EventDocs, remoteTodos remote.TodoDocs,
	remoteToBuys remote.ToBuyDocs, remoteUsers remote.UserDocs,
) *Manager {
	return &Manager{
		log:          log,
		sess:         sess,
		events:       events,
		todos:        todos,
		toBuys:       toBuys,
		remoteEvents: remoteEvents,
		remoteTodos:  remoteTodos,
		remoteToBuys: remoteToBuys,
		remoteUsers:  remoteUsers,
		now:          time.Now,
	}
}

// SyncAll pulls every event referenced in the signed-in user's remote event
// map. The returned channel emits Loading first, then a single terminal
// Success with the cumulative updated count, or Error. The channel is closed
// after the terminal state.
func (m *Manager) SyncAll(ctx context.Context) <-chan State {
	out := make(chan State, 2)
	go func() {
		defer close(out)
		out <- Loading()

		sess, err := m.sess.Current(ctx)
		if err != nil {
			out <- Failure("sync requires a signed-in user", err)
			return
		}

		doc, err := m.remoteUsers.Get(ctx, sess.UserID)
		if err != nil {
			out <- Failure(fmt.Sprintf("user %s not found remotely", sess.UserID), err)
			return
		}

		total := 0
		for eventID := range doc.Events {
			st := m.SyncEvent(ctx, eventID)
			if st.Phase == PhaseError {
				out <- st
				return
			}
			total += st.Updated
		}
		m.log.Info("sync all complete",
			zap.Int("events", len(doc.Events)),
			zap.Int("updated", total),
		)
		out <- Success(total)
	}()
	return out
}

// SyncEvent pulls one event and its children. The remote snapshot wins: any
// of the five event fields differing overwrites local, preserving the
// local-only todo counters. A missing remote event is an error; a pull never
// creates remote state. A missing local event is created from the remote
// snapshot, defaulting an absent remote date to now.
func (m *Manager) SyncEvent(ctx context.Context, eventID string) State {
	doc, err := m.remoteEvents.Get(ctx, eventID)
	if err != nil {
		if errsIsNotFound(err) {
			return Failure(fmt.Sprintf("event %s not found remotely", eventID), err)
		}
		return Failure("fetch remote event", err)
	}

	updated := 0
	local, err := m.events.Get(ctx, eventID)
	switch {
	case err == nil:
		if pullEventDiffers(local, doc) {
			local.Title = doc.Name
			if !doc.Date.IsZero() {
				local.Timestamp = doc.Date
			}
			local.Location = doc.Location
			local.Description = doc.Description
			local.Color = doc.Color
			if _, err := m.events.Save(ctx, local); err != nil {
				return Failure("update local event", err)
			}
			updated++
		}
	case errsIsNotFound(err):
		e := convert.EventFromDoc(doc)
		if e.Timestamp.IsZero() {
			e.Timestamp = m.now()
		}
		if _, err := m.events.Save(ctx, &e); err != nil {
			return Failure("create local event", err)
		}
		updated++
	default:
		return Failure("read local event", err)
	}

	st := m.syncEventTodos(ctx, eventID)
	if st.Phase == PhaseError {
		return st
	}
	updated += st.Updated

	st = m.syncEventToBuys(ctx, eventID)
	if st.Phase == PhaseError {
		return st
	}
	updated += st.Updated

	m.log.Debug("event synced", zap.String("event_id", eventID), zap.Int("updated", updated))
	return Success(updated)
}

// syncEventTodos pulls the event's remote todos into the local store.
// Existing local todos are overwritten field-by-field except the local-only
// priority flag; missing ones are created with priority false. Local todos
// absent remotely are left alone; remote deletions do not propagate.
func (m *Manager) syncEventTodos(ctx context.Context, eventID string) State {
	docs, err := m.remoteTodos.ListByEvent(ctx, eventID)
	if err != nil {
		return Failure("list remote todos", err)
	}

	updated := 0
	for i := range docs {
		doc := &docs[i]
		local, err := m.todos.Get(ctx, doc.ID)
		switch {
		case err == nil:
			if local.Title == doc.Title && local.Done == doc.Done && local.Assignee == doc.AttributedTo {
				continue
			}
			local.Title = doc.Title
			local.Done = doc.Done
			local.Assignee = doc.AttributedTo
			if _, err := m.todos.Save(ctx, local); err != nil {
				return Failure("update local todo", err)
			}
			updated++
		case errsIsNotFound(err):
			t := convert.TodoFromDoc(doc)
			if _, err := m.todos.Save(ctx, &t); err != nil {
				return Failure("create local todo", err)
			}
			updated++
		default:
			return Failure("read local todo", err)
		}
	}
	return Success(updated)
}

// syncEventToBuys mirrors syncEventTodos for shopping items; quantity joins
// the compared fields.
func (m *Manager) syncEventToBuys(ctx context.Context, eventID string) State {
	docs, err := m.remoteToBuys.ListByEvent(ctx, eventID)
	if err != nil {
		return Failure("list remote to-buys", err)
	}

	updated := 0
	for i := range docs {
		doc := &docs[i]
		local, err := m.toBuys.Get(ctx, doc.ID)
		switch {
		case err == nil:
			if local.Title == doc.Title && local.Bought == doc.Bought &&
				local.Assignee == doc.AttributedTo && local.Quantity == doc.Quantity {
				continue
			}
			local.Title = doc.Title
			local.Bought = doc.Bought
			local.Assignee = doc.AttributedTo
			local.Quantity = doc.Quantity
			if _, err := m.toBuys.Save(ctx, local); err != nil {
				return Failure("update local to-buy", err)
			}
			updated++
		case errsIsNotFound(err):
			b := convert.ToBuyFromDoc(doc)
			if _, err := m.toBuys.Save(ctx, &b); err != nil {
				return Failure("create local to-buy", err)
			}
			updated++
		default:
			return Failure("read local to-buy", err)
		}
	}
	return Success(updated)
}

// PushLocalChanges walks every local event and overwrites the remote side
// wherever it differs (local wins). Events missing remotely are created with
// the signed-in user as creator and registered in their event map; children
// missing remotely are created and registered in the event's id lists.
func (m *Manager) PushLocalChanges(ctx context.Context) State {
	sess, err := m.sess.Current(ctx)
	if err != nil {
		return Failure("push requires a signed-in user", err)
	}

	events, err := m.events.List(ctx)
	if err != nil {
		return Failure("list local events", err)
	}

	updated := 0
	for i := range events {
		ev := &events[i]
		n, st := m.pushEvent(ctx, sess, ev)
		if st.Phase == PhaseError {
			return st
		}
		updated += n
	}
	m.log.Info("push complete", zap.Int("events", len(events)), zap.Int("updated", updated))
	return Success(updated)
}

func (m *Manager) pushEvent(ctx context.Context, sess session.Session, ev *model.Event) (int, State) {
	updated := 0

	doc, err := m.remoteEvents.Get(ctx, ev.ID)
	switch {
	case err == nil:
		if pushEventDiffers(ev, doc) {
			upd := convert.EventToDoc(ev)
			if _, err := m.remoteEvents.Save(ctx, &upd); err != nil {
				return 0, Failure("update remote event", err)
			}
			updated++
		}
	case errsIsNotFound(err):
		nd := convert.EventToDoc(ev)
		nd.Participants = map[string]string{remote.RoleCreator: sess.UserID}
		if _, err := m.remoteEvents.Save(ctx, &nd); err != nil {
			return 0, Failure("create remote event", err)
		}
		if err := m.remoteUsers.AddEvent(ctx, sess.UserID, ev.ID, remote.RoleCreator); err != nil {
			return 0, Failure("register event for user", err)
		}
		updated++
	default:
		return 0, Failure("read remote event", err)
	}

	n, st := m.pushTodos(ctx, ev.ID)
	if st.Phase == PhaseError {
		return 0, st
	}
	updated += n

	n, st = m.pushToBuys(ctx, ev.ID)
	if st.Phase == PhaseError {
		return 0, st
	}
	updated += n

	return updated, Success(updated)
}

func (m *Manager) pushTodos(ctx context.Context, eventID string) (int, State) {
	todos, err := m.todos.ListByEvent(ctx, eventID)
	if err != nil {
		return 0, Failure("list local todos", err)
	}

	updated := 0
	for i := range todos {
		t := &todos[i]
		doc, err := m.remoteTodos.Get(ctx, t.ID)
		switch {
		case err == nil:
			if doc.Title == t.Title && doc.Done == t.Done &&
				doc.AttributedTo == t.Assignee && doc.Urgent == t.Priority {
				continue
			}
			upd := convert.TodoToDoc(t)
			if _, err := m.remoteTodos.Save(ctx, &upd); err != nil {
				return 0, Failure("update remote todo", err)
			}
			updated++
		case errsIsNotFound(err):
			nd := convert.TodoToDoc(t)
			if _, err := m.remoteTodos.Save(ctx, &nd); err != nil {
				return 0, Failure("create remote todo", err)
			}
			if err := m.remoteEvents.AddTodoID(ctx, eventID, t.ID); err != nil {
				return 0, Failure("register remote todo id", err)
			}
			updated++
		default:
			return 0, Failure("read remote todo", err)
		}
	}
	return updated, Success(updated)
}

func (m *Manager) pushToBuys(ctx context.Context, eventID string) (int, State) {
	items, err := m.toBuys.ListByEvent(ctx, eventID)
	if err != nil {
		return 0, Failure("list local to-buys", err)
	}

	updated := 0
	for i := range items {
		b := &items[i]
		doc, err := m.remoteToBuys.Get(ctx, b.ID)
		switch {
		case err == nil:
			if doc.Title == b.Title && doc.Bought == b.Bought &&
				doc.AttributedTo == b.Assignee && doc.Quantity == b.Quantity &&
				doc.Urgent == b.Priority && pricesEqual(doc.Price, b.Price) {
				continue
			}
			upd := convert.ToBuyToDoc(b)
			if _, err := m.remoteToBuys.Save(ctx, &upd); err != nil {
				return 0, Failure("update remote to-buy", err)
			}
			updated++
		case errsIsNotFound(err):
			nd := convert.ToBuyToDoc(b)
			if _, err := m.remoteToBuys.Save(ctx, &nd); err != nil {
				return 0, Failure("create remote to-buy", err)
			}
			if err := m.remoteEvents.AddToBuyID(ctx, eventID, b.ID); err != nil {
				return 0, Failure("register remote to-buy id", err)
			}
			updated++
		default:
			return 0, Failure("read remote to-buy", err)
		}
	}
	return updated, Success(updated)
}

// pullEventDiffers compares the five synchronized event fields for the pull
// direction. An absent remote date never counts as a difference: a pull must
// not clear a local timestamp.
func pullEventDiffers(e *model.Event, d *remote.EventDoc) bool {
	if e.Title != d.Name || e.Location != d.Location || e.Description != d.Description {
		return true
	}
	if !colorsEqual(e.Color, d.Color) {
		return true
	}
	return !d.Date.IsZero() && !e.Timestamp.Equal(d.Date)
}

// pushEventDiffers is the strict five-field comparison for the push
// direction: a local timestamp overwrites an absent remote date.
func pushEventDiffers(e *model.Event, d *remote.EventDoc) bool {
	if e.Title != d.Name || e.Location != d.Location || e.Description != d.Description {
		return true
	}
	if !colorsEqual(e.Color, d.Color) {
		return true
	}
	return !e.Timestamp.Equal(d.Date)
}

func colorsEqual(a, b *int32) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func pricesEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func errsIsNotFound(err error) bool { return errors.Is(err, errs.ErrNotFound) }
