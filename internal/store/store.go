// Package store defines the local entity store contracts implemented by
// concrete backends. Point reads and live queries are separate APIs: Get/List
// return a single snapshot, Watch returns a channel that emits the current
// result set immediately and again after every relevant mutation.
package store

import (
	"context"

	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/model"
)

// Events provides CRUD and live queries over locally stored events.
type Events interface {
	// Get returns the event or errs.ErrNotFound.
	Get(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	Watch(ctx context.Context) <-chan []model.Event
	// Save upserts the event; a blank id is assigned and returned.
	Save(ctx context.Context, e *model.Event) (string, error)
	// Delete removes the event and cascades to its todos, to-buys and
	// participants.
	Delete(ctx context.Context, id string) error
	// SetTodoCounts overwrites the denormalized counters.
	SetTodoCounts(ctx context.Context, id string, total, completed int) error
	Count(ctx context.Context) (int, error)
}

// Todos provides CRUD and live queries over locally stored todos. Every
// mutation recomputes the parent event's denormalized counters inside the
// same transaction.
type Todos interface {
	Get(ctx context.Context, id string) (*model.Todo, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Todo, error)
	Watch(ctx context.Context, eventID string) <-chan []model.Todo
	Save(ctx context.Context, t *model.Todo) (string, error)
	SetDone(ctx context.Context, id string, done bool) error
	SetPriority(ctx context.Context, id string, priority bool) error
	Delete(ctx context.Context, id string) error
	// CountPriority counts priority todos across all events.
	CountPriority(ctx context.Context) (int, error)
}

// ToBuys provides CRUD and live queries over locally stored shopping items.
type ToBuys interface {
	Get(ctx context.Context, id string) (*model.ToBuy, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.ToBuy, error)
	Watch(ctx context.Context, eventID string) <-chan []model.ToBuy
	Save(ctx context.Context, b *model.ToBuy) (string, error)
	SetBought(ctx context.Context, id string, bought bool) error
	SetPriority(ctx context.Context, id string, priority bool) error
	SetQuantity(ctx context.Context, id string, quantity int) error
	Delete(ctx context.Context, id string) error
}

// Participants provides access to event participants.
type Participants interface {
	ListByEvent(ctx context.Context, eventID string) ([]model.Participant, error)
	Add(ctx context.Context, eventID, name string) (int64, error)
	Remove(ctx context.Context, id int64) error
}
