// Package remote defines the cloud document store contracts and the typed
// documents exchanged with it. Field names of the documents follow the wire
// schema of the existing backend (event_name, attributed_to, ...); the
// postgres subpackage is the single encode/decode boundary.
package remote

import (
	"context"
	"time"
)

// Participant roles recorded in an event's role map.
const (
	RoleCreator     = "creator"
	RoleParticipant = "participant"
)

// EventDoc mirrors a remote event document.
type EventDoc struct {
	ID           string
	Name         string    // event_name
	Date         time.Time // event_date; zero value means absent
	Location     string
	Description  string
	Color        *int32
	Participants map[string]string // role -> user id
	TodoIDs      []string
	ToBuyIDs     []string
}

// TodoDoc mirrors a remote todo document. Urgent is the remote analog of the
// local priority flag.
type TodoDoc struct {
	ID           string
	Title        string
	Done         bool   // is_done
	AttributedTo string // attributed_to
	EventID      string
	Urgent       bool // is_urgent
}

// ToBuyDoc mirrors a remote shopping item document.
type ToBuyDoc struct {
	ID           string
	Title        string
	Quantity     int
	Price        *float64
	Bought       bool // is_bought
	AttributedTo string
	EventID      string
	Urgent       bool
}

// UserDoc mirrors a remote user document, including server-side credentials.
type UserDoc struct {
	ID         string
	Username   string
	Email      string
	Premium    bool
	PwdHash    []byte
	SaltAuth   []byte
	Vegetarian bool
	Vegan      bool
	GlutenFree bool
	Allergies  string
	Events     map[string]string // event id -> role
	CreatedAt  time.Time
}

// EventDocs provides point reads and per-field partial updates over the
// remote events collection. All reads are one-shot snapshots; the syncer
// deliberately never holds a live subscription.
type EventDocs interface {
	// Get returns the document or errs.ErrNotFound.
	Get(ctx context.Context, id string) (*EventDoc, error)
	// Save upserts the document; a blank id is assigned and returned.
	Save(ctx context.Context, d *EventDoc) (string, error)
	// Delete removes the document and its child documents.
	Delete(ctx context.Context, id string) error

	AddParticipant(ctx context.Context, eventID, role, userID string) error
	RemoveParticipant(ctx context.Context, eventID, role string) error
	AddTodoID(ctx context.Context, eventID, todoID string) error
	RemoveTodoID(ctx context.Context, eventID, todoID string) error
	AddToBuyID(ctx context.Context, eventID, toBuyID string) error
	RemoveToBuyID(ctx context.Context, eventID, toBuyID string) error
}

// TodoDocs provides access to the remote todos collection.
type TodoDocs interface {
	Get(ctx context.Context, id string) (*TodoDoc, error)
	ListByEvent(ctx context.Context, eventID string) ([]TodoDoc, error)
	Save(ctx context.Context, d *TodoDoc) (string, error)
	Delete(ctx context.Context, id string) error
}

// ToBuyDocs provides access to the remote to-buys collection.
type ToBuyDocs interface {
	Get(ctx context.Context, id string) (*ToBuyDoc, error)
	ListByEvent(ctx context.Context, eventID string) ([]ToBuyDoc, error)
	Save(ctx context.Context, d *ToBuyDoc) (string, error)
	Delete(ctx context.Context, id string) error
}

// UserDocs provides access to the remote users collection and the per-user
// event map used by SyncAll to discover which events to pull.
type UserDocs interface {
	Get(ctx context.Context, id string) (*UserDoc, error)
	GetByUsername(ctx context.Context, username string) (*UserDoc, error)
	// Create inserts a new user; errs.ErrAlreadyExists on username collision.
	Create(ctx context.Context, d *UserDoc) error
	// UpdatePreferences overwrites dietary fields; errs.ErrNotFound if missing.
	UpdatePreferences(ctx context.Context, id string, vegetarian, vegan, glutenFree bool, allergies string) error

	AddEvent(ctx context.Context, userID, eventID, role string) error
	RemoveEvent(ctx context.Context, userID, eventID string) error
}
