// Package model defines domain entities used by services, stores and the syncer.
package model

import "time"

// Event (a "party") is the root aggregate owning participants, todos and to-buys.
// TodoCount/CompletedTodoCount are a denormalized cache over the event's todos;
// the store recomputes them inside the same transaction as any todo write.
type Event struct {
	ID          string // blank on create means "assign a new random id"
	Title       string
	Timestamp   time.Time
	Location    string
	Description string
	Color       *int32 // optional accent color

	TodoCount          int
	CompletedTodoCount int
}

// Participant is a display name attached to an event. It is not a user
// reference; the numeric id is assigned by the local store.
type Participant struct {
	ID      int64
	Name    string
	EventID string
}

// Todo is a task attached to an event. Priority is a local-only flag: a pull
// never overwrites it, a push writes it to the remote urgency analog.
type Todo struct {
	ID       string
	Title    string
	Done     bool
	Assignee string // optional, free-form name
	EventID  string
	Priority bool
}

// ToBuy is a shopping item attached to an event.
type ToBuy struct {
	ID       string
	Title    string
	Quantity int      // >= 1
	Price    *float64 // optional estimated price
	Bought   bool
	Assignee string
	EventID  string
	Priority bool
}

// Preferences holds a user's dietary fields.
type Preferences struct {
	Vegetarian bool
	Vegan      bool
	GlutenFree bool
	Allergies  string
}

// User is an account as seen by services. Credentials never leave the remote
// store; Premium removes the freemium limits.
type User struct {
	ID        string
	Username  string
	Email     string
	Premium   bool
	Diet      Preferences
	CreatedAt time.Time
}
