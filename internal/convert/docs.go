// Package convert maps between local domain entities and remote documents.
package convert

import (
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/model"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/remote"
)

// EventFromDoc builds a local event from a remote document. The denormalized
// todo counters start at zero; the local store maintains them afterwards.
func EventFromDoc(d *remote.EventDoc) model.Event {
	return model.Event{
		ID:          d.ID,
		Title:       d.Name,
		Timestamp:   d.Date,
		Location:    d.Location,
		Description: d.Description,
		Color:       copyColor(d.Color),
	}
}

// EventToDoc builds a remote document from a local event. Participants and
// child id lists are not carried: the remote store maintains them through
// partial updates.
func EventToDoc(e *model.Event) remote.EventDoc {
	return remote.EventDoc{
		ID:          e.ID,
		Name:        e.Title,
		Date:        e.Timestamp,
		Location:    e.Location,
		Description: e.Description,
		Color:       copyColor(e.Color),
	}
}

// TodoFromDoc builds a local todo from a remote document. Priority is a
// local-only flag and starts false.
func TodoFromDoc(d *remote.TodoDoc) model.Todo {
	return model.Todo{
		ID:       d.ID,
		Title:    d.Title,
		Done:     d.Done,
		Assignee: d.AttributedTo,
		EventID:  d.EventID,
	}
}

// TodoToDoc builds a remote document from a local todo. The local priority
// flag maps to the remote urgency analog.
func TodoToDoc(t *model.Todo) remote.TodoDoc {
	return remote.TodoDoc{
		ID:           t.ID,
		Title:        t.Title,
		Done:         t.Done,
		AttributedTo: t.Assignee,
		EventID:      t.EventID,
		Urgent:       t.Priority,
	}
}

// ToBuyFromDoc builds a local shopping item from a remote document.
func ToBuyFromDoc(d *remote.ToBuyDoc) model.ToBuy {
	return model.ToBuy{
		ID:       d.ID,
		Title:    d.Title,
		Quantity: d.Quantity,
		Price:    copyPrice(d.Price),
		Bought:   d.Bought,
		Assignee: d.AttributedTo,
		EventID:  d.EventID,
	}
}

// ToBuyToDoc builds a remote document from a local shopping item.
func ToBuyToDoc(b *model.ToBuy) remote.ToBuyDoc {
	return remote.ToBuyDoc{
		ID:           b.ID,
		Title:        b.Title,
		Quantity:     b.Quantity,
		Price:        copyPrice(b.Price),
		Bought:       b.Bought,
		AttributedTo: b.Assignee,
		EventID:      b.EventID,
		Urgent:       b.Priority,
	}
}

// UserFromDoc builds a domain user from a remote document, dropping
// credential fields.
func UserFromDoc(d *remote.UserDoc) model.User {
	return model.User{
		ID:       d.ID,
		Username: d.Username,
		Email:    d.Email,
		Premium:  d.Premium,
		Diet: model.Preferences{
			Vegetarian: d.Vegetarian,
			Vegan:      d.Vegan,
			GlutenFree: d.GlutenFree,
			Allergies:  d.Allergies,
		},
		CreatedAt: d.CreatedAt,
	}
}

func copyColor(c *int32) *int32 {
	if c == nil {
		return nil
	}
	v := *c
	return &v
}

func copyPrice(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
