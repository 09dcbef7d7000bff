package service

import (
	"context"
	"sync"
	"time"

	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/errs"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/model"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/remote"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/syncer"
)

// stubGate is a Gate with a fixed verdict.
type stubGate struct {
	allow  bool
	err    error
	checks int
}

func (g *stubGate) CheckSync(context.Context) (bool, error) {
	g.checks++
	return g.allow, g.err
}

func (g *stubGate) Err() error {
	return &errs.LimitReachedError{Resource: "events", Limit: 3}
}

// recPusher records push passes and signals each one.
type recPusher struct {
	mu     sync.Mutex
	pushes int
	done   chan struct{}
}

func newRecPusher() *recPusher { return &recPusher{done: make(chan struct{}, 8)} }

func (p *recPusher) PushLocalChanges(context.Context) syncer.State {
	p.mu.Lock()
	p.pushes++
	p.mu.Unlock()
	p.done <- struct{}{}
	return syncer.Success(0)
}

func (p *recPusher) wait(timeout time.Duration) bool {
	select {
	case <-p.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// recEvents is a store.Events over a map, counting writes.
type recEvents struct {
	m     map[string]model.Event
	saves int
}

func newRecEvents() *recEvents { return &recEvents{m: map[string]model.Event{}} }

func (s *recEvents) Get(_ context.Context, id string) (*model.Event, error) {
	e, ok := s.m[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &e, nil
}

func (s *recEvents) List(context.Context) ([]model.Event, error) {
	out := make([]model.Event, 0, len(s.m))
	for _, e := range s.m {
		out = append(out, e)
	}
	return out, nil
}

func (s *recEvents) Watch(context.Context) <-chan []model.Event { return nil }

func (s *recEvents) Save(_ context.Context, e *model.Event) (string, error) {
	s.saves++
	if e.ID == "" {
		e.ID = "gen-1"
	}
	s.m[e.ID] = *e
	return e.ID, nil
}

func (s *recEvents) Delete(_ context.Context, id string) error {
	if _, ok := s.m[id]; !ok {
		return errs.ErrNotFound
	}
	delete(s.m, id)
	return nil
}

func (s *recEvents) SetTodoCounts(context.Context, string, int, int) error { return nil }

func (s *recEvents) Count(context.Context) (int, error) { return len(s.m), nil }

// recTodos is a store.Todos over a map, counting writes.
type recTodos struct {
	m     map[string]model.Todo
	saves int
}

func newRecTodos() *recTodos { return &recTodos{m: map[string]model.Todo{}} }

func (s *recTodos) Get(_ context.Context, id string) (*model.Todo, error) {
	t, ok := s.m[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &t, nil
}

func (s *recTodos) ListByEvent(_ context.Context, eventID string) ([]model.Todo, error) {
	var out []model.Todo
	for _, t := range s.m {
		if t.EventID == eventID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *recTodos) Watch(context.Context, string) <-chan []model.Todo { return nil }

func (s *recTodos) Save(_ context.Context, t *model.Todo) (string, error) {
	s.saves++
	if t.ID == "" {
		t.ID = "gen-1"
	}
	s.m[t.ID] = *t
	return t.ID, nil
}

func (s *recTodos) SetDone(_ context.Context, id string, done bool) error {
	t, ok := s.m[id]
	if !ok {
		return errs.ErrNotFound
	}
	t.Done = done
	s.m[id] = t
	return nil
}

func (s *recTodos) SetPriority(_ context.Context, id string, priority bool) error {
	t, ok := s.m[id]
	if !ok {
		return errs.ErrNotFound
	}
	t.Priority = priority
	s.m[id] = t
	return nil
}

func (s *recTodos) Delete(_ context.Context, id string) error {
	delete(s.m, id)
	return nil
}

func (s *recTodos) CountPriority(context.Context) (int, error) {
	n := 0
	for _, t := range s.m {
		if t.Priority {
			n++
		}
	}
	return n, nil
}

// recToBuys is a store.ToBuys over a map, counting writes.
type recToBuys struct {
	m     map[string]model.ToBuy
	saves int
}

func newRecToBuys() *recToBuys { return &recToBuys{m: map[string]model.ToBuy{}} }

func (s *recToBuys) Get(_ context.Context, id string) (*model.ToBuy, error) {
	b, ok := s.m[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &b, nil
}

func (s *recToBuys) ListByEvent(_ context.Context, eventID string) ([]model.ToBuy, error) {
	var out []model.ToBuy
	for _, b := range s.m {
		if b.EventID == eventID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *recToBuys) Watch(context.Context, string) <-chan []model.ToBuy { return nil }

func (s *recToBuys) Save(_ context.Context, b *model.ToBuy) (string, error) {
	s.saves++
	if b.ID == "" {
		b.ID = "gen-1"
	}
	s.m[b.ID] = *b
	return b.ID, nil
}

func (s *recToBuys) SetBought(_ context.Context, id string, bought bool) error {
	b, ok := s.m[id]
	if !ok {
		return errs.ErrNotFound
	}
	b.Bought = bought
	s.m[id] = b
	return nil
}

func (s *recToBuys) SetPriority(_ context.Context, id string, priority bool) error {
	b, ok := s.m[id]
	if !ok {
		return errs.ErrNotFound
	}
	b.Priority = priority
	s.m[id] = b
	return nil
}

func (s *recToBuys) SetQuantity(_ context.Context, id string, quantity int) error {
	b, ok := s.m[id]
	if !ok {
		return errs.ErrNotFound
	}
	b.Quantity = quantity
	s.m[id] = b
	return nil
}

func (s *recToBuys) Delete(_ context.Context, id string) error {
	delete(s.m, id)
	return nil
}

// recParticipants is a store.Participants over a map.
type recParticipants struct {
	m    map[int64]model.Participant
	next int64
}

func newRecParticipants() *recParticipants {
	return &recParticipants{m: map[int64]model.Participant{}}
}

func (s *recParticipants) ListByEvent(_ context.Context, eventID string) ([]model.Participant, error) {
	var out []model.Participant
	for _, p := range s.m {
		if p.EventID == eventID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *recParticipants) Add(_ context.Context, eventID, name string) (int64, error) {
	s.next++
	s.m[s.next] = model.Participant{ID: s.next, Name: name, EventID: eventID}
	return s.next, nil
}

func (s *recParticipants) Remove(_ context.Context, id int64) error {
	delete(s.m, id)
	return nil
}

// recEventDocs records remote event deletions.
type recEventDocs struct {
	remote.EventDocs

	deleted   []string
	deleteErr error
}

func (r *recEventDocs) Delete(_ context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deleted = append(r.deleted, id)
	return nil
}

// recUserDocs records event-map removals.
type recUserDocs struct {
	remote.UserDocs

	removed []string // "userID/eventID"
}

func (r *recUserDocs) RemoveEvent(_ context.Context, userID, eventID string) error {
	r.removed = append(r.removed, userID+"/"+eventID)
	return nil
}
