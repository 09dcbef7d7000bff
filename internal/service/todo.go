package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/model"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/store"
)

// TodoService defines todo use-cases.
type TodoService interface {
	// Save creates or updates a todo. Creating with priority set, or
	// promoting an existing todo to priority, is gated by the priority
	// limit; a refusal is errs.LimitReachedError and nothing is written.
	Save(ctx context.Context, t *model.Todo) (string, error)
	Get(ctx context.Context, id string) (*model.Todo, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Todo, error)
	Watch(ctx context.Context, eventID string) <-chan []model.Todo
	UpdateStatus(ctx context.Context, id string, done bool) error
	UpdatePriority(ctx context.Context, id string, priority bool) error
	Delete(ctx context.Context, id string) error
}

type TodoServiceImpl struct {
	todos store.Todos
	gate  Gate
	push  *BackgroundPusher
	log   *zap.Logger
}

// NewTodoService constructs TodoService with required dependencies.
func NewTodoService(todos store.Todos, gate Gate, push *BackgroundPusher, log *zap.Logger) *TodoServiceImpl {
	return &TodoServiceImpl{todos: todos, gate: gate, push: push, log: log}
}

// Save creates or updates a todo. Only transitions into the counted set are
// gated: a new priority todo, or an existing one being promoted. Clearing
// priority or editing other fields is never blocked.
func (s *TodoServiceImpl) Save(ctx context.Context, t *model.Todo) (string, error) {
	if t.Title == "" {
		return "", errors.New("validation: empty title")
	}
	if t.EventID == "" {
		return "", errors.New("validation: empty event id")
	}

	gated := false
	if t.Priority {
		if t.ID == "" {
			gated = true
		} else {
			cur, err := s.todos.Get(ctx, t.ID)
			if err != nil {
				return "", err
			}
			gated = !cur.Priority
		}
	}
	if gated {
		ok, err := s.gate.CheckSync(ctx)
		if err != nil {
			return "", fmt.Errorf("priority gate: %w", err)
		}
		if !ok {
			return "", s.gate.Err()
		}
	}

	id, err := s.todos.Save(ctx, t)
	if err != nil {
		return "", err
	}
	s.log.Info("todo saved", zap.String("todo_id", id), zap.String("event_id", t.EventID))
	s.pushAsync(ctx)
	return id, nil
}

// Get returns a single todo.
func (s *TodoServiceImpl) Get(ctx context.Context, id string) (*model.Todo, error) {
	return s.todos.Get(ctx, id)
}

// ListByEvent returns the event's todos.
func (s *TodoServiceImpl) ListByEvent(ctx context.Context, eventID string) ([]model.Todo, error) {
	return s.todos.ListByEvent(ctx, eventID)
}

// Watch returns the event's live todo list.
func (s *TodoServiceImpl) Watch(ctx context.Context, eventID string) <-chan []model.Todo {
	return s.todos.Watch(ctx, eventID)
}

// UpdateStatus flips the completion flag.
func (s *TodoServiceImpl) UpdateStatus(ctx context.Context, id string, done bool) error {
	if err := s.todos.SetDone(ctx, id, done); err != nil {
		return err
	}
	s.pushAsync(ctx)
	return nil
}

// UpdatePriority flips the priority flag. Only the off-to-on transition is
// gated; clearing priority always succeeds.
func (s *TodoServiceImpl) UpdatePriority(ctx context.Context, id string, priority bool) error {
	if priority {
		cur, err := s.todos.Get(ctx, id)
		if err != nil {
			return err
		}
		if !cur.Priority {
			ok, err := s.gate.CheckSync(ctx)
			if err != nil {
				return fmt.Errorf("priority gate: %w", err)
			}
			if !ok {
				return s.gate.Err()
			}
		}
	}
	if err := s.todos.SetPriority(ctx, id, priority); err != nil {
		return err
	}
	s.pushAsync(ctx)
	return nil
}

// Delete removes the todo.
func (s *TodoServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.todos.Delete(ctx, id); err != nil {
		return err
	}
	s.pushAsync(ctx)
	return nil
}

func (s *TodoServiceImpl) pushAsync(ctx context.Context) {
	if s.push == nil {
		return
	}
	s.push.Trigger(ctx)
}
