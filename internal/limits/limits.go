// Package limits implements the freemium business-rule gates. A gate answers
// one question, "may this user create another X right now?", as
// premium || count < limit. It exposes a one-shot check for save paths and a
// reactive stream for UI binding.
package limits

import (
	"context"
	"errors"

	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/errs"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/session"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/store"
)

// Free-tier thresholds.
const (
	MaxFreeEvents        = 3
	MaxFreePriorityTodos = 4
)

// Sessions is the slice of the session manager the gates consume.
type Sessions interface {
	Current(ctx context.Context) (session.Session, error)
	Watch(ctx context.Context) <-chan session.Session
}

// Gate is one freemium limit over a counted resource.
type Gate struct {
	sess     Sessions
	resource string
	limit    int
	count    func(ctx context.Context) (int, error)
	signal   func(ctx context.Context) <-chan struct{}
}

// NewEventGate gates event creation at MaxFreeEvents.
func NewEventGate(sess Sessions, events store.Events) *Gate {
	return &Gate{
		sess:     sess,
		resource: "events",
		limit:    MaxFreeEvents,
		count:    events.Count,
		signal: func(ctx context.Context) <-chan struct{} {
			return drain(ctx, events.Watch(ctx))
		},
	}
}

// NewPriorityTodoGate gates priority-todo creation/promotion at
// MaxFreePriorityTodos, counted across all events. The event stream doubles
// as the change signal: every todo mutation refreshes the parent event's
// counters, so the events topic fires on each one.
func NewPriorityTodoGate(sess Sessions, todos store.Todos, events store.Events) *Gate {
	return &Gate{
		sess:     sess,
		resource: "priority todos",
		limit:    MaxFreePriorityTodos,
		count:    todos.CountPriority,
		signal: func(ctx context.Context) <-chan struct{} {
			return drain(ctx, events.Watch(ctx))
		},
	}
}

// Limit returns the gate's numeric threshold.
func (g *Gate) Limit() int { return g.limit }

// CheckSync reports whether creating one more counted entity is allowed. A
// signed-out user is treated as non-premium rather than an error so local
// offline use keeps working.
func (g *Gate) CheckSync(ctx context.Context) (bool, error) {
	premium := false
	if s, err := g.sess.Current(ctx); err == nil {
		premium = s.Premium
	} else if !errors.Is(err, errs.ErrNotSignedIn) {
		return false, err
	}
	if premium {
		return true, nil
	}
	n, err := g.count(ctx)
	if err != nil {
		return false, err
	}
	return n < g.limit, nil
}

// Err returns the typed refusal for this gate.
func (g *Gate) Err() error {
	return &errs.LimitReachedError{Resource: g.resource, Limit: g.limit}
}

// Watch emits the current allowed/blocked verdict and re-emits whenever the
// session or the counted set changes. Consecutive duplicates are suppressed.
func (g *Gate) Watch(ctx context.Context) <-chan bool {
	out := make(chan bool, 1)
	go func() {
		defer close(out)

		sessCh := g.sess.Watch(ctx)
		var sigCh <-chan struct{}
		if g.signal != nil {
			sigCh = g.signal(ctx)
		}

		var last *bool
		emit := func() {
			ok, err := g.CheckSync(ctx)
			if err != nil {
				return
			}
			if last != nil && *last == ok {
				return
			}
			last = &ok
			select {
			case out <- ok:
			case <-ctx.Done():
			}
		}

		emit()
		for {
			select {
			case <-ctx.Done():
				return
			case _, open := <-sessCh:
				if !open {
					return
				}
				emit()
			case _, open := <-sigCh:
				if !open {
					return
				}
				emit()
			}
		}
	}()
	return out
}

// drain converts a typed watch stream into a bare change signal.
func drain[T any](ctx context.Context, in <-chan T) <-chan struct{} {
	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case _, open := <-in:
				if !open {
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out
}
