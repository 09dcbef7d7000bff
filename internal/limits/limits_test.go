package limits

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/errs"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/model"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/session"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/store"
)

type stubSessions struct {
	sess  session.Session
	err   error
	watch chan session.Session
}

func (s *stubSessions) Current(context.Context) (session.Session, error) {
	return s.sess, s.err
}

func (s *stubSessions) Watch(context.Context) <-chan session.Session {
	if s.watch == nil {
		s.watch = make(chan session.Session)
	}
	return s.watch
}

// countEvents implements store.Events with a fixed count and a manual watch
// channel; only the methods the gates touch do anything.
type countEvents struct {
	n     int
	watch chan []model.Event
}

func (s *countEvents) Get(context.Context, string) (*model.Event, error) {
	return nil, errs.ErrNotFound
}
func (s *countEvents) List(context.Context) ([]model.Event, error) { return nil, nil }
func (s *countEvents) Watch(context.Context) <-chan []model.Event {
	if s.watch == nil {
		s.watch = make(chan []model.Event, 1)
	}
	return s.watch
}
func (s *countEvents) Save(context.Context, *model.Event) (string, error) { return "", nil }

func (s *countEvents) Delete(context.Context, string) error { return nil }

func (s *countEvents) SetTodoCounts(context.Context, string, int, int) error { return nil }

func (s *countEvents) Count(context.Context) (int, error) { return s.n, nil }

type countTodos struct {
	n int
}

func (s *countTodos) Get(context.Context, string) (*model.Todo, error) {
	return nil, errs.ErrNotFound
}
func (s *countTodos) ListByEvent(context.Context, string) ([]model.Todo, error) { return nil, nil }

func (s *countTodos) Watch(context.Context, string) <-chan []model.Todo { return nil }

func (s *countTodos) Save(context.Context, *model.Todo) (string, error) { return "", nil }

func (s *countTodos) SetDone(context.Context, string, bool) error { return nil }

func (s *countTodos) SetPriority(context.Context, string, bool) error { return nil }

func (s *countTodos) Delete(context.Context, string) error { return nil }

func (s *countTodos) CountPriority(context.Context) (int, error) { return s.n, nil }

var (
	_ store.Events = (*countEvents)(nil)
	_ store.Todos  = (*countTodos)(nil)
)

func TestEventGate_CheckSync(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		premium bool
		want    bool
	}{
		{"below limit", 2, false, true},
		{"at limit", 3, false, false},
		{"above limit", 5, false, false},
		{"premium at limit", 3, true, true},
		{"premium far above limit", 42, true, true},
		{"empty store", 0, false, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sess := &stubSessions{sess: session.Session{UserID: "u1", Premium: tc.premium}}
			g := NewEventGate(sess, &countEvents{n: tc.count})

			ok, err := g.CheckSync(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestPriorityTodoGate_CheckSync(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		premium bool
		want    bool
	}{
		{"below limit", 3, false, true},
		{"at limit", 4, false, false},
		{"premium at limit", 4, true, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sess := &stubSessions{sess: session.Session{UserID: "u1", Premium: tc.premium}}
			g := NewPriorityTodoGate(sess, &countTodos{n: tc.count}, &countEvents{})

			ok, err := g.CheckSync(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestGate_SignedOutIsNonPremium(t *testing.T) {
	sess := &stubSessions{err: errs.ErrNotSignedIn}

	g := NewEventGate(sess, &countEvents{n: 2})
	ok, err := g.CheckSync(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	g = NewEventGate(sess, &countEvents{n: 3})
	ok, err = g.CheckSync(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGate_SessionFailurePropagates(t *testing.T) {
	boom := errors.New("session store corrupted")
	g := NewEventGate(&stubSessions{err: boom}, &countEvents{})

	_, err := g.CheckSync(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestGate_Err(t *testing.T) {
	g := NewEventGate(&stubSessions{}, &countEvents{})

	err := g.Err()
	require.True(t, errs.IsLimitReached(err))

	var lr *errs.LimitReachedError
	require.True(t, errors.As(err, &lr))
	assert.Equal(t, "events", lr.Resource)
	assert.Equal(t, MaxFreeEvents, lr.Limit)
	assert.Contains(t, err.Error(), "premium")
}

func TestGate_WatchEmitsInitialVerdict(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess := &stubSessions{sess: session.Session{UserID: "u1"}}
	g := NewEventGate(sess, &countEvents{n: 1})

	ch := g.Watch(ctx)
	select {
	case ok := <-ch:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("no initial verdict")
	}
}

func TestGate_WatchReactsToCountChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess := &stubSessions{sess: session.Session{UserID: "u1"}}
	events := &countEvents{n: 2, watch: make(chan []model.Event, 1)}
	g := NewEventGate(sess, events)

	ch := g.Watch(ctx)
	require.True(t, <-ch, "two events out of three should be allowed")

	events.n = 3
	events.watch <- nil

	select {
	case ok := <-ch:
		assert.False(t, ok, "hitting the limit must flip the verdict")
	case <-time.After(time.Second):
		t.Fatal("no verdict after count change")
	}
}

func TestGate_WatchSuppressesDuplicates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess := &stubSessions{sess: session.Session{UserID: "u1"}}
	events := &countEvents{n: 1, watch: make(chan []model.Event, 4)}
	g := NewEventGate(sess, events)

	ch := g.Watch(ctx)
	require.True(t, <-ch)

	// Same verdict after each signal: nothing further should arrive.
	events.watch <- nil
	events.watch <- nil

	select {
	case ok, open := <-ch:
		if open {
			t.Fatalf("unexpected duplicate verdict %v", ok)
		}
	case <-time.After(200 * time.Millisecond):
	}
}

func TestGate_WatchReactsToSessionChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess := &stubSessions{
		sess:  session.Session{UserID: "u1"},
		watch: make(chan session.Session, 1),
	}
	g := NewEventGate(sess, &countEvents{n: 3})

	ch := g.Watch(ctx)
	require.False(t, <-ch, "free user at the limit is blocked")

	sess.sess.Premium = true
	sess.watch <- sess.sess

	select {
	case ok := <-ch:
		assert.True(t, ok, "upgrading to premium must unblock")
	case <-time.After(time.Second):
		t.Fatal("no verdict after session change")
	}
}
