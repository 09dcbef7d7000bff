package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/errs"
)

func tokenPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "session.jwt")
}

func TestCurrent_SignedOut(t *testing.T) {
	m := NewManager(tokenPath(t), []byte("k"))

	_, err := m.Current(context.Background())
	assert.ErrorIs(t, err, errs.ErrNotSignedIn)
}

func TestSignInSignOut(t *testing.T) {
	path := tokenPath(t)
	m := NewManager(path, []byte("k"))
	ctx := context.Background()

	s := Session{UserID: "u1", Username: "marion", Premium: true}
	require.NoError(t, m.SignIn(s, time.Hour))

	got, err := m.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, s, got)
	assert.FileExists(t, path)

	require.NoError(t, m.SignOut())
	_, err = m.Current(ctx)
	assert.ErrorIs(t, err, errs.ErrNotSignedIn)
	assert.NoFileExists(t, path)
}

func TestSignOut_WhileSignedOut(t *testing.T) {
	m := NewManager(tokenPath(t), []byte("k"))
	assert.NoError(t, m.SignOut())
}

func TestPersistsAcrossManagers(t *testing.T) {
	path := tokenPath(t)
	key := []byte("stable-key")

	first := NewManager(path, key)
	require.NoError(t, first.SignIn(Session{UserID: "u1", Username: "marion"}, time.Hour))

	second := NewManager(path, key)
	got, err := second.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "marion", got.Username)
}

func TestExpiredTokenIsSignedOut(t *testing.T) {
	path := tokenPath(t)
	key := []byte("k")

	first := NewManager(path, key)
	require.NoError(t, first.SignIn(Session{UserID: "u1"}, -time.Minute))

	second := NewManager(path, key)
	_, err := second.Current(context.Background())
	assert.ErrorIs(t, err, errs.ErrNotSignedIn)
}

func TestWrongKeyIsSignedOut(t *testing.T) {
	path := tokenPath(t)

	first := NewManager(path, []byte("key-a"))
	require.NoError(t, first.SignIn(Session{UserID: "u1"}, time.Hour))

	second := NewManager(path, []byte("key-b"))
	_, err := second.Current(context.Background())
	assert.ErrorIs(t, err, errs.ErrNotSignedIn)
}

func TestMalformedTokenIsSignedOut(t *testing.T) {
	path := tokenPath(t)
	require.NoError(t, os.WriteFile(path, []byte("not a token"), 0o600))

	m := NewManager(path, []byte("k"))
	_, err := m.Current(context.Background())
	assert.ErrorIs(t, err, errs.ErrNotSignedIn)
}

func TestWatch_EmitsCurrentAndChanges(t *testing.T) {
	m := NewManager(tokenPath(t), []byte("k"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := m.Watch(ctx)
	assert.Equal(t, Session{}, <-ch, "signed out emits the zero session")

	s := Session{UserID: "u1", Username: "marion"}
	require.NoError(t, m.SignIn(s, time.Hour))
	select {
	case got := <-ch:
		assert.Equal(t, s, got)
	case <-time.After(time.Second):
		t.Fatal("no emission after sign-in")
	}

	require.NoError(t, m.SignOut())
	select {
	case got := <-ch:
		assert.Equal(t, Session{}, got)
	case <-time.After(time.Second):
		t.Fatal("no emission after sign-out")
	}
}

func TestWatch_LatestValueWins(t *testing.T) {
	m := NewManager(tokenPath(t), []byte("k"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := m.Watch(ctx)
	<-ch // initial

	// A slow consumer sees the most recent session, not every intermediate one.
	require.NoError(t, m.SignIn(Session{UserID: "u1"}, time.Hour))
	require.NoError(t, m.SignIn(Session{UserID: "u2"}, time.Hour))

	deadline := time.After(time.Second)
	for {
		select {
		case got := <-ch:
			if got.UserID == "u2" {
				return
			}
		case <-deadline:
			t.Fatal("never observed the latest session")
		}
	}
}
