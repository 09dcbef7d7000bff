package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/errs"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/model"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/remote"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/session"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/store"
)

// Gate is the slice of a freemium gate the services consume.
type Gate interface {
	CheckSync(ctx context.Context) (bool, error)
	Err() error
}

// PartyService defines event (party) use-cases.
type PartyService interface {
	// Save creates or updates a party. Creation is gated by the event
	// limit; a refusal is errs.LimitReachedError and nothing is written.
	Save(ctx context.Context, e *model.Event) (string, error)
	Get(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	Watch(ctx context.Context) <-chan []model.Event
	// Delete removes the party locally (cascading) and remotely.
	Delete(ctx context.Context, id string) error
	AddParticipant(ctx context.Context, eventID, name string) (int64, error)
	RemoveParticipant(ctx context.Context, id int64) error
	Participants(ctx context.Context, eventID string) ([]model.Participant, error)
}

type PartyServiceImpl struct {
	events       store.Events
	participants store.Participants
	gate         Gate
	push         *BackgroundPusher
	remoteEvents remote.EventDocs
	remoteUsers  remote.UserDocs
	sess         Sessions
	log          *zap.Logger
}

// Sessions is the slice of the session manager the services consume.
type Sessions interface {
	Current(ctx context.Context) (session.Session, error)
}

// NewPartyService constructs PartyService with required dependencies.
func NewPartyService(
	events store.Events, participants store.Participants,
	gate Gate, push *BackgroundPusher,
	remoteEvents remote.EventDocs, remoteUsers remote.UserDocs,
	sess Sessions, log *zap.Logger,
) *PartyServiceImpl {
	return &PartyServiceImpl{
		events:       events,
		participants: participants,
		gate:         gate,
		push:         push,
		remoteEvents: remoteEvents,
		remoteUsers:  remoteUsers,
		sess:         sess,
		log:          log,
	}
}

// Save creates or updates a party. The gate is consulted only for brand-new
// parties (blank id); edits to existing ones are never blocked.
func (s *PartyServiceImpl) Save(ctx context.Context, e *model.Event) (string, error) {
	if e.Title == "" {
		return "", errors.New("validation: empty title")
	}
	if e.ID == "" {
		ok, err := s.gate.CheckSync(ctx)
		if err != nil {
			return "", fmt.Errorf("event gate: %w", err)
		}
		if !ok {
			return "", s.gate.Err()
		}
	}
	id, err := s.events.Save(ctx, e)
	if err != nil {
		return "", err
	}
	s.log.Info("party saved", zap.String("event_id", id))
	s.pushAsync(ctx)
	return id, nil
}

// Get returns a single party.
func (s *PartyServiceImpl) Get(ctx context.Context, id string) (*model.Event, error) {
	return s.events.Get(ctx, id)
}

// List returns all local parties.
func (s *PartyServiceImpl) List(ctx context.Context) ([]model.Event, error) {
	return s.events.List(ctx)
}

// Watch returns the live party list.
func (s *PartyServiceImpl) Watch(ctx context.Context) <-chan []model.Event {
	return s.events.Watch(ctx)
}

// Delete removes the party locally, cascading to its children, then cleans
// up the remote document and the user's event map. Remote cleanup is best
// effort: a signed-out or offline delete still removes local state.
func (s *PartyServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.events.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("party deleted", zap.String("event_id", id))

	if err := s.remoteEvents.Delete(ctx, id); err != nil && !errors.Is(err, errs.ErrNotFound) {
		s.log.Warn("remote event delete failed", zap.String("event_id", id), zap.Error(err))
		return nil
	}
	if sess, err := s.sess.Current(ctx); err == nil {
		if err := s.remoteUsers.RemoveEvent(ctx, sess.UserID, id); err != nil && !errors.Is(err, errs.ErrNotFound) {
			s.log.Warn("remote event unregister failed", zap.String("event_id", id), zap.Error(err))
		}
	}
	return nil
}

// AddParticipant attaches a display name to the party.
func (s *PartyServiceImpl) AddParticipant(ctx context.Context, eventID, name string) (int64, error) {
	if name == "" {
		return 0, errors.New("validation: empty participant name")
	}
	if _, err := s.events.Get(ctx, eventID); err != nil {
		return 0, err
	}
	return s.participants.Add(ctx, eventID, name)
}

// RemoveParticipant detaches a participant.
func (s *PartyServiceImpl) RemoveParticipant(ctx context.Context, id int64) error {
	return s.participants.Remove(ctx, id)
}

// Participants lists the party's participants.
func (s *PartyServiceImpl) Participants(ctx context.Context, eventID string) ([]model.Participant, error) {
	return s.participants.ListByEvent(ctx, eventID)
}

func (s *PartyServiceImpl) pushAsync(ctx context.Context) {
	if s.push == nil {
		return
	}
	s.push.Trigger(ctx)
}
