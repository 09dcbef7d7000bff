package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/model"
	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/store"
)

// ToBuyService defines shopping item use-cases. To-buy priority does not
// count against the freemium limit, so nothing here is gated.
type ToBuyService interface {
	Save(ctx context.Context, b *model.ToBuy) (string, error)
	Get(ctx context.Context, id string) (*model.ToBuy, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.ToBuy, error)
	Watch(ctx context.Context, eventID string) <-chan []model.ToBuy
	UpdateBought(ctx context.Context, id string, bought bool) error
	UpdatePriority(ctx context.Context, id string, priority bool) error
	UpdateQuantity(ctx context.Context, id string, quantity int) error
	Delete(ctx context.Context, id string) error
}

type ToBuyServiceImpl struct {
	toBuys store.ToBuys
	push   *BackgroundPusher
	log    *zap.Logger
}

// NewToBuyService constructs ToBuyService with required dependencies.
func NewToBuyService(toBuys store.ToBuys, push *BackgroundPusher, log *zap.Logger) *ToBuyServiceImpl {
	return &ToBuyServiceImpl{toBuys: toBuys, push: push, log: log}
}

// Save creates or updates a shopping item.
func (s *ToBuyServiceImpl) Save(ctx context.Context, b *model.ToBuy) (string, error) {
	if b.Title == "" {
		return "", errors.New("validation: empty title")
	}
	if b.EventID == "" {
		return "", errors.New("validation: empty event id")
	}
	id, err := s.toBuys.Save(ctx, b)
	if err != nil {
		return "", err
	}
	s.log.Info("to-buy saved", zap.String("to_buy_id", id), zap.String("event_id", b.EventID))
	s.pushAsync(ctx)
	return id, nil
}

// Get returns a single item.
func (s *ToBuyServiceImpl) Get(ctx context.Context, id string) (*model.ToBuy, error) {
	return s.toBuys.Get(ctx, id)
}

// ListByEvent returns the event's items.
func (s *ToBuyServiceImpl) ListByEvent(ctx context.Context, eventID string) ([]model.ToBuy, error) {
	return s.toBuys.ListByEvent(ctx, eventID)
}

// Watch returns the event's live item list.
func (s *ToBuyServiceImpl) Watch(ctx context.Context, eventID string) <-chan []model.ToBuy {
	return s.toBuys.Watch(ctx, eventID)
}

// UpdateBought flips the purchased flag.
func (s *ToBuyServiceImpl) UpdateBought(ctx context.Context, id string, bought bool) error {
	if err := s.toBuys.SetBought(ctx, id, bought); err != nil {
		return err
	}
	s.pushAsync(ctx)
	return nil
}

// UpdatePriority flips the priority flag. To-buy priority does not count
// against the freemium limit, so no gate applies.
func (s *ToBuyServiceImpl) UpdatePriority(ctx context.Context, id string, priority bool) error {
	if err := s.toBuys.SetPriority(ctx, id, priority); err != nil {
		return err
	}
	s.pushAsync(ctx)
	return nil
}

// UpdateQuantity overwrites the quantity.
func (s *ToBuyServiceImpl) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	if err := s.toBuys.SetQuantity(ctx, id, quantity); err != nil {
		return err
	}
	s.pushAsync(ctx)
	return nil
}

// Delete removes the item.
func (s *ToBuyServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.toBuys.Delete(ctx, id); err != nil {
		return err
	}
	s.pushAsync(ctx)
	return nil
}

func (s *ToBuyServiceImpl) pushAsync(ctx context.Context) {
	if s.push == nil {
		return
	}
	s.push.Trigger(ctx)
}
