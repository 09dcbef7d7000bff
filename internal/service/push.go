package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/MarchalTommy/A-Toute-party-planner-sub000/internal/syncer"
)

// Pusher triggers a local-to-remote reconciliation pass. Satisfied by
// *syncer.Manager.
type Pusher interface {
	PushLocalChanges(ctx context.Context) syncer.State
}

// BackgroundPusher runs push passes on their own goroutines, detached from
// the caller's cancellation. Push failures never fail the local write that
// triggered them; the result is only logged. Wait drains the in-flight
// passes so a short-lived caller does not exit mid-push.
type BackgroundPusher struct {
	push Pusher
	log  *zap.Logger
	wg   sync.WaitGroup
}

// NewBackgroundPusher constructs a BackgroundPusher over push.
func NewBackgroundPusher(push Pusher, log *zap.Logger) *BackgroundPusher {
	return &BackgroundPusher{push: push, log: log}
}

// Trigger starts one push pass in the background.
func (p *BackgroundPusher) Trigger(ctx context.Context) {
	p.wg.Add(1)
	go func(ctx context.Context) {
		defer p.wg.Done()
		if st := p.push.PushLocalChanges(ctx); st.Phase == syncer.PhaseError {
			p.log.Warn("background push failed", zap.String("state", st.String()), zap.Error(st.Cause))
		}
	}(context.WithoutCancel(ctx))
}

// Wait blocks until every triggered push has finished.
func (p *BackgroundPusher) Wait() {
	p.wg.Wait()
}
