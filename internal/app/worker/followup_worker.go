package worker

import (
	"context"
	"time"

	"engagement_hub/internal/app/service"

	"go.uber.org/zap"
)

// FollowUpWorker periodically sweeps pending judge invitations and applies
// due follow-ups through the matching service. The sweep reads a snapshot
// first; each follow-up commits as its own short mutation, so the store lock
// is never held across the whole pass.
type FollowUpWorker struct {
	matching      *service.MatchingService
	sweepInterval time.Duration
	now           service.Clock
}

func NewFollowUpWorker(matching *service.MatchingService, sweepInterval time.Duration, now service.Clock) *FollowUpWorker {
	if now == nil {
		now = time.Now
	}
	return &FollowUpWorker{matching: matching, sweepInterval: sweepInterval, now: now}
}

func (w *FollowUpWorker) Start(ctx context.Context) {
	zap.S().Infow("follow-up worker started", "sweep_interval", w.sweepInterval)
	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.S().Info("follow-up worker stopping")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs one pass. Exposed so a sweep can be triggered directly.
func (w *FollowUpWorker) Sweep(ctx context.Context) {
	pending, err := w.matching.ListPendingInvitations(ctx)
	if err != nil {
		zap.S().Errorw("follow-up sweep failed to list invitations", "err", err)
		return
	}

	now := w.now()
	sent := 0
	for _, inv := range pending {
		before := inv.FollowUpCount
		updated, err := w.matching.ScheduleFollowUp(ctx, inv.ID, now)
		if err != nil {
			zap.S().Errorw("follow-up scheduling failed", "invitation_id", inv.ID, "err", err)
			continue
		}
		if updated != nil && updated.FollowUpCount > before {
			sent++
		}
	}
	if sent > 0 {
		zap.S().Infow("follow-up sweep complete", "pending", len(pending), "follow_ups_sent", sent)
	}
}
