package quest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emberworks/questengine/model"
	"github.com/emberworks/questengine/scheduler"
	"go.uber.org/zap"
)

// ExpiryReason is the failure reason recorded when a timed run hard-fails.
const ExpiryReason = "expired"

// CheckExpiry expires one run if its deadline has passed. Quests with
// hard_fail_on_expire fail (counting the failure); others are quietly
// retired with an EXPIRE history row and no counter bump. Returns false
// when the run is not ACTIVE, has no deadline or the deadline is still
// ahead.
func (e *Engine) CheckExpiry(ctx context.Context, playerID, questID string, now time.Time) (bool, error) {
	def, ok := e.registry.Get(questID)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownQuest, questID)
	}
	st, err := e.store.GetOrCreateState(ctx, playerID, questID)
	if err != nil {
		return false, err
	}
	return e.expireRun(ctx, def, st, now)
}

func (e *Engine) expireRun(ctx context.Context, def *QuestDefinition, st *model.PlayerQuestState, now time.Time) (bool, error) {
	if st.State != model.RunActive || st.ExpiresAt == nil || now.Before(*st.ExpiresAt) {
		return false, nil
	}
	if def.Timing.HardFailOnExpire {
		st.FailedAt = &now
		st.TimesFailed++
		return e.endRun(ctx, def, st, HistoryFail, ResultFail, &TransitionMeta{Reason: ExpiryReason})
	}
	return e.endRun(ctx, def, st, HistoryExpire, ResultExpire, &TransitionMeta{Reason: ExpiryReason})
}

// SweepExpired expires every overdue ACTIVE run and returns how many runs
// it retired. Rows that race a concurrent transition (stale version) are
// skipped; the next sweep sees their final state.
func (e *Engine) SweepExpired(ctx context.Context) (int, error) {
	now := e.now()
	states, err := e.store.ExpiredActive(ctx, now)
	if err != nil {
		return 0, err
	}
	expired := 0
	for i := range states {
		st := states[i]
		def, ok := e.registry.Get(st.QuestID)
		if !ok {
			e.logger.Warn("expired run references unknown quest",
				zap.String("player_id", st.PlayerID),
				zap.String("quest_id", st.QuestID))
			continue
		}
		changed, err := e.expireRun(ctx, def, &st, now)
		if errors.Is(err, ErrStaleState) {
			continue
		}
		if err != nil {
			return expired, err
		}
		if changed {
			expired++
		}
	}
	if expired > 0 {
		e.logger.Info("quest expiry sweep", zap.Int("expired", expired))
	}
	return expired, nil
}

// StartExpirySweep registers the periodic expiry sweep on the scheduler.
func (e *Engine) StartExpirySweep(s *scheduler.Scheduler, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	s.AddTicker("quest-expiry-sweep", interval, func() {
		if _, err := e.SweepExpired(context.Background()); err != nil {
			e.logger.Error("quest expiry sweep failed", zap.Error(err))
		}
	})
}
