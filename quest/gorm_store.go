package quest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/emberworks/questengine/cache"
	"github.com/emberworks/questengine/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormStore is the SQL-backed Store. An optional cache front is used as a
// read-through for state rows; cache failures are logged and ignored, the
// database stays authoritative.
type GormStore struct {
	db       *gorm.DB
	cache    cache.Cache // nil disables caching
	stateTTL time.Duration
	logger   *zap.Logger
}

// NewGormStore creates a GormStore. Pass a nil cache to disable the state
// read cache.
func NewGormStore(db *gorm.DB, c cache.Cache, stateTTL time.Duration, logger *zap.Logger) *GormStore {
	if stateTTL <= 0 {
		stateTTL = 5 * time.Minute
	}
	return &GormStore{db: db, cache: c, stateTTL: stateTTL, logger: logger}
}

func stateCacheKey(playerID, questID string) string {
	return "quest:state:" + playerID + ":" + questID
}

func (s *GormStore) GetOrCreateState(ctx context.Context, playerID, questID string) (*model.PlayerQuestState, error) {
	if st := s.cachedState(ctx, playerID, questID); st != nil {
		return st, nil
	}

	var st model.PlayerQuestState
	err := s.db.WithContext(ctx).
		Where("player_id = ? AND quest_id = ?", playerID, questID).
		First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		st = model.PlayerQuestState{
			PlayerID: playerID,
			QuestID:  questID,
			State:    model.RunLocked,
			Version:  1,
		}
		if cerr := s.db.WithContext(ctx).Create(&st).Error; cerr != nil {
			return nil, fmt.Errorf("create quest state: %w", cerr)
		}
	} else if err != nil {
		return nil, fmt.Errorf("load quest state: %w", err)
	}

	s.cacheState(ctx, &st)
	return &st, nil
}

func (s *GormStore) SaveState(ctx context.Context, st *model.PlayerQuestState) error {
	if st.ID == 0 {
		st.Version = 1
		if err := s.db.WithContext(ctx).Create(st).Error; err != nil {
			return fmt.Errorf("create quest state: %w", err)
		}
		s.invalidateState(ctx, st.PlayerID, st.QuestID)
		return nil
	}

	res := s.db.WithContext(ctx).Model(&model.PlayerQuestState{}).
		Where("id = ? AND version = ?", st.ID, st.Version).
		Updates(map[string]interface{}{
			"state":                   st.State,
			"current_objective_index": st.CurrentObjectiveIndex,
			"started_at":              st.StartedAt,
			"completed_at":            st.CompletedAt,
			"failed_at":               st.FailedAt,
			"expires_at":              st.ExpiresAt,
			"next_available_at":       st.NextAvailableAt,
			"times_completed":         st.TimesCompleted,
			"times_failed":            st.TimesFailed,
			"last_result":             st.LastResult,
			"version":                 st.Version + 1,
		})
	if res.Error != nil {
		return fmt.Errorf("save quest state: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	st.Version++
	s.invalidateState(ctx, st.PlayerID, st.QuestID)
	return nil
}

func (s *GormStore) StatesByPlayer(ctx context.Context, playerID string) ([]model.PlayerQuestState, error) {
	var states []model.PlayerQuestState
	err := s.db.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("quest_id").
		Find(&states).Error
	if err != nil {
		return nil, fmt.Errorf("list quest states: %w", err)
	}
	return states, nil
}

func (s *GormStore) ExpiredActive(ctx context.Context, now time.Time) ([]model.PlayerQuestState, error) {
	var states []model.PlayerQuestState
	err := s.db.WithContext(ctx).
		Where("state = ? AND expires_at IS NOT NULL AND expires_at <= ?", model.RunActive, now).
		Find(&states).Error
	if err != nil {
		return nil, fmt.Errorf("list expired quest states: %w", err)
	}
	return states, nil
}

func (s *GormStore) GetProgress(ctx context.Context, playerID, questID, objectiveID string) (*model.ObjectiveProgress, error) {
	var pr model.ObjectiveProgress
	err := s.db.WithContext(ctx).
		Where("player_id = ? AND quest_id = ? AND objective_id = ?", playerID, questID, objectiveID).
		First(&pr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load objective progress: %w", err)
	}
	return &pr, nil
}

func (s *GormStore) ProgressByQuest(ctx context.Context, playerID, questID string) ([]model.ObjectiveProgress, error) {
	var rows []model.ObjectiveProgress
	err := s.db.WithContext(ctx).
		Where("player_id = ? AND quest_id = ?", playerID, questID).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list objective progress: %w", err)
	}
	return rows, nil
}

func (s *GormStore) SaveProgress(ctx context.Context, pr *model.ObjectiveProgress) error {
	if pr.ID == 0 {
		var existing model.ObjectiveProgress
		err := s.db.WithContext(ctx).
			Where("player_id = ? AND quest_id = ? AND objective_id = ?",
				pr.PlayerID, pr.QuestID, pr.ObjectiveID).
			First(&existing).Error
		if err == nil {
			pr.ID = existing.ID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("load objective progress: %w", err)
		}
	}
	if err := s.db.WithContext(ctx).Save(pr).Error; err != nil {
		return fmt.Errorf("save objective progress: %w", err)
	}
	return nil
}

func (s *GormStore) DeleteProgress(ctx context.Context, playerID, questID string) error {
	err := s.db.WithContext(ctx).
		Where("player_id = ? AND quest_id = ?", playerID, questID).
		Delete(&model.ObjectiveProgress{}).Error
	if err != nil {
		return fmt.Errorf("delete objective progress: %w", err)
	}
	return nil
}

func (s *GormStore) AppendHistory(ctx context.Context, h *model.QuestHistory) error {
	if err := s.db.WithContext(ctx).Create(h).Error; err != nil {
		return fmt.Errorf("append quest history: %w", err)
	}
	return nil
}

func (s *GormStore) HistoryByPlayer(ctx context.Context, playerID, questID string, limit int) ([]model.QuestHistory, error) {
	q := s.db.WithContext(ctx).Where("player_id = ?", playerID)
	if questID != "" {
		q = q.Where("quest_id = ?", questID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []model.QuestHistory
	if err := q.Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list quest history: %w", err)
	}
	return rows, nil
}

// ---- state cache helpers ----

func (s *GormStore) cachedState(ctx context.Context, playerID, questID string) *model.PlayerQuestState {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, stateCacheKey(playerID, questID))
	if err != nil {
		return nil // miss or cache failure, fall through to DB
	}
	var st model.PlayerQuestState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		s.logger.Warn("corrupt cached quest state, dropping",
			zap.String("player_id", playerID), zap.String("quest_id", questID))
		_ = s.cache.Del(ctx, stateCacheKey(playerID, questID))
		return nil
	}
	return &st
}

func (s *GormStore) cacheState(ctx context.Context, st *model.PlayerQuestState) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, stateCacheKey(st.PlayerID, st.QuestID), string(raw), s.stateTTL); err != nil {
		s.logger.Warn("quest state cache write failed", zap.Error(err))
	}
}

func (s *GormStore) invalidateState(ctx context.Context, playerID, questID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, stateCacheKey(playerID, questID)); err != nil {
		s.logger.Warn("quest state cache invalidation failed", zap.Error(err))
	}
}
