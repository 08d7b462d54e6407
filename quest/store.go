package quest

import (
	"context"
	"errors"
	"time"

	"github.com/emberworks/questengine/model"
)

var (
	// ErrUnknownQuest is returned when an operation names a quest id the
	// registry has never loaded. This is a caller error, never a no-op.
	ErrUnknownQuest = errors.New("quest: unknown quest id")

	// ErrUnknownObjective is returned when progress is applied to an
	// objective id the quest does not declare.
	ErrUnknownObjective = errors.New("quest: unknown objective id")

	// ErrStaleState is returned by SaveState when the row was modified
	// since it was read. The caller should re-read and retry.
	ErrStaleState = errors.New("quest: stale state version")
)

// Store is the durable persistence contract for player quest state,
// objective progress and the append-only history log. Implementations can
// back it with SQL, an embedded KV store or memory for tests.
type Store interface {
	// GetOrCreateState returns the live row for (player, quest),
	// synthesizing and persisting a fresh LOCKED row on first access.
	GetOrCreateState(ctx context.Context, playerID, questID string) (*model.PlayerQuestState, error)
	// SaveState upserts the row with an optimistic version check and
	// returns ErrStaleState when the stored version moved on.
	SaveState(ctx context.Context, st *model.PlayerQuestState) error
	// StatesByPlayer lists every quest state row of one player.
	StatesByPlayer(ctx context.Context, playerID string) ([]model.PlayerQuestState, error)
	// ExpiredActive lists ACTIVE rows whose expiry timestamp is in the
	// past. Used by the expiry sweep.
	ExpiredActive(ctx context.Context, now time.Time) ([]model.PlayerQuestState, error)

	// GetProgress returns the progress row for one objective, or nil when
	// none exists yet.
	GetProgress(ctx context.Context, playerID, questID, objectiveID string) (*model.ObjectiveProgress, error)
	// ProgressByQuest lists all progress rows of one player-run.
	ProgressByQuest(ctx context.Context, playerID, questID string) ([]model.ObjectiveProgress, error)
	// SaveProgress upserts one progress row keyed (player, quest, objective).
	SaveProgress(ctx context.Context, pr *model.ObjectiveProgress) error
	// DeleteProgress removes all progress rows of one player-run.
	DeleteProgress(ctx context.Context, playerID, questID string) error

	// AppendHistory inserts one audit row. History is insert-only.
	AppendHistory(ctx context.Context, h *model.QuestHistory) error
	// HistoryByPlayer returns the newest history rows for a player,
	// optionally filtered by quest id ("" = all), newest first.
	HistoryByPlayer(ctx context.Context, playerID, questID string, limit int) ([]model.QuestHistory, error)
}
