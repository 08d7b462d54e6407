package model

import (
	"time"
)

// RunState is the lifecycle stage of one player's attempt at one quest.
type RunState string

const (
	RunLocked    RunState = "LOCKED"
	RunAvailable RunState = "AVAILABLE"
	RunActive    RunState = "ACTIVE"
	RunCompleted RunState = "COMPLETED"
	RunFailed    RunState = "FAILED"
	RunAbandoned RunState = "ABANDONED"
	RunCooldown  RunState = "COOLDOWN"
)

// PlayerQuestState tracks one player's run of one quest. Exactly one live
// row exists per (player, quest); Version guards concurrent upserts.
type PlayerQuestState struct {
	ID                    int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	PlayerID              string     `gorm:"size:64;uniqueIndex:idx_player_quest;not null" json:"player_id"`
	QuestID               string     `gorm:"size:128;uniqueIndex:idx_player_quest;not null" json:"quest_id"`
	State                 RunState   `gorm:"size:16;not null;default:LOCKED" json:"state"`
	CurrentObjectiveIndex *int       `json:"current_objective_index"` // SEQUENTIAL flow only, nil otherwise
	StartedAt             *time.Time `json:"started_at"`
	CompletedAt           *time.Time `json:"completed_at"`
	FailedAt              *time.Time `json:"failed_at"`
	ExpiresAt             *time.Time `json:"expires_at"`
	NextAvailableAt       *time.Time `json:"next_available_at"`
	TimesCompleted        int        `gorm:"default:0" json:"times_completed"`
	TimesFailed           int        `gorm:"default:0" json:"times_failed"`
	LastResult            string     `gorm:"size:16" json:"last_result"`
	Version               int64      `gorm:"default:0" json:"version"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PlayerQuestState) TableName() string { return "player_quest_states" }

// ObjectiveProgress tracks one objective's counter for one player-run.
// Progress saturates at the objective target; Completed never resets
// except by a fresh quest start.
type ObjectiveProgress struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PlayerID    string    `gorm:"size:64;uniqueIndex:idx_player_quest_obj;not null" json:"player_id"`
	QuestID     string    `gorm:"size:128;uniqueIndex:idx_player_quest_obj;not null" json:"quest_id"`
	ObjectiveID string    `gorm:"size:128;uniqueIndex:idx_player_quest_obj;not null" json:"objective_id"`
	Progress    int       `gorm:"default:0" json:"progress"`
	Completed   bool      `gorm:"default:false" json:"completed"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ObjectiveProgress) TableName() string { return "objective_progress" }
