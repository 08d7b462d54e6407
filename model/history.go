package model

import (
	"time"

	"gorm.io/datatypes"
)

// QuestHistory is an append-only audit record of one realized quest
// transition. Rows are never updated or deleted.
type QuestHistory struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	PlayerID  string         `gorm:"size:64;index:idx_history_player;not null" json:"player_id"`
	QuestID   string         `gorm:"size:128;index:idx_history_player;not null" json:"quest_id"`
	QuestType string         `gorm:"size:64" json:"quest_type"`
	Action    string         `gorm:"size:32;not null" json:"action"`
	FromState RunState       `gorm:"size:16" json:"from_state"`
	ToState   RunState       `gorm:"size:16" json:"to_state"`
	World     string         `gorm:"size:64" json:"world"`
	X         float64        `json:"x"`
	Y         float64        `json:"y"`
	Z         float64        `json:"z"`
	Extra     datatypes.JSON `json:"extra"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (QuestHistory) TableName() string { return "quest_history" }
