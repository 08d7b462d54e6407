package quest

import (
	"time"

	"github.com/emberworks/questengine/model"
)

// PlayerRef is an opaque handle to a live (online) player, supplied by the
// surrounding game server.
type PlayerRef interface {
	ID() string
}

// Location is a world position used by teleport actions and history rows.
type Location struct {
	World string
	X     float64
	Y     float64
	Z     float64
	Yaw   float32
	Pitch float32
}

// ConditionContext is the read-only view a condition evaluates against.
// Implementations bridge to the game's flag, job, housing, rank, region,
// world-state, event and clock subsystems.
type ConditionContext interface {
	PlayerID() string
	FlagEquals(key string, expected bool) bool
	QuestState(questID string) (model.RunState, bool)
	JobLevel(jobID string) int
	IsJobActive(jobID string) bool
	HousingLevel() int
	RankValue() int
	HasVisitedRegion(id string) bool
	IsInsideRegion(id string) bool
	WorldStateInt(key string, def int) int
	IsEventActive(id string) bool
	IsTimeInRange(startHour, endHour int) bool
}

// ActionContext is the mutable execution surface actions fan out into.
// Player returns nil when the player is offline; actions that need a live
// player are silently skipped in that case.
type ActionContext interface {
	PlayerID() string
	Player() PlayerRef
	SetFlag(playerID, key string, value bool)
	StartDialogue(p PlayerRef, npcID, dialogueID string)
	Teleport(p PlayerRef, loc Location)
	SendMessage(p PlayerRef, text string)
	SendTitle(p PlayerRef, title, subtitle string, fadeIn, stay, fadeOut time.Duration)
	PlaySound(p PlayerRef, soundKey string, volume, pitch float64)
	RunConsoleCommand(text string)
	GiveItem(p PlayerRef, itemID string, amount int, bindOnPickup bool)
	GiveCrate(p PlayerRef, crateID string, amount int)
	GrantCosmetic(p PlayerRef, cosmeticID, variant string)
	SetWorldState(key string, absolute *int, increment *int)
	Broadcast(text string)
}

// RewardContext receives the structured grants of a reward bundle. The
// idempotency key on currency grants lets the economy collaborator dedupe
// retried completions.
type RewardContext interface {
	PlayerID() string
	Player() PlayerRef
	AddCurrency(playerID, currencyID string, amount float64, idempotencyKey string)
	AddJobXP(playerID, jobID string, xp int)
	AddHousingXP(playerID string, xp int)
	AddRankXP(playerID string, xp int)
	GiveCrate(p PlayerRef, crateID string, amount int)
	GiveItem(p PlayerRef, itemID string, amount int, bindOnPickup bool)
	GrantCosmetic(p PlayerRef, cosmeticID, variant string)
	SetFlag(playerID, key string, value bool)
}

// Context factories are the seam wiring the engine to the rest of the game:
// each maps a (player, quest) pair to the context instance the sub-engines
// evaluate and execute against.
type (
	ConditionContextFactory func(playerID string, def *QuestDefinition) ConditionContext
	ActionContextFactory    func(playerID string, def *QuestDefinition) ActionContext
	RewardContextFactory    func(playerID string, def *QuestDefinition) RewardContext
)
