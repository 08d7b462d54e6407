package quest

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// rewardNamespace seeds the deterministic idempotency keys attached to
// currency grants.
var rewardNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("questengine/reward"))

// RewardEngine translates a reward bundle into context calls. Grants are
// applied in a fixed order and each grant is an independent call: a failure
// partway through is not rolled back. Collaborators needing exactly-once
// effects dedupe on the idempotency key instead.
type RewardEngine struct {
	actions *ActionExecutor
	logger  *zap.Logger
}

// NewRewardEngine creates a RewardEngine delegating trailing actions to
// the given executor.
func NewRewardEngine(actions *ActionExecutor, logger *zap.Logger) *RewardEngine {
	return &RewardEngine{actions: actions, logger: logger}
}

// Apply dispatches the bundle: currencies, job XP, housing XP, rank XP,
// crates, items, cosmetics, flags, then trailing actions. Zero and negative
// amounts are filtered out before dispatch. runSeq identifies the completion
// run so retried applications produce the same idempotency keys.
func (r *RewardEngine) Apply(rctx RewardContext, actx ActionContext, def *QuestDefinition, rewards RewardDef, runSeq int) {
	playerID := rctx.PlayerID()

	for _, currencyID := range sortedKeysF(rewards.Currencies) {
		amount := rewards.Currencies[currencyID]
		if amount <= 0 {
			continue
		}
		rctx.AddCurrency(playerID, currencyID, amount,
			r.idempotencyKey(playerID, def.ID, runSeq, "currency:"+currencyID))
	}

	for _, jobID := range sortedKeysI(rewards.JobXP) {
		xp := rewards.JobXP[jobID]
		if xp <= 0 {
			continue
		}
		rctx.AddJobXP(playerID, jobID, xp)
	}

	if rewards.HousingXP > 0 {
		rctx.AddHousingXP(playerID, rewards.HousingXP)
	}
	if rewards.RankXP > 0 {
		rctx.AddRankXP(playerID, rewards.RankXP)
	}

	player := rctx.Player()

	for _, crate := range rewards.Crates {
		if crate.Amount <= 0 {
			continue
		}
		rctx.GiveCrate(player, crate.ID, crate.Amount)
	}

	for _, item := range rewards.Items {
		if item.Amount <= 0 {
			continue
		}
		if player == nil {
			r.logger.Info("item reward skipped, player offline",
				zap.String("player_id", playerID),
				zap.String("quest_id", def.ID),
				zap.String("item_id", item.ID))
			continue
		}
		rctx.GiveItem(player, item.ID, item.Amount, item.BindOnPickup)
	}

	for _, cosmetic := range rewards.Cosmetics {
		rctx.GrantCosmetic(player, cosmetic.ID, cosmetic.Variant)
	}

	for _, key := range sortedKeysB(rewards.Flags) {
		rctx.SetFlag(playerID, key, rewards.Flags[key])
	}

	if len(rewards.Actions) > 0 {
		r.actions.ExecuteAll(rewards.Actions, actx)
	}
}

// idempotencyKey is stable across retries of the same run: it hashes the
// player, quest, run sequence and grant identity.
func (r *RewardEngine) idempotencyKey(playerID, questID string, runSeq int, grant string) string {
	return uuid.NewSHA1(rewardNamespace,
		[]byte(fmt.Sprintf("%s|%s|%d|%s", playerID, questID, runSeq, grant))).String()
}

func sortedKeysF(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeysI(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeysB(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
